// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r2delaunay

import (
	"testing"

	"github.com/2dChan/r2voronoi/predicates"
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
)

// Edge

func TestNewEdge(t *testing.T) {
	if got, want := NewEdge(5, 2), (Edge{A: 2, B: 5}); got != want {
		t.Errorf("NewEdge(5, 2) = %v, want %v", got, want)
	}
	if NewEdge(1, 3) != NewEdge(3, 1) {
		t.Errorf("NewEdge(1, 3) != NewEdge(3, 1)")
	}
}

// Mesh

func TestMesh_AddTriangle(t *testing.T) {
	m := NewMesh([]r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}})

	// Clockwise input is stored counter-clockwise.
	id, err := m.AddTriangle(0, 2, 1)
	if err != nil {
		t.Fatalf("m.AddTriangle(0, 2, 1) error = %v, want nil", err)
	}
	want := Triangle{V: [3]int{0, 1, 2}, Orientation: predicates.CounterClockwise}
	if diff := cmp.Diff(want, m.Triangle(id)); diff != "" {
		t.Errorf("m.Triangle(%d) mismatch (-want +got):\n%s", id, diff)
	}
	if got := m.NumTriangles(); got != 1 {
		t.Errorf("m.NumTriangles() = %d, want 1", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("m.Validate() error = %v, want nil", err)
	}
}

func TestMesh_AddTriangle_Collinear(t *testing.T) {
	m := NewMesh([]r2.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	if _, err := m.AddTriangle(0, 1, 2); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("m.AddTriangle(0, 1, 2) error = %v, want %v", err, ErrDegenerateInput)
	}
}

func TestMesh_AddTriangle_EdgeOverfull(t *testing.T) {
	m := NewMesh([]r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: 1, Y: 3}})
	mustAddTriangle(t, m, 0, 1, 2)
	mustAddTriangle(t, m, 0, 3, 1)
	if _, err := m.AddTriangle(0, 1, 4); err == nil {
		t.Errorf("m.AddTriangle(0, 1, 4) error = nil, want non-nil")
	}
}

func TestMesh_NeighborOf(t *testing.T) {
	m := squareMesh(t)

	diag := NewEdge(0, 2)
	if got, ok := m.NeighborOf(diag, 0); !ok || got != 1 {
		t.Errorf("m.NeighborOf(%v, 0) = %d, %v, want 1, true", diag, got, ok)
	}
	if got, ok := m.NeighborOf(diag, 1); !ok || got != 0 {
		t.Errorf("m.NeighborOf(%v, 1) = %d, %v, want 0, true", diag, got, ok)
	}

	hull := NewEdge(0, 1)
	if _, ok := m.NeighborOf(hull, 0); ok {
		t.Errorf("m.NeighborOf(%v, 0) ok = true, want false", hull)
	}
	if !m.IsHullEdge(hull) {
		t.Errorf("m.IsHullEdge(%v) = false, want true", hull)
	}
	if m.IsHullEdge(diag) {
		t.Errorf("m.IsHullEdge(%v) = true, want false", diag)
	}
	if got := m.Opposite(diag, 1); got != 3 {
		t.Errorf("m.Opposite(%v, 1) = %d, want 3", diag, got)
	}
}

func TestMesh_Edges(t *testing.T) {
	m := squareMesh(t)
	want := []Edge{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {2, 3}}
	if diff := cmp.Diff(want, m.Edges()); diff != "" {
		t.Errorf("m.Edges() mismatch (-want +got):\n%s", diff)
	}
}

func TestMesh_Flip(t *testing.T) {
	m := squareMesh(t)

	if err := m.Flip(NewEdge(0, 2)); err != nil {
		t.Fatalf("m.Flip(0-2) error = %v, want nil", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("m.Validate() error = %v, want nil", err)
	}

	wantTris := []Triangle{
		{V: [3]int{1, 2, 3}, Orientation: predicates.CounterClockwise},
		{V: [3]int{3, 0, 1}, Orientation: predicates.CounterClockwise},
	}
	if diff := cmp.Diff(wantTris, m.Triangles()); diff != "" {
		t.Errorf("m.Triangles() mismatch (-want +got):\n%s", diff)
	}

	if t0, t1 := m.TrianglesOf(NewEdge(0, 2)); t0 != noTriangle || t1 != noTriangle {
		t.Errorf("m.TrianglesOf(0-2) = %d, %d, want none", t0, t1)
	}
	if got, ok := m.NeighborOf(NewEdge(1, 3), 0); !ok || got != 1 {
		t.Errorf("m.NeighborOf(1-3, 0) = %d, %v, want 1, true", got, ok)
	}
	if t0, t1 := m.TrianglesOf(NewEdge(0, 1)); t0 != 1 || t1 != noTriangle {
		t.Errorf("m.TrianglesOf(0-1) = %d, %d, want 1, -1", t0, t1)
	}
	if t0, t1 := m.TrianglesOf(NewEdge(2, 3)); t0 != 0 || t1 != noTriangle {
		t.Errorf("m.TrianglesOf(2-3) = %d, %d, want 0, -1", t0, t1)
	}

	// Flipping back restores the original diagonal.
	if err := m.Flip(NewEdge(1, 3)); err != nil {
		t.Fatalf("m.Flip(1-3) error = %v, want nil", err)
	}
	if t0, t1 := m.TrianglesOf(NewEdge(0, 2)); t0 == noTriangle || t1 == noTriangle {
		t.Errorf("m.TrianglesOf(0-2) = %d, %d, want two triangles", t0, t1)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("m.Validate() error = %v, want nil", err)
	}
}

func TestMesh_Flip_NotFlippable(t *testing.T) {
	tests := []struct {
		name string
		mesh func(t *testing.T) *Mesh
		edge Edge
	}{
		{"hull edge", squareMesh, NewEdge(0, 1)},
		{"missing edge", squareMesh, NewEdge(1, 3)},
		{
			"non-convex quad",
			func(t *testing.T) *Mesh {
				m := NewMesh([]r2.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 4}})
				mustAddTriangle(t, m, 0, 1, 2)
				mustAddTriangle(t, m, 0, 2, 3)
				return m
			},
			NewEdge(0, 2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mesh(t)
			before := m.Triangles()
			if err := m.Flip(tt.edge); !errors.Is(err, ErrNotFlippable) {
				t.Errorf("m.Flip(%v) error = %v, want %v", tt.edge, err, ErrNotFlippable)
			}
			if diff := cmp.Diff(before, m.Triangles()); diff != "" {
				t.Errorf("m.Triangles() changed by failed flip (-want +got):\n%s", diff)
			}
		})
	}
}

// Helpers

// squareMesh returns the unit square split along the 0-2 diagonal.
func squareMesh(t *testing.T) *Mesh {
	t.Helper()
	m := NewMesh([]r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}})
	mustAddTriangle(t, m, 0, 1, 2)
	mustAddTriangle(t, m, 0, 2, 3)
	return m
}

func mustAddTriangle(t *testing.T, m *Mesh, a, b, c int) int {
	t.Helper()
	id, err := m.AddTriangle(a, b, c)
	if err != nil {
		t.Fatalf("m.AddTriangle(%d, %d, %d) error = %v, want nil", a, b, c, err)
	}
	return id
}
