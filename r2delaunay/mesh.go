// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r2delaunay

import (
	"cmp"
	"slices"

	"github.com/2dChan/r2voronoi/predicates"
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r2"
)

const noTriangle = -1

// Edge is an unordered pair of vertex indices, stored with A < B.
type Edge struct {
	A, B int
}

// NewEdge returns the normalised edge between vertices u and v.
func NewEdge(u, v int) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{A: u, B: v}
}

func compareEdges(e, f Edge) int {
	if c := cmp.Compare(e.A, f.A); c != 0 {
		return c
	}
	return cmp.Compare(e.B, f.B)
}

// Triangle is an ordered triple of vertex indices with its cached winding.
type Triangle struct {
	V           [3]int
	Orientation predicates.Orientation
}

// Edge returns the i-th edge of the triangle, from V[i] to V[(i+1)%3].
func (t Triangle) Edge(i int) Edge {
	return NewEdge(t.V[i], t.V[(i+1)%3])
}

// Mesh is a planar triangulation stored as an arena of triangles. Adjacency is
// kept per edge as the ids of the (at most two) triangles sharing it, so a flip
// only rewrites arena slots and a few map entries.
//
// A Mesh is not safe for concurrent use.
type Mesh struct {
	vertices  []r2.Point
	triangles []Triangle
	edges     map[Edge][2]int
}

// NewMesh returns an empty mesh over the given vertices.
func NewMesh(vertices []r2.Point) *Mesh {
	return &Mesh{
		vertices: vertices,
		edges:    make(map[Edge][2]int),
	}
}

// Vertices returns the mesh vertices.
func (m *Mesh) Vertices() []r2.Point {
	return m.vertices
}

// NumTriangles returns the number of triangles in the mesh.
func (m *Mesh) NumTriangles() int {
	return len(m.triangles)
}

// Triangle returns the triangle with id t.
func (m *Mesh) Triangle(t int) Triangle {
	return m.triangles[t]
}

// Triangles returns a copy of the triangles indexed by id.
func (m *Mesh) Triangles() []Triangle {
	return slices.Clone(m.triangles)
}

// Edges returns every edge of the mesh in sorted order.
func (m *Mesh) Edges() []Edge {
	edges := make([]Edge, 0, len(m.edges))
	for e := range m.edges {
		edges = append(edges, e)
	}
	slices.SortFunc(edges, compareEdges)
	return edges
}

// TrianglesOf returns the ids of the triangles sharing e. Missing triangles are
// reported as -1.
func (m *Mesh) TrianglesOf(e Edge) (int, int) {
	ts, ok := m.edges[e]
	if !ok {
		return noTriangle, noTriangle
	}
	return ts[0], ts[1]
}

// IsHullEdge reports whether e borders exactly one triangle.
func (m *Mesh) IsHullEdge(e Edge) bool {
	t0, t1 := m.TrianglesOf(e)
	return (t0 == noTriangle) != (t1 == noTriangle)
}

// NeighborOf returns the triangle on the other side of e from t. It returns
// false when e is a hull edge or does not belong to t.
func (m *Mesh) NeighborOf(e Edge, t int) (int, bool) {
	t0, t1 := m.TrianglesOf(e)
	switch t {
	case t0:
		return t1, t1 != noTriangle
	case t1:
		return t0, t0 != noTriangle
	}
	return noTriangle, false
}

// Opposite returns the vertex of triangle t that is not on e.
func (m *Mesh) Opposite(e Edge, t int) int {
	for _, v := range m.triangles[t].V {
		if v != e.A && v != e.B {
			return v
		}
	}
	panic("Opposite: edge not in triangle")
}

// AddTriangle appends the triangle a, b, c in counter-clockwise order and
// returns its id.
func (m *Mesh) AddTriangle(a, b, c int) (int, error) {
	switch predicates.Orient(m.vertices[a], m.vertices[b], m.vertices[c]) {
	case predicates.Collinear:
		return noTriangle, errors.Wrapf(ErrDegenerateInput,
			"triangle (%d, %d, %d) has collinear vertices", a, b, c)
	case predicates.Clockwise:
		b, c = c, b
	}

	id := len(m.triangles)
	tri := Triangle{V: [3]int{a, b, c}, Orientation: predicates.CounterClockwise}
	for i := range 3 {
		e := tri.Edge(i)
		ts, ok := m.edges[e]
		if !ok {
			ts = [2]int{noTriangle, noTriangle}
		}
		switch {
		case ts[0] == noTriangle:
			ts[0] = id
		case ts[1] == noTriangle:
			ts[1] = id
		default:
			return noTriangle, errors.AssertionFailedf(
				"edge %v already shared by triangles %d and %d", e, ts[0], ts[1])
		}
		m.edges[e] = ts
	}
	m.triangles = append(m.triangles, tri)
	return id, nil
}

// sharedQuad returns the quadrilateral around the interior edge e as
// (p, q, c, d): triangle t0 is (p, q, c) counter-clockwise and t1 holds the
// apex d on the other side of e.
func (m *Mesh) sharedQuad(e Edge) (t0, t1, p, q, c, d int, err error) {
	t0, t1 = m.TrianglesOf(e)
	if t0 == noTriangle || t1 == noTriangle {
		return 0, 0, 0, 0, 0, 0, errors.Wrapf(ErrNotFlippable, "hull edge %v", e)
	}

	tri := m.triangles[t0]
	for i := range 3 {
		u, v := tri.V[i], tri.V[(i+1)%3]
		if NewEdge(u, v) == e {
			p, q, c = u, v, tri.V[(i+2)%3]
			break
		}
	}
	d = m.Opposite(e, t1)
	return t0, t1, p, q, c, d, nil
}

// Flip replaces the two triangles sharing e with the two triangles sharing the
// opposite diagonal. The triangle ids are reused. It returns ErrNotFlippable
// when e is a hull edge or the union of its triangles is not convex.
func (m *Mesh) Flip(e Edge) error {
	t0, t1, p, q, c, d, err := m.sharedQuad(e)
	if err != nil {
		return err
	}

	vp, vq, vc, vd := m.vertices[p], m.vertices[q], m.vertices[c], m.vertices[d]
	if !predicates.IsConvexQuad(vp, vd, vq, vc) {
		return errors.Wrapf(ErrNotFlippable,
			"edge %v: quadrilateral (%d, %d, %d, %d) is not convex", e, p, d, q, c)
	}

	// (p, q, c) and (q, p, d) become (c, p, d) and (d, q, c).
	m.triangles[t0] = Triangle{V: [3]int{c, p, d}, Orientation: predicates.CounterClockwise}
	m.triangles[t1] = Triangle{V: [3]int{d, q, c}, Orientation: predicates.CounterClockwise}

	delete(m.edges, e)
	m.edges[NewEdge(c, d)] = [2]int{t0, t1}
	m.replaceTriangle(NewEdge(p, d), t1, t0)
	m.replaceTriangle(NewEdge(q, c), t0, t1)
	return nil
}

func (m *Mesh) replaceTriangle(e Edge, from, to int) {
	ts := m.edges[e]
	switch from {
	case ts[0]:
		ts[0] = to
	case ts[1]:
		ts[1] = to
	}
	m.edges[e] = ts
}

// Validate checks the mesh invariants: every triangle is non-degenerate and
// wound as its cached flag says, and every edge is shared by at most two
// triangles that both contain it.
func (m *Mesh) Validate() error {
	for id, tri := range m.triangles {
		a, b, c := m.vertices[tri.V[0]], m.vertices[tri.V[1]], m.vertices[tri.V[2]]
		got := predicates.Orient(a, b, c)
		if got == predicates.Collinear {
			return errors.AssertionFailedf("triangle %d %v is degenerate", id, tri.V)
		}
		if got != tri.Orientation {
			return errors.AssertionFailedf("triangle %d %v orientation %v, cached %v",
				id, tri.V, got, tri.Orientation)
		}
		for i := range 3 {
			t0, t1 := m.TrianglesOf(tri.Edge(i))
			if t0 != id && t1 != id {
				return errors.AssertionFailedf("edge %v does not reference triangle %d",
					tri.Edge(i), id)
			}
		}
	}

	for e, ts := range m.edges {
		for _, t := range ts {
			if t == noTriangle {
				continue
			}
			if !hasEdge(m.triangles[t], e) {
				return errors.AssertionFailedf("edge %v references triangle %d without it", e, t)
			}
		}
		if ts[0] == ts[1] || ts[0] == noTriangle {
			return errors.AssertionFailedf("edge %v has adjacency %v", e, ts)
		}
	}
	return nil
}

func hasEdge(t Triangle, e Edge) bool {
	for i := range 3 {
		if t.Edge(i) == e {
			return true
		}
	}
	return false
}
