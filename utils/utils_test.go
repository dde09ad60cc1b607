// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package utils

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
)

func TestGenerateRandomPoints_Length(t *testing.T) {
	tests := []struct {
		name string
		cnt  int
		seed int64
	}{
		{"zero points", 0, 42},
		{"one point", 1, 42},
		{"ten points", 10, 0},
		{"hundred points", 100, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := GenerateRandomPoints(tt.cnt, 1, tt.seed)
			if len(points) != tt.cnt {
				t.Errorf("GenerateRandomPoints(%v, 1, %v) len = %v, want %v", tt.cnt, tt.seed,
					len(points), tt.cnt)
			}
		})
	}
}

func TestGenerateRandomPoints_InSquare(t *testing.T) {
	const (
		cnt      = 100
		halfSize = 10
		seed     = 0
	)
	points := GenerateRandomPoints(cnt, halfSize, seed)
	for i, p := range points {
		if math.Abs(p.X) > halfSize || math.Abs(p.Y) > halfSize {
			t.Errorf("GenerateRandomPoints(%v, %v, %v)[%d] = %v, want inside [-%v, %v]²", cnt, halfSize, seed,
				i, p, halfSize, halfSize)
		}
	}
}

func TestGenerateRandomPoints_Determinism(t *testing.T) {
	const (
		cnt  = 10
		seed = 0
	)
	a := GenerateRandomPoints(cnt, 1, seed)
	b := GenerateRandomPoints(cnt, 1, seed)
	if diff := cmp.Diff(b, a); diff != "" {
		t.Errorf("GenerateRandomPoints(%v, 1, %v) mismatch (-want +got):\n%v", cnt, seed, diff)
	}
}

func TestGenerateRandomSites(t *testing.T) {
	const (
		cnt    = 20
		height = 3.5
		seed   = 7
	)
	sites := GenerateRandomSites(cnt, 5, height, seed)
	points := GenerateRandomPoints(cnt, 5, seed)
	for i, s := range sites {
		if s.Z != height {
			t.Errorf("GenerateRandomSites(...)[%d].Z = %v, want %v", i, s.Z, height)
		}
	}
	if diff := cmp.Diff(points, ProjectXY(sites)); diff != "" {
		t.Errorf("ProjectXY(GenerateRandomSites(...)) mismatch (-want +got):\n%v", diff)
	}
}

func TestProjectXY(t *testing.T) {
	sites := []r3.Vector{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 5, Z: -6}}
	want := []r2.Point{{X: 1, Y: 2}, {X: -4, Y: 5}}
	if diff := cmp.Diff(want, ProjectXY(sites)); diff != "" {
		t.Errorf("ProjectXY(%v) mismatch (-want +got):\n%v", sites, diff)
	}
}
