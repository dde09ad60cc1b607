// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides utility functions for generating random sites for Voronoi diagrams.

package utils

import (
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// GenerateRandomPoints generates cnt random points in the square
// [-halfSize, halfSize]². The seed parameter ensures reproducibility.
func GenerateRandomPoints(cnt int, halfSize float64, seed int64) []r2.Point {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]r2.Point, cnt)

	for i := range cnt {
		points[i] = r2.Point{
			X: (random.Float64()*2 - 1) * halfSize,
			Y: (random.Float64()*2 - 1) * halfSize,
		}
	}

	return points
}

// GenerateRandomSites generates cnt random sites in the plane Z = height with
// X and Y in [-halfSize, halfSize]. It draws the same X and Y as
// GenerateRandomPoints for the same seed.
func GenerateRandomSites(cnt int, halfSize, height float64, seed int64) []r3.Vector {
	points := GenerateRandomPoints(cnt, halfSize, seed)
	sites := make([]r3.Vector, cnt)
	for i, p := range points {
		sites[i] = r3.Vector{X: p.X, Y: p.Y, Z: height}
	}
	return sites
}

// ProjectXY drops the Z coordinate of every site.
func ProjectXY(sites []r3.Vector) []r2.Point {
	points := make([]r2.Point, len(sites))
	for i, s := range sites {
		points[i] = r2.Point{X: s.X, Y: s.Y}
	}
	return points
}
