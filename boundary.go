// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r2voronoi

import (
	"slices"

	"github.com/2dChan/r2voronoi/r2delaunay"
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r2"
)

// BoundaryStrategy places the auxiliary sites that close the cells of sites
// on the convex hull. Boundary sites are triangulated with the real sites but
// get no cells of their own.
type BoundaryStrategy interface {
	BoundarySites(sites []r2.Point) ([]r2.Point, error)
}

// StarBoundary places four sites on the axes through the center of the sites'
// bounding box, Scale half-extents away from it. The half-extent is the larger
// half side of the box. A Scale above 2 keeps the whole box strictly inside the
// star, so every site gets a bounded cell.
type StarBoundary struct {
	Scale float64
}

func (s StarBoundary) BoundarySites(sites []r2.Point) ([]r2.Point, error) {
	if s.Scale <= 2 {
		return nil, errors.Newf("StarBoundary: scale must be greater than 2, got %v", s.Scale)
	}
	rect := r2.RectFromPoints(sites...)
	half := rect.Size().Mul(0.5)
	extent := max(half.X, half.Y)
	if extent == 0 {
		return nil, errors.Wrap(r2delaunay.ErrDegenerateInput, "StarBoundary: sites have no extent")
	}

	c := rect.Center()
	r := s.Scale * extent
	return []r2.Point{
		{X: c.X, Y: c.Y + r},
		{X: c.X, Y: c.Y - r},
		{X: c.X + r, Y: c.Y},
		{X: c.X - r, Y: c.Y},
	}, nil
}

// FixedBoundary uses caller-placed boundary sites. The caller is responsible
// for placing them around the data.
type FixedBoundary struct {
	Sites []r2.Point
}

func (f FixedBoundary) BoundarySites([]r2.Point) ([]r2.Point, error) {
	if err := r2delaunay.ValidateSites(f.Sites); err != nil {
		return nil, errors.Wrap(err, "FixedBoundary")
	}
	return slices.Clone(f.Sites), nil
}
