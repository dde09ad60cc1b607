// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package predicates implements the planar geometric predicates used by the
// Delaunay triangulation: orientation, circumcenter, in-circle and convexity
// tests. All functions are pure and safe for concurrent use.
package predicates

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r2"
)

// ErrDegenerateTriangle is returned when a triangle has collinear vertices.
var ErrDegenerateTriangle = errors.New("predicates: degenerate triangle")

// Orientation is the winding of an ordered triple of points.
type Orientation int

const (
	Collinear Orientation = iota
	CounterClockwise
	Clockwise
)

func (o Orientation) String() string {
	switch o {
	case Collinear:
		return "Collinear"
	case CounterClockwise:
		return "CounterClockwise"
	case Clockwise:
		return "Clockwise"
	}
	return "Orientation(?)"
}

// Det returns twice the signed area of the triangle p1, p2, p3.
// It is positive for counter-clockwise triples.
func Det(p1, p2, p3 r2.Point) float64 {
	return p2.Sub(p1).Cross(p3.Sub(p1))
}

// Orient classifies the triple p1, p2, p3. Only an exact zero determinant is
// reported as Collinear.
func Orient(p1, p2, p3 r2.Point) Orientation {
	d := Det(p1, p2, p3)
	switch {
	case d > 0:
		return CounterClockwise
	case d < 0:
		return Clockwise
	}
	return Collinear
}

// Circumcenter returns the center of the circle through p1, p2 and p3.
// It solves the perpendicular bisector system relative to p1, so the only
// denominator is the triangle's doubled area.
func Circumcenter(p1, p2, p3 r2.Point) (r2.Point, error) {
	b := p2.Sub(p1)
	c := p3.Sub(p1)
	d := 2 * b.Cross(c)
	if d == 0 {
		return r2.Point{}, errors.Wrapf(ErrDegenerateTriangle,
			"circumcenter of %v %v %v", p1, p2, p3)
	}

	bb := b.Dot(b)
	cc := c.Dot(c)
	ux := (c.Y*bb - b.Y*cc) / d
	uy := (b.X*cc - c.X*bb) / d
	return r2.Point{X: p1.X + ux, Y: p1.Y + uy}, nil
}

// InCircle returns a positive value when d lies strictly inside the circle
// through a, b, c (given counter-clockwise), a negative value when d lies
// outside and zero when it lies on the circle.
func InCircle(a, b, c, d r2.Point) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	alift := adx*adx + ady*ady
	blift := bdx*bdx + bdy*bdy
	clift := cdx*cdx + cdy*cdy

	return alift*(bdx*cdy-cdx*bdy) +
		blift*(cdx*ady-adx*cdy) +
		clift*(adx*bdy-bdx*ady)
}

// InCircleBound returns the permanent of the InCircle determinant, the sum of
// the absolute values of its terms. Results of InCircle smaller than a small
// multiple of the bound are within rounding error of zero.
func InCircleBound(a, b, c, d r2.Point) float64 {
	adx, ady := math.Abs(a.X-d.X), math.Abs(a.Y-d.Y)
	bdx, bdy := math.Abs(b.X-d.X), math.Abs(b.Y-d.Y)
	cdx, cdy := math.Abs(c.X-d.X), math.Abs(c.Y-d.Y)

	alift := adx*adx + ady*ady
	blift := bdx*bdx + bdy*bdy
	clift := cdx*cdx + cdy*cdy

	return alift*(bdx*cdy+cdx*bdy) +
		blift*(cdx*ady+adx*cdy) +
		clift*(adx*bdy+bdx*ady)
}

// IsConvexQuad reports whether the quadrilateral a-b-c-d, taken in that
// cyclic order, is strictly convex. Each diagonal must separate the other two
// vertices: b and d lie on opposite sides of ac, a and c on opposite sides of
// bd. Self-intersecting orderings fail one of the two tests.
func IsConvexQuad(a, b, c, d r2.Point) bool {
	acb := Orient(a, c, b)
	acd := Orient(a, c, d)
	bda := Orient(b, d, a)
	bdc := Orient(b, d, c)

	if acb == Collinear || acd == Collinear || bda == Collinear || bdc == Collinear {
		return false
	}
	return acb != acd && bda != bdc
}
