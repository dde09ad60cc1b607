// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r2voronoi

import (
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

const coincidentTolerance = 1e-12

// CellEdge is a segment of a cell boundary between two Voronoi vertices.
type CellEdge struct {
	A, B r3.Vector
}

// VoronoiCell is a cell detached from its Diagram.
type VoronoiCell struct {
	SitePosition r3.Vector
	// BoundaryEdges run counter-clockwise around the site; the last edge ends
	// where the first one starts. Edges never have zero length, so a cell can
	// have fewer edges than vertices.
	BoundaryEdges []CellEdge
}

// Cell represents a Voronoi cell. It is a view structure for accessing a cell in a Diagram.
// The cell's index corresponds to the index of its site in the Diagram's Sites.
type Cell struct {
	idx int
	d   *Diagram
}

// SiteIndex returns the index of the site in the Diagram's Sites.
func (c Cell) SiteIndex() int {
	return c.idx
}

// Site returns the site of the cell, with its original height.
func (c Cell) Site() r3.Vector {
	return c.d.Sites[c.idx]
}

// NumVertices returns the number of vertices in the cell.
// This equals the number of neighbors.
func (c Cell) NumVertices() int {
	return c.d.CellOffsets[c.idx+1] - c.d.CellOffsets[c.idx]
}

// VertexIndices returns the indices of the vertices that form the cell in the Diagram's Vertices,
// sorted in counter-clockwise order around the site.
func (c Cell) VertexIndices() []int {
	return c.d.CellVertices[c.d.CellOffsets[c.idx]:c.d.CellOffsets[c.idx+1]]
}

// Vertex returns the vertex at the specified index.
// It returns an error if the index is out of range.
func (c Cell) Vertex(i int) (r3.Vector, error) {
	start := c.d.CellOffsets[c.idx]
	end := c.d.CellOffsets[c.idx+1]
	if i < 0 || i >= end-start {
		return r3.Vector{}, errors.Newf("Vertex: index %d out of range [0 %d)", i, end-start)
	}
	return c.d.Vertices[c.d.CellVertices[start+i]], nil
}

// NumNeighbors returns the number of neighboring sites, boundary sites included.
// This equals the number of vertices.
func (c Cell) NumNeighbors() int {
	return c.d.CellOffsets[c.idx+1] - c.d.CellOffsets[c.idx]
}

// NeighborIndices returns the indices of the neighboring cells in the Diagram, in edge order:
// entry i is the cell across the edge from vertex i to vertex i+1. Boundary sites are -1.
func (c Cell) NeighborIndices() []int {
	return c.d.CellNeighbors[c.d.CellOffsets[c.idx]:c.d.CellOffsets[c.idx+1]]
}

// Neighbor returns the neighboring cell at the specified index.
// It returns an error if the index is out of range or the neighbor is a boundary site.
func (c Cell) Neighbor(i int) (Cell, error) {
	start := c.d.CellOffsets[c.idx]
	end := c.d.CellOffsets[c.idx+1]
	if i < 0 || i >= end-start {
		return Cell{}, errors.Newf("Neighbor: index %d out of range [0 %d)", i, end-start)
	}
	n := c.d.CellNeighbors[start+i]
	if n < 0 {
		return Cell{}, errors.Newf("Neighbor: edge %d of cell %d borders a boundary site", i, c.idx)
	}
	return c.d.Cell(n)
}

// Edges returns the boundary of the cell as consecutive vertex pairs, closing
// the cycle. Co-circular sites give neighboring triangles the same
// circumcenter; such repeated vertices are merged, so no edge has zero length.
func (c Cell) Edges() []CellEdge {
	idx := c.VertexIndices()
	verts := make([]r3.Vector, 0, len(idx))
	for _, i := range idx {
		v := c.d.Vertices[i]
		if len(verts) > 0 && coincident(verts[len(verts)-1], v) {
			continue
		}
		verts = append(verts, v)
	}
	for len(verts) > 1 && coincident(verts[len(verts)-1], verts[0]) {
		verts = verts[:len(verts)-1]
	}

	n := len(verts)
	edges := make([]CellEdge, n)
	for i := range n {
		edges[i] = CellEdge{A: verts[i], B: verts[(i+1)%n]}
	}
	return edges
}

// coincident reports whether two Voronoi vertices agree up to rounding.
func coincident(a, b r3.Vector) bool {
	scale := max(a.Norm(), b.Norm(), 1)
	return a.Sub(b).Norm() <= coincidentTolerance*scale
}

// Polygon returns the cell's vertices projected to the plane.
func (c Cell) Polygon() []r2.Point {
	idx := c.VertexIndices()
	poly := make([]r2.Point, len(idx))
	for i, v := range idx {
		poly[i] = r2.Point{X: c.d.Vertices[v].X, Y: c.d.Vertices[v].Y}
	}
	return poly
}

// ClippedPolygon returns the part of the cell inside rect, counter-clockwise.
// It is empty when the cell misses rect.
func (c Cell) ClippedPolygon(rect r2.Rect) []r2.Point {
	poly := c.Polygon()
	for _, h := range [4]struct {
		x     bool
		bound float64
		sign  float64
	}{
		{true, rect.X.Lo, -1},
		{true, rect.X.Hi, 1},
		{false, rect.Y.Lo, -1},
		{false, rect.Y.Hi, 1},
	} {
		poly = clipAxis(poly, h.x, h.bound, h.sign)
	}
	return poly
}

// Area returns the area of the cell.
func (c Cell) Area() float64 {
	area, _ := polygonAreaCentroid(c.Polygon())
	return area
}

// Centroid returns the center of mass of the cell in the plane.
func (c Cell) Centroid() r2.Point {
	_, centroid := polygonAreaCentroid(c.Polygon())
	return centroid
}

// clipAxis is one Sutherland-Hodgman step: it keeps the part of the convex
// polygon where sign*(coord-bound) <= 0, coord being X or Y.
func clipAxis(poly []r2.Point, x bool, bound, sign float64) []r2.Point {
	dist := func(p r2.Point) float64 {
		if x {
			return sign * (p.X - bound)
		}
		return sign * (p.Y - bound)
	}

	out := make([]r2.Point, 0, len(poly)+1)
	for i, cur := range poly {
		prev := poly[(i+len(poly)-1)%len(poly)]
		dc, dp := dist(cur), dist(prev)
		if (dc <= 0) != (dp <= 0) {
			p := prev.Add(cur.Sub(prev).Mul(dp / (dp - dc)))
			if x {
				p.X = bound
			} else {
				p.Y = bound
			}
			out = append(out, p)
		}
		if dc <= 0 {
			out = append(out, cur)
		}
	}
	return out
}

// polygonAreaCentroid uses the shoelace formula relative to the first vertex.
func polygonAreaCentroid(poly []r2.Point) (float64, r2.Point) {
	if len(poly) == 0 {
		return 0, r2.Point{}
	}
	origin := poly[0]
	var area float64
	var sum r2.Point
	for i := 1; i+1 < len(poly); i++ {
		a := poly[i].Sub(origin)
		b := poly[i+1].Sub(origin)
		cross := a.Cross(b)
		area += cross
		sum = sum.Add(a.Add(b).Mul(cross))
	}
	if area == 0 {
		return 0, origin
	}
	return area / 2, origin.Add(sum.Mul(1 / (3 * area)))
}
