// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package r2delaunay computes planar Delaunay triangulations by incremental
// hull extension followed by edge-flip legalization.
package r2delaunay

import (
	"cmp"
	"math"
	"slices"

	"github.com/2dChan/r2voronoi/predicates"
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r2"
	"go.uber.org/zap"
)

const (
	defaultEps = 1e-12
	// MaxCoordinate bounds the absolute value of site coordinates. The
	// in-circle determinant is of fourth degree in the coordinates and must
	// not overflow.
	MaxCoordinate = 1e64
)

var (
	// ErrInsufficientSites is returned for fewer than three sites.
	ErrInsufficientSites = errors.New("r2delaunay: insufficient sites for triangulation (minimum 3 required)")
	// ErrDegenerateInput is returned when sites coincide or are all collinear.
	ErrDegenerateInput = errors.New("r2delaunay: degenerate input")
	// ErrNotFlippable is returned by Mesh.Flip for hull edges and edges whose
	// triangles do not form a convex quadrilateral.
	ErrNotFlippable = errors.New("r2delaunay: edge is not flippable")
)

// Stats describes the work done while legalizing a triangulation.
type Stats struct {
	Flips  int
	Passes int
	// NonFlippable counts edges that fail the in-circle test but whose
	// quadrilateral is not convex. They are left in place.
	NonFlippable int
}

type Triangulation struct {
	Vertices []r2.Point
	// NOTE: Every triangle is stored CCW.
	Triangles    [][3]int
	Orientations []predicates.Orientation
	// NOTE: Sort in CCW per vertex. Fans of hull vertices start at the hull.
	IncidentTriangleIndices []int
	IncidentTriangleOffsets []int
	// NOTE: CCW, including vertices lying on hull edges.
	Hull  []int
	Stats Stats
}

func (dt *Triangulation) IncidentTriangles(vIdx int) []int {
	if vIdx < 0 || vIdx+1 >= len(dt.IncidentTriangleOffsets) {
		panic("IncidentTriangles: vIdx out of range")
	}
	start := dt.IncidentTriangleOffsets[vIdx]
	end := dt.IncidentTriangleOffsets[vIdx+1]
	return dt.IncidentTriangleIndices[start:end]
}

func (dt *Triangulation) TriangleVertices(tIdx int) (r2.Point, r2.Point, r2.Point) {
	if tIdx < 0 || tIdx >= len(dt.Triangles) {
		panic("TriangleVertices: tIdx out of bounds")
	}
	t := dt.Triangles[tIdx]
	return dt.Vertices[t[0]], dt.Vertices[t[1]], dt.Vertices[t[2]]
}

// IsHullVertex reports whether vertex vIdx lies on the convex hull.
func (dt *Triangulation) IsHullVertex(vIdx int) bool {
	return slices.Contains(dt.Hull, vIdx)
}

// Validate checks the counts and fans of a finished triangulation.
func (dt *Triangulation) Validate() error {
	n := len(dt.Vertices)
	h := len(dt.Hull)
	if want := 2*n - h - 2; len(dt.Triangles) != want {
		return errors.AssertionFailedf("%d triangles for %d vertices and %d hull vertices, want %d",
			len(dt.Triangles), n, h, want)
	}
	if len(dt.Orientations) != len(dt.Triangles) {
		return errors.AssertionFailedf("%d orientations for %d triangles",
			len(dt.Orientations), len(dt.Triangles))
	}
	for vIdx := range n {
		fan := dt.IncidentTriangles(vIdx)
		if len(fan) == 0 {
			return errors.AssertionFailedf("vertex %d has no incident triangles", vIdx)
		}
		for i := 1; i < len(fan); i++ {
			if PrevVertex(dt.Triangles[fan[i-1]], vIdx) != NextVertex(dt.Triangles[fan[i]], vIdx) {
				return errors.AssertionFailedf("vertex %d: fan triangles %d and %d are not CCW neighbors",
					vIdx, fan[i-1], fan[i])
			}
		}
	}
	return nil
}

type TriangulationOptions struct {
	Eps      float64
	MaxFlips int
	Logger   *zap.Logger
}

type TriangulationOption func(*TriangulationOptions) error

// WithEps sets the relative tolerance of the in-circle test. An edge is only
// flipped when its opposite vertex is inside the circumcircle by more than
// eps times the magnitude bound of the determinant.
func WithEps(eps float64) TriangulationOption {
	return func(o *TriangulationOptions) error {
		if eps <= 0 || eps >= 1 {
			return errors.Newf("WithEps: eps must be in (0, 1), got %v", eps)
		}
		o.Eps = eps
		return nil
	}
}

// WithMaxFlips bounds the number of flips performed during legalization.
func WithMaxFlips(n int) TriangulationOption {
	return func(o *TriangulationOptions) error {
		if n <= 0 {
			return errors.Newf("WithMaxFlips: n must be positive, got %d", n)
		}
		o.MaxFlips = n
		return nil
	}
}

func WithLogger(logger *zap.Logger) TriangulationOption {
	return func(o *TriangulationOptions) error {
		if logger == nil {
			return errors.New("WithLogger: logger must be non-nil")
		}
		o.Logger = logger
		return nil
	}
}

// ValidateSites reports ErrInsufficientSites or ErrDegenerateInput for a site
// set that cannot be triangulated.
func ValidateSites(vertices []r2.Point) error {
	_, _, err := validate(vertices)
	return err
}

// validate returns the lexicographic order of the vertices and the position in
// that order of the first vertex off the line through the first two.
func validate(vertices []r2.Point) ([]int, int, error) {
	n := len(vertices)
	if n < 3 {
		return nil, 0, errors.Wrapf(ErrInsufficientSites, "got %d", n)
	}

	for i, p := range vertices {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, 0, errors.Wrapf(ErrDegenerateInput, "site %d at %v is not finite", i, p)
		}
		if math.Abs(p.X) > MaxCoordinate || math.Abs(p.Y) > MaxCoordinate {
			return nil, 0, errors.Wrapf(ErrDegenerateInput,
				"site %d at %v exceeds the coordinate limit %g", i, p, MaxCoordinate)
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		return comparePoints(vertices[i], vertices[j])
	})

	for i := 1; i < n; i++ {
		if vertices[order[i-1]] == vertices[order[i]] {
			return nil, 0, errors.Wrapf(ErrDegenerateInput, "sites %d and %d coincide at %v",
				order[i-1], order[i], vertices[order[i]])
		}
	}

	p0, p1 := vertices[order[0]], vertices[order[1]]
	for k := 2; k < n; k++ {
		if predicates.Orient(p0, p1, vertices[order[k]]) != predicates.Collinear {
			return order, k, nil
		}
	}
	return nil, 0, errors.Wrapf(ErrDegenerateInput, "all %d sites are collinear", n)
}

func comparePoints(p, q r2.Point) int {
	if c := cmp.Compare(p.X, q.X); c != 0 {
		return c
	}
	return cmp.Compare(p.Y, q.Y)
}

// NOTE: Vertices must be distinct and not all collinear.
func NewTriangulation(vertices []r2.Point, setters ...TriangulationOption) (*Triangulation, error) {
	opts := TriangulationOptions{
		Eps:    defaultEps,
		Logger: zap.NewNop(),
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	if opts.MaxFlips == 0 {
		n := len(vertices)
		opts.MaxFlips = 16*n*n + 1024
	}

	order, k, err := validate(vertices)
	if err != nil {
		return nil, err
	}

	b := &builder{mesh: NewMesh(vertices), opts: opts}
	if err := b.extendHull(order, k); err != nil {
		return nil, err
	}
	if err := b.legalize(); err != nil {
		return nil, err
	}

	dt := b.export()
	opts.Logger.Debug("triangulation legalized",
		zap.Int("sites", len(vertices)),
		zap.Int("triangles", len(dt.Triangles)),
		zap.Int("flips", dt.Stats.Flips),
		zap.Int("passes", dt.Stats.Passes),
		zap.Int("nonFlippable", dt.Stats.NonFlippable))
	return dt, nil
}

type builder struct {
	mesh  *Mesh
	opts  TriangulationOptions
	hull  []int
	stats Stats
}

// extendHull builds the initial triangulation. The collinear prefix
// order[:k] is fanned to order[k], then each following vertex, which is
// always outside the current hull, is joined to every hull edge it sees.
func (b *builder) extendHull(order []int, k int) error {
	v := b.mesh.vertices
	apex := order[k]
	for i := 0; i+1 < k; i++ {
		if _, err := b.mesh.AddTriangle(order[i], order[i+1], apex); err != nil {
			return err
		}
	}

	b.hull = make([]int, 0, len(order))
	if predicates.Orient(v[order[0]], v[order[1]], v[apex]) == predicates.CounterClockwise {
		b.hull = append(b.hull, order[:k]...)
	} else {
		for i := k - 1; i >= 0; i-- {
			b.hull = append(b.hull, order[i])
		}
	}
	b.hull = append(b.hull, apex)

	for _, p := range order[k+1:] {
		if err := b.insertOutside(p); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) insertOutside(p int) error {
	v := b.mesh.vertices
	n := len(b.hull)
	visible := make([]bool, n)
	numVisible := 0
	for i := range n {
		u, w := b.hull[i], b.hull[(i+1)%n]
		if predicates.Orient(v[u], v[w], v[p]) == predicates.Clockwise {
			visible[i] = true
			numVisible++
		}
	}
	if numVisible == 0 || numVisible == n {
		return errors.AssertionFailedf("vertex %d sees %d of %d hull edges", p, numVisible, n)
	}

	start := 0
	for i := range n {
		if visible[i] && !visible[(i+n-1)%n] {
			start = i
			break
		}
	}
	for j := range numVisible {
		i := (start + j) % n
		if !visible[i] {
			return errors.AssertionFailedf("vertex %d: visible hull edges are not contiguous", p)
		}
		if _, err := b.mesh.AddTriangle(b.hull[i], b.hull[(i+1)%n], p); err != nil {
			return err
		}
	}

	// Drop the hull vertices strictly inside the visible chain and put p
	// after its first vertex.
	hull := make([]int, 0, n-numVisible+2)
	for j := 0; j <= n-numVisible; j++ {
		hull = append(hull, b.hull[(start+numVisible+j)%n])
	}
	b.hull = append(hull, p)
	return nil
}

// quadState classifies the interior edge e.
func (b *builder) quadState(e Edge) (illegal, convex bool) {
	_, _, p, q, c, d, err := b.mesh.sharedQuad(e)
	if err != nil {
		return false, false
	}
	v := b.mesh.vertices
	vp, vq, vc, vd := v[p], v[q], v[c], v[d]
	if predicates.InCircle(vp, vq, vc, vd) <= b.opts.Eps*predicates.InCircleBound(vp, vq, vc, vd) {
		return false, false
	}
	return true, predicates.IsConvexQuad(vp, vc, vq, vd)
}

// legalize flips illegal edges until a full pass over the interior edges finds
// none that can be flipped.
func (b *builder) legalize() error {
	queue := b.interiorEdges()
	queued := make(map[Edge]bool, len(queue))
	for _, e := range queue {
		queued[e] = true
	}

	for {
		for len(queue) > 0 {
			e := queue[0]
			queue = queue[1:]
			delete(queued, e)

			illegal, convex := b.quadState(e)
			if !illegal || !convex {
				continue
			}

			_, _, p, q, c, d, err := b.mesh.sharedQuad(e)
			if err != nil {
				return err
			}
			if err := b.mesh.Flip(e); err != nil {
				if errors.Is(err, ErrNotFlippable) {
					continue
				}
				return err
			}
			b.stats.Flips++
			if b.stats.Flips > b.opts.MaxFlips {
				return errors.AssertionFailedf("legalization exceeded %d flips", b.opts.MaxFlips)
			}

			for _, outer := range [4]Edge{NewEdge(p, d), NewEdge(d, q), NewEdge(q, c), NewEdge(c, p)} {
				if !queued[outer] {
					queued[outer] = true
					queue = append(queue, outer)
				}
			}
		}

		b.stats.Passes++
		var stuck []Edge
		for _, e := range b.interiorEdges() {
			illegal, convex := b.quadState(e)
			switch {
			case illegal && convex:
				queued[e] = true
				queue = append(queue, e)
			case illegal:
				stuck = append(stuck, e)
			}
		}
		if len(queue) == 0 {
			b.stats.NonFlippable = len(stuck)
			for _, e := range stuck {
				t0, t1 := b.mesh.TrianglesOf(e)
				b.opts.Logger.Warn("illegal edge is not flippable",
					zap.Int("a", e.A), zap.Int("b", e.B),
					zap.Int("triangle0", t0), zap.Int("triangle1", t1))
			}
			return nil
		}
	}
}

func (b *builder) interiorEdges() []Edge {
	edges := b.mesh.Edges()
	interior := edges[:0]
	for _, e := range edges {
		if !b.mesh.IsHullEdge(e) {
			interior = append(interior, e)
		}
	}
	return interior
}

func (b *builder) export() *Triangulation {
	m := b.mesh
	numVertices := len(m.vertices)
	numTriangles := len(m.triangles)
	dt := &Triangulation{
		Vertices:                m.vertices,
		Triangles:               make([][3]int, numTriangles),
		Orientations:            make([]predicates.Orientation, numTriangles),
		IncidentTriangleIndices: make([]int, numTriangles*3),
		IncidentTriangleOffsets: make([]int, numVertices+1),
		Hull:                    b.hull,
		Stats:                   b.stats,
	}

	for i, tri := range m.triangles {
		dt.Triangles[i] = tri.V
		dt.Orientations[i] = tri.Orientation
		for _, v := range tri.V {
			dt.IncidentTriangleOffsets[v+1]++
		}
	}
	for i := range numVertices {
		dt.IncidentTriangleOffsets[i+1] += dt.IncidentTriangleOffsets[i]
	}

	nxt := make([]int, numVertices)
	copy(nxt, dt.IncidentTriangleOffsets[:numVertices])
	for i, tri := range dt.Triangles {
		for _, v := range tri {
			dt.IncidentTriangleIndices[nxt[v]] = i
			nxt[v]++
		}
	}

	for i := range numVertices {
		sortIncidentTriangleIndicesCCW(i, dt.IncidentTriangles(i), dt.Triangles)
	}
	return dt
}

// sortIncidentTriangleIndicesCCW orders the fan around vIdx counter-clockwise.
// Consecutive triangles share an edge: the previous vertex of one is the next
// vertex of the following one. An open fan starts at the triangle that has no
// clockwise neighbor.
func sortIncidentTriangleIndicesCCW(vIdx int, incidentTris []int, tris [][3]int) {
	n := len(incidentTris)
	for i := range n {
		nxt := NextVertex(tris[incidentTris[i]], vIdx)
		open := true
		for j := range n {
			if j != i && PrevVertex(tris[incidentTris[j]], vIdx) == nxt {
				open = false
				break
			}
		}
		if open {
			incidentTris[0], incidentTris[i] = incidentTris[i], incidentTris[0]
			break
		}
	}

	for i := 1; i < n; i++ {
		prv := PrevVertex(tris[incidentTris[i-1]], vIdx)
		for j := i; j < n; j++ {
			if NextVertex(tris[incidentTris[j]], vIdx) == prv {
				incidentTris[i], incidentTris[j] = incidentTris[j], incidentTris[i]
				break
			}
		}
	}
}

func PrevVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[2]
	case t[1]:
		return t[0]
	case t[2]:
		return t[1]
	}
	panic("PrevVertex: vIdx not in triangle")
}

func NextVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[1]
	case t[1]:
		return t[2]
	case t[2]:
		return t[0]
	}
	panic("NextVertex: vIdx not in triangle")
}
