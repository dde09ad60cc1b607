// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package r2voronoi implements planar Voronoi diagrams, built as the dual of a
// Delaunay triangulation.
//
// Sites are r3.Vector values: X and Y place the site in the plane, Z is an
// opaque height that is carried through to the cell unchanged. Unbounded cells
// are closed by auxiliary boundary sites placed far outside the data; they
// take part in the triangulation but produce no cells.
package r2voronoi

import (
	"context"
	"runtime"
	"slices"

	"github.com/2dChan/r2voronoi/predicates"
	"github.com/2dChan/r2voronoi/r2delaunay"
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultEps   = 1e-12
	defaultScale = 5
)

var (
	ErrInsufficientSites  = r2delaunay.ErrInsufficientSites
	ErrDegenerateInput    = r2delaunay.ErrDegenerateInput
	ErrDegenerateTriangle = predicates.ErrDegenerateTriangle
	// ErrUnboundedCell is returned when the boundary sites leave a real site on
	// the convex hull of the triangulation, so its cell cannot be closed.
	ErrUnboundedCell = errors.New("r2voronoi: boundary sites do not enclose site")
)

// Diagram is a planar Voronoi diagram. Cells are indexed like the input sites.
type Diagram struct {
	Sites []r3.Vector
	// BoundarySites follow Sites in the triangulation's vertex numbering.
	BoundarySites []r2.Point
	// Vertices holds the circumcenter of every triangle of Triangulation,
	// lifted to the plane height.
	Vertices []r3.Vector

	// NOTE: Sort in CCW per Cell.
	CellVertices []int
	// NOTE: CellNeighbors[CellOffsets[i]+j] is the site across the edge from
	// vertex j to vertex j+1 of cell i, or -1 for a boundary site.
	CellNeighbors []int
	CellOffsets   []int

	Triangulation *r2delaunay.Triangulation

	opts DiagramOptions
}

type DiagramOptions struct {
	Eps         float64
	Boundary    BoundaryStrategy
	PlaneHeight float64
	Workers     int
	Logger      *zap.Logger
}

type DiagramOption func(*DiagramOptions) error

// WithEps sets the relative tolerance of the triangulation's in-circle test.
func WithEps(eps float64) DiagramOption {
	return func(o *DiagramOptions) error {
		if eps <= 0 || eps >= 1 {
			return errors.Newf("WithEps: eps must be in (0, 1), got %v", eps)
		}
		o.Eps = eps
		return nil
	}
}

// WithBoundary sets how boundary sites are placed around the data.
func WithBoundary(b BoundaryStrategy) DiagramOption {
	return func(o *DiagramOptions) error {
		if b == nil {
			return errors.New("WithBoundary: strategy must be non-nil")
		}
		o.Boundary = b
		return nil
	}
}

// WithPlaneHeight sets the Z coordinate of the diagram's vertices.
func WithPlaneHeight(z float64) DiagramOption {
	return func(o *DiagramOptions) error {
		o.PlaneHeight = z
		return nil
	}
}

// WithWorkers sets the number of goroutines computing circumcenters.
func WithWorkers(n int) DiagramOption {
	return func(o *DiagramOptions) error {
		if n <= 0 {
			return errors.Newf("WithWorkers: n must be positive, got %d", n)
		}
		o.Workers = n
		return nil
	}
}

func WithLogger(logger *zap.Logger) DiagramOption {
	return func(o *DiagramOptions) error {
		if logger == nil {
			return errors.New("WithLogger: logger must be non-nil")
		}
		o.Logger = logger
		return nil
	}
}

func (d *Diagram) NumCells() int {
	return len(d.Sites)
}

// Cell returns the cell of the site at index i.
// It returns an error if the index is out of range.
func (d *Diagram) Cell(i int) (Cell, error) {
	if i < 0 || i >= d.NumCells() {
		return Cell{}, errors.Newf("Cell: index %d out of range [0 %d)", i, d.NumCells())
	}
	return Cell{idx: i, d: d}, nil
}

// Cells returns every cell as a self-contained VoronoiCell, in site order.
func (d *Diagram) Cells() []VoronoiCell {
	cells := make([]VoronoiCell, d.NumCells())
	for i := range cells {
		c := Cell{idx: i, d: d}
		cells[i] = VoronoiCell{
			SitePosition:  c.Site(),
			BoundaryEdges: c.Edges(),
		}
	}
	return cells
}

// GenerateVoronoiDiagram returns one cell per site, in input order.
func GenerateVoronoiDiagram(sites []r3.Vector, setters ...DiagramOption) ([]VoronoiCell, error) {
	d, err := NewDiagram(sites, setters...)
	if err != nil {
		return nil, err
	}
	return d.Cells(), nil
}

// GenerateDiagrams builds a diagram for each site set. The sets are
// independent and triangulated concurrently, at most GOMAXPROCS at a time.
// Each set computes its circumcenters on one goroutine unless setters
// include WithWorkers.
func GenerateDiagrams(ctx context.Context, siteSets [][]r3.Vector, setters ...DiagramOption) ([]*Diagram, error) {
	setters = append([]DiagramOption{WithWorkers(1)}, setters...)
	diagrams := make([]*Diagram, len(siteSets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, sites := range siteSets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := NewDiagram(sites, setters...)
			if err != nil {
				return errors.Wrapf(err, "site set %d", i)
			}
			diagrams[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return diagrams, nil
}

// NewDiagram computes the Voronoi diagram of sites.
// NOTE: At least 3 distinct sites are required, not all collinear in XY.
func NewDiagram(sites []r3.Vector, setters ...DiagramOption) (*Diagram, error) {
	opts := DiagramOptions{
		Eps:      defaultEps,
		Boundary: StarBoundary{Scale: defaultScale},
		Workers:  runtime.GOMAXPROCS(0),
		Logger:   zap.NewNop(),
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	return newDiagram(sites, opts)
}

func newDiagram(sites []r3.Vector, opts DiagramOptions) (*Diagram, error) {
	points := make([]r2.Point, len(sites))
	for i, s := range sites {
		points[i] = r2.Point{X: s.X, Y: s.Y}
	}
	if err := r2delaunay.ValidateSites(points); err != nil {
		return nil, err
	}

	boundary, err := opts.Boundary.BoundarySites(points)
	if err != nil {
		return nil, err
	}
	all := append(slices.Clip(points), boundary...)

	dt, err := r2delaunay.NewTriangulation(all,
		r2delaunay.WithEps(opts.Eps),
		r2delaunay.WithLogger(opts.Logger))
	if err != nil {
		return nil, errors.Wrap(err, "triangulating sites")
	}

	numCells := len(sites)
	d := &Diagram{
		Sites:         slices.Clone(sites),
		BoundarySites: boundary,
		CellOffsets:   make([]int, numCells+1),
		Triangulation: dt,
		opts:          opts,
	}

	d.Vertices, err = circumcenters(dt, opts.Workers, opts.PlaneHeight)
	if err != nil {
		return nil, err
	}

	onHull := make([]bool, len(all))
	for _, v := range dt.Hull {
		onHull[v] = true
	}
	for vIdx := range numCells {
		if onHull[vIdx] {
			return nil, errors.Wrapf(ErrUnboundedCell, "site %d at %v", vIdx, sites[vIdx])
		}
		it := dt.IncidentTriangles(vIdx)
		d.CellOffsets[vIdx+1] = d.CellOffsets[vIdx] + len(it)
		for _, tIdx := range it {
			neighbor := r2delaunay.PrevVertex(dt.Triangles[tIdx], vIdx)
			if neighbor >= numCells {
				neighbor = -1
			}
			d.CellVertices = append(d.CellVertices, tIdx)
			d.CellNeighbors = append(d.CellNeighbors, neighbor)
		}
	}

	opts.Logger.Debug("voronoi diagram built",
		zap.Int("cells", numCells),
		zap.Int("boundarySites", len(boundary)),
		zap.Int("vertices", len(d.Vertices)),
		zap.Int("workers", opts.Workers))
	return d, nil
}

// circumcenters computes the circumcenter of every triangle, splitting the
// triangles into one contiguous chunk per worker.
func circumcenters(dt *r2delaunay.Triangulation, workers int, height float64) ([]r3.Vector, error) {
	n := len(dt.Triangles)
	vertices := make([]r3.Vector, n)
	chunk := max((n+workers-1)/workers, 1)

	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				a, b, c := dt.TriangleVertices(i)
				cc, err := predicates.Circumcenter(a, b, c)
				if err != nil {
					tri := dt.Triangles[i]
					err = errors.Wrapf(err, "triangle %d (sites %d, %d, %d)", i, tri[0], tri[1], tri[2])
					return errors.WithDetailf(err, "orientation %v", dt.Orientations[i])
				}
				vertices[i] = r3.Vector{X: cc.X, Y: cc.Y, Z: height}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vertices, nil
}
