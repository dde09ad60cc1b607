// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r2voronoi

import (
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Relax applies steps iterations of Lloyd relaxation: every site moves to the
// centroid of its cell and the diagram is rebuilt with the same options.
// Cells are clipped to the bounding box of the sites before relaxation, since
// cells next to the boundary sites extend far beyond the data. The clipped
// cells tile the box, so the relaxed sites stay distinct and inside it.
// Site heights are kept.
func (d *Diagram) Relax(steps int) error {
	if steps < 0 {
		return errors.Newf("Relax: steps must be non-negative, got %d", steps)
	}

	bounds := r2.EmptyRect()
	for _, s := range d.Sites {
		bounds = bounds.AddPoint(r2.Point{X: s.X, Y: s.Y})
	}

	for step := range steps {
		sites := make([]r3.Vector, d.NumCells())
		for i := range sites {
			site := d.Sites[i]
			area, c := polygonAreaCentroid(Cell{idx: i, d: d}.ClippedPolygon(bounds))
			if area <= 0 {
				sites[i] = site
				continue
			}
			c = bounds.ClampPoint(c)
			sites[i] = r3.Vector{X: c.X, Y: c.Y, Z: site.Z}
		}

		nd, err := newDiagram(sites, d.opts)
		if err != nil {
			return errors.Wrapf(err, "relaxation step %d", step)
		}
		*d = *nd
	}
	return nil
}
