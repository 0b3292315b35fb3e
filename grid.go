/*
Copyright © 2018 the Heightmap authors.
This file is part of Heightmap.

Heightmap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Heightmap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Heightmap.  If not, see <http://www.gnu.org/licenses/>.
*/

package heightmap

import (
	"fmt"

	"github.com/ctessum/geom"
)

// Affine maps sample indices to planar coordinates. It is stored as
// (a, b, c, d, e, f) where a point at column col and row row maps to
//	x = a*col + b*row + c
//	y = d*col + e*row + f
// Indices refer to sample centers.
type Affine [6]float64

// XY returns the planar coordinate of the sample at (col, row).
func (A Affine) XY(col, row float64) (x, y float64) {
	x = A[0]*col + A[1]*row + A[2]
	y = A[3]*col + A[4]*row + A[5]
	return
}

// Invert returns the affine mapping planar coordinates back to
// fractional sample indices. It fails if the transform collapses the
// plane onto a line.
func (A Affine) Invert() (Affine, error) {
	det := A[0]*A[4] - A[1]*A[3]
	if det == 0 {
		return Affine{}, fmt.Errorf("heightmap: affine transform %v is not invertible", A)
	}
	a := A[4] / det
	b := -A[1] / det
	d := -A[3] / det
	e := A[0] / det
	return Affine{
		a, b, -a*A[2] - b*A[5],
		d, e, -d*A[2] - e*A[5],
	}, nil
}

// DestinationGrid is the geometry of the output sampling grid: a
// square of Spec.Samples × Spec.Samples sample points on the local
// plane, Spec.SizeM meters across, centered on Offset. Row 0 is the
// north edge and column 0 the west edge. The grid is a pure function
// of its inputs and is never mutated after creation.
type DestinationGrid struct {
	Spec   GridSpec
	Offset CenterOffset

	// Pixel is the spacing between neighboring sample centers [m].
	Pixel float64

	// Transform maps (col, row) sample indices to local plane
	// coordinates.
	Transform Affine
}

// NewDestinationGrid builds the output grid geometry for the given
// specification. Fewer than two samples per side leaves the sample
// spacing undefined, so such specs are rejected before any sampling
// can happen.
func NewDestinationGrid(spec GridSpec, offset CenterOffset) (*DestinationGrid, error) {
	if spec.Samples < 2 {
		return nil, &InvalidGridSpecError{
			Reason: fmt.Sprintf("need at least 2 samples per side, got %d", spec.Samples),
		}
	}
	pixel := spec.Spacing()
	x0 := offset.EastM - spec.SizeM/2
	y0 := offset.NorthM + spec.SizeM/2
	return &DestinationGrid{
		Spec:   spec,
		Offset: offset,
		Pixel:  pixel,
		Transform: Affine{
			pixel, 0, x0,
			0, -pixel, y0,
		},
	}, nil
}

// XY returns the local plane coordinate of the sample at the given
// row and column.
func (g *DestinationGrid) XY(row, col int) (x, y float64) {
	return g.Transform.XY(float64(col), float64(row))
}

// Bounds returns the extent of the sample centers on the local plane.
func (g *DestinationGrid) Bounds() *geom.Bounds {
	west, south := g.XY(g.Spec.Samples-1, 0)
	east, north := g.XY(0, g.Spec.Samples-1)
	return &geom.Bounds{
		Min: geom.Point{X: west, Y: south},
		Max: geom.Point{X: east, Y: north},
	}
}
