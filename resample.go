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
	"math"
	"runtime"
)

// SampleGrid is a square, row-major matrix of elevation samples. Row
// 0 is the north edge and column 0 the west edge of the tile. Every
// cell holds either an elevation in meters or the NoData sentinel.
type SampleGrid struct {
	Samples int
	Data    []int16
}

// NewSampleGrid creates a samples × samples grid filled with zeros.
func NewSampleGrid(samples int) *SampleGrid {
	return &SampleGrid{
		Samples: samples,
		Data:    make([]int16, samples*samples),
	}
}

// Get returns the sample at the given row and column.
func (g *SampleGrid) Get(row, col int) int16 {
	return g.Data[row*g.Samples+col]
}

// Set sets the sample at the given row and column.
func (g *SampleGrid) Set(row, col int, v int16) {
	g.Data[row*g.Samples+col] = v
}

// ResampleOptions adjust how source elevations become samples.
type ResampleOptions struct {
	// Transform is applied to each valid source elevation before the
	// range policy. nil means no transformation.
	Transform *ElevTransform

	// RangePolicy selects the handling of elevations outside the
	// int16 sample range. The empty value means RangeReject.
	RangePolicy RangePolicy

	// Workers is the number of concurrent row workers. Values below 1
	// mean one worker per processor.
	Workers int
}

// Resample fills a sample grid from the source raster. Each
// destination cell is mapped to the local plane, back to geodetic
// coordinates through the inverse projection, and then into the
// source raster's own pixel space, where the nearest pixel supplies
// the elevation. Cells outside the raster, and cells whose source
// pixel carries no valid elevation, get the NoData sentinel; that is
// a normal outcome, not an error. A raster that cannot be read aborts
// the whole run and no grid is returned.
//
// Rows are distributed over the workers in strides, so each worker
// writes a disjoint set of rows and the result does not depend on
// scheduling.
func Resample(src RasterSource, grid *DestinationGrid, p *AEQD, opts ResampleOptions, msgLog chan string) (*SampleGrid, error) {
	t, err := p.TransformTo(src.SR())
	if err != nil {
		return nil, err
	}
	srcInv, err := src.Transform().Invert()
	if err != nil {
		return nil, &SourceUnavailableError{Err: err}
	}
	nx, ny := src.Size()
	nodata, hasNodata := src.NoData()

	n := grid.Spec.Samples
	out := NewSampleGrid(n)

	nprocs := opts.Workers
	if nprocs < 1 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	if nprocs > n {
		nprocs = n
	}
	if msgLog != nil {
		msgLog <- fmt.Sprintf("Resampling %d × %d samples with %d workers", n, n, nprocs)
	}

	errChan := make(chan error)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for rr := pp; rr < n; rr += nprocs {
				for cc := 0; cc < n; cc++ {
					x, y := grid.XY(rr, cc)
					X, Y, err := t(x, y)
					if err != nil {
						errChan <- fmt.Errorf("heightmap: while projecting grid cell (%d, %d): %v", rr, cc, err)
						return
					}
					colF, rowF := srcInv.XY(X, Y)
					col := int(math.Round(colF))
					row := int(math.Round(rowF))
					if col < 0 || col >= nx || row < 0 || row >= ny {
						out.Set(rr, cc, NoData)
						continue
					}
					v, err := src.At(col, row)
					if err != nil {
						errChan <- &SourceUnavailableError{Err: err}
						return
					}
					if math.IsNaN(v) || (hasNodata && v == nodata) {
						out.Set(rr, cc, NoData)
						continue
					}
					if opts.Transform != nil {
						v, err = opts.Transform.Apply(v)
						if err != nil {
							errChan <- err
							return
						}
					}
					s, err := quantize(v, rr, cc, opts.RangePolicy)
					if err != nil {
						errChan <- err
						return
					}
					out.Set(rr, cc, s)
				}
			}
			errChan <- nil
		}(pp)
	}
	var rerr error
	for pp := 0; pp < nprocs; pp++ {
		if err := <-errChan; err != nil && rerr == nil {
			rerr = err
		}
	}
	if rerr != nil {
		return nil, rerr
	}
	return out, nil
}

// quantize converts an elevation to an int16 sample under the given
// range policy. Values are truncated toward zero; -32768 is excluded
// from the valid range because it is the NoData sentinel.
func quantize(v float64, row, col int, policy RangePolicy) (int16, error) {
	if v > -32768 && v < 32768 {
		return int16(v), nil
	}
	if math.IsNaN(v) {
		// A transform expression turned a valid elevation into NaN.
		return 0, &ElevationRangeError{Row: row, Col: col, Value: v}
	}
	switch policy {
	case RangeClamp:
		if v < 0 {
			return -32767, nil
		}
		return 32767, nil
	case RangeReject, "":
		return 0, &ElevationRangeError{Row: row, Col: col, Value: v}
	default:
		return 0, fmt.Errorf("heightmap: unknown range policy %q", policy)
	}
}
