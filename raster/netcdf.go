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

package raster

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"

	"github.com/terrainmodel/heightmap"
)

// elevationNames are the variable names tried first when choosing the
// elevation variable of a NetCDF grid.
var elevationNames = []string{"z", "elevation", "height", "dem", "Band1"}

// NetCDFGrid is an elevation raster read from a NetCDF file. The file
// must hold a two-dimensional elevation variable whose dimensions
// each have a uniformly spaced coordinate vector; this is the layout
// COARDS-style tools and GDAL produce. Fill values are replaced with
// NaN when the file is read, so the whole grid lives in memory.
type NetCDFGrid struct {
	data   *sparse.DenseArray
	nx, ny int
	gt     heightmap.Affine
	sr     *proj.SR
}

// OpenNetCDF reads the NetCDF grid at filename into memory.
func OpenNetCDF(filename string) (*NetCDFGrid, error) {
	ff, err := os.Open(filename)
	if err != nil {
		return nil, &heightmap.SourceUnavailableError{Path: filename, Err: err}
	}
	defer ff.Close()
	nc, err := cdf.Open(ff)
	if err != nil {
		return nil, &heightmap.SourceUnavailableError{Path: filename, Err: err}
	}

	v, err := elevationVariable(nc)
	if err != nil {
		return nil, fmt.Errorf("raster: in file %s: %v", filename, err)
	}
	dims := nc.Header.Dimensions(v)
	lengths := nc.Header.Lengths(v)
	ny, nx := lengths[0], lengths[1]
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("raster: in file %s: variable %s has empty dimensions %v",
			filename, v, lengths)
	}

	// The coordinate vectors give the geometry: dims[1] varies along
	// a row and dims[0] from row to row.
	cols, err := readVector(nc, dims[1], nx)
	if err != nil {
		return nil, fmt.Errorf("raster: in file %s: %v", filename, err)
	}
	rows, err := readVector(nc, dims[0], ny)
	if err != nil {
		return nil, fmt.Errorf("raster: in file %s: %v", filename, err)
	}
	dx, err := vectorSpacing(cols, dims[1])
	if err != nil {
		return nil, fmt.Errorf("raster: in file %s: %v", filename, err)
	}
	dy, err := vectorSpacing(rows, dims[0])
	if err != nil {
		return nil, fmt.Errorf("raster: in file %s: %v", filename, err)
	}

	sr, err := gridSR(nc)
	if err != nil {
		return nil, fmt.Errorf("raster: in file %s: %v", filename, err)
	}

	g := &NetCDFGrid{
		data: sparse.ZerosDense(ny, nx),
		nx:   nx,
		ny:   ny,
		gt: heightmap.Affine{
			dx, 0, cols[0],
			0, dy, rows[0],
		},
		sr: sr,
	}

	r := nc.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, &heightmap.SourceUnavailableError{Path: filename, Err: err}
	}
	if err := toFloat64(buf, g.data.Elements); err != nil {
		return nil, fmt.Errorf("raster: in file %s: variable %s: %v", filename, v, err)
	}
	if fill, ok := attrValue(nc, v, "_FillValue"); ok {
		replaceWithNaN(g.data.Elements, fill)
	} else if fill, ok := attrValue(nc, v, "missing_value"); ok {
		replaceWithNaN(g.data.Elements, fill)
	}
	return g, nil
}

func (g *NetCDFGrid) SR() *proj.SR                { return g.sr }
func (g *NetCDFGrid) Transform() heightmap.Affine { return g.gt }
func (g *NetCDFGrid) Size() (nx, ny int)          { return g.nx, g.ny }
func (g *NetCDFGrid) NoData() (float64, bool)     { return 0, false }

func (g *NetCDFGrid) At(col, row int) (float64, error) {
	return g.data.Get(row, col), nil
}

// elevationVariable chooses the elevation variable: a two-dimensional
// variable whose dimensions both have coordinate vectors. Well-known
// elevation names win over file order.
func elevationVariable(nc *cdf.File) (string, error) {
	vars := make(map[string]bool)
	for _, v := range nc.Header.Variables() {
		vars[v] = true
	}
	var candidates []string
	for _, v := range nc.Header.Variables() {
		dims := nc.Header.Dimensions(v)
		if len(dims) != 2 {
			continue
		}
		if vars[dims[0]] && vars[dims[1]] {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no two-dimensional variable with coordinate vectors found")
	}
	for _, name := range elevationNames {
		for _, c := range candidates {
			if c == name {
				return c, nil
			}
		}
	}
	return candidates[0], nil
}

// gridSR returns the spatial reference of the grid from the global
// proj4 attribute, defaulting to geographic coordinates.
func gridSR(nc *cdf.File) (*proj.SR, error) {
	if a := nc.Header.GetAttribute("", "proj4"); a != nil {
		s, ok := a.(string)
		if !ok {
			return nil, fmt.Errorf("global attribute proj4 is not a string")
		}
		sr, err := proj.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("while parsing global attribute proj4: %v", err)
		}
		return sr, nil
	}
	return proj.Parse("+proj=longlat")
}

// readVector reads the one-dimensional coordinate variable v.
func readVector(nc *cdf.File, v string, n int) ([]float64, error) {
	lengths := nc.Header.Lengths(v)
	if len(lengths) != 1 || lengths[0] != n {
		return nil, fmt.Errorf("coordinate variable %s has lengths %v; want [%d]", v, lengths, n)
	}
	r := nc.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("while reading coordinate variable %s: %v", v, err)
	}
	out := make([]float64, n)
	if err := toFloat64(buf, out); err != nil {
		return nil, fmt.Errorf("coordinate variable %s: %v", v, err)
	}
	return out, nil
}

// vectorSpacing returns the spacing of a uniformly spaced coordinate
// vector. The spacing is negative for descending vectors.
func vectorSpacing(v []float64, name string) (float64, error) {
	if len(v) < 2 {
		return 0, fmt.Errorf("coordinate variable %s has fewer than 2 entries", name)
	}
	d := v[1] - v[0]
	if d == 0 {
		return 0, fmt.Errorf("coordinate variable %s has zero spacing", name)
	}
	for i := 2; i < len(v); i++ {
		if math.Abs(v[i]-v[i-1]-d) > math.Abs(d)*1.e-4 {
			return 0, fmt.Errorf("coordinate variable %s is not uniformly spaced "+
				"(spacing %g at 0 but %g at %d)", name, d, v[i]-v[i-1], i-1)
		}
	}
	return d, nil
}

// toFloat64 copies a slice read from a NetCDF variable into out.
func toFloat64(buf interface{}, out []float64) error {
	switch b := buf.(type) {
	case []float64:
		copy(out, b)
	case []float32:
		for i, x := range b {
			out[i] = float64(x)
		}
	case []int32:
		for i, x := range b {
			out[i] = float64(x)
		}
	case []int16:
		for i, x := range b {
			out[i] = float64(x)
		}
	case []uint8:
		for i, x := range b {
			out[i] = float64(x)
		}
	default:
		return fmt.Errorf("unsupported data type %T", buf)
	}
	return nil
}

// attrValue returns the numeric value of a variable attribute.
func attrValue(nc *cdf.File, v, a string) (float64, bool) {
	switch x := nc.Header.GetAttribute(v, a).(type) {
	case []float64:
		if len(x) > 0 {
			return x[0], true
		}
	case []float32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case []int32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case []int16:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	}
	return 0, false
}

// replaceWithNaN replaces fill values with NaN so that they become
// NoData samples.
func replaceWithNaN(data []float64, fill float64) {
	for i, v := range data {
		if v == fill {
			data[i] = math.NaN()
		}
	}
}
