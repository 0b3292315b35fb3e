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
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/geom/proj"

	"github.com/terrainmodel/heightmap"
)

// ASCIIGrid is an elevation raster read from an Esri ASCII grid file,
// optionally gzip-compressed. Coordinates are taken to be geographic
// degrees. The first data row is the north edge of the grid.
type ASCIIGrid struct {
	data      []float64
	nx, ny    int
	gt        heightmap.Affine
	nodata    float64
	hasNodata bool
	sr        *proj.SR
}

// OpenASCIIGrid reads the ASCII grid at filename into memory, using
// gzip decompression if the name ends in .gz.
func OpenASCIIGrid(filename string) (*ASCIIGrid, error) {
	ff, err := os.Open(filename)
	if err != nil {
		return nil, &heightmap.SourceUnavailableError{Path: filename, Err: err}
	}
	defer ff.Close()
	var r io.Reader = ff
	if strings.HasSuffix(filename, ".gz") {
		zr, err := gzip.NewReader(ff)
		if err != nil {
			return nil, &heightmap.SourceUnavailableError{Path: filename, Err: err}
		}
		defer zr.Close()
		r = zr
	}
	g, err := readASCIIGrid(r)
	if err != nil {
		return nil, fmt.Errorf("raster: in file %s: %v", filename, err)
	}
	return g, nil
}

func readASCIIGrid(r io.Reader) (*ASCIIGrid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	next := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return scanner.Text(), true
	}

	g := new(ASCIIGrid)
	var xll, yll, cellsize float64
	var xCenter, yCenter bool
	seen := make(map[string]bool)
	var first string

	// The header is keyword-value pairs; the first token that is not
	// a keyword starts the data.
header:
	for {
		tok, ok := next()
		if !ok {
			return nil, fmt.Errorf("missing grid data")
		}
		key := strings.ToLower(tok)
		switch key {
		case "ncols", "nrows", "xllcorner", "xllcenter", "yllcorner", "yllcenter",
			"cellsize", "nodata_value":
		default:
			first = tok
			break header
		}
		val, ok := next()
		if !ok {
			return nil, fmt.Errorf("header entry %s has no value", tok)
		}
		seen[key] = true
		var err error
		switch key {
		case "ncols":
			g.nx, err = strconv.Atoi(val)
		case "nrows":
			g.ny, err = strconv.Atoi(val)
		case "xllcorner", "xllcenter":
			xll, err = strconv.ParseFloat(val, 64)
			xCenter = key == "xllcenter"
		case "yllcorner", "yllcenter":
			yll, err = strconv.ParseFloat(val, 64)
			yCenter = key == "yllcenter"
		case "cellsize":
			cellsize, err = strconv.ParseFloat(val, 64)
		case "nodata_value":
			g.nodata, err = strconv.ParseFloat(val, 64)
			g.hasNodata = true
		}
		if err != nil {
			return nil, fmt.Errorf("header entry %s has invalid value %q: %v", tok, val, err)
		}
	}
	for _, key := range []string{"ncols", "nrows", "cellsize"} {
		if !seen[key] {
			return nil, fmt.Errorf("header is missing %s", key)
		}
	}
	if !seen["xllcorner"] && !seen["xllcenter"] {
		return nil, fmt.Errorf("header is missing xllcorner or xllcenter")
	}
	if !seen["yllcorner"] && !seen["yllcenter"] {
		return nil, fmt.Errorf("header is missing yllcorner or yllcenter")
	}
	if g.nx < 1 || g.ny < 1 {
		return nil, fmt.Errorf("grid size %d × %d is invalid", g.nx, g.ny)
	}
	if cellsize <= 0 {
		return nil, fmt.Errorf("cellsize %g is invalid", cellsize)
	}

	x0 := xll
	if !xCenter {
		x0 += cellsize / 2
	}
	yTop := yll + float64(g.ny-1)*cellsize
	if !yCenter {
		yTop += cellsize / 2
	}
	g.gt = heightmap.Affine{
		cellsize, 0, x0,
		0, -cellsize, yTop,
	}

	g.data = make([]float64, g.nx*g.ny)
	tok := first
	for i := range g.data {
		if i > 0 {
			var ok bool
			if tok, ok = next(); !ok {
				return nil, fmt.Errorf("grid data ends after %d of %d values", i, len(g.data))
			}
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid grid value %q: %v", tok, err)
		}
		g.data[i] = v
	}
	if _, ok := next(); ok {
		return nil, fmt.Errorf("grid data holds more than %d values", len(g.data))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var err error
	g.sr, err = proj.Parse("+proj=longlat")
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *ASCIIGrid) SR() *proj.SR                { return g.sr }
func (g *ASCIIGrid) Transform() heightmap.Affine { return g.gt }
func (g *ASCIIGrid) Size() (nx, ny int)          { return g.nx, g.ny }
func (g *ASCIIGrid) NoData() (float64, bool)     { return g.nodata, g.hasNodata }

func (g *ASCIIGrid) At(col, row int) (float64, error) {
	return g.data[row*g.nx+col], nil
}
