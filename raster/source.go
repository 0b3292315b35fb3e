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

// Package raster opens geodetic elevation rasters as heightmap
// sources. Three formats are supported: NetCDF grids with coordinate
// vectors, SRTM .hgt tiles (single files or directories holding a
// tile mosaic), and Esri ASCII grids.
package raster

import (
	"fmt"
	"os"
	"strings"

	"github.com/terrainmodel/heightmap"
)

// Open opens the raster at path, choosing the format from the path
// itself: a directory is an SRTM tile mosaic, a .hgt file a single
// SRTM tile, a .nc file a NetCDF grid, and a .asc or .asc.gz file an
// Esri ASCII grid.
func Open(path string) (heightmap.RasterSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &heightmap.SourceUnavailableError{Path: path, Err: err}
	}
	if info.IsDir() {
		return OpenSRTMDir(path)
	}
	switch {
	case strings.HasSuffix(path, ".hgt"):
		return OpenSRTM(path)
	case strings.HasSuffix(path, ".nc"):
		return OpenNetCDF(path)
	case strings.HasSuffix(path, ".asc"), strings.HasSuffix(path, ".asc.gz"):
		return OpenASCIIGrid(path)
	default:
		return nil, fmt.Errorf("raster: unsupported format %q; want a directory "+
			"or a .hgt, .nc, .asc or .asc.gz file", path)
	}
}
