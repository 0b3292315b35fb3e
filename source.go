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

import "github.com/ctessum/geom/proj"

// RasterSource provides read access to a single band of gridded
// elevation data in the raster's own coordinate reference system.
// Implementations are in the raster package.
type RasterSource interface {
	// SR returns the raster's spatial reference.
	SR() *proj.SR

	// Transform returns the affine mapping from pixel indices
	// (col, row) to coordinates in the raster's spatial reference.
	// Indices refer to pixel centers.
	Transform() Affine

	// Size returns the raster dimensions in pixels.
	Size() (nx, ny int)

	// At returns the elevation at the given pixel. Pixels without
	// valid coverage are NaN. A non-nil error means the raster could
	// not be read and the whole run must be abandoned.
	At(col, row int) (float64, error)

	// NoData returns the raster's declared missing-data value, if it
	// has one. Values equal to it are treated the same as NaN.
	NoData() (float64, bool)
}
