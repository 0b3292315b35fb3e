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

// Package heightmap converts geodetic elevation rasters into square,
// regularly spaced elevation grids expressed in a local planar
// coordinate system, for use by renderers and terrain simulations
// that want locally flat geometry instead of geodetic coordinates.
//
// The local plane is an azimuthal equidistant projection centered at
// a configurable geodetic origin, so straight-line distances from the
// center of the output tile are true distances on the ground. Source
// rasters can be in any coordinate reference system; each destination
// sample is projected back to the source raster and filled by nearest
// neighbor lookup. The filled grid is serialized as headerless
// little-endian int16 samples with a JSON metadata sidecar describing
// the layout.
package heightmap

// Version gives the version number of this version of Heightmap.
const Version = "1.1.0"

// NoData is the sentinel elevation marking samples with no valid
// source coverage.
const NoData int16 = -32768

// Origin is the geodetic anchor of the local projection, in degrees.
type Origin struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GridSpec describes the extent and resolution of the output grid.
// SizeM is the span of the square tile in meters and Samples is the
// number of samples along each side. Sample spacing is
// SizeM / (Samples - 1), so Samples must be at least 2.
type GridSpec struct {
	SizeM   float64 `json:"size_m"`
	Samples int     `json:"samples"`
}

// Spacing returns the distance between neighboring sample centers in
// meters. It is only defined when Samples >= 2.
func (s GridSpec) Spacing() float64 {
	return s.SizeM / float64(s.Samples-1)
}

// CenterOffset shifts the center of the sampled square away from the
// projection origin, in meters on the local plane.
type CenterOffset struct {
	EastM  float64 `json:"east_m"`
	NorthM float64 `json:"north_m"`
}

// RangePolicy determines what happens to source elevations that do
// not fit in an int16 sample.
type RangePolicy string

const (
	// RangeReject treats an out-of-range elevation as a fatal data
	// quality error.
	RangeReject RangePolicy = "reject"

	// RangeClamp saturates out-of-range elevations to ±32767.
	// -32768 stays reserved for NoData.
	RangeClamp RangePolicy = "clamp"
)

// Config holds the information needed to run a conversion job.
type Config struct {
	Origin       Origin
	Grid         GridSpec
	CenterOffset CenterOffset

	// RasterPath is the location of the source elevation raster.
	RasterPath string

	// OutBin and OutMeta are the locations where the binary heightmap
	// and the metadata record will be written. They are recorded in
	// the metadata but not written by this package.
	OutBin  string
	OutMeta string

	// ElevExpr optionally transforms each valid source elevation
	// before encoding; see NewElevTransform.
	ElevExpr string

	// RangePolicy selects between RangeReject and RangeClamp. The
	// empty value means RangeReject.
	RangePolicy RangePolicy

	// Workers sets the number of concurrent resampling workers.
	// Values below 1 mean one worker per processor.
	Workers int
}
