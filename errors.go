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

import "fmt"

// InvalidGridSpecError reports a grid specification that cannot
// produce a usable sampling grid, for example fewer than two samples
// per side. It aborts a run before any sampling happens.
type InvalidGridSpecError struct {
	Reason string
}

func (e *InvalidGridSpecError) Error() string {
	return "heightmap: invalid grid spec: " + e.Reason
}

// SourceUnavailableError reports a source raster that could not be
// opened or read. It is fatal for the whole run; no partial output is
// produced.
type SourceUnavailableError struct {
	Path string
	Err  error
}

func (e *SourceUnavailableError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("heightmap: source raster unavailable: %v", e.Err)
	}
	return fmt.Sprintf("heightmap: source raster %s unavailable: %v", e.Path, e.Err)
}

// ElevationRangeError reports a source elevation that does not fit in
// an int16 sample under the RangeReject policy.
type ElevationRangeError struct {
	Row, Col int
	Value    float64
}

func (e *ElevationRangeError) Error() string {
	return fmt.Sprintf("heightmap: elevation %g at grid cell (%d, %d) is outside the int16 sample range",
		e.Value, e.Row, e.Col)
}
