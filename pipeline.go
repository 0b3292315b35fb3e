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

// Run executes a conversion job against an already opened raster
// source and returns the filled sample grid together with its
// metadata record. It performs no file I/O and keeps no process
// state, so identical inputs always produce identical results.
//
// Any returned error is fatal for the job: either the grid spec is
// unusable (InvalidGridSpecError), the source raster failed
// (SourceUnavailableError), or the elevation data violated the range
// policy (ElevationRangeError). Callers must not write partial output
// in any of those cases.
//
// Progress messages are sent on msgLog if it is non-nil.
func Run(cfg *Config, src RasterSource, msgLog chan string) (*SampleGrid, Metadata, error) {
	grid, err := NewDestinationGrid(cfg.Grid, cfg.CenterOffset)
	if err != nil {
		return nil, Metadata{}, err
	}
	opts := ResampleOptions{
		RangePolicy: cfg.RangePolicy,
		Workers:     cfg.Workers,
	}
	if cfg.ElevExpr != "" {
		opts.Transform, err = NewElevTransform(cfg.ElevExpr)
		if err != nil {
			return nil, Metadata{}, err
		}
	}
	g, err := Resample(src, grid, NewAEQD(cfg.Origin), opts, msgLog)
	if err != nil {
		return nil, Metadata{}, err
	}
	return g, NewMetadata(cfg, g), nil
}
