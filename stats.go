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

import "github.com/GaryBoone/GoStats/stats"

// Summary describes the valid samples in a grid.
type Summary struct {
	// Valid is the number of cells holding an elevation rather than
	// the NoData sentinel, out of Total cells.
	Valid, Total int

	// Min, Max, Mean and StdDev describe the valid samples. They are
	// only meaningful when Valid > 0 (StdDev when Valid > 1).
	Min, Max     int16
	Mean, StdDev float64
}

// Summarize computes summary statistics over the valid samples in g.
func Summarize(g *SampleGrid) Summary {
	var d stats.Stats
	for _, v := range g.Data {
		if v == NoData {
			continue
		}
		d.Update(float64(v))
	}
	s := Summary{Valid: d.Count(), Total: len(g.Data)}
	if s.Valid > 0 {
		s.Min = int16(d.Min())
		s.Max = int16(d.Max())
		s.Mean = d.Mean()
	}
	if s.Valid > 1 {
		s.StdDev = d.SampleStandardDeviation()
	}
	return s
}
