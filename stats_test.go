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

import "testing"

func TestSummarize(t *testing.T) {
	const tolerance = 1.e-9

	g := NewSampleGrid(3)
	g.Data = []int16{100, 200, NoData, -50, 0, 300, NoData, 150, 50}
	s := Summarize(g)
	if s.Total != 9 || s.Valid != 7 {
		t.Errorf("total = %d, valid = %d; want 9 and 7", s.Total, s.Valid)
	}
	if s.Min != -50 || s.Max != 300 {
		t.Errorf("min = %d, max = %d; want -50 and 300", s.Min, s.Max)
	}
	if absDifferent(s.Mean, 750.0/7.0, tolerance) {
		t.Errorf("mean = %g; want %g", s.Mean, 750.0/7.0)
	}
}

func TestSummarizeStdDev(t *testing.T) {
	const tolerance = 1.e-9

	g := NewSampleGrid(2)
	g.Data = []int16{10, 20, 30, NoData}
	s := Summarize(g)
	// Sample standard deviation of {10, 20, 30} is exactly 10.
	if absDifferent(s.StdDev, 10, tolerance) {
		t.Errorf("standard deviation = %g; want 10", s.StdDev)
	}

	g.Data = []int16{42, NoData, NoData, NoData}
	if s := Summarize(g); s.StdDev != 0 {
		t.Errorf("standard deviation of a single sample = %g; want 0", s.StdDev)
	}
}

func TestSummarizeAllNodata(t *testing.T) {
	g := NewSampleGrid(3)
	for i := range g.Data {
		g.Data[i] = NoData
	}
	s := Summarize(g)
	if s.Valid != 0 || s.Total != 9 {
		t.Errorf("valid = %d, total = %d; want 0 and 9", s.Valid, s.Total)
	}
	if s.Min != 0 || s.Max != 0 || s.Mean != 0 || s.StdDev != 0 {
		t.Errorf("summary of an empty grid = %+v; want zero values", s)
	}
}
