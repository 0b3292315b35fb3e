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
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestDestinationGridCoordinates(t *testing.T) {
	g, err := NewDestinationGrid(GridSpec{SizeM: 200, Samples: 3}, CenterOffset{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Pixel != 100 {
		t.Errorf("pixel spacing = %g; want 100", g.Pixel)
	}
	want := [3][3][2]float64{
		{{-100, 100}, {0, 100}, {100, 100}},
		{{-100, 0}, {0, 0}, {100, 0}},
		{{-100, -100}, {0, -100}, {100, -100}},
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			x, y := g.XY(r, c)
			if x != want[r][c][0] || y != want[r][c][1] {
				t.Errorf("sample (%d, %d) = (%g, %g); want (%g, %g)",
					r, c, x, y, want[r][c][0], want[r][c][1])
			}
		}
	}
}

func TestDestinationGridOffset(t *testing.T) {
	g, err := NewDestinationGrid(GridSpec{SizeM: 200, Samples: 3},
		CenterOffset{EastM: 500, NorthM: -250})
	if err != nil {
		t.Fatal(err)
	}
	x, y := g.XY(1, 1)
	if x != 500 || y != -250 {
		t.Errorf("center sample = (%g, %g); want (500, -250)", x, y)
	}
	x, y = g.XY(0, 0)
	if x != 400 || y != -150 {
		t.Errorf("northwest sample = (%g, %g); want (400, -150)", x, y)
	}
}

func TestDestinationGridSpacing(t *testing.T) {
	cases := []GridSpec{
		{SizeM: 200, Samples: 3},
		{SizeM: 17000, Samples: 513},
		{SizeM: 1, Samples: 2},
		{SizeM: 30000, Samples: 4097},
	}
	for _, spec := range cases {
		g, err := NewDestinationGrid(spec, CenterOffset{})
		if err != nil {
			t.Fatal(err)
		}
		// The sample centers span the full grid size.
		west, _ := g.XY(0, 0)
		east, _ := g.XY(0, spec.Samples-1)
		if !floats.EqualWithinAbsOrRel(east-west, spec.SizeM, 1.e-9, 1.e-12) {
			t.Errorf("spec %+v: span = %g; want %g", spec, east-west, spec.SizeM)
		}
		if !floats.EqualWithinAbsOrRel(g.Pixel*float64(spec.Samples-1), spec.SizeM, 1.e-9, 1.e-12) {
			t.Errorf("spec %+v: pixel %g does not tile the grid", spec, g.Pixel)
		}
	}
}

// A zero-size grid is geometrically valid: every sample sits at the
// center offset.
func TestDestinationGridZeroSize(t *testing.T) {
	g, err := NewDestinationGrid(GridSpec{SizeM: 0, Samples: 3}, CenterOffset{EastM: 12, NorthM: 34})
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if x, y := g.XY(r, c); x != 12 || y != 34 {
				t.Errorf("sample (%d, %d) = (%g, %g); want (12, 34)", r, c, x, y)
			}
		}
	}
}

func TestDestinationGridInvalid(t *testing.T) {
	for _, samples := range []int{1, 0, -4} {
		_, err := NewDestinationGrid(GridSpec{SizeM: 200, Samples: samples}, CenterOffset{})
		if err == nil {
			t.Errorf("samples = %d: expected an error", samples)
			continue
		}
		if _, ok := err.(*InvalidGridSpecError); !ok {
			t.Errorf("samples = %d: error type %T; want *InvalidGridSpecError", samples, err)
		}
	}
}

func TestDestinationGridBounds(t *testing.T) {
	g, err := NewDestinationGrid(GridSpec{SizeM: 1000, Samples: 11},
		CenterOffset{EastM: 30, NorthM: -70})
	if err != nil {
		t.Fatal(err)
	}
	b := g.Bounds()
	if b.Min.X != -470 || b.Max.X != 530 || b.Min.Y != -570 || b.Max.Y != 430 {
		t.Errorf("bounds = %+v; want x [-470, 530], y [-570, 430]", b)
	}
}

func TestAffineInvert(t *testing.T) {
	A := Affine{2, 0.5, -10, -0.25, 3, 40}
	inv, err := A.Invert()
	if err != nil {
		t.Fatal(err)
	}
	for _, pt := range [][2]float64{{0, 0}, {3, 7}, {-12.5, 0.125}} {
		x, y := A.XY(pt[0], pt[1])
		col, row := inv.XY(x, y)
		if !floats.EqualWithinAbsOrRel(col, pt[0], 1.e-12, 1.e-12) ||
			!floats.EqualWithinAbsOrRel(row, pt[1], 1.e-12, 1.e-12) {
			t.Errorf("point %v: inverse gave (%g, %g)", pt, col, row)
		}
	}

	if _, err := Affine{1, 2, 0, 2, 4, 0}.Invert(); err == nil {
		t.Error("expected an error inverting a singular transform")
	}
}

func ExampleDestinationGrid() {
	g, err := NewDestinationGrid(GridSpec{SizeM: 200, Samples: 3}, CenterOffset{})
	if err != nil {
		panic(err)
	}
	x, y := g.XY(0, 2) // north edge, east edge
	fmt.Println(x, y)
	// Output: 100 100
}
