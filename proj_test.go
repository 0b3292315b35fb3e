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
	"math"
	"testing"

	"github.com/ctessum/geom/proj"
)

// metersPerDegree is the great-circle length of one degree of
// latitude on the spherical earth model.
const metersPerDegree = earthRadius * math.Pi / 180

func TestAEQDOriginExact(t *testing.T) {
	origins := []Origin{
		{Lat: 0, Lon: 0},
		{Lat: 47.3769, Lon: 8.5417},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 69.6496, Lon: 18.9560},
	}
	for _, o := range origins {
		p := NewAEQD(o)
		x, y := p.Forward(o.Lat, o.Lon)
		if x != 0 || y != 0 {
			t.Errorf("origin %+v: forward(origin) = (%g, %g); want exactly (0, 0)", o, x, y)
		}
		lat, lon := p.Inverse(0, 0)
		if lat != o.Lat || lon != o.Lon {
			t.Errorf("origin %+v: inverse(0, 0) = (%g, %g); want the origin exactly", o, lat, lon)
		}
	}
}

func TestAEQDRoundTrip(t *testing.T) {
	const angularTolerance = 1.e-9 // degrees

	origins := []Origin{
		{Lat: 0, Lon: 0},
		{Lat: 46.5, Lon: 7.98},
		{Lat: -13.1631, Lon: -72.545},
		{Lat: 63.0, Lon: -151.0},
	}
	// Offsets within a few kilometers of the origin, in degrees.
	offsets := [][2]float64{
		{0.001, 0.002},
		{-0.01, 0.01},
		{0.02, -0.015},
		{-0.004, -0.03},
		{0.0001, 0},
		{0, -0.0001},
	}
	for _, o := range origins {
		p := NewAEQD(o)
		for _, d := range offsets {
			lat := o.Lat + d[0]
			lon := o.Lon + d[1]
			x, y := p.Forward(lat, lon)
			lat2, lon2 := p.Inverse(x, y)
			if absDifferent(lat, lat2, angularTolerance) || absDifferent(lon, lon2, angularTolerance) {
				t.Errorf("origin %+v point (%g, %g): round trip gave (%g, %g)",
					o, lat, lon, lat2, lon2)
			}
		}
	}
}

func TestAEQDDistances(t *testing.T) {
	const tolerance = 1.e-6 // meters

	p := NewAEQD(Origin{Lat: 0, Lon: 0})

	// One hundredth of a degree due north.
	x, y := p.Forward(0.01, 0)
	if absDifferent(x, 0, tolerance) {
		t.Errorf("due north x = %g; want 0", x)
	}
	if absDifferent(y, 0.01*metersPerDegree, tolerance) {
		t.Errorf("due north y = %g; want %g", y, 0.01*metersPerDegree)
	}

	// Due east along the equator covers the same distance.
	x, y = p.Forward(0, 0.01)
	if absDifferent(x, 0.01*metersPerDegree, tolerance) {
		t.Errorf("due east x = %g; want %g", x, 0.01*metersPerDegree)
	}
	if absDifferent(y, 0, tolerance) {
		t.Errorf("due east y = %g; want 0", y)
	}

	// The azimuthal equidistant property: planar distance from the
	// origin equals great-circle distance, here for a diagonal point.
	x, y = p.Forward(0.01, 0.01)
	lat2, lon2 := 0.01*deg2rad, 0.01*deg2rad
	want := earthRadius * math.Acos(math.Cos(lat2)*math.Cos(lon2))
	if absDifferent(math.Hypot(x, y), want, 1.e-4) {
		t.Errorf("diagonal distance = %g; want %g", math.Hypot(x, y), want)
	}
}

func TestAEQDQuadrants(t *testing.T) {
	p := NewAEQD(Origin{Lat: 46.5, Lon: 7.98})
	cases := []struct {
		dLat, dLon           float64
		xPositive, yPositive bool
	}{
		{0.01, 0.01, true, true},
		{0.01, -0.01, false, true},
		{-0.01, 0.01, true, false},
		{-0.01, -0.01, false, false},
	}
	for _, c := range cases {
		x, y := p.Forward(46.5+c.dLat, 7.98+c.dLon)
		if (x > 0) != c.xPositive || (y > 0) != c.yPositive {
			t.Errorf("offset (%g, %g): got (%g, %g); want signs (%v, %v)",
				c.dLat, c.dLon, x, y, c.xPositive, c.yPositive)
		}
	}
}

// A polar origin is geometrically degenerate but must still produce
// finite results rather than NaN.
func TestAEQDPolarOriginFinite(t *testing.T) {
	p := NewAEQD(Origin{Lat: 90, Lon: 0})
	for _, pt := range [][2]float64{{89.99, 0}, {89.99, 90}, {90, 0}} {
		x, y := p.Forward(pt[0], pt[1])
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			t.Errorf("forward(%g, %g) = (%g, %g); want finite", pt[0], pt[1], x, y)
		}
		lat, lon := p.Inverse(x, y)
		if math.IsNaN(lat) || math.IsNaN(lon) {
			t.Errorf("inverse(%g, %g) = (%g, %g); want finite", x, y, lat, lon)
		}
	}
	// Far beyond tile scale, results stay finite even where they are
	// geometrically meaningless.
	lat, lon := p.Inverse(3.e7, -2.5e7)
	if math.IsNaN(lat) || math.IsNaN(lon) {
		t.Errorf("inverse far from origin = (%g, %g); want finite", lat, lon)
	}
}

func TestAEQDAntimeridian(t *testing.T) {
	const angularTolerance = 1.e-9

	p := NewAEQD(Origin{Lat: -16.9, Lon: 179.99})
	x, y := p.Forward(-16.9, -179.99) // 0.02 degrees east across the date line
	if x < 0 || math.Abs(x) > 0.03*metersPerDegree {
		t.Errorf("crossing the date line gave x = %g; want a short eastward step", x)
	}
	lat, lon := p.Inverse(x, y)
	if absDifferent(lat, -16.9, angularTolerance) || absDifferent(lon, -179.99, angularTolerance) {
		t.Errorf("round trip across the date line gave (%g, %g)", lat, lon)
	}
}

func TestAEQDTransformTo(t *testing.T) {
	const angularTolerance = 1.e-9

	longlat, err := proj.Parse("+proj=longlat")
	if err != nil {
		t.Fatal(err)
	}
	p := NewAEQD(Origin{Lat: 46.5, Lon: 7.98})
	tr, err := p.TransformTo(longlat)
	if err != nil {
		t.Fatal(err)
	}
	x, y := p.Forward(46.51, 7.99)
	gotLon, gotLat, err := tr(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(gotLat, 46.51, angularTolerance) || absDifferent(gotLon, 7.99, angularTolerance) {
		t.Errorf("transform to geographic gave (%g, %g); want (46.51, 7.99)", gotLat, gotLon)
	}
}

func absDifferent(a, b, tolerance float64) bool {
	if math.Abs(a-b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}
