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
	"encoding/binary"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeTile writes a synthetic n × n .hgt tile.
func writeTile(t *testing.T, dir, name string, n int, fill func(col, row int) int16) {
	b := make([]byte, 2*n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			binary.BigEndian.PutUint16(b[2*(row*n+col):], uint16(fill(col, row)))
		}
	}
	if err := ioutil.WriteFile(filepath.Join(dir, name), b, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenSRTM(t *testing.T) {
	dir, err := ioutil.TempDir("", "heightmap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	writeTile(t, dir, "N46E007.hgt", 11, func(col, row int) int16 {
		return int16(col*100 + row)
	})

	m, err := OpenSRTM(filepath.Join(dir, "N46E007.hgt"))
	if err != nil {
		t.Fatal(err)
	}
	nx, ny := m.Size()
	if nx != 11 || ny != 11 {
		t.Fatalf("size = %d × %d; want 11 × 11", nx, ny)
	}
	gt := m.Transform()
	want := [6]float64{0.1, 0, 7, 0, -0.1, 47}
	for i := range want {
		if absDifferent(gt[i], want[i], testTolerance) {
			t.Errorf("transform[%d] = %g; want %g", i, gt[i], want[i])
		}
	}
	if v, _ := m.At(3, 2); v != 302 {
		t.Errorf("pixel (3, 2) = %g; want 302", v)
	}
	if v, _ := m.At(0, 0); v != 0 {
		t.Errorf("northwest pixel = %g; want 0", v)
	}
	if nodata, ok := m.NoData(); !ok || nodata != -32768 {
		t.Errorf("nodata = %g, %v; want -32768, true", nodata, ok)
	}
}

func TestOpenSRTMDir(t *testing.T) {
	dir, err := ioutil.TempDir("", "heightmap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	// Two neighboring tiles; values encode the tile and the pixel.
	writeTile(t, dir, "N46E007.hgt", 11, func(col, row int) int16 {
		return int16(1000 + col*10 + row)
	})
	writeTile(t, dir, "N46E008.hgt", 11, func(col, row int) int16 {
		return int16(2000 + col*10 + row)
	})

	m, err := OpenSRTMDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	nx, ny := m.Size()
	if nx != 21 || ny != 11 {
		t.Fatalf("size = %d × %d; want 21 × 11", nx, ny)
	}
	gt := m.Transform()
	want := [6]float64{0.1, 0, 7, 0, -0.1, 47}
	for i := range want {
		if absDifferent(gt[i], want[i], testTolerance) {
			t.Errorf("transform[%d] = %g; want %g", i, gt[i], want[i])
		}
	}

	if v, _ := m.At(3, 2); v != 1032 {
		t.Errorf("pixel (3, 2) = %g; want 1032 from the western tile", v)
	}
	// The shared edge column belongs to the eastern tile; both tiles
	// sample the same meridian there.
	if v, _ := m.At(10, 0); v != 2000 {
		t.Errorf("pixel (10, 0) = %g; want 2000 from the eastern tile", v)
	}
	if v, _ := m.At(12, 4); v != 2024 {
		t.Errorf("pixel (12, 4) = %g; want 2024 from the eastern tile", v)
	}
	// The last column and row fold back into the last tile.
	if v, _ := m.At(20, 10); v != 2110 {
		t.Errorf("pixel (20, 10) = %g; want 2110", v)
	}
}

// A mosaic may have holes; samples over a hole have no coverage.
func TestSRTMMosaicHole(t *testing.T) {
	dir, err := ioutil.TempDir("", "heightmap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	writeTile(t, dir, "N46E007.hgt", 11, func(col, row int) int16 { return 500 })
	writeTile(t, dir, "N46E009.hgt", 11, func(col, row int) int16 { return 700 })

	m, err := OpenSRTMDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	nx, _ := m.Size()
	if nx != 31 {
		t.Fatalf("nx = %d; want 31", nx)
	}
	if v, _ := m.At(5, 5); v != 500 {
		t.Errorf("pixel over E007 = %g; want 500", v)
	}
	if v, err := m.At(15, 5); err != nil || !math.IsNaN(v) {
		t.Errorf("pixel over the hole = %g, %v; want NaN and no error", v, err)
	}
	if v, _ := m.At(25, 5); v != 700 {
		t.Errorf("pixel over E009 = %g; want 700", v)
	}
}

func TestSRTMMixedResolution(t *testing.T) {
	dir, err := ioutil.TempDir("", "heightmap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	writeTile(t, dir, "N46E007.hgt", 11, func(col, row int) int16 { return 500 })
	writeTile(t, dir, "N46E008.hgt", 5, func(col, row int) int16 { return 700 })

	m, err := OpenSRTMDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.At(15, 5); err == nil {
		t.Error("expected an error reading a tile with a different resolution")
	}
}

func TestReadTileErrors(t *testing.T) {
	dir, err := ioutil.TempDir("", "heightmap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	if err := ioutil.WriteFile(filepath.Join(dir, "odd.hgt"), []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readTile(filepath.Join(dir, "odd.hgt")); err == nil {
		t.Error("expected an error for an odd byte count")
	}

	if err := ioutil.WriteFile(filepath.Join(dir, "rect.hgt"), make([]byte, 16), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readTile(filepath.Join(dir, "rect.hgt")); err == nil {
		t.Error("expected an error for a non-square sample count")
	}

	if _, err := OpenSRTM(filepath.Join(dir, "odd.hgt")); err == nil {
		t.Error("expected an error for a file name without a tile corner")
	}

	if _, err := OpenSRTMDir(dir); err == nil {
		t.Error("expected an error for a directory without tiles")
	}
}

func TestTileNames(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon int
	}{
		{"N46E007.hgt", 46, 7},
		{"S34W071.hgt", -34, -71},
		{"N00E000.hgt", 0, 0},
		{"N59W151.hgt", 59, -151},
	}
	for _, c := range cases {
		lat, lon, ok := parseTileName(c.name)
		if !ok || lat != c.lat || lon != c.lon {
			t.Errorf("parseTileName(%q) = %d, %d, %v; want %d, %d, true",
				c.name, lat, lon, ok, c.lat, c.lon)
		}
		if got := TileName(c.lat, c.lon); got != c.name {
			t.Errorf("TileName(%d, %d) = %q; want %q", c.lat, c.lon, got, c.name)
		}
	}
	for _, name := range []string{
		"N46E07.hgt", "X46E007.hgt", "N46E007.txt", "n46e007.hgt", "N4aE007.hgt",
	} {
		if _, _, ok := parseTileName(name); ok {
			t.Errorf("parseTileName(%q) succeeded; want failure", name)
		}
	}
}
