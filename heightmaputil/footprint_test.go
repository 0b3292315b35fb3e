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

package heightmaputil

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/terrainmodel/heightmap"
)

func TestFootprintPolygon(t *testing.T) {
	grid, err := heightmap.NewDestinationGrid(
		heightmap.GridSpec{SizeM: 200, Samples: 3}, heightmap.CenterOffset{})
	if err != nil {
		t.Fatal(err)
	}
	poly := footprintPolygon(grid, heightmap.NewAEQD(heightmap.Origin{Lat: 0, Lon: 0}))

	if len(poly) != 1 {
		t.Fatalf("footprint has %d rings; want 1", len(poly))
	}
	ring := poly[0]
	if len(ring) != 8 {
		t.Fatalf("footprint ring has %d points; want 8", len(ring))
	}
	// The ring starts at the northwest corner and is left open; the
	// shapefile encoder closes it.
	if ring[0].X >= 0 || ring[0].Y <= 0 {
		t.Errorf("first ring point = %+v; want northwest of the origin", ring[0])
	}
	if ring[0] == ring[len(ring)-1] {
		t.Error("ring is pre-closed; the first point repeats at the end")
	}
	for i, pt := range ring {
		if math.Abs(pt.X) > 0.01 || math.Abs(pt.Y) > 0.01 {
			t.Errorf("ring point %d = %+v; too far from the origin", i, pt)
		}
	}
}

func TestWriteFootprint(t *testing.T) {
	dir, err := ioutil.TempDir("", "footprint")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	fname := filepath.Join(dir, "fp.shp")

	cfg := &heightmap.Config{
		Origin: heightmap.Origin{Lat: 46.5, Lon: 7.3},
		Grid:   heightmap.GridSpec{SizeM: 1000, Samples: 5},
	}
	sum := heightmap.Summary{Valid: 20, Total: 25, Min: 100, Max: 900}
	if err := WriteFootprint(fname, cfg, sum); err != nil {
		t.Fatal(err)
	}

	d, err := shp.NewDecoder(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	var row struct {
		geom.Polygon
		Valid, Total     int
		MinElev, MaxElev float64
	}
	if !d.DecodeRow(&row) {
		t.Fatal("footprint shapefile holds no rows")
	}
	if err := d.Error(); err != nil {
		t.Fatal(err)
	}

	if row.Valid != 20 || row.Total != 25 {
		t.Errorf("coverage attributes = %d / %d; want 20 / 25", row.Valid, row.Total)
	}
	if row.MinElev != 100 || row.MaxElev != 900 {
		t.Errorf("elevation attributes = %g, %g; want 100, 900", row.MinElev, row.MaxElev)
	}
	if len(row.Polygon) != 1 {
		t.Fatalf("decoded footprint has %d rings; want 1", len(row.Polygon))
	}
	ring := row.Polygon[0]
	if len(ring) != 16 {
		t.Errorf("decoded ring has %d points; want 16", len(ring))
	}
	if ring[0].X >= cfg.Origin.Lon || ring[0].Y <= cfg.Origin.Lat {
		t.Errorf("first ring point = %+v; want northwest of the tile center", ring[0])
	}
	for i, pt := range ring {
		if math.Abs(pt.X-cfg.Origin.Lon) > 0.01 || math.Abs(pt.Y-cfg.Origin.Lat) > 0.01 {
			t.Errorf("ring point %d = %+v; too far from the tile center", i, pt)
		}
	}

	prj, err := ioutil.ReadFile(filepath.Join(dir, "fp.prj"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(prj), "GCS_WGS_1984") {
		t.Errorf("projection file does not name the geodetic datum: %s", prj)
	}
}
