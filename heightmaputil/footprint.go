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
	"fmt"
	"os"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/terrainmodel/heightmap"
)

// wgs84Prj marks footprint shapefile coordinates as geodetic degrees.
const wgs84Prj = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// WriteFootprint writes the geodetic outline of the configured tile
// as a polygon shapefile, with the coverage statistics of the run
// attached to the polygon, so the result can be checked against
// other geodata. A .prj companion file accompanies the shapefile.
func WriteFootprint(fname string, cfg *heightmap.Config, sum heightmap.Summary) error {
	type footprintRec struct {
		geom.Polygon
		Valid, Total     int
		MinElev, MaxElev float64
	}

	grid, err := heightmap.NewDestinationGrid(cfg.Grid, cfg.CenterOffset)
	if err != nil {
		return err
	}
	outline := footprintPolygon(grid, heightmap.NewAEQD(cfg.Origin))

	e, err := shp.NewEncoder(fname, footprintRec{})
	if err != nil {
		return fmt.Errorf("heightmap: creating footprint shapefile: %v", err)
	}
	err = e.Encode(&footprintRec{
		Polygon: outline,
		Valid:   sum.Valid,
		Total:   sum.Total,
		MinElev: float64(sum.Min),
		MaxElev: float64(sum.Max),
	})
	if err != nil {
		return fmt.Errorf("heightmap: writing footprint shapefile: %v", err)
	}
	e.Close()
	o, err := os.Create(fname[0:len(fname)-4] + ".prj")
	if err != nil {
		return err
	}
	if _, err = o.Write([]byte(wgs84Prj)); err != nil {
		return err
	}
	return o.Close()
}

// footprintPolygon traces the boundary samples of the grid through
// the inverse projection, giving the geodetic outline of the tile
// with the curvature of the projected edges kept. The ring runs
// clockwise from the northwest corner.
func footprintPolygon(grid *heightmap.DestinationGrid, p *heightmap.AEQD) geom.Polygon {
	n := grid.Spec.Samples
	var ring []geom.Point
	add := func(row, col int) {
		x, y := grid.XY(row, col)
		lat, lon := p.Inverse(x, y)
		ring = append(ring, geom.Point{X: lon, Y: lat})
	}
	for col := 0; col < n; col++ { // north edge, west to east
		add(0, col)
	}
	for row := 1; row < n; row++ { // east edge, north to south
		add(row, n-1)
	}
	for col := n - 2; col >= 0; col-- { // south edge, east to west
		add(n-1, col)
	}
	for row := n - 2; row >= 1; row-- { // west edge, south to north
		add(row, 0)
	}
	return geom.Polygon{ring}
}
