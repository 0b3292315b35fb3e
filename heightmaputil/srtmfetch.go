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
	"context"
	"fmt"
	"io"
	"math"
	"os"
	gopath "path"
	"path/filepath"
	"sort"

	"github.com/terrainmodel/heightmap"
	"github.com/terrainmodel/heightmap/raster"
)

// FetchSRTM downloads the SRTM tiles covering the sampling grid
// described by origin, spec, and offset from the bucket at bucketPath
// into the local directory dir, so that dir can later be used as the
// raster_path of a run. Tiles already present in dir are kept. Tiles
// the bucket does not hold are reported across c and skipped, because
// SRTM has no tiles for open ocean. The names of the newly downloaded
// tiles are returned.
func FetchSRTM(ctx context.Context, origin heightmap.Origin, spec heightmap.GridSpec, offset heightmap.CenterOffset, bucketPath, dir string, c chan string) ([]string, error) {
	if bucketPath == "" {
		return nil, fmt.Errorf("heightmap: you need to specify the tile bucket location " +
			"in the srtm.bucket configuration variable, for example " +
			`srtm.bucket="s3://elevation-tiles" or srtm.bucket="file:///data/srtm"`)
	}
	if dir == "" {
		return nil, fmt.Errorf("heightmap: you need to specify the destination directory " +
			"in the srtm.dir configuration variable")
	}
	if !IsBlob(bucketPath) {
		return nil, fmt.Errorf("heightmap: srtm.bucket=%s but must be a bucket location "+
			"starting with gs://, s3://, or file://", bucketPath)
	}
	grid, err := heightmap.NewDestinationGrid(spec, offset)
	if err != nil {
		return nil, err
	}
	names := tilesCovering(grid, heightmap.NewAEQD(origin))

	bucketName, prefix, err := splitBlobPrefix(bucketPath)
	if err != nil {
		return nil, fmt.Errorf("heightmap: %v", err)
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("heightmap: %v", err)
	}

	var fetched []string
	for _, name := range names {
		dst := filepath.Join(dir, name)
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		r, err := bucket.NewReader(ctx, gopath.Join(prefix, name))
		if err != nil {
			// A tile the bucket does not hold is missing coverage,
			// not a failure of the fetch.
			c <- fmt.Sprintf("heightmap: tile %s is not available: %v\n", name, err)
			continue
		}
		w, err := os.Create(dst)
		if err != nil {
			r.Close()
			return fetched, fmt.Errorf("heightmap: %v", err)
		}
		if _, err := io.Copy(w, r); err != nil {
			r.Close()
			w.Close()
			// A partial tile must not pose as coverage on a later run.
			os.Remove(dst)
			return fetched, fmt.Errorf("heightmap: downloading tile %s: %v", name, err)
		}
		r.Close()
		if err := w.Close(); err != nil {
			os.Remove(dst)
			return fetched, fmt.Errorf("heightmap: %v", err)
		}
		c <- fmt.Sprintf("Fetched tile %s\n", name)
		fetched = append(fetched, name)
	}
	return fetched, nil
}

// tilesCovering returns the names of the 1°×1° SRTM tiles holding the
// grid samples, sorted. Every sample is projected back to geodetic
// coordinates, so the result is exactly the set of tiles a run on the
// same grid will read.
func tilesCovering(grid *heightmap.DestinationGrid, p *heightmap.AEQD) []string {
	seen := make(map[string]bool)
	for row := 0; row < grid.Spec.Samples; row++ {
		for col := 0; col < grid.Spec.Samples; col++ {
			x, y := grid.XY(row, col)
			lat, lon := p.Inverse(x, y)
			latf := int(math.Floor(lat))
			lonf := int(math.Floor(lon))
			// Tiles are named for their southwest corner, so the
			// northernmost row belongs to N89 and longitude 180
			// wraps to the W180 tile.
			if latf > 89 {
				latf = 89
			}
			if lonf >= 180 {
				lonf = -180
			}
			seen[raster.TileName(latf, lonf)] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
