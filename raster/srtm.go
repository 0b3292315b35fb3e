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
	"context"
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"math"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ctessum/geom/proj"
	"github.com/ctessum/requestcache"

	"github.com/terrainmodel/heightmap"
)

// srtmVoid is the sentinel SRTM tiles use for voids.
const srtmVoid = -32768

// SRTMMosaic is a rectangle of one-degree SRTM tiles read from a
// directory. Tiles are .hgt files of big-endian int16 samples, named
// for their southwest corner (N46E007.hgt), with sample counts per
// side derived from the file size; SRTM1 and SRTM3 tiles are the
// common cases. All tiles in a mosaic must share one resolution.
// Tiles are loaded on demand and held in a memory cache; one-degree
// squares with no tile file are treated as having no coverage.
type SRTMMosaic struct {
	dir string

	// n is the number of samples per tile side. Neighboring tiles
	// share their edge row and column.
	n int

	// minLat through maxLon bound the southwest corners of the tiles
	// found in the directory.
	minLat, maxLat int
	minLon, maxLon int

	nxTiles, nyTiles int
	nx, ny           int
	gt               heightmap.Affine
	sr               *proj.SR
	present          map[string]bool

	// CacheSize is the number of tiles held in memory at once. An
	// SRTM1 tile is about 25 MB. CacheSize can only be changed before
	// the first sample is read.
	CacheSize int

	cache     *requestcache.Cache
	cacheInit sync.Once
}

// OpenSRTMDir opens the SRTM tile mosaic in directory dir.
func OpenSRTMDir(dir string) (*SRTMMosaic, error) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, &heightmap.SourceUnavailableError{Path: dir, Err: err}
	}
	var names []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if _, _, ok := parseTileName(f.Name()); ok {
			names = append(names, f.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("raster: no SRTM tiles (*.hgt named like N46E007.hgt) in %s", dir)
	}
	sort.Strings(names)
	return newSRTMMosaic(dir, names)
}

// OpenSRTM opens a single SRTM tile. The file name must encode the
// tile's southwest corner.
func OpenSRTM(path string) (*SRTMMosaic, error) {
	name := filepath.Base(path)
	if _, _, ok := parseTileName(name); !ok {
		return nil, fmt.Errorf("raster: SRTM file name %q does not encode the "+
			"tile's southwest corner like N46E007.hgt", name)
	}
	return newSRTMMosaic(filepath.Dir(path), []string{name})
}

func newSRTMMosaic(dir string, names []string) (*SRTMMosaic, error) {
	m := &SRTMMosaic{
		dir:       dir,
		present:   make(map[string]bool),
		CacheSize: 8,
	}
	for i, name := range names {
		lat, lon, _ := parseTileName(name)
		if i == 0 || lat < m.minLat {
			m.minLat = lat
		}
		if i == 0 || lat > m.maxLat {
			m.maxLat = lat
		}
		if i == 0 || lon < m.minLon {
			m.minLon = lon
		}
		if i == 0 || lon > m.maxLon {
			m.maxLon = lon
		}
		m.present[name] = true
	}

	// The first tile sets the resolution for the whole mosaic.
	t, err := readTile(filepath.Join(dir, names[0]))
	if err != nil {
		return nil, err
	}
	m.n = t.n

	m.nxTiles = m.maxLon - m.minLon + 1
	m.nyTiles = m.maxLat - m.minLat + 1
	m.nx = m.nxTiles*(m.n-1) + 1
	m.ny = m.nyTiles*(m.n-1) + 1
	p := 1 / float64(m.n-1)
	m.gt = heightmap.Affine{
		p, 0, float64(m.minLon),
		0, -p, float64(m.maxLat + 1),
	}
	m.sr, err = proj.Parse("+proj=longlat")
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SRTMMosaic) SR() *proj.SR                { return m.sr }
func (m *SRTMMosaic) Transform() heightmap.Affine { return m.gt }
func (m *SRTMMosaic) Size() (nx, ny int)          { return m.nx, m.ny }
func (m *SRTMMosaic) NoData() (float64, bool)     { return srtmVoid, true }

// At returns the sample at mosaic column col and row row. Row 0 is
// the north edge of the northernmost tiles. Samples on shared tile
// edges are read from the eastern and southern neighbor.
func (m *SRTMMosaic) At(col, row int) (float64, error) {
	span := m.n - 1
	tc, lc := col/span, col%span
	if tc == m.nxTiles {
		tc, lc = tc-1, span
	}
	tr, lr := row/span, row%span
	if tr == m.nyTiles {
		tr, lr = tr-1, span
	}
	name := TileName(m.maxLat-tr, m.minLon+tc)
	if !m.present[name] {
		// A hole in the mosaic is missing coverage, not an error.
		return math.NaN(), nil
	}
	t, err := m.tile(name)
	if err != nil {
		return 0, err
	}
	return float64(t.data[lr*m.n+lc]), nil
}

// tile loads a tile through the memory cache, deduplicating
// concurrent loads of the same tile.
func (m *SRTMMosaic) tile(name string) (*srtmTile, error) {
	m.cacheInit.Do(func() {
		m.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			t, err := readTile(filepath.Join(m.dir, request.(string)))
			if err != nil {
				return nil, err
			}
			if t.n != m.n {
				return nil, fmt.Errorf("raster: tile %s has %d samples per side; "+
					"the rest of the mosaic has %d", request, t.n, m.n)
			}
			return t, nil
		}, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(m.CacheSize))
	})
	req := m.cache.NewRequest(context.TODO(), name, name)
	result, err := req.Result()
	if err != nil {
		return nil, &heightmap.SourceUnavailableError{Path: filepath.Join(m.dir, name), Err: err}
	}
	return result.(*srtmTile), nil
}

type srtmTile struct {
	n    int
	data []int16
}

// readTile reads a .hgt file. The sample count per side is the square
// root of the number of int16 values in the file.
func readTile(path string) (*srtmTile, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 || len(b)%2 != 0 {
		return nil, fmt.Errorf("raster: tile %s has %d bytes; want an even, nonzero count", path, len(b))
	}
	samples := len(b) / 2
	n := int(math.Sqrt(float64(samples)))
	if n < 2 || n*n != samples {
		return nil, fmt.Errorf("raster: tile %s holds %d samples, which is not a square", path, samples)
	}
	data := make([]int16, samples)
	for i := range data {
		data[i] = int16(binary.BigEndian.Uint16(b[2*i:]))
	}
	return &srtmTile{n: n, data: data}, nil
}

// parseTileName extracts the southwest corner from an SRTM tile file
// name such as N46E007.hgt or S34W071.hgt.
func parseTileName(name string) (lat, lon int, ok bool) {
	if len(name) != len("N00E000.hgt") || !strings.HasSuffix(name, ".hgt") {
		return 0, 0, false
	}
	latSign, lonSign := 1, 1
	switch name[0] {
	case 'N':
	case 'S':
		latSign = -1
	default:
		return 0, 0, false
	}
	switch name[3] {
	case 'E':
	case 'W':
		lonSign = -1
	default:
		return 0, 0, false
	}
	latV, err := strconv.Atoi(name[1:3])
	if err != nil {
		return 0, 0, false
	}
	lonV, err := strconv.Atoi(name[4:7])
	if err != nil {
		return 0, 0, false
	}
	if latV < 0 || latV > 89 || lonV < 0 || lonV > 180 {
		return 0, 0, false
	}
	return latSign * latV, lonSign * lonV, true
}

// TileName formats the file name of the SRTM tile with the given
// southwest corner.
func TileName(lat, lon int) string {
	ns, ew := 'N', 'E'
	if lat < 0 {
		ns, lat = 'S', -lat
	}
	if lon < 0 {
		ew, lon = 'W', -lon
	}
	return fmt.Sprintf("%c%02d%c%03d.hgt", ns, lat, ew, lon)
}
