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
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
	"github.com/terrainmodel/heightmap"
)

// JobConfig extends the core conversion configuration with the
// file-handling options used by the command layer.
type JobConfig struct {
	heightmap.Config

	// LogFile, if non-empty, is a file that log output is copied to.
	LogFile string

	// SaveGrid, if non-empty, is where the computed grid is saved in
	// reloadable binary form.
	SaveGrid string

	// FootprintShp, if non-empty, is where the geodetic outline of
	// the tile is written as a polygon shapefile.
	FootprintShp string
}

// GridConfig unmarshals the geometry of the output grid from a viper
// configuration: the projection origin, the grid specification, and
// the center offset.
func GridConfig(cfg *viper.Viper) (heightmap.Origin, heightmap.GridSpec, heightmap.CenterOffset, error) {
	var origin heightmap.Origin
	var grid heightmap.GridSpec
	var offset heightmap.CenterOffset

	origin.Lat = cfg.GetFloat64("origin.lat")
	origin.Lon = cfg.GetFloat64("origin.lon")
	if !(origin.Lat >= -90 && origin.Lat <= 90) {
		return origin, grid, offset, fmt.Errorf(
			"heightmap: origin.lat=%g but must be within [-90, 90]", origin.Lat)
	}
	if !(origin.Lon >= -180 && origin.Lon <= 180) {
		return origin, grid, offset, fmt.Errorf(
			"heightmap: origin.lon=%g but must be within [-180, 180]", origin.Lon)
	}

	// A malformed sample count would silently read as 0 through
	// GetInt, so go through cast to surface the parse error.
	samples, err := cast.ToIntE(cfg.Get("grid.samples"))
	if err != nil {
		return origin, grid, offset, fmt.Errorf("heightmap: parsing grid.samples: %v", err)
	}
	grid.Samples = samples
	grid.SizeM = cfg.GetFloat64("grid.size_m")
	if grid.Samples < 2 {
		return origin, grid, offset, &heightmap.InvalidGridSpecError{
			Reason: fmt.Sprintf("grid.samples=%d but must be at least 2", grid.Samples),
		}
	}
	if !(grid.SizeM > 0) {
		return origin, grid, offset, &heightmap.InvalidGridSpecError{
			Reason: fmt.Sprintf("grid.size_m=%g but must be greater than 0", grid.SizeM),
		}
	}

	offset.EastM = cfg.GetFloat64("center_offset.east_m")
	offset.NorthM = cfg.GetFloat64("center_offset.north_m")
	return origin, grid, offset, nil
}

// HeightmapConfig unmarshals a viper configuration for a conversion
// job. Relative local paths are interpreted relative to the directory
// of the configuration file, and the directories of local outputs are
// created if they do not exist.
func HeightmapConfig(cfg *viper.Viper) (*JobConfig, error) {
	origin, grid, offset, err := GridConfig(cfg)
	if err != nil {
		return nil, err
	}

	c := &JobConfig{
		Config: heightmap.Config{
			Origin:       origin,
			Grid:         grid,
			CenterOffset: offset,
			RasterPath:   resolvePath(cfg, os.ExpandEnv(cfg.GetString("raster_path"))),
			OutBin:       resolvePath(cfg, os.ExpandEnv(cfg.GetString("out_bin"))),
			OutMeta:      resolvePath(cfg, os.ExpandEnv(cfg.GetString("out_meta"))),
			ElevExpr:     cfg.GetString("elev_expr"),
			RangePolicy:  heightmap.RangePolicy(cfg.GetString("range_policy")),
			Workers:      cfg.GetInt("workers"),
		},
		LogFile:      resolvePath(cfg, os.ExpandEnv(cfg.GetString("log_file"))),
		SaveGrid:     resolvePath(cfg, os.ExpandEnv(cfg.GetString("save_grid"))),
		FootprintShp: resolvePath(cfg, os.ExpandEnv(cfg.GetString("footprint"))),
	}

	switch c.RangePolicy {
	case "", heightmap.RangeReject, heightmap.RangeClamp:
	default:
		return nil, fmt.Errorf("heightmap: the range_policy configuration variable must be %q or %q but is %q",
			heightmap.RangeReject, heightmap.RangeClamp, c.RangePolicy)
	}

	if c.RasterPath == "" {
		return nil, fmt.Errorf("heightmap: you need to specify the source raster location " +
			`in the raster_path configuration variable (for example: raster_path="dem.nc")`)
	}
	if c.OutBin, err = checkOutputFile(c.OutBin, "out_bin"); err != nil {
		return nil, err
	}
	if c.OutMeta == "" {
		c.OutMeta = strings.TrimSuffix(c.OutBin, filepath.Ext(c.OutBin)) + ".json"
	}
	if c.OutMeta, err = checkOutputFile(c.OutMeta, "out_meta"); err != nil {
		return nil, err
	}
	for _, f := range []string{c.LogFile, c.SaveGrid, c.FootprintShp} {
		if f == "" {
			continue
		}
		if _, err := checkOutputFile(f, "output"); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// checkOutputFile makes sure that the named output location is
// specified and usable: the bucket of a blob location must be
// openable, and the directory of a local location is created if it
// does not exist.
func checkOutputFile(f, name string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("heightmap: you need to specify an output file "+
			"in the %s configuration variable", name)
	}
	if IsBlob(f) {
		bucketName, _, err := splitBlob(f)
		if err != nil {
			return f, fmt.Errorf("heightmap: parsing the %s location: %v", name, err)
		}
		if _, err := OpenBucket(context.TODO(), bucketName); err != nil {
			return f, fmt.Errorf("heightmap: checking the %s location: %v", name, err)
		}
		return f, nil
	}
	if dir := filepath.Dir(f); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return f, fmt.Errorf("heightmap: creating the %s directory: %v", name, err)
		}
	}
	return f, nil
}

// resolvePath interprets a relative local path as relative to the
// directory of the configuration file, if one is in use, so that job
// configurations stay portable.
func resolvePath(cfg *viper.Viper, path string) string {
	if path == "" || strings.Contains(path, "://") || filepath.IsAbs(path) {
		return path
	}
	if cfgFile := cfg.ConfigFileUsed(); cfgFile != "" {
		return filepath.Join(filepath.Dir(cfgFile), path)
	}
	return path
}
