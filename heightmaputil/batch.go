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

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// batchManifest is the TOML format of a batch manifest: a list of
// [[job]] tables, each naming the configuration file of one run.
type batchManifest struct {
	Job []batchJob
}

type batchJob struct {
	Config string
}

// RunBatch runs the jobs listed in the batch manifest at path, in
// order. Relative configuration file paths in the manifest are
// resolved against the directory holding the manifest. The first
// failing job stops the batch.
func RunBatch(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("heightmap: problem opening batch manifest: %v", err)
	}
	var manifest batchManifest
	_, err = toml.DecodeReader(f, &manifest)
	f.Close()
	if err != nil {
		return fmt.Errorf("heightmap: problem reading batch manifest: %v", err)
	}
	if len(manifest.Job) == 0 {
		return fmt.Errorf("heightmap: batch manifest %s does not list any jobs", path)
	}
	c := outChan()
	// Jobs reading the same remote raster share one download.
	downloaded := make(map[string]string)
	for i, job := range manifest.Job {
		cfgFile := os.ExpandEnv(job.Config)
		if cfgFile == "" {
			return fmt.Errorf("heightmap: job %d in batch manifest %s has no configuration file", i+1, path)
		}
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(filepath.Dir(path), cfgFile)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Job %d/%d: %s\n", i+1, len(manifest.Job), cfgFile)
		// Point the shared configuration at this job's file. Values
		// set on the command line or in the environment keep their
		// precedence over the file for every job.
		Cfg.SetConfigFile(cfgFile)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("heightmap: problem reading configuration file: %v", err)
		}
		jc, err := HeightmapConfig(Cfg)
		if err != nil {
			return fmt.Errorf("heightmap: job %d (%s): %v", i+1, cfgFile, err)
		}
		if local, ok := downloaded[jc.RasterPath]; ok {
			jc.RasterPath = local
		} else {
			local = maybeDownload(context.TODO(), jc.RasterPath, c)
			downloaded[jc.RasterPath] = local
			jc.RasterPath = local
		}
		if err := RunJob(cmd, jc); err != nil {
			return fmt.Errorf("heightmap: job %d (%s): %v", i+1, cfgFile, err)
		}
	}
	return nil
}
