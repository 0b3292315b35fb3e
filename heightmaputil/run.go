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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terrainmodel/heightmap"
	"github.com/terrainmodel/heightmap/raster"
)

// newLogger builds the job logger: text output with full timestamps
// on the command's output stream, optionally teed into logFile.
func newLogger(cmd *cobra.Command, logFile string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if Cfg.GetBool("verbose") {
		logger.Level = logrus.DebugLevel
	}
	logger.Out = cmd.OutOrStdout()
	if logFile == "" {
		return logger, nil, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("heightmap: problem creating log file: %v", err)
	}
	logger.Out = io.MultiWriter(cmd.OutOrStdout(), f)
	return logger, f, nil
}

// RunJob runs one conversion job: it opens the source raster, fills
// the output grid, and writes the binary tile and its metadata
// record. Outputs are only written after the whole conversion has
// succeeded, so a failed run never leaves partial output behind.
func RunJob(cmd *cobra.Command, job *JobConfig) error {
	startTime := time.Now()
	ctx := context.TODO()

	var up uploader
	logFile := up.maybeUpload(job.LogFile)
	footprintFile := up.maybeUpload(job.FootprintShp)
	if up.err != nil {
		return up.err
	}

	logger, logCloser, err := newLogger(cmd, logFile)
	if err != nil {
		return err
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	// Start a function to receive and print log messages.
	msgLog := make(chan string)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		for msg := range msgLog {
			logger.Info(msg)
		}
		wg.Done()
	}()

	logger.Infof("Opening source raster %s...", job.RasterPath)
	src, err := raster.Open(job.RasterPath)
	if err != nil {
		close(msgLog)
		wg.Wait()
		return err
	}
	g, meta, err := heightmap.Run(&job.Config, src, msgLog)
	close(msgLog)
	wg.Wait()
	if err != nil {
		return err
	}
	sum := heightmap.Summarize(g)
	logger.Debugf("Summary: %+v", sum)

	var bin bytes.Buffer
	if err := heightmap.Encode(&bin, g); err != nil {
		return err
	}
	if err := writeOutput(ctx, job.OutBin, bin.Bytes()); err != nil {
		return err
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("heightmap: encoding metadata: %v", err)
	}
	if err := writeOutput(ctx, job.OutMeta, append(metaBytes, '\n')); err != nil {
		return err
	}

	if job.SaveGrid != "" {
		var buf bytes.Buffer
		if err := heightmap.Save(&buf, g, meta); err != nil {
			return err
		}
		if err := writeOutput(ctx, job.SaveGrid, buf.Bytes()); err != nil {
			return err
		}
		logger.Infof("Saved grid to %s", job.SaveGrid)
	}
	if footprintFile != "" {
		if err := WriteFootprint(footprintFile, &job.Config, sum); err != nil {
			return err
		}
		logger.Infof("Wrote footprint %s", job.FootprintShp)
	}
	if err := up.upload(ctx); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Wrote: %s\n", job.OutBin)
	fmt.Fprintf(w, "Meta : %s\n", job.OutMeta)
	fmt.Fprintf(w, "Valid samples: %d / %d\n", sum.Valid, sum.Total)
	logger.Infof("Elapsed time: %v", time.Since(startTime))
	return nil
}
