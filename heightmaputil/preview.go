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
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/terrainmodel/heightmap"
	"github.com/terrainmodel/heightmap/raster"
	"gonum.org/v1/plot/palette/moreland"
)

// WritePreview renders the sample grid as a PNG image on w. Valid
// samples are colored with the extended black body colormap spanning
// the elevations present in the grid; samples without coverage come
// out fully transparent. Row 0 of the grid is the top row of the
// image.
func WritePreview(g *heightmap.SampleGrid, w io.Writer) error {
	sum := heightmap.Summarize(g)
	min, max := float64(sum.Min), float64(sum.Max)
	if sum.Valid == 0 || min == max {
		// The colormap needs a nonempty range.
		max = min + 1
	}
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(min)
	cm.SetMax(max)

	img := image.NewNRGBA(image.Rect(0, 0, g.Samples, g.Samples))
	for row := 0; row < g.Samples; row++ {
		for col := 0; col < g.Samples; col++ {
			v := g.Get(row, col)
			if v == heightmap.NoData {
				continue
			}
			c, err := cm.At(float64(v))
			if err != nil {
				return fmt.Errorf("heightmap: coloring sample (%d, %d): %v", row, col, err)
			}
			img.Set(col, row, c)
		}
	}
	return png.Encode(w, img)
}

// PreviewSaved renders a previously saved grid as a PNG image at out.
func PreviewSaved(cmd *cobra.Command, gridPath, out string) error {
	f, err := os.Open(gridPath)
	if err != nil {
		return fmt.Errorf("heightmap: opening saved grid: %v", err)
	}
	defer f.Close()
	g, _, err := heightmap.Load(f)
	if err != nil {
		return err
	}
	return writePreviewFile(cmd, g, out)
}

// PreviewJob runs the conversion for the given job without writing
// its outputs and renders the result as a PNG image at out.
func PreviewJob(cmd *cobra.Command, job *JobConfig, out string) error {
	src, err := raster.Open(job.RasterPath)
	if err != nil {
		return err
	}
	g, _, err := heightmap.Run(&job.Config, src, nil)
	if err != nil {
		return err
	}
	return writePreviewFile(cmd, g, out)
}

func writePreviewFile(cmd *cobra.Command, g *heightmap.SampleGrid, out string) error {
	if out == "" {
		return fmt.Errorf("heightmap: you need to specify the preview location " +
			"in the preview_out configuration variable")
	}
	var buf bytes.Buffer
	if err := WritePreview(g, &buf); err != nil {
		return err
	}
	if err := writeOutput(context.TODO(), out, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote: %s\n", out)
	return nil
}
