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
	"encoding/binary"
	"fmt"
	"io"
)

// Format describes the binary layout of an encoded sample grid.
type Format struct {
	DType  string `json:"dtype"`
	Endian string `json:"endian"`
	Layout string `json:"layout"`
}

// Metadata is the sidecar record describing an encoded heightmap.
// The binary file itself carries no header, so this record is the
// only description of its layout. Min and Max are nil when the grid
// holds no valid samples; a tile entirely outside the source coverage
// is valid output.
type Metadata struct {
	Origin       Origin       `json:"origin"`
	Grid         GridSpec     `json:"grid"`
	CenterOffset CenterOffset `json:"center_offset"`
	Format       Format       `json:"format"`
	NoDataOut    int16        `json:"nodata_out"`
	Min          *int16       `json:"min"`
	Max          *int16       `json:"max"`
	OutBin       string       `json:"out_bin"`
}

// Encode writes the grid as little-endian int16 samples in row-major
// order: exactly Samples*Samples*2 bytes, no header, no magic number.
// Identical grids always encode to identical bytes.
func Encode(w io.Writer, g *SampleGrid) error {
	if err := binary.Write(w, binary.LittleEndian, g.Data); err != nil {
		return fmt.Errorf("heightmap: while encoding sample grid: %v", err)
	}
	return nil
}

// NewMetadata builds the metadata record for a grid computed under
// cfg.
func NewMetadata(cfg *Config, g *SampleGrid) Metadata {
	m := Metadata{
		Origin:       cfg.Origin,
		Grid:         cfg.Grid,
		CenterOffset: cfg.CenterOffset,
		Format:       Format{DType: "int16", Endian: "little", Layout: "row-major"},
		NoDataOut:    NoData,
		OutBin:       cfg.OutBin,
	}
	if s := Summarize(g); s.Valid > 0 {
		min, max := s.Min, s.Max
		m.Min, m.Max = &min, &max
	}
	return m
}
