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
	"encoding/gob"
	"fmt"
	"io"
)

// tile is the gob envelope for a computed grid and its metadata.
type tile struct {
	Grid *SampleGrid
	Meta Metadata
}

// Save writes a computed grid and its metadata to w in gob format
// (format description at https://golang.org/pkg/encoding/gob/), so
// that later commands can reuse the result without resampling.
func Save(w io.Writer, g *SampleGrid, m Metadata) error {
	if err := gob.NewEncoder(w).Encode(tile{Grid: g, Meta: m}); err != nil {
		return fmt.Errorf("heightmap: while saving grid: %v", err)
	}
	return nil
}

// Load reads a grid and metadata previously written by Save.
func Load(r io.Reader) (*SampleGrid, Metadata, error) {
	var t tile
	if err := gob.NewDecoder(r).Decode(&t); err != nil {
		return nil, Metadata{}, fmt.Errorf("heightmap: while loading grid: %v", err)
	}
	return t.Grid, t.Meta, nil
}
