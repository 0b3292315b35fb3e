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

// Command heightmap is a command-line interface for the Heightmap
// terrain grid generator.
package main

import (
	"fmt"
	"os"

	"github.com/terrainmodel/heightmap/heightmaputil"
)

func main() {
	var commands int
	for _, arg := range os.Args { // Count the number of supplied commands.
		if arg[0] != '-' {
			commands++
		}
	}
	if commands == 1 { // If only one command was supplied, start the GUI server.
		heightmaputil.StartWebServer()
	}

	// If more than one command was supplied, run in CLI mode.
	if err := heightmaputil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
