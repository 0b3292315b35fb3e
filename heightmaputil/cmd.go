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

// Package heightmaputil holds the command-line interface for the
// heightmap program.
package heightmaputil

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"

	"github.com/ctessum/gobra"
	"github.com/lnashier/viper"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/terrainmodel/heightmap"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to Heightmap.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "addr",
			usage: `
              addr is the address the web interface listens on when the
              program is started without a subcommand.`,
			defaultVal: "localhost:7171",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose turns on debug-level log output.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "origin.lat",
			usage: `
              origin.lat is the geodetic latitude of the projection origin in
              degrees, between -90 and 90. The origin maps to (0, 0) on the
              local plane.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags(), srtmfetchCmd.Flags()},
		},
		{
			name: "origin.lon",
			usage: `
              origin.lon is the geodetic longitude of the projection origin in
              degrees, between -180 and 180.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags(), srtmfetchCmd.Flags()},
		},
		{
			name: "grid.size_m",
			usage: `
              grid.size_m is the side length of the square output tile in
              meters on the local plane.`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags(), srtmfetchCmd.Flags()},
		},
		{
			name: "grid.samples",
			usage: `
              grid.samples is the number of samples along each side of the
              output tile. It must be at least 2; the sample spacing is
              grid.size_m / (grid.samples - 1).`,
			defaultVal: 257,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags(), srtmfetchCmd.Flags()},
		},
		{
			name: "center_offset.east_m",
			usage: `
              center_offset.east_m shifts the center of the tile east of the
              projection origin, in meters on the local plane.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags(), srtmfetchCmd.Flags()},
		},
		{
			name: "center_offset.north_m",
			usage: `
              center_offset.north_m shifts the center of the tile north of the
              projection origin, in meters on the local plane.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags(), srtmfetchCmd.Flags()},
		},
		{
			name: "raster_path",
			usage: `
              raster_path is the location of the source elevation raster: a
              NetCDF file, an Esri ASCII grid (optionally gzipped), a single
              SRTM .hgt tile, or a directory of SRTM tiles. It may be a local
              path or a gs://, s3://, or file:// blob location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags()},
		},
		{
			name: "out_bin",
			usage: `
              out_bin is the location where the binary tile is written:
              grid.samples² little-endian int16 samples in row-major order,
              north row first.`,
			shorthand:  "o",
			defaultVal: "terrain.bin",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "out_meta",
			usage: `
              out_meta is the location where the JSON metadata record is
              written. The default is out_bin with a .json extension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "log_file",
			usage: `
              log_file is a file that log output is copied to in addition to
              standard output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "elev_expr",
			usage: `
              elev_expr is an optional expression applied to each source
              elevation before encoding, with the elevation bound to 'z';
              for example "z * 0.3048" converts feet to meters. The
              functions abs, min, max, and round are available.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags()},
		},
		{
			name: "range_policy",
			usage: `
              range_policy selects what happens to elevations that do not fit
              in an int16 sample: "reject" fails the conversion and "clamp"
              saturates them to ±32767.`,
			defaultVal: "reject",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags()},
		},
		{
			name: "workers",
			usage: `
              workers is the number of concurrent resampling workers. Values
              below 1 mean one worker per processor.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags()},
		},
		{
			name: "save_grid",
			usage: `
              save_grid is a location where the computed grid is saved in a
              reloadable binary form. The preview command reads it back
              instead of recomputing the tile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), previewCmd.Flags()},
		},
		{
			name: "footprint",
			usage: `
              footprint is a location where the geodetic outline of the tile
              is written as a polygon shapefile for QA, together with the
              coverage statistics of the run.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "preview_out",
			usage: `
              preview_out is the location where the preview PNG is written.`,
			defaultVal: "preview.png",
			flagsets:   []*pflag.FlagSet{previewCmd.Flags()},
		},
		{
			name: "manifest",
			usage: `
              manifest is the location of a TOML manifest listing the
              configuration files of the jobs to run, one [[job]] entry per
              job.`,
			shorthand:  "m",
			defaultVal: "jobs.toml",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "srtm.bucket",
			usage: `
              srtm.bucket is the blob storage location holding SRTM .hgt
              tiles, for example s3://elevation/srtm1.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{srtmfetchCmd.Flags()},
		},
		{
			name: "srtm.dir",
			usage: `
              srtm.dir is the local directory that fetched SRTM tiles are
              stored in.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{srtmfetchCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("HEIGHTMAP")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(batchCmd)
	Root.AddCommand(previewCmd)
	Root.AddCommand(srtmfetchCmd)
}

// outChan returns a channel printing to standard output.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			msg := <-outChan
			fmt.Printf(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("heightmap: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "heightmap",
	Short: "Convert geodetic elevation rasters to planar heightmap tiles.",
	Long: `Heightmap converts geodetic elevation rasters into square, regularly
spaced heightmap tiles on a local azimuthal equidistant plane, so that
straight-line distances from the tile center are true ground distances.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'HEIGHTMAP_var'
where 'var' is the name of the variable to be set. Many configuration variables
are additionally allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Heightmap.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Heightmap v%s\n", heightmap.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Convert a raster into a heightmap tile.",
	Long: `run samples the configured source raster onto the output grid and
writes the binary tile and its metadata record. Nothing is written when the
conversion fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()

		job, err := HeightmapConfig(Cfg)
		if err != nil {
			return err
		}
		job.RasterPath = maybeDownload(context.TODO(), job.RasterPath, outChan)
		return RunJob(cmd, job)
	},
	DisableAutoGenTag: true,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run every job in a manifest.",
	Long: `batch runs the conversion jobs listed in a TOML manifest one after
another. Each [[job]] entry names the configuration file of one job; a
failing job stops the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunBatch(cmd, os.ExpandEnv(Cfg.GetString("manifest")))
	},
	DisableAutoGenTag: true,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a heightmap tile as a PNG image.",
	Long: `preview renders the configured tile as a colormapped PNG image for
visual inspection. When save_grid points at a previously saved grid, the tile
is loaded from there instead of being recomputed. Samples without coverage
come out transparent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()

		out := resolvePath(Cfg, os.ExpandEnv(Cfg.GetString("preview_out")))
		saved := resolvePath(Cfg, os.ExpandEnv(Cfg.GetString("save_grid")))
		if saved != "" {
			if _, err := os.Stat(saved); err == nil {
				return PreviewSaved(cmd, saved, out)
			}
		}
		job, err := HeightmapConfig(Cfg)
		if err != nil {
			return err
		}
		job.RasterPath = maybeDownload(context.TODO(), job.RasterPath, outChan)
		return PreviewJob(cmd, job, out)
	},
	DisableAutoGenTag: true,
}

var srtmfetchCmd = &cobra.Command{
	Use:   "srtmfetch",
	Short: "Prefetch the SRTM tiles covering the configured grid.",
	Long: `srtmfetch downloads the one-degree SRTM tiles whose samples the
configured grid touches from a blob storage bucket (srtm.bucket) into a local
directory (srtm.dir). Tiles already present locally are kept; tiles the
bucket does not hold are reported and skipped, since missing coverage is a
normal property of the SRTM dataset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()

		origin, grid, offset, err := GridConfig(Cfg)
		if err != nil {
			return err
		}
		dir := resolvePath(Cfg, os.ExpandEnv(Cfg.GetString("srtm.dir")))
		fetched, err := FetchSRTM(context.TODO(), origin, grid, offset,
			os.ExpandEnv(Cfg.GetString("srtm.bucket")), dir, outChan)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d tiles into %s\n", len(fetched), dir)
		return nil
	},
	DisableAutoGenTag: true,
}

// StartWebServer starts the web server.
func StartWebServer() {
	setConfig() // Ignore any errors for now.

	http.HandleFunc("/setConfig", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		configFile := r.Form["config"][0]
		Root.Flags().Set("config", configFile)
		err := setConfig()
		if err != nil {
			http.Error(w, err.Error(), 204)
			return
		}
		config := make(map[string]interface{})
		for _, option := range options {
			config[option.name] = Cfg.Get(option.name)
		}
		e := json.NewEncoder(w)
		if err := e.Encode(config); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	})

	log.Println("Loading front-end...")

	for _, cmd := range []*cobra.Command{Root, versionCmd, runCmd, batchCmd,
		previewCmd, srtmfetchCmd} {
		cmd.SilenceUsage = true // We don't want the usage messages in the GUI.
	}

	address := Cfg.GetString("addr")
	tmpl := `
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>Heightmap</title>
	<style>
		html, body {padding: 0; margin: 2% 0; font-family: sans-serif;}
		.container { max-width: 700px; margin: 0 auto; padding: 10px; }
		div[id^="gobra-"] blockquote { border-left: 3px solid #bbb; margin: .3em; color: #333; padding-left: 5px; font-size: 75%; }
		div[id^="gobra-"] code { font-weight: bold; }
		div[id^="gobra-"] input { font-family: monospace; margin-left: .2em; width: 50%; outline:none; }
		.red-border{ border: 1px solid #c35; }
		.green-border{ border: 1px solid #3c5; }
		.blue-border{ border: 1px solid #35c; }
	</style>
</head>
<body>
<div class="container">
	<h1>Heightmap</h1>
	<p>Configure the conversion below.</p>
	<p>
		Color key: black=default;
		<font color="red">red</font>=error;
		<font color="green">green</font>=value from config file;
		<font color="blue">blue</font>=user entered
	</p>
	<div>
		{{.}}
	</div>
	<footer>
		© 2018 Heightmap Authors
	</footer>
</div>

<script>
// If the configuration file is changed, send the new file path
// to the server and update fields

let allFlags = [...document.querySelectorAll('[data-name]')];
allFlags.forEach(x => {
	let inputField = x.children[0];
	inputField.addEventListener("input", e => {
		inputField.classList.remove("green-border");
		inputField.classList.add("blue-border");
	})
})

let configInput = allFlags.filter(x => x.dataset.name == "config")[0].children[0];
configInput.addEventListener("input", e => {
	fetch("http://` + address + `/setConfig?config="+configInput.value)
		.then( res => {
			if (res.status !== 200) {
				if (res.status == 204) {
					configInput.classList.remove("blue-border");
					configInput.classList.remove("green-border");
					configInput.classList.add("red-border");
				} else {
					console.log("Error fetching /setConfig: ", response.text());
				}
			} else {
				res.json().then( data => {
					configInput.classList.remove("red-border");
					for (let key in data)
						for(let f of allFlags)
							if (f.dataset.name == key) {
								let input = f.children[0];
								var newValue = JSON.stringify(data[key]).replace(/^"+|"+$/g,'');
								if (input.value != newValue) {
									input.value = newValue
									input.classList.remove("blue-border");
									input.classList.add("green-border");
								}
							}
				})
			}
		})
		.catch( err => {
			console.log("Error fetching /setConfig", err)
		})
})
</script>
</body>
</html>`

	output := template.Must(template.New("").Parse(tmpl))
	server := gobra.Server{Root: Root, ServerAddress: address, AllowCORS: false, HTML: output}
	log.Println("Server starting... ")
	open.Run("http://" + address)
	fmt.Println("If not opened automatically, please visit http://" + address)
	server.Start()
}
