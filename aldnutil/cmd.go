/*
Copyright © 2020 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package aldnutil contains the command line interface to the aldngrid
// lightning gridding library.
package aldnutil

import (
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/aldngrid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	def := aldngrid.DefaultLoaderConfig()

	// Options are the configuration options available to aldngrid.
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
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum severity of log messages:
              one of debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Grid.Xmin",
			usage: `
              Grid.Xmin specifies the longitude of the center of the
              westernmost grid cells, in degrees east in [0, 360).`,
			defaultVal: 171.0,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), runCmd.Flags()},
		},
		{
			name: "Grid.Ymin",
			usage: `
              Grid.Ymin specifies the latitude of the center of the
              southernmost grid cells, in degrees north.`,
			defaultVal: 46.0,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), runCmd.Flags()},
		},
		{
			name: "Grid.Xmax",
			usage: `
              Grid.Xmax specifies the longitude of the center of the
              easternmost grid cells, in degrees east in [0, 360).`,
			defaultVal: 261.0,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), runCmd.Flags()},
		},
		{
			name: "Grid.Ymax",
			usage: `
              Grid.Ymax specifies the latitude of the center of the
              northernmost grid cells, in degrees north.`,
			defaultVal: 72.0,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), runCmd.Flags()},
		},
		{
			name: "Grid.Width",
			usage: `
              Grid.Width specifies the edge length of the grid cells in degrees.`,
			defaultVal: 0.25,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), runCmd.Flags()},
		},
		{
			name: "GridCells",
			usage: `
              GridCells specifies the path of the grid cell file. The grid
              command writes it; the run command reads it if it exists and
              otherwise builds the grid from the Grid options. Files ending
              in .gob are stored in gob format, others as shapefiles.`,
			defaultVal: "gridcells.shp",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), runCmd.Flags()},
		},
		{
			name: "StrokeFile",
			usage: `
              StrokeFile specifies the path of the CSV file of lightning
              strokes to grid.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Year",
			usage: `
              Year specifies the calendar year to grid. Strokes on dates
              in other years are ignored.`,
			shorthand:  "y",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DatetimeFormat",
			usage: `
              DatetimeFormat specifies the strftime format of the stroke
              timestamps. Timestamps without a time zone are read as UTC.`,
			defaultVal: def.DatetimeFormat,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path of the netCDF file to write.
              ${Year} is replaced by the gridded year.`,
			shorthand:  "o",
			defaultVal: "gridded_lightning_${Year}.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers specifies the number of days to grid concurrently.
              Values less than 1 use all available processors.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MetricsFile",
			usage: `
              MetricsFile specifies a path to write run metrics to in the
              Prometheus text format. No metrics are written if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Columns.Category",
			usage: `
              Columns.Category specifies the name of the stroke type column.`,
			defaultVal: def.CategoryColumn,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Columns.Latitude",
			usage: `
              Columns.Latitude specifies the name of the latitude column.`,
			defaultVal: def.LatitudeColumn,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Columns.Longitude",
			usage: `
              Columns.Longitude specifies the name of the longitude column.`,
			defaultVal: def.LongitudeColumn,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Columns.Time",
			usage: `
              Columns.Time specifies the name of the timestamp column.`,
			defaultVal: def.TimeColumn,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ExcludeCategory",
			usage: `
              ExcludeCategory specifies the stroke type that is dropped
              before gridding.`,
			defaultVal: def.ExcludeCategory,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ALDNGRID")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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
	Root.AddCommand(gridCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and configures logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("aldngrid: problem reading configuration file: %v", err)
		}
	}
	return setLogger(Cfg.GetString("LogLevel"))
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "aldngrid",
	Short: "Daily gridding of lightning strokes.",
	Long: `aldngrid converts lightning stroke records, such as those from the Alaska
Lightning Detection Network, into daily counts of strokes on a regular
longitude-latitude grid, and writes them to a netCDF file.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ALDNGRID_var' where 'var' is the
name of the variable to be set, with dots replaced by underscores
(for example ALDNGRID_GRID_WIDTH). File paths are additionally
allowed to contain environment variables within them.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of aldngrid.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("aldngrid v%s\n", aldngrid.Version)
	},
	DisableAutoGenTag: true,
}

// gridCmd is a command that creates and saves a new grid.
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Create a grid",
	Long: `grid creates a regular longitude-latitude grid as specified by the Grid
options and saves it to the GridCells file. The saved grid can then be used
by future runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := gridBounds(Cfg)
		if err != nil {
			return err
		}
		gridFile, err := checkOutputFile(Cfg.GetString("GridCells"))
		if err != nil {
			return err
		}
		return Grid(b, gridFile)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that grids the strokes of one year.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Grid lightning strokes.",
	Long: `run reads the strokes in StrokeFile, counts the strokes in each grid
cell on each day of Year, and writes the counts to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := runConfig(Cfg)
		if err != nil {
			return err
		}
		_, err = Run(cfg)
		return err
	},
	DisableAutoGenTag: true,
}
