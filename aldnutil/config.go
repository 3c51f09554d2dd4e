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

package aldnutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aldngrid"
	"github.com/spf13/cast"
)

// GridBounds holds the extent and resolution of a regular grid.
type GridBounds struct {
	Xmin, Ymin, Xmax, Ymax, Width float64
}

// RunConfig holds the settings of a gridding run.
type RunConfig struct {
	Grid       GridBounds
	GridCells  string
	StrokeFile string
	Year       int
	OutputFile string
	Workers    int

	// MetricsFile is where run metrics are written. Empty means none.
	MetricsFile string

	Loader aldngrid.LoaderConfig
}

// gridBounds unmarshals the grid configuration.
func gridBounds(cfg *viper.Viper) (GridBounds, error) {
	var b GridBounds
	for _, v := range []struct {
		name string
		dst  *float64
	}{
		{"Grid.Xmin", &b.Xmin},
		{"Grid.Ymin", &b.Ymin},
		{"Grid.Xmax", &b.Xmax},
		{"Grid.Ymax", &b.Ymax},
		{"Grid.Width", &b.Width},
	} {
		f, err := cast.ToFloat64E(cfg.Get(v.name))
		if err != nil {
			return b, fmt.Errorf("parsing grid configuration: %s: %v", v.name, err)
		}
		*v.dst = f
	}
	return b, nil
}

// runConfig unmarshals the configuration of a gridding run.
func runConfig(cfg *viper.Viper) (*RunConfig, error) {
	b, err := gridBounds(cfg)
	if err != nil {
		return nil, err
	}
	year, err := cast.ToIntE(cfg.Get("Year"))
	if err != nil {
		return nil, fmt.Errorf("parsing Year: %v", err)
	}
	if year < 1 {
		return nil, fmt.Errorf("you need to specify the year to grid (for example: --Year=%d)", time.Now().Year()-1)
	}
	workers, err := cast.ToIntE(cfg.Get("Workers"))
	if err != nil {
		return nil, fmt.Errorf("parsing Workers: %v", err)
	}
	strokeFile := os.ExpandEnv(cfg.GetString("StrokeFile"))
	if strokeFile == "" {
		return nil, fmt.Errorf(`you need to specify a stroke file configuration variable (for example: StrokeFile="strokes.csv")`)
	}
	outputFile, err := checkOutputFile(expandYear(cfg.GetString("OutputFile"), year))
	if err != nil {
		return nil, err
	}
	c := &RunConfig{
		Grid:        b,
		GridCells:   os.ExpandEnv(cfg.GetString("GridCells")),
		StrokeFile:  strokeFile,
		Year:        year,
		OutputFile:  outputFile,
		Workers:     workers,
		MetricsFile: expandYear(cfg.GetString("MetricsFile"), year),
		Loader: aldngrid.LoaderConfig{
			CategoryColumn:  os.ExpandEnv(cfg.GetString("Columns.Category")),
			LatitudeColumn:  os.ExpandEnv(cfg.GetString("Columns.Latitude")),
			LongitudeColumn: os.ExpandEnv(cfg.GetString("Columns.Longitude")),
			TimeColumn:      os.ExpandEnv(cfg.GetString("Columns.Time")),
			ExcludeCategory: cfg.GetString("ExcludeCategory"),
			DatetimeFormat:  cfg.GetString("DatetimeFormat"),
		},
	}
	return c, nil
}

// expandYear expands ${Year} to year and any other environment
// variables in s.
func expandYear(s string, year int) string {
	return os.Expand(s, func(v string) string {
		if v == "Year" {
			return strconv.Itoa(year)
		}
		return os.Getenv(v)
	})
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.nc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("aldngrid: the output directory doesn't exist: %v", err)
	}
	return f, nil
}

// setLogger configures the standard logrus logger.
func setLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("aldngrid: invalid LogLevel: %v", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	return nil
}
