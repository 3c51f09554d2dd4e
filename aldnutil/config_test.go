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
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
)

func TestExpandYear(t *testing.T) {
	os.Setenv("ALDNGRID_TEST_DIR", "/data")
	defer os.Unsetenv("ALDNGRID_TEST_DIR")
	have := expandYear("${ALDNGRID_TEST_DIR}/gridded_lightning_${Year}.nc", 2016)
	if want := "/data/gridded_lightning_2016.nc"; have != want {
		t.Errorf("%s != %s", have, want)
	}
}

func TestCheckOutputFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := checkOutputFile(""); err == nil {
		t.Error("empty: expected an error")
	}
	if _, err := checkOutputFile(filepath.Join(dir, "missing", "out.nc")); err == nil {
		t.Error("missing directory: expected an error")
	}
	if _, err := checkOutputFile(filepath.Join(dir, "out.nc")); err != nil {
		t.Error(err)
	}
}

func TestRunConfig(t *testing.T) {
	dir := t.TempDir()
	newCfg := func() *viper.Viper {
		cfg := viper.New()
		cfg.Set("Grid.Xmin", 171)
		cfg.Set("Grid.Ymin", "46")
		cfg.Set("Grid.Xmax", 261.0)
		cfg.Set("Grid.Ymax", 72)
		cfg.Set("Grid.Width", 0.25)
		cfg.Set("StrokeFile", "strokes.csv")
		cfg.Set("Year", "2016")
		cfg.Set("Workers", 2)
		cfg.Set("OutputFile", filepath.Join(dir, "out_${Year}.nc"))
		cfg.Set("DatetimeFormat", "%m/%d/%Y %X")
		cfg.Set("Columns.Category", "STROKETYPE")
		return cfg
	}
	c, err := runConfig(newCfg())
	if err != nil {
		t.Fatal(err)
	}
	want := GridBounds{Xmin: 171, Ymin: 46, Xmax: 261, Ymax: 72, Width: 0.25}
	if c.Grid != want {
		t.Errorf("%+v != %+v", c.Grid, want)
	}
	if c.Year != 2016 || c.Workers != 2 {
		t.Errorf("year=%d, workers=%d", c.Year, c.Workers)
	}
	if want := filepath.Join(dir, "out_2016.nc"); c.OutputFile != want {
		t.Errorf("%s != %s", c.OutputFile, want)
	}
	if c.Loader.CategoryColumn != "STROKETYPE" || c.Loader.DatetimeFormat != "%m/%d/%Y %X" {
		t.Errorf("loader config: %+v", c.Loader)
	}

	for _, test := range []struct {
		name, key string
		val       interface{}
	}{
		{name: "no year", key: "Year", val: 0},
		{name: "bad year", key: "Year", val: "last year"},
		{name: "no stroke file", key: "StrokeFile", val: ""},
		{name: "bad bound", key: "Grid.Xmin", val: "west"},
		{name: "no output file", key: "OutputFile", val: ""},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg := newCfg()
			cfg.Set(test.key, test.val)
			if _, err := runConfig(cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aldngrid.toml")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	err = toml.NewEncoder(f).Encode(map[string]interface{}{
		"StrokeFile": "${ALDNGRID_TEST_DIR}/strokes.csv",
		"Year":       2016,
		"OutputFile": filepath.Join(dir, "lightning_${Year}.nc"),
		"Workers":    4,
		"Grid": map[string]float64{
			"Xmin":  200,
			"Ymin":  60,
			"Xmax":  210,
			"Ymax":  70,
			"Width": 0.5,
		},
	})
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	os.Setenv("ALDNGRID_TEST_DIR", dir)
	defer os.Unsetenv("ALDNGRID_TEST_DIR")

	cfg := viper.New()
	cfg.SetConfigFile(path)
	if err := cfg.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	c, err := runConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := GridBounds{Xmin: 200, Ymin: 60, Xmax: 210, Ymax: 70, Width: 0.5}
	if c.Grid != want {
		t.Errorf("%+v != %+v", c.Grid, want)
	}
	if want := filepath.Join(dir, "strokes.csv"); c.StrokeFile != want {
		t.Errorf("%s != %s", c.StrokeFile, want)
	}
	if want := filepath.Join(dir, "lightning_2016.nc"); c.OutputFile != want {
		t.Errorf("%s != %s", c.OutputFile, want)
	}
	if c.Workers != 4 {
		t.Errorf("have %d workers, want 4", c.Workers)
	}
}

func TestSetLogger(t *testing.T) {
	if err := setLogger("debug"); err != nil {
		t.Error(err)
	}
	if err := setLogger("loud"); err == nil {
		t.Error("expected an error")
	}
	setLogger("info")
}
