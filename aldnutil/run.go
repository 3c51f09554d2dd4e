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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aldngrid"
	"github.com/spatialmodel/aldngrid/internal/observability"
)

// Run grids the strokes of one year as specified by cfg, writes the
// result to cfg.OutputFile, and returns it.
func Run(cfg *RunConfig) (*aldngrid.GriddedDataset, error) {
	m := observability.NewMetrics()

	grid, err := loadGrid(cfg, m)
	if err != nil {
		return nil, err
	}

	f, err := openFile(cfg.StrokeFile, "strokes", m)
	if err != nil {
		return nil, fmt.Errorf("aldngrid: opening stroke file: %v", err)
	}
	events, err := aldngrid.LoadEvents(f, cfg.Loader)
	f.Close()
	if err != nil {
		return nil, err
	}
	m.StrokesLoaded.Add(float64(len(events)))
	logrus.WithFields(logrus.Fields{
		"file":    cfg.StrokeFile,
		"strokes": len(events),
	}).Info("loaded strokes")

	p := &aldngrid.Pipeline{
		Grid:    grid,
		Year:    cfg.Year,
		Workers: cfg.Workers,
		Log:     logrus.StandardLogger(),
		Metrics: m,
	}
	ds, err := p.Run(events)
	if err != nil {
		return nil, err
	}
	if err = ds.WriteFile(cfg.OutputFile); err != nil {
		return nil, err
	}
	logrus.Infof("output written to %s", cfg.OutputFile)

	if cfg.MetricsFile != "" {
		if err = m.WriteFile(cfg.MetricsFile); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// loadGrid reads the grid from cfg.GridCells if the file exists, and
// otherwise creates it from cfg.Grid.
func loadGrid(cfg *RunConfig, m *observability.Metrics) (*aldngrid.Grid, error) {
	if cfg.GridCells != "" {
		if _, err := os.Stat(cfg.GridCells); err == nil {
			var grid *aldngrid.Grid
			err = retry("grid", m, func() error {
				var err error
				grid, err = aldngrid.OpenGrid(cfg.GridCells)
				return retryable(err)
			})
			if err != nil {
				return nil, err
			}
			logrus.WithFields(logrus.Fields{
				"file":  cfg.GridCells,
				"cells": len(grid.Cells),
			}).Info("loaded grid")
			return grid, nil
		}
	}
	b := cfg.Grid
	return aldngrid.NewGrid(b.Xmin, b.Ymin, b.Xmax, b.Ymax, b.Width)
}
