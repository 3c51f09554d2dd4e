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
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aldngrid"
)

// Grid creates a regular grid with bounds b and saves it to gridFile.
func Grid(b GridBounds, gridFile string) error {
	grid, err := aldngrid.NewGrid(b.Xmin, b.Ymin, b.Xmax, b.Ymax, b.Width)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"cells": len(grid.Cells),
		"lons":  len(grid.Lons),
		"lats":  len(grid.Lats),
	}).Info("creating grid")
	if err := grid.WriteFile(gridFile); err != nil {
		return err
	}
	logrus.Infof("grid successfully created at %s", gridFile)
	return nil
}
