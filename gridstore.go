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

package aldngrid

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// Attribute field names in grid-cell shapefiles.
const (
	fieldID  = "id"
	fieldLat = "lat"
	fieldLon = "lon"
)

// WriteShp writes the grid cells to the shapefile at path, replacing any
// existing shapefile with the same name.
func (grid *Grid) WriteShp(path string) error {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range []string{".shp", ".prj", ".dbf", ".shx"} {
		os.Remove(base + ext)
	}
	fields := []goshp.Field{
		goshp.NumberField(fieldID, 10),
		goshp.FloatField(fieldLat, 16, 8),
		goshp.FloatField(fieldLon, 16, 8),
	}
	shpf, err := shp.NewEncoderFromFields(base+".shp", goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("aldngrid: creating grid shapefile: %v", err)
	}
	for _, cell := range grid.Cells {
		data := []interface{}{cell.ID, cell.Lat, cell.Lon}
		if err = shpf.EncodeFields(cell.Polygonal, data...); err != nil {
			shpf.Close()
			return fmt.Errorf("aldngrid: writing grid cell %d: %v", cell.ID, err)
		}
	}
	shpf.Close()
	return nil
}

// ReadGridShp reads a grid from a shapefile with polygon geometry and
// "id", "lat", and "lon" attribute fields, as written by WriteShp.
func ReadGridShp(path string) (*Grid, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("aldngrid: opening grid shapefile: %w", err)
	}
	defer d.Close()
	dbf := strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	if _, err := os.Stat(dbf); err != nil {
		return nil, fmt.Errorf("aldngrid: opening grid shapefile attributes: %w", err)
	}

	var cells []*GridCell
	for {
		g, fields, more := d.DecodeRowFields(fieldID, fieldLat, fieldLon)
		if err := d.Error(); err != nil {
			return nil, fmt.Errorf("aldngrid: reading grid shapefile row %d: %v", len(cells), err)
		}
		if !more {
			break
		}
		cell := new(GridCell)
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("aldngrid: grid shapefile row %d: geometry type %T is not a polygon", len(cells), g)
		}
		cell.Polygonal = p
		id, err := s2f(fields[fieldID])
		if err != nil {
			return nil, fmt.Errorf("aldngrid: grid shapefile row %d: %v", len(cells), err)
		}
		cell.ID = int(id)
		if cell.Lat, err = s2f(fields[fieldLat]); err != nil {
			return nil, fmt.Errorf("aldngrid: grid shapefile row %d: %v", len(cells), err)
		}
		if cell.Lon, err = s2f(fields[fieldLon]); err != nil {
			return nil, fmt.Errorf("aldngrid: grid shapefile row %d: %v", len(cells), err)
		}
		cells = append(cells, cell)
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("aldngrid: reading grid shapefile: %v", err)
	}
	return newGridFromCells(cells)
}

// s2f parses a shapefile attribute, which may be padded with spaces or
// null bytes.
func s2f(s string) (float64, error) {
	return strconv.ParseFloat(strings.Trim(s, " \x00"), 64)
}

// Save writes the grid cells to w in gob format
// (https://golang.org/pkg/encoding/gob/).
func (grid *Grid) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(grid.Cells); err != nil {
		return fmt.Errorf("aldngrid: saving grid: %v", err)
	}
	return nil
}

// LoadGrid reads a grid previously written by Save.
func LoadGrid(r io.Reader) (*Grid, error) {
	var cells []*GridCell
	if err := gob.NewDecoder(r).Decode(&cells); err != nil {
		return nil, fmt.Errorf("aldngrid: loading grid: %v", err)
	}
	return newGridFromCells(cells)
}

// WriteFile writes the grid to path, as a gob file if path ends in
// ".gob" and as a shapefile otherwise.
func (grid *Grid) WriteFile(path string) error {
	if filepath.Ext(path) != ".gob" {
		return grid.WriteShp(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aldngrid: creating grid file: %v", err)
	}
	if err := grid.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// OpenGrid reads a grid from path, as a gob file if path ends in ".gob"
// and as a shapefile otherwise.
func OpenGrid(path string) (*Grid, error) {
	if filepath.Ext(path) != ".gob" {
		return ReadGridShp(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("aldngrid: opening grid file: %w", err)
	}
	defer f.Close()
	return LoadGrid(f)
}
