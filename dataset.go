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
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Names of dimensions and variables in dataset files.
const (
	dimDate    = "date"
	dimLat     = "lat"
	dimLon     = "lon"
	varStrokes = "strokes"

	dateUnits = "days since 1970-01-01 00:00:00"
)

// DefaultOutputFile returns the default dataset file name for year.
func DefaultOutputFile(year int) string {
	return fmt.Sprintf("gridded_lightning_%d.nc", year)
}

// Write writes the dataset to w in netCDF classic format, following the
// COARDS conventions.
func (ds *GriddedDataset) Write(w *os.File) error {
	nd, nlat, nlon := len(ds.Dates), len(ds.Lats), len(ds.Lons)
	h := cdf.NewHeader([]string{dimDate, dimLat, dimLon}, []int{nd, nlat, nlon})

	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(ds.Attributes))
	for n := range ds.Attributes {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		h.AddAttribute("", n, ds.Attributes[n])
	}

	h.AddVariable(dimDate, []string{dimDate}, []float64{0})
	h.AddAttribute(dimDate, "long_name", "date")
	h.AddAttribute(dimDate, "units", dateUnits)
	h.AddVariable(dimLat, []string{dimLat}, []float64{0})
	h.AddAttribute(dimLat, "long_name", "latitude")
	h.AddAttribute(dimLat, "units", "degrees_north")
	h.AddVariable(dimLon, []string{dimLon}, []float64{0})
	h.AddAttribute(dimLon, "long_name", "longitude")
	h.AddAttribute(dimLon, "units", "degrees_east")
	h.AddVariable(varStrokes, []string{dimDate, dimLat, dimLon}, []float64{0})
	h.AddAttribute(varStrokes, "long_name", "lightning strokes per grid cell per day")
	h.AddAttribute(varStrokes, "units", "strokes")
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}

	days := make([]float64, nd)
	for i, d := range ds.Dates {
		days[i] = float64(d.Unix()) / (24 * 60 * 60)
	}
	for _, v := range []struct {
		name string
		data []float64
	}{
		{dimDate, days},
		{dimLat, ds.Lats},
		{dimLon, ds.Lons},
		{varStrokes, ds.Strokes.Elements},
	} {
		if err = writeNCF(f, v.name, v.data); err != nil {
			return fmt.Errorf("aldngrid: writing variable %s to netcdf file: %v", v.name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, v string, data []float64) error {
	end := f.Header.Lengths(v)
	n := 1
	for _, l := range end {
		n *= l
	}
	if len(data) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data))
	}
	if n == 0 {
		return nil
	}
	start := make([]int, len(end))
	_, err := f.Writer(v, start, end).Write(data)
	return err
}

// WriteFile writes the dataset to path. The data are written to a
// temporary file in the same directory, which is renamed to path only
// after the write has succeeded.
func (ds *GriddedDataset) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("aldngrid: creating dataset file: %v", err)
	}
	if err = tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("aldngrid: creating dataset file: %v", err)
	}
	if err = ds.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("aldngrid: closing dataset file: %v", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("aldngrid: moving dataset file into place: %v", err)
	}
	return nil
}

// ReadDataset reads a dataset file written by WriteFile.
func ReadDataset(path string) (*GriddedDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("aldngrid: opening dataset file: %v", err)
	}
	defer f.Close()
	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("aldngrid: reading dataset file %s: %v", path, err)
	}

	ds := &GriddedDataset{Attributes: make(map[string]string)}
	for _, a := range nc.Header.Attributes("") {
		if s, ok := nc.Header.GetAttribute("", a).(string); ok {
			ds.Attributes[a] = s
		}
	}

	var days, strokes []float64
	for _, v := range []struct {
		name string
		dst  *[]float64
	}{
		{dimDate, &days},
		{dimLat, &ds.Lats},
		{dimLon, &ds.Lons},
		{varStrokes, &strokes},
	} {
		if *v.dst, err = readNCF(nc, v.name); err != nil {
			return nil, fmt.Errorf("aldngrid: reading variable %s from %s: %v", v.name, path, err)
		}
	}

	ds.Dates = make([]time.Time, len(days))
	for i, d := range days {
		ds.Dates[i] = time.Unix(int64(math.Round(d*24*60*60)), 0).UTC()
	}
	ds.Strokes = sparse.ZerosDense(len(ds.Dates), len(ds.Lats), len(ds.Lons))
	if len(strokes) != len(ds.Strokes.Elements) {
		return nil, fmt.Errorf("aldngrid: %s: variable %s has %d values; want %d",
			path, varStrokes, len(strokes), len(ds.Strokes.Elements))
	}
	copy(ds.Strokes.Elements, strokes)
	return ds, nil
}

// readNCF reads a double precision variable.
func readNCF(nc *cdf.File, v string) ([]float64, error) {
	lengths := nc.Header.Lengths(v)
	if lengths == nil {
		return nil, fmt.Errorf("variable is missing")
	}
	n := 1
	for _, l := range lengths {
		n *= l
	}
	if n == 0 {
		return nil, nil
	}
	data, ok := nc.Header.ZeroValue(v, n).([]float64)
	if !ok {
		return nil, fmt.Errorf("variable is not double precision")
	}
	if _, err := nc.Reader(v, nil, nil).Read(data); err != nil {
		return nil, err
	}
	return data, nil
}
