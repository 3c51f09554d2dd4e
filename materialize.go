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
	"time"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// GriddedDataset holds daily stroke counts on a longitude-latitude grid.
type GriddedDataset struct {
	// Dates, Lats, and Lons label the axes of Strokes.
	Dates      []time.Time
	Lats, Lons []float64

	// Strokes is the number of strokes, with shape
	// (len(Dates), len(Lats), len(Lons)).
	Strokes *sparse.DenseArray

	// Attributes are written as global attributes of the dataset file.
	Attributes map[string]string
}

// Materialize places the sparse entries in a dense (date, latitude,
// longitude) array. Cell IDs are decoded row-major, with longitude
// varying fastest. Duplicate entries are summed. An entry that does not
// fit in the array results in a *ShapeMismatchError.
func Materialize(entries []SparseEntry, days []time.Time, lats, lons []float64) (*GriddedDataset, error) {
	nd, nlat, nlon := len(days), len(lats), len(lons)
	ds := &GriddedDataset{
		Dates:      append([]time.Time(nil), days...),
		Lats:       append([]float64(nil), lats...),
		Lons:       append([]float64(nil), lons...),
		Strokes:    sparse.ZerosDense(nd, nlat, nlon),
		Attributes: make(map[string]string),
	}
	for _, e := range entries {
		if e.Day < 0 || e.Day >= nd || e.CellID < 0 || nlon == 0 || e.CellID/nlon >= nlat {
			return nil, &ShapeMismatchError{Day: e.Day, CellID: e.CellID, NDays: nd, NLats: nlat, NLons: nlon}
		}
		ds.Strokes.AddVal(e.Value, e.Day, e.CellID/nlon, e.CellID%nlon)
	}
	return ds, nil
}

// At returns the stroke count at the given axis indices.
func (ds *GriddedDataset) At(day, lat, lon int) float64 {
	return ds.Strokes.Get(day, lat, lon)
}

// Total returns the total number of strokes.
func (ds *GriddedDataset) Total() float64 {
	return floats.Sum(ds.Strokes.Elements)
}

// DailyTotals returns the total number of strokes on each date.
func (ds *GriddedDataset) DailyTotals() []float64 {
	o := make([]float64, len(ds.Dates))
	n := len(ds.Lats) * len(ds.Lons)
	for i := range o {
		o[i] = floats.Sum(ds.Strokes.Elements[i*n : (i+1)*n])
	}
	return o
}
