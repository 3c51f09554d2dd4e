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
	"strings"
)

// InvalidBoundsError is returned when a grid is requested with bounds
// that are out of order or a cell width that is not positive.
type InvalidBoundsError struct {
	Xmin, Ymin, Xmax, Ymax, Width float64
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("aldngrid: invalid grid bounds x=[%g, %g], y=[%g, %g], width=%g",
		e.Xmin, e.Xmax, e.Ymin, e.Ymax, e.Width)
}

// MalformedTimestampError is returned when the timestamp of a stroke
// record cannot be parsed with the configured format.
type MalformedTimestampError struct {
	Record int    // 1-based data record number, not counting the header
	Value  string // timestamp text as it appears in the record
	Format string // strftime format that was used
	Err    error
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("aldngrid: record %d: timestamp %q does not match format %q: %v",
		e.Record, e.Value, e.Format, e.Err)
}

func (e *MalformedTimestampError) Unwrap() error { return e.Err }

// OverlappingGridError is returned when a point lies inside more than one
// grid cell. It indicates a badly constructed grid, not bad input.
type OverlappingGridError struct {
	X, Y    float64
	CellIDs []int
}

func (e *OverlappingGridError) Error() string {
	ids := make([]string, len(e.CellIDs))
	for i, id := range e.CellIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("aldngrid: point (%g, %g) is inside %d grid cells (%s)",
		e.X, e.Y, len(e.CellIDs), strings.Join(ids, ", "))
}

// ShapeMismatchError is returned when a sparse entry cannot be placed in
// the dense output array.
type ShapeMismatchError struct {
	Day, CellID         int
	NDays, NLats, NLons int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("aldngrid: entry (day %d, cell %d) is outside output shape (%d, %d, %d)",
		e.Day, e.CellID, e.NDays, e.NLats, e.NLons)
}
