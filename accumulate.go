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
	"sort"

	"github.com/ctessum/sparse"
)

// SparseEntry is the accumulated stroke count of one grid cell on one day.
type SparseEntry struct {
	Day, CellID int
	Value       float64
}

// Accumulator sums stroke counts by (day, cell), holding only the
// pairs that have strokes. Accumulation is commutative, so days may be
// accumulated in any order and partial accumulators may be merged.
type Accumulator struct {
	strokes *sparse.SparseArray
}

// NewAccumulator returns an empty accumulator for ndays days and ncells
// grid cells.
func NewAccumulator(ndays, ncells int) *Accumulator {
	return &Accumulator{strokes: sparse.ZerosSparse(ndays, ncells)}
}

// Shape returns the number of days and grid cells.
func (a *Accumulator) Shape() (ndays, ncells int) {
	return a.strokes.Shape[0], a.strokes.Shape[1]
}

// Accumulate adds the strokes represented by assignments to the
// counts for day.
func (a *Accumulator) Accumulate(day int, assignments []Assignment) error {
	ndays, ncells := a.Shape()
	if day < 0 || day >= ndays {
		return fmt.Errorf("aldngrid: day index %d is out of range [0, %d)", day, ndays)
	}
	for _, as := range assignments {
		if as.CellID < 0 || as.CellID >= ncells {
			return fmt.Errorf("aldngrid: cell id %d is out of range [0, %d)", as.CellID, ncells)
		}
		a.strokes.AddVal(as.Strokes(), day, as.CellID)
	}
	return nil
}

// Merge adds the counts in b to a.
func (a *Accumulator) Merge(b *Accumulator) error {
	ad, ac := a.Shape()
	bd, bc := b.Shape()
	if ad != bd || ac != bc {
		return fmt.Errorf("aldngrid: cannot merge accumulator of shape (%d, %d) into shape (%d, %d)", bd, bc, ad, ac)
	}
	a.strokes.AddSparse(b.strokes)
	return nil
}

// Finalize returns the non-zero counts, sorted by day and then cell.
func (a *Accumulator) Finalize() []SparseEntry {
	_, ncells := a.Shape()
	idx := make([]int, 0, len(a.strokes.Elements))
	for i, v := range a.strokes.Elements {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	o := make([]SparseEntry, len(idx))
	for i, i1d := range idx {
		o[i] = SparseEntry{
			Day:    i1d / ncells,
			CellID: i1d % ncells,
			Value:  a.strokes.Elements[i1d],
		}
	}
	return o
}
