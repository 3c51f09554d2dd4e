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

// Assignment is the allocation of one stroke to a grid cell.
type Assignment struct {
	CellID int

	// Weight is the stroke's share of its (day, cell) group: 1/GroupSize.
	Weight float64

	// GroupSize is the number of strokes in the same day bucket that
	// were assigned to the same cell.
	GroupSize int
}

// Strokes returns the number of strokes the assignment stands for.
// Weights within a (day, cell) group sum to one, and the group
// stands for GroupSize strokes.
func (a Assignment) Strokes() float64 {
	if a.Weight == 1/float64(a.GroupSize) {
		return 1 // (1/k)*k is not always exactly one in floating point.
	}
	return a.Weight * float64(a.GroupSize)
}

// Assign allocates the strokes in b to the grid cells that contain them.
// The result holds one Assignment for each stroke within the grid, in
// the order of b.Events; strokes outside the grid are dropped.
// Each stroke is weighted by the reciprocal of the number of strokes in
// b assigned to the same cell.
func (grid *Grid) Assign(b *DayBucket) ([]Assignment, error) {
	o := make([]Assignment, 0, len(b.Events))
	counts := make(map[int]int)
	for _, e := range b.Events {
		id, ok, err := grid.Locate(e.Lon, e.Lat)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		counts[id]++
		o = append(o, Assignment{CellID: id})
	}
	for i, a := range o {
		k := counts[a.CellID]
		o[i].GroupSize = k
		o[i].Weight = 1 / float64(k)
	}
	return o, nil
}
