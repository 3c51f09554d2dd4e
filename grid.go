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
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/spatialmodel/aldngrid/internal/hash"
)

func init() {
	gob.Register(geom.Polygon{})
}

// Grid specifies the longitude-latitude cells that strokes are
// allocated to.
type Grid struct {
	// Cells holds the grid cells, where Cells[i].ID == i.
	Cells []*GridCell

	// Lats and Lons are the unique cell center coordinates in increasing
	// order. Cell IDs are row-major over (Lats, Lons): longitude varies
	// fastest.
	Lats, Lons []float64

	// Width is the cell edge length in degrees.
	Width float64

	regular bool // whether the cells form a complete regular lattice
	rtree   *rtree.Rtree
}

// GridCell defines an individual cell in a grid.
type GridCell struct {
	geom.Polygonal
	ID       int
	Lat, Lon float64 // cell center
}

// maxCells is the largest number of cells in a grid. Cell IDs are
// stored in 10-digit shapefile fields.
const maxCells = math.MaxInt32

// NewGrid creates a regular grid whose cell centers step from ymin to ymax
// (outer axis) and xmin to xmax (inner axis) by width, both inclusive.
// Each cell is a box of edge length width centered on its center point,
// so adjacent cells share edges at the midpoints between centers.
// The number of cells is ceil((xmax-xmin)/width+1) * ceil((ymax-ymin)/width+1),
// which may not exceed maxCells.
func NewGrid(xmin, ymin, xmax, ymax, width float64) (*Grid, error) {
	invalid := &InvalidBoundsError{Xmin: xmin, Ymin: ymin, Xmax: xmax, Ymax: ymax, Width: width}
	// The negated comparisons also reject NaN.
	if !(xmax >= xmin) || !(ymax >= ymin) || !(width > 0) {
		return nil, invalid
	}
	for _, v := range []float64{xmin, ymin, xmax, ymax, width} {
		if math.IsInf(v, 0) {
			return nil, invalid
		}
	}
	fx := math.Ceil((xmax-xmin)/width + 1)
	fy := math.Ceil((ymax-ymin)/width + 1)
	if fx*fy > maxCells {
		return nil, invalid
	}
	nx, ny := int(fx), int(fy)

	grid := &Grid{
		Lons:    make([]float64, nx),
		Lats:    make([]float64, ny),
		Width:   width,
		regular: true,
		rtree:   rtree.NewTree(25, 50),
	}
	for i := range grid.Lons {
		grid.Lons[i] = xmin + float64(i)*width
	}
	for j := range grid.Lats {
		grid.Lats[j] = ymin + float64(j)*width
	}

	grid.Cells = make([]*GridCell, 0, nx*ny)
	for _, y := range grid.Lats {
		for _, x := range grid.Lons {
			cell := &GridCell{
				ID:        len(grid.Cells),
				Lat:       y,
				Lon:       x,
				Polygonal: box(x, y, width/2),
			}
			grid.rtree.Insert(cell)
			grid.Cells = append(grid.Cells, cell)
		}
	}
	return grid, nil
}

// box returns a square polygon centered on (x, y).
func box(x, y, h float64) geom.Polygon {
	return geom.Polygon([]geom.Path{{
		{X: x - h, Y: y - h}, {X: x + h, Y: y - h},
		{X: x + h, Y: y + h}, {X: x - h, Y: y + h}, {X: x - h, Y: y - h}}})
}

// newGridFromCells creates a grid from previously built cells, for example
// cells read from a grid-cell file. The cell IDs must be dense. If the
// cells form a complete regular lattice, point lookups use direct index
// arithmetic; otherwise they fall back to polygon containment tests.
func newGridFromCells(cells []*GridCell) (*Grid, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("aldngrid: grid has no cells")
	}
	grid := &Grid{
		Cells: make([]*GridCell, len(cells)),
		rtree: rtree.NewTree(25, 50),
	}
	lats := make(map[float64]struct{})
	lons := make(map[float64]struct{})
	for _, c := range cells {
		if c.ID < 0 || c.ID >= len(cells) {
			return nil, fmt.Errorf("aldngrid: grid cell id %d is out of range [0, %d)", c.ID, len(cells))
		}
		if grid.Cells[c.ID] != nil {
			return nil, fmt.Errorf("aldngrid: duplicate grid cell id %d", c.ID)
		}
		grid.Cells[c.ID] = c
		grid.rtree.Insert(c)
		lats[c.Lat] = struct{}{}
		lons[c.Lon] = struct{}{}
	}
	grid.Lats = sortedKeys(lats)
	grid.Lons = sortedKeys(lons)

	b := grid.Cells[0].Bounds()
	grid.Width = b.Max.X - b.Min.X
	grid.regular = grid.isLattice()
	return grid, nil
}

func sortedKeys(m map[float64]struct{}) []float64 {
	o := make([]float64, 0, len(m))
	for v := range m {
		o = append(o, v)
	}
	sort.Float64s(o)
	return o
}

// isLattice reports whether the grid cells are the ones NewGrid would
// create for the grid's coordinates and width.
func (grid *Grid) isLattice() bool {
	const tolerance = 1.e-9
	nx, ny := len(grid.Lons), len(grid.Lats)
	if len(grid.Cells) != nx*ny || !(grid.Width > 0) {
		return false
	}
	near := func(a, b float64) bool { return math.Abs(a-b) <= tolerance*grid.Width }
	for i, x := range grid.Lons {
		if !near(x, grid.Lons[0]+float64(i)*grid.Width) {
			return false
		}
	}
	for j, y := range grid.Lats {
		if !near(y, grid.Lats[0]+float64(j)*grid.Width) {
			return false
		}
	}
	h := grid.Width / 2
	for _, c := range grid.Cells {
		if c.Lat != grid.Lats[c.ID/nx] || c.Lon != grid.Lons[c.ID%nx] {
			return false
		}
		b := c.Bounds()
		if !near(b.Min.X, c.Lon-h) || !near(b.Max.X, c.Lon+h) ||
			!near(b.Min.Y, c.Lat-h) || !near(b.Max.Y, c.Lat+h) {
			return false
		}
	}
	return true
}

// Regular reports whether the grid is a complete regular lattice.
func (grid *Grid) Regular() bool { return grid.regular }

// Locate returns the ID of the cell that contains the point (lon, lat).
// ok is false if the point is not within the grid. Cell boundaries,
// including the outer boundary of the grid, belong to the grid; a point
// on a boundary shared by more than one cell belongs to the one with the
// highest ID, which in a regular grid is the cell above or to the right.
// A point inside more than one cell results in an *OverlappingGridError.
func (grid *Grid) Locate(lon, lat float64) (id int, ok bool, err error) {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return -1, false, nil
	}
	if grid.regular {
		i, ok := latticeIndex(lon, grid.Lons[0], grid.Width, len(grid.Lons))
		if !ok {
			return -1, false, nil
		}
		j, ok := latticeIndex(lat, grid.Lats[0], grid.Width, len(grid.Lats))
		if !ok {
			return -1, false, nil
		}
		return j*len(grid.Lons) + i, true, nil
	}
	return grid.search(geom.Point{X: lon, Y: lat})
}

// latticeIndex returns the index along one axis of the cell containing v,
// where the n cell centers start at v0 and are spaced width apart.
// Cells are half-open except the last, which includes its upper edge.
func latticeIndex(v, v0, width float64, n int) (int, bool) {
	f := (v-v0)/width + 0.5
	i := math.Floor(f)
	if i == float64(n) && f == i {
		i-- // upper edge of the grid
	}
	if i < 0 || i >= float64(n) {
		return -1, false
	}
	return int(i), true
}

// search finds the cell containing p using the spatial index.
func (grid *Grid) search(p geom.Point) (id int, ok bool, err error) {
	var inside, edge []int
	for _, cI := range grid.rtree.SearchIntersect(p.Bounds()) {
		c := cI.(*GridCell)
		switch p.Within(c.Polygonal) {
		case geom.Inside:
			inside = append(inside, c.ID)
		case geom.OnEdge:
			edge = append(edge, c.ID)
		}
	}
	switch {
	case len(inside) > 1:
		sort.Ints(inside)
		return -1, false, &OverlappingGridError{X: p.X, Y: p.Y, CellIDs: inside}
	case len(inside) == 1:
		return inside[0], true, nil
	case len(edge) > 0:
		sort.Ints(edge)
		return edge[len(edge)-1], true, nil
	}
	return -1, false, nil
}

// cellKey holds the properties of a cell that identify a grid.
type cellKey struct {
	ID       int
	Lat, Lon float64
	Min, Max geom.Point
}

// Hash returns a fingerprint of the grid geometry: the cell width and
// each cell's ID, center, and extent.
func (grid *Grid) Hash() string {
	cells := make([]cellKey, len(grid.Cells))
	for i, c := range grid.Cells {
		b := c.Bounds()
		cells[i] = cellKey{ID: c.ID, Lat: c.Lat, Lon: c.Lon, Min: b.Min, Max: b.Max}
	}
	return hash.Hash(grid.Width, cells)
}
