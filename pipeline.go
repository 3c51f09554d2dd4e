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
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aldngrid/internal/observability"
)

// Pipeline grids the strokes of one year onto a grid.
type Pipeline struct {
	Grid *Grid
	Year int

	// Workers is the number of days that are gridded concurrently.
	// If it is less than 1, runtime.GOMAXPROCS(0) is used.
	Workers int

	// Log receives progress messages. If nil, the standard logrus logger
	// is used.
	Log logrus.FieldLogger

	// Metrics, if not nil, are updated as the run proceeds.
	Metrics *observability.Metrics

	// Clock is used for timing and for the history attribute of the
	// output. If nil, the real clock is used.
	Clock clockwork.Clock
}

// Run partitions events by day, assigns each day's strokes to grid
// cells, and returns the daily stroke counts on the grid.
// Any error aborts the whole run.
func (p *Pipeline) Run(events []Event) (*GriddedDataset, error) {
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	m := p.Metrics
	if m == nil {
		m = observability.NewMetrics()
	}
	log = log.WithFields(logrus.Fields{"run_id": uuid.New().String(), "year": p.Year})
	start := clock.Now()

	buckets := PartitionByDay(events, p.Year)
	var inYear int
	for _, b := range buckets {
		inYear += len(b.Events)
	}
	m.StrokesOutOfYear.Add(float64(len(events) - inYear))
	m.GridCells.Set(float64(len(p.Grid.Cells)))
	log.WithFields(logrus.Fields{
		"strokes": inYear,
		"days":    len(buckets),
		"cells":   len(p.Grid.Cells),
	}).Info("gridding strokes")

	nprocs := p.Workers
	if nprocs < 1 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	accumulators := make([]*Accumulator, nprocs)
	errs := make([]error, nprocs)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		accumulators[pp] = NewAccumulator(len(buckets), len(p.Grid.Cells))
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < len(buckets); ii += nprocs {
				if err := p.gridDay(buckets[ii], accumulators[pp], clock, log, m); err != nil {
					errs[pp] = err
					return
				}
			}
		}(pp)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	acc := accumulators[0]
	for _, a := range accumulators[1:] {
		if err := acc.Merge(a); err != nil {
			return nil, err
		}
	}
	ds, err := Materialize(acc.Finalize(), Dates(buckets), p.Grid.Lats, p.Grid.Lons)
	if err != nil {
		return nil, err
	}
	ds.Attributes["title"] = fmt.Sprintf("Daily gridded lightning strokes, %d", p.Year)
	ds.Attributes["Conventions"] = "COARDS"
	ds.Attributes["year"] = strconv.Itoa(p.Year)
	ds.Attributes["grid_hash"] = p.Grid.Hash()
	ds.Attributes["history"] = clock.Now().UTC().Format(time.RFC3339) + " created by aldngrid"

	d := clock.Since(start)
	m.RunDuration.Set(d.Seconds())
	log.WithFields(logrus.Fields{
		"total":    ds.Total(),
		"duration": d,
	}).Info("finished gridding strokes")
	return ds, nil
}

// gridDay assigns the strokes of b to grid cells and adds them to acc.
func (p *Pipeline) gridDay(b *DayBucket, acc *Accumulator, clock clockwork.Clock, log logrus.FieldLogger, m *observability.Metrics) error {
	start := clock.Now()
	as, err := p.Grid.Assign(b)
	if err != nil {
		return err
	}
	if err = acc.Accumulate(b.Index, as); err != nil {
		return err
	}
	offGrid := len(b.Events) - len(as)
	m.StrokesGridded.Add(float64(len(as)))
	m.StrokesOffGrid.Add(float64(offGrid))
	m.DaysGridded.Inc()
	m.DayDuration.Observe(clock.Since(start).Seconds())
	log.WithFields(logrus.Fields{
		"date":     b.Date.Format("2006-01-02"),
		"strokes":  len(as),
		"off_grid": offGrid,
	}).Debug("gridding")
	return nil
}
