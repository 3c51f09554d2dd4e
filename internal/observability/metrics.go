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

// Package observability holds the Prometheus metrics of a gridding run.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aldngrid"

// Metrics holds the Prometheus counters, histograms, and gauges for a
// gridding run.
type Metrics struct {
	StrokesLoaded    prometheus.Counter
	StrokesOutOfYear prometheus.Counter
	StrokesGridded   prometheus.Counter
	StrokesOffGrid   prometheus.Counter
	DaysGridded      prometheus.Counter
	GridCells        prometheus.Gauge
	DayDuration      prometheus.Histogram
	RunDuration      prometheus.Gauge
	FileOpenRetries  *prometheus.CounterVec // labels: file={strokes,grid}

	// Registry holds all of the metrics above.
	Registry *prometheus.Registry
}

// NewMetrics creates the metrics and registers them with a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		StrokesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strokes_loaded_total",
			Help:      "Strokes read from the stroke file after cleaning.",
		}),
		StrokesOutOfYear: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strokes_out_of_year_total",
			Help:      "Strokes dropped because their date is not in the target year.",
		}),
		StrokesGridded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strokes_gridded_total",
			Help:      "Strokes assigned to a grid cell.",
		}),
		StrokesOffGrid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strokes_off_grid_total",
			Help:      "Strokes dropped because they are not within any grid cell.",
		}),
		DaysGridded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_gridded_total",
			Help:      "Days with at least one stroke in the target year.",
		}),
		GridCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grid_cells",
			Help:      "Number of cells in the grid.",
		}),
		DayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "day_duration_seconds",
			Help:      "Time spent assigning and accumulating the strokes of one day.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the gridding run.",
		}),
		FileOpenRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_open_retries_total",
			Help:      "Failed attempts to open an input file that were retried.",
		}, []string{"file"}),
		Registry: prometheus.NewRegistry(),
	}
	m.Registry.MustRegister(
		m.StrokesLoaded,
		m.StrokesOutOfYear,
		m.StrokesGridded,
		m.StrokesOffGrid,
		m.DaysGridded,
		m.GridCells,
		m.DayDuration,
		m.RunDuration,
		m.FileOpenRetries,
	)
	return m
}

// WriteFile writes the current metric values to path in the Prometheus
// text exposition format, for collection by the node exporter's
// textfile collector.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("observability: writing metrics file: %v", err)
	}
	return nil
}
