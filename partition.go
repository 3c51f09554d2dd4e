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
	"sort"
	"time"
)

// DayBucket holds the strokes of one calendar day.
type DayBucket struct {
	// Index is the position of the day in the ordered list of days with
	// strokes. It is the day coordinate used for accumulation.
	Index  int
	Date   time.Time
	Events []Event
}

// PartitionByDay groups the events whose calendar date falls in year
// into one bucket per date, in ascending date order. Dates without
// events do not get a bucket.
func PartitionByDay(events []Event, year int) []*DayBucket {
	byDate := make(map[time.Time]*DayBucket)
	for _, e := range events {
		if e.Date.Year() != year {
			continue
		}
		b, ok := byDate[e.Date]
		if !ok {
			b = &DayBucket{Date: e.Date}
			byDate[e.Date] = b
		}
		b.Events = append(b.Events, e)
	}
	buckets := make([]*DayBucket, 0, len(byDate))
	for _, b := range byDate {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date.Before(buckets[j].Date) })
	for i, b := range buckets {
		b.Index = i
	}
	return buckets
}

// Dates returns the dates of the buckets.
func Dates(buckets []*DayBucket) []time.Time {
	o := make([]time.Time, len(buckets))
	for i, b := range buckets {
		o[i] = b.Date
	}
	return o
}
