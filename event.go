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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// Event is a single lightning stroke.
type Event struct {
	Lat, Lon float64 // degrees; Lon is in [0, 360)
	Time     time.Time
	// Date is the calendar day of Time, at midnight UTC.
	Date     time.Time
	Category string
}

// LoaderConfig specifies how stroke records are read.
type LoaderConfig struct {
	// Column names in the header row of the stroke file.
	CategoryColumn  string
	LatitudeColumn  string
	LongitudeColumn string
	TimeColumn      string

	// ExcludeCategory is the stroke category that is dropped, typically
	// cloud-to-cloud strokes.
	ExcludeCategory string

	// DatetimeFormat is the strftime format of the timestamps,
	// for example "%m/%d/%Y %X".
	DatetimeFormat string
}

// DefaultLoaderConfig returns the configuration for Alaska Lightning
// Detection Network (ALDN) stroke files.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		CategoryColumn:  "STROKETYPE",
		LatitudeColumn:  "LATITUDE",
		LongitudeColumn: "LONGITUDE",
		TimeColumn:      "UTCDATETIME",
		ExcludeCategory: "CLOUD_STROKE",
		DatetimeFormat:  "%m/%d/%Y %X",
	}
}

// NormalizeLongitude maps lon into [0, 360).
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	if lon >= 360 || lon == 0 { // rounding of tiny negative values; -0
		return 0
	}
	return lon
}

// LoadEvents reads stroke records in CSV format with a header row from r.
// Records in the excluded category are dropped, longitudes are normalized
// into [0, 360), and timestamps are parsed in UTC unless the format
// includes a time zone. A timestamp that does not match the format
// results in a *MalformedTimestampError.
func LoadEvents(r io.Reader, cfg LoaderConfig) ([]Event, error) {
	layout, err := strftime.Layout(cfg.DatetimeFormat)
	if err != nil {
		return nil, fmt.Errorf("aldngrid: invalid datetime format %q: %v", cfg.DatetimeFormat, err)
	}
	layout = lenientLayout(layout)

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("aldngrid: reading stroke file header: %v", err)
	}
	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var idx [4]int
	for i, name := range []string{cfg.CategoryColumn, cfg.LatitudeColumn, cfg.LongitudeColumn, cfg.TimeColumn} {
		j, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("aldngrid: stroke file is missing column %q", name)
		}
		idx[i] = j
	}
	iCat, iLat, iLon, iTime := idx[0], idx[1], idx[2], idx[3]

	var events []Event
	for n := 1; ; n++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("aldngrid: reading stroke record %d: %v", n, err)
		}
		e := Event{Category: strings.TrimSpace(rec[iCat])}
		if e.Category == cfg.ExcludeCategory {
			continue
		}
		if e.Lat, err = strconv.ParseFloat(strings.TrimSpace(rec[iLat]), 64); err != nil {
			return nil, fmt.Errorf("aldngrid: record %d: parsing %s: %v", n, cfg.LatitudeColumn, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[iLon]), 64)
		if err != nil {
			return nil, fmt.Errorf("aldngrid: record %d: parsing %s: %v", n, cfg.LongitudeColumn, err)
		}
		e.Lon = NormalizeLongitude(lon)

		v := strings.TrimSpace(rec[iTime])
		e.Time, err = time.ParseInLocation(layout, v, time.UTC)
		if err != nil {
			return nil, &MalformedTimestampError{Record: n, Value: v, Format: cfg.DatetimeFormat, Err: err}
		}
		e.Date = CalendarDate(e.Time)
		events = append(events, e)
	}
	return events, nil
}

// lenientLayout replaces the zero-padded month and day elements of a Go
// time layout with their unpadded forms, which parse both "6/5/2016" and
// "06/05/2016". Hours ("15") already accept a single digit.
func lenientLayout(layout string) string {
	var b strings.Builder
	isDigit := func(i int) bool { return i >= 0 && i < len(layout) && layout[i] >= '0' && layout[i] <= '9' }
	for i := 0; i < len(layout); i++ {
		if layout[i] == '0' && (isDigit(i+1) && (layout[i+1] == '1' || layout[i+1] == '2')) &&
			!isDigit(i-1) && !isDigit(i+2) {
			continue // "01" -> "1", "02" -> "2"
		}
		b.WriteByte(layout[i])
	}
	return b.String()
}

// CalendarDate returns the calendar day of t, at midnight UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
