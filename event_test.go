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
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

const strokeFileString = `STROKETYPE,LATITUDE,LONGITUDE,UTCDATETIME,AMPLITUDE
GROUND_STROKE,64.8378,-147.7164,06/21/2016 23:59:59,-12.3
CLOUD_STROKE,65.1,-150.2,06/21/2016 10:00:00,5.1
GROUND_STROKE,61.2181,210.1,06/22/2016 00:00:00,8.0
GROUND_STROKE,60.0,-10,12/31/2015 12:30:00,-3.3
`

func TestLoadEvents(t *testing.T) {
	events, err := LoadEvents(strings.NewReader(strokeFileString), DefaultLoaderConfig())
	if err != nil {
		t.Fatal(err)
	}
	want := []Event{
		{
			Lat: 64.8378, Lon: NormalizeLongitude(-147.7164),
			Time:     time.Date(2016, time.June, 21, 23, 59, 59, 0, time.UTC),
			Date:     time.Date(2016, time.June, 21, 0, 0, 0, 0, time.UTC),
			Category: "GROUND_STROKE",
		},
		{
			Lat: 61.2181, Lon: 210.1,
			Time:     time.Date(2016, time.June, 22, 0, 0, 0, 0, time.UTC),
			Date:     time.Date(2016, time.June, 22, 0, 0, 0, 0, time.UTC),
			Category: "GROUND_STROKE",
		},
		{
			Lat: 60, Lon: 350,
			Time:     time.Date(2015, time.December, 31, 12, 30, 0, 0, time.UTC),
			Date:     time.Date(2015, time.December, 31, 0, 0, 0, 0, time.UTC),
			Category: "GROUND_STROKE",
		},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("%+v != %+v", events, want)
	}
}

func TestNormalizeLongitude(t *testing.T) {
	for _, test := range []struct {
		in, want float64
	}{
		{in: -10, want: 350},
		{in: 0, want: 0},
		{in: 360, want: 0},
		{in: 370, want: 10},
		{in: -360, want: 0},
		{in: -720.5, want: 359.5},
		{in: 212.25, want: 212.25},
		{in: -1e-20, want: 0},
	} {
		have := NormalizeLongitude(test.in)
		if have != test.want {
			t.Errorf("NormalizeLongitude(%g) = %g, want %g", test.in, have, test.want)
		}
		if have < 0 || have >= 360 {
			t.Errorf("NormalizeLongitude(%g) = %g is out of range", test.in, have)
		}
	}
}

func TestLoadEventsMalformedTimestamp(t *testing.T) {
	const data = `STROKETYPE,LATITUDE,LONGITUDE,UTCDATETIME
GROUND_STROKE,64.8,212.3,06/21/2016 12:00:00
CLOUD_STROKE,64.8,212.3,not a time
GROUND_STROKE,64.8,212.3,2016-06-21T12:00:00Z
`
	_, err := LoadEvents(strings.NewReader(data), DefaultLoaderConfig())
	var e *MalformedTimestampError
	if !errors.As(err, &e) {
		t.Fatalf("have error %v, want *MalformedTimestampError", err)
	}
	if e.Record != 3 {
		t.Errorf("have record %d, want 3", e.Record)
	}
	if e.Value != "2016-06-21T12:00:00Z" {
		t.Errorf("have value %q", e.Value)
	}
}

func TestLoadEventsUnpadded(t *testing.T) {
	const data = `STROKETYPE,LATITUDE,LONGITUDE,UTCDATETIME
GROUND_STROKE,60,-150,6/5/2016 13:04:05
GROUND_STROKE,60,-150,06/05/2016 13:04:05
GROUND_STROKE,60,-150,12/31/2016 3:04:05
GROUND_STROKE,60,-150,1/15/2016 03:04:05
`
	events, err := LoadEvents(strings.NewReader(data), DefaultLoaderConfig())
	if err != nil {
		t.Fatal(err)
	}
	want := []time.Time{
		time.Date(2016, time.June, 5, 13, 4, 5, 0, time.UTC),
		time.Date(2016, time.June, 5, 13, 4, 5, 0, time.UTC),
		time.Date(2016, time.December, 31, 3, 4, 5, 0, time.UTC),
		time.Date(2016, time.January, 15, 3, 4, 5, 0, time.UTC),
	}
	if len(events) != len(want) {
		t.Fatalf("have %d events, want %d", len(events), len(want))
	}
	for i, e := range events {
		if !e.Time.Equal(want[i]) {
			t.Errorf("record %d: %v != %v", i+1, e.Time, want[i])
		}
	}
}

func TestLenientLayout(t *testing.T) {
	for _, test := range []struct {
		in, want string
	}{
		{in: "01/02/2006 15:04:05", want: "1/2/2006 15:04:05"},
		{in: "2006-01-02T15:04:05Z07:00", want: "2006-1-2T15:04:05Z07:00"},
		{in: "2006 002", want: "2006 002"},
		{in: "01022006", want: "01022006"},
		{in: "Jan _2 15:04:05.000", want: "Jan _2 15:04:05.000"},
	} {
		if have := lenientLayout(test.in); have != test.want {
			t.Errorf("lenientLayout(%q) = %q; want %q", test.in, have, test.want)
		}
	}
}

func TestLoadEventsConfig(t *testing.T) {
	const data = `type;lat;lon;time
G;64.8;-147.5;2016-06-21 12:00
C;64.8;-147.5;2016-06-21 13:00
`
	cfg := LoaderConfig{
		CategoryColumn:  "type",
		LatitudeColumn:  "lat",
		LongitudeColumn: "lon",
		TimeColumn:      "time",
		ExcludeCategory: "C",
		DatetimeFormat:  "%Y-%m-%d %H:%M",
	}
	_, err := LoadEvents(strings.NewReader(data), cfg)
	if err == nil {
		t.Fatal("semicolon separated data should not have the configured columns")
	}

	events, err := LoadEvents(strings.NewReader(strings.Replace(data, ";", ",", -1)), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("have %d events, want 1", len(events))
	}
	if want := time.Date(2016, time.June, 21, 12, 0, 0, 0, time.UTC); !events[0].Time.Equal(want) {
		t.Errorf("%v != %v", events[0].Time, want)
	}
	if events[0].Lon != 212.5 {
		t.Errorf("have longitude %g, want 212.5", events[0].Lon)
	}
}

func TestLoadEventsErrors(t *testing.T) {
	for _, test := range []struct {
		name, data string
	}{
		{name: "empty", data: ""},
		{name: "missing column", data: "STROKETYPE,LATITUDE,UTCDATETIME\nG,64,06/21/2016 12:00:00\n"},
		{name: "bad latitude", data: "STROKETYPE,LATITUDE,LONGITUDE,UTCDATETIME\nG,north,212,06/21/2016 12:00:00\n"},
		{name: "bad longitude", data: "STROKETYPE,LATITUDE,LONGITUDE,UTCDATETIME\nG,64,,06/21/2016 12:00:00\n"},
		{name: "short record", data: "STROKETYPE,LATITUDE,LONGITUDE,UTCDATETIME\nG,64,212\n"},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := LoadEvents(strings.NewReader(test.data), DefaultLoaderConfig()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
