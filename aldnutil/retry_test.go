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

package aldnutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/cenkalti/backoff"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spatialmodel/aldngrid"
	"github.com/spatialmodel/aldngrid/internal/observability"
)

func TestRetry(t *testing.T) {
	defer func(f func() backoff.BackOff) { newBackOff = f }(newBackOff)
	newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxRetries)
	}

	t.Run("recovers", func(t *testing.T) {
		m := observability.NewMetrics()
		var calls int
		err := retry("strokes", m, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if v := testutil.ToFloat64(m.FileOpenRetries.WithLabelValues("strokes")); v != 2 {
			t.Errorf("have %g retries, want 2", v)
		}
	})
	t.Run("gives up", func(t *testing.T) {
		m := observability.NewMetrics()
		var calls int
		err := retry("grid", m, func() error {
			calls++
			return errors.New("transient")
		})
		if err == nil {
			t.Fatal("expected an error")
		}
		if calls != maxRetries+1 {
			t.Errorf("have %d calls, want %d", calls, maxRetries+1)
		}
	})
}

func TestOpenFile(t *testing.T) {
	m := observability.NewMetrics()
	dir := t.TempDir()
	if _, err := openFile(filepath.Join(dir, "missing.csv"), "strokes", m); !os.IsNotExist(err) {
		t.Errorf("have error %v, want a not-exist error", err)
	}
	if v := testutil.ToFloat64(m.FileOpenRetries.WithLabelValues("strokes")); v != 0 {
		t.Errorf("missing file was retried %g times", v)
	}

	path := filepath.Join(dir, "strokes.csv")
	if err := os.WriteFile(path, []byte(strokeFileString), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := openFile(path, "strokes", m)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestRetryable(t *testing.T) {
	if retryable(nil) != nil {
		t.Error("nil error should stay nil")
	}
	for _, test := range []struct {
		name      string
		err       error
		permanent bool
	}{
		{name: "io", err: &fs.PathError{Op: "read", Path: "grid.shp", Err: syscall.EIO}},
		{name: "wrapped io", err: fmt.Errorf("opening: %w", &fs.PathError{Op: "open", Path: "grid.shp", Err: syscall.EIO})},
		{name: "missing", err: fmt.Errorf("opening: %w", &fs.PathError{Op: "open", Path: "grid.dbf", Err: fs.ErrNotExist}), permanent: true},
		{name: "permission", err: &fs.PathError{Op: "open", Path: "grid.shp", Err: fs.ErrPermission}, permanent: true},
		{name: "contents", err: errors.New("aldngrid: duplicate grid cell id 0"), permanent: true},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, permanent := retryable(test.err).(*backoff.PermanentError)
			if permanent != test.permanent {
				t.Errorf("permanent = %v; want %v", permanent, test.permanent)
			}
		})
	}
}

func TestLoadGridNotRetried(t *testing.T) {
	defer func(f func() backoff.BackOff) { newBackOff = f }(newBackOff)
	newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxRetries)
	}
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.gob")
	if err := os.WriteFile(corrupt, []byte("not a grid"), 0644); err != nil {
		t.Fatal(err)
	}
	g, err := aldngrid.NewGrid(0, 0, 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	g.Cells[1].ID = 0
	duplicate := filepath.Join(dir, "duplicate.gob")
	if err := g.WriteFile(duplicate); err != nil {
		t.Fatal(err)
	}
	shpNoDBF := filepath.Join(dir, "nodbf.shp")
	g.Cells[1].ID = 1
	if err := g.WriteFile(shpNoDBF); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "nodbf.dbf")); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{corrupt, duplicate, shpNoDBF} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			m := observability.NewMetrics()
			if _, err := loadGrid(&RunConfig{GridCells: path}, m); err == nil {
				t.Fatal("expected an error")
			}
			if v := testutil.ToFloat64(m.FileOpenRetries.WithLabelValues("grid")); v != 0 {
				t.Errorf("grid file was retried %g times", v)
			}
		})
	}
}
