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
	"io/fs"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aldngrid/internal/observability"
)

// maxRetries is the number of times a failed file read is retried.
const maxRetries = 4

// newBackOff returns the retry policy for reading input files.
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	return backoff.WithMaxRetries(b, maxRetries)
}

// retry runs op until it succeeds, returns a permanent error, or the
// retries are used up. file labels the retry metric.
func retry(file string, m *observability.Metrics, op func() error) error {
	return backoff.RetryNotify(op, newBackOff(),
		func(err error, d time.Duration) {
			m.FileOpenRetries.WithLabelValues(file).Inc()
			logrus.WithField("file", file).Warnf("%v: retrying in %v", err, d)
		},
	)
}

// openFile opens path for reading, retrying transient failures.
// Missing files and permission errors are not retried.
func openFile(path, file string, m *observability.Metrics) (*os.File, error) {
	var f *os.File
	err := retry(file, m, func() error {
		var err error
		f, err = os.Open(path)
		return retryable(err)
	})
	return f, err
}

// retryable marks err as permanent unless it is a file system error
// that may go away, such as a read from a network file system that
// timed out. Missing files, permission errors, and errors in the file
// contents are not retried.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	var pathErr *fs.PathError
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || !errors.As(err, &pathErr) {
		return backoff.Permanent(err)
	}
	return err
}
