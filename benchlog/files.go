// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"errors"
	"fmt"
	"os"

	"github.com/aclements/go-moremath/stats"
)

// ErrEmpty is returned by Average for a log with no records.
var ErrEmpty = errors.New("no records")

// Series reads column from every line of the log at path and returns
// the values in line order.
//
// The file is read from the start on every call, so repeated calls on
// an unmodified file return identical results.
func Series(path string, column int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var values []float64
	r := NewReader(f, path, column)
	for r.Scan() {
		values = append(values, r.Value())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// Average returns the arithmetic mean of column over every line of
// the log at path.
func Average(path string, column int) (float64, error) {
	values, err := Series(path, column)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return stats.Mean(values), nil
}

// Scaled divides every value by divisor in place and returns values.
func Scaled(values []float64, divisor float64) []float64 {
	for i := range values {
		values[i] /= divisor
	}
	return values
}
