// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package summary

import (
	"math"

	"golang.org/x/benchplot/benchmath"
	"golang.org/x/benchplot/chart"
)

// Confidence is the level of the intervals reported by Stats.
const Confidence = 0.95

// A Stat summarizes one series.
type Stat struct {
	Label string
	N     int

	// Mean is the series mean. Lo and Hi bound its confidence
	// interval and are NaN when the series is too small for one.
	Mean, Lo, Hi float64
	// Range is the half-width of the interval as a percentage of
	// the mean.
	Range string

	benchmath.FiveNum
}

// HasInterval reports whether s carries a confidence interval.
func (s Stat) HasInterval() bool {
	return !math.IsNaN(s.Lo) && !math.IsNaN(s.Hi)
}

// Stats summarizes each series in order.
func Stats(series []chart.Series) []Stat {
	out := make([]Stat, 0, len(series))
	for _, s := range series {
		sample := benchmath.NewSample(s.Values, &benchmath.DefaultThresholds)
		sum := benchmath.AssumeNormal.Summary(sample, Confidence)
		st := Stat{
			Label:   s.Label,
			N:       len(s.Values),
			Mean:    sum.Center,
			Lo:      math.NaN(),
			Hi:      math.NaN(),
			Range:   sum.PctRangeString(),
			FiveNum: sample.FiveNum(),
		}
		if sum.HasInterval() {
			st.Lo, st.Hi = sum.Lo, sum.Hi
		}
		out = append(out, st)
	}
	return out
}
