// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package summary tabulates the series of a chart as text.
package summary

import (
	"io"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"

	"golang.org/x/benchplot/benchmath"
	"golang.org/x/benchplot/chart"
)

// Table returns one row per series with its count, mean, minimum,
// median and maximum, and the change of its mean relative to the
// first series.
func Table(series []chart.Series) *table.Table {
	var labels []string
	var values []float64
	for _, s := range series {
		for _, v := range s.Values {
			labels = append(labels, s.Label)
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return new(table.Table)
	}
	long := new(table.Builder).Add("series", labels).Add("value", values).Done()

	g := ggstat.Agg("series")(
		ggstat.AggCount("n"),
		ggstat.AggMean("value"),
		ggstat.AggMin("value"),
		ggstat.AggQuantile("median", 0.5, "value"),
		ggstat.AggMax("value"),
	).F(long)
	t := table.Flatten(g)

	deltas := make([]string, 0, len(series))
	for i, d := range Deltas(series) {
		if len(series[i].Values) > 0 {
			deltas = append(deltas, d)
		}
	}
	// Agg keeps "value" when every value is the same.
	b := table.NewBuilder(t).Add("value", nil)
	// Repeated labels are merged into one row and get no delta.
	if len(deltas) == t.Len() {
		b.Add("vs "+series[0].Label, deltas)
	}
	return b.Done()
}

// Deltas returns the change of each series relative to the first.
// The first series and empty series get "".
func Deltas(series []chart.Series) []string {
	deltas := make([]string, len(series))
	for i, s := range series {
		if i == 0 || len(s.Values) == 0 || len(series[0].Values) == 0 {
			continue
		}
		deltas[i] = delta(series[0].Values, s.Values)
	}
	return deltas
}

// delta formats the change from base to s. Series with a single
// value, such as averages, are compared exactly; others only report a
// change when a t-test finds one.
func delta(base, s []float64) string {
	old, new := stats.Mean(base), stats.Mean(s)
	if len(base) < 2 || len(s) < 2 {
		return benchmath.Comparison{P: 0, Alpha: benchmath.DefaultThresholds.CompareAlpha}.FormatDelta(old, new)
	}
	b := benchmath.NewSample(base, &benchmath.DefaultThresholds)
	x := benchmath.NewSample(s, &benchmath.DefaultThresholds)
	c := benchmath.AssumeNormal.Compare(b, x)
	return c.FormatDelta(old, new) + " (" + c.String() + ")"
}

// Fprint writes the summary table of series to w.
func Fprint(w io.Writer, series []chart.Series) error {
	t := Table(series)
	if t.Len() == 0 {
		return nil
	}
	return table.Fprint(w, t, "%s", "%d", "%.4g", "%.4g", "%.4g", "%.4g")
}
