// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package recipe defines the comparison charts drawn from benchmark
// logs.
//
// A Recipe names a fixed list of Items, each a label paired with a
// deferred read of one column of one log file, and how to chart them.
// Running a recipe reads every item and writes the chart.
package recipe

import (
	"fmt"
	"path/filepath"

	"golang.org/x/benchplot/benchlog"
	"golang.org/x/benchplot/chart"
)

// An Item is one labeled series of a recipe. Data is called once per
// run, right before plotting.
type Item struct {
	Label string
	Data  func() ([]float64, error)

	// Samples, if non-nil, returns the values Data was reduced from.
	// It is used to draw confidence intervals.
	Samples func() ([]float64, error)
}

// AverageOf returns an Item whose data is the single average of column
// in the log at path.
func AverageOf(label, path string, column int) Item {
	return Item{
		Label: label,
		Data: func() ([]float64, error) {
			avg, err := benchlog.Average(path, column)
			if err != nil {
				return nil, err
			}
			return []float64{avg}, nil
		},
		Samples: func() ([]float64, error) {
			return benchlog.Series(path, column)
		},
	}
}

// SeriesOf returns an Item whose data is every value of column in the
// log at path.
func SeriesOf(label, path string, column int) Item {
	return Item{Label: label, Data: func() ([]float64, error) {
		return benchlog.Series(path, column)
	}}
}

// ScaledSeriesOf is like SeriesOf, but divides every value by divisor.
func ScaledSeriesOf(label, path string, column int, divisor float64) Item {
	return SeriesOf(label, path, column).Scaled(divisor)
}

// Scaled returns a copy of it whose values are divided by divisor.
func (it Item) Scaled(divisor float64) Item {
	it.Data = scaled(it.Data, divisor)
	if it.Samples != nil {
		it.Samples = scaled(it.Samples, divisor)
	}
	return it
}

func scaled(f func() ([]float64, error), divisor float64) func() ([]float64, error) {
	return func() ([]float64, error) {
		values, err := f()
		if err != nil {
			return nil, err
		}
		return benchlog.Scaled(values, divisor), nil
	}
}

// A Recipe describes one chart.
type Recipe struct {
	// Name identifies the recipe on the command line.
	Name string

	Title  string
	YLabel string

	// Output is the chart file name, relative to the plot directory.
	Output string

	Kind  chart.Kind
	Items []Item
}

// A Result is the outcome of running a Recipe.
type Result struct {
	Recipe *Recipe

	// Path is the file the chart was written to.
	Path string

	// Series holds the data of each item, in item order.
	Series []chart.Series

	Chart *chart.Chart
}

// Options control how recipes are run.
type Options struct {
	// ErrorBars adds confidence intervals to bar charts.
	ErrorBars bool

	// Warn, if non-nil, receives progress messages.
	Warn func(format string, args ...interface{})
}

func (o *Options) warn(format string, args ...interface{}) {
	if o != nil && o.Warn != nil {
		o.Warn(format, args...)
	}
}

// Load reads the data of every item.
// The first failing item aborts the load.
func (r *Recipe) Load() ([]chart.Series, error) {
	series := make([]chart.Series, 0, len(r.Items))
	for _, it := range r.Items {
		values, err := it.Data()
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", r.Name, it.Label, err)
		}
		series = append(series, chart.Series{Label: it.Label, Values: values})
	}
	return series, nil
}

// Run reads the data of every item, lays out the chart and writes it
// to Output under plotDir. Nothing is written if any item fails.
func (r *Recipe) Run(plotDir string, opts *Options) (*Result, error) {
	series, err := r.Load()
	if err != nil {
		return nil, err
	}
	var copts chart.Options
	copts.Title, copts.YLabel = r.Title, r.YLabel
	plotted := series
	if opts != nil && opts.ErrorBars && r.Kind == chart.Bar {
		copts.ErrorBars = true
		if plotted, err = r.samples(series); err != nil {
			return nil, err
		}
	}
	c, err := chart.New(r.Kind, plotted, copts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name, err)
	}
	path := filepath.Join(plotDir, r.Output)
	if err := c.WriteFile(path); err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name, err)
	}
	opts.warn("%s: wrote %s chart of %d series to %s\n", r.Name, r.Kind, c.Len(), path)
	return &Result{Recipe: r, Path: path, Series: series, Chart: c}, nil
}

// samples replaces each averaged series by the values it was
// averaged from. The mean, and so the bar height, is unchanged.
func (r *Recipe) samples(series []chart.Series) ([]chart.Series, error) {
	out := make([]chart.Series, len(series))
	copy(out, series)
	for i, it := range r.Items {
		if it.Samples == nil {
			continue
		}
		values, err := it.Samples()
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", r.Name, it.Label, err)
		}
		out[i].Values = values
	}
	return out, nil
}

// Lookup returns the recipes named by names, in that order.
func Lookup(recipes []*Recipe, names []string) ([]*Recipe, error) {
	byName := make(map[string]*Recipe, len(recipes))
	for _, r := range recipes {
		byName[r.Name] = r
	}
	out := make([]*Recipe, 0, len(names))
	for _, name := range names {
		r, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown recipe %q", name)
		}
		out = append(out, r)
	}
	return out, nil
}
