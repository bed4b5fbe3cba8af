// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart renders comparison charts of benchmark series.
//
// A chart is either a bar chart, with one bar per series whose height
// is the series mean, or a box plot, with one box per series
// summarizing its distribution. Outliers are not drawn on box plots.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"golang.org/x/benchplot/benchmath"
)

// Kind selects how a chart summarizes each series.
type Kind int

const (
	// Bar draws one bar per series at the series mean.
	Bar Kind = iota
	// Box draws one box per series over its full distribution.
	Box
)

func (k Kind) String() string {
	switch k {
	case Bar:
		return "bar"
	case Box:
		return "box"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses "bar" or "box".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "bar":
		return Bar, nil
	case "box":
		return Box, nil
	}
	return 0, fmt.Errorf("unknown chart kind %q (want bar or box)", s)
}

// A Series is one labeled set of values.
type Series struct {
	Label  string
	Values []float64
}

// Options are the chart metadata.
type Options struct {
	Title  string
	YLabel string

	// ErrorBars adds the confidence interval of the mean to each
	// bar of a bar chart, where one can be computed.
	ErrorBars bool

	// Confidence is the level of the error bars, 0.95 if zero.
	Confidence float64
}

// A Chart is a laid out plot ready to be written.
type Chart struct {
	Kind Kind

	plot   *plot.Plot
	series int
}

// Len returns the number of series drawn, that is the number of bars
// or boxes.
func (c *Chart) Len() int {
	return c.series
}

// Plot returns the underlying gonum plot.
func (c *Chart) Plot() *plot.Plot {
	return c.plot
}

var errNoSeries = errors.New("chart has no series")

// New lays out a chart of the given kind.
func New(kind Kind, series []Series, opts Options) (*Chart, error) {
	switch kind {
	case Bar:
		return NewBar(series, opts)
	case Box:
		return NewBox(series, opts)
	}
	return nil, fmt.Errorf("unknown chart kind %v", kind)
}

func checkSeries(series []Series) error {
	if len(series) == 0 {
		return errNoSeries
	}
	for _, s := range series {
		if len(s.Values) == 0 {
			return fmt.Errorf("series %q has no values", s.Label)
		}
	}
	return nil
}

func newPlot(series []Series, opts Options) *plot.Plot {
	pl := plot.New()
	pl.Title.Text = opts.Title
	pl.Y.Label.Text = opts.YLabel

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	labels := make([]string, len(series))
	long := false
	for i, s := range series {
		labels[i] = s.Label
		long = long || len(s.Label) > 6
	}
	pl.NominalX(labels...)
	if long {
		pl.X.Tick.Label.Rotation = -math.Pi / 8
		pl.X.Tick.Label.YAlign = draw.YTop
		pl.X.Tick.Label.XAlign = draw.XLeft
	}
	return pl
}

// NewBar lays out a bar chart with one bar per series. The height of
// each bar is the mean of the series values.
func NewBar(series []Series, opts Options) (*Chart, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	pl := newPlot(series, opts)

	values := make(plotter.Values, len(series))
	for i, s := range series {
		values[i] = stats.Mean(s.Values)
	}
	bars, err := plotter.NewBarChart(values, barWidth(len(series)))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	pl.Add(bars)

	if opts.ErrorBars {
		confidence := opts.Confidence
		if confidence == 0 {
			confidence = 0.95
		}
		var ci meanCI
		for i, s := range series {
			sum := benchmath.AssumeNormal.Summary(benchmath.NewSample(s.Values, &benchmath.DefaultThresholds), confidence)
			if !sum.HasInterval() {
				continue
			}
			ci.x = append(ci.x, float64(i))
			ci.y = append(ci.y, values[i])
			ci.lo = append(ci.lo, sum.Lo)
			ci.hi = append(ci.hi, sum.Hi)
		}
		if ci.Len() > 0 {
			eb, err := plotter.NewYErrorBars(ci)
			if err != nil {
				return nil, err
			}
			eb.LineStyle.Color = color.Black
			pl.Add(eb)
		}
	}

	// Bars start at zero.
	if pl.Y.Min > 0 {
		pl.Y.Min = 0
	}
	return &Chart{Kind: Bar, plot: pl, series: len(values)}, nil
}

func barWidth(n int) vg.Length {
	if n > 8 {
		return vg.Points(20)
	}
	return vg.Points(40)
}

// meanCI is a set of confidence intervals around bar heights.
type meanCI struct {
	x, y, lo, hi []float64
}

func (m meanCI) Len() int                        { return len(m.x) }
func (m meanCI) XY(i int) (float64, float64)     { return m.x[i], m.y[i] }
func (m meanCI) YError(i int) (float64, float64) { return m.y[i] - m.lo[i], m.hi[i] - m.y[i] }

// NewBox lays out a box plot with one box per series. Series may have
// different lengths.
func NewBox(series []Series, opts Options) (*Chart, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	pl := newPlot(series, opts)

	w := barWidth(len(series))
	boxes := make([]plot.Plotter, 0, len(series))
	for i, s := range series {
		b, err := newBoxPlot(w, float64(i), plotter.Values(s.Values))
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label, err)
		}
		b.bp.BoxStyle.Color = color.Black
		b.bp.FillColor = plotutil.Color(i)
		boxes = append(boxes, b)
	}
	pl.Add(boxes...)
	return &Chart{Kind: Box, plot: pl, series: len(boxes)}, nil
}

// Size returns the page size of the chart, which grows with the
// number of series.
func (c *Chart) Size() (width, height vg.Length) {
	w := math.Max(12, 1.5*float64(2+c.series))
	h := math.Max(10, w/2)
	return vg.Length(w) * vg.Centimeter, vg.Length(h) * vg.Centimeter
}

func (c *Chart) canvas(format string) (vg.CanvasWriterTo, error) {
	width, height := c.Size()
	switch format {
	case "png", "":
		dpi := 300
		// Keep the image under 8190 pixels wide.
		initialWidth := float64(dpi) * float64(width/vg.Centimeter) / 2.54
		if initialWidth > 8190 {
			dpi = int(math.Trunc(float64(dpi) * 8190 / initialWidth))
		}
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, height),
			vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}, nil
	case "svg":
		return vgsvg.New(width, height), nil
	case "pdf":
		return vgpdf.New(width, height), nil
	}
	return nil, fmt.Errorf("unsupported image format %q", format)
}

// Render draws the chart in format ("png", "svg" or "pdf") to w.
func (c *Chart) Render(w io.Writer, format string) error {
	can, err := c.canvas(format)
	if err != nil {
		return err
	}
	c.plot.Draw(draw.New(can))
	_, err = can.WriteTo(w)
	return err
}

// WriteFile renders the chart to path, replacing any existing file.
// The format follows the extension of path, PNG by default. Missing
// parent directories are created.
func (c *Chart) WriteFile(path string) (err error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if _, err := c.canvas(format); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return c.Render(f, format)
}

// BarChart draws a bar chart of series and writes it to path.
func BarChart(series []Series, title, yLabel, path string) error {
	c, err := NewBar(series, Options{Title: title, YLabel: yLabel})
	if err != nil {
		return err
	}
	return c.WriteFile(path)
}

// BoxChart draws a box plot of series and writes it to path.
func BoxChart(series []Series, title, yLabel, path string) error {
	c, err := NewBox(series, Options{Title: title, YLabel: yLabel})
	if err != nil {
		return err
	}
	return c.WriteFile(path)
}
