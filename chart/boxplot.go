// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// boxPlot is a vertical box plot that does not draw outliers.
// Its data range stops at the whiskers so outliers do not stretch
// the y axis either.
type boxPlot struct {
	bp *plotter.BoxPlot
}

func newBoxPlot(w vg.Length, loc float64, values plotter.Valuer) (*boxPlot, error) {
	b, err := plotter.NewBoxPlot(w, loc, values)
	if err != nil {
		return nil, err
	}
	return &boxPlot{bp: b}, nil
}

// Plot draws the box, median and whiskers on Canvas c and Plot plt.
func (p *boxPlot) Plot(c draw.Canvas, plt *plot.Plot) {
	b := p.bp

	trX, trY := plt.Transforms(&c)
	x := trX(b.Location)
	if !c.ContainsX(x) {
		return
	}
	x += b.Offset

	med := trY(b.Median)
	q1 := trY(b.Quartile1)
	q3 := trY(b.Quartile3)
	aLow := trY(b.AdjLow)
	aHigh := trY(b.AdjHigh)

	pts := []vg.Point{
		{X: x - b.Width/2, Y: q1},
		{X: x - b.Width/2, Y: q3},
		{X: x + b.Width/2, Y: q3},
		{X: x + b.Width/2, Y: q1},
		{X: x - b.Width/2 - b.BoxStyle.Width/2, Y: q1},
	}
	box := c.ClipLinesY(pts)
	if b.FillColor != nil {
		c.FillPolygon(b.FillColor, c.ClipPolygonY(pts))
	}
	c.StrokeLines(b.BoxStyle, box...)

	medLine := c.ClipLinesY([]vg.Point{
		{X: x - b.Width/2, Y: med},
		{X: x + b.Width/2, Y: med},
	})
	c.StrokeLines(b.MedianStyle, medLine...)

	cap := b.CapWidth / 2
	whisks := c.ClipLinesY(
		[]vg.Point{{X: x, Y: q3}, {X: x, Y: aHigh}},
		[]vg.Point{{X: x - cap, Y: aHigh}, {X: x + cap, Y: aHigh}},
		[]vg.Point{{X: x, Y: q1}, {X: x, Y: aLow}},
		[]vg.Point{{X: x - cap, Y: aLow}, {X: x + cap, Y: aLow}},
	)
	c.StrokeLines(b.WhiskerStyle, whisks...)
}

// DataRange returns the x extent of the box and the y extent of its
// whiskers.
func (p *boxPlot) DataRange() (xmin, xmax, ymin, ymax float64) {
	b := p.bp
	return b.Location, b.Location, b.AdjLow, b.AdjHigh
}

// GlyphBoxes reserves room for the width of the box.
func (p *boxPlot) GlyphBoxes(plt *plot.Plot) []plot.GlyphBox {
	b := p.bp
	half := b.Width/2 + b.BoxStyle.Width/2
	return []plot.GlyphBox{{
		X: plt.X.Norm(b.Location),
		Y: plt.Y.Norm(b.Median),
		Rectangle: vg.Rectangle{
			Min: vg.Point{X: b.Offset - half},
			Max: vg.Point{X: b.Offset + half},
		},
	}}
}
