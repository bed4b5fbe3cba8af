// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders plotted recipes as a single HTML page.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/safehtml/template"

	"golang.org/x/benchplot/recipe"
	"golang.org/x/benchplot/summary"
)

var htmlTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { padding: 0.2em 0.6em; text-align: right; }
th:first-child, td:first-child { text-align: left; }
</style>
</head>
<body>
<section><h1>{{.Title}}</h1></section>
{{range .Sections -}}
<section>
<h2>{{.Title}}</h2>
<p><img src="{{.Image}}" alt="{{.Title}}"></p>
<table>
<tr><th>series</th><th>n</th><th>mean</th><th>95% CI</th><th>min</th><th>q1</th><th>median</th><th>q3</th><th>max</th><th>delta</th></tr>
{{range .Rows -}}
<tr><td>{{.Label}}</td><td>{{.N}}</td><td>{{num .Mean}}</td><td>{{if .HasInterval}}{{num .Lo}} to {{num .Hi}} (±{{.Range}}){{end}}</td><td>{{num .Min}}</td><td>{{num .Q1}}</td><td>{{num .Median}}</td><td>{{num .Q3}}</td><td>{{num .Max}}</td><td>{{.Delta}}</td></tr>
{{end -}}
</table>
</section>
{{end -}}
</body>
</html>
`))

var htmlFuncs = template.FuncMap{
	"num": func(x float64) string { return fmt.Sprintf("%.4g", x) },
}

type page struct {
	Title    string
	Sections []section
}

type section struct {
	Title string
	Image string
	Rows  []row
}

type row struct {
	summary.Stat
	Delta string
}

// Write writes an HTML page showing the chart and summary table of
// each result. Charts are referenced by their paths relative to dir.
func Write(w io.Writer, title, dir string, results []*recipe.Result) error {
	p := page{Title: title}
	for _, res := range results {
		img, err := filepath.Rel(dir, res.Path)
		if err != nil {
			img = res.Path
		}
		s := section{Title: res.Recipe.Title, Image: filepath.ToSlash(img)}
		if s.Title == "" {
			s.Title = res.Recipe.Name
		}
		deltas := summary.Deltas(res.Series)
		for i, st := range summary.Stats(res.Series) {
			s.Rows = append(s.Rows, row{Stat: st, Delta: deltas[i]})
		}
		p.Sections = append(p.Sections, s)
	}
	return htmlTemplate.Execute(w, p)
}

// WriteFile writes the report to path, referencing charts relative to
// the directory of path.
func WriteFile(path, title string, results []*recipe.Result) (err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
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
	return Write(f, title, dir, absResults(results))
}

// absResults returns results with absolute chart paths.
func absResults(results []*recipe.Result) []*recipe.Result {
	out := make([]*recipe.Result, len(results))
	for i, res := range results {
		r := *res
		if p, err := filepath.Abs(r.Path); err == nil {
			r.Path = p
		}
		out[i] = &r
	}
	return out
}
