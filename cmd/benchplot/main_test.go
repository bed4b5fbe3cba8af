// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"golang.org/x/benchplot/publish"
	"golang.org/x/benchplot/storage/db"
)

// writeLogs writes a log with values at the throughput column for
// every file name.
func writeLogs(t *testing.T, dir string, values []float64, names ...string) {
	t.Helper()
	var b strings.Builder
	for _, v := range values {
		fmt.Fprintf(&b, "cnx 0 0 1 0 %g %g\n", v, v)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0666); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDefaultRecipes(t *testing.T) {
	data, plots := t.TempDir(), t.TempDir()
	var files []string
	for _, n := range []int{4, 8, 16, 32, 64, 128} {
		files = append(files, fmt.Sprintf("throughput_noCC_noPacing_%d_dpdk.txt", n))
		if n < 128 {
			files = append(files, fmt.Sprintf("throughput_%d_dpdk.txt", n))
		}
	}
	writeLogs(t, data, []float64{100, 110, 120}, files...)

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	html := filepath.Join(plots, "index.html")
	var out, errOut bytes.Buffer
	err := benchplot(&out, &errOut, []string{"-data", data, "-plots", plots, "-summary",
		"-db", "sqlite3:" + dbPath, "-html", html, "-v"})
	if err != nil {
		t.Fatalf("benchplot: %v\n%s", err, errOut.String())
	}
	for _, name := range []string{"batching_impact_noCC.png", "batching_impact_withCC.png", "index.html"} {
		if _, err := os.Stat(filepath.Join(plots, name)); err != nil {
			t.Error(err)
		}
	}
	if got := out.String(); !strings.Contains(got, "batching-nocc: ") || !strings.Contains(got, "128") {
		t.Errorf("summary output missing batching-nocc table:\n%s", got)
	}
	if !strings.Contains(errOut.String(), "wrote box chart of 5 series") {
		t.Errorf("verbose log missing progress:\n%s", errOut.String())
	}

	d, err := db.OpenSQL("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	recs, err := d.Summaries(context.Background(), "batching")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 5 || recs[0].Label != "4" || recs[0].Mean != 110 {
		t.Errorf("archived %+v, want 5 series starting with 4 at mean 110", recs)
	}
}

func TestPublishedLayout(t *testing.T) {
	data, root := t.TempDir(), t.TempDir()
	writeLogs(t, data, []float64{10, 20}, "output_nodpdk_tp_enc.txt", "output_dpdk_tp_enc.txt")
	plots := filepath.Join(root, "plots")
	html := filepath.Join(root, "site", "index.html")
	var out, errOut bytes.Buffer
	err := benchplot(&out, &errOut, []string{"-data", data, "-plots", plots, "-html", html, "throughput-box"})
	if err != nil {
		t.Fatalf("benchplot: %v\n%s", err, errOut.String())
	}
	page, err := os.ReadFile(html)
	if err != nil {
		t.Fatal(err)
	}
	m := regexp.MustCompile(`<img src="([^"]*)"`).FindSubmatch(page)
	if m == nil {
		t.Fatalf("no image in page:\n%s", page)
	}
	chartPath := filepath.Join(plots, "Throughput_box.png")
	objects, err := publish.ObjectNames("runs", []string{chartPath, html})
	if err != nil {
		t.Fatal(err)
	}
	// The link, resolved against the page object, names the chart object.
	if got := path.Join(path.Dir(objects[1]), string(m[1])); got != objects[0] {
		t.Errorf("page %s links %s, which resolves to %s, want %s", objects[1], m[1], got, objects[0])
	}
}

func TestList(t *testing.T) {
	var out, errOut bytes.Buffer
	if err := benchplot(&out, &errOut, []string{"-list"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d recipes, want 8:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "throughput-bar ") || !strings.Contains(lines[0], "Throughput_bar.png") {
		t.Errorf("got first line %q", lines[0])
	}
}

func TestConfig(t *testing.T) {
	data, plots := t.TempDir(), t.TempDir()
	writeLogs(t, data, []float64{10, 20}, "a.txt", "b.txt")
	config := filepath.Join(t.TempDir(), "recipes.toml")
	err := os.WriteFile(config, []byte(`
[[recipe]]
  name = "ab"
  output = "ab.svg"
  sweep = ["a", "b"]
  [[recipe.series]]
    label = "{}"
    file = "{}.txt"
`), 0666)
	if err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	if err := benchplot(&out, &errOut, []string{"-config", config, "-data", data, "-plots", plots}); err != nil {
		t.Fatalf("benchplot: %v\n%s", err, errOut.String())
	}
	if _, err := os.Stat(filepath.Join(plots, "ab.svg")); err != nil {
		t.Error(err)
	}
}

func TestErrors(t *testing.T) {
	data := t.TempDir()
	for _, test := range []struct {
		name  string
		args  []string
		usage bool
	}{
		{"badFlag", []string{"-nope"}, true},
		{"allAndNames", []string{"-all", "batching"}, true},
		{"unknownRecipe", []string{"-data", data, "nope"}, false},
		{"missingData", []string{"-data", data, "-plots", t.TempDir(), "handshake"}, false},
		{"badDB", []string{"-db", "sqlite3", "-data", data, "batching"}, false},
	} {
		t.Run(test.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			err := benchplot(&out, &errOut, test.args)
			if err == nil {
				t.Fatal("benchplot succeeded, want error")
			}
			if (err == errUsage) != test.usage {
				t.Errorf("got error %v, usage error %v", err, test.usage)
			}
		})
	}
}
