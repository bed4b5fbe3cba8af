// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package recipe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"golang.org/x/benchplot/benchlog"
	"golang.org/x/benchplot/chart"
)

const ConfigHelp = `
The recipe file format is TOML consisting of a single array field called
'recipe'. Each element of the array consists of the following fields:
     name: a unique name for the recipe (required)
    title: the chart title (optional)
   ylabel: the y-axis label (optional)
   output: the chart file name, relative to the plot directory; the
           extension selects png, svg or pdf (required)
     kind: "box" to plot every value, "bar" to plot averages (default box)
   column: zero-based column of the metric in each log line (default 6)
  divisor: divide every value by this number (optional)
    sweep: a list of strings; each series is repeated once per entry with
           "{}" in its label and file replaced by the entry (optional)
   series: the list of series, each with a label, a file relative to the
           data directory and an optional column overriding the recipe's
           (required)

For example, the DPDK batching comparison is:

[[recipe]]
  name = "batching"
  title = "Batching size impact on throughput"
  ylabel = "Throughput (Mbps)"
  output = "batching_impact_withCC.png"
  sweep = ["4", "8", "16", "32", "64"]
  [[recipe.series]]
    label = "{}"
    file = "throughput_{}_dpdk.txt"
`

type ConfigFile struct {
	Configs []*Config `toml:"recipe"`
}

type Config struct {
	Name    string         `toml:"name"`
	Title   string         `toml:"title"`
	YLabel  string         `toml:"ylabel"`
	Output  string         `toml:"output"`
	Kind    string         `toml:"kind"`
	Column  *int           `toml:"column"`
	Divisor float64        `toml:"divisor"`
	Sweep   []string       `toml:"sweep"`
	Series  []SeriesConfig `toml:"series"`
}

type SeriesConfig struct {
	Label  string `toml:"label"`
	File   string `toml:"file"`
	Column *int   `toml:"column"`
}

const defaultColumn = benchlog.ThroughputColumn

// ParseConfig parses and validates a TOML recipe file.
func ParseConfig(data []byte) (*ConfigFile, error) {
	var cf ConfigFile
	if err := toml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	if err := cf.validate(); err != nil {
		return nil, err
	}
	return &cf, nil
}

// LoadConfig reads and parses the TOML recipe file at path.
func LoadConfig(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cf, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cf, nil
}

func (cf *ConfigFile) validate() error {
	if len(cf.Configs) == 0 {
		return fmt.Errorf("no recipes")
	}
	seen := make(map[string]bool)
	for i, c := range cf.Configs {
		if c.Name == "" {
			return fmt.Errorf("recipe %d: missing name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("recipe %s: duplicate name", c.Name)
		}
		seen[c.Name] = true
		if c.Output == "" {
			return fmt.Errorf("recipe %s: missing output", c.Name)
		}
		if c.Kind != "" {
			if _, err := chart.ParseKind(c.Kind); err != nil {
				return fmt.Errorf("recipe %s: %w", c.Name, err)
			}
		}
		if c.Divisor < 0 {
			return fmt.Errorf("recipe %s: negative divisor", c.Name)
		}
		if len(c.Series) == 0 {
			return fmt.Errorf("recipe %s: no series", c.Name)
		}
		if c.Column != nil && *c.Column < 0 {
			return fmt.Errorf("recipe %s: negative column %d", c.Name, *c.Column)
		}
		for _, s := range c.Series {
			if s.File == "" {
				return fmt.Errorf("recipe %s: series %q: missing file", c.Name, s.Label)
			}
			if s.Column != nil && *s.Column < 0 {
				return fmt.Errorf("recipe %s: series %q: negative column %d", c.Name, s.Label, *s.Column)
			}
		}
	}
	return nil
}

// Recipes builds the recipes of cf, reading logs from dataDir.
func (cf *ConfigFile) Recipes(dataDir string) []*Recipe {
	recipes := make([]*Recipe, 0, len(cf.Configs))
	for _, c := range cf.Configs {
		recipes = append(recipes, c.Recipe(dataDir))
	}
	return recipes
}

// Recipe builds the recipe described by c. c must be valid.
func (c *Config) Recipe(dataDir string) *Recipe {
	kind := chart.Box
	if c.Kind != "" {
		kind, _ = chart.ParseKind(c.Kind)
	}
	r := &Recipe{
		Name:   c.Name,
		Title:  c.Title,
		YLabel: c.YLabel,
		Output: c.Output,
		Kind:   kind,
	}

	sweep := c.Sweep
	if len(sweep) == 0 {
		sweep = []string{""}
	}
	for _, v := range sweep {
		for _, s := range c.Series {
			column := defaultColumn
			if c.Column != nil {
				column = *c.Column
			}
			if s.Column != nil {
				column = *s.Column
			}
			label := strings.ReplaceAll(s.Label, "{}", v)
			path := filepath.Join(dataDir, strings.ReplaceAll(s.File, "{}", v))
			r.Items = append(r.Items, c.item(kind, label, path, column))
		}
	}
	return r
}

func (c *Config) item(kind chart.Kind, label, path string, column int) Item {
	it := SeriesOf(label, path, column)
	if kind == chart.Bar {
		it = AverageOf(label, path, column)
	}
	if c.Divisor == 0 {
		return it
	}
	return it.Scaled(c.Divisor)
}
