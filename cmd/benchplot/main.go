// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchplot draws comparison charts from benchmark logs.
//
// Usage:
//
//	benchplot [flags] [recipe...]
//
// Each log is a text file with one measurement per line and
// space-separated columns. A recipe reads one column from a fixed list
// of logs and draws either a bar chart of their averages or a box plot
// of their values. With no arguments, benchplot runs the default
// recipes; -list prints them all.
//
// The -config flag replaces the built-in recipes with those of a TOML
// file. Charts are written under -plots, and the -summary flag prints
// a table of each chart's statistics.
//
// Results can be archived in a SQL database with -db, collected into
// an HTML page with -html, and uploaded to Google Cloud Storage with
// -gcs.
//
// Example
//
//	benchplot -data logs -plots out -summary throughput-box handshake
//	benchplot -db sqlite3:runs.db -html out/index.html -all
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	"golang.org/x/benchplot/publish"
	"golang.org/x/benchplot/recipe"
	"golang.org/x/benchplot/report"
	"golang.org/x/benchplot/storage/db"
	_ "golang.org/x/benchplot/storage/db/sqlite3"
	"golang.org/x/benchplot/summary"
)

var errUsage = errors.New("usage error")

func main() {
	log.SetPrefix("benchplot: ")
	log.SetFlags(0)
	if err := benchplot(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err == errUsage {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func benchplot(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("benchplot", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flagData := flags.String("data", "../data", "read benchmark logs from `dir`")
	flagPlots := flags.String("plots", "../plots", "write charts to `dir`")
	flagConfig := flags.String("config", "", "read recipes from TOML `file` instead of the built-in ones")
	flagList := flags.Bool("list", false, "list the recipes and exit")
	flagAll := flags.Bool("all", false, "run every recipe")
	flagSummary := flags.Bool("summary", false, "print a summary table for each chart")
	flagErrorBars := flags.Bool("errorbars", false, "draw confidence intervals on bar charts")
	flagDB := flags.String("db", "", "archive summaries in database `driver:dsn` (sqlite3 or mysql)")
	flagHTML := flags.String("html", "", "write an HTML page of the charts to `file`")
	flagGCS := flags.String("gcs", "", "upload charts to GCS `bucket`")
	flagGCSPrefix := flags.String("gcs-prefix", "", "prefix GCS object names with `prefix`")
	var auth publish.AuthOption
	flags.Var(&auth, "auth", "GCS authentication `mode`: none, app-default")
	flagVerbose := flags.Bool("v", false, "print progress messages")
	flags.Usage = func() {
		fmt.Fprintf(wErr, "usage: benchplot [flags] [recipe...]\n")
		fmt.Fprintf(wErr, "flags:\n")
		flags.PrintDefaults()
		fmt.Fprintf(wErr, "\n%s", recipe.ConfigHelp)
	}
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	l := log.New(wErr, "benchplot: ", 0)
	vlog := func(format string, args ...interface{}) {
		if *flagVerbose {
			l.Printf(format, args...)
		}
	}
	opts := &recipe.Options{ErrorBars: *flagErrorBars, Warn: vlog}

	recipes := recipe.Builtin(*flagData)
	if *flagConfig != "" {
		cf, err := recipe.LoadConfig(*flagConfig)
		if err != nil {
			return err
		}
		recipes = cf.Recipes(*flagData)
	}

	if *flagList {
		for _, r := range recipes {
			fmt.Fprintf(w, "%-18s %-4s %d series -> %s\n", r.Name, r.Kind, len(r.Items), r.Output)
		}
		return nil
	}

	names := flags.Args()
	switch {
	case *flagAll && len(names) > 0:
		fmt.Fprintf(wErr, "benchplot: -all and recipe names are exclusive\n")
		flags.Usage()
		return errUsage
	case *flagAll:
		names = nil
		for _, r := range recipes {
			names = append(names, r.Name)
		}
	case len(names) == 0 && *flagConfig != "":
		// Config files have no defaults.
		for _, r := range recipes {
			names = append(names, r.Name)
		}
	case len(names) == 0:
		names = recipe.Default
	}
	todo, err := recipe.Lookup(recipes, names)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var run *db.Run
	if *flagDB != "" {
		driver, dsn, ok := strings.Cut(*flagDB, ":")
		if !ok || driver == "" {
			return fmt.Errorf("-db: want driver:dsn, got %q", *flagDB)
		}
		d, err := db.OpenSQL(driver, dsn)
		if err != nil {
			return fmt.Errorf("open database: %v", err)
		}
		defer d.Close()
		if run, err = d.NewRun(ctx); err != nil {
			return err
		}
		vlog("run %d started at %s\n", run.ID, run.Started)
	}

	var results []*recipe.Result
	var paths []string
	for _, r := range todo {
		res, err := r.Run(*flagPlots, opts)
		if err != nil {
			return err
		}
		results = append(results, res)
		paths = append(paths, res.Path)
		if *flagSummary {
			fmt.Fprintf(w, "%s: %s\n", r.Name, res.Path)
			if err := summary.Fprint(w, res.Series); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
		if run != nil {
			if err := run.InsertResult(ctx, res); err != nil {
				return err
			}
		}
	}

	if *flagHTML != "" {
		if err := report.WriteFile(*flagHTML, "Benchmark plots", results); err != nil {
			return err
		}
		paths = append(paths, *flagHTML)
	}

	if *flagGCS != "" {
		objects, err := publish.Upload(ctx, *flagGCS, *flagGCSPrefix, paths, auth)
		if err != nil {
			return err
		}
		for _, o := range objects {
			vlog("uploaded gs://%s/%s\n", *flagGCS, o)
		}
	}
	return nil
}
