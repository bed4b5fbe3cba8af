// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"testing"
	"time"

	"golang.org/x/benchplot/chart"
	"golang.org/x/benchplot/recipe"
	. "golang.org/x/benchplot/storage/db"
	"golang.org/x/benchplot/storage/db/dbtest"
)

func result(name string, series ...chart.Series) *recipe.Result {
	return &recipe.Result{
		Recipe: &recipe.Recipe{Name: name},
		Path:   "plots/" + name + ".png",
		Series: series,
	}
}

// TestRunIDs verifies that NewRun generates increasing run IDs.
func TestRunIDs(t *testing.T) {
	ctx := context.Background()

	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	defer SetNow(time.Time{})
	SetNow(time.Unix(86400, 5e8))

	var last int64
	for i := 0; i < 3; i++ {
		r, err := db.NewRun(ctx)
		if err != nil {
			t.Fatalf("NewRun: %v", err)
		}
		if r.ID <= last {
			t.Errorf("run %d has ID %d, want > %d", i, r.ID, last)
		}
		last = r.ID
		if want := time.Unix(86400, 0).UTC(); !r.Started.Equal(want) {
			t.Errorf("run %d started at %v, want %v", i, r.Started, want)
		}
	}
	n, err := db.CountRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("CountRuns = %d, want 3", n)
	}
}

func TestInsertResult(t *testing.T) {
	ctx := context.Background()

	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	defer SetNow(time.Time{})
	SetNow(time.Unix(0, 0))

	r1, err := db.NewRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	err = r1.InsertResult(ctx, result("batching",
		chart.Series{Label: "batch : 4", Values: []float64{1, 2, 3}},
		chart.Series{Label: "batch : 8", Values: []float64{7}},
	))
	if err != nil {
		t.Fatalf("InsertResult: %v", err)
	}
	if err := r1.InsertResult(ctx, result("handshake", chart.Series{Label: "dpdk", Values: []float64{5, 5}})); err != nil {
		t.Fatalf("InsertResult: %v", err)
	}

	r2, err := db.NewRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := r2.InsertResult(ctx, result("batching", chart.Series{Label: "batch : 4", Values: []float64{10, 20}})); err != nil {
		t.Fatalf("InsertResult: %v", err)
	}

	recs, err := db.Summaries(ctx, "batching")
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3: %+v", len(recs), recs)
	}

	a := recs[0]
	if a.RunID != r1.ID || a.Recipe != "batching" || a.Label != "batch : 4" || a.Chart != "plots/batching.png" {
		t.Errorf("first record = %+v", a)
	}
	if !a.Started.Equal(time.Unix(0, 0)) {
		t.Errorf("first record started at %v, want the epoch", a.Started)
	}
	if a.N != 3 || a.Mean != 2 || a.Min != 1 || a.Median != 2 || a.Max != 3 || !a.HasInterval() {
		t.Errorf("first record statistics = %+v", a)
	}

	if b := recs[1]; b.Label != "batch : 8" || b.N != 1 || b.Mean != 7 || b.HasInterval() {
		t.Errorf("second record = %+v, want a single value without interval", b)
	}
	if c := recs[2]; c.RunID != r2.ID || c.Mean != 15 {
		t.Errorf("third record = %+v, want run %d with mean 15", c, r2.ID)
	}

	recs, err = db.Summaries(ctx, "missing")
	if err != nil || len(recs) != 0 {
		t.Errorf("Summaries(missing) = %v, %v, want none", recs, err)
	}
}

// TestInsertRollback verifies that a failed insert stores nothing.
func TestInsertRollback(t *testing.T) {
	ctx := context.Background()

	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	r, err := db.NewRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	res := result("throughput-box",
		chart.Series{Label: "nodpdk", Values: []float64{1, 2}},
		chart.Series{Label: "dpdk", Values: []float64{3, 4}},
	)
	if err := r.InsertResult(ctx, res); err != nil {
		t.Fatal(err)
	}
	// The same recipe cannot be stored twice in one run.
	if err := r.InsertResult(ctx, res); err == nil {
		t.Fatal("duplicate InsertResult succeeded")
	}
	recs, err := db.Summaries(ctx, "throughput-box")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d records after failed insert, want 2", len(recs))
	}
}
