// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db archives the per-series statistics of plotted recipes
// in a SQL database, so that runs can be compared over time.
package db

import (
	"bytes"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"golang.org/x/net/context"

	"golang.org/x/benchplot/recipe"
	"golang.org/x/benchplot/summary"
)

// DB is a high-level interface to a summary database.
// It's safe for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun     *sql.Stmt
	insertSummary *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	if driverName == "sqlite3" {
		// Each connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Started VARCHAR(64)
);
CREATE TABLE IF NOT EXISTS Summaries (
	RunID BIGINT UNSIGNED,
	Recipe VARCHAR(255),
	SeriesIndex INT,
	Label VARCHAR(255),
	Chart VARCHAR(1024),
	N INT,
	Mean DOUBLE,
	Lo DOUBLE,
	Hi DOUBLE,
	Min DOUBLE,
	Q1 DOUBLE,
	Median DOUBLE,
	Q3 DOUBLE,
	Max DOUBLE,
	PRIMARY KEY (RunID, Recipe, SeriesIndex),
{{if not .sqlite3}}
	Index (Recipe(100)),
{{end}}
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS SummariesRecipe ON Summaries(Recipe);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Started) VALUES (?)")
	if err != nil {
		return err
	}
	db.insertSummary, err = db.sql.Prepare(`INSERT INTO Summaries(RunID, Recipe, SeriesIndex, Label, Chart, N, Mean, Lo, Hi, Min, Q1, Median, Q3, Max)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	return nil
}

// now is the time source for run timestamps. Tests replace it.
var now = time.Now

// A Run groups the results of one invocation.
type Run struct {
	// ID is the primary key of the run.
	ID int64
	// Started is when the run was created, truncated to seconds.
	Started time.Time

	db *DB
}

// NewRun records a new run and returns it.
func (db *DB) NewRun(ctx context.Context) (*Run, error) {
	started := now().UTC().Truncate(time.Second)
	res, err := db.insertRun.ExecContext(ctx, started.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Run{ID: id, Started: started, db: db}, nil
}

// InsertResult stores the statistics of every series of res in a
// single transaction.
func (r *Run) InsertResult(ctx context.Context, res *recipe.Result) (err error) {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	stmt := tx.StmtContext(ctx, r.db.insertSummary)
	for i, st := range summary.Stats(res.Series) {
		_, err = stmt.ExecContext(ctx, r.ID, res.Recipe.Name, i, st.Label, res.Path, st.N,
			st.Mean, nullFloat(st.Lo), nullFloat(st.Hi),
			st.Min, st.Q1, st.Median, st.Q3, st.Max)
		if err != nil {
			return fmt.Errorf("insert %s/%s: %v", res.Recipe.Name, st.Label, err)
		}
	}
	return nil
}

// nullFloat maps NaN and infinities to NULL, which MySQL requires.
func nullFloat(x float64) sql.NullFloat64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: x, Valid: true}
}

// A Record is one archived series.
type Record struct {
	RunID   int64
	Started time.Time
	Recipe  string
	// Chart is the path the chart was written to.
	Chart string
	summary.Stat
}

// Summaries returns every archived series of the named recipe,
// oldest run first and in series order within a run.
func (db *DB) Summaries(ctx context.Context, recipeName string) ([]Record, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT s.RunID, r.Started, s.Label, s.Chart, s.N, s.Mean, s.Lo, s.Hi, s.Min, s.Q1, s.Median, s.Q3, s.Max
FROM Summaries s JOIN Runs r ON s.RunID = r.RunID
WHERE s.Recipe = ?
ORDER BY s.RunID, s.SeriesIndex`, recipeName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		rec := Record{Recipe: recipeName}
		var started string
		var lo, hi sql.NullFloat64
		if err := rows.Scan(&rec.RunID, &started, &rec.Label, &rec.Chart, &rec.N, &rec.Mean, &lo, &hi,
			&rec.Min, &rec.Q1, &rec.Median, &rec.Q3, &rec.Max); err != nil {
			return nil, err
		}
		if rec.Started, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("run %d: %v", rec.RunID, err)
		}
		rec.Lo, rec.Hi = math.NaN(), math.NaN()
		if lo.Valid && hi.Valid {
			rec.Lo, rec.Hi = lo.Float64, hi.Float64
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountRuns returns the number of runs stored in the database.
func (db *DB) CountRuns(ctx context.Context) (int, error) {
	var count int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Runs").Scan(&count)
	return count, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertSummary.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
