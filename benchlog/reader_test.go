// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aclements/go-moremath/stats"
)

func TestReader(t *testing.T) {
	type res struct {
		values []float64
		err    string
	}
	for _, test := range []struct {
		name   string
		input  string
		column int
		want   res
	}{
		{
			"basic",
			"0 0 0 0 0 0 10\n0 0 0 0 0 0 20\n",
			ThroughputColumn,
			res{values: []float64{10, 20}},
		},
		{
			"noTrailingNewline",
			"1 2 3 4.5\n1 2 3 5.5",
			ElapsedColumn,
			res{values: []float64{4.5, 5.5}},
		},
		{
			"crlf",
			"1 2 3 4.5\r\n1 2 3 5.5\r\n",
			ElapsedColumn,
			res{values: []float64{4.5, 5.5}},
		},
		{
			"middleColumn",
			"a b 7 d e\n",
			2,
			res{values: []float64{7}},
		},
		{
			"empty",
			"",
			ThroughputColumn,
			res{},
		},
		{
			"shortLine",
			"0 0 0 0 0 0 10\n0 0 0\n0 0 0 0 0 0 30\n",
			ThroughputColumn,
			res{values: []float64{10}, err: "test:2: missing column 6"},
		},
		{
			"blankLine",
			"0 1\n\n0 2\n",
			1,
			res{values: []float64{1}, err: "test:2: missing column 1"},
		},
		{
			"notNumeric",
			"0 x\n",
			1,
			res{err: "test:1: parsing column 1: invalid syntax"},
		},
		{
			"doubleSpace",
			"0  1\n",
			1,
			res{err: "test:1: parsing column 1: invalid syntax"},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(test.input), "test", test.column)
			var got res
			for r.Scan() {
				got.values = append(got.values, r.Value())
			}
			if err := r.Err(); err != nil {
				got.err = err.Error()
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("got %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestSyntaxErrorPos(t *testing.T) {
	r := NewReader(strings.NewReader("1 2\n1\n"), "log.txt", 1)
	for r.Scan() {
	}
	var se *SyntaxError
	if !errors.As(r.Err(), &se) {
		t.Fatalf("got error %v, want *SyntaxError", r.Err())
	}
	if file, line := se.Pos(); file != "log.txt" || line != 2 {
		t.Errorf("got position %s:%d, want log.txt:2", file, line)
	}
	if r.Line() != 2 {
		t.Errorf("got Line() = %d, want 2", r.Line())
	}
}

func TestLongLines(t *testing.T) {
	// Lines past bufio's default 64 KiB token size still parse.
	long := "0 0 0 0 0 0 5 " + strings.Repeat("x", 100<<10) + "\n"
	r := NewReader(strings.NewReader(long+long), "log.txt", ThroughputColumn)
	var values []float64
	for r.Scan() {
		values = append(values, r.Value())
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if want := []float64{5, 5}; !reflect.DeepEqual(values, want) {
		t.Errorf("got %v, want %v", values, want)
	}

	tooLong := "0 0 0 0 0 0 5 " + strings.Repeat("x", 2*MaxLineLength) + "\n"
	r = NewReader(strings.NewReader("0 0 0 0 0 0 1\n"+tooLong), "log.txt", ThroughputColumn)
	for r.Scan() {
	}
	var se *SyntaxError
	if !errors.As(r.Err(), &se) {
		t.Fatalf("got error %v, want *SyntaxError", r.Err())
	}
	if file, line := se.Pos(); file != "log.txt" || line != 2 {
		t.Errorf("got position %s:%d, want log.txt:2", file, line)
	}
}

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.txt")
	if err := os.WriteFile(path, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSeriesAndAverage(t *testing.T) {
	path := writeLog(t, "0 0 0 0 0 0 10\n0 0 0 0 0 0 20\n")

	series, err := Series(path, ThroughputColumn)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{10, 20}; !reflect.DeepEqual(series, want) {
		t.Errorf("Series got %v, want %v", series, want)
	}

	avg, err := Average(path, ThroughputColumn)
	if err != nil {
		t.Fatal(err)
	}
	if avg != 15 {
		t.Errorf("Average got %v, want 15", avg)
	}
}

func TestSeriesProperties(t *testing.T) {
	var lines []string
	for _, v := range []string{"1.5", "2", "3.25", "1e3", "-4", "0.125", "7"} {
		lines = append(lines, "q 1 2 3 4 5 "+v+" tail")
	}
	path := writeLog(t, strings.Join(lines, "\n")+"\n")

	s1, err := Series(path, ThroughputColumn)
	if err != nil {
		t.Fatal(err)
	}
	if len(s1) != len(lines) {
		t.Errorf("got %d values, want one per line (%d)", len(s1), len(lines))
	}

	// Reading is deterministic and leaves the file intact.
	s2, err := Series(path, ThroughputColumn)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("second read got %v, want %v", s2, s1)
	}

	avg, err := Average(path, ThroughputColumn)
	if err != nil {
		t.Fatal(err)
	}
	if want := stats.Mean(s1); avg != want {
		t.Errorf("Average got %v, want mean of series %v", avg, want)
	}
}

func TestAverageErrors(t *testing.T) {
	empty := writeLog(t, "")
	if _, err := Average(empty, 0); !errors.Is(err, ErrEmpty) {
		t.Errorf("Average of empty file got err %v, want ErrEmpty", err)
	}

	if _, err := Average(filepath.Join(t.TempDir(), "missing.txt"), 0); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Average of missing file got err %v, want os.ErrNotExist", err)
	}

	short := writeLog(t, "0 0 0 0 0 0 10\n0 0 0\n")
	if _, err := Series(short, ThroughputColumn); err == nil {
		t.Errorf("Series of short line got nil error, want failure")
	}
}

func TestScaled(t *testing.T) {
	got := Scaled([]float64{20, 40, 10}, 20)
	if want := []float64{1, 2, 0.5}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
