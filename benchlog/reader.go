// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchlog reads numeric columns out of benchmark log files.
//
// A benchmark log is plain text with one record per line and fields
// separated by single spaces. There is no header and no quoting. A
// metric lives at a fixed zero-based column in every line, for
// example the throughput in Mbps at column 6 of a picoquic transfer
// log.
package benchlog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Well-known columns of the picoquic benchmark logs.
const (
	ElapsedColumn    = 3 // elapsed time in seconds
	TimeColumn       = 4 // measurement time
	RequestColumn    = 5 // completed requests in the window
	ThroughputColumn = 6 // throughput in Mbps
)

// MaxLineLength is the longest line a Reader accepts, in bytes.
const MaxLineLength = 1 << 20

// A Reader reads one numeric column of a benchmark log.
//
// Its API is modeled on bufio.Scanner. Every line must carry the
// column; a short, non-numeric or overlong line stops the scan with a
// *SyntaxError rather than being skipped.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	column   int

	line  int
	value float64
	err   error
}

// A SyntaxError represents a malformed line of a benchmark log.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// NewReader constructs a reader of column from the log in r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string, column int) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName, column)
	return reader
}

// Reset resets the reader to begin reading column from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string, column int) {
	if column < 0 {
		panic(fmt.Sprintf("negative column %d", column))
	}
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, MaxLineLength+1)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.column = column
	r.line = 0
	r.value = 0
	r.err = nil
}

func (r *Reader) newSyntaxError(msg string) *SyntaxError {
	return &SyntaxError{r.fileName, r.line, msg}
}

// Scan advances the reader to the next line and reports whether a
// value was read. The caller should use the Value method to get it.
// If Scan reaches EOF, hits a malformed line or an I/O error occurs,
// it returns false, in which case the caller should use the Err
// method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.s.Scan() {
		switch err := r.s.Err(); {
		case errors.Is(err, bufio.ErrTooLong):
			r.line++
			r.err = r.newSyntaxError(fmt.Sprintf("line longer than %d bytes", MaxLineLength))
		case err != nil:
			r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.line, err)
		}
		return false
	}
	r.line++
	field, ok := nthField(bytes.TrimSuffix(r.s.Bytes(), []byte{'\r'}), r.column)
	if !ok {
		r.err = r.newSyntaxError(fmt.Sprintf("missing column %d", r.column))
		return false
	}
	v, err := strconv.ParseFloat(string(field), 64)
	if err != nil {
		r.err = r.newSyntaxError(fmt.Sprintf("parsing column %d: %v", r.column, err.(*strconv.NumError).Err))
		return false
	}
	r.value = v
	return true
}

// nthField returns the n'th space-separated field of line.
// Consecutive spaces delimit empty fields.
func nthField(line []byte, n int) ([]byte, bool) {
	for ; n > 0; n-- {
		i := bytes.IndexByte(line, ' ')
		if i < 0 {
			return nil, false
		}
		line = line[i+1:]
	}
	if i := bytes.IndexByte(line, ' '); i >= 0 {
		line = line[:i]
	}
	return line, true
}

// Value returns the value read by the last successful call to Scan.
func (r *Reader) Value() float64 {
	return r.value
}

// Line returns the 1-based line number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Err returns the first error that stopped Scan, if any.
// If Scan stopped because it read the input to completion,
// Err returns nil.
func (r *Reader) Err() error {
	return r.err
}
