// Package csvout streams generated rows into CSV files.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"pkg.jsn.cam/bulkgen/pkg/bulkgen"
)

// DefaultProgressInterval is how many rows pass between progress calls.
const DefaultProgressInterval = 100_000

// ProgressFunc is called with the number of data rows written so far.
type ProgressFunc func(rows int64)

// Result describes a finished table file.
type Result struct {
	Path  string
	Rows  int64 // data rows, header excluded
	Bytes int64
}

type options struct {
	progress ProgressFunc
	interval int64
}

// Option configures a write.
type Option func(*options)

// WithProgress registers a callback invoked every progress interval.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithProgressInterval changes how often the progress callback fires.
func WithProgressInterval(rows int64) Option {
	return func(o *options) {
		if rows > 0 {
			o.interval = rows
		}
	}
}

// WriteTable creates (or truncates) path and streams header and rows into it.
// A file that cannot be created or written yields an error wrapping
// bulkgen.ErrWriteTable; whatever was written before the failure is left on disk.
func WriteTable(path string, header []string, rows bulkgen.Rows, opts ...Option) (Result, error) {
	file, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", bulkgen.ErrWriteTable, err)
	}

	counter := &countingWriter{w: file}
	n, err := Encode(counter, header, rows, opts...)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: close %s: %w", bulkgen.ErrWriteTable, path, cerr)
	}
	return Result{Path: path, Rows: n, Bytes: counter.n}, err
}

// Encode writes header and rows to w in CSV form and returns the number of
// data rows written.
func Encode(w io.Writer, header []string, rows bulkgen.Rows, opts ...Option) (int64, error) {
	o := options{interval: DefaultProgressInterval}
	for _, opt := range opts {
		opt(&o)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("%w: header: %w", bulkgen.ErrWriteTable, err)
	}

	var n int64
	for row := range rows {
		if err := cw.Write(row); err != nil {
			return n, fmt.Errorf("%w: row %d: %w", bulkgen.ErrWriteTable, n+1, err)
		}
		n++
		if o.progress != nil && n%o.interval == 0 {
			o.progress(n)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("%w: flush: %w", bulkgen.ErrWriteTable, err)
	}
	return n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
