// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package resultio

import (
	"encoding/csv"
	"path/filepath"

	"github.com/calebcase/tmpfile"
	"github.com/zeebo/errs"
)

// Error is the result-emission error class.
var Error = errs.Class("resultio")

// CSVWriter is the concrete RowWriter crsim ships: rows accumulate in
// an anonymous temp file in the destination's directory, and Close
// publishes it atomically by linking the anonymous file to its final
// path, so a reader never observes a partially-written result file
// (the "temp file, then publish" idiom used for artifact writes
// elsewhere in the ecosystem).
type CSVWriter struct {
	dest string
	tmp  *tmpfile.File
	w    *csv.Writer
}

// NewCSVWriter opens a temp file alongside dest ready to receive rows.
func NewCSVWriter(dest string) (*CSVWriter, error) {
	tmp, err := tmpfile.New(filepath.Dir(dest), "crsim-results-*.csv")
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &CSVWriter{dest: dest, tmp: tmp, w: csv.NewWriter(tmp)}, nil
}

// WriteHeader implements RowWriter.
func (c *CSVWriter) WriteHeader(columns []string) error {
	return Error.Wrap(c.w.Write(columns))
}

// WriteRow implements RowWriter.
func (c *CSVWriter) WriteRow(fields []string) error {
	return Error.Wrap(c.w.Write(fields))
}

// Close flushes the buffered rows, links the anonymous temp file to
// dest, and closes the handle. No further writes are valid afterward.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		_ = c.tmp.Close()
		return Error.Wrap(err)
	}
	if err := c.tmp.Link(c.dest); err != nil {
		_ = c.tmp.Close()
		return Error.Wrap(err)
	}
	return Error.Wrap(c.tmp.Close())
}

var _ RowWriter = (*CSVWriter)(nil)
