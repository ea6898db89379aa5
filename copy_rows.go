package pgsession

import (
	"context"
	"fmt"
	"io"
)

// Column is one named column of an in-memory table.
type Column struct {
	Name   string
	Values []interface{}
}

// Table is columnar in-memory data. All columns must have the same length.
type Table []Column

// RowEncoder appends the COPY wire encoding of one table row to buf and returns the extended
// buffer. The loader reuses one buffer across rows.
type RowEncoder interface {
	AppendRow(buf []byte, tbl Table, row int) ([]byte, error)
}

// CopyFramer is implemented by encoders whose COPY format carries a stream header and
// trailer, such as the binary format.
type CopyFramer interface {
	AppendHeader(buf []byte) []byte
	AppendTrailer(buf []byte) []byte
}

// CopyRows streams tbl to the backend with the COPY sub-protocol. sql must be a
// COPY ... FROM STDIN statement matching the configured encoder's format. Rows are encoded
// one at a time into a reusable buffer and each buffer is handed to the backend as a single
// copy-data submission; row-at-a-time submission avoids intermediate buffer copies and
// outperforms batching here. Any failure at any stage aborts the whole load.
func (c *Conn) CopyRows(ctx context.Context, sql string, tbl Table) error {
	if err := c.checkConn(ctx); err != nil {
		return err
	}
	if len(tbl) == 0 {
		return nil
	}

	rowCount := len(tbl[0].Values)
	for _, col := range tbl[1:] {
		if len(col.Values) != rowCount {
			return &LoadError{Context: fmt.Sprintf("column %q has %d values, expected %d", col.Name, len(col.Values), rowCount)}
		}
	}

	enc := c.config.RowEncoder
	if enc == nil {
		enc = TextRowEncoder{}
	}
	r := &copyRowReader{enc: enc, tbl: tbl, rowCount: rowCount}
	if framer, ok := enc.(CopyFramer); ok {
		r.framer = framer
	}

	c.log(ctx, LogLevelDebug, "CopyRows", map[string]interface{}{"sql": sql, "rowCount": rowCount})

	_, err := c.session.CopyFrom(c.interruptCtx(ctx), r, sql)
	if r.encodeErr != nil {
		return &LoadError{Context: fmt.Sprintf("failed to encode row %d", r.encodeRow), Err: r.encodeErr}
	}
	if err != nil {
		return &LoadError{Context: "COPY failed", Err: err}
	}
	return nil
}

// copyRowReader feeds the copy-data channel. Each Read returns at most one encoded row so the
// protocol library submits row-sized copy-data messages; the row buffer is cleared and reused
// rather than reallocated.
type copyRowReader struct {
	enc      RowEncoder
	framer   CopyFramer
	tbl      Table
	rowCount int

	row         int
	buf         []byte
	off         int
	headerDone  bool
	trailerDone bool

	encodeErr error
	encodeRow int
}

func (r *copyRowReader) Read(p []byte) (int, error) {
	for r.off == len(r.buf) {
		r.buf = r.buf[:0]
		r.off = 0
		switch {
		case !r.headerDone:
			r.headerDone = true
			if r.framer != nil {
				r.buf = r.framer.AppendHeader(r.buf)
			}
		case r.row < r.rowCount:
			var err error
			r.buf, err = r.enc.AppendRow(r.buf, r.tbl, r.row)
			if err != nil {
				r.encodeErr = err
				r.encodeRow = r.row
				return 0, err
			}
			r.row++
		case !r.trailerDone:
			r.trailerDone = true
			if r.framer != nil {
				r.buf = r.framer.AppendTrailer(r.buf)
			}
		default:
			return 0, io.EOF
		}
	}

	n := copy(p, r.buf[r.off:])
	r.off += n
	return n, nil
}
