package pgsession

import (
	"context"

	"github.com/jackc/pgconn"
)

// Result is the caller-owned handle for one query's result stream. The issuing Conn tracks at
// most one Result as current at a time; the Result registers itself when the query starts and
// unregisters via Close.
type Result struct {
	conn *Conn
	mrr  *pgconn.MultiResultReader

	complete bool
	drained  bool
}

// Query executes sql via the simple query protocol and binds the returned Result as the
// connection's current one. If another result is still live it is cancelled and drained
// first, and a warning is reported.
func (c *Conn) Query(ctx context.Context, sql string) (*Result, error) {
	if err := c.checkConn(ctx); err != nil {
		return nil, err
	}
	c.log(ctx, LogLevelDebug, "Query", map[string]interface{}{"sql": sql})

	res := &Result{conn: c}
	c.setCurrentResult(ctx, res)
	res.mrr = c.session.Exec(c.interruptCtx(ctx), sql)
	return res, nil
}

// Complete reports whether the result's row stream has been fully consumed.
func (r *Result) Complete() bool {
	return r.complete
}

// ReadAll consumes the remaining results into memory.
func (r *Result) ReadAll() ([]*pgconn.Result, error) {
	results, err := r.mrr.ReadAll()
	r.complete = true
	return results, err
}

// NextResult advances to the next result in the stream. It returns false when the stream is
// exhausted, which marks the result complete.
func (r *Result) NextResult() bool {
	if r.mrr.NextResult() {
		return true
	}
	r.complete = true
	return false
}

// ResultReader returns the reader for the current result in the stream.
func (r *Result) ResultReader() *pgconn.ResultReader {
	return r.mrr.ResultReader()
}

// Close unregisters the result from its connection, cancelling the query if it is still
// incomplete and draining pending results. Closing a result that is not current is a no-op.
func (r *Result) Close(ctx context.Context) {
	r.conn.resetCurrentResult(ctx, r)
}

// drain discards whatever the backend still has buffered for this result so the session
// returns to a ready state. It never fails and is idempotent.
func (r *Result) drain() {
	if r.drained {
		return
	}
	r.drained = true
	if r.mrr != nil {
		_ = r.mrr.Close()
	}
}

// setCurrentResult makes res the connection's current result. Replacing a live result runs
// the cleanup protocol against it first; replacing it with another live query is flagged as a
// warning because it usually signals the caller started a second query before finishing the
// first.
func (c *Conn) setCurrentResult(ctx context.Context, res *Result) {
	if res == c.currentResult {
		return
	}
	if c.currentResult != nil {
		if res != nil {
			c.warn(ctx, "closing open result set, cancelling previous query")
		}
		c.cleanupQuery(ctx)
	}
	c.currentResult = res
}

// resetCurrentResult unregisters res. A stale or repeated unregister is tolerated as a no-op.
func (c *Conn) resetCurrentResult(ctx context.Context, res *Result) {
	if res != c.currentResult {
		return
	}
	c.cleanupQuery(ctx)
	c.currentResult = nil
}

// cleanupQuery restores the session to a ready state after the current result is abandoned:
// an unfinished result gets a best-effort cancel so the backend stops producing rows nobody
// will read, then pending results are always drained.
func (c *Conn) cleanupQuery(ctx context.Context) {
	res := c.currentResult
	if res == nil {
		return
	}
	if !res.complete {
		if err := c.CancelQuery(ctx); err != nil {
			c.log(ctx, LogLevelError, "cancel of abandoned query failed", map[string]interface{}{"err": err})
		}
	}
	res.drain()
}

// IsCurrentResult reports whether res is the connection's current result.
func (c *Conn) IsCurrentResult(res *Result) bool {
	return c.currentResult == res
}

// HasActiveResult reports whether any result is currently bound.
func (c *Conn) HasActiveResult() bool {
	return c.currentResult != nil
}
