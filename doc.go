// Package pgsession manages the lifecycle of a single PostgreSQL connection and its results.
/*
pgsession sits between an application runtime and github.com/jackc/pgconn. It owns one backend
session and enforces the protocol discipline PostgreSQL's client-server model demands: commands
are synchronous per connection, a result stream must be fully drained before the connection is
reusable, and COPY mode temporarily changes the connection's semantics entirely.

Connection Lifecycle

Use Connect to establish a session from an ordered list of libpq keyword/value parameters. The
client encoding is always forced to UTF8. Close tears the session down; it is idempotent and
never fails from the caller's perspective. Before touching the wire, every operation performs a
health check: a missing session fails immediately, a degraded session is reset exactly once, and
a session that stays degraded after the reset fails with a connection error.

Result Tracking

A Conn considers at most one Result current at a time. Query binds the new result as current.
Starting a second query before finishing the first is tolerated: the previous query is
cancelled, its pending results are drained, and a warning is reported. Closing a result that is
no longer current is a no-op.

Bulk Loading

CopyRows streams an in-memory table to the backend with the COPY sub-protocol, one encoded row
at a time through a reusable buffer. Row encoding is pluggable; text and binary format encoders
are provided.

Quoting

QuoteLiteral and QuoteIdentifier make caller-supplied text safe for direct embedding in SQL.
Both verify connection health first. A nil literal renders as the SQL NULL sentinel.

A Conn is not safe for concurrent use. Use one Conn per worker or provide external locking.
*/
package pgsession
