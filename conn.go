package pgsession

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgproto3/v2"
)

// session is the surface of *pgconn.PgConn the connection relies on.
type session interface {
	Close(ctx context.Context) error
	IsClosed() bool
	CancelRequest(ctx context.Context) error
	Exec(ctx context.Context, sql string) *pgconn.MultiResultReader
	CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error)
	PID() uint32
	ParameterStatus(key string) string
	EscapeString(s string) (string, error)
}

var _ session = (*pgconn.PgConn)(nil)

// Conn owns a single backend session and the lifecycle discipline around it. It is not safe
// for concurrent use.
type Conn struct {
	session    session
	config     ConnConfig
	connConfig *pgconn.Config

	reconnect func(ctx context.Context) (session, error)

	currentResult *Result
	transacting   bool
}

// Connect establishes a session from the ordered connection parameters in config. The client
// encoding is forced to UTF8. On failure the partially established session is torn down by the
// protocol library before the error is returned.
func Connect(ctx context.Context, config ConnConfig) (*Conn, error) {
	if config.LogLevel == 0 {
		config.LogLevel = LogLevelDebug
	}

	connConfig, err := pgconn.ParseConfig(config.connString())
	if err != nil {
		return nil, &ConnectionError{Context: "failed to parse connection parameters", Err: err}
	}
	connConfig.RuntimeParams["client_encoding"] = "UTF8"

	sess, err := pgconn.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, &ConnectionError{Context: "failed to connect", Err: err}
	}

	c := &Conn{session: sess, config: config, connConfig: connConfig}
	c.reconnect = func(ctx context.Context) (session, error) {
		pgConn, err := pgconn.ConnectConfig(ctx, c.connConfig)
		if err != nil {
			return nil, err
		}
		return pgConn, nil
	}
	c.log(ctx, LogLevelInfo, "connection established",
		map[string]interface{}{"host": connConfig.Host, "database": connConfig.Database})
	return c, nil
}

// Close tears the session down. It is idempotent, safe to call from cleanup paths, and always
// succeeds from the caller's perspective; teardown errors are swallowed.
func (c *Conn) Close(ctx context.Context) {
	if c.session == nil {
		return
	}
	_ = c.session.Close(ctx)
	c.session = nil
	c.currentResult = nil
}

// checkConn verifies the session is usable. A degraded session gets exactly one reset
// (close and reconnect with the stored configuration); a session that stays degraded after
// the reset is a connection error. A healthy session is untouched.
func (c *Conn) checkConn(ctx context.Context) error {
	if c.session == nil {
		return ErrDisconnected
	}
	if !c.session.IsClosed() {
		return nil
	}

	_ = c.session.Close(ctx)
	sess, err := c.reconnect(ctx)
	if err != nil {
		return &ConnectionError{Context: "lost connection to database", Err: err}
	}
	c.session = sess
	// Whatever result was in flight died with the old session.
	c.currentResult = nil
	if c.session.IsClosed() {
		return &ConnectionError{Context: "lost connection to database"}
	}
	c.log(ctx, LogLevelInfo, "connection reset", nil)
	return nil
}

// CancelQuery requests server-side abort of the in-flight command. Cancellation is best
// effort: a rejected cancel request is reported as a warning, not an error, because the
// command may complete normally before the cancel arrives. The caller must still drain
// results afterward.
func (c *Conn) CancelQuery(ctx context.Context) error {
	if err := c.checkConn(ctx); err != nil {
		return err
	}
	if err := c.session.CancelRequest(ctx); err != nil {
		c.warn(ctx, err.Error())
	}
	return nil
}

// Metadata describes the live session. String fields are empty when unknown.
type Metadata struct {
	Database        string
	Host            string
	Port            string
	User            string
	ProtocolVersion int
	ServerVersion   int
	PID             int
}

// Metadata reports connection parameters and backend identification. It health checks the
// session first. ServerVersion uses the libpq integer form (e.g. 150002 for 15.2).
func (c *Conn) Metadata(ctx context.Context) (Metadata, error) {
	if err := c.checkConn(ctx); err != nil {
		return Metadata{}, err
	}

	md := Metadata{
		ProtocolVersion: pgproto3.ProtocolVersionNumber >> 16,
		ServerVersion:   serverVersionNum(c.session.ParameterStatus("server_version")),
		PID:             int(c.session.PID()),
	}
	if cc := c.connConfig; cc != nil {
		md.Database = cc.Database
		md.Host = cc.Host
		md.User = cc.User
		if cc.Port != 0 {
			md.Port = strconv.Itoa(int(cc.Port))
		}
	}
	return md, nil
}

// serverVersionNum converts a server_version parameter status to the libpq integer form:
// 150002 for "15.2", 90624 for "9.6.24". Unparseable versions map to 0.
func serverVersionNum(s string) int {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return 0
	}
	if v.Major() >= 10 {
		return int(v.Major())*10000 + int(v.Minor())
	}
	return int(v.Major())*10000 + int(v.Minor())*100 + int(v.Patch())
}

// CheckInterrupts reports whether blocking protocol waits honor the caller's context.
func (c *Conn) CheckInterrupts() bool {
	return c.config.CheckInterrupts
}

// Transacting reports the externally managed transaction flag.
func (c *Conn) Transacting() bool {
	return c.transacting
}

// SetTransacting records whether a transaction is open. The flag is owned by an external
// transaction manager; this package never sets or clears it itself.
func (c *Conn) SetTransacting(transacting bool) {
	c.transacting = transacting
}

// interruptCtx returns the context blocking protocol waits run under.
func (c *Conn) interruptCtx(ctx context.Context) context.Context {
	if c.config.CheckInterrupts {
		return ctx
	}
	return context.Background()
}
