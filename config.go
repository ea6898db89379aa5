package pgsession

import (
	"strings"
)

// Param is a single libpq keyword/value connection parameter, e.g. {"host", "localhost"}.
// Parameter order is preserved when handed to the protocol library.
type Param struct {
	Key   string
	Value string
}

// ConnConfig holds the settings for Connect.
type ConnConfig struct {
	// Params are forwarded verbatim to the protocol library. The standard libpq key set is
	// supported (host, port, dbname, user, password, sslmode, ...); individual keys are not
	// validated or interpreted here. When empty, libpq environment variables apply.
	Params []Param

	// CheckInterrupts makes blocking protocol waits honor the caller's context. When false,
	// waits run to completion like plain libpq.
	CheckInterrupts bool

	// RowEncoder serializes table rows for CopyRows. Defaults to TextRowEncoder.
	RowEncoder RowEncoder

	Logger   Logger
	LogLevel LogLevel

	// OnWarning receives recoverable anomalies (superseding an open result set, a rejected
	// cancel request). When nil, warnings are logged at LogLevelWarn.
	OnWarning func(msg string)
}

// connString renders Params as a keyword/value connection string suitable for
// pgconn.ParseConfig.
func (cc *ConnConfig) connString() string {
	var sb strings.Builder
	for i, p := range cc.Params {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(quoteParamValue(p.Value))
	}
	return sb.String()
}

// quoteParamValue escapes a connection parameter value per libpq conventions: values
// containing spaces, quotes, or backslashes (and empty values) are single quoted with
// backslash escapes.
func quoteParamValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	var sb strings.Builder
	sb.WriteByte('\'')
	for i := 0; i < len(v); i++ {
		if v[i] == '\'' || v[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(v[i])
	}
	sb.WriteByte('\'')
	return sb.String()
}
