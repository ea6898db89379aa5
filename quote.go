package pgsession

import (
	"context"

	"github.com/lib/pq"
)

// QuoteLiteral escapes s for direct embedding in a SQL statement as a string literal. A nil
// input renders as the unquoted SQL NULL sentinel rather than an escaped empty string. The
// session is health checked before any caller text is touched.
func (c *Conn) QuoteLiteral(ctx context.Context, s *string) (string, error) {
	if err := c.checkConn(ctx); err != nil {
		return "", err
	}
	if s == nil {
		return "NULL", nil
	}
	escaped, err := c.session.EscapeString(*s)
	if err != nil {
		return "", &ProtocolError{Context: "failed to escape string", Err: err}
	}
	return "'" + escaped + "'", nil
}

// QuoteIdentifier escapes s for direct embedding in a SQL statement as an identifier. The
// session is health checked before any caller text is touched.
func (c *Conn) QuoteIdentifier(ctx context.Context, s string) (string, error) {
	if err := c.checkConn(ctx); err != nil {
		return "", err
	}
	return pq.QuoteIdentifier(s), nil
}
