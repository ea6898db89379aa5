package pgsession_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgkit/pgsession"
)

// testConnConfig builds a ConnConfig from the PGSESSION_TEST_CONN_STRING environment
// variable, a keyword/value connection string. Quoted values are not supported in test
// connection strings.
func testConnConfig(t testing.TB) pgsession.ConnConfig {
	connString := os.Getenv("PGSESSION_TEST_CONN_STRING")
	if connString == "" {
		t.Skip("Skipping due to missing environment variable PGSESSION_TEST_CONN_STRING")
	}

	var params []pgsession.Param
	for _, kv := range strings.Fields(connString) {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			t.Fatalf("malformed connection parameter %q", kv)
		}
		params = append(params, pgsession.Param{Key: parts[0], Value: parts[1]})
	}
	return pgsession.ConnConfig{Params: params, CheckInterrupts: true}
}

func mustConnect(t testing.TB, config pgsession.ConnConfig) *pgsession.Conn {
	conn, err := pgsession.Connect(context.Background(), config)
	require.NoError(t, err)
	return conn
}
