package pgsession_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgkit/pgsession"
)

func TestConnectAndMetadata(t *testing.T) {
	ctx := context.Background()
	conn := mustConnect(t, testConnConfig(t))
	defer conn.Close(ctx)

	md, err := conn.Metadata(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, md.Database)
	assert.NotEmpty(t, md.User)
	assert.Equal(t, 3, md.ProtocolVersion)
	assert.Greater(t, md.ServerVersion, 0)
	assert.Greater(t, md.PID, 0)
}

func TestQueryReadAll(t *testing.T) {
	ctx := context.Background()
	conn := mustConnect(t, testConnConfig(t))
	defer conn.Close(ctx)

	res, err := conn.Query(ctx, "select 'hello'")
	require.NoError(t, err)

	results, err := res.ReadAll()
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Rows, 1)
	assert.Equal(t, "hello", string(results[0].Rows[0][0]))
	assert.True(t, res.Complete())

	res.Close(ctx)
	assert.False(t, conn.HasActiveResult())
}

func TestSupersedingQueryWarnsAndCleansUp(t *testing.T) {
	ctx := context.Background()

	var warnings []string
	config := testConnConfig(t)
	config.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	conn := mustConnect(t, config)
	defer conn.Close(ctx)

	first, err := conn.Query(ctx, "select generate_series(1, 100000)")
	require.NoError(t, err)

	second, err := conn.Query(ctx, "select 42")
	require.NoError(t, err)

	assert.Contains(t, warnings, "closing open result set, cancelling previous query")
	assert.False(t, conn.IsCurrentResult(first))
	assert.True(t, conn.IsCurrentResult(second))

	results, err := second.ReadAll()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "42", string(results[0].Rows[0][0]))
	second.Close(ctx)
}

func TestCancelQueryOnIdleConnection(t *testing.T) {
	ctx := context.Background()
	conn := mustConnect(t, testConnConfig(t))
	defer conn.Close(ctx)

	require.NoError(t, conn.CancelQuery(ctx))

	// The connection is still usable afterward.
	res, err := conn.Query(ctx, "select 1")
	require.NoError(t, err)
	_, err = res.ReadAll()
	require.NoError(t, err)
	res.Close(ctx)
}

func TestCopyRowsRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := mustConnect(t, testConnConfig(t))
	defer conn.Close(ctx)

	mustExec(t, conn, "create temporary table pgsession_copy_test (a int4, b text)")

	tbl := pgsession.Table{
		{Name: "a", Values: []interface{}{int64(1), int64(2)}},
		{Name: "b", Values: []interface{}{"alpha", nil}},
	}
	require.NoError(t, conn.CopyRows(ctx, "copy pgsession_copy_test (a, b) from stdin", tbl))

	res, err := conn.Query(ctx, "select a, b from pgsession_copy_test order by a")
	require.NoError(t, err)
	results, err := res.ReadAll()
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Rows, 2)
	assert.Equal(t, "1", string(results[0].Rows[0][0]))
	assert.Equal(t, "alpha", string(results[0].Rows[0][1]))
	assert.Equal(t, "2", string(results[0].Rows[1][0]))
	assert.Nil(t, results[0].Rows[1][1])
	res.Close(ctx)
}

func TestCopyRowsBinaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	config := testConnConfig(t)
	config.RowEncoder = pgsession.BinaryRowEncoder{}

	conn := mustConnect(t, config)
	defer conn.Close(ctx)

	mustExec(t, conn, "create temporary table pgsession_copy_bin_test (a int4, b text)")

	tbl := pgsession.Table{
		{Name: "a", Values: []interface{}{int32(7), int32(8)}},
		{Name: "b", Values: []interface{}{"x", nil}},
	}
	err := conn.CopyRows(ctx, "copy pgsession_copy_bin_test (a, b) from stdin with (format binary)", tbl)
	require.NoError(t, err)

	res, err := conn.Query(ctx, "select count(*) from pgsession_copy_bin_test")
	require.NoError(t, err)
	results, err := res.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "2", string(results[0].Rows[0][0]))
	res.Close(ctx)
}

func TestCopyRowsIntoMissingTable(t *testing.T) {
	ctx := context.Background()
	conn := mustConnect(t, testConnConfig(t))
	defer conn.Close(ctx)

	tbl := pgsession.Table{{Name: "a", Values: []interface{}{int64(1)}}}
	err := conn.CopyRows(ctx, "copy pgsession_no_such_table (a) from stdin", tbl)
	var loadErr *pgsession.LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestQuoteLiteralRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := mustConnect(t, testConnConfig(t))
	defer conn.Close(ctx)

	original := "it's \t tricky \\ text"
	quoted, err := conn.QuoteLiteral(ctx, &original)
	require.NoError(t, err)

	res, err := conn.Query(ctx, "select "+quoted)
	require.NoError(t, err)
	results, err := res.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, original, string(results[0].Rows[0][0]))
	res.Close(ctx)
}

func TestQuoteIdentifierRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := mustConnect(t, testConnConfig(t))
	defer conn.Close(ctx)

	quoted, err := conn.QuoteIdentifier(ctx, `weird "name"`)
	require.NoError(t, err)
	assert.Equal(t, `"weird ""name"""`, quoted)

	res, err := conn.Query(ctx, "select 1 as "+quoted)
	require.NoError(t, err)
	results, err := res.ReadAll()
	require.NoError(t, err)
	require.Len(t, results[0].FieldDescriptions, 1)
	assert.Equal(t, `weird "name"`, string(results[0].FieldDescriptions[0].Name))
	res.Close(ctx)
}

func mustExec(t testing.TB, conn *pgsession.Conn, sql string) {
	t.Helper()
	res, err := conn.Query(context.Background(), sql)
	require.NoError(t, err)
	_, err = res.ReadAll()
	require.NoError(t, err)
	res.Close(context.Background())
}
