package pgsession_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgmock"
	"github.com/jackc/pgproto3/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgkit/pgsession"
)

func TestConnectWithMockServer(t *testing.T) {
	script := &pgmock.Script{Steps: pgmock.AcceptUnauthenticatedConnRequestSteps()}
	script.Steps = append(script.Steps, pgmock.WaitForClose())

	ln, err := net.Listen("tcp", "127.0.0.1:")
	require.NoError(t, err)
	defer ln.Close()

	serverErrChan := make(chan error, 1)
	go func() {
		defer close(serverErrChan)

		conn, err := ln.Accept()
		if err != nil {
			serverErrChan <- err
			return
		}
		defer conn.Close()

		if err := conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
			serverErrChan <- err
			return
		}

		if err := script.Run(pgproto3.NewBackend(pgproto3.NewChunkReader(conn), conn)); err != nil {
			serverErrChan <- err
			return
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := pgsession.Connect(ctx, pgsession.ConnConfig{Params: []pgsession.Param{
		{Key: "host", Value: host},
		{Key: "port", Value: port},
		{Key: "user", Value: "pgsession"},
		{Key: "dbname", Value: "pgsession_test"},
		{Key: "sslmode", Value: "disable"},
	}})
	require.NoError(t, err)

	md, err := conn.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pgsession_test", md.Database)
	assert.Equal(t, host, md.Host)
	assert.Equal(t, port, md.Port)
	assert.Equal(t, "pgsession", md.User)
	assert.Equal(t, 3, md.ProtocolVersion)

	conn.Close(ctx)
	conn.Close(ctx) // Close is idempotent.

	require.NoError(t, <-serverErrChan)
}

func TestConnectRefused(t *testing.T) {
	t.Parallel()

	// Presumably nothing is listening on 127.0.0.1:1
	_, err := pgsession.Connect(context.Background(), pgsession.ConnConfig{Params: []pgsession.Param{
		{Key: "host", Value: "127.0.0.1"},
		{Key: "port", Value: "1"},
		{Key: "user", Value: "pgsession"},
		{Key: "sslmode", Value: "disable"},
	}})
	require.Error(t, err)

	var connErr *pgsession.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, connErr.Error(), "failed to connect")
}

func TestConnectInvalidParams(t *testing.T) {
	t.Parallel()

	_, err := pgsession.Connect(context.Background(), pgsession.ConnConfig{Params: []pgsession.Param{
		{Key: "port", Value: "not-a-port"},
	}})
	var connErr *pgsession.ConnectionError
	require.ErrorAs(t, err, &connErr)
}
