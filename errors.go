package pgsession

// ErrDisconnected is returned when an operation is attempted without a live session.
var ErrDisconnected = &ConnectionError{Context: "disconnected"}

// ConnectionError means no session exists or the session stayed unhealthy after the single
// reset attempt. It carries the backend diagnostic text when one is available.
type ConnectionError struct {
	Context string
	Err     error
}

func (e *ConnectionError) Error() string { return errorMessage(e.Context, e.Err) }

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError means a call into the protocol library returned an unexpected or absent
// handle. It is fatal to the attempted operation.
type ProtocolError struct {
	Context string
	Err     error
}

func (e *ProtocolError) Error() string { return errorMessage(e.Context, e.Err) }

func (e *ProtocolError) Unwrap() error { return e.Err }

// LoadError means a stage of a bulk load failed. The whole load is aborted with no partial
// retry; the caller should health check the connection before reusing it.
type LoadError struct {
	Context string
	Err     error
}

func (e *LoadError) Error() string { return errorMessage(e.Context, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

func errorMessage(context string, err error) string {
	if err == nil {
		return context
	}
	return context + ": " + err.Error()
}
