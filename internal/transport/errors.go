// internal/transport/errors.go
package transport

import "errors"

// Transport error taxonomy. Transports wrap these sentinels with context via
// fmt.Errorf("%w"); callers match with errors.Is.
var (
	// ErrDeviceNotReady means no active connection or selected write endpoint
	// can accept a submission right now.
	ErrDeviceNotReady = errors.New("device not ready")

	// ErrConnectionTimeout means a connection attempt did not complete within
	// its deadline.
	ErrConnectionTimeout = errors.New("connection timed out")

	// ErrConnectFailed means the link layer explicitly refused the connection.
	ErrConnectFailed = errors.New("connection failed")

	// ErrNotConnected means an operation was attempted without a session, or
	// the device was lost mid-operation.
	ErrNotConnected = errors.New("not connected")

	// ErrInvalidPort means a port string did not parse as a 16-bit port number.
	ErrInvalidPort = errors.New("invalid port")

	// ErrWriteFailed means a write failed mid-transfer; remaining chunks were
	// not sent.
	ErrWriteFailed = errors.New("write failed")

	// ErrUnknown is the catch-all for failures outside the taxonomy.
	ErrUnknown = errors.New("unknown transport error")
)
