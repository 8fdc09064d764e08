// internal/transport/transport.go
package transport

import (
	"context"
	"time"
)

// Transport delivers one assembled command stream to printer hardware.
// Implementations are transport-specific (BLE, TCP, serial, USB) but share
// the same contract: submit the whole stream, get a single completion.
type Transport interface {
	Submit(ctx context.Context, stream []byte) error
}

// CutTrailer is the paper-cut command every transmitted print job ends with.
// It is appended by transports, never by the ticket assembler: cutting is a
// hardware-session concern, not ticket content.
var CutTrailer = []byte{0x1D, 0x56, 0x00}

// WithCutTrailer returns the stream with the cut trailer appended. The input
// slice is not modified.
func WithCutTrailer(stream []byte) []byte {
	out := make([]byte, 0, len(stream)+len(CutTrailer))
	out = append(out, stream...)
	out = append(out, CutTrailer...)
	return out
}

// Flatten concatenates the ordered chunks produced by ticket serialization
// into one contiguous stream.
func Flatten(chunks [][]byte) []byte {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// Stats provides transport-level statistics.
type Stats struct {
	BytesWritten int64     `json:"bytes_written"`
	JobCount     int64     `json:"job_count"`
	ErrorCount   int64     `json:"error_count"`
	LastActivity time.Time `json:"last_activity"`
	IsConnected  bool      `json:"is_connected"`
}
