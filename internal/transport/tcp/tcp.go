// internal/transport/tcp/tcp.go
package tcp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/transport"
)

// Config represents TCP transport configuration
type Config struct {
	Host          string        `json:"host"`
	Port          string        `json:"port"`
	DialTimeout   time.Duration `json:"dial_timeout"`
	SubmitTimeout time.Duration `json:"submit_timeout"`
}

const (
	defaultDialTimeout   = 10 * time.Second
	defaultSubmitTimeout = 30 * time.Second

	// pollInterval paces the completion wait loop of a one-shot send.
	pollInterval = 100 * time.Millisecond
)

// Transport implements transport.Transport over a raw TCP stream (port 9100
// style printing). The whole command stream goes out in a single send; there
// is no chunking and no MTU negotiation on a wired link.
type Transport struct {
	config *Config
	port   int
	conn   net.Conn
	logger *zap.Logger
	mutex  sync.RWMutex
	isOpen bool
	stats  *transport.Stats
}

// New creates a TCP transport. The configured port must parse as a valid
// 16-bit port number.
func New(config *Config, logger *zap.Logger) (*Transport, error) {
	port, err := strconv.ParseUint(config.Port, 10, 16)
	if err != nil || port == 0 {
		return nil, fmt.Errorf("%w: %q", transport.ErrInvalidPort, config.Port)
	}

	if config.DialTimeout <= 0 {
		config.DialTimeout = defaultDialTimeout
	}
	if config.SubmitTimeout <= 0 {
		config.SubmitTimeout = defaultSubmitTimeout
	}

	return &Transport{
		config: config,
		port:   int(port),
		logger: logger.With(
			zap.String("transport", "tcp"),
			zap.String("host", config.Host),
			zap.String("port", config.Port),
		),
		stats: &transport.Stats{},
	}, nil
}

// Connect opens the TCP connection and disables Nagle buffering; printer
// streams are latency-sensitive one-shot sends.
func (t *Transport) Connect(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.isOpen {
		return nil
	}

	t.logger.Info("Opening TCP connection")

	dialer := &net.Dialer{
		Timeout:   t.config.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	address := net.JoinHostPort(t.config.Host, t.config.Port)
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		t.logger.Error("Failed to open TCP connection", zap.Error(err))
		return fmt.Errorf("%w: dial %s: %v", transport.ErrConnectFailed, address, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}

	t.conn = conn
	t.isOpen = true
	t.stats.IsConnected = true
	t.stats.LastActivity = time.Now()

	t.logger.Info("TCP connection opened successfully")
	return nil
}

// Close closes the TCP connection.
func (t *Transport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.isOpen || t.conn == nil {
		return nil
	}

	if err := t.conn.Close(); err != nil {
		t.logger.Error("Failed to close TCP connection", zap.Error(err))
		return fmt.Errorf("failed to close TCP connection: %w", err)
	}

	t.conn = nil
	t.isOpen = false
	t.stats.IsConnected = false

	t.logger.Info("TCP connection closed")
	return nil
}

// IsOpen returns whether the connection is open.
func (t *Transport) IsOpen() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.isOpen && t.conn != nil
}

// Submit sends the whole stream plus the cut trailer in one shot. The send
// runs in the background while Submit polls for completion every 100ms,
// bounded by the configured submit timeout (or the caller's context,
// whichever ends first).
func (t *Transport) Submit(ctx context.Context, stream []byte) error {
	t.mutex.RLock()
	conn := t.conn
	open := t.isOpen
	t.mutex.RUnlock()

	if !open || conn == nil {
		return fmt.Errorf("%w: TCP connection not open", transport.ErrNotConnected)
	}

	payload := transport.WithCutTrailer(stream)
	deadline := time.Now().Add(t.config.SubmitTimeout)

	done := make(chan error, 1)
	go func() {
		n, err := conn.Write(payload)
		if err != nil {
			done <- fmt.Errorf("%w: %v", transport.ErrWriteFailed, err)
			return
		}
		if n != len(payload) {
			done <- fmt.Errorf("%w: incomplete write, wrote %d of %d bytes", transport.ErrWriteFailed, n, len(payload))
			return
		}
		done <- nil
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if err != nil {
				t.recordError()
				t.logger.Error("TCP submit failed", zap.Error(err))
				return err
			}
			t.recordWrite(len(payload))
			t.logger.Info("TCP submit completed", zap.Int("bytes", len(payload)))
			return nil
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", transport.ErrWriteFailed, ctx.Err())
		case <-ticker.C:
			if time.Now().After(deadline) {
				t.recordError()
				return fmt.Errorf("%w: submit exceeded %s", transport.ErrWriteFailed, t.config.SubmitTimeout)
			}
		}
	}
}

// recordWrite updates the stats for a completed submission. Stats() readers
// run concurrently, so updates take the write lock.
func (t *Transport) recordWrite(bytes int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.stats.BytesWritten += int64(bytes)
	t.stats.JobCount++
	t.stats.LastActivity = time.Now()
}

// recordError counts a failed submission under the write lock.
func (t *Transport) recordError() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.stats.ErrorCount++
}

// Stats returns a snapshot of transport statistics.
func (t *Transport) Stats() transport.Stats {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return *t.stats
}
