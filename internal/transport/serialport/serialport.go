// internal/transport/serialport/serialport.go
package serialport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/transport"
)

// Config represents serial transport configuration
type Config struct {
	Port     string        `json:"port"`
	BaudRate int           `json:"baud_rate"`
	DataBits int           `json:"data_bits"`
	StopBits int           `json:"stop_bits"`
	Parity   string        `json:"parity"`
	Timeout  time.Duration `json:"timeout"`
}

// Transport implements transport.Transport over a serial line. Like TCP it
// is a one-shot sender; the serial driver applies its own flow control.
type Transport struct {
	config *Config
	port   serial.Port
	logger *zap.Logger
	mutex  sync.RWMutex
	isOpen bool
	stats  *transport.Stats
}

// New creates a serial transport.
func New(config *Config, logger *zap.Logger) *Transport {
	if config.BaudRate == 0 {
		config.BaudRate = 9600
	}
	if config.DataBits == 0 {
		config.DataBits = 8
	}
	if config.StopBits == 0 {
		config.StopBits = 1
	}

	return &Transport{
		config: config,
		logger: logger.With(
			zap.String("transport", "serial"),
			zap.String("port", config.Port),
		),
		stats: &transport.Stats{},
	}
}

// Connect opens the serial port.
func (t *Transport) Connect(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.isOpen {
		return nil
	}

	t.logger.Info("Opening serial port", zap.Int("baud_rate", t.config.BaudRate))

	mode := &serial.Mode{
		BaudRate: t.config.BaudRate,
		DataBits: t.config.DataBits,
		StopBits: serial.StopBits(t.config.StopBits),
	}

	switch t.config.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	port, err := serial.Open(t.config.Port, mode)
	if err != nil {
		t.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("%w: open %s: %v", transport.ErrConnectFailed, t.config.Port, err)
	}

	if t.config.Timeout > 0 {
		if err := port.SetReadTimeout(t.config.Timeout); err != nil {
			port.Close()
			return fmt.Errorf("failed to set read timeout: %w", err)
		}
	}

	t.port = port
	t.isOpen = true
	t.stats.IsConnected = true
	t.stats.LastActivity = time.Now()

	t.logger.Info("Serial port opened successfully")
	return nil
}

// Close closes the serial port.
func (t *Transport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.isOpen || t.port == nil {
		return nil
	}

	if err := t.port.Close(); err != nil {
		t.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	t.port = nil
	t.isOpen = false
	t.stats.IsConnected = false

	t.logger.Info("Serial port closed")
	return nil
}

// IsOpen returns whether the port is open.
func (t *Transport) IsOpen() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.isOpen && t.port != nil
}

// Submit writes the whole stream plus the cut trailer to the port.
func (t *Transport) Submit(ctx context.Context, stream []byte) error {
	t.mutex.RLock()
	port := t.port
	open := t.isOpen
	t.mutex.RUnlock()

	if !open || port == nil {
		return fmt.Errorf("%w: serial port not open", transport.ErrNotConnected)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	payload := transport.WithCutTrailer(stream)
	n, err := port.Write(payload)
	if err != nil {
		t.recordError()
		t.logger.Error("Serial write failed", zap.Error(err))
		return fmt.Errorf("%w: %v", transport.ErrWriteFailed, err)
	}
	if n != len(payload) {
		t.recordError()
		return fmt.Errorf("%w: incomplete write, wrote %d of %d bytes", transport.ErrWriteFailed, n, len(payload))
	}

	t.recordWrite(len(payload))
	t.logger.Info("Serial submit completed", zap.Int("bytes", len(payload)))
	return nil
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
