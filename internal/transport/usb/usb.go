// internal/transport/usb/usb.go
package usb

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/transport"
)

// Config represents USB transport configuration
type Config struct {
	VendorID  string `json:"vendor_id"`
	ProductID string `json:"product_id"`
	Endpoint  int    `json:"endpoint"`
}

// Transport implements transport.Transport over a USB bulk OUT endpoint.
type Transport struct {
	config   *Config
	ctx      *gousb.Context
	device   *gousb.Device
	intf     *gousb.Interface
	intfDone func()
	outEndpt *gousb.OutEndpoint
	logger   *zap.Logger
	mutex    sync.RWMutex
	isOpen   bool
	stats    *transport.Stats
}

// New creates a USB transport.
func New(config *Config, logger *zap.Logger) *Transport {
	if config.Endpoint == 0 {
		config.Endpoint = 1
	}

	return &Transport{
		config: config,
		logger: logger.With(
			zap.String("transport", "usb"),
			zap.String("vendor_id", config.VendorID),
			zap.String("product_id", config.ProductID),
		),
		stats: &transport.Stats{},
	}
}

// Connect locates the device by VID/PID, claims its default interface and
// resolves the bulk OUT endpoint.
func (t *Transport) Connect(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.isOpen {
		return nil
	}

	vendorID, err := parseHexID(t.config.VendorID)
	if err != nil {
		return fmt.Errorf("invalid vendor ID: %w", err)
	}
	productID, err := parseHexID(t.config.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID: %w", err)
	}

	t.logger.Info("Opening USB connection")

	usbCtx := gousb.NewContext()
	device, err := usbCtx.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil {
		usbCtx.Close()
		return fmt.Errorf("%w: enumerate USB devices: %v", transport.ErrConnectFailed, err)
	}
	if device == nil {
		usbCtx.Close()
		return fmt.Errorf("%w: USB device not found (VID: %04X, PID: %04X)", transport.ErrConnectFailed, uint16(vendorID), uint16(productID))
	}

	intf, done, err := device.DefaultInterface()
	if err != nil {
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("%w: claim interface: %v", transport.ErrConnectFailed, err)
	}

	outEndpt, err := intf.OutEndpoint(t.config.Endpoint)
	if err != nil {
		done()
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("%w: get out endpoint: %v", transport.ErrConnectFailed, err)
	}

	t.ctx = usbCtx
	t.device = device
	t.intf = intf
	t.intfDone = done
	t.outEndpt = outEndpt
	t.isOpen = true
	t.stats.IsConnected = true
	t.stats.LastActivity = time.Now()

	t.logger.Info("USB connection opened successfully")
	return nil
}

// Close releases the interface, device and USB context.
func (t *Transport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.isOpen {
		return nil
	}

	if t.intfDone != nil {
		t.intfDone()
		t.intfDone = nil
	}
	if t.intf != nil {
		t.intf = nil
	}
	if t.device != nil {
		t.device.Close()
		t.device = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}

	t.outEndpt = nil
	t.isOpen = false
	t.stats.IsConnected = false

	t.logger.Info("USB connection closed")
	return nil
}

// IsOpen returns whether the connection is open.
func (t *Transport) IsOpen() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.isOpen && t.device != nil && t.outEndpt != nil
}

// Submit writes the whole stream plus the cut trailer to the OUT endpoint.
func (t *Transport) Submit(ctx context.Context, stream []byte) error {
	t.mutex.RLock()
	endpt := t.outEndpt
	open := t.isOpen
	t.mutex.RUnlock()

	if !open || endpt == nil {
		return fmt.Errorf("%w: USB connection not open", transport.ErrNotConnected)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	payload := transport.WithCutTrailer(stream)
	n, err := endpt.WriteContext(ctx, payload)
	if err != nil {
		t.recordError()
		t.logger.Error("USB write failed", zap.Error(err))
		return fmt.Errorf("%w: %v", transport.ErrWriteFailed, err)
	}
	if n != len(payload) {
		t.recordError()
		return fmt.Errorf("%w: incomplete write, wrote %d of %d bytes", transport.ErrWriteFailed, n, len(payload))
	}

	t.recordWrite(len(payload))
	t.logger.Info("USB submit completed", zap.Int("bytes", len(payload)))
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

// parseHexID parses a hex ID string (0x1234 or 1234).
func parseHexID(hexStr string) (gousb.ID, error) {
	if len(hexStr) > 2 && hexStr[:2] == "0x" {
		hexStr = hexStr[2:]
	}
	id, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}
	return gousb.ID(id), nil
}
