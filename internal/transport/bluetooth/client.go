// internal/transport/bluetooth/client.go
package bluetooth

import (
	"context"

	"github.com/go-ble/ble"
)

// Client is the subset of the GATT client surface the session state machine
// depends on. ble.Client satisfies it; tests substitute a fake.
type Client interface {
	DiscoverProfile(force bool) (*ble.Profile, error)
	WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error
	ExchangeMTU(rxMTU int) (int, error)
	CancelConnection() error
	Disconnected() <-chan struct{}
}

// Dialer opens a GATT connection to a device address.
type Dialer func(ctx context.Context, addr string) (Client, error)

// GATTDialer returns the production dialer backed by the default BLE device.
func GATTDialer() Dialer {
	return func(ctx context.Context, addr string) (Client, error) {
		return ble.Dial(ctx, ble.NewAddr(addr))
	}
}

// ScanFunc runs a BLE scan, delivering advertisements to the handler until
// the context ends. ble.Scan satisfies it; tests substitute a fake.
type ScanFunc func(ctx context.Context, allowDup bool, h ble.AdvHandler, f ble.AdvFilter) error
