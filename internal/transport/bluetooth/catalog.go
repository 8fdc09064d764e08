// internal/transport/bluetooth/catalog.go
package bluetooth

import "github.com/go-ble/ble"

// Static catalog of service and characteristic UUIDs advertised by common
// thermal printer modules. The catalog is a connect-time heuristic only: a
// device advertising one of these services is ranked as printer-shaped, and a
// catalog-listed characteristic is preferred as the write endpoint. None of
// it affects the wire protocol.
var (
	knownServiceUUIDs = []ble.UUID{
		ble.UUID16(0x18F0), // ESC/POS printing service
		ble.UUID16(0xFF00), // generic vendor serial service
		ble.UUID16(0xAE30), // Goojprt/cat printer service
		ble.MustParse("49535343-fe7d-4ae5-8fa9-9fafd205e455"), // Microchip transparent UART
		ble.MustParse("e7810a71-73ae-499d-8c15-faa9aef0c3f2"), // common POS printer service
	}

	knownWriteCharUUIDs = []ble.UUID{
		ble.UUID16(0x2AF1), // ESC/POS write characteristic
		ble.UUID16(0xFF02), // generic vendor write characteristic
		ble.UUID16(0xAE01), // Goojprt control/data characteristic
		ble.MustParse("49535343-8841-43f4-a8d4-ecbe34729bb3"), // Microchip transparent UART TX
		ble.MustParse("bef8d6c9-9c21-4c9e-b632-bd58c1009f9f"), // common POS printer write
	}
)

// HasKnownService reports whether any advertised service is catalog-listed.
func HasKnownService(services []ble.UUID) bool {
	for _, svc := range services {
		if ble.Contains(knownServiceUUIDs, svc) {
			return true
		}
	}
	return false
}

// IsKnownWriteCharacteristic reports whether the characteristic UUID is
// catalog-listed as a printer write endpoint.
func IsKnownWriteCharacteristic(u ble.UUID) bool {
	return ble.Contains(knownWriteCharUUIDs, u)
}
