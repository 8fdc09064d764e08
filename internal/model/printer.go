// internal/model/printer.go
package model

import "fmt"

// ConnectionState represents the lifecycle state of a printer session
type ConnectionState string

const (
	StateDisconnected  ConnectionState = "disconnected"
	StateConnecting    ConnectionState = "connecting"
	StateConnected     ConnectionState = "connected"
	StateDisconnecting ConnectionState = "disconnecting"
)

// Printer represents a printer-shaped device observed on or connected over a
// transport. Identity is the stable identifier; two printers are the same
// device iff their IDs match, regardless of display name.
type Printer struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	KnownService bool            `json:"known_service"`
	State        ConnectionState `json:"state"`
}

// DisplayName returns the best-known name for the printer, falling back to a
// generated placeholder that still carries the identifier.
func (p Printer) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Unknown printer (%s)", p.ID)
}

// Equal reports whether both printers refer to the same device.
func (p Printer) Equal(other Printer) bool {
	return p.ID == other.ID
}
