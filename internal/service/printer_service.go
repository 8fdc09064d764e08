// internal/service/printer_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/config"
	"github.com/Belorder/Printer/internal/model"
	"github.com/Belorder/Printer/internal/transport"
	"github.com/Belorder/Printer/internal/transport/bluetooth"
)

// PrinterService owns the wireless printer lifecycle: the discovery scanner
// and the single GATT session. At most one printer is connected at a time.
type PrinterService struct {
	config  *config.Config
	scanner *bluetooth.Scanner
	session *bluetooth.Session
	logger  *zap.Logger
}

// NewPrinterService creates the printer service. The scan and dial functions
// are injected so tests can run without a Bluetooth adapter.
func NewPrinterService(
	cfg *config.Config,
	scan bluetooth.ScanFunc,
	dial bluetooth.Dialer,
	hooks bluetooth.Hooks,
	logger *zap.Logger,
) *PrinterService {
	session := bluetooth.NewSession(dial, hooks, logger)

	return &PrinterService{
		config:  cfg,
		scanner: bluetooth.NewScanner(scan, logger),
		session: session,
		logger:  logger.With(zap.String("service", "printer")),
	}
}

// Scan observes nearby devices for the configured scan duration and grows
// the candidate set.
func (s *PrinterService) Scan(ctx context.Context) error {
	return s.scanner.Scan(ctx, s.config.Bluetooth.ScanDuration)
}

// Printers lists discovered printers in priority order, with the connected
// printer's live state folded in.
func (s *PrinterService) Printers() []model.Printer {
	current := s.session.Printer()
	state := s.session.State()

	printers := s.scanner.Printers()
	for i := range printers {
		if printers[i].Equal(current) {
			printers[i].State = state
		}
	}
	return printers
}

// Connect establishes a session with the printer carrying the given
// identifier. The device does not need to have been scanned; a known
// identifier is enough.
func (s *PrinterService) Connect(ctx context.Context, id string) (model.Printer, error) {
	printer := model.Printer{ID: id}
	for _, p := range s.scanner.Printers() {
		if p.ID == id {
			printer = p
			break
		}
	}

	if err := s.session.Connect(ctx, printer); err != nil {
		return printer, fmt.Errorf("connect to %s: %w", printer.DisplayName(), err)
	}

	// Remember the device so later listings surface it without a fresh scan.
	s.scanner.AddKnown(printer.ID, printer.Name)

	return s.session.Printer(), nil
}

// Disconnect tears down the current session, failing any in-flight transfer.
// Disconnecting while nothing is connected is reported, not ignored, so API
// callers get a clear answer.
func (s *PrinterService) Disconnect() error {
	if s.session.State() == model.StateDisconnected {
		return transport.ErrNotConnected
	}
	return s.session.Disconnect()
}

// Session exposes the wireless transport for print submission.
func (s *PrinterService) Session() *bluetooth.Session {
	return s.session
}
