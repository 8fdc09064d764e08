// internal/transport/bluetooth/discovery.go
package bluetooth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/model"
)

// candidate is one observed device. The sequence number preserves discovery
// order for stable listing.
type candidate struct {
	addr         string
	name         string
	knownService bool
	seq          int
}

// Scanner collects printer candidates from BLE advertisements. Repeated
// observations of the same device refresh its cached display name; a freshly
// advertised name always wins over a previously cached one.
type Scanner struct {
	scan   ScanFunc
	logger *zap.Logger

	mutex sync.Mutex
	found map[string]*candidate
	seq   int
}

// NewScanner creates a scanner using the given scan implementation
// (ble.Scan in production).
func NewScanner(scan ScanFunc, logger *zap.Logger) *Scanner {
	return &Scanner{
		scan:   scan,
		logger: logger.With(zap.String("transport", "bluetooth")),
		found:  make(map[string]*candidate),
	}
}

// Scan observes advertisements for the given duration, accumulating
// candidates. The candidate set grows across calls; it is never reset by a
// new scan.
func (s *Scanner) Scan(ctx context.Context, duration time.Duration) error {
	scanCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	s.logger.Info("Starting BLE scan", zap.Duration("duration", duration))

	err := s.scan(scanCtx, true, s.handleAdvertisement, nil)
	if err != nil && scanCtx.Err() == nil {
		s.logger.Error("BLE scan failed", zap.Error(err))
		return err
	}

	s.logger.Info("BLE scan finished", zap.Int("candidates", len(s.Printers())))
	return nil
}

// AddKnown seeds a candidate from a previously-known identifier, e.g. a
// device connected in an earlier session. No active scan is required for it
// to appear in listings.
func (s *Scanner) AddKnown(addr, cachedName string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, ok := s.found[addr]; ok {
		if existing.name == "" && cachedName != "" {
			existing.name = cachedName
		}
		return
	}

	s.seq++
	s.found[addr] = &candidate{
		addr: addr,
		name: cachedName,
		seq:  s.seq,
	}
}

// handleAdvertisement records or refreshes one observed device.
func (s *Scanner) handleAdvertisement(a ble.Advertisement) {
	addr := a.Addr().String()
	name := a.LocalName()
	known := HasKnownService(a.Services())

	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, ok := s.found[addr]
	if !ok {
		s.seq++
		s.found[addr] = &candidate{
			addr:         addr,
			name:         name,
			knownService: known,
			seq:          s.seq,
		}
		s.logger.Debug("Discovered device",
			zap.String("addr", addr),
			zap.String("name", name),
			zap.Bool("known_service", known),
		)
		return
	}

	if name != "" {
		existing.name = name
	}
	if known {
		existing.knownService = true
	}
}

// Printers lists candidates as printers in priority order: devices with a
// usable name and a catalog-listed service first, fully anonymous devices
// last. Ties keep discovery order.
func (s *Scanner) Printers() []model.Printer {
	s.mutex.Lock()
	candidates := make([]*candidate, 0, len(s.found))
	for _, c := range s.found {
		candidates = append(candidates, c)
	}
	s.mutex.Unlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i].score(), candidates[j].score()
		if si != sj {
			return si > sj
		}
		return candidates[i].seq < candidates[j].seq
	})

	printers := make([]model.Printer, 0, len(candidates))
	for _, c := range candidates {
		printers = append(printers, model.Printer{
			ID:           c.addr,
			Name:         c.name,
			KnownService: c.knownService,
			State:        model.StateDisconnected,
		})
	}
	return printers
}

// score ranks a candidate: name presence dominates, known service breaks the tie.
func (c *candidate) score() int {
	score := 0
	if c.name != "" {
		score += 2
	}
	if c.knownService {
		score++
	}
	return score
}
