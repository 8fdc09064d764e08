// internal/transport/bluetooth/session.go
package bluetooth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/model"
	"github.com/Belorder/Printer/internal/transport"
)

const (
	// DefaultConnectTimeout bounds a single connection attempt.
	DefaultConnectTimeout = 15 * time.Second

	// DefaultChunkDelay is the pacing wait between chunk writes; thermal
	// print buffers overrun without it.
	DefaultChunkDelay = 50 * time.Millisecond

	// MinChunkSize and MaxChunkSize clamp the negotiated chunk size.
	// Printers misbehave above ~180 bytes even when the link permits more.
	MinChunkSize = 20
	MaxChunkSize = 180

	// requestedMTU is what we ask for during MTU exchange; the link answers
	// with what it actually supports.
	requestedMTU = 512

	// attHeaderLen is the ATT write header overhead per frame.
	attHeaderLen = 3
)

// Hooks carries optional session lifecycle callbacks. Nil hooks are skipped.
type Hooks struct {
	// OnReady fires when the session enters Connected, carrying the
	// printer's identity.
	OnReady func(printer model.Printer)

	// OnDisconnected fires when the session returns to Disconnected. The
	// reason is nil for an explicit disconnect.
	OnDisconnected func(printer model.Printer, reason error)
}

// Session is the wireless transport state machine. It owns discovery of the
// write endpoint, MTU negotiation and chunked flow-controlled delivery of
// submitted streams. All state transitions run through transition() under
// the session mutex; the mutex is never held across an I/O wait.
type Session struct {
	dial           Dialer
	connectTimeout time.Duration
	chunkDelay     time.Duration
	hooks          Hooks
	logger         *zap.Logger

	mutex        sync.Mutex
	state        model.ConnectionState
	printer      model.Printer
	client       Client
	writeChar    *ble.Characteristic
	withResponse bool
	chunkSize    int

	// cancelConnect aborts the in-flight connection attempt; set while the
	// session is Connecting, nil otherwise.
	cancelConnect context.CancelFunc

	// Transfer state: at most one submission is outstanding. queue holds the
	// chunks not yet in flight; pending resolves the submission; closing
	// cancelTransfer stops the transfer loop before its next send.
	queue          [][]byte
	pending        chan error
	cancelTransfer chan struct{}
}

// NewSession creates a disconnected session using the given dialer
// (GATTDialer in production).
func NewSession(dial Dialer, hooks Hooks, logger *zap.Logger) *Session {
	return &Session{
		dial:           dial,
		connectTimeout: DefaultConnectTimeout,
		chunkDelay:     DefaultChunkDelay,
		hooks:          hooks,
		logger:         logger.With(zap.String("transport", "bluetooth")),
		state:          model.StateDisconnected,
		chunkSize:      MinChunkSize,
	}
}

// State returns the current session state.
func (s *Session) State() model.ConnectionState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Printer returns the identity of the printer this session targets.
func (s *Session) Printer() model.Printer {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.printer
}

// ChunkSize returns the negotiated chunk size.
func (s *Session) ChunkSize() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.chunkSize
}

// transition moves the state machine to a new state. Callers must hold the mutex.
func (s *Session) transition(to model.ConnectionState) {
	s.logger.Debug("Session state transition",
		zap.String("from", string(s.state)),
		zap.String("to", string(to)),
	)
	s.state = to
	s.printer.State = to
}

// Connect dials the printer, selects a write endpoint and negotiates the
// chunk size. The whole attempt, dial and GATT setup included, is bounded by
// the connect timeout; on expiry the link is cancelled and the session
// returns to Disconnected with ErrConnectionTimeout. An explicit Disconnect
// while Connecting aborts the attempt and wins over a late dial result.
func (s *Session) Connect(ctx context.Context, printer model.Printer) error {
	dialCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	s.mutex.Lock()
	if s.state != model.StateDisconnected {
		state := s.state
		s.mutex.Unlock()
		return fmt.Errorf("%w: session is %s", transport.ErrConnectFailed, state)
	}
	s.transition(model.StateConnecting)
	s.printer = printer
	s.printer.State = model.StateConnecting
	s.cancelConnect = cancel
	s.mutex.Unlock()

	s.logger.Info("Connecting to printer",
		zap.String("printer_id", printer.ID),
		zap.String("printer_name", printer.DisplayName()),
	)

	client, err := s.dial(dialCtx, printer.ID)
	if err != nil {
		s.resetToDisconnected()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("Connection attempt timed out", zap.String("printer_id", printer.ID))
			return fmt.Errorf("%w: no connection within %s", transport.ErrConnectionTimeout, s.connectTimeout)
		}
		s.logger.Error("Connection attempt failed", zap.Error(err))
		return fmt.Errorf("%w: %v", transport.ErrConnectFailed, err)
	}

	writeChar, withResponse, chunkSize, err := s.setupEndpoint(dialCtx, client)
	if err != nil {
		client.CancelConnection()
		s.resetToDisconnected()
		return err
	}

	s.mutex.Lock()
	if s.state != model.StateConnecting {
		// Disconnect raced the attempt and won; drop the late connection.
		s.mutex.Unlock()
		client.CancelConnection()
		return fmt.Errorf("%w: connection attempt aborted", transport.ErrNotConnected)
	}
	s.cancelConnect = nil
	s.client = client
	s.writeChar = writeChar
	s.withResponse = withResponse
	s.chunkSize = chunkSize
	s.transition(model.StateConnected)
	connected := s.printer
	s.mutex.Unlock()

	go s.watchLink(client)

	s.logger.Info("Printer connected",
		zap.String("printer_id", connected.ID),
		zap.String("write_characteristic", writeChar.UUID.String()),
		zap.Bool("with_response", withResponse),
		zap.Int("chunk_size", chunkSize),
	)

	if s.hooks.OnReady != nil {
		s.hooks.OnReady(connected)
	}
	return nil
}

// setupEndpoint discovers the GATT profile, picks the write endpoint and
// negotiates the chunk size. The client API has no context support, so the
// work runs in a goroutine and is abandoned when ctx expires; a device that
// accepts the connection but stalls during discovery must not hang the
// attempt past its deadline.
func (s *Session) setupEndpoint(ctx context.Context, client Client) (*ble.Characteristic, bool, int, error) {
	type endpoint struct {
		writeChar    *ble.Characteristic
		withResponse bool
		chunkSize    int
		err          error
	}

	done := make(chan endpoint, 1)
	go func() {
		profile, err := client.DiscoverProfile(true)
		if err != nil {
			done <- endpoint{err: fmt.Errorf("%w: profile discovery: %v", transport.ErrConnectFailed, err)}
			return
		}

		writeChar, withResponse := selectWriteCharacteristic(profile)
		if writeChar == nil {
			done <- endpoint{err: fmt.Errorf("%w: no writable characteristic", transport.ErrConnectFailed)}
			return
		}

		chunkSize := MinChunkSize
		if txMTU, err := client.ExchangeMTU(requestedMTU); err == nil {
			chunkSize = ClampChunkSize(txMTU - attHeaderLen)
		} else {
			s.logger.Warn("MTU exchange failed, keeping conservative chunk size", zap.Error(err))
		}
		done <- endpoint{writeChar: writeChar, withResponse: withResponse, chunkSize: chunkSize}
	}()

	select {
	case ep := <-done:
		return ep.writeChar, ep.withResponse, ep.chunkSize, ep.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("GATT setup timed out")
			return nil, false, 0, fmt.Errorf("%w: no endpoint within %s", transport.ErrConnectionTimeout, s.connectTimeout)
		}
		return nil, false, 0, fmt.Errorf("%w: connection attempt aborted", transport.ErrNotConnected)
	}
}

// Disconnect tears the session down. Pending timers die with the dial
// context, queued chunks are dropped and an in-flight submission resolves
// with an error instead of hanging forever.
func (s *Session) Disconnect() error {
	s.mutex.Lock()
	if s.state == model.StateDisconnected {
		s.mutex.Unlock()
		return nil
	}
	s.transition(model.StateDisconnecting)
	if s.cancelConnect != nil {
		s.cancelConnect()
		s.cancelConnect = nil
	}
	s.failPendingLocked(fmt.Errorf("%w: disconnected while sending", transport.ErrNotConnected))
	client := s.client
	s.client = nil
	s.writeChar = nil
	s.mutex.Unlock()

	if client != nil {
		if err := client.CancelConnection(); err != nil {
			s.logger.Error("Failed to cancel connection", zap.Error(err))
		}
	}

	s.mutex.Lock()
	s.transition(model.StateDisconnected)
	printer := s.printer
	s.mutex.Unlock()

	s.logger.Info("Printer disconnected", zap.String("printer_id", printer.ID))

	if s.hooks.OnDisconnected != nil {
		s.hooks.OnDisconnected(printer, nil)
	}
	return nil
}

// watchLink waits for the link layer to report loss of connection. A stale
// watcher (the session already moved on to another client) exits quietly.
func (s *Session) watchLink(client Client) {
	<-client.Disconnected()

	s.mutex.Lock()
	if s.client != client {
		s.mutex.Unlock()
		return
	}
	s.transition(model.StateDisconnecting)
	reason := fmt.Errorf("%w: device lost", transport.ErrNotConnected)
	s.failPendingLocked(reason)
	s.client = nil
	s.writeChar = nil
	s.transition(model.StateDisconnected)
	printer := s.printer
	s.mutex.Unlock()

	s.logger.Warn("Link lost", zap.String("printer_id", printer.ID))

	if s.hooks.OnDisconnected != nil {
		s.hooks.OnDisconnected(printer, reason)
	}
}

// Submit delivers one assembled command stream to the printer as a FIFO
// queue of chunks with one chunk in flight at a time. The session must be
// Connected with a selected write endpoint, and accepts a single outstanding
// submission; violating either resolves immediately with ErrDeviceNotReady.
func (s *Session) Submit(ctx context.Context, stream []byte) error {
	s.mutex.Lock()
	if s.state != model.StateConnected || s.client == nil || s.writeChar == nil {
		s.mutex.Unlock()
		return fmt.Errorf("%w: no connected printer", transport.ErrDeviceNotReady)
	}
	if s.pending != nil {
		s.mutex.Unlock()
		return fmt.Errorf("%w: a transfer is already in progress", transport.ErrDeviceNotReady)
	}

	payload := transport.WithCutTrailer(stream)
	s.queue = SplitChunks(payload, s.chunkSize)
	pending := make(chan error, 1)
	cancelTransfer := make(chan struct{})
	s.pending = pending
	s.cancelTransfer = cancelTransfer

	client := s.client
	writeChar := s.writeChar
	withResponse := s.withResponse
	chunkCount := len(s.queue)
	chunkSize := s.chunkSize
	s.mutex.Unlock()

	s.logger.Info("Starting chunked transfer",
		zap.Int("bytes", len(payload)),
		zap.Int("chunks", chunkCount),
		zap.Int("chunk_size", chunkSize),
		zap.Bool("with_response", withResponse),
	)

	go s.transferLoop(client, writeChar, withResponse, cancelTransfer)

	select {
	case err := <-pending:
		if err != nil {
			s.logger.Error("Transfer failed", zap.Error(err))
			return err
		}
		s.logger.Info("Transfer completed", zap.Int("bytes", len(payload)))
		return nil
	case <-ctx.Done():
		s.abortTransfer(fmt.Errorf("%w: %v", transport.ErrWriteFailed, ctx.Err()))
		return ctx.Err()
	}
}

// transferLoop sends queued chunks strictly in order, one in flight at a
// time. Acknowledged writes block on the GATT write response before pacing;
// unacknowledged writes pace unconditionally, the only mode without true
// backpressure. Any write error aborts the remainder.
func (s *Session) transferLoop(client Client, writeChar *ble.Characteristic, withResponse bool, cancel <-chan struct{}) {
	for {
		select {
		case <-cancel:
			return
		default:
		}

		s.mutex.Lock()
		if len(s.queue) == 0 {
			s.resolvePendingLocked(nil)
			s.mutex.Unlock()
			return
		}
		chunk := s.queue[0]
		s.queue = s.queue[1:]
		s.mutex.Unlock()

		if err := client.WriteCharacteristic(writeChar, chunk, !withResponse); err != nil {
			s.abortTransfer(fmt.Errorf("%w: %v", transport.ErrWriteFailed, err))
			return
		}

		select {
		case <-cancel:
			return
		case <-time.After(s.chunkDelay):
		}
	}
}

// abortTransfer drops queued chunks and fails the pending submission. The
// session itself stays in its current state; a failed write leaves a clean
// Connected session, link loss is handled by watchLink.
func (s *Session) abortTransfer(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failPendingLocked(err)
}

// failPendingLocked resolves any outstanding submission with the given error
// and clears all transfer state. Callers must hold the mutex.
func (s *Session) failPendingLocked(err error) {
	if s.cancelTransfer != nil {
		close(s.cancelTransfer)
		s.cancelTransfer = nil
	}
	s.queue = nil
	if s.pending != nil {
		s.pending <- err
		s.pending = nil
	}
}

// resolvePendingLocked completes the outstanding submission successfully.
// Callers must hold the mutex.
func (s *Session) resolvePendingLocked(err error) {
	s.cancelTransfer = nil
	s.queue = nil
	if s.pending != nil {
		s.pending <- err
		s.pending = nil
	}
}

// resetToDisconnected clears session state after a failed connection attempt.
// A concurrent Disconnect may already have moved the session to Disconnected;
// that transition stands.
func (s *Session) resetToDisconnected() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.cancelConnect = nil
	s.client = nil
	s.writeChar = nil
	if s.state != model.StateDisconnected {
		s.transition(model.StateDisconnected)
	}
}

// selectWriteCharacteristic picks the write endpoint from a discovered
// profile. A catalog-listed characteristic wins over an unknown one; among
// known characteristics the first discovered wins. Returns whether the
// endpoint supports acknowledged writes.
func selectWriteCharacteristic(profile *ble.Profile) (*ble.Characteristic, bool) {
	var fallback *ble.Characteristic
	for _, svc := range profile.Services {
		for _, c := range svc.Characteristics {
			if c.Property&(ble.CharWrite|ble.CharWriteNR) == 0 {
				continue
			}
			if IsKnownWriteCharacteristic(c.UUID) {
				return c, c.Property&ble.CharWrite != 0
			}
			if fallback == nil {
				fallback = c
			}
		}
	}
	if fallback == nil {
		return nil, false
	}
	return fallback, fallback.Property&ble.CharWrite != 0
}

// ClampChunkSize bounds an adaptively-chosen chunk size to what thermal
// printers reliably accept.
func ClampChunkSize(size int) int {
	if size < MinChunkSize {
		return MinChunkSize
	}
	if size > MaxChunkSize {
		return MaxChunkSize
	}
	return size
}

// SplitChunks splits a stream into ordered chunks of at most size bytes; the
// last chunk may be shorter. Chunks alias the input slice.
func SplitChunks(data []byte, size int) [][]byte {
	if size <= 0 {
		size = MinChunkSize
	}
	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for start := 0; start < len(data); start += size {
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[start:end])
	}
	return chunks
}
