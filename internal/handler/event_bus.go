// internal/handler/event_bus.go
package handler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/model"
	"github.com/Belorder/Printer/internal/transport/bluetooth"
)

// Event types published on the bus.
const (
	EventPrinterReady        = "printer.ready"
	EventPrinterDisconnected = "printer.disconnected"
	EventJobCompleted        = "job.completed"
	EventJobFailed           = "job.failed"
)

// EventTypeAll subscribes to every event type.
const EventTypeAll = "*"

// Event represents a system event
type Event struct {
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventBus manages event distribution
type EventBus struct {
	subscribers map[string][]chan Event
	events      chan Event
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
		events:      make(chan Event, 1000),
		logger:      logger,
	}
}

// Start starts the event bus
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}
}

// Publish publishes an event
func (eb *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case eb.events <- event:
	default:
		if eb.logger != nil {
			eb.logger.Warn("Event bus full, dropping event",
				zap.String("event_type", event.Type),
			)
		}
	}
}

// Subscribe subscribes to events of a specific type. EventTypeAll receives
// everything.
func (eb *EventBus) Subscribe(eventType string) <-chan Event {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan Event, 100)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event Event) {
	eb.mutex.RLock()
	subscribers := append([]chan Event{}, eb.subscribers[event.Type]...)
	subscribers = append(subscribers, eb.subscribers[EventTypeAll]...)
	eb.mutex.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

// SessionHooks builds the wireless session callbacks that publish printer
// lifecycle events onto the bus.
func SessionHooks(bus *EventBus, logger *zap.Logger) bluetooth.Hooks {
	return bluetooth.Hooks{
		OnReady: func(printer model.Printer) {
			bus.Publish(Event{
				Type:   EventPrinterReady,
				Source: "bluetooth",
				Data: map[string]interface{}{
					"printer_id":   printer.ID,
					"printer_name": printer.Name,
				},
			})
			logger.Info("Printer ready event published",
				zap.String("printer_id", printer.ID))
		},
		OnDisconnected: func(printer model.Printer, err error) {
			data := map[string]interface{}{
				"printer_id":   printer.ID,
				"printer_name": printer.Name,
			}
			if err != nil {
				data["error"] = err.Error()
			}
			bus.Publish(Event{
				Type:   EventPrinterDisconnected,
				Source: "bluetooth",
				Data:   data,
			})
			logger.Info("Printer disconnected event published",
				zap.String("printer_id", printer.ID),
				zap.Error(err))
		},
	}
}

// PublishJobEvent publishes the outcome of a print job.
func PublishJobEvent(bus *EventBus, job *model.PrintJob) {
	eventType := EventJobCompleted
	if job.Status == model.JobStatusFailed {
		eventType = EventJobFailed
	}

	data := map[string]interface{}{
		"job_id":    job.ID.String(),
		"transport": job.Transport,
		"target":    job.Target,
		"bytes":     job.Bytes,
		"duration":  job.Duration,
	}
	if job.Error != "" {
		data["error"] = job.Error
	}

	bus.Publish(Event{
		Type:   eventType,
		Source: "print",
		Data:   data,
	})
}
