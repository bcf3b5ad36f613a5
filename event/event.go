// Package event delivers notifications about committed ledger operations.
//
// Publishing is synchronous: Publish returns after every matching handler
// ran. Handlers must not block. A handler that panics is unsubscribed.
package event

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EventType names an event.
type EventType string

// SubscriberID identifies a subscription.
type SubscriberID int

// HandlerFunc receives published events.
type HandlerFunc func(Event)

// Event is one notification.
type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

// NewEvent builds an event stamped with ts.
func NewEvent(eventType EventType, eventData any, ts time.Time) Event {
	return Event{
		Type:      eventType,
		Timestamp: ts,
		Data:      eventData,
	}
}

type busMetrics struct {
	eventsTotal    *prometheus.CounterVec
	deliveryErrors *prometheus.CounterVec
	subscribers    prometheus.Gauge
}

// Bus fans events out to subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[SubscriberID]subscription
	lastSubID   SubscriberID
	metrics     *busMetrics
	Logger      *slog.Logger
}

type subscription struct {
	eventType EventType // empty matches every type
	handler   HandlerFunc
}

// NewBus creates a bus. promRegistry may be nil to disable metrics.
func NewBus(promRegistry prometheus.Registerer, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{
		subscribers: make(map[SubscriberID]subscription),
		Logger:      logger,
	}
	if promRegistry != nil {
		b.initMetrics(promRegistry)
	}
	return b
}

func (b *Bus) initMetrics(promRegistry prometheus.Registerer) {
	factory := promauto.With(promRegistry)
	b.metrics = &busMetrics{
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanshare_events_total",
				Help: "total events published by type",
			},
			[]string{"type"},
		),
		deliveryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanshare_event_delivery_errors_total",
				Help: "event handler failures by type",
			},
			[]string{"type"},
		),
		subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "loanshare_event_subscribers",
				Help: "current number of event subscribers",
			},
		),
	}
}

func (b *Bus) add(sub subscription) SubscriberID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastSubID++
	b.subscribers[b.lastSubID] = sub
	if b.metrics != nil {
		b.metrics.subscribers.Inc()
	}
	return b.lastSubID
}

// Subscribe registers handler for one event type.
func (b *Bus) Subscribe(eventType EventType, handler HandlerFunc) SubscriberID {
	return b.add(subscription{eventType: eventType, handler: handler})
}

// SubscribeAll registers handler for every event type.
func (b *Bus) SubscribeAll(handler HandlerFunc) SubscriberID {
	return b.add(subscription{handler: handler})
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(subID SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[subID]; !ok {
		return
	}
	delete(b.subscribers, subID)
	if b.metrics != nil {
		b.metrics.subscribers.Dec()
	}
}

// Publish delivers evt to every matching subscriber.
func (b *Bus) Publish(evt Event) {
	type subItem struct {
		id      SubscriberID
		handler HandlerFunc
	}
	b.mu.RLock()
	subList := make([]subItem, 0, len(b.subscribers))
	for id, sub := range b.subscribers {
		if sub.eventType == "" || sub.eventType == evt.Type {
			subList = append(subList, subItem{id: id, handler: sub.handler})
		}
	}
	b.mu.RUnlock()

	for _, item := range subList {
		var deliverErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					deliverErr = fmt.Errorf("subscriber panic: %v", r)
				}
			}()
			item.handler(evt)
		}()
		if deliverErr != nil {
			b.Unsubscribe(item.id)
			if b.metrics != nil {
				b.metrics.deliveryErrors.WithLabelValues(string(evt.Type)).Inc()
			}
			b.Logger.Warn("event delivery error", "type", evt.Type, "subscriber", item.id, "err", deliverErr)
		}
	}
	if b.metrics != nil {
		b.metrics.eventsTotal.WithLabelValues(string(evt.Type)).Inc()
	}
}

// Recorder keeps every event it receives. Useful for audit trails and tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Handle is a HandlerFunc.
func (r *Recorder) Handle(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, len(r.events))
	for i, evt := range r.events {
		types[i] = evt.Type
	}
	return types
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
