package internal

import (
	"fmt"
	"log/slog"
)

// Event names a lifecycle phase boundary.
type Event int

const (
	EventInitialized Event = iota
	EventBeforeRoute
	EventAfterRoute
	EventBeforeLoad
	EventAfterLoad
	EventBeforeErrorHandling
	EventAfterErrorHandling
	EventBeforeRender
	EventAfterRender
	EventBeginShutdown
)

var eventNames = [...]string{
	EventInitialized:         "initialized",
	EventBeforeRoute:         "beforeroute",
	EventAfterRoute:          "afterroute",
	EventBeforeLoad:          "beforeload",
	EventAfterLoad:           "afterload",
	EventBeforeErrorHandling: "beforeerrorhandling",
	EventAfterErrorHandling:  "aftererrorhandling",
	EventBeforeRender:        "beforerender",
	EventAfterRender:         "afterrender",
	EventBeginShutdown:       "beginshutdown",
}

func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Events lists every lifecycle event in firing order.
func Events() []Event {
	out := make([]Event, len(eventNames))
	for i := range eventNames {
		out[i] = Event(i)
	}
	return out
}

// Listener handles a lifecycle event.
type Listener func(c Context) error

type subscription struct {
	listener Listener
	event    Event
}

// EventBus holds listener subscriptions. It is built once per App and
// read-only afterwards.
type EventBus struct {
	subs []subscription
}

// On subscribes a listener. Listeners for the same event run in
// subscription order.
func (b *EventBus) On(event Event, l Listener) {
	if l == nil {
		return
	}
	b.subs = append(b.subs, subscription{event: event, listener: l})
}

// Len returns the number of subscriptions.
func (b *EventBus) Len() int { return len(b.subs) }

// Fire runs the listeners of event synchronously.
// The first error stops the firing and is returned.
func (b *EventBus) Fire(c Context, event Event) error {
	c.LogDebug("event fired", slog.String("event", event.String()))
	for _, s := range b.subs {
		if s.event != event {
			continue
		}
		if err := s.listener(c); err != nil {
			return fmt.Errorf("%s listener: %w", event, err)
		}
	}
	return nil
}
