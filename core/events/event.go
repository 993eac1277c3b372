package events

import "olympuspro/core/types"

// Event represents a structured state change emitted by a contract.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. the host, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// payload is implemented by events that render to a wire event.
type payload interface {
	Event() *types.Event
}

// Collector buffers emitted events so they can be attached to a response.
type Collector struct {
	events []Event
}

func (c *Collector) Emit(e Event) {
	if e != nil {
		c.events = append(c.events, e)
	}
}

// Events returns the buffered events in emission order.
func (c *Collector) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Drain renders the buffered events and resets the collector.
func (c *Collector) Drain() []types.Event {
	out := make([]types.Event, 0, len(c.events))
	for _, e := range c.events {
		p, ok := e.(payload)
		if !ok {
			continue
		}
		if ev := p.Event(); ev != nil {
			out = append(out, *ev)
		}
	}
	c.events = nil
	return out
}
