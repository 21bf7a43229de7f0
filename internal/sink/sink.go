// Package sink persists event records. The simulation core never fails a
// tick on sink errors; adapters report them and the run carries on.
package sink

import "elevsim/internal/simevent"

// Sink is the append-only contract the core writes to.
type Sink interface {
	Append(event simevent.Event) error
}

// Flusher is implemented by sinks that buffer writes; the simulator flushes
// once per tick when the sink supports it.
type Flusher interface {
	Flush() error
}

// Memory keeps events in order in memory. Used by tests and the demo run.
type Memory struct {
	events []simevent.Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(event simevent.Event) error {
	m.events = append(m.events, event)
	return nil
}

// Events returns the stored records in append order.
func (m *Memory) Events() []simevent.Event { return m.events }

func (m *Memory) Len() int { return len(m.events) }

// Multi fans every event out to each sink, returning the first error after
// attempting all of them.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi { return &Multi{sinks: sinks} }

func (m *Multi) Append(event simevent.Event) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Append(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Multi) Flush() error {
	var firstErr error
	for _, s := range m.sinks {
		if flusher, ok := s.(Flusher); ok {
			if err := flusher.Flush(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
