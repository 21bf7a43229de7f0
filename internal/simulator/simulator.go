// Package simulator drives simulated time forward in fixed ticks: pull due
// demand, step the fleet, hand the resulting events to the sink. The
// simulation clock is a plain value advanced per tick; nothing in here
// reads the wall clock.
package simulator

import (
	"time"

	"elevsim/internal/building"
	"elevsim/internal/demand"
	"elevsim/internal/logger"
	"elevsim/internal/simconfig"
	"elevsim/internal/simconsts"
	"elevsim/internal/simevent"
	"elevsim/internal/sink"
)

var Log = logger.GetLogger()

// RunStats summarises a finished run.
type RunStats struct {
	Ticks         int
	SimulatedTime time.Duration
	Events        int
	TotalRequests int
}

type Simulator struct {
	cfg     simconfig.Config
	fleet   *building.Building
	emitter *simevent.Emitter
	sink    sink.Sink
	source  demand.Source

	now     time.Time
	ticks   int
	events  int
	stopped bool
}

// New wires a simulator. source may be nil when all demand arrives through
// Request calls, and eventSink may be nil to discard events.
func New(cfg simconfig.Config, fleet *building.Building, eventSink sink.Sink, source demand.Source) *Simulator {
	return &Simulator{
		cfg:     cfg,
		fleet:   fleet,
		emitter: simevent.NewEmitter(),
		sink:    eventSink,
		source:  source,
		now:     cfg.StartTime,
	}
}

func (s *Simulator) Now() time.Time            { return s.now }
func (s *Simulator) Ticks() int                { return s.ticks }
func (s *Simulator) Fleet() *building.Building { return s.fleet }

// Stop ends the run after the current tick; a run never stops mid-tick.
func (s *Simulator) Stop() { s.stopped = true }

// Request submits an external hall call at the current simulated time,
// records its outcome as an event, and returns the dispatch result.
func (s *Simulator) Request(floor int, direction simconsts.Direction) (building.DispatchResult, error) {
	result, err := s.fleet.Request(floor, direction)
	if err != nil {
		return building.DispatchResult{}, err
	}
	elev := s.fleet.Elevator(result.ElevatorID)
	event := s.emitter.RequestOutcome(result.ElevatorID, floor, direction,
		result.Result, elev.PendingCount(), elev.Occupancy(), s.now)
	s.append(event)
	s.events++
	return result, nil
}

// Tick advances the simulation by one tick and returns the events it
// produced.
func (s *Simulator) Tick() []simevent.Event {
	var events []simevent.Event

	if s.source != nil {
		for {
			call, ok := s.source.Next(s.now)
			if !ok {
				break
			}
			result, err := s.fleet.Request(call.Floor, call.Direction)
			if err != nil {
				Log.Warn().Err(err).Int("floor", call.Floor).Msg("Dropping invalid demand")
				continue
			}
			elev := s.fleet.Elevator(result.ElevatorID)
			events = append(events, s.emitter.RequestOutcome(result.ElevatorID, call.Floor,
				call.Direction, result.Result, elev.PendingCount(), elev.Occupancy(), s.now))
		}
	}

	for _, transition := range s.fleet.Step(s.cfg.TickDuration.Std()) {
		events = append(events, s.emitter.FromTransition(transition, s.now))
	}

	for _, event := range events {
		s.append(event)
	}
	s.flush()

	s.now = s.now.Add(s.cfg.TickDuration.Std())
	s.ticks++
	s.events += len(events)
	return events
}

// RunTicks runs until n ticks have elapsed or Stop is called.
func (s *Simulator) RunTicks(n int) RunStats {
	s.stopped = false
	for i := 0; i < n && !s.stopped; i++ {
		s.Tick()
	}
	return s.stats()
}

// RunFor runs until the given simulated duration has elapsed or Stop is
// called.
func (s *Simulator) RunFor(duration time.Duration) RunStats {
	s.stopped = false
	deadline := s.now.Add(duration)
	for s.now.Before(deadline) && !s.stopped {
		s.Tick()
	}
	return s.stats()
}

// RunUntilIdle ticks until every car is idle, up to maxTicks. Used by
// scenario runs that wait out each request.
func (s *Simulator) RunUntilIdle(maxTicks int) []simevent.Event {
	var events []simevent.Event
	for i := 0; i < maxTicks; i++ {
		events = append(events, s.Tick()...)
		if s.fleet.Idle() {
			break
		}
	}
	return events
}

func (s *Simulator) stats() RunStats {
	return RunStats{
		Ticks:         s.ticks,
		SimulatedTime: s.now.Sub(s.cfg.StartTime),
		Events:        s.events,
		TotalRequests: s.fleet.TotalRequests(),
	}
}

// append hands one event to the sink. Sink failures are reported and the
// event dropped; a lost row is acceptable, a stalled simulation is not.
func (s *Simulator) append(event simevent.Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Append(event); err != nil {
		Log.Warn().Err(err).Str("event_type", event.Type.String()).Msg("Sink write failed, dropping event")
	}
}

func (s *Simulator) flush() {
	if flusher, ok := s.sink.(sink.Flusher); ok {
		if err := flusher.Flush(); err != nil {
			Log.Warn().Err(err).Msg("Sink flush failed")
		}
	}
}
