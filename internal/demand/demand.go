// Package demand produces hall-call streams for the simulator to pull
// from. The core never generates demand itself; swapping the source keeps
// runs reproducible.
package demand

import (
	"math/rand"
	"sort"
	"time"

	"elevsim/internal/simconsts"
)

// Call is one hall call due at simulated time At.
type Call struct {
	Floor     int
	Direction simconsts.Direction
	At        time.Time
}

// Source is a pull-style stream of hall calls. Next returns the next call
// due at or before now; ok is false when nothing is due this tick. The
// simulator keeps pulling within a tick until ok is false.
type Source interface {
	Next(now time.Time) (Call, bool)
}

// Script replays a fixed list of calls in due order. Used for scenario and
// test runs.
type Script struct {
	calls []Call
	next  int
}

func NewScript(calls []Call) *Script {
	sorted := make([]Call, len(calls))
	copy(sorted, calls)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })
	return &Script{calls: sorted}
}

func (s *Script) Next(now time.Time) (Call, bool) {
	if s.next >= len(s.calls) || s.calls[s.next].At.After(now) {
		return Call{}, false
	}
	call := s.calls[s.next]
	s.next++
	return call, true
}

// Exhausted reports whether every scripted call has been consumed.
func (s *Script) Exhausted() bool { return s.next >= len(s.calls) }

// Random draws uniform floors at a fixed mean interval from a seeded
// generator, so identical seeds give identical streams.
type Random struct {
	rng        *rand.Rand
	floorCount int
	interval   time.Duration
	nextAt     time.Time
}

func NewRandom(seed int64, floorCount int, interval time.Duration, start time.Time) *Random {
	r := &Random{
		rng:        rand.New(rand.NewSource(seed)),
		floorCount: floorCount,
		interval:   interval,
	}
	r.nextAt = start.Add(r.jitter())
	return r
}

func (r *Random) Next(now time.Time) (Call, bool) {
	if r.nextAt.After(now) {
		return Call{}, false
	}
	call := Call{
		Floor:     r.rng.Intn(r.floorCount),
		Direction: simconsts.None,
		At:        r.nextAt,
	}
	r.nextAt = r.nextAt.Add(r.jitter())
	return call, true
}

// jitter spreads arrivals between half and one-and-a-half times the mean
// interval, never zero.
func (r *Random) jitter() time.Duration {
	half := r.interval / 2
	if half <= 0 {
		return time.Second
	}
	return half + time.Duration(r.rng.Int63n(int64(r.interval)))
}
