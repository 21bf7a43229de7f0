// Package simevent turns state transitions into the immutable records the
// event sink stores. Every time-derived feature comes from the simulation
// clock handed in by the caller, never the wall clock.
package simevent

import (
	"time"

	"elevsim/internal/elevator"
	"elevsim/internal/simconsts"
)

// Event is one row of the exported dataset. Field order matches the sink's
// column order and must stay stable for downstream feature extraction.
type Event struct {
	Timestamp            time.Time           `json:"timestamp"`
	ElevatorID           int                 `json:"elevator_id"`
	Type                 simconsts.EventType `json:"event_type"`
	CurrentFloor         int                 `json:"current_floor"`
	Direction            simconsts.Direction `json:"direction"`
	PendingCount         int                 `json:"pending_count"`
	Occupancy            int                 `json:"occupancy"`
	TimeSinceLastRequest float64             `json:"time_since_last_request"`
	HourOfDay            int                 `json:"hour_of_day"`
	DayOfWeek            int                 `json:"day_of_week"`
}

// Columns is the stable export order of Event fields.
var Columns = []string{
	"timestamp",
	"elevator_id",
	"event_type",
	"current_floor",
	"direction",
	"pending_count",
	"occupancy",
	"time_since_last_request",
	"hour_of_day",
	"day_of_week",
}

// Emitter stamps transitions with clock features and tracks the last
// request instant per elevator for the time_since_last_request feature.
type Emitter struct {
	lastRequest map[int]time.Time
}

func NewEmitter() *Emitter {
	return &Emitter{lastRequest: make(map[int]time.Time)}
}

// FromTransition enriches a fleet transition into an Event at simulated
// time now.
func (em *Emitter) FromTransition(tr elevator.Transition, now time.Time) Event {
	return em.stamp(tr, now)
}

// RequestOutcome records the hall-call outcome for an elevator as a
// request_accepted or request_rejected event, and marks now as the
// elevator's latest request instant.
func (em *Emitter) RequestOutcome(elevatorID, floor int, direction simconsts.Direction, result elevator.RequestResult, pending, occupancy int, now time.Time) Event {
	eventType := simconsts.EventRequestAccepted
	if !result.Accepted {
		eventType = simconsts.EventRequestRejected
	}
	event := em.stamp(elevator.Transition{
		ElevatorID: elevatorID,
		Type:       eventType,
		Floor:      floor,
		Direction:  direction,
		Pending:    pending,
		Occupancy:  occupancy,
	}, now)
	em.lastRequest[elevatorID] = now
	return event
}

func (em *Emitter) stamp(tr elevator.Transition, now time.Time) Event {
	var sinceRequest float64
	if last, ok := em.lastRequest[tr.ElevatorID]; ok {
		sinceRequest = now.Sub(last).Seconds()
	}
	return Event{
		Timestamp:            now,
		ElevatorID:           tr.ElevatorID,
		Type:                 tr.Type,
		CurrentFloor:         tr.Floor,
		Direction:            tr.Direction,
		PendingCount:         tr.Pending,
		Occupancy:            tr.Occupancy,
		TimeSinceLastRequest: sinceRequest,
		HourOfDay:            now.Hour(),
		DayOfWeek:            weekday(now),
	}
}

// weekday follows the dataset convention of Monday as 0.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
