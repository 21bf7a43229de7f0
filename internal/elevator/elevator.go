// Package elevator implements the per-car scan state machine. All state
// lives in the Elevator struct and is advanced only through Request and
// Step; there are no channels, timers, or clocks in here, so a car is a
// pure function of its inputs and every run is reproducible.
package elevator

import (
	"fmt"
	"time"

	"elevsim/internal/simconfig"
	"elevsim/internal/simconsts"
)

// BoardingFunc decides how many passengers enter (positive) or leave
// (negative) when the car opens at a floor. Nil means occupancy is managed
// externally through Board and Alight.
type BoardingFunc func(floor int) int

// RequestResult is the typed outcome of a hall call. Rejections are
// business-rule outcomes, not errors.
type RequestResult struct {
	Accepted bool
	Reason   simconsts.RejectReason
}

// Transition is one observable state change produced by Step or Request,
// ready to be enriched into a persisted event.
type Transition struct {
	ElevatorID int
	Type       simconsts.EventType
	Floor      int
	Direction  simconsts.Direction
	Pending    int
	Occupancy  int
}

// Status is a point-in-time snapshot of a car's observable state.
type Status struct {
	ID               int                 `json:"id"`
	CurrentFloor     int                 `json:"current_floor"`
	Direction        simconsts.Direction `json:"direction"`
	Behaviour        simconsts.Behaviour `json:"behaviour"`
	UpRequests       []int               `json:"up_requests"`
	DownRequests     []int               `json:"down_requests"`
	Occupancy        int                 `json:"occupancy"`
	Capacity         int                 `json:"capacity"`
	TimeMoving       time.Duration       `json:"time_moving"`
	TimeIdle         time.Duration       `json:"time_idle"`
	MaintenanceMode  bool                `json:"maintenance_mode"`
	MaintenanceTimer time.Duration       `json:"maintenance_timer"`
}

type Elevator struct {
	id         int
	floorCount int
	capacity   int

	nearCapacityThreshold float64
	movementCap           time.Duration
	maintenanceBreak      time.Duration

	currentFloor int
	direction    simconsts.Direction
	behaviour    simconsts.Behaviour

	// A floor appears at most once per sweep direction. Which set a call
	// lands in is fixed at accept time relative to the car's position.
	upRequests   map[int]bool
	downRequests map[int]bool

	occupancy        int
	timeMoving       time.Duration
	timeIdle         time.Duration
	maintenanceTimer time.Duration

	boarding BoardingFunc
}

func New(id int, cfg simconfig.Config) (*Elevator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("elevator %d: %w", id, err)
	}
	return &Elevator{
		id:                    id,
		floorCount:            cfg.FloorCount,
		capacity:              cfg.CapacityPerElevator,
		nearCapacityThreshold: cfg.NearCapacityThreshold,
		movementCap:           cfg.MaxContinuousMovement.Std(),
		maintenanceBreak:      cfg.MaintenanceBreak.Std(),
		currentFloor:          cfg.HomeFloor,
		direction:             simconsts.None,
		behaviour:             simconsts.Idle,
		upRequests:            make(map[int]bool),
		downRequests:          make(map[int]bool),
	}, nil
}

func (e *Elevator) ID() int                        { return e.id }
func (e *Elevator) CurrentFloor() int              { return e.currentFloor }
func (e *Elevator) Direction() simconsts.Direction { return e.direction }
func (e *Elevator) Behaviour() simconsts.Behaviour { return e.behaviour }
func (e *Elevator) Occupancy() int                 { return e.occupancy }
func (e *Elevator) PendingCount() int              { return len(e.upRequests) + len(e.downRequests) }

func (e *Elevator) Idle() bool {
	return e.behaviour == simconsts.Idle && e.PendingCount() == 0
}

// SetBoarding installs the passenger-delta hook applied on each arrival.
func (e *Elevator) SetBoarding(fn BoardingFunc) { e.boarding = fn }

// CanAccept reports whether a hall call submitted now would pass both
// business rules. The dispatcher uses it to avoid routing to a car that is
// guaranteed to reject.
func (e *Elevator) CanAccept() bool {
	if e.behaviour == simconsts.Maintenance {
		return false
	}
	return float64(e.occupancy)/float64(e.capacity) < e.nearCapacityThreshold
}

// Request submits a hall call. The caller validates the floor range; a call
// for the car's current floor is accepted and served on the next Step as an
// arrival without movement. Rejection leaves the pending sets untouched and
// is never sticky.
func (e *Elevator) Request(floor int, direction simconsts.Direction) RequestResult {
	if e.behaviour == simconsts.Maintenance {
		return RequestResult{Reason: simconsts.RejectInMaintenance}
	}
	if float64(e.occupancy)/float64(e.capacity) >= e.nearCapacityThreshold {
		return RequestResult{Reason: simconsts.RejectAtCapacity}
	}

	switch {
	case floor > e.currentFloor:
		e.upRequests[floor] = true
	case floor < e.currentFloor:
		e.downRequests[floor] = true
	default:
		if direction == simconsts.Down {
			e.downRequests[floor] = true
		} else {
			e.upRequests[floor] = true
		}
	}
	return RequestResult{Accepted: true}
}

// Board adds passengers, refusing any count that would exceed capacity.
func (e *Elevator) Board(count int) error {
	if count < 0 || e.occupancy+count > e.capacity {
		return fmt.Errorf("cannot board %d passengers with %d/%d occupied", count, e.occupancy, e.capacity)
	}
	e.occupancy += count
	return nil
}

// Alight removes passengers, refusing any count that would go negative.
func (e *Elevator) Alight(count int) error {
	if count < 0 || e.occupancy-count < 0 {
		return fmt.Errorf("cannot alight %d passengers with %d occupied", count, e.occupancy)
	}
	e.occupancy -= count
	return nil
}

// Step advances the car by one tick of dt simulated time and returns the
// transitions that happened, in order. Checks run in a fixed order so edge
// ticks are deterministic: maintenance rest, movement-cap trip, service at
// the current floor, then at most one floor of scan movement.
func (e *Elevator) Step(dt time.Duration) []Transition {
	var transitions []Transition

	if e.behaviour == simconsts.Maintenance {
		e.maintenanceTimer += dt
		e.timeIdle += dt
		if e.maintenanceTimer >= e.maintenanceBreak {
			e.maintenanceTimer = 0
			e.behaviour = simconsts.Idle
			e.direction = simconsts.None
			transitions = append(transitions, e.transition(simconsts.EventMaintenanceEnd))
		}
		return transitions
	}

	// Rule 2: the movement cap trips on the first tick at or past the
	// threshold, whatever else is pending. timeMoving resets here so the
	// rest period cannot immediately re-trip.
	if e.timeMoving >= e.movementCap {
		e.behaviour = simconsts.Maintenance
		e.maintenanceTimer = 0
		e.timeMoving = 0
		transitions = append(transitions, e.transition(simconsts.EventMaintenanceStart))
		return transitions
	}

	// A pending call at the current floor is served without movement, so a
	// same-floor request yields arrived rather than moving.
	if e.upRequests[e.currentFloor] || e.downRequests[e.currentFloor] {
		transitions = append(transitions, e.arrive()...)
		e.timeIdle += dt
		return transitions
	}

	target, ok := e.nextTarget()
	if !ok {
		if e.behaviour == simconsts.Moving || e.direction != simconsts.None {
			e.behaviour = simconsts.Idle
			e.direction = simconsts.None
			transitions = append(transitions, e.transition(simconsts.EventBecameIdle))
		}
		e.timeIdle += dt
		return transitions
	}

	if target > e.currentFloor {
		e.currentFloor++
		e.direction = simconsts.Up
	} else {
		e.currentFloor--
		e.direction = simconsts.Down
	}
	e.behaviour = simconsts.Moving
	e.timeMoving += dt
	transitions = append(transitions, e.transition(simconsts.EventMoving))

	if e.currentFloor == target {
		transitions = append(transitions, e.arrive()...)
	}
	return transitions
}

// arrive consumes the calls at the current floor, applies the boarding
// delta, and drops to idle when nothing is left to serve.
func (e *Elevator) arrive() []Transition {
	delete(e.upRequests, e.currentFloor)
	delete(e.downRequests, e.currentFloor)

	if e.boarding != nil {
		e.occupancy += e.boarding(e.currentFloor)
		if e.occupancy < 0 {
			e.occupancy = 0
		}
		if e.occupancy > e.capacity {
			e.occupancy = e.capacity
		}
	}

	transitions := []Transition{e.transition(simconsts.EventArrived)}
	if e.PendingCount() == 0 {
		e.behaviour = simconsts.Idle
		e.direction = simconsts.None
		transitions = append(transitions, e.transition(simconsts.EventBecameIdle))
	}
	return transitions
}

// nextTarget picks the scan target: continue toward the nearest call in the
// current sweep direction, reverse when nothing remains ahead. From idle the
// nearer side wins and an exact distance tie goes up.
func (e *Elevator) nextTarget() (int, bool) {
	up, hasUp := minFloor(e.upRequests)
	down, hasDown := maxFloor(e.downRequests)

	if e.direction == simconsts.None {
		switch {
		case hasUp && hasDown:
			if up-e.currentFloor <= e.currentFloor-down {
				e.direction = simconsts.Up
				return up, true
			}
			e.direction = simconsts.Down
			return down, true
		case hasUp:
			e.direction = simconsts.Up
			return up, true
		case hasDown:
			e.direction = simconsts.Down
			return down, true
		default:
			return 0, false
		}
	}

	if e.direction == simconsts.Up && hasUp {
		return up, true
	}
	if e.direction == simconsts.Down && hasDown {
		return down, true
	}
	if e.direction == simconsts.Up && hasDown {
		e.direction = simconsts.Down
		return down, true
	}
	if e.direction == simconsts.Down && hasUp {
		e.direction = simconsts.Up
		return up, true
	}
	return 0, false
}

func (e *Elevator) transition(eventType simconsts.EventType) Transition {
	return Transition{
		ElevatorID: e.id,
		Type:       eventType,
		Floor:      e.currentFloor,
		Direction:  e.direction,
		Pending:    e.PendingCount(),
		Occupancy:  e.occupancy,
	}
}

func (e *Elevator) Snapshot() Status {
	return Status{
		ID:               e.id,
		CurrentFloor:     e.currentFloor,
		Direction:        e.direction,
		Behaviour:        e.behaviour,
		UpRequests:       sortedFloors(e.upRequests),
		DownRequests:     sortedFloors(e.downRequests),
		Occupancy:        e.occupancy,
		Capacity:         e.capacity,
		TimeMoving:       e.timeMoving,
		TimeIdle:         e.timeIdle,
		MaintenanceMode:  e.behaviour == simconsts.Maintenance,
		MaintenanceTimer: e.maintenanceTimer,
	}
}
