// Package building owns the elevator fleet and routes hall calls to a
// single car.
package building

import (
	"fmt"
	"time"

	"github.com/tiendc/go-deepcopy"

	"elevsim/internal/elevator"
	"elevsim/internal/simconfig"
	"elevsim/internal/simconsts"
)

// ErrInvalidFloor reports a call outside [0, floor_count). It is input
// validation, not a business-rule rejection, and never reaches a car.
type ErrInvalidFloor struct {
	Floor      int
	FloorCount int
}

func (e ErrInvalidFloor) Error() string {
	return fmt.Sprintf("floor %d outside [0, %d)", e.Floor, e.FloorCount)
}

// DispatchResult is the dispatcher's answer to a hall call: which car it was
// offered to and that car's accept/reject outcome.
type DispatchResult struct {
	ElevatorID int
	Result     elevator.RequestResult
}

type Building struct {
	floorCount    int
	elevators     []*elevator.Elevator // ascending id, defines event order
	totalRequests int
}

func New(cfg simconfig.Config) (*Building, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	elevators := make([]*elevator.Elevator, 0, cfg.ElevatorCount)
	for id := 0; id < cfg.ElevatorCount; id++ {
		elev, err := elevator.New(id, cfg)
		if err != nil {
			return nil, err
		}
		elevators = append(elevators, elev)
	}

	return &Building{
		floorCount: cfg.FloorCount,
		elevators:  elevators,
	}, nil
}

func (b *Building) FloorCount() int { return b.floorCount }

func (b *Building) TotalRequests() int { return b.totalRequests }

// Elevator returns the car with the given id, or nil.
func (b *Building) Elevator(id int) *elevator.Elevator {
	if id < 0 || id >= len(b.elevators) {
		return nil
	}
	return b.elevators[id]
}

func (b *Building) Idle() bool {
	for _, elev := range b.elevators {
		if !elev.Idle() {
			return false
		}
	}
	return true
}

// Request routes a hall call to exactly one elevator: fewest pending
// requests first, then proximity to the call floor, then lowest id. Cars
// that would reject are avoided when any other car can accept; when none
// can, the best car's rejection propagates unchanged.
func (b *Building) Request(floor int, direction simconsts.Direction) (DispatchResult, error) {
	if floor < 0 || floor >= b.floorCount {
		return DispatchResult{}, ErrInvalidFloor{Floor: floor, FloorCount: b.floorCount}
	}

	candidates := make([]*elevator.Elevator, 0, len(b.elevators))
	for _, elev := range b.elevators {
		if elev.CanAccept() {
			candidates = append(candidates, elev)
		}
	}
	if len(candidates) == 0 {
		candidates = b.elevators
	}

	chosen := candidates[0]
	for _, elev := range candidates[1:] {
		if better(elev, chosen, floor) {
			chosen = elev
		}
	}

	result := chosen.Request(floor, direction)
	if result.Accepted {
		b.totalRequests++
	}
	return DispatchResult{ElevatorID: chosen.ID(), Result: result}, nil
}

// better orders cars by (pending count, distance to floor, id) ascending.
func better(a, current *elevator.Elevator, floor int) bool {
	if a.PendingCount() != current.PendingCount() {
		return a.PendingCount() < current.PendingCount()
	}
	distA := abs(a.CurrentFloor() - floor)
	distCurrent := abs(current.CurrentFloor() - floor)
	if distA != distCurrent {
		return distA < distCurrent
	}
	return a.ID() < current.ID()
}

// Step advances every car by one tick and concatenates their transitions in
// ascending id order, which fixes the event order within a tick.
func (b *Building) Step(dt time.Duration) []elevator.Transition {
	var transitions []elevator.Transition
	for _, elev := range b.elevators {
		transitions = append(transitions, elev.Step(dt)...)
	}
	return transitions
}

// Status deep-copies every car's snapshot so callers can hold it across
// ticks without aliasing live state.
func (b *Building) Status() ([]elevator.Status, error) {
	statuses := make([]elevator.Status, 0, len(b.elevators))
	for _, elev := range b.elevators {
		snapshot := elev.Snapshot()
		copied := elevator.Status{}
		if err := deepcopy.Copy(&copied, &snapshot); err != nil {
			return nil, fmt.Errorf("copying status of elevator %d: %w", elev.ID(), err)
		}
		statuses = append(statuses, copied)
	}
	return statuses, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
