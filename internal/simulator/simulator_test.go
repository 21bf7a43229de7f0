package simulator

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"elevsim/internal/building"
	"elevsim/internal/demand"
	"elevsim/internal/logger"
	"elevsim/internal/simconfig"
	"elevsim/internal/simconsts"
	"elevsim/internal/simevent"
	"elevsim/internal/sink"
)

func testConfig() simconfig.Config {
	cfg := simconfig.Default()
	cfg.FloorCount = 6
	cfg.ElevatorCount = 1
	return cfg
}

func newTestSimulator(t *testing.T, cfg simconfig.Config, eventSink sink.Sink, source demand.Source) *Simulator {
	t.Helper()
	logger.GetLoggerConfigured(zerolog.Disabled)
	fleet, err := building.New(cfg)
	if err != nil {
		t.Fatalf("building.New() = %v", err)
	}
	return New(cfg, fleet, eventSink, source)
}

func scriptedDemand(cfg simconfig.Config, floors ...int) *demand.Script {
	calls := make([]demand.Call, 0, len(floors))
	for i, floor := range floors {
		calls = append(calls, demand.Call{
			Floor: floor,
			At:    cfg.StartTime.Add(time.Duration(i) * 5 * time.Second),
		})
	}
	return demand.NewScript(calls)
}

func TestRunTicksAdvancesClock(t *testing.T) {
	cfg := testConfig()
	sim := newTestSimulator(t, cfg, nil, nil)

	stats := sim.RunTicks(30)
	if stats.Ticks != 30 {
		t.Errorf("Ticks = %d, expected 30", stats.Ticks)
	}
	if stats.SimulatedTime != 30*time.Second {
		t.Errorf("SimulatedTime = %v, expected 30s", stats.SimulatedTime)
	}
	if got := sim.Now(); !got.Equal(cfg.StartTime.Add(30 * time.Second)) {
		t.Errorf("Now() = %v, expected start + 30s", got)
	}
}

func TestRunForStopsAtDeadline(t *testing.T) {
	cfg := testConfig()
	sim := newTestSimulator(t, cfg, nil, nil)

	stats := sim.RunFor(45 * time.Second)
	if stats.Ticks != 45 {
		t.Errorf("Ticks = %d, expected 45 one-second ticks", stats.Ticks)
	}
}

func TestIdenticalRunsProduceIdenticalEvents(t *testing.T) {
	run := func() []simevent.Event {
		cfg := testConfig()
		memory := sink.NewMemory()
		source := demand.NewRandom(42, cfg.FloorCount, 8*time.Second, cfg.StartTime)
		sim := newTestSimulator(t, cfg, memory, source)
		sim.RunTicks(120)
		return memory.Events()
	}

	first, err := json.Marshal(run())
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	second, err := json.Marshal(run())
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("two runs with identical config and demand differ, expected byte-identical event streams")
	}
}

func TestScriptedScenario(t *testing.T) {
	// the canonical demo: floors 0-5, one car at 0, calls for 3, 2, 1, 0
	cfg := testConfig()
	memory := sink.NewMemory()
	sim := newTestSimulator(t, cfg, memory, nil)

	for _, floor := range []int{3, 2, 1, 0} {
		result, err := sim.Request(floor, simconsts.None)
		if err != nil {
			t.Fatalf("Request(%d) error = %v", floor, err)
		}
		if !result.Result.Accepted {
			t.Fatalf("Request(%d) rejected with %v", floor, result.Result.Reason)
		}
		sim.RunUntilIdle(30)
	}

	elev := sim.Fleet().Elevator(0)
	if elev.CurrentFloor() != 0 {
		t.Errorf("final resting floor = %d, expected 0", elev.CurrentFloor())
	}

	var arrivals []int
	for _, event := range memory.Events() {
		if event.Type == simconsts.EventArrived {
			arrivals = append(arrivals, event.CurrentFloor)
		}
	}
	expected := []int{3, 2, 1, 0}
	if len(arrivals) != len(expected) {
		t.Fatalf("arrivals = %v, expected %v", arrivals, expected)
	}
	for i := range expected {
		if arrivals[i] != expected[i] {
			t.Errorf("arrivals = %v, expected %v", arrivals, expected)
			break
		}
	}
}

func TestDemandSourceFeedsRequests(t *testing.T) {
	cfg := testConfig()
	memory := sink.NewMemory()
	sim := newTestSimulator(t, cfg, memory, scriptedDemand(cfg, 3, 2))

	sim.RunTicks(30)

	accepted := 0
	for _, event := range memory.Events() {
		if event.Type == simconsts.EventRequestAccepted {
			accepted++
		}
	}
	if accepted != 2 {
		t.Errorf("request_accepted events = %d, expected 2", accepted)
	}
	if sim.Fleet().TotalRequests() != 2 {
		t.Errorf("TotalRequests() = %d, expected 2", sim.Fleet().TotalRequests())
	}
}

func TestInvalidDemandIsDroppedNotFatal(t *testing.T) {
	cfg := testConfig()
	memory := sink.NewMemory()
	source := demand.NewScript([]demand.Call{
		{Floor: 99, At: cfg.StartTime},
		{Floor: 2, At: cfg.StartTime},
	})
	sim := newTestSimulator(t, cfg, memory, source)

	sim.RunTicks(10)

	if sim.Fleet().TotalRequests() != 1 {
		t.Errorf("TotalRequests() = %d, expected 1 (invalid floor dropped)", sim.Fleet().TotalRequests())
	}
}

type failingSink struct{ attempts int }

func (f *failingSink) Append(simevent.Event) error {
	f.attempts++
	return errors.New("disk full")
}

func TestSinkFailuresDoNotAbortTheRun(t *testing.T) {
	cfg := testConfig()
	failing := &failingSink{}
	sim := newTestSimulator(t, cfg, failing, scriptedDemand(cfg, 4))

	stats := sim.RunTicks(20)
	if stats.Ticks != 20 {
		t.Errorf("Ticks = %d, expected 20 despite sink failures", stats.Ticks)
	}
	if failing.attempts == 0 {
		t.Error("sink was never offered an event")
	}
	if sim.Fleet().Elevator(0).CurrentFloor() != 4 {
		t.Errorf("car at floor %d, expected 4; sink errors must not stall the fleet",
			sim.Fleet().Elevator(0).CurrentFloor())
	}
}

func TestStopEndsRunBetweenTicks(t *testing.T) {
	cfg := testConfig()
	sim := newTestSimulator(t, cfg, nil, nil)

	sim.RunTicks(5)
	sim.Stop()

	// Stop only matters during a run; a fresh RunTicks proceeds
	stats := sim.RunTicks(5)
	if stats.Ticks != 10 {
		t.Errorf("Ticks = %d, expected 10 across both runs", stats.Ticks)
	}
}

func TestMaintenanceWindowEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.MaxContinuousMovement = simconfig.Duration(3 * time.Second)
	cfg.MaintenanceBreak = simconfig.Duration(2 * time.Second)
	memory := sink.NewMemory()
	source := demand.NewScript([]demand.Call{{Floor: 5, At: cfg.StartTime}})
	sim := newTestSimulator(t, cfg, memory, source)

	sim.RunTicks(10)

	var starts, ends int
	for _, event := range memory.Events() {
		switch event.Type {
		case simconsts.EventMaintenanceStart:
			starts++
			if got := event.Timestamp.Sub(cfg.StartTime); got != 3*time.Second {
				t.Errorf("maintenance_start at +%v, expected +3s", got)
			}
		case simconsts.EventMaintenanceEnd:
			ends++
			if got := event.Timestamp.Sub(cfg.StartTime); got != 5*time.Second {
				t.Errorf("maintenance_end at +%v, expected +5s", got)
			}
		}
	}
	if starts != 1 || ends != 1 {
		t.Errorf("maintenance events = %d starts / %d ends, expected 1/1", starts, ends)
	}
}
