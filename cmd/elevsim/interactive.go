package main

import (
	"fmt"

	"github.com/eiannone/keyboard"

	"elevsim/internal/building"
	"elevsim/internal/simconfig"
	"elevsim/internal/simconsts"
	"elevsim/internal/simulator"
	"elevsim/internal/sink"
)

// runInteractive reads hall calls from the keyboard. A digit key requests
// that floor, 'u'/'d' set the direction of the next call, 'q' or Ctrl-C
// exits. After each call the simulation runs until the fleet settles.
func runInteractive(cfg simconfig.Config, fleet *building.Building, eventSink sink.Sink) {
	Logger.Info().Msg("=== Interactive mode ===")
	fmt.Printf("Floors 0-%d. Press a digit to call an elevator, u/d to set direction, q to quit.\n", cfg.FloorCount-1)

	sim := simulator.New(cfg, fleet, eventSink, nil)
	direction := simconsts.None

	for {
		char, key, err := keyboard.GetSingleKey()
		if err != nil {
			Logger.Error().Err(err).Msg("Reading key failed")
			return
		}

		if char == 'q' || key == keyboard.KeyCtrlC {
			fmt.Println("Exit")
			return
		}

		switch char {
		case 'u':
			direction = simconsts.Up
			fmt.Println("Next call travels up")
			continue
		case 'd':
			direction = simconsts.Down
			fmt.Println("Next call travels down")
			continue
		}

		if char < '0' || char > '9' {
			continue
		}
		floor := int(char - '0')

		result, err := sim.Request(floor, direction)
		direction = simconsts.None
		if err != nil {
			fmt.Println("Invalid floor:", err)
			continue
		}
		if !result.Result.Accepted {
			fmt.Printf("Call for floor %d rejected: %v\n", floor, result.Result.Reason)
			continue
		}
		fmt.Printf("Elevator %d takes floor %d\n", result.ElevatorID, floor)

		for _, event := range sim.RunUntilIdle(240) {
			switch event.Type {
			case simconsts.EventArrived:
				fmt.Printf("  arrived at floor %d\n", event.CurrentFloor)
			case simconsts.EventMaintenanceStart:
				fmt.Printf("  elevator %d entered maintenance\n", event.ElevatorID)
			case simconsts.EventMaintenanceEnd:
				fmt.Printf("  elevator %d back in service\n", event.ElevatorID)
			}
		}
	}
}
