package main

import (
	"github.com/rs/zerolog"

	"elevsim/internal/building"
	"elevsim/internal/demand"
	"elevsim/internal/logger"
	"elevsim/internal/runmeta"
	"elevsim/internal/simconfig"
	"elevsim/internal/simconsts"
	"elevsim/internal/simulator"
	"elevsim/internal/simutils"
	"elevsim/internal/sink"
)

var Logger = logger.GetLogger()

func main() {
	opts := simutils.ProcessCmdArgs()
	zerolog.SetGlobalLevel(logger.ParseLevel(opts.LogLevel))

	cfg, err := simconfig.Load(opts.ConfigPath)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Loading config failed")
	}
	cfg, err = simconfig.ApplyEnv(cfg, opts.EnvFile)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Applying environment overrides failed")
	}
	if opts.DBFile != "" {
		cfg.DBFile = opts.DBFile
	}
	if err := cfg.Validate(); err != nil {
		Logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	meta := runmeta.New(opts.RunName, simutils.GetGitHash(), cfg.StartTime)
	Logger.Info().Msgf("Starting run: %v", meta.String())

	fleet, err := building.New(cfg)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Building fleet failed")
	}

	var store *sink.SQLite
	eventSinks := []sink.Sink{}
	if cfg.CollectEvents {
		store, err = sink.OpenSQLite(cfg.DBFile, meta.RunID, meta.Name, meta.StartedAt)
		if err != nil {
			Logger.Fatal().Err(err).Str("db", cfg.DBFile).Msg("Opening event store failed")
		}
		defer store.Close()
		eventSinks = append(eventSinks, store)
	}
	eventSink := sink.NewMulti(eventSinks...)

	if opts.Interactive {
		runInteractive(cfg, fleet, eventSink)
	} else {
		if !opts.SkipDemo {
			runDemo(cfg)
		}
		runCollection(cfg, fleet, eventSink, opts)
	}

	if store != nil {
		count, err := store.EventCount()
		if err != nil {
			Logger.Warn().Err(err).Msg("Counting stored events failed")
		} else {
			Logger.Info().Int("events", count).Str("db", cfg.DBFile).Msg("Run stored")
		}
		if opts.CSVFile != "" {
			if err := store.ExportCSV(opts.CSVFile); err != nil {
				Logger.Error().Err(err).Str("csv", opts.CSVFile).Msg("CSV export failed")
			} else {
				Logger.Info().Str("csv", opts.CSVFile).Msg("Events exported")
			}
		}
	}
}

// runDemo replays the canonical scenario on its own fleet: floors 0-5, one
// car at 0, hall calls for 3, 2, 1, 0 submitted once the car settles.
func runDemo(cfg simconfig.Config) {
	Logger.Info().Msg("=== Demo scenario ===")

	demoFleet, err := building.New(cfg)
	if err != nil {
		Logger.Fatal().Err(err).Msg("Building demo fleet failed")
	}
	memory := sink.NewMemory()
	sim := simulator.New(cfg, demoFleet, memory, nil)

	for _, floor := range []int{3, 2, 1, 0} {
		result, err := sim.Request(floor, simconsts.None)
		if err != nil {
			Logger.Error().Err(err).Int("floor", floor).Msg("Demo request failed")
			continue
		}
		Logger.Info().
			Int("floor", floor).
			Bool("accepted", result.Result.Accepted).
			Int("elevator", result.ElevatorID).
			Msg("Hall call")

		for _, event := range sim.RunUntilIdle(60) {
			switch event.Type {
			case simconsts.EventArrived, simconsts.EventBecameIdle:
				Logger.Info().
					Str("event", event.Type.String()).
					Int("floor", event.CurrentFloor).
					Msg("Elevator")
			}
		}
	}

	status := demoFleet.Elevator(0).Snapshot()
	Logger.Info().
		Int("floor", status.CurrentFloor).
		Str("direction", status.Direction.String()).
		Dur("time_moving", status.TimeMoving).
		Dur("time_idle", status.TimeIdle).
		Msgf("Demo finished with %d events", memory.Len())
}

// runCollection feeds seeded random demand for the configured span and
// records every event for later feature extraction.
func runCollection(cfg simconfig.Config, fleet *building.Building, eventSink sink.Sink, opts simutils.Options) {
	Logger.Info().
		Int64("seed", opts.Seed).
		Dur("frequency", opts.Frequency).
		Msg("=== Collection run ===")

	source := demand.NewRandom(opts.Seed, cfg.FloorCount, opts.Frequency, cfg.StartTime)
	sim := simulator.New(cfg, fleet, eventSink, source)

	var stats simulator.RunStats
	if opts.Ticks > 0 {
		stats = sim.RunTicks(opts.Ticks)
	} else {
		stats = sim.RunFor(opts.Duration)
	}

	Logger.Info().
		Int("ticks", stats.Ticks).
		Dur("simulated", stats.SimulatedTime).
		Int("events", stats.Events).
		Int("requests", stats.TotalRequests).
		Msg("Collection run finished")
}
