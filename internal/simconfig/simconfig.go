// Package simconfig holds every scalar knob the simulation core consumes.
// Values come from, in increasing precedence: defaults, a JSON config file,
// ELEVSIM_* environment variables (optionally loaded from a .env file).
package simconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Duration wraps time.Duration so config files can write "5m" / "30s", or a
// bare number meaning seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value * float64(time.Second)))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", v)
	}
}

type Config struct {
	FloorCount            int      `json:"floor_count"`
	ElevatorCount         int      `json:"elevator_count"`
	CapacityPerElevator   int      `json:"capacity_per_elevator"`
	NearCapacityThreshold float64  `json:"near_capacity_threshold"`
	MaxContinuousMovement Duration `json:"max_continuous_movement_duration"`
	MaintenanceBreak      Duration `json:"maintenance_break_duration"`
	TickDuration          Duration `json:"tick_duration"`
	HomeFloor             int      `json:"home_floor"`

	// StartTime anchors the simulation clock. Hour-of-day and day-of-week
	// event features derive from it, never from the wall clock.
	StartTime time.Time `json:"start_time"`

	DBFile        string `json:"db_file"`
	CollectEvents bool   `json:"collect_events"`
}

// Default mirrors the reference building: six floors, one eight-person car,
// hall calls refused above 80% occupancy, a 30 s break after 5 min of
// continuous movement, one-second ticks.
func Default() Config {
	return Config{
		FloorCount:            6,
		ElevatorCount:         1,
		CapacityPerElevator:   8,
		NearCapacityThreshold: 0.8,
		MaxContinuousMovement: Duration(5 * time.Minute),
		MaintenanceBreak:      Duration(30 * time.Second),
		TickDuration:          Duration(time.Second),
		HomeFloor:             0,
		StartTime:             time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC), // a Monday morning
		DBFile:                "elevator_simulation.db",
		CollectEvents:         true,
	}
}

// Load reads a JSON config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays ELEVSIM_* environment variables onto cfg. When envFile is
// non-empty it is read first with godotenv; a missing file is not an error so
// running without a .env stays the default.
func ApplyEnv(cfg Config, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	if v, ok := os.LookupEnv("ELEVSIM_FLOOR_COUNT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("ELEVSIM_FLOOR_COUNT: %w", err)
		}
		cfg.FloorCount = n
	}
	if v, ok := os.LookupEnv("ELEVSIM_ELEVATOR_COUNT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("ELEVSIM_ELEVATOR_COUNT: %w", err)
		}
		cfg.ElevatorCount = n
	}
	if v, ok := os.LookupEnv("ELEVSIM_CAPACITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("ELEVSIM_CAPACITY: %w", err)
		}
		cfg.CapacityPerElevator = n
	}
	if v, ok := os.LookupEnv("ELEVSIM_DB_FILE"); ok {
		cfg.DBFile = v
	}

	return cfg, nil
}

// Validate fails fast on misconfiguration; nothing downstream re-checks
// these.
func (c Config) Validate() error {
	if c.FloorCount <= 0 {
		return errors.New("floor_count must be positive")
	}
	if c.ElevatorCount <= 0 {
		return errors.New("elevator_count must be positive")
	}
	if c.CapacityPerElevator <= 0 {
		return errors.New("capacity_per_elevator must be positive")
	}
	if c.NearCapacityThreshold <= 0 || c.NearCapacityThreshold > 1 {
		return fmt.Errorf("near_capacity_threshold %v outside (0, 1]", c.NearCapacityThreshold)
	}
	if c.MaxContinuousMovement <= 0 {
		return errors.New("max_continuous_movement_duration must be positive")
	}
	if c.MaintenanceBreak <= 0 {
		return errors.New("maintenance_break_duration must be positive")
	}
	if c.TickDuration <= 0 {
		return errors.New("tick_duration must be positive")
	}
	if c.HomeFloor < 0 || c.HomeFloor >= c.FloorCount {
		return fmt.Errorf("home_floor %d outside [0, %d)", c.HomeFloor, c.FloorCount)
	}
	return nil
}
