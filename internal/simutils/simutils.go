package simutils

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"time"
)

//go:generate sh -c "printf %s $(git rev-parse HEAD) > githash.txt"
//go:embed githash.txt
var gitHash string

func GetGitHash() string {
	return gitHash
}

// Options carries everything the elevsim binary reads from the command
// line.
type Options struct {
	ConfigPath  string
	EnvFile     string
	DBFile      string
	CSVFile     string
	RunName     string
	LogLevel    string
	Seed        int64
	Ticks       int
	Duration    time.Duration
	Frequency   time.Duration
	Interactive bool
	SkipDemo    bool
}

func ProcessCmdArgs() Options {
	help := flag.Bool("help", false, "Show Help Window")
	version := flag.Bool("version", false, "Show Version")
	configPath := flag.String("config", "", "Path to a JSON config file. Defaults apply when omitted")
	envFile := flag.String("env", "", "Path to a .env file with ELEVSIM_* overrides")
	dbFile := flag.String("db", "", "SQLite database file for collected events. Overrides the config value")
	csvFile := flag.String("csv", "", "Export the run's events to this CSV file on exit")
	runName := flag.String("run", "", "Name for this run. Defaults to a random string")
	logLevel := flag.String("loglevel", "info", "Log level: trace, debug, info, warn, error, off")
	seed := flag.Int64("seed", 1, "Seed for the random demand generator")
	ticks := flag.Int("ticks", 0, "Run the collection phase for a fixed tick count")
	duration := flag.Duration("duration", 60*time.Second, "Run the collection phase for a fixed simulated duration. Ignored when -ticks is set")
	frequency := flag.Duration("frequency", 8*time.Second, "Mean interval between random hall calls")
	interactive := flag.Bool("interactive", false, "Read hall calls from the keyboard instead of running the demo")
	skipDemo := flag.Bool("skipdemo", false, "Skip the scripted demo scenario")

	flag.Parse()

	if *version {
		fmt.Println("Version:", GetGitHash())
		os.Exit(0)
	}

	if *help {
		fmt.Println("Usage: ./elevsim [OPTIONS]")
		fmt.Println("Elevator dispatch simulator and event collector")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	return Options{
		ConfigPath:  *configPath,
		EnvFile:     *envFile,
		DBFile:      *dbFile,
		CSVFile:     *csvFile,
		RunName:     *runName,
		LogLevel:    *logLevel,
		Seed:        *seed,
		Ticks:       *ticks,
		Duration:    *duration,
		Frequency:   *frequency,
		Interactive: *interactive,
		SkipDemo:    *skipDemo,
	}
}
