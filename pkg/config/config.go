package config

import "time"

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel          string // sets the log level (zap log level values)
	LogFormat         string // text vs json
	LogConfig         string // path to a file with zapfilter rules
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry, "stdout" writes to the console
	RulesFile         string // yaml file overriding the built-in event rules
)

// TrackConfig holds the values of the track command.
type TrackConfig struct {
	GridSize   int
	MinSteps   int // 0 scales with the grid size
	MaxRetries int
	Seed       uint64
	AsJSON     bool
}

// SimulateConfig holds the values of the simulate command.
type SimulateConfig struct {
	RaceID      string
	EventType   string
	Laps        int
	GridSize    int
	EntriesFile string
	Seed        uint64 // 0 uses the current time
	Speed       float64
	NatsURL     string
	NatsBucket  string        // KV bucket keeping the results, empty disables it
	WaitForNats time.Duration // wait this long for the NATS server to accept connections
	FillBots    int           // fill the grid up to this many cars, 0 disables bots
	Lead        time.Duration
}
