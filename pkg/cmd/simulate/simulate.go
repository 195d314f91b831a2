package simulate

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/pkg/bots"
	"github.com/tilerace/race-engine/pkg/config"
	"github.com/tilerace/race-engine/pkg/ticks"
	"github.com/tilerace/race-engine/pkg/track"
	natsTransport "github.com/tilerace/race-engine/pkg/transport/nats"
)

var cfg config.SimulateConfig

func NewSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "runs a single race and writes its ticks as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(cmd)
		},
	}
	cmd.Flags().StringVar(&cfg.RaceID, "race-id", "",
		"id of the race (default: random uuid)")
	cmd.Flags().StringVar(&cfg.EventType, "event-type", "sprint",
		"event type of the race")
	cmd.Flags().IntVar(&cfg.Laps, "laps", ticks.DefaultLapCount,
		"number of laps")
	cmd.Flags().IntVar(&cfg.GridSize, "grid-size", track.DefaultGridSize,
		"size of the track grid")
	cmd.Flags().StringVar(&cfg.EntriesFile, "entries-file", "",
		"yaml file with the entrants")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 0,
		"seed for the track generator (0: current time)")
	cmd.Flags().Float64Var(&cfg.Speed, "speed", 1,
		"replay speed (0 means: go as fast as possible)")
	cmd.Flags().StringVar(&cfg.NatsURL, "nats-url", "",
		"publish ticks and results to this NATS server")
	cmd.Flags().StringVar(&cfg.NatsBucket, "nats-bucket", natsTransport.DefaultBucket,
		"JetStream KV bucket for race results (empty: results are only published)")
	cmd.Flags().DurationVar(&cfg.WaitForNats, "wait-for-services", 15*time.Second,
		"Duration to wait for the NATS server to be ready")
	cmd.Flags().IntVar(&cfg.FillBots, "fill-bots", bots.DefaultGridTarget,
		"fill the grid with bots up to this many cars (0: no bots)")
	cmd.Flags().DurationVar(&cfg.Lead, "lead", DefaultLead,
		"time between race creation and scheduled start")
	return cmd
}

func simulate(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		if telemetry, err := config.SetupTelemetry(context.Background()); err == nil {
			defer telemetry.Shutdown()
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err := otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}
	_, err := Run(ctx, &cfg, cmd.OutOrStdout())
	return err
}
