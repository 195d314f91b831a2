package track

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/pkg/config"
	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rnd"
	"github.com/tilerace/race-engine/pkg/speedmap"
	"github.com/tilerace/race-engine/pkg/track"
)

var cfg = configDefaults()

func configDefaults() config.TrackConfig {
	return config.TrackConfig{
		GridSize:   track.DefaultGridSize,
		MaxRetries: track.DefaultMaxRetries,
	}
}

func NewTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "generates a track and prints it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateTrack(cmd)
		},
	}
	cmd.Flags().IntVar(&cfg.GridSize, "grid-size", track.DefaultGridSize,
		"size of the square grid")
	cmd.Flags().IntVar(&cfg.MinSteps, "min-steps", 0,
		"minimum loop length (0: scaled with grid size)")
	cmd.Flags().IntVar(&cfg.MaxRetries, "max-retries", track.DefaultMaxRetries,
		"random walks before falling back to the oval")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 0,
		"seed for the random walk (0: current time)")
	cmd.Flags().BoolVar(&cfg.AsJSON, "json", false,
		"print track and speed profile as JSON")
	return cmd
}

func generateTrack(cmd *cobra.Command) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	minSteps := cfg.MinSteps
	if minSteps == 0 {
		minSteps = track.MinStepsFor(cfg.GridSize)
	}
	g := track.NewGenerator(
		track.WithSource(rnd.New(seed)),
		track.WithLogger(log.Default().Named("track")))
	t := g.Generate(cfg.GridSize, minSteps, cfg.MaxRetries)
	if err := t.Validate(0); err != nil {
		return err
	}
	profile, err := speedmap.Build(t, speedmap.DefaultPhysics())
	if err != nil {
		return err
	}
	log.Debug("track generated",
		log.Uint64("seed", seed),
		log.Int("tiles", len(t.Tiles)),
		log.Bool("fallback", t.Fallback))

	out := cmd.OutOrStdout()
	if cfg.AsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Seed    uint64             `json:"seed"`
			Track   *model.Track       `json:"track"`
			Profile model.SpeedProfile `json:"profile"`
		}{seed, t, profile})
	}
	fmt.Fprint(out, t.Render())
	fmt.Fprintf(out, "seed: %d, tiles: %d, fallback: %v\n", seed, len(t.Tiles), t.Fallback)
	return nil
}
