package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outbreak/config"
	"github.com/pthm-cable/outbreak/game"
	"github.com/pthm-cable/outbreak/renderer"
	"github.com/pthm-cable/outbreak/stream"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	serve := flag.String("serve", "", "Address for the spectator websocket stream (empty = off)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var hub *stream.Hub
	if *serve != "" {
		hub = stream.NewHub(cfg.Stream)
		go hub.Run(ctx)
		go func() {
			if err := stream.Serve(ctx, *serve, cfg.Stream.Path, hub); err != nil {
				slog.Error("spectator stream stopped", "error", err)
			}
		}()
	}

	if *headless {
		runHeadless(ctx, opts, hub, *maxTicks)
		return
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Outbreak")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGameWithOptions(opts)
	defer g.Unload()
	v := renderer.NewViewer(g)

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		v.Update()
		v.Draw()
		if hub != nil {
			hub.Publish(v.Snapshot())
		}

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}

// runHeadless steps the simulation without raylib until maxTicks or an
// interrupt.
func runHeadless(ctx context.Context, opts game.Options, hub *stream.Hub, maxTicks int) {
	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"stats_window", opts.StatsWindowSec,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for ctx.Err() == nil {
		g.UpdateHeadless()

		if hub != nil && hub.Wants(g.Tick()) {
			hub.Publish(g.Snapshot())
		}

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick(), "prey", g.PreyCount(), "predators", g.PredatorCount())
			return
		}
	}
	slog.Info("interrupted", "tick", g.Tick())
}
