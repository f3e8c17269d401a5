package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slits/app"
	"github.com/pthm-cable/slits/config"
	"github.com/pthm-cable/slits/runner"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	fastFire := flag.Bool("fast-fire", false, "Start fast fire immediately")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := runner.Options{
		Seed:      *seed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}

	if *headless {
		// Headless mode - no raylib window
		run, err := runner.New(cfg, opts)
		if err != nil {
			slog.Error("failed to start session", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := run.Close(); err != nil {
				slog.Error("failed to close session", "error", err)
			}
		}()

		if *fastFire {
			run.Experiment().ToggleFastFire()
		}

		slog.Info("starting headless run",
			"seed", run.Seed(),
			"max_frames", *maxFrames,
			"fast_fire", *fastFire,
		)

		for {
			run.StepHeadless()

			if run.Done() {
				slog.Info("particle cap reached", "frame", run.Frame())
				return
			}
			if *maxFrames > 0 && int(run.Frame()) >= *maxFrames {
				slog.Info("max frames reached", "frame", run.Frame())
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Double Slit")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	run, err := runner.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	if *fastFire {
		run.Experiment().ToggleFastFire()
	}

	a := app.New(cfg, run)
	defer a.Unload()

	for !rl.WindowShouldClose() {
		a.Update()
		a.Draw()

		if *maxFrames > 0 && int(run.Frame()) >= *maxFrames {
			break
		}
	}
}
