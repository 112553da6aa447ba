package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/sim2d/internal/config"
	"github.com/l1jgo/sim2d/internal/data"
	"github.com/l1jgo/sim2d/internal/persist"
	"github.com/l1jgo/sim2d/internal/render"
	"github.com/l1jgo/sim2d/internal/scene"
	"github.com/l1jgo/sim2d/internal/scripting"
	"github.com/l1jgo/sim2d/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Load prefab table and level
	prefabs, err := data.LoadPrefabTable(cfg.Data.PrefabFile)
	if err != nil {
		return fmt.Errorf("load prefabs: %w", err)
	}
	log.Info("prefabs loaded", zap.Int("count", prefabs.Count()))

	lv, err := loadLevel(cfg, log)
	if err != nil {
		return err
	}

	// 4. Lua scripting
	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("init scripting: %w", err)
	}
	defer engine.Close()

	// 5. Scene
	input := service.NewStaticInput()
	services := service.Services{
		Audio:  service.NopAudio{},
		Assets: service.NewAssets(),
		Input:  input,
	}
	engine.SetAudio(services.Audio)

	sc := scene.New(cfg.Sim, services, log)
	if _, err := sc.LoadLevel(lv, prefabs, engine); err != nil {
		return err
	}

	// 6. Optional terminal viewer
	var viewer *render.Viewer
	if cfg.Viewer.Enabled {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init screen: %w", err)
		}
		viewer = render.NewViewer(screen, cfg.Viewer.UnitsPerCell,
			render.WithFollow("player"),
			render.WithTagStyle("player", tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)),
			render.WithTagStyle("coin", tcell.StyleDefault.Foreground(tcell.ColorGold)),
			render.WithTagStyle("hazard", tcell.StyleDefault.Foreground(tcell.ColorRed)),
			render.WithLogger(log),
		)
		defer viewer.Close()
		sc.AttachRenderer(viewer)
	}

	// 7. Run until interrupted, quit from the viewer, or max_frames
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(sigCtx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return loop(ctx, sc, cfg.Sim)
	})
	if viewer != nil {
		g.Go(func() error { return viewer.PollKeys(ctx, input) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, render.ErrQuit) && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("simulation stopped",
		zap.Uint64("frames", sc.Frame()),
		zap.Int("entities", sc.Manager.Count()),
		zap.Int("contacts", sc.Contacts()),
	)
	return nil
}

func loop(ctx context.Context, sc *scene.Scene, cfg config.SimConfig) error {
	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()

	log := sc.Logger()
	log.Info("simulation started", zap.Duration("tick", cfg.TickRate), zap.Int("max_frames", cfg.MaxFrames))

	for {
		select {
		case <-ticker.C:
			sc.Step(cfg.TickRate)
			if cfg.MaxFrames > 0 && sc.Frame() >= uint64(cfg.MaxFrames) {
				log.Info("frame limit reached", zap.Uint64("frames", sc.Frame()))
				return nil
			}
		case <-ctx.Done():
			if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
				return cause
			}
			log.Info("shutdown requested")
			return nil
		}
	}
}

func loadLevel(cfg *config.Config, log *zap.Logger) (*data.Level, error) {
	switch cfg.Level.Source {
	case "db":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		if _, err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		lv, err := persist.NewLevelRepo(db).Load(ctx, cfg.Level.Name)
		if err != nil {
			return nil, fmt.Errorf("load level %q: %w", cfg.Level.Name, err)
		}
		return lv, nil
	default:
		lv, err := data.LoadLevel(cfg.Data.LevelFile)
		if err != nil {
			return nil, fmt.Errorf("load level: %w", err)
		}
		return lv, nil
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	} else if cfg.Format != "json" {
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
