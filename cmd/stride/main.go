package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/debug"
	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/game"
	"github.com/Versifine/stride/internal/logger"
	"github.com/Versifine/stride/internal/sim"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the yaml config")
	console := flag.Bool("console", false, "drive the scene from the terminal instead of a window")
	watch := flag.Bool("watch", false, "reload the config file when it changes")
	flag.Parse()

	cfg, err := config.LoadValidated(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	var output io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		var tee io.Writer = os.Stdout
		if *console {
			// the status line owns the terminal
			tee = nil
		}
		w, closer, err := logger.OpenFile(cfg.Logging.File, tee)
		if err != nil {
			slog.Error("Failed to open log file", "error", err)
			os.Exit(1)
		}
		defer closer.Close()
		output = w
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: output,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cursor *game.Cursor
	if !*console {
		cursor = game.NewCursor()
	}
	scene, err := newScene(cfg, cursor)
	if err != nil {
		slog.Error("Failed to create scene", "error", err)
		os.Exit(1)
	}

	if *watch {
		w, err := config.NewWatcher(*configPath)
		if err != nil {
			slog.Error("Failed to watch config", "error", err)
			os.Exit(1)
		}
		defer w.Close()
		slog.Info("Watching config", "path", w.Path())
		go forwardReloads(ctx, w, scene.Bus())
	}

	if *console {
		err = debug.NewConsole(scene, *configPath).Start(ctx)
	} else {
		err = game.New(ctx, scene, cursor).Run()
	}
	if err != nil {
		slog.Error("Stopped with error", "error", err)
		os.Exit(1)
	}
}

// newScene keeps a nil *game.Cursor from becoming a non-nil interface.
func newScene(cfg *config.Config, cursor *game.Cursor) (*sim.Scene, error) {
	if cursor == nil {
		return sim.New(cfg, nil)
	}
	return sim.New(cfg, cursor)
}

func forwardReloads(ctx context.Context, w *config.Watcher, bus *event.Bus) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-w.Configs:
			if !ok {
				return
			}
			bus.Publish(event.EventConfigReload, event.ConfigEvent{Config: cfg})
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watch error", "error", err)
		}
	}
}
