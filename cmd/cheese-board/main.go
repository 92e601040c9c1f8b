package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/assets"
	"github.com/park285/cheese-board/internal/builder"
	"github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/desktop"
	"github.com/park285/cheese-board/internal/desktop/window"
	"github.com/park285/cheese-board/internal/obslog"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $CHESS_CONFIG)")
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config_error", zap.Error(err))
	}

	audio := func(s *assets.Sounds) desktop.Sink { return window.NewAudio(s, logger) }
	deps, err := builder.New(cfg, audio, logger)
	if err != nil {
		logger.Fatal("build_error", zap.Error(err))
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("shutdown_error", zap.Error(err))
		}
	}()

	game := window.NewGame(deps.Controller, cfg.Window.Width, cfg.Window.Height, logger)
	if err := window.Run(game, cfg.Window.Title); err != nil {
		logger.Error("window_error", zap.Error(err))
		return
	}
	logger.Info("game_closed")
}
