package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiryu-dev/tic-tac-toe-machine/internal/config"
	"github.com/kiryu-dev/tic-tac-toe-machine/internal/transport/ws"
	"github.com/kiryu-dev/tic-tac-toe-machine/internal/usecase/game"
	"github.com/kiryu-dev/tic-tac-toe-machine/internal/usecase/hub"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfgPath := flag.String("config", "./config.yml", "path to config")
	flag.Parse()
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	cfg, err := config.New(*cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	level, _ := cfg.LogLevel()
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	leveled, err := zapCfg.Build()
	if err != nil {
		logger.Fatal("failed to build logger", zap.Error(err))
	}
	logger = leveled
	defer func() {
		_ = logger.Sync()
	}()
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	errGroup, ctx := errgroup.WithContext(context.Background())
	errGroup.Go(func() error {
		select {
		case s := <-sigChan:
			return errors.Errorf("captured signal: %v", s)
		case <-ctx.Done():
			return nil
		}
	})
	var gameOpts []game.Option
	if cfg.Game.LenientTurns {
		gameOpts = append(gameOpts, game.WithLenientTurns())
	}
	var (
		machine = game.New(logger, gameOpts...)
		hub     = hub.New(machine, logger,
			hub.WithEventQueueSize(cfg.Hub.EventQueue),
			hub.WithSubscriberBufferSize(cfg.Hub.SubscriberBuffer))
		server = ws.New(cfg.Server.Addr, hub, logger)
	)
	errGroup.Go(func() error {
		return hub.Run(ctx)
	})
	errGroup.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	if err := errGroup.Wait(); err != nil {
		logger.Info("gracefully shutting down the server: " + err.Error())
	}
}
