package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/agent"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/config"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/entities"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/infrastructure/storage"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/infrastructure/telemetry"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/server"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/version"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг флагов
	var (
		seed       int64
		replayPath string
		configPath string
		extraTicks int
	)
	// -seed перекрывает engine.seed. 0 - оставить значение из конфига.
	flag.Int64Var(&seed, "seed", 0, "Master seed (0 keeps engine.seed)")
	flag.StringVar(&replayPath, "replay", "", "Path to .sxrp journal to re-simulate")
	flag.StringVar(&configPath, "config", "", "Path to config file (json/toml/yaml)")
	flag.IntVar(&extraTicks, "ticks", 0, "Extra ticks to simulate after the last journal entry")
	flag.Parse()

	logger.Log.Infof("Starting %s...", version.Name)
	logger.Log.Info(version.String())

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load config")
	}
	if err := logger.EnableGelf(cfg.Logging.GelfAddress); err != nil {
		logger.Log.WithError(err).Warn("GELF output unavailable")
	}

	engineCfg := cfg.ToEngine()
	if seed != 0 {
		engineCfg.Seed = seed
		logger.Log.Infof("🎲 Using explicit Master Seed: %d", seed)
	}

	// РЕЖИМ РЕПЛЕЯ
	if replayPath != "" {
		runReplay(engineCfg, replayPath, extraTicks)
		return
	}

	// 2. Хранилища и телеметрия
	gameService := engine.NewService(engineCfg, entities.Build)

	if cfg.Storage.ReplayDir != "" {
		replays, err := storage.NewReplayService(cfg.Storage.ReplayDir)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to prepare replay directory")
		}
		gameService.Replays = replays
	}

	archive, err := storage.OpenArchive(cfg.ToArchive())
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open match archive")
	}
	if archive != nil {
		gameService.Archive = archive
		defer archive.Close()
	}

	influx, err := telemetry.NewInfluxSink(context.Background(), cfg.ToInflux())
	switch {
	case err == nil:
		gameService.Stats = influx
		defer influx.Close()
	case cfg.Telemetry.Influx.Enabled:
		logger.Log.WithError(err).Warn("Telemetry disabled")
	}

	// 3. Матч по умолчанию и боты
	inst, err := gameService.CreateMatch("")
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to create match")
	}
	logger.Log.WithFields(logrus.Fields{
		"match":  inst.ID,
		"layout": inst.Layout.Name,
		"seed":   inst.Seed,
	}).Info("🏁 Match created")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	camps := cfg.BotCamps()
	for _, p := range inst.Layout.Placements {
		if !p.ID.Role.IsRobot() || !slices.Contains(camps, p.ID.Camp) {
			continue
		}
		bot, err := agent.Attach(gameService, inst.ID, p.ID)
		if err != nil {
			logger.Log.WithError(err).WithField("robot", p.ID.String()).Error("Failed to start bot")
			continue
		}
		go bot.Run(ctx)
	}

	// 4. Запуск сервера
	srv := server.New(gameService, cfg.Server.Port)
	if archive != nil {
		srv.History = archive
	}

	go func() {
		if err := srv.Run(ctx); err != nil {
			logger.Log.WithError(err).Fatal("Server start error")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down...")

	// Сохраняем все активные матчи
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gameService.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Some matches were not saved")
	}

	logger.Log.Info("Done.")
}

// runReplay пересчитывает матч из журнала и печатает итог.
func runReplay(cfg engine.Config, path string, extraTicks int) {
	logger.Log.Info("💿 Mode: Replay Simulation")

	session, err := (&storage.ReplayService{}).Load(path)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load replay")
	}

	pb, err := engine.Replay(cfg, session, entities.Build, extraTicks)
	if err != nil {
		logger.Log.WithError(err).Fatal("Replay failed")
	}

	for _, ev := range pb.Events {
		logger.Log.WithFields(logrus.Fields{
			"tick":  ev.Tick,
			"event": ev.Name,
		}).Info("Replay event")
	}
	logger.Log.WithFields(logrus.Fields{
		"match":   session.MatchID,
		"entries": pb.Applied,
		"ticks":   pb.Sim.Tick(),
	}).Info("Replay complete")
}
