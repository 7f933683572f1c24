package main

import (
	"context"
	"errors"
	"fishgame-server/internal/agent"
	"fishgame-server/internal/engine"
	"fishgame-server/internal/infrastructure/storage"
	"fishgame-server/internal/server"
	"fishgame-server/internal/version"
	"fishgame-server/pkg/logger"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var (
		seed       int64
		replayPath string
		rules      string
		bots       int
		admin      bool
	)
	// Читаем флаг -seed. По умолчанию 0 (значит сгенерировать случайно).
	flag.Int64Var(&seed, "seed", 0, "Default world seed for new sessions (0 for random)")
	flag.StringVar(&replayPath, "replay", "", "Path to .fgrp replay file to simulate")
	flag.StringVar(&rules, "rules", engine.DefaultRulesName, "Default rule set (classic | food)")
	flag.IntVar(&bots, "bots", 0, "Number of bot sessions to start")
	flag.BoolVar(&admin, "admin", false, "Allow SPAWN_FOOD / SPAWN_ROCK commands")
	flag.Parse()

	logger.Log.Info("Starting fish game server...")
	logger.Log.Info(version.String())

	// РЕЖИМ РЕПЛЕЯ
	if replayPath != "" {
		os.Exit(runReplay(replayPath))
	}

	port := envOr("FISH_PORT", "8080")
	dbPath := envOr("FISH_DB", "fishgame.db")
	replayDir := envOr("FISH_REPLAY_DIR", "replays")
	secret := os.Getenv("FISH_JWT_SECRET")
	if secret == "" {
		// Токены будут жить только до перезапуска
		secret = uuid.NewString()
		logger.Log.Warn("FISH_JWT_SECRET is not set, using a random secret")
	}

	// Формируем конфиг партий по умолчанию
	defaults := engine.NewConfig()
	defaults.RulesName = rules
	if seed != 0 {
		defaults.Seed = seed
		logger.Log.Infof("🎲 Using explicit seed: %d", seed)
	}
	if err := defaults.Validate(); err != nil {
		logger.Log.Fatal("Invalid config: ", err)
	}

	// 2. Хранилища
	scores, err := storage.OpenScoreStore(dbPath)
	if err != nil {
		logger.Log.Fatal("Failed to open score store: ", err)
	}
	defer scores.Close()

	replays, err := storage.NewReplayService(replayDir)
	if err != nil {
		logger.Log.Fatal("Failed to prepare replay dir: ", err)
	}

	// Graceful Shutdown: сигнал или падение HTTP отменяет ctx, он останавливает все партии
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(sigCtx)

	// 3. Инициализация ядра
	gameService := engine.NewService(ctx)
	gameService.Replays = replays
	gameService.Scores = scores
	gameService.EnableAdmin = admin

	// 4. Запуск сервера
	srv := server.New(gameService, server.NewAuth([]byte(secret), server.DefaultTokenTTL), port)
	srv.Defaults = defaults
	srv.Scores = scores
	srv.Replays = replays

	group.Go(func() error { return srv.Run(ctx) })
	startBots(ctx, group, gameService, defaults, bots)

	if err := group.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Error("Server error: ", err)
	}

	logger.Log.Info("Shutting down...")
	// Партии сохраняют реплеи и рекорды при остановке
	gameService.Wait()
	logger.Log.Info("Done.")
}

// runReplay проигрывает файл и печатает итог. Возвращает код выхода.
func runReplay(path string) int {
	logger.Log.Info("💿 Mode: Replay Simulation")

	rs, err := storage.LoadFile(path)
	if err != nil {
		logger.Log.Error("Failed to load replay: ", err)
		return 1
	}

	g, err := engine.Playback(rs)
	if err != nil {
		logger.Log.Error("Replay failed: ", err)
		return 1
	}

	logger.Log.WithFields(logrus.Fields{
		"seed":      rs.Seed,
		"rules":     rs.Rules,
		"actions":   len(rs.Actions),
		"score":     g.Score,
		"steps":     g.StepsTaken,
		"delivered": g.Delivered,
		"went_home": g.WentHome,
		"game_over": g.GameOver(),
	}).Info("Replay finished")
	return 0
}

// startBots создает партии, которыми управляют боты. Их можно смотреть через /ws/{id}.
// Ошибка бота не роняет сервер.
func startBots(ctx context.Context, group *errgroup.Group, svc *engine.GameService, defaults engine.Config, n int) {
	for i := 0; i < n; i++ {
		cfg := defaults
		cfg.Seed = defaults.Seed + int64(i)

		inst, err := svc.CreateSession(cfg)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to create bot session")
			continue
		}

		bot := agent.NewBot(inst.ID, svc, cfg.Seed)
		group.Go(func() error {
			if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.WithError(err).WithField("session", inst.ID).Warn("Bot stopped")
			}
			return nil
		})
		logger.Log.WithField("session", inst.ID).Info("🤖 Bot session started")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
