package main

import (
	"context"
	"errors"
	"fishgame-server/internal/engine"
	"fishgame-server/internal/infrastructure/storage"
	"fishgame-server/internal/terminal"
	"fishgame-server/pkg/logger"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"golang.org/x/term"
)

func main() {
	cfg := engine.NewConfig()

	var (
		seed      int64
		logPath   string
		replayDir string
		dbPath    string
		sound     bool
	)
	flag.Int64Var(&seed, "seed", 0, "World seed (0 for random)")
	flag.StringVar(&cfg.RulesName, "rules", engine.DefaultRulesName, "Rule set (classic | food)")
	flag.IntVar(&cfg.Width, "width", engine.DefaultWidth, "Grid width")
	flag.IntVar(&cfg.Height, "height", engine.DefaultHeight, "Grid height")
	flag.IntVar(&cfg.NumRocks, "rocks", engine.DefaultNumRocks, "Number of rocks")
	flag.IntVar(&cfg.NumFallingRocks, "falling-rocks", 0, "Number of falling rocks")
	flag.StringVar(&logPath, "log", "fishgame.log", "Log file (the screen owns stdout)")
	flag.StringVar(&replayDir, "replay-dir", "", "Save the replay here on exit (empty - don't save)")
	flag.StringVar(&dbPath, "db", "", "Record the score in this SQLite file (empty - don't record)")
	flag.BoolVar(&sound, "sound", true, "Play sound cues")
	flag.Parse()

	if seed != 0 {
		cfg.Seed = seed
	}

	if err := run(cfg, logPath, replayDir, dbPath, sound); err != nil {
		fmt.Fprintln(os.Stderr, "fishgame:", err)
		os.Exit(1)
	}
}

func run(cfg engine.Config, logPath, replayDir, dbPath string, sound bool) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal, use the server binary for remote play")
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.InitWithOutput(logFile)

	game, err := engine.NewFishGame(cfg)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := terminal.NewApp(screen, game, terminal.NewSounds(sound))
	runErr := app.Run(ctx)
	screen.Fini()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	fmt.Printf("Score %d in %d steps (seed %d)\n", game.Score, game.StepsTaken, cfg.Seed)
	return saveResult(game, replayDir, dbPath)
}

// saveResult пишет реплей и рекорд, если это включено флагами
func saveResult(game *engine.FishGame, replayDir, dbPath string) error {
	if game.StepsTaken == 0 {
		return nil
	}
	id := uuid.NewString()

	if rs := game.FinishReplay(); replayDir != "" && rs != nil {
		replays, err := storage.NewReplayService(replayDir)
		if err != nil {
			return err
		}
		path, err := replays.SaveReplay(id, rs)
		if err != nil {
			return err
		}
		fmt.Println("Replay saved to", path)
	}

	if dbPath != "" {
		scores, err := storage.OpenScoreStore(dbPath)
		if err != nil {
			return err
		}
		defer scores.Close()
		if err := scores.RecordResult(context.Background(), game.Result(id)); err != nil {
			return err
		}
	}
	return nil
}
