// termtactoe is a terminal game of tic-tac-toe for two players sharing a
// keyboard, played on several boards at once.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"termtactoe/config"
	"termtactoe/engine"
	"termtactoe/terminal"
	"termtactoe/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

// Command-line flags
var (
	flagBoards      = flag.Int("boards", -1, "Number of boards to play (asked at startup when negative)")
	flagTimeout     = flag.Int("timeout", -1, "Seconds per turn before a random move is made, 0 for no limit (asked at startup when negative)")
	flagSeed        = flag.Int64("seed", 0, "Seed for random moves (0 picks one from the clock)")
	flagTUI         = flag.Bool("tui", false, "Play in the full-screen interface")
	flagWriteConfig = flag.Bool("write-config", false, "Write the current settings to the config file and exit")
	flagVersion     = flag.Bool("version", false, "Print version and exit")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("termtactoe %s\n", Version)
		return 0
	}

	cfg, err := config.InitConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *flagWriteConfig {
		path, err := cfg.Save()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %s\n", err)
			return 1
		}
		fmt.Printf("Config written to %s\n", path)
		return 0
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %s\n", err)
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := *flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	matchCfg := engine.MatchConfig{
		ID:          uuid.NewString(),
		PlayerNames: cfg.PlayerNames(),
		Boards:      *flagBoards,
		TurnTimeout: -1,
		ResultPause: cfg.ResultPause(),
	}
	if *flagTimeout >= 0 {
		matchCfg.TurnTimeout = time.Duration(*flagTimeout) * time.Second
	}
	logger.Info("Starting match", "match", matchCfg.ID, "version", Version, "seed", seed, "tui", *flagTUI)

	var res engine.Result
	if *flagTUI {
		res, err = playTUI(ctx, logger, cfg, rng, matchCfg)
	} else {
		res, err = playConsole(ctx, logger, rng, matchCfg)
	}
	if errors.Is(err, terminal.ErrViewportTooSmall) {
		fmt.Println("Terminal size is too small, resize it and start again")
		return 1
	}
	if errors.Is(err, context.Canceled) {
		// Interrupted during setup, before any board existed.
		fmt.Println("\n" + engine.HeadlineTerminated)
		return 0
	}
	if err != nil {
		logger.Error("Match failed", "match", matchCfg.ID, "error", err)
		fmt.Fprintf(os.Stderr, "termtactoe: %s\n", err)
		return 1
	}

	logger.Info("Match finished", "match", matchCfg.ID, "winner", int(res.Winner), "quit", res.Quit)
	if *flagTUI {
		// The full-screen view is gone by now, leave the result on the terminal.
		fmt.Println(res.Summary)
	}
	return 0
}

// newLogger opens the debug log. stdout belongs to the game display.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	path, err := config.LogFilePath()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	return slog.New(handler), func() { f.Close() }, nil
}

func playConsole(ctx context.Context, logger *slog.Logger, rng engine.Rand, matchCfg engine.MatchConfig) (engine.Result, error) {
	console := terminal.New(os.Stdin, os.Stdout)
	if err := console.CheckViewport(terminal.MinWidth, terminal.MinHeight); err != nil {
		return engine.Result{}, err
	}
	return engine.NewMatch(logger, console, rng, matchCfg).Run(ctx)
}

// playTUI runs the tview application on this goroutine and the match on another.
func playTUI(ctx context.Context, logger *slog.Logger, cfg *config.Config, rng engine.Rand, matchCfg engine.MatchConfig) (engine.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tui := ui.NewTUI(cfg, cancel)

	type outcome struct {
		res engine.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := engine.NewMatch(logger, tui, rng, matchCfg).Run(ctx)
		if err != nil {
			tui.Stop()
		} else {
			tui.Finish()
		}
		done <- outcome{res, err}
	}()

	if err := tui.Run(); err != nil {
		return engine.Result{}, err
	}
	cancel()
	out := <-done
	return out.res, out.err
}
