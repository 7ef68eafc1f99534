// Package engine implements the multi-board tic-tac-toe match: boards, players
// and the controller that drives turns across every open board.
package engine

import (
	"context"
	"time"

	"termtactoe/types"
)

// Terminal is the input/output collaborator the match is played through.
type Terminal interface {
	// ReadLine shows prompt and returns one line of text without its terminator.
	ReadLine(ctx context.Context, prompt string) (string, error)

	// ReadKey shows prompt and waits up to timeout for a single key press.
	// It returns types.KeyNone when no key was pressed in time.
	ReadKey(ctx context.Context, prompt string, timeout time.Duration) (rune, error)

	// Render draws the current state of the match.
	Render(state types.MatchState) error
}

// Rand is the source used for automatic moves. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// InfiniteTimeout is used when the players ask for no turn timeout.
const InfiniteTimeout = 999999 * time.Second

// MatchConfig holds configuration for starting a new match.
type MatchConfig struct {
	ID          string        // Match id attached to log records
	PlayerNames [2]string     // Display names of player 0 (O) and player 1 (X)
	Boards      int           // Starting board count, negative to ask during setup
	TurnTimeout time.Duration // Per-turn timeout, negative to ask during setup
	ResultPause time.Duration // Pause after a board concludes
}

// DefaultConfig returns a configuration that asks for everything during setup.
func DefaultConfig() MatchConfig {
	return MatchConfig{
		PlayerNames: [2]string{"Player 1", "Player 2"},
		Boards:      -1,
		TurnTimeout: -1,
		ResultPause: 3 * time.Second,
	}
}
