// Package types contains shared data structures for termtactoe.
package types

import "strings"

// Mark is the content of a single cell.
type Mark int

const (
	Empty  Mark = iota
	Circle      // player 0
	Cross       // player 1
)

// MarkFor returns the mark placed by the player at the given index (0 or 1).
func MarkFor(player int) Mark {
	if player == 0 {
		return Circle
	}
	return Cross
}

// Glyph returns the plain text glyph for the mark.
func (m Mark) Glyph() rune {
	switch m {
	case Circle:
		return 'O'
	case Cross:
		return 'X'
	default:
		return '-'
	}
}

// StatusKind describes how far a board has progressed.
type StatusKind int

const (
	InProgress StatusKind = iota
	Won
	Tied
	Forfeited
)

func (k StatusKind) String() string {
	switch k {
	case Won:
		return "won"
	case Tied:
		return "tied"
	case Forfeited:
		return "forfeited"
	default:
		return "in_progress"
	}
}

// Status is the completion state of a board. Player is the index of the
// winning or forfeiting player and is meaningless for InProgress and Tied.
type Status struct {
	Kind   StatusKind `json:"kind"`
	Player int        `json:"player"`
}

// Terminal returns true once the board can no longer change.
func (s Status) Terminal() bool {
	return s.Kind != InProgress
}

const ReasonNotCompleted = "Not Completed"

// BoardState is a read-only snapshot of a board for rendering.
// Cells are indexed row-major, 0 is the top left cell.
type BoardState struct {
	ID        int     `json:"id"`
	Cells     [9]Mark `json:"cells"`
	Highlight [9]bool `json:"highlight"`
	Status    Status  `json:"status"`
	Reason    string  `json:"reason"`
}

// Finished returns true if the board is won, tied or forfeited.
func (b *BoardState) Finished() bool {
	return b.Status.Terminal()
}

// Rows returns the three grid rows as pipe-separated glyphs, e.g. "O|X|-".
func (b *BoardState) Rows() []string {
	rows := make([]string, 0, 3)
	for r := 0; r < 3; r++ {
		var sb strings.Builder
		for c := 0; c < 3; c++ {
			if c > 0 {
				sb.WriteByte('|')
			}
			sb.WriteRune(b.Cells[r*3+c].Glyph())
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// PlayerState is a snapshot of a player.
type PlayerState struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Winner is the outcome of a round, decided on total scores.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerCircle
	WinnerCross
)

// Phase tells a frontend what part of the match it is rendering.
type Phase int

const (
	PhaseTurn Phase = iota
	PhaseBoardDone
	PhaseRoundComplete
	PhaseTerminated
	PhaseSetupDone // boards created, play about to start
)

// MatchState is everything a frontend needs to draw the match.
type MatchState struct {
	Phase      Phase
	Board      *BoardState // nil outside of PhaseTurn and PhaseBoardDone
	Scoreboard []BoardState
	Players    [2]PlayerState
	Acting     int
	Headline   string
	Summary    string
}

// Keys the engine understands besides the digits 1-9.
const (
	KeyNone    rune = 0 // no key within the turn timeout
	KeyForfeit rune = 'f'
	KeyQuit    rune = 'q'
)
