package engine

import (
	"fmt"
	"strings"

	"termtactoe/types"
)

// AutoCell asks ApplyMove to pick a random empty cell.
const AutoCell = -1

// winLines are the three rows, three columns and two diagonals.
var winLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a single 3x3 grid. Its status becomes terminal exactly once.
type Board struct {
	id        int
	cells     [9]types.Mark
	highlight [9]bool
	status    types.Status
	reason    string
	rng       Rand
}

// NewBoard creates an empty board. rng picks the cell for automatic moves.
func NewBoard(id int, rng Rand) *Board {
	return &Board{
		id:     id,
		reason: types.ReasonNotCompleted,
		rng:    rng,
	}
}

func (b *Board) ID() int {
	return b.id
}

func (b *Board) Status() types.Status {
	return b.status
}

// Finished returns true once the board is won, tied or forfeited.
func (b *Board) Finished() bool {
	return b.status.Terminal()
}

// Winner returns the index of the player who won the board, if any.
func (b *Board) Winner() (int, bool) {
	if b.status.Kind != types.Won {
		return 0, false
	}
	return b.status.Player, true
}

// Cell returns the mark at index i (0-8, row-major).
func (b *Board) Cell(i int) types.Mark {
	return b.cells[i]
}

// IsEmpty reports whether i is a valid index holding no mark.
func (b *Board) IsEmpty(i int) bool {
	return i >= 0 && i < len(b.cells) && b.cells[i] == types.Empty
}

// IsFirstMove returns true while no cell has been played.
func (b *Board) IsFirstMove() bool {
	for _, c := range b.cells {
		if c != types.Empty {
			return false
		}
	}
	return true
}

// ApplyMove places the player's mark on cell, or on a random empty cell when
// cell is AutoCell. The board is left unchanged when an error is returned.
func (b *Board) ApplyMove(cell, player int) error {
	if b.Finished() {
		return fmt.Errorf("%w: board %d", ErrBoardFinished, b.id)
	}
	if player != 0 && player != 1 {
		return fmt.Errorf("%w: player %d", ErrIllegalMove, player)
	}

	if cell == AutoCell {
		var err error
		if cell, err = b.randomEmptyCell(); err != nil {
			return err
		}
	}

	if cell < 0 || cell >= len(b.cells) {
		return fmt.Errorf("%w: cell %d out of range", ErrIllegalMove, cell)
	}
	if b.cells[cell] != types.Empty {
		return fmt.Errorf("%w: cell %d is occupied", ErrIllegalMove, cell)
	}

	b.cells[cell] = types.MarkFor(player)
	return nil
}

func (b *Board) randomEmptyCell() (int, error) {
	empty := make([]int, 0, len(b.cells))
	for i, c := range b.cells {
		if c == types.Empty {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return 0, fmt.Errorf("%w: board %d", ErrNoEmptyCells, b.id)
	}
	return empty[b.rng.Intn(len(empty))], nil
}

// CheckCompletion marks the board won when the player owns a full line,
// or tied when every cell is filled. Winning takes priority over a tie.
func (b *Board) CheckCompletion(player int, name string) {
	if b.Finished() {
		return
	}

	mark := types.MarkFor(player)
	for _, line := range winLines {
		if b.cells[line[0]] == mark && b.cells[line[1]] == mark && b.cells[line[2]] == mark {
			b.status = types.Status{Kind: types.Won, Player: player}
			b.reason = fmt.Sprintf("Won by %s", name)
			for _, i := range line {
				b.highlight[i] = true
			}
			return
		}
	}

	for _, c := range b.cells {
		if c == types.Empty {
			return
		}
	}
	b.status = types.Status{Kind: types.Tied}
	b.reason = "Tied"
}

// Forfeit concedes the board on behalf of the player, whatever its progress.
func (b *Board) Forfeit(player int, name string) {
	if b.Finished() {
		return
	}
	b.status = types.Status{Kind: types.Forfeited, Player: player}
	b.reason = fmt.Sprintf("Forfeited by %s", name)
}

// Reason returns the completion reason shown on the scoreboard.
func (b *Board) Reason() string {
	return b.reason
}

// State returns a snapshot of the board.
func (b *Board) State() types.BoardState {
	return types.BoardState{
		ID:        b.id,
		Cells:     b.cells,
		Highlight: b.highlight,
		Status:    b.status,
		Reason:    b.reason,
	}
}

func (b *Board) String() string {
	state := b.State()
	return strings.Join(state.Rows(), "\n")
}
