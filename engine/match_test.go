package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termtactoe/types"
)

// fakeTerminal replays scripted lines and keys and records what the match shows.
// Once the keys run out every read times out, which makes the match auto-play.
type fakeTerminal struct {
	lines    []string
	keys     []rune
	prompts  []string
	timeouts []time.Duration
	renders  []types.MatchState
	keyErr   error
	onRender func(types.MatchState)
}

func (f *fakeTerminal) ReadLine(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeTerminal) ReadKey(_ context.Context, prompt string, timeout time.Duration) (rune, error) {
	f.prompts = append(f.prompts, prompt)
	f.timeouts = append(f.timeouts, timeout)
	if f.keyErr != nil {
		return 0, f.keyErr
	}
	if len(f.keys) == 0 {
		return types.KeyNone, nil
	}
	key := f.keys[0]
	f.keys = f.keys[1:]
	return key, nil
}

func (f *fakeTerminal) Render(state types.MatchState) error {
	f.renders = append(f.renders, state)
	if f.onRender != nil {
		f.onRender(state)
	}
	return nil
}

func (f *fakeTerminal) last() types.MatchState {
	return f.renders[len(f.renders)-1]
}

func newTestMatch(term Terminal, boards int, timeout time.Duration) *Match {
	cfg := DefaultConfig()
	cfg.ID = "test"
	cfg.Boards = boards
	cfg.TurnTimeout = timeout
	cfg.ResultPause = 0
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMatch(logger, term, lowestRand{}, cfg)
}

func TestMatch_Setup(t *testing.T) {
	t.Run("Zero boards and zero timeout are normalized", func(t *testing.T) {
		// Given: players answer "0" to both setup prompts
		term := &fakeTerminal{lines: []string{"0", "0"}}
		m := newTestMatch(term, -1, -1)

		// When: the match is set up
		require.NoError(t, m.Setup(context.Background()))

		// Then: one board is active and the timeout is the infinite sentinel
		assert.Len(t, m.Boards(), 1)
		assert.Equal(t, []int{1}, m.ActiveBoardIDs())
		assert.Equal(t, InfiniteTimeout, m.TurnTimeout())
		assert.Equal(t, StateRoundInProgress, m.State())
		assert.Equal(t, []string{promptBoards, promptTimeout}, term.prompts)

		// Then: the board count is confirmed on screen
		require.Len(t, term.renders, 1)
		assert.Equal(t, types.PhaseSetupDone, term.renders[0].Phase)
		assert.Equal(t, "Number of boards set to: 1", term.renders[0].Headline)
		assert.Len(t, term.renders[0].Scoreboard, 1)
	})

	t.Run("Malformed input is asked again", func(t *testing.T) {
		term := &fakeTerminal{lines: []string{"abc", "-4", "3", "soon", "-1", "15"}}
		m := newTestMatch(term, -1, -1)

		require.NoError(t, m.Setup(context.Background()))

		assert.Equal(t, []string{
			promptBoards, retryBoards, retryBoards,
			promptTimeout, retryTimeout, retryTimeout,
		}, term.prompts)
		assert.Equal(t, []int{1, 2, 3}, m.ActiveBoardIDs())
		assert.Equal(t, 15*time.Second, m.TurnTimeout())
		for i, b := range m.Boards() {
			assert.Equal(t, i+1, b.ID)
			assert.Equal(t, types.InProgress, b.Status.Kind)
		}
	})

	t.Run("Presets skip the prompts", func(t *testing.T) {
		term := &fakeTerminal{}
		m := newTestMatch(term, 0, 0)

		require.NoError(t, m.Setup(context.Background()))

		assert.Empty(t, term.prompts)
		assert.Len(t, m.Boards(), 1)
		assert.Equal(t, InfiniteTimeout, m.TurnTimeout())
	})

	t.Run("Terminal failure aborts setup", func(t *testing.T) {
		term := &fakeTerminal{}
		m := newTestMatch(term, -1, -1)

		err := m.Setup(context.Background())

		require.ErrorIs(t, err, io.EOF)
		assert.Equal(t, StateSetup, m.State())
	})
}

func TestMatch_Run(t *testing.T) {
	t.Run("Player 1 wins the only board", func(t *testing.T) {
		// Given: one board; player 0's forced first move lands on cell 1,
		// then the players alternate 4, 2, 5, 3
		term := &fakeTerminal{
			lines: []string{"1", "0"},
			keys:  []rune{'4', '2', '5', '3'},
		}
		m := newTestMatch(term, -1, -1)

		// When: the match is played
		res, err := m.Run(context.Background())
		require.NoError(t, err)

		// Then: player 0 won the board and the match
		boards := m.Boards()
		require.Len(t, boards, 1)
		assert.Equal(t, types.Status{Kind: types.Won, Player: 0}, boards[0].Status)
		assert.Equal(t, "Won by Player 1", boards[0].Reason)
		assert.Equal(t, [9]bool{true, true, true}, boards[0].Highlight)
		assert.Empty(t, m.ActiveBoardIDs())
		assert.Equal(t, 1, res.Players[0].Score)
		assert.Equal(t, 0, res.Players[1].Score)
		assert.Equal(t, types.WinnerCircle, res.Winner)
		assert.Equal(t, res.Winner, m.Winner())
		assert.False(t, res.Quit)
		assert.Equal(t, "Player 1 has won with 1 points, compared to Player 2's 0 points", res.Summary)
		assert.Equal(t, StateTerminated, m.State())

		// Then: the final screen carries the summary and the full scoreboard
		final := term.last()
		assert.Equal(t, types.PhaseTerminated, final.Phase)
		assert.Equal(t, HeadlineCompleted, final.Headline)
		assert.Equal(t, res.Summary, final.Summary)
		assert.Len(t, final.Scoreboard, 1)

		// Then: every key read used the infinite timeout and named the acting player
		for _, d := range term.timeouts {
			assert.Equal(t, InfiniteTimeout, d)
		}
		assert.Contains(t, term.prompts, "Player 2 Please make your move (1-9): ")
		assert.Contains(t, term.prompts, "Player 1 Please make your move (1-9): ")
	})

	t.Run("Player 2 wins and the summary names them first", func(t *testing.T) {
		// O takes 1 (forced), 4 and 9; X takes 2, 5 and 8 for the middle column
		term := &fakeTerminal{keys: []rune{'2', '4', '5', '9', '8'}}
		m := newTestMatch(term, 1, 0)

		res, err := m.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, types.WinnerCross, res.Winner)
		assert.Equal(t, "Player 2 has won with 1 points, compared to Player 1's 0 points", res.Summary)
		assert.Equal(t, "Won by Player 2", res.Boards[0].Reason)
	})

	t.Run("Forfeited board leaves play while the other board continues", func(t *testing.T) {
		// Given: two boards; player 1 forfeits board 1 on their first turn
		term := &fakeTerminal{keys: []rune{'f', '4', '2', '5', '3'}}
		m := newTestMatch(term, 2, 0)

		var activeAfterForfeit []int
		var otherAfterForfeit types.BoardState
		term.onRender = func(s types.MatchState) {
			if s.Phase == types.PhaseBoardDone && s.Board.ID == 1 {
				activeAfterForfeit = m.ActiveBoardIDs()
				otherAfterForfeit = s.Scoreboard[1]
			}
		}

		// When: the match is played
		res, err := m.Run(context.Background())
		require.NoError(t, err)

		// Then: board 1 was forfeited by player 1 and removed immediately
		assert.Equal(t, []int{2}, activeAfterForfeit)
		assert.Equal(t, types.Status{Kind: types.Forfeited, Player: 1}, res.Boards[0].Status)
		assert.Equal(t, "Forfeited by Player 2", res.Boards[0].Reason)

		// Then: board 2 was untouched at that moment and was played out afterwards
		assert.Equal(t, types.InProgress, otherAfterForfeit.Status.Kind)
		assert.Equal(t, [9]types.Mark{}, otherAfterForfeit.Cells)
		assert.Equal(t, types.Won, res.Boards[1].Status.Kind)

		// Then: the forfeit scored nothing
		assert.Equal(t, 1, res.Players[0].Score)
		assert.Equal(t, 0, res.Players[1].Score)
	})

	t.Run("Quit ends the match at once", func(t *testing.T) {
		// Given: two boards; board 1 is forfeited, then player 0 quits mid-turn on board 2
		term := &fakeTerminal{keys: []rune{'f', '4', 'q'}}
		m := newTestMatch(term, 2, 0)

		// When: the match is played
		res, err := m.Run(context.Background())
		require.NoError(t, err)

		// Then: the match is terminated with no score changes and board 2 unfinished
		assert.True(t, res.Quit)
		assert.Equal(t, StateTerminated, m.State())
		assert.Equal(t, 0, res.Players[0].Score)
		assert.Equal(t, 0, res.Players[1].Score)
		assert.Equal(t, types.InProgress, res.Boards[1].Status.Kind)
		assert.Equal(t, []int{2}, m.ActiveBoardIDs())
		assert.Equal(t, types.WinnerNone, res.Winner)
		assert.NotContains(t, term.prompts, promptContinue)

		final := term.last()
		assert.Equal(t, types.PhaseTerminated, final.Phase)
		assert.Equal(t, HeadlineTerminated, final.Headline)
		assert.Equal(t, "The game ended in a tie of 0 points", final.Summary)
	})

	t.Run("Digit on an occupied cell becomes a random move", func(t *testing.T) {
		// Given: player 0's forced move took cell 1; player 1 presses 1 anyway
		term := &fakeTerminal{keys: []rune{'1', 'q'}}
		m := newTestMatch(term, 1, 0)

		_, err := m.Run(context.Background())
		require.NoError(t, err)

		// Then: player 1 was given the lowest empty cell instead
		cells := m.Boards()[0].Cells
		assert.Equal(t, types.Circle, cells[0])
		assert.Equal(t, types.Cross, cells[1])
	})

	t.Run("Unknown keys and timeouts become random moves", func(t *testing.T) {
		term := &fakeTerminal{keys: []rune{'z', types.KeyNone, 'q'}}
		m := newTestMatch(term, 1, 0)

		_, err := m.Run(context.Background())
		require.NoError(t, err)

		cells := m.Boards()[0].Cells
		assert.Equal(t, [9]types.Mark{types.Circle, types.Cross, types.Circle}, cells)
	})

	t.Run("Tie offers one more board", func(t *testing.T) {
		// Given: the first board ends tied and the players agree to continue
		term := &fakeTerminal{
			lines: []string{"1", "5", "Yes"},
			keys: []rune{
				'2', '3', '5', '4', '6', '8', '7', '9', // tie: OXO/OXX/XOO
				'4', '2', '5', '3', // player 0 takes the top row of board 2
			},
		}
		m := newTestMatch(term, -1, -1)

		// When: the match is played
		res, err := m.Run(context.Background())
		require.NoError(t, err)

		// Then: board 1 tied, board 2 was appended and won by player 0
		require.Len(t, res.Boards, 2)
		assert.Equal(t, types.Tied, res.Boards[0].Status.Kind)
		assert.Equal(t, "Tied", res.Boards[0].Reason)
		assert.Equal(t, 2, res.Boards[1].ID)
		assert.Equal(t, "Won by Player 1", res.Boards[1].Reason)
		assert.Equal(t, types.WinnerCircle, res.Winner)
		assert.Contains(t, term.prompts, promptContinue)
		assert.Equal(t, 5*time.Second, term.timeouts[0])

		var sawRoundComplete bool
		for _, r := range term.renders {
			if r.Phase == types.PhaseRoundComplete {
				sawRoundComplete = true
				assert.Equal(t, "The game ended in a tie of 0 points", r.Summary)
			}
		}
		assert.True(t, sawRoundComplete)
	})

	t.Run("Declining after a tie terminates", func(t *testing.T) {
		term := &fakeTerminal{
			lines: []string{"nope"},
			keys:  []rune{'2', '3', '5', '4', '6', '8', '7', '9'},
		}
		m := newTestMatch(term, 1, 0)

		res, err := m.Run(context.Background())
		require.NoError(t, err)

		assert.Len(t, res.Boards, 1)
		assert.Equal(t, types.WinnerNone, res.Winner)
		assert.False(t, res.Quit)
		assert.Equal(t, "The game ended in a tie of 0 points", res.Summary)
		assert.Equal(t, HeadlineTerminated, term.last().Headline)
	})

	t.Run("Cancelled context quits", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		term := &fakeTerminal{keys: []rune{'5'}}
		m := newTestMatch(term, 2, 0)
		term.onRender = func(s types.MatchState) {
			if s.Board != nil && !s.Board.Finished() && s.Board.Cells[4] != types.Empty {
				cancel()
			}
		}

		res, err := m.Run(ctx)
		require.NoError(t, err)

		assert.True(t, res.Quit)
		assert.Equal(t, types.InProgress, res.Boards[0].Status.Kind)
	})

	t.Run("Terminal failure is returned", func(t *testing.T) {
		broken := errors.New("tty gone")
		term := &fakeTerminal{keyErr: broken}
		m := newTestMatch(term, 1, 0)

		_, err := m.Run(context.Background())

		require.ErrorIs(t, err, broken)
	})

	t.Run("Boards pause between each other when several are active", func(t *testing.T) {
		term := &fakeTerminal{keys: []rune{'5', 'q'}}
		m := newTestMatch(term, 2, 0)

		_, err := m.Run(context.Background())
		require.NoError(t, err)

		// setup; board 1: render p0, render p1, render after the pair; board 2: render p0
		require.GreaterOrEqual(t, len(term.renders), 5)
		assert.Equal(t, 1, term.renders[3].Board.ID)
		assert.Equal(t, 2, term.renders[4].Board.ID)
	})
}
