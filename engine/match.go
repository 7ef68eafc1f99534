package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"termtactoe/types"
)

const (
	HeadlineCompleted  = "-=-=-=-=- All Boards Have Been Completed! -=-=-=-=-"
	HeadlineTerminated = "Game Terminated"

	boardsSetFormat = "Number of boards set to: %d"
)

// State is the lifecycle stage of a match.
type State int

const (
	StateSetup State = iota
	StateRoundInProgress
	StateRoundComplete
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateSetup:
		return "setup"
	case StateRoundInProgress:
		return "round_in_progress"
	case StateRoundComplete:
		return "round_complete"
	default:
		return "terminated"
	}
}

// Result describes how a match ended.
type Result struct {
	Winner  types.Winner
	Summary string
	Quit    bool
	Boards  []types.BoardState
	Players [2]types.PlayerState
}

// Match owns the boards and players for one run and drives play across every
// active board until none remain.
type Match struct {
	log     *slog.Logger
	term    Terminal
	rng     Rand
	cfg     MatchConfig
	players [2]*Player
	boards  []*Board
	active  []int // ids of boards still in progress, in play order
	timeout time.Duration
	state   State
	winner  types.Winner
	quit    bool
}

// NewMatch creates a match in the setup state.
func NewMatch(logger *slog.Logger, term Terminal, rng Rand, cfg MatchConfig) *Match {
	defaults := DefaultConfig()
	for i, name := range cfg.PlayerNames {
		if name == "" {
			cfg.PlayerNames[i] = defaults.PlayerNames[i]
		}
	}
	if cfg.ResultPause < 0 {
		cfg.ResultPause = 0
	}

	return &Match{
		log:     logger.With("component", "match", "match", cfg.ID),
		term:    term,
		rng:     rng,
		cfg:     cfg,
		players: [2]*Player{NewPlayer(cfg.PlayerNames[0]), NewPlayer(cfg.PlayerNames[1])},
		state:   StateSetup,
	}
}

// Setup collects the board count and turn timeout, unless preset in the
// config, and creates the starting boards. It does nothing after setup.
func (m *Match) Setup(ctx context.Context) error {
	if m.state != StateSetup {
		return nil
	}

	count := m.cfg.Boards
	if count < 0 {
		var err error
		if count, err = m.askBoardCount(ctx); err != nil {
			return err
		}
	}
	count = NormalizeBoardCount(count)

	m.timeout = m.cfg.TurnTimeout
	if m.timeout < 0 {
		var err error
		if m.timeout, err = m.askTurnTimeout(ctx); err != nil {
			return err
		}
	}
	m.timeout = NormalizeTurnTimeout(m.timeout)

	for i := 0; i < count; i++ {
		m.addBoard()
	}
	m.state = StateRoundInProgress
	m.log.Info("Match set up", "boards", count, "turn_timeout", m.timeout)
	return m.render(types.PhaseSetupDone, nil, 0, fmt.Sprintf(boardsSetFormat, count), "")
}

// Run plays the match to its end. Errors come only from the terminal and are fatal.
func (m *Match) Run(ctx context.Context) (Result, error) {
	if err := m.Setup(ctx); err != nil {
		return Result{}, err
	}

	for m.state != StateTerminated {
		if ctx.Err() != nil {
			if err := m.requestQuit(); err != nil {
				return Result{}, err
			}
			break
		}

		var err error
		switch m.state {
		case StateRoundInProgress:
			err = m.playRound(ctx)
		case StateRoundComplete:
			err = m.completeRound(ctx)
		}
		if err != nil {
			return Result{}, err
		}
	}
	return m.result(), nil
}

// playRound sweeps the active boards until every one of them is finished.
func (m *Match) playRound(ctx context.Context) error {
	for len(m.active) > 0 {
		for _, id := range slices.Clone(m.active) {
			b := m.board(id)
			if b.Finished() {
				continue
			}
			if err := m.playTurnPair(ctx, b); err != nil {
				return err
			}
			if m.state == StateTerminated {
				return nil
			}
			if len(m.active) == 0 {
				break
			}
		}
	}
	m.state = StateRoundComplete
	return nil
}

type actionKind int

const (
	actionMove actionKind = iota
	actionForfeit
	actionQuit
)

type action struct {
	kind actionKind
	cell int
}

// playTurnPair gives player 0 and then player 1 one move on the board.
// The pair ends early when the board concludes or a player quits.
func (m *Match) playTurnPair(ctx context.Context, b *Board) error {
	for p, player := range m.players {
		if ctx.Err() != nil {
			return m.requestQuit()
		}
		if err := m.render(types.PhaseTurn, b, p, "", ""); err != nil {
			return err
		}

		act, err := m.nextAction(ctx, b, p)
		if err != nil {
			return err
		}

		switch act.kind {
		case actionQuit:
			m.log.Info("Player quit", "player", player.Name(), "board", b.ID())
			return m.requestQuit()
		case actionForfeit:
			b.Forfeit(p, player.Name())
			m.log.Info("Board forfeited", "board", b.ID(), "player", player.Name())
			return m.concludeBoard(ctx, b, p)
		}

		if err := b.ApplyMove(act.cell, p); err != nil {
			// Only reachable if the completion checks were skipped; the board is unchanged.
			m.log.Error("Move rejected", "board", b.ID(), "player", player.Name(), "error", err)
			continue
		}
		m.log.Debug("Move applied", "board", b.ID(), "player", player.Name(), "cell", act.cell)

		b.CheckCompletion(p, player.Name())
		if b.Finished() {
			if w, ok := b.Winner(); ok {
				m.players[w].AddPoint()
			}
			m.log.Info("Board completed", "board", b.ID(), "status", b.Status().Kind.String(), "reason", b.Reason())
			return m.concludeBoard(ctx, b, p)
		}
	}

	if len(m.active) > 1 {
		if err := m.render(types.PhaseTurn, b, 1, "", ""); err != nil {
			return err
		}
		pause(ctx, m.cfg.ResultPause)
	}
	return nil
}

// nextAction decides what the acting player does on the board. The first
// move of every board is always placed at random.
func (m *Match) nextAction(ctx context.Context, b *Board, p int) (action, error) {
	if b.IsFirstMove() {
		return action{kind: actionMove, cell: AutoCell}, nil
	}

	prompt := fmt.Sprintf("%s Please make your move (1-9): ", m.players[p].Name())
	key, err := m.term.ReadKey(ctx, prompt, m.timeout)
	if err != nil {
		if ctx.Err() != nil {
			return action{kind: actionQuit}, nil
		}
		return action{}, fmt.Errorf("read move: %w", err)
	}
	return resolveKey(key, b), nil
}

// resolveKey maps a key press to an action. Digits select a cell when it is
// empty; an occupied cell, an unknown key or a timeout become a random move.
func resolveKey(key rune, b *Board) action {
	switch {
	case key >= '1' && key <= '9':
		if cell := int(key - '1'); b.IsEmpty(cell) {
			return action{kind: actionMove, cell: cell}
		}
	case key == types.KeyForfeit:
		return action{kind: actionForfeit}
	case key == types.KeyQuit:
		return action{kind: actionQuit}
	}
	return action{kind: actionMove, cell: AutoCell}
}

// concludeBoard removes a finished board from play and shows it for a moment.
func (m *Match) concludeBoard(ctx context.Context, b *Board, p int) error {
	m.deactivate(b.ID())
	if err := m.render(types.PhaseBoardDone, b, p, "", ""); err != nil {
		return err
	}
	pause(ctx, m.cfg.ResultPause)
	return nil
}

// completeRound decides the winner once no board is active. A tie lets the
// players continue with one more board.
func (m *Match) completeRound(ctx context.Context) error {
	m.winner = m.decideWinner()
	m.log.Info("Round complete", "winner", m.winnerName(), "scores", []int{m.players[0].Score(), m.players[1].Score()})

	if m.winner != types.WinnerNone {
		return m.terminate(HeadlineCompleted)
	}

	if err := m.render(types.PhaseRoundComplete, nil, 0, HeadlineCompleted, m.summary()); err != nil {
		return err
	}
	answer, err := m.term.ReadLine(ctx, promptContinue)
	if err != nil {
		if ctx.Err() != nil {
			return m.requestQuit()
		}
		return fmt.Errorf("read continue answer: %w", err)
	}
	if !isAffirmative(answer) {
		return m.terminate(HeadlineTerminated)
	}

	b := m.addBoard()
	m.log.Info("Tie-breaker board added", "board", b.ID())
	m.state = StateRoundInProgress
	return nil
}

func (m *Match) requestQuit() error {
	m.quit = true
	return m.terminate(HeadlineTerminated)
}

func (m *Match) terminate(headline string) error {
	m.state = StateTerminated
	m.winner = m.decideWinner()
	m.log.Info("Match terminated", "quit", m.quit, "summary", m.summary())
	return m.render(types.PhaseTerminated, nil, 0, headline, m.summary())
}

func (m *Match) decideWinner() types.Winner {
	switch s0, s1 := m.players[0].Score(), m.players[1].Score(); {
	case s0 > s1:
		return types.WinnerCircle
	case s1 > s0:
		return types.WinnerCross
	default:
		return types.WinnerNone
	}
}

func (m *Match) winnerName() string {
	switch m.winner {
	case types.WinnerCircle:
		return m.players[0].Name()
	case types.WinnerCross:
		return m.players[1].Name()
	default:
		return ""
	}
}

// summary is the final line shown to the players.
func (m *Match) summary() string {
	winner, other := m.players[0], m.players[1]
	switch m.winner {
	case types.WinnerCross:
		winner, other = other, winner
	case types.WinnerNone:
		return fmt.Sprintf("The game ended in a tie of %d points", winner.Score())
	}
	return fmt.Sprintf("%s has won with %d points, compared to %s's %d points",
		winner.Name(), winner.Score(), other.Name(), other.Score())
}

func (m *Match) addBoard() *Board {
	b := NewBoard(len(m.boards)+1, m.rng)
	m.boards = append(m.boards, b)
	m.active = append(m.active, b.ID())
	return b
}

func (m *Match) board(id int) *Board {
	return m.boards[id-1]
}

// deactivate removes the board id from the active set. It is a no-op for an
// id that is not active, so a board can only be removed once.
func (m *Match) deactivate(id int) {
	if i := slices.Index(m.active, id); i >= 0 {
		m.active = slices.Delete(m.active, i, i+1)
	}
}

func (m *Match) render(phase types.Phase, b *Board, acting int, headline, summary string) error {
	state := types.MatchState{
		Phase:      phase,
		Scoreboard: m.Boards(),
		Players:    m.Players(),
		Acting:     acting,
		Headline:   headline,
		Summary:    summary,
	}
	if b != nil {
		bs := b.State()
		state.Board = &bs
	}
	if err := m.term.Render(state); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func (m *Match) result() Result {
	return Result{
		Winner:  m.winner,
		Summary: m.summary(),
		Quit:    m.quit,
		Boards:  m.Boards(),
		Players: m.Players(),
	}
}

// State returns the lifecycle stage of the match.
func (m *Match) State() State {
	return m.state
}

// Boards returns a snapshot of every board created so far, in creation order.
func (m *Match) Boards() []types.BoardState {
	states := make([]types.BoardState, 0, len(m.boards))
	for _, b := range m.boards {
		states = append(states, b.State())
	}
	return states
}

// ActiveBoardIDs returns the ids of the boards still in play.
func (m *Match) ActiveBoardIDs() []int {
	return slices.Clone(m.active)
}

func (m *Match) Players() [2]types.PlayerState {
	return [2]types.PlayerState{m.players[0].State(), m.players[1].State()}
}

// TurnTimeout returns the normalized per-turn timeout, valid after Setup.
func (m *Match) TurnTimeout() time.Duration {
	return m.timeout
}

// Winner returns the round winner decided when the last board concluded.
func (m *Match) Winner() types.Winner {
	return m.winner
}

// pause waits for d unless the context ends first.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
