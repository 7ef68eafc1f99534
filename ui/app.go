package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termtactoe/config"
	"termtactoe/types"
)

// ErrClosed is returned once the application has stopped.
var ErrClosed = errors.New("ui closed")

// TUI is a full-screen frontend implementing engine.Terminal. Run must be
// called from the main goroutine while the match is played from another one.
type TUI struct {
	app    *tview.Application
	board  *BoardView
	panel  *ScorePanel
	status *tview.TextView
	prompt *SetupPrompt
	colors Colors

	keys  chan rune
	lines chan string

	done      chan struct{}
	closeOnce sync.Once
	finished  atomic.Bool
	interrupt func()

	queue func(func()) // runs UI changes on the application goroutine
}

// NewTUI builds the application. interrupt is called on Ctrl-C while the
// match is still running.
func NewTUI(cfg *config.Config, interrupt func()) *TUI {
	colors := NewColors(cfg.Theme)
	t := &TUI{
		app:       tview.NewApplication(),
		board:     NewBoardView(cfg.Theme, colors),
		panel:     NewScorePanel(colors),
		status:    tview.NewTextView(),
		colors:    colors,
		keys:      make(chan rune, 1),
		lines:     make(chan string, 1),
		done:      make(chan struct{}),
		interrupt: interrupt,
	}
	t.prompt = NewSetupPrompt(colors, t.submitLine)
	t.queue = func(f func()) { t.app.QueueUpdateDraw(f) }

	t.status.SetDynamicColors(true)
	t.status.SetBorder(true)
	t.status.SetBorderPadding(0, 0, 1, 1)
	t.status.SetTitle(" Status ")
	t.status.SetTitleAlign(tview.AlignLeft)

	t.board.SetInputCapture(t.captureKey)

	boardCol := tview.NewFlex().SetDirection(tview.FlexRow)
	boardCol.AddItem(t.board, boardViewHeight, 0, true)
	boardCol.AddItem(nil, 0, 1, false)

	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(boardCol, boardViewWidth, 0, true)
	boardRow.AddItem(nil, 2, 0, false)
	boardRow.AddItem(t.panel.Box(), 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow)
	layout.AddItem(boardRow, 0, 1, true)
	layout.AddItem(t.status, 4, 0, false)
	layout.AddItem(t.prompt.Field(), 1, 0, false)
	layout.SetBorder(true).SetTitle(" termtactoe ")

	t.app.SetRoot(layout, true)
	t.app.SetInputCapture(t.captureGlobal)
	return t
}

// Run shows the application and blocks until it stops.
func (t *TUI) Run() error {
	defer t.close()
	return t.app.Run()
}

// Stop closes the application.
func (t *TUI) Stop() {
	t.app.Stop()
	t.close()
}

// Finish tells the players the match is over. The next key press closes the
// application.
func (t *TUI) Finish() {
	t.finished.Store(true)
	_ = t.update(func() {
		t.status.SetText(t.status.GetText(false) + "\n" + tag(t.colors.Hint) + "Press any key to exit[-]")
		t.app.SetFocus(t.board)
	})
}

func (t *TUI) ReadKey(ctx context.Context, prompt string, timeout time.Duration) (rune, error) {
	if err := t.update(func() {
		t.status.SetText(tview.Escape(prompt))
		t.app.SetFocus(t.board)
	}); err != nil {
		return types.KeyNone, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case key := <-t.keys:
		return key, nil
	case <-timer.C:
		return types.KeyNone, nil
	case <-ctx.Done():
		return types.KeyNone, ctx.Err()
	case <-t.done:
		return types.KeyNone, ErrClosed
	}
}

func (t *TUI) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := t.update(func() {
		t.prompt.Ask(prompt)
		t.app.SetFocus(t.prompt.Field())
	}); err != nil {
		return "", err
	}

	select {
	case line := <-t.lines:
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.done:
		return "", ErrClosed
	}
}

func (t *TUI) Render(state types.MatchState) error {
	return t.update(func() {
		t.board.SetState(state.Board)
		t.panel.SetState(state)
		t.status.SetText(statusText(state))
	})
}

// statusText is the status box content for a state, before any prompt.
func statusText(state types.MatchState) string {
	switch state.Phase {
	case types.PhaseTurn:
		return fmt.Sprintf("%s to move", tview.Escape(state.Players[state.Acting].Name))
	case types.PhaseBoardDone:
		if state.Board == nil {
			return ""
		}
		return fmt.Sprintf("[yellow]Board %d: %s[-]", state.Board.ID, tview.Escape(state.Board.Reason))
	default:
		return fmt.Sprintf("[white::b]%s[-:-:-]\n%s", tview.Escape(state.Headline), tview.Escape(state.Summary))
	}
}

func (t *TUI) captureGlobal(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() != tcell.KeyCtrlC {
		return event
	}
	if t.finished.Load() || t.interrupt == nil {
		t.app.Stop()
	} else {
		t.interrupt()
	}
	return nil
}

// captureKey forwards board key presses to a pending or upcoming ReadKey.
// Keys other than runes count as an unknown key.
func (t *TUI) captureKey(event *tcell.EventKey) *tcell.EventKey {
	if t.finished.Load() {
		t.app.Stop()
		return nil
	}
	key := types.KeyNone
	if event.Key() == tcell.KeyRune {
		key = event.Rune()
	}
	select {
	case t.keys <- key:
	default:
	}
	return nil
}

func (t *TUI) submitLine(text string) {
	select {
	case t.lines <- text:
	default:
	}
}

// update runs f on the application goroutine and redraws. Queueing blocks
// until the event loop picks f up, so the wait also ends when the
// application stops or never starts.
func (t *TUI) update(f func()) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	applied := make(chan struct{})
	go func() {
		t.queue(f)
		close(applied)
	}()
	select {
	case <-applied:
		return nil
	case <-t.done:
		return ErrClosed
	}
}

func (t *TUI) close() {
	t.closeOnce.Do(func() { close(t.done) })
}
