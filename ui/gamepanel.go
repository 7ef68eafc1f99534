package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"termtactoe/types"
)

const panelRule = "[dimgray]──────────────────────[-:-:-]\n"

// ScorePanel displays the players' scores and the leaderboard alongside the board.
type ScorePanel struct {
	box    *tview.TextView
	colors Colors
}

// NewScorePanel creates a new score panel.
func NewScorePanel(colors Colors) *ScorePanel {
	panel := &ScorePanel{
		box:    tview.NewTextView(),
		colors: colors,
	}

	panel.box.SetDynamicColors(true)
	panel.box.SetBorder(false)
	panel.box.SetTextAlign(tview.AlignLeft)

	return panel
}

// Box returns the underlying tview component.
func (p *ScorePanel) Box() *tview.TextView {
	return p.box
}

// SetState updates the panel with the current match state.
func (p *ScorePanel) SetState(state types.MatchState) {
	var text strings.Builder

	text.WriteString("[white::b]Players[-:-:-]\n")
	text.WriteString(panelRule)
	for i, player := range state.Players {
		marker := " "
		if state.Phase == types.PhaseTurn && state.Acting == i {
			marker = "[white]▸[-]"
		}
		mark := types.MarkFor(i)
		fmt.Fprintf(&text, "%s %s%c[-] %-16s %3d\n",
			marker, tag(p.colors.Mark(mark)), mark.Glyph(), tview.Escape(player.Name), player.Score)
	}

	text.WriteString("\n[white::b]Leaderboard[-:-:-]\n")
	text.WriteString(panelRule)
	for _, b := range state.Scoreboard {
		color := "[dimgray]"
		if b.Finished() {
			color = "[white]"
		}
		fmt.Fprintf(&text, "%sBoard %d:[-] %s\n", color, b.ID, tview.Escape(b.Reason))
	}

	p.box.SetText(text.String())
}
