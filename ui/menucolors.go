package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"termtactoe/config"
	"termtactoe/types"
)

// Colors is the palette shared by the board and the side panel.
type Colors struct {
	Circle    tcell.Color
	Cross     tcell.Color
	Empty     tcell.Color
	Highlight tcell.Color // background of a winning line
	Grid      tcell.Color
	Title     tcell.Color
	Label     tcell.Color
	Hint      tcell.Color
}

// NewColors builds the palette from the configured 256-colour indexes.
func NewColors(t config.Theme) Colors {
	return Colors{
		Circle:    tcell.PaletteColor(t.Colors.Circle),
		Cross:     tcell.PaletteColor(t.Colors.Cross),
		Empty:     tcell.PaletteColor(t.Colors.Empty),
		Highlight: tcell.PaletteColor(t.Colors.Highlight),
		Grid:      tcell.PaletteColor(t.Colors.Grid),
		Title:     tcell.PaletteColor(255), // Bright white
		Label:     tcell.PaletteColor(250), // Light gray
		Hint:      tcell.PaletteColor(245), // Dim gray
	}
}

// Mark returns the foreground colour for a cell's mark.
func (c Colors) Mark(m types.Mark) tcell.Color {
	switch m {
	case types.Circle:
		return c.Circle
	case types.Cross:
		return c.Cross
	default:
		return c.Empty
	}
}

// tag formats a colour as a tview dynamic colour tag.
func tag(c tcell.Color) string {
	return fmt.Sprintf("[#%06x]", c.Hex())
}
