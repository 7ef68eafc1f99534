// Package ui is the full-screen tview frontend for termtactoe.
package ui

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termtactoe/config"
	"termtactoe/types"
)

// Size of the board widget including its border.
const (
	boardViewWidth  = 17
	boardViewHeight = 7
)

// BoardView draws a single 3x3 board with its winning line highlighted.
type BoardView struct {
	*tview.Box
	state   *types.BoardState
	colors  Colors
	symbols [3]rune // indexed by types.Mark
}

func NewBoardView(t config.Theme, colors Colors) *BoardView {
	v := &BoardView{
		Box:    tview.NewBox(),
		colors: colors,
	}
	v.symbols[types.Empty] = firstRune(t.Symbols.Empty)
	v.symbols[types.Circle] = firstRune(t.Symbols.Circle)
	v.symbols[types.Cross] = firstRune(t.Symbols.Cross)
	v.SetBorder(true)
	v.SetBorderColor(colors.Grid)
	v.SetTitleColor(colors.Title)
	return v
}

// SetState replaces the board being shown. nil clears the widget.
func (v *BoardView) SetState(b *types.BoardState) {
	v.state = b
	if b == nil {
		v.SetTitle("")
		return
	}
	v.SetTitle(fmt.Sprintf(" Board %d ", b.ID))
}

func (v *BoardView) Draw(screen tcell.Screen) {
	v.Box.DrawForSubclass(screen, v)
	if v.state == nil {
		return
	}
	x, y, width, height := v.GetInnerRect()
	if width < 13 || height < 5 {
		return
	}

	gridStyle := tcell.StyleDefault.Foreground(v.colors.Grid)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			i := r*3 + c
			mark := v.state.Cells[i]
			style := tcell.StyleDefault.Foreground(v.colors.Mark(mark))
			if v.state.Highlight[i] {
				style = style.Background(v.colors.Highlight).Bold(true)
			}
			drawCell(screen, style, v.symbols[mark], x, y, i)
			if c < 2 {
				cx, cy := cellOrigin(x, y, i)
				screen.SetContent(cx+3, cy, '│', nil, gridStyle)
			}
		}
		if r < 2 {
			drawGridLine(screen, gridStyle, x, y+r*2+1)
		}
	}
}

// cellOrigin returns the left edge of the 3-column cell i.
func cellOrigin(x, y, i int) (int, int) {
	return x + 1 + (i%3)*4, y + (i/3)*2
}

// drawCell draws a cell 3 characters wide with the mark in the middle.
func drawCell(s tcell.Screen, style tcell.Style, r rune, x, y, i int) {
	cx, cy := cellOrigin(x, y, i)
	s.SetContent(cx, cy, ' ', nil, style)
	s.SetContent(cx+1, cy, r, nil, style)
	s.SetContent(cx+2, cy, ' ', nil, style)
}

// drawGridLine draws ───┼───┼─── between two rows.
func drawGridLine(s tcell.Screen, style tcell.Style, x, y int) {
	for col := 0; col < 11; col++ {
		r := '─'
		if col == 3 || col == 7 {
			r = '┼'
		}
		s.SetContent(x+1+col, y, r, nil, style)
	}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
