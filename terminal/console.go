// Package terminal plays the match on a plain console: setup answers are read
// line by line and moves are single key presses captured in raw mode.
package terminal

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"termtactoe/types"
)

// Minimum viewport needed to show a board, the scoreboard and the prompt.
const (
	MinWidth  = 80
	MinHeight = 29
)

var (
	ErrTerminalUnavailable = errors.New("terminal unavailable")
	ErrViewportTooSmall    = errors.New("terminal size is too small")
)

const (
	clearScreen   = "\x1b[2J\x1b[H"
	saveCursor    = "\x1b7"
	restoreCursor = "\x1b8"
	clearDown     = "\x1b[J"
	boardIndent   = "           "
)

// Console implements engine.Terminal on a standard input/output pair.
type Console struct {
	fd     int // input descriptor, -1 when input is not a file
	outFd  int
	reader *bufio.Reader
	out    io.Writer
	escape *term.EscapeCodes
	origin bool
}

// New creates a console reading from in and drawing to out.
func New(in, out *os.File) *Console {
	return newConsole(in, out, int(in.Fd()), int(out.Fd()))
}

func newConsole(in io.Reader, out io.Writer, fd, outFd int) *Console {
	// term.Terminal is only used for its VT100 colour sequences.
	vt := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, "")
	return &Console{
		fd:     fd,
		outFd:  outFd,
		reader: bufio.NewReader(in),
		out:    out,
		escape: vt.Escape,
	}
}

// CheckViewport returns ErrViewportTooSmall when the output terminal is
// smaller than minW x minH.
func (c *Console) CheckViewport(minW, minH int) error {
	w, h, err := term.GetSize(c.outFd)
	if err != nil {
		return fmt.Errorf("%w: get size: %v", ErrTerminalUnavailable, err)
	}
	if w < minW || h < minH {
		return fmt.Errorf("%w: %dx%d, need %dx%d", ErrViewportTooSmall, w, h, minW, minH)
	}
	return nil
}

// Render redraws the match below the saved cursor origin.
func (c *Console) Render(state types.MatchState) error {
	var buf bytes.Buffer
	if !c.origin {
		buf.WriteString(clearScreen)
		buf.WriteString(saveCursor)
		c.origin = true
	} else {
		buf.WriteString(restoreCursor)
	}
	buf.WriteString(clearDown)

	if state.Headline != "" {
		fmt.Fprintln(&buf, state.Headline)
	}
	if state.Summary != "" {
		fmt.Fprintln(&buf, state.Summary)
	}
	if state.Board != nil {
		c.writeBoard(&buf, state.Board)
	}
	buf.WriteByte('\n')
	writeScores(&buf, state.Players)
	writeScoreboard(&buf, state.Scoreboard)
	buf.WriteByte('\n')

	if _, err := c.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: write: %v", ErrTerminalUnavailable, err)
	}
	return nil
}

func (c *Console) writeBoard(buf *bytes.Buffer, b *types.BoardState) {
	fmt.Fprintf(buf, "-=- Displaying Board %d -=-\n", b.ID)
	for r, row := range b.Rows() {
		buf.WriteString(boardIndent)
		for col, glyph := range strings.Split(row, "|") {
			if col > 0 {
				buf.WriteByte('|')
			}
			if b.Highlight[r*3+col] {
				buf.Write(c.escape.Yellow)
				buf.WriteString(glyph)
				buf.Write(c.escape.Reset)
			} else {
				buf.WriteString(glyph)
			}
		}
		buf.WriteByte('\n')
	}
}

func writeScores(buf *bytes.Buffer, players [2]types.PlayerState) {
	fmt.Fprintf(buf, "%s (%c): %d    %s (%c): %d\n",
		players[0].Name, types.Circle.Glyph(), players[0].Score,
		players[1].Name, types.Cross.Glyph(), players[1].Score)
}

func writeScoreboard(buf *bytes.Buffer, boards []types.BoardState) {
	lines := make([]string, 0, len(boards))
	for _, b := range boards {
		lines = append(lines, fmt.Sprintf("Board %d: %s", b.ID, b.Reason))
	}
	fmt.Fprintf(buf, "-=-=- Leaderboard -=-=-\n%s\n", strings.Join(lines, "\n"))
}

// decodeKey turns the bytes of one key press into the rune the engine sees.
// Ctrl-C quits, since raw mode stops it from raising SIGINT.
func decodeKey(b []byte) rune {
	if len(b) == 0 {
		return types.KeyNone
	}
	if b[0] == 0x03 {
		return types.KeyQuit
	}
	r, _ := utf8.DecodeRune(b)
	return r
}

// trimLine strips the line terminator left by a cooked-mode read.
func trimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}
