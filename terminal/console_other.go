//go:build !unix

package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"termtactoe/types"
)

// ReadLine prints prompt and reads one line. The read itself cannot be
// interrupted on this platform.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(c.out, prompt); err != nil {
		return "", fmt.Errorf("%w: write: %v", ErrTerminalUnavailable, err)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return trimLine(line), nil
}

// ReadKey is unsupported here; use the full-screen UI instead.
func (c *Console) ReadKey(ctx context.Context, prompt string, timeout time.Duration) (rune, error) {
	return types.KeyNone, fmt.Errorf("%w: single key input needs a unix terminal, try -tui", ErrTerminalUnavailable)
}
