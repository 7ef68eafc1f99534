//go:build unix

package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"termtactoe/types"
)

// pollSlice bounds each wait on stdin so cancellation is noticed promptly.
const pollSlice = 200 * time.Millisecond

// ReadLine prints prompt and reads one line in cooked mode.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if _, err := fmt.Fprint(c.out, prompt); err != nil {
		return "", fmt.Errorf("%w: write: %v", ErrTerminalUnavailable, err)
	}
	if c.fd >= 0 && c.reader.Buffered() == 0 {
		if _, err := c.waitReadable(ctx, 0); err != nil {
			return "", err
		}
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return trimLine(line), nil
}

// ReadKey prints prompt and waits up to timeout for a single key press with
// the terminal in raw mode. Raw mode is restored before returning.
func (c *Console) ReadKey(ctx context.Context, prompt string, timeout time.Duration) (key rune, err error) {
	if _, err := fmt.Fprint(c.out, prompt); err != nil {
		return types.KeyNone, fmt.Errorf("%w: write: %v", ErrTerminalUnavailable, err)
	}
	// Typed-ahead input sitting in the line buffer counts as the key.
	if c.reader.Buffered() > 0 {
		b, _ := c.reader.ReadByte()
		return decodeKey([]byte{b}), nil
	}

	state, err := term.MakeRaw(c.fd)
	if err != nil {
		return types.KeyNone, fmt.Errorf("%w: enable raw mode: %v", ErrTerminalUnavailable, err)
	}
	defer func() {
		if rerr := term.Restore(c.fd, state); rerr != nil && err == nil {
			err = fmt.Errorf("%w: restore terminal: %v", ErrTerminalUnavailable, rerr)
		}
	}()

	ready, err := c.waitReadable(ctx, timeout)
	if err != nil || !ready {
		return types.KeyNone, err
	}
	buf := make([]byte, 16)
	for {
		n, err := unix.Read(c.fd, buf)
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			continue
		}
		if err != nil {
			return types.KeyNone, fmt.Errorf("%w: read: %v", ErrTerminalUnavailable, err)
		}
		if n == 0 {
			return types.KeyNone, io.EOF
		}
		return decodeKey(buf[:n]), nil
	}
}

// waitReadable polls the input descriptor until it has data, ctx is done or
// timeout passes. A timeout of zero waits indefinitely.
func (c *Console) waitReadable(ctx context.Context, timeout time.Duration) (bool, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	fds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		wait := pollSlice
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return false, nil
			}
			wait = min(wait, remaining)
		}
		ms := max(int(wait/time.Millisecond), 1)

		n, err := unix.Poll(fds, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("%w: poll: %v", ErrTerminalUnavailable, err)
		}
		if n > 0 {
			return true, nil
		}
	}
}
