package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	promptBoards       = "Please enter the starting number of boards to be played (Greater than 0): "
	retryBoards        = "That number was either less than 0 or too big: "
	promptTimeout      = "Please enter the duration, in seconds, for each player's turn input (0 = infinite): "
	retryTimeout       = "Try again! That number was less than 0: "
	promptContinue     = "Since the game ended in a tie, would you like to continue with one more board? Respond with any form of yes or no: "
	infiniteTimeoutSec = uint64(InfiniteTimeout / time.Second)
)

// ParseBoardCount parses a starting board count. Zero is normalized to one.
func ParseBoardCount(text string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(text), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: board count %q", ErrMalformedSetupInput, text)
	}
	if n == 0 {
		n = 1
	}
	return int(n), nil
}

// ParseTurnTimeout parses a per-turn timeout in whole seconds. Zero, and any
// value at or above the infinite sentinel, yields InfiniteTimeout.
func ParseTurnTimeout(text string) (time.Duration, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q", ErrMalformedSetupInput, text)
	}
	if n == 0 || n >= infiniteTimeoutSec {
		return InfiniteTimeout, nil
	}
	return time.Duration(n) * time.Second, nil
}

// NormalizeBoardCount applies the same rule as ParseBoardCount to a preset value.
func NormalizeBoardCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// NormalizeTurnTimeout applies the same rule as ParseTurnTimeout to a preset value.
func NormalizeTurnTimeout(d time.Duration) time.Duration {
	if d <= 0 || d >= InfiniteTimeout {
		return InfiniteTimeout
	}
	return d
}

// isAffirmative accepts "y" and "yes" in any case.
func isAffirmative(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// askBoardCount prompts until a valid board count is entered.
func (m *Match) askBoardCount(ctx context.Context) (int, error) {
	prompt := promptBoards
	for {
		text, err := m.term.ReadLine(ctx, prompt)
		if err != nil {
			return 0, fmt.Errorf("read board count: %w", err)
		}
		n, err := ParseBoardCount(text)
		if err == nil {
			return n, nil
		}
		m.log.Debug("Rejected setup input", "error", err)
		prompt = retryBoards
	}
}

// askTurnTimeout prompts until a valid timeout is entered.
func (m *Match) askTurnTimeout(ctx context.Context) (time.Duration, error) {
	prompt := promptTimeout
	for {
		text, err := m.term.ReadLine(ctx, prompt)
		if err != nil {
			return 0, fmt.Errorf("read turn timeout: %w", err)
		}
		d, err := ParseTurnTimeout(text)
		if err == nil {
			return d, nil
		}
		m.log.Debug("Rejected setup input", "error", err)
		prompt = retryTimeout
	}
}
