package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/pwojcik-dev/orderscan/constants"
	"github.com/pwojcik-dev/orderscan/internal/common"
)

// PollUntil invokes status at a fixed interval until isTerminal approves the
// returned status or maxAttempts is exhausted, which yields ErrRemoteTimeout.
// A failing status call consumes an attempt and polling continues; the call
// site decides what a terminal-but-unhappy status means.
func PollUntil(
	ctx context.Context,
	status func(context.Context) (constants.RunStatus, error),
	isTerminal func(constants.RunStatus) bool,
	interval time.Duration,
	maxAttempts int,
	logger *slog.Logger,
) (constants.RunStatus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		st, err := status(ctx)
		if err != nil {
			logger.Warn("analysis.poll.status_error", "attempt", attempt, "max", maxAttempts, "error", err)
		} else if isTerminal(st) {
			return st, nil
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
	return "", common.NewAppError("POLL_EXHAUSTED",
		"run did not reach a terminal status in time", common.ErrRemoteTimeout)
}
