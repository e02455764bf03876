package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/pwojcik-dev/orderscan/constants"
	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/entity"
)

// Orchestrator drives the six-step remote analysis flow: create session,
// add message, start run, poll to completion, fetch the reply, delete the
// session. The whole flow retries with linear backoff; the poll inside each
// attempt is bounded separately.
type Orchestrator struct {
	client *Client
	cfg    common.AnalysisConfig
	log    *slog.Logger
}

func NewOrchestrator(client *Client, cfg common.AnalysisConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{client: client, cfg: cfg, log: logger}
}

// Analyze sends the document text through the remote protocol and parses
// the reply into sections. On exhaustion the returned error aggregates the
// attempt count and the last cause.
func (o *Orchestrator) Analyze(ctx context.Context, documentText string) (*entity.Analysis, error) {
	start := time.Now()
	o.log.Info("analysis.start", "text_len", len(documentText), "max_retries", o.cfg.MaxRetries)

	var result *entity.Analysis
	err := retry.Do(
		func() error {
			a, err := o.attempt(ctx, documentText)
			if err != nil {
				return err
			}
			result = a
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(o.cfg.MaxRetries)),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			// delay before attempt i is baseDelay×i: n is 0 after the first failure
			return time.Duration(n+1) * o.cfg.BaseDelay
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			o.log.Warn("analysis.retry", "failed_attempt", n+1, "max", o.cfg.MaxRetries, "error", err)
		}),
	)
	if err != nil {
		o.log.Error("analysis.exhausted", "attempts", o.cfg.MaxRetries, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewAppError("ANALYSIS_FAILED",
			fmt.Sprintf("analysis failed after %d attempts", o.cfg.MaxRetries), err)
	}

	o.log.Info("analysis.ok", "sections", len(result.Sections),
		"elapsed_ms", time.Since(start).Milliseconds())
	return result, nil
}

// attempt runs the protocol once. The session created here is always torn
// down before returning, success or failure; teardown failures are logged
// only.
func (o *Orchestrator) attempt(ctx context.Context, documentText string) (*entity.Analysis, error) {
	sess, err := o.client.CreateSession(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		// the attempt's context may already be cancelled; still try to clean up
		if derr := o.client.DeleteSession(context.WithoutCancel(ctx), sess.SessionID); derr != nil {
			o.log.Warn("analysis.teardown_failed", "session_id", sess.SessionID, "error", derr)
		}
	}()

	if err := o.client.AddMessage(ctx, sess.SessionID, buildPrompt(documentText)); err != nil {
		return nil, err
	}

	runID, err := o.client.StartRun(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.RunID = runID

	status, err := PollUntil(ctx,
		func(ctx context.Context) (constants.RunStatus, error) {
			return o.client.GetRunStatus(ctx, sess.SessionID, sess.RunID)
		},
		constants.RunStatus.Terminal,
		o.cfg.PollInterval,
		o.cfg.MaxPollAttempts,
		o.log,
	)
	if err != nil {
		return nil, err
	}
	sess.Status = status
	if status != constants.RunStatusCompleted {
		return nil, common.NewAppError("RUN_"+string(status),
			fmt.Sprintf("run ended with status %s", status), common.ErrRemoteProtocol)
	}

	reply, err := o.client.FetchReply(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}
	return ParseResponse(reply)
}
