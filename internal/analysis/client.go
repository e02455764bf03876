package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pwojcik-dev/orderscan/constants"
	"github.com/pwojcik-dev/orderscan/internal/common"
)

// Session is the ephemeral remote resource backing one analysis attempt.
// The attempt that creates it owns it and must delete it before returning.
type Session struct {
	SessionID string
	RunID     string
	Status    constants.RunStatus
}

// Client speaks the remote analysis wire protocol: three resource
// collections (sessions, per-session messages, per-session runs), all JSON.
type Client struct {
	cfg  common.AnalysisConfig
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg common.AnalysisConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

func (c *Client) url(parts ...string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.Join(parts, "/")
}

// CreateSession opens a new analysis session.
func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, c.url("threads"), map[string]any{})
	if err != nil {
		return nil, common.WrapError(err, "create session")
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, common.WrapError(err, "decode session")
	}
	if out.ID == "" {
		return nil, common.NewAppError("NO_SESSION_ID", "session create returned no id", common.ErrRemoteProtocol)
	}
	return &Session{SessionID: out.ID}, nil
}

// AddMessage submits the document text as a user message.
func (c *Client) AddMessage(ctx context.Context, sessionID, content string) error {
	_, err := c.doJSON(ctx, http.MethodPost, c.url("threads", sessionID, "messages"), map[string]any{
		"role":    "user",
		"content": content,
	})
	return common.WrapError(err, "add message")
}

// StartRun starts the assistant run for a session and returns the run id.
func (c *Client) StartRun(ctx context.Context, sessionID string) (string, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, c.url("threads", sessionID, "runs"), map[string]any{
		"assistant_id": c.cfg.AssistantID,
		"instructions": "Analizuj dane zamówienia i przedstaw wnioski w jasny i zwięzły sposób.",
	})
	if err != nil {
		return "", common.WrapError(err, "start run")
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", common.WrapError(err, "decode run")
	}
	return out.ID, nil
}

// GetRunStatus fetches the current status of a run.
func (c *Client) GetRunStatus(ctx context.Context, sessionID, runID string) (constants.RunStatus, error) {
	raw, err := c.doJSON(ctx, http.MethodGet, c.url("threads", sessionID, "runs", runID), nil)
	if err != nil {
		return "", common.WrapError(err, "run status")
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", common.WrapError(err, "decode run status")
	}
	return constants.RunStatus(out.Status), nil
}

// FetchReply lists the session's messages (reverse chronological) and
// returns the text of the first assistant-authored entry.
func (c *Client) FetchReply(ctx context.Context, sessionID string) (string, error) {
	raw, err := c.doJSON(ctx, http.MethodGet, c.url("threads", sessionID, "messages"), nil)
	if err != nil {
		return "", common.WrapError(err, "fetch messages")
	}
	var out struct {
		Data []struct {
			Role    string `json:"role"`
			Content []struct {
				Text struct {
					Value string `json:"value"`
				} `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", common.WrapError(err, "decode messages")
	}
	for _, msg := range out.Data {
		if msg.Role != "assistant" || len(msg.Content) == 0 {
			continue
		}
		return msg.Content[0].Text.Value, nil
	}
	return "", common.NewAppError("NO_REPLY", "no assistant reply in session", common.ErrRemoteProtocol)
}

// DeleteSession tears the session down. Best-effort: callers log failures
// and move on, a stuck deletion must not mask the primary outcome.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, c.url("threads", sessionID), nil)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}
