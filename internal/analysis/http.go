package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pwojcik-dev/orderscan/internal/common"
)

// doJSON performs one JSON exchange against the remote analysis service and
// returns the raw response body. Non-2xx statuses come back as
// ErrRemoteProtocol so the orchestrator's retry loop can treat every
// protocol step uniformly.
func (c *Client) doJSON(ctx context.Context, method, url string, body any) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			c.log.Error("analysis.http.encode_error", "req_id", reqID, "error", err)
			return nil, fmt.Errorf("encode json: %w", err)
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		c.log.Error("analysis.http.build_request_error", "req_id", reqID, "error", err)
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if c.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.cfg.Organization)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("analysis.http.send_error",
			"req_id", reqID, "method", method, "url", url,
			"error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			c.log.Warn("analysis.http.response_body_close_error", "req_id", reqID, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.log.Debug("analysis.http.response",
		"req_id", reqID, "method", method, "url", url,
		"status", resp.StatusCode, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		return raw, common.NewAppError("REMOTE_STATUS",
			fmt.Sprintf("%s %s: status %d", method, url, resp.StatusCode),
			common.ErrRemoteProtocol)
	}
	return raw, nil
}
