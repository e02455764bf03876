package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pwojcik-dev/orderscan/internal/common"
)

// fakeRemote emulates the session/message/run protocol for one test.
type fakeRemote struct {
	mu          sync.Mutex
	createTimes []time.Time
	deletes     int
	statusCalls int

	runStatuses []string // consumed per status call, last repeats
	reply       string
	failMessage bool
}

func (f *fakeRemote) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("OpenAI-Beta"); got != "assistants=v2" {
			t.Errorf("OpenAI-Beta = %q", got)
		}
		f.mu.Lock()
		f.createTimes = append(f.createTimes, time.Now())
		n := len(f.createTimes)
		f.mu.Unlock()
		writeJSON(w, map[string]any{"id": fmt.Sprintf("thread_%d", n)})
	})
	mux.HandleFunc("POST /threads/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		if f.failMessage {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"id": "msg_1"})
	})
	mux.HandleFunc("POST /threads/{id}/runs", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AssistantID string `json:"assistant_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.AssistantID != "asst_test" {
			t.Errorf("assistant_id = %q", body.AssistantID)
		}
		writeJSON(w, map[string]any{"id": "run_1"})
	})
	mux.HandleFunc("GET /threads/{id}/runs/{rid}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		idx := f.statusCalls
		f.statusCalls++
		f.mu.Unlock()
		if idx >= len(f.runStatuses) {
			idx = len(f.runStatuses) - 1
		}
		writeJSON(w, map[string]any{"status": f.runStatuses[idx]})
	})
	mux.HandleFunc("GET /threads/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"data": []map[string]any{
				{"role": "user", "content": []map[string]any{}},
				{"role": "assistant", "content": []map[string]any{
					{"text": map[string]any{"value": f.reply}},
				}},
			},
		})
	})
	mux.HandleFunc("DELETE /threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deletes++
		f.mu.Unlock()
		writeJSON(w, map[string]any{"deleted": true})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig(baseURL string) common.AnalysisConfig {
	return common.AnalysisConfig{
		BaseURL:         baseURL,
		APIKey:          "sk-test",
		AssistantID:     "asst_test",
		Timeout:         5 * time.Second,
		MaxRetries:      3,
		BaseDelay:       40 * time.Millisecond,
		PollInterval:    time.Millisecond,
		MaxPollAttempts: 5,
	}
}

func newTestOrchestrator(t *testing.T, f *fakeRemote) (*Orchestrator, *fakeRemote) {
	t.Helper()
	srv := f.server(t)
	cfg := testConfig(srv.URL)
	return NewOrchestrator(NewClient(cfg, nil), cfg, nil), f
}

func TestAnalyzeSuccess(t *testing.T) {
	o, f := newTestOrchestrator(t, &fakeRemote{
		runStatuses: []string{"queued", "in_progress", "completed"},
		reply:       `{"numer zamówienia": "99", "dostawca": "Hurtownia MAX"}`,
	})

	a, err := o.Analyze(context.Background(), "treść dokumentu")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Sections) == 0 {
		t.Fatal("no sections")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createTimes) != 1 {
		t.Errorf("sessions created = %d, want 1", len(f.createTimes))
	}
	if f.deletes != 1 {
		t.Errorf("deletes = %d, want 1", f.deletes)
	}
	if f.statusCalls != 3 {
		t.Errorf("status calls = %d, want 3", f.statusCalls)
	}
}

func TestAnalyzeRunFailureRetriesWithLinearBackoff(t *testing.T) {
	o, f := newTestOrchestrator(t, &fakeRemote{
		runStatuses: []string{"failed"},
	})

	_, err := o.Analyze(context.Background(), "treść")
	if err == nil {
		t.Fatal("want error after exhausted retries")
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != "ANALYSIS_FAILED" {
		t.Fatalf("err = %v, want ANALYSIS_FAILED", err)
	}
	if !errors.Is(err, common.ErrRemoteProtocol) {
		t.Errorf("err should wrap the terminal run status cause: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createTimes) != 3 {
		t.Fatalf("attempts = %d, want 3", len(f.createTimes))
	}
	// one session teardown per attempt, failure included
	if f.deletes != 3 {
		t.Errorf("deletes = %d, want 3", f.deletes)
	}
	// delay grows linearly: base before attempt 2, twice base before attempt 3
	base := 40 * time.Millisecond
	if gap := f.createTimes[1].Sub(f.createTimes[0]); gap < base {
		t.Errorf("gap before attempt 2 = %v, want >= %v", gap, base)
	}
	if gap := f.createTimes[2].Sub(f.createTimes[1]); gap < 2*base {
		t.Errorf("gap before attempt 3 = %v, want >= %v", gap, 2*base)
	}
}

func TestAnalyzePollExhaustion(t *testing.T) {
	o, f := newTestOrchestrator(t, &fakeRemote{
		runStatuses: []string{"in_progress"},
	})

	_, err := o.Analyze(context.Background(), "treść")
	if err == nil {
		t.Fatal("want error")
	}
	if !errors.Is(err, common.ErrRemoteTimeout) {
		t.Fatalf("err = %v, want ErrRemoteTimeout", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// each of the 3 attempts polls MaxPollAttempts times
	if f.statusCalls != 15 {
		t.Errorf("status calls = %d, want 15", f.statusCalls)
	}
}

func TestAnalyzeSessionDeletedOnEarlyFailure(t *testing.T) {
	o, f := newTestOrchestrator(t, &fakeRemote{
		failMessage: true,
		runStatuses: []string{"completed"},
	})

	_, err := o.Analyze(context.Background(), "treść")
	if err == nil {
		t.Fatal("want error")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createTimes) == 0 || f.deletes != len(f.createTimes) {
		t.Errorf("creates = %d, deletes = %d; every session must be torn down",
			len(f.createTimes), f.deletes)
	}
	if f.statusCalls != 0 {
		t.Errorf("status polled after message failure: %d calls", f.statusCalls)
	}
}
