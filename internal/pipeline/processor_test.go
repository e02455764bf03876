package processor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pwojcik-dev/orderscan/constants"
	"github.com/pwojcik-dev/orderscan/internal/export"
	"github.com/pwojcik-dev/orderscan/internal/ocr"
	"github.com/pwojcik-dev/orderscan/internal/orderparse"
	"github.com/pwojcik-dev/orderscan/internal/store"
)

type countingExtractor struct {
	text  string
	calls int
}

func (c *countingExtractor) ExtractText(context.Context, string) (ocr.Result, error) {
	c.calls++
	return ocr.Result{Text: c.text, Pages: 1, Method: "pdf-text"}, nil
}

func writePDF(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestProcessor(t *testing.T, ex *countingExtractor) *Processor {
	t.Helper()
	stage := NewTextStage(ex, orderparse.NewExtractor(nil), nil, nil)
	p := NewProcessor(stage, nil, nil, export.NewService(nil), nil)
	p.ExportTo = t.TempDir()
	return p
}

func TestProcessPathExportsSections(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "zamowienie.pdf", "%PDF-dummy")

	ex := &countingExtractor{text: stageFixture}
	p := newTestProcessor(t, ex)

	if err := p.ProcessPath(context.Background(), path, ModeText); err != nil {
		t.Fatalf("ProcessPath: %v", err)
	}

	out := filepath.Join(p.ExportTo, "zamowienie.txt")
	payload, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if !strings.Contains(string(payload), "4500123456") {
		t.Errorf("export payload = %q", payload)
	}
}

func TestProcessPathDeduplicatesByContent(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf", "%PDF-same")
	b := writePDF(t, dir, "b.pdf", "%PDF-same")

	ex := &countingExtractor{text: stageFixture}
	p := newTestProcessor(t, ex)

	if err := p.ProcessPath(context.Background(), a, ModeText); err != nil {
		t.Fatal(err)
	}
	if err := p.ProcessPath(context.Background(), b, ModeText); err != nil {
		t.Fatal(err)
	}
	if ex.calls != 1 {
		t.Errorf("extractor calls = %d, want 1 (identical content)", ex.calls)
	}
}

func TestProcessDirProcessesMatches(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "a.pdf", "%PDF-a")
	writePDF(t, dir, "b.pdf", "%PDF-b")
	writePDF(t, dir, "notes.txt", "not a pdf")

	ex := &countingExtractor{text: stageFixture}
	p := newTestProcessor(t, ex)

	if err := p.ProcessDir(context.Background(), dir, ModeText); err != nil {
		t.Fatalf("ProcessDir: %v", err)
	}
	if ex.calls != 2 {
		t.Errorf("extractor calls = %d, want 2", ex.calls)
	}
}

func TestProcessPathRecordsJobStatus(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "orders.db"), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	dir := t.TempDir()
	path := writePDF(t, dir, "zamowienie.pdf", "%PDF-dummy")

	p := newTestProcessor(t, &countingExtractor{text: stageFixture})
	p.Store = st

	if err := p.ProcessPath(ctx, path, ModeText); err != nil {
		t.Fatalf("ProcessPath: %v", err)
	}

	orders, err := st.ListOrders(ctx, 10)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	status, err := st.GetStatus(ctx, orders[0].ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != constants.JobStatusAnalysisOK {
		t.Errorf("status = %q, want %q", status, constants.JobStatusAnalysisOK)
	}
}

func TestProcessPathRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "notes.txt", "not a pdf")

	p := newTestProcessor(t, &countingExtractor{text: stageFixture})
	if err := p.ProcessPath(context.Background(), path, ModeText); err == nil {
		t.Fatal("want error for disallowed extension")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" TEXT "); err != nil || m != ModeText {
		t.Errorf("ParseMode(TEXT) = %v, %v", m, err)
	}
	if m, err := ParseMode("scan"); err != nil || m != ModeScan {
		t.Errorf("ParseMode(scan) = %v, %v", m, err)
	}
	if _, err := ParseMode("ocr"); err == nil {
		t.Error("ParseMode(ocr) should fail")
	}
}
