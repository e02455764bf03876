package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pwojcik-dev/orderscan/constants"
	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/export"
	"github.com/pwojcik-dev/orderscan/internal/ingest"
	"github.com/pwojcik-dev/orderscan/internal/store"
)

// Mode selects which document path the processor runs.
type Mode string

const (
	ModeText Mode = "text" // embedded text layer
	ModeScan Mode = "scan" // rasterized pages + OCR
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeText:
		return ModeText, nil
	case ModeScan:
		return ModeScan, nil
	default:
		return "", common.NewAppError("INVALID_MODE", fmt.Sprintf("unknown mode %q", s), common.ErrInvalidInput)
	}
}

// Processor validates incoming documents, routes them through the
// selected stage and persists and exports the results.
type Processor struct {
	Text     *TextStage
	Scan     *ScanStage
	Store    *store.Store    // optional
	Exporter *export.Service // optional
	ExportTo string          // directory for export files, "" disables
	Format   export.Format
	Logger   *slog.Logger

	seen map[string]struct{} // content hashes already processed
}

func NewProcessor(text *TextStage, scan *ScanStage, st *store.Store, ex *export.Service, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Text:     text,
		Scan:     scan,
		Store:    st,
		Exporter: ex,
		Format:   export.FormatTXT,
		Logger:   logger,
		seen:     make(map[string]struct{}),
	}
}

// ProcessPath runs one document end to end. Reprocessing a file whose
// content hash was already seen in this run is skipped.
func (p *Processor) ProcessPath(ctx context.Context, path string, mode Mode) error {
	start := time.Now()

	info, err := ingest.CheckFile(path)
	if err != nil {
		p.Logger.Warn("processor.file.rejected", "path", path, "error", err)
		return err
	}
	if _, ok := p.seen[info.HashHex]; ok {
		p.Logger.Info("processor.file.dedup", "path", path, "hash", info.HashHex)
		return nil
	}
	p.seen[info.HashHex] = struct{}{}

	p.Logger.Info("processor.file.start", "path", info.Path, "mode", string(mode), "bytes", info.Size)

	switch mode {
	case ModeText:
		res, err := p.Text.Run(ctx, info.Path)
		if err != nil {
			return err
		}
		if err := p.finishText(ctx, info.Path, res); err != nil {
			return err
		}
	case ModeScan:
		res, err := p.Scan.Run(ctx, info.Path)
		if err != nil {
			return err
		}
		if err := p.finishScan(info.Path, res); err != nil {
			return err
		}
	default:
		return common.NewAppError("INVALID_MODE", fmt.Sprintf("unknown mode %q", mode), common.ErrInvalidInput)
	}

	p.Logger.Info("processor.file.ok", "path", info.Path, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// ProcessDir scans root for order documents and processes every match.
// Per-file failures are logged; ProcessDir fails only when nothing in a
// non-empty match set succeeded.
func (p *Processor) ProcessDir(ctx context.Context, root string, mode Mode) error {
	files, stats, err := ingest.ScanDirectory(root)
	if err != nil {
		return common.NewAppError("SCAN_FAILED", "directory scan failed", err)
	}
	p.Logger.Info("processor.dir.scanned",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)

	failed := 0
	for _, f := range files {
		if err := p.ProcessPath(ctx, f.Path, mode); err != nil {
			p.Logger.Error("processor.file.failed", "path", f.Path, "error", err)
			failed++
		}
	}
	if failed > 0 && failed == len(files) {
		return common.NewAppError("DIR_FAILED", fmt.Sprintf("all %d documents in %s failed", failed, root), nil)
	}
	return nil
}

func (p *Processor) finishText(ctx context.Context, path string, res TextResult) error {
	if p.Store != nil && res.Order != nil {
		if err := p.Store.SaveOrder(ctx, res.Order); err != nil {
			return err
		}
		if err := p.Store.SetStatus(ctx, res.Order.ID, constants.JobStatusTextOK); err != nil {
			return err
		}
		if res.Analysis != nil {
			if err := p.Store.SaveSections(ctx, res.Order.ID, res.Analysis.Sections); err != nil {
				if serr := p.Store.SetStatus(ctx, res.Order.ID, constants.JobStatusFailed); serr != nil {
					p.Logger.Warn("processor.status.failed", "order_id", res.Order.ID.String(), "error", serr)
				}
				return err
			}
			if err := p.Store.SetStatus(ctx, res.Order.ID, constants.JobStatusAnalysisOK); err != nil {
				return err
			}
		}
	}
	if p.Exporter == nil || p.ExportTo == "" {
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if p.Format == export.FormatXLSX {
		if res.Order == nil {
			p.Logger.Warn("processor.export.skipped", "path", path, "reason", "no parsed order for xlsx")
			return nil
		}
		payload, err := p.Exporter.OrderXLSX(res.Order)
		if err != nil {
			return err
		}
		return p.writeExport(base, payload)
	}
	if res.Analysis == nil {
		p.Logger.Warn("processor.export.skipped", "path", path, "reason", "no sections")
		return nil
	}
	payload, err := p.Exporter.Sections(res.Analysis.Sections, p.Format)
	if err != nil {
		return err
	}
	return p.writeExport(base, payload)
}

func (p *Processor) finishScan(path string, res ScanResult) error {
	if p.Exporter == nil || p.ExportTo == "" {
		return nil
	}
	// Merged groups carry classifier metadata the flat section formats
	// cannot hold; they are always written as JSON.
	payload, err := json.MarshalIndent(res.Groups, "", "  ")
	if err != nil {
		return common.NewAppError("EXPORT_JSON", "failed to encode groups", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := p.writeExportExt(base, "groups.json", payload); err != nil {
		return err
	}
	if res.Analysis != nil && p.Format != export.FormatXLSX {
		sections, err := p.Exporter.Sections(res.Analysis.Sections, p.Format)
		if err != nil {
			return err
		}
		return p.writeExport(base, sections)
	}
	return nil
}

func (p *Processor) writeExport(base string, payload []byte) error {
	return p.writeExportExt(base, p.Format.Ext(), payload)
}

func (p *Processor) writeExportExt(base, ext string, payload []byte) error {
	if err := os.MkdirAll(p.ExportTo, 0o755); err != nil {
		return common.NewAppError("EXPORT_WRITE", "failed to create export directory", err)
	}
	out := filepath.Join(p.ExportTo, base+"."+ext)
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return common.NewAppError("EXPORT_WRITE", "failed to write export file", err)
	}
	p.Logger.Info("processor.export.ok", "path", out, "bytes", len(payload))
	return nil
}

// RunWatch consumes watcher events sequentially until ctx is done.
// Per-file failures are logged and do not stop the loop.
func (p *Processor) RunWatch(ctx context.Context, cfg ingest.WatchConfig, mode Mode) error {
	events, errs, err := ingest.StartWatcher(ctx, cfg, p.Logger)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-events:
			if !ok {
				return nil
			}
			if err := p.ProcessPath(ctx, path, mode); err != nil {
				p.Logger.Error("processor.file.failed", "path", path, "error", err)
			}
		case werr, ok := <-errs:
			if ok && werr != nil {
				p.Logger.Error("processor.watch.error", "error", werr)
			}
		}
	}
}
