package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/entity"
	"github.com/pwojcik-dev/orderscan/internal/ocr"
	"github.com/pwojcik-dev/orderscan/internal/textproc"
)

// ScanExtractor yields OCR lines for the rasterized path.
type ScanExtractor interface {
	ExtractScan(ctx context.Context, path string) (ocr.Result, error)
}

// ScanResult carries the scanned-document path output.
type ScanResult struct {
	Lines    []entity.ClassifiedLine
	Groups   []entity.SemanticGroup
	Analysis *entity.Analysis
	OCR      ocr.Result
}

// ScanStage runs the raster path: pdftoppm+tesseract, line
// classification, aggregation and group merging. An Analyzer, when
// set, additionally sends the recognized text for remote analysis.
type ScanStage struct {
	Extractor ScanExtractor
	Analyzer  Analyzer
	Logger    *slog.Logger
}

func NewScanStage(sx ScanExtractor, az Analyzer, logger *slog.Logger) *ScanStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanStage{Extractor: sx, Analyzer: az, Logger: logger}
}

func (p *ScanStage) Run(ctx context.Context, path string) (ScanResult, error) {
	start := time.Now()
	var out ScanResult

	res, err := p.Extractor.ExtractScan(ctx, path)
	if err != nil {
		return out, common.NewAppError("OCR_FAILED", "scan recognition failed", err)
	}
	out.OCR = res
	p.Logger.Info("processor.ocr.ok", "path", path, "pages", res.Pages, "lines", len(res.Lines))

	out.Lines = textproc.ClassifyAll(res.Lines)
	groups := textproc.Aggregate(out.Lines)
	out.Groups = textproc.Merge(groups)

	if p.Analyzer != nil {
		an, err := p.Analyzer.Analyze(ctx, res.Text)
		if err != nil {
			p.Logger.Warn("processor.analysis.failed", "path", path, "error", err)
		} else {
			out.Analysis = an
		}
	}

	p.Logger.Info("processor.scan.ok",
		"path", path,
		"lines", len(out.Lines),
		"groups", len(out.Groups),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
