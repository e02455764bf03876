package processor

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pwojcik-dev/orderscan/internal/analysis"
	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/entity"
	"github.com/pwojcik-dev/orderscan/internal/ocr"
	"github.com/pwojcik-dev/orderscan/internal/orderparse"
)

// TextExtractor yields document text for the text-layer path.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (ocr.Result, error)
}

// Analyzer sends document text for remote analysis.
type Analyzer interface {
	Analyze(ctx context.Context, documentText string) (*entity.Analysis, error)
}

// TextResult carries everything the text path produced for one document.
type TextResult struct {
	Order    *entity.Order
	Warnings []string
	Analysis *entity.Analysis
	OCR      ocr.Result
}

// TextStage runs the text-layer path: pdftotext, structured field
// extraction, then remote analysis of the raw text.
type TextStage struct {
	Extractor TextExtractor
	Parser    *orderparse.Extractor
	Analyzer  Analyzer
	Logger    *slog.Logger
}

func NewTextStage(tx TextExtractor, parser *orderparse.Extractor, az Analyzer, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Extractor: tx, Parser: parser, Analyzer: az, Logger: logger}
}

// Run processes path through the text pipeline. Field extraction and
// remote analysis fail independently: either result alone is still
// returned, and only when both fail does Run return an error.
func (p *TextStage) Run(ctx context.Context, path string) (TextResult, error) {
	start := time.Now()
	var out TextResult

	res, err := p.Extractor.ExtractText(ctx, path)
	if err != nil {
		return out, common.NewAppError("OCR_FAILED", "text extraction failed", err)
	}
	out.OCR = res
	p.Logger.Info("processor.ocr.ok", "path", path, "pages", res.Pages, "bytes", len(res.Text))

	lines := strings.Split(res.Text, "\n")
	order, warnings, parseErr := p.Parser.Extract(lines)
	if parseErr != nil {
		p.Logger.Warn("processor.parse.failed", "path", path, "error", parseErr)
	} else {
		order.SourcePath = path
		out.Order = order
		out.Warnings = warnings
	}

	var analyzeErr error
	if p.Analyzer != nil {
		out.Analysis, analyzeErr = p.Analyzer.Analyze(ctx, res.Text)
		if analyzeErr != nil {
			p.Logger.Warn("processor.analysis.failed", "path", path, "error", analyzeErr)
		}
	}

	if parseErr != nil && out.Analysis == nil {
		if analyzeErr != nil {
			return out, common.NewAppError("TEXT_STAGE_FAILED", "both extraction paths failed", analyzeErr)
		}
		return out, common.NewAppError("TEXT_STAGE_FAILED", "field extraction failed", parseErr)
	}

	// Parsed orders with no analysis still get display sections built
	// locally from the response parser's bucket rules.
	if out.Analysis == nil && out.Order != nil {
		out.Analysis = &entity.Analysis{Sections: analysis.Bucketize(orderSummaryLines(out.Order))}
	}

	p.Logger.Info("processor.text.ok",
		"path", path,
		"parsed", out.Order != nil,
		"analyzed", analyzeErr == nil && p.Analyzer != nil,
		"warnings", len(out.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// orderSummaryLines renders a parsed order as display lines so the
// section bucketing works even without a remote reply.
func orderSummaryLines(o *entity.Order) []string {
	var lines []string
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Nr zamówienia", o.OrderNumber)
	add("Data zamówienia", o.OrderDate)
	add("Dostawca", o.Supplier.Name)
	add("Termin dostawy", o.DeliveryDate)
	add("Miejsce dostawy", o.DeliveryPlace)
	for i, it := range o.Items {
		lines = append(lines, "Pozycja "+strconv.Itoa(i+1)+": "+it.Name)
	}
	if o.TotalValue != nil {
		lines = append(lines, "Wartość netto PLN: "+strconv.FormatFloat(*o.TotalValue, 'f', 2, 64))
	}
	return lines
}
