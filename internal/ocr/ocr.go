package ocr

import (
	"log/slog"
	"time"

	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/entity"
)

// charWhitelist restricts recognition to the characters order documents
// actually contain; stray box-drawing glyphs otherwise leak into lines.
const charWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyząćęłńóśźżĄĆĘŁŃÓŚŹŻ0123456789.,/-():; "

// Result is the outcome of extracting one document.
type Result struct {
	Text     string
	Lines    []entity.RawLine
	Pages    int
	Method   string // "pdf-text" | "pdf-scan"
	Language string
	Duration time.Duration
	Warnings []string
}

// Extractor pulls text out of PDF order documents, either from the digital
// text layer (pdftotext) or by rasterizing pages and recognizing them
// (pdftoppm + tesseract). External binaries run through the Runner seam.
type Extractor struct {
	cfg    common.OCRConfig
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg common.OCRConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "pol"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}
