package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pwojcik-dev/orderscan/internal/entity"
)

// ExtractText reads the digital text layer. Confidence is full for every
// line; a born-digital PDF does not guess.
func (e *Extractor) ExtractText(ctx context.Context, path string) (Result, error) {
	start := time.Now()

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return Result{Warnings: []string{string(errb)}}, fmt.Errorf("pdftotext: %w", err)
	}

	text := Normalize(string(out))
	// a form feed is pdftotext's page separator
	pages := 1 + strings.Count(string(out), "\f")

	var lines []entity.RawLine
	for i, page := range strings.Split(text, "\f") {
		for _, l := range strings.Split(page, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, entity.RawLine{Text: l, Page: i + 1, Confidence: 100})
			}
		}
	}

	return Result{
		Text:     text,
		Lines:    lines,
		Pages:    pages,
		Method:   "pdf-text",
		Language: e.cfg.TesseractLang,
		Duration: time.Since(start),
	}, nil
}

// ExtractScan rasterizes every page and recognizes it with tesseract in TSV
// mode, yielding per-line confidences. The rasterization directory is the
// scan's scoped resource: created once per call, removed on every exit path.
func (e *Extractor) ExtractScan(ctx context.Context, path string) (Result, error) {
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "orderscan-pp-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			e.logger.Warn("ocr.cleanup_failed", "dir", tmpDir, "error", rerr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return Result{Warnings: []string{string(errb)}}, fmt.Errorf("pdftoppm: %w", err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{Warnings: []string{"pdftoppm produced no images"}}, fmt.Errorf("no pages rendered")
	}

	var allLines []entity.RawLine
	var b strings.Builder
	var warns []string
	for page, img := range matches {
		lines, err := e.recognizePage(ctx, img, page+1)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		for _, l := range lines {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(l.Text)
		}
		allLines = append(allLines, lines...)
	}

	return Result{
		Text:     b.String(),
		Lines:    allLines,
		Pages:    len(matches),
		Method:   "pdf-scan",
		Language: e.cfg.TesseractLang,
		Duration: time.Since(start),
		Warnings: warns,
	}, nil
}

// recognizePage runs tesseract in TSV mode over one rendered page.
func (e *Extractor) recognizePage(ctx context.Context, imgPath string, page int) ([]entity.RawLine, error) {
	args := []string{imgPath, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args,
		"--oem", "1",
		"--psm", "1",
		"-c", "tessedit_char_whitelist="+charWhitelist,
		"-c", "preserve_interword_spaces=1",
		"tsv",
	)

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract page %d: %w (%s)", page, err, truncate(string(errb), 256))
	}
	return parseTSVLines(string(out), page), nil
}
