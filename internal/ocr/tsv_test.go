package ocr

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

const tsvHeader = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"

func tsvRow(block, par, line int, conf float64, text string) string {
	return fmt.Sprintf("5\t1\t%d\t%d\t%d\t1\t0\t0\t10\t10\t%g\t%s", block, par, line, conf, text)
}

func TestParseTSVLines(t *testing.T) {
	t.Run("groups words into lines with mean confidence", func(t *testing.T) {
		tsv := strings.Join([]string{
			tsvHeader,
			tsvRow(1, 1, 1, 96, "Nr"),
			tsvRow(1, 1, 1, 88, "zamówienia:"),
			tsvRow(1, 1, 2, 90, "Dostawca:"),
		}, "\n")

		lines := parseTSVLines(tsv, 2)
		if len(lines) != 2 {
			t.Fatalf("lines = %d, want 2", len(lines))
		}
		if lines[0].Text != "Nr zamówienia:" {
			t.Errorf("text = %q", lines[0].Text)
		}
		if math.Abs(lines[0].Confidence-92) > 1e-9 {
			t.Errorf("confidence = %v, want 92", lines[0].Confidence)
		}
		if lines[0].Page != 2 {
			t.Errorf("page = %d", lines[0].Page)
		}
		if lines[1].Text != "Dostawca:" {
			t.Errorf("text = %q", lines[1].Text)
		}
	})

	t.Run("structural rows and empty words are skipped", func(t *testing.T) {
		tsv := strings.Join([]string{
			tsvHeader,
			"4\t1\t1\t1\t1\t0\t0\t0\t10\t10\t-1\t", // line-level row, conf -1
			tsvRow(1, 1, 1, 80, "tekst"),
			tsvRow(1, 1, 1, 85, "  "),
		}, "\n")

		lines := parseTSVLines(tsv, 1)
		if len(lines) != 1 {
			t.Fatalf("lines = %d, want 1", len(lines))
		}
		if lines[0].Text != "tekst" || lines[0].Confidence != 80 {
			t.Errorf("line = %+v", lines[0])
		}
	})

	t.Run("new block starts a new line even with the same line number", func(t *testing.T) {
		tsv := strings.Join([]string{
			tsvHeader,
			tsvRow(1, 1, 1, 90, "pierwszy"),
			tsvRow(2, 1, 1, 90, "drugi"),
		}, "\n")

		lines := parseTSVLines(tsv, 1)
		if len(lines) != 2 {
			t.Fatalf("lines = %d, want 2", len(lines))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := parseTSVLines("", 1); got != nil {
			t.Fatalf("got %v", got)
		}
	})
}
