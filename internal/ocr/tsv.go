package ocr

import (
	"strconv"
	"strings"

	"github.com/pwojcik-dev/orderscan/internal/entity"
)

// tesseract TSV columns; conf and text are the ones we read, the line key
// is (block, par, line).
const (
	tsvColBlock = 2
	tsvColPar   = 3
	tsvColLine  = 4
	tsvColConf  = 10
	tsvColText  = 11
	tsvColCount = 12
)

// parseTSVLines groups tesseract's word-level TSV rows back into text lines
// with a mean word confidence (0-100) per line. Structural rows carry a
// conf of -1 and are skipped.
func parseTSVLines(tsv string, page int) []entity.RawLine {
	var out []entity.RawLine

	var (
		curKey   string
		words    []string
		confSum  float64
		confSeen int
	)
	flush := func() {
		if len(words) == 0 {
			return
		}
		line := strings.TrimSpace(strings.Join(words, " "))
		if line != "" && confSeen > 0 {
			out = append(out, entity.RawLine{
				Text:       line,
				Page:       page,
				Confidence: confSum / float64(confSeen),
			})
		}
		words, confSum, confSeen = nil, 0, 0
	}

	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 || row == "" { // header
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvColCount {
			continue
		}
		conf, err := strconv.ParseFloat(cols[tsvColConf], 64)
		if err != nil || conf < 0 {
			continue
		}
		word := strings.TrimSpace(cols[tsvColText])
		if word == "" {
			continue
		}

		key := cols[tsvColBlock] + "/" + cols[tsvColPar] + "/" + cols[tsvColLine]
		if key != curKey {
			flush()
			curKey = key
		}
		words = append(words, word)
		confSum += conf
		confSeen++
	}
	flush()
	return out
}
