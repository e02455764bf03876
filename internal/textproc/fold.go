package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stroked letters do not decompose under NFD, so they need an explicit map
var strokeReplacer = strings.NewReplacer("ł", "l", "Ł", "L")

// Fold strips Polish diacritics and lowercases, so patterns match OCR output
// that randomly drops or mangles accents ("Zamowienie" vs "Zamówienie").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strokeReplacer.Replace(out))
}
