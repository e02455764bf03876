package orderparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var reAllSpace = regexp.MustCompile(`\s+`)

// ParseNumber parses a document-format decimal ("100,00", "10 800,00").
// Policy, applied everywhere numbers appear: strip all whitespace, convert
// the decimal comma to a period, parse as float. Callers leave the target
// field unset on error instead of writing a zero.
func ParseNumber(raw string) (float64, error) {
	clean := strings.ReplaceAll(reAllSpace.ReplaceAllString(raw, ""), ",", ".")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", raw, err)
	}
	return v, nil
}

// ParseDate reorders dd.mm.yyyy into yyyy-mm-dd.
func ParseDate(raw string) (string, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("parse date %q: want dd.mm.yyyy", raw)
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0], nil
}
