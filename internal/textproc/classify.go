package textproc

import (
	"regexp"
	"strings"

	"github.com/pwojcik-dev/orderscan/constants"
	"github.com/pwojcik-dev/orderscan/internal/entity"
)

// Patterns tolerate missing diacritics: OCR drops them often enough that
// every accented keyword carries its plain-ASCII alternate.
var (
	reSpace          = regexp.MustCompile(`\s+`)
	reOrderCombined  = regexp.MustCompile(`(?i)nr\s*zam[óo]wienia\s*/\s*data\s*zam[óo]wienia:?\s*(\d+)\s*/\s*(\d{2}\.\d{2}\.\d{4})`)
	reOrderDate      = regexp.MustCompile(`(?i)data\s*(?:zam\.?|zam[óo]wienia)\s*:?\s*(\d{2}[.-]\d{2}[.-]\d{4})`)
	reCustomerHeader = regexp.MustCompile(`(?i)^(?:zamawiaj[ąa]cy|nabywca|odbiorca)[\s:]`)
	reDeliveryDate   = regexp.MustCompile(`(?i)(?:termin|data)\s*dostawy\s*:?\s*(\d{2}[.-]\d{2}[.-]\d{4})(?:,?\s*godz\.?\s*(\d{2}:\d{2}))?`)
	rePlaceHeader    = regexp.MustCompile(`(?i)^(?:miejsce|adres)\s*dostawy[\s:]`)
	reStreet         = regexp.MustCompile(`(?i)^(?:ul\.|ulica|al\.|aleja|pl\.|plac)\b`)
	rePostalCode     = regexp.MustCompile(`^\d{2}-\d{3}\s+\p{L}`)
	reProductsHeader = regexp.MustCompile(`(?i)^(?:lp|l\.p\.|poz)\.?\s+.*?(?:nazwa|produkt|towar).*?(?:ilo[śs][ćc]|sztuk|szt)`)
	reProductLine    = regexp.MustCompile(`(?i)^(?:\d+[.)]?\s*)?([^0-9]+?)\s+(\d+(?:[,.]\d+)?)\s*(szt\.?|kg|l|m|op\.?)\s*$`)
)

// rule pairs a detection pattern with its property extractor. Rules are
// evaluated in declaration order and the first match wins.
type rule struct {
	category entity.LineCategory
	extract  func(text string, ctx Context) (props map[string]string, subtype string, ok bool)
}

var rules = []rule{
	{entity.CatOrderNumber, extractOrderCombined},
	{entity.CatOrderDate, extractOrderDate},
	{entity.CatCustomerHeader, extractCustomerHeader},
	{entity.CatCustomerName, extractCustomerName},
	{entity.CatDeliveryDate, extractDeliveryDate},
	{entity.CatDeliveryPlaceHeader, extractPlaceHeader},
	{entity.CatDeliveryAddress, extractAddress},
	{entity.CatProductsHeader, extractProductsHeader},
	{entity.CatProduct, extractProduct},
}

// Classify assigns a semantic category to one line. The context exposes the
// neighboring lines for the handful of rules that depend on what came
// before. Pure function: no state survives the call.
func Classify(line entity.RawLine, ctx Context) entity.ClassifiedLine {
	out := entity.ClassifiedLine{
		Text:       line.Text,
		Category:   entity.CatUnknown,
		Properties: map[string]string{},
		Confidence: line.Confidence,
	}
	text := strings.TrimSpace(reSpace.ReplaceAllString(line.Text, " "))
	if text == "" {
		return out
	}
	out.Text = text
	for _, r := range rules {
		if props, subtype, ok := r.extract(text, ctx); ok {
			out.Category = r.category
			out.Subtype = subtype
			if props != nil {
				out.Properties = props
			}
			return out
		}
	}
	return out
}

// ClassifyAll classifies every line of one page scan in order.
func ClassifyAll(lines []entity.RawLine) []entity.ClassifiedLine {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = strings.TrimSpace(reSpace.ReplaceAllString(l.Text, " "))
	}
	out := make([]entity.ClassifiedLine, len(lines))
	for i, l := range lines {
		out[i] = Classify(l, NewContext(texts, i))
	}
	return out
}

func extractOrderCombined(text string, _ Context) (map[string]string, string, bool) {
	m := reOrderCombined.FindStringSubmatch(text)
	if m == nil {
		return nil, "", false
	}
	return map[string]string{
		"number": m[1],
		"date":   isoDate(m[2]),
	}, "", true
}

func extractOrderDate(text string, _ Context) (map[string]string, string, bool) {
	m := reOrderDate.FindStringSubmatch(text)
	if m == nil {
		return nil, "", false
	}
	return map[string]string{"date": isoDate(m[1])}, "", true
}

func extractCustomerHeader(text string, _ Context) (map[string]string, string, bool) {
	return nil, "", reCustomerHeader.MatchString(text)
}

func extractCustomerName(text string, ctx Context) (map[string]string, string, bool) {
	prev, ok := ctx.Prev()
	if !ok || !reCustomerHeader.MatchString(prev) {
		return nil, "", false
	}
	return map[string]string{"name": text}, "", true
}

func extractDeliveryDate(text string, _ Context) (map[string]string, string, bool) {
	m := reDeliveryDate.FindStringSubmatch(text)
	if m == nil {
		return nil, "", false
	}
	props := map[string]string{"date": isoDate(m[1])}
	if m[2] != "" {
		props["time"] = m[2]
	}
	return props, "", true
}

func extractPlaceHeader(text string, _ Context) (map[string]string, string, bool) {
	return nil, "", rePlaceHeader.MatchString(text)
}

func extractAddress(text string, ctx Context) (map[string]string, string, bool) {
	switch {
	case reStreet.MatchString(text):
		return map[string]string{"address": text}, "street", true
	case rePostalCode.MatchString(text):
		return map[string]string{"address": text}, "postal", true
	}
	if prev, ok := ctx.Prev(); ok && rePlaceHeader.MatchString(prev) {
		return map[string]string{"address": text}, "continuation", true
	}
	return nil, "", false
}

func extractProductsHeader(text string, _ Context) (map[string]string, string, bool) {
	return nil, "", reProductsHeader.MatchString(text)
}

func extractProduct(text string, _ Context) (map[string]string, string, bool) {
	m := reProductLine.FindStringSubmatch(text)
	if m == nil {
		return nil, "", false
	}
	unit, ok := constants.CanonicalizeUnit(m[3])
	if !ok {
		return nil, "", false
	}
	return map[string]string{
		"name":     strings.TrimSpace(m[1]),
		"quantity": strings.ReplaceAll(m[2], ",", "."),
		"unit":     string(unit),
	}, "", true
}

// isoDate reorders dd.mm.yyyy (or dd-mm-yyyy) into yyyy-mm-dd.
func isoDate(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '-' })
	if len(parts) != 3 {
		return s
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}
