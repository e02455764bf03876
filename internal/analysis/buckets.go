package analysis

import (
	"regexp"
	"sort"

	"github.com/pwojcik-dev/orderscan/internal/entity"
	"github.com/pwojcik-dev/orderscan/internal/textproc"
)

// Bucket keyword patterns match against diacritic-folded content, so
// "Płatność" and "Platnosc" land in the same place. First matching bucket
// wins, in display order; dostawca must be caught by company_info before
// the delivery bucket sees "dostaw".
var bucketOrder = []entity.SectionGroup{
	entity.GroupOrderInfo,
	entity.GroupCompanyInfo,
	entity.GroupDelivery,
	entity.GroupItems,
	entity.GroupPayment,
}

var bucketPatterns = map[entity.SectionGroup]*regexp.Regexp{
	entity.GroupOrderInfo:   regexp.MustCompile(`nr zam|numer zam|data zam|zamowieni`),
	entity.GroupCompanyInfo: regexp.MustCompile(`dostawca|sprzedawca|kontrahent|firma|nip|regon`),
	entity.GroupDelivery:    regexp.MustCompile(`dostaw|adres|miejsce|termin`),
	entity.GroupItems:       regexp.MustCompile(`pozycj|produkt|towar|artykul|ilosc|szt\b`),
	entity.GroupPayment:     regexp.MustCompile(`wartosc|netto|brutto|vat|platnosc|cena|kwota|pln`),
}

// bucketLabels are the header rows shown before each non-empty bucket.
var bucketLabels = map[entity.SectionGroup]string{
	entity.GroupOrderInfo:   "Informacje o zamówieniu",
	entity.GroupCompanyInfo: "Dane firmy",
	entity.GroupDelivery:    "Dostawa",
	entity.GroupItems:       "Pozycje zamówienia",
	entity.GroupPayment:     "Płatności",
	entity.GroupOther:       "Pozostałe",
}

// contentPriorities orders sections inside a bucket; lower shows first,
// anything unmatched gets 100 and keeps its document order.
var contentPriorities = []struct {
	re       *regexp.Regexp
	priority int
}{
	{regexp.MustCompile(`nr zamowienia|numer zamowienia`), 10},
	{regexp.MustCompile(`data zamowienia`), 20},
	{regexp.MustCompile(`dostawca`), 30},
	{regexp.MustCompile(`adres`), 40},
	{regexp.MustCompile(`data dostawy|termin dostawy`), 50},
	{regexp.MustCompile(`miejsce dostawy`), 55},
	{regexp.MustCompile(`pozycj|produkt`), 60},
	{regexp.MustCompile(`wartosc netto`), 70},
	{regexp.MustCompile(`vat`), 80},
}

const defaultPriority = 100

// Bucketize assigns each content line to its semantic bucket, orders the
// buckets for display and prepends a header section to every non-empty one.
func Bucketize(contents []string) []entity.Section {
	byGroup := map[entity.SectionGroup][]entity.Section{}
	for _, c := range contents {
		g := classifyContent(c)
		byGroup[g] = append(byGroup[g], entity.Section{
			Content:  c,
			Group:    g,
			Priority: contentPriority(c),
		})
	}

	var out []entity.Section
	for _, g := range append(bucketOrder, entity.GroupOther) {
		sections := byGroup[g]
		if len(sections) == 0 {
			continue
		}
		sort.SliceStable(sections, func(i, j int) bool {
			return sections[i].Priority < sections[j].Priority
		})
		out = append(out, entity.Section{
			Content:  bucketLabels[g],
			IsHeader: true,
			Group:    g,
		})
		out = append(out, sections...)
	}
	return out
}

func classifyContent(content string) entity.SectionGroup {
	folded := textproc.Fold(content)
	for _, g := range bucketOrder {
		if bucketPatterns[g].MatchString(folded) {
			return g
		}
	}
	return entity.GroupOther
}

func contentPriority(content string) int {
	folded := textproc.Fold(content)
	for _, cp := range contentPriorities {
		if cp.re.MatchString(folded) {
			return cp.priority
		}
	}
	return defaultPriority
}
