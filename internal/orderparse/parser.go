package orderparse

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pwojcik-dev/orderscan/constants"
	"github.com/pwojcik-dev/orderscan/internal/common"
	"github.com/pwojcik-dev/orderscan/internal/entity"
)

var (
	reHeaderCombined = regexp.MustCompile(`(?i)nr\s*zam[óo]wienia\s*/\s*data\s*zam[óo]wienia:\s*(\d+)\s*/\s*(\d{2}\.\d{2}\.\d{4})`)
	reDelivery       = regexp.MustCompile(`(?i)data\s*dostawy:\s*(\d{2}\.\d{2}\.\d{4})(?:,?\s*godz\.\s*(\d{2}:\d{2}))?`)
	rePlaceMarker    = regexp.MustCompile(`(?i)miejsce\s*dostawy:`)
	reSupplierMarker = regexp.MustCompile(`(?i)^dostawca:\s*$`)
	reSupplierCode   = regexp.MustCompile(`(?i)^kod\s*dostawcy:\s*(.*)$`)
	rePhoneMarker    = regexp.MustCompile(`(?i)^nr\s*telefonu:`)
	reInvoiceMarker  = regexp.MustCompile(`(?i)faktur[ęe]`)
	reItemsHeader    = regexp.MustCompile(`(?i)nazwa`)
	reItemsHeaderQty = regexp.MustCompile(`(?i)ilo[śs][ćc]`)
	reItemsTrailer   = regexp.MustCompile(`(?i)ilo[śs][ćc]\s*pozycji\s*na\s*zam[óo]wieniu`)
	reItemRow        = regexp.MustCompile(`(?i)^(\d{4})\s+([^0-9]+?)\s+(\d+)\s+(SZT|KG|L|M|OP)\s+(\d+[.,]\d+)/(?:SZT|KG|L|M|OP)\s+(\d+[.,]\d+)`)
	reTotal          = regexp.MustCompile(`(?i)ca[łl]k\.\s*wart\.\s*netto\s*PLN\s*(\d+(?:[\s.,]\d+)*)`)
)

// ruleLine is the full-width underscore rule preceding the items table.
const ruleLine = "____________"

// Extractor populates an Order from the raw line sequence of a digitally
// extracted document. It is a separate code path from the classifier: the
// text layer of a born-digital PDF is reliable enough to scan for the known
// markers directly.
type Extractor struct {
	logger *slog.Logger

	// seam for tests and alternate table formats
	itemsFn func(s *scan)
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{logger: logger}
	e.itemsFn = parseItems
	return e
}

// scan carries the cursor state of one extraction, so concurrent documents
// never share position state.
type scan struct {
	lines    []string
	order    *entity.Order
	warnings []string
}

func (s *scan) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// Extract scans normalized text lines into an Order. A failure mid-scan
// returns the partially populated record when at least one anchor field
// (order number, order date, items) was already captured; otherwise the
// error propagates. Validation findings come back as warnings and are never
// fatal.
func (e *Extractor) Extract(lines []string) (ord *entity.Order, warnings []string, err error) {
	s := &scan{
		lines: trimNonEmpty(lines),
		order: &entity.Order{
			ID:        uuid.New(),
			Items:     []entity.Item{},
			CreatedAt: time.Now().UTC(),
		},
	}

	err = e.run(s)
	if err != nil {
		if !s.order.HasAnchor() {
			return nil, s.warnings, common.WrapError(err, "order extraction")
		}
		e.logger.Warn("orderparse.partial", "error", err,
			"order_number", s.order.OrderNumber, "items", len(s.order.Items))
		err = nil
	}

	s.warnings = append(s.warnings, validate(s.order)...)
	for _, w := range s.warnings {
		e.logger.Warn("orderparse.validation", "warning", w)
	}
	return s.order, s.warnings, nil
}

// run executes the scan stages, converting panics from malformed input into
// ordinary errors so the partial-result policy above can apply.
func (e *Extractor) run(s *scan) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.NewAppError("PARSE_PANIC", fmt.Sprintf("%v", r), common.ErrParseFailure)
		}
	}()
	parseHeader(s)
	parseSupplier(s)
	e.itemsFn(s)
	parseTotal(s)
	return nil
}

// parseHeader captures the order number/date line, the delivery date line
// and the multi-line delivery place.
func parseHeader(s *scan) {
	for i := 0; i < len(s.lines); i++ {
		line := s.lines[i]

		if m := reHeaderCombined.FindStringSubmatch(line); m != nil {
			s.order.OrderNumber = m[1]
			if d, err := ParseDate(m[2]); err == nil {
				s.order.OrderDate = d
			} else {
				s.warnf("nieprawidłowa data zamówienia: %s", m[2])
			}
			continue
		}

		if m := reDelivery.FindStringSubmatch(line); m != nil {
			if d, err := ParseDate(m[1]); err == nil {
				s.order.DeliveryDate = d
			} else {
				s.warnf("nieprawidłowa data dostawy: %s", m[1])
			}
			s.order.DeliveryTime = m[2]
			continue
		}

		if loc := rePlaceMarker.FindStringIndex(line); loc != nil {
			place := strings.TrimSpace(line[loc[1]:])
			j := i + 1
			for j < len(s.lines) && !placeSentinel(s.lines[j]) {
				place += " " + s.lines[j]
				j++
			}
			s.order.DeliveryPlace = strings.TrimSpace(place)
			i = j - 1
		}
	}
}

// placeSentinel ends the delivery place accumulation: the next known marker,
// a full-width rule line, or the phone number line.
func placeSentinel(line string) bool {
	return reDelivery.MatchString(line) ||
		reInvoiceMarker.MatchString(line) ||
		strings.Contains(line, "_____") ||
		rePhoneMarker.MatchString(line)
}

// parseSupplier reads the block after "Dostawca:": first usable line is the
// name, the rest joins into the address; a "Kod dostawcy:" line fills the
// supplier code instead.
func parseSupplier(s *scan) {
	for i, line := range s.lines {
		if !reSupplierMarker.MatchString(line) {
			continue
		}
		var sup entity.Supplier
		for j := i + 1; j < len(s.lines); j++ {
			next := s.lines[j]
			if rePlaceMarker.MatchString(next) || reDelivery.MatchString(next) ||
				strings.Contains(next, ruleLine) {
				break
			}
			if m := reSupplierCode.FindStringSubmatch(next); m != nil {
				sup.Code = strings.TrimSpace(m[1])
				continue
			}
			if next == "" {
				continue
			}
			if sup.Name == "" {
				sup.Name = next
			} else if sup.Address == "" {
				sup.Address = next
			} else {
				sup.Address += " " + next
			}
		}
		if sup.Name != "" {
			s.order.Supplier = sup
		}
		return
	}
}

// parseItems finds the items table (rule line followed by a header naming
// the name and quantity columns) and parses rows until the item-count
// trailer. Rows that do not match the row pattern are skipped.
func parseItems(s *scan) {
	inSection := false
	var items []entity.Item

	for i := 0; i < len(s.lines); i++ {
		line := s.lines[i]

		if !inSection && strings.Contains(line, ruleLine) && i+1 < len(s.lines) {
			next := s.lines[i+1]
			if reItemsHeader.MatchString(next) && reItemsHeaderQty.MatchString(next) {
				inSection = true
				i++ // skip the header line
				continue
			}
		}

		if !inSection {
			continue
		}
		if reItemsTrailer.MatchString(line) {
			break
		}

		m := reItemRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := entity.Item{
			Position: m[1],
			Name:     strings.TrimSpace(m[2]),
		}
		if q, err := strconv.Atoi(m[3]); err == nil {
			item.Quantity = q
		} else {
			s.warnf("nieprawidłowa ilość w pozycji %s: %s", m[1], m[3])
		}
		if u, ok := constants.CanonicalizeUnit(m[4]); ok {
			item.Unit = u
		}
		if v, err := ParseNumber(m[5]); err == nil {
			item.UnitPrice = &v
		} else {
			s.warnf("nieprawidłowa cena jednostkowa w pozycji %s: %s", m[1], m[5])
		}
		if v, err := ParseNumber(m[6]); err == nil {
			item.TotalPrice = &v
		} else {
			s.warnf("nieprawidłowa wartość w pozycji %s: %s", m[1], m[6])
		}
		items = append(items, item)
	}

	if len(items) > 0 {
		s.order.Items = items
	}
}

// parseTotal captures the net total anchored on the canonical label.
func parseTotal(s *scan) {
	for _, line := range s.lines {
		m := reTotal.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v, err := ParseNumber(m[1]); err == nil {
			s.order.TotalValue = &v
		} else {
			s.warnf("nieprawidłowa wartość całkowita: %s", m[1])
		}
		return
	}
}

// validate emits non-fatal warnings for missing recommended fields.
func validate(o *entity.Order) []string {
	var warns []string
	if o.OrderNumber == "" {
		warns = append(warns, "brak numeru zamówienia")
	}
	if o.OrderDate == "" {
		warns = append(warns, "brak daty zamówienia")
	}
	if o.DeliveryDate == "" {
		warns = append(warns, "brak daty dostawy")
	}
	if o.DeliveryPlace == "" {
		warns = append(warns, "brak miejsca dostawy")
	}
	if len(o.Items) == 0 {
		warns = append(warns, "brak pozycji zamówienia")
		return warns
	}
	for i, item := range o.Items {
		if item.UnitPrice == nil {
			warns = append(warns, fmt.Sprintf("brak ceny jednostkowej dla pozycji %d", i+1))
		}
		if item.TotalPrice == nil {
			warns = append(warns, fmt.Sprintf("brak wartości całkowitej dla pozycji %d", i+1))
		}
	}
	return warns
}

func trimNonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
