package entity

// SectionGroup buckets analysis sections for display.
type SectionGroup string

const (
	GroupOrderInfo   SectionGroup = "order_info"
	GroupCompanyInfo SectionGroup = "company_info"
	GroupDelivery    SectionGroup = "delivery"
	GroupItems       SectionGroup = "items"
	GroupPayment     SectionGroup = "payment"
	GroupOther       SectionGroup = "other"
)

// Section is one display-ready unit of parsed remote analysis output.
// Sections are immutable once produced.
type Section struct {
	Content  string       `json:"content"`
	IsHeader bool         `json:"is_header"`
	Group    SectionGroup `json:"group"`
	Priority int          `json:"priority"`
}

// Analysis is the parsed reply of one remote analysis call.
type Analysis struct {
	Raw      string    `json:"raw"`
	Sections []Section `json:"sections"`
}
