package entity

// LineCategory is the semantic category assigned to one document line.
type LineCategory string

const (
	CatOrderNumber         LineCategory = "order_number"
	CatOrderDate           LineCategory = "order_date"
	CatCustomerHeader      LineCategory = "customer_header"
	CatCustomerName        LineCategory = "customer_name"
	CatDeliveryDate        LineCategory = "delivery_date"
	CatDeliveryPlaceHeader LineCategory = "delivery_place_header"
	CatDeliveryAddress     LineCategory = "delivery_address"
	CatProductsHeader      LineCategory = "products_header"
	CatProduct             LineCategory = "product"
	CatProducts            LineCategory = "products" // merged items section
	CatUnknown             LineCategory = "unknown"
)

// RawLine is one normalized text line with its recognition confidence
// (0-100; 100 for digitally extracted text).
type RawLine struct {
	Text       string
	Page       int
	Confidence float64
}

// ClassifiedLine is the result of classifying one RawLine.
type ClassifiedLine struct {
	Text       string
	Category   LineCategory
	Subtype    string
	Properties map[string]string
	Confidence float64
}

// SemanticGroup is a run of classified lines describing one logical field.
// Text keeps the constituent lines joined with newlines in scan order.
// Confidence is the arithmetic mean of the member confidences.
type SemanticGroup struct {
	Type       LineCategory
	Subtype    string
	Text       string
	Confidence float64
	Properties map[string]string
	Items      []map[string]string // populated only for merged products groups
}
