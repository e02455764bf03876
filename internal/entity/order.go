package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/pwojcik-dev/orderscan/constants"
)

// Order is the canonical record extracted from one order document.
// Every field is optional: extraction tolerates partial failure and a
// record with only some fields populated is still usable downstream.
type Order struct {
	ID           uuid.UUID `json:"id"`
	OrderNumber  string    `json:"order_number,omitempty"`
	OrderDate    string    `json:"order_date,omitempty"`    // YYYY-MM-DD
	DeliveryDate string    `json:"delivery_date,omitempty"` // YYYY-MM-DD
	DeliveryTime string    `json:"delivery_time,omitempty"` // HH:MM
	DeliveryPlace string   `json:"delivery_place,omitempty"`
	Supplier     Supplier  `json:"supplier"`
	Items        []Item    `json:"items"`
	TotalValue   *float64  `json:"total_value,omitempty"`
	SourcePath   string    `json:"source_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Supplier holds the supplier block of an order document.
type Supplier struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Item is a single order line from the items table.
type Item struct {
	Position   string         `json:"position"` // 4-digit column, kept as text
	Name       string         `json:"name"`
	Quantity   int            `json:"quantity"`
	Unit       constants.Unit `json:"unit"`
	UnitPrice  *float64       `json:"unit_price,omitempty"`
	TotalPrice *float64       `json:"total_price,omitempty"`
}

// HasAnchor reports whether the record carries at least one of the fields
// that justify returning a partial result instead of failing outright.
func (o *Order) HasAnchor() bool {
	return o.OrderNumber != "" || o.OrderDate != "" || len(o.Items) > 0
}
