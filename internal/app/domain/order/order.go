// Package order defines orders, their line items, and settlement totals.
package order

import "time"

// Type is how the customer receives the order.
type Type string

const (
	TypePickup   Type = "pickup"
	TypeDelivery Type = "delivery"
	TypeDineIn   Type = "dine_in"
)

// Status is the order lifecycle state. Canceled is reachable from any
// non-terminal state.
type Status string

const (
	StatusOpen           Status = "open"
	StatusPreparing      Status = "preparing"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusCompleted      Status = "completed"
	StatusCanceled       Status = "canceled"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// LineModifier is one modifier applied to an order line, with its price
// captured at order time.
type LineModifier struct {
	ModifierID      int64  `json:"modifier_id"`
	Name            string `json:"name"`
	PriceDeltaCents int64  `json:"price_delta_cents"`
}

// Line is one item on an order. Unit price and modifier prices are captured
// at order time so later menu edits do not rewrite history.
type Line struct {
	ID             string         `json:"id"`
	OrderID        string         `json:"order_id"`
	ItemID         int64          `json:"item_id"`
	Name           string         `json:"name"`
	UnitPriceCents int64          `json:"unit_price_cents"`
	Quantity       int            `json:"quantity"`
	Modifiers      []LineModifier `json:"modifiers"`
}

// LineTotalCents is the extended price for the line including modifiers.
func (l Line) LineTotalCents() int64 {
	unit := l.UnitPriceCents
	for _, m := range l.Modifiers {
		unit += m.PriceDeltaCents
	}
	return unit * int64(l.Quantity)
}

// Order is one customer order. All money fields are integer cents.
type Order struct {
	ID               string     `json:"id"`
	Number           int64      `json:"number"`
	Type             Type       `json:"type"`
	Status           Status     `json:"status"`
	CustomerName     string     `json:"customer_name"`
	CustomerPhone    string     `json:"customer_phone"`
	DeliveryAddress  string     `json:"delivery_address"`
	DriverID         *int64     `json:"driver_id"`
	SubtotalCents    int64      `json:"subtotal_cents"`
	TaxCents         int64      `json:"tax_cents"`
	DeliveryFeeCents int64      `json:"delivery_fee_cents"`
	TotalCents       int64      `json:"total_cents"`
	Lines            []Line     `json:"lines"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// TypeTotals is one row of a settlement breakdown.
type TypeTotals struct {
	Orders     int   `json:"orders"`
	GrossCents int64 `json:"gross_cents"`
}

// Settlement aggregates a business date's completed orders.
type Settlement struct {
	BusinessDate     string              `json:"business_date"`
	Orders           int                 `json:"orders"`
	GrossCents       int64               `json:"gross_cents"`
	TaxCents         int64               `json:"tax_cents"`
	DeliveryFeeCents int64               `json:"delivery_fee_cents"`
	NetCents         int64               `json:"net_cents"`
	ByType           map[Type]TypeTotals `json:"by_type"`
	GeneratedAt      time.Time           `json:"generated_at"`
}
