// Package menu defines the menu catalog: categories, items, button panels,
// panel slots, and modifiers.
package menu

import "time"

// Category groups menu items and owns zero or more button panels.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is a sellable menu entry. Prices are integer cents.
type Item struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Name       string    `json:"name"`
	PrintName  string    `json:"print_name"`
	PriceCents int64     `json:"price_cents"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Panel is a named grid of button slots rendered as the cashier-facing item
// grid for one category.
type Panel struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Name       string    `json:"name"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Slot is one occupied cell (or merged block) in a panel's button grid.
// The full slot set for a panel is replaced wholesale on every save.
// JSON is camelCase to match the layout editor contract.
type Slot struct {
	ID            int64   `json:"id"`
	PanelID       int64   `json:"panelId"`
	RowIndex      int     `json:"rowIndex"`
	ColIndex      int     `json:"colIndex"`
	RowSpan       int     `json:"rowSpan"`
	ColSpan       int     `json:"colSpan"`
	ItemID        *int64  `json:"itemId"`
	LabelOverride *string `json:"labelOverride"`
	SortOrder     int     `json:"sortOrder"`
}

// ModifierGroup bundles modifiers with selection bounds (e.g. "Toppings",
// pick 0-5).
type ModifierGroup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	MinSelect int       `json:"min_select"`
	MaxSelect int       `json:"max_select"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Modifier is one selectable option within a group. PriceDeltaCents may be
// negative (e.g. "no cheese" discounts).
type Modifier struct {
	ID              int64     `json:"id"`
	GroupID         int64     `json:"group_id"`
	Name            string    `json:"name"`
	PriceDeltaCents int64     `json:"price_delta_cents"`
	SortOrder       int       `json:"sort_order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
