package storage

import (
	"context"

	"github.com/brickoven/pos/internal/app/domain/driver"
	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/domain/order"
	"github.com/brickoven/pos/internal/app/domain/store"
)

// SettingsStore persists the singleton store settings row.
type SettingsStore interface {
	GetStoreLocation(ctx context.Context) (store.Location, error)
	PutStoreLocation(ctx context.Context, loc store.Location) (store.Location, error)
}

// MenuStore persists the menu catalog: categories, items, and modifiers.
type MenuStore interface {
	CreateCategory(ctx context.Context, cat menu.Category) (menu.Category, error)
	UpdateCategory(ctx context.Context, cat menu.Category) (menu.Category, error)
	GetCategory(ctx context.Context, id int64) (menu.Category, error)
	ListCategories(ctx context.Context) ([]menu.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, item menu.Item) (menu.Item, error)
	UpdateItem(ctx context.Context, item menu.Item) (menu.Item, error)
	GetItem(ctx context.Context, id int64) (menu.Item, error)
	ListItems(ctx context.Context, categoryID int64) ([]menu.Item, error)
	DeleteItem(ctx context.Context, id int64) error

	CreateModifierGroup(ctx context.Context, group menu.ModifierGroup) (menu.ModifierGroup, error)
	UpdateModifierGroup(ctx context.Context, group menu.ModifierGroup) (menu.ModifierGroup, error)
	GetModifierGroup(ctx context.Context, id int64) (menu.ModifierGroup, error)
	ListModifierGroups(ctx context.Context) ([]menu.ModifierGroup, error)
	DeleteModifierGroup(ctx context.Context, id int64) error

	CreateModifier(ctx context.Context, mod menu.Modifier) (menu.Modifier, error)
	UpdateModifier(ctx context.Context, mod menu.Modifier) (menu.Modifier, error)
	GetModifier(ctx context.Context, id int64) (menu.Modifier, error)
	ListModifiers(ctx context.Context, groupID int64) ([]menu.Modifier, error)
	DeleteModifier(ctx context.Context, id int64) error
}

// LayoutStore persists button panels and their slot grids. ReplacePanelSlots
// swaps the entire slot set for a panel in one atomic unit; no partial grid
// state is ever observable.
type LayoutStore interface {
	CreatePanel(ctx context.Context, panel menu.Panel) (menu.Panel, error)
	UpdatePanel(ctx context.Context, panel menu.Panel) (menu.Panel, error)
	GetPanel(ctx context.Context, id int64) (menu.Panel, error)
	ListPanels(ctx context.Context, categoryID int64) ([]menu.Panel, error)
	DeletePanel(ctx context.Context, id int64) error

	ListPanelSlots(ctx context.Context, panelID int64) ([]menu.Slot, error)
	ReplacePanelSlots(ctx context.Context, panelID int64, slots []menu.Slot) ([]menu.Slot, error)
}

// DriverStore persists delivery drivers.
type DriverStore interface {
	CreateDriver(ctx context.Context, drv driver.Driver) (driver.Driver, error)
	UpdateDriver(ctx context.Context, drv driver.Driver) (driver.Driver, error)
	GetDriver(ctx context.Context, id int64) (driver.Driver, error)
	ListDrivers(ctx context.Context) ([]driver.Driver, error)
	DeleteDriver(ctx context.Context, id int64) error
}

// OrderStore persists orders with their lines, plus daily settlement rows.
type OrderStore interface {
	CreateOrder(ctx context.Context, ord order.Order) (order.Order, error)
	UpdateOrder(ctx context.Context, ord order.Order) (order.Order, error)
	GetOrder(ctx context.Context, id string) (order.Order, error)
	ListOrders(ctx context.Context, businessDate string, status order.Status) ([]order.Order, error)

	PutSettlement(ctx context.Context, s order.Settlement) (order.Settlement, error)
	GetSettlement(ctx context.Context, businessDate string) (order.Settlement, error)
}
