package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/brickoven/pos/internal/app/domain/driver"
	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/domain/order"
	"github.com/brickoven/pos/internal/app/domain/store"
	"github.com/brickoven/pos/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.SettingsStore = (*Store)(nil)
var _ storage.MenuStore = (*Store)(nil)
var _ storage.LayoutStore = (*Store)(nil)
var _ storage.DriverStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)

// ErrDuplicateSlot marks a unique-constraint violation on
// (panel_id, row_index, col_index) inside the slot replace transaction.
var ErrDuplicateSlot = errors.New("duplicate slot cell")

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- SettingsStore ----------------------------------------------------------

func (s *Store) GetStoreLocation(ctx context.Context) (store.Location, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, address, city, state, zip, lat, lon, updated_at
		FROM store_settings
		WHERE id = $1
	`, store.SettingsRowID)

	var loc store.Location
	if err := row.Scan(&loc.Name, &loc.Address, &loc.City, &loc.State, &loc.Zip, &loc.Lat, &loc.Lon, &loc.UpdatedAt); err != nil {
		return store.Location{}, err
	}
	return loc, nil
}

func (s *Store) PutStoreLocation(ctx context.Context, loc store.Location) (store.Location, error) {
	loc.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO store_settings (id, name, address, city, state, zip, lat, lon, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, address = EXCLUDED.address, city = EXCLUDED.city,
		    state = EXCLUDED.state, zip = EXCLUDED.zip, lat = EXCLUDED.lat,
		    lon = EXCLUDED.lon, updated_at = EXCLUDED.updated_at
	`, store.SettingsRowID, loc.Name, loc.Address, loc.City, loc.State, loc.Zip, loc.Lat, loc.Lon, loc.UpdatedAt)
	if err != nil {
		return store.Location{}, err
	}
	return loc, nil
}

// --- MenuStore --------------------------------------------------------------

func (s *Store) CreateCategory(ctx context.Context, cat menu.Category) (menu.Category, error) {
	now := time.Now().UTC()
	cat.CreatedAt = now
	cat.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO menu_categories (name, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, cat.Name, cat.SortOrder, cat.Active, cat.CreatedAt, cat.UpdatedAt).Scan(&cat.ID)
	if err != nil {
		return menu.Category{}, err
	}
	return cat, nil
}

func (s *Store) UpdateCategory(ctx context.Context, cat menu.Category) (menu.Category, error) {
	existing, err := s.GetCategory(ctx, cat.ID)
	if err != nil {
		return menu.Category{}, err
	}
	cat.CreatedAt = existing.CreatedAt
	cat.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE menu_categories
		SET name = $2, sort_order = $3, active = $4, updated_at = $5
		WHERE id = $1
	`, cat.ID, cat.Name, cat.SortOrder, cat.Active, cat.UpdatedAt)
	if err != nil {
		return menu.Category{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return menu.Category{}, sql.ErrNoRows
	}
	return cat, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (menu.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, sort_order, active, created_at, updated_at
		FROM menu_categories
		WHERE id = $1
	`, id)

	var cat menu.Category
	if err := row.Scan(&cat.ID, &cat.Name, &cat.SortOrder, &cat.Active, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
		return menu.Category{}, err
	}
	return cat, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]menu.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, sort_order, active, created_at, updated_at
		FROM menu_categories
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []menu.Category
	for rows.Next() {
		var cat menu.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.SortOrder, &cat.Active, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "menu_categories", id)
}

func (s *Store) CreateItem(ctx context.Context, item menu.Item) (menu.Item, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (category_id, name, print_name, price_cents, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, item.CategoryID, item.Name, item.PrintName, item.PriceCents, item.Active, item.CreatedAt, item.UpdatedAt).Scan(&item.ID)
	if err != nil {
		return menu.Item{}, err
	}
	return item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item menu.Item) (menu.Item, error) {
	existing, err := s.GetItem(ctx, item.ID)
	if err != nil {
		return menu.Item{}, err
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE menu_items
		SET category_id = $2, name = $3, print_name = $4, price_cents = $5, active = $6, updated_at = $7
		WHERE id = $1
	`, item.ID, item.CategoryID, item.Name, item.PrintName, item.PriceCents, item.Active, item.UpdatedAt)
	if err != nil {
		return menu.Item{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return menu.Item{}, sql.ErrNoRows
	}
	return item, nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (menu.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, print_name, price_cents, active, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`, id)

	var item menu.Item
	if err := row.Scan(&item.ID, &item.CategoryID, &item.Name, &item.PrintName, &item.PriceCents, &item.Active, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return menu.Item{}, err
	}
	return item, nil
}

func (s *Store) ListItems(ctx context.Context, categoryID int64) ([]menu.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, name, print_name, price_cents, active, created_at, updated_at
		FROM menu_items
		WHERE $1 = 0 OR category_id = $1
		ORDER BY id
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []menu.Item
	for rows.Next() {
		var item menu.Item
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.PrintName, &item.PriceCents, &item.Active, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "menu_items", id)
}

func (s *Store) CreateModifierGroup(ctx context.Context, group menu.ModifierGroup) (menu.ModifierGroup, error) {
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO modifier_groups (name, min_select, max_select, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, group.Name, group.MinSelect, group.MaxSelect, group.CreatedAt, group.UpdatedAt).Scan(&group.ID)
	if err != nil {
		return menu.ModifierGroup{}, err
	}
	return group, nil
}

func (s *Store) UpdateModifierGroup(ctx context.Context, group menu.ModifierGroup) (menu.ModifierGroup, error) {
	existing, err := s.GetModifierGroup(ctx, group.ID)
	if err != nil {
		return menu.ModifierGroup{}, err
	}
	group.CreatedAt = existing.CreatedAt
	group.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE modifier_groups
		SET name = $2, min_select = $3, max_select = $4, updated_at = $5
		WHERE id = $1
	`, group.ID, group.Name, group.MinSelect, group.MaxSelect, group.UpdatedAt)
	if err != nil {
		return menu.ModifierGroup{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return menu.ModifierGroup{}, sql.ErrNoRows
	}
	return group, nil
}

func (s *Store) GetModifierGroup(ctx context.Context, id int64) (menu.ModifierGroup, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, min_select, max_select, created_at, updated_at
		FROM modifier_groups
		WHERE id = $1
	`, id)

	var group menu.ModifierGroup
	if err := row.Scan(&group.ID, &group.Name, &group.MinSelect, &group.MaxSelect, &group.CreatedAt, &group.UpdatedAt); err != nil {
		return menu.ModifierGroup{}, err
	}
	return group, nil
}

func (s *Store) ListModifierGroups(ctx context.Context) ([]menu.ModifierGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, min_select, max_select, created_at, updated_at
		FROM modifier_groups
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []menu.ModifierGroup
	for rows.Next() {
		var group menu.ModifierGroup
		if err := rows.Scan(&group.ID, &group.Name, &group.MinSelect, &group.MaxSelect, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, group)
	}
	return result, rows.Err()
}

func (s *Store) DeleteModifierGroup(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "modifier_groups", id)
}

func (s *Store) CreateModifier(ctx context.Context, mod menu.Modifier) (menu.Modifier, error) {
	now := time.Now().UTC()
	mod.CreatedAt = now
	mod.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO modifiers (group_id, name, price_delta_cents, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, mod.GroupID, mod.Name, mod.PriceDeltaCents, mod.SortOrder, mod.CreatedAt, mod.UpdatedAt).Scan(&mod.ID)
	if err != nil {
		return menu.Modifier{}, err
	}
	return mod, nil
}

func (s *Store) UpdateModifier(ctx context.Context, mod menu.Modifier) (menu.Modifier, error) {
	existing, err := s.GetModifier(ctx, mod.ID)
	if err != nil {
		return menu.Modifier{}, err
	}
	mod.GroupID = existing.GroupID
	mod.CreatedAt = existing.CreatedAt
	mod.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE modifiers
		SET name = $2, price_delta_cents = $3, sort_order = $4, updated_at = $5
		WHERE id = $1
	`, mod.ID, mod.Name, mod.PriceDeltaCents, mod.SortOrder, mod.UpdatedAt)
	if err != nil {
		return menu.Modifier{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return menu.Modifier{}, sql.ErrNoRows
	}
	return mod, nil
}

func (s *Store) GetModifier(ctx context.Context, id int64) (menu.Modifier, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, name, price_delta_cents, sort_order, created_at, updated_at
		FROM modifiers
		WHERE id = $1
	`, id)

	var mod menu.Modifier
	if err := row.Scan(&mod.ID, &mod.GroupID, &mod.Name, &mod.PriceDeltaCents, &mod.SortOrder, &mod.CreatedAt, &mod.UpdatedAt); err != nil {
		return menu.Modifier{}, err
	}
	return mod, nil
}

func (s *Store) ListModifiers(ctx context.Context, groupID int64) ([]menu.Modifier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, name, price_delta_cents, sort_order, created_at, updated_at
		FROM modifiers
		WHERE $1 = 0 OR group_id = $1
		ORDER BY sort_order, id
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []menu.Modifier
	for rows.Next() {
		var mod menu.Modifier
		if err := rows.Scan(&mod.ID, &mod.GroupID, &mod.Name, &mod.PriceDeltaCents, &mod.SortOrder, &mod.CreatedAt, &mod.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, mod)
	}
	return result, rows.Err()
}

func (s *Store) DeleteModifier(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "modifiers", id)
}

// --- LayoutStore ------------------------------------------------------------

func (s *Store) CreatePanel(ctx context.Context, panel menu.Panel) (menu.Panel, error) {
	now := time.Now().UTC()
	panel.CreatedAt = now
	panel.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO menu_panels (category_id, name, grid_rows, grid_cols, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, panel.CategoryID, panel.Name, panel.Rows, panel.Cols, panel.SortOrder, panel.CreatedAt, panel.UpdatedAt).Scan(&panel.ID)
	if err != nil {
		return menu.Panel{}, err
	}
	return panel, nil
}

func (s *Store) UpdatePanel(ctx context.Context, panel menu.Panel) (menu.Panel, error) {
	existing, err := s.GetPanel(ctx, panel.ID)
	if err != nil {
		return menu.Panel{}, err
	}
	panel.CategoryID = existing.CategoryID
	panel.CreatedAt = existing.CreatedAt
	panel.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE menu_panels
		SET name = $2, grid_rows = $3, grid_cols = $4, sort_order = $5, updated_at = $6
		WHERE id = $1
	`, panel.ID, panel.Name, panel.Rows, panel.Cols, panel.SortOrder, panel.UpdatedAt)
	if err != nil {
		return menu.Panel{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return menu.Panel{}, sql.ErrNoRows
	}
	return panel, nil
}

func (s *Store) GetPanel(ctx context.Context, id int64) (menu.Panel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, grid_rows, grid_cols, sort_order, created_at, updated_at
		FROM menu_panels
		WHERE id = $1
	`, id)

	var panel menu.Panel
	if err := row.Scan(&panel.ID, &panel.CategoryID, &panel.Name, &panel.Rows, &panel.Cols, &panel.SortOrder, &panel.CreatedAt, &panel.UpdatedAt); err != nil {
		return menu.Panel{}, err
	}
	return panel, nil
}

func (s *Store) ListPanels(ctx context.Context, categoryID int64) ([]menu.Panel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, name, grid_rows, grid_cols, sort_order, created_at, updated_at
		FROM menu_panels
		WHERE $1 = 0 OR category_id = $1
		ORDER BY sort_order, id
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []menu.Panel
	for rows.Next() {
		var panel menu.Panel
		if err := rows.Scan(&panel.ID, &panel.CategoryID, &panel.Name, &panel.Rows, &panel.Cols, &panel.SortOrder, &panel.CreatedAt, &panel.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, panel)
	}
	return result, rows.Err()
}

// DeletePanel removes a panel; menu_layout_slots rows cascade.
func (s *Store) DeletePanel(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "menu_panels", id)
}

func (s *Store) ListPanelSlots(ctx context.Context, panelID int64) ([]menu.Slot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, panel_id, row_index, col_index, row_span, col_span, item_id, label_override, sort_order
		FROM menu_layout_slots
		WHERE panel_id = $1
		ORDER BY row_index, col_index
	`, panelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlots(rows)
}

// ReplacePanelSlots swaps the panel's entire slot set inside one transaction:
// delete everything, insert the new grid, commit. Any failure rolls back so
// the previously saved grid stays intact.
func (s *Store) ReplacePanelSlots(ctx context.Context, panelID int64, slots []menu.Slot) ([]menu.Slot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin slot replace: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM menu_layout_slots WHERE panel_id = $1
	`, panelID); err != nil {
		rollback(tx)
		return nil, fmt.Errorf("clear panel slots: %w", err)
	}

	for _, slot := range slots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO menu_layout_slots (panel_id, row_index, col_index, row_span, col_span, item_id, label_override, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, panelID, slot.RowIndex, slot.ColIndex, slot.RowSpan, slot.ColSpan, toNullInt(slot.ItemID), toNullString(slot.LabelOverride), slot.SortOrder)
		if err != nil {
			rollback(tx)
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w at row %d col %d", ErrDuplicateSlot, slot.RowIndex, slot.ColIndex)
			}
			return nil, fmt.Errorf("insert panel slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit slot replace: %w", err)
	}

	return s.ListPanelSlots(ctx, panelID)
}

// --- DriverStore ------------------------------------------------------------

func (s *Store) CreateDriver(ctx context.Context, drv driver.Driver) (driver.Driver, error) {
	now := time.Now().UTC()
	drv.CreatedAt = now
	drv.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO drivers (name, phone, status, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, drv.Name, drv.Phone, drv.Status, drv.Active, drv.CreatedAt, drv.UpdatedAt).Scan(&drv.ID)
	if err != nil {
		return driver.Driver{}, err
	}
	return drv, nil
}

func (s *Store) UpdateDriver(ctx context.Context, drv driver.Driver) (driver.Driver, error) {
	existing, err := s.GetDriver(ctx, drv.ID)
	if err != nil {
		return driver.Driver{}, err
	}
	drv.CreatedAt = existing.CreatedAt
	drv.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE drivers
		SET name = $2, phone = $3, status = $4, active = $5, updated_at = $6
		WHERE id = $1
	`, drv.ID, drv.Name, drv.Phone, drv.Status, drv.Active, drv.UpdatedAt)
	if err != nil {
		return driver.Driver{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return driver.Driver{}, sql.ErrNoRows
	}
	return drv, nil
}

func (s *Store) GetDriver(ctx context.Context, id int64) (driver.Driver, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, status, active, created_at, updated_at
		FROM drivers
		WHERE id = $1
	`, id)

	var drv driver.Driver
	if err := row.Scan(&drv.ID, &drv.Name, &drv.Phone, &drv.Status, &drv.Active, &drv.CreatedAt, &drv.UpdatedAt); err != nil {
		return driver.Driver{}, err
	}
	return drv, nil
}

func (s *Store) ListDrivers(ctx context.Context) ([]driver.Driver, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, status, active, created_at, updated_at
		FROM drivers
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []driver.Driver
	for rows.Next() {
		var drv driver.Driver
		if err := rows.Scan(&drv.ID, &drv.Name, &drv.Phone, &drv.Status, &drv.Active, &drv.CreatedAt, &drv.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, drv)
	}
	return result, rows.Err()
}

func (s *Store) DeleteDriver(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "drivers", id)
}

// --- OrderStore -------------------------------------------------------------

func (s *Store) CreateOrder(ctx context.Context, ord order.Order) (order.Order, error) {
	if ord.ID == "" {
		ord.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ord.CreatedAt = now
	ord.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, fmt.Errorf("begin order create: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_type, status, customer_name, customer_phone, delivery_address,
		                    driver_id, subtotal_cents, tax_cents, delivery_fee_cents, total_cents,
		                    created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING number
	`, ord.ID, ord.Type, ord.Status, ord.CustomerName, ord.CustomerPhone, ord.DeliveryAddress,
		toNullInt(ord.DriverID), ord.SubtotalCents, ord.TaxCents, ord.DeliveryFeeCents, ord.TotalCents,
		ord.CreatedAt, ord.UpdatedAt, toNullTime(ord.CompletedAt)).Scan(&ord.Number)
	if err != nil {
		rollback(tx)
		return order.Order{}, err
	}

	for i := range ord.Lines {
		if ord.Lines[i].ID == "" {
			ord.Lines[i].ID = uuid.NewString()
		}
		ord.Lines[i].OrderID = ord.ID

		modsJSON, err := json.Marshal(ord.Lines[i].Modifiers)
		if err != nil {
			rollback(tx)
			return order.Order{}, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (id, order_id, item_id, name, unit_price_cents, quantity, modifiers)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, ord.Lines[i].ID, ord.ID, ord.Lines[i].ItemID, ord.Lines[i].Name, ord.Lines[i].UnitPriceCents, ord.Lines[i].Quantity, modsJSON); err != nil {
			rollback(tx)
			return order.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, fmt.Errorf("commit order create: %w", err)
	}
	return ord, nil
}

func (s *Store) UpdateOrder(ctx context.Context, ord order.Order) (order.Order, error) {
	existing, err := s.GetOrder(ctx, ord.ID)
	if err != nil {
		return order.Order{}, err
	}
	ord.Number = existing.Number
	ord.CreatedAt = existing.CreatedAt
	ord.UpdatedAt = time.Now().UTC()
	if len(ord.Lines) == 0 {
		ord.Lines = existing.Lines
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, customer_name = $3, customer_phone = $4, delivery_address = $5,
		    driver_id = $6, subtotal_cents = $7, tax_cents = $8, delivery_fee_cents = $9,
		    total_cents = $10, updated_at = $11, completed_at = $12
		WHERE id = $1
	`, ord.ID, ord.Status, ord.CustomerName, ord.CustomerPhone, ord.DeliveryAddress,
		toNullInt(ord.DriverID), ord.SubtotalCents, ord.TaxCents, ord.DeliveryFeeCents,
		ord.TotalCents, ord.UpdatedAt, toNullTime(ord.CompletedAt))
	if err != nil {
		return order.Order{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return order.Order{}, sql.ErrNoRows
	}
	return ord, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, number, order_type, status, customer_name, customer_phone, delivery_address,
		       driver_id, subtotal_cents, tax_cents, delivery_fee_cents, total_cents,
		       created_at, updated_at, completed_at
		FROM orders
		WHERE id = $1
	`, id)

	ord, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}

	lines, err := s.listOrderLines(ctx, ord.ID)
	if err != nil {
		return order.Order{}, err
	}
	ord.Lines = lines
	return ord, nil
}

func (s *Store) ListOrders(ctx context.Context, businessDate string, status order.Status) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, order_type, status, customer_name, customer_phone, delivery_address,
		       driver_id, subtotal_cents, tax_cents, delivery_fee_cents, total_cents,
		       created_at, updated_at, completed_at
		FROM orders
		WHERE ($1 = '' OR to_char(created_at, 'YYYY-MM-DD') = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY number
	`, businessDate, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		lines, err := s.listOrderLines(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Lines = lines
	}
	return result, nil
}

func (s *Store) listOrderLines(ctx context.Context, orderID string) ([]order.Line, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, item_id, name, unit_price_cents, quantity, modifiers
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []order.Line
	for rows.Next() {
		var (
			line    order.Line
			modsRaw []byte
		)
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ItemID, &line.Name, &line.UnitPriceCents, &line.Quantity, &modsRaw); err != nil {
			return nil, err
		}
		if len(modsRaw) > 0 {
			_ = json.Unmarshal(modsRaw, &line.Modifiers)
		}
		result = append(result, line)
	}
	return result, rows.Err()
}

func (s *Store) PutSettlement(ctx context.Context, settle order.Settlement) (order.Settlement, error) {
	settle.GeneratedAt = time.Now().UTC()

	byTypeJSON, err := json.Marshal(settle.ByType)
	if err != nil {
		return order.Settlement{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settlements (business_date, order_count, gross_cents, tax_cents, delivery_fee_cents, net_cents, by_type, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (business_date) DO UPDATE
		SET order_count = EXCLUDED.order_count, gross_cents = EXCLUDED.gross_cents,
		    tax_cents = EXCLUDED.tax_cents, delivery_fee_cents = EXCLUDED.delivery_fee_cents,
		    net_cents = EXCLUDED.net_cents, by_type = EXCLUDED.by_type, generated_at = EXCLUDED.generated_at
	`, settle.BusinessDate, settle.Orders, settle.GrossCents, settle.TaxCents, settle.DeliveryFeeCents, settle.NetCents, byTypeJSON, settle.GeneratedAt)
	if err != nil {
		return order.Settlement{}, err
	}
	return settle, nil
}

func (s *Store) GetSettlement(ctx context.Context, businessDate string) (order.Settlement, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT to_char(business_date, 'YYYY-MM-DD'), order_count, gross_cents, tax_cents, delivery_fee_cents, net_cents, by_type, generated_at
		FROM settlements
		WHERE business_date = $1
	`, businessDate)

	var (
		settle    order.Settlement
		byTypeRaw []byte
	)
	if err := row.Scan(&settle.BusinessDate, &settle.Orders, &settle.GrossCents, &settle.TaxCents, &settle.DeliveryFeeCents, &settle.NetCents, &byTypeRaw, &settle.GeneratedAt); err != nil {
		return order.Settlement{}, err
	}
	if len(byTypeRaw) > 0 {
		_ = json.Unmarshal(byTypeRaw, &settle.ByType)
	}
	return settle, nil
}

// --- Helpers ----------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (order.Order, error) {
	var (
		ord         order.Order
		driverID    sql.NullInt64
		completedAt sql.NullTime
	)
	if err := row.Scan(&ord.ID, &ord.Number, &ord.Type, &ord.Status, &ord.CustomerName, &ord.CustomerPhone,
		&ord.DeliveryAddress, &driverID, &ord.SubtotalCents, &ord.TaxCents, &ord.DeliveryFeeCents,
		&ord.TotalCents, &ord.CreatedAt, &ord.UpdatedAt, &completedAt); err != nil {
		return order.Order{}, err
	}
	if driverID.Valid {
		id := driverID.Int64
		ord.DriverID = &id
	}
	if completedAt.Valid {
		at := completedAt.Time.UTC()
		ord.CompletedAt = &at
	}
	return ord, nil
}

func scanSlots(rows *sql.Rows) ([]menu.Slot, error) {
	var result []menu.Slot
	for rows.Next() {
		var (
			slot   menu.Slot
			itemID sql.NullInt64
			label  sql.NullString
		)
		if err := rows.Scan(&slot.ID, &slot.PanelID, &slot.RowIndex, &slot.ColIndex, &slot.RowSpan, &slot.ColSpan, &itemID, &label, &slot.SortOrder); err != nil {
			return nil, err
		}
		if itemID.Valid {
			id := itemID.Int64
			slot.ItemID = &id
		}
		if label.Valid {
			v := label.String
			slot.LabelOverride = &v
		}
		result = append(result, slot)
	}
	return result, rows.Err()
}

func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func rollback(tx *sql.Tx) {
	// A failed rollback does not change the error reported to the caller.
	_ = tx.Rollback()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func toNullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func toNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
