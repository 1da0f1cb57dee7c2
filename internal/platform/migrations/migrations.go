// Package migrations applies the database schema in order. Statements are
// idempotent so Apply can run at every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS store_settings (
		id          INTEGER PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		address     TEXT NOT NULL DEFAULT '',
		city        TEXT NOT NULL DEFAULT '',
		state       TEXT NOT NULL DEFAULT '',
		zip         TEXT NOT NULL DEFAULT '',
		lat         DOUBLE PRECISION NOT NULL,
		lon         DOUBLE PRECISION NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`INSERT INTO store_settings (id, name, address, city, state, zip, lat, lon)
	 VALUES (1, 'Brick Oven Pizza', '2401 E Somerset St', 'Philadelphia', 'PA', '19134', 39.9973, -75.1251)
	 ON CONFLICT (id) DO NOTHING`,
	`CREATE TABLE IF NOT EXISTS menu_categories (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		sort_order  INTEGER NOT NULL DEFAULT 0,
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id           BIGSERIAL PRIMARY KEY,
		category_id  BIGINT NOT NULL REFERENCES menu_categories(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		print_name   TEXT NOT NULL DEFAULT '',
		price_cents  BIGINT NOT NULL DEFAULT 0,
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS menu_panels (
		id           BIGSERIAL PRIMARY KEY,
		category_id  BIGINT NOT NULL REFERENCES menu_categories(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		grid_rows    INTEGER NOT NULL DEFAULT 5,
		grid_cols    INTEGER NOT NULL DEFAULT 5,
		sort_order   INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS menu_layout_slots (
		id             BIGSERIAL PRIMARY KEY,
		panel_id       BIGINT NOT NULL REFERENCES menu_panels(id) ON DELETE CASCADE,
		row_index      INTEGER NOT NULL CHECK (row_index >= 0),
		col_index      INTEGER NOT NULL CHECK (col_index >= 0),
		row_span       INTEGER NOT NULL DEFAULT 1 CHECK (row_span >= 1),
		col_span       INTEGER NOT NULL DEFAULT 1 CHECK (col_span >= 1),
		item_id        BIGINT REFERENCES menu_items(id) ON DELETE SET NULL,
		label_override TEXT,
		sort_order     INTEGER NOT NULL DEFAULT 0,
		UNIQUE (panel_id, row_index, col_index)
	)`,
	`CREATE TABLE IF NOT EXISTS modifier_groups (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		min_select  INTEGER NOT NULL DEFAULT 0,
		max_select  INTEGER NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS modifiers (
		id                BIGSERIAL PRIMARY KEY,
		group_id          BIGINT NOT NULL REFERENCES modifier_groups(id) ON DELETE CASCADE,
		name              TEXT NOT NULL,
		price_delta_cents BIGINT NOT NULL DEFAULT 0,
		sort_order        INTEGER NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		phone       TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'off_shift',
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                 UUID PRIMARY KEY,
		number             BIGSERIAL,
		order_type         TEXT NOT NULL,
		status             TEXT NOT NULL,
		customer_name      TEXT NOT NULL DEFAULT '',
		customer_phone     TEXT NOT NULL DEFAULT '',
		delivery_address   TEXT NOT NULL DEFAULT '',
		driver_id          BIGINT REFERENCES drivers(id),
		subtotal_cents     BIGINT NOT NULL DEFAULT 0,
		tax_cents          BIGINT NOT NULL DEFAULT 0,
		delivery_fee_cents BIGINT NOT NULL DEFAULT 0,
		total_cents        BIGINT NOT NULL DEFAULT 0,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL,
		completed_at       TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		id               UUID PRIMARY KEY,
		order_id         UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		item_id          BIGINT NOT NULL,
		name             TEXT NOT NULL,
		unit_price_cents BIGINT NOT NULL,
		quantity         INTEGER NOT NULL,
		modifiers        JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS settlements (
		business_date      DATE PRIMARY KEY,
		order_count        INTEGER NOT NULL,
		gross_cents        BIGINT NOT NULL,
		tax_cents          BIGINT NOT NULL,
		delivery_fee_cents BIGINT NOT NULL,
		net_cents          BIGINT NOT NULL,
		by_type            JSONB NOT NULL DEFAULT '{}',
		generated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at)`,
}

// Apply executes every migration statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

// Count reports how many migration statements Apply executes. Exposed for
// tests that assert against the expected statement count.
func Count() int {
	return len(statements)
}
