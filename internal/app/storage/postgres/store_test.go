package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/domain/order"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	return New(db), mock, func() { db.Close() }
}

func TestReplacePanelSlotsCommitsAndRereads(t *testing.T) {
	st, mock, done := newMockStore(t)
	defer done()

	itemID := int64(7)
	slots := []menu.Slot{
		{PanelID: 3, RowIndex: 0, ColIndex: 0, RowSpan: 1, ColSpan: 2, ItemID: &itemID, SortOrder: 0},
		{PanelID: 3, RowIndex: 1, ColIndex: 0, RowSpan: 1, ColSpan: 1, SortOrder: 1},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM menu_layout_slots").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("INSERT INTO menu_layout_slots").
		WithArgs(int64(3), 0, 0, 1, 2, sqlmock.AnyArg(), sqlmock.AnyArg(), 0).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("INSERT INTO menu_layout_slots").
		WithArgs(int64(3), 1, 0, 1, 1, sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	cols := []string{"id", "panel_id", "row_index", "col_index", "row_span", "col_span", "item_id", "label_override", "sort_order"}
	mock.ExpectQuery("SELECT id, panel_id, row_index, col_index").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(10, 3, 0, 0, 1, 2, 7, nil, 0).
			AddRow(11, 3, 1, 0, 1, 1, nil, nil, 1))

	got, err := st.ReplacePanelSlots(context.Background(), 3, slots)
	if err != nil {
		t.Fatalf("replace slots: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 slots back, got %d", len(got))
	}
	if got[0].ItemID == nil || *got[0].ItemID != 7 {
		t.Fatalf("first slot should keep item 7, got %+v", got[0])
	}
	if got[1].ItemID != nil {
		t.Fatalf("second slot should have no item, got %+v", got[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplacePanelSlotsRollsBackOnInsertFailure(t *testing.T) {
	st, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM menu_layout_slots").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO menu_layout_slots").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := st.ReplacePanelSlots(context.Background(), 3, []menu.Slot{
		{PanelID: 3, RowIndex: 0, ColIndex: 0, RowSpan: 1, ColSpan: 1},
	})
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplacePanelSlotsMapsUniqueViolation(t *testing.T) {
	st, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM menu_layout_slots").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO menu_layout_slots").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := st.ReplacePanelSlots(context.Background(), 3, []menu.Slot{
		{PanelID: 3, RowIndex: 2, ColIndex: 4, RowSpan: 1, ColSpan: 1},
	})
	if !errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("expected ErrDuplicateSlot, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateOrderWritesLinesInOneTransaction(t *testing.T) {
	st, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow(42))
	mock.ExpectExec("INSERT INTO order_lines").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_lines").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ord, err := st.CreateOrder(context.Background(), order.Order{
		Type:   order.TypePickup,
		Status: order.StatusOpen,
		Lines: []order.Line{
			{ItemID: 1, Name: "LG PIE", UnitPriceCents: 1500, Quantity: 2},
			{ItemID: 2, Name: "SODA", UnitPriceCents: 250, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if ord.ID == "" {
		t.Fatal("expected a generated order id")
	}
	if ord.Number != 42 {
		t.Fatalf("expected order number 42, got %d", ord.Number)
	}
	for _, line := range ord.Lines {
		if line.ID == "" || line.OrderID != ord.ID {
			t.Fatalf("line not stamped with ids: %+v", line)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateOrderRollsBackWhenLineInsertFails(t *testing.T) {
	st, mock, done := newMockStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow(7))
	mock.ExpectExec("INSERT INTO order_lines").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := st.CreateOrder(context.Background(), order.Order{
		Type:   order.TypeDelivery,
		Status: order.StatusOpen,
		Lines:  []order.Line{{ItemID: 1, Name: "LG PIE", UnitPriceCents: 1500, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected line insert failure to surface")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateCategoryMissingRowIsNoRows(t *testing.T) {
	st, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("SELECT id, name, sort_order, active").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sort_order", "active", "created_at", "updated_at"}).
			AddRow(99, "Sides", 0, true, time.Now(), time.Now()))
	mock.ExpectExec("UPDATE menu_categories").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := st.UpdateCategory(context.Background(), menu.Category{ID: 99, Name: "Sides"})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestDeleteItemMissingRowIsNoRows(t *testing.T) {
	st, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec("DELETE FROM menu_items").
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := st.DeleteItem(context.Background(), 12); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
