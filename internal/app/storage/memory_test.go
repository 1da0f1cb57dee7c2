package storage

import (
	"context"
	"testing"

	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/domain/order"
)

func TestMemoryReplacePanelSlots(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	panel, err := m.CreatePanel(ctx, menu.Panel{Name: "Pizza", Rows: 5, Cols: 5})
	if err != nil {
		t.Fatalf("create panel: %v", err)
	}

	first, err := m.ReplacePanelSlots(ctx, panel.ID, []menu.Slot{
		{RowIndex: 1, ColIndex: 0, RowSpan: 1, ColSpan: 1},
		{RowIndex: 0, ColIndex: 2, RowSpan: 1, ColSpan: 1},
	})
	if err != nil {
		t.Fatalf("replace slots: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(first))
	}
	if first[0].RowIndex != 0 || first[1].RowIndex != 1 {
		t.Fatalf("slots should come back ordered by row then col: %+v", first)
	}

	// A replace with a duplicate cell must leave the previous layout intact.
	_, err = m.ReplacePanelSlots(ctx, panel.ID, []menu.Slot{
		{RowIndex: 3, ColIndex: 3, RowSpan: 1, ColSpan: 1},
		{RowIndex: 3, ColIndex: 3, RowSpan: 1, ColSpan: 1},
	})
	if err == nil {
		t.Fatal("expected duplicate cell to be rejected")
	}
	kept, err := m.ListPanelSlots(ctx, panel.ID)
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	if len(kept) != 2 || kept[0].ColIndex != 2 {
		t.Fatalf("failed replace must not change the stored layout: %+v", kept)
	}

	if _, err := m.ReplacePanelSlots(ctx, 9999, nil); err == nil {
		t.Fatal("expected unknown panel to be rejected")
	}
}

func TestMemoryOrderNumbersAreSequential(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	a, err := m.CreateOrder(ctx, order.Order{Type: order.TypePickup, Status: order.StatusOpen})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	b, err := m.CreateOrder(ctx, order.Order{Type: order.TypeDineIn, Status: order.StatusOpen})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if b.Number != a.Number+1 {
		t.Fatalf("expected sequential numbers, got %d then %d", a.Number, b.Number)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("orders must get distinct generated ids: %q %q", a.ID, b.ID)
	}
}

func TestMemoryListOrdersFilters(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	open, _ := m.CreateOrder(ctx, order.Order{Type: order.TypePickup, Status: order.StatusOpen})
	done, _ := m.CreateOrder(ctx, order.Order{Type: order.TypePickup, Status: order.StatusOpen})
	done.Status = order.StatusCompleted
	if _, err := m.UpdateOrder(ctx, done); err != nil {
		t.Fatalf("update order: %v", err)
	}

	today := open.CreatedAt.Format("2006-01-02")

	completed, err := m.ListOrders(ctx, today, order.StatusCompleted)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != done.ID {
		t.Fatalf("status filter should return only the completed order: %+v", completed)
	}

	none, err := m.ListOrders(ctx, "1999-01-01", "")
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("date filter should exclude today's orders, got %d", len(none))
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.CreateOrder(ctx, order.Order{
		Type:   order.TypePickup,
		Status: order.StatusOpen,
		Lines:  []order.Line{{ItemID: 1, Name: "LG PIE", UnitPriceCents: 1500, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	created.Lines[0].Name = "SCRIBBLED"
	stored, err := m.GetOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stored.Lines[0].Name != "LG PIE" {
		t.Fatalf("mutating a returned order must not touch the store, got %q", stored.Lines[0].Name)
	}
}
