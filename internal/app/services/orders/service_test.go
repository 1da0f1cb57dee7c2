package orders

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brickoven/pos/internal/app/domain/driver"
	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/domain/order"
	"github.com/brickoven/pos/internal/app/domain/store"
	"github.com/brickoven/pos/internal/app/services/drivers"
	"github.com/brickoven/pos/internal/app/storage"
)

type fixture struct {
	svc     *Service
	drivers *drivers.Service
	mem     *storage.Memory
	pieID   int64
	sodaID  int64
	xtraID  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := storage.NewMemory()

	cat, err := mem.CreateCategory(ctx, menu.Category{Name: "Pizza", Active: true})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	pie, err := mem.CreateItem(ctx, menu.Item{CategoryID: cat.ID, Name: "Large Pie", PrintName: "LG PIE", PriceCents: 1500, Active: true})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	soda, err := mem.CreateItem(ctx, menu.Item{CategoryID: cat.ID, Name: "Soda", PrintName: "SODA", PriceCents: 250, Active: true})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	group, err := mem.CreateModifierGroup(ctx, menu.ModifierGroup{Name: "Toppings", MaxSelect: 5})
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}
	xtra, err := mem.CreateModifier(ctx, menu.Modifier{GroupID: group.ID, Name: "Extra Cheese", PriceDeltaCents: 200})
	if err != nil {
		t.Fatalf("seed modifier: %v", err)
	}

	drvSvc := drivers.New(mem, nil)
	svc := New(mem, mem, drvSvc, Config{TaxRateBasisPoints: 800, DeliveryFeeCents: 300}, nil)
	return &fixture{svc: svc, drivers: drvSvc, mem: mem, pieID: pie.ID, sodaID: soda.ID, xtraID: xtra.ID}
}

func TestCreateOrderTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord, err := f.svc.Create(ctx, CreateInput{
		Type:            order.TypeDelivery,
		CustomerName:    "Pat",
		CustomerPhone:   "215-555-0199",
		DeliveryAddress: "2500 E Cambria St",
		Lines: []LineInput{
			{ItemID: f.pieID, Quantity: 2, ModifierIDs: []int64{f.xtraID}},
			{ItemID: f.sodaID},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// (1500+200)*2 + 250*1 = 3650 subtotal; 8% tax = 292; delivery fee 300.
	if ord.SubtotalCents != 3650 {
		t.Fatalf("subtotal = %d, want 3650", ord.SubtotalCents)
	}
	if ord.TaxCents != 292 {
		t.Fatalf("tax = %d, want 292", ord.TaxCents)
	}
	if ord.DeliveryFeeCents != 300 {
		t.Fatalf("delivery fee = %d, want 300", ord.DeliveryFeeCents)
	}
	if ord.TotalCents != 4242 {
		t.Fatalf("total = %d, want 4242", ord.TotalCents)
	}
	if ord.Status != order.StatusOpen {
		t.Fatalf("new orders are open, got %s", ord.Status)
	}
	if ord.Number == 0 || ord.ID == "" {
		t.Fatalf("order identity not assigned: %+v", ord)
	}
	if ord.Lines[1].Quantity != 1 {
		t.Fatalf("quantity should default to 1, got %d", ord.Lines[1].Quantity)
	}
	if ord.Lines[0].Name != "LG PIE" {
		t.Fatalf("lines carry the print name, got %q", ord.Lines[0].Name)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateInput{Type: "carrier_pigeon", Lines: []LineInput{{ItemID: f.pieID}}}); err == nil {
		t.Fatalf("unknown type should fail")
	}
	if _, err := f.svc.Create(ctx, CreateInput{Type: order.TypePickup}); err == nil {
		t.Fatalf("empty order should fail")
	}
	if _, err := f.svc.Create(ctx, CreateInput{Type: order.TypeDelivery, Lines: []LineInput{{ItemID: f.pieID}}}); err == nil {
		t.Fatalf("delivery without address should fail")
	}
	if _, err := f.svc.Create(ctx, CreateInput{Type: order.TypePickup, Lines: []LineInput{{ItemID: 9999}}}); err == nil {
		t.Fatalf("unknown item should fail")
	}
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord, err := f.svc.Create(ctx, CreateInput{Type: order.TypePickup, Lines: []LineInput{{ItemID: f.pieID}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, next := range []order.Status{order.StatusPreparing, order.StatusReady} {
		if ord, err = f.svc.Advance(ctx, ord.ID, next); err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}

	// Pickup orders skip out_for_delivery.
	ord, err = f.svc.Advance(ctx, ord.ID, order.StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ord.Status != order.StatusCompleted || ord.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %+v", ord)
	}

	if _, err := f.svc.Advance(ctx, ord.ID, order.StatusCanceled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("terminal orders cannot transition, got %v", err)
	}
}

func TestOrderSkippedStepRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord, err := f.svc.Create(ctx, CreateInput{Type: order.TypePickup, Lines: []LineInput{{ItemID: f.pieID}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Advance(ctx, ord.ID, order.StatusReady); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("skipping preparing should fail, got %v", err)
	}
	if _, err := f.svc.Advance(ctx, ord.ID, order.StatusCanceled); err != nil {
		t.Fatalf("cancel from open: %v", err)
	}
}

func TestAssignDriverAndRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	drv, err := f.drivers.Create(ctx, driver.Driver{Name: "Maria"})
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}
	if _, err := f.drivers.ClockIn(ctx, drv.ID); err != nil {
		t.Fatalf("clock in: %v", err)
	}

	ord, err := f.svc.Create(ctx, CreateInput{
		Type:            order.TypeDelivery,
		DeliveryAddress: "2500 E Cambria St",
		Lines:           []LineInput{{ItemID: f.pieID}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	ord, err = f.svc.AssignDriver(ctx, ord.ID, drv.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if ord.DriverID == nil || *ord.DriverID != drv.ID {
		t.Fatalf("driver not recorded: %+v", ord)
	}
	if got, _ := f.drivers.Get(ctx, drv.ID); got.Status != driver.StatusOnRun {
		t.Fatalf("assignment should put the driver on a run, got %s", got.Status)
	}

	if _, err := f.svc.AssignDriver(ctx, ord.ID, drv.ID); err == nil {
		t.Fatalf("double assignment should fail")
	}

	for _, next := range []order.Status{order.StatusPreparing, order.StatusReady, order.StatusOutForDelivery, order.StatusCompleted} {
		if ord, err = f.svc.Advance(ctx, ord.ID, next); err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}
	if got, _ := f.drivers.Get(ctx, drv.ID); got.Status != driver.StatusAvailable {
		t.Fatalf("completing the delivery should free the driver, got %s", got.Status)
	}
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord, err := f.svc.Create(ctx, CreateInput{
		Type:  order.TypePickup,
		Lines: []LineInput{{ItemID: f.pieID, Quantity: 2, ModifierIDs: []int64{f.xtraID}}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	receipt, err := f.svc.Receipt(ctx, ord.ID, store.DefaultLocation())
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if receipt.Number != ord.Number {
		t.Fatalf("receipt number mismatch: %d vs %d", receipt.Number, ord.Number)
	}

	text := strings.Join(receipt.Lines, "\n")
	for _, want := range []string{"Brick Oven Pizza", "2x LG PIE", "Extra Cheese", "Subtotal", "TOTAL", "$36.72"} {
		if !strings.Contains(text, want) {
			t.Fatalf("receipt missing %q:\n%s", want, text)
		}
	}
	for _, line := range receipt.Lines {
		if len(line) > receiptWidth {
			t.Fatalf("line exceeds printer width: %q", line)
		}
	}
}
