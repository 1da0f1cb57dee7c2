package menucatalog

import (
	"context"
	"testing"

	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/storage"
)

func TestCatalogCRUD(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, menu.Category{Name: "  Pizza  ", Active: true})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if cat.Name != "Pizza" {
		t.Fatalf("name not trimmed: %q", cat.Name)
	}

	item, err := svc.CreateItem(ctx, menu.Item{CategoryID: cat.ID, Name: "Large Pie", PriceCents: 1500, Active: true})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.PrintName != "Large Pie" {
		t.Fatalf("print name should default to name, got %q", item.PrintName)
	}

	item.PriceCents = 1600
	if _, err := svc.UpdateItem(ctx, item); err != nil {
		t.Fatalf("update item: %v", err)
	}
	got, err := svc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.PriceCents != 1600 {
		t.Fatalf("price not updated: %d", got.PriceCents)
	}

	items, err := svc.ListItems(ctx, cat.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	if err := svc.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if _, err := svc.GetItem(ctx, item.ID); err == nil {
		t.Fatalf("deleted item should not be found")
	}
}

func TestCatalogValidation(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, menu.Category{Name: " "}); err == nil {
		t.Fatalf("blank category name should fail")
	}
	if _, err := svc.CreateItem(ctx, menu.Item{Name: "Pie", PriceCents: -1, CategoryID: 1}); err == nil {
		t.Fatalf("negative price should fail")
	}
	if _, err := svc.CreateItem(ctx, menu.Item{Name: "Pie", PriceCents: 100}); err == nil {
		t.Fatalf("item without category should fail")
	}
	if _, err := svc.CreateModifierGroup(ctx, menu.ModifierGroup{Name: "Toppings", MinSelect: 3, MaxSelect: 1}); err == nil {
		t.Fatalf("max below min should fail")
	}
	if _, err := svc.CreateModifier(ctx, menu.Modifier{Name: "Extra Cheese"}); err == nil {
		t.Fatalf("modifier without group should fail")
	}
}

func TestModifierGroups(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	ctx := context.Background()

	group, err := svc.CreateModifierGroup(ctx, menu.ModifierGroup{Name: "Toppings", MaxSelect: 5})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	mod, err := svc.CreateModifier(ctx, menu.Modifier{GroupID: group.ID, Name: "Mushrooms", PriceDeltaCents: 150})
	if err != nil {
		t.Fatalf("create modifier: %v", err)
	}

	mods, err := svc.ListModifiers(ctx, group.ID)
	if err != nil {
		t.Fatalf("list modifiers: %v", err)
	}
	if len(mods) != 1 || mods[0].ID != mod.ID {
		t.Fatalf("unexpected modifiers: %v", mods)
	}
}
