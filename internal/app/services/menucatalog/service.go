// Package menucatalog manages the menu catalog: categories, items, modifier
// groups, and modifiers.
package menucatalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/storage"
	"github.com/brickoven/pos/pkg/logger"
)

// Service exposes menu catalog CRUD.
type Service struct {
	store storage.MenuStore
	log   *logger.Logger
}

// New constructs the menu catalog service.
func New(store storage.MenuStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("menu")
	}
	return &Service{store: store, log: log}
}

// --- Categories ---

func (s *Service) CreateCategory(ctx context.Context, cat menu.Category) (menu.Category, error) {
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return menu.Category{}, fmt.Errorf("category name is required")
	}
	created, err := s.store.CreateCategory(ctx, cat)
	if err != nil {
		return menu.Category{}, err
	}
	s.log.WithField("category_id", created.ID).Info("category created")
	return created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, cat menu.Category) (menu.Category, error) {
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return menu.Category{}, fmt.Errorf("category name is required")
	}
	return s.store.UpdateCategory(ctx, cat)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (menu.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]menu.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// --- Items ---

func (s *Service) CreateItem(ctx context.Context, item menu.Item) (menu.Item, error) {
	if err := validateItem(&item); err != nil {
		return menu.Item{}, err
	}
	created, err := s.store.CreateItem(ctx, item)
	if err != nil {
		return menu.Item{}, err
	}
	s.log.WithField("item_id", created.ID).Info("item created")
	return created, nil
}

func (s *Service) UpdateItem(ctx context.Context, item menu.Item) (menu.Item, error) {
	if err := validateItem(&item); err != nil {
		return menu.Item{}, err
	}
	return s.store.UpdateItem(ctx, item)
}

func (s *Service) GetItem(ctx context.Context, id int64) (menu.Item, error) {
	return s.store.GetItem(ctx, id)
}

// ListItems lists items, optionally scoped to one category (0 = all).
func (s *Service) ListItems(ctx context.Context, categoryID int64) ([]menu.Item, error) {
	return s.store.ListItems(ctx, categoryID)
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.store.DeleteItem(ctx, id)
}

func validateItem(item *menu.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	item.PrintName = strings.TrimSpace(item.PrintName)
	if item.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if item.PrintName == "" {
		item.PrintName = item.Name
	}
	if item.PriceCents < 0 {
		return fmt.Errorf("item price must not be negative")
	}
	if item.CategoryID <= 0 {
		return fmt.Errorf("item category is required")
	}
	return nil
}

// --- Modifier groups ---

func (s *Service) CreateModifierGroup(ctx context.Context, group menu.ModifierGroup) (menu.ModifierGroup, error) {
	if err := validateGroup(&group); err != nil {
		return menu.ModifierGroup{}, err
	}
	created, err := s.store.CreateModifierGroup(ctx, group)
	if err != nil {
		return menu.ModifierGroup{}, err
	}
	s.log.WithField("group_id", created.ID).Info("modifier group created")
	return created, nil
}

func (s *Service) UpdateModifierGroup(ctx context.Context, group menu.ModifierGroup) (menu.ModifierGroup, error) {
	if err := validateGroup(&group); err != nil {
		return menu.ModifierGroup{}, err
	}
	return s.store.UpdateModifierGroup(ctx, group)
}

func (s *Service) GetModifierGroup(ctx context.Context, id int64) (menu.ModifierGroup, error) {
	return s.store.GetModifierGroup(ctx, id)
}

func (s *Service) ListModifierGroups(ctx context.Context) ([]menu.ModifierGroup, error) {
	return s.store.ListModifierGroups(ctx)
}

func (s *Service) DeleteModifierGroup(ctx context.Context, id int64) error {
	return s.store.DeleteModifierGroup(ctx, id)
}

func validateGroup(group *menu.ModifierGroup) error {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return fmt.Errorf("modifier group name is required")
	}
	if group.MinSelect < 0 {
		group.MinSelect = 0
	}
	if group.MaxSelect < group.MinSelect {
		return fmt.Errorf("modifier group max_select must be at least min_select")
	}
	return nil
}

// --- Modifiers ---

func (s *Service) CreateModifier(ctx context.Context, mod menu.Modifier) (menu.Modifier, error) {
	mod.Name = strings.TrimSpace(mod.Name)
	if mod.Name == "" {
		return menu.Modifier{}, fmt.Errorf("modifier name is required")
	}
	if mod.GroupID <= 0 {
		return menu.Modifier{}, fmt.Errorf("modifier group is required")
	}
	return s.store.CreateModifier(ctx, mod)
}

func (s *Service) UpdateModifier(ctx context.Context, mod menu.Modifier) (menu.Modifier, error) {
	mod.Name = strings.TrimSpace(mod.Name)
	if mod.Name == "" {
		return menu.Modifier{}, fmt.Errorf("modifier name is required")
	}
	return s.store.UpdateModifier(ctx, mod)
}

func (s *Service) GetModifier(ctx context.Context, id int64) (menu.Modifier, error) {
	return s.store.GetModifier(ctx, id)
}

func (s *Service) ListModifiers(ctx context.Context, groupID int64) ([]menu.Modifier, error) {
	return s.store.ListModifiers(ctx, groupID)
}

func (s *Service) DeleteModifier(ctx context.Context, id int64) error {
	return s.store.DeleteModifier(ctx, id)
}
