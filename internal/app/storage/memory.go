package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brickoven/pos/internal/app/domain/driver"
	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/domain/order"
	"github.com/brickoven/pos/internal/app/domain/store"
)

// Memory is a thread-safe in-memory persistence layer implementing the
// storage interfaces defined in this package. It is intended for tests and
// prototyping and deliberately keeps the implementation simple.
type Memory struct {
	mu         sync.RWMutex
	nextID     int64
	nextNumber int64

	location   *store.Location
	categories map[int64]menu.Category
	items      map[int64]menu.Item
	panels     map[int64]menu.Panel
	slots      map[int64][]menu.Slot
	groups     map[int64]menu.ModifierGroup
	modifiers  map[int64]menu.Modifier
	drivers    map[int64]driver.Driver
	orders     map[string]order.Order
	settles    map[string]order.Settlement
}

var _ SettingsStore = (*Memory)(nil)
var _ MenuStore = (*Memory)(nil)
var _ LayoutStore = (*Memory)(nil)
var _ DriverStore = (*Memory)(nil)
var _ OrderStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextID:     1,
		nextNumber: 1,
		categories: make(map[int64]menu.Category),
		items:      make(map[int64]menu.Item),
		panels:     make(map[int64]menu.Panel),
		slots:      make(map[int64][]menu.Slot),
		groups:     make(map[int64]menu.ModifierGroup),
		modifiers:  make(map[int64]menu.Modifier),
		drivers:    make(map[int64]driver.Driver),
		orders:     make(map[string]order.Order),
		settles:    make(map[string]order.Settlement),
	}
}

func (m *Memory) nextIDLocked() int64 {
	id := m.nextID
	m.nextID++
	return id
}

// SettingsStore implementation ------------------------------------------------

func (m *Memory) GetStoreLocation(_ context.Context) (store.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.location == nil {
		return store.Location{}, fmt.Errorf("store settings not found")
	}
	return *m.location, nil
}

func (m *Memory) PutStoreLocation(_ context.Context, loc store.Location) (store.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc.UpdatedAt = time.Now().UTC()
	m.location = &loc
	return loc, nil
}

// MenuStore implementation ----------------------------------------------------

func (m *Memory) CreateCategory(_ context.Context, cat menu.Category) (menu.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cat.ID == 0 {
		cat.ID = m.nextIDLocked()
	} else if _, exists := m.categories[cat.ID]; exists {
		return menu.Category{}, fmt.Errorf("category %d already exists", cat.ID)
	}

	now := time.Now().UTC()
	cat.CreatedAt = now
	cat.UpdatedAt = now
	m.categories[cat.ID] = cat
	return cat, nil
}

func (m *Memory) UpdateCategory(_ context.Context, cat menu.Category) (menu.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.categories[cat.ID]
	if !ok {
		return menu.Category{}, fmt.Errorf("category %d not found", cat.ID)
	}
	cat.CreatedAt = original.CreatedAt
	cat.UpdatedAt = time.Now().UTC()
	m.categories[cat.ID] = cat
	return cat, nil
}

func (m *Memory) GetCategory(_ context.Context, id int64) (menu.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cat, ok := m.categories[id]
	if !ok {
		return menu.Category{}, fmt.Errorf("category %d not found", id)
	}
	return cat, nil
}

func (m *Memory) ListCategories(_ context.Context) ([]menu.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]menu.Category, 0, len(m.categories))
	for _, cat := range m.categories {
		result = append(result, cat)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) DeleteCategory(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return fmt.Errorf("category %d not found", id)
	}
	delete(m.categories, id)
	return nil
}

func (m *Memory) CreateItem(_ context.Context, item menu.Item) (menu.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID == 0 {
		item.ID = m.nextIDLocked()
	} else if _, exists := m.items[item.ID]; exists {
		return menu.Item{}, fmt.Errorf("item %d already exists", item.ID)
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	m.items[item.ID] = item
	return item, nil
}

func (m *Memory) UpdateItem(_ context.Context, item menu.Item) (menu.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.items[item.ID]
	if !ok {
		return menu.Item{}, fmt.Errorf("item %d not found", item.ID)
	}
	item.CreatedAt = original.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	m.items[item.ID] = item
	return item, nil
}

func (m *Memory) GetItem(_ context.Context, id int64) (menu.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return menu.Item{}, fmt.Errorf("item %d not found", id)
	}
	return item, nil
}

func (m *Memory) ListItems(_ context.Context, categoryID int64) ([]menu.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]menu.Item, 0)
	for _, item := range m.items {
		if categoryID == 0 || item.CategoryID == categoryID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) DeleteItem(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("item %d not found", id)
	}
	delete(m.items, id)
	return nil
}

func (m *Memory) CreateModifierGroup(_ context.Context, group menu.ModifierGroup) (menu.ModifierGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if group.ID == 0 {
		group.ID = m.nextIDLocked()
	} else if _, exists := m.groups[group.ID]; exists {
		return menu.ModifierGroup{}, fmt.Errorf("modifier group %d already exists", group.ID)
	}

	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now
	m.groups[group.ID] = group
	return group, nil
}

func (m *Memory) UpdateModifierGroup(_ context.Context, group menu.ModifierGroup) (menu.ModifierGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.groups[group.ID]
	if !ok {
		return menu.ModifierGroup{}, fmt.Errorf("modifier group %d not found", group.ID)
	}
	group.CreatedAt = original.CreatedAt
	group.UpdatedAt = time.Now().UTC()
	m.groups[group.ID] = group
	return group, nil
}

func (m *Memory) GetModifierGroup(_ context.Context, id int64) (menu.ModifierGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	group, ok := m.groups[id]
	if !ok {
		return menu.ModifierGroup{}, fmt.Errorf("modifier group %d not found", id)
	}
	return group, nil
}

func (m *Memory) ListModifierGroups(_ context.Context) ([]menu.ModifierGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]menu.ModifierGroup, 0, len(m.groups))
	for _, group := range m.groups {
		result = append(result, group)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) DeleteModifierGroup(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[id]; !ok {
		return fmt.Errorf("modifier group %d not found", id)
	}
	delete(m.groups, id)
	for modID, mod := range m.modifiers {
		if mod.GroupID == id {
			delete(m.modifiers, modID)
		}
	}
	return nil
}

func (m *Memory) CreateModifier(_ context.Context, mod menu.Modifier) (menu.Modifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[mod.GroupID]; !ok {
		return menu.Modifier{}, fmt.Errorf("modifier group %d not found", mod.GroupID)
	}
	if mod.ID == 0 {
		mod.ID = m.nextIDLocked()
	} else if _, exists := m.modifiers[mod.ID]; exists {
		return menu.Modifier{}, fmt.Errorf("modifier %d already exists", mod.ID)
	}

	now := time.Now().UTC()
	mod.CreatedAt = now
	mod.UpdatedAt = now
	m.modifiers[mod.ID] = mod
	return mod, nil
}

func (m *Memory) UpdateModifier(_ context.Context, mod menu.Modifier) (menu.Modifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.modifiers[mod.ID]
	if !ok {
		return menu.Modifier{}, fmt.Errorf("modifier %d not found", mod.ID)
	}
	mod.GroupID = original.GroupID
	mod.CreatedAt = original.CreatedAt
	mod.UpdatedAt = time.Now().UTC()
	m.modifiers[mod.ID] = mod
	return mod, nil
}

func (m *Memory) GetModifier(_ context.Context, id int64) (menu.Modifier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mod, ok := m.modifiers[id]
	if !ok {
		return menu.Modifier{}, fmt.Errorf("modifier %d not found", id)
	}
	return mod, nil
}

func (m *Memory) ListModifiers(_ context.Context, groupID int64) ([]menu.Modifier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]menu.Modifier, 0)
	for _, mod := range m.modifiers {
		if groupID == 0 || mod.GroupID == groupID {
			result = append(result, mod)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) DeleteModifier(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.modifiers[id]; !ok {
		return fmt.Errorf("modifier %d not found", id)
	}
	delete(m.modifiers, id)
	return nil
}

// LayoutStore implementation --------------------------------------------------

func (m *Memory) CreatePanel(_ context.Context, panel menu.Panel) (menu.Panel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if panel.ID == 0 {
		panel.ID = m.nextIDLocked()
	} else if _, exists := m.panels[panel.ID]; exists {
		return menu.Panel{}, fmt.Errorf("panel %d already exists", panel.ID)
	}

	now := time.Now().UTC()
	panel.CreatedAt = now
	panel.UpdatedAt = now
	m.panels[panel.ID] = panel
	return panel, nil
}

func (m *Memory) UpdatePanel(_ context.Context, panel menu.Panel) (menu.Panel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.panels[panel.ID]
	if !ok {
		return menu.Panel{}, fmt.Errorf("panel %d not found", panel.ID)
	}
	panel.CreatedAt = original.CreatedAt
	panel.UpdatedAt = time.Now().UTC()
	m.panels[panel.ID] = panel
	return panel, nil
}

func (m *Memory) GetPanel(_ context.Context, id int64) (menu.Panel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	panel, ok := m.panels[id]
	if !ok {
		return menu.Panel{}, fmt.Errorf("panel %d not found", id)
	}
	return panel, nil
}

func (m *Memory) ListPanels(_ context.Context, categoryID int64) ([]menu.Panel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]menu.Panel, 0)
	for _, panel := range m.panels {
		if categoryID == 0 || panel.CategoryID == categoryID {
			result = append(result, panel)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// DeletePanel removes a panel and cascades to its slots.
func (m *Memory) DeletePanel(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.panels[id]; !ok {
		return fmt.Errorf("panel %d not found", id)
	}
	delete(m.panels, id)
	delete(m.slots, id)
	return nil
}

func (m *Memory) ListPanelSlots(_ context.Context, panelID int64) ([]menu.Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := append([]menu.Slot(nil), m.slots[panelID]...)
	sortSlots(result)
	return result, nil
}

func (m *Memory) ReplacePanelSlots(_ context.Context, panelID int64, slots []menu.Slot) ([]menu.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.panels[panelID]; !ok {
		return nil, fmt.Errorf("panel %d not found", panelID)
	}

	// Mirror the database unique constraint on (panel_id, row_index, col_index).
	seen := make(map[[2]int]bool, len(slots))
	replacement := make([]menu.Slot, 0, len(slots))
	for _, slot := range slots {
		cell := [2]int{slot.RowIndex, slot.ColIndex}
		if seen[cell] {
			return nil, fmt.Errorf("duplicate slot at row %d col %d", slot.RowIndex, slot.ColIndex)
		}
		seen[cell] = true

		slot.ID = m.nextIDLocked()
		slot.PanelID = panelID
		replacement = append(replacement, slot)
	}

	m.slots[panelID] = replacement
	result := append([]menu.Slot(nil), replacement...)
	sortSlots(result)
	return result, nil
}

func sortSlots(slots []menu.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].RowIndex != slots[j].RowIndex {
			return slots[i].RowIndex < slots[j].RowIndex
		}
		return slots[i].ColIndex < slots[j].ColIndex
	})
}

// DriverStore implementation --------------------------------------------------

func (m *Memory) CreateDriver(_ context.Context, drv driver.Driver) (driver.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if drv.ID == 0 {
		drv.ID = m.nextIDLocked()
	} else if _, exists := m.drivers[drv.ID]; exists {
		return driver.Driver{}, fmt.Errorf("driver %d already exists", drv.ID)
	}

	now := time.Now().UTC()
	drv.CreatedAt = now
	drv.UpdatedAt = now
	m.drivers[drv.ID] = drv
	return drv, nil
}

func (m *Memory) UpdateDriver(_ context.Context, drv driver.Driver) (driver.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.drivers[drv.ID]
	if !ok {
		return driver.Driver{}, fmt.Errorf("driver %d not found", drv.ID)
	}
	drv.CreatedAt = original.CreatedAt
	drv.UpdatedAt = time.Now().UTC()
	m.drivers[drv.ID] = drv
	return drv, nil
}

func (m *Memory) GetDriver(_ context.Context, id int64) (driver.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	drv, ok := m.drivers[id]
	if !ok {
		return driver.Driver{}, fmt.Errorf("driver %d not found", id)
	}
	return drv, nil
}

func (m *Memory) ListDrivers(_ context.Context) ([]driver.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]driver.Driver, 0, len(m.drivers))
	for _, drv := range m.drivers {
		result = append(result, drv)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) DeleteDriver(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drivers[id]; !ok {
		return fmt.Errorf("driver %d not found", id)
	}
	delete(m.drivers, id)
	return nil
}

// OrderStore implementation ---------------------------------------------------

func (m *Memory) CreateOrder(_ context.Context, ord order.Order) (order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ord.ID == "" {
		ord.ID = uuid.NewString()
	} else if _, exists := m.orders[ord.ID]; exists {
		return order.Order{}, fmt.Errorf("order %s already exists", ord.ID)
	}
	ord.Number = m.nextNumber
	m.nextNumber++

	now := time.Now().UTC()
	ord.CreatedAt = now
	ord.UpdatedAt = now
	for i := range ord.Lines {
		if ord.Lines[i].ID == "" {
			ord.Lines[i].ID = uuid.NewString()
		}
		ord.Lines[i].OrderID = ord.ID
	}

	m.orders[ord.ID] = cloneOrder(ord)
	return cloneOrder(ord), nil
}

func (m *Memory) UpdateOrder(_ context.Context, ord order.Order) (order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.orders[ord.ID]
	if !ok {
		return order.Order{}, fmt.Errorf("order %s not found", ord.ID)
	}
	ord.Number = original.Number
	ord.CreatedAt = original.CreatedAt
	ord.UpdatedAt = time.Now().UTC()
	if len(ord.Lines) == 0 {
		ord.Lines = original.Lines
	}

	m.orders[ord.ID] = cloneOrder(ord)
	return cloneOrder(ord), nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ord, ok := m.orders[id]
	if !ok {
		return order.Order{}, fmt.Errorf("order %s not found", id)
	}
	return cloneOrder(ord), nil
}

func (m *Memory) ListOrders(_ context.Context, businessDate string, status order.Status) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]order.Order, 0)
	for _, ord := range m.orders {
		if businessDate != "" && ord.CreatedAt.Format("2006-01-02") != businessDate {
			continue
		}
		if status != "" && ord.Status != status {
			continue
		}
		result = append(result, cloneOrder(ord))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

func (m *Memory) PutSettlement(_ context.Context, s order.Settlement) (order.Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.GeneratedAt = time.Now().UTC()
	m.settles[s.BusinessDate] = s
	return s, nil
}

func (m *Memory) GetSettlement(_ context.Context, businessDate string) (order.Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settles[businessDate]
	if !ok {
		return order.Settlement{}, fmt.Errorf("settlement for %s not found", businessDate)
	}
	return s, nil
}

// Helpers ---------------------------------------------------------------------

func cloneOrder(ord order.Order) order.Order {
	lines := make([]order.Line, len(ord.Lines))
	for i, line := range ord.Lines {
		line.Modifiers = append([]order.LineModifier(nil), line.Modifiers...)
		lines[i] = line
	}
	ord.Lines = lines
	if ord.DriverID != nil {
		id := *ord.DriverID
		ord.DriverID = &id
	}
	if ord.CompletedAt != nil {
		at := *ord.CompletedAt
		ord.CompletedAt = &at
	}
	return ord
}
