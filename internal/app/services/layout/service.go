// Package layout manages cashier button panels and their slot grids. Saving
// a grid replaces the panel's entire slot set in one atomic unit.
package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/storage"
	"github.com/brickoven/pos/pkg/logger"
)

// ErrInvalidLayout marks a client-side validation failure: the request is
// rejected before any write.
var ErrInvalidLayout = errors.New("invalid layout")

// SlotInput is one slot descriptor as submitted by the layout editor.
// Row/col indexes are required; everything else is defaulted during
// normalization rather than rejected.
type SlotInput struct {
	RowIndex      *int    `json:"rowIndex"`
	ColIndex      *int    `json:"colIndex"`
	RowSpan       int     `json:"rowSpan"`
	ColSpan       int     `json:"colSpan"`
	ItemID        *int64  `json:"itemId"`
	LabelOverride *string `json:"labelOverride"`
	SortOrder     int     `json:"sortOrder"`
}

// Service validates and persists panel layouts.
type Service struct {
	store storage.LayoutStore
	log   *logger.Logger
}

// New constructs the layout service.
func New(store storage.LayoutStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("layout")
	}
	return &Service{store: store, log: log}
}

// CreatePanel registers a new button panel.
func (s *Service) CreatePanel(ctx context.Context, panel menu.Panel) (menu.Panel, error) {
	panel.Name = strings.TrimSpace(panel.Name)
	if panel.Name == "" {
		return menu.Panel{}, fmt.Errorf("panel name is required")
	}
	if panel.Rows < 1 {
		panel.Rows = 5
	}
	if panel.Cols < 1 {
		panel.Cols = 5
	}

	created, err := s.store.CreatePanel(ctx, panel)
	if err != nil {
		return menu.Panel{}, err
	}
	s.log.WithField("panel_id", created.ID).Info("panel created")
	return created, nil
}

// UpdatePanel changes a panel's mutable fields.
func (s *Service) UpdatePanel(ctx context.Context, panel menu.Panel) (menu.Panel, error) {
	panel.Name = strings.TrimSpace(panel.Name)
	if panel.Name == "" {
		return menu.Panel{}, fmt.Errorf("panel name is required")
	}
	return s.store.UpdatePanel(ctx, panel)
}

// GetPanel loads one panel.
func (s *Service) GetPanel(ctx context.Context, id int64) (menu.Panel, error) {
	return s.store.GetPanel(ctx, id)
}

// ListPanels lists panels, optionally for one category.
func (s *Service) ListPanels(ctx context.Context, categoryID int64) ([]menu.Panel, error) {
	return s.store.ListPanels(ctx, categoryID)
}

// DeletePanel removes a panel; its slots cascade.
func (s *Service) DeletePanel(ctx context.Context, id int64) error {
	if err := s.store.DeletePanel(ctx, id); err != nil {
		return err
	}
	s.log.WithField("panel_id", id).Info("panel deleted")
	return nil
}

// PanelSlots lists the persisted grid for a panel ordered by (row, col).
func (s *Service) PanelSlots(ctx context.Context, panelID int64) ([]menu.Slot, error) {
	return s.store.ListPanelSlots(ctx, panelID)
}

// ReplacePanelSlots validates and normalizes the submitted grid, then swaps
// the panel's slot set inside one transaction. The UI always submits the
// complete desired grid, so delete-all-then-reinsert replaces diffing.
// Concurrent saves for the same panel race last-commit-wins.
func (s *Service) ReplacePanelSlots(ctx context.Context, panelID int64, inputs []SlotInput) ([]menu.Slot, error) {
	slots, err := normalizeSlots(panelID, inputs)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.ReplacePanelSlots(ctx, panelID, slots)
	if err != nil {
		return nil, err
	}
	s.log.WithField("panel_id", panelID).WithField("slots", len(saved)).Info("panel layout replaced")
	return saved, nil
}

// normalizeSlots applies the validation and defaulting rules: row/col
// indexes must be present and non-negative, spans below 1 become 1, blank
// label overrides become null, and duplicate cells fail the whole call.
func normalizeSlots(panelID int64, inputs []SlotInput) ([]menu.Slot, error) {
	slots := make([]menu.Slot, 0, len(inputs))
	seen := make(map[[2]int]bool, len(inputs))

	for i, in := range inputs {
		if in.RowIndex == nil || in.ColIndex == nil {
			return nil, fmt.Errorf("%w: slot %d is missing rowIndex or colIndex", ErrInvalidLayout, i)
		}
		if *in.RowIndex < 0 || *in.ColIndex < 0 {
			return nil, fmt.Errorf("%w: slot %d has negative rowIndex or colIndex", ErrInvalidLayout, i)
		}

		cell := [2]int{*in.RowIndex, *in.ColIndex}
		if seen[cell] {
			return nil, fmt.Errorf("%w: duplicate slot at row %d col %d", ErrInvalidLayout, cell[0], cell[1])
		}
		seen[cell] = true

		slot := menu.Slot{
			PanelID:   panelID,
			RowIndex:  *in.RowIndex,
			ColIndex:  *in.ColIndex,
			RowSpan:   in.RowSpan,
			ColSpan:   in.ColSpan,
			ItemID:    in.ItemID,
			SortOrder: in.SortOrder,
		}
		if slot.RowSpan < 1 {
			slot.RowSpan = 1
		}
		if slot.ColSpan < 1 {
			slot.ColSpan = 1
		}
		if in.LabelOverride != nil {
			trimmed := strings.TrimSpace(*in.LabelOverride)
			if trimmed != "" {
				slot.LabelOverride = &trimmed
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
