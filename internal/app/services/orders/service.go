// Package orders handles order entry, the status lifecycle, driver
// assignment, and receipt generation.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brickoven/pos/internal/app/domain/order"
	"github.com/brickoven/pos/internal/app/services/drivers"
	"github.com/brickoven/pos/internal/app/storage"
	"github.com/brickoven/pos/pkg/logger"
)

// ErrInvalidTransition marks a status change the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// timeNow is swapped in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// nextStatus is the forward lifecycle. Canceled is handled separately: it is
// reachable from any non-terminal state.
var nextStatus = map[order.Status]order.Status{
	order.StatusOpen:           order.StatusPreparing,
	order.StatusPreparing:      order.StatusReady,
	order.StatusReady:          order.StatusOutForDelivery,
	order.StatusOutForDelivery: order.StatusCompleted,
}

// Config carries the pricing knobs applied to every order.
type Config struct {
	TaxRateBasisPoints int64
	DeliveryFeeCents   int64
}

// DefaultConfig is 8% sales tax and a flat $3 delivery fee.
func DefaultConfig() Config {
	return Config{TaxRateBasisPoints: 800, DeliveryFeeCents: 300}
}

// LineInput is one requested order line: an item, a quantity, and the chosen
// modifier IDs.
type LineInput struct {
	ItemID      int64   `json:"item_id"`
	Quantity    int     `json:"quantity"`
	ModifierIDs []int64 `json:"modifier_ids"`
}

// CreateInput is the order entry payload.
type CreateInput struct {
	Type            order.Type  `json:"type"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	DeliveryAddress string      `json:"delivery_address"`
	Lines           []LineInput `json:"lines"`
}

// Service exposes order entry and lifecycle operations. Item and modifier
// prices are resolved from the menu at order time and captured on the lines.
type Service struct {
	store   storage.OrderStore
	menu    storage.MenuStore
	drivers *drivers.Service
	cfg     Config
	log     *logger.Logger
}

// New constructs the orders service.
func New(store storage.OrderStore, menu storage.MenuStore, drv *drivers.Service, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	if cfg.TaxRateBasisPoints == 0 && cfg.DeliveryFeeCents == 0 {
		cfg = DefaultConfig()
	}
	return &Service{store: store, menu: menu, drivers: drv, cfg: cfg, log: log}
}

// Create prices and persists a new order in the open state.
func (s *Service) Create(ctx context.Context, in CreateInput) (order.Order, error) {
	ord, err := s.buildOrder(ctx, in)
	if err != nil {
		return order.Order{}, err
	}

	created, err := s.store.CreateOrder(ctx, ord)
	if err != nil {
		return order.Order{}, err
	}
	s.log.WithField("order_id", created.ID).WithField("number", created.Number).
		WithField("total_cents", created.TotalCents).Info("order created")
	return created, nil
}

func (s *Service) buildOrder(ctx context.Context, in CreateInput) (order.Order, error) {
	switch in.Type {
	case order.TypePickup, order.TypeDelivery, order.TypeDineIn:
	default:
		return order.Order{}, fmt.Errorf("unknown order type %q", in.Type)
	}
	if len(in.Lines) == 0 {
		return order.Order{}, fmt.Errorf("order must have at least one line")
	}
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	if in.Type == order.TypeDelivery && in.DeliveryAddress == "" {
		return order.Order{}, fmt.Errorf("delivery orders require a delivery address")
	}

	ord := order.Order{
		Type:            in.Type,
		Status:          order.StatusOpen,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		DeliveryAddress: in.DeliveryAddress,
	}

	for i, li := range in.Lines {
		if li.Quantity < 1 {
			li.Quantity = 1
		}
		item, err := s.menu.GetItem(ctx, li.ItemID)
		if err != nil {
			return order.Order{}, fmt.Errorf("line %d: %w", i, err)
		}
		if !item.Active {
			return order.Order{}, fmt.Errorf("line %d: item %q is not active", i, item.Name)
		}

		line := order.Line{
			ItemID:         item.ID,
			Name:           item.PrintName,
			UnitPriceCents: item.PriceCents,
			Quantity:       li.Quantity,
		}
		for _, modID := range li.ModifierIDs {
			mod, err := s.menu.GetModifier(ctx, modID)
			if err != nil {
				return order.Order{}, fmt.Errorf("line %d: %w", i, err)
			}
			line.Modifiers = append(line.Modifiers, order.LineModifier{
				ModifierID:      mod.ID,
				Name:            mod.Name,
				PriceDeltaCents: mod.PriceDeltaCents,
			})
		}
		ord.Lines = append(ord.Lines, line)
		ord.SubtotalCents += line.LineTotalCents()
	}

	ord.TaxCents = (ord.SubtotalCents*s.cfg.TaxRateBasisPoints + 5000) / 10000
	if ord.Type == order.TypeDelivery {
		ord.DeliveryFeeCents = s.cfg.DeliveryFeeCents
	}
	ord.TotalCents = ord.SubtotalCents + ord.TaxCents + ord.DeliveryFeeCents
	return ord, nil
}

// Get loads one order.
func (s *Service) Get(ctx context.Context, id string) (order.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// List lists orders, optionally filtered by business date and status.
func (s *Service) List(ctx context.Context, businessDate string, status order.Status) ([]order.Order, error) {
	return s.store.ListOrders(ctx, businessDate, status)
}

// Advance moves an order to the requested status. Forward moves follow the
// lifecycle one step at a time; canceling works from any non-terminal state.
// Completing or canceling an order with a driver on a run frees the driver.
func (s *Service) Advance(ctx context.Context, id string, to order.Status) (order.Order, error) {
	ord, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if ord.Status.Terminal() {
		return order.Order{}, fmt.Errorf("%w: order %s is already %s", ErrInvalidTransition, id, ord.Status)
	}

	switch to {
	case order.StatusCanceled:
	case nextStatus[ord.Status]:
		if to == order.StatusOutForDelivery && ord.Type != order.TypeDelivery {
			// Pickup and dine-in skip the delivery leg.
			to = order.StatusCompleted
		}
	case order.StatusCompleted:
		// Non-delivery orders complete straight from ready.
		if !(ord.Status == order.StatusReady && ord.Type != order.TypeDelivery) {
			return order.Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, ord.Status, to)
		}
	default:
		return order.Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, ord.Status, to)
	}

	wasOut := ord.Status == order.StatusOutForDelivery
	ord.Status = to
	if to == order.StatusCompleted {
		now := timeNow()
		ord.CompletedAt = &now
	}

	updated, err := s.store.UpdateOrder(ctx, ord)
	if err != nil {
		return order.Order{}, err
	}
	s.log.WithField("order_id", id).WithField("status", string(to)).Info("order status changed")

	if wasOut && to.Terminal() && ord.DriverID != nil && s.drivers != nil {
		if _, err := s.drivers.MarkAvailable(ctx, *ord.DriverID); err != nil {
			s.log.WithError(err).WithField("driver_id", *ord.DriverID).Warn("could not release driver")
		}
	}
	return updated, nil
}

// AssignDriver puts an available driver on a delivery order and marks them
// on a run.
func (s *Service) AssignDriver(ctx context.Context, id string, driverID int64) (order.Order, error) {
	ord, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if ord.Type != order.TypeDelivery {
		return order.Order{}, fmt.Errorf("order %s is not a delivery order", id)
	}
	if ord.Status.Terminal() {
		return order.Order{}, fmt.Errorf("%w: order %s is already %s", ErrInvalidTransition, id, ord.Status)
	}
	if ord.DriverID != nil {
		return order.Order{}, fmt.Errorf("order %s already has driver %d assigned", id, *ord.DriverID)
	}

	if s.drivers != nil {
		if _, err := s.drivers.MarkOnRun(ctx, driverID); err != nil {
			return order.Order{}, err
		}
	}
	ord.DriverID = &driverID

	updated, err := s.store.UpdateOrder(ctx, ord)
	if err != nil {
		// Put the driver back so they are not stranded on a run.
		if s.drivers != nil {
			if _, derr := s.drivers.MarkAvailable(ctx, driverID); derr != nil {
				s.log.WithError(derr).WithField("driver_id", driverID).Warn("could not release driver")
			}
		}
		return order.Order{}, err
	}
	s.log.WithField("order_id", id).WithField("driver_id", driverID).Info("driver assigned")
	return updated, nil
}
