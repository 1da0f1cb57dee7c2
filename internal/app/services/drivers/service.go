// Package drivers manages delivery drivers and their dispatch status.
package drivers

import (
	"context"
	"fmt"
	"strings"

	"github.com/brickoven/pos/internal/app/domain/driver"
	"github.com/brickoven/pos/internal/app/storage"
	"github.com/brickoven/pos/pkg/logger"
)

// Service exposes driver CRUD plus shift and dispatch transitions.
type Service struct {
	store storage.DriverStore
	log   *logger.Logger
}

// New constructs the drivers service.
func New(store storage.DriverStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("drivers")
	}
	return &Service{store: store, log: log}
}

// Create registers a new driver, off shift by default.
func (s *Service) Create(ctx context.Context, drv driver.Driver) (driver.Driver, error) {
	drv.Name = strings.TrimSpace(drv.Name)
	if drv.Name == "" {
		return driver.Driver{}, fmt.Errorf("driver name is required")
	}
	drv.Phone = strings.TrimSpace(drv.Phone)
	drv.Status = driver.StatusOffShift
	drv.Active = true

	created, err := s.store.CreateDriver(ctx, drv)
	if err != nil {
		return driver.Driver{}, err
	}
	s.log.WithField("driver_id", created.ID).Info("driver created")
	return created, nil
}

// Update changes a driver's profile fields. Status is managed through the
// transition methods, not here.
func (s *Service) Update(ctx context.Context, drv driver.Driver) (driver.Driver, error) {
	drv.Name = strings.TrimSpace(drv.Name)
	if drv.Name == "" {
		return driver.Driver{}, fmt.Errorf("driver name is required")
	}
	current, err := s.store.GetDriver(ctx, drv.ID)
	if err != nil {
		return driver.Driver{}, err
	}
	drv.Status = current.Status
	return s.store.UpdateDriver(ctx, drv)
}

// Get loads one driver.
func (s *Service) Get(ctx context.Context, id int64) (driver.Driver, error) {
	return s.store.GetDriver(ctx, id)
}

// List lists all drivers.
func (s *Service) List(ctx context.Context) ([]driver.Driver, error) {
	return s.store.ListDrivers(ctx)
}

// Delete removes a driver.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteDriver(ctx, id)
}

// ClockIn moves an off-shift driver to available.
func (s *Service) ClockIn(ctx context.Context, id int64) (driver.Driver, error) {
	return s.transition(ctx, id, driver.StatusOffShift, driver.StatusAvailable)
}

// ClockOut ends a driver's shift. A driver on a run must finish it first.
func (s *Service) ClockOut(ctx context.Context, id int64) (driver.Driver, error) {
	return s.transition(ctx, id, driver.StatusAvailable, driver.StatusOffShift)
}

// MarkOnRun moves an available driver onto a delivery run.
func (s *Service) MarkOnRun(ctx context.Context, id int64) (driver.Driver, error) {
	return s.transition(ctx, id, driver.StatusAvailable, driver.StatusOnRun)
}

// MarkAvailable returns a driver from a run to the available pool.
func (s *Service) MarkAvailable(ctx context.Context, id int64) (driver.Driver, error) {
	return s.transition(ctx, id, driver.StatusOnRun, driver.StatusAvailable)
}

func (s *Service) transition(ctx context.Context, id int64, from, to driver.Status) (driver.Driver, error) {
	drv, err := s.store.GetDriver(ctx, id)
	if err != nil {
		return driver.Driver{}, err
	}
	if drv.Status != from {
		return driver.Driver{}, fmt.Errorf("driver %d is %s, expected %s", id, drv.Status, from)
	}
	drv.Status = to

	updated, err := s.store.UpdateDriver(ctx, drv)
	if err != nil {
		return driver.Driver{}, err
	}
	s.log.WithField("driver_id", id).WithField("status", string(to)).Info("driver status changed")
	return updated, nil
}
