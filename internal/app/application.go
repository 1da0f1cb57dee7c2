package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brickoven/pos/internal/app/services/drivers"
	geocodesvc "github.com/brickoven/pos/internal/app/services/geocode"
	"github.com/brickoven/pos/internal/app/services/layout"
	"github.com/brickoven/pos/internal/app/services/menucatalog"
	"github.com/brickoven/pos/internal/app/services/orders"
	"github.com/brickoven/pos/internal/app/services/settlement"
	"github.com/brickoven/pos/internal/app/services/storeinfo"
	"github.com/brickoven/pos/internal/app/storage"
	"github.com/brickoven/pos/internal/app/system"
	"github.com/brickoven/pos/internal/config"
	"github.com/brickoven/pos/internal/metrics"
	"github.com/brickoven/pos/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Settings storage.SettingsStore
	Menu     storage.MenuStore
	Layout   storage.LayoutStore
	Drivers  storage.DriverStore
	Orders   storage.OrderStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Metrics    *metrics.Collector
	StoreInfo  *storeinfo.Service
	Geocode    *geocodesvc.Service
	Menu       *menucatalog.Service
	Layout     *layout.Service
	Drivers    *drivers.Service
	Orders     *orders.Service
	Settlement *settlement.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, cfg config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := storage.NewMemory()
	if stores.Settings == nil {
		stores.Settings = mem
	}
	if stores.Menu == nil {
		stores.Menu = mem
	}
	if stores.Layout == nil {
		stores.Layout = mem
	}
	if stores.Drivers == nil {
		stores.Drivers = mem
	}
	if stores.Orders == nil {
		stores.Orders = mem
	}

	manager := system.NewManager()

	storeInfoService := storeinfo.New(stores.Settings, nil, log)

	httpClient := &http.Client{Timeout: cfg.Geocode.Timeout.Std()}
	providers := []geocodesvc.Provider{
		geocodesvc.NewNominatim(httpClient, cfg.Geocode.NominatimURL, cfg.Geocode.UserAgent, cfg.Geocode.ContactEmail, log),
		geocodesvc.NewPhoton(httpClient, cfg.Geocode.PhotonURL, log),
	}
	collector := metrics.NewCollector("pos")

	geocodeService := geocodesvc.New(storeInfoService, providers, nil, log)
	geocodeService.SetMetrics(collector)

	menuService := menucatalog.New(stores.Menu, log)
	layoutService := layout.New(stores.Layout, log)
	driverService := drivers.New(stores.Drivers, log)
	orderService := orders.New(stores.Orders, stores.Menu, driverService, orders.Config{
		TaxRateBasisPoints: cfg.Orders.TaxRateBasisPoints,
		DeliveryFeeCents:   cfg.Orders.DeliveryFeeCents,
	}, log)
	settlementService := settlement.New(stores.Orders, time.Now, log)

	snapshotter := settlement.NewSnapshotter(settlementService, log)
	if err := manager.Register(snapshotter); err != nil {
		return nil, fmt.Errorf("register %s: %w", snapshotter.Name(), err)
	}

	return &Application{
		manager:    manager,
		log:        log,
		Metrics:    collector,
		StoreInfo:  storeInfoService,
		Geocode:    geocodeService,
		Menu:       menuService,
		Layout:     layoutService,
		Drivers:    driverService,
		Orders:     orderService,
		Settlement: settlementService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
