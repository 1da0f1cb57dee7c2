// Package settlement aggregates completed orders into daily settlement
// reports and snapshots the prior day's report every night.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/brickoven/pos/internal/app/domain/order"
	"github.com/brickoven/pos/internal/app/storage"
	"github.com/brickoven/pos/pkg/logger"
)

// Service builds settlement reports from the order store.
type Service struct {
	store storage.OrderStore
	now   func() time.Time
	log   *logger.Logger
}

// New constructs the settlement service. now may be nil; it defaults to
// time.Now and exists so tests can pin the clock.
func New(store storage.OrderStore, now func() time.Time, log *logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.NewDefault("settlement")
	}
	return &Service{store: store, now: now, log: log}
}

// Report returns the settlement for a business date. A persisted snapshot
// wins; otherwise the report is aggregated live from completed orders.
func (s *Service) Report(ctx context.Context, businessDate string) (order.Settlement, error) {
	if _, err := time.Parse("2006-01-02", businessDate); err != nil {
		return order.Settlement{}, fmt.Errorf("invalid business date %q", businessDate)
	}

	if snap, err := s.store.GetSettlement(ctx, businessDate); err == nil {
		return snap, nil
	}
	return s.aggregate(ctx, businessDate)
}

// Snapshot aggregates a business date and persists the result, replacing any
// earlier snapshot for that date.
func (s *Service) Snapshot(ctx context.Context, businessDate string) (order.Settlement, error) {
	report, err := s.aggregate(ctx, businessDate)
	if err != nil {
		return order.Settlement{}, err
	}
	saved, err := s.store.PutSettlement(ctx, report)
	if err != nil {
		return order.Settlement{}, err
	}
	s.log.WithField("business_date", businessDate).WithField("orders", saved.Orders).
		Info("settlement snapshot saved")
	return saved, nil
}

func (s *Service) aggregate(ctx context.Context, businessDate string) (order.Settlement, error) {
	completed, err := s.store.ListOrders(ctx, businessDate, order.StatusCompleted)
	if err != nil {
		return order.Settlement{}, err
	}

	report := order.Settlement{
		BusinessDate: businessDate,
		ByType:       make(map[order.Type]order.TypeTotals),
		GeneratedAt:  s.now().UTC(),
	}
	for _, ord := range completed {
		report.Orders++
		report.GrossCents += ord.TotalCents
		report.TaxCents += ord.TaxCents
		report.DeliveryFeeCents += ord.DeliveryFeeCents

		tt := report.ByType[ord.Type]
		tt.Orders++
		tt.GrossCents += ord.TotalCents
		report.ByType[ord.Type] = tt
	}
	report.NetCents = report.GrossCents - report.TaxCents
	return report, nil
}
