package geocode

import (
	"context"
	"strings"

	"github.com/brickoven/pos/internal/app/domain/geocode"
	"github.com/brickoven/pos/internal/geo"
)

// Provider is one external geocoding backend. Implementations normalize
// their wire format into geocode.Suggestion at the network boundary; a
// transport or HTTP-status failure is an error, while a malformed or empty
// payload is zero suggestions and a nil error.
type Provider interface {
	Source() geocode.Source
	Search(ctx context.Context, query string, ref geo.Point, box geo.BoundingBox) ([]geocode.Suggestion, error)
}

// buildLabel joins the non-empty structured address parts in display order.
// House number and street form one segment; the rest are comma-separated.
func buildLabel(addr geocode.Address) string {
	street := strings.TrimSpace(strings.TrimSpace(addr.HouseNumber) + " " + strings.TrimSpace(addr.Street))
	parts := make([]string, 0, 5)
	for _, part := range []string{street, addr.Neighborhood, addr.City, addr.State, addr.PostalCode} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, ", ")
}

// firstNonEmpty returns the first non-blank candidate.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return strings.TrimSpace(c)
		}
	}
	return ""
}
