package geocode

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/brickoven/pos/internal/app/domain/geocode"
	"github.com/brickoven/pos/internal/app/domain/store"
	"github.com/brickoven/pos/internal/geo"
)

type staticLocation struct{}

func (staticLocation) Location(context.Context) store.Location {
	return store.DefaultLocation()
}

type fakeProvider struct {
	source  geocode.Source
	results []geocode.Suggestion
	err     error
	calls   int
}

func (f *fakeProvider) Source() geocode.Source { return f.source }

func (f *fakeProvider) Search(context.Context, string, geo.Point, geo.BoundingBox) ([]geocode.Suggestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]geocode.Suggestion, len(f.results))
	copy(out, f.results)
	return out, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func suggestionAt(label string, lat, lon float64) geocode.Suggestion {
	return geocode.Suggestion{Source: geocode.SourceNominatim, Label: label, Lat: lat, Lon: lon}
}

func TestSearchEmptyQuery(t *testing.T) {
	primary := &fakeProvider{source: geocode.SourceNominatim}
	svc := New(staticLocation{}, []Provider{primary}, nil, nil)

	results, err := svc.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", results)
	}
	if primary.calls != 0 {
		t.Fatalf("providers should not be consulted for a blank query")
	}
}

func TestSearchRanksAndCaps(t *testing.T) {
	var results []geocode.Suggestion
	// Eight candidates in radius, listed farthest-first.
	for i := 8; i >= 1; i-- {
		results = append(results, suggestionAt(fmt.Sprintf("addr-%d", i), 39.9973+float64(i)*0.005, -75.1251))
	}
	primary := &fakeProvider{source: geocode.SourceNominatim, results: results}
	svc := New(staticLocation{}, []Provider{primary}, nil, nil)

	got, err := svc.Search(context.Background(), "2401 somerset")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].DistanceMiles < got[i-1].DistanceMiles {
			t.Fatalf("results not sorted nearest-first: %v", got)
		}
	}
	if got[0].Label != "addr-1" {
		t.Fatalf("expected nearest candidate first, got %s", got[0].Label)
	}
	if got[0].DistanceMiles <= 0 {
		t.Fatalf("expected a positive rounded distance, got %v", got[0].DistanceMiles)
	}
}

func TestSearchFallsBackOnFailure(t *testing.T) {
	primary := &fakeProvider{source: geocode.SourceNominatim, err: fmt.Errorf("upstream 503")}
	secondary := &fakeProvider{source: geocode.SourcePhoton, results: []geocode.Suggestion{
		{Source: geocode.SourcePhoton, Label: "fallback", Lat: 40.0, Lon: -75.12},
	}}
	svc := New(staticLocation{}, []Provider{primary, secondary}, nil, nil)

	got, err := svc.Search(context.Background(), "somerset")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Source != geocode.SourcePhoton {
		t.Fatalf("expected the fallback provider's result, got %v", got)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("expected one call each, got %d and %d", primary.calls, secondary.calls)
	}
}

func TestSearchEmptySuccessEndsChain(t *testing.T) {
	primary := &fakeProvider{source: geocode.SourceNominatim}
	secondary := &fakeProvider{source: geocode.SourcePhoton, results: []geocode.Suggestion{
		{Source: geocode.SourcePhoton, Label: "should not appear", Lat: 40.0, Lon: -75.12},
	}}
	svc := New(staticLocation{}, []Provider{primary, secondary}, nil, nil)

	got, err := svc.Search(context.Background(), "nowhere special")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected zero results, got %v", got)
	}
	if secondary.calls != 0 {
		t.Fatalf("empty success from the primary must not trigger the fallback")
	}
}

func TestSearchAllProvidersFail(t *testing.T) {
	primary := &fakeProvider{source: geocode.SourceNominatim, err: fmt.Errorf("timeout")}
	secondary := &fakeProvider{source: geocode.SourcePhoton, err: fmt.Errorf("refused")}
	svc := New(staticLocation{}, []Provider{primary, secondary}, nil, nil)

	if _, err := svc.Search(context.Background(), "somerset"); err == nil {
		t.Fatalf("expected an error when every provider fails")
	}
}

func TestSearchCachesAndExpires(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	primary := &fakeProvider{source: geocode.SourceNominatim, results: []geocode.Suggestion{
		suggestionAt("cached", 40.0, -75.12),
	}}
	svc := New(staticLocation{}, []Provider{primary}, clock.now, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.Search(context.Background(), "2401 Somerset"); err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
	}
	if primary.calls != 1 {
		t.Fatalf("expected one provider call for repeated queries, got %d", primary.calls)
	}

	clock.t = clock.t.Add(resultTTL + time.Second)
	if _, err := svc.Search(context.Background(), "2401 Somerset"); err != nil {
		t.Fatalf("search after expiry: %v", err)
	}
	if primary.calls != 2 {
		t.Fatalf("expected a fresh provider call after expiry, got %d", primary.calls)
	}
}

func TestSearchLiftsRadiusWhenNothingIsClose(t *testing.T) {
	primary := &fakeProvider{source: geocode.SourceNominatim, results: []geocode.Suggestion{
		suggestionAt("far-north", 40.5, -75.0),
		suggestionAt("farther-north", 40.8, -75.0),
	}}
	svc := New(staticLocation{}, []Provider{primary}, nil, nil)

	got, err := svc.Search(context.Background(), "allentown")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the radius filter to be lifted, got %v", got)
	}
	if got[0].Label != "far-north" {
		t.Fatalf("expected nearest-first even beyond the radius, got %s", got[0].Label)
	}
	if got[0].DistanceMiles <= maxRadiusMiles {
		t.Fatalf("test setup broken: candidate should be outside the radius")
	}
}

func TestSearchFiltersToServiceRadius(t *testing.T) {
	primary := &fakeProvider{source: geocode.SourceNominatim, results: []geocode.Suggestion{
		suggestionAt("near", 40.0, -75.12),
		suggestionAt("far", 40.5, -75.0),
		suggestionAt("broken", math.NaN(), -75.12),
	}}
	svc := New(staticLocation{}, []Provider{primary}, nil, nil)

	got, err := svc.Search(context.Background(), "somerset st")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Label != "near" {
		t.Fatalf("expected only the in-radius candidate, got %v", got)
	}
}

type recordingMetrics struct {
	lookups map[string]int
	hits    int
	misses  int
}

func (m *recordingMetrics) RecordGeocodeLookup(source string, _ time.Duration, _ error) {
	if m.lookups == nil {
		m.lookups = map[string]int{}
	}
	m.lookups[source]++
}

func (m *recordingMetrics) RecordCacheLookup(_ string, hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func TestSearchRecordsMetrics(t *testing.T) {
	primary := &fakeProvider{source: geocode.SourceNominatim, err: fmt.Errorf("provider down")}
	secondary := &fakeProvider{source: geocode.SourcePhoton, results: []geocode.Suggestion{
		suggestionAt("addr", 39.9973, -75.1251),
	}}
	rec := &recordingMetrics{}
	svc := New(staticLocation{}, []Provider{primary, secondary}, nil, nil)
	svc.SetMetrics(rec)

	if _, err := svc.Search(context.Background(), "2401 somerset"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := svc.Search(context.Background(), "2401 somerset"); err != nil {
		t.Fatalf("search: %v", err)
	}

	if rec.lookups["nominatim"] != 1 || rec.lookups["photon"] != 1 {
		t.Fatalf("expected one lookup per provider, got %v", rec.lookups)
	}
	if rec.misses != 1 || rec.hits != 1 {
		t.Fatalf("expected one miss then one hit, got %d/%d", rec.misses, rec.hits)
	}
}
