package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brickoven/pos/internal/geo"
)

const nominatimPayload = `[
  {
    "display_name": "2401, East Somerset Street, Port Richmond, Philadelphia, Pennsylvania, 19134, United States",
    "lat": "39.9973",
    "lon": "-75.1251",
    "address": {
      "house_number": "2401",
      "road": "East Somerset Street",
      "neighbourhood": "Port Richmond",
      "city": "Philadelphia",
      "state": "Pennsylvania",
      "postcode": "19134"
    }
  },
  {
    "display_name": "Town result",
    "lat": "40.0010",
    "lon": "-75.1200",
    "address": {
      "road": "Main Street",
      "town": "Smalltown",
      "state": "Pennsylvania"
    }
  },
  {
    "display_name": "Unparseable coordinates",
    "lat": "not-a-number",
    "lon": "-75.1",
    "address": {}
  }
]`

func TestNominatimSearch(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(nominatimPayload))
	}))
	defer server.Close()

	provider := NewNominatim(server.Client(), server.URL, "test-agent/1.0", "ops@example.com", nil)
	box := geo.BoundingBox{MinLat: 39.9473, MaxLat: 40.0473, MinLon: -75.1951, MaxLon: -75.0551}

	got, err := provider.Search(context.Background(), "2401 e somerset st", geo.Point{Lat: 39.9973, Lon: -75.1251}, box)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	q := captured.URL.Query()
	if q.Get("q") != "2401 e somerset st" {
		t.Fatalf("unexpected q param: %q", q.Get("q"))
	}
	if q.Get("format") != "jsonv2" || q.Get("addressdetails") != "1" || q.Get("bounded") != "1" {
		t.Fatalf("missing required params: %v", q)
	}
	if q.Get("countrycodes") != "us" {
		t.Fatalf("unexpected countrycodes: %q", q.Get("countrycodes"))
	}
	if q.Get("viewbox") != "-75.195100,40.047300,-75.055100,39.947300" {
		t.Fatalf("unexpected viewbox ordering: %q", q.Get("viewbox"))
	}
	if captured.Header.Get("User-Agent") != "test-agent/1.0" {
		t.Fatalf("user agent not set: %q", captured.Header.Get("User-Agent"))
	}
	if captured.Header.Get("From") != "ops@example.com" {
		t.Fatalf("contact header not set: %q", captured.Header.Get("From"))
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 parseable results, got %d", len(got))
	}
	first := got[0]
	if first.Lat != 39.9973 || first.Lon != -75.1251 {
		t.Fatalf("coordinates not parsed: %+v", first)
	}
	if first.Label != "2401 East Somerset Street, Port Richmond, Philadelphia, Pennsylvania, 19134" {
		t.Fatalf("unexpected label: %q", first.Label)
	}
	if got[1].Raw.City != "Smalltown" {
		t.Fatalf("town should map to city, got %q", got[1].Raw.City)
	}
}

func TestNominatimMalformedJSONIsZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>rate limited</html>"))
	}))
	defer server.Close()

	provider := NewNominatim(server.Client(), server.URL, "test-agent/1.0", "", nil)
	got, err := provider.Search(context.Background(), "anything", geo.Point{}, geo.BoundingBox{})
	if err != nil {
		t.Fatalf("malformed JSON must not be a provider failure: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected zero results, got %v", got)
	}
}

func TestNominatimServerErrorIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewNominatim(server.Client(), server.URL, "test-agent/1.0", "", nil)
	if _, err := provider.Search(context.Background(), "anything", geo.Point{}, geo.BoundingBox{}); err == nil {
		t.Fatalf("expected an error on HTTP 503")
	}
}
