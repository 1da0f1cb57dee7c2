package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brickoven/pos/internal/geo"
)

const photonPayload = `{
  "features": [
    {
      "geometry": {"coordinates": [-75.1251, 39.9973]},
      "properties": {
        "housenumber": "2401",
        "street": "East Somerset Street",
        "district": "Port Richmond",
        "city": "Philadelphia",
        "state": "Pennsylvania",
        "postcode": "19134"
      }
    },
    {
      "geometry": {"coordinates": []},
      "properties": {"name": "No coordinates"}
    },
    {
      "geometry": {"coordinates": [-75.16, 39.95]},
      "properties": {"name": "City Hall", "city": "Philadelphia"}
    }
  ]
}`

func TestPhotonSearch(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(photonPayload))
	}))
	defer server.Close()

	provider := NewPhoton(server.Client(), server.URL, nil)
	ref := geo.Point{Lat: 39.9973, Lon: -75.1251}

	got, err := provider.Search(context.Background(), "somerset", ref, geo.BoundingBox{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	q := captured.URL.Query()
	if q.Get("q") != "somerset" {
		t.Fatalf("unexpected q param: %q", q.Get("q"))
	}
	if q.Get("lat") != "39.9973" || q.Get("lon") != "-75.1251" {
		t.Fatalf("bias coordinates not sent: lat=%q lon=%q", q.Get("lat"), q.Get("lon"))
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 results with coordinates, got %d", len(got))
	}
	first := got[0]
	if first.Lat != 39.9973 || first.Lon != -75.1251 {
		t.Fatalf("GeoJSON coordinates not transposed: %+v", first)
	}
	if first.Source != "photon" {
		t.Fatalf("unexpected source: %q", first.Source)
	}
	if first.Label != "2401 East Somerset Street, Port Richmond, Philadelphia, Pennsylvania, 19134" {
		t.Fatalf("unexpected label: %q", first.Label)
	}
	if got[1].Raw.Street != "City Hall" {
		t.Fatalf("name should backfill street, got %q", got[1].Raw.Street)
	}
}

func TestPhotonMalformedJSONIsZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	provider := NewPhoton(server.Client(), server.URL, nil)
	got, err := provider.Search(context.Background(), "anything", geo.Point{}, geo.BoundingBox{})
	if err != nil {
		t.Fatalf("malformed JSON must not be a provider failure: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected zero results, got %v", got)
	}
}

func TestPhotonServerErrorIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider := NewPhoton(server.Client(), server.URL, nil)
	if _, err := provider.Search(context.Background(), "anything", geo.Point{}, geo.BoundingBox{}); err == nil {
		t.Fatalf("expected an error on HTTP 502")
	}
}
