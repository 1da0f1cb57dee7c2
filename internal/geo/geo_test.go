package geo

import (
	"math"
	"testing"
)

func TestHaversineMiles(t *testing.T) {
	store := Point{Lat: 39.9973, Lon: -75.1251}

	if d := HaversineMiles(store, store); d != 0 {
		t.Fatalf("distance to self should be zero, got %v", d)
	}

	// Philadelphia City Hall is roughly 3.9 miles from the store.
	cityHall := Point{Lat: 39.9526, Lon: -75.1652}
	d := HaversineMiles(store, cityHall)
	if d < 3.5 || d > 4.5 {
		t.Fatalf("unexpected distance to City Hall: %v", d)
	}
	if back := HaversineMiles(cityHall, store); math.Abs(back-d) > 1e-9 {
		t.Fatalf("distance should be symmetric: %v vs %v", d, back)
	}

	// New York Penn Station is on the order of 80 miles away.
	penn := Point{Lat: 40.7506, Lon: -73.9935}
	if d := HaversineMiles(store, penn); d < 70 || d > 95 {
		t.Fatalf("unexpected distance to Penn Station: %v", d)
	}
}

func TestRoundMiles(t *testing.T) {
	if got := RoundMiles(3.14159); got != 3.14 {
		t.Fatalf("expected 3.14, got %v", got)
	}
	if got := RoundMiles(0.005); got != 0.01 {
		t.Fatalf("expected 0.01, got %v", got)
	}
}

func TestPointValid(t *testing.T) {
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{Lat: 39.9973, Lon: -75.1251}, true},
		{Point{Lat: 90, Lon: 180}, true},
		{Point{Lat: 91, Lon: 0}, false},
		{Point{Lat: 0, Lon: -181}, false},
		{Point{Lat: math.NaN(), Lon: 0}, false},
		{Point{Lat: 0, Lon: math.Inf(1)}, false},
	}
	for _, tc := range cases {
		if got := tc.p.Valid(); got != tc.want {
			t.Fatalf("Valid(%+v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestBoxAround(t *testing.T) {
	box := BoxAround(Point{Lat: 40, Lon: -75}, 0.05, 0.07)
	const eps = 1e-9
	if math.Abs(box.MinLat-39.95) > eps || math.Abs(box.MaxLat-40.05) > eps {
		t.Fatalf("unexpected latitude bounds: %+v", box)
	}
	if math.Abs(box.MinLon+75.07) > eps || math.Abs(box.MaxLon+74.93) > eps {
		t.Fatalf("unexpected longitude bounds: %+v", box)
	}
}
