// Package store holds the singleton restaurant settings record.
package store

import "time"

// SettingsRowID is the fixed primary key of the single store_settings row.
// The row is created at migration time and only ever upserted, never deleted.
const SettingsRowID = 1

// Location is the restaurant's address and coordinates. Exactly one row
// exists; it supplies the reference point for geocoding.
type Location struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultLocation returns the hard-coded fallback used when the settings row
// cannot be read or holds non-finite coordinates.
func DefaultLocation() Location {
	return Location{
		Name:    "Brick Oven Pizza",
		Address: "2401 E Somerset St",
		City:    "Philadelphia",
		State:   "PA",
		Zip:     "19134",
		Lat:     39.9973,
		Lon:     -75.1251,
	}
}
