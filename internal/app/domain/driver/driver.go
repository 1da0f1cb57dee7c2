// Package driver defines delivery driver records and dispatch state.
package driver

import "time"

// Status tracks where a driver is in the dispatch cycle.
type Status string

const (
	StatusOffShift  Status = "off_shift"
	StatusAvailable Status = "available"
	StatusOnRun     Status = "on_run"
)

// Driver is a delivery driver. Status transitions: clock-in moves off_shift
// to available, assigning a delivery moves available to on_run, completing
// the run returns the driver to available.
type Driver struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Status    Status    `json:"status"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
