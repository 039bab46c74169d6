package domain

import "time"

// Technician is the profile of a support operator, linked one-to-one
// with a TECHNICIAN role user account. Availability is informational;
// the workload cap is derived from live ticket counts, never stored here.
type Technician struct {
	ID           string
	Name         string
	Specialty    string
	Availability bool
	UserID       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
