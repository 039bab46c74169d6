package domain

import "time"

// Client is the profile of a customer that reports tickets,
// linked one-to-one with a CLIENT role user account.
type Client struct {
	ID           string
	Name         string
	Company      *string
	ContactEmail string
	UserID       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
