package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// UpdateCategoryRequest payload.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CategoryResponse representation.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCategoryResponse maps a domain category.
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
	}
}

// CreateClientRequest payload. The admin provisions the login account
// and the profile in one call.
type CreateClientRequest struct {
	Name         string  `json:"name"`
	Company      *string `json:"company"`
	ContactEmail string  `json:"contact_email"`
	Password     string  `json:"password"`
}

// UpdateClientRequest payload.
type UpdateClientRequest struct {
	Name         *string `json:"name"`
	Company      *string `json:"company"`
	ContactEmail *string `json:"contact_email"`
}

// ClientResponse representation.
type ClientResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Company      *string   `json:"company"`
	ContactEmail string    `json:"contact_email"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewClientResponse maps a domain client.
func NewClientResponse(client *domain.Client) ClientResponse {
	return ClientResponse{
		ID:           client.ID,
		Name:         client.Name,
		Company:      client.Company,
		ContactEmail: client.ContactEmail,
		UserID:       client.UserID,
		CreatedAt:    client.CreatedAt,
	}
}

// CreateTechnicianRequest payload. Links an existing TECHNICIAN user.
type CreateTechnicianRequest struct {
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	Availability *bool  `json:"availability"`
	UserEmail    string `json:"user_email"`
}

// UpdateTechnicianRequest payload.
type UpdateTechnicianRequest struct {
	Name         *string `json:"name"`
	Specialty    *string `json:"specialty"`
	Availability *bool   `json:"availability"`
}

// TechnicianResponse representation.
type TechnicianResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Specialty    string    `json:"specialty"`
	Availability bool      `json:"availability"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewTechnicianResponse maps a domain technician.
func NewTechnicianResponse(technician *domain.Technician) TechnicianResponse {
	return TechnicianResponse{
		ID:           technician.ID,
		Name:         technician.Name,
		Specialty:    technician.Specialty,
		Availability: technician.Availability,
		UserID:       technician.UserID,
		CreatedAt:    technician.CreatedAt,
	}
}
