package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TechnicianService manages technician profiles. A profile links an
// existing TECHNICIAN role user; at most one profile per user.
type TechnicianService struct {
	technicians repository.TechnicianRepository
	users       repository.UserRepository
}

// NewTechnicianService constructs the service.
func NewTechnicianService(technicians repository.TechnicianRepository, users repository.UserRepository) *TechnicianService {
	return &TechnicianService{technicians: technicians, users: users}
}

// TechnicianCreateInput describes technician creation payload.
type TechnicianCreateInput struct {
	Name         string
	Specialty    string
	Availability bool
	UserEmail    string
}

// Create links a technician profile to the user owning the given email.
func (s *TechnicianService) Create(ctx context.Context, input TechnicianCreateInput) (*domain.Technician, error) {
	email := strings.TrimSpace(strings.ToLower(input.UserEmail))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, err
	}
	if user.Role != domain.RoleTechnician {
		return nil, apperrors.NewValidationError("user must have TECHNICIAN role", map[string]any{"email": email})
	}
	if _, err := s.technicians.GetByUserID(ctx, user.ID); err == nil {
		return nil, apperrors.NewConflict("technician profile already exists for this user", map[string]any{"user_id": user.ID})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	technician := &domain.Technician{
		Name:         strings.TrimSpace(input.Name),
		Specialty:    strings.TrimSpace(input.Specialty),
		Availability: input.Availability,
		UserID:       user.ID,
	}
	if err := s.technicians.Create(ctx, technician); err != nil {
		return nil, err
	}
	return technician, nil
}

// Get fetches a technician by id.
func (s *TechnicianService) Get(ctx context.Context, id string) (*domain.Technician, error) {
	technician, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return nil, storeMiss(err, "technician", id)
	}
	return technician, nil
}

// List returns all technicians.
func (s *TechnicianService) List(ctx context.Context) ([]domain.Technician, error) {
	return s.technicians.List(ctx)
}

// Update patches profile fields.
func (s *TechnicianService) Update(ctx context.Context, id string, name *string, specialty *string, availability *bool) (*domain.Technician, error) {
	technician, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		technician.Name = strings.TrimSpace(*name)
	}
	if specialty != nil && strings.TrimSpace(*specialty) != "" {
		technician.Specialty = strings.TrimSpace(*specialty)
	}
	if availability != nil {
		technician.Availability = *availability
	}
	if err := s.technicians.Update(ctx, technician); err != nil {
		return nil, storeMiss(err, "technician", id)
	}
	return technician, nil
}

// Delete removes a technician profile.
func (s *TechnicianService) Delete(ctx context.Context, id string) error {
	if err := s.technicians.Delete(ctx, id); err != nil {
		return storeMiss(err, "technician", id)
	}
	return nil
}
