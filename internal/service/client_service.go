package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// ClientService manages client profiles. Creating a client provisions
// the owning CLIENT user account in the same flow.
type ClientService struct {
	clients    repository.ClientRepository
	users      repository.UserRepository
	bcryptCost int
}

// NewClientService constructs the service.
func NewClientService(clients repository.ClientRepository, users repository.UserRepository, bcryptCost int) *ClientService {
	return &ClientService{clients: clients, users: users, bcryptCost: bcryptCost}
}

// ClientCreateInput describes client creation payload.
type ClientCreateInput struct {
	Name         string
	Company      *string
	ContactEmail string
	Password     string
}

// Create provisions a CLIENT user plus profile. The contact email doubles
// as the login email and must be unused.
func (s *ClientService) Create(ctx context.Context, input ClientCreateInput) (*domain.Client, error) {
	email := strings.TrimSpace(strings.ToLower(input.ContactEmail))
	if email == "" || strings.TrimSpace(input.Name) == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, contact email and password required", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	client := &domain.Client{
		Name:         user.Name,
		Company:      input.Company,
		ContactEmail: email,
		UserID:       user.ID,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Get fetches a client by id.
func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, storeMiss(err, "client", id)
	}
	return client, nil
}

// List returns all clients.
func (s *ClientService) List(ctx context.Context) ([]domain.Client, error) {
	return s.clients.List(ctx)
}

// Update patches profile fields.
func (s *ClientService) Update(ctx context.Context, id string, name *string, company *string, contactEmail *string) (*domain.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		client.Name = strings.TrimSpace(*name)
	}
	if company != nil {
		client.Company = company
	}
	if contactEmail != nil && strings.TrimSpace(*contactEmail) != "" {
		client.ContactEmail = strings.TrimSpace(strings.ToLower(*contactEmail))
	}
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, storeMiss(err, "client", id)
	}
	return client, nil
}

// Delete removes a client profile.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.clients.Delete(ctx, id); err != nil {
		return storeMiss(err, "client", id)
	}
	return nil
}
