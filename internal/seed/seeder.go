// Package seed populates a development database with a realistic data
// set: an admin account, categories, technician and client profiles
// with their linked users, and a batch of randomized tickets.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
)

// Options controls what the seeder creates.
type Options struct {
	Tickets    int
	BcryptCost int
	Password   string
}

// Seeder inserts fixture data through the repositories so every record
// passes the same validation the API applies.
type Seeder struct {
	users       repository.UserRepository
	categories  repository.CategoryRepository
	clients     repository.ClientRepository
	technicians repository.TechnicianRepository
	tickets     repository.TicketRepository
	admission   *service.AdmissionController
	logger      *zap.Logger
	rng         *rand.Rand
}

// NewSeeder constructs a seeder.
func NewSeeder(
	users repository.UserRepository,
	categories repository.CategoryRepository,
	clients repository.ClientRepository,
	technicians repository.TechnicianRepository,
	tickets repository.TicketRepository,
	admission *service.AdmissionController,
	logger *zap.Logger,
	seed int64,
) *Seeder {
	return &Seeder{
		users:       users,
		categories:  categories,
		clients:     clients,
		technicians: technicians,
		tickets:     tickets,
		admission:   admission,
		logger:      logger,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

var categoryNames = []string{"Hardware", "Software", "Network", "Access", "Other"}

var technicianProfiles = []struct {
	Name      string
	Specialty string
}{
	{"Ava Martin", "Hardware"},
	{"Noah Keller", "Networking"},
	{"Mia Sorensen", "Software"},
	{"Liam Ortega", "Access Management"},
	{"Ella Brandt", "General Support"},
}

var clientProfiles = []struct {
	Name    string
	Company string
}{
	{"Acme Corp Support", "Acme Corp"},
	{"Globex Desk", "Globex"},
	{"Initech Ops", "Initech"},
	{"Umbrella IT", "Umbrella"},
	{"Stark Services", "Stark Industries"},
	{"Wayne Helpdesk", "Wayne Enterprises"},
}

var ticketTitles = []string{
	"Laptop will not boot",
	"VPN connection drops",
	"Email sync failure",
	"Printer offline",
	"Password reset loop",
	"Application crash on startup",
	"Slow network in office",
	"Monitor flickering",
	"License activation error",
	"Disk space warning",
}

// Run seeds the database. Existing records with the same unique keys are
// reused, so running the seeder twice is safe.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.Tickets <= 0 {
		opts.Tickets = 30
	}
	if opts.Password == "" {
		opts.Password = "changeme123"
	}

	if err := s.seedAdmin(ctx, opts); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	categories, err := s.seedCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	technicians, err := s.seedTechnicians(ctx, opts)
	if err != nil {
		return fmt.Errorf("seed technicians: %w", err)
	}

	clients, err := s.seedClients(ctx, opts)
	if err != nil {
		return fmt.Errorf("seed clients: %w", err)
	}

	created, err := s.seedTickets(ctx, opts.Tickets, categories, clients, technicians)
	if err != nil {
		return fmt.Errorf("seed tickets: %w", err)
	}

	s.logger.Info("seeding complete",
		zap.Int("categories", len(categories)),
		zap.Int("technicians", len(technicians)),
		zap.Int("clients", len(clients)),
		zap.Int("tickets", created),
	)
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, opts Options) error {
	const email = "admin@helpdesk.local"
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(opts.Password, opts.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.Create(ctx, &domain.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
	})
}

func (s *Seeder) seedCategories(ctx context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		existing, err := s.categories.GetByName(ctx, name)
		if err == nil {
			out = append(out, *existing)
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		category := domain.Category{Name: name}
		if err := s.categories.Create(ctx, &category); err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, nil
}

func (s *Seeder) seedTechnicians(ctx context.Context, opts Options) ([]domain.Technician, error) {
	out := make([]domain.Technician, 0, len(technicianProfiles))
	for i, profile := range technicianProfiles {
		email := fmt.Sprintf("tech%d@helpdesk.local", i+1)
		user, err := s.ensureUser(ctx, profile.Name, email, domain.RoleTechnician, opts)
		if err != nil {
			return nil, err
		}

		existing, err := s.technicians.GetByUserID(ctx, user.ID)
		if err == nil {
			out = append(out, *existing)
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		technician := domain.Technician{
			Name:         profile.Name,
			Specialty:    profile.Specialty,
			Availability: true,
			UserID:       user.ID,
		}
		if err := s.technicians.Create(ctx, &technician); err != nil {
			return nil, err
		}
		out = append(out, technician)
	}
	return out, nil
}

func (s *Seeder) seedClients(ctx context.Context, opts Options) ([]domain.Client, error) {
	out := make([]domain.Client, 0, len(clientProfiles))
	for i, profile := range clientProfiles {
		email := fmt.Sprintf("client%d@helpdesk.local", i+1)
		user, err := s.ensureUser(ctx, profile.Name, email, domain.RoleClient, opts)
		if err != nil {
			return nil, err
		}

		existing, err := s.clients.GetByUserID(ctx, user.ID)
		if err == nil {
			out = append(out, *existing)
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		company := profile.Company
		client := domain.Client{
			Name:         profile.Name,
			Company:      &company,
			ContactEmail: email,
			UserID:       user.ID,
		}
		if err := s.clients.Create(ctx, &client); err != nil {
			return nil, err
		}
		out = append(out, client)
	}
	return out, nil
}

// seedTickets creates randomized tickets. Assignments go through the
// admission controller so a technician never starts out over the
// workload cap; a capacity denial leaves the ticket unassigned instead
// of failing the run.
func (s *Seeder) seedTickets(
	ctx context.Context,
	count int,
	categories []domain.Category,
	clients []domain.Client,
	technicians []domain.Technician,
) (int, error) {
	if len(categories) == 0 || len(clients) == 0 {
		return 0, errors.New("categories and clients required before tickets")
	}

	priorities := domain.TicketPriorities
	created := 0
	for i := 0; i < count; i++ {
		ticket := &domain.Ticket{
			Title:       ticketTitles[s.rng.Intn(len(ticketTitles))],
			Description: fmt.Sprintf("Seeded ticket #%d", i+1),
			Status:      domain.TicketStatusOpen,
			Priority:    priorities[s.rng.Intn(len(priorities))],
			CategoryID:  categories[s.rng.Intn(len(categories))].ID,
			ClientID:    clients[s.rng.Intn(len(clients))].ID,
		}

		assign := len(technicians) > 0 && s.rng.Intn(100) < 60
		if !assign {
			if err := s.tickets.Create(ctx, ticket); err != nil {
				return created, err
			}
			created++
			continue
		}

		technician := technicians[s.rng.Intn(len(technicians))]
		ticket.TechnicianID = &technician.ID
		if s.rng.Intn(100) < 50 {
			ticket.Status = domain.TicketStatusInProgress
		}

		err := s.admission.Admit(ctx, technician.ID, func(ctx context.Context) error {
			return s.tickets.Create(ctx, ticket)
		})
		var capacityErr *service.CapacityExceededError
		if errors.As(err, &capacityErr) {
			ticket.TechnicianID = nil
			ticket.Status = domain.TicketStatusOpen
			err = s.tickets.Create(ctx, ticket)
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Seeder) ensureUser(ctx context.Context, name, email string, role domain.UserRole, opts Options) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(opts.Password, opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	user = &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
