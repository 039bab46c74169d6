package service_test

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// In-memory repository fakes. They honor the same contract as the
// Postgres implementations: misses surface as pgx.ErrNoRows.

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket

	// countDelay lets concurrency tests widen the check-then-write window.
	countDelay func()
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tickets, id)
	return nil
}

func (f *fakeTicketRepo) List(_ context.Context, limit, offset int) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.sortedLocked()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeTicketRepo) ListByClient(_ context.Context, clientID string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range f.sortedLocked() {
		if ticket.ClientID == clientID {
			out = append(out, ticket)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListByTechnician(_ context.Context, technicianID string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range f.sortedLocked() {
		if ticket.TechnicianID != nil && *ticket.TechnicianID == technicianID {
			out = append(out, ticket)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) CountByTechnicianAndStatus(_ context.Context, technicianID string, status domain.TicketStatus) (int, error) {
	f.mu.Lock()
	count := 0
	for _, ticket := range f.tickets {
		if ticket.TechnicianID != nil && *ticket.TechnicianID == technicianID && ticket.Status == status {
			count++
		}
	}
	delay := f.countDelay
	f.mu.Unlock()

	if delay != nil {
		delay()
	}
	return count, nil
}

func (f *fakeTicketRepo) sortedLocked() []domain.Ticket {
	out := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[string]domain.Category)}
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	f.categories[category.ID] = *category
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.categories[category.ID] = *category
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	category, ok := f.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &category, nil
}

func (f *fakeCategoryRepo) GetByName(_ context.Context, name string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, category := range f.categories {
		if category.Name == name {
			c := category
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Category, 0, len(f.categories))
	for _, category := range f.categories {
		out = append(out, category)
	}
	return out, nil
}

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[string]domain.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]domain.Client)}
}

func (f *fakeClientRepo) Create(_ context.Context, client *domain.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	f.clients[client.ID] = *client
	return nil
}

func (f *fakeClientRepo) Update(_ context.Context, client *domain.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[client.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.clients[client.ID] = *client
	return nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	client, ok := f.clients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &client, nil
}

func (f *fakeClientRepo) GetByUserID(_ context.Context, userID string) (*domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, client := range f.clients {
		if client.UserID == userID {
			c := client
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeClientRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.clients, id)
	return nil
}

func (f *fakeClientRepo) List(_ context.Context) ([]domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Client, 0, len(f.clients))
	for _, client := range f.clients {
		out = append(out, client)
	}
	return out, nil
}

type fakeTechnicianRepo struct {
	mu          sync.Mutex
	technicians map[string]domain.Technician
}

func newFakeTechnicianRepo() *fakeTechnicianRepo {
	return &fakeTechnicianRepo{technicians: make(map[string]domain.Technician)}
}

func (f *fakeTechnicianRepo) Create(_ context.Context, technician *domain.Technician) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if technician.ID == "" {
		technician.ID = uuid.NewString()
	}
	f.technicians[technician.ID] = *technician
	return nil
}

func (f *fakeTechnicianRepo) Update(_ context.Context, technician *domain.Technician) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.technicians[technician.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.technicians[technician.ID] = *technician
	return nil
}

func (f *fakeTechnicianRepo) GetByID(_ context.Context, id string) (*domain.Technician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	technician, ok := f.technicians[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &technician, nil
}

func (f *fakeTechnicianRepo) GetByUserID(_ context.Context, userID string) (*domain.Technician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, technician := range f.technicians {
		if technician.UserID == userID {
			t := technician
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTechnicianRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.technicians[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.technicians, id)
	return nil
}

func (f *fakeTechnicianRepo) List(_ context.Context) ([]domain.Technician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Technician, 0, len(f.technicians))
	for _, technician := range f.technicians {
		out = append(out, technician)
	}
	return out, nil
}
