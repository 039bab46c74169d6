package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketService is the lifecycle orchestrator: the only component that
// mutates persisted ticket state. It composes the transition engine, the
// admission controller and the authorization policy around every mutation.
type TicketService struct {
	tickets     repository.TicketRepository
	categories  repository.CategoryRepository
	clients     repository.ClientRepository
	technicians repository.TechnicianRepository
	engine      *TransitionEngine
	admission   *AdmissionController
	authorizer  *TicketAuthorizer
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CategoryRepo   repository.CategoryRepository
	ClientRepo     repository.ClientRepository
	TechnicianRepo repository.TechnicianRepository
	Engine         *TransitionEngine
	Admission      *AdmissionController
	Authorizer     *TicketAuthorizer
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	Priority     domain.TicketPriority
	CategoryID   string
	ClientID     string
	TechnicianID *string
}

// TicketUpdateInput describes a partial ticket update. Nil fields are
// left untouched.
type TicketUpdateInput struct {
	Title        *string
	Description  *string
	Priority     *domain.TicketPriority
	CategoryID   *string
	TechnicianID *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	engine := deps.Engine
	if engine == nil {
		engine = NewTransitionEngine(nil)
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		categories:  deps.CategoryRepo,
		clients:     deps.ClientRepo,
		technicians: deps.TechnicianRepo,
		engine:      engine,
		admission:   deps.Admission,
		authorizer:  deps.Authorizer,
		dispatcher:  deps.Dispatcher,
	}
}

// Create validates referenced entities, runs the admission check when a
// technician is assigned up front, and persists a new OPEN ticket. Either
// the whole precondition chain passes and a single write happens, or
// nothing is persisted.
func (s *TicketService) Create(ctx context.Context, actor domain.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, err
	}
	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("client", map[string]any{"client_id": input.ClientID})
		}
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		CategoryID:  input.CategoryID,
		ClientID:    input.ClientID,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if input.TechnicianID != nil {
		technician, err := s.technicians.GetByID(ctx, *input.TechnicianID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": *input.TechnicianID})
			}
			return nil, err
		}
		ticket.TechnicianID = &technician.ID
		err = s.admission.Admit(ctx, technician.ID, func(ctx context.Context) error {
			return s.tickets.Create(ctx, ticket)
		})
		if err != nil {
			return nil, err
		}
	} else if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			CategoryID:   ticket.CategoryID,
			ClientID:     ticket.ClientID,
			TechnicianID: ticket.TechnicianID,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

// Update patches ticket fields. A category change revalidates existence;
// a technician change to a different id revalidates and re-runs the
// admission check. Assigning the same technician again is a no-op on
// that field.
func (s *TicketService) Update(ctx context.Context, actor domain.Principal, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.CategoryID != nil && *input.CategoryID != ticket.CategoryID {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("category", map[string]any{"category_id": *input.CategoryID})
			}
			return nil, err
		}
		ticket.CategoryID = *input.CategoryID
	}

	reassigned := input.TechnicianID != nil &&
		(ticket.TechnicianID == nil || *input.TechnicianID != *ticket.TechnicianID)
	if !reassigned {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, storeMiss(err, "ticket", id)
		}
		s.publishUpdated(ctx, actor, ticket)
		return ticket, nil
	}

	technician, err := s.technicians.GetByID(ctx, *input.TechnicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": *input.TechnicianID})
		}
		return nil, err
	}
	oldTechnician := ticket.TechnicianID
	ticket.TechnicianID = &technician.ID
	err = s.admission.Admit(ctx, technician.ID, func(ctx context.Context) error {
		return s.tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, storeMiss(err, "ticket", id)
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			OldTechnicianID: oldTechnician,
			NewTechnicianID: ticket.TechnicianID,
		},
	})
	s.publishUpdated(ctx, actor, ticket)
	return ticket, nil
}

// UpdateStatus moves a ticket through the lifecycle: resolve, authorize,
// validate the transition, then persist. Transition errors propagate
// verbatim. A move into IN_PROGRESS on an assigned ticket re-runs the
// admission check so a reopen cannot push a technician past the cap.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Principal, id string, requested domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanUpdateStatus(ctx, actor, ticket); err != nil {
		return nil, err
	}
	if err := s.engine.Validate(ticket.Status, requested); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = requested
	if requested == domain.TicketStatusInProgress && ticket.TechnicianID != nil {
		err = s.admission.Admit(ctx, *ticket.TechnicianID, func(ctx context.Context) error {
			return s.tickets.Update(ctx, ticket)
		})
	} else {
		err = s.tickets.Update(ctx, ticket)
	}
	if err != nil {
		ticket.Status = oldStatus
		return nil, storeMiss(err, "ticket", id)
	}

	observability.TicketTransitions.WithLabelValues(string(oldStatus), string(requested)).Inc()
	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: requested,
		},
	})
	return ticket, nil
}

// Delete removes a ticket unconditionally. Removing a ticket can only
// lower a technician's live workload count, so no admission recheck runs.
func (s *TicketService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return storeMiss(err, "ticket", id)
	}
	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Payload:  events.TicketDeletedPayload{Status: ticket.Status},
	})
	return nil
}

// Get fetches a single ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.getTicket(ctx, id)
}

// List returns tickets, newest first.
func (s *TicketService) List(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, limit, offset)
}

// ListByClient returns the tickets reported by a client.
func (s *TicketService) ListByClient(ctx context.Context, clientID string) ([]domain.Ticket, error) {
	return s.tickets.ListByClient(ctx, clientID)
}

// ListByTechnician returns the tickets assigned to a technician.
func (s *TicketService) ListByTechnician(ctx context.Context, technicianID string) ([]domain.Ticket, error) {
	return s.tickets.ListByTechnician(ctx, technicianID)
}

func (s *TicketService) getTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeMiss(err, "ticket", id)
	}
	return ticket, nil
}

func storeMiss(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func (s *TicketService) publishUpdated(ctx context.Context, actor domain.Principal, ticket *domain.Ticket) {
	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
	})
}

func (s *TicketService) publish(ctx context.Context, actor domain.Principal, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{UserID: actor.UserID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
