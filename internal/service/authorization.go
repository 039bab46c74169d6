package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketAuthorizer arbitrates whether a principal may mutate a ticket.
// Coarse role gating happens at the routing boundary; ownership-level
// decisions live here and only here.
type TicketAuthorizer struct {
	technicians repository.TechnicianRepository
}

// NewTicketAuthorizer builds the policy.
func NewTicketAuthorizer(technicians repository.TechnicianRepository) *TicketAuthorizer {
	return &TicketAuthorizer{technicians: technicians}
}

// CanUpdateStatus decides whether the principal may change the ticket's
// status. Admins always may. A technician may only when the ticket's
// assigned technician profile is owned by the principal's account; an
// unassigned ticket is never technician-updatable.
func (p *TicketAuthorizer) CanUpdateStatus(ctx context.Context, principal domain.Principal, ticket *domain.Ticket) error {
	switch principal.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleTechnician:
		if ticket.TechnicianID == nil {
			return apperrors.NewForbidden("ticket has no assigned technician")
		}
		technician, err := p.technicians.GetByID(ctx, *ticket.TechnicianID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewForbidden("not the assigned technician")
			}
			return err
		}
		if technician.UserID != principal.UserID {
			return apperrors.NewForbidden("not the assigned technician")
		}
		return nil
	default:
		return apperrors.NewForbidden("role not permitted to update ticket status")
	}
}
