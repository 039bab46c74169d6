package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func requireForbidden(t *testing.T, err error) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func Test_CanUpdateStatus_Admin_Always_Allowed(t *testing.T) {
	t.Parallel()

	authorizer := service.NewTicketAuthorizer(newFakeTechnicianRepo())
	ticket := &domain.Ticket{ID: "t1", Status: domain.TicketStatusOpen}

	err := authorizer.CanUpdateStatus(context.Background(),
		domain.Principal{UserID: "admin-user", Role: domain.RoleAdmin}, ticket)
	require.NoError(t, err)
}

func Test_CanUpdateStatus_Assigned_Technician_Allowed(t *testing.T) {
	t.Parallel()

	technicians := newFakeTechnicianRepo()
	technician := domain.Technician{Name: "Ava", Specialty: "Hardware", Availability: true, UserID: "user-1"}
	require.NoError(t, technicians.Create(context.Background(), &technician))

	authorizer := service.NewTicketAuthorizer(technicians)
	ticket := &domain.Ticket{ID: "t1", Status: domain.TicketStatusInProgress, TechnicianID: &technician.ID}

	err := authorizer.CanUpdateStatus(context.Background(),
		domain.Principal{UserID: "user-1", Role: domain.RoleTechnician}, ticket)
	require.NoError(t, err)
}

func Test_CanUpdateStatus_Other_Technician_Forbidden(t *testing.T) {
	t.Parallel()

	technicians := newFakeTechnicianRepo()
	assigned := domain.Technician{Name: "Ava", Specialty: "Hardware", Availability: true, UserID: "user-1"}
	require.NoError(t, technicians.Create(context.Background(), &assigned))
	other := domain.Technician{Name: "Noah", Specialty: "Network", Availability: true, UserID: "user-2"}
	require.NoError(t, technicians.Create(context.Background(), &other))

	authorizer := service.NewTicketAuthorizer(technicians)
	ticket := &domain.Ticket{ID: "t1", Status: domain.TicketStatusInProgress, TechnicianID: &assigned.ID}

	err := authorizer.CanUpdateStatus(context.Background(),
		domain.Principal{UserID: "user-2", Role: domain.RoleTechnician}, ticket)
	requireForbidden(t, err)
}

func Test_CanUpdateStatus_Unassigned_Ticket_Forbidden_For_Technician(t *testing.T) {
	t.Parallel()

	authorizer := service.NewTicketAuthorizer(newFakeTechnicianRepo())
	ticket := &domain.Ticket{ID: "t1", Status: domain.TicketStatusOpen}

	err := authorizer.CanUpdateStatus(context.Background(),
		domain.Principal{UserID: "user-1", Role: domain.RoleTechnician}, ticket)
	requireForbidden(t, err)
}

func Test_CanUpdateStatus_Missing_Technician_Profile_Forbidden(t *testing.T) {
	t.Parallel()

	authorizer := service.NewTicketAuthorizer(newFakeTechnicianRepo())
	ghost := "missing-technician"
	ticket := &domain.Ticket{ID: "t1", Status: domain.TicketStatusInProgress, TechnicianID: &ghost}

	err := authorizer.CanUpdateStatus(context.Background(),
		domain.Principal{UserID: "user-1", Role: domain.RoleTechnician}, ticket)
	requireForbidden(t, err)
}

func Test_CanUpdateStatus_Client_Forbidden(t *testing.T) {
	t.Parallel()

	authorizer := service.NewTicketAuthorizer(newFakeTechnicianRepo())
	ticket := &domain.Ticket{ID: "t1", Status: domain.TicketStatusOpen}

	err := authorizer.CanUpdateStatus(context.Background(),
		domain.Principal{UserID: "user-1", Role: domain.RoleClient}, ticket)
	requireForbidden(t, err)
}
