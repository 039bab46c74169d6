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

type ticketFixture struct {
	service     *service.TicketService
	tickets     *fakeTicketRepo
	categories  *fakeCategoryRepo
	clients     *fakeClientRepo
	technicians *fakeTechnicianRepo

	category   domain.Category
	client     domain.Client
	technician domain.Technician
}

var adminActor = domain.Principal{UserID: "admin-user", Role: domain.RoleAdmin}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()

	f := &ticketFixture{
		tickets:     newFakeTicketRepo(),
		categories:  newFakeCategoryRepo(),
		clients:     newFakeClientRepo(),
		technicians: newFakeTechnicianRepo(),
	}

	f.category = domain.Category{Name: "Hardware"}
	require.NoError(t, f.categories.Create(context.Background(), &f.category))

	f.client = domain.Client{Name: "Acme", ContactEmail: "acme@example.com", UserID: "client-user"}
	require.NoError(t, f.clients.Create(context.Background(), &f.client))

	f.technician = domain.Technician{Name: "Ava", Specialty: "Hardware", Availability: true, UserID: "tech-user"}
	require.NoError(t, f.technicians.Create(context.Background(), &f.technician))

	f.service = service.NewTicketService(service.TicketDependencies{
		TicketRepo:     f.tickets,
		CategoryRepo:   f.categories,
		ClientRepo:     f.clients,
		TechnicianRepo: f.technicians,
		Engine:         service.NewTransitionEngine(nil),
		Admission:      service.NewAdmissionController(f.tickets, nil),
		Authorizer:     service.NewTicketAuthorizer(f.technicians),
	})
	return f
}

func (f *ticketFixture) createTicket(t *testing.T, technicianID *string, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		Title:        "Laptop will not boot",
		Description:  "Black screen on power up",
		Status:       status,
		Priority:     domain.TicketPriorityMedium,
		CategoryID:   f.category.ID,
		ClientID:     f.client.ID,
		TechnicianID: technicianID,
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	return ticket
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func Test_Create_Defaults_To_Open_And_Medium(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	ticket, err := f.service.Create(context.Background(), adminActor, service.TicketCreateInput{
		Title:       "Printer offline",
		Description: "Cannot reach the office printer",
		CategoryID:  f.category.ID,
		ClientID:    f.client.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Nil(t, ticket.TechnicianID)
	assert.NotEmpty(t, ticket.ID)
}

func Test_Create_Unknown_Category_Fails(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	_, err := f.service.Create(context.Background(), adminActor, service.TicketCreateInput{
		Title:       "x",
		Description: "y",
		CategoryID:  "missing",
		ClientID:    f.client.ID,
	})
	requireNotFound(t, err)
}

func Test_Create_Unknown_Client_Fails(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	_, err := f.service.Create(context.Background(), adminActor, service.TicketCreateInput{
		Title:       "x",
		Description: "y",
		CategoryID:  f.category.ID,
		ClientID:    "missing",
	})
	requireNotFound(t, err)
}

func Test_Create_Unknown_Technician_Fails(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	missing := "missing"
	_, err := f.service.Create(context.Background(), adminActor, service.TicketCreateInput{
		Title:        "x",
		Description:  "y",
		CategoryID:   f.category.ID,
		ClientID:     f.client.ID,
		TechnicianID: &missing,
	})
	requireNotFound(t, err)
}

func Test_Create_With_Technician_Under_Cap_Succeeds(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	for i := 0; i < 4; i++ {
		f.createTicket(t, &f.technician.ID, domain.TicketStatusInProgress)
	}

	ticket, err := f.service.Create(context.Background(), adminActor, service.TicketCreateInput{
		Title:        "VPN connection drops",
		Description:  "Disconnects every few minutes",
		CategoryID:   f.category.ID,
		ClientID:     f.client.ID,
		TechnicianID: &f.technician.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.TechnicianID)
	assert.Equal(t, f.technician.ID, *ticket.TechnicianID)
}

func Test_Create_With_Technician_At_Cap_Fails_And_Persists_Nothing(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	for i := 0; i < 5; i++ {
		f.createTicket(t, &f.technician.ID, domain.TicketStatusInProgress)
	}

	_, err := f.service.Create(context.Background(), adminActor, service.TicketCreateInput{
		Title:        "VPN connection drops",
		Description:  "Disconnects every few minutes",
		CategoryID:   f.category.ID,
		ClientID:     f.client.ID,
		TechnicianID: &f.technician.ID,
	})

	var capacityErr *service.CapacityExceededError
	require.ErrorAs(t, err, &capacityErr)

	all, listErr := f.tickets.List(context.Background(), 0, 0)
	require.NoError(t, listErr)
	assert.Len(t, all, 5)
}

func Test_Update_Reassignment_At_Cap_Fails(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	busy := domain.Technician{Name: "Noah", Specialty: "Network", Availability: true, UserID: "tech-user-2"}
	require.NoError(t, f.technicians.Create(context.Background(), &busy))
	for i := 0; i < 5; i++ {
		f.createTicket(t, &busy.ID, domain.TicketStatusInProgress)
	}
	ticket := f.createTicket(t, nil, domain.TicketStatusOpen)

	_, err := f.service.Update(context.Background(), adminActor, ticket.ID, service.TicketUpdateInput{
		TechnicianID: &busy.ID,
	})

	var capacityErr *service.CapacityExceededError
	require.ErrorAs(t, err, &capacityErr)

	stored, getErr := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, getErr)
	assert.Nil(t, stored.TechnicianID)
}

func Test_Update_Same_Technician_Skips_Admission(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	for i := 0; i < 5; i++ {
		f.createTicket(t, &f.technician.ID, domain.TicketStatusInProgress)
	}
	ticket := f.createTicket(t, &f.technician.ID, domain.TicketStatusResolved)

	newTitle := "Updated title"
	updated, err := f.service.Update(context.Background(), adminActor, ticket.ID, service.TicketUpdateInput{
		Title:        &newTitle,
		TechnicianID: &f.technician.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
}

func Test_UpdateStatus_Admin_Moves_Open_To_InProgress(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	ticket := f.createTicket(t, &f.technician.ID, domain.TicketStatusOpen)

	updated, err := f.service.UpdateStatus(context.Background(), adminActor, ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
}

func Test_UpdateStatus_Assigned_Technician_Resolves(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	ticket := f.createTicket(t, &f.technician.ID, domain.TicketStatusInProgress)

	actor := domain.Principal{UserID: f.technician.UserID, Role: domain.RoleTechnician}
	updated, err := f.service.UpdateStatus(context.Background(), actor, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
}

func Test_UpdateStatus_Other_Technician_Forbidden_And_Unchanged(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	other := domain.Technician{Name: "Noah", Specialty: "Network", Availability: true, UserID: "tech-user-2"}
	require.NoError(t, f.technicians.Create(context.Background(), &other))
	ticket := f.createTicket(t, &f.technician.ID, domain.TicketStatusInProgress)

	actor := domain.Principal{UserID: other.UserID, Role: domain.RoleTechnician}
	_, err := f.service.UpdateStatus(context.Background(), actor, ticket.ID, domain.TicketStatusResolved)
	requireForbidden(t, err)

	stored, getErr := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
}

func Test_UpdateStatus_Illegal_Transition_Rejected(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	ticket := f.createTicket(t, &f.technician.ID, domain.TicketStatusOpen)

	_, err := f.service.UpdateStatus(context.Background(), adminActor, ticket.ID, domain.TicketStatusResolved)

	var illegal *service.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)

	stored, getErr := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func Test_UpdateStatus_Closed_Is_Terminal(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	ticket := f.createTicket(t, &f.technician.ID, domain.TicketStatusClosed)

	_, err := f.service.UpdateStatus(context.Background(), adminActor, ticket.ID, domain.TicketStatusInProgress)

	var terminal *service.TerminalStateError
	require.ErrorAs(t, err, &terminal)
}

func Test_UpdateStatus_NoOp_Rejected(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	ticket := f.createTicket(t, &f.technician.ID, domain.TicketStatusInProgress)

	_, err := f.service.UpdateStatus(context.Background(), adminActor, ticket.ID, domain.TicketStatusInProgress)

	var noOp *service.NoOpTransitionError
	require.ErrorAs(t, err, &noOp)
}

func Test_UpdateStatus_Reopen_Reruns_Admission(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	for i := 0; i < 5; i++ {
		f.createTicket(t, &f.technician.ID, domain.TicketStatusInProgress)
	}
	resolved := f.createTicket(t, &f.technician.ID, domain.TicketStatusResolved)

	_, err := f.service.UpdateStatus(context.Background(), adminActor, resolved.ID, domain.TicketStatusInProgress)

	var capacityErr *service.CapacityExceededError
	require.ErrorAs(t, err, &capacityErr)

	stored, getErr := f.tickets.GetByID(context.Background(), resolved.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)
}

func Test_UpdateStatus_Reopen_Under_Cap_Succeeds(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	for i := 0; i < 4; i++ {
		f.createTicket(t, &f.technician.ID, domain.TicketStatusInProgress)
	}
	resolved := f.createTicket(t, &f.technician.ID, domain.TicketStatusResolved)

	updated, err := f.service.UpdateStatus(context.Background(), adminActor, resolved.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
}

func Test_UpdateStatus_Missing_Ticket_NotFound(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	_, err := f.service.UpdateStatus(context.Background(), adminActor, "missing", domain.TicketStatusClosed)
	requireNotFound(t, err)
}

func Test_Delete_Removes_Ticket(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	ticket := f.createTicket(t, nil, domain.TicketStatusOpen)

	require.NoError(t, f.service.Delete(context.Background(), adminActor, ticket.ID))

	_, err := f.service.Get(context.Background(), ticket.ID)
	requireNotFound(t, err)
}

func Test_Delete_Missing_Ticket_NotFound(t *testing.T) {
	t.Parallel()

	f := newTicketFixture(t)
	requireNotFound(t, f.service.Delete(context.Background(), adminActor, "missing"))
}
