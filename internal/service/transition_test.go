package service_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

func Test_TransitionEngine_Full_Matrix(t *testing.T) {
	t.Parallel()

	engine := service.NewTransitionEngine(nil)

	allowed := map[domain.TicketStatus]map[domain.TicketStatus]bool{
		domain.TicketStatusOpen: {
			domain.TicketStatusInProgress: true,
			domain.TicketStatusClosed:     true,
		},
		domain.TicketStatusInProgress: {
			domain.TicketStatusResolved: true,
			domain.TicketStatusClosed:   true,
		},
		domain.TicketStatusResolved: {
			domain.TicketStatusClosed:     true,
			domain.TicketStatusInProgress: true,
		},
		domain.TicketStatusClosed: {},
	}

	for _, from := range domain.TicketStatuses {
		for _, to := range domain.TicketStatuses {
			from, to := from, to
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				t.Parallel()

				err := engine.Validate(from, to)

				switch {
				case from == to:
					var noOp *service.NoOpTransitionError
					require.ErrorAs(t, err, &noOp)
					assert.Equal(t, from, noOp.Status)
				case from == domain.TicketStatusClosed:
					var terminal *service.TerminalStateError
					require.ErrorAs(t, err, &terminal)
				case allowed[from][to]:
					require.NoError(t, err)
				default:
					var illegal *service.IllegalTransitionError
					require.ErrorAs(t, err, &illegal)
					assert.Equal(t, from, illegal.From)
					assert.Equal(t, to, illegal.To)
					assert.NotEmpty(t, illegal.Allowed)
				}
			})
		}
	}
}

func Test_TransitionEngine_NoOp_Beats_Terminal_For_Closed(t *testing.T) {
	t.Parallel()

	engine := service.NewTransitionEngine(nil)
	err := engine.Validate(domain.TicketStatusClosed, domain.TicketStatusClosed)

	var noOp *service.NoOpTransitionError
	require.ErrorAs(t, err, &noOp)

	var terminal *service.TerminalStateError
	assert.False(t, errors.As(err, &terminal))
}

func Test_TransitionEngine_Strict_Table_Disallows_Reopen(t *testing.T) {
	t.Parallel()

	engine := service.NewTransitionEngine(service.StrictTransitions)

	err := engine.Validate(domain.TicketStatusResolved, domain.TicketStatusInProgress)
	var illegal *service.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)

	require.NoError(t, engine.Validate(domain.TicketStatusResolved, domain.TicketStatusClosed))
}

func Test_TransitionEngine_Allowed_Returns_Copy(t *testing.T) {
	t.Parallel()

	engine := service.NewTransitionEngine(nil)

	first := engine.Allowed(domain.TicketStatusOpen)
	first[0] = domain.TicketStatusResolved

	second := engine.Allowed(domain.TicketStatusOpen)
	want := []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusClosed}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Fatalf("allowed statuses mismatch (-want +got):\n%s", diff)
	}
}

func Test_TransitionEngine_Unknown_Status_Has_No_Transitions(t *testing.T) {
	t.Parallel()

	engine := service.NewTransitionEngine(nil)

	err := engine.Validate(domain.TicketStatus("ARCHIVED"), domain.TicketStatusOpen)
	var illegal *service.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Empty(t, illegal.Allowed)
}
