package service

import (
	"fmt"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TransitionTable maps each status to the statuses it may move to.
type TransitionTable map[domain.TicketStatus][]domain.TicketStatus

// DefaultTransitions is the canonical lifecycle. A resolved ticket may be
// reopened back to IN_PROGRESS; a closed ticket is terminal.
var DefaultTransitions = TransitionTable{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusInProgress},
	domain.TicketStatusClosed:     {},
}

// StrictTransitions disallows reopening: a resolved ticket can only close.
var StrictTransitions = TransitionTable{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

// NoOpTransitionError reports a request for the status the ticket is
// already in.
type NoOpTransitionError struct {
	Status domain.TicketStatus
}

func (e *NoOpTransitionError) Error() string {
	return fmt.Sprintf("ticket is already in %s status", e.Status)
}

// TerminalStateError reports an attempt to move a closed ticket.
type TerminalStateError struct {
	Status domain.TicketStatus
}

func (e *TerminalStateError) Error() string {
	return "cannot change status of a closed ticket"
}

// IllegalTransitionError reports a transition outside the allow-list,
// carrying the legal next states for the caller.
type IllegalTransitionError struct {
	From    domain.TicketStatus
	To      domain.TicketStatus
	Allowed []domain.TicketStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// TransitionEngine validates status changes against a transition table.
// It is pure: no I/O, no knowledge of actors or workload.
type TransitionEngine struct {
	table TransitionTable
}

// NewTransitionEngine builds an engine over the given table. A nil table
// selects DefaultTransitions.
func NewTransitionEngine(table TransitionTable) *TransitionEngine {
	if table == nil {
		table = DefaultTransitions
	}
	return &TransitionEngine{table: table}
}

// Validate decides whether current may transition to requested.
func (e *TransitionEngine) Validate(current, requested domain.TicketStatus) error {
	if current == requested {
		return &NoOpTransitionError{Status: current}
	}
	if current == domain.TicketStatusClosed {
		return &TerminalStateError{Status: current}
	}
	for _, candidate := range e.table[current] {
		if candidate == requested {
			return nil
		}
	}
	return &IllegalTransitionError{From: current, To: requested, Allowed: e.Allowed(current)}
}

// Allowed returns the legal next statuses from the given status.
func (e *TransitionEngine) Allowed(from domain.TicketStatus) []domain.TicketStatus {
	allowed := e.table[from]
	out := make([]domain.TicketStatus, len(allowed))
	copy(out, allowed)
	return out
}
