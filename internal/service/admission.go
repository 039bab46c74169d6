package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// maxInProgressPerTechnician caps how many tickets a technician may have
// in IN_PROGRESS status at once.
const maxInProgressPerTechnician = 5

// CapacityExceededError reports a technician at or over the workload cap.
type CapacityExceededError struct {
	TechnicianID string
	Count        int
	Limit        int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("technician has reached the maximum of %d in-progress tickets (currently has %d)", e.Limit, e.Count)
}

// AdmissionController enforces the per-technician workload cap. The count
// is recomputed from the store on every check; nothing is cached, so the
// decision always reflects the latest committed state.
type AdmissionController struct {
	tickets repository.TicketRepository
	locker  *redisLocker
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewAdmissionController builds the controller. The redis client is
// optional: when present, admission sections are additionally guarded by
// a distributed per-technician lock so concurrent instances cannot
// jointly exceed the cap.
func NewAdmissionController(tickets repository.TicketRepository, client *redis.Client) *AdmissionController {
	ac := &AdmissionController{
		tickets: tickets,
		locks:   make(map[string]*sync.Mutex),
	}
	if client != nil {
		ac.locker = &redisLocker{client: client, ttl: 5 * time.Second}
	}
	return ac
}

// CheckCapacity fails with CapacityExceededError when the technician
// already has the maximum number of in-progress tickets.
func (a *AdmissionController) CheckCapacity(ctx context.Context, technicianID string) error {
	count, err := a.tickets.CountByTechnicianAndStatus(ctx, technicianID, domain.TicketStatusInProgress)
	if err != nil {
		return err
	}
	if count >= maxInProgressPerTechnician {
		observability.AdmissionRejections.Inc()
		return &CapacityExceededError{
			TechnicianID: technicianID,
			Count:        count,
			Limit:        maxInProgressPerTechnician,
		}
	}
	return nil
}

// Admit runs the capacity check and fn while holding the technician's
// admission lock, making check-then-write effectively atomic with respect
// to concurrent admissions for the same technician.
func (a *AdmissionController) Admit(ctx context.Context, technicianID string, fn func(context.Context) error) error {
	lock := a.lockFor(technicianID)
	lock.Lock()
	defer lock.Unlock()

	if a.locker != nil {
		release, err := a.locker.acquire(ctx, technicianID)
		if err != nil {
			return err
		}
		defer release()
	}

	if err := a.CheckCapacity(ctx, technicianID); err != nil {
		return err
	}
	return fn(ctx)
}

func (a *AdmissionController) lockFor(technicianID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[technicianID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[technicianID] = lock
	}
	return lock
}

// redisLocker implements a SET NX PX lock keyed by technician id. The
// lock value is compared on release so an expired lock held by another
// instance is never deleted.
type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

func (l *redisLocker) acquire(ctx context.Context, technicianID string) (func(), error) {
	key := "admission:technician:" + technicianID
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}

	release := func() {
		_ = l.client.Eval(context.WithoutCancel(ctx), releaseScript, []string{key}, token).Err()
	}
	return release, nil
}
