package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// TicketRepository stores tickets in a map.
type TicketRepository struct {
	mu      sync.RWMutex
	clock   Clock
	tickets map[string]domain.Ticket
}

var _ repository.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository returns an empty store.
func NewTicketRepository(clock Clock) *TicketRepository {
	return &TicketRepository{clock: clock, tickets: make(map[string]domain.Ticket)}
}

func (r *TicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.now()
	ticket.ID = newID()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *TicketRepository) Forward(_ context.Context, id string, recipients []string, rights domain.Rights) (*domain.Ticket, error) {
	return r.mutate(id, func(t *domain.Ticket) {
		t.RecipientIDs = cloneStrings(recipients)
		t.Rights = &rights
	})
}

func (r *TicketRepository) SetStatus(_ context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	return r.mutate(id, func(t *domain.Ticket) { t.Status = status })
}

func (r *TicketRepository) mutate(id string, apply func(*domain.Ticket)) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	apply(&t)
	t.UpdatedAt = r.clock.now()
	r.tickets[id] = cloneTicket(t)
	out := cloneTicket(t)
	return &out, nil
}

func (r *TicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneTicket(t)
	return &out, nil
}

func (r *TicketRepository) GetByIDs(_ context.Context, ids []string) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Ticket
	for _, id := range ids {
		if t, ok := r.tickets[id]; ok {
			out = append(out, cloneTicket(t))
		}
	}
	return out, nil
}

func (r *TicketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if matchTicket(&t, filter) {
			out = append(out, cloneTicket(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TicketRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.tickets))
	r.tickets = make(map[string]domain.Ticket)
	return n, nil
}

func matchTicket(t *domain.Ticket, f repository.TicketFilter) bool {
	if f.CreatorID != nil && t.CreatorID != *f.CreatorID {
		return false
	}
	if f.RecipientID != nil && !t.HasRecipient(*f.RecipientID) {
		return false
	}
	if f.ParticipantID != nil && t.CreatorID != *f.ParticipantID && !t.HasRecipient(*f.ParticipantID) {
		return false
	}
	if len(f.Statuses) > 0 && !hasStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.ExcludeStatuses) > 0 && hasStatus(f.ExcludeStatuses, t.Status) {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.DeadlineBefore != nil && (t.Deadline == nil || !t.Deadline.Before(*f.DeadlineBefore)) {
		return false
	}
	return true
}

func hasStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.RecipientIDs = cloneStrings(t.RecipientIDs)
	return t
}
