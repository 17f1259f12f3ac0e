package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// TicketResponseRepository keeps responses in insertion order.
type TicketResponseRepository struct {
	mu        sync.RWMutex
	clock     Clock
	responses []domain.TicketResponse
}

var _ repository.TicketResponseRepository = (*TicketResponseRepository)(nil)

// NewTicketResponseRepository returns an empty store.
func NewTicketResponseRepository(clock Clock) *TicketResponseRepository {
	return &TicketResponseRepository{clock: clock}
}

func (r *TicketResponseRepository) Create(_ context.Context, resp *domain.TicketResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp.ID = newID()
	resp.CreatedAt = r.clock.now()
	r.responses = append(r.responses, *resp)
	return nil
}

func (r *TicketResponseRepository) List(_ context.Context, filter repository.ReplyFilter) ([]domain.TicketResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.TicketResponse
	for _, resp := range r.responses {
		if matchReply(filter, resp.TicketID, resp.AuthorID, resp.ResponderID) {
			out = append(out, resp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SatisfactionRepository stores satisfaction records in a map.
type SatisfactionRepository struct {
	mu    sync.RWMutex
	clock Clock
	items map[string]domain.Satisfaction
	order []string
}

var _ repository.SatisfactionRepository = (*SatisfactionRepository)(nil)

// NewSatisfactionRepository returns an empty store.
func NewSatisfactionRepository(clock Clock) *SatisfactionRepository {
	return &SatisfactionRepository{clock: clock, items: make(map[string]domain.Satisfaction)}
}

func (r *SatisfactionRepository) Create(_ context.Context, s *domain.Satisfaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.now()
	s.ID = newID()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.items[s.ID] = *s
	r.order = append(r.order, s.ID)
	return nil
}

func (r *SatisfactionRepository) List(_ context.Context, filter repository.ReplyFilter) ([]domain.Satisfaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Satisfaction
	for _, id := range r.order {
		s := r.items[id]
		if matchReply(filter, s.TicketID, s.AuthorID, s.ResponderID) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *SatisfactionRepository) Update(_ context.Context, id string, patch repository.SatisfactionPatch) (*domain.Satisfaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Type != nil {
		s.Type = *patch.Type
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.Priority != nil {
		s.Priority = *patch.Priority
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.Media != nil {
		s.Media = *patch.Media
	}
	s.UpdatedAt = r.clock.now()
	r.items[id] = s
	return &s, nil
}

func (r *SatisfactionRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.items))
	r.items = make(map[string]domain.Satisfaction)
	r.order = nil
	return n, nil
}

func matchReply(f repository.ReplyFilter, ticketID, authorID, responderID string) bool {
	if ticketID != f.TicketID {
		return false
	}
	if f.AuthorID != nil && authorID != *f.AuthorID {
		return false
	}
	if f.ResponderID != nil && responderID != *f.ResponderID {
		return false
	}
	return true
}
