package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// InboxRepository stores inbox messages in a map.
type InboxRepository struct {
	mu    sync.RWMutex
	clock Clock
	items map[string]domain.InboxItem
}

var _ repository.InboxRepository = (*InboxRepository)(nil)

// NewInboxRepository returns an empty store.
func NewInboxRepository(clock Clock) *InboxRepository {
	return &InboxRepository{clock: clock, items: make(map[string]domain.InboxItem)}
}

func (r *InboxRepository) Create(_ context.Context, item *domain.InboxItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.now()
	item.ID = newID()
	item.SentAt = now
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = *item
	return nil
}

func (r *InboxRepository) List(_ context.Context, receiverID string, status domain.InboxStatus) ([]domain.InboxItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.InboxItem
	for _, item := range r.items {
		if item.ReceiverID == receiverID && item.Status == status {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out, nil
}

func (r *InboxRepository) SetStatus(_ context.Context, id string, status domain.InboxStatus) (*domain.InboxItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	item.Status = status
	item.UpdatedAt = r.clock.now()
	r.items[id] = item
	return &item, nil
}
