package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// AssignmentRepository stores assignments in a map and mirrors the ticket
// status side effect onto the given ticket store.
type AssignmentRepository struct {
	mu          sync.RWMutex
	clock       Clock
	tickets     *TicketRepository
	assignments map[string]domain.Assignment
}

var _ repository.AssignmentRepository = (*AssignmentRepository)(nil)

// NewAssignmentRepository returns an empty store bound to tickets.
func NewAssignmentRepository(clock Clock, tickets *TicketRepository) *AssignmentRepository {
	return &AssignmentRepository{clock: clock, tickets: tickets, assignments: make(map[string]domain.Assignment)}
}

func (r *AssignmentRepository) CreateDelegation(ctx context.Context, assignment *domain.Assignment, ticketStatus domain.TicketStatus) error {
	r.mu.Lock()
	now := r.clock.now()
	assignment.ID = newID()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	r.assignments[assignment.ID] = cloneAssignment(*assignment)
	r.mu.Unlock()

	if assignment.TicketID != nil && r.tickets != nil {
		// An unknown ticket id updates nothing.
		_, _ = r.tickets.SetStatus(ctx, *assignment.TicketID, ticketStatus)
	}
	return nil
}

func (r *AssignmentRepository) GetByID(_ context.Context, id string) (*domain.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneAssignment(a)
	return &out, nil
}

func (r *AssignmentRepository) UpdateStatus(_ context.Context, id string, status domain.AssignmentStatus) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	a.Status = status
	a.UpdatedAt = r.clock.now()
	r.assignments[id] = a
	out := cloneAssignment(a)
	return &out, nil
}

func (r *AssignmentRepository) List(_ context.Context, filter repository.AssignmentFilter) ([]domain.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Assignment
	for _, a := range r.assignments {
		if matchAssignment(&a, filter) {
			out = append(out, cloneAssignment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *AssignmentRepository) Count(ctx context.Context, filter repository.AssignmentFilter) (int, error) {
	list, err := r.List(ctx, filter)
	return len(list), err
}

func (r *AssignmentRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.assignments))
	r.assignments = make(map[string]domain.Assignment)
	return n, nil
}

func matchAssignment(a *domain.Assignment, f repository.AssignmentFilter) bool {
	if f.ManagerID != nil && a.ManagerID != *f.ManagerID {
		return false
	}
	if f.AssigneeID != nil && !a.HasAssignee(*f.AssigneeID) {
		return false
	}
	if inv := f.Involving; inv != nil {
		match := a.ManagerID == inv.ManagerID
		if !match && inv.AssigneeID != nil {
			match = a.HasAssignee(*inv.AssigneeID)
		}
		if !match {
			return false
		}
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.TicketIDs) > 0 && (a.TicketID == nil || !containsString(f.TicketIDs, *a.TicketID)) {
		return false
	}
	if f.Standalone && a.TicketID != nil {
		return false
	}
	if f.CreatedFrom != nil && a.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	return true
}

func cloneAssignment(a domain.Assignment) domain.Assignment {
	a.AssigneeIDs = cloneStrings(a.AssigneeIDs)
	return a
}
