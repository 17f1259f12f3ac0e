package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// Runtime carries the clock, display zone, logger and dispatcher shared by
// every service. Zero values fall back to time.Now, UTC, a no-op logger and
// no event publication.
type Runtime struct {
	Now        func() time.Time
	Zone       timeutil.Zone
	Logger     *zap.Logger
	Dispatcher events.Dispatcher
}

func (r Runtime) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

func (r Runtime) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r Runtime) publishEvent(ctx context.Context, event events.Event) {
	if r.Dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	if err := r.Dispatcher.Publish(ctx, event); err != nil {
		r.logger().Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// MediaSaver stores uploaded blobs and returns their URLs. Services call it
// after validating the request and before writing the referencing record.
type MediaSaver func(ctx context.Context) (domain.MediaRefs, error)

func resolveMedia(ctx context.Context, refs domain.MediaRefs, save MediaSaver) (domain.MediaRefs, error) {
	if save == nil {
		return refs, nil
	}
	return save(ctx)
}

// TicketBrief is the slice of a ticket joined into proofs and reminders.
type TicketBrief struct {
	ID          string
	Type        domain.TicketType
	Description string
	Status      domain.TicketStatus
}

func briefOf(t *domain.Ticket) *TicketBrief {
	if t == nil {
		return nil
	}
	return &TicketBrief{ID: t.ID, Type: t.Type, Description: t.Description, Status: t.Status}
}

// loadProfiles resolves ids to profiles. Unknown ids are absent from the map.
func loadProfiles(ctx context.Context, users repository.UserRepository, ids ...string) (map[string]domain.Profile, error) {
	ids = uniqueNonEmpty(ids)
	out := make(map[string]domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range found {
		out[found[i].ID] = found[i].Profile()
	}
	return out, nil
}

func profileRef(profiles map[string]domain.Profile, id string) *domain.Profile {
	p, ok := profiles[id]
	if !ok {
		return nil
	}
	return &p
}

func profileList(profiles map[string]domain.Profile, ids []string) []domain.Profile {
	out := make([]domain.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func loadTickets(ctx context.Context, tickets repository.TicketRepository, ids ...string) (map[string]*domain.Ticket, error) {
	ids = uniqueNonEmpty(ids)
	out := make(map[string]*domain.Ticket, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := tickets.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range found {
		out[found[i].ID] = &found[i]
	}
	return out, nil
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// missingFields returns the names whose values are blank, in argument order.
func missingFields(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}

func optionalString(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// isWellFormedID reports whether id has the shape of a store generated id.
func isWellFormedID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// dayRange expands optional dates to the start of the first day and the end
// of the last day in zone.
func dayRange(zone timeutil.Zone, from, to *time.Time) (*time.Time, *time.Time) {
	var start, end *time.Time
	if from != nil {
		v := zone.StartOfDay(*from).UTC()
		start = &v
	}
	if to != nil {
		v := zone.EndOfDay(*to).UTC()
		end = &v
	}
	return start, end
}
