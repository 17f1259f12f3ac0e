package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ReplyFilter narrows response and satisfaction listings to one ticket.
// Nil fields are ignored.
type ReplyFilter struct {
	TicketID    string
	AuthorID    *string
	ResponderID *string
}

// SatisfactionPatch lists the fields an update may change. Nil fields keep
// their stored value; Media replaces the stored refs only when set.
type SatisfactionPatch struct {
	Type        *string
	Description *string
	Priority    *domain.TicketPriority
	Status      *string
	Media       *domain.MediaRefs
}

// TicketResponseRepository persists responder replies.
type TicketResponseRepository interface {
	Create(ctx context.Context, response *domain.TicketResponse) error
	List(ctx context.Context, filter ReplyFilter) ([]domain.TicketResponse, error)
}

// SatisfactionRepository persists satisfaction records.
type SatisfactionRepository interface {
	Create(ctx context.Context, s *domain.Satisfaction) error
	List(ctx context.Context, filter ReplyFilter) ([]domain.Satisfaction, error)
	// Update returns pgx.ErrNoRows for an unknown id.
	Update(ctx context.Context, id string, patch SatisfactionPatch) (*domain.Satisfaction, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type ticketResponseRepository struct {
	pool *pgxpool.Pool
}

// NewTicketResponseRepository instantiates repository.
func NewTicketResponseRepository(pool *pgxpool.Pool) TicketResponseRepository {
	return &ticketResponseRepository{pool: pool}
}

func (r *ticketResponseRepository) Create(ctx context.Context, resp *domain.TicketResponse) error {
	const query = `
        INSERT INTO ticket_responses (ticket_id, author_id, responder_id, type, description, priority, deadline,
                                      voice_note_url, video_url, image_url, status, rights)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		resp.TicketID,
		resp.AuthorID,
		resp.ResponderID,
		resp.Type,
		resp.Description,
		resp.Priority,
		resp.Deadline,
		resp.Media.VoiceNoteURL,
		resp.Media.VideoURL,
		resp.Media.ImageURL,
		resp.Status,
		resp.Rights,
	).Scan(&resp.ID, &resp.CreatedAt)
}

func (r *ticketResponseRepository) List(ctx context.Context, filter ReplyFilter) ([]domain.TicketResponse, error) {
	where, args := replyWhere(filter)
	query := `
        SELECT id, ticket_id, author_id, responder_id, type, description, priority, deadline,
               voice_note_url, video_url, image_url, status, rights, created_at
        FROM ticket_responses WHERE ` + where + ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketResponse
	for rows.Next() {
		var resp domain.TicketResponse
		if err := rows.Scan(
			&resp.ID,
			&resp.TicketID,
			&resp.AuthorID,
			&resp.ResponderID,
			&resp.Type,
			&resp.Description,
			&resp.Priority,
			&resp.Deadline,
			&resp.Media.VoiceNoteURL,
			&resp.Media.VideoURL,
			&resp.Media.ImageURL,
			&resp.Status,
			&resp.Rights,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, rows.Err()
}

type satisfactionRepository struct {
	pool *pgxpool.Pool
}

// NewSatisfactionRepository instantiates repository.
func NewSatisfactionRepository(pool *pgxpool.Pool) SatisfactionRepository {
	return &satisfactionRepository{pool: pool}
}

const satisfactionColumns = `id, ticket_id, author_id, responder_id, type, description, priority,
               voice_note_url, video_url, image_url, status, created_at, updated_at`

func (r *satisfactionRepository) Create(ctx context.Context, s *domain.Satisfaction) error {
	const query = `
        INSERT INTO satisfactions (ticket_id, author_id, responder_id, type, description, priority,
                                   voice_note_url, video_url, image_url, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		s.TicketID,
		s.AuthorID,
		s.ResponderID,
		s.Type,
		s.Description,
		s.Priority,
		s.Media.VoiceNoteURL,
		s.Media.VideoURL,
		s.Media.ImageURL,
		s.Status,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *satisfactionRepository) List(ctx context.Context, filter ReplyFilter) ([]domain.Satisfaction, error) {
	where, args := replyWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT `+satisfactionColumns+` FROM satisfactions WHERE `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Satisfaction
	for rows.Next() {
		s, err := scanSatisfaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *satisfactionRepository) Update(ctx context.Context, id string, patch SatisfactionPatch) (*domain.Satisfaction, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if patch.Type != nil {
		set("type", *patch.Type)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Media != nil {
		set("voice_note_url", patch.Media.VoiceNoteURL)
		set("video_url", patch.Media.VideoURL)
		set("image_url", patch.Media.ImageURL)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE satisfactions SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), satisfactionColumns)
	return scanSatisfaction(r.pool.QueryRow(ctx, query, args...))
}

func (r *satisfactionRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM satisfactions`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func replyWhere(filter ReplyFilter) (string, []any) {
	args := []any{filter.TicketID}
	clauses := []string{"ticket_id=$1"}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("author_id=$%d", len(args)))
	}
	if filter.ResponderID != nil {
		args = append(args, *filter.ResponderID)
		clauses = append(clauses, fmt.Sprintf("responder_id=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanSatisfaction(row pgx.Row) (*domain.Satisfaction, error) {
	var s domain.Satisfaction
	if err := row.Scan(
		&s.ID,
		&s.TicketID,
		&s.AuthorID,
		&s.ResponderID,
		&s.Type,
		&s.Description,
		&s.Priority,
		&s.Media.VoiceNoteURL,
		&s.Media.VideoURL,
		&s.Media.ImageURL,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
