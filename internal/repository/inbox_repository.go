package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// InboxRepository persists in-app messages.
type InboxRepository interface {
	Create(ctx context.Context, item *domain.InboxItem) error
	// List returns the receiver's messages in the given status, newest first.
	List(ctx context.Context, receiverID string, status domain.InboxStatus) ([]domain.InboxItem, error)
	// SetStatus returns pgx.ErrNoRows for an unknown id.
	SetStatus(ctx context.Context, id string, status domain.InboxStatus) (*domain.InboxItem, error)
}

type inboxRepository struct {
	pool *pgxpool.Pool
}

// NewInboxRepository instantiates repository.
func NewInboxRepository(pool *pgxpool.Pool) InboxRepository {
	return &inboxRepository{pool: pool}
}

const inboxColumns = `id, receiver_id, sender_id, kind, status, description, sent_at, created_at, updated_at`

func (r *inboxRepository) Create(ctx context.Context, item *domain.InboxItem) error {
	const query = `
        INSERT INTO inbox_items (receiver_id, sender_id, kind, status, description)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, sent_at, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		item.ReceiverID,
		item.SenderID,
		item.Kind,
		item.Status,
		item.Description,
	).Scan(&item.ID, &item.SentAt, &item.CreatedAt, &item.UpdatedAt)
}

func (r *inboxRepository) List(ctx context.Context, receiverID string, status domain.InboxStatus) ([]domain.InboxItem, error) {
	query := `SELECT ` + inboxColumns + ` FROM inbox_items WHERE receiver_id=$1 AND status=$2 ORDER BY sent_at DESC`
	rows, err := r.pool.Query(ctx, query, receiverID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InboxItem
	for rows.Next() {
		item, err := scanInboxItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, rows.Err()
}

func (r *inboxRepository) SetStatus(ctx context.Context, id string, status domain.InboxStatus) (*domain.InboxItem, error) {
	query := `UPDATE inbox_items SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + inboxColumns
	return scanInboxItem(r.pool.QueryRow(ctx, query, status, id))
}

func scanInboxItem(row pgx.Row) (*domain.InboxItem, error) {
	var item domain.InboxItem
	if err := row.Scan(
		&item.ID,
		&item.ReceiverID,
		&item.SenderID,
		&item.Kind,
		&item.Status,
		&item.Description,
		&item.SentAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
