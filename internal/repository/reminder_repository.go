package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ReminderRepository persists reminder counters.
type ReminderRepository interface {
	// Get returns pgx.ErrNoRows when the triple has never been reminded.
	Get(ctx context.Context, ticketID, senderID, recipientID string) (*domain.Reminder, error)
	// Create fails with a unique violation when the triple already exists.
	Create(ctx context.Context, reminder *domain.Reminder) error
	// UpdateCount sets the counter to `to` only if it still equals `from`.
	// It returns false when another writer got there first.
	UpdateCount(ctx context.Context, reminder *domain.Reminder, from, to int) (bool, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Reminder, error)
}

type reminderRepository struct {
	pool *pgxpool.Pool
}

// NewReminderRepository instantiates repository.
func NewReminderRepository(pool *pgxpool.Pool) ReminderRepository {
	return &reminderRepository{pool: pool}
}

func (r *reminderRepository) Get(ctx context.Context, ticketID, senderID, recipientID string) (*domain.Reminder, error) {
	const query = `
        SELECT id, ticket_id, sender_id, recipient_id, count, created_at, updated_at
        FROM reminders WHERE ticket_id=$1 AND sender_id=$2 AND recipient_id=$3`
	var rem domain.Reminder
	if err := r.pool.QueryRow(ctx, query, ticketID, senderID, recipientID).Scan(
		&rem.ID,
		&rem.TicketID,
		&rem.SenderID,
		&rem.RecipientID,
		&rem.Count,
		&rem.CreatedAt,
		&rem.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	const query = `
        INSERT INTO reminders (ticket_id, sender_id, recipient_id, count)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		reminder.TicketID,
		reminder.SenderID,
		reminder.RecipientID,
		reminder.Count,
	).Scan(&reminder.ID, &reminder.CreatedAt, &reminder.UpdatedAt)
}

func (r *reminderRepository) UpdateCount(ctx context.Context, reminder *domain.Reminder, from, to int) (bool, error) {
	const query = `
        UPDATE reminders SET count=$1, updated_at=NOW()
        WHERE id=$2 AND count=$3
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, to, reminder.ID, from).Scan(&reminder.UpdatedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	reminder.Count = to
	return true, nil
}

func (r *reminderRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Reminder, error) {
	const query = `
        SELECT id, ticket_id, sender_id, recipient_id, count, created_at, updated_at
        FROM reminders WHERE ticket_id=$1 ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reminder
	for rows.Next() {
		var rem domain.Reminder
		if err := rows.Scan(
			&rem.ID,
			&rem.TicketID,
			&rem.SenderID,
			&rem.RecipientID,
			&rem.Count,
			&rem.CreatedAt,
			&rem.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rem)
	}
	return result, rows.Err()
}
