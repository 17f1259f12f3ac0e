package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AssignmentInvolvement matches assignments a user manages, or, when
// AssigneeID is set, assignments naming AssigneeID as an assignee.
type AssignmentInvolvement struct {
	ManagerID  string
	AssigneeID *string
}

// AssignmentFilter narrows assignment listings. Nil fields are ignored.
type AssignmentFilter struct {
	ManagerID   *string
	AssigneeID  *string
	Involving   *AssignmentInvolvement
	Statuses    []domain.AssignmentStatus
	TicketIDs   []string
	Standalone  bool
	CreatedFrom *time.Time
}

// AssignmentRepository encapsulates delegation persistence.
type AssignmentRepository interface {
	// CreateDelegation inserts the assignment and, when it references a
	// ticket, sets that ticket's status in the same transaction.
	CreateDelegation(ctx context.Context, assignment *domain.Assignment, ticketStatus domain.TicketStatus) error
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus) (*domain.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error)
	Count(ctx context.Context, filter AssignmentFilter) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

const assignmentColumns = `id, ticket_id, manager_id, assignee_ids, details, voice_note_url, video_url, image_url,
               priority, target_date, status, created_at, updated_at`

func (r *assignmentRepository) CreateDelegation(ctx context.Context, assignment *domain.Assignment, ticketStatus domain.TicketStatus) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const insert = `
        INSERT INTO assignments (ticket_id, manager_id, assignee_ids, details, voice_note_url, video_url, image_url,
                                 priority, target_date, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	if err = tx.QueryRow(ctx, insert,
		assignment.TicketID,
		assignment.ManagerID,
		assignment.AssigneeIDs,
		assignment.Details,
		assignment.Media.VoiceNoteURL,
		assignment.Media.VideoURL,
		assignment.Media.ImageURL,
		assignment.Priority,
		assignment.TargetDate,
		assignment.Status,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt); err != nil {
		return err
	}

	if assignment.TicketID != nil {
		// An unknown ticket id updates nothing.
		if _, err = tx.Exec(ctx, `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`,
			ticketStatus, *assignment.TicketID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id=$1`
	return scanAssignment(r.pool.QueryRow(ctx, query, id))
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus) (*domain.Assignment, error) {
	query := `UPDATE assignments SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + assignmentColumns
	return scanAssignment(r.pool.QueryRow(ctx, query, status, id))
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error) {
	where, args := assignmentWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE %s ORDER BY created_at DESC`, assignmentColumns, where)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *assignmentRepository) Count(ctx context.Context, filter AssignmentFilter) (int, error) {
	where, args := assignmentWhere(filter)
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assignments WHERE `+where, args...).Scan(&count)
	return count, err
}

func (r *assignmentRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM assignments`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func assignmentWhere(filter AssignmentFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ManagerID != nil {
		args = append(args, *filter.ManagerID)
		clauses = append(clauses, fmt.Sprintf("manager_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(assignee_ids)", len(args)))
	}
	if inv := filter.Involving; inv != nil {
		args = append(args, inv.ManagerID)
		clause := fmt.Sprintf("manager_id=$%d", len(args))
		if inv.AssigneeID != nil {
			args = append(args, *inv.AssigneeID)
			clause = fmt.Sprintf("(%s OR $%d = ANY(assignee_ids))", clause, len(args))
		}
		clauses = append(clauses, clause)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(filter.TicketIDs) > 0 {
		args = append(args, filter.TicketIDs)
		clauses = append(clauses, fmt.Sprintf("ticket_id = ANY($%d)", len(args)))
	}
	if filter.Standalone {
		clauses = append(clauses, "ticket_id IS NULL")
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var a domain.Assignment
	if err := row.Scan(
		&a.ID,
		&a.TicketID,
		&a.ManagerID,
		&a.AssigneeIDs,
		&a.Details,
		&a.Media.VoiceNoteURL,
		&a.Media.VideoURL,
		&a.Media.ImageURL,
		&a.Priority,
		&a.TargetDate,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
