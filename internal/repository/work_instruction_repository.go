package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// WorkInstructionFilter narrows listings. Nil fields are ignored.
type WorkInstructionFilter struct {
	ID          *string
	CreatorID   *string
	RecipientID *string
}

// WorkInstructionRepository persists standing orders.
type WorkInstructionRepository interface {
	Create(ctx context.Context, wi *domain.WorkInstruction) error
	GetByIDs(ctx context.Context, ids []string) ([]domain.WorkInstruction, error)
	// List orders by saved time, newest first.
	List(ctx context.Context, filter WorkInstructionFilter) ([]domain.WorkInstruction, error)
}

type workInstructionRepository struct {
	pool *pgxpool.Pool
}

// NewWorkInstructionRepository instantiates repository.
func NewWorkInstructionRepository(pool *pgxpool.Pool) WorkInstructionRepository {
	return &workInstructionRepository{pool: pool}
}

const workInstructionColumns = `id, creator_id, recipient_ids, type, remarks, audio_url, video_url, image_url,
               review_time, order_type, media_select, saved_at, created_at, updated_at`

func (r *workInstructionRepository) Create(ctx context.Context, wi *domain.WorkInstruction) error {
	const query = `
        INSERT INTO work_instructions (creator_id, recipient_ids, type, remarks, audio_url, video_url, image_url,
                                       review_time, order_type, media_select)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, saved_at, created_at, updated_at`
	mediaSelect := wi.MediaSelect
	if mediaSelect == nil {
		mediaSelect = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		wi.CreatorID,
		wi.RecipientIDs,
		wi.Type,
		wi.Remarks,
		wi.Media.VoiceNoteURL,
		wi.Media.VideoURL,
		wi.Media.ImageURL,
		wi.ReviewTime,
		wi.OrderType,
		mediaSelect,
	).Scan(&wi.ID, &wi.SavedAt, &wi.CreatedAt, &wi.UpdatedAt)
}

func (r *workInstructionRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.WorkInstruction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+workInstructionColumns+` FROM work_instructions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkInstructions(rows)
}

func (r *workInstructionRepository) List(ctx context.Context, filter WorkInstructionFilter) ([]domain.WorkInstruction, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.ID != nil {
		args = append(args, *filter.ID)
		clauses = append(clauses, fmt.Sprintf("id=$%d", len(args)))
	}
	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		clauses = append(clauses, fmt.Sprintf("creator_id=$%d", len(args)))
	}
	if filter.RecipientID != nil {
		args = append(args, *filter.RecipientID)
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(recipient_ids)", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM work_instructions WHERE %s ORDER BY saved_at DESC`,
		workInstructionColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkInstructions(rows)
}

func scanWorkInstructions(rows pgx.Rows) ([]domain.WorkInstruction, error) {
	var result []domain.WorkInstruction
	for rows.Next() {
		var wi domain.WorkInstruction
		if err := rows.Scan(
			&wi.ID,
			&wi.CreatorID,
			&wi.RecipientIDs,
			&wi.Type,
			&wi.Remarks,
			&wi.Media.VoiceNoteURL,
			&wi.Media.VideoURL,
			&wi.Media.ImageURL,
			&wi.ReviewTime,
			&wi.OrderType,
			&wi.MediaSelect,
			&wi.SavedAt,
			&wi.CreatedAt,
			&wi.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, wi)
	}
	return result, rows.Err()
}
