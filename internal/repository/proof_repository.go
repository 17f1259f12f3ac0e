package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ProofFilter narrows proof listings. Nil fields are ignored.
type ProofFilter struct {
	SubmitterID       *string
	TicketID          *string
	WorkInstructionID *string
}

// ProofRepository persists completion evidence.
type ProofRepository interface {
	Create(ctx context.Context, proof *domain.Proof) error
	List(ctx context.Context, filter ProofFilter) ([]domain.Proof, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type proofRepository struct {
	pool *pgxpool.Pool
}

// NewProofRepository instantiates repository.
func NewProofRepository(pool *pgxpool.Pool) ProofRepository {
	return &proofRepository{pool: pool}
}

func (r *proofRepository) Create(ctx context.Context, proof *domain.Proof) error {
	const query = `
        INSERT INTO proofs (ticket_id, submitter_id, recipient_id, work_instruction_id, recipient_name, remarks,
                            voice_note_url, video_url, image_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		proof.TicketID,
		proof.SubmitterID,
		proof.RecipientID,
		proof.WorkInstructionID,
		proof.RecipientName,
		proof.Remarks,
		proof.Media.VoiceNoteURL,
		proof.Media.VideoURL,
		proof.Media.ImageURL,
	).Scan(&proof.ID, &proof.CreatedAt, &proof.UpdatedAt)
}

func (r *proofRepository) List(ctx context.Context, filter ProofFilter) ([]domain.Proof, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.SubmitterID != nil {
		args = append(args, *filter.SubmitterID)
		clauses = append(clauses, fmt.Sprintf("submitter_id=$%d", len(args)))
	}
	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if filter.WorkInstructionID != nil {
		args = append(args, *filter.WorkInstructionID)
		clauses = append(clauses, fmt.Sprintf("work_instruction_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`
        SELECT id, ticket_id, submitter_id, recipient_id, work_instruction_id, recipient_name, remarks,
               voice_note_url, video_url, image_url, created_at, updated_at
        FROM proofs WHERE %s ORDER BY created_at DESC`, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Proof
	for rows.Next() {
		var p domain.Proof
		if err := rows.Scan(
			&p.ID,
			&p.TicketID,
			&p.SubmitterID,
			&p.RecipientID,
			&p.WorkInstructionID,
			&p.RecipientName,
			&p.Remarks,
			&p.Media.VoiceNoteURL,
			&p.Media.VideoURL,
			&p.Media.ImageURL,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *proofRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM proofs`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
