package undolog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andrejsk/kartoteka/internal/common"
	"github.com/andrejsk/kartoteka/internal/dbx"
)

// SQLiteRepository implements Repository over a dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, step *Step) error {
	query := `
		INSERT INTO undo_steps (op_id, op_tag, seq, kind, deck_id, snapshot, created_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		step.OpID, step.OpTag, step.Seq, string(step.Kind), step.DeckID, step.Snapshot, step.CreatedSecs)
	if err != nil {
		return fmt.Errorf("failed to append undo step: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LastOp(ctx context.Context) (string, string, error) {
	query := `SELECT op_id, op_tag FROM undo_steps ORDER BY id DESC LIMIT 1`
	var opID, opTag string
	err := r.db.QueryRowContext(ctx, query).Scan(&opID, &opTag)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", common.ErrorNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to read undo log: %w", err)
	}
	return opID, opTag, nil
}

func (r *SQLiteRepository) StepsForOp(ctx context.Context, opID string) ([]*Step, error) {
	query := `
		SELECT op_id, op_tag, seq, kind, deck_id, snapshot, created_secs
		FROM undo_steps WHERE op_id = ? ORDER BY seq DESC
	`
	rows, err := r.db.QueryContext(ctx, query, opID)
	if err != nil {
		return nil, fmt.Errorf("failed to select undo steps: %w", err)
	}
	defer rows.Close()

	var result []*Step
	for rows.Next() {
		var s Step
		var kind string
		if err := rows.Scan(&s.OpID, &s.OpTag, &s.Seq, &kind, &s.DeckID, &s.Snapshot, &s.CreatedSecs); err != nil {
			return nil, err
		}
		s.Kind = StepKind(kind)
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteOp(ctx context.Context, opID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM undo_steps WHERE op_id = ?`, opID); err != nil {
		return fmt.Errorf("failed to delete undo op %s: %w", opID, err)
	}
	return nil
}
