package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"dochub/internal/domain"
	"dochub/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a sqlite-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Insert(ctx context.Context, run *domain.RunRecord) error {
	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("runRepo.Insert counts: %w", err)
	}
	changeLog, err := json.Marshal(run.ChangeLog)
	if err != nil {
		return fmt.Errorf("runRepo.Insert change log: %w", err)
	}
	run.CountsJSON = counts
	run.ChangeLogJSON = changeLog

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO runs (id, path, success, counts, error, warnings, duration_ms, backup_path, change_log, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Path, run.Success, run.CountsJSON, run.Error, run.Warnings,
		run.DurationMs, run.BackupPath, run.ChangeLogJSON, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("runRepo.Insert: %w", err)
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RunRecord, error) {
	var run domain.RunRecord
	err := r.db.GetContext(ctx, &run, `SELECT * FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	if err := hydrate(&run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runRepo) List(ctx context.Context, limit, offset int) ([]domain.RunRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM runs`); err != nil {
		return nil, 0, fmt.Errorf("runRepo.List count: %w", err)
	}

	var runs []domain.RunRecord
	err := r.db.SelectContext(ctx, &runs,
		`SELECT * FROM runs ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List: %w", err)
	}
	for i := range runs {
		if err := hydrate(&runs[i]); err != nil {
			return nil, 0, err
		}
	}
	return runs, total, nil
}

func (r *runRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("runRepo.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("runRepo.Delete: %w", err)
	}
	if n == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

// hydrate unpacks the JSON columns into their structured fields.
func hydrate(run *domain.RunRecord) error {
	if len(run.CountsJSON) > 0 {
		if err := json.Unmarshal(run.CountsJSON, &run.Counts); err != nil {
			return fmt.Errorf("runRepo: decoding counts for %s: %w", run.ID, err)
		}
	}
	if len(run.ChangeLogJSON) > 0 {
		if err := json.Unmarshal(run.ChangeLogJSON, &run.ChangeLog); err != nil {
			return fmt.Errorf("runRepo: decoding change log for %s: %w", run.ID, err)
		}
	}
	return nil
}
