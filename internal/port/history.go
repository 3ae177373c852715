package port

import (
	"context"

	"github.com/google/uuid"

	"dochub/internal/domain"
)

// RunRepository persists per-document run history.
type RunRepository interface {
	Insert(ctx context.Context, run *domain.RunRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RunRecord, error)
	List(ctx context.Context, limit, offset int) ([]domain.RunRecord, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
