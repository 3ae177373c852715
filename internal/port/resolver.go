package port

import (
	"context"

	"dochub/internal/domain"
)

// ContentResolver resolves batches of extracted lookup ids against the
// external content registry. Implementations must surface timeouts as
// domain.ErrAPITimeout and perform no internal retry.
type ContentResolver interface {
	Resolve(ctx context.Context, req domain.LookupRequest) ([]domain.LookupResult, error)
}
