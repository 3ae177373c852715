package port

import (
	"context"

	"dochub/internal/domain"
)

// EmailSender delivers batch completion notifications.
type EmailSender interface {
	SendBatchSummary(ctx context.Context, toEmail string, summary domain.BatchSummary) error
}
