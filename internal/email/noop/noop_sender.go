package noop

import (
	"context"
	"log"

	"dochub/internal/domain"
	"dochub/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs summaries to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendBatchSummary(_ context.Context, toEmail string, summary domain.BatchSummary) error {
	log.Printf("[NOOP EMAIL] Batch summary for %s: job %s, %d/%d succeeded, %d failed",
		toEmail, summary.JobID, summary.SuccessfulFiles, summary.TotalFiles, summary.FailedFiles)
	return nil
}
