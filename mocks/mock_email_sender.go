package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dochub/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendBatchSummary(ctx context.Context, toEmail string, summary domain.BatchSummary) error {
	args := m.Called(ctx, toEmail, summary)
	return args.Error(0)
}
