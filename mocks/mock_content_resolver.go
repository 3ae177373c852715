package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dochub/internal/domain"
)

// MockContentResolver is a mock implementation of port.ContentResolver.
type MockContentResolver struct {
	mock.Mock
}

func (m *MockContentResolver) Resolve(ctx context.Context, req domain.LookupRequest) ([]domain.LookupResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LookupResult), args.Error(1)
}
