package mocks

import (
	"github.com/stretchr/testify/mock"

	"dochub/internal/domain"
	"dochub/internal/port"
)

// MockDocumentLoader is a mock implementation of port.DocumentLoader.
type MockDocumentLoader struct {
	mock.Mock
}

func (m *MockDocumentLoader) Load(path string) (port.Document, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Document), args.Error(1)
}

func (m *MockDocumentLoader) Inspect(path string) (*domain.Inspection, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inspection), args.Error(1)
}
