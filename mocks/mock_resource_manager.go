package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockResourceManager is a mock implementation of port.ResourceManager.
type MockResourceManager struct {
	mock.Mock
}

func (m *MockResourceManager) Reclaim() {
	m.Called()
}
