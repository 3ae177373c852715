package mocks

import (
	"github.com/stretchr/testify/mock"

	"dochub/internal/port"
)

// MockBackupManager is a mock implementation of port.BackupManager.
type MockBackupManager struct {
	mock.Mock
}

func (m *MockBackupManager) Acquire(path string) (port.Snapshot, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Snapshot), args.Error(1)
}

// MockSnapshot is a mock implementation of port.Snapshot.
type MockSnapshot struct {
	mock.Mock
}

func (m *MockSnapshot) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSnapshot) Restore() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSnapshot) Discard() error {
	args := m.Called()
	return args.Error(0)
}
