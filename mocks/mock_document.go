package mocks

import (
	"github.com/stretchr/testify/mock"

	"dochub/internal/port"
)

// MockDocument is a mock implementation of port.Document.
type MockDocument struct {
	mock.Mock
}

func (m *MockDocument) Capabilities() port.CapabilitySet {
	args := m.Called()
	if args.Get(0) == nil {
		return port.CapabilitySet{}
	}
	return args.Get(0).(port.CapabilitySet)
}

func (m *MockDocument) Paragraphs() []port.Paragraph {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]port.Paragraph)
}

func (m *MockDocument) Tables() []port.Table {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]port.Table)
}

func (m *MockDocument) Hyperlinks() []port.Hyperlink {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]port.Hyperlink)
}

func (m *MockDocument) SetHyperlinkTarget(relID, url string) error {
	args := m.Called(relID, url)
	return args.Error(0)
}

func (m *MockDocument) AcceptAllRevisions() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockDocument) SetTrackAuthor(author string) {
	m.Called(author)
}

func (m *MockDocument) MarkFieldsStale() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDocument) Save(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockDocument) Close() error {
	args := m.Called()
	return args.Error(0)
}
