package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"modscan.dev/pkg/modscan/internal/adapter"
)

// MockPublisher is a testify mock of adapter.Publisher.
type MockPublisher struct {
	mock.Mock
}

var _ adapter.Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates a MockPublisher and asserts its expectations on
// cleanup.
func NewMockPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPublisher {
	publisher := &MockPublisher{}
	publisher.Mock.Test(t)

	t.Cleanup(func() { publisher.AssertExpectations(t) })

	return publisher
}

// Publish implements adapter.Publisher.
func (_m *MockPublisher) Publish(ctx context.Context, name string, content []byte) error {
	return _m.Called(ctx, name, content).Error(0)
}
