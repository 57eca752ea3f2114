package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"modscan.dev/pkg/modscan/internal/adapter"
	m "modscan.dev/pkg/modscan/internal/model"
)

// MockOutcomeCache is a testify mock of adapter.OutcomeCache.
type MockOutcomeCache struct {
	mock.Mock
}

var _ adapter.OutcomeCache = (*MockOutcomeCache)(nil)

// NewMockOutcomeCache creates a MockOutcomeCache and asserts its expectations
// on cleanup.
func NewMockOutcomeCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOutcomeCache {
	cache := &MockOutcomeCache{}
	cache.Mock.Test(t)

	t.Cleanup(func() { cache.AssertExpectations(t) })

	return cache
}

// Get implements adapter.OutcomeCache.
func (_m *MockOutcomeCache) Get(ctx context.Context, key string) (m.Outcome, bool, error) {
	ret := _m.Called(ctx, key)

	return ret.Get(0).(m.Outcome), ret.Bool(1), ret.Error(2)
}

// Put implements adapter.OutcomeCache.
func (_m *MockOutcomeCache) Put(ctx context.Context, key string, outcome m.Outcome) error {
	return _m.Called(ctx, key, outcome).Error(0)
}
