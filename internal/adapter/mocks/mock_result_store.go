package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"modscan.dev/pkg/modscan/internal/adapter"
	m "modscan.dev/pkg/modscan/internal/model"
)

// MockResultStore is a testify mock of adapter.ResultStore.
type MockResultStore struct {
	mock.Mock
}

var _ adapter.ResultStore = (*MockResultStore)(nil)

// NewMockResultStore creates a MockResultStore and asserts its expectations
// on cleanup.
func NewMockResultStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockResultStore {
	store := &MockResultStore{}
	store.Mock.Test(t)

	t.Cleanup(func() { store.AssertExpectations(t) })

	return store
}

// SaveResult implements adapter.ResultStore.
func (_m *MockResultStore) SaveResult(ctx context.Context, path m.Path, content []byte) error {
	return _m.Called(ctx, path, content).Error(0)
}

// SaveReport implements adapter.ResultStore.
func (_m *MockResultStore) SaveReport(ctx context.Context, path m.Path, content []byte) error {
	return _m.Called(ctx, path, content).Error(0)
}

// SaveSummary implements adapter.ResultStore.
func (_m *MockResultStore) SaveSummary(ctx context.Context, path m.Path, summary m.RunSummary) error {
	return _m.Called(ctx, path, summary).Error(0)
}

// LoadSummary implements adapter.ResultStore.
func (_m *MockResultStore) LoadSummary(ctx context.Context, path m.Path) (m.RunSummary, error) {
	ret := _m.Called(ctx, path)

	return ret.Get(0).(m.RunSummary), ret.Error(1)
}
