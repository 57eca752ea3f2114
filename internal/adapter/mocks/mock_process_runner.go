// Package mocks provides testify mocks for the adapter package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"modscan.dev/pkg/modscan/internal/adapter"
)

// MockProcessRunner is a testify mock of adapter.ProcessRunner.
type MockProcessRunner struct {
	mock.Mock
}

var _ adapter.ProcessRunner = (*MockProcessRunner)(nil)

// NewMockProcessRunner creates a MockProcessRunner and asserts its
// expectations on cleanup.
func NewMockProcessRunner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProcessRunner {
	runner := &MockProcessRunner{}
	runner.Mock.Test(t)

	t.Cleanup(func() { runner.AssertExpectations(t) })

	return runner
}

// Run implements adapter.ProcessRunner. Expectations match on the context,
// the executable and the argument slice.
func (_m *MockProcessRunner) Run(ctx context.Context, name string, args ...string) (adapter.ProcessResult, error) {
	ret := _m.Called(ctx, name, args)

	if fn, ok := ret.Get(0).(func(context.Context, string, ...string) (adapter.ProcessResult, error)); ok {
		return fn(ctx, name, args...)
	}

	return ret.Get(0).(adapter.ProcessResult), ret.Error(1)
}
