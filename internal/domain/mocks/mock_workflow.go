// Package mocks provides testify mocks for the domain package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"modscan.dev/pkg/modscan/internal/domain"
)

// MockWorkflow is a testify mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

var _ domain.Workflow = (*MockWorkflow)(nil)

// NewMockWorkflow creates a MockWorkflow and asserts its expectations on cleanup.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mockWorkflow := &MockWorkflow{}
	mockWorkflow.Mock.Test(t)

	t.Cleanup(func() { mockWorkflow.AssertExpectations(t) })

	return mockWorkflow
}

// Analyze implements domain.Workflow.
func (_m *MockWorkflow) Analyze(ctx context.Context, args domain.AnalyzeArgs) error {
	ret := _m.Called(ctx, args)

	return ret.Error(0)
}

// List implements domain.Workflow.
func (_m *MockWorkflow) List(ctx context.Context, args domain.ListArgs) error {
	ret := _m.Called(ctx, args)

	return ret.Error(0)
}

// Report implements domain.Workflow.
func (_m *MockWorkflow) Report(ctx context.Context, args domain.ReportArgs) error {
	ret := _m.Called(ctx, args)

	return ret.Error(0)
}
