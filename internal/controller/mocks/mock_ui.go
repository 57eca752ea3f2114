// Package mocks provides testify mocks for the controller package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"modscan.dev/pkg/modscan/internal/controller"
	m "modscan.dev/pkg/modscan/internal/model"
)

// MockUI is a testify mock of controller.UI.
type MockUI struct {
	mock.Mock
}

var _ controller.UI = (*MockUI)(nil)

// NewMockUI creates a MockUI and asserts its expectations on cleanup.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mockUI := &MockUI{}
	mockUI.Mock.Test(t)

	t.Cleanup(func() { mockUI.AssertExpectations(t) })

	return mockUI
}

// Start implements controller.UI.
func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	args := []interface{}{ctx}
	for _, option := range options {
		args = append(args, option)
	}

	ret := _m.Called(args...)

	return ret.Error(0)
}

// Close implements controller.UI.
func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

// Wait implements controller.UI.
func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

// DisplayDiscovery implements controller.UI.
func (_m *MockUI) DisplayDiscovery(ctx context.Context, modules []m.Module, loose []m.Target) {
	_m.Called(ctx, modules, loose)
}

// DisplayConcurrencyInfo implements controller.UI.
func (_m *MockUI) DisplayConcurrencyInfo(ctx context.Context, threads int, targets int) {
	_m.Called(ctx, threads, targets)
}

// DisplayStartingAnalysis implements controller.UI.
func (_m *MockUI) DisplayStartingAnalysis(ctx context.Context, target m.Target, workerID int) {
	_m.Called(ctx, target, workerID)
}

// DisplayCompletedAnalysis implements controller.UI.
func (_m *MockUI) DisplayCompletedAnalysis(ctx context.Context, target m.Target, outcome m.Outcome) {
	_m.Called(ctx, target, outcome)
}

// DisplayReportWritten implements controller.UI.
func (_m *MockUI) DisplayReportWritten(ctx context.Context, path m.Path, pages int) {
	_m.Called(ctx, path, pages)
}

// DisplaySummary implements controller.UI.
func (_m *MockUI) DisplaySummary(ctx context.Context, summary m.RunSummary) {
	_m.Called(ctx, summary)
}
