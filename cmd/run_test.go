package cmd

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"modscan.dev/pkg/modscan/internal/domain"
	domainmocks "modscan.dev/pkg/modscan/internal/domain/mocks"
	m "modscan.dev/pkg/modscan/internal/model"
)

func newTestRunCmd(t *testing.T) (*cobra.Command, *domainmocks.MockWorkflow) {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newRunCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow

	t.Cleanup(func() { workflow = originalWorkflow })

	return cmd, mockWorkflow
}

func TestRunCmd_Defaults(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Analyze", mock.Anything, mock.MatchedBy(func(args domain.AnalyzeArgs) bool {
		return args.SourceRoot == m.Path(".") &&
			args.Output == m.Path("results") &&
			args.Extension == ".cs" &&
			args.Threads == 1 &&
			args.UseCache &&
			args.LooseReports &&
			args.Analyzer.Analyzer.Executable == "dotnet" &&
			len(args.Analyzer.Analyzer.Args) == 0 &&
			args.Analyzer.Encoding == "utf-8" &&
			args.Analyzer.Timeout == 0 &&
			!args.Analyzer.StrictStderr &&
			args.Report.Format == "pdf" &&
			args.Report.Publisher == nil
	})).Return(nil).Once()

	cmd.SetArgs([]string{"run"})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestRunCmd_AnalyzerFlags(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Analyze", mock.Anything, mock.MatchedBy(func(args domain.AnalyzeArgs) bool {
		return args.SourceRoot == m.Path("./src") &&
			args.Threads == 4 &&
			args.Analyzer.Analyzer.Executable == "/opt/analyzer" &&
			assert.ObjectsAreEqual([]string{"analyze", "--quiet"}, args.Analyzer.Analyzer.Args) &&
			args.Extension == ".java" &&
			args.Analyzer.Encoding == "gbk" &&
			args.Analyzer.Timeout == 30*time.Second &&
			args.Analyzer.StrictStderr &&
			!args.LooseReports
	})).Return(nil).Once()

	cmd.SetArgs([]string{
		"run", "./src",
		"--parallel", "4",
		"--analyzer", "/opt/analyzer",
		"--analyzer-arg", "analyze", "--analyzer-arg=--quiet",
		"--ext", ".java",
		"--encoding", "gbk",
		"--timeout", "30s",
		"--strict-stderr",
		"--loose-reports=false",
	})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestRunCmd_RootFlagsArePassedThrough(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Analyze", mock.Anything, mock.MatchedBy(func(args domain.AnalyzeArgs) bool {
		return args.Output == m.Path("./out") &&
			!args.UseCache &&
			args.Report.Format == "html" &&
			len(args.Exclude) == 2 &&
			args.Exclude[0] == "(^|/)obj/" &&
			args.Exclude[1] == `\.Designer\.cs$`
	})).Return(nil).Once()

	cmd.SetArgs([]string{"--no-cache", "-o", "./out", "--format", "html", "run", "-x", "(^|/)obj/", "-x", `\.Designer\.cs$`})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestRunCmd_WorkflowErrorIsReturned(t *testing.T) {
	cmd, mockWorkflow := newTestRunCmd(t)

	mockWorkflow.On("Analyze", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	cmd.SetArgs([]string{"run"})
	err := cmd.Execute()
	require.ErrorContains(t, err, "disk full")
}

func TestRunCmd_RejectsSeveralRoots(t *testing.T) {
	cmd, _ := newTestRunCmd(t)

	cmd.SetArgs([]string{"run", "./a", "./b"})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestNewRunCmd(t *testing.T) {
	cmd := newRunCmd()

	assert.Equal(t, "run [source-root]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, runLongDescription, cmd.Long)

	for _, name := range []string{runParallelFlagName, analyzerFlagName, analyzerArgFlagName, extensionFlagName, encodingFlagName, timeoutFlagName, strictStderrFlagName, looseReportsFlagName} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
