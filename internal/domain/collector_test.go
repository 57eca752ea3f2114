package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"modscan.dev/pkg/modscan/internal/adapter"
	adaptermocks "modscan.dev/pkg/modscan/internal/adapter/mocks"
	m "modscan.dev/pkg/modscan/internal/model"
)

func TestSidecarPath(t *testing.T) {
	output := m.Path("out")

	assert.Equal(t,
		m.Path(filepath.Join("out", "ModA", "x.cs.result")),
		SidecarPath(output, m.Target{Path: "/src/ModA/sub/x.cs", Module: "ModA"}))
	assert.Equal(t,
		m.Path(filepath.Join("out", "Program.cs.result")),
		SidecarPath(output, m.Target{Path: "/src/Program.cs", Module: m.LooseModule}))
}

func TestSidecarContent(t *testing.T) {
	assert.Equal(t, "line1\nline2\n", string(SidecarContent(m.NewSuccess("line1\nline2\n"))))
	assert.Empty(t, SidecarContent(m.NewSuccess("")))
	assert.Equal(t, "Error: boom\n", string(SidecarContent(m.NewFailure(m.CauseAnalyzer, "  boom\n\n", 1))))
}

func TestFormatFragment(t *testing.T) {
	target := m.Target{Path: "/src/ModA/x.cs", Module: "ModA"}

	t.Run("success indents every output line", func(t *testing.T) {
		fragment := FormatFragment(target, m.NewSuccess("line1\n\nline2   \n\n\n"))

		assert.Equal(t, []string{"Results for x.cs:", "    line1", "", "    line2"}, fragment.Lines)
		assert.Equal(t, "x.cs", fragment.FileName)
		assert.Equal(t, "ModA", fragment.Module)
		assert.False(t, fragment.Failed)
	})

	t.Run("empty success output is only the header", func(t *testing.T) {
		fragment := FormatFragment(target, m.NewSuccess(""))

		assert.Equal(t, []string{"Results for x.cs:"}, fragment.Lines)
	})

	t.Run("failure puts the first diagnostic line in the header", func(t *testing.T) {
		fragment := FormatFragment(target, m.NewFailure(m.CauseAnalyzer, "parse error\nat line 3\n", 2))

		assert.Equal(t, []string{"Error in x.cs: parse error", "    at line 3"}, fragment.Lines)
		assert.True(t, fragment.Failed)
	})

	t.Run("failure with empty diagnostic", func(t *testing.T) {
		fragment := FormatFragment(target, m.NewFailure(m.CauseAnalyzer, "", 2))

		assert.Equal(t, []string{"Error in x.cs:"}, fragment.Lines)
	})

	t.Run("windows line endings are normalized", func(t *testing.T) {
		fragment := FormatFragment(target, m.NewSuccess("a\r\nb\r\n"))

		assert.Equal(t, []string{"Results for x.cs:", "    a", "    b"}, fragment.Lines)
	})
}

func TestCollector_Collect(t *testing.T) {
	output := t.TempDir()
	collector := NewCollector(adapter.NewResultStore(), m.Path(output))

	fragment, err := collector.Collect(context.Background(),
		m.Target{Path: "/src/ModA/x.cs", Module: "ModA"},
		m.NewSuccess("line1\nline2\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(output, "ModA", "x.cs.result"))
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", string(content))
	assert.Equal(t, []string{"Results for x.cs:", "    line1", "    line2"}, fragment.Lines)

	_, err = collector.Collect(context.Background(),
		m.Target{Path: "/src/Program.cs", Module: m.LooseModule},
		m.NewFailure(m.CauseAnalyzer, "bad input", 1))
	require.NoError(t, err)

	content, err = os.ReadFile(filepath.Join(output, "Program.cs.result"))
	require.NoError(t, err)
	assert.Equal(t, "Error: bad input\n", string(content))
}

func TestCollector_CollectIsIdempotent(t *testing.T) {
	output := t.TempDir()
	target := m.Target{Path: "/src/ModA/x.cs", Module: "ModA"}
	outcome := m.NewSuccess("same\n")

	first, err := NewCollector(adapter.NewResultStore(), m.Path(output)).Collect(context.Background(), target, outcome)
	require.NoError(t, err)

	second, err := NewCollector(adapter.NewResultStore(), m.Path(output)).Collect(context.Background(), target, outcome)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	content, err := os.ReadFile(filepath.Join(output, "ModA", "x.cs.result"))
	require.NoError(t, err)
	assert.Equal(t, "same\n", string(content))
}

func TestCollector_SameNameLastWriteWins(t *testing.T) {
	output := t.TempDir()
	collector := NewCollector(adapter.NewResultStore(), m.Path(output))

	_, err := collector.Collect(context.Background(), m.Target{Path: "/src/ModA/a/x.cs", Module: "ModA"}, m.NewSuccess("first"))
	require.NoError(t, err)

	_, err = collector.Collect(context.Background(), m.Target{Path: "/src/ModA/b/x.cs", Module: "ModA"}, m.NewSuccess("second"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(output, "ModA", "x.cs.result"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestCollector_WriteErrorIsReturned(t *testing.T) {
	store := adaptermocks.NewMockResultStore(t)
	store.On("SaveResult", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	_, err := NewCollector(store, "out").Collect(context.Background(),
		m.Target{Path: "/src/ModA/x.cs", Module: "ModA"}, m.NewSuccess("x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
