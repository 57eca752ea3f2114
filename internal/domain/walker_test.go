package domain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modscan.dev/pkg/modscan/internal/adapter"
	m "modscan.dev/pkg/modscan/internal/model"
)

func newTestWalker(t *testing.T, cfg WalkerConfig) Walker {
	t.Helper()

	w, err := NewWalker(adapter.NewLocalSourceFSAdapter(), cfg)
	require.NoError(t, err)

	return w
}

func targetNames(targets []m.Target) []string {
	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.FileName())
	}

	return names
}

func TestWalker_DiscoverModules(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "ModB", "b.cs"), "")
	writeSource(t, filepath.Join(root, "ModA", "a.cs"), "")
	writeSource(t, filepath.Join(root, "ModA", "nested", "deep", "c.CS"), "")
	writeSource(t, filepath.Join(root, "ModA", "readme.md"), "")
	writeSource(t, filepath.Join(root, "Program.cs"), "")

	w := newTestWalker(t, WalkerConfig{Extension: "cs"})

	modules, err := w.DiscoverModules(context.Background(), m.Path(root))
	require.NoError(t, err)
	require.Len(t, modules, 2)

	assert.Equal(t, "ModA", modules[0].Name)
	assert.Equal(t, []string{"a.cs", "c.CS"}, targetNames(modules[0].Targets))
	assert.Equal(t, "ModB", modules[1].Name)
	assert.Equal(t, []string{"b.cs"}, targetNames(modules[1].Targets))

	for _, target := range modules[0].Targets {
		assert.Equal(t, "ModA", target.Module)
		assert.True(t, filepath.IsAbs(string(target.Path)))
	}
}

func TestWalker_EmptyModuleIsKept(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "Empty", "notes.txt"), "")

	modules, err := newTestWalker(t, WalkerConfig{Extension: ".cs"}).DiscoverModules(context.Background(), m.Path(root))
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Empty(t, modules[0].Targets)
}

func TestWalker_DiscoverLooseFiles(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "Zeta.cs"), "")
	writeSource(t, filepath.Join(root, "Program.cs"), "")
	writeSource(t, filepath.Join(root, "notes.txt"), "")
	writeSource(t, filepath.Join(root, "ModA", "a.cs"), "")

	loose, err := newTestWalker(t, WalkerConfig{Extension: ".cs"}).DiscoverLooseFiles(context.Background(), m.Path(root))
	require.NoError(t, err)

	assert.Equal(t, []string{"Program.cs", "Zeta.cs"}, targetNames(loose))

	for _, target := range loose {
		assert.True(t, target.IsLoose())
	}
}

func TestWalker_ExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "ModA", "a.cs"), "")
	writeSource(t, filepath.Join(root, "ModA", "obj", "gen.cs"), "")
	writeSource(t, filepath.Join(root, "ModA", "a.Designer.cs"), "")
	writeSource(t, filepath.Join(root, "Program.cs"), "")

	w := newTestWalker(t, WalkerConfig{
		Extension: ".cs",
		Exclude:   []string{`(^|/)obj/`, `\.Designer\.cs$`, "^Program"},
	})

	modules, err := w.DiscoverModules(context.Background(), m.Path(root))
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, []string{"a.cs"}, targetNames(modules[0].Targets))

	loose, err := w.DiscoverLooseFiles(context.Background(), m.Path(root))
	require.NoError(t, err)
	assert.Empty(t, loose)
}

func TestWalker_InvalidExcludePattern(t *testing.T) {
	_, err := NewWalker(adapter.NewLocalSourceFSAdapter(), WalkerConfig{Exclude: []string{"("}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}

func TestWalker_SkipsOutputDirectory(t *testing.T) {
	root := t.TempDir()
	output := filepath.Join(root, "reports")
	writeSource(t, filepath.Join(root, "ModA", "a.cs"), "")
	writeSource(t, filepath.Join(output, "ModA", "a.cs"), "")

	modules, err := newTestWalker(t, WalkerConfig{Extension: ".cs", Output: m.Path(output)}).
		DiscoverModules(context.Background(), m.Path(root))
	require.NoError(t, err)

	require.Len(t, modules, 1)
	assert.Equal(t, "ModA", modules[0].Name)
}

func TestWalker_RootErrors(t *testing.T) {
	w := newTestWalker(t, WalkerConfig{Extension: ".cs"})

	_, err := w.DiscoverModules(context.Background(), m.Path(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, err)

	file := writeSource(t, filepath.Join(t.TempDir(), "file.cs"), "")
	_, err = w.DiscoverLooseFiles(context.Background(), file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestIsWithin(t *testing.T) {
	base := filepath.Join("/", "out")

	assert.True(t, isWithin(m.Path(base), m.Path(base)))
	assert.True(t, isWithin(m.Path(filepath.Join(base, "a", "b")), m.Path(base)))
	assert.False(t, isWithin(m.Path(filepath.Join("/", "outside")), m.Path(base)))
	assert.False(t, isWithin(m.Path(filepath.Join("/", "src")), ""))
}
