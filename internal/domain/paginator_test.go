package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "modscan.dev/pkg/modscan/internal/model"
)

func tallLayout() m.Layout {
	layout := m.DefaultLayout(m.DefaultPageWidth)
	layout.PageHeight = 685

	return layout
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}

	return lines
}

func TestPaginate_FiveHundredLines(t *testing.T) {
	layout := tallLayout()
	require.Equal(t, 40, layout.Capacity())

	doc := Paginate("Static Analysis Report", numberedLines(500), layout)

	require.Len(t, doc.Pages, 13)
	assert.Equal(t, 13, PageCount(500, layout))

	for i, page := range doc.Pages[:12] {
		assert.Len(t, page.Lines, 40, "page %d", i+1)
		assert.Equal(t, i+1, page.Number)
	}

	last := doc.Pages[12]
	assert.Len(t, last.Lines, 20)
	assert.Equal(t, "line 500", last.Lines[19].Text)
}

func TestPaginate_CursorPositions(t *testing.T) {
	layout := tallLayout()
	doc := Paginate("T", numberedLines(42), layout)

	require.Len(t, doc.Pages, 2)
	assert.InDelta(t, 50.0, doc.Pages[0].Lines[0].Y, 1e-9)
	assert.InDelta(t, 65.0, doc.Pages[0].Lines[1].Y, 1e-9)
	assert.InDelta(t, 50.0+39*15.0, doc.Pages[0].Lines[39].Y, 1e-9)
	assert.InDelta(t, 50.0, doc.Pages[1].Lines[0].Y, 1e-9)

	for _, page := range doc.Pages {
		for _, line := range page.Lines {
			assert.LessOrEqual(t, line.Y, layout.PageHeight-layout.BottomMargin)
		}
	}
}

func TestPaginate_IsLossless(t *testing.T) {
	layout := m.DefaultLayout(m.DefaultPageWidth)

	for _, n := range []int{1, layout.Capacity() - 1, layout.Capacity(), layout.Capacity() + 1, 3*layout.Capacity() + 7} {
		lines := numberedLines(n)
		lines[0] = ""

		doc := Paginate("T", lines, layout)

		assert.Equal(t, lines, doc.Lines(), "n=%d", n)
		assert.Len(t, doc.Pages, PageCount(n, layout), "n=%d", n)
	}
}

func TestPaginate_EmptyInputHasOnePage(t *testing.T) {
	doc := Paginate("Static Analysis Report: Empty", nil, m.DefaultLayout(0))

	require.Len(t, doc.Pages, 1)
	assert.Empty(t, doc.Pages[0].Lines)
	assert.Equal(t, "Static Analysis Report: Empty", doc.Title)
	assert.Equal(t, 1, PageCount(0, doc.Layout))
}

func TestLayout_CapacityNeverBelowOne(t *testing.T) {
	layout := m.DefaultLayout(100)
	layout.PageHeight = 10

	assert.Equal(t, 1, layout.Capacity())

	doc := Paginate("T", numberedLines(3), layout)
	assert.Len(t, doc.Pages, 3)
}
