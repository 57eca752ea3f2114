package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	m "modscan.dev/pkg/modscan/internal/model"
)

const pageSeparator = "\f"

// TextRenderer writes plain text. Pages are separated by a form feed.
type TextRenderer struct{}

// NewTextRenderer returns a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Extension implements Renderer.
func (r *TextRenderer) Extension() string {
	return "txt"
}

// Render implements Renderer.
func (r *TextRenderer) Render(w io.Writer, doc m.Document) error {
	bw := bufio.NewWriter(w)

	for i, page := range doc.Pages {
		if i > 0 {
			_, _ = bw.WriteString(pageSeparator)
		}

		if page.Number == 1 {
			_, _ = bw.WriteString(doc.Title + "\n")
			_, _ = bw.WriteString(rule(doc) + "\n")
		}

		for _, line := range page.Lines {
			_, _ = bw.WriteString(line.Text + "\n")
		}
	}

	return bw.Flush()
}

// rule spans the widest of the title and the content lines, measured in
// terminal cells.
func rule(doc m.Document) string {
	width := runewidth.StringWidth(doc.Title)

	for _, page := range doc.Pages {
		for _, line := range page.Lines {
			if lw := runewidth.StringWidth(line.Text); lw > width {
				width = lw
			}
		}
	}

	if width == 0 {
		width = 1
	}

	return strings.Repeat("-", width)
}
