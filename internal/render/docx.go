package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fumiama/go-docx"

	m "modscan.dev/pkg/modscan/internal/model"
)

const (
	docxFont = "Courier New"

	emuPerPoint   = 12700
	docxRuleShape = "straightConnector1"
)

// DOCXRenderer writes a Word document with one paragraph per line and a page
// break between pages.
type DOCXRenderer struct{}

// NewDOCXRenderer returns a DOCXRenderer.
func NewDOCXRenderer() *DOCXRenderer {
	return &DOCXRenderer{}
}

// Extension implements Renderer.
func (r *DOCXRenderer) Extension() string {
	return "docx"
}

// Render implements Renderer.
func (r *DOCXRenderer) Render(w io.Writer, doc m.Document) error {
	document := docx.New().WithDefaultTheme()
	size := halfPoints(doc.Layout.FontSize)

	for i, page := range doc.Pages {
		if i > 0 {
			document.AddParagraph().AddPageBreaks()
		}

		if page.Number == 1 {
			document.AddParagraph().AddText(doc.Title).Bold().Size(halfPoints(doc.Layout.FontSize + 2))
			addRule(document, doc.Layout)
		}

		for _, line := range page.Lines {
			document.AddParagraph().AddText(line.Text).Font(docxFont, docxFont, docxFont, "").Size(size)
		}
	}

	if _, err := document.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}

	return nil
}

// addRule draws the horizontal rule under the title as a line shape spanning
// the text width.
func addRule(document *docx.Docx, layout m.Layout) {
	width := layout.PageWidth - 2*layout.LeftMargin
	if width <= 0 {
		width = m.DefaultPageWidth - 2*layout.LeftMargin
	}

	document.AddParagraph().AddInlineShape(int64(width*emuPerPoint), 0, "Rule", "auto", docxRuleShape, &docx.ALine{
		W:         int64(ruleWidth * emuPerPoint),
		SolidFill: &docx.ASolidFill{SrgbClr: &docx.ASrgbClr{Val: "000000"}},
	})
}

// halfPoints converts a point size to the half-point string docx expects.
func halfPoints(pt float64) string {
	if pt <= 0 {
		pt = 12
	}

	return strconv.Itoa(int(pt * 2))
}
