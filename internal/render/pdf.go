package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	m "modscan.dev/pkg/modscan/internal/model"
)

const (
	coreFontFamily = "Helvetica"
	ttfFontFamily  = "report"
	ruleWidth      = 0.5
)

// ErrUnsupportedText is returned when the document holds characters the core
// PDF font cannot show and no TrueType font is configured.
var ErrUnsupportedText = errors.New("text not representable in the core PDF font")

// PDFRenderer draws each page with absolute positioning so the PDF matches
// the document layout exactly.
type PDFRenderer struct {
	fontPath string
}

// NewPDFRenderer returns a PDF renderer. fontPath may be empty.
func NewPDFRenderer(fontPath string) *PDFRenderer {
	return &PDFRenderer{fontPath: fontPath}
}

// Extension implements Renderer.
func (r *PDFRenderer) Extension() string {
	return "pdf"
}

// Render implements Renderer.
func (r *PDFRenderer) Render(w io.Writer, doc m.Document) error {
	if r.fontPath == "" {
		if err := checkCoreFontText(doc); err != nil {
			return err
		}
	}

	layout := doc.Layout

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: layout.PageWidth, Ht: layout.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)

	translate := func(s string) string { return s }

	if r.fontPath != "" {
		pdf.AddUTF8Font(ttfFontFamily, "", r.fontPath)
		pdf.SetFont(ttfFontFamily, "", layout.FontSize)
	} else {
		translate = pdf.UnicodeTranslatorFromDescriptor("")
		pdf.SetFont(coreFontFamily, "", layout.FontSize)
	}

	pdf.SetLineWidth(ruleWidth)

	for _, page := range doc.Pages {
		pdf.AddPage()

		if page.Number == 1 {
			pdf.Text(layout.LeftMargin, layout.TitleOffset, translate(doc.Title))
			pdf.Line(layout.LeftMargin, layout.RuleOffset, layout.PageWidth-layout.LeftMargin, layout.RuleOffset)
		}

		for _, line := range page.Lines {
			pdf.Text(layout.LeftMargin, line.Y, translate(line.Text))
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	return nil
}

// checkCoreFontText rejects documents the cp1252 core font would print as dots.
func checkCoreFontText(doc m.Document) error {
	encoder := charmap.Windows1252.NewEncoder()

	check := func(text string) error {
		if _, err := encoder.String(text); err != nil {
			return fmt.Errorf("%w: %q (set report.font to a TrueType font)", ErrUnsupportedText, text)
		}

		return nil
	}

	if err := check(doc.Title); err != nil {
		return err
	}

	for _, page := range doc.Pages {
		for _, line := range page.Lines {
			if err := check(line.Text); err != nil {
				return err
			}
		}
	}

	return nil
}
