package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"

	m "modscan.dev/pkg/modscan/internal/model"
)

// HTMLRenderer converts each page to markdown and renders it with goldmark.
// Report lines go into fenced code blocks so indentation survives.
type HTMLRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer returns an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{md: goldmark.New()}
}

// Extension implements Renderer.
func (r *HTMLRenderer) Extension() string {
	return "html"
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(w io.Writer, doc m.Document) error {
	var out bytes.Buffer

	fmt.Fprintf(&out, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n", html.EscapeString(doc.Title))
	out.WriteString("<style>section.page{page-break-after:always}pre{font-family:monospace}</style>\n</head>\n<body>\n")

	for _, page := range doc.Pages {
		fmt.Fprintf(&out, "<section class=\"page\" id=\"page-%d\">\n", page.Number)

		if err := r.md.Convert([]byte(pageMarkdown(doc, page)), &out); err != nil {
			return fmt.Errorf("render page %d: %w", page.Number, err)
		}

		out.WriteString("</section>\n")
	}

	out.WriteString("</body>\n</html>\n")

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("write html: %w", err)
	}

	return nil
}

func pageMarkdown(doc m.Document, page m.Page) string {
	var b strings.Builder

	if page.Number == 1 {
		b.WriteString("# " + escapeMarkdown(doc.Title) + "\n\n---\n\n")
	}

	if len(page.Lines) == 0 {
		return b.String()
	}

	texts := make([]string, 0, len(page.Lines))
	for _, line := range page.Lines {
		texts = append(texts, line.Text)
	}

	fence := codeFence(texts)
	b.WriteString(fence + "text\n")

	for _, text := range texts {
		b.WriteString(text + "\n")
	}

	b.WriteString(fence + "\n")

	return b.String()
}

// codeFence returns a backtick fence longer than any backtick run in lines.
func codeFence(lines []string) string {
	longest := 0

	for _, line := range lines {
		run := 0

		for _, r := range line {
			if r != '`' {
				run = 0
				continue
			}

			run++
			if run > longest {
				longest = run
			}
		}
	}

	if longest < 3 {
		return "```"
	}

	return strings.Repeat("`", longest+1)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
