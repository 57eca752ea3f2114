// Package render turns paginated report documents into files.
package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	m "modscan.dev/pkg/modscan/internal/model"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Renderer writes a Document in one output format.
type Renderer interface {
	// Extension is the file suffix without the leading dot.
	Extension() string
	Render(w io.Writer, doc m.Document) error
}

// Options configure renderers that need external assets.
type Options struct {
	// FontPath points to a TrueType font used by the PDF renderer. The core
	// Helvetica font is used when empty.
	FontPath string
}

// DefaultFormat is used when no format is configured.
const DefaultFormat = "pdf"

var constructors = map[string]func(Options) Renderer{
	"pdf":  func(o Options) Renderer { return NewPDFRenderer(o.FontPath) },
	"txt":  func(Options) Renderer { return NewTextRenderer() },
	"docx": func(Options) Renderer { return NewDOCXRenderer() },
	"html": func(Options) Renderer { return NewHTMLRenderer() },
}

// New returns the renderer registered for format.
func New(format string, opts Options) (Renderer, error) {
	name := strings.ToLower(strings.TrimSpace(format))
	if name == "" {
		name = DefaultFormat
	}

	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}

	return ctor(opts), nil
}

// Formats lists the supported format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
