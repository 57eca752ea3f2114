package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"modscan.dev/pkg/modscan/internal/adapter"
	m "modscan.dev/pkg/modscan/internal/model"
	"modscan.dev/pkg/modscan/internal/render"
)

// ReportOptions controls how report documents are rendered and where copies
// are published.
type ReportOptions struct {
	Format     string
	FontPath   string
	PageWidth  float64
	LineHeight float64
	FontSize   float64
	// Publisher receives a copy of every rendered document. Nil disables it.
	Publisher adapter.Publisher
}

// Layout returns the page geometry for these options.
func (o ReportOptions) Layout() m.Layout {
	layout := m.DefaultLayout(o.PageWidth)

	if o.LineHeight > 0 {
		layout.LineHeight = o.LineHeight
	}

	if o.FontSize > 0 {
		layout.FontSize = o.FontSize
	}

	return layout
}

type reportWriter struct {
	store     adapter.ResultStore
	ui        reportNotifier
	output    m.Path
	renderer  render.Renderer
	layout    m.Layout
	publisher adapter.Publisher
}

type reportNotifier interface {
	DisplayReportWritten(ctx context.Context, path m.Path, pages int)
}

func (w *workflow) newReportWriter(output m.Path, renderer render.Renderer, opts ReportOptions) *reportWriter {
	return &reportWriter{
		store:     w.ResultStore,
		ui:        w.UI,
		output:    output,
		renderer:  renderer,
		layout:    opts.Layout(),
		publisher: opts.Publisher,
	}
}

// write paginates lines under title, renders the document to
// <output>/<base>.<ext> and returns the path written.
func (r *reportWriter) write(ctx context.Context, base, title string, lines []string) (m.Path, error) {
	doc := Paginate(title, lines, r.layout)

	renderer := r.renderer

	var buf bytes.Buffer

	err := renderer.Render(&buf, doc)
	if errors.Is(err, render.ErrUnsupportedText) {
		slog.Warn("Report text needs a TrueType font; writing plain text instead", "title", title, "error", err)

		renderer = render.NewTextRenderer()
		buf.Reset()
		err = renderer.Render(&buf, doc)
	}

	if err != nil {
		slog.Error("Failed to render report", "title", title, "error", err)
		return "", fmt.Errorf("render %q: %w", title, err)
	}

	name := reportFileName(base, renderer.Extension())
	path := m.Path(joinOutput(r.output, name))

	if err := r.store.SaveReport(ctx, path, buf.Bytes()); err != nil {
		slog.Error("Failed to write report", "path", path, "error", err)
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	slog.Info("Report written", "path", path, "pages", len(doc.Pages), "lines", len(lines))
	r.ui.DisplayReportWritten(ctx, path, len(doc.Pages))

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, name, buf.Bytes()); err != nil {
			slog.Error("Failed to publish report", "name", name, "error", err)
			return "", fmt.Errorf("publish report %s: %w", name, err)
		}
	}

	return path, nil
}
