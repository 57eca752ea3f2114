package domain

import (
	m "modscan.dev/pkg/modscan/internal/model"
)

// Paginate lays lines out on pages of the given layout. Every line is placed
// exactly once, in order; a page never holds more than layout.Capacity()
// lines. An empty input still yields one page so the title is rendered.
func Paginate(title string, lines []string, layout m.Layout) m.Document {
	doc := m.Document{Title: title, Layout: layout, Pages: make([]m.Page, 0, PageCount(len(lines), layout))}
	capacity := layout.Capacity()

	page := m.Page{Number: 1}
	y := layout.TopMargin

	for _, text := range lines {
		if len(page.Lines) == capacity {
			doc.Pages = append(doc.Pages, page)
			page = m.Page{Number: page.Number + 1}
			y = layout.TopMargin
		}

		page.Lines = append(page.Lines, m.Line{Text: text, Y: y})
		y += layout.LineHeight
	}

	doc.Pages = append(doc.Pages, page)

	return doc
}

// PageCount returns the number of pages Paginate produces for n lines.
func PageCount(n int, layout m.Layout) int {
	if n <= 0 {
		return 1
	}

	capacity := layout.Capacity()

	return (n + capacity - 1) / capacity
}
