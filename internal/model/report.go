package model

// Fragment is the human-readable report text derived from one Outcome.
type Fragment struct {
	FileName string
	Module   string
	Failed   bool
	Lines    []string
}

// FragmentLines flattens fragments into one ordered line sequence.
func FragmentLines(fragments []Fragment) []string {
	total := 0
	for _, fragment := range fragments {
		total += len(fragment.Lines)
	}

	lines := make([]string, 0, total)
	for _, fragment := range fragments {
		lines = append(lines, fragment.Lines...)
	}

	return lines
}

// Layout holds page geometry in points. Offsets are measured from the page top.
type Layout struct {
	PageWidth    float64
	PageHeight   float64
	LineHeight   float64
	TopMargin    float64
	BottomMargin float64
	LeftMargin   float64
	TitleOffset  float64
	RuleOffset   float64
	FontSize     float64
}

// LetterLandscapeRatio is height/width of a US letter page in landscape.
const LetterLandscapeRatio = 612.0 / 792.0

// DefaultPageWidth is the width of a US letter page in landscape, in points.
const DefaultPageWidth = 792.0

// DefaultLayout returns the layout for the given page width. The height is
// derived from the letter landscape aspect ratio.
func DefaultLayout(pageWidth float64) Layout {
	if pageWidth <= 0 {
		pageWidth = DefaultPageWidth
	}

	return Layout{
		PageWidth:    pageWidth,
		PageHeight:   pageWidth * LetterLandscapeRatio,
		LineHeight:   15,
		TopMargin:    50,
		BottomMargin: 50,
		LeftMargin:   30,
		TitleOffset:  30,
		RuleOffset:   32,
		FontSize:     12,
	}
}

// Capacity returns how many lines fit on one page. It is never below one.
func (l Layout) Capacity() int {
	if l.LineHeight <= 0 {
		return 1
	}

	usable := l.PageHeight - l.TopMargin - l.BottomMargin
	if usable < 0 {
		return 1
	}

	return int(usable/l.LineHeight) + 1
}

// Line is one line of text placed on a page.
type Line struct {
	Text string
	Y    float64 // offset of the baseline from the page top
}

// Page is an ordered sequence of lines bounded by the layout capacity.
type Page struct {
	Number int
	Lines  []Line
}

// Document is a paginated report. The title and rule appear on page 1 only.
type Document struct {
	Title  string
	Layout Layout
	Pages  []Page
}

// Lines returns every line text in page order, then line order.
func (d Document) Lines() []string {
	var lines []string

	for _, page := range d.Pages {
		for _, line := range page.Lines {
			lines = append(lines, line.Text)
		}
	}

	return lines
}

// ModuleSummary captures per-module counts for the run summary.
type ModuleSummary struct {
	Name     string `yaml:"name"`
	Targets  int    `yaml:"targets"`
	Failures int    `yaml:"failures"`
	Cached   int    `yaml:"cached"`
	Report   Path   `yaml:"report,omitempty"`
}

// RunSummary is written next to the reports after a run.
type RunSummary struct {
	SourceRoot  Path            `yaml:"source_root"`
	Analyzer    string          `yaml:"analyzer"`
	Format      string          `yaml:"format"`
	Modules     []ModuleSummary `yaml:"modules"`
	LooseFiles  []ModuleSummary `yaml:"loose_files"`
	Targets     int             `yaml:"targets"`
	Failures    int             `yaml:"failures"`
	FinalReport Path            `yaml:"final_report"`
}

// Add folds one outcome into the totals.
func (s *ModuleSummary) Add(outcome Outcome) {
	s.Targets++

	if outcome.Failed() {
		s.Failures++
	}

	if outcome.Cached {
		s.Cached++
	}
}
