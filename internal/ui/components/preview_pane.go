package components

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

// PreviewPane shows the compiled audience as a readable summary followed by
// the highlighted wire JSON
type PreviewPane struct {
	Width   int
	Height  int
	Visible bool

	Summary string // infix rendering of the expression
	Content string // indented wire JSON, "" when nothing is configured

	scrollY int
	lines   []string // highlighted JSON lines, built on demand

	Theme     theme.Theme
	style     *chroma.Style
	formatter chroma.Formatter
	lexer     chroma.Lexer
}

// NewPreviewPane creates a new preview pane
func NewPreviewPane(th theme.Theme) *PreviewPane {
	p := &PreviewPane{
		Width:   60,
		Height:  20,
		Visible: true,
		Theme:   th,
	}

	p.style = styles.Get(th.SyntaxStyle)
	if p.style == nil {
		p.style = styles.Fallback
	}
	p.formatter = formatters.Get("terminal256")
	if p.formatter == nil {
		p.formatter = formatters.Fallback
	}
	if lexer := lexers.Get("json"); lexer != nil {
		p.lexer = chroma.Coalesce(lexer)
	}

	return p
}

// SetContent updates what the pane shows
func (p *PreviewPane) SetContent(summary, content string) {
	if p.Summary == summary && p.Content == content {
		return
	}
	p.Summary = summary
	p.Content = content
	p.lines = nil
	p.scrollY = 0
}

// Toggle shows or hides the pane
func (p *PreviewPane) Toggle() {
	p.Visible = !p.Visible
}

// ScrollUp scrolls content up
func (p *PreviewPane) ScrollUp() {
	if p.scrollY > 0 {
		p.scrollY--
	}
}

// ScrollDown scrolls content down
func (p *PreviewPane) ScrollDown() {
	p.format()
	maxScroll := len(p.lines) - p.jsonHeight()
	if maxScroll < 0 {
		maxScroll = 0
	}
	if p.scrollY < maxScroll {
		p.scrollY++
	}
}

// CopyContent copies the JSON to the clipboard
func (p *PreviewPane) CopyContent() error {
	return clipboard.WriteAll(p.Content)
}

func (p *PreviewPane) format() {
	if p.lines != nil {
		return
	}
	if p.Content == "" {
		p.lines = []string{}
		return
	}

	raw := strings.Split(p.Content, "\n")
	p.lines = make([]string, len(raw))
	for i, line := range raw {
		p.lines[i] = p.highlight(line)
	}
}

// highlight applies syntax highlighting to one line, falling back to plain text
func (p *PreviewPane) highlight(text string) string {
	if text == "" || p.lexer == nil {
		return text
	}
	iterator, err := p.lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf bytes.Buffer
	if err := p.formatter.Format(&buf, p.style, iterator); err != nil {
		return text
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// jsonHeight is the number of JSON lines that fit below the summary
func (p *PreviewPane) jsonHeight() int {
	return max(p.Height-3, 1)
}

// View renders the pane content. Borders come from the hosting panel.
func (p *PreviewPane) View() string {
	if !p.Visible {
		return ""
	}
	p.format()

	width := max(p.Width-2, 10)

	if p.Content == "" {
		return lipgloss.NewStyle().
			Foreground(p.Theme.Muted).
			Italic(true).
			Render("Nothing to compile yet. Add a condition with 'a'.")
	}

	summary := p.Summary
	if runewidth.StringWidth(summary) > width {
		summary = runewidth.Truncate(summary, width, "…")
	}

	parts := []string{
		lipgloss.NewStyle().Foreground(p.Theme.Info).Bold(true).Render(summary),
		"",
	}

	end := min(p.scrollY+p.jsonHeight(), len(p.lines))
	for _, line := range p.lines[p.scrollY:end] {
		parts = append(parts, line)
	}

	if len(p.lines) > p.jsonHeight() {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(p.Theme.Muted).
			Italic(true).
			Render("↑↓: Scroll │ y: Copy │ p: Toggle"))
	}

	return strings.Join(parts, "\n")
}
