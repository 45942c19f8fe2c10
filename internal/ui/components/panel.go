package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

// Panel is a bordered box with a title line. The border and title take the
// focused color while Focused is set.
type Panel struct {
	Title   string
	Hint    string
	Content string
	Width   int
	Height  int
	Focused bool
	Theme   theme.Theme
}

// View renders the panel, clipping content to ContentHeight lines
func (p *Panel) View() string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}

	border := p.Theme.Border
	if p.Focused {
		border = p.Theme.BorderFocused
	}

	lines := strings.Split(p.Content, "\n")
	if len(lines) > p.ContentHeight() {
		lines = lines[:p.ContentHeight()]
	}
	body := strings.Join(lines, "\n")
	if p.Title != "" {
		body = p.header(border) + "\n" + body
	}

	return lipgloss.NewStyle().
		Width(p.Width).
		Height(p.Height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(body)
}

func (p *Panel) header(color lipgloss.Color) string {
	title := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if p.Focused {
		title = title.Foreground(color)
	}
	out := title.Render(p.Title)
	if p.Hint != "" {
		out += lipgloss.NewStyle().Foreground(p.Theme.Muted).Render(p.Hint)
	}
	return out
}

// ContentHeight returns the number of lines available below the title
func (p *Panel) ContentHeight() int {
	h := p.Height
	if p.Title != "" {
		h--
	}
	return max(h, 1)
}
