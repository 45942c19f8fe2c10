package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc/Enter", "Dismiss error"},
		{"Tab", "Switch between tree and preview"},
		{"Ctrl+S", "Save audience to library"},
		{"Ctrl+O", "Open library"},
		{"Ctrl+E", "Export library and current expression"},
		{"Ctrl+R", "Compile history"},
		{"Ctrl+N", "New audience"},
	}
}

// GetNavigationKeys returns navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"g/G", "Jump to first/last row"},
		{"←/h", "Collapse group or go to parent"},
		{"→/l", "Expand group"},
		{"Space", "Toggle collapse"},
		{"↑/↓ (preview)", "Scroll the expression"},
	}
}

// GetAudienceKeys returns the audience builder key bindings
func GetAudienceKeys() []KeyBinding {
	return []KeyBinding{
		{"n", "New top-level group"},
		{"a", "Add condition to group"},
		{"s", "Add subgroup"},
		{"Enter/e", "Edit condition"},
		{"d/x", "Delete condition or group"},
		{"m", "Cycle mode (all/any/at least)"},
		{"+/-", "Change at-least count"},
		{"!", "Toggle exclude"},
		{"c", "Cycle connector after row"},
		{"y", "Copy expression JSON"},
		{"p", "Toggle preview"},
	}
}

// GetLibraryKeys returns library list key bindings
func GetLibraryKeys() []KeyBinding {
	return []KeyBinding{
		{"Enter", "Open audience"},
		{"/", "Search by name or question"},
		{"u", "Sort by usage"},
		{"d", "Delete audience"},
		{"Esc", "Close library"},
	}
}

// GetHistoryKeys returns compile history key bindings
func GetHistoryKeys() []KeyBinding {
	return []KeyBinding{
		{"Enter/y", "Copy expression"},
		{"/", "Filter by question id"},
		{"Esc", "Close history"},
	}
}

// Sections returns every help section in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Navigation", GetNavigationKeys()},
		{"Audience", GetAudienceKeys()},
		{"Library", GetLibraryKeys()},
		{"History", GetHistoryKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazyaudience - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, section := range Sections() {
		b.WriteString(sectionStyle.Render(section.Title))
		b.WriteString("\n")
		for _, kb := range section.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 0)).
		Height(max(height-4, 0))

	return boxStyle.Render(b.String())
}
