package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	// Background colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Audience tree
	GroupHeader lipgloss.Color
	ModeAll     lipgloss.Color
	ModeAny     lipgloss.Color
	ModeAtLeast lipgloss.Color
	Exclude     lipgloss.Color
	Connector   lipgloss.Color
	Question    lipgloss.Color
	Datapoint   lipgloss.Color
	Unset       lipgloss.Color

	// Chroma style used for the JSON preview
	SyntaxStyle string
}

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}
