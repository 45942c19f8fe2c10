package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),
		Muted:      lipgloss.Color("244"),

		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Cursor:        lipgloss.Color("248"),

		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		GroupHeader: lipgloss.Color("117"),
		ModeAll:     lipgloss.Color("75"),
		ModeAny:     lipgloss.Color("150"),
		ModeAtLeast: lipgloss.Color("180"),
		Exclude:     lipgloss.Color("203"),
		Connector:   lipgloss.Color("220"),
		Question:    lipgloss.Color("252"),
		Datapoint:   lipgloss.Color("150"),
		Unset:       lipgloss.Color("244"),

		SyntaxStyle: "monokai",
	}
}
