package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinMochaTheme returns the Catppuccin Mocha theme
// Based on: https://github.com/catppuccin/catppuccin
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name: "catppuccin-mocha",

		Background: lipgloss.Color("#1e1e2e"), // Base
		Foreground: lipgloss.Color("#cdd6f4"), // Text
		Muted:      lipgloss.Color("#a6adc8"), // Subtext0

		Border:        lipgloss.Color("#45475a"), // Surface1
		BorderFocused: lipgloss.Color("#89b4fa"), // Blue
		Selection:     lipgloss.Color("#313244"), // Surface0
		Cursor:        lipgloss.Color("#f5e0dc"), // Rosewater

		Success: lipgloss.Color("#a6e3a1"), // Green
		Warning: lipgloss.Color("#f9e2af"), // Yellow
		Error:   lipgloss.Color("#f38ba8"), // Red
		Info:    lipgloss.Color("#89dceb"), // Sky

		GroupHeader: lipgloss.Color("#b4befe"), // Lavender
		ModeAll:     lipgloss.Color("#89b4fa"), // Blue
		ModeAny:     lipgloss.Color("#94e2d5"), // Teal
		ModeAtLeast: lipgloss.Color("#fab387"), // Peach
		Exclude:     lipgloss.Color("#eba0ac"), // Maroon
		Connector:   lipgloss.Color("#f9e2af"), // Yellow
		Question:    lipgloss.Color("#cdd6f4"), // Text
		Datapoint:   lipgloss.Color("#a6e3a1"), // Green
		Unset:       lipgloss.Color("#6c7086"), // Overlay0

		SyntaxStyle: "catppuccin-mocha",
	}
}
