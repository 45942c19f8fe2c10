package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyaudience/internal/library"
	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

// OpenAudienceMsg is sent when a saved audience should be loaded
type OpenAudienceMsg struct {
	Audience library.Audience
}

// DeleteAudienceMsg is sent when a saved audience should be deleted
type DeleteAudienceMsg struct {
	ID   string
	Name string
}

// CloseLibraryDialogMsg is sent when the dialog should close
type CloseLibraryDialogMsg struct{}

// LibrarySortMsg is sent when the list order changes
type LibrarySortMsg struct {
	MostUsed bool
}

// LibraryDialog lists saved audiences
type LibraryDialog struct {
	Width  int
	Height int
	Theme  theme.Theme

	audiences []library.Audience
	selected  int
	offset    int

	search    *SearchInput
	searching bool
	query     string
	mostUsed  bool
}

// NewLibraryDialog creates a new library dialog
func NewLibraryDialog(th theme.Theme) *LibraryDialog {
	return &LibraryDialog{
		Width:     80,
		Height:    30,
		Theme:     th,
		audiences: []library.Audience{},
		search:    NewSearchInput(th),
	}
}

// SetAudiences updates the listed audiences
func (ld *LibraryDialog) SetAudiences(audiences []library.Audience) {
	ld.audiences = audiences
	ld.selected = 0
	ld.offset = 0
}

// SetQuery records the query the list was filtered by
func (ld *LibraryDialog) SetQuery(query string) {
	ld.query = query
	ld.searching = false
}

// Query returns the active filter
func (ld *LibraryDialog) Query() string {
	return ld.query
}

// MostUsed reports whether the list is ordered by usage instead of name
func (ld *LibraryDialog) MostUsed() bool {
	return ld.mostUsed
}

// CloseSearch returns focus to the list
func (ld *LibraryDialog) CloseSearch() {
	ld.searching = false
}

// Selected returns the highlighted audience
func (ld *LibraryDialog) Selected() (library.Audience, bool) {
	if ld.selected < 0 || ld.selected >= len(ld.audiences) {
		return library.Audience{}, false
	}
	return ld.audiences[ld.selected], true
}

func (ld *LibraryDialog) visibleHeight() int {
	// two lines per entry
	return max((ld.Height-8)/2, 1)
}

// Update handles input
func (ld *LibraryDialog) Update(msg tea.Msg) (*LibraryDialog, tea.Cmd) {
	if ld.searching {
		var cmd tea.Cmd
		ld.search, cmd = ld.search.Update(msg)
		return ld, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return ld, nil
	}

	switch key.String() {
	case "esc", "q":
		return ld, func() tea.Msg {
			return CloseLibraryDialogMsg{}
		}
	case "up", "k":
		if ld.selected > 0 {
			ld.selected--
			if ld.selected < ld.offset {
				ld.offset = ld.selected
			}
		}
	case "down", "j":
		if ld.selected < len(ld.audiences)-1 {
			ld.selected++
			if ld.selected >= ld.offset+ld.visibleHeight() {
				ld.offset = ld.selected - ld.visibleHeight() + 1
			}
		}
	case "/":
		ld.searching = true
		ld.search.Input.SetValue(ld.query)
		ld.search.Input.Focus()
	case "u":
		ld.mostUsed = !ld.mostUsed
		mostUsed := ld.mostUsed
		return ld, func() tea.Msg {
			return LibrarySortMsg{MostUsed: mostUsed}
		}
	case "enter":
		if a, ok := ld.Selected(); ok {
			return ld, func() tea.Msg {
				return OpenAudienceMsg{Audience: a}
			}
		}
	case "d", "x":
		if a, ok := ld.Selected(); ok {
			return ld, func() tea.Msg {
				return DeleteAudienceMsg{ID: a.ID, Name: a.Name}
			}
		}
	}
	return ld, nil
}

// View renders the dialog
func (ld *LibraryDialog) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(ld.Theme.Foreground).
		Background(ld.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Saved Audiences"))

	instrStyle := lipgloss.NewStyle().
		Foreground(ld.Theme.Muted).
		Padding(0, 1)
	sections = append(sections, instrStyle.Render("↑↓: Navigate  Enter: Open  /: Search  u: Sort  d: Delete  Esc: Close"))
	if ld.mostUsed {
		sections = append(sections, instrStyle.Render("Sorted by usage"))
	}

	if ld.searching {
		ld.search.Width = ld.Width - 6
		sections = append(sections, ld.search.View())
	} else if ld.query != "" {
		sections = append(sections, instrStyle.Render(fmt.Sprintf("Filter: %q", ld.query)))
	}

	if len(ld.audiences) == 0 {
		empty := "\nNo saved audiences yet. Press Ctrl+S in the editor to save one."
		if ld.query != "" {
			empty = "\nNo audiences match the filter."
		}
		sections = append(sections, empty)
	} else {
		sections = append(sections, "")
		end := min(ld.offset+ld.visibleHeight(), len(ld.audiences))
		width := max(ld.Width-8, 10)

		for i := ld.offset; i < end; i++ {
			a := ld.audiences[i]

			name := runewidth.Truncate(a.Name, width, "...")
			detail := fmt.Sprintf("%d questions, used %d×", len(a.QuestionIDs()), a.UsageCount)
			if a.Description != "" {
				detail = a.Description + " · " + detail
			}
			detail = runewidth.Truncate(detail, width-2, "...")

			style := lipgloss.NewStyle().Padding(0, 1)
			if i == ld.selected {
				style = style.Background(ld.Theme.Selection).Foreground(ld.Theme.Foreground)
			}
			sections = append(sections, style.Render(name+"\n  "+detail))
		}
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ld.Theme.Border).
		Width(ld.Width).
		Height(ld.Height).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}
