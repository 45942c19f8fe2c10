package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyaudience/internal/history"
	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

// CopyHistoryMsg is sent when a past expression should go to the clipboard
type CopyHistoryMsg struct {
	Entry history.Entry
}

// CloseHistoryDialogMsg is sent when the dialog should close
type CloseHistoryDialogMsg struct{}

// HistoryDialog lists previously compiled expressions, newest first
type HistoryDialog struct {
	Width  int
	Height int
	Theme  theme.Theme

	entries  []history.Entry
	selected int
	offset   int

	search    *SearchInput
	searching bool
	query     string
}

// NewHistoryDialog creates a new history dialog
func NewHistoryDialog(th theme.Theme) *HistoryDialog {
	search := NewSearchInput(th)
	search.Input.Placeholder = "Question id..."
	return &HistoryDialog{
		Width:   80,
		Height:  30,
		Theme:   th,
		entries: []history.Entry{},
		search:  search,
	}
}

// SetEntries replaces the listed entries
func (hd *HistoryDialog) SetEntries(entries []history.Entry) {
	hd.entries = entries
	hd.selected = 0
	hd.offset = 0
}

// SetQuery records the question id the list was filtered by
func (hd *HistoryDialog) SetQuery(query string) {
	hd.query = strings.TrimSpace(query)
	hd.searching = false
}

// Query returns the active question filter
func (hd *HistoryDialog) Query() string {
	return hd.query
}

// CloseSearch returns focus to the list
func (hd *HistoryDialog) CloseSearch() {
	hd.searching = false
}

// Selected returns the highlighted entry
func (hd *HistoryDialog) Selected() (history.Entry, bool) {
	if hd.selected < 0 || hd.selected >= len(hd.entries) {
		return history.Entry{}, false
	}
	return hd.entries[hd.selected], true
}

func (hd *HistoryDialog) visibleHeight() int {
	return max((hd.Height-8)/2, 1)
}

// Update handles input
func (hd *HistoryDialog) Update(msg tea.Msg) (*HistoryDialog, tea.Cmd) {
	if hd.searching {
		var cmd tea.Cmd
		hd.search, cmd = hd.search.Update(msg)
		return hd, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return hd, nil
	}

	switch key.String() {
	case "esc", "q":
		return hd, func() tea.Msg {
			return CloseHistoryDialogMsg{}
		}
	case "up", "k":
		if hd.selected > 0 {
			hd.selected--
			hd.offset = min(hd.offset, hd.selected)
		}
	case "down", "j":
		if hd.selected < len(hd.entries)-1 {
			hd.selected++
			if hd.selected >= hd.offset+hd.visibleHeight() {
				hd.offset = hd.selected - hd.visibleHeight() + 1
			}
		}
	case "/":
		hd.searching = true
		hd.search.Input.SetValue(hd.query)
		hd.search.Input.Focus()
	case "enter", "y":
		if e, ok := hd.Selected(); ok {
			return hd, func() tea.Msg {
				return CopyHistoryMsg{Entry: e}
			}
		}
	}
	return hd, nil
}

// View renders the dialog
func (hd *HistoryDialog) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(hd.Theme.Foreground).
		Background(hd.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Compile History"))

	mutedStyle := lipgloss.NewStyle().
		Foreground(hd.Theme.Muted).
		Padding(0, 1)
	sections = append(sections, mutedStyle.Render("↑↓: Navigate  Enter: Copy JSON  /: Filter by question  Esc: Close"))

	if hd.searching {
		hd.search.Width = hd.Width - 6
		sections = append(sections, hd.search.View())
	} else if hd.query != "" {
		sections = append(sections, mutedStyle.Render(fmt.Sprintf("Question: %s", hd.query)))
	}

	if len(hd.entries) == 0 {
		empty := "\nNothing compiled yet. Saving or copying an audience records it here."
		if hd.query != "" {
			empty = "\nNo entries reference that question."
		}
		sections = append(sections, empty)
	} else {
		sections = append(sections, "")
		end := min(hd.offset+hd.visibleHeight(), len(hd.entries))
		width := max(hd.Width-8, 10)

		for i := hd.offset; i < end; i++ {
			e := hd.entries[i]

			name := e.AudienceName
			if name == "" {
				name = "(unsaved)"
			}
			header := fmt.Sprintf("%s  %s · %d questions", e.CompiledAt.Format("2006-01-02 15:04"), name, e.QuestionCount)
			header = runewidth.Truncate(header, width, "...")
			detail := runewidth.Truncate(e.Description, width-2, "...")

			style := lipgloss.NewStyle().Padding(0, 1)
			if i == hd.selected {
				style = style.Background(hd.Theme.Selection).Foreground(hd.Theme.Foreground)
			}
			sections = append(sections, style.Render(header+"\n  "+detail))
		}
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(hd.Theme.Border).
		Width(hd.Width).
		Height(hd.Height).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}
