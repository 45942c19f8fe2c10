package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

// SubmitSaveMsg is sent when the user confirms the save dialog. ID is empty
// for a new audience.
type SubmitSaveMsg struct {
	ID          string
	Name        string
	Description string
}

// CloseSaveDialogMsg is sent when the save dialog is cancelled
type CloseSaveDialogMsg struct{}

// SaveDialog asks for the name and description of an audience
type SaveDialog struct {
	Width int
	Theme theme.Theme

	id          string
	name        textinput.Model
	description textinput.Model
	onName      bool
	err         string
}

// NewSaveDialog creates a save dialog
func NewSaveDialog(th theme.Theme) *SaveDialog {
	name := textinput.New()
	name.Placeholder = "Audience name"
	name.CharLimit = 128
	name.Width = 40

	description := textinput.New()
	description.Placeholder = "Description (optional)"
	description.CharLimit = 512
	description.Width = 40

	return &SaveDialog{
		Width:       64,
		Theme:       th,
		name:        name,
		description: description,
	}
}

// Open prepares the dialog. Pass the id of the audience being edited to
// overwrite it, or "" to save a new one.
func (d *SaveDialog) Open(id, name, description string) {
	d.id = id
	d.err = ""
	d.name.SetValue(name)
	d.description.SetValue(description)
	d.onName = true
	d.name.Focus()
	d.description.Blur()
}

// SetError shows a validation message returned by the library
func (d *SaveDialog) SetError(msg string) {
	d.err = msg
}

// Update handles messages
func (d *SaveDialog) Update(msg tea.Msg) (*SaveDialog, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return d, func() tea.Msg { return CloseSaveDialogMsg{} }
		case "tab", "shift+tab", "up", "down":
			d.toggleField()
			return d, nil
		case "enter":
			if d.onName {
				d.toggleField()
				return d, nil
			}
			return d, d.submit()
		case "ctrl+s":
			return d, d.submit()
		}
	}

	var cmd tea.Cmd
	if d.onName {
		d.name, cmd = d.name.Update(msg)
	} else {
		d.description, cmd = d.description.Update(msg)
	}
	return d, cmd
}

func (d *SaveDialog) toggleField() {
	d.onName = !d.onName
	if d.onName {
		d.name.Focus()
		d.description.Blur()
	} else {
		d.name.Blur()
		d.description.Focus()
	}
}

func (d *SaveDialog) submit() tea.Cmd {
	name := strings.TrimSpace(d.name.Value())
	if name == "" {
		d.err = "Name is required"
		if !d.onName {
			d.toggleField()
		}
		return nil
	}
	d.err = ""
	msg := SubmitSaveMsg{
		ID:          d.id,
		Name:        name,
		Description: strings.TrimSpace(d.description.Value()),
	}
	return func() tea.Msg { return msg }
}

// View renders the dialog
func (d *SaveDialog) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(d.Theme.Foreground).
		Background(d.Theme.Info).
		Padding(0, 1).
		Bold(true)
	title := "Save Audience"
	if d.id != "" {
		title = "Update Audience"
	}
	sections = append(sections, titleStyle.Render(title))

	instrStyle := lipgloss.NewStyle().
		Foreground(d.Theme.Muted).
		Padding(0, 1)
	sections = append(sections, instrStyle.Render("Tab: Next field  Enter: Save  Esc: Cancel"))

	if d.err != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(d.Theme.Error).
			Padding(0, 1).
			Bold(true).
			Render("Error: "+d.err))
	}

	labelStyle := lipgloss.NewStyle().Width(14)
	sections = append(sections, "",
		lipgloss.NewStyle().Padding(0, 1).Render(labelStyle.Render("Name:")+d.name.View()),
		lipgloss.NewStyle().Padding(0, 1).Render(labelStyle.Render("Description:")+d.description.View()),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.BorderFocused).
		Width(d.Width).
		Padding(1).
		Render(strings.Join(sections, "\n"))
}
