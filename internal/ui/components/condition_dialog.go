package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyaudience/internal/models"
	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

const (
	fieldQuestionID = iota
	fieldQuestionName
	fieldDatapointIDs
	fieldDatapointNames
	conditionFieldCount
)

// SubmitConditionMsg carries the edited condition back to the host
type SubmitConditionMsg struct {
	GroupID        string
	ConditionID    string
	QuestionID     string
	QuestionName   string
	DatapointIDs   []string
	DatapointNames []string
}

// CloseConditionDialogMsg is sent when the dialog is cancelled
type CloseConditionDialogMsg struct{}

// ConditionDialog edits the question and answer options of one condition
type ConditionDialog struct {
	Width int
	Theme theme.Theme

	groupID     string
	conditionID string
	inputs      []textinput.Model
	focus       int
	err         string
}

// NewConditionDialog creates a condition dialog
func NewConditionDialog(th theme.Theme) *ConditionDialog {
	placeholders := []string{
		"question id, e.g. q_gender",
		"display name (optional)",
		"answer ids, comma separated",
		"answer names, comma separated (optional)",
	}

	inputs := make([]textinput.Model, conditionFieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 1024
		ti.Width = 40
		inputs[i] = ti
	}

	return &ConditionDialog{
		Width:  64,
		Theme:  th,
		inputs: inputs,
	}
}

// Open loads a condition into the dialog
func (d *ConditionDialog) Open(groupID string, c models.Condition) {
	d.groupID = groupID
	d.conditionID = c.ID
	d.err = ""

	d.inputs[fieldQuestionID].SetValue(c.QuestionID)
	d.inputs[fieldQuestionName].SetValue(c.QuestionName)
	d.inputs[fieldDatapointIDs].SetValue(strings.Join(c.DatapointIDs, ", "))
	d.inputs[fieldDatapointNames].SetValue(strings.Join(c.DatapointNames, ", "))
	d.setFocus(fieldQuestionID)
}

// Error returns the current validation message
func (d *ConditionDialog) Error() string {
	return d.err
}

func (d *ConditionDialog) setFocus(i int) {
	d.focus = i
	for j := range d.inputs {
		if j == i {
			d.inputs[j].Focus()
		} else {
			d.inputs[j].Blur()
		}
	}
}

// Update handles messages
func (d *ConditionDialog) Update(msg tea.Msg) (*ConditionDialog, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return d, func() tea.Msg { return CloseConditionDialogMsg{} }
		case "tab", "down":
			d.setFocus((d.focus + 1) % conditionFieldCount)
			return d, nil
		case "shift+tab", "up":
			d.setFocus((d.focus - 1 + conditionFieldCount) % conditionFieldCount)
			return d, nil
		case "ctrl+s":
			return d, d.submit()
		case "enter":
			if d.focus < conditionFieldCount-1 {
				d.setFocus(d.focus + 1)
				return d, nil
			}
			return d, d.submit()
		}
	}

	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return d, cmd
}

func (d *ConditionDialog) submit() tea.Cmd {
	questionID := strings.TrimSpace(d.inputs[fieldQuestionID].Value())
	if questionID == "" {
		d.err = "Question id is required"
		d.setFocus(fieldQuestionID)
		return nil
	}
	datapointIDs := splitList(d.inputs[fieldDatapointIDs].Value())
	if len(datapointIDs) == 0 {
		d.err = "Pick at least one answer id"
		d.setFocus(fieldDatapointIDs)
		return nil
	}
	d.err = ""

	msg := SubmitConditionMsg{
		GroupID:        d.groupID,
		ConditionID:    d.conditionID,
		QuestionID:     questionID,
		QuestionName:   strings.TrimSpace(d.inputs[fieldQuestionName].Value()),
		DatapointIDs:   datapointIDs,
		DatapointNames: splitAligned(d.inputs[fieldDatapointNames].Value()),
	}
	return func() tea.Msg { return msg }
}

// splitList splits a comma separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitAligned splits a comma separated list keeping blank positions, so the
// n-th name still lines up with the n-th id
func splitAligned(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// View renders the dialog
func (d *ConditionDialog) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(d.Theme.Foreground).
		Background(d.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Edit Condition"))

	instrStyle := lipgloss.NewStyle().
		Foreground(d.Theme.Muted).
		Padding(0, 1)
	sections = append(sections, instrStyle.Render("Tab: Next field  Enter: Next/Save  Ctrl+S: Save  Esc: Cancel"))

	if d.err != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(d.Theme.Error).
			Padding(0, 1).
			Bold(true)
		sections = append(sections, errorStyle.Render("Error: "+d.err))
	}

	labels := []string{"Question ID:", "Question name:", "Answer IDs:", "Answer names:"}
	labelStyle := lipgloss.NewStyle().Width(16).Foreground(d.Theme.Foreground)
	sections = append(sections, "")
	for i, label := range labels {
		d.inputs[i].Width = max(d.Width-24, 10)
		style := lipgloss.NewStyle().Padding(0, 1)
		if i == d.focus {
			style = style.Background(d.Theme.Selection)
		}
		sections = append(sections, style.Render(labelStyle.Render(label)+d.inputs[i].View()))
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.BorderFocused).
		Width(d.Width).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}
