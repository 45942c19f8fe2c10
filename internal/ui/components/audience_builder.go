package components

// AudienceBuilder renders the audience tree and maps each key press onto one
// editor.Session gesture. Rows come from models.Flatten, so collapsed groups
// contribute their header only.
//
// Usage:
//
//	session := editor.New()
//	builder := components.NewAudienceBuilder(session, theme)
//	builder.Width = 60
//	builder.Height = 20
//
//	// In your Update method:
//	builder, cmd := builder.Update(msg)
//
//	// In your View method:
//	content := builder.View()

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyaudience/internal/connector"
	"github.com/rebeliceyang/lazyaudience/internal/editor"
	"github.com/rebeliceyang/lazyaudience/internal/models"
	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

// EditConditionMsg asks the host to open the condition dialog
type EditConditionMsg struct {
	GroupID   string
	Condition models.Condition
}

// CopyExpressionMsg asks the host to copy the compiled expression
type CopyExpressionMsg struct{}

// TogglePreviewMsg asks the host to show or hide the expression preview
type TogglePreviewMsg struct{}

// AudienceBuilder is the interactive tree editor for one audience
type AudienceBuilder struct {
	Session       *editor.Session
	CursorIndex   int
	ScrollOffset  int
	Width         int
	Height        int
	Theme         theme.Theme
	ConfirmDelete bool // require a second d/x before removing a non-empty group

	rows          []models.Row
	pendingDelete string
}

// NewAudienceBuilder creates a builder over session
func NewAudienceBuilder(session *editor.Session, th theme.Theme) *AudienceBuilder {
	b := &AudienceBuilder{
		Session: session,
		Width:   60,
		Height:  20,
		Theme:   th,
	}
	b.Refresh()
	return b
}

// SetSession swaps the session being edited and resets the cursor
func (b *AudienceBuilder) SetSession(session *editor.Session) {
	b.Session = session
	b.CursorIndex = 0
	b.ScrollOffset = 0
	b.pendingDelete = ""
	b.Refresh()
}

// Refresh rebuilds the visible rows after the session changed
func (b *AudienceBuilder) Refresh() {
	b.rows = models.Flatten(b.Session.Groups())
	if b.CursorIndex >= len(b.rows) {
		b.CursorIndex = len(b.rows) - 1
	}
	if b.CursorIndex < 0 {
		b.CursorIndex = 0
	}
}

// Rows returns the visible rows
func (b *AudienceBuilder) Rows() []models.Row {
	return b.rows
}

// CurrentRow returns the row under the cursor
func (b *AudienceBuilder) CurrentRow() (models.Row, bool) {
	if b.CursorIndex < 0 || b.CursorIndex >= len(b.rows) {
		return models.Row{}, false
	}
	return b.rows[b.CursorIndex], true
}

// SetCursorToGroup moves the cursor to a group header row
func (b *AudienceBuilder) SetCursorToGroup(groupID string) bool {
	for i, row := range b.rows {
		if row.Type == models.RowTypeGroup && row.GroupID == groupID {
			b.CursorIndex = i
			return true
		}
	}
	return false
}

// SetCursorToCondition moves the cursor to a condition row
func (b *AudienceBuilder) SetCursorToCondition(conditionID string) bool {
	for i, row := range b.rows {
		if row.Type == models.RowTypeCondition && row.ConditionID == conditionID {
			b.CursorIndex = i
			return true
		}
	}
	return false
}

// Update handles keyboard and mouse input
func (b *AudienceBuilder) Update(msg tea.Msg) (*AudienceBuilder, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			b.move(-1)
		case tea.MouseButtonWheelDown:
			b.move(1)
		}
	}
	return b, nil
}

func (b *AudienceBuilder) move(delta int) {
	b.CursorIndex += delta
	if b.CursorIndex < 0 {
		b.CursorIndex = 0
	}
	if b.CursorIndex > len(b.rows)-1 {
		b.CursorIndex = len(b.rows) - 1
	}
}

func (b *AudienceBuilder) handleKey(msg tea.KeyMsg) (*AudienceBuilder, tea.Cmd) {
	key := msg.String()
	if key != "d" && key != "x" {
		b.pendingDelete = ""
	}

	row, ok := b.CurrentRow()
	if !ok {
		return b, nil
	}

	var cmd tea.Cmd

	switch key {
	case "up", "k":
		b.move(-1)
	case "down", "j":
		b.move(1)
	case "g":
		b.CursorIndex = 0
		b.ScrollOffset = 0
	case "G":
		b.CursorIndex = len(b.rows) - 1

	case "left", "h":
		group, _ := models.FindGroup(b.Session.Groups(), row.GroupID)
		switch {
		case row.Type == models.RowTypeCondition:
			b.SetCursorToGroup(row.GroupID)
		case !group.Collapsed:
			b.Session.ToggleCollapsed(row.GroupID)
		case row.ParentID != "":
			b.SetCursorToGroup(row.ParentID)
		}
	case "right", "l":
		if group, ok := models.FindGroup(b.Session.Groups(), row.GroupID); ok && group.Collapsed {
			b.Session.ToggleCollapsed(row.GroupID)
		}
	case " ":
		b.Session.ToggleCollapsed(row.GroupID)
		b.Refresh()
		b.SetCursorToGroup(row.GroupID)

	case "n":
		id := b.Session.AddGroup()
		b.Refresh()
		b.SetCursorToGroup(id)
	case "a":
		id := b.Session.AddCondition(row.GroupID)
		if id == "" {
			break
		}
		b.Refresh()
		b.SetCursorToCondition(id)
		cmd = b.editCondition(row.GroupID, id)
	case "s":
		if id := b.Session.AddSubgroup(row.GroupID); id != "" {
			b.Refresh()
			b.SetCursorToGroup(id)
		}
	case "enter", "e":
		if row.Type == models.RowTypeCondition {
			cmd = b.editCondition(row.GroupID, row.ConditionID)
		} else {
			b.Session.ToggleCollapsed(row.GroupID)
		}
	case "d", "x":
		b.delete(row)

	case "m":
		b.Session.CycleMode(row.GroupID)
	case "+", "=":
		if group, ok := models.FindGroup(b.Session.Groups(), row.GroupID); ok {
			b.Session.SetAtLeastCount(row.GroupID, group.AtLeastCount+1)
		}
	case "-", "_":
		if group, ok := models.FindGroup(b.Session.Groups(), row.GroupID); ok {
			b.Session.SetAtLeastCount(row.GroupID, group.AtLeastCount-1)
		}
	case "!":
		b.Session.ToggleExclude(row.GroupID)
	case "c":
		b.cycleConnector(row)

	case "y":
		cmd = func() tea.Msg { return CopyExpressionMsg{} }
	case "p":
		cmd = func() tea.Msg { return TogglePreviewMsg{} }
	}

	b.Refresh()
	return b, cmd
}

func (b *AudienceBuilder) editCondition(groupID, conditionID string) tea.Cmd {
	group, ok := models.FindGroup(b.Session.Groups(), groupID)
	if !ok {
		return nil
	}
	c, ok := group.FindCondition(conditionID)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return EditConditionMsg{GroupID: groupID, Condition: c}
	}
}

func (b *AudienceBuilder) delete(row models.Row) {
	if row.Type == models.RowTypeCondition {
		b.Session.RemoveCondition(row.GroupID, row.ConditionID)
		return
	}

	group, ok := models.FindGroup(b.Session.Groups(), row.GroupID)
	if !ok {
		return
	}
	if b.ConfirmDelete && !group.IsEmpty() && b.pendingDelete != row.GroupID {
		b.pendingDelete = row.GroupID
		return
	}
	b.pendingDelete = ""
	b.Session.RemoveGroup(row.GroupID)
}

// cycleConnector rotates the gap that follows the row. A group row owns the
// gap to its next sibling; a condition row owns the gap between its group's
// conditions and the first subgroup. Gaps that join nothing are left alone.
func (b *AudienceBuilder) cycleConnector(row models.Row) {
	parentID, afterID, ok := b.gapAfter(row)
	if !ok {
		return
	}
	if parentID == "" {
		b.Session.CycleConnector(afterID)
		return
	}
	b.Session.CycleGroupConnector(parentID, afterID)
}

// gapAfter locates the connector that follows a row, if it affects the
// expression
func (b *AudienceBuilder) gapAfter(row models.Row) (parentID, afterID string, ok bool) {
	if row.Type == models.RowTypeCondition {
		parentID, afterID = row.GroupID, connector.ConditionsKey
	} else {
		parentID, afterID = row.ParentID, row.GroupID
	}
	return parentID, afterID, b.Session.Joins(parentID, afterID)
}

// View renders the tree
func (b *AudienceBuilder) View() string {
	if len(b.rows) == 0 {
		return b.emptyState()
	}

	viewHeight := b.Height
	if viewHeight < 1 {
		viewHeight = 1
	}
	b.adjustScrollOffset(len(b.rows), viewHeight)

	startIdx := b.ScrollOffset
	endIdx := b.ScrollOffset + viewHeight
	if endIdx > len(b.rows) {
		endIdx = len(b.rows)
	}

	lines := make([]string, 0, viewHeight)
	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, b.renderRow(b.rows[i], i == b.CursorIndex))
	}
	for len(lines) < viewHeight {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func (b *AudienceBuilder) renderRow(row models.Row, selected bool) string {
	var plain, styled string
	if row.Type == models.RowTypeGroup {
		plain, styled = b.groupLabel(row)
	} else {
		plain, styled = b.conditionLabel(row)
	}

	indent := strings.Repeat("  ", row.Depth)
	maxWidth := b.Width - 2
	if maxWidth < 4 {
		maxWidth = 4
	}

	// Styled text can't be truncated safely, so fall back to the plain label
	if runewidth.StringWidth(indent+plain) > maxWidth {
		styled = runewidth.Truncate(indent+plain, maxWidth, "…")
		indent = ""
	}

	style := lipgloss.NewStyle()
	if selected {
		style = style.
			Background(b.Theme.Selection).
			Foreground(b.Theme.Foreground).
			Bold(true).
			Width(maxWidth)
	}
	return style.Render(indent + styled)
}

func (b *AudienceBuilder) groupLabel(row models.Row) (string, string) {
	group, ok := models.FindGroup(b.Session.Groups(), row.GroupID)
	if !ok {
		return "", ""
	}

	icon := "▾"
	if group.Collapsed {
		icon = "▸"
	}

	mode := group.Mode.Label(group.AtLeastCount)
	modeColor := b.Theme.ModeAll
	switch group.Mode {
	case models.ModeAny:
		modeColor = b.Theme.ModeAny
	case models.ModeAtLeast:
		modeColor = b.Theme.ModeAtLeast
	}

	parts := []string{icon, mode}
	styledParts := []string{
		lipgloss.NewStyle().Foreground(b.Theme.GroupHeader).Render(icon),
		lipgloss.NewStyle().Foreground(modeColor).Bold(true).Render(mode),
	}

	if group.Exclude {
		parts = append(parts, "EXCLUDE")
		styledParts = append(styledParts, lipgloss.NewStyle().Foreground(b.Theme.Exclude).Bold(true).Render("EXCLUDE"))
	}

	summary := fmt.Sprintf("(%d conditions, %d subgroups)", len(group.Conditions), len(group.SubGroups))
	parts = append(parts, summary)
	styledParts = append(styledParts, lipgloss.NewStyle().Foreground(b.Theme.Muted).Render(summary))

	if conn, ok := b.connectorAfterGroup(row); ok {
		label := "⟶ " + conn.Label()
		parts = append(parts, label)
		styledParts = append(styledParts, lipgloss.NewStyle().Foreground(b.Theme.Connector).Render(label))
	}

	if b.pendingDelete == row.GroupID {
		warn := "press d again to delete"
		parts = append(parts, warn)
		styledParts = append(styledParts, lipgloss.NewStyle().Foreground(b.Theme.Warning).Italic(true).Render(warn))
	}

	return strings.Join(parts, " "), strings.Join(styledParts, " ")
}

// connectorAfterGroup returns the connector shown after a group row
func (b *AudienceBuilder) connectorAfterGroup(row models.Row) (connector.Connector, bool) {
	parentID, afterID, ok := b.gapAfter(row)
	if !ok {
		return "", false
	}
	if parentID == "" {
		return b.Session.Connector(afterID), true
	}
	return b.Session.GroupConnector(parentID, afterID), true
}

func (b *AudienceBuilder) conditionLabel(row models.Row) (string, string) {
	group, ok := models.FindGroup(b.Session.Groups(), row.GroupID)
	if !ok {
		return "", ""
	}
	c, ok := group.FindCondition(row.ConditionID)
	if !ok {
		return "", ""
	}

	if !c.Configured() {
		text := "• (not configured, press enter)"
		return text, lipgloss.NewStyle().Foreground(b.Theme.Unset).Italic(true).Render(text)
	}

	question := c.QuestionName
	if question == "" {
		question = c.QuestionID
	}
	answers := make([]string, 0, len(c.DatapointIDs))
	for i, id := range c.DatapointIDs {
		if i < len(c.DatapointNames) && c.DatapointNames[i] != "" {
			answers = append(answers, c.DatapointNames[i])
		} else {
			answers = append(answers, id)
		}
	}
	values := "(" + strings.Join(answers, ", ") + ")"

	plain := "• " + question + " IN " + values
	styled := "• " +
		lipgloss.NewStyle().Foreground(b.Theme.Question).Render(question) +
		lipgloss.NewStyle().Foreground(b.Theme.Muted).Render(" IN ") +
		lipgloss.NewStyle().Foreground(b.Theme.Datapoint).Render(values)

	// The last condition carries the gap in front of the first subgroup
	if _, afterID, ok := b.gapAfter(row); ok && row.Last {
		label := " ⟶ " + b.Session.GroupConnector(row.GroupID, afterID).Label()
		plain += label
		styled += lipgloss.NewStyle().Foreground(b.Theme.Connector).Render(label)
	}

	return plain, styled
}

func (b *AudienceBuilder) adjustScrollOffset(total, viewHeight int) {
	if b.CursorIndex < b.ScrollOffset {
		b.ScrollOffset = b.CursorIndex
	}
	if b.CursorIndex >= b.ScrollOffset+viewHeight {
		b.ScrollOffset = b.CursorIndex - viewHeight + 1
	}

	maxScroll := total - viewHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if b.ScrollOffset > maxScroll {
		b.ScrollOffset = maxScroll
	}
	if b.ScrollOffset < 0 {
		b.ScrollOffset = 0
	}
}

func (b *AudienceBuilder) emptyState() string {
	style := lipgloss.NewStyle().
		Foreground(b.Theme.Muted).
		Italic(true).
		Width(max(b.Width-2, 0)).
		Align(lipgloss.Center)

	return style.Render("No groups. Press 'n' to add one.")
}
