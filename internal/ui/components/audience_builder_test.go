package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebeliceyang/lazyaudience/internal/connector"
	"github.com/rebeliceyang/lazyaudience/internal/editor"
	"github.com/rebeliceyang/lazyaudience/internal/expr"
	"github.com/rebeliceyang/lazyaudience/internal/idgen"
	"github.com/rebeliceyang/lazyaudience/internal/models"
	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestBuilder() *AudienceBuilder {
	session := editor.New(editor.WithIDs(idgen.New()))
	return NewAudienceBuilder(session, theme.DefaultTheme())
}

// press sends a key and returns the message produced by the command, if any
func press(t *testing.T, b *AudienceBuilder, key tea.KeyMsg) tea.Msg {
	t.Helper()
	_, cmd := b.Update(key)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func configureCurrent(t *testing.T, b *AudienceBuilder, question string, datapoints ...string) {
	t.Helper()
	msg, ok := press(t, b, runeKey('a')).(EditConditionMsg)
	if !ok {
		t.Fatal("Expected EditConditionMsg after adding a condition")
	}
	b.Session.UpdateCondition(msg.GroupID, msg.Condition.ID, question, "", datapoints, nil)
	b.Refresh()
}

func TestNewAudienceBuilder(t *testing.T) {
	b := newTestBuilder()

	rows := b.Rows()
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Type != models.RowTypeGroup {
		t.Errorf("Expected a group row, got %s", rows[0].Type)
	}
	if b.CursorIndex != 0 {
		t.Errorf("Expected cursor 0, got %d", b.CursorIndex)
	}
}

func TestAudienceBuilder_AddConditionOpensEditor(t *testing.T) {
	b := newTestBuilder()
	groupID := b.Session.Groups()[0].ID

	msg := press(t, b, runeKey('a'))
	edit, ok := msg.(EditConditionMsg)
	if !ok {
		t.Fatalf("Expected EditConditionMsg, got %T", msg)
	}
	if edit.GroupID != groupID {
		t.Errorf("Expected group %s, got %s", groupID, edit.GroupID)
	}

	row, _ := b.CurrentRow()
	if row.Type != models.RowTypeCondition || row.ConditionID != edit.Condition.ID {
		t.Errorf("Cursor should sit on the new condition, got %+v", row)
	}

	msg = press(t, b, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := msg.(EditConditionMsg); !ok {
		t.Errorf("Enter on a condition should reopen the editor, got %T", msg)
	}
}

func TestAudienceBuilder_Navigation(t *testing.T) {
	b := newTestBuilder()
	configureCurrent(t, b, "q1", "a")
	configureCurrent(t, b, "q2", "b")

	press(t, b, runeKey('g'))
	if b.CursorIndex != 0 {
		t.Errorf("Expected cursor 0 after g, got %d", b.CursorIndex)
	}
	press(t, b, runeKey('k'))
	if b.CursorIndex != 0 {
		t.Errorf("Cursor should not move above the first row, got %d", b.CursorIndex)
	}
	press(t, b, runeKey('G'))
	if b.CursorIndex != 2 {
		t.Errorf("Expected cursor 2 after G, got %d", b.CursorIndex)
	}
	press(t, b, runeKey('j'))
	if b.CursorIndex != 2 {
		t.Errorf("Cursor should not move past the last row, got %d", b.CursorIndex)
	}

	press(t, b, runeKey('h'))
	if row, _ := b.CurrentRow(); row.Type != models.RowTypeGroup {
		t.Errorf("h on a condition should move to its group, got %+v", row)
	}
	press(t, b, runeKey('h'))
	if len(b.Rows()) != 1 {
		t.Errorf("h on an expanded group should collapse it, got %d rows", len(b.Rows()))
	}
	press(t, b, runeKey('l'))
	if len(b.Rows()) != 3 {
		t.Errorf("l on a collapsed group should expand it, got %d rows", len(b.Rows()))
	}
}

func TestAudienceBuilder_GroupGestures(t *testing.T) {
	b := newTestBuilder()
	configureCurrent(t, b, "q1", "a")
	press(t, b, runeKey('g'))
	groupID := b.Session.Groups()[0].ID

	press(t, b, runeKey('m'))
	if g, _ := models.FindGroup(b.Session.Groups(), groupID); g.Mode != models.ModeAny {
		t.Errorf("Expected mode any, got %s", g.Mode)
	}

	press(t, b, runeKey('m'))
	press(t, b, runeKey('+'))
	press(t, b, runeKey('+'))
	press(t, b, runeKey('-'))
	g, _ := models.FindGroup(b.Session.Groups(), groupID)
	if g.Mode != models.ModeAtLeast || g.AtLeastCount != 2 {
		t.Errorf("Expected at least 2, got %s %d", g.Mode, g.AtLeastCount)
	}

	press(t, b, runeKey('!'))
	if _, ok := b.Session.Expression().(expr.Not); !ok {
		t.Errorf("Expected excluded group to compile to not, got %T", b.Session.Expression())
	}

	press(t, b, runeKey('s'))
	row, _ := b.CurrentRow()
	if row.Type != models.RowTypeGroup || row.ParentID != groupID {
		t.Errorf("Cursor should sit on the new subgroup, got %+v", row)
	}
}

func TestAudienceBuilder_CycleTopLevelConnector(t *testing.T) {
	b := newTestBuilder()
	b.Width = 100
	configureCurrent(t, b, "q1", "a")
	press(t, b, runeKey('n'))
	configureCurrent(t, b, "q2", "b")

	first := b.Session.Groups()[0].ID
	b.SetCursorToGroup(first)
	press(t, b, runeKey('c'))
	press(t, b, runeKey('c'))

	if got := b.Session.Connector(first); got != connector.AndNot {
		t.Errorf("Expected and_not, got %s", got)
	}
	want := expr.NewAnd(expr.NewQuestion("q1", "a"), expr.NewNot(expr.NewQuestion("q2", "b")))
	if !expr.Equal(b.Session.Expression(), want) {
		t.Errorf("Expected %v, got %v", want, b.Session.Expression())
	}
	if !strings.Contains(b.View(), "AND NOT") {
		t.Error("Expected the connector label in the view")
	}

	// the last group has no gap after it
	second := b.Session.Groups()[1].ID
	b.SetCursorToGroup(second)
	press(t, b, runeKey('c'))
	if got := b.Session.Connector(second); got != connector.And {
		t.Errorf("Last group connector should stay unset, got %s", got)
	}
}

func TestAudienceBuilder_EmptyGroupHasNoConnector(t *testing.T) {
	b := newTestBuilder()
	b.Width = 100
	configureCurrent(t, b, "q1", "a")
	press(t, b, runeKey('n'))
	press(t, b, runeKey('n'))
	configureCurrent(t, b, "q3", "c")

	groups := b.Session.Groups()
	first, empty := groups[0].ID, groups[1].ID

	b.SetCursorToGroup(empty)
	press(t, b, runeKey('c'))
	press(t, b, runeKey('c'))
	if got := b.Session.Connector(empty); got != connector.And {
		t.Errorf("Connector after an empty group should stay unset, got %s", got)
	}

	// rows: first group, its condition, the empty group, the third group
	lines := strings.Split(b.View(), "\n")
	if strings.Contains(lines[2], "⟶") {
		t.Errorf("Empty group row should not show a connector: %q", lines[2])
	}
	if !strings.Contains(lines[0], "⟶ AND") {
		t.Errorf("First group should show the connector joining it to the third: %q", lines[0])
	}

	b.SetCursorToGroup(first)
	press(t, b, runeKey('c'))
	want := expr.NewOr(expr.NewQuestion("q1", "a"), expr.NewQuestion("q3", "c"))
	if !expr.Equal(b.Session.Expression(), want) {
		t.Errorf("Expected %v, got %v", want, b.Session.Expression())
	}
}

func TestAudienceBuilder_CycleConditionsGap(t *testing.T) {
	b := newTestBuilder()
	configureCurrent(t, b, "q1", "a")
	groupID := b.Session.Groups()[0].ID
	b.SetCursorToGroup(groupID)
	press(t, b, runeKey('s'))
	configureCurrent(t, b, "q2", "b")

	b.SetCursorToCondition(b.Session.Groups()[0].Conditions[0].ID)
	press(t, b, runeKey('c'))

	if got := b.Session.GroupConnector(groupID, connector.ConditionsKey); got != connector.Or {
		t.Errorf("Expected or, got %s", got)
	}
	want := expr.NewOr(expr.NewQuestion("q1", "a"), expr.NewQuestion("q2", "b"))
	if !expr.Equal(b.Session.Expression(), want) {
		t.Errorf("Expected %v, got %v", want, b.Session.Expression())
	}
}

func TestAudienceBuilder_DeleteConfirmation(t *testing.T) {
	b := newTestBuilder()
	b.Width = 100
	b.ConfirmDelete = true
	configureCurrent(t, b, "q1", "a")
	press(t, b, runeKey('g'))
	groupID := b.Session.Groups()[0].ID

	press(t, b, runeKey('d'))
	if b.pendingDelete != groupID {
		t.Fatalf("Expected pending delete for %s", groupID)
	}
	if !strings.Contains(b.View(), "press d again") {
		t.Error("Expected a confirmation hint in the view")
	}

	press(t, b, runeKey('d'))
	groups := b.Session.Groups()
	if len(groups) != 1 || groups[0].ID == groupID || !groups[0].IsEmpty() {
		t.Errorf("Expected a fresh empty group, got %+v", groups)
	}
}

func TestAudienceBuilder_DeleteCancelledByOtherKey(t *testing.T) {
	b := newTestBuilder()
	b.ConfirmDelete = true
	configureCurrent(t, b, "q1", "a")
	press(t, b, runeKey('g'))

	press(t, b, runeKey('d'))
	press(t, b, runeKey('j'))
	if b.pendingDelete != "" {
		t.Error("Moving the cursor should cancel the pending delete")
	}
}

func TestAudienceBuilder_DeleteCondition(t *testing.T) {
	b := newTestBuilder()
	configureCurrent(t, b, "q1", "a")

	press(t, b, runeKey('x'))

	if len(b.Session.Groups()[0].Conditions) != 0 {
		t.Error("Expected the condition to be removed")
	}
	if b.CursorIndex != 0 {
		t.Errorf("Cursor should clamp to the remaining row, got %d", b.CursorIndex)
	}
}

func TestAudienceBuilder_View(t *testing.T) {
	b := newTestBuilder()
	b.Width = 80
	b.Height = 10
	configureCurrent(t, b, "gender", "male", "female")

	view := b.View()
	for _, want := range []string{"ALL", "gender", "male, female"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}

	b.Width = 12
	for _, line := range strings.Split(b.View(), "\n") {
		if strings.Contains(line, "female") {
			t.Errorf("Expected long labels to be truncated, got %q", line)
		}
	}
}

func TestAudienceBuilder_MessagesForHost(t *testing.T) {
	b := newTestBuilder()

	if _, ok := press(t, b, runeKey('y')).(CopyExpressionMsg); !ok {
		t.Error("Expected CopyExpressionMsg for y")
	}
	if _, ok := press(t, b, runeKey('p')).(TogglePreviewMsg); !ok {
		t.Error("Expected TogglePreviewMsg for p")
	}
}

func TestAudienceBuilder_ScrollKeepsCursorVisible(t *testing.T) {
	b := newTestBuilder()
	b.Height = 3
	for i := 0; i < 6; i++ {
		press(t, b, runeKey('n'))
	}

	b.View()
	if b.CursorIndex < b.ScrollOffset || b.CursorIndex >= b.ScrollOffset+b.Height {
		t.Errorf("Cursor %d outside viewport starting at %d", b.CursorIndex, b.ScrollOffset)
	}
}
