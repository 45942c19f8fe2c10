package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyaudience/internal/config"
	"github.com/rebeliceyang/lazyaudience/internal/editor"
	"github.com/rebeliceyang/lazyaudience/internal/expr"
	"github.com/rebeliceyang/lazyaudience/internal/export"
	"github.com/rebeliceyang/lazyaudience/internal/history"
	"github.com/rebeliceyang/lazyaudience/internal/library"
	"github.com/rebeliceyang/lazyaudience/internal/logger"
	"github.com/rebeliceyang/lazyaudience/internal/models"
	"github.com/rebeliceyang/lazyaudience/internal/ui/components"
	"github.com/rebeliceyang/lazyaudience/internal/ui/help"
	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

// App is the main application model
type App struct {
	state  AppState
	config *config.Config
	theme  theme.Theme
	log    *logger.Logger

	session *editor.Session
	current *library.Audience // saved audience being edited, nil when unsaved

	library *library.Manager
	history *history.Store

	treePanel    components.Panel
	previewPanel components.Panel
	builder      *components.AudienceBuilder
	preview      *components.PreviewPane
	status       string

	showError    bool
	errorOverlay *components.ErrorOverlay

	showCondition   bool
	conditionDialog *components.ConditionDialog

	showSave   bool
	saveDialog *components.SaveDialog

	showLibrary   bool
	libraryDialog *components.LibraryDialog

	showHistory   bool
	historyDialog *components.HistoryDialog
}

// historyLimit caps the entries loaded into the history dialog
const historyLimit = 200

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// StatusMsg sets the text of the bottom bar
type StatusMsg string

// New creates a new App. lib and hist may be nil when their files could not
// be opened; the matching features then report an error instead.
func New(cfg *config.Config, lib *library.Manager, hist *history.Store, log *logger.Logger) *App {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("app")

	state := NewAppState()
	if cfg.UI.TreeWidthRatio > 0 && cfg.UI.TreeWidthRatio < 100 {
		state.TreeWidthRatio = cfg.UI.TreeWidthRatio
	}

	th := theme.GetTheme(cfg.UI.Theme)
	session := newSession(cfg, log)

	builder := components.NewAudienceBuilder(session, th)
	builder.ConfirmDelete = cfg.General.ConfirmDelete

	preview := components.NewPreviewPane(th)
	preview.Visible = cfg.UI.ShowPreview

	a := &App{
		state:           state,
		config:          cfg,
		theme:           th,
		log:             log,
		session:         session,
		library:         lib,
		history:         hist,
		builder:         builder,
		preview:         preview,
		errorOverlay:    components.NewErrorOverlay(th),
		conditionDialog: components.NewConditionDialog(th),
		saveDialog:      components.NewSaveDialog(th),
		libraryDialog:   components.NewLibraryDialog(th),
		historyDialog:   components.NewHistoryDialog(th),
		treePanel:       components.Panel{Title: "Audience", Theme: th},
		previewPanel:    components.Panel{Title: "Expression", Theme: th},
	}

	a.updatePanelDimensions()
	a.updatePanelFocus()
	a.syncPreview()

	return a
}

func newSession(cfg *config.Config, log *logger.Logger) *editor.Session {
	mode, ok := models.ParseMode(cfg.General.DefaultMode)
	if !ok {
		mode = models.ModeAll
	}
	return editor.New(
		editor.WithLogger(log),
		editor.WithDefaults(mode, cfg.General.DefaultAtLeastCount),
	)
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case StatusMsg:
		a.status = string(msg)
		return a, nil

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updatePanelDimensions()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		if !a.anyOverlay() {
			var cmd tea.Cmd
			a.builder, cmd = a.builder.Update(msg)
			return a, cmd
		}
		return a, nil

	case components.EditConditionMsg:
		a.conditionDialog.Open(msg.GroupID, msg.Condition)
		a.showCondition = true
		return a, nil

	case components.SubmitConditionMsg:
		a.session.UpdateCondition(msg.GroupID, msg.ConditionID, msg.QuestionID, msg.QuestionName, msg.DatapointIDs, msg.DatapointNames)
		a.showCondition = false
		a.afterEdit()
		return a, nil

	case components.CloseConditionDialogMsg:
		a.showCondition = false
		return a, nil

	case components.CopyExpressionMsg:
		return a, a.copyExpression()

	case components.TogglePreviewMsg:
		a.preview.Toggle()
		if !a.preview.Visible {
			a.state.FocusedPanel = TreePanel
		}
		a.updatePanelDimensions()
		a.updatePanelFocus()
		return a, nil

	case components.SubmitSaveMsg:
		return a, a.save(msg)

	case components.CloseSaveDialogMsg:
		a.showSave = false
		return a, nil

	case components.OpenAudienceMsg:
		a.open(msg.Audience)
		return a, nil

	case components.DeleteAudienceMsg:
		a.deleteAudience(msg.ID, msg.Name)
		return a, nil

	case components.SearchInputMsg:
		if a.showHistory {
			a.historyDialog.SetQuery(msg.Query)
			a.loadHistory()
			return a, nil
		}
		a.libraryDialog.SetQuery(msg.Query)
		a.libraryDialog.SetAudiences(a.libraryList())
		return a, nil

	case components.CloseSearchMsg:
		if a.showHistory {
			a.historyDialog.CloseSearch()
		} else {
			a.libraryDialog.CloseSearch()
		}
		return a, nil

	case components.LibrarySortMsg:
		a.libraryDialog.SetAudiences(a.libraryList())
		return a, nil

	case components.CloseLibraryDialogMsg:
		a.showLibrary = false
		return a, nil

	case components.CopyHistoryMsg:
		a.copyHistoryEntry(msg.Entry)
		return a, nil

	case components.CloseHistoryDialogMsg:
		a.showHistory = false
		return a, nil
	}
	return a, nil
}

func (a *App) anyOverlay() bool {
	return a.showError || a.showCondition || a.showSave || a.showLibrary || a.showHistory ||
		a.state.ViewMode == HelpMode
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showError {
		switch key {
		case "esc", "enter":
			a.DismissError()
		case "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch {
	case a.showCondition:
		a.conditionDialog, cmd = a.conditionDialog.Update(msg)
		return a, cmd
	case a.showSave:
		a.saveDialog, cmd = a.saveDialog.Update(msg)
		return a, cmd
	case a.showLibrary:
		a.libraryDialog, cmd = a.libraryDialog.Update(msg)
		return a, cmd
	case a.showHistory:
		a.historyDialog, cmd = a.historyDialog.Update(msg)
		return a, cmd
	}

	if a.state.ViewMode == HelpMode {
		switch key {
		case "?", "esc", "q":
			a.state.ViewMode = NormalMode
		}
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.state.ViewMode = HelpMode
		return a, nil
	case "tab":
		if a.preview.Visible {
			if a.state.FocusedPanel == TreePanel {
				a.state.FocusedPanel = PreviewPanel
			} else {
				a.state.FocusedPanel = TreePanel
			}
			a.updatePanelFocus()
		}
		return a, nil
	case "ctrl+s":
		a.openSaveDialog()
		return a, nil
	case "ctrl+o":
		a.openLibrary()
		return a, nil
	case "ctrl+e":
		a.exportLibrary()
		return a, nil
	case "ctrl+r":
		a.openHistory()
		return a, nil
	case "ctrl+n":
		a.session.Reset()
		a.current = nil
		a.builder.SetSession(a.session)
		a.afterEdit()
		a.status = "New audience"
		return a, nil
	}

	if a.state.FocusedPanel == PreviewPanel {
		switch key {
		case "up", "k":
			a.preview.ScrollUp()
			return a, nil
		case "down", "j":
			a.preview.ScrollDown()
			return a, nil
		case "y":
			return a, a.copyExpression()
		case "p":
			return a.Update(components.TogglePreviewMsg{})
		}
		return a, nil
	}

	a.builder, cmd = a.builder.Update(msg)
	a.afterEdit()
	return a, cmd
}

// afterEdit refreshes everything derived from the session
func (a *App) afterEdit() {
	a.builder.Refresh()
	a.syncPreview()
}

func (a *App) syncPreview() {
	e := a.session.Expression()
	if e == nil {
		a.preview.SetContent("", "")
		return
	}
	data, err := expr.MarshalIndent(e, "  ")
	if err != nil {
		a.log.Errorw("failed to encode expression", "error", err)
		a.preview.SetContent(a.session.Describe(), "")
		return
	}
	a.preview.SetContent(a.session.Describe(), string(data))
}

func (a *App) copyExpression() tea.Cmd {
	if !a.session.Ready() {
		a.status = "Nothing to copy yet"
		return nil
	}
	if err := a.preview.CopyContent(); err != nil {
		a.ShowError("Clipboard Error", fmt.Sprintf("Could not copy the expression:\n\n%v", err))
		return nil
	}
	name := ""
	if a.current != nil {
		name = a.current.Name
	}
	a.record(name)
	a.status = "Expression copied to clipboard"
	return nil
}

// record appends the current expression to the compile history
func (a *App) record(name string) {
	if a.history == nil {
		return
	}
	entry, err := history.NewEntry(name, a.session.Expression())
	if err != nil {
		a.log.Warnw("skipping history entry", "error", err)
		return
	}
	if _, err := a.history.Add(entry); err != nil {
		a.log.Errorw("failed to record history", "error", err)
		return
	}
	if removed, err := a.history.Prune(a.config.Storage.HistoryMaxEntries); err != nil {
		a.log.Errorw("failed to prune history", "error", err)
	} else if removed > 0 {
		a.log.Debugw("pruned history", "removed", removed)
	}
}

func (a *App) openSaveDialog() {
	if a.library == nil {
		a.ShowError("Library Unavailable", "The audience library could not be opened. Check the log for details.")
		return
	}
	if !a.session.Ready() {
		a.ShowError("Nothing to Save", "Configure at least one condition before saving.")
		return
	}
	if a.current != nil {
		a.saveDialog.Open(a.current.ID, a.current.Name, a.current.Description)
	} else {
		a.saveDialog.Open("", "", "")
	}
	a.showSave = true
}

func (a *App) save(msg components.SubmitSaveMsg) tea.Cmd {
	data, err := a.session.JSON()
	if err != nil {
		a.ShowError("Save Failed", fmt.Sprintf("Could not encode the expression:\n\n%v", err))
		return nil
	}

	var saved *library.Audience
	if msg.ID != "" {
		err = a.library.Update(msg.ID, msg.Name, msg.Description, a.session.Snapshot(), data)
		if err == nil {
			saved, err = a.library.Get(msg.ID)
		}
	} else {
		saved, err = a.library.Add(msg.Name, msg.Description, a.session.Snapshot(), data)
	}

	switch {
	case errors.Is(err, library.ErrDuplicateName), errors.Is(err, library.ErrEmptyName):
		a.saveDialog.SetError(err.Error())
		return nil
	case err != nil:
		a.showSave = false
		a.ShowError("Save Failed", err.Error())
		return nil
	}

	a.showSave = false
	a.current = saved
	a.record(saved.Name)
	a.log.Infow("audience saved", "id", saved.ID, "name", saved.Name)
	a.status = fmt.Sprintf("Saved %q", saved.Name)
	return nil
}

func (a *App) openLibrary() {
	if a.library == nil {
		a.ShowError("Library Unavailable", "The audience library could not be opened. Check the log for details.")
		return
	}
	a.libraryDialog.SetQuery("")
	a.libraryDialog.SetAudiences(a.libraryList())
	a.showLibrary = true
}

// libraryList returns the audiences matching the dialog's filter and order
func (a *App) libraryList() []library.Audience {
	if query := a.libraryDialog.Query(); query != "" {
		return a.library.Search(query)
	}
	if a.libraryDialog.MostUsed() {
		return a.library.GetMostUsed(0)
	}
	return a.library.GetAll()
}

func (a *App) openHistory() {
	if a.history == nil {
		a.ShowError("History Unavailable", "The compile history could not be opened. Check the log for details.")
		return
	}
	a.historyDialog.SetQuery("")
	if a.loadHistory() {
		a.showHistory = true
	}
}

// loadHistory fills the history dialog, filtered by question id when a query is set
func (a *App) loadHistory() bool {
	var (
		entries []history.Entry
		err     error
	)
	if query := a.historyDialog.Query(); query != "" {
		entries, err = a.history.Search(query, historyLimit)
	} else {
		entries, err = a.history.GetRecent(historyLimit)
	}
	if err != nil {
		a.showHistory = false
		a.ShowError("History Error", fmt.Sprintf("Could not read the compile history:\n\n%v", err))
		return false
	}
	a.historyDialog.SetEntries(entries)
	return true
}

func (a *App) copyHistoryEntry(entry history.Entry) {
	if err := clipboard.WriteAll(entry.Expression); err != nil {
		a.ShowError("Clipboard Error", fmt.Sprintf("Could not copy the expression:\n\n%v", err))
		return
	}
	a.showHistory = false
	a.status = fmt.Sprintf("Copied expression compiled at %s", entry.CompiledAt.Format("2006-01-02 15:04"))
}

func (a *App) open(audience library.Audience) {
	a.session.Restore(audience.Snapshot)
	a.builder.SetSession(a.session)
	a.afterEdit()

	if err := a.library.RecordUsage(audience.ID); err != nil {
		a.log.Warnw("failed to record usage", "id", audience.ID, "error", err)
	}
	a.current = &audience
	a.showLibrary = false
	a.status = fmt.Sprintf("Opened %q", audience.Name)
}

func (a *App) deleteAudience(id, name string) {
	if err := a.library.Delete(id); err != nil {
		a.ShowError("Delete Failed", err.Error())
		return
	}
	if a.current != nil && a.current.ID == id {
		a.current = nil
	}
	a.libraryDialog.SetAudiences(a.libraryList())
	a.status = fmt.Sprintf("Deleted %q", name)
}

func (a *App) exportLibrary() {
	if a.library == nil {
		a.ShowError("Library Unavailable", "The audience library could not be opened. Check the log for details.")
		return
	}
	audiences := a.library.GetAll()
	ready := a.session.Ready()
	if len(audiences) == 0 && !ready {
		a.status = "No saved audiences to export"
		return
	}

	dir := filepath.Dir(a.library.Path())
	if ready {
		exprPath := filepath.Join(dir, "expression.json")
		if err := a.writeExpression(exprPath); err != nil {
			a.ShowError("Export Failed", err.Error())
			return
		}
		if len(audiences) == 0 {
			a.status = fmt.Sprintf("Exported expression to %s", exprPath)
			return
		}
	}

	jsonPath := filepath.Join(dir, "audiences.json")
	csvPath := filepath.Join(dir, "audiences.csv")

	if err := export.ExportToJSON(audiences, jsonPath); err != nil {
		a.ShowError("Export Failed", err.Error())
		return
	}
	if err := export.ExportToCSV(audiences, csvPath); err != nil {
		a.ShowError("Export Failed", err.Error())
		return
	}
	a.status = fmt.Sprintf("Exported %d audiences to %s", len(audiences), dir)
}

func (a *App) writeExpression(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create expression file: %w", err)
	}
	defer f.Close()
	return export.WriteExpression(f, a.session.Expression())
}

// View implements tea.Model
func (a *App) View() string {
	switch {
	case a.showError:
		return a.place(a.errorOverlay.View())
	case a.showCondition:
		a.conditionDialog.Width = min(72, max(a.state.Width-4, 20))
		return a.place(a.conditionDialog.View())
	case a.showSave:
		a.saveDialog.Width = min(64, max(a.state.Width-4, 20))
		return a.place(a.saveDialog.View())
	case a.showLibrary:
		a.libraryDialog.Width = min(80, max(a.state.Width-4, 20))
		a.libraryDialog.Height = min(30, max(a.state.Height-4, 10))
		return a.place(a.libraryDialog.View())
	case a.showHistory:
		a.historyDialog.Width = min(80, max(a.state.Width-4, 20))
		a.historyDialog.Height = min(30, max(a.state.Height-4, 10))
		return a.place(a.historyDialog.View())
	case a.state.ViewMode == HelpMode:
		return help.Render(a.state.Width, a.state.Height, a.theme)
	}

	return a.renderNormalView()
}

func (a *App) place(content string) string {
	return lipgloss.Place(
		a.state.Width, a.state.Height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (a *App) renderNormalView() string {
	name := "unsaved"
	if a.current != nil {
		name = a.current.Name
	}
	ready := "not ready"
	if a.session.Ready() {
		ready = "ready"
	}

	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(a.formatStatusBar("lazyaudience · "+name, ready))

	bottomLeft := a.status
	if bottomLeft == "" {
		bottomLeft = "[a] Add condition | [tab] Switch panel | [ctrl+s] Save | [q] Quit"
	}
	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(bottomLeft, "? Help"))

	a.builder.Width = a.treePanel.Width
	a.builder.Height = a.treePanel.ContentHeight()
	a.treePanel.Hint = pluralize(len(a.session.Groups()), "group")
	a.treePanel.Content = a.builder.View()

	panels := a.treePanel.View()
	if a.preview.Visible {
		a.preview.Width = a.previewPanel.Width
		a.preview.Height = a.previewPanel.ContentHeight()
		a.previewPanel.Content = a.preview.View()
		panels = lipgloss.JoinHorizontal(lipgloss.Top, panels, a.previewPanel.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, topBar, panels, bottomBar)
}

// updatePanelDimensions calculates panel sizes based on window size
func (a *App) updatePanelDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// top bar, bottom bar and the panel borders
	contentHeight := max(a.state.Height-4, 5)

	if !a.preview.Visible {
		a.treePanel.Width = max(a.state.Width-2, 20)
		a.treePanel.Height = contentHeight
		return
	}

	treeWidth := max(a.state.Width*a.state.TreeWidthRatio/100, 20)
	previewWidth := a.state.Width - treeWidth - 4
	if previewWidth < 20 {
		previewWidth = 20
		treeWidth = max(a.state.Width-previewWidth-4, 20)
	}

	a.treePanel.Width = treeWidth
	a.treePanel.Height = contentHeight
	a.previewPanel.Width = previewWidth
	a.previewPanel.Height = contentHeight
}

func (a *App) updatePanelFocus() {
	a.treePanel.Focused = a.state.FocusedPanel == TreePanel
	a.previewPanel.Focused = a.state.FocusedPanel == PreviewPanel
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	availableWidth := max(a.state.Width-4, 0)

	leftWidth := runewidth.StringWidth(left)
	rightWidth := runewidth.StringWidth(right)

	if leftWidth+rightWidth > availableWidth {
		if availableWidth > rightWidth {
			return runewidth.Truncate(left, availableWidth-rightWidth, "…") + right
		}
		return runewidth.Truncate(left, availableWidth, "…")
	}

	spacing := availableWidth - leftWidth - rightWidth
	return left + lipgloss.NewStyle().Width(spacing).Render("") + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.log.Warnw("showing error", "title", title, "message", message)
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}
