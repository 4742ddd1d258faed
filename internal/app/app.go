package app

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyjson/internal/config"
	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/export"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/jsontree"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/notify"
	"github.com/rebeliceyang/lazyjson/internal/pagination"
	"github.com/rebeliceyang/lazyjson/internal/ui/components"
	"github.com/rebeliceyang/lazyjson/internal/ui/help"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
	"github.com/rebeliceyang/lazyjson/internal/view"
)

// Options are the per-run settings that do not live in the config file
type Options struct {
	Title   string
	OutPath string
	Logger  *log.Logger
}

// frame is one entry of the subview stack. The root frame has a zero
// handle.
type frame struct {
	handle view.SubviewHandle
	panel  *view.Panel
	tree   *components.TreeView
	table  *components.TableView
	raw    *components.RawEditor
}

// App is the main application model
type App struct {
	state  models.AppState
	config *config.Config
	theme  theme.Theme
	logger *log.Logger

	frames   []*frame
	recorder *notify.Recorder
	notifier notify.Notifier
	outPath  string

	content      components.Panel
	tabs         *components.SubviewTabs
	preview      *components.PreviewPane
	search       *components.SearchInput
	editor       *components.ValueEditor
	errorOverlay *components.ErrorOverlay

	// copy writes to the system clipboard
	copy func(string) error
}

// New creates the application over doc
func New(cfg *config.Config, doc *jsonb.Value, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("app")

	th := theme.GetTheme(cfg.UI.Theme)
	recorder := notify.NewRecorder()

	a := &App{
		state:        models.NewAppState(),
		config:       cfg,
		theme:        th,
		logger:       logger,
		recorder:     recorder,
		notifier:     notify.Tee(recorder, notify.NewLogNotifier(logger)),
		outPath:      opts.OutPath,
		content:      components.Panel{Theme: th, Focused: true},
		tabs:         components.NewSubviewTabs(th),
		preview:      components.NewPreviewPane(th),
		search:       components.NewSearchInput(th),
		editor:       components.NewValueEditor(th),
		errorOverlay: components.NewErrorOverlay(th),
		copy:         clipboard.WriteAll,
	}

	mode, err := view.ParseMode(cfg.UI.DefaultMode)
	if err != nil {
		return nil, apperrors.NewInputError(err.Error(), nil)
	}
	pageSize, err := cfg.PageSize()
	if err != nil {
		return nil, apperrors.NewInputError(err.Error(), nil)
	}

	title := opts.Title
	if title == "" {
		title = "document"
	}
	panel, err := view.New(doc,
		view.WithTitle(title),
		view.WithMode(mode),
		view.WithNotifier(a.notifier),
		view.WithLogger(logger),
		view.WithPageSize(pageSize),
		view.WithMaxLength(cfg.Data.MaxLength),
		view.WithExpandDepth(cfg.UI.ExpandDepth),
		view.WithParseOptions(cfg.ParseOptions()...),
	)
	if err != nil {
		return nil, err
	}

	a.push(view.SubviewHandle{}, panel)
	a.updateDimensions()
	return a, nil
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) push(h view.SubviewHandle, p *view.Panel) {
	f := &frame{
		handle: h,
		panel:  p,
		tree:   components.NewTreeView(nil, a.theme),
		table:  components.NewTableView(a.theme),
		raw:    components.NewRawEditor(a.theme),
	}
	a.frames = append(a.frames, f)
	a.tabs.Push(components.SubviewTab{Title: p.Title()})
	a.sync()
}

func (a *App) active() *frame {
	return a.frames[len(a.frames)-1]
}

// Panel returns the panel of the active frame
func (a *App) Panel() *view.Panel {
	return a.active().panel
}

// Depth returns the number of open frames, 1 when no subview is open
func (a *App) Depth() int { return len(a.frames) }

// sync refreshes the active frame's components from its panel
func (a *App) sync() {
	f := a.active()
	p := f.panel

	switch p.Mode() {
	case view.ModeInput:
		if !f.raw.Editing() {
			f.raw.SetContent(p.Raw(), p.Title())
		}
	case view.ModeTree:
		f.tree.SetTree(p.Tree())
	case view.ModeTable:
		f.table.SetTable(p.Table())
	}

	a.tabs.SetActive(components.SubviewTab{
		Title:  p.Title(),
		Detail: fmt.Sprintf("%s · %s", p.Mode(), p.RowCountLabel()),
	})
	a.syncPreview()
}

func (a *App) syncPreview() {
	text, title := a.selectedText(false)
	a.preview.SetContent(text, title)
}

// selectedText returns the canonical text of the selected node or cell and
// its path. Strings keep their quotes when quoted is set.
func (a *App) selectedText(quoted bool) (string, string) {
	f := a.active()
	p := f.panel

	switch p.Mode() {
	case view.ModeTree:
		id := f.tree.GetCurrentNode()
		if id == models.NoNode {
			return "", ""
		}
		path := p.Tree().JSONPath(id).String()
		if quoted {
			return p.Tree().Node(id).Descriptor.Canonical(), path
		}
		text, err := p.CanonicalText(id)
		if err != nil {
			return "", ""
		}
		return text, path
	case view.ModeTable:
		t := p.Table()
		if t == nil || t.RowCount() == 0 {
			return "", ""
		}
		row, col := f.table.SelectedRow, f.table.SelectedCol
		if quoted || t.ColumnCount() == 0 {
			col = -1
		}
		text, err := p.CellText(row, col)
		if err != nil {
			return "", ""
		}
		title := t.RowLabel(row)
		if col >= 0 {
			title += "." + t.Columns[col]
		}
		return text, title
	default:
		text, _ := p.Text()
		return text, p.Title()
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updateDimensions()
		return a, nil

	case components.RawCommitMsg:
		return a, a.commitRaw(msg.Text)

	case components.ValueEditedMsg:
		a.editor.Close()
		a.state.ViewMode = models.NormalMode
		a.applyEdit(msg)
		return a, nil

	case components.CloseValueEditorMsg:
		a.editor.Close()
		a.state.ViewMode = models.NormalMode
		return a, nil

	case components.SearchInputMsg:
		a.state.ViewMode = models.NormalMode
		a.runSearch(msg.Query)
		return a, nil

	case components.CloseSearchMsg:
		a.state.ViewMode = models.NormalMode
		return a, nil

	case components.TreeNodeSelectedMsg:
		a.editNode(msg.ID)
		return a, nil

	case components.CellSelectedMsg:
		a.editCell(msg.Row, msg.Col)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.errorOverlay.Visible {
		switch key {
		case "esc", "enter":
			a.errorOverlay.Dismiss()
		case "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	switch a.state.ViewMode {
	case models.HelpMode:
		if key == "?" || key == "esc" || key == "q" {
			a.state.ViewMode = models.NormalMode
		}
		return a, nil
	case models.SearchMode:
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	case models.EditMode:
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		return a, cmd
	}

	f := a.active()
	p := f.panel

	// The raw editor owns every key while editing
	if p.Mode() == view.ModeInput && f.raw.Editing() {
		var cmd tea.Cmd
		f.raw, cmd = f.raw.Update(msg)
		return a, cmd
	}

	switch key {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "?":
		a.state.ViewMode = models.HelpMode
	case "m":
		a.setMode(p.Mode().Next())
	case "1":
		a.setMode(view.ModeInput)
	case "2":
		a.setMode(view.ModeTree)
	case "3":
		a.setMode(view.ModeTable)
	case "]":
		a.check(p.NextPage())
		a.sync()
	case "[":
		a.check(p.PreviousPage())
		a.sync()
	case "+", "=":
		a.stepPageSize(1)
	case "-":
		a.stepPageSize(-1)
	case "e":
		return a, a.startEdit()
	case "o":
		a.openSubview()
	case "esc":
		a.closeSubview()
	case "y", "Y":
		a.copySelection(key == "Y")
	case "P":
		a.copyPath()
	case "p":
		a.preview.Toggle()
		a.updateDimensions()
	case "/":
		if p.Mode() == view.ModeTree {
			a.search.Reset()
			a.state.ViewMode = models.SearchMode
		}
	case "E":
		p.ExpandAll()
	case "C":
		p.CollapseAll()
		f.tree.CursorIndex = 0
	case "ctrl+w":
		a.writeOut()
	default:
		var cmd tea.Cmd
		switch p.Mode() {
		case view.ModeInput:
			f.raw, cmd = f.raw.Update(msg)
		case view.ModeTree:
			f.tree, cmd = f.tree.Update(msg)
		case view.ModeTable:
			f.table, cmd = f.table.Update(msg)
		}
		a.syncPreview()
		return a, cmd
	}
	return a, nil
}

// check shows err in the overlay. Panels have already sent it to the
// notifier.
func (a *App) check(err error) bool {
	if err == nil {
		return true
	}
	title := "Error"
	if apperrors.IsFatal(err) {
		title = "Internal Error"
	}
	a.ShowError(title, apperrors.UserFriendlyError(err))
	return false
}

func (a *App) setMode(mode view.Mode) {
	f := a.active()
	if f.panel.Mode() == view.ModeInput && f.raw.Editing() {
		if err := f.panel.SetRawText(f.raw.GetContent()); !a.check(err) {
			return
		}
		f.raw.ExitEditMode(false)
	}
	if a.check(f.panel.SetViewMode(mode)) {
		a.notifier.Info(fmt.Sprintf("%s mode", mode))
	}
	a.sync()
}

func (a *App) stepPageSize(delta int) {
	p := a.Panel()
	current := p.Pagination().ResultsPerPage()
	idx := 0
	for i, r := range pagination.Choices {
		if r == current {
			idx = i
		}
	}
	idx = min(max(idx+delta, 0), len(pagination.Choices)-1)
	if pagination.Choices[idx] == current {
		return
	}
	a.check(p.SetPageSize(pagination.Choices[idx]))
	a.sync()
}

func (a *App) commitRaw(text string) tea.Cmd {
	f := a.active()
	if !a.check(f.panel.SetRawText(text)) {
		return nil
	}
	if a.check(f.panel.Commit()) {
		f.raw.ExitEditMode(false)
		a.notifier.Info("document updated")
	}
	a.sync()
	return nil
}

func (a *App) startEdit() tea.Cmd {
	f := a.active()
	switch f.panel.Mode() {
	case view.ModeInput:
		f.raw.EnterEditMode()
		return nil
	case view.ModeTree:
		return a.editNode(f.tree.GetCurrentNode())
	case view.ModeTable:
		return a.editCell(f.table.SelectedRow, f.table.SelectedCol)
	}
	return nil
}

func (a *App) editNode(id models.NodeID) tea.Cmd {
	p := a.Panel()
	if id == models.NoNode {
		return nil
	}
	text, err := p.NodeEditText(id)
	if !a.check(err) {
		return nil
	}
	a.state.ViewMode = models.EditMode
	return a.editor.Open(components.ValueEditTarget{Node: id}, p.Tree().JSONPath(id).String(), text)
}

func (a *App) editCell(row, col int) tea.Cmd {
	p := a.Panel()
	if col < 0 {
		return nil
	}
	text, err := p.CellEditText(row, col)
	if !a.check(err) {
		return nil
	}
	t := p.Table()
	a.state.ViewMode = models.EditMode
	target := components.ValueEditTarget{Row: row, Col: col, Table: true}
	return a.editor.Open(target, t.RowLabel(row)+"."+t.Columns[col], text)
}

func (a *App) applyEdit(msg components.ValueEditedMsg) {
	f := a.active()
	var err error
	if msg.Target.Table {
		err = f.panel.UpdateCell(msg.Target.Row, msg.Target.Col, msg.Text)
	} else {
		err = f.panel.UpdateNode(msg.Target.Node, msg.Text)
	}
	if a.check(err) {
		a.syncPreview()
	}
	a.tabs.SetActive(components.SubviewTab{
		Title:  f.panel.Title(),
		Detail: fmt.Sprintf("%s · %s", f.panel.Mode(), f.panel.RowCountLabel()),
	})
}

func (a *App) openSubview() {
	f := a.active()
	if a.tabs.Len() >= components.MaxSubviewDepth {
		a.notifier.Error("too many nested subviews")
		return
	}

	var (
		h   view.SubviewHandle
		sub *view.Panel
		err error
	)
	switch f.panel.Mode() {
	case view.ModeTree:
		id := f.tree.GetCurrentNode()
		if id == models.NoNode {
			return
		}
		h, sub, err = f.panel.OpenSubview(id)
	case view.ModeTable:
		h, sub, err = f.panel.OpenCellSubview(f.table.SelectedRow, f.table.SelectedCol)
	default:
		return
	}
	if !a.check(err) {
		return
	}
	a.push(h, sub)
}

func (a *App) closeSubview() {
	if len(a.frames) == 1 {
		a.active().tree.Matches = nil
		return
	}

	child := a.active()
	parent := a.frames[len(a.frames)-2]
	if child.panel.Mode() == view.ModeInput && child.raw.Editing() {
		if !a.check(child.panel.SetRawText(child.raw.GetContent())) {
			return
		}
	}
	if !a.check(parent.panel.CloseAndMergeSubview(child.handle)) {
		return
	}

	a.frames = a.frames[:len(a.frames)-1]
	a.tabs.Pop()
	a.sync()
}

func (a *App) copySelection(quoted bool) {
	text, title := a.selectedText(quoted)
	if text == "" && title == "" {
		return
	}
	if err := a.copy(text); err != nil {
		a.check(apperrors.NewOutputError("could not copy to the clipboard", err))
		return
	}
	a.notifier.Info(fmt.Sprintf("copied %s: %s", title, jsonb.Truncate(text, 40)))
}

// copyPath copies the selected node's path in the #> operator form, for
// pasting into a query against the source document
func (a *App) copyPath() {
	f := a.active()
	if f.panel.Mode() != view.ModeTree {
		return
	}
	id := f.tree.GetCurrentNode()
	if id == models.NoNode {
		return
	}
	path := "#> '" + f.panel.Tree().JSONPath(id).PostgreSQLPath() + "'"
	if err := a.copy(path); err != nil {
		a.check(apperrors.NewOutputError("could not copy to the clipboard", err))
		return
	}
	a.notifier.Info("copied " + path)
}

// jumpToPath moves the cursor to the node at a $.a.b[0] path
func (a *App) jumpToPath(query string) {
	f := a.active()
	path, err := jsonb.ParsePath(query)
	if err != nil {
		a.check(apperrors.NewInputError(err.Error(), nil))
		return
	}
	tree := f.panel.Tree()
	id := jsontree.Find(tree, path)
	if id == models.NoNode {
		a.notifier.Info(fmt.Sprintf("no node at %s on this page", path))
		return
	}
	if id == tree.Root() {
		f.tree.CursorIndex = 0
		return
	}
	tree.ExpandAncestors(id)
	f.tree.SetCursorToNode(id)
	a.syncPreview()
}

func (a *App) runSearch(query string) {
	if strings.HasPrefix(query, "$") {
		a.jumpToPath(query)
		return
	}
	f := a.active()
	matches := f.panel.Search(query)
	if len(matches) == 0 {
		f.tree.Matches = nil
		if query != "" {
			a.notifier.Info(fmt.Sprintf("no match for %q", query))
		}
		return
	}

	f.tree.Matches = make(map[models.NodeID]bool, len(matches))
	for _, id := range matches {
		f.tree.Matches[id] = true
	}
	f.tree.SetCursorToNode(matches[0])
	a.notifier.Info(fmt.Sprintf("%d matches", len(matches)))
	a.syncPreview()
}

// writeOut exports the root document, with every open subview merged in,
// to the --out path
func (a *App) writeOut() {
	if a.outPath == "" {
		a.notifier.Error("no output file: start with --out")
		return
	}
	for len(a.frames) > 1 {
		before := len(a.frames)
		a.closeSubview()
		if len(a.frames) == before {
			return
		}
	}

	root := a.Panel()
	if root.Mode() == view.ModeInput {
		f := a.active()
		if f.raw.Editing() && !a.check(root.SetRawText(f.raw.GetContent())) {
			return
		}
	}
	if !a.check(root.Commit()) {
		return
	}
	a.sync()

	format := export.FormatForPath(a.outPath)
	if !a.check(export.ExportToFile(root.Document(), a.outPath, format)) {
		return
	}
	a.notifier.Info(fmt.Sprintf("wrote %s", a.outPath))
}

// Document returns the root document with the current presentation applied
func (a *App) Document() (*jsonb.Value, error) {
	root := a.frames[0].panel
	text, err := root.Text()
	if err != nil {
		return nil, err
	}
	return jsonb.Parse(text)
}

// View implements tea.Model
func (a *App) View() string {
	if a.errorOverlay.Visible {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			a.errorOverlay.View(),
		)
	}

	if a.state.ViewMode == models.HelpMode {
		return help.Render(a.state.Width, a.state.Height, a.theme)
	}

	return a.renderNormalView()
}

func (a *App) renderNormalView() string {
	f := a.active()
	p := f.panel

	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Background).
		Padding(0, 2).
		Render(a.formatStatusBar("lazyjson · "+p.Mode().String(), "? help"))

	tabBar := a.tabs.RenderTabBar(a.state.Width)
	pageBar := components.RenderPaginationBar(p.Pagination(), p.RowCountLabel(), a.theme)

	switch p.Mode() {
	case view.ModeInput:
		a.content.Title = ""
		a.content.Content = f.raw.View()
	case view.ModeTree:
		a.content.Title = p.Title()
		a.content.Content = f.tree.View()
	case view.ModeTable:
		a.content.Title = p.Title()
		a.content.Content = f.table.View()
	}

	parts := []string{topBar, tabBar, a.content.View()}
	if a.preview.Visible {
		parts = append(parts, a.preview.View())
	}
	switch a.state.ViewMode {
	case models.SearchMode:
		parts = append(parts, a.search.View())
	case models.EditMode:
		parts = append(parts, a.editor.View())
	}
	parts = append(parts, pageBar, a.renderBottomBar())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderBottomBar() string {
	left := "[m] mode | [e] edit | [o] open | [esc] close | [q] quit"
	style := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2)

	right := ""
	if msg, ok := a.recorder.Last(); ok {
		right = msg.Text
		if msg.Level == notify.LevelError {
			style = style.Foreground(a.theme.Error)
		}
	}
	return style.Render(a.formatStatusBar(left, right))
}

// updateDimensions sizes the components to the window
func (a *App) updateDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// Top bar, tab bar, page bar and bottom bar
	reserved := 4 + a.preview.Height()
	contentHeight := max(a.state.Height-reserved-2, 5)
	contentWidth := max(a.state.Width-2, 20)

	a.content.Width = contentWidth
	a.content.Height = contentHeight
	a.preview.Width = a.state.Width
	a.preview.MaxHeight = max(a.state.Height/3, 5)
	a.search.Width = a.state.Width - 2
	a.editor.Width = a.state.Width - 2
	a.errorOverlay.Width = min(max(a.state.Width/2, 40), a.state.Width)

	for _, f := range a.frames {
		f.tree.Width = contentWidth
		f.tree.Height = contentHeight - 1 // title line
		f.table.Width = contentWidth
		f.table.Height = contentHeight - 1
		f.raw.Width = a.state.Width
		f.raw.Height = contentHeight + 2
	}
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	available := max(a.state.Width-4, 0)

	leftLen := runewidth.StringWidth(left)
	rightLen := runewidth.StringWidth(right)
	if leftLen+rightLen >= available {
		if rightLen >= available {
			return runewidth.Truncate(right, available, "…")
		}
		return runewidth.Truncate(left, available-rightLen-1, "…") + " " + right
	}
	return left + lipgloss.NewStyle().Width(available-leftLen-rightLen).Render("") + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.errorOverlay.Dismiss()
}
