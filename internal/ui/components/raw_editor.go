package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// RawCommitMsg is sent when the user saves the edited text with Ctrl+S
type RawCommitMsg struct {
	Text string
}

// RawEditor shows the document text with JSON highlighting. It starts
// read-only; e switches to editing, Ctrl+S commits and Esc discards.
type RawEditor struct {
	lines     []string
	cursorRow int
	cursorCol int // in runes
	scrollY   int

	Title    string
	Width    int
	Height   int
	ReadOnly bool
	Modified bool
	Original string
	Focused  bool

	Theme theme.Theme

	styles *rawEditorStyles

	lexer           chroma.Lexer
	chromaStyle     *chroma.Style
	chromaFormatter chroma.Formatter
}

type rawEditorStyles struct {
	border        lipgloss.Style
	borderFocused lipgloss.Style
	lineNumber    lipgloss.Style
	separator     lipgloss.Style
	content       lipgloss.Style
	title         lipgloss.Style
	modeReadOnly  lipgloss.Style
	modeEditing   lipgloss.Style
	modeModified  lipgloss.Style
	statusBar     lipgloss.Style
	cursor        lipgloss.Style
	emptyLine     lipgloss.Style
}

// NewRawEditor creates a read-only editor
func NewRawEditor(th theme.Theme) *RawEditor {
	re := &RawEditor{
		lines:    []string{""},
		ReadOnly: true,
	}
	re.SetTheme(th)
	return re
}

// SetTheme applies th, including its chroma style
func (re *RawEditor) SetTheme(th theme.Theme) {
	re.Theme = th
	re.styles = &rawEditorStyles{
		border:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.Border),
		borderFocused: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.BorderFocused),
		lineNumber:    lipgloss.NewStyle().Foreground(th.Metadata),
		separator:     lipgloss.NewStyle().Foreground(th.Border),
		content:       lipgloss.NewStyle().Foreground(th.Foreground),
		title:         lipgloss.NewStyle().Foreground(th.Info).Bold(true),
		modeReadOnly:  lipgloss.NewStyle().Foreground(th.Metadata),
		modeEditing:   lipgloss.NewStyle().Foreground(th.Warning).Bold(true),
		modeModified:  lipgloss.NewStyle().Foreground(th.Error).Bold(true),
		statusBar:     lipgloss.NewStyle().Foreground(th.Metadata).Italic(true),
		cursor:        lipgloss.NewStyle().Foreground(th.Background).Background(th.Cursor),
		emptyLine:     lipgloss.NewStyle().Foreground(th.Metadata),
	}

	re.chromaStyle = styles.Get(th.ChromaStyle)
	if re.chromaStyle == nil {
		re.chromaStyle = styles.Fallback
	}
	re.chromaFormatter = formatters.Get("terminal256")
	if re.chromaFormatter == nil {
		re.chromaFormatter = formatters.Fallback
	}
	re.lexer = lexers.Get("json")
	if re.lexer != nil {
		re.lexer = chroma.Coalesce(re.lexer)
	}
}

// SetContent replaces the text and leaves edit mode
func (re *RawEditor) SetContent(content, title string) {
	if content == "" {
		re.lines = []string{""}
	} else {
		re.lines = strings.Split(content, "\n")
	}
	re.Original = content
	re.Title = title
	re.Modified = false
	re.ReadOnly = true
	re.cursorRow = 0
	re.cursorCol = 0
	re.scrollY = 0
}

// GetContent returns the full text
func (re *RawEditor) GetContent() string {
	return strings.Join(re.lines, "\n")
}

// EnterEditMode switches to edit mode
func (re *RawEditor) EnterEditMode() {
	re.ReadOnly = false
}

// ExitEditMode returns to read-only mode, optionally restoring the text
func (re *RawEditor) ExitEditMode(discardChanges bool) {
	if discardChanges && re.Modified {
		re.SetContent(re.Original, re.Title)
	}
	re.ReadOnly = true
}

// Editing reports whether the editor is in edit mode
func (re *RawEditor) Editing() bool { return !re.ReadOnly }

func (re *RawEditor) highlightLine(line string) string {
	if line == "" {
		return ""
	}
	if re.lexer == nil {
		return re.styles.content.Render(line)
	}

	iterator, err := re.lexer.Tokenise(nil, line)
	if err != nil {
		return re.styles.content.Render(line)
	}

	var buf bytes.Buffer
	if err := re.chromaFormatter.Format(&buf, re.chromaStyle, iterator); err != nil {
		return re.styles.content.Render(line)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (re *RawEditor) lineNumberWidth() int {
	digits := len(fmt.Sprintf("%d", max(len(re.lines), 10)))
	return digits + 3 // digits + " │ "
}

func (re *RawEditor) renderLine(lineNum int, contentWidth int) string {
	numWidth := re.lineNumberWidth()
	prefix := re.styles.lineNumber.Render(fmt.Sprintf("%*d", numWidth-3, lineNum+1)) +
		re.styles.separator.Render(" │ ")

	available := max(contentWidth-numWidth, 10)
	line := re.lines[lineNum]
	if runewidth.StringWidth(line) > available {
		line = runewidth.Truncate(line, available-1, "…")
	}

	if lineNum == re.cursorRow && !re.ReadOnly {
		return prefix + re.renderLineWithCursor(line)
	}
	return prefix + re.highlightLine(line)
}

// renderLineWithCursor draws the cursor line without highlighting
func (re *RawEditor) renderLineWithCursor(line string) string {
	runes := []rune(line)

	var b strings.Builder
	for i, r := range runes {
		if i == re.cursorCol {
			b.WriteString(re.styles.cursor.Render(string(r)))
		} else {
			b.WriteString(re.styles.content.Render(string(r)))
		}
	}
	if re.cursorCol >= len(runes) {
		b.WriteString(re.styles.cursor.Render(" "))
	}
	return b.String()
}

func (re *RawEditor) renderEmptyLine() string {
	return re.styles.emptyLine.Render(fmt.Sprintf("%*s", re.lineNumberWidth()-3, "~")) +
		re.styles.separator.Render(" │ ")
}

// View renders the editor
func (re *RawEditor) View() string {
	if re.Width <= 0 || re.Height <= 0 {
		return ""
	}

	borderStyle := re.styles.border
	if re.Focused || !re.ReadOnly {
		borderStyle = re.styles.borderFocused
	}

	contentWidth := max(re.Width-borderStyle.GetHorizontalFrameSize(), 20)
	// Title, title separator, bottom separator, status bar
	contentHeight := max(re.Height-borderStyle.GetVerticalFrameSize()-4, 1)

	re.ensureCursorVisible(contentHeight)

	lines := []string{re.renderTitleBar(contentWidth), re.renderSeparator(contentWidth)}
	end := min(re.scrollY+contentHeight, len(re.lines))
	for i := re.scrollY; i < end; i++ {
		lines = append(lines, re.renderLine(i, contentWidth))
	}
	for i := end - re.scrollY; i < contentHeight; i++ {
		lines = append(lines, re.renderEmptyLine())
	}
	lines = append(lines, re.renderSeparator(contentWidth), re.renderStatusBar(contentWidth))

	return borderStyle.Width(contentWidth).Render(strings.Join(lines, "\n"))
}

func (re *RawEditor) renderTitleBar(width int) string {
	title := re.Title
	if title == "" {
		title = "JSON"
	}

	var mode string
	switch {
	case re.ReadOnly:
		mode = re.styles.modeReadOnly.Render("[Read Only]")
	case re.Modified:
		mode = re.styles.modeModified.Render("[Modified *]")
	default:
		mode = re.styles.modeEditing.Render("[Editing]")
	}

	// Reserve the widest indicator so the title does not jump
	titleMax := width - runewidth.StringWidth("[Modified *]") - 2
	if runewidth.StringWidth(title) > titleMax {
		title = runewidth.Truncate(title, titleMax, "…")
	}

	padding := max(width-runewidth.StringWidth(title)-lipgloss.Width(mode), 1)
	return re.styles.title.Render(title) + strings.Repeat(" ", padding) + mode
}

func (re *RawEditor) renderSeparator(width int) string {
	return re.styles.separator.Render(strings.Repeat("─", width))
}

func (re *RawEditor) renderStatusBar(width int) string {
	var help []string
	if re.ReadOnly {
		help = []string{"e:edit", "y:copy"}
		if len(re.lines) > re.Height-5 {
			help = append([]string{"j/k:scroll"}, help...)
		}
	} else {
		help = []string{"Ctrl+S:apply", "Esc:cancel"}
	}
	helpText := strings.Join(help, "  ")

	var pos string
	if re.ReadOnly {
		percent := 100
		if len(re.lines) > 1 {
			percent = min(re.scrollY*100/(len(re.lines)-1), 100)
		}
		pos = fmt.Sprintf("Line %d/%d  %d%%", re.cursorRow+1, len(re.lines), percent)
	} else {
		pos = fmt.Sprintf("Ln %d, Col %d", re.cursorRow+1, re.cursorCol+1)
	}

	padding := max(width-runewidth.StringWidth(helpText)-runewidth.StringWidth(pos), 1)
	return re.styles.statusBar.Render(helpText) + strings.Repeat(" ", padding) + re.styles.statusBar.Render(pos)
}

func (re *RawEditor) ensureCursorVisible(height int) {
	if re.cursorRow < re.scrollY {
		re.scrollY = re.cursorRow
	}
	if re.cursorRow >= re.scrollY+height {
		re.scrollY = re.cursorRow - height + 1
	}
	re.scrollY = min(re.scrollY, max(len(re.lines)-height, 0))
	re.scrollY = max(re.scrollY, 0)
}

// Update handles keyboard input
func (re *RawEditor) Update(msg tea.KeyMsg) (*RawEditor, tea.Cmd) {
	if re.ReadOnly {
		return re.handleReadOnlyKeys(msg)
	}
	return re.handleEditKeys(msg)
}

func (re *RawEditor) handleReadOnlyKeys(msg tea.KeyMsg) (*RawEditor, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		re.scrollBy(1)
	case "k", "up":
		re.scrollBy(-1)
	case "g":
		re.scrollBy(-len(re.lines))
	case "G":
		re.scrollBy(len(re.lines))
	case "ctrl+d":
		re.scrollBy(re.pageSize())
	case "ctrl+u":
		re.scrollBy(-re.pageSize())
	case "e":
		re.EnterEditMode()
	}
	return re, nil
}

func (re *RawEditor) handleEditKeys(msg tea.KeyMsg) (*RawEditor, tea.Cmd) {
	switch msg.String() {
	case "left":
		re.moveCursorLeft()
	case "right":
		re.moveCursorRight()
	case "up":
		re.moveCursorVertical(-1)
	case "down":
		re.moveCursorVertical(1)
	case "home":
		re.cursorCol = 0
	case "end":
		re.cursorCol = re.lineLen(re.cursorRow)
	case "ctrl+home":
		re.cursorRow, re.cursorCol = 0, 0
	case "ctrl+end":
		re.cursorRow = len(re.lines) - 1
		re.cursorCol = re.lineLen(re.cursorRow)

	case "backspace":
		re.deleteCharBefore()
	case "delete":
		re.deleteCharAfter()
	case "enter":
		re.insertNewline()
	case "tab":
		re.insertText("  ")

	case "ctrl+s":
		text := re.GetContent()
		return re, func() tea.Msg { return RawCommitMsg{Text: text} }

	case "esc":
		re.ExitEditMode(true)

	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			re.insertText(string(msg.Runes))
		}
	}
	return re, nil
}

func (re *RawEditor) pageSize() int {
	return max(re.Height-5, 1)
}

func (re *RawEditor) scrollBy(delta int) {
	re.scrollY = min(max(re.scrollY+delta, 0), len(re.lines)-1)
	re.cursorRow = re.scrollY
	re.cursorCol = min(re.cursorCol, re.lineLen(re.cursorRow))
}

func (re *RawEditor) lineLen(row int) int {
	return len([]rune(re.lines[row]))
}

func (re *RawEditor) moveCursorLeft() {
	if re.cursorCol > 0 {
		re.cursorCol--
	} else if re.cursorRow > 0 {
		re.cursorRow--
		re.cursorCol = re.lineLen(re.cursorRow)
	}
}

func (re *RawEditor) moveCursorRight() {
	if re.cursorCol < re.lineLen(re.cursorRow) {
		re.cursorCol++
	} else if re.cursorRow < len(re.lines)-1 {
		re.cursorRow++
		re.cursorCol = 0
	}
}

func (re *RawEditor) moveCursorVertical(delta int) {
	row := re.cursorRow + delta
	if row < 0 || row >= len(re.lines) {
		return
	}
	re.cursorRow = row
	re.cursorCol = min(re.cursorCol, re.lineLen(row))
}

func (re *RawEditor) insertText(s string) {
	if s == "" {
		return
	}
	runes := []rune(re.lines[re.cursorRow])
	ins := []rune(s)

	out := make([]rune, 0, len(runes)+len(ins))
	out = append(out, runes[:re.cursorCol]...)
	out = append(out, ins...)
	out = append(out, runes[re.cursorCol:]...)

	re.lines[re.cursorRow] = string(out)
	re.cursorCol += len(ins)
	re.Modified = true
}

func (re *RawEditor) insertNewline() {
	runes := []rune(re.lines[re.cursorRow])
	before, after := string(runes[:re.cursorCol]), string(runes[re.cursorCol:])

	lines := make([]string, 0, len(re.lines)+1)
	lines = append(lines, re.lines[:re.cursorRow]...)
	lines = append(lines, before, after)
	lines = append(lines, re.lines[re.cursorRow+1:]...)
	re.lines = lines

	re.cursorRow++
	re.cursorCol = 0
	re.Modified = true
}

func (re *RawEditor) deleteCharBefore() {
	switch {
	case re.cursorCol > 0:
		runes := []rune(re.lines[re.cursorRow])
		re.lines[re.cursorRow] = string(runes[:re.cursorCol-1]) + string(runes[re.cursorCol:])
		re.cursorCol--
		re.Modified = true
	case re.cursorRow > 0:
		prev := re.lines[re.cursorRow-1]
		re.cursorCol = len([]rune(prev))
		re.lines[re.cursorRow-1] = prev + re.lines[re.cursorRow]
		re.lines = append(re.lines[:re.cursorRow], re.lines[re.cursorRow+1:]...)
		re.cursorRow--
		re.Modified = true
	}
}

func (re *RawEditor) deleteCharAfter() {
	runes := []rune(re.lines[re.cursorRow])
	switch {
	case re.cursorCol < len(runes):
		re.lines[re.cursorRow] = string(runes[:re.cursorCol]) + string(runes[re.cursorCol+1:])
		re.Modified = true
	case re.cursorRow < len(re.lines)-1:
		re.lines[re.cursorRow] += re.lines[re.cursorRow+1]
		re.lines = append(re.lines[:re.cursorRow+1], re.lines[re.cursorRow+2:]...)
		re.Modified = true
	}
}
