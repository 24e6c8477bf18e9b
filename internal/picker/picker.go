// Package picker provides an interactive terminal tree for adjusting the
// selection before merging.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ppaja/filemerge/internal/tree"
	"github.com/Ppaja/filemerge/internal/utils"
)

const (
	checkboxSelected   = "[x]"
	checkboxUnselected = "[ ]"
	checkboxPartial    = "[~]"
	ignoredSuffix      = " (ignored)"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	ignoredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sizeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Collapse    key.Binding
	Expand      key.Binding
	SelectAll   key.Binding
	DeselectAll key.Binding
	Confirm     key.Binding
	Abort       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Collapse:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Expand:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		SelectAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		DeselectAll: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "select none")),
		Confirm:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "merge")),
		Abort:       key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc/q", "abort")),
	}
}

// ShortHelp implements help.KeyMap.
func (bindings keyMap) ShortHelp() []key.Binding {
	return []key.Binding{bindings.Toggle, bindings.SelectAll, bindings.DeselectAll, bindings.Confirm, bindings.Abort}
}

// FullHelp implements help.KeyMap.
func (bindings keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{bindings.Up, bindings.Down, bindings.Collapse, bindings.Expand},
		{bindings.Toggle, bindings.SelectAll, bindings.DeselectAll},
		{bindings.Confirm, bindings.Abort},
	}
}

type row struct {
	node  *tree.Node
	depth int
}

// Model is the bubbletea model for the selection picker.
type Model struct {
	rootNode  *tree.Node
	keys      keyMap
	help      help.Model
	collapsed map[string]bool
	rows      []row
	cursor    int
	offset    int
	width     int
	height    int
	confirmed bool
	aborted   bool
}

// New builds a picker over the given tree. The tree is mutated in place as
// the user toggles entries.
func New(rootNode *tree.Node) Model {
	pickerModel := Model{
		rootNode:  rootNode,
		keys:      defaultKeyMap(),
		help:      help.New(),
		collapsed: map[string]bool{},
	}
	pickerModel.rebuildRows()
	return pickerModel
}

// Confirmed reports whether the user accepted the selection.
func (pickerModel Model) Confirmed() bool {
	return pickerModel.confirmed
}

// Aborted reports whether the user abandoned the picker.
func (pickerModel Model) Aborted() bool {
	return pickerModel.aborted
}

// Init implements tea.Model.
func (pickerModel Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (pickerModel Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case tea.WindowSizeMsg:
		pickerModel.width = typedMessage.Width
		pickerModel.height = typedMessage.Height
		pickerModel.help.Width = typedMessage.Width
		pickerModel.scrollToCursor()
		return pickerModel, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(typedMessage, pickerModel.keys.Up):
			if pickerModel.cursor > 0 {
				pickerModel.cursor--
			}
			pickerModel.scrollToCursor()
		case key.Matches(typedMessage, pickerModel.keys.Down):
			if pickerModel.cursor < len(pickerModel.rows)-1 {
				pickerModel.cursor++
			}
			pickerModel.scrollToCursor()
		case key.Matches(typedMessage, pickerModel.keys.Toggle):
			pickerModel.toggleCurrent()
		case key.Matches(typedMessage, pickerModel.keys.Collapse):
			pickerModel.setCollapsed(true)
		case key.Matches(typedMessage, pickerModel.keys.Expand):
			pickerModel.setCollapsed(false)
		case key.Matches(typedMessage, pickerModel.keys.SelectAll):
			tree.SelectAll(pickerModel.rootNode)
		case key.Matches(typedMessage, pickerModel.keys.DeselectAll):
			tree.DeselectAll(pickerModel.rootNode)
		case key.Matches(typedMessage, pickerModel.keys.Confirm):
			pickerModel.confirmed = true
			return pickerModel, tea.Quit
		case key.Matches(typedMessage, pickerModel.keys.Abort):
			pickerModel.aborted = true
			return pickerModel, tea.Quit
		}
		return pickerModel, nil
	}
	return pickerModel, nil
}

func (pickerModel *Model) toggleCurrent() {
	currentNode := pickerModel.currentNode()
	if currentNode == nil {
		return
	}
	desired := tree.Selected
	if currentNode.Selection == tree.Selected {
		desired = tree.Unselected
	}
	tree.Toggle(currentNode, desired)
}

func (pickerModel *Model) setCollapsed(collapsed bool) {
	currentNode := pickerModel.currentNode()
	if currentNode == nil || !currentNode.IsDir() {
		return
	}
	pickerModel.collapsed[currentNode.RelativePath] = collapsed
	pickerModel.rebuildRows()
	if pickerModel.cursor >= len(pickerModel.rows) {
		pickerModel.cursor = len(pickerModel.rows) - 1
	}
	pickerModel.scrollToCursor()
}

// visibleHeight returns the number of rows the viewport can show, leaving
// room for the title and help footer.
func (pickerModel Model) visibleHeight() int {
	visibleHeight := pickerModel.height - 4
	if visibleHeight < 1 {
		visibleHeight = len(pickerModel.rows)
	}
	return visibleHeight
}

// scrollToCursor moves the window so the cursor row stays visible.
func (pickerModel *Model) scrollToCursor() {
	visibleHeight := pickerModel.visibleHeight()
	if pickerModel.cursor < pickerModel.offset {
		pickerModel.offset = pickerModel.cursor
	}
	if pickerModel.cursor >= pickerModel.offset+visibleHeight {
		pickerModel.offset = pickerModel.cursor - visibleHeight + 1
	}
}

func (pickerModel *Model) currentNode() *tree.Node {
	if pickerModel.cursor < 0 || pickerModel.cursor >= len(pickerModel.rows) {
		return nil
	}
	return pickerModel.rows[pickerModel.cursor].node
}

// rebuildRows flattens the tree into visible rows, skipping the children of
// collapsed directories.
func (pickerModel *Model) rebuildRows() {
	pickerModel.rows = pickerModel.rows[:0]
	pickerModel.appendRows(pickerModel.rootNode, 0)
}

func (pickerModel *Model) appendRows(parentNode *tree.Node, depth int) {
	for _, childNode := range parentNode.Children {
		pickerModel.rows = append(pickerModel.rows, row{node: childNode, depth: depth})
		if childNode.IsDir() && !pickerModel.collapsed[childNode.RelativePath] {
			pickerModel.appendRows(childNode, depth+1)
		}
	}
}

// View implements tea.Model.
func (pickerModel Model) View() string {
	var builder strings.Builder
	builder.WriteString(titleStyle.Render(fmt.Sprintf("Select files to merge: %s", pickerModel.rootNode.Path)))
	builder.WriteString("\n\n")

	visibleHeight := pickerModel.visibleHeight()
	offset := pickerModel.offset

	for rowIndex := offset; rowIndex < len(pickerModel.rows) && rowIndex < offset+visibleHeight; rowIndex++ {
		builder.WriteString(pickerModel.renderRow(rowIndex))
		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	builder.WriteString(pickerModel.help.View(pickerModel.keys))
	return builder.String()
}

func (pickerModel Model) renderRow(rowIndex int) string {
	currentRow := pickerModel.rows[rowIndex]
	node := currentRow.node

	checkbox := checkboxUnselected
	switch node.Selection {
	case tree.Selected:
		checkbox = checkboxSelected
	case tree.Partial:
		checkbox = checkboxPartial
	}

	name := node.Name
	if node.IsDir() {
		name += "/"
		if pickerModel.collapsed[node.RelativePath] {
			name += " …"
		}
	}

	line := strings.Repeat("  ", currentRow.depth) + checkbox + " " + name
	if !node.IsDir() {
		line += " " + sizeStyle.Render("("+utils.FormatFileSize(node.SizeBytes)+")")
	}
	if node.Ignored {
		line = ignoredStyle.Render(line + ignoredSuffix)
	}

	pointer := "  "
	if rowIndex == pickerModel.cursor {
		pointer = cursorStyle.Render("> ")
		line = cursorStyle.Render(line)
	}
	return pointer + line
}

// Run shows the picker and blocks until the user confirms or aborts. It
// returns true when the selection was confirmed.
func Run(rootNode *tree.Node) (bool, error) {
	program := tea.NewProgram(New(rootNode), tea.WithAltScreen())
	finalModel, runError := program.Run()
	if runError != nil {
		return false, runError
	}
	finalPicker, isPicker := finalModel.(Model)
	if !isPicker {
		return false, fmt.Errorf("picker: unexpected final model type %T", finalModel)
	}
	return finalPicker.Confirmed(), nil
}
