package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/picker"
	"github.com/vanderheijden86/taxo/pkg/tree"
)

// ParentPicker is the overlay for moving a category under a new parent.
// It runs a single-mode picker whose forest disables the moving category
// and its whole subtree, so every choice the cursor can land on is at
// least acyclic. Choose still validates before reporting a result because
// records may have been reloaded while the overlay was open.
type ParentPicker struct {
	records []model.Category
	child   model.Category
	acc     tree.Accessors[model.Category]

	picker *picker.Picker[model.Category]
	state  picker.State[model.Category]
	rows   []Row

	input  textinput.Model
	cursor int
	offset int
	width  int
	height int
	theme  Theme
}

// NewParentPicker builds the overlay for re-parenting child within
// records. Invalid choices (child itself, its descendants, non-selectable
// statuses) are shown disabled. The current parent is pre-selected so it
// is expanded and marked.
func NewParentPicker(records []model.Category, child model.Category, theme Theme) *ParentPicker {
	acc := model.TreeAccessors()
	invalid := tree.InvalidParents(records, acc, child.ID)
	base := acc.Disabled
	acc.Disabled = func(c model.Category) bool {
		return base(c) || invalid[c.ID]
	}

	var initial []string
	if child.ParentID != "" {
		initial = []string{child.ParentID}
	}

	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 50
	ti.Width = 30
	ti.Focus()

	p := &ParentPicker{
		records: records,
		child:   child,
		acc:     acc,
		picker:  picker.New(records, acc, picker.Config{Searchable: true}, initial),
		input:   ti,
		theme:   theme,
	}
	p.refresh(p.picker.Open())
	p.expandRoots()
	p.cursorToValue(child.ParentID)
	return p
}

// expandRoots opens the first level so the hierarchy is navigable without
// a search term.
func (p *ParentPicker) expandRoots() {
	s := p.state
	changed := false
	for _, root := range s.Visible {
		if len(root.Children) > 0 && !s.IsExpanded(root.ID) {
			s = p.picker.ToggleExpand(root.ID)
			changed = true
		}
	}
	if changed {
		p.refresh(s)
	}
}

func (p *ParentPicker) refresh(s picker.State[model.Category]) {
	p.state = s
	p.rows = flattenVisible(s)
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *ParentPicker) cursorToValue(value string) {
	if value == "" {
		return
	}
	for i, r := range p.rows {
		if r.Node.Value == value {
			p.cursor = i
			return
		}
	}
}

// SetSize updates the available screen area the overlay centers in.
func (p *ParentPicker) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Child returns the category being moved.
func (p *ParentPicker) Child() model.Category { return p.child }

// MoveUp moves the cursor one row up.
func (p *ParentPicker) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the cursor one row down.
func (p *ParentPicker) MoveDown() {
	if p.cursor < len(p.rows)-1 {
		p.cursor++
	}
}

// ToggleExpand folds or unfolds the node under the cursor.
func (p *ParentPicker) ToggleExpand() {
	n := p.selectedNode()
	if n == nil || len(n.Children) == 0 {
		return
	}
	p.refresh(p.picker.ToggleExpand(n.ID))
}

// Collapse folds the node under the cursor.
func (p *ParentPicker) Collapse() {
	n := p.selectedNode()
	if n == nil || len(n.Children) == 0 || !p.state.IsExpanded(n.ID) {
		return
	}
	p.refresh(p.picker.ToggleExpand(n.ID))
}

// Expand unfolds the node under the cursor.
func (p *ParentPicker) Expand() {
	n := p.selectedNode()
	if n == nil || len(n.Children) == 0 || p.state.IsExpanded(n.ID) {
		return
	}
	p.refresh(p.picker.ToggleExpand(n.ID))
}

func (p *ParentPicker) selectedNode() *tree.Node[model.Category] {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return nil
	}
	return p.rows[p.cursor].Node
}

// UpdateInput forwards a key message to the filter input and re-filters
// the forest.
func (p *ParentPicker) UpdateInput(msg interface{}) {
	p.input, _ = p.input.Update(msg)
	p.refresh(p.picker.SetSearchTerm(p.input.Value()))
	p.cursor = 0
	p.offset = 0
}

// Choose validates the node under the cursor as the new parent and
// returns its id. Disabled rows and stale cursors return an error; the
// cycle check runs against the current records regardless of what the
// forest shows.
func (p *ParentPicker) Choose() (string, error) {
	n := p.selectedNode()
	if n == nil {
		return "", fmt.Errorf("no parent selected")
	}
	if n.Disabled {
		if !n.Record.Status.IsSelectable() {
			return "", fmt.Errorf("%s is %s and cannot take children", n.Label, n.Record.Status)
		}
		return "", fmt.Errorf("%w: %s is inside the subtree being moved", tree.ErrCycle, n.Label)
	}
	if err := tree.ValidateReparent(p.records, model.TreeAccessors(), p.child.ID, n.ID); err != nil {
		return "", err
	}
	p.picker.SelectSingle(n.Value)
	return n.ID, nil
}

// ChooseRoot validates moving the child to the top level.
func (p *ParentPicker) ChooseRoot() (string, error) {
	if err := tree.ValidateReparent(p.records, model.TreeAccessors(), p.child.ID, ""); err != nil {
		return "", err
	}
	return "", nil
}

// View renders the centered overlay.
func (p *ParentPicker) View() string {
	width := p.width
	if width == 0 {
		width = 80
	}
	height := p.height
	if height == 0 {
		height = 24
	}

	t := p.theme
	boxWidth := 56
	if width < 66 {
		boxWidth = width - 10
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	maxVisible := 12
	if height < 20 {
		maxVisible = height - 8
	}
	if maxVisible < 3 {
		maxVisible = 3
	}

	var lines []string

	title := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
	lines = append(lines, title.Render("Move "+truncate(p.child.Name, boxWidth-12)))
	lines = append(lines, "")

	inputStyle := t.Renderer.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Secondary).
		Padding(0, 1).
		Width(boxWidth - 6)
	lines = append(lines, inputStyle.Render(p.input.View()))
	lines = append(lines, "")

	if len(p.rows) == 0 {
		lines = append(lines, t.MutedText.Render("  No matching categories"))
	} else {
		start := p.offset
		if p.cursor < start {
			start = p.cursor
		}
		if p.cursor >= start+maxVisible {
			start = p.cursor - maxVisible + 1
		}
		p.offset = start
		end := start + maxVisible
		if end > len(p.rows) {
			end = len(p.rows)
		}
		for i := start; i < end; i++ {
			lines = append(lines, p.renderRow(p.rows[i], i == p.cursor, boxWidth-6))
		}
		if len(p.rows) > maxVisible {
			lines = append(lines, t.MutedText.Render(fmt.Sprintf("  %d/%d", p.cursor+1, len(p.rows))))
		}
	}

	lines = append(lines, "")
	footer := t.Renderer.NewStyle().Foreground(t.Secondary).Italic(true)
	lines = append(lines, footer.Render("↑/↓ move · ←/→ fold · enter choose · ctrl+r top level · esc cancel"))

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (p *ParentPicker) renderRow(row Row, selected bool, avail int) string {
	t := p.theme
	n := row.Node

	cursorMark := "  "
	if selected {
		cursorMark = "> "
	}
	indent := strings.Repeat("  ", row.Depth)
	fold := "  "
	if len(n.Children) > 0 {
		if p.state.IsExpanded(n.ID) {
			fold = "▾ "
		} else {
			fold = "▸ "
		}
	}

	marker := ""
	if n.ID == p.child.ParentID {
		marker = " (current)"
	}

	name := truncate(n.Label, avail-lipgloss.Width(cursorMark+indent+fold)-lipgloss.Width(marker))

	switch {
	case n.Disabled:
		return cursorMark + indent + fold + t.DisabledText.Render(name+marker)
	case selected:
		return t.PrimaryBold.Render(cursorMark+indent+fold+name) + t.MutedText.Render(marker)
	default:
		return cursorMark + indent + fold + t.Base.Render(name) + t.MutedText.Render(marker)
	}
}
