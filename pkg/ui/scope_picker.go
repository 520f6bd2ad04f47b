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

// scopeTagLimit caps how many selected names the summary row spells out
// when the config does not say otherwise.
const scopeTagLimit = 4

// ScopePicker is the overlay for choosing an export scope: a multi-mode
// picker where toggling a category cascades through its subtree. The
// selection summary shows the first few names plus an overflow count.
type ScopePicker struct {
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

// NewScopePicker builds the overlay over records, seeding the selection
// with initial ids (normally the previous export scope). tagLimit caps the
// summary row; zero or negative means the default.
func NewScopePicker(records []model.Category, initial []string, tagLimit int, theme Theme) *ScopePicker {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 50
	ti.Width = 30
	ti.Focus()

	if tagLimit <= 0 {
		tagLimit = scopeTagLimit
	}
	p := &ScopePicker{
		picker: picker.New(records, model.TreeAccessors(), picker.Config{
			Multiple:    true,
			Searchable:  true,
			MaxTagCount: tagLimit,
		}, initial),
		input: ti,
		theme: theme,
	}
	p.refresh(p.picker.Open())
	p.expandRoots()
	return p
}

func (p *ScopePicker) expandRoots() {
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

func (p *ScopePicker) refresh(s picker.State[model.Category]) {
	p.state = s
	p.rows = flattenVisible(s)
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// SetSize updates the available screen area the overlay centers in.
func (p *ScopePicker) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// MoveUp moves the cursor one row up.
func (p *ScopePicker) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the cursor one row down.
func (p *ScopePicker) MoveDown() {
	if p.cursor < len(p.rows)-1 {
		p.cursor++
	}
}

// ToggleExpand folds or unfolds the node under the cursor.
func (p *ScopePicker) ToggleExpand() {
	n := p.selectedNode()
	if n == nil || len(n.Children) == 0 {
		return
	}
	p.refresh(p.picker.ToggleExpand(n.ID))
}

// Toggle flips the selection of the node under the cursor, cascading
// through its subtree. Disabled rows are no-ops.
func (p *ScopePicker) Toggle() {
	n := p.selectedNode()
	if n == nil {
		return
	}
	p.refresh(p.picker.ToggleMulti(n.Value))
}

// ClearSelection empties the scope.
func (p *ScopePicker) ClearSelection() {
	p.refresh(p.picker.Clear())
}

// Values returns the selected ids in selection order.
func (p *ScopePicker) Values() []string {
	return p.state.Values
}

func (p *ScopePicker) selectedNode() *tree.Node[model.Category] {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return nil
	}
	return p.rows[p.cursor].Node
}

// UpdateInput forwards a key message to the filter input and re-filters
// the forest.
func (p *ScopePicker) UpdateInput(msg interface{}) {
	p.input, _ = p.input.Update(msg)
	p.refresh(p.picker.SetSearchTerm(p.input.Value()))
	p.cursor = 0
	p.offset = 0
}

// View renders the centered overlay.
func (p *ScopePicker) View() string {
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

	maxVisible := 11
	if height < 20 {
		maxVisible = height - 9
	}
	if maxVisible < 3 {
		maxVisible = 3
	}

	var lines []string

	title := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
	lines = append(lines, title.Render("Export scope"))
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
	lines = append(lines, p.renderSummary(boxWidth-6))

	footer := t.Renderer.NewStyle().Foreground(t.Secondary).Italic(true)
	lines = append(lines, footer.Render("space toggle · ←/→ fold · enter export · ctrl+x clear · esc cancel"))

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// renderSummary shows the selected names, truncated to the tag limit with
// a "+N more" suffix.
func (p *ScopePicker) renderSummary(avail int) string {
	labels, overflow := p.state.SummaryTags()
	if len(labels) == 0 {
		return p.theme.MutedText.Render("Nothing selected")
	}
	text := strings.Join(labels, ", ")
	if overflow > 0 {
		text += fmt.Sprintf(" +%d more", overflow)
	}
	n := len(p.state.Values)
	label := fmt.Sprintf("%d %s: ", n, pluralize(n, "category", "categories"))
	return p.theme.SecondaryText.Render(label) + truncate(text, avail-lipgloss.Width(label))
}

func (p *ScopePicker) renderRow(row Row, selected bool, avail int) string {
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
	check := "[ ] "
	if p.state.IsSelected(n.Value) {
		check = "[x] "
	}

	name := truncate(n.Label, avail-lipgloss.Width(cursorMark+indent+fold+check))

	switch {
	case n.Disabled:
		return cursorMark + indent + fold + t.DisabledText.Render(check+name)
	case selected:
		return t.PrimaryBold.Render(cursorMark + indent + fold + check + name)
	case p.state.IsSelected(n.Value):
		return cursorMark + indent + fold + t.SuccessText.Render(check+name)
	default:
		return cursorMark + indent + fold + check + t.Base.Render(name)
	}
}
