// tree.go - hierarchical category browser over the picker state machine.
// The view owns only presentation state (cursor, scroll window, size); the
// forest plus its expansion and search state live in pkg/picker.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/picker"
	"github.com/vanderheijden86/taxo/pkg/tree"
)

// Row is one visible line of a flattened forest. Depth and lastAtDepth
// drive the branch prefix; the node is shared with the picker snapshot.
type Row struct {
	Node  *tree.Node[model.Category]
	Depth int
	// lastAtDepth[d] reports whether the ancestor at depth d is the last
	// of its siblings, which decides between "│" and spaces in prefixes.
	lastAtDepth []bool
}

// flattenVisible walks the visible forest and returns the rows a view
// should draw: roots always, children only under expanded nodes. When a
// search is active the picker has already pruned and auto-expanded, so the
// same walk shows exactly the matches and their ancestor chains.
func flattenVisible(s picker.State[model.Category]) []Row {
	var rows []Row
	var walk func(nodes []*tree.Node[model.Category], depth int, trail []bool)
	walk = func(nodes []*tree.Node[model.Category], depth int, trail []bool) {
		for i, n := range nodes {
			last := i == len(nodes)-1
			lineage := append(append([]bool(nil), trail...), last)
			rows = append(rows, Row{Node: n, Depth: depth, lastAtDepth: lineage})
			if len(n.Children) > 0 && s.IsExpanded(n.ID) {
				walk(n.Children, depth+1, lineage)
			}
		}
	}
	walk(s.Visible, 0, nil)
	return rows
}

// branchPrefix renders the box-drawing prefix for a row.
func branchPrefix(r Row) string {
	if r.Depth == 0 {
		return ""
	}
	var b strings.Builder
	for d := 1; d < r.Depth; d++ {
		if r.lastAtDepth[d] {
			b.WriteString("   ")
		} else {
			b.WriteString("│  ")
		}
	}
	if r.lastAtDepth[r.Depth] {
		b.WriteString("└─ ")
	} else {
		b.WriteString("├─ ")
	}
	return b.String()
}

// TreeView is the main category browser. It drives a single-mode picker:
// expansion and search live in the picker so reloads and searches keep
// exactly the semantics of the re-parent and scope pickers.
type TreeView struct {
	picker *picker.Picker[model.Category]
	state  picker.State[model.Category]
	cats   []model.Category
	rows   []Row

	cursor int
	offset int
	width  int
	height int
	theme  Theme
}

// NewTreeView builds the browser over the given categories.
func NewTreeView(cats []model.Category, theme Theme) *TreeView {
	t := &TreeView{
		picker: picker.New(cats, model.TreeAccessors(), picker.Config{Searchable: true}, nil),
		cats:   cats,
		theme:  theme,
		width:  80,
		height: 24,
	}
	t.refresh(t.picker.Snapshot())
	return t
}

// SetSize updates the available drawing area.
func (t *TreeView) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// SetRecords swaps in reloaded categories. The picker keeps expansion for
// surviving ids; the view keeps the cursor on the same category when it
// still exists.
func (t *TreeView) SetRecords(cats []model.Category) {
	keep := ""
	if c := t.SelectedCategory(); c != nil {
		keep = c.ID
	}
	t.cats = cats
	t.refresh(t.picker.SetRecords(cats))
	if keep != "" {
		t.CursorTo(keep)
	}
}

// SetSort rebuilds the forest with a different sibling comparator. The
// picker is rebuilt because the comparator travels with the accessors;
// expansion and search are re-seeded from the old snapshot.
func (t *TreeView) SetSort(less func(a, b *tree.Node[model.Category]) bool) {
	keep := ""
	if c := t.SelectedCategory(); c != nil {
		keep = c.ID
	}
	expanded := t.state.ExpandedIDs()
	term := t.state.SearchTerm

	t.picker = picker.New(t.cats, model.TreeAccessorsSorted(less), picker.Config{Searchable: true}, nil)
	s := t.picker.Snapshot()
	for _, id := range expanded {
		s = t.picker.ToggleExpand(id)
	}
	if term != "" {
		s = t.picker.SetSearchTerm(term)
	}
	t.refresh(s)
	if keep != "" {
		t.CursorTo(keep)
	}
}

// Categories returns the records currently backing the view.
func (t *TreeView) Categories() []model.Category {
	return t.cats
}

// SetSearchTerm filters the visible forest; ancestors of matches expand
// automatically so every match is on screen.
func (t *TreeView) SetSearchTerm(term string) {
	t.refresh(t.picker.SetSearchTerm(term))
	t.cursor = 0
	t.offset = 0
}

// SearchTerm returns the active filter term.
func (t *TreeView) SearchTerm() string {
	return t.state.SearchTerm
}

// ClearSearch restores the unfiltered forest.
func (t *TreeView) ClearSearch() {
	if t.state.SearchTerm == "" {
		return
	}
	keep := ""
	if c := t.SelectedCategory(); c != nil {
		keep = c.ID
	}
	t.refresh(t.picker.SetSearchTerm(""))
	if keep != "" {
		t.CursorTo(keep)
	}
}

// refresh replaces the snapshot and reflattens, clamping the cursor.
func (t *TreeView) refresh(s picker.State[model.Category]) {
	t.state = s
	t.rows = flattenVisible(s)
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// Len returns the number of visible rows.
func (t *TreeView) Len() int { return len(t.rows) }

// Cursor returns the current row index.
func (t *TreeView) Cursor() int { return t.cursor }

// SelectedNode returns the node under the cursor, or nil on an empty view.
func (t *TreeView) SelectedNode() *tree.Node[model.Category] {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return nil
	}
	return t.rows[t.cursor].Node
}

// SelectedCategory returns the category under the cursor, or nil.
func (t *TreeView) SelectedCategory() *model.Category {
	n := t.SelectedNode()
	if n == nil {
		return nil
	}
	rec := n.Record
	return &rec
}

// SelectedPath returns the labels from the root down to the cursor node.
func (t *TreeView) SelectedPath() []string {
	n := t.SelectedNode()
	if n == nil {
		return nil
	}
	ids := tree.FindPath(t.state.Visible, n.Value)
	if ids == nil {
		return nil
	}
	index := tree.IndexAll(t.state.Visible)
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if node, ok := index[id]; ok {
			labels = append(labels, node.Label)
		}
	}
	return labels
}

// CursorTo moves the cursor to the row holding value, expanding its
// ancestors first so the row exists. Unknown values leave the cursor put.
func (t *TreeView) CursorTo(value string) bool {
	path := tree.FindPath(t.state.Visible, value)
	if path == nil {
		return false
	}
	// Expand every ancestor; the target itself stays as it was.
	for _, id := range path[:len(path)-1] {
		if !t.state.IsExpanded(id) {
			t.refresh(t.picker.ToggleExpand(id))
		}
	}
	for i, r := range t.rows {
		if r.Node.Value == value {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// MoveUp moves the cursor one row up.
func (t *TreeView) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// MoveDown moves the cursor one row down.
func (t *TreeView) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// JumpTop moves the cursor to the first row.
func (t *TreeView) JumpTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpBottom moves the cursor to the last row.
func (t *TreeView) JumpBottom() {
	if len(t.rows) > 0 {
		t.cursor = len(t.rows) - 1
	}
	t.ensureCursorVisible()
}

// PageDown moves the cursor a full page forward.
func (t *TreeView) PageDown() {
	page := t.visibleCount()
	t.cursor += page
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// PageUp moves the cursor a full page back.
func (t *TreeView) PageUp() {
	t.cursor -= t.visibleCount()
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// ToggleExpand flips expansion of the node under the cursor.
func (t *TreeView) ToggleExpand() {
	n := t.SelectedNode()
	if n == nil || len(n.Children) == 0 {
		return
	}
	t.refresh(t.picker.ToggleExpand(n.ID))
}

// CollapseOrParent collapses an expanded node, otherwise jumps to its
// parent. Mirrors the h/left convention of tree browsers.
func (t *TreeView) CollapseOrParent() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	if len(n.Children) > 0 && t.state.IsExpanded(n.ID) {
		t.refresh(t.picker.ToggleExpand(n.ID))
		return
	}
	path := tree.FindPath(t.state.Visible, n.Value)
	if len(path) < 2 {
		return
	}
	t.CursorTo(path[len(path)-2])
}

// ExpandOrChild expands a collapsed node, otherwise steps into its first
// child. Mirrors the l/right convention.
func (t *TreeView) ExpandOrChild() {
	n := t.SelectedNode()
	if n == nil || len(n.Children) == 0 {
		return
	}
	if !t.state.IsExpanded(n.ID) {
		t.refresh(t.picker.ToggleExpand(n.ID))
		return
	}
	t.CursorTo(n.Children[0].Value)
}

// ExpandAll expands every node that has children.
func (t *TreeView) ExpandAll() {
	var s picker.State[model.Category]
	changed := false
	var walk func(nodes []*tree.Node[model.Category])
	walk = func(nodes []*tree.Node[model.Category]) {
		for _, n := range nodes {
			if len(n.Children) > 0 && !t.state.IsExpanded(n.ID) {
				s = t.picker.ToggleExpand(n.ID)
				changed = true
			}
			walk(n.Children)
		}
	}
	walk(t.state.Visible)
	if changed {
		t.refresh(s)
	}
}

// CollapseAll collapses every expanded node and parks the cursor on the
// selected row's root.
func (t *TreeView) CollapseAll() {
	n := t.SelectedNode()
	rootValue := ""
	if n != nil {
		if path := tree.FindPath(t.state.Visible, n.Value); len(path) > 0 {
			rootValue = path[0]
		}
	}
	var s picker.State[model.Category]
	changed := false
	for _, id := range t.state.ExpandedIDs() {
		s = t.picker.ToggleExpand(id)
		changed = true
	}
	if changed {
		t.refresh(s)
	}
	if rootValue != "" {
		t.CursorTo(rootValue)
	}
}

// visibleCount returns how many rows fit in the current height, leaving a
// line for the position indicator.
func (t *TreeView) visibleCount() int {
	h := t.height - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (t *TreeView) ensureCursorVisible() {
	count := t.visibleCount()
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+count {
		t.offset = t.cursor - count + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// visibleRange returns the half-open row range currently on screen.
func (t *TreeView) visibleRange() (int, int) {
	start := t.offset
	end := start + t.visibleCount()
	if end > len(t.rows) {
		end = len(t.rows)
	}
	return start, end
}

// View renders the visible window of the tree.
func (t *TreeView) View() string {
	if len(t.rows) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		line := t.renderRow(t.rows[i], i == t.cursor)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(t.rows) > t.visibleCount() {
		sb.WriteString(t.renderPositionIndicator(start, end))
	}

	return sb.String()
}

func (t *TreeView) renderEmptyState() string {
	r := t.theme.Renderer
	title := r.NewStyle().Foreground(t.theme.Primary).Bold(true)
	muted := r.NewStyle().Foreground(t.theme.Muted)

	var sb strings.Builder
	if t.state.SearchTerm != "" {
		sb.WriteString(title.Render("No matches"))
		sb.WriteString("\n\n")
		sb.WriteString(muted.Render(fmt.Sprintf("Nothing matches %q.", t.state.SearchTerm)))
		sb.WriteString("\n")
		sb.WriteString(muted.Render("Press esc to clear the search."))
		return sb.String()
	}
	sb.WriteString(title.Render("Empty catalog"))
	sb.WriteString("\n\n")
	sb.WriteString(muted.Render("No categories to display."))
	sb.WriteString("\n")
	sb.WriteString(muted.Render("Point taxo at a catalog directory or set TAXO_DIR."))
	return sb.String()
}

// expandIndicator returns the marker before a node: ▸ collapsed,
// ▾ expanded, space for leaves.
func (t *TreeView) expandIndicator(n *tree.Node[model.Category]) string {
	if len(n.Children) == 0 {
		return "  "
	}
	if t.state.IsExpanded(n.ID) {
		return "▾ "
	}
	return "▸ "
}

// renderRow renders one line: prefix, expand marker, status icon, name,
// SKU count and child count, truncated to the view width.
func (t *TreeView) renderRow(row Row, selected bool) string {
	n := row.Node
	r := t.theme.Renderer
	width := t.width
	if width <= 0 {
		width = 80
	}
	// Keep off the terminal's last column so lines never wrap; the
	// selected style adds a border and padding column on the left.
	width--
	if selected {
		width -= 2
	}

	prefix := branchPrefix(row)
	indicator := t.expandIndicator(n)
	icon := StatusIcon(n.Record.Status)

	meta := ""
	if c := formatSKUCount(n.Record.SKUCount); c != "" {
		meta = " " + c + " SKUs"
	}
	if len(n.Children) > 0 {
		meta += fmt.Sprintf(" [%d]", len(n.Children))
	}

	used := lipgloss.Width(prefix) + lipgloss.Width(indicator) + lipgloss.Width(icon) + 1 + lipgloss.Width(meta)
	name := truncate(n.Label, width-used)

	iconStyled := r.NewStyle().Foreground(t.theme.StatusColor(n.Record.Status)).Render(icon)
	nameStyled := name
	switch {
	case n.Disabled:
		nameStyled = t.theme.DisabledText.Render(name)
	case selected:
		nameStyled = t.theme.PrimaryBold.Render(name)
	default:
		nameStyled = t.theme.Base.Render(name)
	}

	line := prefix + indicator + iconStyled + " " + nameStyled
	if meta != "" {
		line += t.theme.MutedText.Render(meta)
	}

	if selected {
		return t.theme.Selected.Render(line)
	}
	return line
}

// renderPositionIndicator shows "12-24 of 310" when the tree scrolls.
func (t *TreeView) renderPositionIndicator(start, end int) string {
	indicator := fmt.Sprintf(" %d-%d of %d", start+1, end, len(t.rows))
	return t.theme.MutedText.Render(indicator)
}
