package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/tree"
	"github.com/vanderheijden86/taxo/pkg/workspace"
)

// PaletteEntryKind discriminates what choosing a palette entry does.
type PaletteEntryKind int

const (
	// PaletteJump moves the tree cursor to a category.
	PaletteJump PaletteEntryKind = iota
	// PaletteCatalog switches to another registered catalog.
	PaletteCatalog
)

// PaletteEntry is one row of the jump palette.
type PaletteEntry struct {
	Kind   PaletteEntryKind
	ID     string
	Title  string
	Detail string
	Ref    workspace.CatalogRef
}

// searchText is what the fuzzy matcher sees for this entry.
func (e PaletteEntry) searchText() string {
	return e.Title + " " + e.Detail
}

// Palette is the ctrl+k overlay: fuzzy search across every category of
// the open catalog plus every registered catalog. Categories jump the
// cursor; catalogs switch the data directory.
type Palette struct {
	entries  []PaletteEntry
	filtered []PaletteEntry

	input  textinput.Model
	cursor int
	offset int
	width  int
	height int
	theme  Theme
}

// NewPalette builds the overlay from the open catalog's categories and
// the registered catalog summaries. Category entries carry their
// root-to-node breadcrumb so deep names stay distinguishable.
func NewPalette(cats []model.Category, refs []workspace.CatalogRef, theme Theme) *Palette {
	forest := tree.Build(cats, model.TreeAccessors())

	entries := make([]PaletteEntry, 0, len(cats)+len(refs))
	var walk func(nodes []*tree.Node[model.Category], trail []string)
	walk = func(nodes []*tree.Node[model.Category], trail []string) {
		for _, n := range nodes {
			entries = append(entries, PaletteEntry{
				Kind:   PaletteJump,
				ID:     n.ID,
				Title:  n.Label,
				Detail: strings.Join(trail, " / "),
			})
			walk(n.Children, append(trail, n.Label))
		}
	}
	walk(forest, nil)

	for _, ref := range refs {
		if ref.Err != nil {
			continue
		}
		entries = append(entries, PaletteEntry{
			Kind:   PaletteCatalog,
			ID:     ref.Path,
			Title:  ref.Name,
			Detail: fmt.Sprintf("catalog · %d categories", ref.CategoryCount),
			Ref:    ref,
		})
	}

	ti := textinput.New()
	ti.Placeholder = "jump to category or catalog..."
	ti.CharLimit = 60
	ti.Width = 38
	ti.Focus()

	return &Palette{
		entries:  entries,
		filtered: entries,
		input:    ti,
		theme:    theme,
	}
}

// SetSize updates the available screen area the overlay centers in.
func (p *Palette) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// MoveUp moves the cursor one row up.
func (p *Palette) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the cursor one row down.
func (p *Palette) MoveDown() {
	if p.cursor < len(p.filtered)-1 {
		p.cursor++
	}
}

// Selected returns the entry under the cursor, or nil when the filter
// matched nothing.
func (p *Palette) Selected() *PaletteEntry {
	if len(p.filtered) == 0 || p.cursor >= len(p.filtered) {
		return nil
	}
	e := p.filtered[p.cursor]
	return &e
}

// FilteredCount returns how many entries the current query matches.
func (p *Palette) FilteredCount() int { return len(p.filtered) }

// UpdateInput forwards a key message to the query input and re-runs the
// fuzzy match.
func (p *Palette) UpdateInput(msg interface{}) {
	p.input, _ = p.input.Update(msg)
	p.filter()
}

// filter reorders entries by fuzzy match quality. An empty query shows
// everything in catalog order.
func (p *Palette) filter() {
	query := strings.TrimSpace(p.input.Value())
	if query == "" {
		p.filtered = p.entries
		p.cursor = 0
		p.offset = 0
		return
	}

	haystack := make([]string, len(p.entries))
	for i, e := range p.entries {
		haystack[i] = e.searchText()
	}
	matches := fuzzy.Find(query, haystack)

	p.filtered = make([]PaletteEntry, len(matches))
	for i, m := range matches {
		p.filtered[i] = p.entries[m.Index]
	}
	p.cursor = 0
	p.offset = 0
}

// View renders the centered overlay.
func (p *Palette) View() string {
	width := p.width
	if width == 0 {
		width = 80
	}
	height := p.height
	if height == 0 {
		height = 24
	}

	t := p.theme
	boxWidth := 60
	if width < 70 {
		boxWidth = width - 10
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	maxVisible := 10
	if height < 16 {
		maxVisible = height - 6
	}
	if maxVisible < 3 {
		maxVisible = 3
	}

	var lines []string

	inputStyle := t.Renderer.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Width(boxWidth - 6)
	lines = append(lines, inputStyle.Render(p.input.View()))
	lines = append(lines, "")

	if len(p.filtered) == 0 {
		lines = append(lines, t.MutedText.Render("  No matches"))
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
		if end > len(p.filtered) {
			end = len(p.filtered)
		}
		for i := start; i < end; i++ {
			lines = append(lines, p.renderEntry(p.filtered[i], i == p.cursor, boxWidth-6))
		}
		if len(p.filtered) > maxVisible {
			lines = append(lines, t.MutedText.Render(fmt.Sprintf("  %d/%d", p.cursor+1, len(p.filtered))))
		}
	}

	lines = append(lines, "")
	footer := t.Renderer.NewStyle().Foreground(t.Secondary).Italic(true)
	lines = append(lines, footer.Render("↑/↓ move · enter go · esc cancel"))

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (p *Palette) renderEntry(e PaletteEntry, selected bool, avail int) string {
	t := p.theme

	cursorMark := "  "
	if selected {
		cursorMark = "> "
	}
	kind := "  "
	if e.Kind == PaletteCatalog {
		kind = "⌂ "
	}

	title := e.Title
	detail := e.Detail
	room := avail - lipgloss.Width(cursorMark+kind) - 2
	if lipgloss.Width(title) > room {
		title = truncate(title, room)
		detail = ""
	} else if detail != "" {
		detail = truncate(detail, room-lipgloss.Width(title))
	}

	var b strings.Builder
	b.WriteString(cursorMark)
	b.WriteString(kind)
	if selected {
		b.WriteString(t.PrimaryBold.Render(title))
	} else {
		b.WriteString(t.Base.Render(title))
	}
	if detail != "" {
		b.WriteString("  ")
		b.WriteString(t.MutedText.Render(detail))
	}
	return b.String()
}
