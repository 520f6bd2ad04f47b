package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// DetailView is the side panel showing the category under the cursor as
// rendered markdown. Content is rebuilt only when the category or the
// panel size changes; scrolling reuses the viewport.
type DetailView struct {
	vp     viewport.Model
	md     *glamour.TermRenderer
	theme  Theme
	lastID string
	width  int
}

// NewDetailView builds the panel with a markdown renderer sized for the
// default panel width. A glamour failure falls back to plain text.
func NewDetailView(theme Theme) *DetailView {
	md, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(60),
	)
	return &DetailView{
		vp:    viewport.New(40, 20),
		md:    md,
		theme: theme,
	}
}

// SetSize resizes the viewport and re-wraps the markdown renderer.
func (d *DetailView) SetSize(width, height int) {
	if width < 20 {
		width = 20
	}
	if height < 5 {
		height = 5
	}
	d.vp.Width = width
	d.vp.Height = height
	if width != d.width {
		d.width = width
		wrap := width - 2
		if wrap < 20 {
			wrap = 20
		}
		if md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		); err == nil {
			d.md = md
		}
		d.lastID = ""
	}
}

// ScrollDown scrolls the panel content down.
func (d *DetailView) ScrollDown(lines int) { d.vp.LineDown(lines) }

// ScrollUp scrolls the panel content up.
func (d *DetailView) ScrollUp(lines int) { d.vp.LineUp(lines) }

// SetCategory renders cat into the panel. The path is the root-to-node
// label chain; childCount is the number of direct children. A nil cat
// shows the empty-selection help.
func (d *DetailView) SetCategory(cat *model.Category, path []string, childCount int) {
	if cat == nil {
		if d.lastID == "_none_" {
			return
		}
		d.lastID = "_none_"
		d.vp.SetContent(d.renderMarkdown(
			"## No selection\n\nMove the cursor with **j/k** to inspect a category here.\n\nPress **d** to hide this panel.",
		))
		d.vp.GotoTop()
		return
	}
	if cat.ID == d.lastID {
		return
	}
	d.lastID = cat.ID
	d.vp.SetContent(d.renderMarkdown(categoryMarkdown(*cat, path, childCount)))
	d.vp.GotoTop()
}

func (d *DetailView) renderMarkdown(doc string) string {
	if d.md == nil {
		return doc
	}
	out, err := d.md.Render(doc)
	if err != nil {
		return doc
	}
	return strings.TrimRight(out, "\n")
}

// View renders the panel inside its border.
func (d *DetailView) View() string {
	style := d.theme.Renderer.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(d.theme.Border).
		PaddingLeft(1)
	return style.Render(d.vp.View())
}

// categoryMarkdown builds the markdown document for one category.
func categoryMarkdown(cat model.Category, path []string, childCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", cat.Name)
	if len(path) > 1 {
		fmt.Fprintf(&b, "`%s`\n\n", strings.Join(path, " / "))
	}

	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| ID | `%s` |\n", cat.ID)
	fmt.Fprintf(&b, "| Status | %s |\n", cat.Status)
	if cat.SKUCount > 0 {
		fmt.Fprintf(&b, "| SKUs | %d |\n", cat.SKUCount)
	}
	if childCount > 0 {
		fmt.Fprintf(&b, "| Children | %d |\n", childCount)
	}
	if !cat.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "| Updated | %s |\n", FormatTimeRel(cat.UpdatedAt))
	}
	if cat.RetiredAt != nil {
		fmt.Fprintf(&b, "| Retired | %s |\n", cat.RetiredAt.Format("2006-01-02"))
	}
	b.WriteString("\n")

	if len(cat.Tags) > 0 {
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(cat.Tags, ", "))
	}
	if cat.Summary != "" {
		b.WriteString(cat.Summary)
		b.WriteString("\n")
	}
	return b.String()
}
