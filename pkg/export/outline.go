// Package export renders catalog taxonomies to shareable artifacts:
// markdown outlines and SVG/PNG tree snapshots.
package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/tree"
)

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// OutlineOptions controls markdown outline generation.
type OutlineOptions struct {
	Title string   // Report heading. Defaults to "Taxonomy Outline".
	Scope []string // Category IDs to include; empty means the whole catalog.
}

// outlineEntry is one included category in outline order.
type outlineEntry struct {
	node  *tree.Node[model.Category]
	depth int
	path  []string
}

// GenerateOutline renders the taxonomy as a markdown report: a summary
// table, a linked outline, a mermaid diagram, and one section per
// category. A scope narrows the report to those IDs; descendants of an
// out-of-scope ancestor keep their relative shape, promoted to where the
// skipped ancestor sat.
func GenerateOutline(cats []model.Category, opts OutlineOptions) (string, error) {
	forest := tree.Build(cats, model.TreeAccessors())

	inScope := func(string) bool { return true }
	if len(opts.Scope) > 0 {
		set := make(map[string]bool, len(opts.Scope))
		for _, id := range opts.Scope {
			set[id] = true
		}
		inScope = func(id string) bool { return set[id] }
	}

	var entries []outlineEntry
	var edges [][2]string
	var walk func(nodes []*tree.Node[model.Category], depth int, trail []string, anchor string)
	walk = func(nodes []*tree.Node[model.Category], depth int, trail []string, anchor string) {
		for _, n := range nodes {
			if !inScope(n.ID) {
				walk(n.Children, depth, trail, anchor)
				continue
			}
			path := make([]string, 0, len(trail)+1)
			path = append(path, trail...)
			path = append(path, n.Label)
			entries = append(entries, outlineEntry{node: n, depth: depth, path: path})
			if anchor != "" {
				edges = append(edges, [2]string{anchor, n.ID})
			}
			walk(n.Children, depth+1, path, n.ID)
		}
	}
	walk(forest, 0, nil, "")

	if len(entries) == 0 {
		return "", fmt.Errorf("no categories to export")
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Taxonomy Outline"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	writeSummaryTable(&sb, entries)

	// Precompute stable, unique slugs for outline links and headings.
	slugCounts := make(map[string]int, len(entries))
	slugs := make([]string, len(entries))
	for i, e := range entries {
		slugs[i] = uniqueSlug(createSlug(e.node.Label), slugCounts)
	}

	sb.WriteString("## Outline\n\n")
	for i, e := range entries {
		indent := strings.Repeat("  ", e.depth)
		line := fmt.Sprintf("%s- [%s %s](#%s) `%s`",
			indent, statusEmoji(e.node.Record.Status), escapeMarkdown(e.node.Label), slugs[i], e.node.ID)
		if e.node.Record.SKUCount > 0 {
			line += fmt.Sprintf(" (%d SKUs)", e.node.Record.SKUCount)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n---\n\n")

	sb.WriteString("## Tree Diagram\n\n")
	sb.WriteString("```mermaid\ngraph TD\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n",
			sanitizeMermaidID(e.node.ID), sanitizeMermaidText(e.node.Label)))
	}
	for _, edge := range edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n",
			sanitizeMermaidID(edge[0]), sanitizeMermaidID(edge[1])))
	}
	sb.WriteString("```\n\n---\n\n")

	for i, e := range entries {
		writeCategorySection(&sb, e, slugs[i])
	}

	return sb.String(), nil
}

func writeSummaryTable(sb *strings.Builder, entries []outlineEntry) {
	sb.WriteString("## Summary\n\n")

	byStatus := make(map[model.Status]int, 4)
	totalSKUs := 0
	for _, e := range entries {
		byStatus[e.node.Record.Status]++
		totalSKUs += e.node.Record.SKUCount
	}

	sb.WriteString("| Metric | Count |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Categories** | %d |\n", len(entries)))
	sb.WriteString(fmt.Sprintf("| Active | %d |\n", byStatus[model.StatusActive]))
	sb.WriteString(fmt.Sprintf("| Seasonal | %d |\n", byStatus[model.StatusSeasonal]))
	sb.WriteString(fmt.Sprintf("| Draft | %d |\n", byStatus[model.StatusDraft]))
	sb.WriteString(fmt.Sprintf("| Discontinued | %d |\n", byStatus[model.StatusDiscontinued]))
	sb.WriteString(fmt.Sprintf("| SKUs | %d |\n\n", totalSKUs))
}

func writeCategorySection(sb *strings.Builder, e outlineEntry, slug string) {
	c := e.node.Record

	sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", slug))
	sb.WriteString(fmt.Sprintf("## %s %s\n\n", statusEmoji(c.Status), escapeMarkdown(c.Name)))

	sb.WriteString("| Property | Value |\n|----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **ID** | `%s` |\n", c.ID))
	sb.WriteString(fmt.Sprintf("| **Status** | %s %s |\n", statusEmoji(c.Status), c.Status))
	if len(e.path) > 1 {
		sb.WriteString(fmt.Sprintf("| **Path** | %s |\n", escapeTableCell(strings.Join(e.path, " / "))))
	}
	sb.WriteString(fmt.Sprintf("| **SKUs** | %d |\n", c.SKUCount))
	sb.WriteString(fmt.Sprintf("| **Children** | %d |\n", len(e.node.Children)))
	sb.WriteString(fmt.Sprintf("| **Created** | %s |\n", c.CreatedAt.Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("| **Updated** | %s |\n", c.UpdatedAt.Format("2006-01-02 15:04")))
	if c.RetiredAt != nil {
		sb.WriteString(fmt.Sprintf("| **Retired** | %s |\n", c.RetiredAt.Format("2006-01-02 15:04")))
	}
	if len(c.Tags) > 0 {
		escaped := make([]string, len(c.Tags))
		for i, tag := range c.Tags {
			escaped[i] = escapeTableCell(tag)
		}
		sb.WriteString(fmt.Sprintf("| **Tags** | %s |\n", strings.Join(escaped, ", ")))
	}
	sb.WriteString("\n")

	if c.Summary != "" {
		sb.WriteString(c.Summary + "\n\n")
	}

	sb.WriteString("---\n\n")
}

// SaveOutlineToFile writes the generated outline to a file.
func SaveOutlineToFile(cats []model.Category, opts OutlineOptions, filename string) error {
	content, err := GenerateOutline(cats, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}

func statusEmoji(s model.Status) string {
	switch s {
	case model.StatusActive:
		return "🟢"
	case model.StatusSeasonal:
		return "🟡"
	case model.StatusDraft:
		return "⚪"
	case model.StatusDiscontinued:
		return "⚫"
	default:
		return "⚪"
	}
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return slug
}

// escapeTableCell sanitizes text for a markdown table cell: newlines
// become spaces and pipes are escaped.
func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "|", "\\|")
}

// escapeMarkdown neutralizes characters that would change heading or
// link rendering.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"[", "\\[",
		"]", "\\]",
		"\n", " ",
		"\r", "",
	)
	return replacer.Replace(s)
}

// sanitizeMermaidID ensures an ID is valid for Mermaid diagrams.
// Mermaid node IDs must be alphanumeric with hyphens/underscores.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	result := sb.String()
	if result == "" {
		return "node"
	}
	return result
}

// sanitizeMermaidText prepares text for use in Mermaid node labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(text)

	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)

	result = strings.TrimSpace(result)

	runes := []rune(result)
	if len(runes) > 40 {
		result = string(runes[:37]) + "..."
	}

	return result
}
