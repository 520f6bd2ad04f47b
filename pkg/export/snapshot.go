package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/tree"
)

// SnapshotOptions controls tree snapshot export behaviour.
type SnapshotOptions struct {
	Path       string           // Output path; format inferred from extension when Format empty
	Format     string           // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title      string           // Optional title rendered in the summary block
	Preset     string           // Layout preset: "compact" (default) or "roomy"
	Categories []model.Category // Categories to render
	Scope      []string         // Optional category IDs to limit the snapshot to
}

// SaveSnapshot renders a static taxonomy snapshot (SVG or PNG): one row
// per category, indented by depth, with guide lines from each parent to
// its children and a summary block for quick reading.
func SaveSnapshot(opts SnapshotOptions) error {
	if len(opts.Categories) == 0 {
		return fmt.Errorf("no categories to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout, err := buildTreeLayout(opts)
	if err != nil {
		return err
	}

	switch format {
	case "svg":
		return renderTreeSVG(opts.Path, layout)
	case "png":
		return renderTreePNG(opts.Path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- layout computation ----------------------------------------------------

type treeLayoutNode struct {
	ID       string
	Name     string
	Status   model.Status
	SKUCount int
	Depth    int
	X, Y     float64
	NodeW    float64
	NodeH    float64
}

type treeLayoutEdge struct {
	From string
	To   string
}

type treeLayout struct {
	Nodes   []treeLayoutNode
	Edges   []treeLayoutEdge
	Indent  float64
	Width   int
	Height  int
	Header  float64
	Summary treeSummary
}

type treeSummary struct {
	Title     string
	NodeCount int
	RootCount int
	MaxDepth  int
	TotalSKUs int
}

func buildTreeLayout(opts SnapshotOptions) (treeLayout, error) {
	const (
		nodeWCompact  = 230.0
		nodeHCompact  = 46.0
		nodeWRoomy    = 270.0
		nodeHRoomy    = 58.0
		rowGapCompact = 12.0
		rowGapRoomy   = 20.0
		indent        = 36.0
		padding       = 36.0
		headerHeight  = 120.0
	)

	roomy := strings.EqualFold(opts.Preset, "roomy")
	nodeW := nodeWCompact
	nodeH := nodeHCompact
	rowGap := rowGapCompact
	if roomy {
		nodeW = nodeWRoomy
		nodeH = nodeHRoomy
		rowGap = rowGapRoomy
	}

	forest := tree.Build(opts.Categories, model.TreeAccessors())

	inScope := func(string) bool { return true }
	if len(opts.Scope) > 0 {
		set := make(map[string]bool, len(opts.Scope))
		for _, id := range opts.Scope {
			set[id] = true
		}
		inScope = func(id string) bool { return set[id] }
	}

	var nodes []treeLayoutNode
	var edges []treeLayoutEdge
	summary := treeSummary{}

	var walk func(ns []*tree.Node[model.Category], depth int, anchor string)
	walk = func(ns []*tree.Node[model.Category], depth int, anchor string) {
		for _, n := range ns {
			if !inScope(n.ID) {
				walk(n.Children, depth, anchor)
				continue
			}
			row := len(nodes)
			nodes = append(nodes, treeLayoutNode{
				ID:       n.ID,
				Name:     truncateRunes(n.Label, 32),
				Status:   n.Record.Status,
				SKUCount: n.Record.SKUCount,
				Depth:    depth,
				X:        padding + float64(depth)*indent,
				Y:        padding + headerHeight + float64(row)*(nodeH+rowGap),
				NodeW:    nodeW,
				NodeH:    nodeH,
			})
			if anchor == "" {
				summary.RootCount++
			} else {
				edges = append(edges, treeLayoutEdge{From: anchor, To: n.ID})
			}
			if depth > summary.MaxDepth {
				summary.MaxDepth = depth
			}
			summary.TotalSKUs += n.Record.SKUCount
			walk(n.Children, depth+1, n.ID)
		}
	}
	walk(forest, 0, "")

	if len(nodes) == 0 {
		return treeLayout{}, fmt.Errorf("no categories to export")
	}
	summary.NodeCount = len(nodes)
	summary.Title = strings.TrimSpace(opts.Title)
	if summary.Title == "" {
		summary.Title = "Taxonomy Snapshot"
	}

	width := int(padding*2 + float64(summary.MaxDepth)*indent + nodeW)
	if width < 640 {
		width = 640
	}
	height := int(padding*2 + headerHeight + float64(len(nodes))*(nodeH+rowGap))
	if height < 480 {
		height = 480
	}

	return treeLayout{
		Nodes:   nodes,
		Edges:   edges,
		Indent:  indent,
		Width:   width,
		Height:  height,
		Header:  headerHeight,
		Summary: summary,
	}, nil
}

// --- rendering -------------------------------------------------------------

var (
	colorActive       = color.RGBA{0xc8, 0xe6, 0xc9, 0xff}
	colorSeasonal     = color.RGBA{0xff, 0xf3, 0xe0, 0xff}
	colorDraft        = color.RGBA{0xec, 0xef, 0xf1, 0xff}
	colorDiscontinued = color.RGBA{0xcf, 0xd8, 0xdc, 0xff}
	colorStroke       = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorGuide        = color.RGBA{0x90, 0xa4, 0xae, 0xff}
	colorText         = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle       = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop     = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG     = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG     = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

func snapshotStatusColor(s model.Status) color.RGBA {
	switch s {
	case model.StatusActive:
		return colorActive
	case model.StatusSeasonal:
		return colorSeasonal
	case model.StatusDraft:
		return colorDraft
	case model.StatusDiscontinued:
		return colorDiscontinued
	default:
		return colorDraft
	}
}

func renderTreePNG(path string, layout treeLayout) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	// header
	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)

	drawTreeSummary(dc, layout)
	drawTreeLegend(dc, layout)

	nodePos := make(map[string]treeLayoutNode, len(layout.Nodes))
	for _, n := range layout.Nodes {
		nodePos[n.ID] = n
	}

	// guide lines: down from the parent box, then across to the child
	dc.SetColor(colorGuide)
	dc.SetLineWidth(1.5)
	for _, e := range layout.Edges {
		from := nodePos[e.From]
		to := nodePos[e.To]
		x := from.X + layout.Indent/2
		dc.DrawLine(x, from.Y+from.NodeH, x, to.Y+to.NodeH/2)
		dc.Stroke()
		dc.DrawLine(x, to.Y+to.NodeH/2, to.X, to.Y+to.NodeH/2)
		dc.Stroke()
	}

	for _, n := range layout.Nodes {
		dc.SetColor(snapshotStatusColor(n.Status))
		dc.DrawRoundedRectangle(n.X, n.Y, n.NodeW, n.NodeH, 8)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawRoundedRectangle(n.X, n.Y, n.NodeW, n.NodeH, 8)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(n.Name, n.X+10, n.Y+16, 0, 0.5)
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(nodeSubtitle(n), n.X+10, n.Y+34, 0, 0.5)
	}

	return dc.SavePNG(path)
}

func renderTreeSVG(path string, layout treeLayout) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderTreeSVGToWriter(file, layout)
}

func renderTreeSVGToWriter(w io.Writer, layout treeLayout) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawTreeSummarySVG(canvas, layout)
	drawTreeLegendSVG(canvas, layout)

	nodePos := make(map[string]treeLayoutNode, len(layout.Nodes))
	for _, n := range layout.Nodes {
		nodePos[n.ID] = n
	}

	guideStyle := fmt.Sprintf("stroke:%s;stroke-width:1.5", css(colorGuide))
	for _, e := range layout.Edges {
		from := nodePos[e.From]
		to := nodePos[e.To]
		x := int(from.X + layout.Indent/2)
		midY := int(to.Y + to.NodeH/2)
		canvas.Line(x, int(from.Y+from.NodeH), x, midY, guideStyle)
		canvas.Line(x, midY, int(to.X), midY, guideStyle)
	}

	for _, n := range layout.Nodes {
		x := int(n.X)
		y := int(n.Y)
		canvas.Roundrect(x, y, int(n.NodeW), int(n.NodeH), 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(snapshotStatusColor(n.Status)), css(colorStroke)))
		canvas.Text(x+10, y+20, n.Name,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		canvas.Text(x+10, y+38, nodeSubtitle(n),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

func nodeSubtitle(n treeLayoutNode) string {
	if n.SKUCount > 0 {
		return fmt.Sprintf("%s · %d SKUs", n.ID, n.SKUCount)
	}
	return n.ID
}

func drawTreeSummary(dc *gg.Context, layout treeLayout) {
	s := layout.Summary
	dc.SetColor(colorText)
	dc.DrawStringAnchored(s.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("categories: %d  roots: %d", s.NodeCount, s.RootCount), 32, 64, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("max depth: %d", s.MaxDepth+1), 32, 84, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("total SKUs: %d", s.TotalSKUs), 32, 104, 0, 0.5)
}

func drawTreeSummarySVG(canvas *svg.SVG, layout treeLayout) {
	s := layout.Summary
	canvas.Text(32, 44, s.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, fmt.Sprintf("categories: %d  roots: %d", s.NodeCount, s.RootCount), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 84, fmt.Sprintf("max depth: %d", s.MaxDepth+1), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 104, fmt.Sprintf("total SKUs: %d", s.TotalSKUs), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
}

func drawTreeLegend(dc *gg.Context, layout treeLayout) {
	boxW := 180.0
	boxH := 96.0
	x := float64(layout.Width) - boxW - 20
	y := 24.0
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Legend", x+12, y+18, 0, 0.5)
	drawTreeLegendRow(dc, x+12, y+36, colorActive, "Active")
	drawTreeLegendRow(dc, x+12, y+52, colorSeasonal, "Seasonal")
	drawTreeLegendRow(dc, x+12, y+68, colorDraft, "Draft")
	drawTreeLegendRow(dc, x+12, y+84, colorDiscontinued, "Discontinued")
}

func drawTreeLegendRow(dc *gg.Context, x, y float64, c color.RGBA, label string) {
	dc.SetColor(c)
	dc.DrawRoundedRectangle(x, y-8, 14, 14, 3)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y-8, 14, 14, 3)
	dc.Stroke()
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(label, x+20, y, 0, 0.5)
}

func drawTreeLegendSVG(canvas *svg.SVG, layout treeLayout) {
	boxW := 180
	boxH := 96
	x := layout.Width - boxW - 20
	y := 24
	canvas.Roundrect(x, y, boxW, boxH, 10, 10, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorStroke)))
	canvas.Text(x+12, y+18, "Legend", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	drawTreeLegendRowSVG(canvas, x+12, y+36, colorActive, "Active")
	drawTreeLegendRowSVG(canvas, x+12, y+52, colorSeasonal, "Seasonal")
	drawTreeLegendRowSVG(canvas, x+12, y+68, colorDraft, "Draft")
	drawTreeLegendRowSVG(canvas, x+12, y+84, colorDiscontinued, "Discontinued")
}

func drawTreeLegendRowSVG(canvas *svg.SVG, x, y int, c color.RGBA, label string) {
	canvas.Roundrect(x, y-8, 14, 14, 3, 3, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(c), css(colorStroke)))
	canvas.Text(x+20, y, label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
}

// --- helpers ---------------------------------------------------------------

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
