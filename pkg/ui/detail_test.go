package ui

import (
	"strings"
	"testing"
	"time"
)

func TestCategoryMarkdown_FullRecord(t *testing.T) {
	cats := catalogFixture()
	audio := cats[1]
	audio.Summary = "Speakers, amps and headphones"
	audio.Tags = []string{"bestseller", "q3-push"}

	doc := categoryMarkdown(audio, []string{"Electronics", "Audio"}, 1)

	for _, want := range []string{
		"## Audio",
		"`Electronics / Audio`",
		"| ID | `child-1` |",
		"| Status | active |",
		"| SKUs | 40 |",
		"| Children | 1 |",
		"| Updated |",
		"**Tags:** bestseller, q3-push",
		"Speakers, amps and headphones",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("markdown missing %q:\n%s", want, doc)
		}
	}
}

func TestCategoryMarkdown_OmitsEmptyRows(t *testing.T) {
	cats := catalogFixture()
	headphones := cats[2] // draft, zero SKUs, no tags, no summary

	doc := categoryMarkdown(headphones, []string{"Headphones"}, 0)

	for _, absent := range []string{"| SKUs |", "| Children |", "**Tags:**"} {
		if strings.Contains(doc, absent) {
			t.Errorf("markdown should omit %q:\n%s", absent, doc)
		}
	}
	// A single-element path is the node itself, not worth a breadcrumb.
	if strings.Contains(doc, "`Headphones`") {
		t.Errorf("markdown should omit single-element path:\n%s", doc)
	}
	if !strings.Contains(doc, "| Status | draft |") {
		t.Errorf("markdown missing status row:\n%s", doc)
	}
}

func TestCategoryMarkdown_Retired(t *testing.T) {
	cats := catalogFixture()
	garden := cats[4]
	retired := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	garden.RetiredAt = &retired

	doc := categoryMarkdown(garden, nil, 0)
	if !strings.Contains(doc, "| Retired | 2025-03-15 |") {
		t.Errorf("markdown missing retired row:\n%s", doc)
	}
}

func TestDetailView_SetCategory_CachesByID(t *testing.T) {
	d := NewDetailView(testTheme())
	cats := catalogFixture()

	d.SetCategory(&cats[0], nil, 2)
	if d.lastID != "root-1" {
		t.Fatalf("lastID = %q, want root-1", d.lastID)
	}

	d.SetCategory(&cats[1], []string{"Electronics", "Audio"}, 1)
	if d.lastID != "child-1" {
		t.Errorf("lastID = %q after switching, want child-1", d.lastID)
	}
}

func TestDetailView_NilCategoryShowsHelp(t *testing.T) {
	d := NewDetailView(testTheme())

	d.SetCategory(nil, nil, 0)
	if d.lastID != "_none_" {
		t.Fatalf("lastID = %q", d.lastID)
	}
	if view := d.View(); !strings.Contains(view, "No selection") {
		t.Errorf("help view missing hint:\n%s", view)
	}
}

func TestDetailView_SetSizeInvalidatesCache(t *testing.T) {
	d := NewDetailView(testTheme())
	cats := catalogFixture()

	d.SetCategory(&cats[0], nil, 2)
	d.SetSize(50, 20)
	if d.lastID != "" {
		t.Errorf("lastID = %q after resize, want cleared", d.lastID)
	}
}
