package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/vanderheijden86/taxo/pkg/tree"
)

func audioPicker() *ParentPicker {
	cats := catalogFixture()
	return NewParentPicker(cats, cats[1], testTheme()) // moving Audio
}

func TestNewParentPicker_DisablesMovedSubtree(t *testing.T) {
	p := audioPicker()

	// Roots come pre-expanded: Electronics, Audio, Computers, Garden.
	if len(p.rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(p.rows))
	}
	if p.Child().ID != "child-1" {
		t.Errorf("Child() = %s, want child-1", p.Child().ID)
	}
	if !p.rows[1].Node.Disabled {
		t.Error("Audio itself should be disabled")
	}
	if p.rows[0].Node.Disabled || p.rows[2].Node.Disabled || p.rows[3].Node.Disabled {
		t.Error("valid parent candidates marked disabled")
	}

	// The cursor starts on the current parent.
	if got := p.selectedNode(); got == nil || got.ID != "root-1" {
		t.Errorf("cursor starts on %v, want root-1", got)
	}
}

func TestParentPicker_Choose_ValidParent(t *testing.T) {
	p := audioPicker()

	p.MoveDown()
	p.MoveDown()
	p.MoveDown() // Garden
	id, err := p.Choose()
	if err != nil {
		t.Fatalf("Choose() error: %v", err)
	}
	if id != "root-2" {
		t.Errorf("Choose() = %s, want root-2", id)
	}
}

func TestParentPicker_Choose_RejectsMovedSubtree(t *testing.T) {
	p := audioPicker()

	p.MoveDown() // Audio, inside the subtree being moved
	_, err := p.Choose()
	if err == nil {
		t.Fatal("Choose() on the moved subtree should fail")
	}
	if !errors.Is(err, tree.ErrCycle) {
		t.Errorf("error = %v, want ErrCycle", err)
	}
}

func TestParentPicker_Choose_RejectsNonSelectableStatus(t *testing.T) {
	cats := catalogFixture()
	p := NewParentPicker(cats, cats[4], testTheme()) // moving Garden

	p.MoveDown() // Audio
	p.Expand()   // reveal Headphones
	p.MoveDown() // Headphones, draft
	_, err := p.Choose()
	if err == nil {
		t.Fatal("Choose() on a draft category should fail")
	}
	if errors.Is(err, tree.ErrCycle) {
		t.Errorf("status rejection misreported as cycle: %v", err)
	}
	if !strings.Contains(err.Error(), "draft") {
		t.Errorf("error %q should name the status", err)
	}
}

func TestParentPicker_Choose_NothingSelected(t *testing.T) {
	p := audioPicker()

	p.UpdateInput(keyMsg("zzz"))
	if len(p.rows) != 0 {
		t.Fatalf("rows = %d after hopeless filter", len(p.rows))
	}
	if _, err := p.Choose(); err == nil {
		t.Error("Choose() with no rows should fail")
	}
}

func TestParentPicker_ChooseRoot(t *testing.T) {
	p := audioPicker()

	id, err := p.ChooseRoot()
	if err != nil {
		t.Fatalf("ChooseRoot() error: %v", err)
	}
	if id != "" {
		t.Errorf("ChooseRoot() = %q, want empty parent id", id)
	}
}

func TestParentPicker_Filter(t *testing.T) {
	p := audioPicker()

	p.UpdateInput(keyMsg("gar"))
	if len(p.rows) != 1 {
		t.Fatalf("rows = %d after filter, want 1", len(p.rows))
	}
	id, err := p.Choose()
	if err != nil {
		t.Fatalf("Choose() error: %v", err)
	}
	if id != "root-2" {
		t.Errorf("Choose() = %s, want root-2", id)
	}
}

func TestParentPicker_FoldControls(t *testing.T) {
	p := audioPicker()

	p.MoveDown() // Audio
	p.Expand()
	if len(p.rows) != 5 {
		t.Fatalf("rows = %d after expanding Audio, want 5", len(p.rows))
	}
	p.Collapse()
	if len(p.rows) != 4 {
		t.Fatalf("rows = %d after collapsing Audio, want 4", len(p.rows))
	}

	// Expanding a leaf is a no-op.
	p.MoveDown()
	p.MoveDown() // Garden
	p.Expand()
	if len(p.rows) != 4 {
		t.Errorf("rows = %d after expanding a leaf", len(p.rows))
	}
}

func TestParentPicker_MoveBounds(t *testing.T) {
	p := audioPicker()

	p.MoveUp()
	if p.cursor != 0 {
		t.Errorf("MoveUp at top: cursor = %d", p.cursor)
	}
	for i := 0; i < 10; i++ {
		p.MoveDown()
	}
	if p.cursor != len(p.rows)-1 {
		t.Errorf("cursor = %d, want %d", p.cursor, len(p.rows)-1)
	}
}

func TestParentPicker_View(t *testing.T) {
	p := audioPicker()
	p.SetSize(100, 30)

	view := p.View()
	if !strings.Contains(view, "Move Audio") {
		t.Errorf("view missing title:\n%s", view)
	}
	if !strings.Contains(view, "(current)") {
		t.Errorf("view missing current-parent marker:\n%s", view)
	}
	if !strings.Contains(view, "ctrl+r top level") {
		t.Errorf("view missing footer hint:\n%s", view)
	}
}
