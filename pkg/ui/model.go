// Package ui provides the terminal user interface for taxo.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/taxo/internal/datasource"
	"github.com/vanderheijden86/taxo/pkg/config"
	"github.com/vanderheijden86/taxo/pkg/debug"
	"github.com/vanderheijden86/taxo/pkg/export"
	"github.com/vanderheijden86/taxo/pkg/loader"
	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/tree"
	"github.com/vanderheijden86/taxo/pkg/watcher"
	"github.com/vanderheijden86/taxo/pkg/workspace"
)

// AutoCloseEnvVar makes the TUI quit itself after the given number of
// milliseconds. Used by the PTY smoke tests, harmless otherwise.
const AutoCloseEnvVar = "TAXO_TUI_AUTOCLOSE_MS"

// statusMsgTimeout is how long a transient status message stays up.
const statusMsgTimeout = 4 * time.Second

// FileChangedMsg is sent when the catalog data file changes on disk.
type FileChangedMsg struct{}

// CatalogReloadedMsg carries the result of reloading the open catalog.
type CatalogReloadedMsg struct {
	Categories []model.Category
	Retired    []model.Category
	Err        error
}

// CatalogSwitchedMsg carries the result of switching to another catalog.
type CatalogSwitchedMsg struct {
	Name       string
	CatalogDir string
	Categories []model.Category
	Err        error
}

// CatalogsLoadedMsg carries the workspace summaries for the palette.
type CatalogsLoadedMsg struct {
	Refs []workspace.CatalogRef
}

// ReparentSavedMsg reports the outcome of persisting a re-parent.
type ReparentSavedMsg struct {
	ChildName  string
	ParentName string
	Err        error
}

// SnapshotSavedMsg reports the outcome of a snapshot export.
type SnapshotSavedMsg struct {
	Path string
	Err  error
}

// OutlineSavedMsg reports the outcome of an outline export.
type OutlineSavedMsg struct {
	Path string
	Err  error
}

// statusClearMsg expires a transient status message. The sequence number
// keeps an old timer from wiping a newer message.
type statusClearMsg struct{ seq int }

// autoCloseMsg quits the program; see AutoCloseEnvVar.
type autoCloseMsg struct{}

// WatchFileCmd waits for the next change notification and reports it.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func reloadCmd(catalogDir string, withRetired bool) tea.Cmd {
	return func() tea.Msg {
		cats, err := datasource.LoadCategoriesFromDir(catalogDir)
		if err != nil {
			return CatalogReloadedMsg{Err: err}
		}
		var retired []model.Category
		if withRetired {
			retired, _ = datasource.LoadRetired(catalogDir)
		}
		return CatalogReloadedMsg{Categories: cats, Retired: retired}
	}
}

func loadCatalogsCmd(cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		catalogs := cfg.Catalogs
		if len(catalogs) == 0 {
			return CatalogsLoadedMsg{}
		}
		refs, err := workspace.NewAggregateLoader(catalogs).LoadAll(context.Background())
		if err != nil {
			debug.Log("workspace load failed: %v", err)
		}
		return CatalogsLoadedMsg{Refs: refs}
	}
}

func switchCatalogCmd(name, path string) tea.Cmd {
	return func() tea.Msg {
		dir := workspace.ResolveCatalogDir(path)
		cats, err := datasource.LoadCategoriesFromDir(dir)
		return CatalogSwitchedMsg{Name: name, CatalogDir: dir, Categories: cats, Err: err}
	}
}

func statusClearCmd(seq int) tea.Cmd {
	return tea.Tick(statusMsgTimeout, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

func autoCloseCmd() tea.Cmd {
	raw := os.Getenv(AutoCloseEnvVar)
	if raw == "" {
		return nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return nil
	}
	return tea.Tick(time.Duration(ms)*time.Millisecond, func(time.Time) tea.Msg {
		return autoCloseMsg{}
	})
}

// focusArea tracks which component receives key input.
type focusArea int

const (
	focusTree focusArea = iota
	focusSearch
	focusParentPicker
	focusScopePicker
	focusPalette
	focusHelp
)

// sortMode is the sibling ordering cycled by the s key.
type sortMode int

const (
	sortByName sortMode = iota
	sortBySKUs
	sortByUpdated
)

func (s sortMode) String() string {
	switch s {
	case sortBySKUs:
		return "skus"
	case sortByUpdated:
		return "updated"
	default:
		return "name"
	}
}

func (s sortMode) next() sortMode {
	switch s {
	case sortByName:
		return sortBySKUs
	case sortBySKUs:
		return sortByUpdated
	default:
		return sortByName
	}
}

func (s sortMode) less() func(a, b *tree.Node[model.Category]) bool {
	switch s {
	case sortBySKUs:
		return model.SortBySKUCount
	case sortByUpdated:
		return model.SortByUpdated
	default:
		return model.SortByName
	}
}

// parseSortMode maps a config value to a sort mode. Unknown values are
// rejected so typos fall back to the default ordering.
func parseSortMode(s string) (sortMode, bool) {
	switch s {
	case "name":
		return sortByName, true
	case "skus":
		return sortBySKUs, true
	case "updated":
		return sortByUpdated, true
	default:
		return sortByName, false
	}
}

// Model is the main Bubble Tea model for taxo.
type Model struct {
	catalogName string
	catalogDir  string
	cfg         config.Config

	cats        []model.Category
	retired     []model.Category
	showRetired bool

	tree       *TreeView
	detail     *DetailView
	showDetail bool

	searchInput  textinput.Model
	parentPicker *ParentPicker
	scopePicker  *ScopePicker
	palette      *Palette
	catalogRefs  []workspace.CatalogRef
	lastScope    []string

	watcher *watcher.Watcher
	theme   Theme

	width   int
	height  int
	focused focusArea
	sort    sortMode

	statusMsg     string
	statusIsError bool
	statusSeq     int

	quitting bool
}

// NewModel builds the root model over the loaded catalog. The watcher may
// be nil when live reload is unavailable.
func NewModel(catalogName, catalogDir string, cats []model.Category, w *watcher.Watcher, cfg config.Config, theme Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "search name or summary..."
	ti.CharLimit = 80
	ti.Prompt = "/ "

	m := Model{
		catalogName: catalogName,
		catalogDir:  catalogDir,
		cfg:         cfg,
		cats:        cats,
		tree:        NewTreeView(cats, theme),
		detail:      NewDetailView(theme),
		searchInput: ti,
		watcher:     w,
		theme:       theme,
		width:       80,
		height:      24,
		showRetired: cfg.UI.ShowRetired,
	}
	if mode, ok := parseSortMode(cfg.UI.DefaultSort); ok && mode != sortByName {
		m.sort = mode
		m.tree.SetSort(mode.less())
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadCatalogsCmd(m.cfg)}
	if m.showRetired {
		cmds = append(cmds, reloadCmd(m.catalogDir, true))
	}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	if cmd := autoCloseCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case FileChangedMsg:
		debug.Log("catalog changed on disk, reloading")
		cmds = append(cmds, reloadCmd(m.catalogDir, m.showRetired))
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}

	case CatalogReloadedMsg:
		if msg.Err != nil {
			m = m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true, &cmds)
			break
		}
		m.cats = msg.Categories
		if m.showRetired {
			m.retired = msg.Retired
		}
		m.tree.SetRecords(m.visibleCats())
		m = m.setStatus(fmt.Sprintf("Reloaded %d categories", len(msg.Categories)), false, &cmds)

	case CatalogSwitchedMsg:
		if msg.Err != nil {
			m = m.setStatus(fmt.Sprintf("Switch failed: %v", msg.Err), true, &cmds)
			break
		}
		m.catalogName = msg.Name
		m.catalogDir = msg.CatalogDir
		m.cats = msg.Categories
		m.retired = nil
		m.showRetired = false
		m.tree = NewTreeView(m.cats, m.theme)
		m.resize()
		if cmd := m.rearmWatcher(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		m = m.setStatus(fmt.Sprintf("Switched to %s (%d categories)", msg.Name, len(msg.Categories)), false, &cmds)

	case CatalogsLoadedMsg:
		m.catalogRefs = msg.Refs

	case ReparentSavedMsg:
		if msg.Err != nil {
			m = m.setStatus(fmt.Sprintf("Move failed: %v", msg.Err), true, &cmds)
			break
		}
		m = m.setStatus(fmt.Sprintf("Moved %s under %s", msg.ChildName, msg.ParentName), false, &cmds)

	case SnapshotSavedMsg:
		if msg.Err != nil {
			m = m.setStatus(fmt.Sprintf("Snapshot failed: %v", msg.Err), true, &cmds)
			break
		}
		m = m.setStatus("Snapshot saved to "+msg.Path, false, &cmds)

	case OutlineSavedMsg:
		if msg.Err != nil {
			m = m.setStatus(fmt.Sprintf("Outline failed: %v", msg.Err), true, &cmds)
			break
		}
		m = m.setStatus("Outline saved to "+msg.Path, false, &cmds)

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
			m.statusIsError = false
		}

	case autoCloseMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.focused {
	case focusSearch:
		return m.handleSearchKeys(msg)
	case focusParentPicker:
		return m.handleParentPickerKeys(msg)
	case focusScopePicker:
		return m.handleScopePickerKeys(msg)
	case focusPalette:
		return m.handlePaletteKeys(msg)
	case focusHelp:
		m.focused = focusTree
		return m, nil
	default:
		return m.handleTreeKeys(msg)
	}
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.tree.ClearSearch()
		m.focused = focusTree
	case "enter":
		m.searchInput.Blur()
		m.focused = focusTree
	default:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.tree.SetSearchTerm(m.searchInput.Value())
		return m, cmd
	}
	return m, nil
}

func (m Model) handleParentPickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg.String() {
	case "esc":
		m.parentPicker = nil
		m.focused = focusTree
	case "down", "ctrl+n":
		m.parentPicker.MoveDown()
	case "up", "ctrl+p":
		m.parentPicker.MoveUp()
	case "left":
		m.parentPicker.Collapse()
	case "right":
		m.parentPicker.Expand()
	case "tab":
		m.parentPicker.ToggleExpand()
	case "ctrl+r":
		if _, err := m.parentPicker.ChooseRoot(); err != nil {
			m = m.setStatus(err.Error(), true, &cmds)
			break
		}
		child := m.parentPicker.Child()
		m.parentPicker = nil
		m.focused = focusTree
		cmds = append(cmds, m.applyReparent(child, ""))
	case "enter":
		parentID, err := m.parentPicker.Choose()
		if err != nil {
			m = m.setStatus(err.Error(), true, &cmds)
			break
		}
		child := m.parentPicker.Child()
		m.parentPicker = nil
		m.focused = focusTree
		cmds = append(cmds, m.applyReparent(child, parentID))
	default:
		m.parentPicker.UpdateInput(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleScopePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg.String() {
	case "esc":
		m.scopePicker = nil
		m.focused = focusTree
	case "down", "ctrl+n":
		m.scopePicker.MoveDown()
	case "up", "ctrl+p":
		m.scopePicker.MoveUp()
	case "left":
		m.scopePicker.ToggleExpand()
	case "right":
		m.scopePicker.ToggleExpand()
	case "tab":
		m.scopePicker.ToggleExpand()
	case " ":
		m.scopePicker.Toggle()
	case "ctrl+x":
		m.scopePicker.ClearSelection()
	case "enter":
		scope := m.scopePicker.Values()
		if len(scope) == 0 {
			m = m.setStatus("Nothing selected to export", true, &cmds)
			break
		}
		m.lastScope = scope
		m.scopePicker = nil
		m.focused = focusTree
		path := m.exportPath("outline", "md")
		cats := m.visibleCats()
		title := m.catalogName
		cmds = append(cmds, func() tea.Msg {
			err := export.SaveOutlineToFile(cats, export.OutlineOptions{Title: title, Scope: scope}, path)
			return OutlineSavedMsg{Path: path, Err: err}
		})
	default:
		m.scopePicker.UpdateInput(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handlePaletteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg.String() {
	case "esc":
		m.palette = nil
		m.focused = focusTree
	case "down", "ctrl+n":
		m.palette.MoveDown()
	case "up", "ctrl+p":
		m.palette.MoveUp()
	case "enter":
		entry := m.palette.Selected()
		m.palette = nil
		m.focused = focusTree
		if entry == nil {
			break
		}
		switch entry.Kind {
		case PaletteJump:
			if m.tree.CursorTo(entry.ID) {
				m.syncDetail()
			}
		case PaletteCatalog:
			cmds = append(cmds, switchCatalogCmd(entry.Title, entry.ID))
		}
	default:
		m.palette.UpdateInput(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleTreeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		m.tree.MoveDown()
		m.syncDetail()
	case "k", "up":
		m.tree.MoveUp()
		m.syncDetail()
	case "g", "home":
		m.tree.JumpTop()
		m.syncDetail()
	case "G", "end":
		m.tree.JumpBottom()
		m.syncDetail()
	case "ctrl+d", "pgdown":
		m.tree.PageDown()
		m.syncDetail()
	case "ctrl+u", "pgup":
		m.tree.PageUp()
		m.syncDetail()

	case "h", "left":
		m.tree.CollapseOrParent()
		m.syncDetail()
	case "l", "right":
		m.tree.ExpandOrChild()
		m.syncDetail()
	case "enter", "tab", " ":
		m.tree.ToggleExpand()
	case "E":
		m.tree.ExpandAll()
	case "W":
		m.tree.CollapseAll()
		m.syncDetail()

	case "/":
		m.focused = focusSearch
		m.searchInput.SetValue(m.tree.SearchTerm())
		m.searchInput.Focus()
	case "esc":
		if m.tree.SearchTerm() != "" {
			m.searchInput.SetValue("")
			m.tree.ClearSearch()
		}

	case "p":
		cat := m.tree.SelectedCategory()
		if cat == nil {
			break
		}
		m.parentPicker = NewParentPicker(m.visibleCats(), *cat, m.theme)
		m.parentPicker.SetSize(m.width, m.height-1)
		m.focused = focusParentPicker

	case "e":
		m.scopePicker = NewScopePicker(m.visibleCats(), m.lastScope, m.cfg.UI.MaxTagCount, m.theme)
		m.scopePicker.SetSize(m.width, m.height-1)
		m.focused = focusScopePicker

	case "ctrl+k":
		m.palette = NewPalette(m.visibleCats(), m.catalogRefs, m.theme)
		m.palette.SetSize(m.width, m.height-1)
		m.focused = focusPalette

	case "y":
		cat := m.tree.SelectedCategory()
		if cat == nil {
			break
		}
		if err := clipboard.WriteAll(cat.ID); err != nil {
			m = m.setStatus(fmt.Sprintf("Copy failed: %v", err), true, &cmds)
			break
		}
		m = m.setStatus("Copied "+cat.ID, false, &cmds)

	case "d":
		m.showDetail = !m.showDetail
		m.resize()
		m.syncDetail()
	case "J":
		m.detail.ScrollDown(3)
	case "K":
		m.detail.ScrollUp(3)

	case "s":
		m.sort = m.sort.next()
		m.tree.SetSort(m.sort.less())
		m = m.setStatus("Sorted by "+m.sort.String(), false, &cmds)

	case "R":
		if m.showRetired {
			m.showRetired = false
			m.tree.SetRecords(m.visibleCats())
			m = m.setStatus("Retired categories hidden", false, &cmds)
			break
		}
		retired, err := datasource.LoadRetired(m.catalogDir)
		if err != nil {
			m = m.setStatus(fmt.Sprintf("Retired categories unavailable: %v", err), true, &cmds)
			break
		}
		if len(retired) == 0 {
			m = m.setStatus("No retired categories", false, &cmds)
			break
		}
		m.retired = retired
		m.showRetired = true
		m.tree.SetRecords(m.visibleCats())
		m = m.setStatus(fmt.Sprintf("Showing %d retired categories", len(retired)), false, &cmds)

	case "S":
		path := m.exportPath("taxonomy", "svg")
		cats := m.visibleCats()
		title := m.catalogName
		cmds = append(cmds, func() tea.Msg {
			err := export.SaveSnapshot(export.SnapshotOptions{
				Path:       path,
				Title:      title,
				Categories: cats,
			})
			return SnapshotSavedMsg{Path: path, Err: err}
		})

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(msg.String()[0] - '0')
		if cmd := m.switchToNumbered(n); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case "?":
		m.focused = focusHelp
	}

	return m, tea.Batch(cmds...)
}

// switchToNumbered resolves a number key to a catalog: configured
// favorites first, then palette order.
func (m Model) switchToNumbered(n int) tea.Cmd {
	if fav := m.cfg.FavoriteCatalog(n); fav != nil {
		return switchCatalogCmd(fav.Name, fav.ResolvedPath())
	}
	if n <= len(m.catalogRefs) {
		ref := m.catalogRefs[n-1]
		if ref.Err == nil {
			return switchCatalogCmd(ref.Name, ref.Path)
		}
	}
	return nil
}

// visibleCats returns the records the tree should show, folding retired
// categories in when toggled on.
func (m Model) visibleCats() []model.Category {
	if !m.showRetired || len(m.retired) == 0 {
		return m.cats
	}
	merged := make([]model.Category, 0, len(m.cats)+len(m.retired))
	merged = append(merged, m.cats...)
	seen := make(map[string]bool, len(m.cats))
	for _, c := range m.cats {
		seen[c.ID] = true
	}
	for _, c := range m.retired {
		if !seen[c.ID] {
			merged = append(merged, c)
		}
	}
	return merged
}

// applyReparent updates the moved category in memory and persists the
// whole catalog. The cycle guard already vetted the assignment; the save
// failing leaves memory updated and reports the error instead.
func (m *Model) applyReparent(child model.Category, newParentID string) tea.Cmd {
	parentName := "top level"
	updated := false
	for i := range m.cats {
		if m.cats[i].ID == child.ID {
			m.cats[i].ParentID = newParentID
			m.cats[i].UpdatedAt = time.Now()
			updated = true
		}
		if newParentID != "" && m.cats[i].ID == newParentID {
			parentName = m.cats[i].Name
		}
	}
	if !updated {
		return func() tea.Msg {
			return ReparentSavedMsg{Err: fmt.Errorf("%s no longer exists", child.Name)}
		}
	}

	m.tree.SetRecords(m.visibleCats())
	m.tree.CursorTo(child.ID)
	m.syncDetail()

	path := m.savePath()
	cats := make([]model.Category, len(m.cats))
	copy(cats, m.cats)
	childName := child.Name
	return func() tea.Msg {
		err := loader.SaveCatalogToFile(path, cats)
		return ReparentSavedMsg{ChildName: childName, ParentName: parentName, Err: err}
	}
}

// savePath is where catalog edits are written: the existing JSONL file
// when there is one, the canonical name otherwise.
func (m Model) savePath() string {
	if path, err := loader.FindJSONLPath(m.catalogDir); err == nil {
		return path
	}
	return filepath.Join(m.catalogDir, loader.PreferredJSONLNames[0])
}

// exportPath builds a timestamped output path inside the catalog dir.
func (m Model) exportPath(stem, ext string) string {
	name := fmt.Sprintf("%s-%s.%s", stem, time.Now().Format("20060102-150405"), ext)
	return filepath.Join(m.catalogDir, name)
}

// rearmWatcher points the watcher at the switched catalog's data file.
func (m *Model) rearmWatcher() tea.Cmd {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
	target := datasource.WatchTarget(m.catalogDir)
	if target == "" {
		return nil
	}
	w, err := watcher.NewWatcher(target)
	if err != nil {
		debug.Log("watcher unavailable for %s: %v", target, err)
		return nil
	}
	if err := w.Start(); err != nil {
		debug.Log("watcher start failed: %v", err)
		return nil
	}
	m.watcher = w
	return WatchFileCmd(w)
}

func (m *Model) setStatus(text string, isErr bool, cmds *[]tea.Cmd) Model {
	m.statusMsg = text
	m.statusIsError = isErr
	m.statusSeq++
	*cmds = append(*cmds, statusClearCmd(m.statusSeq))
	return *m
}

// syncDetail pushes the cursor's category into the detail pane.
func (m *Model) syncDetail() {
	if !m.showDetail {
		return
	}
	cat := m.tree.SelectedCategory()
	if cat == nil {
		m.detail.SetCategory(nil, nil, 0)
		return
	}
	n := m.tree.SelectedNode()
	m.detail.SetCategory(cat, m.tree.SelectedPath(), len(n.Children))
}

func (m *Model) resize() {
	body := m.bodyHeight()
	if m.showDetail {
		dw := m.detailWidth()
		m.tree.SetSize(m.width-dw-1, body)
		m.detail.SetSize(dw, body)
	} else {
		m.tree.SetSize(m.width, body)
	}
	if m.parentPicker != nil {
		m.parentPicker.SetSize(m.width, m.height-1)
	}
	if m.scopePicker != nil {
		m.scopePicker.SetSize(m.width, m.height-1)
	}
	if m.palette != nil {
		m.palette.SetSize(m.width, m.height-1)
	}
}

// bodyHeight is the room left for the tree after header, footer and the
// search bar when visible.
func (m Model) bodyHeight() int {
	h := m.height - 2
	if m.searchBarVisible() {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) searchBarVisible() bool {
	return m.focused == focusSearch || m.tree.SearchTerm() != ""
}

func (m Model) detailWidth() int {
	dw := m.width / 3
	if dw < 30 {
		dw = 30
	}
	if dw > 60 {
		dw = 60
	}
	if dw > m.width-20 {
		dw = m.width - 20
	}
	return dw
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	isOverlay := false

	switch {
	case m.focused == focusParentPicker && m.parentPicker != nil:
		body = m.parentPicker.View()
		isOverlay = true
	case m.focused == focusScopePicker && m.scopePicker != nil:
		body = m.scopePicker.View()
		isOverlay = true
	case m.focused == focusPalette && m.palette != nil:
		body = m.palette.View()
		isOverlay = true
	case m.focused == focusHelp:
		body = m.renderHelpOverlay()
		isOverlay = true
	default:
		body = m.renderBody()
	}

	finalStyle := m.theme.Renderer.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height)

	footer := m.renderFooter()
	if isOverlay {
		return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body, footer))
	}

	sections := []string{m.renderHeader()}
	if m.searchBarVisible() {
		sections = append(sections, m.renderSearchBar())
	}
	sections = append(sections, body, footer)
	return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderBody() string {
	if !m.showDetail {
		return m.tree.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.tree.View(), m.detail.View())
}

func (m Model) renderHeader() string {
	name := m.catalogName
	if name == "" {
		name = filepath.Base(m.catalogDir)
	}
	left := m.theme.Header.Render(" taxo ") + " " + m.theme.PrimaryBold.Render(name)

	parts := []string{fmt.Sprintf("%d categories", len(m.visibleCats()))}
	if m.showRetired {
		parts = append(parts, fmt.Sprintf("%d retired", len(m.retired)))
	}
	if m.sort != sortByName {
		parts = append(parts, "sort: "+m.sort.String())
	}
	if m.watcher != nil && m.watcher.IsPolling() {
		parts = append(parts, "polling")
	}
	right := m.theme.MutedText.Render(strings.Join(parts, " · "))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderSearchBar() string {
	if m.focused == focusSearch {
		return " " + m.searchInput.View()
	}
	term := m.tree.SearchTerm()
	return " " + m.theme.MutedText.Render("/ ") + m.theme.MatchText.Render(term) +
		m.theme.MutedText.Render(fmt.Sprintf("  (%d shown, esc to clear)", m.tree.Len()))
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		var msgStyle lipgloss.Style
		prefix := "✓ "
		if m.statusIsError {
			prefix = "✗ "
			msgStyle = m.theme.Renderer.NewStyle().Foreground(ColorDanger).Bold(true).Padding(0, 1)
		} else {
			msgStyle = m.theme.Renderer.NewStyle().Foreground(ColorSuccess).Bold(true).Padding(0, 1)
		}
		return msgStyle.Render(prefix + truncate(m.statusMsg, m.width-4))
	}

	type hint struct{ key, label string }
	var hints []hint
	switch m.focused {
	case focusSearch:
		hints = []hint{{"enter", "apply"}, {"esc", "clear"}}
	default:
		hints = []hint{
			{"j/k", "nav"},
			{"h/l", "fold"},
			{"/", "search"},
			{"p", "move"},
			{"e", "export"},
			{"ctrl+k", "palette"},
			{"d", "detail"},
			{"s", "sort"},
			{"?", "help"},
			{"q", "quit"},
		}
	}

	keyStyle := m.theme.MutedText
	labelStyle := m.theme.Base
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyStyle.Render(h.key) + ":" + labelStyle.Render(h.label)
	}
	return " " + strings.Join(parts, "  ")
}

func (m Model) renderHelpOverlay() string {
	t := m.theme

	section := func(title string, rows [][2]string) string {
		var b strings.Builder
		b.WriteString(t.PrimaryBold.Render(title))
		b.WriteString("\n")
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				t.SecondaryText.Render(padRight(r[0], 10)),
				t.Base.Render(r[1])))
		}
		return b.String()
	}

	content := strings.Join([]string{
		section("Navigate", [][2]string{
			{"j/k ↑/↓", "move cursor"},
			{"h/l ←/→", "collapse / expand"},
			{"g/G", "top / bottom"},
			{"ctrl+d/u", "page down / up"},
			{"enter/tab", "toggle fold"},
			{"E / W", "expand / collapse all"},
		}),
		section("Find", [][2]string{
			{"/", "filter tree"},
			{"ctrl+k", "jump palette"},
			{"1-9", "switch catalog"},
		}),
		section("Act", [][2]string{
			{"p", "move category"},
			{"e", "export outline"},
			{"S", "export snapshot"},
			{"y", "copy id"},
			{"d", "detail panel"},
			{"J/K", "scroll detail"},
			{"s", "cycle sort"},
			{"R", "toggle retired"},
		}),
	}, "\n")

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 3).
		Render(content + "\n" + t.MutedText.Render("press any key to close"))

	return lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, box)
}
