package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/taxo/internal/datasource"
	"github.com/vanderheijden86/taxo/pkg/analysis"
	"github.com/vanderheijden86/taxo/pkg/config"
	"github.com/vanderheijden86/taxo/pkg/debug"
	"github.com/vanderheijden86/taxo/pkg/export"
	"github.com/vanderheijden86/taxo/pkg/loader"
	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/ui"
	"github.com/vanderheijden86/taxo/pkg/version"
	"github.com/vanderheijden86/taxo/pkg/watcher"
	"github.com/vanderheijden86/taxo/pkg/workspace"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	dirFlag := flag.String("dir", "", "Project or catalog directory (default: current directory)")
	themeFlag := flag.String("theme", "", "Force color theme: dark or light (default: auto-detect)")
	healthFlag := flag.Bool("health", false, "Print a taxonomy health report and exit (exit 1 on problems)")
	robotTree := flag.Bool("robot-tree", false, "Print the resolved category tree as JSON and exit")
	robotHealth := flag.Bool("robot-health", false, "Print the health report as JSON and exit")
	outlineFlag := flag.String("outline", "", "Write a Markdown outline to the given path and exit")
	snapshotFlag := flag.String("snapshot", "", "Write an SVG or PNG tree snapshot to the given path and exit")
	exportFlag := flag.Bool("export", false, "Run the interactive export wizard and exit")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: taxo [options]")
		fmt.Println("\nA TUI console for product category taxonomies.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("taxo %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	catalogDir := resolveCatalogDir(*dirFlag)
	cats, err := datasource.LoadCategoriesFromDir(catalogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		if errors.Is(err, loader.ErrNoCatalog) {
			fmt.Fprintln(os.Stderr, "Make sure the directory holds a .taxo/catalog.jsonl, or point TAXO_DIR at one.")
		}
		os.Exit(1)
	}
	name := catalogName(catalogDir)

	// Non-interactive modes run against the loaded catalog and exit.
	switch {
	case *robotTree:
		if err := writeRobotTree(os.Stdout, newRobotTreeOutput(name, cats)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing tree: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)

	case *robotHealth:
		report := analysis.Analyze(cats)
		if err := writeRobotHealth(os.Stdout, newRobotHealthOutput(name, report)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing health report: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)

	case *healthFlag:
		report := analysis.Analyze(cats)
		fmt.Print(report.Render())
		if !report.Healthy() {
			os.Exit(1)
		}
		os.Exit(0)

	case *outlineFlag != "":
		if err := export.SaveOutlineToFile(cats, export.OutlineOptions{Title: name}, *outlineFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing outline: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Outline written to %s\n", *outlineFlag)
		os.Exit(0)

	case *snapshotFlag != "":
		opts := export.SnapshotOptions{Path: *snapshotFlag, Title: name, Categories: cats}
		if err := export.SaveSnapshot(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written to %s\n", *snapshotFlag)
		os.Exit(0)

	case *exportFlag:
		if err := runExportWizard(catalogDir, name, cats); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if len(cats) == 0 {
		fmt.Println("No categories found. Add some to catalog.jsonl!")
		os.Exit(0)
	}

	// Load taxo config for catalog switching, favorites, and UI defaults
	appCfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue without config
		appCfg = config.DefaultConfig()
	}

	theme, err := buildTheme(appCfg, *themeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Watch the catalog file for live reload; the TUI runs without it
	// when the watcher cannot start.
	w := newCatalogWatcher(catalogDir)
	if w != nil {
		defer w.Stop()
	}

	m := ui.NewModel(name, catalogDir, cats, w, appCfg, theme)
	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running taxonomy console: %v\n", err)
		os.Exit(1)
	}
}

// resolveCatalogDir picks the catalog directory: TAXO_DIR wins, then the
// --dir flag (or the cwd) with any .taxo subdirectory resolved.
func resolveCatalogDir(base string) string {
	if dir := os.Getenv(loader.TaxoDirEnvVar); dir != "" {
		return dir
	}
	if base == "" {
		base = "."
	}
	return workspace.ResolveCatalogDir(base)
}

// catalogName derives a display name from the catalog directory, skipping
// the .taxo segment so the project folder names the catalog.
func catalogName(catalogDir string) string {
	dir := filepath.Clean(catalogDir)
	if filepath.Base(dir) == ".taxo" {
		dir = filepath.Dir(dir)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Base(dir)
}

// buildTheme constructs the UI theme. The --theme flag overrides the
// config file; without either the renderer probes the terminal background.
func buildTheme(cfg config.Config, flagValue string) (ui.Theme, error) {
	r := lipgloss.NewRenderer(os.Stdout)
	name := flagValue
	if name == "" {
		name = cfg.UI.Theme
	}
	switch name {
	case "":
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	default:
		return ui.Theme{}, fmt.Errorf("unknown theme %q (expected dark or light)", name)
	}
	return ui.DefaultTheme(r), nil
}

func newCatalogWatcher(catalogDir string) *watcher.Watcher {
	target := datasource.WatchTarget(catalogDir)
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
	return w
}

// runExportWizard drives the interactive export flow, merging retired
// categories in when the user asks for them.
func runExportWizard(catalogDir, name string, cats []model.Category) error {
	wcfg, err := export.NewWizard(catalogDir).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("Export cancelled")
			return nil
		}
		return err
	}
	if wcfg.Title == "" {
		wcfg.Title = name
	}
	if wcfg.IncludeRetired {
		retired, err := datasource.LoadRetired(catalogDir)
		if err != nil {
			return fmt.Errorf("load retired categories: %w", err)
		}
		cats = mergeRetired(cats, retired)
	}
	path, err := export.Execute(wcfg, cats)
	if err != nil {
		return err
	}
	fmt.Printf("Export written to %s\n", path)
	return nil
}

// mergeRetired appends archive entries that are not already in the live
// catalog. Live entries win on ID collisions.
func mergeRetired(cats, retired []model.Category) []model.Category {
	if len(retired) == 0 {
		return cats
	}
	seen := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		seen[c.ID] = struct{}{}
	}
	merged := append([]model.Category(nil), cats...)
	for _, c := range retired {
		if _, dup := seen[c.ID]; !dup {
			merged = append(merged, c)
		}
	}
	return merged
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
