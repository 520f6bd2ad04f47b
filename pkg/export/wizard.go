// This file implements the interactive export wizard for the --export
// flag. It guides users through choosing a format and destination, and
// remembers the answers for the next run.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/taxo/pkg/config"
	"github.com/vanderheijden86/taxo/pkg/model"
)

// WizardConfig holds the answers collected by the export wizard.
type WizardConfig struct {
	Format         string `json:"format"` // "outline", "svg" or "png"
	OutputPath     string `json:"output_path,omitempty"`
	Title          string `json:"title,omitempty"`
	Preset         string `json:"preset,omitempty"` // snapshot layout: "compact" or "roomy"
	IncludeRetired bool   `json:"include_retired"`
}

// Wizard handles the interactive export flow.
type Wizard struct {
	config     *WizardConfig
	catalogDir string
}

// NewWizard creates an export wizard for the given catalog directory.
func NewWizard(catalogDir string) *Wizard {
	return &Wizard{
		config: &WizardConfig{
			Format: "outline",
			Preset: "compact",
		},
		catalogDir: catalogDir,
	}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// offerSavedConfig asks if the user wants to reuse previously saved settings.
func (w *Wizard) offerSavedConfig(saved *WizardConfig) (bool, error) {
	fmt.Println("Found previous export configuration:")
	fmt.Println("────────────────────────────────────")
	fmt.Printf("  Format:  %s\n", saved.Format)
	if saved.OutputPath != "" {
		fmt.Printf("  Output:  %s\n", saved.OutputPath)
	}
	if saved.Title != "" {
		fmt.Printf("  Title:   %s\n", saved.Title)
	}
	if saved.Format != "outline" {
		fmt.Printf("  Preset:  %s\n", saved.Preset)
	}
	fmt.Println("")

	useSaved := true
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Export with these settings?").
				Description("Select No to configure a new export").
				Value(&useSaved).
				Affirmative("Yes, reuse").
				Negative("No, reconfigure"),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	fmt.Println("")
	return useSaved, nil
}

// Run executes the interactive wizard flow and returns the collected
// configuration. Answers are persisted for the next invocation.
func (w *Wizard) Run() (*WizardConfig, error) {
	saved, err := LoadWizardConfig()
	if err == nil && saved != nil && saved.Format != "" {
		useSaved, err := w.offerSavedConfig(saved)
		if err != nil {
			return nil, err
		}
		if useSaved {
			w.config = saved
			return w.config, nil
		}
	}

	if err := w.collectFormat(); err != nil {
		return nil, err
	}
	if err := w.collectOutput(); err != nil {
		return nil, err
	}

	if err := SaveWizardConfig(w.config); err != nil {
		fmt.Printf("Warning: could not save export settings: %v\n", err)
	}
	return w.config, nil
}

func (w *Wizard) collectFormat() error {
	fmt.Println("Step 1: Export Format")
	fmt.Println("────────────────────────────")

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What do you want to export?").
				Options(
					huh.NewOption("Markdown outline (.md)", "outline"),
					huh.NewOption("Tree snapshot, vector (.svg)", "svg"),
					huh.NewOption("Tree snapshot, raster (.png)", "png"),
				).
				Value(&w.config.Format),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	fmt.Println("")
	return nil
}

func (w *Wizard) collectOutput() error {
	fmt.Println("Step 2: Output")
	fmt.Println("────────────────────────────")

	defaultPath := DefaultExportPath(w.catalogDir, w.config.Format)
	outputPath := defaultPath
	title := ""

	fields := []huh.Field{
		huh.NewInput().
			Title("Output file").
			Value(&outputPath).
			Placeholder(defaultPath),
		huh.NewInput().
			Title("Title (optional)").
			Value(&title).
			Placeholder(filepath.Base(w.catalogDir)),
		huh.NewConfirm().
			Title("Include retired categories?").
			Value(&w.config.IncludeRetired),
	}
	if w.config.Format != "outline" {
		fields = append(fields,
			huh.NewSelect[string]().
				Title("Layout").
				Options(
					huh.NewOption("Compact", "compact"),
					huh.NewOption("Roomy", "roomy"),
				).
				Value(&w.config.Preset),
		)
	}

	form := newForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return err
	}

	if outputPath != "" {
		w.config.OutputPath = outputPath
	} else {
		w.config.OutputPath = defaultPath
	}
	w.config.Title = title

	fmt.Println("")
	return nil
}

// Execute performs the export described by cfg over the given
// categories and returns the written path.
func Execute(cfg *WizardConfig, cats []model.Category) (string, error) {
	path := cfg.OutputPath
	if path == "" {
		path = DefaultExportPath(".", cfg.Format)
	}

	switch cfg.Format {
	case "outline":
		if err := SaveOutlineToFile(cats, OutlineOptions{Title: cfg.Title}, path); err != nil {
			return "", err
		}
	case "svg", "png":
		err := SaveSnapshot(SnapshotOptions{
			Path:       path,
			Format:     cfg.Format,
			Title:      cfg.Title,
			Preset:     cfg.Preset,
			Categories: cats,
		})
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown export format %q", cfg.Format)
	}
	return path, nil
}

// DefaultExportPath builds a timestamped output name inside dir for the
// given format.
func DefaultExportPath(dir, format string) string {
	ext := "md"
	stem := "outline"
	switch strings.ToLower(format) {
	case "svg":
		ext, stem = "svg", "taxonomy"
	case "png":
		ext, stem = "png", "taxonomy"
	}
	name := fmt.Sprintf("%s-%s.%s", stem, time.Now().Format("20060102-150405"), ext)
	return filepath.Join(dir, name)
}

// WizardConfigPath returns the path to the saved wizard answers.
func WizardConfigPath() string {
	dir := config.StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "export-wizard.json")
}

// LoadWizardConfig loads previously saved wizard configuration.
func LoadWizardConfig() (*WizardConfig, error) {
	path := WizardConfigPath()
	if path == "" {
		return nil, fmt.Errorf("could not determine config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No saved config
		}
		return nil, err
	}

	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveWizardConfig saves wizard configuration for future runs.
func SaveWizardConfig(cfg *WizardConfig) error {
	path := WizardConfigPath()
	if path == "" {
		return fmt.Errorf("could not determine config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
