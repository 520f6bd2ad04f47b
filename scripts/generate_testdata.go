//go:build ignore
// +build ignore

// generate_testdata.go creates standard catalog datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   tests/testdata/benchmark/small.jsonl   (100 categories)
//   tests/testdata/benchmark/medium.jsonl  (1000 categories)
//   tests/testdata/benchmark/large.jsonl   (5000 categories)
//   tests/testdata/benchmark/huge.jsonl    (20000 categories)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
	desc string
}

var datasets = []datasetSpec{
	{"small", 100, "100 categories - random forest, no ghost parents"},
	{"medium", 1000, "1000 categories - random forest, no ghost parents"},
	{"large", 5000, "5000 categories - random forest, no ghost parents"},
	{"huge", 20000, "20000 categories - random forest, no ghost parents"},
}

func main() {
	outputDir := "tests/testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d categories)...\n", ds.name, ds.size)

		cfg := testutil.GeneratorConfig{
			Seed:        int64(ds.size), // Reproducible per-size
			IDPrefix:    "BENCH",
			IncludeTags: true,
			StatusMix:   []model.Status{model.StatusActive, model.StatusSeasonal, model.StatusDraft},
		}

		gen := testutil.New(cfg)
		fixture := gen.RandomTaxonomy(ds.size, 0)
		cats := gen.ToCategories(fixture)

		// Replace the generator's placeholder names with realistic content
		addRealisticContent(cats)

		jsonl := testutil.ToJSONL(cats)

		outputPath := filepath.Join(outputDir, ds.name+".jsonl")
		if err := os.WriteFile(outputPath, []byte(jsonl), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes)\n", outputPath, len(jsonl))
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}

func addRealisticContent(cats []model.Category) {
	names := []string{
		"Home Audio",
		"Gaming Laptops",
		"Garden Tools",
		"Kitchen Appliances",
		"Outdoor Furniture",
		"Smart Lighting",
		"Camping Gear",
		"Pet Supplies",
		"Office Chairs",
		"Seasonal Decor",
	}

	summaries := []string{
		"Core assortment reviewed quarterly by the merchandising team.",
		"Seasonal range; availability windows are managed upstream.",
		"High-turnover products with automated restocking.",
	}

	for i := range cats {
		cats[i].Name = fmt.Sprintf("%s #%d", names[i%len(names)], i)
		cats[i].Summary = summaries[i%len(summaries)]
	}
}
