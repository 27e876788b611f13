//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"category-coupons/internal/model"
)

// sampleCategories is the storefront forest used in local development:
//
//	Shoes(1) > Sneakers(2) > Running(3)
//	Shoes(1) > Boots(4)
//	Accessories(10) > Hats(11), Socks(12)
var sampleCategories = []model.Category{
	{ID: 1, Name: "Shoes"},
	{ID: 2, ParentID: 1, Name: "Sneakers"},
	{ID: 3, ParentID: 2, Name: "Running"},
	{ID: 4, ParentID: 1, Name: "Boots"},
	{ID: 10, Name: "Accessories"},
	{ID: 11, ParentID: 10, Name: "Hats"},
	{ID: 12, ParentID: 10, Name: "Socks"},
}

// Writes data/categories.csv.gz, the snapshot read when
// TAXONOMY_SOURCE=snapshot.
func main() {
	path := filepath.Join("data", "categories.csv.gz")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	if err := writeSnapshot(path, sampleCategories); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}

	fmt.Printf("Created %s with %d categories\n", path, len(sampleCategories))
}

func writeSnapshot(path string, cats []model.Category) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	w := csv.NewWriter(gz)

	if err := w.Write([]string{"id", "parent_id", "name"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range cats {
		record := []string{
			strconv.FormatInt(c.ID, 10),
			strconv.FormatInt(c.ParentID, 10),
			c.Name,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write category %d: %w", c.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return gz.Close()
}
