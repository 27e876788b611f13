package taxonomy

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"category-coupons/internal/model"

	"github.com/rs/zerolog"
)

// Loader reads a category snapshot into a Tree.
type Loader interface {
	Load(ctx context.Context, path string) (*Tree, error)
}

// fileLoader implements Loader for gzipped snapshots on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based snapshot loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "taxonomy-loader").Logger(),
	}
}

// Load reads a gzipped CSV snapshot with columns id,parent_id,name. A header
// row is optional and parent_id is empty or 0 for roots.
func (l *fileLoader) Load(ctx context.Context, path string) (*Tree, error) {
	l.logger.Info().Str("file", path).Msg("loading taxonomy snapshot")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open taxonomy snapshot")
		return nil, fmt.Errorf("failed to open taxonomy snapshot %s: %w", path, err)
	}
	defer file.Close()

	cats, err := readSnapshot(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read taxonomy snapshot")
		return nil, fmt.Errorf("failed to read taxonomy snapshot %s: %w", path, err)
	}

	tree := NewTree(cats)
	l.logger.Info().
		Str("file", path).
		Int("categories_loaded", tree.Size()).
		Msg("taxonomy snapshot loaded successfully")

	return tree, nil
}

func readSnapshot(ctx context.Context, r io.Reader) ([]model.Category, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	reader := csv.NewReader(gz)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var cats []model.Category
	for row := 1; ; row++ {
		if row%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if row == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "id") {
			continue
		}

		c, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

func parseRecord(record []string) (model.Category, error) {
	if len(record) < 2 {
		return model.Category{}, fmt.Errorf("expected at least 2 columns, got %d", len(record))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil || id <= 0 {
		return model.Category{}, fmt.Errorf("invalid category id %q", record[0])
	}

	var parent int64
	if s := strings.TrimSpace(record[1]); s != "" {
		parent, err = strconv.ParseInt(s, 10, 64)
		if err != nil || parent < 0 {
			return model.Category{}, fmt.Errorf("invalid parent id %q", record[1])
		}
	}

	c := model.Category{ID: id, ParentID: parent}
	if len(record) > 2 {
		c.Name = strings.TrimSpace(record[2])
	}
	return c, nil
}
