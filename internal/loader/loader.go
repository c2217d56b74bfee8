package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
	"github.com/thinkwright/wardrobe-coverage/internal/config"
	"github.com/thinkwright/wardrobe-coverage/internal/store"
	"gopkg.in/yaml.v3"
)

// Collection is a garment collection gathered from one or more sources.
type Collection struct {
	Garments []analysis.Garment
	Options  analysis.OptionUniverses // enumerated options found in the sources
	Sources  []string                 // source paths, relative to the root when walking a directory

	// generated parallels Garments and marks ids the loader made up.
	generated []bool
}

// IsCatalog reports whether path names a SQLite garment catalog.
func IsCatalog(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Load loads garments from path. A file is loaded on its own; a directory is
// walked recursively, skipping dot-directories and config files. Files that
// cannot be read or parsed are skipped with a warning.
func Load(path string, logger zerolog.Logger) (*Collection, error) {
	absRoot, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("garment path not found: %s", path)
	}

	c := &Collection{Garments: []analysis.Garment{}}

	if !info.IsDir() {
		part, err := loadSingleFile(absRoot)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		if part != nil {
			c.add(part, path)
		}
		c.Garments = uniqueIDs(c.Garments, c.generated, logger)
		c.generated = nil
		return c, nil
	}

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != absRoot && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isConfigFile(d.Name()) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		part, loadErr := loadSingleFile(p)
		if errors.Is(loadErr, store.ErrNotCatalog) {
			logger.Debug().Str("path", p).Msg("skipped database without a garment catalog")
			return nil
		}
		if loadErr != nil {
			logger.Warn().Err(loadErr).Str("path", p).Msg("skipped garment source")
			return nil
		}
		if part != nil {
			relPath, _ := filepath.Rel(absRoot, p)
			c.add(part, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.Garments = uniqueIDs(c.Garments, c.generated, logger)
	c.generated = nil
	return c, nil
}

func (c *Collection) add(part *Collection, source string) {
	for i, g := range part.Garments {
		c.Garments = append(c.Garments, g)
		c.generated = append(c.generated, i < len(part.generated) && part.generated[i])
	}
	c.Options = c.Options.Merge(part.Options)
	c.Sources = append(c.Sources, source)
}

func isConfigFile(name string) bool {
	for _, n := range config.FileNames {
		if name == n {
			return true
		}
	}
	return false
}

func loadSingleFile(path string) (*Collection, error) {
	if IsCatalog(path) {
		return loadCatalog(path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".json":
		return loadJSON(path)
	case ".md":
		return loadMarkdown(path)
	}
	return nil, nil
}

func loadYAML(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return fromDecoded(raw, filenameStem(path))
}

func loadJSON(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return fromDecoded(raw, filenameStem(path))
}

// loadMarkdown reads a single garment from YAML frontmatter. The body is
// free-form notes and is ignored.
func loadMarkdown(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "---") {
		return nil, nil
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return nil, nil
	}
	var fm map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil || fm == nil {
		return nil, nil
	}
	if !looksLikeGarment(fm) {
		return nil, nil
	}
	return fromDecoded(fm, filenameStem(path))
}

// loadCatalog reads a catalog without writing to it. Databases that hold no
// garment catalog fail with store.ErrNotCatalog.
func loadCatalog(path string) (*Collection, error) {
	s, err := store.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	ctx := context.Background()
	garments, err := s.ListGarments(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := s.OptionUniverses(ctx)
	if err != nil {
		return nil, err
	}
	return &Collection{Garments: garments, Options: opts}, nil
}

// fromDecoded accepts a top-level list of garments, a document with a
// `garments` list and optional `options`, or a single garment object.
func fromDecoded(raw any, stem string) (*Collection, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		garments, err := analysis.ParseGarments(val)
		if err != nil {
			return nil, err
		}
		garments, generated := withIDs(garments, stem, false)
		return &Collection{Garments: garments, generated: generated}, nil
	case map[string]any:
		if list, ok := val["garments"]; ok {
			garments, err := analysis.ParseGarments(list)
			if err != nil {
				return nil, err
			}
			garments, generated := withIDs(garments, stem, false)
			return &Collection{
				Garments:  garments,
				Options:   analysis.ParseOptionUniverses(val["options"]),
				generated: generated,
			}, nil
		}
		if !looksLikeGarment(val) {
			return nil, nil
		}
		garments, err := analysis.ParseGarments([]any{val})
		if err != nil {
			return nil, err
		}
		garments, generated := withIDs(garments, stem, true)
		return &Collection{Garments: garments, generated: generated}, nil
	}
	return nil, fmt.Errorf("%w: unsupported document of type %T", analysis.ErrInvalidInput, raw)
}

func looksLikeGarment(m map[string]any) bool {
	for _, k := range []string{"id", "type", "suitableWeather", "suitableOccasions", "materialComposition"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// withIDs fills in missing IDs from the file stem: the stem itself for a
// single-garment file, otherwise the stem plus the record's 1-based position.
// The returned slice marks which IDs were filled in.
func withIDs(garments []analysis.Garment, stem string, single bool) ([]analysis.Garment, []bool) {
	generated := make([]bool, len(garments))
	for i := range garments {
		if garments[i].ID != "" {
			continue
		}
		generated[i] = true
		if single {
			garments[i].ID = stem
			continue
		}
		garments[i].ID = fmt.Sprintf("%s-%d", stem, i+1)
	}
	return garments, generated
}

// uniqueIDs keeps the first garment for each supplied ID and drops later
// ones. Generated IDs never cause a drop: a clash with any other ID gets a
// numeric suffix instead.
func uniqueIDs(garments []analysis.Garment, generated []bool, logger zerolog.Logger) []analysis.Garment {
	isGenerated := func(i int) bool { return i < len(generated) && generated[i] }

	taken := make(map[string]bool, len(garments))
	keep := make([]bool, len(garments))
	for i, g := range garments {
		if isGenerated(i) {
			continue
		}
		if taken[g.ID] {
			logger.Warn().Str("id", g.ID).Msg("duplicate garment id, keeping first")
			continue
		}
		taken[g.ID] = true
		keep[i] = true
	}

	result := make([]analysis.Garment, 0, len(garments))
	for i, g := range garments {
		switch {
		case isGenerated(i):
			id := g.ID
			for n := 2; taken[id]; n++ {
				id = fmt.Sprintf("%s-%d", g.ID, n)
			}
			taken[id] = true
			g.ID = id
		case !keep[i]:
			continue
		}
		result = append(result, g)
	}
	return result
}

// helpers

func filenameStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}
