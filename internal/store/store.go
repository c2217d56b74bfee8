// Package store implements the SQLite garment catalog: garment rows, their
// material composition, colors and contextual labels, plus the enumerated
// option lists that act as schema-supplied universes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
	_ "modernc.org/sqlite"
)

// ErrNotCatalog is returned by OpenReadOnly for a database that does not
// hold the garment catalog tables.
var ErrNotCatalog = errors.New("store: not a garment catalog")

var catalogTables = []string{"garments", "garment_materials", "garment_colors", "garment_labels", "option_values"}

// Store is a garment catalog backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// One writer keeps SQLite free of SQLITE_BUSY under the server.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// OpenReadOnly opens an existing catalog for reading. It never creates the
// file, runs migrations or changes the journal mode.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: pragma busy_timeout: %w", err)
	}

	var found int
	query := `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN (?, ?, ?, ?, ?)`
	args := make([]any, len(catalogTables))
	for i, name := range catalogTables {
		args[i] = name
	}
	if err := db.QueryRow(query, args...).Scan(&found); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: inspect schema: %w", err)
	}
	if found != len(catalogTables) {
		db.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotCatalog, path)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS garments (
			id       TEXT PRIMARY KEY,
			type     TEXT NOT NULL DEFAULT '',
			favorite INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS garment_materials (
			garment_id TEXT NOT NULL REFERENCES garments(id) ON DELETE CASCADE,
			position   INTEGER NOT NULL,
			material   TEXT NOT NULL,
			percentage REAL NOT NULL,
			PRIMARY KEY (garment_id, position)
		);

		CREATE TABLE IF NOT EXISTS garment_colors (
			garment_id TEXT NOT NULL REFERENCES garments(id) ON DELETE CASCADE,
			position   INTEGER NOT NULL,
			color      TEXT NOT NULL,
			PRIMARY KEY (garment_id, position)
		);

		CREATE TABLE IF NOT EXISTS garment_labels (
			garment_id TEXT NOT NULL REFERENCES garments(id) ON DELETE CASCADE,
			dimension  TEXT NOT NULL,
			position   INTEGER NOT NULL,
			label      TEXT NOT NULL,
			PRIMARY KEY (garment_id, dimension, position)
		);
		CREATE INDEX IF NOT EXISTS idx_labels_dimension ON garment_labels(dimension, label);

		CREATE TABLE IF NOT EXISTS option_values (
			dimension TEXT NOT NULL,
			position  INTEGER NOT NULL,
			label     TEXT NOT NULL,
			PRIMARY KEY (dimension, position)
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveGarment inserts or replaces a garment and all of its child rows.
func (s *Store) SaveGarment(ctx context.Context, g analysis.Garment) error {
	if g.ID == "" {
		return fmt.Errorf("store: garment id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM garments WHERE id = ?`, g.ID); err != nil {
		return fmt.Errorf("store: replace garment %s: %w", g.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO garments (id, type, favorite) VALUES (?, ?, ?)`,
		g.ID, g.Type, g.Favorite,
	); err != nil {
		return fmt.Errorf("store: insert garment %s: %w", g.ID, err)
	}

	for i, m := range g.Materials {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO garment_materials (garment_id, position, material, percentage) VALUES (?, ?, ?, ?)`,
			g.ID, i, m.Material, m.Percentage,
		); err != nil {
			return fmt.Errorf("store: insert material: %w", err)
		}
	}
	for i, c := range g.Colors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO garment_colors (garment_id, position, color) VALUES (?, ?, ?)`,
			g.ID, i, c,
		); err != nil {
			return fmt.Errorf("store: insert color: %w", err)
		}
	}
	for _, d := range analysis.Dimensions {
		for i, l := range d.Labels(&g) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO garment_labels (garment_id, dimension, position, label) VALUES (?, ?, ?, ?)`,
				g.ID, d.String(), i, l,
			); err != nil {
				return fmt.Errorf("store: insert %s label: %w", d, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// GarmentIDs returns the id of every stored garment in order.
func (s *Store) GarmentIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM garments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list garment ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan garment id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteGarment removes a garment and its child rows.
func (s *Store) DeleteGarment(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM garments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete garment %s: %w", id, err)
	}
	return nil
}

// ListGarments returns every garment ordered by id, with child rows in
// insertion order.
func (s *Store) ListGarments(ctx context.Context) ([]analysis.Garment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, favorite FROM garments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list garments: %w", err)
	}
	var garments []analysis.Garment
	index := make(map[string]int)
	for rows.Next() {
		var g analysis.Garment
		if err := rows.Scan(&g.ID, &g.Type, &g.Favorite); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan garment: %w", err)
		}
		index[g.ID] = len(garments)
		garments = append(garments, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list garments: %w", err)
	}

	if err := s.loadMaterials(ctx, garments, index); err != nil {
		return nil, err
	}
	if err := s.loadColors(ctx, garments, index); err != nil {
		return nil, err
	}
	if err := s.loadLabels(ctx, garments, index); err != nil {
		return nil, err
	}
	if garments == nil {
		garments = []analysis.Garment{}
	}
	return garments, nil
}

func (s *Store) loadMaterials(ctx context.Context, garments []analysis.Garment, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT garment_id, material, percentage FROM garment_materials ORDER BY garment_id, position`)
	if err != nil {
		return fmt.Errorf("store: list materials: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var m analysis.MaterialEntry
		if err := rows.Scan(&id, &m.Material, &m.Percentage); err != nil {
			return fmt.Errorf("store: scan material: %w", err)
		}
		if i, ok := index[id]; ok {
			garments[i].Materials = append(garments[i].Materials, m)
		}
	}
	return rows.Err()
}

func (s *Store) loadColors(ctx context.Context, garments []analysis.Garment, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT garment_id, color FROM garment_colors ORDER BY garment_id, position`)
	if err != nil {
		return fmt.Errorf("store: list colors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, color string
		if err := rows.Scan(&id, &color); err != nil {
			return fmt.Errorf("store: scan color: %w", err)
		}
		if i, ok := index[id]; ok {
			garments[i].Colors = append(garments[i].Colors, color)
		}
	}
	return rows.Err()
}

func (s *Store) loadLabels(ctx context.Context, garments []analysis.Garment, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT garment_id, dimension, label FROM garment_labels ORDER BY garment_id, dimension, position`)
	if err != nil {
		return fmt.Errorf("store: list labels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, dim, label string
		if err := rows.Scan(&id, &dim, &label); err != nil {
			return fmt.Errorf("store: scan label: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		g := &garments[i]
		switch dim {
		case analysis.Weather.String():
			g.Weather = append(g.Weather, label)
		case analysis.Occasion.String():
			g.Occasions = append(g.Occasions, label)
		case analysis.Place.String():
			g.Places = append(g.Places, label)
		case analysis.TimeOfDay.String():
			g.TimesOfDay = append(g.TimesOfDay, label)
		}
	}
	return rows.Err()
}

// SetOptions replaces the enumerated options of every dimension that is
// non-empty in opts. Dimensions left empty keep their stored list.
func (s *Store) SetOptions(ctx context.Context, opts analysis.OptionUniverses) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	for _, d := range analysis.Dimensions {
		labels := analysis.DedupeNonEmpty(opts.For(d))
		if len(labels) == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM option_values WHERE dimension = ?`, d.String()); err != nil {
			return fmt.Errorf("store: clear %s options: %w", d, err)
		}
		for i, l := range labels {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO option_values (dimension, position, label) VALUES (?, ?, ?)`,
				d.String(), i, l,
			); err != nil {
				return fmt.Errorf("store: insert %s option: %w", d, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// OptionUniverses returns the enumerated options per dimension. Dimensions
// without stored options are left nil so they resolve from observation.
func (s *Store) OptionUniverses(ctx context.Context) (analysis.OptionUniverses, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dimension, label FROM option_values ORDER BY dimension, position`)
	if err != nil {
		return analysis.OptionUniverses{}, fmt.Errorf("store: list options: %w", err)
	}
	defer rows.Close()

	var u analysis.OptionUniverses
	for rows.Next() {
		var dim, label string
		if err := rows.Scan(&dim, &label); err != nil {
			return analysis.OptionUniverses{}, fmt.Errorf("store: scan option: %w", err)
		}
		switch dim {
		case analysis.Weather.String():
			u.Weather = append(u.Weather, label)
		case analysis.Occasion.String():
			u.Occasion = append(u.Occasion, label)
		case analysis.Place.String():
			u.Place = append(u.Place, label)
		case analysis.TimeOfDay.String():
			u.TimeOfDay = append(u.TimeOfDay, label)
		}
	}
	return u, rows.Err()
}
