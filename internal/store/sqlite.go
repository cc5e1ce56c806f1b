package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"wallcrop/internal/geometry"
	"wallcrop/internal/services"
	"wallcrop/internal/wallpaper"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by an incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

type sqliteBackend struct {
	path string
}

func (b *sqliteBackend) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	var tableExists int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return createSchema(ctx, db)
	}

	var version int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (b *sqliteBackend) load(ctx context.Context) (table, error) {
	db, err := b.open(ctx)
	if err != nil {
		return table{}, err
	}
	defer db.Close()

	var t table
	ratios, err := queryRatios(ctx, db)
	if err != nil {
		return table{}, err
	}
	t.ratios = ratios

	byKey := make(map[string]geometry.AspectRatio, len(ratios))
	for _, r := range ratios {
		byKey[r.String()] = r
	}

	rows, err := db.QueryContext(ctx, "SELECT filename, width, height, faces_json, wallust FROM wallpapers ORDER BY filename")
	if err != nil {
		return table{}, fmt.Errorf("query wallpapers: %w", err)
	}
	index := make(map[string]int)
	for rows.Next() {
		var info wallpaper.Info
		var faces string
		if err := rows.Scan(&info.Filename, &info.Width, &info.Height, &faces, &info.Wallust); err != nil {
			_ = rows.Close()
			return table{}, fmt.Errorf("scan wallpaper: %w", err)
		}
		if info.Faces, err = decodeFaces(info.Filename, faces); err != nil {
			_ = rows.Close()
			return table{}, err
		}
		index[info.Filename] = len(t.records)
		t.records = append(t.records, info)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return table{}, fmt.Errorf("iterate wallpapers: %w", err)
	}
	_ = rows.Close()

	geoRows, err := db.QueryContext(ctx, "SELECT filename, ratio, crop FROM geometries")
	if err != nil {
		return table{}, fmt.Errorf("query geometries: %w", err)
	}
	defer geoRows.Close()
	for geoRows.Next() {
		var filename, ratioText, cell string
		if err := geoRows.Scan(&filename, &ratioText, &cell); err != nil {
			return table{}, fmt.Errorf("scan geometry: %w", err)
		}
		ratio, ok := byKey[ratioText]
		if !ok {
			return table{}, services.Wrap(services.ErrInput, "store", "load", fmt.Sprintf("%s: crop for unknown ratio %q", filename, ratioText), nil)
		}
		i, ok := index[filename]
		if !ok {
			continue
		}
		g, err := decodeCell(t.records[i], ratio, cell)
		if err != nil {
			return table{}, err
		}
		t.records[i].SetGeometry(ratio, g)
	}
	if err := geoRows.Err(); err != nil {
		return table{}, fmt.Errorf("iterate geometries: %w", err)
	}
	return t, nil
}

func queryRatios(ctx context.Context, db *sql.DB) ([]geometry.AspectRatio, error) {
	rows, err := db.QueryContext(ctx, "SELECT ratio FROM resolutions ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	defer rows.Close()
	var ratios []geometry.AspectRatio
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		ratio, err := geometry.ParseAspectRatio(text)
		if err != nil {
			return nil, err
		}
		ratios = append(ratios, ratio)
	}
	return ratios, rows.Err()
}

// save replaces every table inside one transaction so readers never observe
// a half-written batch.
func (b *sqliteBackend) save(ctx context.Context, t table) error {
	db, err := b.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM geometries", "DELETE FROM wallpapers", "DELETE FROM resolutions"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}
	for i, ratio := range t.ratios {
		if _, err := tx.ExecContext(ctx, "INSERT INTO resolutions (position, ratio) VALUES (?, ?)", i, ratio.String()); err != nil {
			return fmt.Errorf("insert resolution %s: %w", ratio, err)
		}
	}
	for _, info := range t.records {
		faces, err := encodeFaces(info.Faces)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO wallpapers (filename, width, height, faces_json, wallust) VALUES (?, ?, ?, ?, ?)",
			info.Filename, info.Width, info.Height, faces, info.Wallust,
		); err != nil {
			return fmt.Errorf("insert wallpaper %s: %w", info.Filename, err)
		}
		for _, ratio := range t.ratios {
			g, ok := info.Geometries[ratio.Key()]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO geometries (filename, ratio, crop) VALUES (?, ?, ?)",
				info.Filename, ratio.String(), encodeCell(g),
			); err != nil {
				return fmt.Errorf("insert geometry %s/%s: %w", info.Filename, ratio, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
