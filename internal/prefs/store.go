// Package prefs persists display preferences across sessions in a local
// SQLite database. The remote store never sees these; they are device-side
// state, like the theme choice.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Themes the UI knows how to render.
const (
	ThemeDark   = "dark"
	ThemeLight  = "light"
	ThemeSystem = "system"
)

// DefaultTheme is what a fresh install starts with.
const DefaultTheme = ThemeDark

var ErrInvalidTheme = errors.New("invalid theme")

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Theme returns the saved theme, or the default when nothing is saved.
func (s *Store) Theme(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = 'theme'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultTheme, nil
	}
	if err != nil {
		return "", fmt.Errorf("read theme: %w", err)
	}
	if !validTheme(value) {
		// A stale row from an older version falls back to the default.
		return DefaultTheme, nil
	}
	return value, nil
}

// SetTheme saves the theme choice. Unknown themes are rejected.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if !validTheme(theme) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES ('theme', ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		theme)
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func validTheme(theme string) bool {
	switch theme {
	case ThemeDark, ThemeLight, ThemeSystem:
		return true
	}
	return false
}
