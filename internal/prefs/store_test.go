package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestThemeDefault(t *testing.T) {
	s := openTestStore(t)

	theme, err := s.Theme(context.Background())
	if err != nil {
		t.Fatalf("Theme() error = %v", err)
	}
	if theme != DefaultTheme {
		t.Errorf("Theme() = %q, want %q", theme, DefaultTheme)
	}
}

func TestSetThemeRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, theme := range []string{ThemeLight, ThemeSystem, ThemeDark} {
		if err := s.SetTheme(ctx, theme); err != nil {
			t.Fatalf("SetTheme(%q) error = %v", theme, err)
		}
		got, err := s.Theme(ctx)
		if err != nil {
			t.Fatalf("Theme() error = %v", err)
		}
		if got != theme {
			t.Errorf("Theme() = %q, want %q", got, theme)
		}
	}
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	s := openTestStore(t)

	err := s.SetTheme(context.Background(), "neon")
	if !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("SetTheme() error = %v, want ErrInvalidTheme", err)
	}

	// The saved value is untouched.
	theme, err := s.Theme(context.Background())
	if err != nil {
		t.Fatalf("Theme() error = %v", err)
	}
	if theme != DefaultTheme {
		t.Errorf("Theme() = %q, want %q", theme, DefaultTheme)
	}
}

func TestThemeSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.SetTheme(context.Background(), ThemeLight); err != nil {
		t.Fatalf("SetTheme() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s2.Close()

	theme, err := s2.Theme(context.Background())
	if err != nil {
		t.Fatalf("Theme() error = %v", err)
	}
	if theme != ThemeLight {
		t.Errorf("Theme() after reopen = %q, want %q", theme, ThemeLight)
	}
}
