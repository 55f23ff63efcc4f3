package companion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cldixon/moodjournal/internal/config"
)

// setupTestEnv creates a temporary home directory for testing
func setupTestEnv(t *testing.T) (string, func()) {
	t.Helper()

	tmpHome, err := os.MkdirTemp("", "moodjournal-companion-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	origHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpHome)

	companionDir := filepath.Join(tmpHome, ".config", "moodjournal", "companions")
	if err := os.MkdirAll(companionDir, 0755); err != nil {
		t.Fatalf("failed to create companion dir: %v", err)
	}

	cleanup := func() {
		os.Setenv("HOME", origHome)
		os.RemoveAll(tmpHome)
	}

	return companionDir, cleanup
}

// TestCompanionLoadAndParseFrontmatter verifies that companion files with
// frontmatter are correctly parsed.
func TestCompanionLoadAndParseFrontmatter(t *testing.T) {
	dir, cleanup := setupTestEnv(t)
	defer cleanup()

	content := `---
name: listener
---

Listens closely.
Speaks softly.

And keeps it brief.
`
	path := filepath.Join(dir, "listener.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test companion: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if c.Name != "listener" {
		t.Errorf("expected name 'listener', got %q", c.Name)
	}
	if !strings.Contains(c.Description, "Speaks softly.") {
		t.Errorf("description missing expected content: %q", c.Description)
	}
	if !strings.Contains(c.Description, "keeps it brief") {
		t.Errorf("description should preserve multiple paragraphs: %q", c.Description)
	}
}

func TestCompanionNameFallsBackToFilename(t *testing.T) {
	dir, cleanup := setupTestEnv(t)
	defer cleanup()

	path := filepath.Join(dir, "quiet.md")
	if err := os.WriteFile(path, []byte("---\ntone: quiet\n---\nNo name given."), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if c.Name != "quiet" {
		t.Errorf("expected name from filename, got %q", c.Name)
	}
}

// TestCompanionList verifies that List() returns sorted companion names and
// ignores non-markdown files.
func TestCompanionList(t *testing.T) {
	dir, cleanup := setupTestEnv(t)
	defer cleanup()

	for _, name := range []string{"charlie", "alice", "bob"} {
		content := "---\nname: " + name + "\n---\nDescription for " + name
		if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write companion %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	names, err := List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	want := []string{"alice", "bob", "charlie"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestCompanionListEmptyDirectory(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()

	names, err := List()
	if err != nil {
		t.Fatalf("List() failed on empty dir: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty list, got %v", names)
	}
}

// TestCompanionCreate verifies that Create() writes a loadable template.
func TestCompanionCreate(t *testing.T) {
	dir, cleanup := setupTestEnv(t)
	defer cleanup()

	path, err := Create("night_owl")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if path != filepath.Join(dir, "night_owl.md") {
		t.Errorf("unexpected path %q", path)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load created companion: %v", err)
	}
	if c.Name != "night_owl" {
		t.Errorf("loaded name mismatch: %q", c.Name)
	}
	if !strings.Contains(c.Description, "difficult moods") {
		t.Error("created file missing template instructions")
	}

	if _, err := Create("Night Owl"); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists for an existing companion, got %v", err)
	}
}

// TestCompanionCreateKeepsEdits verifies that Create never overwrites a
// companion the user already edited.
func TestCompanionCreateKeepsEdits(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()

	if err := Save(&Companion{Name: "coach", Description: "Short and direct."}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := Create("coach"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	c, err := Get("coach")
	if err != nil {
		t.Fatal(err)
	}
	if c.Description != "Short and direct." {
		t.Errorf("existing companion overwritten: %q", c.Description)
	}
}

func TestCompanionNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"listener", "listener", false},
		{"Night Owl", "night_owl", false},
		{"  spaced   out  ", "spaced_out", false},
		{"", "", true},
		{"   ", "", true},
		{"..", "", true},
		{"../escape", "", true},
		{`dir\name`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("Normalize(%q) expected ErrInvalidName, got %q, %v", tt.in, got, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Normalize(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestCompanionRejectsPathsOutsideDir(t *testing.T) {
	dir, cleanup := setupTestEnv(t)
	defer cleanup()

	if _, err := Create("../outside"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Create() expected ErrInvalidName, got %v", err)
	}
	if err := Delete("../../config"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Delete() expected ErrInvalidName, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "outside.md")); !os.IsNotExist(err) {
		t.Error("file written outside the companions directory")
	}
}

// TestCompanionSaveQuotesName verifies names that are not plain YAML
// scalars survive a save and load.
func TestCompanionSaveQuotesName(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()

	if err := Save(&Companion{Name: "#1_fan", Description: "Cheers you on."}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	c, err := Get("#1_fan")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if c.Name != "#1_fan" {
		t.Errorf("name lost in frontmatter: %q", c.Name)
	}
}

func TestCompanionSaveAndDelete(t *testing.T) {
	dir, cleanup := setupTestEnv(t)
	defer cleanup()

	c := &Companion{Name: "saved", Description: "First paragraph.\n\nSecond paragraph."}
	if err := Save(c); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Get("saved")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !strings.Contains(loaded.Description, "Second paragraph.") {
		t.Errorf("description mismatch: %q", loaded.Description)
	}

	if err := Delete("saved"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.md")); !os.IsNotExist(err) {
		t.Error("companion file should not exist after delete")
	}

	if err := Delete("saved"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCompanionGetNotFound(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()

	_, err := Get("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "~/.config/moodjournal/companions") {
		t.Errorf("error should hint at companions directory: %v", err)
	}
}

func TestCompanionMalformedFrontmatter(t *testing.T) {
	dir, cleanup := setupTestEnv(t)
	defer cleanup()

	path := filepath.Join(dir, "bad.md")
	if err := os.WriteFile(path, []byte("---\nname: [invalid yaml\n---\n\nDescription\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed frontmatter")
	}
	if !strings.Contains(err.Error(), "frontmatter") {
		t.Errorf("error should mention frontmatter: %v", err)
	}
}

// TestSeededCompanionsLoad verifies every companion written by config.Init
// parses.
func TestSeededCompanionsLoad(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()

	if err := config.Init(); err != nil {
		t.Fatalf("config.Init() failed: %v", err)
	}

	names, err := List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("expected seeded companions")
	}

	for _, name := range names {
		c, err := Get(name)
		if err != nil {
			t.Errorf("failed to load %q: %v", name, err)
			continue
		}
		if len(c.Description) < 10 {
			t.Errorf("companion %q has very short description", name)
		}
	}

	if _, err := Get(config.DefaultConfig().Companion); err != nil {
		t.Errorf("default companion not seeded: %v", err)
	}
}
