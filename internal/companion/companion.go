// Package companion manages the voices that write reflections. Each
// companion is a markdown file with YAML frontmatter; the body describes
// how the companion speaks.
package companion

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/cldixon/moodjournal/internal/config"
)

const ext = ".md"

var (
	ErrNotFound    = errors.New("companion not found")
	ErrExists      = errors.New("companion already exists")
	ErrInvalidName = errors.New("invalid companion name")
)

// template is the body of a newly created companion
const template = `Describe how this companion responds to journal entries.

Consider including:
- Their tone and warmth
- How they acknowledge difficult moods
- Whether they ask questions, offer perspective, or suggest small steps`

// Companion defines the voice used for reflections
type Companion struct {
	Name        string `yaml:"name"`
	Description string `yaml:"-"`
}

// Dir returns the companions directory path
func Dir() (string, error) {
	cfgDir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, "companions"), nil
}

// Normalize turns a display name like "Night Owl" into the file name stem
// "night_owl". Names that could leave the companions directory are rejected.
func Normalize(name string) (string, error) {
	n := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	if n == "" || n == "." || n == ".." || strings.ContainsAny(n, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return n, nil
}

func pathFor(name string) (string, error) {
	n, err := Normalize(name)
	if err != nil {
		return "", err
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, n+ext), nil
}

// Load reads a companion file. The name defaults to the file name.
func Load(path string) (*Companion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open companion file: %w", err)
	}

	c := &Companion{}
	body, err := frontmatter.Parse(bytes.NewReader(data), c)
	if err != nil {
		return nil, fmt.Errorf("failed to parse companion frontmatter: %w", err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), ext)
	}
	c.Description = strings.TrimSpace(string(body))
	return c, nil
}

// Get loads the named companion from the companions directory
func Get(name string) (*Companion, error) {
	path, err := pathFor(name)
	if err != nil {
		return nil, err
	}
	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: '%s' (check ~/.config/moodjournal/companions/)", ErrNotFound, name)
	}
	return c, err
}

// Save writes c, replacing any existing file of the same name
func Save(c *Companion) error {
	_, err := write(c, os.O_TRUNC)
	return err
}

// Create writes a template companion for the user to edit and returns its
// path. An existing companion is never overwritten.
func Create(name string) (string, error) {
	n, err := Normalize(name)
	if err != nil {
		return "", err
	}
	return write(&Companion{Name: n, Description: template}, os.O_EXCL)
}

// write encodes c as frontmatter plus body. mode is O_TRUNC or O_EXCL.
func write(c *Companion, mode int) (string, error) {
	path, err := pathFor(c.Name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create companions directory: %w", err)
	}

	meta, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode companion: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(c.Description))
	buf.WriteString("\n")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|mode, 0644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%w: '%s'", ErrExists, c.Name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write companion: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write companion: %w", err)
	}
	return path, f.Close()
}

// List returns the names of all companion files, sorted
func List() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			names = append(names, strings.TrimSuffix(filepath.Base(m), ext))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named companion file
func Delete(name string) error {
	path, err := pathFor(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete companion: %w", err)
	}
	return nil
}
