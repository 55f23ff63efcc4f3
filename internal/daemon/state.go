package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/mood"
)

// State holds the running server's details for the status command
type State struct {
	PID          int       `json:"pid"`
	StartedAt    time.Time `json:"started_at"`
	Addr         string    `json:"addr"`
	Backend      string    `json:"backend"`
	EntriesSaved int       `json:"entries_saved"`
	LastEntryAt  time.Time `json:"last_entry_at,omitempty"`
	LastMood     mood.Mood `json:"last_mood,omitempty"`
}

// StatePath returns the path to the state file
func StatePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.state"), nil
}

// LoadState reads the state from disk. A missing file yields nil, nil.
func LoadState() (*State, error) {
	path, err := StatePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	return &state, nil
}

// SaveState replaces the state file. Readers never see a partial write.
func SaveState(state *State) error {
	path, err := StatePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// RemoveState removes the state file
func RemoveState() error {
	path, err := StatePath()
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Uptime returns how long the server has been running
func (s *State) Uptime() time.Duration {
	return time.Since(s.StartedAt).Round(time.Second)
}
