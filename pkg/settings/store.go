package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Settings is the user-editable configuration document. It is persisted as a
// JSON file owned by the configuration surface; this core only reads it plus
// writes through Save on behalf of that surface.
type Settings struct {
	ApiKey     string `json:"ApiKey"`
	LiveUpload bool   `json:"LiveUpload"`
	ServerURL  string `json:"ServerURL,omitempty"`
}

// Store provides read/write access to the settings file. Reads always go back
// to the file so a value edited mid-session is observed on the next call;
// nothing is cached across invocations.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the given file path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the current settings from disk. A missing file yields zero-value
// settings, not an error.
func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Save persists the settings to disk
func (s *Store) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// APIKey returns the currently persisted upload credential with surrounding
// whitespace trimmed, or an empty string when unset or unreadable
func (s *Store) APIKey() string {
	settings, err := s.Load()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(settings.ApiKey)
}

// LiveUpload returns the currently persisted live-uploading toggle
func (s *Store) LiveUpload() bool {
	settings, err := s.Load()
	if err != nil {
		return false
	}
	return settings.LiveUpload
}

// ServerURL returns the persisted server base URL override, or empty when unset
func (s *Store) ServerURL() string {
	settings, err := s.Load()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(settings.ServerURL)
}

func (s *Store) load() (*Settings, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return &settings, nil
}
