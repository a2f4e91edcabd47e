package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rileyhilliard/emuwatch/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	// SettingsFileName is the default settings file under GlobalConfigDir.
	SettingsFileName = "settings.yaml"

	// KeyUseAudio toggles the alert sound.
	KeyUseAudio = "use_audio"
)

// DefaultSettings are used for any key missing from the file.
func DefaultSettings() map[string]any {
	return map[string]any{
		KeyUseAudio: false,
	}
}

// DefaultSettingsPath returns ~/.config/emuwatch/settings.yaml.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return SettingsFileName
	}
	return filepath.Join(home, GlobalConfigDir, SettingsFileName)
}

// Settings is a small persisted key/value store for user toggles. Every
// Set is written to disk before it returns.
type Settings struct {
	path string
	log  logger.Logger

	mu     sync.Mutex
	values map[string]any
}

// OpenSettings reads the settings file at path, or the default location
// when path is empty. A missing or unreadable file yields defaults; the
// file is only created on the first Set.
func OpenSettings(path string, log logger.Logger) *Settings {
	if path == "" {
		path = DefaultSettingsPath()
	}
	if log == nil {
		log = logger.Noop()
	}
	s := &Settings{path: path, log: log, values: DefaultSettings()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read settings %s, using defaults: %v", path, err)
		}
		return s
	}

	var stored map[string]any
	if err := yaml.Unmarshal(data, &stored); err != nil {
		log.Warn("settings file %s is corrupt, using defaults: %v", path, err)
		return s
	}
	for k, v := range stored {
		s.values[k] = v
	}
	return s
}

// Path returns the backing file.
func (s *Settings) Path() string {
	return s.path
}

// Get returns the value for key and whether it is known.
func (s *Settings) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Bool returns key as a bool. Integers count as true when non-zero, so
// files that store toggles as 0/1 keep working. Anything else is false.
func (s *Settings) Bool(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case int:
		return b != 0
	case int64:
		return b != 0
	case uint64:
		return b != 0
	case float64:
		return b != 0
	default:
		s.log.Warn("setting %s has value %v, expected true or false", key, v)
		return false
	}
}

// Set stores value under key and writes the file.
func (s *Settings) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// AudioEnabled reports the persisted audio toggle.
func (s *Settings) AudioEnabled() bool {
	return s.Bool(KeyUseAudio)
}

// SetAudio persists the audio toggle.
func (s *Settings) SetAudio(on bool) error {
	return s.Set(KeyUseAudio, on)
}

// Keys returns the known keys, sorted.
func (s *Settings) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// save writes values via a temp file and rename. Caller holds mu.
func (s *Settings) save() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
