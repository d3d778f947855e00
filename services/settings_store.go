package services

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"search-settings-service/models"
)

const settingsFileExt = ".yaml"

// SettingsStore keeps one YAML settings file per index in a directory.
type SettingsStore struct {
	dir string

	// Thread-safe file operations
	mu sync.Mutex
}

func NewSettingsStore(dir string) (*SettingsStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "error creating settings directory")
	}
	return &SettingsStore{dir: dir}, nil
}

func (s *SettingsStore) path(index string) string {
	return filepath.Join(s.dir, index+settingsFileExt)
}

// Load reads the settings of an index.
func (s *SettingsStore) Load(index string) (models.Settings, error) {
	if err := validIndexName(index); err != nil {
		return models.Settings{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadSettingsFile(s.path(index))
}

func loadSettingsFile(filename string) (models.Settings, error) {
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return models.Settings{}, errors.Wrap(ErrSettingsNotFound, filepath.Base(filename))
	}
	if err != nil {
		return models.Settings{}, errors.Wrap(err, "error reading settings file")
	}

	var settings models.Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return models.Settings{}, errors.Wrap(err, "error unmarshaling settings")
	}
	if settings.SearchableAttributes == nil {
		settings.SearchableAttributes = []string{}
	}
	if settings.UnretrievableAttributes == nil {
		settings.UnretrievableAttributes = []string{}
	}
	return settings, nil
}

// Save writes the settings of an index, replacing the previous version. A
// previous file that no longer parses is kept next to it as a backup.
func (s *SettingsStore) Save(index string, settings models.Settings) error {
	if err := validIndexName(index); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	filename := s.path(index)
	if _, err := os.Stat(filename); err == nil {
		if _, err := loadSettingsFile(filename); err != nil && !errors.Is(err, ErrSettingsNotFound) {
			if err := createBackup(filename); err != nil {
				return errors.Wrap(err, "error creating backup")
			}
		}
	}
	return saveToFile(settings, filename)
}

// List returns the names of the indices that have a settings file, sorted.
func (s *SettingsStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "error listing settings directory")
	}

	var indices []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, settingsFileExt) {
			continue
		}
		indices = append(indices, strings.TrimSuffix(name, settingsFileExt))
	}
	sort.Strings(indices)
	return indices, nil
}

// createBackup creates a backup of the existing file
func createBackup(filename string) error {
	input, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return os.WriteFile(filename+".backup", input, 0o644)
}

// saveToFile handles the actual file writing
func saveToFile(settings models.Settings, filename string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "error marshaling settings")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "error writing settings file")
	}
	return nil
}

func validIndexName(index string) error {
	if index == "" || strings.ContainsAny(index, `/\`) || index == "." || index == ".." {
		return errors.Wrapf(ErrInvalidIndexName, "%q", index)
	}
	return nil
}
