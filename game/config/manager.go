package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/b3dgs/lionengine-sub021/game/circuit"
	"github.com/b3dgs/lionengine-sub021/game/engine"
	"github.com/b3dgs/lionengine-sub021/game/service"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = tilemap.ErrInvalidConfig
)

const (
	// DefaultConfigName is used when no map is requested
	DefaultConfigName = "meadow"

	// CircuitsDir holds one <config>.xml circuit table per map, under the config dir
	CircuitsDir = "circuits"
)

// configExts are tried in order when a name has no extension
var configExts = []string{".json", ".yaml", ".yml"}

// Manager handles map configuration and circuit table loading and caching
type Manager struct {
	configDir     string
	defaultConfig *tilemap.Config
	configs       map[string]*tilemap.Config
	circuits      map[string]*circuit.Table
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*tilemap.Config),
		circuits:  make(map[string]*circuit.Table),
	}
	m.defaultConfig = m.findDefaultConfig()
	return m, nil
}

// LoadConfig loads a configuration by name, with or without extension
func (m *Manager) LoadConfig(name string) (*tilemap.Config, error) {
	id := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.configPath(name)
	if err != nil {
		if id == DefaultConfigName {
			config := tilemap.DefaultConfig()
			m.configs[id] = config
			return config, nil
		}
		return nil, err
	}

	config, err := tilemap.LoadConfig(path)
	if err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return nil, fmt.Errorf("failed to load config %s: %w", filepath.Base(path), err)
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all available configurations,
// ordered by config ID. Invalid files are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !tilemap.IsConfigFile(entry.Name()) {
			continue
		}
		id := configID(entry.Name())
		if seen[id] {
			continue
		}
		seen[id] = true

		config, err := m.LoadConfig(id)
		if err != nil {
			continue
		}
		configs = append(configs, m.describe(entry.Name(), id, config))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// describe summarizes a config for listings
func (m *Manager) describe(filename, id string, config *tilemap.Config) *service.ConfigInfo {
	info := &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id,
		Name:        config.Name,
		Description: config.Description,
		Width:       config.Width,
		Height:      config.Height,
		Profiles:    engine.Profiles(config),
		HasCircuits: m.hasCircuits(id),
	}
	if tileMap, err := tilemap.NewMap(config); err == nil {
		info.Groups = engine.CountGroups(tileMap)
	}
	return info
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *tilemap.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations and circuit tables
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*tilemap.Config)
	m.circuits = make(map[string]*circuit.Table)
	m.mu.Unlock()

	config := m.findDefaultConfig()

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// findDefaultConfig picks the meadow map, else the first valid file, else the built-in map
func (m *Manager) findDefaultConfig() *tilemap.Config {
	if _, err := m.configPath(DefaultConfigName); err == nil {
		if config, err := m.LoadConfig(DefaultConfigName); err == nil {
			return config
		}
	}
	if configs, err := m.ListConfigs(); err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].ConfigID); err == nil {
			return config
		}
	}
	return tilemap.DefaultConfig()
}

// SaveConfig validates and writes a configuration. The format follows the
// extension of name, JSON when it has none.
func (m *Manager) SaveConfig(name string, config *tilemap.Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is required", ErrInvalidConfig)
	}
	if err := tilemap.ValidateConfig(config); err != nil {
		return err
	}

	filename := name
	if !tilemap.IsConfigFile(filename) {
		filename = name + ".json"
	}
	data, err := tilemap.MarshalConfig(config, filepath.Ext(filename))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	id := configID(name)
	m.mu.Lock()
	m.configs[id] = config
	delete(m.circuits, id)
	m.mu.Unlock()
	return nil
}

// LoadCircuits returns the circuit table stored in circuits/<name>.xml, or
// the table extracted from the map itself when no file exists.
func (m *Manager) LoadCircuits(name string) (*circuit.Table, error) {
	id := configID(name)

	m.mu.RLock()
	table, exists := m.circuits[id]
	m.mu.RUnlock()
	if exists {
		return table, nil
	}

	table, err := circuit.ImportFile(m.circuitsPath(id))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		config, loadErr := m.LoadConfig(id)
		if loadErr != nil {
			return nil, loadErr
		}
		if table, err = circuit.ExtractConfigs(config); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load circuits for %s: %w", id, err)
	}

	m.mu.Lock()
	m.circuits[id] = table
	m.mu.Unlock()
	return table, nil
}

// SaveCircuits writes a circuit table to circuits/<name>.xml
func (m *Manager) SaveCircuits(name string, table *circuit.Table) error {
	if table == nil {
		return fmt.Errorf("circuit table cannot be nil")
	}
	id := configID(name)

	if err := os.MkdirAll(filepath.Join(m.configDir, CircuitsDir), 0755); err != nil {
		return fmt.Errorf("failed to create circuits directory: %w", err)
	}
	if err := circuit.ExportFile(m.circuitsPath(id), table); err != nil {
		return err
	}

	m.mu.Lock()
	m.circuits[id] = table
	m.mu.Unlock()
	return nil
}

// configPath finds the file of a config name
func (m *Manager) configPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	candidates := []string{name}
	if !tilemap.IsConfigFile(name) {
		candidates = candidates[:0]
		for _, ext := range configExts {
			candidates = append(candidates, name+ext)
		}
	}
	for _, filename := range candidates {
		path := filepath.Join(m.configDir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

func (m *Manager) circuitsPath(id string) string {
	return filepath.Join(m.configDir, CircuitsDir, id+".xml")
}

func (m *Manager) hasCircuits(id string) bool {
	_, err := os.Stat(m.circuitsPath(id))
	return err == nil
}

// configID strips the extension of a config file name
func configID(name string) string {
	if tilemap.IsConfigFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// Count returns the number of cached configurations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// ReloadConfig drops a cached configuration and its circuits, then loads it again
func (m *Manager) ReloadConfig(name string) (*tilemap.Config, error) {
	id := configID(name)
	m.mu.Lock()
	delete(m.configs, id)
	delete(m.circuits, id)
	m.mu.Unlock()
	return m.LoadConfig(name)
}
