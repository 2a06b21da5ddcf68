package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joss/saydo/internal/domain"
)

// DriverConfig configures one application driver.
type DriverConfig struct {
	Enabled   bool   `yaml:"enabled"`
	HammerURL string `yaml:"hammer_url"`
	// Timeout in seconds; zero means the environment default.
	Timeout float64 `yaml:"timeout"`
}

// TimeoutOr returns the configured timeout or fallback.
func (d DriverConfig) TimeoutOr(fallback time.Duration) time.Duration {
	if d.Timeout <= 0 {
		return fallback
	}
	return time.Duration(d.Timeout * float64(time.Second))
}

// File is the driver configuration document. JSON files are read as YAML.
type File struct {
	Drivers       map[string]DriverConfig `yaml:"drivers"`
	DefaultDriver string                  `yaml:"default_driver"`
}

// DefaultFile enables every built-in driver against the environment daemon URL.
func DefaultFile() *File {
	e := Env()
	return &File{
		Drivers: map[string]DriverConfig{
			domain.DriverTelegram: {Enabled: true, HammerURL: e.HammerURL},
			domain.DriverChrome:   {Enabled: true, HammerURL: e.HammerURL},
		},
		DefaultDriver: domain.DriverTelegram,
	}
}

// LoadFile reads the driver config at path. A missing file yields DefaultFile.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultFile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read driver config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse driver config %s: %w", path, err)
	}
	if f.DefaultDriver == "" {
		f.DefaultDriver = domain.DriverTelegram
	}
	for name, d := range f.Drivers {
		if d.HammerURL == "" {
			d.HammerURL = Env().HammerURL
			f.Drivers[name] = d
		}
	}
	return &f, nil
}

// Enabled lists driver names that are switched on.
func (f *File) Enabled() []string {
	var names []string
	for name, d := range f.Drivers {
		if d.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
