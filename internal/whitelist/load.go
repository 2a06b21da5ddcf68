package whitelist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type trackedFile struct {
	Tracked yaml.Node `yaml:"tracked"`
}

// Load reads the "tracked" list from a JSON or YAML whitelist file.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whitelist %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a whitelist document. A missing "tracked" key yields no entries.
func Parse(data []byte) ([]Entry, error) {
	var doc trackedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse whitelist: %w", err)
	}

	switch doc.Tracked.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
	default:
		return nil, fmt.Errorf("parse whitelist: 'tracked' must be a list")
	}

	var entries []Entry
	if err := doc.Tracked.Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse whitelist entries: %w", err)
	}
	return entries, nil
}
