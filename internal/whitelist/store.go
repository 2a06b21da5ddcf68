package whitelist

import (
	"sync/atomic"

	"github.com/joss/saydo/internal/logging"
)

// Store holds the current Index. Readers never see a partially built index.
type Store struct {
	current atomic.Pointer[Index]
}

// NewStore returns a Store serving idx.
func NewStore(idx *Index) *Store {
	s := &Store{}
	s.Swap(idx)
	return s
}

// Load returns the current index, or an empty one if none was stored.
func (s *Store) Load() *Index {
	if idx := s.current.Load(); idx != nil {
		return idx
	}
	return Build(nil)
}

// Swap replaces the current index and returns the previous one.
func (s *Store) Swap(idx *Index) *Index {
	return s.current.Swap(idx)
}

// Reload parses path and swaps in the new index. On error the previous
// index stays in place.
func (s *Store) Reload(path string) (*Index, error) {
	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	idx := Build(entries)
	reportCollisions(idx)
	s.Swap(idx)
	return idx, nil
}

// Open builds a Store from path.
func Open(path string) (*Store, error) {
	s := &Store{}
	if _, err := s.Reload(path); err != nil {
		return nil, err
	}
	return s, nil
}

func reportCollisions(idx *Index) {
	log := logging.New("whitelist")
	for _, c := range idx.Collisions() {
		log.Warn("alias_collision", map[string]interface{}{
			"alias":    c.Alias,
			"previous": c.Previous,
			"winner":   c.Winner,
		}, nil)
	}
}
