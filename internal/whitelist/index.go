// Package whitelist resolves spoken chat names to canonical whitelisted names.
//
// An Index is built once from the tracked entries and never mutated; reloads
// build a fresh Index and swap it in through a Store.
package whitelist

import (
	"sort"

	"github.com/joss/saydo/internal/textnorm"
)

// Entry is one whitelisted chat as declared in the tracked chats file.
type Entry struct {
	Canonical string   `yaml:"canonical" json:"canonical"`
	Aliases   []string `yaml:"aliases" json:"aliases,omitempty"`
	// ResultIndex is nil when the key is absent, which selects on-screen matching.
	ResultIndex *int `yaml:"result_index" json:"result_index,omitempty"`
}

// Collision records a normalized alias claimed by more than one canonical.
// The later entry wins.
type Collision struct {
	Alias    string `json:"alias"`
	Previous string `json:"previous"`
	Winner   string `json:"winner"`
}

// Index maps normalized aliases to canonical names.
type Index struct {
	aliases    map[string]string
	fixed      map[string]int
	canonicals []string
	collisions []Collision
}

// Build constructs an Index. Entries with an empty canonical are skipped.
func Build(entries []Entry) *Index {
	idx := &Index{
		aliases: make(map[string]string),
		fixed:   make(map[string]int),
	}

	for _, e := range entries {
		if e.Canonical == "" {
			continue
		}
		idx.canonicals = append(idx.canonicals, e.Canonical)
		idx.register(textnorm.Normalize(e.Canonical), e.Canonical)

		if e.ResultIndex != nil {
			idx.fixed[e.Canonical] = *e.ResultIndex
		}

		for _, a := range e.Aliases {
			if key := textnorm.Normalize(a); key != "" {
				idx.register(key, e.Canonical)
			}
		}
	}

	return idx
}

func (idx *Index) register(key, canonical string) {
	if prev, ok := idx.aliases[key]; ok && prev != canonical {
		idx.collisions = append(idx.collisions, Collision{Alias: key, Previous: prev, Winner: canonical})
	}
	idx.aliases[key] = canonical
}

// Resolve returns the canonical name for target, matched case- and
// diaeresis-insensitively.
func (idx *Index) Resolve(target string) (string, bool) {
	if idx == nil {
		return "", false
	}
	key := textnorm.Normalize(target)
	if key == "" {
		return "", false
	}
	canonical, ok := idx.aliases[key]
	return canonical, ok
}

// FixedIndex reports the configured search result index for canonical.
// Absence means the position must be found on screen.
func (idx *Index) FixedIndex(canonical string) (int, bool) {
	if idx == nil {
		return 0, false
	}
	n, ok := idx.fixed[canonical]
	return n, ok
}

// Canonicals lists canonical names in load order.
func (idx *Index) Canonicals() []string {
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.canonicals...)
}

// Aliases lists all normalized alias keys, sorted.
func (idx *Index) Aliases() []string {
	if idx == nil {
		return nil
	}
	keys := make([]string, 0, len(idx.aliases))
	for k := range idx.aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AliasesOf lists the normalized alias keys that resolve to canonical, sorted.
func (idx *Index) AliasesOf(canonical string) []string {
	var keys []string
	for _, k := range idx.Aliases() {
		if idx.aliases[k] == canonical {
			keys = append(keys, k)
		}
	}
	return keys
}

// Collisions lists alias keys silently overridden during Build.
func (idx *Index) Collisions() []Collision {
	if idx == nil {
		return nil
	}
	return append([]Collision(nil), idx.collisions...)
}

// Len is the number of canonical entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.canonicals)
}
