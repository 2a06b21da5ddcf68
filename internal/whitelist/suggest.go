package whitelist

import (
	"github.com/sahilm/fuzzy"

	"github.com/joss/saydo/internal/textnorm"
)

// Suggest ranks canonical names whose aliases fuzzily match target.
// At most n distinct canonicals are returned, best first.
func Suggest(idx *Index, target string, n int) []string {
	key := textnorm.Normalize(target)
	if idx == nil || key == "" || n <= 0 {
		return nil
	}

	aliases := idx.Aliases()
	seen := make(map[string]bool)
	var out []string

	for _, m := range fuzzy.Find(key, aliases) {
		canonical := idx.aliases[aliases[m.Index]]
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
		if len(out) == n {
			break
		}
	}
	return out
}
