package whitelist

import "github.com/joss/saydo/internal/domain"

// IndexPolicy says how the search result is picked after a chat search.
type IndexPolicy struct {
	// Auto delegates the choice to on-screen text matching.
	Auto  bool
	Index int
}

// Fixed selects search result n.
func Fixed(n int) IndexPolicy { return IndexPolicy{Index: n} }

// AutoOCR selects the result by matching on-screen text.
func AutoOCR() IndexPolicy { return IndexPolicy{Auto: true} }

// Outcome is an accepted target.
type Outcome struct {
	Canonical string
	Policy    IndexPolicy
}

// Resolver applies the whitelist policy to parsed targets.
type Resolver struct {
	Store   *Store
	Enforce bool
	// Suggestions caps "did you mean" hints on rejection.
	Suggestions int
}

// NewResolver creates a resolver over store.
func NewResolver(store *Store, enforce bool) *Resolver {
	return &Resolver{Store: store, Enforce: enforce, Suggestions: 3}
}

// Resolve maps target to its canonical name and index policy.
//
// Unknown targets are rejected while enforcing, otherwise passed through
// verbatim with the first search result.
func (r *Resolver) Resolve(target string) (Outcome, error) {
	idx := r.Store.Load()

	if canonical, ok := idx.Resolve(target); ok {
		if n, fixed := idx.FixedIndex(canonical); fixed {
			return Outcome{Canonical: canonical, Policy: Fixed(n)}, nil
		}
		return Outcome{Canonical: canonical, Policy: AutoOCR()}, nil
	}

	if r.Enforce {
		return Outcome{}, &domain.ResolutionError{
			Target:      target,
			Suggestions: Suggest(idx, target, r.Suggestions),
		}
	}

	return Outcome{Canonical: target, Policy: Fixed(0)}, nil
}
