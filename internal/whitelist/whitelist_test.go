package whitelist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/saydo/internal/domain"
)

func intPtr(n int) *int { return &n }

func sampleEntries() []Entry {
	return []Entry{
		{Canonical: "Бот поддержки", Aliases: []string{"бот поддержки", "бот"}},
		{Canonical: "Мама", Aliases: []string{"мама", "мамочка"}, ResultIndex: intPtr(2)},
		{Canonical: "Алёна", ResultIndex: intPtr(0)},
	}
}

func TestBuildResolve(t *testing.T) {
	idx := Build(sampleEntries())

	tests := []struct {
		target string
		want   string
		ok     bool
	}{
		{"бот поддержки", "Бот поддержки", true},
		{"  БОТ   Поддержки ", "Бот поддержки", true},
		{"мамочка", "Мама", true},
		{"алена", "Алёна", true},
		{"АЛЁНА", "Алёна", true},
		{"папа", "", false},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, ok := idx.Resolve(tt.target)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSkipsEmptyCanonical(t *testing.T) {
	idx := Build([]Entry{
		{Canonical: "", Aliases: []string{"ghost"}},
		{Canonical: "Real", Aliases: []string{"", "   "}},
	})

	_, ok := idx.Resolve("ghost")
	assert.False(t, ok)
	assert.Equal(t, []string{"Real"}, idx.Canonicals())
	assert.Equal(t, []string{"real"}, idx.Aliases())
}

func TestFixedIndex(t *testing.T) {
	idx := Build(sampleEntries())

	n, ok := idx.FixedIndex("Мама")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = idx.FixedIndex("Алёна")
	assert.True(t, ok, "explicit zero is a configured index")
	assert.Equal(t, 0, n)

	_, ok = idx.FixedIndex("Бот поддержки")
	assert.False(t, ok)
}

func TestCollisionLastWins(t *testing.T) {
	idx := Build([]Entry{
		{Canonical: "Work", Aliases: []string{"team"}},
		{Canonical: "Friends", Aliases: []string{"Team"}},
	})

	got, ok := idx.Resolve("team")
	require.True(t, ok)
	assert.Equal(t, "Friends", got)

	require.Len(t, idx.Collisions(), 1)
	assert.Equal(t, Collision{Alias: "team", Previous: "Work", Winner: "Friends"}, idx.Collisions()[0])
}

func TestSelfAliasNotCollision(t *testing.T) {
	idx := Build([]Entry{{Canonical: "Мама", Aliases: []string{"мама", "МАМА"}}})
	assert.Empty(t, idx.Collisions())
	assert.Equal(t, []string{"мама"}, idx.AliasesOf("Мама"))
}

func TestNilIndex(t *testing.T) {
	var idx *Index
	_, ok := idx.Resolve("x")
	assert.False(t, ok)
	assert.Zero(t, idx.Len())
	assert.Nil(t, idx.Collisions())
}

func TestResolverPolicies(t *testing.T) {
	store := NewStore(Build(sampleEntries()))
	r := NewResolver(store, true)

	out, err := r.Resolve("бот")
	require.NoError(t, err)
	assert.Equal(t, Outcome{Canonical: "Бот поддержки", Policy: AutoOCR()}, out)

	out, err = r.Resolve("мама")
	require.NoError(t, err)
	assert.Equal(t, Outcome{Canonical: "Мама", Policy: Fixed(2)}, out)
}

func TestResolverEnforced(t *testing.T) {
	r := NewResolver(NewStore(Build(sampleEntries())), true)

	_, err := r.Resolve("Бот поддерж")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrResolution))
	assert.Contains(t, err.Error(), "SAYDO_DISABLE_WHITELIST=1")

	var re *domain.ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "Бот поддерж", re.Target)
}

func TestResolverPassThrough(t *testing.T) {
	r := NewResolver(NewStore(Build(sampleEntries())), false)

	out, err := r.Resolve("Незнакомец")
	require.NoError(t, err)
	assert.Equal(t, Outcome{Canonical: "Незнакомец", Policy: Fixed(0)}, out)
}

func TestSuggest(t *testing.T) {
	idx := Build([]Entry{
		{Canonical: "Support Bot", Aliases: []string{"support", "helpdesk"}},
		{Canonical: "Mom"},
		{Canonical: "Sport Club"},
	})

	got := Suggest(idx, "suport", 3)
	require.NotEmpty(t, got)
	assert.Contains(t, got, "Support Bot")
	assert.NotContains(t, got, "Mom")

	seen := map[string]bool{}
	for _, c := range got {
		assert.False(t, seen[c], "duplicate suggestion %s", c)
		seen[c] = true
	}

	assert.Nil(t, Suggest(idx, "", 3))
	assert.Nil(t, Suggest(idx, "support", 0))
	assert.Len(t, Suggest(idx, "s", 1), 1)
}

func TestParse(t *testing.T) {
	doc := `{
  "tracked": [
    {"canonical": "Мама", "aliases": ["мамочка"], "result_index": 1},
    {"canonical": "Бот"}
  ]
}`
	entries, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Мама", entries[0].Canonical)
	require.NotNil(t, entries[0].ResultIndex)
	assert.Equal(t, 1, *entries[0].ResultIndex)
	assert.Nil(t, entries[1].ResultIndex)
}

func TestParseYAML(t *testing.T) {
	doc := "tracked:\n  - canonical: Work\n    aliases: [office, job]\n"
	entries, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Canonical: "Work", Aliases: []string{"office", "job"}}}, entries)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`{"tracked": {"canonical": "x"}}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"tracked": [`))
	assert.Error(t, err)

	entries, err := Parse([]byte(`{}`))
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracked.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tracked":[{"canonical":"A"}]}`), 0644))

	store, err := Open(path)
	require.NoError(t, err)
	_, ok := store.Load().Resolve("a")
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(`{"tracked": "broken"}`), 0644))
	_, err = store.Reload(path)
	assert.Error(t, err)
	_, ok = store.Load().Resolve("a")
	assert.True(t, ok, "failed reload keeps previous index")

	require.NoError(t, os.WriteFile(path, []byte(`{"tracked":[{"canonical":"B"}]}`), 0644))
	_, err = store.Reload(path)
	require.NoError(t, err)
	_, ok = store.Load().Resolve("a")
	assert.False(t, ok)
	_, ok = store.Load().Resolve("b")
	assert.True(t, ok)
}

func TestEmptyStore(t *testing.T) {
	var s Store
	assert.Equal(t, 0, s.Load().Len())
}
