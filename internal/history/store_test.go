package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAssignsIDAndTime(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	e := &Entry{Kind: KindHeard, Text: "сейдо открой чат мама"}
	require.NoError(t, s.Record(ctx, e))

	assert.Len(t, e.ID, 26)
	assert.False(t, e.Time.IsZero())
	assert.Equal(t, e.Text, e.FullText)
}

func TestListNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, text := range []string{"первая", "вторая", "третья"} {
		require.NoError(t, s.Record(ctx, &Entry{
			Time: base.Add(time.Duration(i) * time.Second),
			Kind: KindHeard,
			Text: text,
		}))
	}

	got, err := s.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "третья", got[0].Text)
	assert.Equal(t, "вторая", got[1].Text)
	assert.True(t, got[0].Time.Equal(base.Add(2*time.Second)))
}

func TestCommandRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	in := &Entry{
		Kind:      KindCommand,
		Text:      "напиши в чат Мама: привет",
		FullText:  "агент напиши в чат Мама: привет",
		Driver:    "telegram",
		Intent:    "send_message",
		Target:    "Мама",
		OK:        false,
		Error:     "HTTP 500",
		Failure:   "transport",
		Duration:  1500 * time.Millisecond,
		CommandID: "abc123",
	}
	require.NoError(t, s.Record(ctx, in))

	got, err := s.List(ctx, KindCommand, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	out := got[0]
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.FullText, out.FullText)
	assert.Equal(t, in.Driver, out.Driver)
	assert.Equal(t, in.Intent, out.Intent)
	assert.Equal(t, in.Target, out.Target)
	assert.False(t, out.OK)
	assert.Equal(t, in.Error, out.Error)
	assert.Equal(t, in.Failure, out.Failure)
	assert.Equal(t, in.Duration, out.Duration)
	assert.Equal(t, in.CommandID, out.CommandID)
}

func TestListUnrecognized(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, &Entry{Kind: KindHeard, Text: "агент сделай что-нибудь"}))
	require.NoError(t, s.Record(ctx, &Entry{Kind: KindUnrecognized, Text: "сделай что-нибудь", FullText: "агент сделай что-нибудь"}))
	require.NoError(t, s.Record(ctx, &Entry{Kind: KindCommand, Text: "открой чат мама", OK: true}))

	got, err := s.ListUnrecognized(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "сделай что-нибудь", got[0].Text)
	assert.Equal(t, "агент сделай что-нибудь", got[0].FullText)

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, &Entry{Kind: KindHeard, Text: "x"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, path, s.Path())
}
