package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	e := Entry{
		Name:            "websearch.pias.70",
		ConfigPath:      "/exp/config.toml",
		ResultsDir:      "/exp/results/websearch.pias.70",
		Args:            []string{"/exp/spine_empirical.tcl", "2.0", ""},
		DelayAssignment: json.RawMessage(`{"type":"fixed","parameters":{"delay":0.1}}`),
		PreparedAt:      at,
	}
	require.NoError(t, s.Record(ctx, e))

	got, err := s.Get(ctx, e.Name)
	require.NoError(t, err)
	assert.Equal(t, e.Args, got.Args)
	assert.JSONEq(t, string(e.DelayAssignment), string(got.DelayAssignment))
	assert.Nil(t, got.PacketProperties)
	assert.True(t, at.Equal(got.PreparedAt))
}

func TestStore_RecordReplacesByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, Entry{Name: "a.50", ConfigPath: "old.toml", Args: []string{"x"}}))
	require.NoError(t, s.Record(ctx, Entry{Name: "a.50", ConfigPath: "new.toml", Args: []string{"y"}, PacketProperties: json.RawMessage("null")}))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new.toml", entries[0].ConfigPath)
	assert.Equal(t, []string{"y"}, entries[0].Args)
	assert.Equal(t, json.RawMessage("null"), entries[0].PacketProperties)
	assert.False(t, entries[0].PreparedAt.IsZero())
}

func TestStore_ListOrderedByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"b.90", "a.50", "c.70"} {
		require.NoError(t, s.Record(ctx, Entry{Name: name, Args: []string{}}))
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a.50", "b.90", "c.70"}, names)
}

func TestStore_GetMissing_ReturnsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestStore_RecordWithoutName_Fails(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Record(context.Background(), Entry{}))
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), Entry{Name: "a.50", Args: []string{"x"}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), "a.50")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Args)
}
