package finalization

import (
	"context"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigmergic-org/dservice/internal/store"
)

func newTestStore(t *testing.T) *store.Adapter {
	t.Helper()
	s, err := store.New(store.Config{Backend: store.BackendMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestMap(t *testing.T, s *store.Adapter) *Map {
	t.Helper()
	m, err := New(context.Background(), s, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func mustCID(t *testing.T, s string) cid.Cid {
	t.Helper()
	c, err := cid.Decode(s)
	require.NoError(t, err)
	return c
}

// a couple of distinct CIDv1 raw identity CIDs (of "a" and "b") for test
// fixtures.
const cidA = "bafkqaalb"
const cidB = "bafkqaalc"

func TestMapPushThenIsFinalized(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := newTestMap(t, s)

	c := mustCID(t, cidA)
	require.NoError(t, m.Push(ctx, "example.eth", 10, c))

	finalized, err := m.IsFinalized(ctx, "example.eth", 10, c)
	require.NoError(t, err)
	assert.True(t, finalized)

	finalized, err = m.IsFinalized(ctx, "example.eth", 10, mustCID(t, cidB))
	require.NoError(t, err)
	assert.False(t, finalized)
}

func TestMapPushReplacesSameHeight(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := newTestMap(t, s)

	name := "example.eth"
	require.NoError(t, m.Push(ctx, name, 10, mustCID(t, cidA)))
	require.NoError(t, m.Push(ctx, name, 10, mustCID(t, cidB)))

	entries, err := m.EntriesFor(ctx, name)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(10), entries[0].Height)
	assert.True(t, entries[0].CID.Equals(mustCID(t, cidB)))
}

func TestMapEntriesForSortedByHeight(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := newTestMap(t, s)

	name := "example.eth"
	require.NoError(t, m.Push(ctx, name, 20, mustCID(t, cidB)))
	require.NoError(t, m.Push(ctx, name, 10, mustCID(t, cidA)))

	entries, err := m.EntriesFor(ctx, name)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(10), entries[0].Height)
	assert.Equal(t, uint64(20), entries[1].Height)
}

func TestMapRemoveDeletesAllEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := newTestMap(t, s)

	name := "example.eth"
	require.NoError(t, m.Push(ctx, name, 10, mustCID(t, cidA)))
	require.NoError(t, m.Remove(ctx, name))

	entries, err := m.EntriesFor(ctx, name)
	require.NoError(t, err)
	assert.Empty(t, entries)

	names, err := m.ListNames(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, name)
}

func TestMapSurvivesReload(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	m := newTestMap(t, s)

	name := "example.eth"
	require.NoError(t, m.Push(ctx, name, 10, mustCID(t, cidA)))

	reloaded, err := New(ctx, s, zerolog.Nop())
	require.NoError(t, err)
	defer reloaded.Close()

	entries, err := reloaded.EntriesFor(ctx, name)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].CID.Equals(mustCID(t, cidA)))
}
