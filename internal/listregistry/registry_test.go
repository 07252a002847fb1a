package listregistry

import (
	"context"
	"testing"

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

func TestRegistryAddGetContains(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := New(s)

	require.NoError(t, r.Add(ctx, "allow", TypeString, "example.eth"))
	require.NoError(t, r.Add(ctx, "allow", TypeAddress, "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"))
	require.NoError(t, r.Add(ctx, "allow", TypeNumber, "42"))

	names, err := r.Get(ctx, "allow", TypeString)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"example.eth"}, names)

	ok, err := r.Contains(ctx, "allow", TypeString, "example.eth")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Contains(ctx, "allow", TypeString, "other.eth")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistryAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := New(s)

	require.NoError(t, r.Add(ctx, "block", TypeString, "bad.eth"))
	require.NoError(t, r.Add(ctx, "block", TypeString, "bad.eth"))

	names, err := r.Get(ctx, "block", TypeString)
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestRegistryRemoveTolerantOfMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := New(s)

	require.NoError(t, r.Remove(ctx, "block", TypeString, "never-added.eth"))
}

func TestRegistryNumberRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := New(s)

	require.NoError(t, r.Add(ctx, "heights", TypeNumber, "100"))
	require.NoError(t, r.Add(ctx, "heights", TypeNumber, "7"))

	vals, err := r.Get(ctx, "heights", TypeNumber)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"100", "7"}, vals)
}

func TestRegistryGetAllByPrefixGroupsBySetName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := New(s)

	require.NoError(t, r.Add(ctx, "contenthash_a.eth", TypeString, "1-bafy1"))
	require.NoError(t, r.Add(ctx, "contenthash_a.eth", TypeString, "2-bafy2"))
	require.NoError(t, r.Add(ctx, "contenthash_b.eth", TypeString, "1-bafy3"))

	grouped, err := r.GetAllByPrefix(ctx, "contenthash_", TypeString)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1-bafy1", "2-bafy2"}, grouped["contenthash_a.eth"])
	assert.ElementsMatch(t, []string{"1-bafy3"}, grouped["contenthash_b.eth"])
}

func TestRegistryRemoveAllByPrefixWipesEverySet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r := New(s)

	require.NoError(t, r.Add(ctx, "contenthash_a.eth", TypeString, "1-bafy1"))
	require.NoError(t, r.Add(ctx, "contenthash_b.eth", TypeString, "1-bafy3"))
	require.NoError(t, r.Add(ctx, "domains", TypeString, "a.eth"))

	require.NoError(t, r.RemoveAllByPrefix(ctx, "contenthash_"))

	grouped, err := r.GetAllByPrefix(ctx, "contenthash_", TypeString)
	require.NoError(t, err)
	assert.Empty(t, grouped)

	domains, err := r.Get(ctx, "domains", TypeString)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.eth"}, domains)
}
