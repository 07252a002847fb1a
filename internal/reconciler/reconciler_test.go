package reconciler

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ipfs/go-cid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigmergic-org/dservice/internal/finalization"
	"github.com/stigmergic-org/dservice/internal/listregistry"
	"github.com/stigmergic-org/dservice/internal/store"
)

func newTestEnv(t *testing.T) (*store.Adapter, *listregistry.Registry, *finalization.Map) {
	t.Helper()
	s, err := store.New(store.Config{Backend: store.BackendMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	reg := listregistry.New(s)
	f, err := finalization.New(context.Background(), s, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return s, reg, f
}

func newTestReconciler(t *testing.T) (*Reconciler, *store.Adapter, *listregistry.Registry, *finalization.Map) {
	s, reg, f := newTestEnv(t)
	r := New(Config{}, s, nil, reg, f, zerolog.Nop())
	return r, s, reg, f
}

func putFileCID(t *testing.T, s *store.Adapter, content string) cid.Cid {
	t.Helper()
	c, err := s.PutFile(context.Background(), strings.NewReader(content))
	require.NoError(t, err)
	return c
}

func TestPickLatestHighestHeightWins(t *testing.T) {
	height, c, ok := pickLatest([]string{"10-bafkqaalb", "20-bafkqaalc", "5-bafkqaalb"})
	require.True(t, ok)
	assert.Equal(t, uint64(20), height)
	assert.Equal(t, "bafkqaalc", c.String())
}

func TestPickLatestTieBreaksOnInsertionOrder(t *testing.T) {
	height, c, ok := pickLatest([]string{"10-bafkqaalb", "10-bafkqaalc"})
	require.True(t, ok)
	assert.Equal(t, uint64(10), height)
	assert.Equal(t, "bafkqaalc", c.String())
}

func TestPickLatestEmptyIsNotOk(t *testing.T) {
	_, _, ok := pickLatest(nil)
	assert.False(t, ok)
}

// TestEnsNameHashMatchesEIP137KnownVector pins ensNameHash against the
// namehash("eth") value from the EIP-137 spec itself, independent of any
// nameForHash plumbing.
func TestEnsNameHashMatchesEIP137KnownVector(t *testing.T) {
	got := ensNameHash("eth")
	want := crypto.Keccak256Hash(
		append(make([]byte, 32), crypto.Keccak256([]byte("eth"))...),
	)
	assert.Equal(t, want, got)
	assert.Equal(t, "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae", got.Hex())
}

func TestEnsNameHashIsRecursiveOverLabels(t *testing.T) {
	got := ensNameHash("example.eth")
	assert.Equal(t, "0x3d5d2e21162745e4df4f56471fd7f651f441adaaca25deb70e4738c6f63d1224", got.Hex())
}

// TestNameForHashResolvesRealOnChainNameHash drives a content update's
// node (a real EIP-137 namehash, as chainwatcher.scanContentHashes would
// deliver it in lg.Topics[1]) through nameForHash, guarding against the
// earlier placeholder that could never match a real on-chain node.
func TestNameForHashResolvesRealOnChainNameHash(t *testing.T) {
	ctx := context.Background()
	r, _, reg, _ := newTestReconciler(t)

	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, "example.eth"))
	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, "other.eth"))

	onChainNode := ensNameHash("example.eth")
	name, ok, err := r.nameForHash(ctx, onChainNode)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "example.eth", name)
}

func TestNameForHashUnknownNodeIsNotOk(t *testing.T) {
	ctx := context.Background()
	r, _, reg, _ := newTestReconciler(t)

	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, "example.eth"))

	_, ok, err := r.nameForHash(ctx, ensNameHash("unregistered.eth"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActiveNamesAllowOverridesDomainsAndBlock(t *testing.T) {
	ctx := context.Background()
	r, _, reg, _ := newTestReconciler(t)

	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, "a.eth"))
	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, "b.eth"))
	require.NoError(t, reg.Add(ctx, setAllow, listregistry.TypeString, "b.eth"))
	require.NoError(t, reg.Add(ctx, setBlock, listregistry.TypeString, "b.eth"))

	active, err := r.activeNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.eth"}, active)
}

func TestActiveNamesBlockExcludesFromDomainsWhenNoAllow(t *testing.T) {
	ctx := context.Background()
	r, _, reg, _ := newTestReconciler(t)

	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, "a.eth"))
	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, "b.eth"))
	require.NoError(t, reg.Add(ctx, setBlock, listregistry.TypeString, "b.eth"))

	active, err := r.activeNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.eth"}, active)
}

func TestSyncFinalizesHighestHeightEntry(t *testing.T) {
	ctx := context.Background()
	r, s, reg, f := newTestReconciler(t)

	name := "example.eth"
	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, name))

	oldC := putFileCID(t, s, "v1")
	newC := putFileCID(t, s, "v2")
	require.NoError(t, reg.Add(ctx, contentHashPrefix+name, listregistry.TypeString, "10-"+oldC.String()))
	require.NoError(t, reg.Add(ctx, contentHashPrefix+name, listregistry.TypeString, "20-"+newC.String()))

	require.NoError(t, r.sync(ctx))

	finalized, err := f.IsFinalized(ctx, name, 20, newC)
	require.NoError(t, err)
	assert.True(t, finalized)

	pins, err := s.PinList(ctx, finalLabelFor(name, 20))
	require.NoError(t, err)
	require.Len(t, pins, 1)
}

func TestSyncIsIdempotentOnceFinalized(t *testing.T) {
	ctx := context.Background()
	r, s, reg, _ := newTestReconciler(t)

	name := "example.eth"
	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, name))
	c := putFileCID(t, s, "v1")
	require.NoError(t, reg.Add(ctx, contentHashPrefix+name, listregistry.TypeString, "10-"+c.String()))

	require.NoError(t, r.sync(ctx))
	require.NoError(t, r.sync(ctx)) // second run must not re-pin or error

	pins, err := s.PinList(ctx, finalLabelFor(name, 10))
	require.NoError(t, err)
	assert.Len(t, pins, 1)
}

func TestNukePageRemovesFinalPinAndUnreferencedBlocks(t *testing.T) {
	ctx := context.Background()
	r, s, reg, f := newTestReconciler(t)

	name := "blocked.eth"
	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, name))
	c := putFileCID(t, s, "page content")
	require.NoError(t, reg.Add(ctx, contentHashPrefix+name, listregistry.TypeString, "1-"+c.String()))
	require.NoError(t, r.sync(ctx))

	require.NoError(t, r.nukePage(ctx, name))

	pins, err := s.PinList(ctx, finalLabelFor(name, 1))
	require.NoError(t, err)
	assert.Empty(t, pins)

	names, err := f.ListNames(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, name)

	_, err = s.GetBlock(ctx, c)
	assert.Error(t, err)
}

func TestNukeStageRespectsBlockList(t *testing.T) {
	ctx := context.Background()
	r, s, reg, f := newTestReconciler(t)

	name := "toblock.eth"
	require.NoError(t, reg.Add(ctx, setDomains, listregistry.TypeString, name))
	c := putFileCID(t, s, "v1")
	require.NoError(t, reg.Add(ctx, contentHashPrefix+name, listregistry.TypeString, "1-"+c.String()))
	require.NoError(t, r.sync(ctx))

	require.NoError(t, reg.Add(ctx, setBlock, listregistry.TypeString, name))
	require.NoError(t, r.nuke(ctx))

	names, err := f.ListNames(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, name)
}

func TestLoadSaveCursorRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _, _, _ := newTestReconciler(t)

	cursor, err := r.loadCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cursor)

	require.NoError(t, r.saveCursor(ctx, 101))
	loaded, err := r.loadCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), loaded) // persisted latest=100, resumes at 101
}

func TestPruneStagedRemovesOldPins(t *testing.T) {
	ctx := context.Background()
	r, s, _, _ := newTestReconciler(t)
	r.cfg.MaxStagedAge = 0 // everything with a parseable timestamp is stale

	c := putFileCID(t, s, "staged content")
	require.NoError(t, s.PinAdd(ctx, c, "spg_staged_old.eth_1", true))

	require.NoError(t, r.pruneStaged(ctx))

	pins, err := s.PinList(ctx, "spg_staged_")
	require.NoError(t, err)
	assert.Empty(t, pins)
}
