package serving

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ipfs/go-cid"
	carv2 "github.com/ipld/go-car/v2"
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

// pageFixture builds a page root with an index.html, an assets/ subtree,
// and a leading-underscore sibling directory that spec.md §4.7 says must
// never be walked into the lite archive. It returns the root along with
// the CIDs a correct lite archive must and must not contain.
type pageFixture struct {
	root           cid.Cid
	indexCID       cid.Cid
	assetFileCID   cid.Cid
	excludedRootCID cid.Cid
	excludedFileCID cid.Cid
}

func buildPage(t *testing.T, s *store.Adapter) pageFixture {
	t.Helper()
	ctx := context.Background()

	indexCID, err := s.PutFile(ctx, strings.NewReader("<html>hi</html>"))
	require.NoError(t, err)

	assetFileCID, err := s.PutFile(ctx, strings.NewReader("body { color: red; }"))
	require.NoError(t, err)
	assetsDirCID, err := s.PutDir(ctx, []store.ChildRef{{Name: "style.css", CID: assetFileCID}})
	require.NoError(t, err)

	excludedFileCID, err := s.PutFile(ctx, strings.NewReader("draft content"))
	require.NoError(t, err)
	excludedRootCID, err := s.PutDir(ctx, []store.ChildRef{{Name: "draft.html", CID: excludedFileCID}})
	require.NoError(t, err)

	root, err := s.PutDir(ctx, []store.ChildRef{
		{Name: "index.html", CID: indexCID},
		{Name: "assets", CID: assetsDirCID},
		{Name: "_drafts", CID: excludedRootCID},
	})
	require.NoError(t, err)

	return pageFixture{
		root:            root,
		indexCID:        indexCID,
		assetFileCID:    assetFileCID,
		excludedRootCID: excludedRootCID,
		excludedFileCID: excludedFileCID,
	}
}

// readCARBlockSet parses a CAR stream and returns the CIDs of every block it
// contains, keyed by their string form for cheap membership checks.
func readCARBlockSet(t *testing.T, data []byte) map[string]bool {
	t.Helper()
	br, err := carv2.NewBlockReader(bytes.NewReader(data))
	require.NoError(t, err)
	out := make(map[string]bool)
	for {
		blk, err := br.Next()
		if err != nil {
			break
		}
		out[blk.Cid().String()] = true
	}
	return out
}

func TestReadArchiveLiteIncludesIndexAndAssets(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	srv := New(s)
	fx := buildPage(t, s)

	var buf bytes.Buffer
	require.NoError(t, srv.ReadArchiveLite(ctx, fx.root, &buf))

	blocks := readCARBlockSet(t, buf.Bytes())
	assert.True(t, blocks[fx.root.String()])
	assert.True(t, blocks[fx.indexCID.String()])
	assert.True(t, blocks[fx.assetFileCID.String()])
}

func TestReadArchiveLiteExcludesUnderscorePrefixedEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	srv := New(s)
	fx := buildPage(t, s)

	var buf bytes.Buffer
	require.NoError(t, srv.ReadArchiveLite(ctx, fx.root, &buf))

	blocks := readCARBlockSet(t, buf.Bytes())
	assert.False(t, blocks[fx.excludedRootCID.String()])
	assert.False(t, blocks[fx.excludedFileCID.String()])
}
