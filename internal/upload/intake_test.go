package upload

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigmergic-org/dservice/internal/errs"
	"github.com/stigmergic-org/dservice/internal/store"
)

func newTestStore(t *testing.T) *store.Adapter {
	t.Helper()
	s, err := store.New(store.Config{Backend: store.BackendMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// archiveFixture imports a small file into a fresh store and exports it as
// a CAR stream, giving WriteArchive a realistic archive to re-import.
func archiveFixture(t *testing.T, content string) []byte {
	t.Helper()
	src := newTestStore(t)
	root, err := src.PutFile(context.Background(), strings.NewReader(content))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, src.ExportArchive(context.Background(), root, &buf))
	return buf.Bytes()
}

func TestIntakeWriteArchiveStagesAndPins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	in := New(s, 1<<20)
	in.now = func() time.Time { return time.Unix(1700000000, 0) }

	archive := archiveFixture(t, "hello world")
	root, err := in.WriteArchive(ctx, "example.eth", bytes.NewReader(archive))
	require.NoError(t, err)
	assert.True(t, root.Defined())

	pins, err := s.PinList(ctx, "spg_staged_example.eth_1700000000")
	require.NoError(t, err)
	require.Len(t, pins, 1)
	assert.True(t, pins[0].CID.Equals(root))
}

func TestIntakeWriteArchiveRejectsOversized(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	in := New(s, 4) // tiny cap, any real archive exceeds it

	archive := archiveFixture(t, "this content will not fit in four bytes")
	_, err := in.WriteArchive(ctx, "example.eth", bytes.NewReader(archive))
	require.Error(t, err)
	var appErr *errs.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errs.KindUploadTooLarge, appErr.Kind)
}

func TestIntakeWriteArchiveRejectsMalformedCAR(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	in := New(s, 1<<20)

	_, err := in.WriteArchive(ctx, "example.eth", bytes.NewReader([]byte("not a car file")))
	require.Error(t, err)
}
