package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ipfs/go-cid"
	carv2 "github.com/ipld/go-car/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigmergic-org/dservice/internal/finalization"
	"github.com/stigmergic-org/dservice/internal/listregistry"
	"github.com/stigmergic-org/dservice/internal/serving"
	"github.com/stigmergic-org/dservice/internal/store"
	"github.com/stigmergic-org/dservice/internal/upload"
	"github.com/stigmergic-org/dservice/pkg/health"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	s, err := store.New(store.Config{Backend: store.BackendMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	f, err := finalization.New(context.Background(), s, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(f.Close)

	return Deps{
		Store:    s,
		Registry: listregistry.New(s),
		Finals:   f,
		Serving:  serving.New(s),
		Intake:   upload.New(s, 1<<20),
		Health:   health.NewManager(health.DefaultConfig()),
	}
}

func TestHandleGetInfoReportsVersion(t *testing.T) {
	handler := NewHandler(newTestDeps(t), zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, Version, body["version"])
}

func TestHandleGetFileMissingCIDParam(t *testing.T) {
	handler := NewHandler(newTestDeps(t), zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/file", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetFileNotFound(t *testing.T) {
	handler := NewHandler(newTestDeps(t), zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/file?cid=bafkqaalb", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetHistoryMissingName(t *testing.T) {
	handler := NewHandler(newTestDeps(t), zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetHistoryUnknownNameIsNotFound(t *testing.T) {
	handler := NewHandler(newTestDeps(t), zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/history?name=nowhere.eth", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestHandleGetHistoryReturnsArchiveOfAllVersions covers spec.md §6's "archive
// of full finalization history for name": the response is a CAR, not JSON,
// and carries every historical root as a block, rooted at the latest one.
func TestHandleGetHistoryReturnsArchiveOfAllVersions(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()

	oldC, err := deps.Store.PutFile(ctx, strings.NewReader("v1"))
	require.NoError(t, err)
	newC, err := deps.Store.PutFile(ctx, strings.NewReader("v2"))
	require.NoError(t, err)
	require.NoError(t, deps.Finals.Push(ctx, "example.eth", 10, oldC))
	require.NoError(t, deps.Finals.Push(ctx, "example.eth", 20, newC))

	handler := NewHandler(deps, zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/history?name=example.eth", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.ipld.car", rec.Header().Get("Content-Type"))

	br, err := carv2.NewBlockReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, br.Roots, 1)
	assert.Equal(t, newC, br.Roots[0])

	seen := map[cid.Cid]bool{}
	for {
		blk, err := br.Next()
		if err != nil {
			break
		}
		seen[blk.Cid()] = true
	}
	assert.True(t, seen[oldC])
	assert.True(t, seen[newC])
}

func TestHandlePostPageMissingFileField(t *testing.T) {
	handler := NewHandler(newTestDeps(t), zerolog.Nop())
	req := httptest.NewRequest(http.MethodPost, "/page?name=example.eth", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePostPageStagesArchive(t *testing.T) {
	deps := newTestDeps(t)
	handler := NewHandler(deps, zerolog.Nop())

	src, err := store.New(store.Config{Backend: store.BackendMemory})
	require.NoError(t, err)
	defer src.Close()
	root, err := src.PutFile(context.Background(), strings.NewReader("hello"))
	require.NoError(t, err)
	var archive bytes.Buffer
	require.NoError(t, src.ExportArchive(context.Background(), root, &archive))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "page.car")
	require.NoError(t, err)
	_, err = part.Write(archive.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/page?name=example.eth", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var respBody map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &respBody))
	assert.Equal(t, root.String(), respBody["cid"])
}
