// Package httpapi is the external HTTP surface (spec.md §6): GET /page,
// GET /file, GET /history, POST /page, GET /info. Routing follows the
// Go 1.22+ method-aware mux.HandleFunc patterns the teacher's 07-gateway
// uses, wrapped in the teacher's pkg/security.SecurityMiddleware.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ipfs/go-cid"
	"github.com/rs/zerolog"

	"github.com/stigmergic-org/dservice/internal/errs"
	"github.com/stigmergic-org/dservice/internal/finalization"
	"github.com/stigmergic-org/dservice/internal/listregistry"
	"github.com/stigmergic-org/dservice/internal/serving"
	"github.com/stigmergic-org/dservice/internal/store"
	"github.com/stigmergic-org/dservice/internal/upload"
	"github.com/stigmergic-org/dservice/pkg/health"
	"github.com/stigmergic-org/dservice/pkg/security"
)

// Version is the server's reported API version (spec.md §6's GET /info).
const Version = "0.1.0"

// Deps are the components the HTTP surface calls into.
type Deps struct {
	Store    *store.Adapter
	Registry *listregistry.Registry
	Finals   *finalization.Map
	Serving  *serving.Server
	Intake   *upload.Intake
	Health   *health.Manager
}

// NewHandler builds the fully wrapped HTTP handler.
func NewHandler(deps Deps, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /page", handleGetPage(deps, log))
	mux.HandleFunc("GET /file", handleGetFile(deps, log))
	mux.HandleFunc("GET /history", handleGetHistory(deps, log))
	mux.HandleFunc("POST /page", handlePostPage(deps, log))
	mux.HandleFunc("GET /info", handleGetInfo())
	mux.Handle("GET /healthz", health.NewHTTPHandler(deps.Health))

	cfg := security.DefaultSecurityConfig()
	cfg.CORS.AllowedOrigins = []string{"*"}
	return security.NewSecurityMiddleware(cfg).Handler()(mux)
}

func handleGetPage(deps Deps, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		c, ok := parseCIDParam(w, r, "cid")
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/vnd.ipld.car")
		if err := deps.Serving.ReadArchiveLite(ctx, c, w); err != nil {
			writeError(w, log, err)
			return
		}
	}
}

func handleGetFile(deps Deps, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		c, ok := parseCIDParam(w, r, "cid")
		if !ok {
			return
		}
		data, err := deps.Store.GetBlock(ctx, c)
		if err != nil {
			writeError(w, log, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.ipld.raw")
		_, _ = w.Write(data)
	}
}

// handleGetHistory returns a CAR archive of name's full finalization
// history (spec.md §6: "archive of full finalization history for name"),
// consistent with /page's archive response rather than a JSON summary.
// The archive declares the most recently finalized root as its sole CAR
// root and carries every historical root as a raw top-level block, so a
// client can walk PinByCidAny-style provenance without re-fetching each
// version's full DAG individually.
func handleGetHistory(deps Deps, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := r.URL.Query().Get("name")
		if name == "" {
			writeJSONError(w, http.StatusBadRequest, "missing name")
			return
		}
		entries, err := deps.Finals.EntriesFor(ctx, name)
		if err != nil {
			writeError(w, log, err)
			return
		}
		if len(entries) == 0 {
			writeJSONError(w, http.StatusNotFound, "no finalization history for name")
			return
		}
		included := make([]cid.Cid, len(entries))
		for i, e := range entries {
			included[i] = e.CID
		}
		root := entries[len(entries)-1].CID
		w.Header().Set("Content-Type", "application/vnd.ipld.car")
		if err := deps.Store.ExportArchiveSelective(ctx, root, included, w); err != nil {
			writeError(w, log, err)
			return
		}
	}
}

func handlePostPage(deps Deps, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := r.URL.Query().Get("name")
		if name == "" {
			writeJSONError(w, http.StatusBadRequest, "missing name")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "missing field \"file\"")
			return
		}
		defer file.Close()

		root, err := deps.Intake.WriteArchive(ctx, name, file)
		if err != nil {
			writeError(w, log, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"cid": root.String()})
	}
}

func handleGetInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"version": Version})
	}
}

func parseCIDParam(w http.ResponseWriter, r *http.Request, key string) (cid.Cid, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("missing %s", key))
		return cid.Undef, false
	}
	c, err := cid.Decode(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", key))
		return cid.Undef, false
	}
	return c, true
}

// writeError maps a store/domain error to the HTTP status spec.md §7
// assigns its Kind.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	kind, _ := errs.As(err)
	status := http.StatusInternalServerError
	switch kind {
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindUploadTooLarge:
		status = http.StatusRequestEntityTooLarge
	case errs.KindPolicyBlocked:
		status = http.StatusNotFound
	case errs.KindInvalidArchive:
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSONError(w, status, err.Error())
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
