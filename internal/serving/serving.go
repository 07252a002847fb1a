// Package serving implements the serving path (spec.md §4.7):
// synthesizing a reduced archive containing just enough of a page's DAG to
// render immediately, instead of forcing every GET /page to ship the whole
// multi-megabyte tree.
package serving

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/stigmergic-org/dservice/internal/store"
)

// rootFiles are the only root-depth files included in a lite archive,
// per spec.md §4.7.
var rootFiles = map[string]bool{
	"index.html":              true,
	"index.md":                true,
	"_template.html":          true,
	"manifest.webmanifest":    true,
}

// Server reads the minimum-viable archive for a page.
type Server struct {
	store *store.Adapter
}

func New(s *store.Adapter) *Server {
	return &Server{store: s}
}

// ReadArchiveLite walks the DAG rooted at root gathering the minimum CID
// set spec.md §4.7 describes, then emits a CAR whose declared root is
// root's own CID.
func (s *Server) ReadArchiveLite(ctx context.Context, root cid.Cid, w io.Writer) error {
	includedSet, err := s.collect(ctx, root)
	if err != nil {
		return fmt.Errorf("collect lite archive: %w", err)
	}
	included := make([]cid.Cid, 0, len(includedSet))
	for c := range includedSet {
		included = append(included, c)
	}
	return s.store.ExportArchiveSelective(ctx, root, included, w)
}

func (s *Server) collect(ctx context.Context, root cid.Cid) (map[cid.Cid]struct{}, error) {
	included := map[cid.Cid]struct{}{root: {}}

	children, err := s.store.ListChildren(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list root children: %w", err)
	}

	for _, child := range children {
		if rootFiles[child.Name] {
			included[child.CID] = struct{}{}
			continue
		}
		if strings.HasPrefix(child.Name, "_") {
			continue
		}
		isDir, err := s.isDirectory(ctx, child.CID)
		if err != nil {
			return nil, err
		}
		if !isDir {
			continue
		}
		descendants, err := s.store.EnumerateDescendants(ctx, child.CID)
		if err != nil {
			return nil, fmt.Errorf("enumerate subtree %s: %w", child.Name, err)
		}
		for _, c := range descendants {
			included[c] = struct{}{}
		}
	}
	return included, nil
}

func (s *Server) isDirectory(ctx context.Context, c cid.Cid) (bool, error) {
	_, err := s.store.ListChildren(ctx, c)
	if err != nil {
		return false, nil
	}
	return true, nil
}
