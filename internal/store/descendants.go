package store

import (
	"context"
	"fmt"

	format "github.com/ipfs/go-ipld-format"
	"github.com/ipfs/go-cid"
)

// enumerateDescendants walks the DAG rooted at c and returns every distinct
// CID reachable from it, c included. Ported from 08-pin-gc/pkg/pin.go's
// findChildren, which performs the same recursive link walk with a
// visited-set to survive shared subtrees and cycles introduced by
// malformed input.
func enumerateDescendants(ctx context.Context, dag format.DAGService, c cid.Cid) ([]cid.Cid, error) {
	visited := make(map[cid.Cid]bool)
	if err := walkChildren(ctx, dag, c, visited); err != nil {
		return nil, fmt.Errorf("enumerate descendants of %s: %w", c, err)
	}
	out := make([]cid.Cid, 0, len(visited))
	for k := range visited {
		out = append(out, k)
	}
	return out, nil
}

func walkChildren(ctx context.Context, dag format.DAGService, c cid.Cid, visited map[cid.Cid]bool) error {
	if visited[c] {
		return nil
	}
	visited[c] = true

	nd, err := dag.Get(ctx, c)
	if err != nil {
		return fmt.Errorf("get %s: %w", c, err)
	}
	for _, link := range nd.Links() {
		if err := walkChildren(ctx, dag, link.Cid, visited); err != nil {
			return err
		}
	}
	return nil
}

// directLinks returns the immediate link set of c without descending
// further.
func directLinks(ctx context.Context, dag format.DAGService, c cid.Cid) ([]cid.Cid, error) {
	nd, err := dag.Get(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c, err)
	}
	out := make([]cid.Cid, 0, len(nd.Links()))
	for _, link := range nd.Links() {
		out = append(out, link.Cid)
	}
	return out, nil
}
