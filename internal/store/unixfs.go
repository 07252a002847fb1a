package store

import (
	"context"
	"fmt"
	"io"
	"sort"

	chunker "github.com/ipfs/boxo/chunker"
	format "github.com/ipfs/go-ipld-format"
	ufs "github.com/ipfs/boxo/ipld/unixfs"
	uio "github.com/ipfs/boxo/ipld/unixfs/io"
	importer "github.com/ipfs/boxo/ipld/unixfs/importer"
	"github.com/ipfs/go-cid"
)

// unixfsWrapper builds and reads UnixFS file/directory DAGs on top of a
// format.DAGService, following 06-unixfs-car/pkg/unixfs.go's UnixFsWrapper.
type unixfsWrapper struct {
	dag format.DAGService
}

func newUnixfsWrapper(dag format.DAGService) *unixfsWrapper {
	return &unixfsWrapper{dag: dag}
}

// putFile chunks r with the default rabin/size chunker and builds a
// balanced UnixFS file DAG, same parameters as putFile in the teacher's
// unixfs.go.
func (u *unixfsWrapper) putFile(ctx context.Context, r io.Reader) (cid.Cid, error) {
	spl := chunker.DefaultSplitter(r)
	nd, err := importer.BuildDagFromReader(u.dag, spl)
	if err != nil {
		return cid.Undef, fmt.Errorf("build unixfs dag: %w", err)
	}
	return nd.Cid(), nil
}

// dirEntry is one named child being assembled into a UnixFS directory.
type dirEntry struct {
	Name string
	CID  cid.Cid
}

// putDir builds a single-level UnixFS directory node linking the given
// children in sorted name order, mirroring putDir's deterministic link
// ordering in the teacher's unixfs.go.
func (u *unixfsWrapper) putDir(ctx context.Context, entries []dirEntry) (cid.Cid, error) {
	sorted := make([]dirEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	dirNode := ufs.EmptyDirNode()
	for _, e := range sorted {
		child, err := u.dag.Get(ctx, e.CID)
		if err != nil {
			return cid.Undef, fmt.Errorf("get child %s: %w", e.Name, err)
		}
		if err := dirNode.AddNodeLink(e.Name, child); err != nil {
			return cid.Undef, fmt.Errorf("link %s: %w", e.Name, err)
		}
	}
	if err := u.dag.Add(ctx, dirNode); err != nil {
		return cid.Undef, fmt.Errorf("add dir node: %w", err)
	}
	return dirNode.Cid(), nil
}

// get opens c as a UnixFS file or directory for reading.
func (u *unixfsWrapper) get(ctx context.Context, c cid.Cid) (uio.ReadSeekCloser, error) {
	nd, err := u.dag.Get(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c, err)
	}
	return uio.NewDagReader(ctx, nd, u.dag)
}

// list returns the immediate named children of the UnixFS directory at c.
func (u *unixfsWrapper) list(ctx context.Context, c cid.Cid) ([]dirEntry, error) {
	nd, err := u.dag.Get(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c, err)
	}
	dir, err := uio.NewDirectoryFromNode(u.dag, nd)
	if err != nil {
		return nil, fmt.Errorf("not a directory %s: %w", c, err)
	}
	var out []dirEntry
	err = dir.ForEachLink(ctx, func(l *format.Link) error {
		out = append(out, dirEntry{Name: l.Name, CID: l.Cid})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
