package store

import (
	"context"
	"fmt"
	"io"

	ds "github.com/ipfs/go-datastore"
	format "github.com/ipfs/go-ipld-format"
	"github.com/ipfs/go-cid"

	"github.com/stigmergic-org/dservice/internal/errs"
)

// Config configures Adapter's backing datastore.
type Config struct {
	Backend Backend
	Path    string
}

// Adapter is the store (spec.md §4.1): the single collaborator every other
// dservice component goes through to touch blocks, pins, and archives. It
// composes the teacher's layered wrappers (block -> blockservice -> dag ->
// unixfs) with the custom label-indexed pin layer spec.md §9 calls for.
type Adapter struct {
	backing ds.Batching
	block   *blockWrapper
	dag     *dagWrapper
	ufs     *unixfsWrapper
	pins    *pinIndex
}

// New opens (or creates) the datastore described by cfg and wires up every
// layer of the store.
func New(cfg Config) (*Adapter, error) {
	bs, err := openDatastore(cfg.Backend, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	block := newBlockWrapper(bs)
	bserv := newBlockService(block)
	dag := newDagWrapper(bserv)
	return &Adapter{
		backing: bs,
		block:   block,
		dag:     dag,
		ufs:     newUnixfsWrapper(dag),
		pins:    newPinIndex(bs),
	}, nil
}

// Close releases the underlying datastore, when the backend holds open file
// handles (badger/pebble).
func (a *Adapter) Close() error {
	if closer, ok := a.backing.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// DAG exposes the underlying DAGService for packages (finalization,
// reconciler) that need to put/get arbitrary IPLD nodes directly.
func (a *Adapter) DAG() format.DAGService { return a.dag.DAGService }

// ImportArchive decodes a CAR stream into the store and returns its root.
func (a *Adapter) ImportArchive(ctx context.Context, r io.Reader) (cid.Cid, error) {
	return importArchive(ctx, a.block, r)
}

// ExportArchive writes the full DAG rooted at c as a CAR stream.
func (a *Adapter) ExportArchive(ctx context.Context, c cid.Cid, w io.Writer) error {
	return exportArchive(ctx, a.dag, c, w)
}

// ExportArchiveBounded is ExportArchive capped at maxBytes, returning
// errs.KindUploadTooLarge if the DAG exceeds the cap partway through.
func (a *Adapter) ExportArchiveBounded(ctx context.Context, c cid.Cid, w io.Writer, maxBytes int64) error {
	return exportArchiveBounded(ctx, a.dag, c, w, maxBytes)
}

// ExportArchiveSelective writes a CAR declaring root, containing exactly
// the given CID set rather than root's full transitive closure — the
// serving path's (spec.md §4.7) reduced "lite" archive.
func (a *Adapter) ExportArchiveSelective(ctx context.Context, root cid.Cid, included []cid.Cid, w io.Writer) error {
	return exportSelective(ctx, a.block, root, included, w)
}

// GetBlock returns the raw bytes stored under c.
func (a *Adapter) GetBlock(ctx context.Context, c cid.Cid) ([]byte, error) {
	blk, err := a.block.Get(ctx, c)
	if err != nil {
		return nil, errs.New(errs.KindNotFound, fmt.Errorf("get block %s: %w", c, err))
	}
	return blk.RawData(), nil
}

// RemoveBlock deletes c from the store, tolerating an already-absent block.
func (a *Adapter) RemoveBlock(ctx context.Context, c cid.Cid) error {
	if err := a.block.DeleteBlock(ctx, c); err != nil {
		return errs.New(errs.KindStoreFail, fmt.Errorf("remove block %s: %w", c, err))
	}
	return nil
}

// ChildRef names one entry returned by ListChildren.
type ChildRef struct {
	Name string
	CID  cid.Cid
}

// ListChildren lists the named children of a UnixFS directory at c.
func (a *Adapter) ListChildren(ctx context.Context, c cid.Cid) ([]ChildRef, error) {
	entries, err := a.ufs.list(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("list children of %s: %w", c, err)
	}
	out := make([]ChildRef, len(entries))
	for i, e := range entries {
		out[i] = ChildRef{Name: e.Name, CID: e.CID}
	}
	return out, nil
}

// PinAdd records a pin on c under label, recursive meaning "its descendants
// are also reachable and should be protected from GC".
func (a *Adapter) PinAdd(ctx context.Context, c cid.Cid, label string, recursive bool) error {
	return a.pins.Pin(ctx, c, label, recursive)
}

// PinRemove removes the pin on c under label.
func (a *Adapter) PinRemove(ctx context.Context, c cid.Cid, label string) error {
	return a.pins.Unpin(ctx, c, label)
}

// PinList returns every pin whose label begins with labelPrefix.
func (a *Adapter) PinList(ctx context.Context, labelPrefix string) ([]Pin, error) {
	return a.pins.List(ctx, labelPrefix)
}

// PinByCidAny returns every (label, recursive) pair currently pinning c.
func (a *Adapter) PinByCidAny(ctx context.Context, c cid.Cid) ([]Pin, error) {
	return a.pins.ByCID(ctx, c)
}

// EnumerateDescendants returns the full set of CIDs reachable from root,
// root included.
func (a *Adapter) EnumerateDescendants(ctx context.Context, root cid.Cid) ([]cid.Cid, error) {
	return enumerateDescendants(ctx, a.dag, root)
}

// DirectLinks returns the immediate DAG children of c (no recursion).
func (a *Adapter) DirectLinks(ctx context.Context, c cid.Cid) ([]cid.Cid, error) {
	return directLinks(ctx, a.dag, c)
}

// PutAny dag-cbor encodes v and stores it, returning its CID.
func (a *Adapter) PutAny(ctx context.Context, v any) (cid.Cid, error) {
	return a.dag.putAny(ctx, a.block, v)
}

// GetAny loads and dag-cbor decodes the value stored at c.
func (a *Adapter) GetAny(ctx context.Context, c cid.Cid) (any, error) {
	return a.dag.getAny(ctx, a.block, c)
}

// PutFile chunks and stores r as a UnixFS file DAG.
func (a *Adapter) PutFile(ctx context.Context, r io.Reader) (cid.Cid, error) {
	return a.ufs.putFile(ctx, r)
}

// PutDir builds a single-level UnixFS directory linking the given named
// children.
func (a *Adapter) PutDir(ctx context.Context, entries []ChildRef) (cid.Cid, error) {
	de := make([]dirEntry, len(entries))
	for i, e := range entries {
		de[i] = dirEntry{Name: e.Name, CID: e.CID}
	}
	return a.ufs.putDir(ctx, de)
}

// GetFile opens c for reading as a UnixFS file.
func (a *Adapter) GetFile(ctx context.Context, c cid.Cid) (io.ReadCloser, error) {
	return a.ufs.get(ctx, c)
}

// Verify walks root and reports any reachable-but-missing block. No CLI
// command calls it, and it never runs on the hot serving/reconcile path.
func (a *Adapter) Verify(ctx context.Context, root cid.Cid) ([]cid.Cid, error) {
	var missing []cid.Cid
	visited := make(map[cid.Cid]bool)
	var walk func(c cid.Cid) error
	walk = func(c cid.Cid) error {
		if visited[c] {
			return nil
		}
		visited[c] = true
		nd, err := a.dag.Get(ctx, c)
		if err != nil {
			missing = append(missing, c)
			return nil
		}
		for _, l := range nd.Links() {
			if err := walk(l.Cid); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return missing, nil
}
