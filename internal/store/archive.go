package store

import (
	"context"
	"fmt"
	"io"
	"os"

	format "github.com/ipfs/go-ipld-format"
	"github.com/ipfs/go-cid"
	carv2 "github.com/ipld/go-car/v2"
	carstorage "github.com/ipld/go-car/v2/storage"

	"github.com/stigmergic-org/dservice/internal/errs"
)

// importArchive reads a CARv1/v2 stream, writes every block into bw, and
// returns the archive's declared root CID. Mirrors CarImport in
// 06-unixfs-car/pkg/car.go, but classifies any malformed input as
// errs.KindInvalidArchive instead of a bare error, and additionally
// requires exactly one root and that the root block is actually present,
// since the upload intake (spec.md §4.6) stakes the whole "is this a page"
// decision on that root.
func importArchive(ctx context.Context, bw *blockWrapper, r io.Reader) (cid.Cid, error) {
	br, err := carv2.NewBlockReader(r)
	if err != nil {
		return cid.Undef, errs.New(errs.KindInvalidArchive, fmt.Errorf("open car: %w", err))
	}
	if len(br.Roots) != 1 {
		return cid.Undef, errs.New(errs.KindInvalidArchive, fmt.Errorf("car must declare exactly one root, got %d", len(br.Roots)))
	}
	root := br.Roots[0]

	var sawRoot bool
	for {
		blk, err := br.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return cid.Undef, errs.New(errs.KindInvalidArchive, fmt.Errorf("read car block: %w", err))
		}
		if err := bw.putWithCID(ctx, blk.RawData(), blk.Cid()); err != nil {
			return cid.Undef, errs.New(errs.KindStoreFail, fmt.Errorf("store car block %s: %w", blk.Cid(), err))
		}
		if blk.Cid().Equals(root) {
			sawRoot = true
		}
	}
	if !sawRoot {
		return cid.Undef, errs.New(errs.KindInvalidArchive, fmt.Errorf("car root %s not present among its own blocks", root))
	}
	return root, nil
}

// exportArchive walks the DAG reachable from root and writes a CARv1 stream
// containing exactly those blocks to w. Grounded on CarExport in
// 06-unixfs-car/pkg/car.go, which requires an io.WriteSeeker because
// go-car/v2's storage.NewWritable seeks back to patch the header once the
// block count is known; an http.ResponseWriter isn't seekable, so like the
// teacher's own CarExportBytes we stage into a temp file and copy out.
func exportArchive(ctx context.Context, dag format.DAGService, root cid.Cid, w io.Writer) error {
	data, err := exportArchiveToBytes(ctx, dag, root, 0)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// exportArchiveBounded is exportArchive with a byte budget: once the blocks
// walked so far pass maxBytes it fails with errs.KindUploadTooLarge and
// writes nothing to w. Not present in the teacher, which always exports
// whole DAGs unconditionally.
func exportArchiveBounded(ctx context.Context, dag format.DAGService, root cid.Cid, w io.Writer, maxBytes int64) error {
	data, err := exportArchiveToBytes(ctx, dag, root, maxBytes)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func exportArchiveToBytes(ctx context.Context, dag format.DAGService, root cid.Cid, maxBytes int64) ([]byte, error) {
	f, err := os.CreateTemp("", "dservice-export-*.car")
	if err != nil {
		return nil, fmt.Errorf("create temp car: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	writable, err := carstorage.NewWritable(f, []cid.Cid{root})
	if err != nil {
		return nil, fmt.Errorf("open car writer: %w", err)
	}

	visited := make(map[cid.Cid]bool)
	var written int64
	if err := walkAndWrite(ctx, dag, root, writable, visited, &written, maxBytes); err != nil {
		return nil, fmt.Errorf("export car: %w", err)
	}
	if err := writable.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize car: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek temp car: %w", err)
	}
	return io.ReadAll(f)
}

func walkAndWrite(ctx context.Context, dag format.DAGService, c cid.Cid, target carWriter, visited map[cid.Cid]bool, written *int64, maxBytes int64) error {
	if visited[c] {
		return nil
	}
	visited[c] = true

	nd, err := dag.Get(ctx, c)
	if err != nil {
		return fmt.Errorf("get %s: %w", c, err)
	}
	if maxBytes > 0 && *written+int64(len(nd.RawData())) > maxBytes {
		return errs.New(errs.KindUploadTooLarge, fmt.Errorf("page export exceeds %d byte cap", maxBytes))
	}
	*written += int64(len(nd.RawData()))
	if err := target.Put(ctx, c.KeyString(), nd.RawData()); err != nil {
		return fmt.Errorf("write block %s: %w", c, err)
	}
	for _, link := range nd.Links() {
		if err := walkAndWrite(ctx, dag, link.Cid, target, visited, written, maxBytes); err != nil {
			return err
		}
	}
	return nil
}

// carWriter is the subset of go-car/v2/storage's writable-car interface
// this package depends on.
type carWriter interface {
	Put(ctx context.Context, key string, data []byte) error
}

// exportSelective writes a CARv1 stream declaring root as its sole root,
// containing exactly the blocks named in included — no DAG walk, since the
// caller (the serving path, spec.md §4.7) has already computed the minimal
// CID set itself. This is CarExport's write loop from
// 06-unixfs-car/pkg/car.go with the walk replaced by a fixed membership
// set, the "CAR v2 selective export" shape SPEC_FULL.md calls for.
func exportSelective(ctx context.Context, bw *blockWrapper, root cid.Cid, included []cid.Cid, w io.Writer) error {
	f, err := os.CreateTemp("", "dservice-export-*.car")
	if err != nil {
		return fmt.Errorf("create temp car: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	writable, err := carstorage.NewWritable(f, []cid.Cid{root})
	if err != nil {
		return fmt.Errorf("open car writer: %w", err)
	}

	for _, c := range included {
		blk, err := bw.Get(ctx, c)
		if err != nil {
			return fmt.Errorf("get block %s: %w", c, err)
		}
		if err := writable.Put(ctx, c.KeyString(), blk.RawData()); err != nil {
			return fmt.Errorf("write block %s: %w", c, err)
		}
	}
	if err := writable.Finalize(); err != nil {
		return fmt.Errorf("finalize car: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek temp car: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
