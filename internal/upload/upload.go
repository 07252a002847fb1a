// Package upload implements the upload intake (spec.md §4.6): accepting a
// content-addressed archive for a target name, importing it, and marking it
// with a staged-pin label until the matching on-chain event confirms it.
package upload

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/stigmergic-org/dservice/internal/errs"
	"github.com/stigmergic-org/dservice/internal/store"
)

// Intake is the upload entry point.
type Intake struct {
	store   *store.Adapter
	maxSize int64
	now     func() time.Time
}

// New constructs an Intake. maxSize is the enforced UPLOAD_TOO_LARGE cap in
// bytes (spec.md §4.6 and §7).
func New(s *store.Adapter, maxSize int64) *Intake {
	return &Intake{store: s, maxSize: maxSize, now: time.Now}
}

// WriteArchive streams body into the store, pins the resulting root under
// a spg_staged_<name>_<unix-seconds> label, and returns the root CID.
//
// The size cap is enforced by wrapping body in an io.LimitedReader set one
// byte past maxSize: if the CAR importer ever reads that extra byte, the
// archive exceeded the cap and is rejected without ever buffering the full
// body in memory.
func (in *Intake) WriteArchive(ctx context.Context, name string, body io.Reader) (cid.Cid, error) {
	limited := &io.LimitedReader{R: body, N: in.maxSize + 1}
	root, err := in.store.ImportArchive(ctx, limited)
	if limited.N <= 0 {
		return cid.Undef, errs.New(errs.KindUploadTooLarge, fmt.Errorf("archive for %q exceeds %d byte cap", name, in.maxSize))
	}
	if err != nil {
		return cid.Undef, err // already wrapped in an *errs.Error by the store
	}

	label := fmt.Sprintf("spg_staged_%s_%d", name, in.now().Unix())
	if err := in.store.PinAdd(ctx, root, label, true); err != nil {
		return cid.Undef, errs.New(errs.KindStoreFail, fmt.Errorf("pin staged upload: %w", err))
	}
	return root, nil
}
