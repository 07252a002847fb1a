package main

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/stigmergic-org/dservice/internal/listregistry"
	"github.com/stigmergic-org/dservice/internal/store"
)

// nameRE is spec.md §6's validation regex for names given to allow-list and
// block-list add/rm.
var nameRE = regexp.MustCompile(`^[a-z0-9-]+\.eth$`)

// oneShotApp opens the on-disk store for the duration of a single
// subcommand invocation and closes it before returning, per SPEC_FULL.md
// §10: these commands never start the reconciler.
type oneShotApp struct {
	store *store.Adapter
	reg   *listregistry.Registry
}

func openOneShot() (*oneShotApp, error) {
	s, err := store.New(store.Config{Backend: store.BackendBadger, Path: flags.dataDir})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &oneShotApp{store: s, reg: listregistry.New(s)}, nil
}

func (a *oneShotApp) Close() {
	_ = a.store.Close()
}

// fail prints err and exits 1, per spec.md §6's "exit code 1 on validation
// or I/O failure".
func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func withOneShot(fn func(ctx context.Context, a *oneShotApp) error) func() {
	return func() {
		a, err := openOneShot()
		if err != nil {
			fail(err)
		}
		defer a.Close()
		if err := fn(context.Background(), a); err != nil {
			fail(err)
		}
	}
}
