// Package finalization implements the finalization map (spec.md §4.3): the
// durable record of which root CID is confirmed live for a name at which
// block height, keeping enough history to answer GET /history.
//
// The map itself is one dag-cbor encoded object pinned under the
// well-known label spg_finalizations (store.Adapter.PutAny/GetAny,
// generalized from 04-dag-ipld/pkg/ipld.go's PutIPLD/GetIPLD). All
// mutations are funneled through a single goroutine reading a channel of
// closures — the same "one owner serializes all access to shared store
// state" shape the teacher uses for its dspinner instance in
// 08-pin-gc/pkg/pin_wrapper.go, just generalized from an in-memory mutex to
// an explicit queue so callers can wait for their own write to land.
package finalization

import (
	"context"
	"fmt"
	"sort"

	"github.com/ipfs/go-cid"
	"github.com/rs/zerolog"

	"github.com/stigmergic-org/dservice/internal/errs"
	"github.com/stigmergic-org/dservice/internal/store"
)

const finalizationsLabel = "spg_finalizations"

// Entry is one confirmed version of a name.
type Entry struct {
	Height uint64
	CID    cid.Cid
}

type docEntry struct {
	Height uint64
	CID    string
}

type doc map[string][]docEntry

// Map is the serialized finalization map.
type Map struct {
	store *store.Adapter
	log   zerolog.Logger
	reqs  chan func(doc) doc
	done  chan struct{}
}

// New loads (or initializes) the finalization map and starts its update
// goroutine. Callers must call Close to stop it.
func New(ctx context.Context, s *store.Adapter, log zerolog.Logger) (*Map, error) {
	m := &Map{
		store: s,
		log:   log.With().Str("component", "finalization").Logger(),
		reqs:  make(chan func(doc) doc),
		done:  make(chan struct{}),
	}
	initial, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	go m.run(ctx, initial)
	return m, nil
}

// Close stops the update goroutine.
func (m *Map) Close() {
	close(m.done)
}

func (m *Map) load(ctx context.Context) (doc, error) {
	pins, err := m.store.PinList(ctx, finalizationsLabel)
	if err != nil {
		return nil, errs.New(errs.KindStoreFail, fmt.Errorf("list finalizations pin: %w", err))
	}
	if len(pins) == 0 {
		return make(doc), nil
	}

	// Per spec.md §9's tolerance rule: if more than one spg_finalizations
	// pin exists (a crash between add-new and remove-old), pick the one
	// whose decoded map has the most total entries, and clean up the rest.
	var best doc
	var bestPin *store.Pin
	bestCount := -1
	for i, p := range pins {
		d, err := m.decodeAt(ctx, p.CID)
		if err != nil {
			m.log.Warn().Err(err).Str("cid", p.CID.String()).Msg("skipping unreadable finalizations pin")
			continue
		}
		count := 0
		for _, entries := range d {
			count += len(entries)
		}
		if count > bestCount {
			best, bestCount = d, count
			pin := pins[i]
			bestPin = &pin
		}
	}
	if best == nil {
		return make(doc), nil
	}
	for _, p := range pins {
		if bestPin != nil && p.CID.Equals(bestPin.CID) {
			continue
		}
		if err := m.store.PinRemove(ctx, p.CID, finalizationsLabel); err != nil {
			m.log.Warn().Err(err).Str("cid", p.CID.String()).Msg("failed to prune stale finalizations pin")
		}
	}
	return best, nil
}

func (m *Map) decodeAt(ctx context.Context, c cid.Cid) (doc, error) {
	v, err := m.store.GetAny(ctx, c)
	if err != nil {
		return nil, err
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("finalizations object at %s is not a map", c)
	}
	d := make(doc, len(raw))
	for name, val := range raw {
		list, ok := val.([]any)
		if !ok {
			continue
		}
		entries := make([]docEntry, 0, len(list))
		for _, item := range list {
			em, ok := item.(map[string]any)
			if !ok {
				continue
			}
			height, _ := em["height"].(int64)
			cidStr, _ := em["cid"].(string)
			entries = append(entries, docEntry{Height: uint64(height), CID: cidStr})
		}
		d[name] = entries
	}
	return d, nil
}

func (m *Map) toAny(d doc) map[string]any {
	out := make(map[string]any, len(d))
	for name, entries := range d {
		list := make([]any, len(entries))
		for i, e := range entries {
			list[i] = map[string]any{
				"height": int64(e.Height),
				"cid":    e.CID,
			}
		}
		out[name] = list
	}
	return out
}

// run is the single goroutine that owns doc and drains mutation closures.
func (m *Map) run(ctx context.Context, current doc) {
	for {
		select {
		case <-m.done:
			return
		case req := <-m.reqs:
			current = req(current)
		}
	}
}

// mutate enqueues fn to run against the current document on the update
// goroutine and waits for its result; a document fn returns without error
// becomes the current one. Writers (Push, Remove) call persist inside fn,
// which pins the new object before removing the old one, per spec.md
// §4.3's add-new-then-remove-old replace rule.
func (m *Map) mutate(ctx context.Context, fn func(doc) (doc, error)) error {
	errCh := make(chan error, 1)
	reply := make(chan doc, 1)
	select {
	case m.reqs <- func(d doc) doc {
		next, err := fn(d)
		if err != nil {
			errCh <- err
			reply <- d
			return d
		}
		errCh <- nil
		reply <- next
		return next
	}:
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return fmt.Errorf("finalization map closed")
	}

	select {
	case err := <-errCh:
		<-reply
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// persist writes the full document as a new dag-cbor object, pins it under
// spg_finalizations, then unpins any prior pin under that label.
func (m *Map) persist(ctx context.Context, d doc) error {
	newCID, err := m.store.PutAny(ctx, m.toAny(d))
	if err != nil {
		return errs.New(errs.KindStoreFail, fmt.Errorf("encode finalizations: %w", err))
	}
	oldPins, err := m.store.PinList(ctx, finalizationsLabel)
	if err != nil {
		return errs.New(errs.KindStoreFail, fmt.Errorf("list old finalizations pins: %w", err))
	}
	if err := m.store.PinAdd(ctx, newCID, finalizationsLabel, true); err != nil {
		return errs.New(errs.KindStoreFail, fmt.Errorf("pin new finalizations: %w", err))
	}
	for _, p := range oldPins {
		if p.CID.Equals(newCID) {
			continue
		}
		if err := m.store.PinRemove(ctx, p.CID, finalizationsLabel); err != nil {
			m.log.Warn().Err(err).Str("cid", p.CID.String()).Msg("failed to remove old finalizations pin")
		}
	}
	return nil
}

// ListNames returns every name with at least one confirmed entry.
func (m *Map) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := m.mutate(ctx, func(d doc) (doc, error) {
		for name := range d {
			names = append(names, name)
		}
		sort.Strings(names)
		return d, nil
	})
	return names, err
}

// EntriesFor returns name's confirmed history, sorted by height ascending.
func (m *Map) EntriesFor(ctx context.Context, name string) ([]Entry, error) {
	var out []Entry
	err := m.mutate(ctx, func(d doc) (doc, error) {
		for _, e := range d[name] {
			c, err := cid.Decode(e.CID)
			if err != nil {
				continue
			}
			out = append(out, Entry{Height: e.Height, CID: c})
		}
		return d, nil
	})
	return out, err
}

// Push inserts or replaces the entry for name at height, keeping the list
// sorted by height ascending, then persists the result.
func (m *Map) Push(ctx context.Context, name string, height uint64, c cid.Cid) error {
	return m.mutate(ctx, func(d doc) (doc, error) {
		next := cloneDoc(d)
		entries := next[name]
		replaced := false
		for i, e := range entries {
			if e.Height == height {
				entries[i] = docEntry{Height: height, CID: c.String()}
				replaced = true
				break
			}
		}
		if !replaced {
			entries = append(entries, docEntry{Height: height, CID: c.String()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Height < entries[j].Height })
		next[name] = entries
		if err := m.persist(ctx, next); err != nil {
			return d, err
		}
		return next, nil
	})
}

// Remove deletes every entry for name, used by NukePage (spec.md §4.5).
func (m *Map) Remove(ctx context.Context, name string) error {
	return m.mutate(ctx, func(d doc) (doc, error) {
		if _, ok := d[name]; !ok {
			return d, nil
		}
		next := cloneDoc(d)
		delete(next, name)
		if err := m.persist(ctx, next); err != nil {
			return d, err
		}
		return next, nil
	})
}

// IsFinalized reports whether (name, height, c) is exactly the confirmed
// entry at that height.
func (m *Map) IsFinalized(ctx context.Context, name string, height uint64, c cid.Cid) (bool, error) {
	entries, err := m.EntriesFor(ctx, name)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Height == height {
			return e.CID.Equals(c), nil
		}
	}
	return false, nil
}

func cloneDoc(d doc) doc {
	next := make(doc, len(d))
	for name, entries := range d {
		cp := make([]docEntry, len(entries))
		copy(cp, entries)
		next[name] = cp
	}
	return next
}
