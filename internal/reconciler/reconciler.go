// Package reconciler drives one polling cycle end-to-end (spec.md §4.5):
// advance the chain cursor, update registries, apply allow/block policy,
// finalize newly-current versions, nuke blocked versions, and prune stale
// staged uploads. It is the heart of dservice.
package reconciler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ipfs/go-cid"
	"github.com/rs/zerolog"

	"github.com/stigmergic-org/dservice/internal/chainwatcher"
	"github.com/stigmergic-org/dservice/internal/errs"
	"github.com/stigmergic-org/dservice/internal/finalization"
	"github.com/stigmergic-org/dservice/internal/listregistry"
	"github.com/stigmergic-org/dservice/internal/store"
	"github.com/stigmergic-org/dservice/pkg/metrics"
)

const (
	setDomains        = "domains"
	setResolvers      = "resolvers"
	setAllow          = "allow"
	setBlock          = "block"
	contentHashPrefix = "contenthash_"

	labelStagedFmt = "spg_staged_%s_"
	labelFinalFmt  = "spg_final_%s_"
	latestBlockKey = "spg_latest_block_number"
)

// Config configures a reconciler's cycle pacing and limits.
type Config struct {
	BatchSize      uint64        // chain-scan chunk size, default 100
	CycleInterval  time.Duration // sleep between cycles, default 500ms
	MaxStagedAge   time.Duration // prune threshold, default 1h
	StartBlock     uint64        // cursor floor when no cursor persisted
}

func (c Config) withDefaults() Config {
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.CycleInterval == 0 {
		c.CycleInterval = 500 * time.Millisecond
	}
	if c.MaxStagedAge == 0 {
		c.MaxStagedAge = time.Hour
	}
	return c
}

// Reconciler runs the cycle loop described by spec.md §4.5.
type Reconciler struct {
	cfg      Config
	store    *store.Adapter
	watcher  *chainwatcher.Watcher
	registry *listregistry.Registry
	finals   *finalization.Map
	log      zerolog.Logger
	metrics  *metrics.ComponentMetrics

	stop    chan struct{}
	stopped chan struct{}
	running atomic.Bool
	mu      sync.Mutex // guards cursor so Cursor can read it while Run advances
	cursor  uint64
}

func New(cfg Config, s *store.Adapter, w *chainwatcher.Watcher, reg *listregistry.Registry, f *finalization.Map, log zerolog.Logger) *Reconciler {
	m := metrics.NewComponentMetrics("reconciler")
	metrics.RegisterGlobalComponent(m)
	return &Reconciler{
		cfg:      cfg.withDefaults(),
		store:    s,
		watcher:  w,
		registry: reg,
		finals:   f,
		log:      log.With().Str("component", "reconciler").Logger(),
		metrics:  m,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Run loops Cycle, sleeping cfg.CycleInterval between runs, until Stop is
// observed. Stop is cooperative: Run always finishes the in-flight cycle.
func (r *Reconciler) Run(ctx context.Context) {
	defer close(r.stopped)
	r.running.Store(true)
	defer r.running.Store(false)

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		if err := r.Cycle(ctx); err != nil {
			r.metrics.RecordFailure(time.Since(start), classify(err))
			r.log.Error().Err(err).Msg("cycle failed, retrying next tick")
		} else {
			r.metrics.RecordSuccess(time.Since(start), 0)
		}

		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-time.After(r.cfg.CycleInterval):
		}
	}
}

// Stop requests the loop stop and waits for the in-flight cycle to finish.
func (r *Reconciler) Stop() {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	<-r.stopped
}

// Cursor returns the cursor as of the last completed Advance stage.
func (r *Reconciler) Cursor() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

func classify(err error) string {
	if kind, ok := errs.As(err); ok {
		return string(kind)
	}
	return "unknown"
}

// Cycle runs stages (a)-(d) in order, never in parallel with each other,
// per spec.md §4.5.
func (r *Reconciler) Cycle(ctx context.Context) error {
	if err := r.advance(ctx); err != nil {
		return fmt.Errorf("advance: %w", err)
	}
	if err := r.sync(ctx); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := r.nuke(ctx); err != nil {
		return fmt.Errorf("nuke: %w", err)
	}
	if err := r.pruneStaged(ctx); err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	return nil
}

// advance is stage (a): read chain head, scan forward in cfg.BatchSize
// chunks, fold discoveries into the list registry, then persist the cursor.
func (r *Reconciler) advance(ctx context.Context) error {
	head, err := r.watcher.Head(ctx)
	if err != nil {
		return err
	}

	cursor, err := r.loadCursor(ctx)
	if err != nil {
		return err
	}

	for cursor <= head {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stop:
			return nil
		default:
		}

		to := cursor + r.cfg.BatchSize - 1
		if to > head {
			to = head
		}

		resolvers, err := r.knownResolvers(ctx)
		if err != nil {
			return err
		}
		newNames, updates, err := r.watcher.ScanRange(ctx, cursor, to, resolvers)
		if err != nil {
			return err
		}

		for _, n := range newNames {
			name := strings.ToLower(n.Name)
			if err := r.registry.Add(ctx, setDomains, listregistry.TypeString, name); err != nil {
				return err
			}
			if err := r.registry.Add(ctx, setResolvers, listregistry.TypeAddress, n.Resolver.Hex()); err != nil {
				return err
			}
		}

		for _, u := range updates {
			name, ok, err := r.nameForHash(ctx, u.NameHash)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			key := fmt.Sprintf("%d-%s", u.AtHeight, u.ContentHash)
			if err := r.registry.Add(ctx, contentHashPrefix+name, listregistry.TypeString, key); err != nil {
				return err
			}
		}

		cursor = to + 1
	}

	if err := r.saveCursor(ctx, cursor); err != nil {
		return err
	}
	r.mu.Lock()
	r.cursor = cursor
	r.mu.Unlock()
	return nil
}

// sync is stage (b): compute the active name set and finalize whichever
// content-hash entry currently has the greatest height, if not already
// finalized.
func (r *Reconciler) sync(ctx context.Context) error {
	active, err := r.activeNames(ctx)
	if err != nil {
		return err
	}

	for _, name := range active {
		entries, err := r.registry.Get(ctx, contentHashPrefix+name, listregistry.TypeString)
		if err != nil {
			return err
		}
		height, c, ok := pickLatest(entries)
		if !ok {
			continue
		}
		finalized, err := r.finals.IsFinalized(ctx, name, height, c)
		if err != nil {
			return err
		}
		if finalized {
			continue
		}
		if err := r.finalizePage(ctx, c, name, height); err != nil {
			return err
		}
		r.metrics.RecordSuccess(0, 1)
	}
	return nil
}

// nuke is stage (c): remove any finalized name that is now blocked.
func (r *Reconciler) nuke(ctx context.Context) error {
	names, err := r.finals.ListNames(ctx)
	if err != nil {
		return err
	}
	allow, err := r.registry.Get(ctx, setAllow, listregistry.TypeString)
	if err != nil {
		return err
	}
	block, err := r.registry.Get(ctx, setBlock, listregistry.TypeString)
	if err != nil {
		return err
	}
	allowSet := toSet(allow)
	blockSet := toSet(block)

	for _, name := range names {
		shouldNuke := blockSet[name]
		if len(allowSet) > 0 && !allowSet[name] {
			shouldNuke = true
		}
		if !shouldNuke {
			continue
		}
		if err := r.nukePage(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// pruneStaged is stage (d): remove staged pins older than cfg.MaxStagedAge.
func (r *Reconciler) pruneStaged(ctx context.Context) error {
	pins, err := r.store.PinList(ctx, "spg_staged_")
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-r.cfg.MaxStagedAge).Unix()
	for _, p := range pins {
		ts, ok := stagedTimestamp(p.Label)
		if !ok {
			continue
		}
		if ts >= cutoff {
			continue
		}
		if err := r.store.PinRemove(ctx, p.CID, p.Label); err != nil {
			r.log.Warn().Err(err).Str("label", p.Label).Msg("failed to prune staged pin")
		}
	}
	return nil
}

// finalizePage implements Finalize(cid, name, height) from spec.md §4.5.
// Each step is individually idempotent, so the whole sequence is safe to
// retry after a partial failure.
func (r *Reconciler) finalizePage(ctx context.Context, c cid.Cid, name string, height uint64) error {
	finalLabel := finalLabelFor(name, height)
	if err := r.store.PinAdd(ctx, c, finalLabel, true); err != nil {
		return errs.New(errs.KindStoreFail, fmt.Errorf("pin final %s: %w", finalLabel, err))
	}
	if err := r.finals.Push(ctx, name, height, c); err != nil {
		return err
	}
	return r.removeStagedFor(ctx, name)
}

// nukePage implements NukePage(name) from spec.md §4.5.
func (r *Reconciler) nukePage(ctx context.Context, name string) error {
	finalPrefix := fmt.Sprintf(labelFinalFmt, name)
	finalPins, err := r.store.PinList(ctx, finalPrefix)
	if err != nil {
		return err
	}

	descendants := make(map[cid.Cid]struct{})
	for _, p := range finalPins {
		ds, err := r.store.EnumerateDescendants(ctx, p.CID)
		if err != nil {
			return err
		}
		for _, c := range ds {
			descendants[c] = struct{}{}
		}
	}

	for _, p := range finalPins {
		if err := r.store.PinRemove(ctx, p.CID, p.Label); err != nil {
			r.log.Warn().Err(err).Str("label", p.Label).Msg("failed to remove final pin during nuke")
		}
	}

	for c := range descendants {
		pins, err := r.store.PinByCidAny(ctx, c)
		if err != nil {
			return err
		}
		if len(pins) > 0 {
			continue // still referenced elsewhere: survives the nuke
		}
		if err := r.store.RemoveBlock(ctx, c); err != nil {
			r.log.Debug().Err(err).Str("cid", c.String()).Msg("block already gone during nuke")
		}
	}

	return r.finals.Remove(ctx, name)
}

func (r *Reconciler) removeStagedFor(ctx context.Context, name string) error {
	prefix := fmt.Sprintf(labelStagedFmt, name)
	pins, err := r.store.PinList(ctx, prefix)
	if err != nil {
		return err
	}
	for _, p := range pins {
		if err := r.store.PinRemove(ctx, p.CID, p.Label); err != nil {
			return err
		}
	}
	return nil
}

func finalLabelFor(name string, height uint64) string {
	return fmt.Sprintf("spg_final_%s_%d", name, height)
}

// loadCursor returns the next block height to scan. saveCursor persists
// the last height actually scanned (cursor-1), so resuming means picking
// up one past that, per spec.md §4.5(a): a persisted latest=100 resumes
// scanning at 101.
func (r *Reconciler) loadCursor(ctx context.Context) (uint64, error) {
	vals, err := r.registry.Get(ctx, latestBlockKey, listregistry.TypeNumber)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return r.cfg.StartBlock, nil
	}
	n, err := strconv.ParseUint(vals[0], 10, 64)
	if err != nil {
		return r.cfg.StartBlock, nil
	}
	return n + 1, nil
}

func (r *Reconciler) saveCursor(ctx context.Context, cursor uint64) error {
	prior, err := r.registry.Get(ctx, latestBlockKey, listregistry.TypeNumber)
	if err != nil {
		return err
	}
	for _, v := range prior {
		if err := r.registry.Remove(ctx, latestBlockKey, listregistry.TypeNumber, v); err != nil {
			return err
		}
	}
	if cursor == 0 {
		return nil
	}
	return r.registry.Add(ctx, latestBlockKey, listregistry.TypeNumber, strconv.FormatUint(cursor-1, 10))
}

func (r *Reconciler) knownResolvers(ctx context.Context) ([]common.Address, error) {
	vals, err := r.registry.Get(ctx, setResolvers, listregistry.TypeAddress)
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, len(vals))
	for i, v := range vals {
		out[i] = common.HexToAddress(v)
	}
	return out, nil
}

// nameForHash resolves a log's indexed name-hash topic back to the
// human-readable name by scanning the domains set. This is O(n) in the
// number of known names per update; dservice's expected corpus size keeps
// this a non-issue, and the alternative (a name-hash index) adds a second
// source of truth the design note in spec.md §9 specifically avoids.
func (r *Reconciler) nameForHash(ctx context.Context, hash common.Hash) (string, bool, error) {
	names, err := r.registry.Get(ctx, setDomains, listregistry.TypeString)
	if err != nil {
		return "", false, err
	}
	for _, name := range names {
		if ensNameHash(name) == hash {
			return name, true, nil
		}
	}
	return "", false, nil
}

// activeNames computes spec.md §4.5's active set: allow replaces domains
// entirely when non-empty, otherwise it is domains minus block.
func (r *Reconciler) activeNames(ctx context.Context) ([]string, error) {
	allow, err := r.registry.Get(ctx, setAllow, listregistry.TypeString)
	if err != nil {
		return nil, err
	}
	if len(allow) > 0 {
		return allow, nil
	}
	domains, err := r.registry.Get(ctx, setDomains, listregistry.TypeString)
	if err != nil {
		return nil, err
	}
	block, err := r.registry.Get(ctx, setBlock, listregistry.TypeString)
	if err != nil {
		return nil, err
	}
	blockSet := toSet(block)
	var out []string
	for _, name := range domains {
		if !blockSet[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

func toSet(vals []string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		out[v] = true
	}
	return out
}

// pickLatest parses "<height>-<cid>" keys and returns the entry with the
// greatest height; ties keep the last-written entry, matching the pin
// list's insertion order per spec.md §4.5.
func pickLatest(entries []string) (uint64, cid.Cid, bool) {
	type parsed struct {
		height uint64
		c      cid.Cid
		order  int
	}
	var best *parsed
	for i, e := range entries {
		idx := strings.Index(e, "-")
		if idx < 0 {
			continue
		}
		h, err := strconv.ParseUint(e[:idx], 10, 64)
		if err != nil {
			continue
		}
		c, err := cid.Decode(e[idx+1:])
		if err != nil {
			continue
		}
		cand := parsed{height: h, c: c, order: i}
		if best == nil || cand.height > best.height || (cand.height == best.height && cand.order > best.order) {
			best = &cand
		}
	}
	if best == nil {
		return 0, cid.Undef, false
	}
	return best.height, best.c, true
}

func stagedTimestamp(label string) (int64, bool) {
	idx := strings.LastIndex(label, "_")
	if idx < 0 {
		return 0, false
	}
	ts, err := strconv.ParseInt(label[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// ensNameHash implements EIP-137 namehash: recursively keccak256 the
// dot-separated labels starting from the 32-zero-byte root, innermost
// label first. "a.b.eth" hashes as
// keccak256(keccak256(keccak256(zero32 . keccak256("eth")) . keccak256("b")) . keccak256("a")).
func ensNameHash(name string) common.Hash {
	node := common.Hash{}
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256Hash([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash.Bytes())
	}
	return node
}
