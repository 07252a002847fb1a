package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"
)

// pinIndex is a small label-indexed key-value table layered directly over
// the backing datastore, per spec.md §9's note: boxo's pinner tracks only
// recursive/direct/internal pin sets without labels, so a store that needs
// list-pins-by-label-prefix (every invariant in spec.md §3 does) needs its
// own index. go-datastore's prefix Query gives us exactly that operation
// natively, so we keep it in the same batching store as the blocks rather
// than bolting on a second database.
type pinIndex struct {
	ds ds.Batching
}

const (
	pinsByLabelPrefix = "/pins/"
	pinsByCIDPrefix   = "/pinrefs/"
)

type pinRecord struct {
	Recursive bool `json:"recursive"`
}

func newPinIndex(bs ds.Batching) *pinIndex {
	return &pinIndex{ds: bs}
}

func labelKey(label string, c cid.Cid) ds.Key {
	return ds.NewKey(pinsByLabelPrefix + label + "/" + c.String())
}

func cidRefKey(c cid.Cid, label string) ds.Key {
	return ds.NewKey(pinsByCIDPrefix + c.String() + "/" + label)
}

// Pin records a pin under (cid, label). Idempotent: re-pinning the same
// (cid, label) with the same recursive flag is a no-op observationally.
func (p *pinIndex) Pin(ctx context.Context, c cid.Cid, label string, recursive bool) error {
	rec, err := json.Marshal(pinRecord{Recursive: recursive})
	if err != nil {
		return err
	}
	if err := p.ds.Put(ctx, labelKey(label, c), rec); err != nil {
		return fmt.Errorf("pin %s/%s: %w", label, c, err)
	}
	if err := p.ds.Put(ctx, cidRefKey(c, label), []byte{1}); err != nil {
		return fmt.Errorf("pin index %s/%s: %w", c, label, err)
	}
	return nil
}

// Unpin removes the pin under (cid, label). Tolerates a missing pin.
func (p *pinIndex) Unpin(ctx context.Context, c cid.Cid, label string) error {
	if err := p.ds.Delete(ctx, labelKey(label, c)); err != nil && err != ds.ErrNotFound {
		return err
	}
	if err := p.ds.Delete(ctx, cidRefKey(c, label)); err != nil && err != ds.ErrNotFound {
		return err
	}
	return nil
}

// Pin describes one pin returned by List/ByCID.
type Pin struct {
	CID       cid.Cid
	Label     string
	Recursive bool
}

// List returns every pin whose label begins with labelPrefix.
func (p *pinIndex) List(ctx context.Context, labelPrefix string) ([]Pin, error) {
	res, err := p.ds.Query(ctx, dsq.Query{Prefix: pinsByLabelPrefix + labelPrefix})
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var out []Pin
	for entry := range res.Next() {
		if entry.Error != nil {
			return nil, entry.Error
		}
		pin, ok := parseLabelEntry(entry.Key, entry.Value)
		if !ok {
			continue
		}
		out = append(out, pin)
	}
	return out, nil
}

// ByCID returns every (label, recursive) pair currently pinning c, regardless
// of which label namespace it lives in.
func (p *pinIndex) ByCID(ctx context.Context, c cid.Cid) ([]Pin, error) {
	res, err := p.ds.Query(ctx, dsq.Query{Prefix: pinsByCIDPrefix + c.String() + "/"})
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var out []Pin
	for entry := range res.Next() {
		if entry.Error != nil {
			return nil, entry.Error
		}
		label := strings.TrimPrefix(entry.Key, pinsByCIDPrefix+c.String()+"/")
		rec, err := p.ds.Get(ctx, labelKey(label, c))
		if err != nil {
			// label-side record already removed; ref is stale, skip it.
			continue
		}
		var pr pinRecord
		if err := json.Unmarshal(rec, &pr); err != nil {
			continue
		}
		out = append(out, Pin{CID: c, Label: label, Recursive: pr.Recursive})
	}
	return out, nil
}

// HasAny reports whether any pin references c.
func (p *pinIndex) HasAny(ctx context.Context, c cid.Cid) (bool, error) {
	pins, err := p.ByCID(ctx, c)
	if err != nil {
		return false, err
	}
	return len(pins) > 0, nil
}

func parseLabelEntry(key string, value []byte) (Pin, bool) {
	rest := strings.TrimPrefix(key, pinsByLabelPrefix)
	idx := strings.LastIndex(rest, "/")
	if idx < 0 {
		return Pin{}, false
	}
	label, cidStr := rest[:idx], rest[idx+1:]
	c, err := cid.Decode(cidStr)
	if err != nil {
		return Pin{}, false
	}
	var pr pinRecord
	if err := json.Unmarshal(value, &pr); err != nil {
		return Pin{}, false
	}
	return Pin{CID: c, Label: label, Recursive: pr.Recursive}, true
}
