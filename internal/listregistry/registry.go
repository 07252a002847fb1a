// Package listregistry implements the operator-visible and internal sets
// (spec.md §4.2): allow/block lists, discovered domains, discovered
// resolvers, and per-name content-hash history. Each set is a group of pins
// sharing a label prefix, and each element is its own CID via an identity
// multihash — the value is recovered straight from the CID, the same trick
// demonstrated in 00-block-cid/main.go's identity-hash walkthrough.
package listregistry

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ipfs/go-cid"
	mc "github.com/multiformats/go-multicodec"
	mh "github.com/multiformats/go-multihash"
	"github.com/multiformats/go-varint"

	"github.com/stigmergic-org/dservice/internal/errs"
	"github.com/stigmergic-org/dservice/internal/store"
)

const listLabelPrefix = "spg_list_"

// Type identifies how an element's bytes are interpreted when decoding a
// pin's identity-hash CID back into a value.
type Type int

const (
	TypeString Type = iota
	TypeAddress
	TypeNumber
)

// Registry is the typed set API over a store.Adapter's pin index.
type Registry struct {
	store *store.Adapter
}

func New(s *store.Adapter) *Registry {
	return &Registry{store: s}
}

func setLabel(setName string) string {
	return listLabelPrefix + setName
}

// encode turns a typed value into its binary form for identity hashing.
func encode(t Type, value string) ([]byte, error) {
	switch t {
	case TypeString:
		return []byte(value), nil
	case TypeAddress:
		h := strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
		raw, err := hex.DecodeString(h)
		if err != nil {
			return nil, errs.New(errs.KindDecodeFail, fmt.Errorf("decode address %q: %w", value, err))
		}
		if len(raw) != 20 {
			return nil, errs.New(errs.KindDecodeFail, fmt.Errorf("address %q is %d bytes, want 20", value, len(raw)))
		}
		return raw, nil
	case TypeNumber:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, errs.New(errs.KindDecodeFail, fmt.Errorf("decode number %q: %w", value, err))
		}
		return varint.ToUvarint(n), nil
	default:
		return nil, fmt.Errorf("unknown list element type %d", t)
	}
}

// decode is encode's inverse, used when materializing a set from its pins.
func decode(t Type, raw []byte) (string, error) {
	switch t {
	case TypeString:
		return string(raw), nil
	case TypeAddress:
		if len(raw) != 20 {
			return "", fmt.Errorf("address element is %d bytes, want 20", len(raw))
		}
		return "0x" + hex.EncodeToString(raw), nil
	case TypeNumber:
		n, _, err := varint.FromUvarint(raw)
		if err != nil {
			return "", fmt.Errorf("decode varint element: %w", err)
		}
		return strconv.FormatUint(n, 10), nil
	default:
		return "", fmt.Errorf("unknown list element type %d", t)
	}
}

// identityCID builds the self-describing CID for value's encoded bytes,
// following 00-block-cid/main.go's identity-multihash demo: raw codec,
// identity multihash, so the CID bytes themselves are the value.
func identityCID(data []byte) (cid.Cid, error) {
	mhash, err := mh.Sum(data, mh.IDENTITY, len(data))
	if err != nil {
		return cid.Undef, fmt.Errorf("identity multihash: %w", err)
	}
	return cid.NewCidV1(uint64(mc.Raw), mhash), nil
}

func decodeIdentityCID(c cid.Cid) ([]byte, error) {
	decoded, err := mh.Decode(c.Hash())
	if err != nil {
		return nil, fmt.Errorf("decode multihash: %w", err)
	}
	if decoded.Code != mh.IDENTITY {
		return nil, fmt.Errorf("cid %s is not an identity-hash element", c)
	}
	return decoded.Digest, nil
}

// Add inserts value into setName under type t. Idempotent: re-encoding the
// same value always yields the same CID, so a repeat Add is a no-op pin.
func (r *Registry) Add(ctx context.Context, setName string, t Type, value string) error {
	raw, err := encode(t, value)
	if err != nil {
		return err
	}
	c, err := identityCID(raw)
	if err != nil {
		return err
	}
	return r.store.PinAdd(ctx, c, setLabel(setName), false)
}

// Remove deletes value from setName, tolerating an already-absent element.
func (r *Registry) Remove(ctx context.Context, setName string, t Type, value string) error {
	raw, err := encode(t, value)
	if err != nil {
		return err
	}
	c, err := identityCID(raw)
	if err != nil {
		return err
	}
	return r.store.PinRemove(ctx, c, setLabel(setName))
}

// Get returns every value currently in setName. Pins whose CID doesn't
// decode as an identity-hash element of the expected type are skipped
// without an error or a log line rather than aborting the whole listing,
// mirroring the
// store's general tolerate-operator-error stance (spec.md §9).
func (r *Registry) Get(ctx context.Context, setName string, t Type) ([]string, error) {
	pins, err := r.store.PinList(ctx, setLabel(setName))
	if err != nil {
		return nil, errs.New(errs.KindStoreFail, fmt.Errorf("list set %s: %w", setName, err))
	}
	out := make([]string, 0, len(pins))
	for _, p := range pins {
		raw, err := decodeIdentityCID(p.CID)
		if err != nil {
			continue
		}
		val, err := decode(t, raw)
		if err != nil {
			continue
		}
		out = append(out, val)
	}
	return out, nil
}

// GetAllByPrefix groups every pin whose set name begins with setNamePrefix
// by its full set name, decoding each element as t. Used by the
// indexer-data CLI's `show`, which needs every per-name contenthash_<name>
// set without knowing the names in advance.
func (r *Registry) GetAllByPrefix(ctx context.Context, setNamePrefix string, t Type) (map[string][]string, error) {
	pins, err := r.store.PinList(ctx, setLabel(setNamePrefix))
	if err != nil {
		return nil, errs.New(errs.KindStoreFail, fmt.Errorf("list sets %s*: %w", setNamePrefix, err))
	}
	out := make(map[string][]string)
	for _, p := range pins {
		setName := strings.TrimPrefix(p.Label, listLabelPrefix)
		raw, err := decodeIdentityCID(p.CID)
		if err != nil {
			continue
		}
		val, err := decode(t, raw)
		if err != nil {
			continue
		}
		out[setName] = append(out[setName], val)
	}
	return out, nil
}

// RemoveAllByPrefix deletes every pin whose set name begins with
// setNamePrefix, used by indexer-data `reset` to wipe every
// contenthash_<name> set in one sweep regardless of which names are
// currently known.
func (r *Registry) RemoveAllByPrefix(ctx context.Context, setNamePrefix string) error {
	pins, err := r.store.PinList(ctx, setLabel(setNamePrefix))
	if err != nil {
		return errs.New(errs.KindStoreFail, fmt.Errorf("list sets %s*: %w", setNamePrefix, err))
	}
	for _, p := range pins {
		if err := r.store.PinRemove(ctx, p.CID, p.Label); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether value is currently a member of setName.
func (r *Registry) Contains(ctx context.Context, setName string, t Type, value string) (bool, error) {
	raw, err := encode(t, value)
	if err != nil {
		return false, err
	}
	c, err := identityCID(raw)
	if err != nil {
		return false, err
	}
	pins, err := r.store.PinByCidAny(ctx, c)
	if err != nil {
		return false, err
	}
	for _, p := range pins {
		if p.Label == setLabel(setName) {
			return true, nil
		}
	}
	return false, nil
}
