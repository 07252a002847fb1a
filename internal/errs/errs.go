// Package errs defines the error taxonomy shared by every dservice component.
//
// Call sites attach a Kind with New(kind, err), and callers recover it with
// As (errors.As against *Error) for HTTP status mapping.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindRPCFail            Kind = "RPC_FAIL"
	KindStoreFail          Kind = "STORE_FAIL"
	KindInvalidArchive     Kind = "INVALID_ARCHIVE"
	KindUploadTooLarge     Kind = "UPLOAD_TOO_LARGE"
	KindNotFound           Kind = "NOT_FOUND"
	KindPolicyBlocked      Kind = "POLICY_BLOCKED"
	KindDecodeFail         Kind = "DECODE_FAIL"
	KindInvariantViolation Kind = "INVARIANT_VIOLATION"
)

var (
	ErrRPCFail        = errors.New("rpc call failed")
	ErrStoreFail      = errors.New("store operation failed")
	ErrInvalidArchive = errors.New("invalid archive")
	ErrUploadTooLarge = errors.New("upload exceeds size cap")
	ErrNotFound       = errors.New("not found")
	ErrPolicyBlocked  = errors.New("name is blocked by operator policy")
	ErrDecodeFail     = errors.New("decode failed")
)

// Error wraps an underlying error with a Kind so HTTP/CLI layers can map it
// to a status code or exit code without string matching.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// As recovers the Kind carried by err, if any was attached via New.
func As(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
