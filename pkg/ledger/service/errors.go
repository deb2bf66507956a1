package service

import (
	"errors"
	"fmt"
)

// Error kinds. The message of each kind is the stable code reported to
// callers in receipts and HTTP bodies.
var (
	ErrNotOwner            = errors.New("err-not-owner")
	ErrInsufficientStake   = errors.New("err-insufficient-stake")
	ErrInsufficientBalance = errors.New("err-insufficient-balance")
	ErrNotFound            = errors.New("err-not-found")
	ErrPoolShutdown        = errors.New("err-pool-shutdown")
	ErrAlreadyExists       = errors.New("err-already-exists")
	ErrOverflow            = errors.New("err-overflow")
)

const CodeInternal = "err-internal"

var kinds = []error{
	ErrNotOwner, ErrInsufficientStake, ErrInsufficientBalance,
	ErrNotFound, ErrPoolShutdown, ErrAlreadyExists, ErrOverflow,
}

// LedgerError is a rejected call. Kind is one of the Err* values above.
type LedgerError struct {
	Kind error
	Msg  string
}

func (e *LedgerError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *LedgerError) Unwrap() error { return e.Kind }

func Reject(kind error, format string, args ...any) error {
	return &LedgerError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Code maps err to its stable error code; anything that is not a ledger
// rejection is reported as CodeInternal.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return CodeInternal
}
