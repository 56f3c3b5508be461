// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package calldatacheck

import "errors"

// Failure reasons surfaced by registry mutations. The messages are part of
// the external contract: operator tooling and audits key off the exact
// strings, so they must not be reworded.
var (
	ErrBatchArityMismatch = errors.New("array length mismatch on batched add")
	ErrDataArityMismatch  = errors.New("data array and self-address check array length mismatch")
	ErrStartIndexTooSmall = errors.New("start index must be greater than 3")
	ErrEndBeforeStart     = errors.New("end index must be greater than start index")
	ErrEndEqualsStart     = errors.New("end index equals start index only when it equals 4")
	ErrZeroWidthCheck     = errors.New("zero-width check must be the single empty wildcard pattern")
	ErrWildcardNotAlone   = errors.New("wildcard can only be added if no existing check for the pair")
	ErrWildcardExists     = errors.New("cannot add a non-wildcard check once a wildcard exists for the pair")
	ErrTargetIsSelf       = errors.New("target address cannot equal the registry's own address")
	ErrTargetIsOperator   = errors.New("target address cannot equal the trusted-operator address")
	ErrNoChecksForPair    = errors.New("no checks exist for target and selector")
	ErrIndexOutOfBounds   = errors.New("check index out of bounds")
)
