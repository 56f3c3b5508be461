// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package calldatacheck

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	checksAddedCounter   = metrics.NewRegisteredCounter("timelockguard/registry/checks/added", nil)
	checksRemovedCounter = metrics.NewRegisteredCounter("timelockguard/registry/checks/removed", nil)
)

type pairKey struct {
	target   common.Address
	selector Selector
}

// Registry stores the calldata checks for every whitelisted
// (target, selector) pair. Mutations trust their caller: authorization is
// the responsibility of the privileged executor invoking them. The registry
// still guards its map with a lock so concurrent readers (the validator and
// the inspection API) are always safe.
//
// Removal is swap-and-pop, so check indices refer to the current storage
// order and are invalidated by any removal on the same pair.
type Registry struct {
	ownAddress      common.Address
	trustedOperator common.Address

	mu     sync.RWMutex
	checks map[pairKey][]Check
}

// NewRegistry creates an empty registry. ownAddress is the identity used for
// self-address candidates and is forbidden as a check target, as is the
// trusted operator.
func NewRegistry(ownAddress common.Address, trustedOperator common.Address) *Registry {
	return &Registry{
		ownAddress:      ownAddress,
		trustedOperator: trustedOperator,
		checks:          make(map[pairKey][]Check),
	}
}

func (r *Registry) OwnAddress() common.Address {
	return r.ownAddress
}

func (r *Registry) TrustedOperator() common.Address {
	return r.trustedOperator
}

// validateAdd applies the add-time constraint rules, in contract order,
// against the list the pair currently holds.
func (r *Registry) validateAdd(existing []Check, target common.Address, check *Check) error {
	if target == r.ownAddress {
		return ErrTargetIsSelf
	}
	if target == r.trustedOperator {
		return ErrTargetIsOperator
	}
	if len(check.Data) != len(check.IsSelfAddressCheck) {
		return ErrDataArityMismatch
	}
	if check.StartIndex < SelectorLen {
		return ErrStartIndexTooSmall
	}
	if check.StartIndex == check.EndIndex {
		if check.StartIndex != SelectorLen {
			return ErrEndEqualsStart
		}
		// A zero-width range compares payload[4:4] against its candidates,
		// so any empty candidate would match every payload. The only legal
		// zero-width shape is the wildcard itself.
		if !check.IsWildcard() {
			return ErrZeroWidthCheck
		}
	} else if check.EndIndex < check.StartIndex {
		return ErrEndBeforeStart
	}
	if check.IsWildcard() {
		if len(existing) > 0 {
			return ErrWildcardNotAlone
		}
	} else if len(existing) > 0 && existing[0].IsWildcard() {
		return ErrWildcardExists
	}
	return nil
}

// AddCheck appends one check to the (target, selector) list, creating the
// list if the pair had none. The stored check is a deep copy, so the caller
// keeps no alias into registry state. On failure the registry is unchanged.
func (r *Registry) AddCheck(
	target common.Address,
	selector Selector,
	startIndex uint16,
	endIndex uint16,
	data [][]byte,
	isSelfAddressCheck []bool,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{target: target, selector: selector}
	check := Check{
		StartIndex:         startIndex,
		EndIndex:           endIndex,
		Data:               data,
		IsSelfAddressCheck: isSelfAddressCheck,
	}
	if err := r.validateAdd(r.checks[key], target, &check); err != nil {
		return err
	}
	r.checks[key] = append(r.checks[key], check.clone())
	checksAddedCounter.Inc(1)
	return nil
}

// AddChecks is the batched form of AddCheck. The six slices are parallel and
// must have equal length. Elements are validated and applied in order, each
// seeing the checks staged by its predecessors, but the registry commits
// only if every element passes: a failed batch leaves no partial state.
func (r *Registry) AddChecks(
	targets []common.Address,
	selectors []Selector,
	startIndexes []uint16,
	endIndexes []uint16,
	datas [][][]byte,
	isSelfAddressChecks [][]bool,
) error {
	n := len(targets)
	if len(selectors) != n || len(startIndexes) != n || len(endIndexes) != n ||
		len(datas) != n || len(isSelfAddressChecks) != n {
		return ErrBatchArityMismatch
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Stage every element against an overlay of the live map so a failure
	// partway through cannot leave earlier elements behind.
	staged := make(map[pairKey][]Check)
	for i := 0; i < n; i++ {
		key := pairKey{target: targets[i], selector: selectors[i]}
		existing, ok := staged[key]
		if !ok {
			live := r.checks[key]
			existing = make([]Check, len(live), len(live)+1)
			copy(existing, live)
		}
		check := Check{
			StartIndex:         startIndexes[i],
			EndIndex:           endIndexes[i],
			Data:               datas[i],
			IsSelfAddressCheck: isSelfAddressChecks[i],
		}
		if err := r.validateAdd(existing, targets[i], &check); err != nil {
			return err
		}
		staged[key] = append(existing, check.clone())
	}
	for key, list := range staged {
		r.checks[key] = list
	}
	checksAddedCounter.Inc(int64(n))
	return nil
}

// RemoveCheck deletes the check at index for the (target, selector) pair by
// moving the last check into its slot and shrinking the list. O(1), not
// order-preserving: indices obtained before the call are stale afterwards.
func (r *Registry) RemoveCheck(target common.Address, selector Selector, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{target: target, selector: selector}
	list, ok := r.checks[key]
	if !ok || len(list) == 0 {
		return ErrNoChecksForPair
	}
	if index < 0 || index >= len(list) {
		return ErrIndexOutOfBounds
	}
	list[index] = list[len(list)-1]
	list = list[:len(list)-1]
	if len(list) == 0 {
		delete(r.checks, key)
	} else {
		r.checks[key] = list
	}
	checksRemovedCounter.Inc(1)
	return nil
}

// GetChecks returns the checks stored for the pair in current storage order,
// or an empty slice when none are registered. The result is a deep copy:
// mutating it never touches registry state.
func (r *Registry) GetChecks(target common.Address, selector Selector) []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.checks[pairKey{target: target, selector: selector}]
	out := make([]Check, len(list))
	for i := range list {
		out[i] = list[i].clone()
	}
	return out
}
