// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

// Package whitelist layers the coarse selector-level policy on top of the
// calldata-check registry and loads whitelist definitions from disk. The
// policy answers "may this (target, selector) pair be called at all"; the
// registry answers "do the argument bytes match a stored pattern".
package whitelist

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/offchainlabs/timelock-guard/calldatacheck"
)

type pair struct {
	target   common.Address
	selector calldatacheck.Selector
}

// SelectorPolicy is the set of (target, selector) pairs the executor is
// permitted to call. An unconditional grant passes calls through without
// calldata-level matching; a conditional grant additionally requires a
// stored check to match. Like the registry, mutations trust the caller.
type SelectorPolicy struct {
	mu      sync.RWMutex
	entries map[pair]bool // value: unconditional
}

func NewSelectorPolicy() *SelectorPolicy {
	return &SelectorPolicy{
		entries: make(map[pair]bool),
	}
}

func (p *SelectorPolicy) Permit(target common.Address, selector calldatacheck.Selector, unconditional bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[pair{target: target, selector: selector}] = unconditional
}

func (p *SelectorPolicy) Revoke(target common.Address, selector calldatacheck.Selector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, pair{target: target, selector: selector})
}

// IsPermitted reports whether the pair is granted at all and, if so, whether
// the grant is unconditional.
func (p *SelectorPolicy) IsPermitted(target common.Address, selector calldatacheck.Selector) (permitted bool, unconditional bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	unconditional, permitted = p.entries[pair{target: target, selector: selector}]
	return
}
