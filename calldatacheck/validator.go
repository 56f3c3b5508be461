// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package calldatacheck

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	matchHitCounter  = metrics.NewRegisteredCounter("timelockguard/validator/match/hit", nil)
	matchMissCounter = metrics.NewRegisteredCounter("timelockguard/validator/match/miss", nil)
)

// Validator decides whether a proposed call payload matches a check stored
// for its (target, selector) pair. A miss is a normal outcome, not an error:
// the caller uses the boolean to allow or reject execution.
type Validator struct {
	registry *Registry
}

func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// IsValid walks the pair's checks in storage order and accepts on the first
// match. Payloads shorter than a selector never match, and neither does a
// pair with no stored checks; whether such a call is permitted at all is the
// selector-level whitelist's decision, not this one's.
func (v *Validator) IsValid(target common.Address, payload []byte) bool {
	selector, ok := SelectorFromPayload(payload)
	if !ok {
		matchMissCounter.Inc(1)
		return false
	}

	v.registry.mu.RLock()
	checks := v.registry.checks[pairKey{target: target, selector: selector}]
	matched := false
	for i := range checks {
		if v.matches(&checks[i], payload) {
			matched = true
			break
		}
	}
	v.registry.mu.RUnlock()

	if matched {
		matchHitCounter.Inc(1)
	} else {
		matchMissCounter.Inc(1)
	}
	return matched
}

func (v *Validator) matches(check *Check, payload []byte) bool {
	if check.IsWildcard() {
		return true
	}
	if len(payload) < int(check.EndIndex) {
		return false
	}
	slice := payload[check.StartIndex:check.EndIndex]
	for i, candidate := range check.Data {
		if check.IsSelfAddressCheck[i] {
			candidate = selfAddressValue(v.registry.ownAddress, len(slice))
		}
		if bytes.Equal(slice, candidate) {
			return true
		}
	}
	return false
}
