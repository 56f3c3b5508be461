// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package whitelist

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/timelock-guard/calldatacheck"
)

// Gate is the combined decision the executor consults before forwarding a
// call: the pair must be permitted by the selector policy, and conditional
// grants must additionally match a stored calldata check.
type Gate struct {
	policy    *SelectorPolicy
	validator *calldatacheck.Validator
}

func NewGate(policy *SelectorPolicy, validator *calldatacheck.Validator) *Gate {
	return &Gate{
		policy:    policy,
		validator: validator,
	}
}

func (g *Gate) Allowed(target common.Address, payload []byte) bool {
	selector, ok := calldatacheck.SelectorFromPayload(payload)
	if !ok {
		return false
	}
	permitted, unconditional := g.policy.IsPermitted(target, selector)
	if !permitted {
		log.Trace("call target selector not permitted", "target", target, "selector", hexutil.Encode(selector[:]))
		return false
	}
	if unconditional {
		return true
	}
	if !g.validator.IsValid(target, payload) {
		log.Trace("calldata matched no stored check", "target", target, "selector", hexutil.Encode(selector[:]), "payloadLen", len(payload))
		return false
	}
	return true
}
