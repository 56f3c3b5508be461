// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

// Package calldatacheck implements the calldata-check registry consulted
// before the timelock executor is allowed to invoke a target contract. Each
// (target, selector) pair maps to an ordered list of byte-range constraints;
// a proposed payload is permitted only if it satisfies at least one of them.
package calldatacheck

import (
	"github.com/ethereum/go-ethereum/common"
)

// SelectorLen is the length of the function selector prefixing a payload.
const SelectorLen = 4

// Selector is the 4-byte function identifier prefix of a call payload.
type Selector [SelectorLen]byte

// SelectorFromPayload extracts the selector from a call payload. The second
// return value is false when the payload is too short to carry one.
func SelectorFromPayload(payload []byte) (Selector, bool) {
	var sel Selector
	if len(payload) < SelectorLen {
		return sel, false
	}
	copy(sel[:], payload[:SelectorLen])
	return sel, true
}

// Check is one stored constraint for a (target, selector) pair. The payload
// bytes in [StartIndex, EndIndex) are compared against each candidate in
// Data; any single candidate matching satisfies the check. Candidates whose
// IsSelfAddressCheck flag is set compare against the registry owner's own
// address instead of the stored pattern, so whitelists can say "this
// argument must be the registry itself" without hardcoding the address.
type Check struct {
	StartIndex         uint16
	EndIndex           uint16
	Data               [][]byte
	IsSelfAddressCheck []bool
}

// IsWildcard reports whether the check admits any calldata for its pair:
// both indexes sit at the post-selector offset and the single candidate
// pattern is empty.
func (c *Check) IsWildcard() bool {
	return c.StartIndex == SelectorLen && c.EndIndex == SelectorLen &&
		len(c.Data) == 1 && len(c.Data[0]) == 0
}

func (c *Check) clone() Check {
	out := Check{
		StartIndex: c.StartIndex,
		EndIndex:   c.EndIndex,
	}
	if c.Data != nil {
		out.Data = make([][]byte, len(c.Data))
		for i, pattern := range c.Data {
			out.Data[i] = append([]byte(nil), pattern...)
		}
	}
	if c.IsSelfAddressCheck != nil {
		out.IsSelfAddressCheck = append([]bool(nil), c.IsSelfAddressCheck...)
	}
	return out
}

// selfAddressValue right-aligns owner within a slice of the given width.
// Widths of at least 20 bytes are zero-padded on the left, the way an
// address occupies the low-order bytes of an argument slot; narrower widths
// keep only the low-order bytes of the address.
func selfAddressValue(owner common.Address, width int) []byte {
	if width >= common.AddressLength {
		return common.LeftPadBytes(owner.Bytes(), width)
	}
	return owner.Bytes()[common.AddressLength-width:]
}
