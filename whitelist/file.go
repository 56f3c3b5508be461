// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package whitelist

import (
	"github.com/knadh/koanf"
	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/offchainlabs/timelock-guard/calldatacheck"
)

// CheckDefinition is one byte-range constraint inside an Entry.
type CheckDefinition struct {
	StartIndex  uint16          `koanf:"start-index"`
	EndIndex    uint16          `koanf:"end-index"`
	Data        []hexutil.Bytes `koanf:"data"`
	SelfAddress []bool          `koanf:"self-address"`
}

// Entry grants one (target, selector) pair. The selector is given either as
// 4 hex bytes or derived from a human-readable function signature; exactly
// one of the two must be set. Unconditional entries carry no checks and
// admit any calldata for the pair; conditional entries list the checks to
// register.
type Entry struct {
	Target        common.Address    `koanf:"target"`
	Selector      string            `koanf:"selector"`
	Signature     string            `koanf:"signature"`
	Unconditional bool              `koanf:"unconditional"`
	Checks        []CheckDefinition `koanf:"checks"`
}

// Definition is the top-level shape of a whitelist file.
type Definition struct {
	Entries []Entry `koanf:"entries"`
}

// Load reads and decodes a JSON whitelist definition file.
func Load(path string) (*Definition, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
		return nil, errors.Wrapf(err, "error loading whitelist file %s", path)
	}
	return decode(k)
}

// Parse decodes a JSON whitelist definition from memory; used by the config
// string override and by tests.
func Parse(data []byte) (*Definition, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), koanfjson.Parser()); err != nil {
		return nil, errors.Wrap(err, "error parsing whitelist definition")
	}
	return decode(k)
}

func decode(k *koanf.Koanf) (*Definition, error) {
	var def Definition
	decoderConfig := mapstructure.DecoderConfig{
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           &def,
		WeaklyTypedInput: true,
	}
	if err := k.UnmarshalWithConf("", &def, koanf.UnmarshalConf{
		Tag:           "koanf",
		DecoderConfig: &decoderConfig,
	}); err != nil {
		return nil, errors.Wrap(err, "error decoding whitelist definition")
	}
	return &def, nil
}

// ResolveSelector returns the entry's selector, either parsed from the hex
// field or derived from the keccak hash of the function signature.
func (e *Entry) ResolveSelector() (calldatacheck.Selector, error) {
	var sel calldatacheck.Selector
	switch {
	case e.Selector != "" && e.Signature != "":
		return sel, errors.New("entry sets both selector and signature")
	case e.Selector != "":
		raw, err := hexutil.Decode(e.Selector)
		if err != nil {
			return sel, errors.Wrapf(err, "invalid selector %q", e.Selector)
		}
		if len(raw) != calldatacheck.SelectorLen {
			return sel, errors.Errorf("selector %q is not %d bytes", e.Selector, calldatacheck.SelectorLen)
		}
		copy(sel[:], raw)
		return sel, nil
	case e.Signature != "":
		copy(sel[:], crypto.Keccak256([]byte(e.Signature))[:calldatacheck.SelectorLen])
		return sel, nil
	default:
		return sel, errors.New("entry sets neither selector nor signature")
	}
}

// Apply registers the definition: all calldata checks are added through one
// batched registry call so a bad entry cannot half-apply, then the selector
// grants are recorded in the policy.
func (d *Definition) Apply(registry *calldatacheck.Registry, policy *SelectorPolicy) error {
	type grant struct {
		target        common.Address
		selector      calldatacheck.Selector
		unconditional bool
	}

	var grants []grant
	var targets []common.Address
	var selectors []calldatacheck.Selector
	var startIndexes, endIndexes []uint16
	var datas [][][]byte
	var selfChecks [][]bool

	for i := range d.Entries {
		entry := &d.Entries[i]
		selector, err := entry.ResolveSelector()
		if err != nil {
			return errors.Wrapf(err, "whitelist entry %d", i)
		}
		if entry.Unconditional && len(entry.Checks) > 0 {
			return errors.Errorf("whitelist entry %d: unconditional entry cannot carry calldata checks", i)
		}
		grants = append(grants, grant{
			target:        entry.Target,
			selector:      selector,
			unconditional: entry.Unconditional,
		})
		for _, check := range entry.Checks {
			data := make([][]byte, len(check.Data))
			for j, pattern := range check.Data {
				data[j] = pattern
			}
			targets = append(targets, entry.Target)
			selectors = append(selectors, selector)
			startIndexes = append(startIndexes, check.StartIndex)
			endIndexes = append(endIndexes, check.EndIndex)
			datas = append(datas, data)
			selfChecks = append(selfChecks, check.SelfAddress)
		}
	}

	if err := registry.AddChecks(targets, selectors, startIndexes, endIndexes, datas, selfChecks); err != nil {
		return errors.Wrap(err, "error registering whitelist checks")
	}
	for _, g := range grants {
		policy.Permit(g.target, g.selector, g.unconditional)
	}
	return nil
}
