// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package api

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/node"
	"github.com/ethereum/go-ethereum/p2p"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/offchainlabs/timelock-guard/calldatacheck"
	"github.com/offchainlabs/timelock-guard/whitelist"
)

const (
	namespace      = "timelockguard"
	adminNamespace = "timelockguardadmin"
)

// CheckRecord is the JSON shape of a stored check on the RPC surface.
type CheckRecord struct {
	StartIndex  uint16          `json:"startIndex"`
	EndIndex    uint16          `json:"endIndex"`
	Data        []hexutil.Bytes `json:"data"`
	SelfAddress []bool          `json:"selfAddress"`
}

// PermitStatus reports a pair's selector-policy grant.
type PermitStatus struct {
	Permitted     bool `json:"permitted"`
	Unconditional bool `json:"unconditional"`
}

func parseSelector(raw hexutil.Bytes) (calldatacheck.Selector, error) {
	var sel calldatacheck.Selector
	if len(raw) != calldatacheck.SelectorLen {
		return sel, errors.Errorf("selector must be %d bytes, got %d", calldatacheck.SelectorLen, len(raw))
	}
	copy(sel[:], raw)
	return sel, nil
}

// TimelockGuardAPI is the public, read-only surface: match queries and
// whitelist inspection for governance dashboards.
type TimelockGuardAPI struct {
	registry  *calldatacheck.Registry
	validator *calldatacheck.Validator
	policy    *whitelist.SelectorPolicy
	gate      *whitelist.Gate
}

// IsValid reports whether the payload matches a stored calldata check for
// the target.
func (a *TimelockGuardAPI) IsValid(ctx context.Context, target common.Address, payload hexutil.Bytes) bool {
	return a.validator.IsValid(target, payload)
}

// IsAllowed is the combined decision: selector policy plus calldata checks.
func (a *TimelockGuardAPI) IsAllowed(ctx context.Context, target common.Address, payload hexutil.Bytes) bool {
	return a.gate.Allowed(target, payload)
}

func (a *TimelockGuardAPI) GetChecks(ctx context.Context, target common.Address, selector hexutil.Bytes) ([]CheckRecord, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	checks := a.registry.GetChecks(target, sel)
	records := make([]CheckRecord, len(checks))
	for i, check := range checks {
		data := make([]hexutil.Bytes, len(check.Data))
		for j, pattern := range check.Data {
			data[j] = pattern
		}
		records[i] = CheckRecord{
			StartIndex:  check.StartIndex,
			EndIndex:    check.EndIndex,
			Data:        data,
			SelfAddress: check.IsSelfAddressCheck,
		}
	}
	return records, nil
}

func (a *TimelockGuardAPI) IsPermitted(ctx context.Context, target common.Address, selector hexutil.Bytes) (*PermitStatus, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	permitted, unconditional := a.policy.IsPermitted(target, sel)
	return &PermitStatus{Permitted: permitted, Unconditional: unconditional}, nil
}

// AddCheckArgs is one element of a batched add.
type AddCheckArgs struct {
	Target      common.Address  `json:"target"`
	Selector    hexutil.Bytes   `json:"selector"`
	StartIndex  uint16          `json:"startIndex"`
	EndIndex    uint16          `json:"endIndex"`
	Data        []hexutil.Bytes `json:"data"`
	SelfAddress []bool          `json:"selfAddress"`
}

// TimelockGuardAdminAPI mutates the whitelist. It is registered as a
// non-public namespace: deployments expose it over IPC or an authenticated
// endpoint, mirroring the trust the registry places in its caller.
type TimelockGuardAdminAPI struct {
	registry *calldatacheck.Registry
	policy   *whitelist.SelectorPolicy
}

func (a *TimelockGuardAdminAPI) AddCheck(ctx context.Context, args AddCheckArgs) error {
	sel, err := parseSelector(args.Selector)
	if err != nil {
		return err
	}
	data := make([][]byte, len(args.Data))
	for i, pattern := range args.Data {
		data[i] = pattern
	}
	if err := a.registry.AddCheck(args.Target, sel, args.StartIndex, args.EndIndex, data, args.SelfAddress); err != nil {
		return err
	}
	log.Info("Added calldata check", "target", args.Target, "selector", args.Selector,
		"startIndex", args.StartIndex, "endIndex", args.EndIndex, "candidates", len(data))
	return nil
}

func (a *TimelockGuardAdminAPI) AddChecks(ctx context.Context, batch []AddCheckArgs) error {
	n := len(batch)
	targets := make([]common.Address, n)
	selectors := make([]calldatacheck.Selector, n)
	startIndexes := make([]uint16, n)
	endIndexes := make([]uint16, n)
	datas := make([][][]byte, n)
	selfChecks := make([][]bool, n)
	for i, args := range batch {
		sel, err := parseSelector(args.Selector)
		if err != nil {
			return errors.Wrapf(err, "batch element %d", i)
		}
		data := make([][]byte, len(args.Data))
		for j, pattern := range args.Data {
			data[j] = pattern
		}
		targets[i] = args.Target
		selectors[i] = sel
		startIndexes[i] = args.StartIndex
		endIndexes[i] = args.EndIndex
		datas[i] = data
		selfChecks[i] = args.SelfAddress
	}
	if err := a.registry.AddChecks(targets, selectors, startIndexes, endIndexes, datas, selfChecks); err != nil {
		return err
	}
	log.Info("Added calldata checks", "count", n)
	return nil
}

func (a *TimelockGuardAdminAPI) RemoveCheck(ctx context.Context, target common.Address, selector hexutil.Bytes, index int) error {
	sel, err := parseSelector(selector)
	if err != nil {
		return err
	}
	if err := a.registry.RemoveCheck(target, sel, index); err != nil {
		return err
	}
	log.Info("Removed calldata check", "target", target, "selector", selector, "index", index)
	return nil
}

func (a *TimelockGuardAdminAPI) Permit(ctx context.Context, target common.Address, selector hexutil.Bytes, unconditional bool) error {
	sel, err := parseSelector(selector)
	if err != nil {
		return err
	}
	a.policy.Permit(target, sel, unconditional)
	log.Info("Permitted selector", "target", target, "selector", selector, "unconditional", unconditional)
	return nil
}

func (a *TimelockGuardAdminAPI) Revoke(ctx context.Context, target common.Address, selector hexutil.Bytes) error {
	sel, err := parseSelector(selector)
	if err != nil {
		return err
	}
	a.policy.Revoke(target, sel)
	log.Info("Revoked selector", "target", target, "selector", selector)
	return nil
}

var DefaultStackConfig = node.Config{
	DataDir:             "", // ephemeral
	HTTPPort:            node.DefaultHTTPPort,
	AuthAddr:            node.DefaultAuthHost,
	AuthPort:            node.DefaultAuthPort,
	AuthVirtualHosts:    node.DefaultAuthVhosts,
	HTTPModules:         []string{namespace},
	HTTPHost:            node.DefaultHTTPHost,
	HTTPVirtualHosts:    []string{"localhost"},
	HTTPTimeouts:        rpc.DefaultHTTPTimeouts,
	WSHost:              node.DefaultWSHost,
	WSPort:              node.DefaultWSPort,
	WSModules:           []string{namespace},
	GraphQLVirtualHosts: []string{"localhost"},
	P2P: p2p.Config{
		ListenAddr:  "",
		NoDiscovery: true,
		NoDial:      true,
	},
}

// NewStack builds the RPC stack serving the guard. The read namespace is
// public; the admin namespace is not and is only reachable on endpoints the
// deployment explicitly exposes it on.
func NewStack(
	stackConfig *node.Config,
	registry *calldatacheck.Registry,
	validator *calldatacheck.Validator,
	policy *whitelist.SelectorPolicy,
	gate *whitelist.Gate,
) (*node.Node, error) {
	stack, err := node.New(stackConfig)
	if err != nil {
		return nil, err
	}

	apis := []rpc.API{{
		Namespace: namespace,
		Version:   "1.0",
		Service: &TimelockGuardAPI{
			registry:  registry,
			validator: validator,
			policy:    policy,
			gate:      gate,
		},
		Public: true,
	}, {
		Namespace: adminNamespace,
		Version:   "1.0",
		Service: &TimelockGuardAdminAPI{
			registry: registry,
			policy:   policy,
		},
		Public: false,
	}}
	stack.RegisterAPIs(apis)

	return stack, nil
}
