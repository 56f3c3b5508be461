// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package colors

var Red = "\033[31;1m"

var Clear = "\033[0;0m"
