// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package calldatacheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/common"

	"github.com/offchainlabs/timelock-guard/util/testhelpers"
)

var (
	testOwner    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testOperator = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	testTarget   = common.HexToAddress("0x000000000000000000000000000000000000beef")
	testSelector = Selector{0x12, 0x34, 0x56, 0x78}
)

func newTestRegistry() *Registry {
	return NewRegistry(testOwner, testOperator)
}

func TestAddCheckRoundTrip(t *testing.T) {
	reg := newTestRegistry()

	data := [][]byte{{0x01, 0x02}, {0x03}}
	self := []bool{false, true}
	require.NoError(t, reg.AddCheck(testTarget, testSelector, 4, 6, data, self))

	checks := reg.GetChecks(testTarget, testSelector)
	require.Len(t, checks, 1)
	assert.Equal(t, uint16(4), checks[0].StartIndex)
	assert.Equal(t, uint16(6), checks[0].EndIndex)
	assert.Equal(t, data, checks[0].Data)
	assert.Equal(t, self, checks[0].IsSelfAddressCheck)
}

func TestAddCheckDoesNotAliasCallerSlices(t *testing.T) {
	reg := newTestRegistry()

	pattern := []byte{0x01, 0x02}
	data := [][]byte{pattern}
	require.NoError(t, reg.AddCheck(testTarget, testSelector, 4, 6, data, []bool{false}))

	// Mutating the caller's pattern after the add must not change stored
	// state, and mutating the returned copy must not either.
	pattern[0] = 0xff
	got := reg.GetChecks(testTarget, testSelector)
	require.Len(t, got, 1)
	assert.Equal(t, []byte{0x01, 0x02}, got[0].Data[0])

	got[0].Data[0][1] = 0xff
	again := reg.GetChecks(testTarget, testSelector)
	assert.Equal(t, []byte{0x01, 0x02}, again[0].Data[0])
}

func TestAddCheckConstraints(t *testing.T) {
	reg := newTestRegistry()

	// Scenario E: forbidden targets, regardless of other parameters.
	err := reg.AddCheck(testOwner, testSelector, 4, 6, [][]byte{{0x01}}, []bool{false})
	require.EqualError(t, err, "target address cannot equal the registry's own address")
	err = reg.AddCheck(testOperator, testSelector, 4, 6, [][]byte{{0x01}}, []bool{false})
	require.EqualError(t, err, "target address cannot equal the trusted-operator address")

	err = reg.AddCheck(testTarget, testSelector, 4, 6, [][]byte{{0x01}}, []bool{false, true})
	require.ErrorIs(t, err, ErrDataArityMismatch)

	// Scenario B: start index inside the selector.
	err = reg.AddCheck(testTarget, testSelector, 3, 4, [][]byte{{0x01}}, []bool{false})
	require.EqualError(t, err, "start index must be greater than 3")

	err = reg.AddCheck(testTarget, testSelector, 5, 5, [][]byte{{0x01}}, []bool{false})
	require.EqualError(t, err, "end index equals start index only when it equals 4")

	err = reg.AddCheck(testTarget, testSelector, 6, 5, [][]byte{{0x01}}, []bool{false})
	require.EqualError(t, err, "end index must be greater than start index")

	// None of the rejected adds may have touched state.
	assert.Empty(t, reg.GetChecks(testTarget, testSelector))
	assert.Empty(t, reg.GetChecks(testOwner, testSelector))
	assert.Empty(t, reg.GetChecks(testOperator, testSelector))
}

func TestZeroWidthCheckMustBeWildcard(t *testing.T) {
	reg := newTestRegistry()
	validator := NewValidator(reg)

	// A zero-width range compares no payload bytes, so any candidate that
	// resolves to the empty slice would accept everything. Only the wildcard
	// shape may occupy the [4, 4) range.
	err := reg.AddCheck(testTarget, testSelector, 4, 4, [][]byte{{0x01}}, []bool{false})
	require.EqualError(t, err, "zero-width check must be the single empty wildcard pattern")

	// A self-address candidate is especially dangerous here: at width zero it
	// resolves to the empty slice even though the stored pattern is non-empty.
	err = reg.AddCheck(testTarget, testSelector, 4, 4, [][]byte{{0x01}}, []bool{true})
	require.ErrorIs(t, err, ErrZeroWidthCheck)

	err = reg.AddCheck(testTarget, testSelector, 4, 4, [][]byte{{}, {}}, []bool{false, false})
	require.ErrorIs(t, err, ErrZeroWidthCheck)

	// The same shapes must not sneak in beside a real check.
	require.NoError(t, reg.AddCheck(testTarget, testSelector, 4, 8, [][]byte{{0xaa, 0xbb, 0xcc, 0xdd}}, []bool{false}))
	err = reg.AddCheck(testTarget, testSelector, 4, 4, [][]byte{{0x01}}, []bool{true})
	require.ErrorIs(t, err, ErrZeroWidthCheck)

	// The pair still enforces its real constraint.
	assert.False(t, validator.IsValid(testTarget, payloadWith(testSelector, 0x12, 0x34, 0x56, 0x78)))
	assert.True(t, validator.IsValid(testTarget, payloadWith(testSelector, 0xaa, 0xbb, 0xcc, 0xdd)))
}

func TestWildcardExclusivity(t *testing.T) {
	reg := newTestRegistry()

	// Scenario C: wildcard first, then a non-wildcard for the same pair.
	require.NoError(t, reg.AddCheck(testTarget, testSelector, 4, 4, [][]byte{{}}, []bool{false}))
	err := reg.AddCheck(testTarget, testSelector, 4, 5, [][]byte{{0x12}}, []bool{false})
	require.EqualError(t, err, "cannot add a non-wildcard check once a wildcard exists for the pair")

	// A second wildcard is also a check on a non-empty pair.
	err = reg.AddCheck(testTarget, testSelector, 4, 4, [][]byte{{}}, []bool{false})
	require.EqualError(t, err, "wildcard can only be added if no existing check for the pair")

	// The reverse order: non-wildcard first, wildcard second.
	other := Selector{0xde, 0xad, 0xbe, 0xef}
	require.NoError(t, reg.AddCheck(testTarget, other, 4, 5, [][]byte{{0x12}}, []bool{false}))
	err = reg.AddCheck(testTarget, other, 4, 4, [][]byte{{}}, []bool{false})
	require.EqualError(t, err, "wildcard can only be added if no existing check for the pair")

	// A different pair is unaffected by the wildcard.
	require.NoError(t, reg.AddCheck(testhelpers.RandomAddress(), testSelector, 4, 5, [][]byte{{0x12}}, []bool{false}))
}

func TestWildcardRemovalReopensPair(t *testing.T) {
	reg := newTestRegistry()

	require.NoError(t, reg.AddCheck(testTarget, testSelector, 4, 4, [][]byte{{}}, []bool{false}))
	require.NoError(t, reg.RemoveCheck(testTarget, testSelector, 0))
	require.NoError(t, reg.AddCheck(testTarget, testSelector, 4, 5, [][]byte{{0x12}}, []bool{false}))
}

func TestRemoveCheckSwapAndPop(t *testing.T) {
	reg := newTestRegistry()

	// Scenario A.
	require.NoError(t, reg.AddCheck(testTarget, testSelector, 12, 32, [][]byte{{}}, []bool{true}))
	require.NoError(t, reg.AddCheck(testTarget, testSelector, 16, 36, [][]byte{{}}, []bool{true}))
	require.Len(t, reg.GetChecks(testTarget, testSelector), 2)

	require.NoError(t, reg.RemoveCheck(testTarget, testSelector, 0))
	remaining := reg.GetChecks(testTarget, testSelector)
	require.Len(t, remaining, 1)
	assert.Equal(t, uint16(16), remaining[0].StartIndex)
	assert.Equal(t, uint16(36), remaining[0].EndIndex)

	require.NoError(t, reg.RemoveCheck(testTarget, testSelector, 0))
	assert.Empty(t, reg.GetChecks(testTarget, testSelector))
}

func TestRemoveCheckErrors(t *testing.T) {
	reg := newTestRegistry()

	require.ErrorIs(t, reg.RemoveCheck(testTarget, testSelector, 0), ErrNoChecksForPair)

	require.NoError(t, reg.AddCheck(testTarget, testSelector, 4, 5, [][]byte{{0x12}}, []bool{false}))
	require.ErrorIs(t, reg.RemoveCheck(testTarget, testSelector, 1), ErrIndexOutOfBounds)
	require.ErrorIs(t, reg.RemoveCheck(testTarget, testSelector, -1), ErrIndexOutOfBounds)
	require.Len(t, reg.GetChecks(testTarget, testSelector), 1)
}

func TestAddChecksBatch(t *testing.T) {
	reg := newTestRegistry()
	other := common.HexToAddress("0x000000000000000000000000000000000000cafe")

	targets := []common.Address{testTarget, testTarget, other}
	selectors := []Selector{testSelector, testSelector, testSelector}
	starts := []uint16{4, 8, 4}
	ends := []uint16{8, 12, 24}
	datas := [][][]byte{{{0x01}}, {{0x02}}, {{0x03}}}
	selfs := [][]bool{{false}, {false}, {true}}

	require.NoError(t, reg.AddChecks(targets, selectors, starts, ends, datas, selfs))
	assert.Len(t, reg.GetChecks(testTarget, testSelector), 2)
	assert.Len(t, reg.GetChecks(other, testSelector), 1)
}

func TestAddChecksArityMismatch(t *testing.T) {
	reg := newTestRegistry()

	// Scenario D: the data outer array is shorter than the others.
	err := reg.AddChecks(
		[]common.Address{testTarget, testTarget},
		[]Selector{testSelector, testSelector},
		[]uint16{4, 4},
		[]uint16{8, 8},
		[][][]byte{{{0x01}}},
		[][]bool{{false}, {false}},
	)
	require.EqualError(t, err, "array length mismatch on batched add")
	assert.Empty(t, reg.GetChecks(testTarget, testSelector))
}

func TestAddChecksNoPartialApplication(t *testing.T) {
	reg := newTestRegistry()

	// The second element violates the start-index rule; the first must not
	// survive the failed batch.
	err := reg.AddChecks(
		[]common.Address{testTarget, testTarget},
		[]Selector{testSelector, testSelector},
		[]uint16{4, 3},
		[]uint16{8, 4},
		[][][]byte{{{0x01}}, {{0x02}}},
		[][]bool{{false}, {false}},
	)
	require.ErrorIs(t, err, ErrStartIndexTooSmall)
	assert.Empty(t, reg.GetChecks(testTarget, testSelector))
}

func TestAddChecksBatchSeesStagedState(t *testing.T) {
	reg := newTestRegistry()

	// A wildcard followed by a non-wildcard for the same pair must fail even
	// though the pair is empty in the live map throughout the batch.
	err := reg.AddChecks(
		[]common.Address{testTarget, testTarget},
		[]Selector{testSelector, testSelector},
		[]uint16{4, 4},
		[]uint16{4, 8},
		[][][]byte{{{}}, {{0x01}}},
		[][]bool{{false}, {false}},
	)
	require.ErrorIs(t, err, ErrWildcardExists)
	assert.Empty(t, reg.GetChecks(testTarget, testSelector))
}

func TestDrainRandomOrder(t *testing.T) {
	prng := testhelpers.NewPseudoRandomDataSource(t, 0)

	const pairs = 5
	const perPair = 8

	reg := newTestRegistry()
	targets := make([]common.Address, pairs)
	selectors := make([]Selector, pairs)
	for i := 0; i < pairs; i++ {
		targets[i] = prng.GetAddress()
		copy(selectors[i][:], prng.GetData(SelectorLen))
		for j := 0; j < perPair; j++ {
			start := uint16(4 + prng.GetUint64()%64)
			width := uint16(1 + prng.GetUint64()%32)
			data := [][]byte{prng.GetData(int(width))}
			self := []bool{prng.GetBool()}
			testhelpers.RequireImpl(t, reg.AddCheck(targets[i], selectors[i], start, start+width, data, self))
		}
		require.Len(t, reg.GetChecks(targets[i], selectors[i]), perPair)
	}

	// Removing by a pseudo-random valid index each time must always drain
	// the list, whatever order swap-and-pop shuffles it into.
	for i := 0; i < pairs; i++ {
		for remaining := perPair; remaining > 0; remaining-- {
			index := int(prng.GetUint64() % uint64(remaining))
			testhelpers.RequireImpl(t, reg.RemoveCheck(targets[i], selectors[i], index))
		}
		assert.Empty(t, reg.GetChecks(targets[i], selectors[i]))
	}
}
