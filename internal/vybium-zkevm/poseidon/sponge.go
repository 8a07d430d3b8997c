// Package poseidon implements the Poseidon sponge used by the kernel to hash
// memory, and the table that records every permutation it applies.
package poseidon

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
)

const (
	// SpongeRate is the number of elements absorbed per permutation
	SpongeRate = 8
	// SpongeWidth is the capacity of the sponge
	SpongeWidth = 4
	// StateSize is the size of the permutation state
	StateSize = SpongeRate + SpongeWidth
	// NumOutputs is the number of digest elements
	NumOutputs = 4
)

// ErrElementTooWide is returned for sponge inputs that do not fit a 32-bit
// memory limb
var ErrElementTooWide = errors.New("sponge input element wider than 32 bits")

// Digest is the output of the sponge
type Digest [NumOutputs]field.Element

// Permute applies the permutation to a full state. Every output lane is a
// Poseidon hash of the whole state, domain separated by the lane index.
func Permute(state [StateSize]field.Element) [StateSize]field.Element {
	var out [StateSize]field.Element
	input := make([]field.Element, StateSize+1)
	copy(input[1:], state[:])
	for i := range out {
		input[0] = field.New(uint64(i))
		out[i] = hash.PoseidonHash(input)
	}
	return out
}

// Hash runs the sponge over input: full blocks overwrite the rate, the
// final block is padded with pad10*1.
func Hash(input []field.Element) Digest {
	var state [StateSize]field.Element
	for _, block := range Blocks(input) {
		state = Permute(absorb(block, state))
	}
	return digestOf(state)
}

// Blocks splits input into the absorbed blocks: every full block followed
// by exactly one padded final block.
func Blocks(input []field.Element) [][SpongeRate]field.Element {
	var blocks [][SpongeRate]field.Element
	rest := input
	for len(rest) >= SpongeRate {
		var b [SpongeRate]field.Element
		copy(b[:], rest[:SpongeRate])
		blocks = append(blocks, b)
		rest = rest[SpongeRate:]
	}
	return append(blocks, finalBlock(rest))
}

func finalBlock(rest []field.Element) [SpongeRate]field.Element {
	var b [SpongeRate]field.Element
	copy(b[:], rest)
	b[len(rest)] = field.One
	b[SpongeRate-1] = b[SpongeRate-1].Add(field.One)
	return b
}

// absorb overwrites the rate of the state with block, keeping the capacity
func absorb(block [SpongeRate]field.Element, state [StateSize]field.Element) [StateSize]field.Element {
	var next [StateSize]field.Element
	copy(next[:SpongeRate], block[:])
	copy(next[SpongeRate:], state[SpongeRate:])
	return next
}

// Uint256 packs the digest into a word, element i in 64-bit limb i
func (d Digest) Uint256() *uint256.Int {
	return &uint256.Int{d[0].Value(), d[1].Value(), d[2].Value(), d[3].Value()}
}

func digestOf(state [StateSize]field.Element) Digest {
	var d Digest
	copy(d[:], state[:NumOutputs])
	return d
}

// SpongeOp is one hashing request: Input was read from consecutive
// addresses starting at Base, all at Timestamp.
type SpongeOp struct {
	Base      memory.Address
	Timestamp uint64
	Input     []field.Element
}

// CheckInput verifies that every element fits a 32-bit limb
func CheckInput(input []field.Element) error {
	for i, e := range input {
		if e.Value() > 0xffffffff {
			return fmt.Errorf("element %d = %d: %w", i, e.Value(), ErrElementTooWide)
		}
	}
	return nil
}
