package memory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/holiman/uint256"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

const (
	// ValueLimbs is the number of 32-bit limbs of a memory value
	ValueLimbs = 8

	// NumGPChannels is the number of general-purpose CPU memory channels
	NumGPChannels = 3

	// SpongeChannel is the channel index used for sponge block reads
	SpongeChannel = NumGPChannels

	// NumChannels is the number of memory channels per CPU cycle
	NumChannels = NumGPChannels + 1
)

// ErrLimbTooWide is returned for a value limb that does not fit 32 bits
var ErrLimbTooWide = errors.New("value limb wider than 32 bits")

// Address identifies one memory cell. Addresses are compared structurally
// and ordered by (context, segment, virt).
type Address struct {
	Context uint64
	Segment Segment
	Virt    uint64
}

// NewAddress creates a new memory address
func NewAddress(context uint64, segment Segment, virt uint64) Address {
	return Address{Context: context, Segment: segment, Virt: virt}
}

// Less orders addresses by context, then segment, then virtual offset
func (a Address) Less(b Address) bool {
	if a.Context != b.Context {
		return a.Context < b.Context
	}
	if a.Segment != b.Segment {
		return a.Segment < b.Segment
	}
	return a.Virt < b.Virt
}

// Offset returns the address shifted by n cells within the same segment
func (a Address) Offset(n uint64) Address {
	return NewAddress(a.Context, a.Segment, a.Virt+n)
}

// String returns a human readable address
func (a Address) String() string {
	return fmt.Sprintf("(%d, %s, %d)", a.Context, a.Segment, a.Virt)
}

// Limbs splits a 256-bit value into little-endian 32-bit limbs
func Limbs(v *uint256.Int) [ValueLimbs]field.Element {
	var limbs [ValueLimbs]field.Element
	for j := 0; j < ValueLimbs; j++ {
		limbs[j] = field.New(uint64(uint32(v[j/2] >> (32 * (j % 2)))))
	}
	return limbs
}

// FromLimbs reassembles a 256-bit value from little-endian 32-bit limbs
func FromLimbs(limbs [ValueLimbs]field.Element) (*uint256.Int, error) {
	var v uint256.Int
	for j := 0; j < ValueLimbs; j++ {
		limb := limbs[j].Value()
		if limb > 0xffffffff {
			return nil, fmt.Errorf("limb %d = %#x: %w", j, limb, ErrLimbTooWide)
		}
		v[j/2] |= limb << (32 * (j % 2))
	}
	return &v, nil
}

// Timestamp returns the memory timestamp of a channel within a CPU cycle.
// Timestamp 0 is reserved for the values a segment starts with.
func Timestamp(clock int, channel int) uint64 {
	return uint64(clock)*NumChannels + uint64(channel) + 1
}

// Entry is one (address, value) pair of a memory snapshot
type Entry struct {
	Address Address
	Value   uint256.Int
}

// Op is a single memory operation performed during execution
type Op struct {
	Address   Address
	Timestamp uint64
	IsRead    bool
	Value     uint256.Int
}

// State is the sparse memory image of one execution
type State struct {
	cells map[Address]uint256.Int
}

// NewState creates an empty memory image
func NewState() *State {
	return &State{cells: make(map[Address]uint256.Int)}
}

// NewStateFromEntries creates a memory image holding the given entries
func NewStateFromEntries(entries []Entry) *State {
	s := NewState()
	for _, e := range entries {
		s.cells[e.Address] = e.Value
	}
	return s
}

// Get returns the value at addr; unset cells read as zero
func (s *State) Get(addr Address) uint256.Int {
	return s.cells[addr]
}

// Set stores value at addr
func (s *State) Set(addr Address, value *uint256.Int) {
	s.cells[addr] = *value
}

// Contains reports whether addr has ever been written
func (s *State) Contains(addr Address) bool {
	_, ok := s.cells[addr]
	return ok
}

// Len returns the number of initialised cells
func (s *State) Len() int {
	return len(s.cells)
}

// Snapshot returns every initialised cell sorted by address
func (s *State) Snapshot() []Entry {
	entries := make([]Entry, 0, len(s.cells))
	for addr, value := range s.cells {
		entries = append(entries, Entry{Address: addr, Value: value})
	}
	SortEntries(entries)
	return entries
}

// SortEntries sorts entries by address
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Address.Less(entries[j].Address)
	})
}
