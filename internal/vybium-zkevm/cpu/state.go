// Package cpu implements the kernel interpreter. Every step appends one row
// to the CPU trace and records the memory operations and sponge requests it
// issued, so the other tables can be generated from them.
package cpu

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/kernel"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/poseidon"
)

const (
	// MaxStackLen is the maximum number of stack items
	MaxStackLen = 1024

	// MaxSpongeLen is the largest number of cells one sponge request hashes
	MaxSpongeLen = 1 << 20
)

// Registers is the register file of the interpreter
type Registers struct {
	ProgramCounter int
	Stack          []uint256.Int
}

// Traces accumulates the rows and operations of one segment
type Traces struct {
	Rows      [][]field.Element
	MemoryOps []memory.Op
	SpongeOps []poseidon.SpongeOp
}

// Clock returns the number of steps taken so far
func (t *Traces) Clock() int {
	return len(t.Rows)
}

// State is the mutable interpreter state of one segment. It is owned by a
// single goroutine.
type State struct {
	Kernel       *kernel.Kernel
	Registers    Registers
	Memory       *memory.State
	Traces       Traces
	ContractCode map[common.Hash][]byte
}

// NewState creates a state positioned at the start of the kernel, with the
// given initial memory
func NewState(k *kernel.Kernel, mem *memory.State, code map[common.Hash][]byte) *State {
	if mem == nil {
		mem = memory.NewState()
	}
	return &State{
		Kernel:       k,
		Memory:       mem,
		ContractCode: code,
	}
}

// Step collects the columns and operations of one CPU row. Operations go to
// the traces immediately; the row is appended by Commit.
type Step struct {
	state   *State
	clock   int
	view    ColumnsView
	channel int
}

// BeginStep starts a row at the current clock
func (s *State) BeginStep() *Step {
	clock := s.Traces.Clock()
	st := &Step{state: s, clock: clock}
	st.view.Clock = field.New(uint64(clock))
	st.view.ProgramCounter = field.New(uint64(s.Registers.ProgramCounter))
	st.view.StackLen = field.New(uint64(len(s.Registers.Stack)))
	return st
}

// SetOpcode records the executed opcode
func (st *Step) SetOpcode(op kernel.Opcode) {
	st.view.Opcode = field.New(uint64(op))
}

// MarkBootstrap flags the row as written by bootstrap
func (st *Step) MarkBootstrap() {
	st.view.IsBootstrap = field.One
}

// FreeChannels returns the number of unused general-purpose channels
func (st *Step) FreeChannels() int {
	return memory.NumGPChannels - st.channel
}

// Read reads addr through the next free channel
func (st *Step) Read(addr memory.Address) uint256.Int {
	value := st.state.Memory.Get(addr)
	st.use(addr, true, value)
	return value
}

// Write writes value to addr through the next free channel
func (st *Step) Write(addr memory.Address, value *uint256.Int) {
	st.state.Memory.Set(addr, value)
	st.use(addr, false, *value)
}

func (st *Step) use(addr memory.Address, isRead bool, value uint256.Int) {
	if st.channel >= memory.NumGPChannels {
		panic(fmt.Sprintf("clock %d: more than %d memory operations in one row", st.clock, memory.NumGPChannels))
	}
	ch := st.channel
	st.channel++

	c := &st.view.Channels[ch]
	c.Used = field.One
	if isRead {
		c.IsRead = field.One
	}
	c.AddrContext = field.New(addr.Context)
	c.AddrSegment = field.New(uint64(addr.Segment))
	c.AddrVirtual = field.New(addr.Virt)
	c.Value = memory.Limbs(&value)

	st.state.Traces.MemoryOps = append(st.state.Traces.MemoryOps, memory.Op{
		Address:   addr,
		Timestamp: memory.Timestamp(st.clock, ch),
		IsRead:    isRead,
		Value:     value,
	})
}

// Sponge hashes length consecutive memory cells starting at base. The cells
// are read on the sponge channel and must each fit 32 bits. A row issues at
// most one request. length is at most MaxSpongeLen and the cells must not
// run past the end of the address space.
func (st *Step) Sponge(base memory.Address, length uint64) (poseidon.Digest, error) {
	if st.view.IsPoseidon == field.One {
		panic(fmt.Sprintf("clock %d: more than one sponge request in one row", st.clock))
	}
	if length > MaxSpongeLen {
		return poseidon.Digest{}, fmt.Errorf("sponge length %d exceeds %d: %w", length, MaxSpongeLen, ErrBadAddress)
	}
	if base.Virt+length < base.Virt {
		return poseidon.Digest{}, fmt.Errorf("sponge of %d cells at %s overflows: %w", length, base, ErrBadAddress)
	}

	timestamp := memory.Timestamp(st.clock, memory.SpongeChannel)
	input := make([]field.Element, length)
	reads := make([]memory.Op, length)
	for i := uint64(0); i < length; i++ {
		addr := base.Offset(i)
		value := st.state.Memory.Get(addr)
		if !value.IsUint64() || value.Uint64() > 0xffffffff {
			return poseidon.Digest{}, fmt.Errorf("sponge input %s = %s: %w", addr, value.Hex(), poseidon.ErrElementTooWide)
		}
		input[i] = field.New(value.Uint64())
		reads[i] = memory.Op{Address: addr, Timestamp: timestamp, IsRead: true, Value: value}
	}
	digest := poseidon.Hash(input)

	st.state.Traces.MemoryOps = append(st.state.Traces.MemoryOps, reads...)
	st.state.Traces.SpongeOps = append(st.state.Traces.SpongeOps, poseidon.SpongeOp{
		Base:      base,
		Timestamp: timestamp,
		Input:     input,
	})

	st.view.IsPoseidon = field.One
	st.view.SpongeArgs = [NumSpongeArgs]field.Element{
		field.New(base.Context),
		field.New(uint64(base.Segment)),
		field.New(base.Virt),
		field.New(length),
	}
	st.view.SpongeDigest = digest
	return digest, nil
}

// Commit appends the row to the CPU trace
func (st *Step) Commit() {
	st.state.Traces.Rows = append(st.state.Traces.Rows, st.view.Row())
}
