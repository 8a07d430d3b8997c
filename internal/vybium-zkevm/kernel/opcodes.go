package kernel

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
)

// Opcode is a kernel instruction byte. Opcodes shared with the EVM keep
// their EVM encoding.
type Opcode byte

const (
	ADD      = Opcode(vm.ADD)
	MUL      = Opcode(vm.MUL)
	SUB      = Opcode(vm.SUB)
	LT       = Opcode(vm.LT)
	EQ       = Opcode(vm.EQ)
	ISZERO   = Opcode(vm.ISZERO)
	POP      = Opcode(vm.POP)
	JUMP     = Opcode(vm.JUMP)
	JUMPI    = Opcode(vm.JUMPI)
	JUMPDEST = Opcode(vm.JUMPDEST)
	PUSH1    = Opcode(vm.PUSH1)
	PUSH4    = Opcode(vm.PUSH4)
	PUSH32   = Opcode(vm.PUSH32)
	DUP1     = Opcode(vm.DUP1)
	DUP16    = Opcode(vm.DUP16)
	SWAP1    = Opcode(vm.SWAP1)
	SWAP16   = Opcode(vm.SWAP16)

	// Kernel-only instructions
	POSEIDON_GENERAL Opcode = 0x23
	CODELEN          Opcode = 0x24
	MLOAD_GENERAL    Opcode = 0xfb
	MSTORE_GENERAL   Opcode = 0xfc
)

// IsPush reports whether op is PUSH1..PUSH32
func (op Opcode) IsPush() bool {
	return op >= PUSH1 && op <= PUSH32
}

// PushBytes returns the immediate size of a push, 0 for other opcodes
func (op Opcode) PushBytes() int {
	if !op.IsPush() {
		return 0
	}
	return int(op-PUSH1) + 1
}

// IsDup reports whether op is DUP1..DUP16
func (op Opcode) IsDup() bool {
	return op >= DUP1 && op <= DUP16
}

// IsSwap reports whether op is SWAP1..SWAP16
func (op Opcode) IsSwap() bool {
	return op >= SWAP1 && op <= SWAP16
}

// Valid reports whether the kernel interpreter implements op
func (op Opcode) Valid() bool {
	switch op {
	case ADD, MUL, SUB, LT, EQ, ISZERO, POP, JUMP, JUMPI, JUMPDEST,
		POSEIDON_GENERAL, CODELEN, MLOAD_GENERAL, MSTORE_GENERAL:
		return true
	}
	return op.IsPush() || op.IsDup() || op.IsSwap()
}

func (op Opcode) String() string {
	switch op {
	case POSEIDON_GENERAL:
		return "POSEIDON_GENERAL"
	case CODELEN:
		return "CODELEN"
	case MLOAD_GENERAL:
		return "MLOAD_GENERAL"
	case MSTORE_GENERAL:
		return "MSTORE_GENERAL"
	}
	if op.Valid() {
		return vm.OpCode(op).String()
	}
	return fmt.Sprintf("INVALID(0x%02x)", byte(op))
}
