package cpu

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/kernel"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
)

var (
	// ErrInvalidOpcode is returned for bytes that are not kernel instructions
	ErrInvalidOpcode = errors.New("invalid opcode")
	// ErrStackUnderflow is returned when an instruction needs more operands
	// than the stack holds
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrStackOverflow is returned when the stack would exceed MaxStackLen
	ErrStackOverflow = errors.New("stack overflow")
	// ErrBadJumpDestination is returned for jumps outside the kernel code
	ErrBadJumpDestination = errors.New("bad jump destination")
	// ErrPCOutOfRange is returned when execution runs past the kernel code
	ErrPCOutOfRange = errors.New("program counter outside kernel code")
	// ErrBadAddress is returned for memory operands that are not addresses
	ErrBadAddress = errors.New("bad memory address")
	// ErrMissingContractCode is returned when a code hash has no preimage
	// in the inputs
	ErrMissingContractCode = errors.New("missing contract code")
)

// Transition executes the instruction at the program counter and appends
// its row. On error the state must be discarded.
func Transition(s *State) error {
	pc := s.Registers.ProgramCounter
	code := s.Kernel.Code
	if pc < 0 || pc >= len(code) {
		return fmt.Errorf("pc %d: %w", pc, ErrPCOutOfRange)
	}
	op := kernel.Opcode(code[pc])

	st := s.BeginStep()
	st.SetOpcode(op)
	if err := execute(s, st, op); err != nil {
		return fmt.Errorf("clock %d, pc %d, %s: %w", st.clock, pc, op, err)
	}
	st.Commit()
	return nil
}

func execute(s *State, st *Step, op kernel.Opcode) error {
	regs := &s.Registers
	next := regs.ProgramCounter + 1

	switch {
	case op.IsPush():
		n := op.PushBytes()
		end := regs.ProgramCounter + 1 + n
		if end > len(s.Kernel.Code) {
			return fmt.Errorf("push immediate runs past the end of the code: %w", ErrPCOutOfRange)
		}
		var v uint256.Int
		v.SetBytes(s.Kernel.Code[regs.ProgramCounter+1 : end])
		if err := s.push(&v); err != nil {
			return err
		}
		next = end

	case op.IsDup():
		n := int(op-kernel.DUP1) + 1
		if len(regs.Stack) < n {
			return ErrStackUnderflow
		}
		v := regs.Stack[len(regs.Stack)-n]
		if err := s.push(&v); err != nil {
			return err
		}

	case op.IsSwap():
		n := int(op-kernel.SWAP1) + 1
		if len(regs.Stack) < n+1 {
			return ErrStackUnderflow
		}
		top := len(regs.Stack) - 1
		regs.Stack[top], regs.Stack[top-n] = regs.Stack[top-n], regs.Stack[top]

	default:
		var err error
		next, err = executeFixed(s, st, op, next)
		if err != nil {
			return err
		}
	}

	regs.ProgramCounter = next
	return nil
}

func executeFixed(s *State, st *Step, op kernel.Opcode, next int) (int, error) {
	switch op {
	case kernel.ADD, kernel.MUL, kernel.SUB, kernel.LT, kernel.EQ:
		args, err := s.pop(2)
		if err != nil {
			return 0, err
		}
		a, b := &args[0], &args[1]
		var r uint256.Int
		switch op {
		case kernel.ADD:
			r.Add(a, b)
		case kernel.MUL:
			r.Mul(a, b)
		case kernel.SUB:
			r.Sub(a, b)
		case kernel.LT:
			r.SetUint64(boolWord(a.Lt(b)))
		case kernel.EQ:
			r.SetUint64(boolWord(a.Eq(b)))
		}
		return next, s.push(&r)

	case kernel.ISZERO:
		args, err := s.pop(1)
		if err != nil {
			return 0, err
		}
		r := uint256.NewInt(boolWord(args[0].IsZero()))
		return next, s.push(r)

	case kernel.POP:
		_, err := s.pop(1)
		return next, err

	case kernel.JUMPDEST:
		return next, nil

	case kernel.JUMP:
		args, err := s.pop(1)
		if err != nil {
			return 0, err
		}
		return s.jumpTarget(&args[0])

	case kernel.JUMPI:
		args, err := s.pop(2)
		if err != nil {
			return 0, err
		}
		if args[1].IsZero() {
			return next, nil
		}
		return s.jumpTarget(&args[0])

	case kernel.MLOAD_GENERAL:
		args, err := s.pop(3)
		if err != nil {
			return 0, err
		}
		addr, err := toAddress(args)
		if err != nil {
			return 0, err
		}
		v := st.Read(addr)
		return next, s.push(&v)

	case kernel.MSTORE_GENERAL:
		args, err := s.pop(4)
		if err != nil {
			return 0, err
		}
		addr, err := toAddress(args[:3])
		if err != nil {
			return 0, err
		}
		st.Write(addr, &args[3])
		return next, nil

	case kernel.POSEIDON_GENERAL:
		args, err := s.pop(4)
		if err != nil {
			return 0, err
		}
		base, err := toAddress(args[:3])
		if err != nil {
			return 0, err
		}
		if !args[3].IsUint64() || args[3].Uint64() > MaxSpongeLen {
			return 0, fmt.Errorf("sponge length %s: %w", args[3].Hex(), ErrBadAddress)
		}
		digest, err := st.Sponge(base, args[3].Uint64())
		if err != nil {
			return 0, err
		}
		return next, s.push(digest.Uint256())

	case kernel.CODELEN:
		args, err := s.pop(1)
		if err != nil {
			return 0, err
		}
		h := common.Hash(args[0].Bytes32())
		code, ok := s.ContractCode[h]
		if !ok {
			return 0, fmt.Errorf("code hash %s: %w", h, ErrMissingContractCode)
		}
		return next, s.push(uint256.NewInt(uint64(len(code))))
	}

	return 0, fmt.Errorf("opcode 0x%02x: %w", byte(op), ErrInvalidOpcode)
}

// pop removes n items and returns them top first
func (s *State) pop(n int) ([]uint256.Int, error) {
	stack := s.Registers.Stack
	if len(stack) < n {
		return nil, ErrStackUnderflow
	}
	out := make([]uint256.Int, n)
	for i := 0; i < n; i++ {
		out[i] = stack[len(stack)-1-i]
	}
	s.Registers.Stack = stack[:len(stack)-n]
	return out, nil
}

func (s *State) push(v *uint256.Int) error {
	if len(s.Registers.Stack) >= MaxStackLen {
		return ErrStackOverflow
	}
	s.Registers.Stack = append(s.Registers.Stack, *v)
	return nil
}

func (s *State) jumpTarget(dest *uint256.Int) (int, error) {
	if !dest.IsUint64() || dest.Uint64() >= uint64(len(s.Kernel.Code)) {
		return 0, fmt.Errorf("destination %s: %w", dest.Hex(), ErrBadJumpDestination)
	}
	return int(dest.Uint64()), nil
}

// toAddress decodes context, segment and virt, in that order
func toAddress(args []uint256.Int) (memory.Address, error) {
	ctx, seg, virt := &args[0], &args[1], &args[2]
	if !ctx.IsUint64() || !virt.IsUint64() || !seg.IsUint64() {
		return memory.Address{}, fmt.Errorf("(%s, %s, %s): %w", ctx.Hex(), seg.Hex(), virt.Hex(), ErrBadAddress)
	}
	segment := memory.Segment(seg.Uint64())
	if seg.Uint64() >= uint64(memory.NumSegments) || !segment.Valid() {
		return memory.Address{}, fmt.Errorf("segment %d: %w", seg.Uint64(), ErrBadAddress)
	}
	return memory.NewAddress(ctx.Uint64(), segment, virt.Uint64()), nil
}

func boolWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
