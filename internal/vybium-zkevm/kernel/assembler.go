package kernel

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
)

// labelPushBytes is the immediate size of a label push
const labelPushBytes = 4

type fixup struct {
	offset int
	label  string
}

// Assembler builds kernel code. The first error is kept and returned by
// Assemble; later calls are ignored.
type Assembler struct {
	code   []byte
	labels map[string]int
	fixups []fixup
	err    error
}

// NewAssembler creates an empty assembler
func NewAssembler() *Assembler {
	return &Assembler{labels: make(map[string]int)}
}

// Offset returns the offset of the next instruction
func (a *Assembler) Offset() int {
	return len(a.code)
}

// Label defines a global label at the current offset
func (a *Assembler) Label(name string) *Assembler {
	if a.err != nil {
		return a
	}
	if _, ok := a.labels[name]; ok {
		a.err = fmt.Errorf("label %s defined twice", name)
		return a
	}
	a.labels[name] = len(a.code)
	return a
}

// Op appends instructions without immediates
func (a *Assembler) Op(ops ...Opcode) *Assembler {
	for _, op := range ops {
		if a.err != nil {
			return a
		}
		if !op.Valid() || op.IsPush() {
			a.err = fmt.Errorf("offset %d: %s cannot be assembled with Op", len(a.code), op)
			return a
		}
		a.code = append(a.code, byte(op))
	}
	return a
}

// Push appends the shortest push of v
func (a *Assembler) Push(v *uint256.Int) *Assembler {
	if a.err != nil {
		return a
	}
	imm := v.Bytes()
	if len(imm) == 0 {
		imm = []byte{0}
	}
	a.code = append(a.code, byte(PUSH1)+byte(len(imm)-1))
	a.code = append(a.code, imm...)
	return a
}

// PushUint appends the shortest push of v
func (a *Assembler) PushUint(v uint64) *Assembler {
	return a.Push(uint256.NewInt(v))
}

// PushAddress pushes virt, segment and context so that the context ends on
// top of the stack, the operand order of the general memory instructions.
func (a *Assembler) PushAddress(addr memory.Address) *Assembler {
	return a.PushUint(addr.Virt).PushUint(uint64(addr.Segment)).PushUint(addr.Context)
}

// PushLabel appends a PUSH4 of a label offset, resolved by Assemble
func (a *Assembler) PushLabel(name string) *Assembler {
	if a.err != nil {
		return a
	}
	a.code = append(a.code, byte(PUSH4))
	a.fixups = append(a.fixups, fixup{offset: len(a.code), label: name})
	a.code = append(a.code, make([]byte, labelPushBytes)...)
	return a
}

// HaltLoop appends the halt routine. Both of its instructions are halt
// program counters, so the interpreter can stop on any step inside it.
func (a *Assembler) HaltLoop() *Assembler {
	return a.Label(LabelHaltPC0).PushLabel(LabelHaltPC0).Label(LabelHaltPC1).Op(JUMP)
}

// Assemble resolves label pushes and builds the kernel
func (a *Assembler) Assemble() (*Kernel, error) {
	if a.err != nil {
		return nil, a.err
	}
	code := append([]byte(nil), a.code...)
	for _, f := range a.fixups {
		target, ok := a.labels[f.label]
		if !ok {
			return nil, fmt.Errorf("offset %d: undefined label %s", f.offset-1, f.label)
		}
		binary.BigEndian.PutUint32(code[f.offset:f.offset+labelPushBytes], uint32(target))
	}
	return NewKernel(code, a.labels)
}

// Default assembles the standard kernel. It carries the trie roots over to
// the after slots, hashes the transaction data into GlobalMetadata and
// halts. It panics if assembly fails.
func Default() *Kernel {
	a := NewAssembler().Label(LabelMain)

	roots := []struct{ before, after memory.GlobalMetadataField }{
		{memory.StateTrieRootDigestBefore, memory.StateTrieRootDigestAfter},
		{memory.TransactionTrieRootDigestBefore, memory.TransactionTrieRootDigestAfter},
		{memory.ReceiptTrieRootDigestBefore, memory.ReceiptTrieRootDigestAfter},
	}
	for _, r := range roots {
		a.PushAddress(r.before.Address()).Op(MLOAD_GENERAL)
		a.PushAddress(r.after.Address()).Op(MSTORE_GENERAL)
	}

	a.PushAddress(memory.TxnDataLen.Address()).Op(MLOAD_GENERAL)
	a.PushAddress(memory.NewAddress(0, memory.TxnData, 0)).Op(POSEIDON_GENERAL)
	a.PushAddress(memory.TxnDataDigest.Address()).Op(MSTORE_GENERAL)

	k, err := a.HaltLoop().Assemble()
	if err != nil {
		panic(fmt.Sprintf("default kernel: %v", err))
	}
	return k
}
