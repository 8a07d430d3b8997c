// Package kernel holds the fixed program run by the interpreter. A Kernel is
// built once and never mutated; its global labels are resolved when it is
// constructed.
package kernel

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/poseidon"
)

// Labels every kernel must define
const (
	LabelMain    = "main"
	LabelHaltPC0 = "halt_pc0"
	LabelHaltPC1 = "halt_pc1"
)

// Kernel is an assembled kernel program
type Kernel struct {
	Code         []byte
	GlobalLabels map[string]int

	MainPC  int
	HaltPC0 int
	HaltPC1 int

	// Sponge digest of Code, checked against memory during bootstrap
	CodeHash poseidon.Digest
}

// NewKernel validates code and labels and resolves the entry and halt
// program counters. The arguments are copied.
func NewKernel(code []byte, labels map[string]int) (*Kernel, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("kernel code is empty")
	}

	k := &Kernel{
		Code:         append([]byte(nil), code...),
		GlobalLabels: make(map[string]int, len(labels)),
	}
	for name, offset := range labels {
		if offset < 0 || offset >= len(code) {
			return nil, fmt.Errorf("label %s at offset %d is outside the %d byte kernel", name, offset, len(code))
		}
		k.GlobalLabels[name] = offset
	}

	var err error
	if k.MainPC, err = k.lookup(LabelMain); err != nil {
		return nil, err
	}
	if k.HaltPC0, err = k.lookup(LabelHaltPC0); err != nil {
		return nil, err
	}
	if k.HaltPC1, err = k.lookup(LabelHaltPC1); err != nil {
		return nil, err
	}

	k.CodeHash = poseidon.Hash(CodeElements(k.Code))
	return k, nil
}

func (k *Kernel) lookup(name string) (int, error) {
	pc, ok := k.GlobalLabels[name]
	if !ok {
		return 0, fmt.Errorf("kernel does not define label %s", name)
	}
	return pc, nil
}

// Label returns the offset of a global label
func (k *Kernel) Label(name string) (int, bool) {
	pc, ok := k.GlobalLabels[name]
	return pc, ok
}

// IsHaltPC reports whether pc is one of the two halt program counters
func (k *Kernel) IsHaltPC(pc int) bool {
	return pc == k.HaltPC0 || pc == k.HaltPC1
}

// CodeElements maps code bytes to field elements, one per byte
func CodeElements(code []byte) []field.Element {
	out := make([]field.Element, len(code))
	for i, b := range code {
		out[i] = field.New(uint64(b))
	}
	return out
}
