package poseidon

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/ctl"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
)

// CtlLookedData returns the columns a hashing request is matched on: the
// base address, the input length, the timestamp and the digest.
func CtlLookedData() []ctl.Column {
	res := ctl.Singles(Cols.Context, Cols.Segment, Cols.Virt, Cols.Len, Cols.Timestamp)
	return append(res, ctl.Singles(Cols.UpdatedDigest[:NumOutputs]...)...)
}

// CtlLookedFilter selects the final block of each request
func CtlLookedFilter() ctl.Filter {
	return ctl.NewFilter(ctl.Sum(Cols.IsFinalInputLen[:]...))
}

// CtlLookingMemory returns the memory read of block element i, in the
// column order of the memory table.
func CtlLookingMemory(i int) []ctl.Column {
	res := []ctl.Column{
		ctl.Constant(field.One),
		ctl.Single(Cols.Context),
		ctl.Single(Cols.Segment),
		ctl.LinearCombination(
			[]int{Cols.Virt, Cols.AlreadyAbsorbedElements},
			[]field.Element{field.One, field.One},
			field.New(uint64(i)),
		),
		ctl.Single(Cols.Block[i]),
	}
	for j := 1; j < memory.ValueLimbs; j++ {
		res = append(res, ctl.Constant(field.Zero))
	}
	return append(res, ctl.Single(Cols.Timestamp))
}

// CtlLookingMemoryFilter selects the rows on which block element i is
// input rather than padding: full blocks, and final blocks whose remaining
// length exceeds i.
func CtlLookingMemoryFilter(i int) ctl.Filter {
	cols := []int{Cols.IsFullInputBlock}
	cols = append(cols, Cols.IsFinalInputLen[i+1:]...)
	return ctl.NewFilter(ctl.Sum(cols...))
}

// GenerateRows returns the rows of one request and its digest
func GenerateRows(op SpongeOp) ([][]field.Element, Digest, error) {
	if err := CheckInput(op.Input); err != nil {
		return nil, Digest{}, fmt.Errorf("sponge at %s: %w", op.Base, err)
	}

	blocks := Blocks(op.Input)
	rows := make([][]field.Element, 0, len(blocks))
	length := uint64(len(op.Input))
	var state [StateSize]field.Element

	for b, block := range blocks {
		absorbed := uint64(b * SpongeRate)
		input := absorb(block, state)
		state = Permute(input)

		view := ColumnsView{
			Context:                 field.New(op.Base.Context),
			Segment:                 field.New(uint64(op.Base.Segment)),
			Virt:                    field.New(op.Base.Virt),
			Timestamp:               field.New(op.Timestamp),
			Len:                     field.New(length),
			AlreadyAbsorbedElements: field.New(absorbed),
			Block:                   block,
			InputState:              input,
			UpdatedDigest:           state,
		}
		if b == len(blocks)-1 {
			view.IsFinalInputLen[length-absorbed] = field.One
		} else {
			view.IsFullInputBlock = field.One
		}
		rows = append(rows, view.Row())
	}
	return rows, digestOf(state), nil
}

// GenerateTrace builds the sponge table from the requests of a segment
func GenerateTrace(ops []SpongeOp, minRows int) (*trace.Table, error) {
	var rows [][]field.Element
	for i, op := range ops {
		opRows, _, err := GenerateRows(op)
		if err != nil {
			return nil, fmt.Errorf("sponge op %d: %w", i, err)
		}
		rows = append(rows, opRows...)
	}
	return trace.Shape(trace.PoseidonSponge, rows, NumColumns, minRows), nil
}
