package memory

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/columns"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/ctl"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
)

// CtlData returns the columns of a memory operation as seen by its users:
// is_read, the address, the value limbs and the timestamp.
func CtlData() []ctl.Column {
	res := []ctl.Column{ctl.Single(Cols.IsRead)}
	res = append(res, ctl.Singles(Cols.AddrContext, Cols.AddrSegment, Cols.AddrVirtual)...)
	res = append(res, ctl.Singles(Cols.ValueLimbs[:]...)...)
	return append(res, ctl.Single(Cols.Timestamp))
}

// CtlFilter selects every non-padding row
func CtlFilter() ctl.Filter {
	return ctl.NewSimpleFilter(Cols.Filter)
}

// CtlDataMemAfter returns the address and value limbs of final values
func CtlDataMemAfter() []ctl.Column {
	res := ctl.Singles(Cols.AddrContext, Cols.AddrSegment, Cols.AddrVirtual)
	return append(res, ctl.Singles(Cols.ValueLimbs[:]...)...)
}

// CtlFilterMemAfter selects the last operation of each address
func CtlFilterMemAfter() ctl.Filter {
	return ctl.NewSimpleFilter(Cols.MemAfterFilter)
}

// InitialOps turns a segment's starting memory into writes at timestamp 0
func InitialOps(before []Entry) []Op {
	ops := make([]Op, len(before))
	for i, e := range before {
		ops[i] = Op{Address: e.Address, Timestamp: 0, IsRead: false, Value: e.Value}
	}
	return ops
}

// SortOps orders operations by address, then timestamp. The sort is stable
// so operations sharing a timestamp keep their execution order.
func SortOps(ops []Op) {
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].Address != ops[j].Address {
			return ops[i].Address.Less(ops[j].Address)
		}
		return ops[i].Timestamp < ops[j].Timestamp
	})
}

// GenerateTrace builds the memory table from the operations of a segment
// and the memory it started with. It also returns the final value of every
// touched address, in address order, for the next segment.
func GenerateTrace(ops []Op, before []Entry, minRows int) (*trace.Table, []Entry, error) {
	all := make([]Op, 0, len(before)+len(ops))
	all = append(all, InitialOps(before)...)
	all = append(all, ops...)
	SortOps(all)

	rows := make([][]field.Element, 0, len(all))
	var after []Entry

	for i, op := range all {
		if !op.Address.Segment.Valid() {
			return nil, nil, fmt.Errorf("memory op %d: invalid segment %d", i, op.Address.Segment)
		}

		firstOfAddress := i == 0 || all[i-1].Address != op.Address
		if op.IsRead {
			var expected uint256.Int
			if !firstOfAddress {
				expected = all[i-1].Value
			}
			if !expected.Eq(&op.Value) {
				return nil, nil, fmt.Errorf("memory op %d: read of %s at timestamp %d returned %s, last value is %s",
					i, op.Address, op.Timestamp, op.Value.Hex(), expected.Hex())
			}
		}

		lastOfAddress := i == len(all)-1 || all[i+1].Address != op.Address

		view := ColumnsView{
			Filter:             field.One,
			Timestamp:          field.New(op.Timestamp),
			IsRead:             columns.Bit(op.IsRead),
			AddrContext:        field.New(op.Address.Context),
			AddrSegment:        field.New(uint64(op.Address.Segment)),
			AddrVirtual:        field.New(op.Address.Virt),
			ValueLimbs:         Limbs(&op.Value),
			ContextFirstChange: field.Zero,
			SegmentFirstChange: field.Zero,
			VirtualFirstChange: field.Zero,
			MemAfterFilter:     columns.Bit(lastOfAddress),
		}
		if i > 0 && firstOfAddress {
			prev := all[i-1].Address
			switch {
			case prev.Context != op.Address.Context:
				view.ContextFirstChange = field.One
			case prev.Segment != op.Address.Segment:
				view.SegmentFirstChange = field.One
			default:
				view.VirtualFirstChange = field.One
			}
		}
		rows = append(rows, view.Row())

		if lastOfAddress {
			after = append(after, Entry{Address: op.Address, Value: op.Value})
		}
	}

	return trace.Shape(trace.Memory, rows, NumColumns, minRows), after, nil
}
