package memory

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/columns"
)

// NumColumns is the width of the memory table
const NumColumns = 18

// Layout is the column layout of the memory table
var Layout = columns.NewLayout("Memory", NumColumns,
	columns.Scalar("filter"),
	columns.Scalar("timestamp"),
	columns.Scalar("is_read"),
	columns.Scalar("addr_context"),
	columns.Scalar("addr_segment"),
	columns.Scalar("addr_virtual"),
	columns.Array("value_limbs", ValueLimbs),
	columns.Scalar("context_first_change"),
	columns.Scalar("segment_first_change"),
	columns.Scalar("virtual_first_change"),
	columns.Scalar("mem_after_filter"),
)

// ColumnsView is one row of the memory table
type ColumnsView struct {
	// 1 for rows holding a memory operation, 0 for padding
	Filter    field.Element
	Timestamp field.Element
	IsRead    field.Element

	AddrContext field.Element
	AddrSegment field.Element
	AddrVirtual field.Element

	ValueLimbs [ValueLimbs]field.Element

	// Exactly one of the three is set when the address differs from the
	// previous row, at the most significant differing component.
	ContextFirstChange field.Element
	SegmentFirstChange field.Element
	VirtualFirstChange field.Element

	// 1 on the last operation of each address: its value is the final one
	MemAfterFilter field.Element
}

// ColMap holds the column index of every memory table field
type ColMap struct {
	Filter             int
	Timestamp          int
	IsRead             int
	AddrContext        int
	AddrSegment        int
	AddrVirtual        int
	ValueLimbs         [ValueLimbs]int
	ContextFirstChange int
	SegmentFirstChange int
	VirtualFirstChange int
	MemAfterFilter     int
}

// Cols is the memory table column map
var Cols = newColMap()

func newColMap() ColMap {
	m := ColMap{
		Filter:             Layout.Index("filter"),
		Timestamp:          Layout.Index("timestamp"),
		IsRead:             Layout.Index("is_read"),
		AddrContext:        Layout.Index("addr_context"),
		AddrSegment:        Layout.Index("addr_segment"),
		AddrVirtual:        Layout.Index("addr_virtual"),
		ContextFirstChange: Layout.Index("context_first_change"),
		SegmentFirstChange: Layout.Index("segment_first_change"),
		VirtualFirstChange: Layout.Index("virtual_first_change"),
		MemAfterFilter:     Layout.Index("mem_after_filter"),
	}
	copy(m.ValueLimbs[:], Layout.Range("value_limbs"))
	columns.MustBijection("Memory", NumColumns, m.Indices()...)
	return m
}

// Indices flattens the column map in field order
func (m ColMap) Indices() []int {
	idx := []int{m.Filter, m.Timestamp, m.IsRead, m.AddrContext, m.AddrSegment, m.AddrVirtual}
	idx = append(idx, m.ValueLimbs[:]...)
	return append(idx, m.ContextFirstChange, m.SegmentFirstChange, m.VirtualFirstChange, m.MemAfterFilter)
}

// Row packs the view into a flat row
func (v *ColumnsView) Row() []field.Element {
	row := make([]field.Element, NumColumns)
	row[Cols.Filter] = v.Filter
	row[Cols.Timestamp] = v.Timestamp
	row[Cols.IsRead] = v.IsRead
	row[Cols.AddrContext] = v.AddrContext
	row[Cols.AddrSegment] = v.AddrSegment
	row[Cols.AddrVirtual] = v.AddrVirtual
	columns.Scatter(row, Cols.ValueLimbs[:], v.ValueLimbs[:])
	row[Cols.ContextFirstChange] = v.ContextFirstChange
	row[Cols.SegmentFirstChange] = v.SegmentFirstChange
	row[Cols.VirtualFirstChange] = v.VirtualFirstChange
	row[Cols.MemAfterFilter] = v.MemAfterFilter
	return row
}

// ViewFromRow unpacks a flat row
func ViewFromRow(row []field.Element) ColumnsView {
	Layout.CheckRow(row)
	v := ColumnsView{
		Filter:             row[Cols.Filter],
		Timestamp:          row[Cols.Timestamp],
		IsRead:             row[Cols.IsRead],
		AddrContext:        row[Cols.AddrContext],
		AddrSegment:        row[Cols.AddrSegment],
		AddrVirtual:        row[Cols.AddrVirtual],
		ContextFirstChange: row[Cols.ContextFirstChange],
		SegmentFirstChange: row[Cols.SegmentFirstChange],
		VirtualFirstChange: row[Cols.VirtualFirstChange],
		MemAfterFilter:     row[Cols.MemAfterFilter],
	}
	columns.Gather(v.ValueLimbs[:], row, Cols.ValueLimbs[:])
	return v
}
