// Package continuation implements the memory-continuation tables. MemBefore
// holds the memory a segment starts with and MemAfter the memory it ends
// with; both are linked to the memory table through cross-table lookups so
// that segment N's final memory equals segment N+1's initial memory. The
// tables carry no constraints of their own.
package continuation

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/columns"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
)

// NumColumns is the width of a continuation table
const NumColumns = 4 + memory.ValueLimbs

// Layout is the column layout of the continuation tables
var Layout = columns.NewLayout("MemoryContinuation", NumColumns,
	columns.Scalar("filter"),
	columns.Scalar("addr_context"),
	columns.Scalar("addr_segment"),
	columns.Scalar("addr_virtual"),
	columns.Array("value_limbs", memory.ValueLimbs),
)

// ColumnsView is one row of a continuation table
type ColumnsView struct {
	Filter      field.Element
	AddrContext field.Element
	AddrSegment field.Element
	AddrVirtual field.Element
	ValueLimbs  [memory.ValueLimbs]field.Element
}

// ColMap holds the column index of every continuation table field
type ColMap struct {
	Filter      int
	AddrContext int
	AddrSegment int
	AddrVirtual int
	ValueLimbs  [memory.ValueLimbs]int
}

// Cols is the continuation table column map
var Cols = newColMap()

func newColMap() ColMap {
	m := ColMap{
		Filter:      Layout.Index("filter"),
		AddrContext: Layout.Index("addr_context"),
		AddrSegment: Layout.Index("addr_segment"),
		AddrVirtual: Layout.Index("addr_virtual"),
	}
	copy(m.ValueLimbs[:], Layout.Range("value_limbs"))
	columns.MustBijection("MemoryContinuation", NumColumns, m.Indices()...)
	return m
}

// Indices flattens the column map in field order
func (m ColMap) Indices() []int {
	return append([]int{m.Filter, m.AddrContext, m.AddrSegment, m.AddrVirtual}, m.ValueLimbs[:]...)
}

// Row packs the view into a flat row
func (v *ColumnsView) Row() []field.Element {
	row := make([]field.Element, NumColumns)
	row[Cols.Filter] = v.Filter
	row[Cols.AddrContext] = v.AddrContext
	row[Cols.AddrSegment] = v.AddrSegment
	row[Cols.AddrVirtual] = v.AddrVirtual
	columns.Scatter(row, Cols.ValueLimbs[:], v.ValueLimbs[:])
	return row
}

// ViewFromRow unpacks a flat row
func ViewFromRow(row []field.Element) ColumnsView {
	Layout.CheckRow(row)
	v := ColumnsView{
		Filter:      row[Cols.Filter],
		AddrContext: row[Cols.AddrContext],
		AddrSegment: row[Cols.AddrSegment],
		AddrVirtual: row[Cols.AddrVirtual],
	}
	columns.Gather(v.ValueLimbs[:], row, Cols.ValueLimbs[:])
	return v
}
