package poseidon

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/columns"
)

// NumColumns is the width of the sponge table
const NumColumns = 7 + 2*SpongeRate + 2*StateSize

// Layout is the column layout of the sponge table
var Layout = columns.NewLayout("PoseidonSponge", NumColumns,
	columns.Scalar("is_full_input_block"),
	columns.Scalar("context"),
	columns.Scalar("segment"),
	columns.Scalar("virt"),
	columns.Scalar("timestamp"),
	columns.Scalar("len"),
	columns.Scalar("already_absorbed_elements"),
	columns.Array("is_final_input_len", SpongeRate),
	columns.Array("block", SpongeRate),
	columns.Array("input_state", SpongeRate+SpongeWidth),
	columns.Array("updated_digest", SpongeWidth+SpongeRate),
)

// ColumnsView is one row of the sponge table. Each row is one application
// of the permutation.
type ColumnsView struct {
	// 1 if every element of the block is input, 0 on the final block
	IsFullInputBlock field.Element

	// Base address of the input and the timestamp it is read at
	Context   field.Element
	Segment   field.Element
	Virt      field.Element
	Timestamp field.Element

	Len                     field.Element
	AlreadyAbsorbedElements field.Element

	// On the final block, entry i is 1 iff len - already_absorbed == i.
	// All zero on full blocks.
	IsFinalInputLen [SpongeRate]field.Element

	// Absorbed block, input elements followed by padding. Elements come from
	// 32-bit memory limbs.
	Block [SpongeRate]field.Element

	InputState    [StateSize]field.Element
	UpdatedDigest [StateSize]field.Element
}

// ColMap holds the column index of every sponge table field
type ColMap struct {
	IsFullInputBlock        int
	Context                 int
	Segment                 int
	Virt                    int
	Timestamp               int
	Len                     int
	AlreadyAbsorbedElements int
	IsFinalInputLen         [SpongeRate]int
	Block                   [SpongeRate]int
	InputState              [StateSize]int
	UpdatedDigest           [StateSize]int
}

// Cols is the sponge table column map
var Cols = newColMap()

func newColMap() ColMap {
	m := ColMap{
		IsFullInputBlock:        Layout.Index("is_full_input_block"),
		Context:                 Layout.Index("context"),
		Segment:                 Layout.Index("segment"),
		Virt:                    Layout.Index("virt"),
		Timestamp:               Layout.Index("timestamp"),
		Len:                     Layout.Index("len"),
		AlreadyAbsorbedElements: Layout.Index("already_absorbed_elements"),
	}
	copy(m.IsFinalInputLen[:], Layout.Range("is_final_input_len"))
	copy(m.Block[:], Layout.Range("block"))
	copy(m.InputState[:], Layout.Range("input_state"))
	copy(m.UpdatedDigest[:], Layout.Range("updated_digest"))
	columns.MustBijection("PoseidonSponge", NumColumns, m.Indices()...)
	return m
}

// Indices flattens the column map in field order
func (m ColMap) Indices() []int {
	idx := []int{m.IsFullInputBlock, m.Context, m.Segment, m.Virt, m.Timestamp, m.Len, m.AlreadyAbsorbedElements}
	idx = append(idx, m.IsFinalInputLen[:]...)
	idx = append(idx, m.Block[:]...)
	idx = append(idx, m.InputState[:]...)
	return append(idx, m.UpdatedDigest[:]...)
}

// Row packs the view into a flat row
func (v *ColumnsView) Row() []field.Element {
	row := make([]field.Element, NumColumns)
	row[Cols.IsFullInputBlock] = v.IsFullInputBlock
	row[Cols.Context] = v.Context
	row[Cols.Segment] = v.Segment
	row[Cols.Virt] = v.Virt
	row[Cols.Timestamp] = v.Timestamp
	row[Cols.Len] = v.Len
	row[Cols.AlreadyAbsorbedElements] = v.AlreadyAbsorbedElements
	columns.Scatter(row, Cols.IsFinalInputLen[:], v.IsFinalInputLen[:])
	columns.Scatter(row, Cols.Block[:], v.Block[:])
	columns.Scatter(row, Cols.InputState[:], v.InputState[:])
	columns.Scatter(row, Cols.UpdatedDigest[:], v.UpdatedDigest[:])
	return row
}

// ViewFromRow unpacks a flat row
func ViewFromRow(row []field.Element) ColumnsView {
	Layout.CheckRow(row)
	v := ColumnsView{
		IsFullInputBlock:        row[Cols.IsFullInputBlock],
		Context:                 row[Cols.Context],
		Segment:                 row[Cols.Segment],
		Virt:                    row[Cols.Virt],
		Timestamp:               row[Cols.Timestamp],
		Len:                     row[Cols.Len],
		AlreadyAbsorbedElements: row[Cols.AlreadyAbsorbedElements],
	}
	columns.Gather(v.IsFinalInputLen[:], row, Cols.IsFinalInputLen[:])
	columns.Gather(v.Block[:], row, Cols.Block[:])
	columns.Gather(v.InputState[:], row, Cols.InputState[:])
	columns.Gather(v.UpdatedDigest[:], row, Cols.UpdatedDigest[:])
	return v
}
