package cpu

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/columns"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/poseidon"
)

// NumSpongeArgs is the number of sponge request columns: context, segment,
// virt and len
const NumSpongeArgs = 4

// NumColumns is the width of the CPU table
const NumColumns = 6 + 5*memory.NumGPChannels + memory.NumGPChannels*memory.ValueLimbs + NumSpongeArgs + poseidon.NumOutputs

// Layout is the column layout of the CPU table
var Layout = columns.NewLayout("Cpu", NumColumns,
	columns.Scalar("clock"),
	columns.Scalar("program_counter"),
	columns.Scalar("opcode"),
	columns.Scalar("is_bootstrap"),
	columns.Scalar("is_poseidon"),
	columns.Scalar("stack_len"),
	columns.Array("mem_used", memory.NumGPChannels),
	columns.Array("mem_is_read", memory.NumGPChannels),
	columns.Array("mem_addr_context", memory.NumGPChannels),
	columns.Array("mem_addr_segment", memory.NumGPChannels),
	columns.Array("mem_addr_virtual", memory.NumGPChannels),
	columns.Array("mem_value", memory.NumGPChannels*memory.ValueLimbs),
	columns.Array("sponge_args", NumSpongeArgs),
	columns.Array("sponge_digest", poseidon.NumOutputs),
)

// ChannelView is the state of one general-purpose memory channel in a row
type ChannelView struct {
	Used        field.Element
	IsRead      field.Element
	AddrContext field.Element
	AddrSegment field.Element
	AddrVirtual field.Element
	Value       [memory.ValueLimbs]field.Element
}

// ColumnsView is one row of the CPU table
type ColumnsView struct {
	Clock          field.Element
	ProgramCounter field.Element
	Opcode         field.Element

	// 1 on the rows written by bootstrap
	IsBootstrap field.Element
	// 1 on rows issuing a sponge request
	IsPoseidon field.Element

	// Stack height before the instruction executes
	StackLen field.Element

	Channels [memory.NumGPChannels]ChannelView

	SpongeArgs   [NumSpongeArgs]field.Element
	SpongeDigest [poseidon.NumOutputs]field.Element
}

// ChannelCols holds the column indices of one memory channel
type ChannelCols struct {
	Used        int
	IsRead      int
	AddrContext int
	AddrSegment int
	AddrVirtual int
	Value       [memory.ValueLimbs]int
}

// ColMap holds the column index of every CPU table field
type ColMap struct {
	Clock          int
	ProgramCounter int
	Opcode         int
	IsBootstrap    int
	IsPoseidon     int
	StackLen       int
	Channels       [memory.NumGPChannels]ChannelCols
	SpongeArgs     [NumSpongeArgs]int
	SpongeDigest   [poseidon.NumOutputs]int
}

// Cols is the CPU table column map
var Cols = newColMap()

func newColMap() ColMap {
	m := ColMap{
		Clock:          Layout.Index("clock"),
		ProgramCounter: Layout.Index("program_counter"),
		Opcode:         Layout.Index("opcode"),
		IsBootstrap:    Layout.Index("is_bootstrap"),
		IsPoseidon:     Layout.Index("is_poseidon"),
		StackLen:       Layout.Index("stack_len"),
	}
	used := Layout.Range("mem_used")
	isRead := Layout.Range("mem_is_read")
	ctx := Layout.Range("mem_addr_context")
	seg := Layout.Range("mem_addr_segment")
	virt := Layout.Range("mem_addr_virtual")
	value := Layout.Range("mem_value")
	for ch := range m.Channels {
		c := &m.Channels[ch]
		c.Used = used[ch]
		c.IsRead = isRead[ch]
		c.AddrContext = ctx[ch]
		c.AddrSegment = seg[ch]
		c.AddrVirtual = virt[ch]
		copy(c.Value[:], value[ch*memory.ValueLimbs:])
	}
	copy(m.SpongeArgs[:], Layout.Range("sponge_args"))
	copy(m.SpongeDigest[:], Layout.Range("sponge_digest"))
	columns.MustBijection("Cpu", NumColumns, m.Indices()...)
	return m
}

// Indices lists every column of the map
func (m ColMap) Indices() []int {
	idx := []int{m.Clock, m.ProgramCounter, m.Opcode, m.IsBootstrap, m.IsPoseidon, m.StackLen}
	for _, c := range m.Channels {
		idx = append(idx, c.Used, c.IsRead, c.AddrContext, c.AddrSegment, c.AddrVirtual)
		idx = append(idx, c.Value[:]...)
	}
	idx = append(idx, m.SpongeArgs[:]...)
	return append(idx, m.SpongeDigest[:]...)
}

// Row packs the view into a flat row
func (v *ColumnsView) Row() []field.Element {
	row := make([]field.Element, NumColumns)
	row[Cols.Clock] = v.Clock
	row[Cols.ProgramCounter] = v.ProgramCounter
	row[Cols.Opcode] = v.Opcode
	row[Cols.IsBootstrap] = v.IsBootstrap
	row[Cols.IsPoseidon] = v.IsPoseidon
	row[Cols.StackLen] = v.StackLen
	for ch, c := range Cols.Channels {
		cv := &v.Channels[ch]
		row[c.Used] = cv.Used
		row[c.IsRead] = cv.IsRead
		row[c.AddrContext] = cv.AddrContext
		row[c.AddrSegment] = cv.AddrSegment
		row[c.AddrVirtual] = cv.AddrVirtual
		columns.Scatter(row, c.Value[:], cv.Value[:])
	}
	columns.Scatter(row, Cols.SpongeArgs[:], v.SpongeArgs[:])
	columns.Scatter(row, Cols.SpongeDigest[:], v.SpongeDigest[:])
	return row
}

// ViewFromRow unpacks a flat row
func ViewFromRow(row []field.Element) ColumnsView {
	Layout.CheckRow(row)
	v := ColumnsView{
		Clock:          row[Cols.Clock],
		ProgramCounter: row[Cols.ProgramCounter],
		Opcode:         row[Cols.Opcode],
		IsBootstrap:    row[Cols.IsBootstrap],
		IsPoseidon:     row[Cols.IsPoseidon],
		StackLen:       row[Cols.StackLen],
	}
	for ch, c := range Cols.Channels {
		cv := &v.Channels[ch]
		cv.Used = row[c.Used]
		cv.IsRead = row[c.IsRead]
		cv.AddrContext = row[c.AddrContext]
		cv.AddrSegment = row[c.AddrSegment]
		cv.AddrVirtual = row[c.AddrVirtual]
		columns.Gather(cv.Value[:], row, c.Value[:])
	}
	columns.Gather(v.SpongeArgs[:], row, Cols.SpongeArgs[:])
	columns.Gather(v.SpongeDigest[:], row, Cols.SpongeDigest[:])
	return v
}
