package continuation

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/ctl"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
)

// MemValues is the ordered (address, value) interchange handed from the end
// of one segment to the start of the next.
type MemValues []memory.Entry

// CtlData returns the propagated address and the value limbs
func CtlData() []ctl.Column {
	res := ctl.Singles(Cols.AddrContext, Cols.AddrSegment, Cols.AddrVirtual)
	return append(res, ctl.Singles(Cols.ValueLimbs[:]...)...)
}

// CtlFilter selects the active rows
func CtlFilter() ctl.Filter {
	return ctl.NewSimpleFilter(Cols.Filter)
}

// CtlDataMemory presents each row as the memory write that initialises the
// address: is_read = 0 and timestamp = 0 are synthesized as constants, the
// address and value limbs are taken from the row.
func CtlDataMemory() []ctl.Column {
	res := []ctl.Column{ctl.Constant(field.Zero)}
	res = append(res, ctl.Singles(Cols.AddrContext, Cols.AddrSegment, Cols.AddrVirtual)...)
	res = append(res, ctl.Singles(Cols.ValueLimbs[:]...)...)
	return append(res, ctl.Constant(field.Zero))
}

// RowsFromValues converts memory values into active continuation rows
func RowsFromValues(values MemValues) [][]field.Element {
	rows := make([][]field.Element, len(values))
	for i := range values {
		e := &values[i]
		view := ColumnsView{
			Filter:      field.One,
			AddrContext: field.New(e.Address.Context),
			AddrSegment: field.New(uint64(e.Address.Segment)),
			AddrVirtual: field.New(e.Address.Virt),
			ValueLimbs:  memory.Limbs(&e.Value),
		}
		rows[i] = view.Row()
	}
	return rows
}

// ValuesFromTable reads the active rows of a continuation table back into
// memory values
func ValuesFromTable(table *trace.Table) (MemValues, error) {
	if table.NumColumns() != NumColumns {
		return nil, fmt.Errorf("%s table has %d columns, expected %d", table.ID, table.NumColumns(), NumColumns)
	}
	var values MemValues
	for r := 0; r < table.NumRows(); r++ {
		view := ViewFromRow(table.Row(r))
		if view.Filter == field.Zero {
			continue
		}
		addr := memory.NewAddress(view.AddrContext.Value(), memory.Segment(view.AddrSegment.Value()), view.AddrVirtual.Value())
		value, err := memory.FromLimbs(view.ValueLimbs)
		if err != nil {
			return nil, fmt.Errorf("%s row %d at %s: %w", table.ID, r, addr, err)
		}
		values = append(values, memory.Entry{Address: addr, Value: *value})
	}
	return values, nil
}

// GenerateTrace pads the given rows to max(minRows, next power of two) with
// inactive rows and transposes them. id is MemBefore or MemAfter.
func GenerateTrace(id trace.TableID, finalValues [][]field.Element, minRows int) *trace.Table {
	rows := finalValues
	for _, row := range rows {
		Layout.CheckRow(row)
	}
	return trace.Shape(id, rows, NumColumns, minRows)
}
