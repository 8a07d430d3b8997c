package ctl

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
)

func table(id trace.TableID, rows ...[]uint64) *trace.Table {
	width := len(rows[0])
	elems := make([][]field.Element, len(rows))
	for r, row := range rows {
		elems[r] = make([]field.Element, width)
		for c, v := range row {
			elems[r][c] = field.New(v)
		}
	}
	return trace.Shape(id, elems, width, 16)
}

func TestColumnEval(t *testing.T) {
	row := []field.Element{field.New(2), field.New(3), field.New(5)}

	require.Equal(t, field.New(3), Single(1).Eval(row))
	require.Equal(t, field.New(7), Constant(field.New(7)).Eval(row))
	require.Equal(t, field.New(10), Sum(0, 1, 2).Eval(row))

	lc := LinearCombination([]int{0, 2}, []field.Element{field.New(4), field.New(10)}, field.New(1))
	require.Equal(t, field.New(2*4+5*10+1), lc.Eval(row))
}

func TestNewPanicsOnArityMismatch(t *testing.T) {
	looked := NewTableWithColumns(trace.Memory, Singles(0, 1, 2), NewSimpleFilter(3))
	looking := NewTableWithColumns(trace.Cpu, Singles(0, 1), NewSimpleFilter(2))

	require.Panics(t, func() {
		New("mismatch", []TableWithColumns{looking}, looked)
	})
	require.Panics(t, func() {
		New("empty", nil, looked)
	})
}

func TestCheckPassesOnEqualMultisets(t *testing.T) {
	var tables trace.Tables
	// columns: a, b, filter
	tables[trace.Cpu] = table(trace.Cpu,
		[]uint64{1, 2, 1},
		[]uint64{9, 9, 0},
		[]uint64{3, 4, 1},
	)
	// columns: filter, b, a
	tables[trace.Memory] = table(trace.Memory,
		[]uint64{1, 4, 3},
		[]uint64{1, 2, 1},
	)

	lookup := New("cpu-memory",
		[]TableWithColumns{NewTableWithColumns(trace.Cpu, Singles(0, 1), NewSimpleFilter(2))},
		NewTableWithColumns(trace.Memory, Singles(2, 1), NewSimpleFilter(0)),
	)
	require.Equal(t, 2, lookup.Arity())
	require.NoError(t, lookup.Check(&tables))
}

func TestCheckDetectsMissingTuple(t *testing.T) {
	var tables trace.Tables
	tables[trace.Cpu] = table(trace.Cpu, []uint64{1, 2, 1}, []uint64{3, 4, 1})
	tables[trace.Memory] = table(trace.Memory, []uint64{1, 2, 1})

	lookup := New("cpu-memory",
		[]TableWithColumns{NewTableWithColumns(trace.Cpu, Singles(0, 1), NewSimpleFilter(2))},
		NewTableWithColumns(trace.Memory, Singles(0, 1), NewSimpleFilter(2)),
	)
	require.ErrorIs(t, lookup.Check(&tables), ErrMismatch)
}

func TestCheckWithConstantColumns(t *testing.T) {
	var tables trace.Tables
	// looking: filter, addr
	tables[trace.MemBefore] = table(trace.MemBefore, []uint64{1, 5})
	// looked: filter, is_read, addr, timestamp
	tables[trace.Memory] = table(trace.Memory, []uint64{1, 0, 5, 0}, []uint64{0, 1, 5, 9})

	lookup := New("synthesized",
		[]TableWithColumns{NewTableWithColumns(trace.MemBefore,
			[]Column{Constant(field.Zero), Single(1), Constant(field.Zero)},
			NewSimpleFilter(0))},
		NewTableWithColumns(trace.Memory, Singles(1, 2, 3), NewSimpleFilter(0)),
	)
	require.NoError(t, lookup.Check(&tables))
}

func TestCheckRejectsNonBooleanFilter(t *testing.T) {
	var tables trace.Tables
	tables[trace.Cpu] = table(trace.Cpu, []uint64{1, 2})
	tables[trace.Memory] = table(trace.Memory, []uint64{1, 1})

	lookup := New("bad-filter",
		[]TableWithColumns{NewTableWithColumns(trace.Cpu, Singles(0), NewSimpleFilter(1))},
		NewTableWithColumns(trace.Memory, Singles(0), NewSimpleFilter(1)),
	)
	require.Error(t, lookup.Check(&tables))
}
