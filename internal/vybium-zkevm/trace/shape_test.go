package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

func makeRows(n, width int) [][]field.Element {
	rows := make([][]field.Element, n)
	for r := range rows {
		rows[r] = make([]field.Element, width)
		for c := range rows[r] {
			rows[r][c] = field.New(uint64(r*width + c + 1))
		}
	}
	return rows
}

func TestPadRowsPowerOfTwoMinimum(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		expected int
	}{
		{"empty buffer", 0, 16},
		{"single row", 1, 16},
		{"sixteen rows", 16, 16},
		{"seventeen rows", 17, 32},
		{"thirty-seven rows", 37, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			padded := PadRows(makeRows(tt.rows, 3), 3, 16)
			require.Len(t, padded, tt.expected)
			for r := tt.rows; r < len(padded); r++ {
				for _, v := range padded[r] {
					require.Equal(t, field.Zero, v)
				}
			}
		})
	}
}

func TestPadRowsIdempotent(t *testing.T) {
	once := PadRows(makeRows(20, 2), 2, 16)
	require.Len(t, once, 32)

	twice := PadRows(once, 2, 16)
	require.Len(t, twice, 32)
	require.Equal(t, once, twice)
}

func TestTranspose(t *testing.T) {
	rows := makeRows(4, 3)
	cols := Transpose(rows, 3)

	require.Len(t, cols, 3)
	for c := range cols {
		require.Len(t, cols[c], 4)
		for r := range rows {
			require.Equal(t, rows[r][c], cols[c][r])
		}
	}
}

func TestTransposePanicsOnRaggedRows(t *testing.T) {
	rows := makeRows(2, 3)
	rows[1] = rows[1][:2]

	require.Panics(t, func() { Transpose(rows, 3) })
}

func TestShapeEmptyTable(t *testing.T) {
	table := Shape(MemBefore, nil, 12, 16)

	require.Equal(t, MemBefore, table.ID)
	require.Equal(t, 12, table.NumColumns())
	require.Equal(t, 16, table.NumRows())
}

func TestTablesValidate(t *testing.T) {
	var tables Tables
	for _, id := range AllTableIDs() {
		tables[id] = Shape(id, makeRows(5, 2), 2, 16)
	}
	require.NoError(t, tables.Validate(16))

	stats := tables.Statistics()
	require.Equal(t, Stats{Rows: 16, Columns: 2}, stats[Cpu])

	tables[Memory] = &Table{ID: Memory, Columns: Transpose(makeRows(12, 2), 2)}
	require.Error(t, tables.Validate(16))

	tables[Memory] = nil
	require.Error(t, tables.Validate(16))
}

func TestTableIDString(t *testing.T) {
	require.Equal(t, "PoseidonSponge", PoseidonSponge.String())
	require.Equal(t, "Unknown", TableID(42).String())
	require.Len(t, AllTableIDs(), NumTables)
}

func TestPaddedLen(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		expected int
	}{
		{"empty", 0, 16},
		{"one row", 1, 16},
		{"exactly minimum", 16, 16},
		{"just over minimum", 17, 32},
		{"thirty-seven", 37, 64},
		{"already padded", 64, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, PaddedLen(tt.rows, 16))
		})
	}
}
