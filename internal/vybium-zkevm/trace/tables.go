// Package trace shapes per-table row buffers into the column-major,
// power-of-two padded traces consumed by the STARK backend.
package trace

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/utils"
)

// TableID uniquely identifies each table of the zkEVM
type TableID int

const (
	// Cpu records one row per interpreter cycle
	Cpu TableID = iota

	// Memory proves read/write consistency of all memory operations
	Memory

	// MemBefore carries the memory a segment starts with
	MemBefore

	// MemAfter carries the memory a segment ends with
	MemAfter

	// PoseidonSponge records sponge absorb steps
	PoseidonSponge
)

// NumTables is the number of tables
const NumTables = int(PoseidonSponge) + 1

// String returns the name of the table
func (id TableID) String() string {
	switch id {
	case Cpu:
		return "Cpu"
	case Memory:
		return "Memory"
	case MemBefore:
		return "MemBefore"
	case MemAfter:
		return "MemAfter"
	case PoseidonSponge:
		return "PoseidonSponge"
	default:
		return "Unknown"
	}
}

// AllTableIDs lists every table in index order
func AllTableIDs() []TableID {
	ids := make([]TableID, NumTables)
	for i := range ids {
		ids[i] = TableID(i)
	}
	return ids
}

// PolynomialValues holds the values of one column over all rows
type PolynomialValues []field.Element

// Table is a column-major trace of one table
type Table struct {
	ID      TableID
	Columns []PolynomialValues
}

// NewTable wraps columns that all have the same length
func NewTable(id TableID, columns []PolynomialValues) (*Table, error) {
	for i, col := range columns {
		if len(col) != len(columns[0]) {
			return nil, fmt.Errorf("%s table: column %d has %d rows, column 0 has %d", id, i, len(col), len(columns[0]))
		}
	}
	return &Table{ID: id, Columns: columns}, nil
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0])
}

// Row gathers row i across all columns
func (t *Table) Row(i int) []field.Element {
	row := make([]field.Element, len(t.Columns))
	for c, col := range t.Columns {
		row[c] = col[i]
	}
	return row
}

// Tables holds one trace per table, indexed by TableID
type Tables [NumTables]*Table

// Stats holds statistics for a single table
type Stats struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Statistics returns the shape of every generated table
func (ts *Tables) Statistics() map[TableID]Stats {
	stats := make(map[TableID]Stats, NumTables)
	for _, t := range ts {
		if t == nil {
			continue
		}
		stats[t.ID] = Stats{Rows: t.NumRows(), Columns: t.NumColumns()}
	}
	return stats
}

// Validate checks that every table exists and has a power of two height of
// at least minRows
func (ts *Tables) Validate(minRows int) error {
	for id, t := range ts {
		if t == nil {
			return fmt.Errorf("%s table not generated", TableID(id))
		}
		if t.ID != TableID(id) {
			return fmt.Errorf("table at index %d has id %s", id, t.ID)
		}
		rows := t.NumRows()
		if !utils.IsPowerOfTwo(rows) || rows < minRows {
			return fmt.Errorf("%s table has %d rows, expected a power of 2 >= %d", t.ID, rows, minRows)
		}
	}
	return nil
}
