// Package ctl implements cross-table lookups: the data/filter contract that
// ties independently generated tables together. A lookup asserts that the
// multiset of filtered tuples emitted by the looking tables equals the
// multiset of filtered tuples of the looked table.
package ctl

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
)

// ErrMismatch is returned when the two sides of a lookup disagree
var ErrMismatch = errors.New("cross-table lookup mismatch")

type term struct {
	col   int
	coeff field.Element
}

// Column is a linear combination of trace columns plus a constant
type Column struct {
	linear   []term
	constant field.Element
}

// Single selects one column
func Single(col int) Column {
	return Column{linear: []term{{col: col, coeff: field.One}}, constant: field.Zero}
}

// Singles selects each of the given columns
func Singles(cols ...int) []Column {
	res := make([]Column, len(cols))
	for i, c := range cols {
		res[i] = Single(c)
	}
	return res
}

// Constant is a column holding the same value on every row
func Constant(value field.Element) Column {
	return Column{constant: value}
}

// Sum adds the given columns
func Sum(cols ...int) Column {
	c := Column{constant: field.Zero}
	for _, col := range cols {
		c.linear = append(c.linear, term{col: col, coeff: field.One})
	}
	return c
}

// LinearCombination returns Σ coeffs[i]·cols[i] + constant
func LinearCombination(cols []int, coeffs []field.Element, constant field.Element) Column {
	if len(cols) != len(coeffs) {
		panic(fmt.Sprintf("linear combination has %d columns and %d coefficients", len(cols), len(coeffs)))
	}
	c := Column{constant: constant}
	for i, col := range cols {
		c.linear = append(c.linear, term{col: col, coeff: coeffs[i]})
	}
	return c
}

// Eval evaluates the column on one row
func (c Column) Eval(row []field.Element) field.Element {
	acc := c.constant
	for _, t := range c.linear {
		acc = acc.Add(row[t.col].Mul(t.coeff))
	}
	return acc
}

func (c Column) maxIndex() int {
	m := -1
	for _, t := range c.linear {
		if t.col > m {
			m = t.col
		}
	}
	return m
}

// Filter selects the rows that take part in a lookup. It must evaluate to
// 0 or 1 on every row.
type Filter struct {
	column Column
}

// NewFilter creates a filter from a column expression
func NewFilter(column Column) Filter {
	return Filter{column: column}
}

// NewSimpleFilter creates a filter reading a single boolean column
func NewSimpleFilter(col int) Filter {
	return NewFilter(Single(col))
}

// Eval evaluates the filter on one row
func (f Filter) Eval(row []field.Element) field.Element {
	return f.column.Eval(row)
}

// TableWithColumns names the columns and filter of one side of a lookup
type TableWithColumns struct {
	Table   trace.TableID
	Columns []Column
	Filter  Filter
}

// NewTableWithColumns creates one side of a lookup
func NewTableWithColumns(table trace.TableID, columns []Column, filter Filter) TableWithColumns {
	return TableWithColumns{Table: table, Columns: columns, Filter: filter}
}

// CrossTableLookup links one or more looking tables to a looked table
type CrossTableLookup struct {
	Name    string
	Looking []TableWithColumns
	Looked  TableWithColumns
}

// New creates a cross-table lookup. It panics if any looking side does not
// have the same arity as the looked side: a mismatched lookup is a wiring
// defect, never a runtime condition.
func New(name string, looking []TableWithColumns, looked TableWithColumns) *CrossTableLookup {
	if len(looking) == 0 {
		panic(fmt.Sprintf("cross-table lookup %s has no looking tables", name))
	}
	for i, l := range looking {
		if len(l.Columns) != len(looked.Columns) {
			panic(fmt.Sprintf("cross-table lookup %s: looking table %d (%s) has %d columns, looked table %s has %d",
				name, i, l.Table, len(l.Columns), looked.Table, len(looked.Columns)))
		}
	}
	return &CrossTableLookup{Name: name, Looking: looking, Looked: looked}
}

// Arity returns the tuple width of the lookup
func (c *CrossTableLookup) Arity() int {
	return len(c.Looked.Columns)
}

// Tuples evaluates the filtered tuples of one side over a table
func Tuples(side TableWithColumns, table *trace.Table) ([][]field.Element, error) {
	if table == nil {
		return nil, fmt.Errorf("%s table not generated", side.Table)
	}
	for _, col := range side.Columns {
		if col.maxIndex() >= table.NumColumns() {
			return nil, fmt.Errorf("%s table: column %d out of range", side.Table, col.maxIndex())
		}
	}
	if side.Filter.column.maxIndex() >= table.NumColumns() {
		return nil, fmt.Errorf("%s table: filter column %d out of range", side.Table, side.Filter.column.maxIndex())
	}

	var tuples [][]field.Element
	for r := 0; r < table.NumRows(); r++ {
		row := table.Row(r)
		switch f := side.Filter.Eval(row); f {
		case field.Zero:
			continue
		case field.One:
		default:
			return nil, fmt.Errorf("%s table: row %d has non-boolean filter %d", side.Table, r, f.Value())
		}
		tuple := make([]field.Element, len(side.Columns))
		for i, col := range side.Columns {
			tuple[i] = col.Eval(row)
		}
		tuples = append(tuples, tuple)
	}
	return tuples, nil
}

// Check verifies that the looking and looked multisets of the lookup agree
// on the given tables
func (c *CrossTableLookup) Check(tables *trace.Tables) error {
	counts := make(map[string]int)

	for _, side := range c.Looking {
		tuples, err := Tuples(side, tables[side.Table])
		if err != nil {
			return fmt.Errorf("cross-table lookup %s: %w", c.Name, err)
		}
		for _, t := range tuples {
			counts[tupleKey(t)]++
		}
	}

	looked, err := Tuples(c.Looked, tables[c.Looked.Table])
	if err != nil {
		return fmt.Errorf("cross-table lookup %s: %w", c.Name, err)
	}
	for _, t := range looked {
		counts[tupleKey(t)]--
	}

	var mismatched []string
	for key, n := range counts {
		if n != 0 {
			mismatched = append(mismatched, fmt.Sprintf("%s (%+d)", key, n))
		}
	}
	if len(mismatched) > 0 {
		sort.Strings(mismatched)
		return fmt.Errorf("cross-table lookup %s: %d tuples differ between looking and looked tables, first: %s: %w",
			c.Name, len(mismatched), mismatched[0], ErrMismatch)
	}
	return nil
}

func tupleKey(tuple []field.Element) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range tuple {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatUint(v.Value(), 10))
	}
	sb.WriteByte(']')
	return sb.String()
}
