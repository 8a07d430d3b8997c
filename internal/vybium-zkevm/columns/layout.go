// Package columns implements the column-layout contract shared by every table:
// a single declarative field list per table from which the flat column
// indices, the column map and the row packing are all derived.
package columns

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// Field declares one named field of a table row. Len is zero for a scalar
// field and the number of elements for an array field.
type Field struct {
	Name string
	Len  int
}

// Scalar declares a single-column field
func Scalar(name string) Field {
	return Field{Name: name}
}

// Array declares a field spanning n consecutive columns
func Array(name string, n int) Field {
	return Field{Name: name, Len: n}
}

// Width returns the number of columns occupied by the field
func (f Field) Width() int {
	if f.Len == 0 {
		return 1
	}
	return f.Len
}

// Layout maps the named fields of one table onto column indices 0..N.
// It is built once at package initialisation and never mutated.
type Layout struct {
	table      string
	numColumns int
	fields     []Field
	offsets    map[string]int
	names      []string
}

// NewLayout assigns consecutive column indices to fields in declaration
// order. It panics if the fields do not cover exactly numColumns columns,
// if a name is repeated or if an array length is negative: all of these are
// programmer errors that must never reach trace generation.
func NewLayout(table string, numColumns int, fields ...Field) *Layout {
	l := &Layout{
		table:      table,
		numColumns: numColumns,
		fields:     append([]Field(nil), fields...),
		offsets:    make(map[string]int, len(fields)),
		names:      make([]string, 0, numColumns),
	}

	next := 0
	for _, f := range fields {
		if f.Len < 0 {
			panic(fmt.Sprintf("%s layout: field %q has negative length %d", table, f.Name, f.Len))
		}
		if _, dup := l.offsets[f.Name]; dup {
			panic(fmt.Sprintf("%s layout: duplicate field %q", table, f.Name))
		}
		l.offsets[f.Name] = next
		if f.Len == 0 {
			l.names = append(l.names, f.Name)
		} else {
			for i := 0; i < f.Len; i++ {
				l.names = append(l.names, fmt.Sprintf("%s[%d]", f.Name, i))
			}
		}
		next += f.Width()
	}

	if next != numColumns {
		panic(fmt.Sprintf("%s layout: fields cover %d columns, table declares %d", table, next, numColumns))
	}

	return l
}

// Table returns the name of the table the layout describes
func (l *Layout) Table() string {
	return l.table
}

// NumColumns returns the total column count
func (l *Layout) NumColumns() int {
	return l.numColumns
}

// Fields returns the declared fields in column order
func (l *Layout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// Name returns the name of column col, e.g. "block[3]"
func (l *Layout) Name(col int) string {
	if col < 0 || col >= l.numColumns {
		return fmt.Sprintf("%s[out of range %d]", l.table, col)
	}
	return l.names[col]
}

// Index returns the column index of a scalar field
func (l *Layout) Index(name string) int {
	f, offset := l.lookup(name)
	if f.Len != 0 {
		panic(fmt.Sprintf("%s layout: field %q is an array, use Range", l.table, name))
	}
	return offset
}

// Range returns the column indices of an array field
func (l *Layout) Range(name string) []int {
	f, offset := l.lookup(name)
	if f.Len == 0 {
		panic(fmt.Sprintf("%s layout: field %q is a scalar, use Index", l.table, name))
	}
	indices := make([]int, f.Len)
	for i := range indices {
		indices[i] = offset + i
	}
	return indices
}

func (l *Layout) lookup(name string) (Field, int) {
	offset, ok := l.offsets[name]
	if !ok {
		panic(fmt.Sprintf("%s layout: unknown field %q", l.table, name))
	}
	for _, f := range l.fields {
		if f.Name == name {
			return f, offset
		}
	}
	panic("unreachable")
}

// NewRow allocates an all-zero row of the table's width
func (l *Layout) NewRow() []field.Element {
	row := make([]field.Element, l.numColumns)
	for i := range row {
		row[i] = field.Zero
	}
	return row
}

// CheckRow panics unless row has exactly the table's width
func (l *Layout) CheckRow(row []field.Element) {
	if len(row) != l.numColumns {
		panic(fmt.Sprintf("%s layout: row has %d values, table has %d columns", l.table, len(row), l.numColumns))
	}
}

// MustBijection panics unless the given column indices, taken together,
// use every index in 0..numColumns exactly once.
func MustBijection(table string, numColumns int, indices ...int) {
	if err := CheckBijection(numColumns, indices...); err != nil {
		panic(fmt.Sprintf("%s column map: %v", table, err))
	}
}

// CheckBijection reports whether indices is a permutation of 0..numColumns
func CheckBijection(numColumns int, indices ...int) error {
	if len(indices) != numColumns {
		return fmt.Errorf("column map has %d entries, expected %d", len(indices), numColumns)
	}
	seen := make([]bool, numColumns)
	for _, idx := range indices {
		if idx < 0 || idx >= numColumns {
			return fmt.Errorf("index %d out of range [0, %d)", idx, numColumns)
		}
		if seen[idx] {
			return fmt.Errorf("index %d used twice", idx)
		}
		seen[idx] = true
	}
	return nil
}

// Gather copies row[idx[i]] into dst[i]
func Gather(dst []field.Element, row []field.Element, idx []int) {
	for i, c := range idx {
		dst[i] = row[c]
	}
}

// Scatter copies src[i] into row[idx[i]]
func Scatter(row []field.Element, idx []int, src []field.Element) {
	for i, c := range idx {
		row[c] = src[i]
	}
}

// Bit converts a boolean into a field element
func Bit(b bool) field.Element {
	if b {
		return field.One
	}
	return field.Zero
}
