package trace

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/utils"
)

// PaddedLen returns the padded height of a table holding numRows rows:
// max(minRows, next power of two of numRows)
func PaddedLen(numRows, minRows int) int {
	padded := utils.NextPowerOfTwo(numRows)
	if padded < minRows {
		return minRows
	}
	return padded
}

// PadRows appends all-zero rows of the given width until the buffer
// reaches PaddedLen rows. A buffer that is already padded is returned as is.
func PadRows(rows [][]field.Element, width, minRows int) [][]field.Element {
	target := PaddedLen(len(rows), minRows)
	for len(rows) < target {
		row := make([]field.Element, width)
		for i := range row {
			row[i] = field.Zero
		}
		rows = append(rows, row)
	}
	return rows
}

// Transpose converts row-major rows of the given width into columns.
// It panics on a row of the wrong width.
func Transpose(rows [][]field.Element, width int) []PolynomialValues {
	cols := make([]PolynomialValues, width)
	for c := range cols {
		cols[c] = make(PolynomialValues, len(rows))
	}
	for r, row := range rows {
		if len(row) != width {
			panic(fmt.Sprintf("row %d has %d values, expected %d", r, len(row), width))
		}
		for c, v := range row {
			cols[c][r] = v
		}
	}
	return cols
}

// Shape pads rows and transposes them into a table
func Shape(id TableID, rows [][]field.Element, width, minRows int) *Table {
	rows = PadRows(rows, width, minRows)
	return &Table{ID: id, Columns: Transpose(rows, width)}
}
