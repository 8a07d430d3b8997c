package poseidon

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/columns"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/ctl"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
)

func elements(n int) []field.Element {
	out := make([]field.Element, n)
	for i := range out {
		out[i] = field.New(uint64(1000 + i))
	}
	return out
}

func TestColumnLayout(t *testing.T) {
	require.Equal(t, 47, NumColumns)
	require.NoError(t, columns.CheckBijection(NumColumns, Cols.Indices()...))
	require.Equal(t, "is_final_input_len[0]", Layout.Name(Cols.IsFinalInputLen[0]))
	require.Equal(t, "updated_digest[11]", Layout.Name(NumColumns-1))
}

func TestColumnsViewRoundTrip(t *testing.T) {
	row := make([]field.Element, NumColumns)
	for i := range row {
		row[i] = field.New(uint64(i * 3))
	}
	view := ViewFromRow(row)
	require.Equal(t, row, view.Row())
}

func TestBlocksPadding(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		numBlocks int
	}{
		{"empty", 0, 1},
		{"short", 3, 1},
		{"one short of a block", 7, 1},
		{"exact block", 8, 2},
		{"block and one", 9, 2},
		{"two blocks and one", 17, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Blocks(elements(tt.n))
			require.Len(t, blocks, tt.numBlocks)

			final := blocks[len(blocks)-1]
			rest := tt.n % SpongeRate
			if rest < SpongeRate-1 {
				require.Equal(t, field.One, final[rest])
				require.Equal(t, field.One, final[SpongeRate-1])
			} else {
				require.Equal(t, field.New(2), final[SpongeRate-1])
			}
		})
	}
}

func TestFinalInputLenIsOneHot(t *testing.T) {
	for _, n := range []int{0, 1, 5, 7, 8, 9, 16, 23} {
		rows, _, err := GenerateRows(SpongeOp{
			Base:      memory.NewAddress(0, memory.TxnData, 0),
			Timestamp: 4,
			Input:     elements(n),
		})
		require.NoError(t, err)

		for r, row := range rows {
			view := ViewFromRow(row)
			hot := 0
			for i, v := range view.IsFinalInputLen {
				if v == field.One {
					hot++
					require.Equal(t, view.Len.Value()-view.AlreadyAbsorbedElements.Value(), uint64(i), "n=%d row %d", n, r)
				} else {
					require.Equal(t, field.Zero, v)
				}
			}
			if view.IsFullInputBlock == field.One {
				require.Zero(t, hot, "n=%d row %d", n, r)
			} else {
				require.Equal(t, 1, hot, "n=%d row %d", n, r)
				require.Equal(t, len(rows)-1, r)
			}
		}
	}
}

func TestRowsChainState(t *testing.T) {
	input := elements(20)
	rows, digest, err := GenerateRows(SpongeOp{Input: input})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, Hash(input), digest)

	for r := 1; r < len(rows); r++ {
		prev := ViewFromRow(rows[r-1])
		cur := ViewFromRow(rows[r])
		require.Equal(t, cur.Block[:], cur.InputState[:SpongeRate])
		require.Equal(t, prev.UpdatedDigest[SpongeRate:], cur.InputState[SpongeRate:])
		require.Equal(t, Permute(cur.InputState), cur.UpdatedDigest)
	}

	last := ViewFromRow(rows[len(rows)-1])
	require.Equal(t, digest[:], last.UpdatedDigest[:NumOutputs])
}

func TestHashDistinguishesPadding(t *testing.T) {
	require.NotEqual(t, Hash(nil), Hash([]field.Element{field.Zero}))
	require.NotEqual(t, Hash(elements(7)), Hash(elements(8)))
	require.Equal(t, Hash(elements(8)), Hash(elements(8)))
}

func TestPermuteSeparatesLanes(t *testing.T) {
	var state [StateSize]field.Element
	out := Permute(state)
	require.NotEqual(t, out[0], out[1])
	require.Equal(t, out, Permute(state))
}

func TestRejectsWideElements(t *testing.T) {
	_, _, err := GenerateRows(SpongeOp{Input: []field.Element{field.New(1 << 32)}})
	require.ErrorIs(t, err, ErrElementTooWide)

	_, err = GenerateTrace([]SpongeOp{{Input: []field.Element{field.New(1 << 40)}}}, 16)
	require.ErrorIs(t, err, ErrElementTooWide)
}

func TestTraceAndLookups(t *testing.T) {
	ops := []SpongeOp{
		{Base: memory.NewAddress(0, memory.Code, 0), Timestamp: 4, Input: elements(11)},
		{Base: memory.NewAddress(0, memory.TxnData, 0), Timestamp: 8, Input: nil},
	}
	table, err := GenerateTrace(ops, 16)
	require.NoError(t, err)
	require.Equal(t, trace.PoseidonSponge, table.ID)
	require.Equal(t, 16, table.NumRows())

	looked, err := ctl.Tuples(ctl.NewTableWithColumns(trace.PoseidonSponge, CtlLookedData(), CtlLookedFilter()), table)
	require.NoError(t, err)
	require.Len(t, looked, 2)
	require.Equal(t, field.New(11), looked[0][3])
	require.Equal(t, field.New(4), looked[0][4])

	reads := 0
	for i := 0; i < SpongeRate; i++ {
		side := ctl.NewTableWithColumns(trace.PoseidonSponge, CtlLookingMemory(i), CtlLookingMemoryFilter(i))
		tuples, err := ctl.Tuples(side, table)
		require.NoError(t, err)
		for _, tuple := range tuples {
			require.Len(t, tuple, len(memory.CtlData()))
			require.Equal(t, field.One, tuple[0])
			virt := tuple[3].Value()
			require.Equal(t, field.New(1000+virt), tuple[4])
		}
		reads += len(tuples)
	}
	require.Equal(t, 11, reads)
}
