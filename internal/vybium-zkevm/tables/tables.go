// Package tables wires the cross-table lookups between the CPU, memory,
// memory-continuation and sponge tables.
package tables

import (
	"fmt"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/continuation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/cpu"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/ctl"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/poseidon"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
)

// CrossTableLookups returns every lookup between the tables
func CrossTableLookups() []*ctl.CrossTableLookup {
	return []*ctl.CrossTableLookup{
		ctlMemory(),
		ctlPoseidon(),
		ctlMemAfter(),
	}
}

// ctlMemory links every memory operation to the table that issued it: the
// CPU channels, the sponge block reads, and the initial writes synthesized
// from MemBefore.
func ctlMemory() *ctl.CrossTableLookup {
	var looking []ctl.TableWithColumns
	for ch := 0; ch < memory.NumGPChannels; ch++ {
		looking = append(looking, ctl.NewTableWithColumns(trace.Cpu, cpu.CtlDataMemory(ch), cpu.CtlFilterMemory(ch)))
	}
	for i := 0; i < poseidon.SpongeRate; i++ {
		looking = append(looking, ctl.NewTableWithColumns(trace.PoseidonSponge, poseidon.CtlLookingMemory(i), poseidon.CtlLookingMemoryFilter(i)))
	}
	looking = append(looking, ctl.NewTableWithColumns(trace.MemBefore, continuation.CtlDataMemory(), continuation.CtlFilter()))

	looked := ctl.NewTableWithColumns(trace.Memory, memory.CtlData(), memory.CtlFilter())
	return ctl.New("memory", looking, looked)
}

func ctlPoseidon() *ctl.CrossTableLookup {
	looking := []ctl.TableWithColumns{
		ctl.NewTableWithColumns(trace.Cpu, cpu.CtlDataPoseidon(), cpu.CtlFilterPoseidon()),
	}
	looked := ctl.NewTableWithColumns(trace.PoseidonSponge, poseidon.CtlLookedData(), poseidon.CtlLookedFilter())
	return ctl.New("poseidon", looking, looked)
}

// ctlMemAfter links the last operation on each address to MemAfter
func ctlMemAfter() *ctl.CrossTableLookup {
	looking := []ctl.TableWithColumns{
		ctl.NewTableWithColumns(trace.Memory, memory.CtlDataMemAfter(), memory.CtlFilterMemAfter()),
	}
	looked := ctl.NewTableWithColumns(trace.MemAfter, continuation.CtlData(), continuation.CtlFilter())
	return ctl.New("mem_after", looking, looked)
}

// Check verifies every lookup on the generated tables
func Check(ts *trace.Tables) error {
	for _, c := range CrossTableLookups() {
		if err := c.Check(ts); err != nil {
			return fmt.Errorf("check cross-table lookups: %w", err)
		}
	}
	return nil
}
