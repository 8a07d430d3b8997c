// Package generation turns generation inputs into the witness of one
// segment: it bootstraps the kernel, runs the interpreter until it halts,
// and shapes the accumulated rows into the CPU, memory, memory-continuation
// and sponge tables.
package generation

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/continuation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/cpu"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/kernel"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/poseidon"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/tables"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/utils"
)

// GenerationOutputs is the witness of one segment
type GenerationOutputs struct {
	Tables       *trace.Tables
	PublicValues PublicValues
	// Final memory of the segment, the MemBefore of the next one
	MemAfter continuation.MemValues
	// Number of CPU steps, bootstrap included
	Clock int
}

// GenerateTraces generates the witness of one segment. A nil config uses
// the defaults.
func GenerateTraces(inputs *GenerationInputs, k *kernel.Kernel, cfg *utils.Config) (*GenerationOutputs, error) {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	state, err := NewGenerationState(inputs, k)
	if err != nil {
		return nil, err
	}
	log.Info("Generating segment", "segment", cfg.Segment, "txns", len(state.Txns), "membefore", len(inputs.MemBefore))

	if err := Bootstrap(state); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if err := Run(&state.State, cfg.MaxClock); err != nil {
		return nil, fmt.Errorf("segment %d: %w", cfg.Segment, err)
	}

	ts, memAfter, err := BuildTables(&state.Traces, inputs.MemBefore, cfg.MinTableRows)
	if err != nil {
		return nil, fmt.Errorf("segment %d: %w", cfg.Segment, err)
	}
	if cfg.CheckCTLs {
		if err := tables.Check(ts); err != nil {
			return nil, fmt.Errorf("segment %d: %w", cfg.Segment, err)
		}
	}

	out := &GenerationOutputs{
		Tables: ts,
		PublicValues: PublicValues{
			TrieRootsBefore: readTrieRoots(state.Memory,
				memory.StateTrieRootDigestBefore, memory.TransactionTrieRootDigestBefore, memory.ReceiptTrieRootDigestBefore),
			TrieRootsAfter: readTrieRoots(state.Memory,
				memory.StateTrieRootDigestAfter, memory.TransactionTrieRootDigestAfter, memory.ReceiptTrieRootDigestAfter),
			BlockMetadata: inputs.BlockMetadata,
		},
		MemAfter: memAfter,
		Clock:    state.Traces.Clock(),
	}

	for id, st := range ts.Statistics() {
		log.Debug("Generated table", "table", id, "rows", st.Rows, "log2", utils.Log2(st.Rows), "columns", st.Columns)
	}
	log.Info("Generated segment", "segment", cfg.Segment, "clock", out.Clock, "memafter", len(memAfter), "elapsed", time.Since(start))
	return out, nil
}

// Run steps the interpreter until it halts. It halts only on a halt
// program counter at a clock that is a power of two, so the CPU table
// needs no padding. maxClock bounds the run when positive; otherwise a
// kernel that never reaches its halt loop runs forever.
func Run(s *cpu.State, maxClock int) error {
	for {
		clock := s.Traces.Clock()
		pc := s.Registers.ProgramCounter
		if s.Kernel.IsHaltPC(pc) && utils.IsPowerOfTwo(clock) {
			log.Debug("Kernel halted", "clock", clock, "pc", pc)
			return nil
		}
		if maxClock > 0 && clock >= maxClock {
			return fmt.Errorf("clock %d, pc %d: %w", clock, pc, ErrClockLimit)
		}
		if err := cpu.Transition(s); err != nil {
			return err
		}
	}
}

// BuildTables shapes accumulated traces into the five tables. memBefore is
// the memory the segment started with. It also returns the final memory.
func BuildTables(traces *cpu.Traces, memBefore continuation.MemValues, minRows int) (*trace.Tables, continuation.MemValues, error) {
	var ts trace.Tables

	ts[trace.Cpu] = trace.Shape(trace.Cpu, traces.Rows, cpu.NumColumns, minRows)

	memTable, after, err := memory.GenerateTrace(traces.MemoryOps, memBefore, minRows)
	if err != nil {
		return nil, nil, fmt.Errorf("memory table: %w", err)
	}
	ts[trace.Memory] = memTable

	ts[trace.MemBefore] = continuation.GenerateTrace(trace.MemBefore, continuation.RowsFromValues(memBefore), minRows)
	ts[trace.MemAfter] = continuation.GenerateTrace(trace.MemAfter, continuation.RowsFromValues(after), minRows)

	spongeTable, err := poseidon.GenerateTrace(traces.SpongeOps, minRows)
	if err != nil {
		return nil, nil, fmt.Errorf("sponge table: %w", err)
	}
	ts[trace.PoseidonSponge] = spongeTable

	if err := ts.Validate(minRows); err != nil {
		return nil, nil, err
	}
	return &ts, after, nil
}
