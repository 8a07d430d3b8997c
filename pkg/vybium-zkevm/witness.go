package vybiumzkevm

import (
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/continuation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/generation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/kernel"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/utils"
)

// Store persists the memory carried between segments
type Store = continuation.Store

// DefaultConfig returns the default generation configuration
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// DefaultKernel returns the built-in kernel
func DefaultKernel() *Kernel {
	return kernel.Default()
}

// NewKernel validates assembled kernel code and its global labels
func NewKernel(code []byte, labels map[string]int) (*Kernel, error) {
	k, err := kernel.NewKernel(code, labels)
	if err != nil {
		return nil, &VMError{Code: ErrInvalidInput, Message: "invalid kernel", Cause: err}
	}
	return k, nil
}

// OpenStore opens a LevelDB backed continuation store at path
func OpenStore(path string) (*Store, error) {
	s, err := continuation.OpenStore(path)
	if err != nil {
		return nil, &VMError{Code: ErrStorage, Message: "failed to open store", Cause: err}
	}
	return s, nil
}

// NewMemoryStore returns an in-memory continuation store
func NewMemoryStore() (*Store, error) {
	s, err := continuation.NewMemoryStore()
	if err != nil {
		return nil, &VMError{Code: ErrStorage, Message: "failed to create store", Cause: err}
	}
	return s, nil
}

// GenerateWitness generates the witness of one segment with the built-in
// kernel. A nil config uses the defaults.
func GenerateWitness(inputs *GenerationInputs, cfg *Config) (*Witness, error) {
	return GenerateWitnessWithKernel(inputs, kernel.Default(), cfg)
}

// GenerateWitnessWithKernel generates the witness of one segment with k.
// A nil kernel is the built-in one.
func GenerateWitnessWithKernel(inputs *GenerationInputs, k *Kernel, cfg *Config) (*Witness, error) {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	if k == nil {
		k = kernel.Default()
	}
	out, err := generation.GenerateTraces(inputs, k, cfg)
	if err != nil {
		return nil, wrap("witness generation failed", err)
	}

	stats := make(map[string]TableStats)
	for id, st := range out.Tables.Statistics() {
		stats[id.String()] = st
	}
	return &Witness{
		Segment:      cfg.Segment,
		Clock:        out.Clock,
		PublicValues: out.PublicValues,
		Tables:       stats,
		MemAfter:     out.MemAfter,
		Outputs:      out,
	}, nil
}

// GenerateSegment generates segment cfg.Segment with the memory the store
// holds for the previous segment, then stores the segment's final memory.
// Segment 0 starts from empty memory. inputs is not modified; its
// MemBefore is ignored.
func GenerateSegment(store *Store, inputs *GenerationInputs, k *Kernel, cfg *Config) (*Witness, error) {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	if inputs == nil {
		return nil, wrap("witness generation failed", generation.ErrMalformedInput)
	}

	in := *inputs
	in.MemBefore = nil
	if cfg.Segment > 0 {
		before, err := store.Get(cfg.Segment - 1)
		if err != nil {
			return nil, &VMError{Code: ErrStorage, Message: "failed to load previous segment memory", Cause: err}
		}
		in.MemBefore = before
	}

	w, err := GenerateWitnessWithKernel(&in, k, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Put(cfg.Segment, w.MemAfter); err != nil {
		return nil, &VMError{Code: ErrStorage, Message: "failed to store segment memory", Cause: err}
	}
	return w, nil
}
