package vybiumzkevm

import (
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/continuation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/generation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/kernel"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/utils"
)

// GenerationInputs is everything one segment is generated from
type GenerationInputs = generation.GenerationInputs

// GenerationOutputs is the witness of one segment
type GenerationOutputs = generation.GenerationOutputs

// PublicValues is what a proof of a segment attests to
type PublicValues = generation.PublicValues

// TrieInputs holds partial views of the tries an execution touches
type TrieInputs = generation.TrieInputs

// PartialTrie is a Merkle Patricia trie with pruned subtries
type PartialTrie = generation.PartialTrie

// BlockMetadata describes the block transactions execute in
type BlockMetadata = generation.BlockMetadata

// TrieRoots are the roots of the state, transaction and receipt tries
type TrieRoots = generation.TrieRoots

// Kernel is an assembled kernel program
type Kernel = kernel.Kernel

// Config represents the configuration for one segment's generation
type Config = utils.Config

// MemValues are the memory values carried between segments
type MemValues = continuation.MemValues

// MemoryEntry is one addressed memory word
type MemoryEntry = memory.Entry

// Tables are the generated trace tables, indexed by TableID
type Tables = trace.Tables

// TableID identifies a trace table
type TableID = trace.TableID

// TableStats summarizes a table's shape
type TableStats = trace.Stats

// Table identifiers
const (
	Cpu            = trace.Cpu
	Memory         = trace.Memory
	MemBefore      = trace.MemBefore
	MemAfter       = trace.MemAfter
	PoseidonSponge = trace.PoseidonSponge
)

// Witness is the result of generating one segment
type Witness struct {
	Segment      uint64                `json:"segment"`
	Clock        int                   `json:"clock"`
	PublicValues PublicValues          `json:"public_values"`
	Tables       map[string]TableStats `json:"tables"`
	MemAfter     MemValues             `json:"-"`
	Outputs      *GenerationOutputs    `json:"-"`
}
