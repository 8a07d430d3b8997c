// Package vybiumzkevm generates the execution witness of a zkEVM segment.
//
// A segment is generated from its inputs (signed transactions, partial
// tries, contract code and block metadata) by running the kernel on an
// interpreter that records one CPU row per step. The rows and the memory
// and sponge operations they issue are shaped into five tables: Cpu,
// Memory, MemBefore, MemAfter and PoseidonSponge. Every table is padded to
// a power of two of at least 16 rows, and the tables are tied together by
// cross-table lookups.
//
// # Quick Start
//
//	var inputs vybiumzkevm.GenerationInputs
//	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
//		log.Fatal(err)
//	}
//
//	witness, err := vybiumzkevm.GenerateWitness(&inputs, vybiumzkevm.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(witness.PublicValues.TrieRootsAfter.StateRoot)
//
// # Continuations
//
// The final memory of a segment is the starting memory of the next one.
// GenerateSegment loads it from a Store and saves the new final memory:
//
//	store, err := vybiumzkevm.OpenStore("segments.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	for i, in := range segments {
//		cfg := vybiumzkevm.DefaultConfig().WithSegment(uint64(i))
//		if _, err := vybiumzkevm.GenerateSegment(store, in, nil, cfg); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Architecture
//
// - pkg/vybium-zkevm/: Public API (this package)
// - internal/vybium-zkevm/: Private implementation (not importable)
//
// Errors returned by this package are *VMError values whose Code tells
// configuration, input, execution, kernel, lookup and storage failures apart.
package vybiumzkevm
