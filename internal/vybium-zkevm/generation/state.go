package generation

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/cpu"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/kernel"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
)

var (
	// ErrMalformedInput is returned for inputs no execution can be generated from
	ErrMalformedInput = errors.New("malformed generation inputs")
	// ErrKernelHashMismatch is returned when the kernel code in memory does
	// not hash to the kernel's digest
	ErrKernelHashMismatch = errors.New("kernel hash mismatch")
	// ErrClockLimit is returned when a configured clock bound is reached
	// before halting
	ErrClockLimit = errors.New("clock limit reached before halt")
)

// GenerationState is the state of one segment's generation. It is created
// from the inputs, mutated by bootstrap and the interpreter, and consumed
// once to build the tables.
type GenerationState struct {
	cpu.State

	Inputs          *GenerationInputs
	Txns            []*types.Transaction
	TrieRootsBefore TrieRoots
}

// NewGenerationState validates the inputs and creates the initial state
func NewGenerationState(inputs *GenerationInputs, k *kernel.Kernel) (*GenerationState, error) {
	if inputs == nil {
		return nil, fmt.Errorf("nil inputs: %w", ErrMalformedInput)
	}
	if k == nil {
		return nil, errors.New("nil kernel")
	}

	txns, err := decodeTxns(inputs.SignedTxns)
	if err != nil {
		return nil, err
	}
	code, err := checkContractCode(inputs.ContractCode)
	if err != nil {
		return nil, err
	}
	roots, err := inputs.Tries.roots()
	if err != nil {
		return nil, err
	}
	if err := checkMemBefore(inputs.MemBefore); err != nil {
		return nil, err
	}

	s := &GenerationState{
		State:           *cpu.NewState(k, memory.NewStateFromEntries(inputs.MemBefore), code),
		Inputs:          inputs,
		Txns:            txns,
		TrieRootsBefore: roots,
	}
	return s, nil
}

func decodeTxns(raw []hexutil.Bytes) ([]*types.Transaction, error) {
	txns := make([]*types.Transaction, len(raw))
	for i, b := range raw {
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("signed txn %d: %v: %w", i, err, ErrMalformedInput)
		}
		txns[i] = tx
	}
	return txns, nil
}

func checkContractCode(code map[common.Hash]hexutil.Bytes) (map[common.Hash][]byte, error) {
	out := make(map[common.Hash][]byte, len(code))
	for h, c := range code {
		if got := keccak256(c); got != h {
			return nil, fmt.Errorf("contract code keyed %s hashes to %s: %w", h, got, ErrMalformedInput)
		}
		out[h] = append([]byte(nil), c...)
	}
	return out, nil
}

func (t *TrieInputs) roots() (TrieRoots, error) {
	var roots TrieRoots
	var err error
	if roots.StateRoot, err = t.StateTrie.Hash(); err != nil {
		return TrieRoots{}, fmt.Errorf("state trie: %w", err)
	}
	if roots.TransactionRoot, err = t.TransactionsTrie.Hash(); err != nil {
		return TrieRoots{}, fmt.Errorf("transactions trie: %w", err)
	}
	if roots.ReceiptsRoot, err = t.ReceiptsTrie.Hash(); err != nil {
		return TrieRoots{}, fmt.Errorf("receipts trie: %w", err)
	}
	for i, st := range t.StorageTries {
		if _, err := st.Trie.Hash(); err != nil {
			return TrieRoots{}, fmt.Errorf("storage trie %d (%s): %w", i, st.Address, err)
		}
	}
	return roots, nil
}

func checkMemBefore(values []memory.Entry) error {
	seen := make(map[memory.Address]struct{}, len(values))
	for i, e := range values {
		if !e.Address.Segment.Valid() {
			return fmt.Errorf("mem before %d: invalid segment %d: %w", i, e.Address.Segment, ErrMalformedInput)
		}
		if _, ok := seen[e.Address]; ok {
			return fmt.Errorf("mem before %d: duplicate address %s: %w", i, e.Address, ErrMalformedInput)
		}
		seen[e.Address] = struct{}{}
	}
	return nil
}
