package generation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/continuation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
)

// GenerationInputs is everything one segment is generated from. It is not
// modified by generation.
type GenerationInputs struct {
	SignedTxns    []hexutil.Bytes               `json:"signed_txns"`
	Tries         TrieInputs                    `json:"tries"`
	ContractCode  map[common.Hash]hexutil.Bytes `json:"contract_code"`
	BlockMetadata BlockMetadata                 `json:"block_metadata"`

	// Memory the segment starts with, the MemAfter of the previous segment.
	// Empty for the first segment.
	MemBefore continuation.MemValues `json:"-"`
}

// TrieInputs holds partial views of the tries the execution touches
type TrieInputs struct {
	StateTrie        *PartialTrie  `json:"state_trie"`
	TransactionsTrie *PartialTrie  `json:"transactions_trie"`
	ReceiptsTrie     *PartialTrie  `json:"receipts_trie"`
	StorageTries     []StorageTrie `json:"storage_tries"`
}

// StorageTrie is the partial storage trie of one account
type StorageTrie struct {
	Address common.Address `json:"address"`
	Trie    *PartialTrie   `json:"trie"`
}

// BlockMetadata describes the block the transactions execute in
type BlockMetadata struct {
	Beneficiary common.Address `json:"block_beneficiary"`
	Timestamp   hexutil.Uint64 `json:"block_timestamp"`
	Number      hexutil.Uint64 `json:"block_number"`
	Difficulty  *hexutil.Big   `json:"block_difficulty,omitempty"`
	GasLimit    hexutil.Uint64 `json:"block_gaslimit"`
	ChainID     hexutil.Uint64 `json:"block_chain_id"`
	BaseFee     *hexutil.Big   `json:"block_base_fee,omitempty"`
}

// TrieRoots are the roots of the state, transaction and receipt tries
type TrieRoots struct {
	StateRoot       common.Hash `json:"state_root"`
	TransactionRoot common.Hash `json:"transaction_root"`
	ReceiptsRoot    common.Hash `json:"receipts_root"`
}

// PublicValues is what a proof of the segment attests to
type PublicValues struct {
	TrieRootsBefore TrieRoots     `json:"trie_roots_before"`
	TrieRootsAfter  TrieRoots     `json:"trie_roots_after"`
	BlockMetadata   BlockMetadata `json:"block_metadata"`
}

// metadataWords returns the GlobalMetadata words describing the block
func (m *BlockMetadata) metadataWords() (map[memory.GlobalMetadataField]*uint256.Int, error) {
	difficulty, err := bigWord("difficulty", m.Difficulty)
	if err != nil {
		return nil, err
	}
	baseFee, err := bigWord("base fee", m.BaseFee)
	if err != nil {
		return nil, err
	}
	return map[memory.GlobalMetadataField]*uint256.Int{
		memory.BlockBeneficiary: new(uint256.Int).SetBytes20(m.Beneficiary[:]),
		memory.BlockTimestamp:   uint256.NewInt(uint64(m.Timestamp)),
		memory.BlockNumber:      uint256.NewInt(uint64(m.Number)),
		memory.BlockDifficulty:  difficulty,
		memory.BlockGasLimit:    uint256.NewInt(uint64(m.GasLimit)),
		memory.BlockChainID:     uint256.NewInt(uint64(m.ChainID)),
		memory.BlockBaseFee:     baseFee,
	}, nil
}

func bigWord(name string, b *hexutil.Big) (*uint256.Int, error) {
	if b == nil {
		return new(uint256.Int), nil
	}
	v := b.ToInt()
	if v.Sign() < 0 {
		return nil, fmt.Errorf("block %s is negative: %w", name, ErrMalformedInput)
	}
	w, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("block %s overflows 256 bits: %w", name, ErrMalformedInput)
	}
	return w, nil
}

func (r TrieRoots) words() map[memory.GlobalMetadataField]*uint256.Int {
	return map[memory.GlobalMetadataField]*uint256.Int{
		memory.StateTrieRootDigestBefore:       new(uint256.Int).SetBytes32(r.StateRoot[:]),
		memory.TransactionTrieRootDigestBefore: new(uint256.Int).SetBytes32(r.TransactionRoot[:]),
		memory.ReceiptTrieRootDigestBefore:     new(uint256.Int).SetBytes32(r.ReceiptsRoot[:]),
	}
}

// readTrieRoots reads three roots out of GlobalMetadata
func readTrieRoots(mem *memory.State, state, txn, receipts memory.GlobalMetadataField) TrieRoots {
	read := func(f memory.GlobalMetadataField) common.Hash {
		v := mem.Get(f.Address())
		return common.Hash(v.Bytes32())
	}
	return TrieRoots{
		StateRoot:       read(state),
		TransactionRoot: read(txn),
		ReceiptsRoot:    read(receipts),
	}
}
