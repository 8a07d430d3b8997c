// Package memory implements the address/memory model of the zkEVM and the
// main memory table that proves read/write consistency.
package memory

// Segment identifies one region of a context's memory
type Segment int

const (
	// Code holds the bytecode of the context (the kernel code in context 0)
	Code Segment = iota

	// Stack is the EVM stack area
	Stack

	// MainMemory is the EVM linear memory
	MainMemory

	// Calldata of the context
	Calldata

	// Returndata of the last call
	Returndata

	// GlobalMetadata holds block-level values at fixed offsets
	GlobalMetadata

	// ContextMetadata holds per-context values at fixed offsets
	ContextMetadata

	// KernelGeneral is scratch space for kernel routines
	KernelGeneral

	// TxnData holds the raw signed transactions
	TxnData

	// TrieData holds the flattened partial tries
	TrieData

	// SpongeScratch is used to stage sponge inputs
	SpongeScratch
)

// NumSegments is the number of memory segments
const NumSegments = int(SpongeScratch) + 1

// String returns the name of the segment
func (s Segment) String() string {
	switch s {
	case Code:
		return "Code"
	case Stack:
		return "Stack"
	case MainMemory:
		return "MainMemory"
	case Calldata:
		return "Calldata"
	case Returndata:
		return "Returndata"
	case GlobalMetadata:
		return "GlobalMetadata"
	case ContextMetadata:
		return "ContextMetadata"
	case KernelGeneral:
		return "KernelGeneral"
	case TxnData:
		return "TxnData"
	case TrieData:
		return "TrieData"
	case SpongeScratch:
		return "SpongeScratch"
	default:
		return "Unknown"
	}
}

// Valid reports whether s names an existing segment
func (s Segment) Valid() bool {
	return s >= 0 && int(s) < NumSegments
}

// GlobalMetadataField is an offset into the GlobalMetadata segment
type GlobalMetadataField int

const (
	// StateTrieRootDigestBefore is the state trie root before the batch
	StateTrieRootDigestBefore GlobalMetadataField = iota
	// TransactionTrieRootDigestBefore is the transaction trie root before the batch
	TransactionTrieRootDigestBefore
	// ReceiptTrieRootDigestBefore is the receipt trie root before the batch
	ReceiptTrieRootDigestBefore
	// StateTrieRootDigestAfter is the state trie root after the batch
	StateTrieRootDigestAfter
	// TransactionTrieRootDigestAfter is the transaction trie root after the batch
	TransactionTrieRootDigestAfter
	// ReceiptTrieRootDigestAfter is the receipt trie root after the batch
	ReceiptTrieRootDigestAfter

	BlockBeneficiary
	BlockTimestamp
	BlockNumber
	BlockDifficulty
	BlockGasLimit
	BlockChainID
	BlockBaseFee

	// TxnCount is the number of signed transactions in TxnData
	TxnCount
	// TxnDataLen is the number of bytes written to TxnData
	TxnDataLen
	// TxnDataDigest is the sponge digest of TxnData, written by the kernel
	TxnDataDigest
	// KernelHash is the sponge digest of the kernel code, written by bootstrap
	KernelHash
)

// NumGlobalMetadataFields is the number of GlobalMetadata slots
const NumGlobalMetadataFields = int(KernelHash) + 1

// String returns the name of the metadata field
func (g GlobalMetadataField) String() string {
	switch g {
	case StateTrieRootDigestBefore:
		return "StateTrieRootDigestBefore"
	case TransactionTrieRootDigestBefore:
		return "TransactionTrieRootDigestBefore"
	case ReceiptTrieRootDigestBefore:
		return "ReceiptTrieRootDigestBefore"
	case StateTrieRootDigestAfter:
		return "StateTrieRootDigestAfter"
	case TransactionTrieRootDigestAfter:
		return "TransactionTrieRootDigestAfter"
	case ReceiptTrieRootDigestAfter:
		return "ReceiptTrieRootDigestAfter"
	case BlockBeneficiary:
		return "BlockBeneficiary"
	case BlockTimestamp:
		return "BlockTimestamp"
	case BlockNumber:
		return "BlockNumber"
	case BlockDifficulty:
		return "BlockDifficulty"
	case BlockGasLimit:
		return "BlockGasLimit"
	case BlockChainID:
		return "BlockChainID"
	case BlockBaseFee:
		return "BlockBaseFee"
	case TxnCount:
		return "TxnCount"
	case TxnDataLen:
		return "TxnDataLen"
	case TxnDataDigest:
		return "TxnDataDigest"
	case KernelHash:
		return "KernelHash"
	default:
		return "Unknown"
	}
}

// Address returns the GlobalMetadata address of the field (always context 0)
func (g GlobalMetadataField) Address() Address {
	return NewAddress(0, GlobalMetadata, uint64(g))
}
