package vybiumzkevm

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/continuation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/generation"
)

func testInputs() *GenerationInputs {
	code := []byte{0x60, 0x2a}
	return &GenerationInputs{
		SignedTxns: []hexutil.Bytes{},
		Tries: TrieInputs{
			StateTrie: &PartialTrie{Kind: generation.LeafNode, Nibbles: []byte{0xa, 0xb}, Value: []byte("account")},
		},
		ContractCode: map[common.Hash]hexutil.Bytes{crypto.Keccak256Hash(code): code},
		BlockMetadata: BlockMetadata{
			Number:  3,
			ChainID: 1,
			BaseFee: (*hexutil.Big)(big.NewInt(1)),
		},
	}
}

func TestGenerateWitness(t *testing.T) {
	w, err := GenerateWitness(testInputs(), DefaultConfig().WithCheckCTLs(true))
	require.NoError(t, err)

	require.Equal(t, uint64(0), w.Segment)
	require.Len(t, w.Tables, 5)
	require.Equal(t, w.Clock, w.Tables[Cpu.String()].Rows)
	for name, st := range w.Tables {
		require.GreaterOrEqual(t, st.Rows, 16, name)
	}
	require.Equal(t, w.PublicValues.TrieRootsBefore, w.PublicValues.TrieRootsAfter)
	require.NotEmpty(t, w.MemAfter)
}

func TestGenerateSegmentChainsMemory(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	first, err := GenerateSegment(store, testInputs(), nil, nil)
	require.NoError(t, err)

	inputs := testInputs()
	second, err := GenerateSegment(store, inputs, nil, DefaultConfig().WithSegment(1))
	require.NoError(t, err)
	require.Nil(t, inputs.MemBefore)
	require.Equal(t, uint64(1), second.Segment)
	before, err := continuation.ValuesFromTable(second.Outputs.Tables[MemBefore])
	require.NoError(t, err)
	require.Equal(t, first.MemAfter, before)

	stored, err := store.Get(1)
	require.NoError(t, err)
	require.Equal(t, second.MemAfter, stored)
}

func TestGenerateSegmentMissingPrevious(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = GenerateSegment(store, testInputs(), nil, DefaultConfig().WithSegment(4))
	require.Error(t, err)
	require.Equal(t, ErrStorage, Code(err))
	require.ErrorIs(t, err, &VMError{Code: ErrStorage})
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *GenerationInputs, cfg *Config)
		code   ErrorCode
	}{
		{"invalid config", func(_ *GenerationInputs, cfg *Config) { cfg.MinTableRows = 8 }, ErrInvalidConfig},
		{"malformed txn", func(in *GenerationInputs, _ *Config) {
			in.SignedTxns = []hexutil.Bytes{{0x01}}
		}, ErrInvalidInput},
		{"clock limit", func(_ *GenerationInputs, cfg *Config) { cfg.MaxClock = 4 }, ErrVMExecution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, cfg := testInputs(), DefaultConfig()
			tt.mutate(in, cfg)
			_, err := GenerateWitness(in, cfg)
			require.Error(t, err)
			require.Equal(t, tt.code, Code(err))

			var vmErr *VMError
			require.True(t, errors.As(err, &vmErr))
			require.NotNil(t, vmErr.Unwrap())
		})
	}
}

func TestKernelHashMismatchCode(t *testing.T) {
	k := *DefaultKernel()
	k.CodeHash[0] = k.CodeHash[0].Add(field.One)
	_, err := GenerateWitnessWithKernel(testInputs(), &k, nil)
	require.Equal(t, ErrKernelMismatch, Code(err))
	require.ErrorIs(t, err, generation.ErrKernelHashMismatch)
}

func TestVMErrorMessage(t *testing.T) {
	err := &VMError{Code: ErrLookupMismatch, Message: "tables disagree"}
	require.Equal(t, "vybium-zkevm error [5]: tables disagree", err.Error())
	require.Equal(t, ErrUnknown, Code(errors.New("plain")))
	require.Equal(t, "lookup mismatch", ErrLookupMismatch.String())
	require.Equal(t, "ErrorCode(99)", ErrorCode(99).String())
}

func TestNewKernelRejectsMissingLabels(t *testing.T) {
	_, err := NewKernel([]byte{0x5b}, map[string]int{})
	require.Equal(t, ErrInvalidInput, Code(err))
}
