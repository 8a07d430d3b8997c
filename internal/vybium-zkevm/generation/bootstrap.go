package generation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
)

// bootstrapWrites lists the memory the kernel starts from: its own code,
// the block metadata, the trie roots and the transaction bytes.
func (s *GenerationState) bootstrapWrites() ([]memory.Entry, error) {
	k := s.Kernel
	var writes []memory.Entry
	add := func(addr memory.Address, v *uint256.Int) {
		writes = append(writes, memory.Entry{Address: addr, Value: *v})
	}

	for i, b := range k.Code {
		add(memory.NewAddress(0, memory.Code, uint64(i)), uint256.NewInt(uint64(b)))
	}

	block, err := s.Inputs.BlockMetadata.metadataWords()
	if err != nil {
		return nil, err
	}
	metadata := s.TrieRootsBefore.words()
	for f, v := range block {
		metadata[f] = v
	}

	var txnData []byte
	for _, raw := range s.Inputs.SignedTxns {
		txnData = append(txnData, raw...)
	}
	metadata[memory.TxnCount] = uint256.NewInt(uint64(len(s.Inputs.SignedTxns)))
	metadata[memory.TxnDataLen] = uint256.NewInt(uint64(len(txnData)))
	metadata[memory.KernelHash] = k.CodeHash.Uint256()

	// Field order keeps bootstrap rows deterministic.
	for f := memory.GlobalMetadataField(0); int(f) < memory.NumGlobalMetadataFields; f++ {
		if v, ok := metadata[f]; ok {
			add(f.Address(), v)
		}
	}

	for i, b := range txnData {
		add(memory.NewAddress(0, memory.TxnData, uint64(i)), uint256.NewInt(uint64(b)))
	}
	return writes, nil
}

// Bootstrap writes the initial memory through CPU rows, checks the kernel
// code against its digest and points the program counter at main.
func Bootstrap(s *GenerationState) error {
	writes, err := s.bootstrapWrites()
	if err != nil {
		return err
	}

	for len(writes) > 0 {
		st := s.BeginStep()
		st.MarkBootstrap()
		for st.FreeChannels() > 0 && len(writes) > 0 {
			st.Write(writes[0].Address, &writes[0].Value)
			writes = writes[1:]
		}
		st.Commit()
	}

	st := s.BeginStep()
	st.MarkBootstrap()
	digest, err := st.Sponge(memory.NewAddress(0, memory.Code, 0), uint64(len(s.Kernel.Code)))
	if err != nil {
		return fmt.Errorf("hash kernel code: %w", err)
	}
	st.Commit()
	if digest != s.Kernel.CodeHash {
		return fmt.Errorf("kernel code in memory hashes to %v, expected %v: %w", digest, s.Kernel.CodeHash, ErrKernelHashMismatch)
	}

	s.Registers.ProgramCounter = s.Kernel.MainPC
	log.Debug("Bootstrapped kernel", "rows", s.Traces.Clock(), "code", len(s.Kernel.Code), "main", s.Kernel.MainPC)
	return nil
}
