package generation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// NodeKind is the type of a partial trie node
type NodeKind string

const (
	EmptyNode     NodeKind = "empty"
	HashNode      NodeKind = "hash"
	BranchNode    NodeKind = "branch"
	ExtensionNode NodeKind = "extension"
	LeafNode      NodeKind = "leaf"
)

const branchWidth = 16

// PartialTrie is a Merkle Patricia trie in which untouched subtries are
// replaced by their hash. Nibbles hold one nibble per byte.
type PartialTrie struct {
	Kind     NodeKind       `json:"kind"`
	Digest   common.Hash    `json:"hash,omitempty"`
	Nibbles  hexutil.Bytes  `json:"nibbles,omitempty"`
	Children []*PartialTrie `json:"children,omitempty"`
	Child    *PartialTrie   `json:"child,omitempty"`
	Value    hexutil.Bytes  `json:"value,omitempty"`
}

// Hash returns the root hash of the trie. A nil trie is empty.
func (n *PartialTrie) Hash() (common.Hash, error) {
	if n == nil || n.Kind == EmptyNode {
		return types.EmptyRootHash, nil
	}
	if n.Kind == HashNode {
		return n.Digest, nil
	}
	enc, err := n.encode()
	if err != nil {
		return common.Hash{}, err
	}
	return keccak256(enc), nil
}

func (n *PartialTrie) encode() ([]byte, error) {
	switch n.Kind {
	case EmptyNode:
		return rlp.EncodeToBytes([]byte{})

	case HashNode:
		return rlp.EncodeToBytes(n.Digest[:])

	case LeafNode:
		key, err := hexPrefix(n.Nibbles, true)
		if err != nil {
			return nil, err
		}
		return rlp.EncodeToBytes([]interface{}{key, []byte(n.Value)})

	case ExtensionNode:
		if len(n.Nibbles) == 0 || n.Child == nil {
			return nil, fmt.Errorf("extension node needs a key and a child: %w", ErrMalformedInput)
		}
		key, err := hexPrefix(n.Nibbles, false)
		if err != nil {
			return nil, err
		}
		child, err := n.Child.reference()
		if err != nil {
			return nil, err
		}
		return rlp.EncodeToBytes([]interface{}{key, child})

	case BranchNode:
		if len(n.Children) != branchWidth {
			return nil, fmt.Errorf("branch node has %d children, expected %d: %w", len(n.Children), branchWidth, ErrMalformedInput)
		}
		items := make([]interface{}, branchWidth+1)
		for i, c := range n.Children {
			ref, err := c.reference()
			if err != nil {
				return nil, err
			}
			items[i] = ref
		}
		items[branchWidth] = []byte(n.Value)
		return rlp.EncodeToBytes(items)
	}
	return nil, fmt.Errorf("unknown trie node kind %q: %w", n.Kind, ErrMalformedInput)
}

// reference returns how a parent embeds the node: inline when its encoding
// is shorter than a hash, by hash otherwise
func (n *PartialTrie) reference() (rlp.RawValue, error) {
	if n == nil {
		return rlp.EncodeToBytes([]byte{})
	}
	enc, err := n.encode()
	if err != nil {
		return nil, err
	}
	if n.Kind == EmptyNode || n.Kind == HashNode || len(enc) < common.HashLength {
		return enc, nil
	}
	h := keccak256(enc)
	return rlp.EncodeToBytes(h[:])
}

// hexPrefix compacts nibbles with the leaf flag and odd-length marker
func hexPrefix(nibbles []byte, leaf bool) ([]byte, error) {
	for i, nb := range nibbles {
		if nb > 0x0f {
			return nil, fmt.Errorf("nibble %d is 0x%x: %w", i, nb, ErrMalformedInput)
		}
	}
	var flag byte
	if leaf {
		flag = 2
	}
	out := make([]byte, 0, len(nibbles)/2+1)
	if len(nibbles)%2 == 1 {
		out = append(out, (flag+1)<<4|nibbles[0])
		nibbles = nibbles[1:]
	} else {
		out = append(out, flag<<4)
	}
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out, nil
}

func keccak256(data []byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out common.Hash
	h.Sum(out[:0])
	return out
}
