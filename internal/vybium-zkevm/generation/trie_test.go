package generation

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/stretchr/testify/require"
)

func stackTrieRoot(t *testing.T, kvs ...[2][]byte) common.Hash {
	t.Helper()
	st := trie.NewStackTrie(nil)
	for _, kv := range kvs {
		require.NoError(t, st.Update(kv[0], kv[1]))
	}
	return st.Hash()
}

func branch(children map[int]*PartialTrie) *PartialTrie {
	n := &PartialTrie{Kind: BranchNode, Children: make([]*PartialTrie, branchWidth)}
	for i, c := range children {
		n.Children[i] = c
	}
	return n
}

func TestEmptyTrieHash(t *testing.T) {
	var nilTrie *PartialTrie
	h, err := nilTrie.Hash()
	require.NoError(t, err)
	require.Equal(t, types.EmptyRootHash, h)

	h, err = (&PartialTrie{Kind: EmptyNode}).Hash()
	require.NoError(t, err)
	require.Equal(t, types.EmptyRootHash, h)
}

func TestSingleLeafHash(t *testing.T) {
	value := []byte("leaf value")
	leaf := &PartialTrie{Kind: LeafNode, Nibbles: []byte{1, 2, 3, 4}, Value: value}

	h, err := leaf.Hash()
	require.NoError(t, err)
	require.Equal(t, stackTrieRoot(t, [2][]byte{{0x12, 0x34}, value}), h)
}

func TestExtensionBranchHash(t *testing.T) {
	short := []byte("short")
	long := bytes.Repeat([]byte{0xab}, 40)

	br := branch(map[int]*PartialTrie{
		4: {Kind: LeafNode, Value: short},
		5: {Kind: LeafNode, Value: long},
	})
	root := &PartialTrie{Kind: ExtensionNode, Nibbles: []byte{1, 2, 3}, Child: br}

	h, err := root.Hash()
	require.NoError(t, err)
	want := stackTrieRoot(t, [2][]byte{{0x12, 0x34}, short}, [2][]byte{{0x12, 0x35}, long})
	require.Equal(t, want, h)

	// Pruning the branch to its hash keeps the root.
	brHash, err := br.Hash()
	require.NoError(t, err)
	pruned := &PartialTrie{Kind: ExtensionNode, Nibbles: []byte{1, 2, 3}, Child: &PartialTrie{Kind: HashNode, Digest: brHash}}
	h2, err := pruned.Hash()
	require.NoError(t, err)
	require.Equal(t, h, h2)
}

func TestBranchAtRootHash(t *testing.T) {
	a := []byte("a")
	b := bytes.Repeat([]byte{0x01}, 33)
	root := branch(map[int]*PartialTrie{
		1: {Kind: LeafNode, Nibbles: []byte{0}, Value: a},
		2: {Kind: LeafNode, Nibbles: []byte{0}, Value: b},
	})

	h, err := root.Hash()
	require.NoError(t, err)
	require.Equal(t, stackTrieRoot(t, [2][]byte{{0x10}, a}, [2][]byte{{0x20}, b}), h)
}

func TestMalformedTries(t *testing.T) {
	tests := []struct {
		name string
		node *PartialTrie
	}{
		{"bad nibble", &PartialTrie{Kind: LeafNode, Nibbles: []byte{0x10}, Value: []byte{1}}},
		{"short branch", &PartialTrie{Kind: BranchNode, Children: make([]*PartialTrie, 3)}},
		{"extension without child", &PartialTrie{Kind: ExtensionNode, Nibbles: []byte{1}}},
		{"unknown kind", &PartialTrie{Kind: "bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.node.Hash()
			require.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestHexPrefix(t *testing.T) {
	tests := []struct {
		nibbles []byte
		leaf    bool
		want    []byte
	}{
		{[]byte{1, 2, 3, 4, 5}, false, []byte{0x11, 0x23, 0x45}},
		{[]byte{0, 1, 2, 3, 4, 5}, false, []byte{0x00, 0x01, 0x23, 0x45}},
		{[]byte{0x0f, 1, 0x0c, 0x0b, 8}, true, []byte{0x3f, 0x1c, 0xb8}},
		{[]byte{}, true, []byte{0x20}},
	}
	for _, tt := range tests {
		got, err := hexPrefix(tt.nibbles, tt.leaf)
		if err != nil {
			t.Fatalf("hexPrefix(%x, %v): %v", tt.nibbles, tt.leaf, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("hexPrefix(%x, %v) = %x, want %x", tt.nibbles, tt.leaf, got, tt.want)
		}
	}
}
