package continuation

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/memory"
)

// ErrNoValues is returned when no final memory was stored for a segment
var ErrNoValues = errors.New("no memory values stored for segment")

var memAfterPrefix = []byte("mem_after_")

type storedEntry struct {
	Context uint64
	Segment uint64
	Virt    uint64
	Value   *uint256.Int
}

// Store persists the final memory of each segment so that the next segment
// can be started from it.
type Store struct {
	db *leveldb.DB
}

// OpenStore opens or creates a store at path
func OpenStore(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open continuation store: %w", err)
	}
	return &Store{db: db}, nil
}

// NewMemoryStore creates a store that lives in memory only
func NewMemoryStore() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open in-memory continuation store: %w", err)
	}
	return &Store{db: db}, nil
}

// Put records the final memory of a segment, replacing any earlier record
func (s *Store) Put(segment uint64, values MemValues) error {
	stored := make([]storedEntry, len(values))
	for i := range values {
		e := &values[i]
		stored[i] = storedEntry{
			Context: e.Address.Context,
			Segment: uint64(e.Address.Segment),
			Virt:    e.Address.Virt,
			Value:   new(uint256.Int).Set(&e.Value),
		}
	}
	enc, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return fmt.Errorf("encode segment %d memory: %w", segment, err)
	}
	return s.db.Put(memAfterKey(segment), enc, nil)
}

// Get returns the final memory recorded for a segment
func (s *Store) Get(segment uint64) (MemValues, error) {
	enc, err := s.db.Get(memAfterKey(segment), nil)
	if err == leveldb.ErrNotFound {
		return nil, fmt.Errorf("segment %d: %w", segment, ErrNoValues)
	}
	if err != nil {
		return nil, err
	}
	var stored []storedEntry
	if err := rlp.DecodeBytes(enc, &stored); err != nil {
		return nil, fmt.Errorf("decode segment %d memory: %w", segment, err)
	}
	values := make(MemValues, len(stored))
	for i, e := range stored {
		seg := memory.Segment(e.Segment)
		if !seg.Valid() {
			return nil, fmt.Errorf("segment %d memory: entry %d has invalid segment %d", segment, i, e.Segment)
		}
		values[i] = memory.Entry{Address: memory.NewAddress(e.Context, seg, e.Virt)}
		if e.Value != nil {
			values[i].Value = *e.Value
		}
	}
	return values, nil
}

// Has reports whether final memory was recorded for a segment
func (s *Store) Has(segment uint64) (bool, error) {
	return s.db.Has(memAfterKey(segment), nil)
}

// Close releases the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func memAfterKey(segment uint64) []byte {
	key := make([]byte, len(memAfterPrefix)+8)
	copy(key, memAfterPrefix)
	binary.BigEndian.PutUint64(key[len(memAfterPrefix):], segment)
	return key
}
