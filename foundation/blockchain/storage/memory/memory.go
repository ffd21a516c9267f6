// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/civicledger/civicledger/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and storing
// blocks in memory using a slice. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.BlockData
}

// New constructs an Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified database block and stores it in memory. The
// block number is the position in the slice starting at 1.
func (m *Memory) Write(ctx context.Context, blockData database.BlockData) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blockData.BlockID = uint64(len(m.blocks) + 1)
	m.blocks = append(m.blocks, blockData)

	return blockData.BlockID, nil
}

// GetBlock searches the blockchain to locate and return the contents of
// the specified block by number.
func (m *Memory) GetBlock(ctx context.Context, num uint64) (database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num == 0 || num > uint64(len(m.blocks)) {
		return database.BlockData{}, database.ErrNotFound
	}

	return m.blocks[num-1], nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (m *Memory) ForEach(ctx context.Context) database.Iterator {
	return &memoryIterator{ctx: ctx, storage: m}
}

// Reset will clear out the blockchain in memory.
func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through and reading blocks in memory. This implements the database
// Iterator interface.
type memoryIterator struct {
	ctx     context.Context
	storage *Memory // Access to the storage API.
	current uint64  // Current block number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from memory.
func (mi *memoryIterator) Next() (database.BlockData, error) {
	if mi.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	if err := mi.ctx.Err(); err != nil {
		return database.BlockData{}, err
	}

	mi.current++
	blockData, err := mi.storage.GetBlock(mi.ctx, mi.current)
	if errors.Is(err, database.ErrNotFound) {
		mi.eoc = true
	}

	return blockData, err
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
