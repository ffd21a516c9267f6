// Package database handles all the lower level support for maintaining the
// blockchain in storage and keeping the latest block in memory.
package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/civicledger/civicledger/foundation/blockchain/digest"
)

// DatabaseIterator walks the chain in storage converting rows to blocks.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// Database manages the chain in storage and the latest block in memory. The
// latest block only moves after storage accepted the write, so the two
// cannot diverge.
type Database struct {
	mu          sync.RWMutex
	latestBlock Block
	height      int
	storage     Storage
}

// New constructs a new database, reading and validating every block that
// already exists in storage.
func New(ctx context.Context, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		storage: storage,
	}

	n, err := Verify(ctx, storage, evHandler, func(block Block) {
		db.latestBlock = block
	})
	if err != nil {
		return nil, err
	}
	db.height = n

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Reset re-initalizes the database back to an empty chain.
func (db *Database) Reset(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(ctx); err != nil {
		return err
	}

	db.latestBlock = Block{}
	db.height = 0

	return nil
}

// Write adds a new block to the chain. The block number assigned by
// storage is returned as part of the block.
func (db *Database) Write(ctx context.Context, block Block) (Block, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if block.PrevHash != db.tipHash() {
		return Block{}, fmt.Errorf("%w: block does not extend the latest block", ErrChainInvalid)
	}

	// Apply the rules Verify applies on load so a written chain always reloads.
	if err := block.validateParent(db.latestBlock, func(string, ...any) {}); err != nil {
		return Block{}, err
	}

	blockData, err := NewBlockData(block)
	if err != nil {
		return Block{}, err
	}

	num, err := db.storage.Write(ctx, blockData)
	if err != nil {
		return Block{}, err
	}
	block.Number = num

	db.latestBlock = block
	db.height++

	return block, nil
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Height returns the number of blocks in the chain.
func (db *Database) Height() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.height
}

// GetBlock searches the blockchain in storage to locate and return the
// contents of the specified block by number.
func (db *Database) GetBlock(ctx context.Context, num uint64) (Block, error) {
	blockData, err := db.storage.GetBlock(ctx, num)
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// ForEach returns an iterator to walk through all the blocks
// starting with the first block.
func (db *Database) ForEach(ctx context.Context) DatabaseIterator {
	return DatabaseIterator{iterator: db.storage.ForEach(ctx)}
}

// tipHash returns the hash the next block must reference.
func (db *Database) tipHash() string {
	if db.latestBlock.Number == 0 {
		return digest.ZeroHash
	}
	return db.latestBlock.Hash
}

// =============================================================================

// Verify walks every block in storage validating it against the block before
// it. The number of valid blocks walked is returned and an error names the
// stored number of the failing block. If fn is not nil it is called for every
// valid block in chain order.
func Verify(ctx context.Context, storage Storage, evHandler func(v string, args ...any), fn func(Block)) (int, error) {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	var latestBlock Block
	var n int

	iter := storage.ForEach(ctx)
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return n, err
		}

		block, err := ToBlock(blockData)
		if err != nil {
			return n, fmt.Errorf("%w: %w", ErrChainInvalid, err)
		}

		if err := block.ValidateBlock(latestBlock, ev); err != nil {
			return n, fmt.Errorf("block %d: %w", block.Number, err)
		}

		if fn != nil {
			fn(block)
		}

		latestBlock = block
		n++
	}

	return n, nil
}
