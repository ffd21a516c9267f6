package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/civicledger/civicledger/foundation/blockchain/digest"
)

// ErrChainInvalid is returned when a stored block does not link to the
// block before it.
var ErrChainInvalid = errors.New("blockchain is invalid")

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Number    uint64    // Row id assigned by storage when the block is written.
	Hash      string    // Hash over the serialized transactions and PrevHash.
	PrevHash  string    // Hash of the previous block in the chain.
	TimeStamp time.Time // Time the block was assembled.
	Trans     []Tx      // Transactions grouped into this block.
}

// NewBlock constructs the next block in the chain after prevBlock. The zero
// value of Block represents an empty chain.
func NewBlock(prevBlock Block, trans []Tx, now time.Time) (Block, error) {
	if len(trans) == 0 {
		return Block{}, errors.New("block requires at least one transaction")
	}

	// When mining the first block, the previous block's hash will be zero.
	prevHash := digest.ZeroHash
	if prevBlock.Number > 0 {
		prevHash = prevBlock.Hash
	}

	hash, err := ComputeHash(trans, prevHash)
	if err != nil {
		return Block{}, err
	}

	// A block never carries a time before its parent, even when the clock
	// has stepped back since the parent was mined.
	ts := now.UTC().Round(0)
	if prevBlock.Number > 0 && ts.Before(prevBlock.TimeStamp) {
		ts = prevBlock.TimeStamp
	}

	nb := Block{
		Hash:      hash,
		PrevHash:  prevHash,
		TimeStamp: ts,
		Trans:     append([]Tx(nil), trans...),
	}

	return nb, nil
}

// ComputeHash returns the block hash for the set of transactions and the
// hash of the previous block.
func ComputeHash(trans []Tx, prevHash string) (string, error) {
	data, err := json.Marshal(trans)
	if err != nil {
		return "", fmt.Errorf("serializing transactions: %w", err)
	}

	return digest.Hash(string(data), prevHash), nil
}

// ValidateBlock takes a block and validates it to be included after the
// previous block in the chain.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is after parent", b.Number)

	if b.Number <= previousBlock.Number {
		return fmt.Errorf("%w: block number is not after parent, parent %d, block %d", ErrChainInvalid, previousBlock.Number, b.Number)
	}

	return b.validateParent(previousBlock, evHandler)
}

// validateParent performs every check of ValidateBlock except the block
// number, which storage assigns when the block is written.
func (b Block) validateParent(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Number)

	expPrevHash := digest.ZeroHash
	if previousBlock.Number > 0 {
		expPrevHash = previousBlock.Hash
	}
	if b.PrevHash != expPrevHash {
		return fmt.Errorf("%w: parent block hash doesn't match our known parent, got %s, exp %s", ErrChainInvalid, b.PrevHash, expPrevHash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block has transactions", b.Number)

	if len(b.Trans) == 0 {
		return fmt.Errorf("%w: block %d has no transactions", ErrChainInvalid, b.Number)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash does match transactions", b.Number)

	hash, err := ComputeHash(b.Trans, b.PrevHash)
	if err != nil {
		return err
	}
	if b.Hash != hash {
		return fmt.Errorf("%w: block hash does not match transactions, got %s, exp %s", ErrChainInvalid, b.Hash, hash)
	}

	if previousBlock.Number > 0 {
		evHandler("database: ValidateBlock: validate: blk[%d]: check: block's timestamp is not before parent block's timestamp", b.Number)

		if b.TimeStamp.Before(previousBlock.TimeStamp) {
			return fmt.Errorf("%w: block timestamp is before parent block, parent %s, block %s", ErrChainInvalid, previousBlock.TimeStamp, b.TimeStamp)
		}
	}

	return nil
}

// =============================================================================

// BlockData represents what is written to the blocks table.
type BlockData struct {
	BlockID      uint64 `db:"block_id" json:"block_id"`
	BlockHash    string `db:"block_hash" json:"block_hash"`
	PreviousHash string `db:"previous_hash" json:"previous_hash"`
	TimeStamp    string `db:"timestamp" json:"timestamp"`
	Transactions string `db:"transactions" json:"transactions"`
}

// NewBlockData constructs the value to write to storage.
func NewBlockData(block Block) (BlockData, error) {
	trans, err := json.Marshal(block.Trans)
	if err != nil {
		return BlockData{}, fmt.Errorf("serializing transactions: %w", err)
	}

	bd := BlockData{
		BlockID:      block.Number,
		BlockHash:    block.Hash,
		PreviousHash: block.PrevHash,
		TimeStamp:    block.TimeStamp.Format(time.RFC3339Nano),
		Transactions: string(trans),
	}

	return bd, nil
}

// ToBlock converts a BlockData into a Block.
func ToBlock(blockData BlockData) (Block, error) {
	ts, err := time.Parse(time.RFC3339Nano, blockData.TimeStamp)
	if err != nil {
		return Block{}, fmt.Errorf("block %d: parsing timestamp: %w", blockData.BlockID, err)
	}

	var trans []Tx
	if err := json.Unmarshal([]byte(blockData.Transactions), &trans); err != nil {
		return Block{}, fmt.Errorf("block %d: parsing transactions: %w", blockData.BlockID, err)
	}

	b := Block{
		Number:    blockData.BlockID,
		Hash:      blockData.BlockHash,
		PrevHash:  blockData.PreviousHash,
		TimeStamp: ts.UTC(),
		Trans:     trans,
	}

	return b, nil
}
