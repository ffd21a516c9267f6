package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicledger/civicledger/foundation/blockchain/database"
)

// MineNewBlock groups the oldest queued transactions into a new block and
// writes it to storage. The transactions leave the queue and the block
// becomes the latest block only after the write succeeds.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mineNewBlock(ctx)
}

// MineBlocks performs a mining run. Blocks are mined until the queue is
// empty or the configured number of rounds has been performed. The blocks
// mined before any error are returned along with the error.
func (s *State) MineBlocks(ctx context.Context) ([]database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: MineBlocks: MINING: started: queue[%d]", s.mempool.Count())
	defer s.evHandler("state: MineBlocks: MINING: completed")

	if s.mempool.Count() == 0 {
		return nil, ErrNoTransactions
	}

	var blocks []database.Block
	for range s.miningRounds {
		if s.mempool.Count() == 0 {
			break
		}

		block, err := s.mineNewBlock(ctx)
		if err != nil {
			return blocks, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// mineNewBlock performs one mining round. The caller must hold the lock.
func (s *State) mineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	trans := s.mempool.PickFirst(s.blockSize)

	s.evHandler("state: MineNewBlock: MINING: assemble block: txs[%d]", len(trans))

	block, err := database.NewBlock(s.db.LatestBlock(), trans, s.now())
	if err != nil {
		return database.Block{}, err
	}

	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: write to storage")

	block, err = s.db.Write(ctx, block)
	if err != nil {
		if errors.Is(err, database.ErrChainInvalid) {
			return database.Block{}, err
		}
		s.evHandler("state: MineNewBlock: MINING: ERROR: %s", err)
		return database.Block{}, fmt.Errorf("%w: %w", ErrSaveBlock, err)
	}

	s.evHandler("state: MineNewBlock: MINING: remove from mempool")

	for _, tx := range block.Trans {
		s.mempool.Delete(tx)
	}

	s.evHandler("state: MineNewBlock: MINING: block saved: blk[%d]: hash[%s]: prev[%s]", block.Number, block.Hash, block.PrevHash)

	return block, nil
}
