package state

import (
	"context"

	"github.com/civicledger/civicledger/foundation/blockchain/database"
)

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryChainHeight returns the number of blocks in the chain.
func (s *State) QueryChainHeight() int {
	return s.db.Height()
}

// QueryBlocks returns every block by reading the chain from storage.
func (s *State) QueryBlocks(ctx context.Context) ([]database.Block, error) {
	return s.QueryBlocksByAddress(ctx, "")
}

// QueryBlocksByAddress returns the set of blocks holding a transaction for
// the shareable address. If the address is empty, all blocks are returned.
// This function reads the blockchain from storage.
func (s *State) QueryBlocksByAddress(ctx context.Context, address string) ([]database.Block, error) {
	var out []database.Block

	iter := s.db.ForEach(ctx)
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if address == "" {
			out = append(out, block)
			continue
		}

		for _, tx := range block.Trans {
			if tx.ShareableAddress == address {
				out = append(out, block)
				break
			}
		}
	}

	return out, nil
}

// VerifyChain walks the chain in storage and validates every block. The
// number of valid blocks is returned.
func (s *State) VerifyChain(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return database.Verify(ctx, s.storage, s.evHandler, nil)
}
