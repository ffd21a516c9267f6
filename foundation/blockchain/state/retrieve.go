package state

import (
	"github.com/civicledger/civicledger/foundation/blockchain/database"
)

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the queued transactions in arrival order.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveServices returns the catalog of services requests can be made for.
func (s *State) RetrieveServices() []string {
	return s.services.Copy()
}

// RetrieveBlockSize returns the maximum number of transactions in a block.
func (s *State) RetrieveBlockSize() int {
	return s.blockSize
}
