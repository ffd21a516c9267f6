// Package mempool maintains the queue of service requests waiting to be
// grouped into a block.
package mempool

import (
	"errors"
	"sync"

	"github.com/civicledger/civicledger/foundation/blockchain/database"
)

// ErrDuplicateNonce is returned when a transaction with the same nonce is
// already queued.
var ErrDuplicateNonce = errors.New("transaction with nonce already queued")

// Mempool represents a first in, first out queue of transactions. The nonce
// of each transaction is used as its key.
type Mempool struct {
	mu    sync.RWMutex
	queue []database.Tx
	keys  map[string]struct{}
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		keys: make(map[string]struct{}),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.queue)
}

// Push adds a transaction to the back of the queue and returns the new
// length of the queue.
func (mp *Mempool) Push(tx database.Tx) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.keys[tx.Nonce]; exists {
		return len(mp.queue), ErrDuplicateNonce
	}

	mp.keys[tx.Nonce] = struct{}{}
	mp.queue = append(mp.queue, tx)

	return len(mp.queue), nil
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(tx database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.keys[tx.Nonce]; !exists {
		return
	}

	delete(mp.keys, tx.Nonce)
	for i, qtx := range mp.queue {
		if qtx.Nonce == tx.Nonce {
			mp.queue = append(mp.queue[:i:i], mp.queue[i+1:]...)
			return
		}
	}
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.queue = nil
	mp.keys = make(map[string]struct{})
}

// PickFirst returns a copy of the oldest transactions in the queue without
// removing them. A value of -1 returns the entire queue.
func (mp *Mempool) PickFirst(howMany int) []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if howMany < 0 || howMany > len(mp.queue) {
		howMany = len(mp.queue)
	}

	trans := make([]database.Tx, howMany)
	copy(trans, mp.queue[:howMany])

	return trans
}

// Copy returns a copy of the entire queue in arrival order.
func (mp *Mempool) Copy() []database.Tx {
	return mp.PickFirst(-1)
}
