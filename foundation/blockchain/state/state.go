// Package state is the core API for the ledger and implements the controller
// node and miner business rules.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/civicledger/civicledger/foundation/blockchain/database"
	"github.com/civicledger/civicledger/foundation/blockchain/mempool"
	"github.com/civicledger/civicledger/foundation/nameservice"
)

// Default sizing for mining. A block holds at most five transactions and a
// mining run performs at most six rounds.
const (
	DefaultBlockSize    = 5
	DefaultMiningRounds = 6
)

// Set of error variables for the controller node and the miner.
var (
	ErrUnknownAddress = errors.New("shareable address not found")
	ErrUnknownService = errors.New("service not offered")
	ErrNoTransactions = errors.New("no transactions in the queue")
	ErrSaveBlock      = errors.New("database save error")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of requests and blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
}

// Holder represents the profile information copied into a transaction.
type Holder struct {
	Name  string
	Phone string
}

// Directory interface represents the behavior required to resolve a
// shareable address to the profile holder. Implementations return an error
// wrapping ErrUnknownAddress when the address is not registered.
type Directory interface {
	LookupAddress(ctx context.Context, address string) (Holder, error)
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Directory    Directory
	Storage      database.Storage
	Services     *nameservice.NameService
	BlockSize    int
	MiningRounds int
	AutoMine     bool
	EvHandler    EventHandler
}

// State manages the ledger.
type State struct {
	mu sync.Mutex

	blockSize    int
	miningRounds int
	autoMine     bool
	tick         atomic.Uint64
	evHandler    EventHandler
	now          func() time.Time

	directory Directory
	services  *nameservice.NameService
	mempool   *mempool.Mempool
	storage   database.Storage
	db        *database.Database

	Worker Worker
}

// New constructs a new ledger. Every block already in storage is read and
// validated so the in-memory chain matches what is stored.
func New(ctx context.Context, cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Directory == nil {
		return nil, errors.New("state requires a profile directory")
	}
	if cfg.Storage == nil {
		return nil, errors.New("state requires block storage")
	}

	services := cfg.Services
	if services == nil {
		ns, err := nameservice.New(nameservice.DefaultServices)
		if err != nil {
			return nil, err
		}
		services = ns
	}

	blockSize := cfg.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	miningRounds := cfg.MiningRounds
	if miningRounds <= 0 {
		miningRounds = DefaultMiningRounds
	}

	// Access the storage for the blockchain and rebuild the chain.
	db, err := database.New(ctx, cfg.Storage, ev)
	if err != nil {
		return nil, fmt.Errorf("loading blockchain: %w", err)
	}

	state := State{
		blockSize:    blockSize,
		miningRounds: miningRounds,
		autoMine:     cfg.AutoMine,
		evHandler:    ev,
		now:          time.Now,

		directory: cfg.Directory,
		services:  services,
		mempool:   mempool.New(),
		storage:   cfg.Storage,
		db:        db,
	}

	ev("state: New: chain loaded: height[%d]", db.Height())

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return s.db.Close()
}

// Truncate resets the chain both in storage and in memory and drops every
// queued transaction.
func (s *State) Truncate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mempool.Truncate()
	return s.db.Reset(ctx)
}
