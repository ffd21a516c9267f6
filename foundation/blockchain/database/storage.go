package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned by storage when the requested block does not exist.
var ErrNotFound = errors.New("block not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(ctx context.Context, blockData BlockData) (uint64, error)
	GetBlock(ctx context.Context, num uint64) (BlockData, error)
	ForEach(ctx context.Context) Iterator
	Close() error
	Reset(ctx context.Context) error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}
