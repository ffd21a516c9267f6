// Package sqlite implements the ability to read and write blocks to the
// blocks table of a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/civicledger/civicledger/foundation/blockchain/database"
	"github.com/jmoiron/sqlx"
)

// SQLite represents the serialization implementation for reading and storing
// blocks as rows in the blocks table. This implements the database.Storage
// interface. The schema is owned by the caller.
type SQLite struct {
	db *sqlx.DB
}

// New constructs a SQLite value for use.
func New(db *sqlx.DB) (*SQLite, error) {
	if db == nil {
		return nil, errors.New("sqlite storage requires a database connection")
	}

	return &SQLite{db: db}, nil
}

// Close in this implementation has nothing to do since the connection
// pool is owned by the caller.
func (s *SQLite) Close() error {
	return nil
}

// Write inserts the block as a new row. The autoincrement row id becomes
// the block number.
func (s *SQLite) Write(ctx context.Context, blockData database.BlockData) (uint64, error) {
	const q = `
	INSERT INTO blocks
		(block_hash, previous_hash, timestamp, transactions)
	VALUES
		(:block_hash, :previous_hash, :timestamp, :transactions)`

	res, err := s.db.NamedExecContext(ctx, q, blockData)
	if err != nil {
		return 0, fmt.Errorf("inserting block: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading block id: %w", err)
	}

	return uint64(id), nil
}

// GetBlock locates and returns the contents of the specified block by number.
func (s *SQLite) GetBlock(ctx context.Context, num uint64) (database.BlockData, error) {
	const q = `
	SELECT
		block_id, block_hash, previous_hash, timestamp, transactions
	FROM
		blocks
	WHERE
		block_id = ?`

	var blockData database.BlockData
	if err := s.db.GetContext(ctx, &blockData, q, num); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.BlockData{}, database.ErrNotFound
		}
		return database.BlockData{}, fmt.Errorf("selecting block %d: %w", num, err)
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// in block number order.
func (s *SQLite) ForEach(ctx context.Context) database.Iterator {
	return &sqliteIterator{ctx: ctx, storage: s}
}

// Reset will clear out the blocks table and restart the row ids.
func (s *SQLite) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks`); err != nil {
		return fmt.Errorf("deleting blocks: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'blocks'`); err != nil {
		return fmt.Errorf("resetting block ids: %w", err)
	}

	return tx.Commit()
}

// next returns the first block with a number greater than num.
func (s *SQLite) next(ctx context.Context, num uint64) (database.BlockData, error) {
	const q = `
	SELECT
		block_id, block_hash, previous_hash, timestamp, transactions
	FROM
		blocks
	WHERE
		block_id > ?
	ORDER BY
		block_id
	LIMIT 1`

	var blockData database.BlockData
	if err := s.db.GetContext(ctx, &blockData, q, num); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.BlockData{}, database.ErrNotFound
		}
		return database.BlockData{}, fmt.Errorf("selecting block after %d: %w", num, err)
	}

	return blockData, nil
}

// =============================================================================

// sqliteIterator represents the iteration implementation for walking
// through and reading blocks from the table. Row ids are not required to
// be contiguous. This implements the database Iterator interface.
type sqliteIterator struct {
	ctx     context.Context
	storage *SQLite
	current uint64 // Last block number returned.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from the table.
func (si *sqliteIterator) Next() (database.BlockData, error) {
	if si.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	blockData, err := si.storage.next(si.ctx, si.current)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			si.eoc = true
		}
		return database.BlockData{}, err
	}

	si.current = blockData.BlockID
	return blockData, nil
}

// Done returns the end of chain value.
func (si *sqliteIterator) Done() bool {
	return si.eoc
}
