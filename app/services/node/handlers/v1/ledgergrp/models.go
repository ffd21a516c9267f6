package ledgergrp

import (
	"time"

	"github.com/civicledger/civicledger/business/sys/validate"
	"github.com/civicledger/civicledger/foundation/blockchain/database"
)

// AppServiceRequest is what a client sends to request a service for the
// holder of a shareable address.
type AppServiceRequest struct {
	ShareableAddress string `json:"shareable_address" validate:"required"`
	Service          string `json:"service" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (app AppServiceRequest) Validate() error {
	return validate.Check(app)
}

type tx struct {
	ShareableAddress string `json:"shareable_address"`
	Name             string `json:"name"`
	PhoneNumber      string `json:"phone_number"`
	Service          string `json:"service"`
	Nonce            string `json:"nonce"`
	TimeStamp        string `json:"timestamp"`
}

func toTx(dbTx database.Tx) tx {
	return tx{
		ShareableAddress: dbTx.ShareableAddress,
		Name:             dbTx.Name,
		PhoneNumber:      dbTx.PhoneNumber,
		Service:          dbTx.Service,
		Nonce:            dbTx.Nonce,
		TimeStamp:        dbTx.TimeStamp.Format(time.RFC3339Nano),
	}
}

func toTxs(dbTxs []database.Tx) []tx {
	trans := make([]tx, len(dbTxs))
	for i, dbTx := range dbTxs {
		trans[i] = toTx(dbTx)
	}
	return trans
}

type block struct {
	Number       uint64 `json:"block_id"`
	Hash         string `json:"block_hash"`
	PrevHash     string `json:"previous_hash"`
	TimeStamp    string `json:"timestamp"`
	Transactions []tx   `json:"transactions"`
}

func toBlock(blk database.Block) block {
	return block{
		Number:       blk.Number,
		Hash:         blk.Hash,
		PrevHash:     blk.PrevHash,
		TimeStamp:    blk.TimeStamp.Format(time.RFC3339Nano),
		Transactions: toTxs(blk.Trans),
	}
}

func toBlocks(blks []database.Block) []block {
	blocks := make([]block, len(blks))
	for i, blk := range blks {
		blocks[i] = toBlock(blk)
	}
	return blocks
}

type requestResult struct {
	Status string `json:"status"`
	Tx     tx     `json:"transaction"`
	Queue  []tx   `json:"queue"`
}

type queue struct {
	BlockSize    int  `json:"block_size"`
	Transactions []tx `json:"transactions"`
}

type miningResult struct {
	Status      string  `json:"status"`
	Blocks      []block `json:"blocks"`
	QueueLength int     `json:"queue_length"`
}
