package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/civicledger/civicledger/foundation/blockchain/database"
	"github.com/civicledger/civicledger/foundation/blockchain/digest"
)

// SubmitServiceRequest performs the controller node role. The shareable
// address is resolved to its profile and a transaction for the requested
// service is queued for the next block.
func (s *State) SubmitServiceRequest(ctx context.Context, address string, service string) (database.Tx, error) {
	s.evHandler("state: SubmitServiceRequest: controller verifying address[%s]", address)

	name, exists := s.services.Lookup(service)
	if !exists {
		return database.Tx{}, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}

	holder, err := s.directory.LookupAddress(ctx, address)
	if err != nil {
		if errors.Is(err, ErrUnknownAddress) {
			return database.Tx{}, err
		}
		return database.Tx{}, fmt.Errorf("looking up address: %w", err)
	}

	// The tick acts as the controller's clock so every request produces a
	// distinct nonce, even for the same address and service.
	tick := s.tick.Add(1)
	nonce := digest.Hash(address, name, strconv.FormatUint(tick, 10))

	tx := database.NewTx(address, holder.Name, holder.Phone, name, nonce, s.now())

	n, err := s.mempool.Push(tx)
	if err != nil {
		return database.Tx{}, err
	}

	s.evHandler("state: SubmitServiceRequest: nonce generated and transaction verified for %s: tx[%s]: queue[%d]", holder.Name, tx, n)

	// A full block is waiting so let the worker mine it.
	if s.autoMine && n >= s.blockSize && s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return tx, nil
}
