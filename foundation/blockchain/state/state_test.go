package state_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/civicledger/civicledger/foundation/blockchain/database"
	"github.com/civicledger/civicledger/foundation/blockchain/digest"
	"github.com/civicledger/civicledger/foundation/blockchain/state"
	"github.com/civicledger/civicledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

// directory is a fixed set of registered profiles.
type directory map[string]state.Holder

func (d directory) LookupAddress(ctx context.Context, address string) (state.Holder, error) {
	h, exists := d[address]
	if !exists {
		return state.Holder{}, fmt.Errorf("address %q: %w", address, state.ErrUnknownAddress)
	}
	return h, nil
}

// brokenStorage fails every write once broken is set.
type brokenStorage struct {
	*memory.Memory
	broken bool
}

func (bs *brokenStorage) Write(ctx context.Context, blockData database.BlockData) (uint64, error) {
	if bs.broken {
		return 0, errors.New("disk I/O error")
	}
	return bs.Memory.Write(ctx, blockData)
}

// worker counts the mining signals it receives.
type worker struct {
	signals int
}

func (w *worker) Shutdown()          {}
func (w *worker) SignalStartMining() { w.signals++ }

var (
	ada   = digest.Hash("Ada Lovelace", "5550100", "aB3dE5gH7jK9mN1p")
	grace = digest.Hash("Grace Hopper", "5550199", "Zx8Wv6Ut4Sr2Qp0o")
)

func newState(t *testing.T, strg database.Storage, autoMine bool) *state.State {
	t.Helper()

	dir := directory{
		ada:   {Name: "Ada Lovelace", Phone: "5550100"},
		grace: {Name: "Grace Hopper", Phone: "5550199"},
	}

	st, err := state.New(context.Background(), state.Config{
		Directory: dir,
		Storage:   strg,
		AutoMine:  autoMine,
		EvHandler: func(v string, args ...any) { t.Logf(v, args...) },
	})
	ifErrFailNow(t, err)

	return st
}

func submit(t *testing.T, st *state.State, n int) {
	t.Helper()

	for i := range n {
		addr := ada
		if i%2 == 1 {
			addr = grace
		}
		_, err := st.SubmitServiceRequest(context.Background(), addr, "Passport Renewal")
		ifErrFailNow(t, err)
	}
}

func TestSubmitServiceRequest(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to queue service requests.")
	{
		strg, err := memory.New()
		ifErrFailNow(t, err)
		st := newState(t, strg, false)

		t.Logf("\tTest 0:\tWhen handling a registered address.")
		{
			tx, err := st.SubmitServiceRequest(ctx, ada, "background check")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to submit a request: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to submit a request.", success)

			if tx.Name != "Ada Lovelace" || tx.PhoneNumber != "5550100" || tx.Service != "Background Check" {
				t.Fatalf("\t%s\tTest 0:\tShould copy the profile and catalog name: %+v", failed, tx)
			}
			t.Logf("\t%s\tTest 0:\tShould copy the profile and catalog name.", success)

			if !digest.IsHash(tx.Nonce) {
				t.Fatalf("\t%s\tTest 0:\tShould generate a hash nonce: %s", failed, tx.Nonce)
			}
			t.Logf("\t%s\tTest 0:\tShould generate a hash nonce.", success)

			again, err := st.SubmitServiceRequest(ctx, ada, "Background Check")
			ifErrFailNow(t, err)
			if again.Nonce == tx.Nonce {
				t.Fatalf("\t%s\tTest 0:\tShould generate a distinct nonce per request.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould generate a distinct nonce per request.", success)

			if st.QueryMempoolLength() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould have two queued transactions, got %d.", failed, st.QueryMempoolLength())
			}
			t.Logf("\t%s\tTest 0:\tShould have two queued transactions.", success)
		}

		t.Logf("\tTest 1:\tWhen handling an unknown address.")
		{
			_, err := st.SubmitServiceRequest(ctx, digest.Hash("nobody"), "Passport Renewal")
			if !errors.Is(err, state.ErrUnknownAddress) {
				t.Fatalf("\t%s\tTest 1:\tShould report the address is not found: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report the address is not found.", success)
		}

		t.Logf("\tTest 2:\tWhen handling an unknown service.")
		{
			_, err := st.SubmitServiceRequest(ctx, ada, "Dog Licence")
			if !errors.Is(err, state.ErrUnknownService) {
				t.Fatalf("\t%s\tTest 2:\tShould report the service is not offered: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould report the service is not offered.", success)

			if st.QueryMempoolLength() != 2 {
				t.Fatalf("\t%s\tTest 2:\tShould not queue failed requests.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not queue failed requests.", success)
		}
	}
}

func TestMineBlocks(t *testing.T) {
	ctx := context.Background()

	type table struct {
		name      string
		requests  int
		blocks    []int
		remaining int
	}

	tt := []table{
		{name: "single", requests: 1, blocks: []int{1}, remaining: 0},
		{name: "partial", requests: 12, blocks: []int{5, 5, 2}, remaining: 0},
		{name: "round budget", requests: 35, blocks: []int{5, 5, 5, 5, 5, 5}, remaining: 5},
	}

	t.Log("Given the need to mine queued transactions into blocks.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %d requests.", testID, tst.requests)
				{
					strg, err := memory.New()
					ifErrFailNow(t, err)
					st := newState(t, strg, false)

					submit(t, st, tst.requests)
					queued := st.RetrieveMempool()

					blocks, err := st.MineBlocks(ctx)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to mine.", success, testID)

					if len(blocks) != len(tst.blocks) {
						t.Fatalf("\t%s\tTest %d:\tShould mine %d blocks, got %d.", failed, testID, len(tst.blocks), len(blocks))
					}

					prevHash := digest.ZeroHash
					var next int
					for i, block := range blocks {
						if len(block.Trans) != tst.blocks[i] {
							t.Fatalf("\t%s\tTest %d:\tShould put %d transactions in block %d, got %d.", failed, testID, tst.blocks[i], i, len(block.Trans))
						}
						if block.PrevHash != prevHash {
							t.Fatalf("\t%s\tTest %d:\tShould link block %d to its parent.", failed, testID, i)
						}
						for _, tx := range block.Trans {
							if tx.Nonce != queued[next].Nonce {
								t.Fatalf("\t%s\tTest %d:\tShould mine transactions in arrival order.", failed, testID)
							}
							next++
						}
						prevHash = block.Hash
					}
					t.Logf("\t%s\tTest %d:\tShould mine linked blocks in arrival order.", success, testID)

					if st.QueryMempoolLength() != tst.remaining {
						t.Fatalf("\t%s\tTest %d:\tShould leave %d queued, got %d.", failed, testID, tst.remaining, st.QueryMempoolLength())
					}
					t.Logf("\t%s\tTest %d:\tShould leave %d queued.", success, testID, tst.remaining)

					stored, err := st.QueryBlocks(ctx)
					ifErrFailNow(t, err)
					if len(stored) != len(blocks) || stored[len(stored)-1].Hash != st.RetrieveLatestBlock().Hash {
						t.Fatalf("\t%s\tTest %d:\tShould match the stored chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould match the stored chain.", success, testID)

					n, err := st.VerifyChain(ctx)
					if err != nil || n != len(blocks) {
						t.Fatalf("\t%s\tTest %d:\tShould verify the chain: %d, %v", failed, testID, n, err)
					}
					t.Logf("\t%s\tTest %d:\tShould verify the chain.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestMineEmpty(t *testing.T) {
	t.Log("Given the need to refuse mining an empty queue.")
	{
		strg, err := memory.New()
		ifErrFailNow(t, err)
		st := newState(t, strg, false)

		if _, err := st.MineBlocks(context.Background()); !errors.Is(err, state.ErrNoTransactions) {
			t.Fatalf("\t%s\tShould report there are no transactions: %v", failed, err)
		}
		if _, err := st.MineNewBlock(context.Background()); !errors.Is(err, state.ErrNoTransactions) {
			t.Fatalf("\t%s\tShould report there are no transactions: %v", failed, err)
		}
		t.Logf("\t%s\tShould report there are no transactions.", success)
	}
}

func TestMineSaveError(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to keep memory and storage in step when a write fails.")
	{
		mem, err := memory.New()
		ifErrFailNow(t, err)
		strg := brokenStorage{Memory: mem}
		st := newState(t, &strg, false)

		submit(t, st, 7)

		first, err := st.MineNewBlock(ctx)
		ifErrFailNow(t, err)

		strg.broken = true

		blocks, err := st.MineBlocks(ctx)
		if !errors.Is(err, state.ErrSaveBlock) {
			t.Fatalf("\t%s\tShould report the database save error: %v", failed, err)
		}
		t.Logf("\t%s\tShould report the database save error: %v", success, err)

		if len(blocks) != 0 {
			t.Fatalf("\t%s\tShould not return unsaved blocks.", failed)
		}
		if st.QueryMempoolLength() != 2 {
			t.Fatalf("\t%s\tShould keep the transactions queued, got %d.", failed, st.QueryMempoolLength())
		}
		if st.RetrieveLatestBlock().Hash != first.Hash {
			t.Fatalf("\t%s\tShould keep the latest block.", failed)
		}
		t.Logf("\t%s\tShould keep the queue and latest block.", success)

		strg.broken = false

		blocks, err = st.MineBlocks(ctx)
		ifErrFailNow(t, err)
		if len(blocks) != 1 || blocks[0].PrevHash != first.Hash {
			t.Fatalf("\t%s\tShould mine the kept transactions after the store recovers.", failed)
		}
		t.Logf("\t%s\tShould mine the kept transactions after the store recovers.", success)
	}
}

func TestReload(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to rebuild the chain from storage.")
	{
		strg, err := memory.New()
		ifErrFailNow(t, err)

		st := newState(t, strg, false)
		submit(t, st, 9)
		_, err = st.MineBlocks(ctx)
		ifErrFailNow(t, err)

		again := newState(t, strg, false)
		if again.QueryChainHeight() != 2 || again.RetrieveLatestBlock().Hash != st.RetrieveLatestBlock().Hash {
			t.Fatalf("\t%s\tShould rebuild the same chain.", failed)
		}
		t.Logf("\t%s\tShould rebuild the same chain.", success)

		submit(t, again, 1)
		block, err := again.MineNewBlock(ctx)
		ifErrFailNow(t, err)
		if block.Number != 3 || block.PrevHash != st.RetrieveLatestBlock().Hash {
			t.Fatalf("\t%s\tShould extend the rebuilt chain.", failed)
		}
		t.Logf("\t%s\tShould extend the rebuilt chain.", success)

		blocks, err := again.QueryBlocksByAddress(ctx, grace)
		ifErrFailNow(t, err)
		if len(blocks) != 2 {
			t.Fatalf("\t%s\tShould find two blocks for the address, got %d.", failed, len(blocks))
		}
		t.Logf("\t%s\tShould find the blocks for an address.", success)

		if err := again.Truncate(ctx); err != nil {
			t.Fatalf("\t%s\tShould be able to truncate: %v", failed, err)
		}
		if again.QueryChainHeight() != 0 {
			t.Fatalf("\t%s\tShould be empty after truncate.", failed)
		}
		t.Logf("\t%s\tShould be empty after truncate.", success)
	}
}

func TestAutoMineSignal(t *testing.T) {
	t.Log("Given the need to signal the worker when a block is full.")
	{
		strg, err := memory.New()
		ifErrFailNow(t, err)

		st := newState(t, strg, true)
		w := worker{}
		st.Worker = &w

		submit(t, st, state.DefaultBlockSize-1)
		if w.signals != 0 {
			t.Fatalf("\t%s\tShould not signal before the block is full.", failed)
		}

		submit(t, st, 1)
		if w.signals != 1 {
			t.Fatalf("\t%s\tShould signal once the block is full, got %d.", failed, w.signals)
		}
		t.Logf("\t%s\tShould signal once the block is full.", success)
	}
}
