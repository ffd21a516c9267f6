// Package ledgergrp maintains the group of handlers for service requests,
// mining and the block viewer.
package ledgergrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/civicledger/civicledger/business/sys/validate"
	"github.com/civicledger/civicledger/business/web/errs"
	"github.com/civicledger/civicledger/foundation/blockchain/state"
	"github.com/civicledger/civicledger/foundation/events"
	"github.com/civicledger/civicledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client. The topic
// query parameter, repeatable, limits the events to those topics.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch, err := h.Evts.Acquire(v.TraceID, r.URL.Query()["topic"]...)
	if err != nil {
		return err
	}
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Services returns the catalog of services a request can be made for.
func (h Handlers) Services(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveServices(), http.StatusOK)
}

// SubmitRequest performs the controller node role for a service request.
func (h Handlers) SubmitRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app AppServiceRequest
	if err := web.Decode(r, &app); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("service request", "traceid", v.TraceID, "shareable_address", app.ShareableAddress, "service", app.Service)

	dbTx, err := h.State.SubmitServiceRequest(ctx, app.ShareableAddress, app.Service)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrUnknownAddress):
			return errs.NewTrusted(err, http.StatusNotFound)
		case errors.Is(err, state.ErrUnknownService):
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("service request: %w", err)
	}

	resp := requestResult{
		Status: fmt.Sprintf("nonce generated and transaction verified for %s", dbTx.Name),
		Tx:     toTx(dbTx),
		Queue:  toTxs(h.State.RetrieveMempool()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Queue returns the transactions waiting to be mined in arrival order.
func (h Handlers) Queue(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := queue{
		BlockSize:    h.State.RetrieveBlockSize(),
		Transactions: toTxs(h.State.RetrieveMempool()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// StartMining performs a mining run over the queued transactions.
func (h Handlers) StartMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.State.MineBlocks(ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, state.ErrSaveBlock):
			return errs.NewTrusted(err, http.StatusInternalServerError)
		}
		return fmt.Errorf("mining: %w", err)
	}

	resp := miningResult{
		Status:      fmt.Sprintf("mined %d blocks", len(blocks)),
		Blocks:      toBlocks(blocks),
		QueueLength: h.State.QueryMempoolLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByAddress returns the blocks from storage. When an address is
// provided only the blocks holding a transaction for it are returned.
func (h Handlers) BlocksByAddress(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	dbBlocks, err := h.State.QueryBlocksByAddress(ctx, address)
	if err != nil {
		return fmt.Errorf("blocks: address[%s]: %w", address, err)
	}

	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toBlocks(dbBlocks), http.StatusOK)
}
