// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/civicledger/civicledger/app/services/node/handlers/v1/ledgergrp"
	"github.com/civicledger/civicledger/app/services/node/handlers/v1/profilegrp"
	"github.com/civicledger/civicledger/business/core/profile"
	"github.com/civicledger/civicledger/foundation/blockchain/state"
	"github.com/civicledger/civicledger/foundation/events"
	"github.com/civicledger/civicledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	State   *state.State
	Profile *profile.Core
	Evts    *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	prf := profilegrp.Handlers{
		Profile: cfg.Profile,
	}

	app.Handle(http.MethodPost, version, "/profiles", prf.Create)
	app.Handle(http.MethodGet, version, "/profiles", prf.Query)
	app.Handle(http.MethodGet, version, "/profiles/:address", prf.QueryByAddress)

	lgr := ledgergrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", lgr.Events)
	app.Handle(http.MethodGet, version, "/services", lgr.Services)
	app.Handle(http.MethodPost, version, "/requests", lgr.SubmitRequest)
	app.Handle(http.MethodGet, version, "/tx/queue", lgr.Queue)
	app.Handle(http.MethodPost, version, "/mining/start", lgr.StartMining)
	app.Handle(http.MethodGet, version, "/blocks/list", lgr.BlocksByAddress)
	app.Handle(http.MethodGet, version, "/blocks/list/:address", lgr.BlocksByAddress)
}
