// Package handlers manages the different versions of the API.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/civicledger/civicledger/app/services/node/handlers/debug/checkgrp"
	v1 "github.com/civicledger/civicledger/app/services/node/handlers/v1"
	"github.com/civicledger/civicledger/app/services/node/handlers/viewgrp"
	"github.com/civicledger/civicledger/business/core/profile"
	"github.com/civicledger/civicledger/business/sys/metrics"
	"github.com/civicledger/civicledger/business/web/mid"
	"github.com/civicledger/civicledger/foundation/blockchain/state"
	"github.com/civicledger/civicledger/foundation/events"
	"github.com/civicledger/civicledger/foundation/web"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown   chan os.Signal
	Log        *zap.SugaredLogger
	Metrics    *metrics.Metrics
	State      *state.State
	Profile    *profile.Core
	Evts       *events.Events
	CORSOrigin string
}

// PublicMux constructs a http.Handler with all application routes defined.
func PublicMux(cfg MuxConfig) http.Handler {
	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(cfg.Metrics),
		mid.Cors(origin),
		mid.Panics(cfg.Metrics),
	)

	// Accept CORS 'OPTIONS' preflight requests.
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}
	app.Handle(http.MethodOptions, "", "/*", h)

	// The block viewer page.
	app.Handle(http.MethodGet, "", "/", viewgrp.Index)

	// Load the v1 routes.
	v1.Routes(app, v1.Config{
		Log:     cfg.Log,
		State:   cfg.State,
		Profile: cfg.Profile,
		Evts:    cfg.Evts,
	})

	return app
}

// DebugStandardLibraryMux registers all the debug routes from the standard library
// into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugConfig contains the systems the debug routes report on.
type DebugConfig struct {
	Build     string
	Log       *zap.SugaredLogger
	Metrics   *metrics.Metrics
	ProfileDB *sqlx.DB
	BlockDB   *sqlx.DB
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service. This bypassing the use of the
// DefaultServerMux. Using the DefaultServerMux would be a security risk since
// a dependency could inject a handler into our service without us knowing it.
func DebugMux(cfg DebugConfig) http.Handler {
	mux := DebugStandardLibraryMux()

	mux.Handle("/metrics", cfg.Metrics.Handler())

	// Register debug check endpoints.
	cgh := checkgrp.Handlers{
		Build:     cfg.Build,
		Log:       cfg.Log,
		ProfileDB: cfg.ProfileDB,
		BlockDB:   cfg.BlockDB,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
