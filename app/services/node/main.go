package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/civicledger/civicledger/app/services/node/handlers"
	"github.com/civicledger/civicledger/business/core/profile"
	"github.com/civicledger/civicledger/business/core/profile/stores/profiledb"
	"github.com/civicledger/civicledger/business/sys/database"
	"github.com/civicledger/civicledger/business/sys/metrics"
	"github.com/civicledger/civicledger/foundation/blockchain/state"
	"github.com/civicledger/civicledger/foundation/blockchain/storage/sqlite"
	"github.com/civicledger/civicledger/foundation/blockchain/worker"
	"github.com/civicledger/civicledger/foundation/events"
	"github.com/civicledger/civicledger/foundation/logger"
	"github.com/civicledger/civicledger/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CORSOrigin      string        `conf:"default:*"`
		}
		DB struct {
			ProfilesPath string `conf:"default:zblock/profiles.db"`
			BlocksPath   string `conf:"default:zblock/blocks.db"`
			MaxOpenConns int    `conf:"default:1"`
		}
		State struct {
			BlockSize    int           `conf:"default:5"`
			MiningRounds int           `conf:"default:6"`
			MineInterval time.Duration `conf:"default:0s"`
			AutoMine     bool          `conf:"default:false"`
			Services     []string      `conf:"default:Passport Renewal;Scholarship Application;Medical Record Access;Background Check;Electricity Bill Payment"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "civic profile registry and service request ledger",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Database Support

	log.Infow("startup", "status", "initializing database support", "profiles", cfg.DB.ProfilesPath, "blocks", cfg.DB.BlocksPath)

	profileDB, err := database.Open(database.Config{
		Path:         cfg.DB.ProfilesPath,
		MaxOpenConns: cfg.DB.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to profiles db: %w", err)
	}
	defer func() {
		log.Infow("shutdown", "status", "stopping profiles database support")
		profileDB.Close()
	}()

	blockDB, err := database.Open(database.Config{
		Path:         cfg.DB.BlocksPath,
		MaxOpenConns: cfg.DB.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to blocks db: %w", err)
	}
	defer func() {
		log.Infow("shutdown", "status", "stopping blocks database support")
		blockDB.Close()
	}()

	if err := database.Migrate(profileDB, database.ProfilesSchema); err != nil {
		return fmt.Errorf("migrating profiles db: %w", err)
	}
	if err := database.Migrate(blockDB, database.BlocksSchema); err != nil {
		return fmt.Errorf("migrating blocks db: %w", err)
	}

	// =========================================================================
	// Name Service Support

	// The nameservice package provides the catalog of services a request
	// can be made for.
	ns, err := nameservice.New(cfg.State.Services)
	if err != nil {
		return fmt.Errorf("unable to load service catalog: %w", err)
	}

	for _, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "service", name)
	}

	// =========================================================================
	// Ledger Support

	prfCore := profile.NewCore(log, profiledb.NewStore(log, profileDB))

	strg, err := sqlite.New(blockDB)
	if err != nil {
		return err
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. For now, these raw messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the controller node and the miner. The
	// chain is read back from the blocks table and validated here.
	st, err := state.New(context.Background(), state.Config{
		Directory:    prfCore,
		Storage:      strg,
		Services:     ns,
		BlockSize:    cfg.State.BlockSize,
		MiningRounds: cfg.State.MiningRounds,
		AutoMine:     cfg.State.AutoMine,
		EvHandler:    ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker package implements background mining. The worker will
	// register itself with the state.
	worker.Run(st, cfg.State.MineInterval, ev)

	// =========================================================================
	// Metrics Support

	m, err := metrics.New(
		metrics.NewChainCollector(st),
		metrics.NewProfileCountCollector(profileDB.DB),
	)
	if err != nil {
		return fmt.Errorf("constructing metrics: %w", err)
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(handlers.DebugConfig{
		Build:     build,
		Log:       log,
		Metrics:   m,
		ProfileDB: profileDB,
		BlockDB:   blockDB,
	})

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:   shutdown,
		Log:        log,
		Metrics:    m,
		State:      st,
		Profile:    prfCore,
		Evts:       evts,
		CORSOrigin: cfg.Web.CORSOrigin,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
