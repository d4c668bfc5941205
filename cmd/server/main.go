package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/neu-cs4530/team-project-6l/internal/config"
	persistlog "github.com/neu-cs4530/team-project-6l/internal/persistence/log"
	"github.com/neu-cs4530/team-project-6l/internal/profile"
	profilemem "github.com/neu-cs4530/team-project-6l/internal/profile/memory"
	"github.com/neu-cs4530/team-project-6l/internal/profile/sqlitedir"
	"github.com/neu-cs4530/team-project-6l/internal/registry"
	"github.com/neu-cs4530/team-project-6l/internal/town"
	"github.com/neu-cs4530/team-project-6l/internal/transport/api"
	"github.com/neu-cs4530/team-project-6l/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		configPath = flag.String("config", "", "path to config.yaml")
		dataDir    = flag.String("data", "", "event journal directory (overrides config)")
		profilesDB = flag.String("profiles", "", "sqlite profile directory path (overrides config)")
		logFile    = flag.String("log_file", "", "rotating log file path (overrides config; empty logs to stdout)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := zap.Must(zap.NewProduction()).Sugar()
		fallback.Fatalw("load config", "path", *configPath, "error", err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *profilesDB != "" {
		cfg.ProfilesDB = *profilesDB
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	logger, syncLogger := newLogger(cfg.LogFile)
	defer syncLogger()

	ctx, cancel := signalContext()
	defer cancel()

	// Profile directory: sqlite when configured, permissive in-memory
	// otherwise (any username resolves; useful for local development).
	var resolver profile.Resolver
	if strings.TrimSpace(cfg.ProfilesDB) != "" {
		dir, err := sqlitedir.Open(cfg.ProfilesDB)
		if err != nil {
			logger.Fatalw("open profile directory", "path", cfg.ProfilesDB, "error", err)
		}
		defer dir.Close()
		resolver = dir
		logger.Infow("profile directory", "path", cfg.ProfilesDB)
	} else {
		resolver = profilemem.NewPermissive()
		logger.Warnw("no profiles_db configured; resolving all usernames permissively")
	}

	// Per-town event journals, when a data dir is configured. Towns are
	// created from concurrent HTTP handlers, so the close list is locked.
	var newJournal registry.EventLoggerFactory
	var journalMu sync.Mutex
	var journals []*persistlog.EventJournal
	if strings.TrimSpace(cfg.DataDir) != "" {
		newJournal = func(townID string) town.EventLogger {
			j := persistlog.NewEventJournal(filepath.Join(cfg.DataDir, "towns", townID))
			journalMu.Lock()
			journals = append(journals, j)
			journalMu.Unlock()
			return j
		}
	}

	reg := registry.New(ctx, registry.Config{
		Spawn:        cfg.SpawnLocation(),
		SessionQueue: cfg.SessionQueue,
		InboxSize:    cfg.InboxSize,
	}, newJournal, logger)
	// Journals close after every town loop has stopped.
	defer func() {
		journalMu.Lock()
		defer journalMu.Unlock()
		for _, j := range journals {
			_ = j.Close()
		}
	}()
	defer reg.Close()

	if cfg.DemoTownID != "" {
		if _, err := reg.CreateTownWithID(cfg.DemoTownID, cfg.DemoTownName, true); err != nil {
			logger.Fatalw("create demo town", "town_id", cfg.DemoTownID, "error", err)
		}
		logger.Infow("demo town ready", "town_id", cfg.DemoTownID)
	}

	apiServer := api.NewServer(reg, logger)
	wsServer := ws.NewServer(reg, resolver, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	mux.Handle("/", apiServer.Router())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Infow("server started", "addr", cfg.ListenAddr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(shutdownCtx)
	}

	logger.Infow("server stopped")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
