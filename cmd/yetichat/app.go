package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-yetichat"
	"github.com/goliatone/go-yetichat/activitymap"
	"github.com/goliatone/go-yetichat/config"
	"github.com/goliatone/go-yetichat/logging"
	"github.com/goliatone/go-yetichat/provider/cometchat"
	"github.com/goliatone/go-yetichat/repository"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// app owns the single orchestrator instance for one command run
type app struct {
	cfg          *config.Config
	logger       *logging.Logger
	db           *bun.DB
	gateway      *yetichat.Gateway
	provisioner  *yetichat.Provisioner
	orchestrator *yetichat.Orchestrator
	unsubscribe  func()
}

func newApp(ctx context.Context, cfg *config.Config, logOutput io.Writer) (*app, error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Output: logOutput,
	})
	if err != nil {
		return nil, err
	}

	db, err := openSessionDB(ctx, cfg.SessionDSN)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	manager := repository.NewManager(db, repository.WithSlot(cfg.SessionSlot))
	if err := manager.Migrate(ctx); err != nil {
		_ = db.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	platform := cometchat.New(cometchat.Config{
		APIDomain:  cfg.APIDomain,
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: httpClient,
		Store:      manager.Sessions(),
	})

	gateway := yetichat.NewGateway(platform, yetichat.SettingsFromConfig(cfg)).
		WithLogger(logger.WithField("module", "gateway"))

	provisionerConfig := yetichat.ProvisionerConfigFromConfig(cfg)
	provisionerConfig.HTTPClient = httpClient
	provisionerConfig.SeedDelay = cfg.SeedDelay
	provisioner := yetichat.NewProvisioner(provisionerConfig).
		WithLogger(logger.WithField("module", "provisioning"))

	activityLogger := logger.WithField("module", "activity")
	sink := activitymap.NewSink(func(_ context.Context, record activitymap.Normalized) error {
		activityLogger.
			WithField("actor", record.ActorID).
			WithField("outcome", record.Metadata[activitymap.MetadataKeyOutcome]).
			Info("%s %s", record.Verb, record.ObjectID)
		return nil
	}, activitymap.WithActorFallback("cli"))

	orchestrator := yetichat.NewOrchestrator(gateway, provisioner).
		WithLogger(logger.WithField("module", "auth")).
		WithActivitySink(sink)

	stateLogger := logger.WithField("module", "state")
	unsubscribe := orchestrator.Subscribe(func(state yetichat.AuthState) {
		stateLogger.Debug("auth state: authenticated=%t loading=%t user=%s error=%q",
			state.IsAuthenticated, state.IsLoading, stateUID(state), state.Error)
	})

	return &app{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		gateway:      gateway,
		provisioner:  provisioner,
		orchestrator: orchestrator,
		unsubscribe:  unsubscribe,
	}, nil
}

func openSessionDB(ctx context.Context, dsn string) (*bun.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file::memory:?cache=shared"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return db, nil
}

// start connects the gateway and restores the stored session. The gateway is
// initialized first so the typed error reaches the exit code.
func (a *app) start(ctx context.Context) error {
	if err := a.gateway.Initialize(ctx); err != nil {
		return err
	}
	a.orchestrator.Initialize(ctx)
	if state := a.orchestrator.State(); state.HasError() {
		return fmt.Errorf("initialize: %s", state.Error)
	}
	return nil
}

func (a *app) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	var err error
	if a.db != nil {
		err = a.db.Close()
	}
	if cerr := a.logger.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func stateUID(state yetichat.AuthState) string {
	if state.User == nil {
		return "-"
	}
	return state.User.UID
}
