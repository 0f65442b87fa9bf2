package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/studytrack/internal/bridge"
	"github.com/at-ishikawa/studytrack/internal/config"
	"github.com/at-ishikawa/studytrack/internal/database"
	"github.com/at-ishikawa/studytrack/internal/datasync"
	"github.com/at-ishikawa/studytrack/internal/events"
	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/mastery"
	"github.com/at-ishikawa/studytrack/internal/review"
	"github.com/at-ishikawa/studytrack/internal/scheduling"
	"github.com/at-ishikawa/studytrack/internal/statistics"
	"github.com/at-ishikawa/studytrack/internal/store"
	"github.com/at-ishikawa/studytrack/internal/userstate"
	"github.com/at-ishikawa/studytrack/schemas"
)

const stateKeyPrefix = "studytrack:state:"

// Components is one engine instance built from the configuration.
type Components struct {
	Config *config.Config
	// Gateway is where the engine reads and writes. In the local deployment
	// it reads the SQLite store and sends writes through the coordinator.
	Gateway store.Gateway
	Remote  store.Gateway
	// Local is nil in the cloud deployment.
	Local       *store.DB
	Queue       datasync.Queue
	Coordinator datasync.Coordinator
	// Monitor is nil in the cloud deployment.
	Monitor *datasync.Monitor

	Scheduler  *scheduling.Scheduler
	Decisions  *events.Bus[mastery.DecisionNeeded]
	Machine    *mastery.Machine
	Engine     *gamification.Engine
	Service    *review.Service
	Aggregator *statistics.Aggregator
	Exporter   *datasync.Exporter

	closers []func() error
}

// Open connects the stores of the configured deployment and builds the engine on top of them.
func Open(ctx context.Context, cfg *config.Config) (*Components, error) {
	c := &Components{Config: cfg}
	if err := c.open(ctx); err != nil {
		if closeErr := c.Close(); closeErr != nil {
			slog.Default().Warn("failed to release resources", "error", closeErr)
		}
		return nil, err
	}
	return c, nil
}

func (c *Components) open(ctx context.Context) error {
	cfg := c.Config

	remote, remoteDB, err := c.openRemote()
	if err != nil {
		return err
	}
	c.Remote = remote

	// the database that answers timing aggregations with SQL
	aggregated := store.Gateway(remoteDB)
	if remoteDB == nil {
		aggregated = remote
	}

	switch cfg.Deployment {
	case config.DeploymentLocal:
		localDB, err := OpenLocal(ctx, cfg.Local.Path)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, localDB.Close)
		c.Local = store.NewDB(localDB)

		queue := datasync.NewSQLQueue(localDB)
		coordinator := datasync.NewQueueCoordinator(c.Local, remote, queue)
		if err := coordinator.Refresh(ctx); err != nil {
			return fmt.Errorf("coordinator.Refresh() > %w", err)
		}
		c.Queue = queue
		c.Coordinator = coordinator
		c.Gateway = datasync.NewGateway(c.Local, coordinator)
		monitorConfig := datasync.DefaultMonitorConfig()
		monitorConfig.Interval = cfg.Sync.ProbeInterval
		monitorConfig.Attempts = cfg.Sync.ProbeAttempts
		c.Monitor = datasync.NewMonitor(
			datasync.ResolverSignal{Host: cfg.Sync.OnlineCheckHost},
			remote,
			coordinator,
			monitorConfig,
		)
		aggregated = c.Local
	default:
		c.Coordinator = datasync.NewCloudCoordinator(remote)
		c.Gateway = remote
	}

	profiles := scheduling.DefaultProfiles()
	if cfg.Scheduling.ProfilesFile != "" {
		profiles, err = scheduling.LoadProfiles(cfg.Scheduling.ProfilesFile)
		if err != nil {
			return fmt.Errorf("scheduling.LoadProfiles() > %w", err)
		}
	}
	c.Scheduler = scheduling.NewScheduler(profiles)
	c.Decisions = events.NewBus[mastery.DecisionNeeded]()
	c.Machine = mastery.NewMachine(cfg.Scheduling.MasteryThreshold, c.Scheduler, c.Decisions)

	state, err := c.openState(ctx)
	if err != nil {
		return err
	}
	c.Engine = gamification.NewEngine(c.Gateway, c.Scheduler, state, gamification.Config{
		BasePoints:  cfg.Gamification.BasePoints,
		ComboWindow: cfg.Gamification.ComboWindow,
		Curve:       gamification.Curve{Base: cfg.Gamification.ExperienceBase, Growth: cfg.Gamification.ExperienceGrowth},
		Location:    cfg.Location(),
	})
	c.Service = review.NewService(c.Gateway, c.Scheduler, c.Machine, c.Engine)
	c.Aggregator = statistics.NewAggregator(aggregated)
	c.Exporter = datasync.NewExporter(c.Gateway, c.Queue)
	return nil
}

// openRemote returns the source of truth. remoteDB is set when it is reached directly.
func (c *Components) openRemote() (store.Gateway, *store.DB, error) {
	cfg := c.Config
	if cfg.Gateway == config.GatewayBridge {
		client := bridge.NewClient(cfg.Bridge.URL, cfg.Bridge.Timeout)
		c.closers = append(c.closers, client.Close)
		return client, nil, nil
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	c.closers = append(c.closers, db.Close)
	remote := store.NewDB(db)
	return remote, remote, nil
}

func (c *Components) openState(ctx context.Context) (userstate.Store[gamification.UserState], error) {
	cfg := c.Config.Cache
	local := userstate.NewMemory[gamification.UserState](cfg.TTL)
	if cfg.RedisURL == "" {
		return local, nil
	}
	client, err := userstate.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("userstate.NewRedisClient() > %w", err)
	}
	c.closers = append(c.closers, client.Close)
	shared := userstate.NewRedis[gamification.UserState](client, stateKeyPrefix, cfg.TTL)
	return userstate.NewTiered[gamification.UserState](local, shared), nil
}

// Close releases connections in reverse order of opening.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// OpenLocal opens the local SQLite database at path and brings its schema up to date.
func OpenLocal(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
		}
	}
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("database.OpenSQLite() > %w", err)
	}
	applied, err := database.Migrate(ctx, db, schemas.Migrations, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database.Migrate() > %w", err)
	}
	if len(applied) > 0 {
		slog.Default().Info("migrated the local database", "path", path, "migrations", applied)
	}
	return db, nil
}
