// Package main provides the development host: a terminal console standing in
// for the virtual tabletop, wired to the trait registry, the macro service,
// and the configured command storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cod/internal/config"
	"github.com/cory-johannsen/cod/internal/console"
	"github.com/cory-johannsen/cod/internal/game/actor"
	"github.com/cory-johannsen/cod/internal/game/dice"
	"github.com/cory-johannsen/cod/internal/game/macro"
	"github.com/cory-johannsen/cod/internal/game/trait"
	"github.com/cory-johannsen/cod/internal/notify"
	"github.com/cory-johannsen/cod/internal/observability"
	"github.com/cory-johannsen/cod/internal/server"
	"github.com/cory-johannsen/cod/internal/storage/memory"
	"github.com/cory-johannsen/cod/internal/storage/postgres"
	"github.com/cory-johannsen/cod/internal/storage/sqlite"
)

// hotbarStore is a hotbar the console can also read back.
type hotbarStore interface {
	macro.Hotbar
	console.HotbarReader
}

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	rosterPath := flag.String("roster", "configs/roster.yaml", "path to actor roster YAML")
	flag.Parse()

	if err := run(context.Background(), *configPath, *rosterPath, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("dev host: %v", err)
	}
}

// run wires the dev host and serves the console on in until quit, EOF, or a
// shutdown signal. Storage and log sinks are released before it returns.
func run(ctx context.Context, configPath, rosterPath string, in io.Reader, out io.Writer) error {
	start := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "devhost")
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	registry, err := loadTraits(cfg.Rules)
	if err != nil {
		logger.Error("loading trait tables", zap.Error(err))
		return fmt.Errorf("loading trait tables: %w", err)
	}
	logger.Info("trait tables loaded",
		zap.Int("attributes", len(registry.Attributes())),
		zap.Int("skills", len(registry.Skills())),
		zap.Int("attacks", len(registry.Attacks())),
		zap.String("locale", registry.Locale()),
	)

	printer, err := notify.NewPrinter(cfg.Rules.Locale)
	if err != nil {
		logger.Error("building notification catalog", zap.Error(err))
		return fmt.Errorf("building notification catalog: %w", err)
	}

	library, hotbar, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("opening storage", zap.Error(err))
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		closeStore()
		logger.Info("storage closed", zap.String("driver", cfg.Storage.Driver))
	}()

	pools := actor.NewPoolRoller(registry, dice.NewLoggedRoller(dice.NewCryptoSource(), logger))
	directory := actor.NewDirectory()
	if err := actor.LoadRosterFile(rosterPath, pools, directory); err != nil {
		logger.Error("loading roster", zap.Error(err))
		return fmt.Errorf("loading roster: %w", err)
	}

	outbox := notify.NewOutbox()
	svc := macro.NewService(library, hotbar, directory, notify.NewLogNotifier(logger, outbox), printer, logger)
	dispatcher := macro.NewDispatcher()
	if err := svc.RegisterRoutines(dispatcher); err != nil {
		logger.Error("registering command routines", zap.Error(err))
		return fmt.Errorf("registering command routines: %w", err)
	}

	con := console.New(console.Host{
		Service:    svc,
		Dispatcher: dispatcher,
		Hotbar:     hotbar,
		Directory:  directory,
		Pools:      pools,
		Traits:     registry,
		Outbox:     outbox,
	}, out, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("console", server.ServiceFunc(func(ctx context.Context) error {
		return con.Serve(ctx, in)
	}))

	logger.Info("dev host initialized",
		zap.String("storage", cfg.Storage.Driver),
		zap.Int("actors", len(directory.All())),
		zap.Duration("startup", time.Since(start)),
	)
	fmt.Fprintln(out, "type help for commands")

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("dev host error", zap.Error(err))
		return err
	}
	return nil
}

func loadTraits(rules config.RulesConfig) (*trait.Registry, error) {
	if rules.TraitsFile == "" {
		return trait.DefaultRegistry(), nil
	}
	return trait.LoadFile(rules.TraitsFile)
}

// openStorage returns the command library and hotbar for cfg.Storage.Driver
// and a function releasing them.
func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (macro.Library, hotbarStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
		store, err := sqlite.Open(cfg.Storage.SQLitePath, cfg.Hotbar.Slots)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("sqlite storage opened", zap.String("path", cfg.Storage.SQLitePath))
		return store, store, func() { _ = store.Close() }, nil

	case config.DriverPostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("database health check: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return postgres.NewMacroRepository(pool.DB()),
			postgres.NewHotbarRepository(pool.DB(), cfg.Hotbar.Slots),
			pool.Close, nil

	default:
		return memory.NewLibrary(), memory.NewHotbar(cfg.Hotbar.Slots), func() {}, nil
	}
}
