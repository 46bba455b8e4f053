package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/tilecombat/internal/config"
	"github.com/udisondev/tilecombat/internal/data"
	"github.com/udisondev/tilecombat/internal/db"
	"github.com/udisondev/tilecombat/internal/script"
)

const ConfigPath = "config/combatsim.yaml"

func main() {
	importDefs := flag.Bool("import", false, "copy YAML definitions into the database and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *importDefs); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, importDefs bool) error {
	cfg, err := config.Load(config.Path(ConfigPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("combatsim starting", "log_level", cfg.LogLevel, "source", cfg.Source)

	if importDefs {
		return importDefinitions(ctx, cfg)
	}

	host := script.NewHost(cfg.ScriptTimeout)
	defer host.Close()

	var cat *data.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := host.LoadDir(cfg.ScriptsDir)
		if err != nil {
			return fmt.Errorf("loading scripts: %w", err)
		}
		slog.Info("scripts loaded", "count", n)
		return nil
	})
	g.Go(func() error {
		var err error
		cat, err = loadCatalog(gctx, cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	arena, err := newArena(cfg.Demo, cat)
	if err != nil {
		return fmt.Errorf("building arena: %w", err)
	}

	combats, err := data.Builder{
		World:      arena.m,
		Host:       host,
		Conditions: newCondition,
	}.BuildAll(cat)
	if err != nil {
		return fmt.Errorf("building combats: %w", err)
	}
	slog.Info("combats built", "count", len(combats))

	return arena.castAll(ctx, combats)
}

// loadCatalog reads definitions from the configured source.
func loadCatalog(ctx context.Context, cfg config.Config) (*data.Catalog, error) {
	if cfg.Source == config.SourceYAML {
		cat, err := data.LoadDir(ctx, cfg.DefinitionsDir)
		if err != nil {
			return nil, fmt.Errorf("loading definitions: %w", err)
		}
		return cat, nil
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	cat, err := database.Definitions().LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading definitions: %w", err)
	}
	slog.Info("definitions loaded from database", "combats", cat.Len(), "fields", len(cat.Fields()))
	return cat, nil
}

func importDefinitions(ctx context.Context, cfg config.Config) error {
	cat, err := data.LoadDir(ctx, cfg.DefinitionsDir)
	if err != nil {
		return fmt.Errorf("loading definitions: %w", err)
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Definitions().Import(ctx, cat); err != nil {
		return fmt.Errorf("importing definitions: %w", err)
	}
	slog.Info("definitions imported", "combats", cat.Len(), "fields", len(cat.Fields()))
	return nil
}

func openDatabase(ctx context.Context, cfg config.Config) (*db.DB, error) {
	dsn := cfg.Database.DSN()
	if err := db.RunMigrations(ctx, dsn); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected")
	return database, nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
