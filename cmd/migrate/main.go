package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/infrastructure/config"
	"github.com/clientportal/backend/internal/infrastructure/logger"
)

func main() {
	var (
		dir     = flag.String("dir", "migrations", "path to migration files")
		command = flag.String("command", "up", "migration command: up, down, force, version")
		steps   = flag.Int("steps", 0, "number of steps for up/down (0 = all)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	log, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	m, err := migrate.New("file://"+*dir, cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, *command, *steps, flag.Args(), log); err != nil {
		log.Fatal("migration failed", zap.String("command", *command), zap.Error(err))
	}
}

func run(m *migrate.Migrate, command string, steps int, args []string, log *zap.Logger) error {
	switch command {
	case "up":
		err := migrateSteps(m, steps, true)
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database is up to date")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info("migrations applied")
	case "down":
		err := migrateSteps(m, steps, false)
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("nothing to roll back")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info("migrations rolled back")
	case "force":
		if len(args) != 1 {
			return errors.New("force requires a version argument")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		if err := m.Force(version); err != nil {
			return err
		}
		log.Info("version forced", zap.Int("version", version))
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("current version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func migrateSteps(m *migrate.Migrate, steps int, up bool) error {
	if steps > 0 {
		if up {
			return m.Steps(steps)
		}
		return m.Steps(-steps)
	}
	if up {
		return m.Up()
	}
	return m.Down()
}
