package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/nandanugg/hr-checkin/config"
)

func main() {
	var migrationsPath, command string
	flag.StringVar(&migrationsPath, "path", "migrations", "path to migrations directory")
	flag.StringVar(&command, "command", "up", "up, down or version")
	flag.Parse()

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), cfg.PostgresDSN)
	if err != nil {
		logger.Error("create migration instance", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			logger.Error("migration version", "error", verr)
			os.Exit(1)
		}
		logger.Info("migration version", "version", version, "dirty", dirty)
		return
	default:
		logger.Error("unknown command", "command", command)
		os.Exit(1)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("database is up to date")
		return
	}
	if err != nil {
		logger.Error("migrate "+command, "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied", "command", command)
}
