// Command migrate applies database schema migrations for the Thornwall
// command journal.
//
// Usage:
//
//	migrate -config configs/dev.yaml up
//	migrate -config configs/dev.yaml down
//	migrate -config configs/dev.yaml steps -n 1
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/greyhaven/thornwall/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	migrationsDir := flag.String("migrations", "migrations", "path to migration files")
	steps := flag.Int("n", 1, "number of steps for the steps command")
	flag.Parse()

	if flag.NArg() != 1 {
		return errors.New("expected exactly one command: up, down, or steps")
	}
	command := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	m, err := migrate.New("file://"+*migrationsDir, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			fmt.Fprintf(os.Stderr, "migrate: closing source: %v\n", srcErr)
		}
		if dbErr != nil {
			fmt.Fprintf(os.Stderr, "migrate: closing database: %v\n", dbErr)
		}
	}()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(*steps)
	default:
		return fmt.Errorf("unknown command %q: expected up, down, or steps", command)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("running %s: %w", command, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading version: %w", err)
	}
	fmt.Printf("migrations applied: version=%d dirty=%v\n", version, dirty)
	return nil
}
