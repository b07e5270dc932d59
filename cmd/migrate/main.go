package main

import (
	"fmt"
	"os"
	"strconv"

	"backoffice/internal/config"
	"backoffice/internal/db"
	"backoffice/internal/logging"
)

const usage = "usage: migrate [up | down [steps]]"

func main() {
	logger := logging.New("console", "info")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var version uint
	switch cmd {
	case "up":
		version, err = db.Migrate(cfg.DatabaseURL, cfg.MigrationsDir)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 1 {
				fmt.Fprintln(os.Stderr, usage)
				os.Exit(2)
			}
		}
		version, err = db.MigrateDown(cfg.DatabaseURL, cfg.MigrationsDir, steps)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("command", cmd).Msg("migration failed")
	}
	logger.Info().Str("command", cmd).Uint("version", version).Str("dir", cfg.MigrationsDir).Msg("migrations applied")
}
