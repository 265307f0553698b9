// migrate applies the embedded SQL migrations; run with go run ./cmd/migrate -direction up.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"bistro-boss/backend/internal/config"
	"bistro-boss/backend/internal/db/migrate"
	"bistro-boss/backend/internal/logger"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	lg, err := logger.New(cfg.ServiceName+"-migrate", cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		lg.Fatal("invalid_direction", zap.Error(err))
	}
	version, err := migrate.Run(cfg.DatabaseURL, dir)
	if err != nil {
		lg.Fatal("migrate_failed", zap.String("direction", string(dir)), zap.Error(err))
	}
	lg.Info("migrate_done", zap.String("direction", string(dir)), zap.Uint("version", version))
}
