package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/config"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/payroll"
)

func main() {
	file := flag.String("file", "assets/payroll_config.yaml", "payroll configuration seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		slog.Error("failed to read seed file", "file", *file, "error", err)
		os.Exit(1)
	}

	entries, err := payrollService.ParseConfigSeed(data)
	if err != nil {
		slog.Error("invalid seed file", "file", *file, "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), 2)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	repo := postgresql.NewPayrollConfigRepository(db)

	var written int
	err = postgresql.WithTransaction(ctx, db, func(ctx context.Context) error {
		written, err = payrollService.SeedConfig(ctx, repo, entries)
		return err
	})
	if err != nil {
		slog.Error("seeding payroll configs failed", "written", written, "error", err)
		os.Exit(1)
	}

	slog.Info("payroll configs seeded", "file", *file, "entries", written)
}
