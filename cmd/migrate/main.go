package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/pkg/config"
	"github.com/noah-isme/campus2career-api/pkg/database"
	"github.com/noah-isme/campus2career-api/pkg/logger"
)

func main() {
	var (
		list    bool
		timeout time.Duration
	)
	pflag.BoolVarP(&list, "list", "l", false, "print the embedded migrations and exit")
	pflag.DurationVarP(&timeout, "timeout", "t", 2*time.Minute, "upper bound for applying all migrations")
	pflag.Parse()

	if list {
		migrations, err := database.Migrations()
		if err != nil {
			log.Fatalf("failed to read migrations: %v", err)
		}
		for _, m := range migrations {
			fmt.Fprintln(os.Stdout, m.Version)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	applied, err := database.Migrate(ctx, db, logr)
	if err != nil {
		logr.Fatal("migration failed", zap.Strings("applied", applied), zap.Error(err))
	}
	logr.Info("database is up to date", zap.Int("applied", len(applied)))
}
