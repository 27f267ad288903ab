package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logger"
	"storefront/internal/migrate"
)

func main() {
	v := config.NewViper()
	fs := pflag.NewFlagSet("migrate", pflag.ExitOnError)
	fs.String("dsn", v.GetString("DB_DSN"), "postgres connection string")
	down := fs.Bool("down", false, "revert the most recent migration")
	version := fs.Bool("version", false, "print the applied schema version and exit")
	_ = fs.Parse(os.Args[1:])
	_ = v.BindPFlag("DB_DSN", fs.Lookup("dsn"))
	cfg := config.Load(v)

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log = log.Named("migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Store.DSN, db.PoolConfig{MaxConns: 2})
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	switch {
	case *version:
		ver, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			log.Fatal("read schema version", zap.Error(err))
		}
		log.Info("schema version", zap.Uint("version", ver), zap.Bool("dirty", dirty))
	case *down:
		if err := migrate.Rollback(ctx, pool); err != nil {
			log.Fatal("rollback migration", zap.Error(err))
		}
		log.Info("migration rolled back")
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			log.Fatal("apply migrations", zap.Error(err))
		}
		log.Info("migrations applied")
	}
}
