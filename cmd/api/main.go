package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/gateway"
	"storefront/internal/httpserver"
	"storefront/internal/logger"
	"storefront/internal/migrate"
	"storefront/internal/notify"
	sessrepo "storefront/internal/repository/session"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	svcsession "storefront/internal/service/session"
)

func main() {
	v := config.NewViper()
	fs := pflag.NewFlagSet("api", pflag.ExitOnError)
	fs.String("addr", v.GetString("HTTP_ADDR"), "HTTP listen address")
	fs.String("log-level", v.GetString("LOG_LEVEL"), "log level: debug, info, warn, error")
	fs.String("log-format", v.GetString("LOG_FORMAT"), "log format: console or json")
	fs.String("session-store", v.GetString("SESSION_STORE"), "session store: memory, postgres or redis")
	fs.StringSlice("cors-origin", nil, "allowed CORS origin (repeatable)")
	_ = fs.Parse(os.Args[1:])
	_ = v.BindPFlag("HTTP_ADDR", fs.Lookup("addr"))
	_ = v.BindPFlag("LOG_LEVEL", fs.Lookup("log-level"))
	_ = v.BindPFlag("LOG_FORMAT", fs.Lookup("log-format"))
	_ = v.BindPFlag("SESSION_STORE", fs.Lookup("session-store"))
	cfg := config.Load(v)
	if origins, _ := fs.GetStringSlice("cors-origin"); len(origins) > 0 {
		cfg.CORSOrigins = origins
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	gin.SetMode(gin.ReleaseMode)

	if cfg.Gateway.Endpoint == "" || cfg.Gateway.AccessToken == "" {
		log.Error("storefront gateway is not configured; gateway calls will fail",
			zap.Bool("endpoint_set", cfg.Gateway.Endpoint != ""),
			zap.Bool("access_token_set", cfg.Gateway.AccessToken != ""))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, pinger, closeStore, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("open session store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	gw := gateway.New(gateway.Config{
		Endpoint:        cfg.Gateway.Endpoint,
		AccessToken:     cfg.Gateway.AccessToken,
		Timeout:         cfg.Gateway.Timeout,
		BreakerFailures: uint32(max(cfg.Gateway.BreakerFailures, 0)),
		BreakerCooldown: cfg.Gateway.BreakerCooldown,
	}, log.Named("gateway"))

	banners := notify.NewQueue(cfg.Banner.AutoClose, cfg.Banner.ShortAutoClose)
	checkouts := checkout.New(gw, banners, log.Named("checkout"))
	sessions := svcsession.NewManager(gw, store, banners, log.Named("session"), cfg.SessionIdle)
	sessions.OnEvict(banners.Forget)
	sessions.OnEvict(checkouts.Forget)
	go sessions.Run(ctx, time.Minute)
	if pruner, ok := store.(sessrepo.Pruner); ok {
		go pruneStore(ctx, pruner, cfg.Store.TTL, log.Named("store"))
	}

	srv, err := httpserver.New(cfg.HTTPAddr, log, pinger, httpserver.Deps{
		Sessions:    sessions,
		Catalog:     catalog.New(gw),
		Checkout:    checkouts,
		Banners:     banners,
		CORSOrigins: cfg.CORSOrigins,
		Cookie: httpserver.CookieConfig{
			Name:   cfg.SessionCookie,
			MaxAge: cfg.Store.TTL,
			Secure: cfg.CookieSecure,
		},
	})
	if err != nil {
		log.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server error", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	} else {
		log.Info("server stopped")
	}
}

// pruneStore deletes session values older than ttl once an hour.
func pruneStore(ctx context.Context, p sessrepo.Pruner, ttl time.Duration, log *zap.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.Prune(ctx, time.Now().Add(-ttl))
			if err != nil {
				log.Warn("prune session store", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("pruned stale session values", zap.Int64("rows", n))
			}
		}
	}
}

// openStore connects the durable session store selected by cfg.Driver. The
// returned pinger is nil for the in-memory store.
func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (sessrepo.Store, httpserver.Pinger, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		log.Warn("using in-memory session store; sessions are lost on restart")
		return sessrepo.NewMemory(), nil, func() {}, nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DSN, db.PoolConfig{MaxConns: 10})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		return sessrepo.NewPostgres(pool), pool, pool.Close, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		ping := httpserver.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		return sessrepo.NewRedis(client, cfg.TTL), ping, func() { _ = client.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown session store %q", cfg.Driver)
	}
}
