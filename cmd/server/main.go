package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/seed"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/idempotency"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/outbox"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL, pkgdb.Pool{
		MaxOpen: cfg.DBMaxOpenConns,
		MaxIdle: cfg.DBMaxIdleConns,
	})
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := repo.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	isolation, err := pkgdb.ParseIsolation(cfg.TxIsolation)
	if err != nil {
		log.Fatalf("tx isolation: %v", err)
	}

	if cfg.SeedData {
		if err := seed.Run(ctx, db, seed.Options{
			AdminUsername: cfg.AdminUsername,
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	r := &repo.GormRepo{DB: db}
	tx := &repo.GormTransactor{DB: db, Isolation: isolation, MaxRetries: cfg.TxMaxRetries}

	catalog := &service.CatalogService{Tx: tx, Catalog: r}
	if cfg.ElasticURL != "" {
		es, err := search.NewClient(ctx, search.Config{
			URL:      cfg.ElasticURL,
			User:     cfg.ElasticUser,
			Password: cfg.ElasticPassword,
		})
		if err != nil {
			logger.Warn("search disabled", "error", err)
		} else {
			ix := &search.Index{ES: es, Name: cfg.ElasticIndex}
			if err := ix.EnsureIndex(ctx); err != nil {
				logger.Warn("search index unavailable", "index", cfg.ElasticIndex, "error", err)
			} else {
				catalog.Index = ix
			}
		}
	}

	var checker idempotency.Checker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		checker = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CookieSecure
	csrfCfg.SkipPaths = []string{"/api/auth/login", "/api/auth/register", "/api/auth/refresh"}
	e.Use(csrf.Middleware(csrfCfg))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Users:         r,
				Tokens:        r,
				AccessSecret:  cfg.JWTAccessSecret,
				RefreshSecret: cfg.JWTRefreshSecret,
				AccessTTL:     cfg.AccessTokenTTL,
				RefreshTTL:    cfg.RefreshTokenTTL,
			},
			CookieSecure: cfg.CookieSecure,
		},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Tx: tx, Carts: r}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Tx: tx, Orders: r}},
		HealthHandler:  &httpserver.HealthHTTP{DB: db, Service: cfg.ServiceName, Version: version},
		JWTSecret:      cfg.JWTAccessSecret,
		Idempotency:    checker,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		writer := outbox.NewKafkaWriter(cfg.KafkaBrokers)
		defer writer.Close()

		hostname, _ := os.Hostname()
		relay := outbox.NewRelay(
			logger.With("component", "outbox"),
			&outbox.GormStore{DB: db, MaxAttempts: cfg.OutboxMaxAttempts},
			outbox.NewDispatcher(logger, writer),
			hostname+"-"+uuid.NewString()[:8],
			outbox.RelayOptions{
				BatchSize: cfg.OutboxBatchSize,
				Interval:  cfg.OutboxInterval,
				Lease:     cfg.OutboxLease,
			},
		)
		g.Go(func() error { return relay.Run(gctx) })
	} else {
		logger.Warn("KAFKA_BROKERS not set, outbox events stay pending")
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
