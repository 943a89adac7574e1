package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Werneck0live/cadastro-empresas-api/internal/admin"
	"github.com/Werneck0live/cadastro-empresas-api/internal/broker"
	"github.com/Werneck0live/cadastro-empresas-api/internal/cnpj"
	"github.com/Werneck0live/cadastro-empresas-api/internal/config"
	"github.com/Werneck0live/cadastro-empresas-api/internal/db"
	"github.com/Werneck0live/cadastro-empresas-api/internal/handlers"
	"github.com/Werneck0live/cadastro-empresas-api/internal/middleware"
	"github.com/Werneck0live/cadastro-empresas-api/internal/repository"
	"github.com/Werneck0live/cadastro-empresas-api/internal/service"
)

// cmd/api/main.go
func main() {
	task := flag.String("task", "", "admin task: seed | token")
	user := flag.String("user", "", "user id para -task token")
	ttl := flag.Duration("ttl", 24*time.Hour, "validade do token para -task token")
	flag.Parse()

	cfg, err := config.Load() // .env + ambiente
	if err != nil {
		slog.Error("config_error", "err", err)
		os.Exit(1)
	}

	// Logger JSON "global" - permite usar slog.Info/slog.Error/Warn em qualquer lugar
	log := config.InitLogger(cfg.LogLevel())
	ja := middleware.NewJWTAuth(cfg.JWTSecret)

	// HOOK: admin jobs (one-off)
	switch *task {
	case "":
	case "token":
		token, err := middleware.IssueToken(ja, *user, *ttl)
		if err != nil {
			log.Error("token_failed", "err", err)
			os.Exit(2)
		}
		fmt.Println(token)
		return
	case "seed":
		store, closeStore, err := openStore(cfg, log)
		if err != nil {
			log.Error("store_open_error", "driver", cfg.StoreDriver, "err", err)
			os.Exit(1)
		}
		defer closeStore()

		svc := service.NewCompanyService(store, nil, log)
		if _, err := admin.SeedCompanies(context.Background(), svc, log); err != nil {
			log.Error("seed_failed", "err", err)
			closeStore()
			os.Exit(1)
		}
		return // encerra o processo sem subir HTTP
	default:
		log.Error("unknown_admin_task", "task", *task)
		os.Exit(2)
	}

	log.Info("starting", "port", cfg.Port, "store", cfg.StoreDriver, "env", cfg.Env)

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Error("store_open_error", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	// publisher (Rabbit); sem ele a API funciona, só não emite eventos
	var pub service.Publisher
	if cfg.RabbitEnabled {
		p, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
		if err != nil {
			log.Warn("rabbitmq_unavailable", "err", err)
		} else {
			defer func() { _ = p.Close() }()
			pub = p
		}
	}

	var cache *cnpj.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		pctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pctx).Err(); err != nil {
			log.Warn("redis_unavailable", "addr", cfg.RedisAddr, "err", err)
		}
		cancel()
		cache = cnpj.NewCache(rdb, cfg.CNPJCacheTTL)
	}

	svc := service.NewCompanyService(store, pub, log)
	lookup := cnpj.NewService(cnpj.NewReceitaWSClient(cfg.CNPJAPIURL, cfg.CNPJTimeout, log), cache, log)

	router := handlers.NewRouter(handlers.RouterDeps{
		Companies:     handlers.NewCompanyHandler(svc, cfg.RequestTimeout),
		CNPJ:          handlers.NewCNPJHandler(lookup),
		JWTAuth:       ja,
		Logger:        log,
		CORSOrigins:   cfg.CORSOrigins,
		CNPJRateLimit: cfg.CNPJRateLimit,
		Production:    cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	// start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful_shutdown_error", "err", err)
	}
	log.Info("stopped")
}

// openStore escolhe o Store por STORE_DRIVER; o func devolvido libera a conexão.
func openStore(cfg *config.Config, log *slog.Logger) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		gdb, err := db.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		repo := repository.NewSQLCompanyRepository(gdb)
		if err := repo.Migrate(context.Background()); err != nil {
			closeFn()
			return nil, nil, err
		}
		return repo, closeFn, nil

	case config.DriverMemory:
		log.Warn("memory_store_in_use")
		return repository.NewMemoryRepository(), func() {}, nil

	default:
		client, err := db.NewMongoClient(cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		repo := repository.NewCompanyRepository(client.Database(cfg.MongoDB))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return repo, closeFn, nil
	}
}
