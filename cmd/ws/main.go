package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Werneck0live/cadastro-empresas-api/internal/broker"
	"github.com/Werneck0live/cadastro-empresas-api/internal/config"
	"github.com/Werneck0live/cadastro-empresas-api/internal/handlers"
	"github.com/Werneck0live/cadastro-empresas-api/internal/ws"
)

func main() {
	wscfg, err := config.LoadWSConfig()
	if err != nil {
		slog.Error("config_error", "err", err)
		os.Exit(1)
	}

	_ = config.InitLogger(wscfg.LogLevel())
	log := slog.Default().With("svc", "ws")
	hub := ws.NewHub(log)
	go hub.Run()

	// Conecta no Rabbit e começa a consumir
	consumer, err := broker.NewConsumer(wscfg.RabbitURI, wscfg.RabbitQueue, wscfg.ConsumerPrefetch)
	if err != nil {
		log.Error("rabbit_consumer_start_error", "err", err)
		os.Exit(1)
	}
	defer func() { _ = consumer.Close() }()

	deliveries, err := consumer.Deliveries("ws-consumer")
	if err != nil {
		log.Error("rabbit_consume_error", "err", err)
		os.Exit(1)
	}
	log.Info("rabbit_consumer_started", "queue", wscfg.RabbitQueue)

	// encaminha mensagens do Rabbit para o hub
	go func() {
		for d := range deliveries {
			hub.Broadcast(d.Body)
		}
		log.Warn("deliveries_channel_closed")
	}()

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Get("/healthz", handlers.Health)
	r.Get("/ws", ws.Handler(hub, wscfg.ClientBuffer, log))

	srv := &http.Server{
		Addr:              wscfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: wscfg.ReadHeaderTimeout,
	}

	go func() {
		log.Info("ws_listen", "addr", wscfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), wscfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
	hub.Stop()

	log.Info("stopped")
}
