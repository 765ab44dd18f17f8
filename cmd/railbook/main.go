package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	accountapp "github.com/railbook-io/railbook/internal/account/application"
	accountpg "github.com/railbook-io/railbook/internal/account/infrastructure/postgres"
	bookingapp "github.com/railbook-io/railbook/internal/booking/application"
	bookingkafka "github.com/railbook-io/railbook/internal/booking/infrastructure/kafka"
	bookingpg "github.com/railbook-io/railbook/internal/booking/infrastructure/postgres"
	bookingredis "github.com/railbook-io/railbook/internal/booking/infrastructure/redis"
	"github.com/railbook-io/railbook/internal/database"
	inventoryapp "github.com/railbook-io/railbook/internal/inventory/application"
	inventorypg "github.com/railbook-io/railbook/internal/inventory/infrastructure/postgres"
	"github.com/railbook-io/railbook/internal/session"
	transporthttp "github.com/railbook-io/railbook/internal/transport/http"
	"github.com/railbook-io/railbook/pkg/config"
	"github.com/railbook-io/railbook/pkg/logging"
	"github.com/railbook-io/railbook/pkg/outbox"
	"github.com/railbook-io/railbook/pkg/shutdown"
	"github.com/railbook-io/railbook/pkg/tracing"
)

func main() {
	log := logging.New()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg := config.Load()

	tp, err := tracing.Init(ctx, "railbook", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	// Postgres
	gateway, err := database.Connect(ctx, log, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer gateway.Close()
	if err := gateway.Migrate(ctx); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	// Redis: sessions and per-session booking staging
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	// Kafka producer for the outbox relay
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaAddr),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	defer writer.Close()

	// Services
	accounts := accountapp.NewService(accountpg.NewRepository(log, gateway.Pool()))
	trains := inventoryapp.NewService(inventorypg.NewRepository(log, gateway.Pool()))
	bookings := bookingapp.NewService(bookingpg.NewRepository(log, gateway.Pool()))
	staging := bookingredis.NewStaging(log, rdb)
	orch := bookingapp.NewOrchestrator(trains, bookings, staging)
	sessions := session.NewManager(log, rdb, accounts, cfg.SessionTTL)

	// Outbox relay
	store := bookingpg.NewOutboxStore(log, gateway.Pool())
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, store, dispatch, "railbook-relay")
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	// Booking events consumer (notification log)
	consumer := bookingkafka.NewConsumer(log, []string{cfg.KafkaAddr}, cfg.OutboxTopic, "railbook-notifier")
	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("consumer stopped", "err", err)
		}
	}()

	// HTTP server
	handler := transporthttp.NewHandler(log, accounts, trains, bookings, orch, sessions, gateway)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("railbook shutdown complete")
}
