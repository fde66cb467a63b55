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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "pawport/internal/admin/handler"
	"pawport/internal/breed"
	businesshandler "pawport/internal/business/handler"
	businessservice "pawport/internal/business/service"
	dogstore "pawport/internal/dog/store"
	"pawport/internal/platform/config"
	"pawport/internal/platform/httpserver"
	"pawport/internal/platform/logger"
	platformmetrics "pawport/internal/platform/metrics"
	"pawport/internal/platform/middleware"
	"pawport/internal/platform/postgres"
	platformredis "pawport/internal/platform/redis"
	recstore "pawport/internal/record/store"
	"pawport/internal/verification/engine"
	verservice "pawport/internal/verification/service"
	verstore "pawport/internal/verification/store"
	wallethandler "pawport/internal/wallet/handler"
	walletservice "pawport/internal/wallet/service"
	"pawport/pkg/platform/audit"
	auditkafka "pawport/pkg/platform/audit/publisher"
	auditmemory "pawport/pkg/platform/audit/store/memory"
	auditworker "pawport/pkg/platform/audit/worker"
)

const auditInboxSize = 1024

// main wires dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	log := logger.New()
	slog.SetDefault(log)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence: Postgres when configured, in-memory otherwise.
	pool, err := postgres.Connect(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}

	var (
		dogs     dogstore.DogStore
		handlers dogstore.HandlerStore
		records  recstore.RecordStore
		docs     recstore.DocumentStore
		scores   verstore.ScoreStore
	)
	if pool != nil {
		defer pool.Close()
		dogs = dogstore.NewPostgresDogStore(pool)
		handlers = dogstore.NewPostgresHandlerStore(pool)
		records = recstore.NewPostgresRecordStore(pool)
		docs = recstore.NewPostgresDocumentStore(pool)
		scores = verstore.NewPostgresScoreStore(pool)
		log.Info("using postgres stores")
	} else {
		memDogs := dogstore.NewInMemoryDogStore()
		memHandlers := dogstore.NewInMemoryHandlerStore()
		handler, dog := dogstore.SeedDemoHandler(memDogs, memHandlers)
		dogs, handlers = memDogs, memHandlers
		records = recstore.NewInMemoryRecordStore()
		docs = recstore.NewInMemoryDocumentStore()
		scores = verstore.NewInMemoryScoreStore()
		log.Info("using in-memory stores",
			"demo_handler_id", handler.ID.String(), "demo_dog_id", dog.ID.String())
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit pipeline: the channel worker always feeds the in-memory
	// store serving the admin trail; Kafka fans out when configured.
	auditStore := auditmemory.NewInMemoryStore()
	inbox := make(chan audit.Event, auditInboxSize)
	worker := auditworker.NewWorker(auditStore, inbox)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	var publisher audit.Publisher = auditworker.NewChannelPublisher(inbox)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := auditkafka.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = audit.NewFanout(publisher, kafkaPublisher)
	}

	breeds := breed.MustLoadDefault()

	businessOpts := []businessservice.Option{
		businessservice.WithLogger(log),
		businessservice.WithAuditPublisher(publisher),
	}
	if redisClient != nil {
		businessOpts = append(businessOpts, businessservice.WithCache(redisClient.Client))
	}
	business := businessservice.New(dogs, handlers, records, businessOpts...)

	verification := verservice.New(
		engine.New(breeds),
		dogs, records, docs, scores,
		verservice.WithLogger(log),
		verservice.WithAuditPublisher(publisher),
		verservice.WithCacheInvalidator(business),
	)
	wallet := walletservice.New(
		dogs, docs, records,
		walletservice.WithLogger(log),
		walletservice.WithAuditPublisher(publisher),
		walletservice.WithRecomputer(verification),
	)

	verifier := middleware.NewVerifier(cfg.Auth.JWTSigningKey)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.ClientInfo)
	router.Use(platformmetrics.Instrument)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	wallethandler.New(wallet, verifier, log).Register(router)
	businesshandler.New(business, verifier, log).Register(router)
	adminhandler.New(verification, auditStore, cfg.Auth.AdminTokenHash, log).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)
	log.Info("starting pawport", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
