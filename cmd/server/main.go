package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/ignite-backend/internal/config"
	"github.com/stemsi/ignite-backend/internal/database"
	"github.com/stemsi/ignite-backend/internal/events"
	"github.com/stemsi/ignite-backend/internal/handler"
	"github.com/stemsi/ignite-backend/internal/logger"
	"github.com/stemsi/ignite-backend/internal/repository"
	"github.com/stemsi/ignite-backend/internal/router"
	"github.com/stemsi/ignite-backend/internal/service"
	"github.com/stemsi/ignite-backend/internal/validator"
	"github.com/stemsi/ignite-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Ignite Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Event Publishers ──────────────────────────────────────────────
	publishers := events.Fanout{events.NewRedisPublisher(rdb)}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, config.WorkerKey.BookingConfirmedQueue, log)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, booking.confirmed publishing disabled")
		} else {
			defer amqpPub.Close()
			publishers = append(publishers, amqpPub)
		}
	} else {
		log.Info().Msg("AMQP_URL not set, booking.confirmed publishing disabled")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	classRepo := repository.NewClassRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	classService := service.NewClassService(classRepo, rdb, cfg.ClassCacheTTL, log)
	bookingService := service.NewBookingService(classRepo, bookingRepo, classService, publishers, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Class:   handler.NewClassHandler(classService, log),
		Booking: handler.NewBookingHandler(bookingService, log),
		WS:      handler.NewWSHandler(rdb, classService, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	eventsWorker := worker.NewBookingEventsWorker(pool, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		eventsWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for their final flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
