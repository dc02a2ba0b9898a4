package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/maxviazov/scorekeeper-service/internal/config"
	"github.com/maxviazov/scorekeeper-service/internal/handler"
	"github.com/maxviazov/scorekeeper-service/internal/logger"
	"github.com/maxviazov/scorekeeper-service/internal/pubsub"
	"github.com/maxviazov/scorekeeper-service/internal/repository"
	"github.com/maxviazov/scorekeeper-service/internal/repository/memory"
	"github.com/maxviazov/scorekeeper-service/internal/repository/postgres"
	"github.com/maxviazov/scorekeeper-service/internal/service"
)

// store bundles the game repository with its readiness probe and teardown.
type store struct {
	games  repository.GameRepository
	pinger repository.Pinger
	close  func()
}

func main() {
	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	// Load application config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("service stopped with error")
	}
}

func run(cfg *config.Config, appLogger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer st.close()

	pub, err := openPublisher(cfg.Events)
	if err != nil {
		return err
	}
	defer func() {
		if err := pub.Close(); err != nil {
			appLogger.Warn().Err(err).Msg("event publisher close failed")
		}
	}()

	broker := pubsub.NewBroker()
	fwd := pubsub.NewForwarder(broker, pub, appLogger)
	fwd.ForwardTicks = cfg.Events.ForwardTicks
	fwdDone := make(chan struct{})
	go func() {
		defer close(fwdDone)
		fwd.Run(context.Background())
	}()

	svc := service.New(st.games, broker, service.Options{
		MaxOnCourt:   cfg.Game.MaxOnCourt,
		MaxOvertimes: cfg.Game.MaxOvertimes,
		TickInterval: cfg.Game.TickInterval,
	}, appLogger)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(appLogger))
	handler.Register(r, handler.Checks{"store": st.pinger, "events": pub}, svc, svc, broker, appLogger)

	srv := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info().
			Str("addr", srv.Addr).
			Str("storage", cfg.Storage.Driver).
			Str("events", cfg.Events.Driver).
			Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		appLogger.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn().Err(err).Msg("http shutdown incomplete")
	}
	// live clocks are saved before the store goes away
	if err := svc.Close(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("saving live games failed")
	}
	broker.Close()
	<-fwdDone
	appLogger.Info().Msg("✓ Shutdown complete")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (store, error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		m := memory.New()
		appLogger.Warn().Msg("using in-memory storage; games are lost on restart")
		return store{games: m, pinger: m, close: func() {}}, nil
	}

	pool, err := repository.NewPool(ctx, cfg.Postgres, appLogger)
	if err != nil {
		return store{}, err
	}
	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, pool, appLogger); err != nil {
			pool.Close()
			return store{}, err
		}
	}
	return store{
		games:  postgres.NewGameRepository(pool),
		pinger: postgres.NewPinger(pool),
		close:  pool.Close,
	}, nil
}

func openPublisher(cfg config.EventsConfig) (pubsub.Publisher, error) {
	switch cfg.Driver {
	case config.EventsNATS:
		return pubsub.NewJetStreamPublisher(cfg.NATS.URL, cfg.NATS.Stream, cfg.NATS.SubjectPrefix)
	case config.EventsRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return pubsub.NewRedisStreamPublisher(client, cfg.Redis.StreamPrefix, cfg.Redis.MaxLen), nil
	default:
		return pubsub.Noop{}, nil
	}
}
