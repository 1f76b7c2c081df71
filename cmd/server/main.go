package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/banking/sanctions-screening/internal/api"
	"github.com/banking/sanctions-screening/internal/audit"
	"github.com/banking/sanctions-screening/internal/config"
	"github.com/banking/sanctions-screening/internal/embedding"
	"github.com/banking/sanctions-screening/internal/messaging"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
	"github.com/banking/sanctions-screening/internal/sanctions"
	"github.com/banking/sanctions-screening/internal/screening"
	"github.com/banking/sanctions-screening/internal/telemetry"
)

var version = "dev"

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	log, err := logger.New(cfg.Telemetry.ServiceName, cfg.Telemetry.Environment, cfg.Telemetry.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("service failed", logger.ErrorField(err))
	}
	log.Info("Server exited properly")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:   cfg.Telemetry.ServiceName,
		Environment:   cfg.Telemetry.Environment,
		Version:       version,
		OTLPEndpoint:  cfg.Telemetry.OTLPEndpoint,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracer shutdown failed", logger.ErrorField(err))
		}
	}()

	// 4. PostgreSQL (reference list source and audit store)
	var pool *pgxpool.Pool
	if cfg.Database.Enabled {
		pool, err = pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
	}

	// 5. Semantic matching (optional)
	var (
		semantic  *screening.SemanticMatcher
		storeOpts []sanctions.StoreOption
	)
	if cfg.Embedding.Endpoint != "" {
		var cacheOpts []embedding.CacheOption
		if cfg.Embedding.RedisTier {
			rdb := redis.NewClient(&redis.Options{
				Addr:         cfg.Redis.Addr(),
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.DB,
				PoolSize:     cfg.Redis.PoolSize,
				MinIdleConns: cfg.Redis.MinIdleConns,
				MaxRetries:   cfg.Redis.MaxRetries,
				DialTimeout:  cfg.Redis.DialTimeout,
				ReadTimeout:  cfg.Redis.ReadTimeout,
				WriteTimeout: cfg.Redis.WriteTimeout,
			})
			defer rdb.Close()
			cacheOpts = append(cacheOpts, embedding.WithRemoteStore(embedding.NewRedisStore(rdb, cfg.Embedding.CacheTTL)))
		}

		provider := embedding.NewHTTPProvider(embedding.HTTPProviderConfig{
			Endpoint:         cfg.Embedding.Endpoint,
			Model:            cfg.Embedding.Model,
			Timeout:          cfg.Embedding.RequestTimeout,
			FailureThreshold: cfg.Embedding.BreakerFailures,
			OpenTimeout:      cfg.Embedding.BreakerOpenFor,
			HalfOpenRequests: cfg.Embedding.BreakerHalfOpen,
		}, log)
		cache := embedding.NewCache(provider, embedding.CacheConfig{
			Size:         cfg.Embedding.CacheSize,
			TTL:          cfg.Embedding.CacheTTL,
			FetchTimeout: cfg.Embedding.RequestTimeout,
		}, log, cacheOpts...)

		semantic = screening.NewSemanticMatcher(cache, cfg.Screening.SemanticTimeout, log)
		storeOpts = append(storeOpts, sanctions.WithRefreshHook(cache.WarmOnRefresh(cfg.Embedding.WarmTimeout)))
	} else {
		log.Warn("embedding endpoint not configured, semantic matching disabled")
	}

	// 6. Reference list
	provider, err := referenceProvider(cfg.ReferenceList, pool)
	if err != nil {
		return err
	}
	store := sanctions.NewStore(provider, log, storeOpts...)
	if err := store.Refresh(ctx); err != nil {
		return err
	}
	go store.Run(ctx, cfg.ReferenceList.RefreshInterval)

	// 7. Screening engine
	engine, err := screening.NewEngine(store, semantic, cfg.Screening.EngineConfig(), log)
	if err != nil {
		return err
	}

	// 8. Audit sinks
	sinks := []audit.Sink{audit.NewLogSink(log)}
	if pool != nil {
		pg := audit.NewPostgresSink(pool, cfg.Telemetry.ServiceName)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, pg)
	}

	var producer sarama.SyncProducer
	if cfg.Kafka.Enabled {
		producer, err = audit.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
		if err != nil {
			return err
		}
		kafkaSink := audit.NewKafkaSink(producer, cfg.Kafka.ResultTopic, cfg.Telemetry.ServiceName, log)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}

	payments := screening.NewPaymentScreener(engine, screening.NewStatsTracker(), audit.NewMultiSink(sinks...), log)

	// 9. Payment consumer
	consumerDone := make(chan struct{})
	if cfg.Kafka.Enabled {
		group, err := messaging.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.ClientID)
		if err != nil {
			return err
		}
		consumer := messaging.NewConsumer(group, []string{cfg.Kafka.PaymentTopic}, payments, log)
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil {
				log.Error("payment consumer stopped", logger.ErrorField(err))
			}
			if err := consumer.Close(); err != nil {
				log.Warn("consumer group close failed", logger.ErrorField(err))
			}
		}()
	} else {
		close(consumerDone)
	}

	// 10. HTTP API
	e := api.NewServer(
		api.NewHandler(engine, payments, store, cfg.Security.JWTSecret, log),
		api.ServerConfig{
			Port:           cfg.Server.Port,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
			MaxRequestSize: cfg.Server.MaxRequestSize,
			AllowedOrigins: cfg.Security.AllowedOrigins,
		},
		log,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(e.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Info("Server started", logger.StringField("addr", e.Server.Addr))

	// Wait for interrupt signal to gracefully shutdown the server with a timeout
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		stop()
		<-consumerDone
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("Shutting down server...")

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(sctx); err != nil {
		return err
	}
	<-consumerDone

	stats := payments.StatsSnapshot()
	log.Info("final screening stats",
		logger.IntField("total_processed", int(stats.TotalProcessed)),
		logger.IntField("blocked", int(stats.Blocked)),
		logger.IntField("errors", int(stats.Errors)),
	)
	return nil
}

func referenceProvider(cfg config.ReferenceListConfig, pool *pgxpool.Pool) (sanctions.Provider, error) {
	switch cfg.Source {
	case config.SourceFile:
		return sanctions.NewFileProvider(cfg.Path, cfg.FileSource), nil
	case config.SourcePostgres:
		if pool == nil {
			return nil, errors.New("postgres reference list requires a database connection")
		}
		return sanctions.NewPostgresProvider(pool), nil
	default:
		return sanctions.NewStaticProvider(sanctions.SampleEntries()), nil
	}
}
