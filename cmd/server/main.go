package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"slot-booking-api/internal/booking"
	"slot-booking-api/internal/bookingv1"
	"slot-booking-api/internal/cache"
	"slot-booking-api/internal/config"
	"slot-booking-api/internal/events"
	"slot-booking-api/internal/grpcweb"
	"slot-booking-api/internal/handler"
	"slot-booking-api/internal/logging"
	"slot-booking-api/internal/middleware"
	"slot-booking-api/internal/receipt"
	"slot-booking-api/internal/reconcile"
	"slot-booking-api/internal/store"
	"slot-booking-api/internal/telemetry"
	"slot-booking-api/internal/web"
)

const serviceName = "slot-booking-api"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OtelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OtelEndpoint,
		SampleRatio:  cfg.OtelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	schedCfg, err := config.LoadSchedule(cfg.SchedulePath)
	if err != nil {
		return err
	}
	sched, err := schedCfg.Schedule()
	if err != nil {
		return err
	}
	loc, err := schedCfg.Location()
	if err != nil {
		return err
	}

	backend, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	c, closeCache := openCache(cfg, log)
	defer closeCache()

	client := booking.New(backend, log)
	view := reconcile.New(client, c, log, reconcile.WithResync(cfg.ResyncCron))
	if err := view.Start(ctx); err != nil {
		return fmt.Errorf("reconciler: %w", err)
	}
	defer view.Close()

	publisher := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	defer publisher.Close()

	receipts := receipt.NewIssuer(cfg.ReceiptSecret, receipt.DefaultTTL)
	if receipts == nil {
		log.Info("RECEIPT_SECRET not set, receipts disabled")
	}

	h := handler.New(client, view, sched, log,
		handler.WithEvents(publisher),
		handler.WithReceipts(receipts),
		handler.WithTimezone(schedCfg.Timezone),
	)

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Stop()
	srv := grpc.NewServer(
		grpc.ForceServerCodec(bookingv1.Codec{}),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.Recover(log),
			middleware.Logging(log),
			middleware.RateLimit(rl),
		),
	)
	bookingv1.RegisterBookingServiceServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	errs := make(chan error, 2)
	go func() {
		log.Info("grpc listening", zap.String("port", cfg.Port))
		if err := srv.Serve(lis); err != nil {
			errs <- fmt.Errorf("grpc: %w", err)
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := grpcweb.New("localhost:"+cfg.Port, log)
	if err != nil {
		return err
	}
	defer bridge.Close()
	if err := bridge.TrustProxies(strings.Split(cfg.TrustedProxies, ",")...); err != nil {
		return err
	}

	router := web.New(view, sched, loc, log).Router(bridge.Handler())
	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           otelhttp.NewHandler(router, "http"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http listening", zap.String("port", cfg.WebPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errs:
		log.Error("server failed", zap.Error(err))
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	srv.GracefulStop()
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Backend, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; reservations are lost on restart")
		return store.NewMemory(), func() {}, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres store")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		log.Info("connected to postgres")

		if migration, err := os.ReadFile(cfg.MigrationsPath); err != nil {
			log.Warn("migration file not found, skipping", zap.Error(err))
		} else if _, err := pool.Exec(ctx, string(migration)); err != nil {
			log.Warn("migration failed", zap.Error(err))
		} else {
			log.Info("migration applied", zap.String("path", cfg.MigrationsPath))
		}
		return store.NewPostgres(pool), pool.Close, nil

	case "firestore":
		fs, err := store.OpenFirestore(ctx, cfg.FirestoreProjectID, cfg.CredentialsFile, cfg.FirestoreCollection)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to firestore", zap.String("collection", cfg.FirestoreCollection))
		return fs, func() {
			if err := fs.Close(); err != nil {
				log.Warn("firestore close", zap.Error(err))
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func openCache(cfg *config.Config, log *zap.Logger) (cache.Cache, func()) {
	switch cfg.CacheDriver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return cache.NewRedis(rdb, cfg.CacheKey), func() { rdb.Close() }
	case "none", "":
		return cache.Nop{}, func() {}
	case "file":
	default:
		log.Warn("unknown CACHE_DRIVER, using file", zap.String("driver", cfg.CacheDriver))
	}
	return cache.NewFile(cfg.CachePath), func() {}
}
