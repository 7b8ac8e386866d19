package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-client/config"
	"storefront-client/internal/api"
	"storefront-client/internal/apiclient"
	"storefront-client/internal/broker"
	"storefront-client/internal/fakeapi"
	"storefront-client/internal/guard"
	"storefront-client/internal/models"
	"storefront-client/internal/persist"
	"storefront-client/internal/redisclient"
	"storefront-client/internal/service"
	"storefront-client/internal/store"
	"storefront-client/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	fake := flag.Bool("fake", false, "serve an in-memory storefront API and point the client at it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront client")

	tp, err := util.InitTracer("storefront-client", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	if *fake {
		url, stop, err := serveFakeAPI()
		if err != nil {
			logger.Fatal("Failed to start fake API", zap.Error(err))
		}
		defer stop()
		cfg.API.BaseURL = url
		logger.Info("Serving fake storefront API", zap.String("url", url))
	}

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to open state storage", zap.String("backend", cfg.Persist.Backend), zap.Error(err))
	}
	defer closeStorage()

	client, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		RateBurst: cfg.API.RateBurst,
	})
	if err != nil {
		logger.Fatal("Failed to create API client", zap.Error(err))
	}

	app := service.NewApp(client)

	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicState)
		defer producer.Close()

		publisher := broker.NewTransitionPublisher(producer, 256)
		go publisher.Run()
		defer publisher.Close()

		app.Observe(publisher.Observe)
		logger.Info("Publishing transitions", zap.String("topic", cfg.Kafka.TopicState))
	}

	persistor := persist.New(storage, cfg.Persist.Key, app.Persisted()...)
	gate := guard.New(app.Auth, persistor)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.NewHandler(app, gate, persistor).SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting inspection server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	persistor.Rehydrate(ctx)
	app.AttachPersistor(persistor)
	logger.Info("State rehydrated", zap.String("guard", string(gate.State())))

	if _, err := gate.EnsureAuthChecked(ctx); err != nil {
		logger.Info("No active session", zap.Error(err))
	}
	logger.Info("Auth checked", zap.String("guard", string(gate.State())))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}
	if err := persistor.Flush(shutdownCtx); err != nil {
		logger.Warn("Final state flush failed", zap.Error(err))
	}

	logger.Info("Server exited")
}

func openStorage(cfg *config.Config) (persist.Storage, func(), error) {
	logger := util.GetLogger()

	switch cfg.Persist.Backend {
	case config.BackendMemory:
		return persist.NewMemoryStorage(), func() {}, nil

	case config.BackendRedis:
		rc, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
		return rc, func() { _ = rc.Close() }, nil

	case config.BackendPostgres:
		db, err := store.NewStore(cfg.DB.URL)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("Database connected")
		return db, func() { _ = db.Close() }, nil

	default:
		fs, err := persist.NewFileStorage(cfg.Persist.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

// serveFakeAPI starts the in-memory backend on a random local port with one
// demo shopper and one admin.
func serveFakeAPI() (string, func(), error) {
	backend := fakeapi.New()
	backend.SeedUser(models.User{Name: "Demo Shopper", Email: "shopper@example.com", IsVerified: true}, "secret")
	backend.SeedUser(models.User{Name: "Demo Admin", Email: "admin@example.com", IsVerified: true, IsAdmin: true}, "secret")
	brand := backend.SeedBrand("Acme")
	category := backend.SeedCategory("Gadgets")
	backend.SeedProduct(models.Product{
		Title:         "Widget",
		Price:         decimal.NewFromInt(10),
		StockQuantity: 100,
		Brand:         models.RefTo[models.Brand](brand.ID),
		Category:      models.RefTo[models.Category](category.ID),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	srv := &http.Server{Handler: backend.Router()}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.GetLogger().Error("Fake API stopped", zap.Error(err))
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return "http://" + ln.Addr().String(), stop, nil
}
