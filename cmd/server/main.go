package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/stockledger/backend/internal/application/catalog"
	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
	partnerapp "github.com/stockledger/backend/internal/application/partner"
	tradeapp "github.com/stockledger/backend/internal/application/trade"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/cache"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stockledger/backend/internal/infrastructure/event"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/interfaces/http/handler"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"github.com/stockledger/backend/internal/interfaces/http/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server exited with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log.Named("gorm"), logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)

	// Transaction scopes
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	tradeScope := persistence.NewGormTradeTransactionScope(db.DB)

	// Idempotency store for receiving batches
	idempotencyStore := newIdempotencyStore(cfg, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Failed to close idempotency store", zap.Error(err))
		}
	}()

	// Event bus with synchronous in-process dispatch
	eventBus := event.NewInMemoryEventBus(log.Named("events"))
	eventBus.Subscribe(inventoryapp.NewLowStockHandler(log.Named("lowstock")))
	ctx := context.Background()
	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}

	// Application services
	ledger := inventory.NewStockLedger()

	productService := catalogapp.NewProductService(productRepo, auditRepo)
	productService.SetEventPublisher(eventBus)

	supplierService := partnerapp.NewSupplierService(supplierRepo, auditRepo)
	supplierService.SetEventPublisher(eventBus)

	stockService := inventoryapp.NewStockService(inventoryScope, ledger, movementRepo)
	stockService.SetEventPublisher(eventBus)

	deductionService := inventoryapp.NewExternalDeductionService(inventoryScope, ledger, log.Named("deductions"))
	deductionService.SetEventPublisher(eventBus)

	orderService := tradeapp.NewPurchaseOrderService(orderRepo, supplierRepo, productRepo, auditRepo)
	orderService.SetEventPublisher(eventBus)

	receivingService := tradeapp.NewReceivingService(tradeScope, ledger, log.Named("receiving"))
	receivingService.SetEventPublisher(eventBus)
	receivingService.SetIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	})

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log.Named("http")),
		logger.Recovery(log.Named("http")),
		middleware.Secure(),
		middleware.CORS(cfg.HTTP),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler(db))
	r.Register(handler.NewProductHandler(productService))
	r.Register(handler.NewSupplierHandler(supplierService))
	r.Register(handler.NewStockHandler(stockService))
	r.Register(handler.NewPurchaseOrderHandler(orderService, receivingService))
	r.Register(handler.NewIntegrationHandler(deductionService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}

	log.Info("Server stopped")
	return nil
}

// newIdempotencyStore prefers Redis when configured and falls back to
// the in-memory store, which is only suitable for single instances.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err == nil {
			log.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
			return store
		}
		log.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	}
	return cache.NewInMemoryIdempotencyStore()
}
