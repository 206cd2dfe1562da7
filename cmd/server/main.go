// Package main is the entry point for the repair shop back office server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"officina/internal/core/tx"
	"officina/internal/domain/catalog"
	"officina/internal/domain/invoices"
	"officina/internal/domain/ledger"
	"officina/internal/domain/notify"
	"officina/internal/domain/orders"
	"officina/internal/domain/quotes"
	"officina/internal/domain/repairs"
	"officina/internal/domain/sequence"
	v1 "officina/internal/infrastructure/http/v1"
	"officina/internal/infrastructure/notifier"
	"officina/internal/infrastructure/storage/memory"
	"officina/internal/infrastructure/storage/postgres"
	"officina/pkg/config"
	"officina/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting officina server")

	var (
		pool      *postgres.Pool
		txManager tx.Manager

		ledgerRepo  ledger.Repository
		seqStore    sequence.Store
		repairRepo  repairs.Repository
		quoteRepo   quotes.Repository
		orderRepo   orders.Repository
		invoiceRepo invoices.Repository
		itemCatalog catalog.Catalog
	)

	if cfg.DB.DatabaseURL != "" {
		pool, err = postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DatabaseURL))
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		log.Info("database connection established")

		txm := postgres.NewTxManager(pool)
		txManager = txm
		ledgerRepo = postgres.NewLedgerRepo(txm)
		seqStore = postgres.NewSequenceRepo(txm)
		repairRepo = postgres.NewRepairRepo(txm)
		quoteRepo = postgres.NewQuoteRepo(txm)
		orderRepo = postgres.NewOrderRepo(txm)
		invoiceRepo = postgres.NewInvoiceRepo(txm)
		itemCatalog = postgres.NewCatalogRepo(txm)
	} else {
		log.Warn("DATABASE_URL not set, running with in-memory stores")

		txManager = tx.Noop{}
		ledgerRepo = memory.NewLedgerStore()
		seqStore = memory.NewSequenceStore()
		repairRepo = memory.NewRepairStore()
		quoteRepo = memory.NewQuoteStore()
		orderRepo = memory.NewOrderStore()
		invoiceRepo = memory.NewInvoiceStore()
		itemCatalog = memory.NewCatalogStore()
	}

	ledgerService := ledger.NewService(ledgerRepo)
	allocator := sequence.NewAllocator(seqStore)

	var statusNotifier notify.Notifier = notifier.NewLogNotifier()

	repairService := repairs.NewService(repairRepo, ledgerService, allocator, itemCatalog, statusNotifier, txManager)
	quoteService := quotes.NewService(quoteRepo, repairService, txManager)
	orderService := orders.NewService(orderRepo, ledgerService, allocator, txManager)
	invoiceService := invoices.NewService(invoiceRepo, ledgerService, allocator, txManager)

	routerCfg := v1.RouterConfig{
		Logger:    log,
		JWTSecret: cfg.JWT.Secret,
		Repairs:   repairService,
		Quotes:    quoteService,
		Orders:    orderService,
		Invoices:  invoiceService,
		Ledger:    ledgerService,
	}
	if pool != nil {
		routerCfg.Pool = pool.Pool
	}
	router := v1.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
