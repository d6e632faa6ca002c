package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/core-banking-ledger/internal/adapter/http/controller"
	"github.com/api-sage/core-banking-ledger/internal/adapter/http/router"
	"github.com/api-sage/core-banking-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/core-banking-ledger/internal/adapter/repository/postgres"
	"github.com/api-sage/core-banking-ledger/internal/adapter/sink"
	"github.com/api-sage/core-banking-ledger/internal/config"
	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/usecase/dispatch"
	"github.com/api-sage/core-banking-ledger/internal/usecase/locks"
	"github.com/api-sage/core-banking-ledger/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		accounts     domain.AccountRepository
		customers    domain.CustomerRepository
		transactions domain.TransactionRepository
		uow          domain.UnitOfWork
	)

	switch cfg.StorageBackend {
	case "memory":
		store := memory.NewStore()
		accounts = store.Accounts()
		customers = store.Customers()
		transactions = store.Transactions()
		uow = store
	default:
		if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
			log.Fatalf("run migrations: %v", err)
		}

		db, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()

		accounts = postgres.NewAccountRepository(db)
		customers = postgres.NewCustomerRepository(db)
		transactions = postgres.NewTransactionRepository(db)
		uow = postgres.NewUnitOfWork(db)
	}

	dispatcher := dispatch.NewDispatcher(sink.NewLogAuditSink(), sink.NewLogNotificationSink(), cfg.Policy.EventQueueSize, 2)
	defer dispatcher.Close()

	lockManager := locks.NewManager(cfg.Policy.LockWait())
	processor := services.NewProcessor(accounts, customers, transactions, uow, lockManager, dispatcher, cfg.Policy)
	generator := services.NewAccountNumberGenerator(accounts)
	accountService := services.NewAccountService(accounts, customers, uow, generator, lockManager, processor, dispatcher, cfg.Policy)
	transactionService := services.NewTransactionService(accounts, transactions, processor)

	handler := router.New(
		cfg.ChannelID,
		cfg.ChannelKey,
		controller.NewAccountController(accountService),
		controller.NewTransactionController(transactionService),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("ledger server listening on %s (backend=%s)", cfg.HTTPAddr, cfg.StorageBackend)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
