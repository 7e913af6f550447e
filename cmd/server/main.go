package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JohnPierce/PersonalFinance/internal/api"
	"github.com/JohnPierce/PersonalFinance/internal/config"
	"github.com/JohnPierce/PersonalFinance/internal/database"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
	"github.com/JohnPierce/PersonalFinance/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Auth.APIKeySecret == "" {
		log.Println("WARNING: INTERNAL_API_KEY not set, mutating endpoints will reject all requests")
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	accountRepo := repository.NewAccountRepository(db)
	lotRepo := repository.NewTaxLotRepository(db)
	dispositionRepo := repository.NewDispositionRepository(db)
	washSaleRepo := repository.NewWashSaleRepository(db)
	eventRepo := repository.NewEventRepository(db)
	formRepo := repository.NewForm1099BRepository(db)

	// Create services
	locks := service.NewAccountLockRegistry()
	systemService := service.NewSystemService(db)
	accountService := service.NewAccountService(accountRepo)
	ledgerService := service.NewLotLedgerService(lotRepo)
	washSaleService := service.NewWashSaleService(db, lotRepo, dispositionRepo, washSaleRepo, locks)
	matchingService := service.NewMatchingService(db, lotRepo, dispositionRepo, eventRepo, ledgerService, washSaleService, locks)
	eventService := service.NewEventService(accountRepo, eventRepo)
	formService := service.NewForm1099BService(db, accountRepo, lotRepo, dispositionRepo, washSaleRepo, formRepo, locks)
	ingestService := service.NewIngestService(accountRepo, lotRepo, ledgerService, matchingService, eventService)

	// Start the nightly maintenance scheduler
	scheduler := service.NewScheduler(cfg.Scheduler, accountService, washSaleService, formService)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Account:   accountService,
		LotLedger: ledgerService,
		Matching:  matchingService,
		WashSale:  washSaleService,
		Event:     eventService,
		Form1099B: formService,
		Ingest:    ingestService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
