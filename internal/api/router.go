package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JohnPierce/PersonalFinance/internal/api/handlers"
	custommiddleware "github.com/JohnPierce/PersonalFinance/internal/api/middleware"
	"github.com/JohnPierce/PersonalFinance/internal/config"
	"github.com/JohnPierce/PersonalFinance/internal/service"
)

// Services bundles the service dependencies the router needs.
type Services struct {
	System    *service.SystemService
	Account   *service.AccountService
	LotLedger *service.LotLedgerService
	Matching  *service.MatchingService
	WashSale  *service.WashSaleService
	Event     *service.EventService
	Form1099B *service.Form1099BService
	Ingest    *service.IngestService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(services.Account)
			r.Get("/", accountHandler.Accounts)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", accountHandler.CreateAccount)
			r.Route("/portfolio/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", accountHandler.GetAccountByPortfolio)
			})
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", accountHandler.GetAccount)
				r.With(custommiddleware.APIKeyMiddleware).Put("/settings", accountHandler.UpdateSettings)
			})
		})

		r.Route("/lot", func(r chi.Router) {
			lotHandler := handlers.NewLotHandler(services.LotLedger)
			r.Route("/account/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", lotHandler.LotsPerAccount)
			})
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", lotHandler.GetLot)
			})
		})

		r.Route("/disposition", func(r chi.Router) {
			dispositionHandler := handlers.NewDispositionHandler(services.Matching)
			r.Route("/account/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", dispositionHandler.DispositionsPerAccount)
			})
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", dispositionHandler.GetDisposition)
			})
		})

		r.Route("/washsale", func(r chi.Router) {
			washSaleHandler := handlers.NewWashSaleHandler(services.WashSale, services.Account)
			r.Route("/account/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", washSaleHandler.WashSalesPerAccount)
				r.Get("/summary/{year}", washSaleHandler.Summary)
				r.With(custommiddleware.APIKeyMiddleware).Post("/scan", washSaleHandler.Scan)
			})
		})

		r.Route("/event", func(r chi.Router) {
			eventHandler := handlers.NewEventHandler(services.Event)
			r.Route("/account/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", eventHandler.EventsPerAccount)
			})
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", eventHandler.GetEvent)
			})
		})

		r.Route("/form1099b", func(r chi.Router) {
			formHandler := handlers.NewForm1099BHandler(services.Form1099B)
			r.Route("/account/{uuid}/{year}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", formHandler.GetForm)
				r.With(custommiddleware.APIKeyMiddleware).Post("/", formHandler.Calculate)
			})
		})

		r.Route("/ingest", func(r chi.Router) {
			ingestHandler := handlers.NewIngestHandler(services.Ingest)
			r.With(custommiddleware.APIKeyMiddleware).Post("/transaction", ingestHandler.IngestTransaction)
		})
	})

	return r
}
