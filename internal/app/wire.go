package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/packvault/platform/internal/auth"
	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/gacha"
	"github.com/packvault/platform/internal/handler"
	"github.com/packvault/platform/internal/ledger"
	"github.com/packvault/platform/internal/repository"
	"github.com/packvault/platform/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool          *pgxpool.Pool
	JWTMgr        *auth.JWTManager
	Logger        *slog.Logger
	StartingCoins int64
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	accountRepo := repository.NewAccountRepository()
	boxRepo := repository.NewBoxRepository()
	pullRepo := repository.NewPullRepository()
	battleRepo := repository.NewBattleRepository()
	orderRepo := repository.NewOrderRepository()
	entryRepo := repository.NewCoinEntryRepository()
	saleRepo := repository.NewSaleHistoryRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Ledger engine
	ledgerEngine := ledger.NewEngine(accountRepo, entryRepo, outboxRepo)

	// Services
	rng := gacha.DefaultSource()
	bots := service.NewBotProvisioner(accountRepo, ledgerEngine)
	authSvc := service.NewAuthService(pool, accountRepo, outboxRepo, ledgerEngine, jwtMgr, deps.StartingCoins, logger)
	walletSvc := service.NewWalletService(pool, accountRepo, entryRepo)
	packSvc := service.NewPackService(pool, ledgerEngine, boxRepo, pullRepo, outboxRepo, rng, logger)
	inventorySvc := service.NewInventoryService(pool, ledgerEngine, pullRepo, battleRepo, orderRepo, saleRepo, outboxRepo, logger)
	battleSvc := service.NewBattleService(pool, ledgerEngine, battleRepo, boxRepo, pullRepo, outboxRepo, bots, rng, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	walletHandler := handler.NewWalletHandler(walletSvc)
	boxHandler := handler.NewBoxHandler(packSvc)
	inventoryHandler := handler.NewInventoryHandler(inventorySvc)
	battleHandler := handler.NewBattleHandler(battleSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(jwtMgr))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", walletHandler.GetBalance)
			r.Get("/entries", walletHandler.GetEntries)
		})

		r.Route("/boxes", func(r chi.Router) {
			r.Get("/", boxHandler.ListBoxes)
			r.Get("/{boxID}", boxHandler.GetBox)
			r.Post("/{boxID}/open", boxHandler.OpenBox)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", inventoryHandler.ListInventory)
			r.Get("/sales", inventoryHandler.SaleHistory)
			r.Post("/sell", inventoryHandler.Sell)
			r.Post("/sell/bulk", inventoryHandler.BulkSell)
		})

		r.Route("/battles", func(r chi.Router) {
			r.Get("/", battleHandler.List)
			r.Post("/", battleHandler.Create)
			r.Get("/{battleID}", battleHandler.Get)
			r.Post("/{battleID}/join", battleHandler.Join)
			r.Post("/{battleID}/pull", battleHandler.Pull)
			r.Post("/{battleID}/cancel", battleHandler.Cancel)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleAdmin))
				r.Post("/{battleID}/simulate", battleHandler.Simulate)
			})
		})
	})

	return r
}
