package router

import (
	"shiftly/config"
	"shiftly/internal/domain"
	"shiftly/internal/handler"
	"shiftly/internal/ledger"
	"shiftly/internal/middleware"
	"shiftly/internal/repository"
	"shiftly/internal/service"
	"shiftly/pkg/processor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, log *zap.Logger, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewKeyLimiter(rate.Limit(cfg.Policy.RateLimitPerSec), cfg.Policy.RateLimitBurst)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	entryRepo := repository.NewLedgerEntryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	holdRepo := repository.NewHoldRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	bankRepo := repository.NewBankAccountRepository(db)

	// The ledger is the single write path for balances.
	writer := ledger.New(db, log)

	var provider processor.Provider
	if cfg.Processor.UseStub {
		provider = &processor.StubProvider{}
	} else {
		provider = processor.NewClient(cfg.Processor.BaseURL, cfg.Processor.APIKey)
	}

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	walletSvc := service.NewWalletService(walletRepo, entryRepo, writer)
	paymentSvc := service.NewPaymentService(cfg, log, writer, paymentRepo, walletRepo, provider)
	payoutSvc := service.NewPayoutService(cfg, log, writer, payoutRepo, walletRepo, bankRepo, provider)
	holdSvc := service.NewHoldService(cfg, log, writer, holdRepo, bookingRepo, walletRepo)
	bookingSvc := service.NewBookingService(log, bookingRepo, userRepo)
	complianceSvc := service.NewComplianceService(log, bookingRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(log, authSvc)
	walletHandler := handler.NewWalletHandler(log, walletSvc)
	paymentHandler := handler.NewPaymentHandler(log, paymentSvc)
	payoutHandler := handler.NewPayoutHandler(log, payoutSvc, bankRepo)
	webhookHandler := handler.NewWebhookHandler(cfg, log, paymentSvc, payoutSvc)
	bookingHandler := handler.NewBookingHandler(log, bookingSvc, holdSvc)
	holdHandler := handler.NewHoldHandler(log, holdSvc)
	complianceHandler := handler.NewComplianceHandler(log, complianceSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	businessMw := middleware.RequireRole(domain.RoleBusiness, domain.RoleAdmin)
	workerMw := middleware.RequireRole(domain.RoleWorker, domain.RoleAdmin)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		// Processor callbacks authenticate by shared token, not JWT.
		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/payment", webhookHandler.HandlePayment)
			webhooks.POST("/payout", webhookHandler.HandlePayout)
		}

		wallet := api.Group("/wallet")
		wallet.Use(authMw)
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.GET("/entries", walletHandler.ListEntries)
		}

		payments := api.Group("/payments")
		payments.Use(authMw, businessMw)
		{
			payments.POST("/topup", paymentHandler.CreateTopUp)
			payments.GET("/:id", paymentHandler.Get)
		}

		payouts := api.Group("/payouts")
		payouts.Use(authMw, workerMw)
		{
			payouts.POST("", payoutHandler.Create)
			payouts.GET("", payoutHandler.List)
			payouts.GET("/:id", payoutHandler.Get)
		}

		banks := api.Group("/bank-accounts")
		banks.Use(authMw, workerMw)
		{
			banks.POST("", payoutHandler.AddBankAccount)
			banks.GET("", payoutHandler.ListBankAccounts)
		}

		bookings := api.Group("/bookings")
		bookings.Use(authMw)
		{
			bookings.POST("", businessMw, bookingHandler.Create)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.POST("/:id/accept", workerMw, bookingHandler.Accept)
			bookings.POST("/:id/start", workerMw, bookingHandler.Start)
			bookings.POST("/:id/complete", businessMw, bookingHandler.Complete)
			bookings.POST("/:id/cancel", bookingHandler.Cancel)
		}

		holds := api.Group("/holds")
		holds.Use(authMw)
		{
			holds.GET("/:id", holdHandler.Get)
			holds.POST("/:id/dispute", holdHandler.Dispute)
		}

		api.GET("/compliance/workers/:worker_id", authMw, businessMw, complianceHandler.Check)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/wallets/:id/reconcile", walletHandler.Reconcile)
			admin.POST("/holds/:id/resolve", holdHandler.Resolve)
			admin.POST("/holds/:id/cancel", holdHandler.Cancel)
			admin.POST("/holds/sweep", holdHandler.Sweep)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
