package handler

import (
	"time"

	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc        ports.LedgerService
	QuerySvc         ports.QueryService
	RateLimitStore   middleware.RateLimitStore // nil = rate limiting disabled
	RateLimitRule    middleware.RateLimitRule
	IdempotencyCache ports.IdempotencyCache // nil = Idempotency-Key ignored
	IdempotencyTTL   time.Duration
	HealthCheckers   []ports.HealthChecker
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	// Middleware chain for every mutating route.
	writes := []gin.HandlerFunc{}
	if deps.RateLimitStore != nil {
		writes = append(writes, middleware.RateLimiter(deps.RateLimitStore, "writes", deps.RateLimitRule, deps.Logger))
	}
	if deps.IdempotencyCache != nil {
		writes = append(writes, middleware.Idempotency(deps.IdempotencyCache, deps.IdempotencyTTL, deps.Logger))
	}
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writes...), h)
	}

	merchantHandler := NewMerchantHandler(deps.QuerySvc)
	transactionHandler := NewTransactionHandler(deps.LedgerSvc, deps.QuerySvc)
	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.QuerySvc)

	api := r.Group("/api")

	merchants := api.Group("/merchants")
	{
		merchants.GET("", merchantHandler.List)
		merchants.GET("/:id", merchantHandler.Get)
	}

	transactions := api.Group("/transactions")
	{
		transactions.GET("", transactionHandler.List)
		transactions.POST("", write(transactionHandler.Create)...)
		transactions.GET("/user/:userId", transactionHandler.ListByUser)
	}

	wallets := api.Group("/wallets")
	{
		wallets.GET("/user/:userId", walletHandler.Get)
		wallets.POST("/add-money", write(walletHandler.AddMoney)...)
		wallets.POST("/withdraw", write(walletHandler.Withdraw)...)
	}

	return r
}
