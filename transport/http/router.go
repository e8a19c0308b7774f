package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/service"
)

// RouterDeps collects everything the router needs
type RouterDeps struct {
	Auth         *service.AuthService
	Guard        *service.Guard
	Users        *service.UserService
	Wallet       *service.WalletService
	Transactions *service.TransactionService
	HealthChecks map[string]HealthCheck
	CORSOrigins  []string
	Log          zerolog.Logger
}

// SetupRouter configures the HTTP router
func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(),
		RequestLogger(deps.Log),
		Recovery(deps.Log),
		CORS(deps.CORSOrigins),
	)

	authHandlers := NewAuthHandlers(deps.Auth, deps.Log)
	userHandlers := NewUserHandlers(deps.Users, deps.Log)
	walletHandlers := NewWalletHandlers(deps.Wallet, deps.Log)
	transactionHandlers := NewTransactionHandlers(deps.Transactions, deps.Log)
	healthHandlers := NewHealthHandlers(deps.HealthChecks, deps.Log)

	authenticated := AuthMiddleware(deps.Guard, deps.Log)

	router.GET("/healthz", healthHandlers.Healthz)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandlers.Register)
		auth.POST("/login", authHandlers.Login)
		auth.GET("/nonce/:address", authHandlers.Nonce)
		auth.POST("/verify-signature", authHandlers.VerifySignature)
		auth.POST("/login-metamask", authHandlers.LoginMetaMask)
		auth.GET("/me", authenticated, authHandlers.Me)
	}

	users := api.Group("/users", authenticated)
	{
		readers := RequireRoles(deps.Log, core.RoleAdmin, core.RoleTeamLead)
		adminOnly := RequireRoles(deps.Log, core.RoleAdmin)

		users.GET("", readers, userHandlers.List)
		users.GET("/:id", readers, userHandlers.Get)
		users.POST("", adminOnly, userHandlers.Create)
		users.PUT("/:id", adminOnly, userHandlers.Update)
		users.PUT("/:id/status", adminOnly, userHandlers.SetStatus)
		users.DELETE("/:id", adminOnly, userHandlers.Delete)
	}

	wallet := api.Group("/wallet", authenticated)
	{
		wallet.GET("/balance", walletHandlers.Balance)
		wallet.GET("/transactions", walletHandlers.Transactions)
	}

	transactions := api.Group("/transactions", authenticated)
	{
		transactions.POST("", transactionHandlers.Save)
		transactions.GET("/:txHash", transactionHandlers.Get)
		transactions.GET("/address/:address", transactionHandlers.ListByAddress)
		transactions.GET("/type/:type", transactionHandlers.ListByType)
	}

	return router
}
