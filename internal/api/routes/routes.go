package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bank-api/internal/api/handlers"
	"bank-api/internal/api/middleware"
)

// RegisterRoutes registers the primary's HTTP surface per SPEC_FULL.md §6,
// generalized from the teacher's routes.RegisterRoutes to the transfer-free
// deposit/withdraw/balance surface this spec defines.
func RegisterRoutes(router *gin.Engine, deps handlers.Dependencies) {
	router.Use(middleware.PrometheusMiddleware())

	router.POST("/deposit", handlers.MakeDepositHandler(deps))
	router.POST("/withdraw", handlers.MakeWithdrawHandler(deps))
	router.POST("/balance", handlers.MakeBalanceHandler(deps))
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
