package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type balanceRequest struct {
	AccountID string `json:"account_id"`
}

// MakeBalanceHandler builds the /balance handler. Reads bypass replication
// entirely (SPEC_FULL.md §4.4); an unknown account_id simply reports 0.
func MakeBalanceHandler(deps Dependencies) gin.HandlerFunc {
	orch := deps.GetOrchestrator()

	return func(c *gin.Context) {
		var req balanceRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.AccountID == "" {
			respondValidationError(c, "account_id is required")
			return
		}

		balance := orch.GetBalance(req.AccountID)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"balance": balance,
			"message": "",
		})
	}
}
