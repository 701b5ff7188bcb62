package handlers

import (
	"github.com/gin-gonic/gin"

	"bank-api/internal/metrics"
	apierrors "bank-api/internal/pkg/errors"
	"bank-api/internal/pkg/logging"
)

// MakeWithdrawHandler builds the /withdraw handler, symmetric to
// MakeDepositHandler per SPEC_FULL.md §6.
func MakeWithdrawHandler(deps Dependencies) gin.HandlerFunc {
	orch := deps.GetOrchestrator()

	return func(c *gin.Context) {
		var req mutationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "invalid request body")
			return
		}
		if req.AccountID == "" || req.TransactionID == "" || req.Amount <= 0 {
			respondValidationError(c, "account_id, transaction_id and a positive amount are required")
			return
		}

		record, err := orch.Withdraw(c.Request.Context(), req.AccountID, req.Amount, req.TransactionID)
		if err != nil {
			metrics.BankingOperationsTotal.WithLabelValues("withdraw", "error").Inc()
			logging.Error("withdraw failed", err, map[string]interface{}{
				"account_id":     req.AccountID,
				"transaction_id": req.TransactionID,
			})
			apiErr := apierrors.NewInternalServerError("failed to process withdrawal")
			c.JSON(apiErr.Status, apiErr)
			return
		}

		if record.Success {
			metrics.BankingOperationsTotal.WithLabelValues("withdraw", "success").Inc()
		} else {
			metrics.BankingOperationsTotal.WithLabelValues("withdraw", "business_failure").Inc()
		}

		respondTransaction(c, record)
	}
}
