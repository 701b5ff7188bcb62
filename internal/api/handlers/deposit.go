package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bank-api/internal/domain"
	"bank-api/internal/metrics"
	apierrors "bank-api/internal/pkg/errors"
	"bank-api/internal/pkg/logging"
)

type mutationRequest struct {
	AccountID     string  `json:"account_id"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id"`
}

// MakeDepositHandler builds the /deposit handler, closing over the
// orchestrator at construction time the way the teacher's
// MakeCreateAccountHandler closes over its database and publisher.
func MakeDepositHandler(deps Dependencies) gin.HandlerFunc {
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

		record, err := orch.Deposit(c.Request.Context(), req.AccountID, req.Amount, req.TransactionID)
		if err != nil {
			metrics.BankingOperationsTotal.WithLabelValues("deposit", "error").Inc()
			logging.Error("deposit failed", err, map[string]interface{}{
				"account_id":     req.AccountID,
				"transaction_id": req.TransactionID,
			})
			apiErr := apierrors.NewInternalServerError("failed to process deposit")
			c.JSON(apiErr.Status, apiErr)
			return
		}

		if record.Success {
			metrics.BankingOperationsTotal.WithLabelValues("deposit", "success").Inc()
		} else {
			metrics.BankingOperationsTotal.WithLabelValues("deposit", "business_failure").Inc()
		}

		respondTransaction(c, record)
	}
}

// respondTransaction maps a decided domain.Transaction to the HTTP response
// shape in SPEC_FULL.md §6: business failures (insufficient balance) use the
// same status code whether this is the first decision or a replay of an
// already-decided transaction_id (§9 open-question resolution).
func respondTransaction(c *gin.Context, record domain.Transaction) {
	body := gin.H{
		"success":        record.Success,
		"message":        record.Message,
		"new_balance":    record.NewBalance,
		"transaction_id": record.TransactionID,
	}

	if record.Success {
		c.JSON(http.StatusOK, body)
		return
	}
	c.JSON(http.StatusBadRequest, body)
}

func respondValidationError(c *gin.Context, message string) {
	apiErr := apierrors.NewValidationError(message)
	c.JSON(apiErr.Status, apiErr)
}
