package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/services"
)

// BillingHandler receives payment gateway callbacks.
type BillingHandler struct {
	subscriptions *services.SubscriptionService
	logger        *zap.Logger
}

func NewBillingHandler(subscriptions *services.SubscriptionService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{subscriptions: subscriptions, logger: logger}
}

// Webhook handles a gateway transaction notification. Unconfirmed states
// are acknowledged without effect so the gateway stops retrying.
func (h *BillingHandler) Webhook(c *gin.Context) {
	var req models.BillingWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.subscriptions.ConfirmPayment(c.Request.Context(), req.SubscriptionID, req.TransactionID, req.State)
	if err != nil {
		h.logger.Error("billing webhook failed",
			zap.String("subscription_id", req.SubscriptionID.String()),
			zap.Error(err))
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
