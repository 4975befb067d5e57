package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/commands"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/common"
)

// PaymentWebhookHandler receives the payment provider's webhook deliveries.
type PaymentWebhookHandler struct {
	confirmPayment *commands.ConfirmPaymentHandler
	createOrders   *commands.CreateOrdersHandler
	logger         *zap.Logger
}

// NewPaymentWebhookHandler creates a new payment webhook handler
func NewPaymentWebhookHandler(
	confirmPayment *commands.ConfirmPaymentHandler,
	createOrders *commands.CreateOrdersHandler,
	logger *zap.Logger,
) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		confirmPayment: confirmPayment,
		createOrders:   createOrders,
		logger:         logger,
	}
}

// paymentNotification is the provider's webhook body shape. Only the payment
// id is trusted; everything else is re-fetched from the provider's API.
type paymentNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// HandleNotification handles POST /payments. The provider retries
// undelivered webhooks, so every outcome that must not be retried answers
// 200: a duplicate delivery trips the status gate and is acknowledged as
// already processed.
func (h *PaymentWebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	var notification paymentNotification
	if err := common.ParseJSONBody(r, &notification, maxBodyBytes); err != nil {
		common.RespondError(w, err)
		return
	}

	if notification.Type != "payment" || notification.Data.ID == "" {
		// Other event types are acknowledged and dropped.
		common.RespondJSON(w, http.StatusOK, nil)
		return
	}

	quotation, err := h.confirmPayment.Handle(r.Context(), commands.ConfirmPaymentCommand{
		PaymentID: notification.Data.ID,
	})
	if err != nil {
		if apperrors.IsPreconditionFailed(err) {
			h.logger.Info("duplicate payment notification",
				zap.String("payment_id", notification.Data.ID),
			)
			common.RespondJSON(w, http.StatusOK, nil)
			return
		}
		common.RespondError(w, err)
		return
	}

	// Order creation failures are deliberately not surfaced to the provider:
	// the payment is recorded and an admin can create the orders manually.
	if _, err := h.createOrders.Handle(r.Context(), commands.CreateOrdersCommand{
		ProjectID:   quotation.ProjectID,
		QuotationID: quotation.ID,
	}); err != nil {
		h.logger.Error("orders not created after payment",
			zap.String("quotation_id", quotation.ID),
			zap.Error(err),
		)
	}

	common.RespondJSON(w, http.StatusOK, nil)
}
