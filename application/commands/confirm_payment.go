package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/domain/events"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// ConfirmPaymentCommand is the payment webhook's action: verify the payment
// with the provider and move the quotation to Paid.
type ConfirmPaymentCommand struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

// Validate checks the command's fields
func (c ConfirmPaymentCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// ConfirmPaymentHandler handles the ConfirmPaymentCommand
type ConfirmPaymentHandler struct {
	quotations ports.QuotationRepository
	payments   ports.PaymentsProcessor
	publisher  ports.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewConfirmPaymentHandler creates a new handler instance
func NewConfirmPaymentHandler(
	quotations ports.QuotationRepository,
	payments ports.PaymentsProcessor,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *ConfirmPaymentHandler {
	return &ConfirmPaymentHandler{
		quotations: quotations,
		payments:   payments,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle verifies the payment against the provider, never trusting the
// webhook body, then transitions PendingPayment → Paid conditionally. A
// duplicate webhook delivery fails the condition and surfaces as
// PreconditionFailed, which the HTTP layer acknowledges without side effects.
func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*entities.Quotation, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	payment, err := h.payments.GetPayment(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if !payment.Approved {
		return nil, apperrors.NewValidation("payment is not approved")
	}

	projectID, quotationID, err := parseQuotationRef(payment.QuotationID)
	if err != nil {
		return nil, err
	}

	next := entities.QuotationStatusPaid
	expected := entities.QuotationStatusPendingPayment
	quotation, err := h.quotations.Update(ctx, entities.UpdatableQuotation{
		ID:             quotationID,
		ProjectID:      projectID,
		Status:         &next,
		ExpectedStatus: &expected,
	})
	if err != nil {
		return nil, err
	}

	event := events.NewQuotationPaid(quotation.ID, quotation.ClientID, quotation.ProjectID, cmd.PaymentID, h.now().UTC())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("quotation paid event not published",
			zap.String("quotation_id", quotation.ID),
			zap.Error(err),
		)
	}

	h.logger.Info("payment confirmed",
		zap.String("quotation_id", quotation.ID),
		zap.String("payment_id", cmd.PaymentID),
	)
	return quotation, nil
}
