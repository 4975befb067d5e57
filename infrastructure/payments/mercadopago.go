package payments

import (
	"context"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

// MercadoPagoProcessor implements ports.PaymentsProcessor against the Mercado
// Pago checkout-preference and payment APIs. The quotation id travels as the
// preference's external reference and comes back on the payment, which is how
// the webhook finds the quotation to advance.
type MercadoPagoProcessor struct {
	preferences preference.Client
	payments    payment.Client
	logger      *zap.Logger
}

var _ ports.PaymentsProcessor = (*MercadoPagoProcessor)(nil)

func NewMercadoPagoProcessor(accessToken string, logger *zap.Logger) (*MercadoPagoProcessor, error) {
	if accessToken == "" {
		return nil, apperrors.NewValidation("mercado pago access token is required")
	}

	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, apperrors.NewUnknown("init mercado pago sdk", err)
	}

	return &MercadoPagoProcessor{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
		logger:      logger,
	}, nil
}

func (p *MercadoPagoProcessor) CreateCheckoutSession(ctx context.Context, quotationID string, items []ports.CheckoutItem, successURL, cancelURL string) (*ports.CheckoutSession, error) {
	if quotationID == "" {
		return nil, apperrors.NewMissingParameter("quotation_id is required")
	}
	if len(items) == 0 {
		return nil, apperrors.NewMissingParameter("at least one checkout item is required")
	}

	request := preference.Request{
		ExternalReference: quotationID,
		BackURLs: &preference.BackURLsRequest{
			Success: successURL,
			Failure: cancelURL,
			Pending: cancelURL,
		},
		AutoReturn: "approved",
	}
	for _, item := range items {
		request.Items = append(request.Items, preference.ItemRequest{
			ID:          item.PartID,
			Title:       item.Title,
			Description: item.Description,
			Quantity:    item.Quantity,
			// The store keeps money in cents; the provider takes units.
			UnitPrice:  float64(item.UnitPrice) / 100,
			CurrencyID: item.CurrencyID,
		})
	}

	resp, err := p.preferences.Create(ctx, request)
	if err != nil {
		return nil, apperrors.NewUnavailable("create checkout session", err)
	}

	p.logger.Info("checkout session created",
		zap.String("quotation_id", quotationID),
		zap.String("preference_id", resp.ID),
	)
	return &ports.CheckoutSession{ID: resp.ID, CheckoutURL: resp.InitPoint}, nil
}

func (p *MercadoPagoProcessor) GetPayment(ctx context.Context, paymentID string) (*ports.Payment, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, apperrors.NewValidation("payment id must be numeric")
	}

	resp, err := p.payments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewUnavailable("get payment", err)
	}

	return &ports.Payment{
		ID:          paymentID,
		Status:      resp.Status,
		QuotationID: resp.ExternalReference,
		Approved:    resp.Status == "approved",
	}, nil
}
