package commands

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

const checkoutCurrency = "MXN"

// encodeQuotationRef packs the quotation's full key into the payment
// provider's external reference so the webhook can find it again.
func encodeQuotationRef(projectID, quotationID string) string {
	return projectID + "/" + quotationID
}

func parseQuotationRef(ref string) (projectID, quotationID string, err error) {
	projectID, quotationID, ok := strings.Cut(ref, "/")
	if !ok || projectID == "" || quotationID == "" {
		return "", "", apperrors.NewValidation("payment reference does not identify a quotation")
	}
	return projectID, quotationID, nil
}

// PartQuoteSelection picks one quote for one part entering checkout.
type PartQuoteSelection struct {
	PartID      string `json:"part_id" validate:"required"`
	PartQuoteID string `json:"part_quote_id" validate:"required"`
}

// CreateCheckoutCommand selects a quote per part and opens a hosted checkout
// session for the quotation. The session URL doubles as the shareable quote.
type CreateCheckoutCommand struct {
	ClientID    string               `json:"client_id" validate:"required"`
	ProjectID   string               `json:"project_id" validate:"required"`
	QuotationID string               `json:"quotation_id" validate:"required"`
	Selections  []PartQuoteSelection `json:"selections" validate:"required,min=1,dive"`
}

// Validate checks the command's fields
func (c CreateCheckoutCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreateCheckoutHandler handles the CreateCheckoutCommand
type CreateCheckoutHandler struct {
	quotations ports.QuotationRepository
	parts      ports.PartRepository
	payments   ports.PaymentsProcessor
	successURL string
	cancelURL  string
	logger     *zap.Logger
}

// NewCreateCheckoutHandler creates a new handler instance
func NewCreateCheckoutHandler(
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	payments ports.PaymentsProcessor,
	successURL string,
	cancelURL string,
	logger *zap.Logger,
) *CreateCheckoutHandler {
	return &CreateCheckoutHandler{
		quotations: quotations,
		parts:      parts,
		payments:   payments,
		successURL: successURL,
		cancelURL:  cancelURL,
		logger:     logger,
	}
}

// Handle records the customer's quote selections and opens the checkout
// session. The quotation must be PendingPayment; order creation later
// requires every part to carry a selection.
func (h *CreateCheckoutHandler) Handle(ctx context.Context, cmd CreateCheckoutCommand) (*ports.CheckoutSession, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	quotation, err := h.quotations.Get(ctx, ports.QuotationKey{ProjectID: cmd.ProjectID, ID: cmd.QuotationID})
	if err != nil {
		return nil, err
	}
	if quotation.Status != entities.QuotationStatusPendingPayment {
		return nil, apperrors.NewPreconditionFailed("quotation is not pending payment")
	}

	if err := h.checkCoversAllParts(ctx, cmd); err != nil {
		return nil, err
	}

	keys := make([]ports.PartKey, 0, len(cmd.Selections))
	for _, sel := range cmd.Selections {
		keys = append(keys, ports.PartKey{QuotationID: cmd.QuotationID, ID: sel.PartID})
	}
	stored, err := h.parts.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entities.Part, len(stored))
	for _, part := range stored {
		byID[part.ID] = part
	}

	items := make([]ports.CheckoutItem, 0, len(cmd.Selections))
	for _, sel := range cmd.Selections {
		part, ok := byID[sel.PartID]
		if !ok {
			return nil, apperrors.NewNotFound("part", sel.PartID)
		}
		quote := findPartQuote(part, sel.PartQuoteID)
		if quote == nil {
			return nil, apperrors.NewValidation("part_quote_id does not reference a quote of this part")
		}

		if _, err := h.parts.Update(ctx, entities.UpdatablePart{
			ID:                  sel.PartID,
			QuotationID:         cmd.QuotationID,
			SelectedPartQuoteID: entities.Set(sel.PartQuoteID),
		}); err != nil {
			return nil, err
		}

		items = append(items, ports.CheckoutItem{
			PartID:      part.ID,
			Title:       part.ModelFile.Name,
			Quantity:    part.Quantity,
			UnitPrice:   quote.UnitPrice,
			CurrencyID:  checkoutCurrency,
			Description: fmt.Sprintf("%s, %s, %s", part.Process, part.Material, part.Tolerance),
		})
	}

	session, err := h.payments.CreateCheckoutSession(ctx, encodeQuotationRef(cmd.ProjectID, cmd.QuotationID), items, h.successURL, h.cancelURL)
	if err != nil {
		return nil, err
	}

	h.logger.Info("checkout session created",
		zap.String("quotation_id", cmd.QuotationID),
		zap.String("session_id", session.ID),
	)
	return session, nil
}

// checkCoversAllParts walks the quotation's parts and requires a selection
// for each. Order creation needs a selected quote on every part, so a
// partial checkout would take payment for orders that can never be cut.
func (h *CreateCheckoutHandler) checkCoversAllParts(ctx context.Context, cmd CreateCheckoutCommand) error {
	selected := make(map[string]struct{}, len(cmd.Selections))
	for _, sel := range cmd.Selections {
		selected[sel.PartID] = struct{}{}
	}

	cursor := ""
	for {
		page, err := h.parts.Query(ctx, ports.PartQuery{QuotationID: cmd.QuotationID, Cursor: cursor})
		if err != nil {
			return err
		}
		for _, part := range page.Items {
			if _, ok := selected[part.ID]; !ok {
				return apperrors.NewValidation("every part of the quotation must have a selected quote")
			}
		}
		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}

func findPartQuote(part *entities.Part, quoteID string) *entities.PartQuote {
	for i := range part.PartQuotes {
		if part.PartQuotes[i].ID == quoteID {
			return &part.PartQuotes[i]
		}
	}
	return nil
}
