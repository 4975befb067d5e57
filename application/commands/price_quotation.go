package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// PartQuoteInput is one priced manufacturing option for a part.
type PartQuoteInput struct {
	UnitPriceCents int64 `json:"unit_price_cents" validate:"required,min=1"`
	Workdays       int   `json:"workdays" validate:"required,min=1"`
	ValidDays      int   `json:"valid_days" validate:"required,min=1"`
}

// PartPricingInput carries the quotes an admin attaches to one part.
type PartPricingInput struct {
	PartID string           `json:"part_id" validate:"required"`
	Quotes []PartQuoteInput `json:"quotes" validate:"required,min=1,dive"`
}

// PriceQuotationCommand is the admin pricing action: it attaches part quotes
// to every part of a quotation and moves the quotation to PendingPayment in
// the same transaction.
type PriceQuotationCommand struct {
	ProjectID   string             `json:"project_id" validate:"required"`
	QuotationID string             `json:"quotation_id" validate:"required"`
	Parts       []PartPricingInput `json:"parts" validate:"required,min=1,dive"`
}

// Validate checks the command's fields
func (c PriceQuotationCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// PriceQuotationHandler handles the PriceQuotationCommand
type PriceQuotationHandler struct {
	quotations ports.QuotationRepository
	parts      ports.PartRepository
	workflow   ports.QuotationWorkflow
	logger     *zap.Logger
	now        func() time.Time
}

// NewPriceQuotationHandler creates a new handler instance
func NewPriceQuotationHandler(
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	workflow ports.QuotationWorkflow,
	logger *zap.Logger,
) *PriceQuotationHandler {
	return &PriceQuotationHandler{
		quotations: quotations,
		parts:      parts,
		workflow:   workflow,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle prices the quotation. Every part of the quotation must receive
// quotes; partial pricing would leave unpayable line items. The quotation may
// be priced from Created or PendingReview but not once payment has started;
// the stored status is re-checked by the transaction's gate.
func (h *PriceQuotationHandler) Handle(ctx context.Context, cmd PriceQuotationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	quotation, err := h.quotations.Get(ctx, ports.QuotationKey{ProjectID: cmd.ProjectID, ID: cmd.QuotationID})
	if err != nil {
		return err
	}
	if !quotation.Status.CanTransitionTo(entities.QuotationStatusPendingPayment) {
		return apperrors.NewPreconditionFailed("quotation is already pending payment or paid")
	}

	if err := h.checkCoversAllParts(ctx, cmd); err != nil {
		return err
	}

	now := h.now().UTC()
	attachments := make([]ports.PartQuotesAttachment, 0, len(cmd.Parts))
	for _, input := range cmd.Parts {
		part, err := h.parts.Get(ctx, ports.PartKey{QuotationID: cmd.QuotationID, ID: input.PartID})
		if err != nil {
			return err
		}
		quotes := make([]entities.PartQuote, 0, len(input.Quotes))
		for _, q := range input.Quotes {
			quotes = append(quotes, entities.PartQuote{
				ID:         uuid.NewString(),
				UnitPrice:  q.UnitPriceCents,
				SubTotal:   q.UnitPriceCents * int64(part.Quantity),
				Workdays:   q.Workdays,
				ValidUntil: now.AddDate(0, 0, q.ValidDays),
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
		attachments = append(attachments, ports.PartQuotesAttachment{
			Key:        ports.PartKey{QuotationID: cmd.QuotationID, ID: input.PartID},
			PartQuotes: quotes,
		})
	}

	gate := ports.QuotationStatusGate{
		Key:            ports.QuotationKey{ProjectID: cmd.ProjectID, ID: cmd.QuotationID},
		ExpectedStatus: quotation.Status,
		NextStatus:     entities.QuotationStatusPendingPayment,
	}
	if err := h.workflow.AttachPartQuotes(ctx, gate, attachments); err != nil {
		return err
	}

	h.logger.Info("quotation priced",
		zap.String("quotation_id", cmd.QuotationID),
		zap.Int("parts", len(attachments)),
	)
	return nil
}

func (h *PriceQuotationHandler) checkCoversAllParts(ctx context.Context, cmd PriceQuotationCommand) error {
	priced := make(map[string]struct{}, len(cmd.Parts))
	for _, input := range cmd.Parts {
		priced[input.PartID] = struct{}{}
	}

	cursor := ""
	for {
		page, err := h.parts.Query(ctx, ports.PartQuery{QuotationID: cmd.QuotationID, Cursor: cursor})
		if err != nil {
			return err
		}
		for _, part := range page.Items {
			if _, ok := priced[part.ID]; !ok {
				return apperrors.NewValidation("every part of the quotation must be priced")
			}
		}
		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}
