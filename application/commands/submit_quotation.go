package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// SubmitQuotationCommand sends a quotation to the admin review queue.
type SubmitQuotationCommand struct {
	ProjectID   string `json:"project_id" validate:"required"`
	QuotationID string `json:"quotation_id" validate:"required"`
}

// Validate checks the command's fields
func (c SubmitQuotationCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SubmitQuotationHandler handles the SubmitQuotationCommand
type SubmitQuotationHandler struct {
	quotations ports.QuotationRepository
	parts      ports.PartRepository
	logger     *zap.Logger
}

// NewSubmitQuotationHandler creates a new handler instance
func NewSubmitQuotationHandler(quotations ports.QuotationRepository, parts ports.PartRepository, logger *zap.Logger) *SubmitQuotationHandler {
	return &SubmitQuotationHandler{
		quotations: quotations,
		parts:      parts,
		logger:     logger,
	}
}

// Handle moves a quotation from Created to PendingReview. A quotation with
// no parts has nothing to price and is rejected.
func (h *SubmitQuotationHandler) Handle(ctx context.Context, cmd SubmitQuotationCommand) (*entities.Quotation, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	page, err := h.parts.Query(ctx, ports.PartQuery{QuotationID: cmd.QuotationID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, apperrors.NewValidation("quotation has no parts to review")
	}

	next := entities.QuotationStatusPendingReview
	expected := entities.QuotationStatusCreated
	quotation, err := h.quotations.Update(ctx, entities.UpdatableQuotation{
		ID:             cmd.QuotationID,
		ProjectID:      cmd.ProjectID,
		Status:         &next,
		ExpectedStatus: &expected,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("quotation submitted for review",
		zap.String("quotation_id", quotation.ID),
	)
	return quotation, nil
}
