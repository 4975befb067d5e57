package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// DeleteQuotationCommand removes a quotation with its parts and blobs.
// Refused once the quotation has been paid.
type DeleteQuotationCommand struct {
	ProjectID   string `json:"project_id" validate:"required"`
	QuotationID string `json:"quotation_id" validate:"required"`
}

// Validate checks the command's fields
func (c DeleteQuotationCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteQuotationHandler handles the DeleteQuotationCommand
type DeleteQuotationHandler struct {
	cascader ports.ProjectCascader
	logger   *zap.Logger
}

// NewDeleteQuotationHandler creates a new handler instance
func NewDeleteQuotationHandler(cascader ports.ProjectCascader, logger *zap.Logger) *DeleteQuotationHandler {
	return &DeleteQuotationHandler{
		cascader: cascader,
		logger:   logger,
	}
}

// Handle executes the delete quotation command
func (h *DeleteQuotationHandler) Handle(ctx context.Context, cmd DeleteQuotationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	key := ports.QuotationKey{ProjectID: cmd.ProjectID, ID: cmd.QuotationID}
	if err := h.cascader.DeleteQuotation(ctx, key); err != nil {
		return err
	}

	h.logger.Info("quotation deleted",
		zap.String("quotation_id", cmd.QuotationID),
		zap.String("project_id", cmd.ProjectID),
	)
	return nil
}
