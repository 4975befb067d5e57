package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// DeletePartCommand removes a part and its blobs. Refused once the owning
// quotation has been paid.
type DeletePartCommand struct {
	ClientID    string `json:"client_id" validate:"required"`
	ProjectID   string `json:"project_id" validate:"required"`
	QuotationID string `json:"quotation_id" validate:"required"`
	PartID      string `json:"part_id" validate:"required"`
}

// Validate checks the command's fields
func (c DeletePartCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeletePartHandler handles the DeletePartCommand
type DeletePartHandler struct {
	quotations ports.QuotationRepository
	parts      ports.PartRepository
	storage    ports.ObjectStorage
	logger     *zap.Logger
}

// NewDeletePartHandler creates a new handler instance
func NewDeletePartHandler(
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	storage ports.ObjectStorage,
	logger *zap.Logger,
) *DeletePartHandler {
	return &DeletePartHandler{
		quotations: quotations,
		parts:      parts,
		storage:    storage,
		logger:     logger,
	}
}

// Handle deletes the part item first and only then its blobs; a blob cleanup
// failure is logged, not surfaced, matching the cascade behavior.
func (h *DeletePartHandler) Handle(ctx context.Context, cmd DeletePartCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	quotation, err := h.quotations.Get(ctx, ports.QuotationKey{ProjectID: cmd.ProjectID, ID: cmd.QuotationID})
	if err != nil {
		return err
	}
	if quotation.PartsFrozen() {
		return apperrors.NewPreconditionFailed("quotation is paid, parts can no longer be removed")
	}

	key := ports.PartKey{QuotationID: cmd.QuotationID, ID: cmd.PartID}
	part, err := h.parts.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := h.parts.Delete(ctx, key); err != nil {
		return err
	}

	paths := []string{part.ModelFile.Path, part.RenderFile.Path}
	if part.DrawingFile != nil {
		paths = append(paths, part.DrawingFile.Path)
	}
	if err := h.storage.BulkDelete(ctx, paths); err != nil {
		h.logger.Warn("part blobs not removed",
			zap.String("part_id", cmd.PartID),
			zap.Error(err),
		)
	}

	h.logger.Info("part deleted",
		zap.String("part_id", cmd.PartID),
		zap.String("quotation_id", cmd.QuotationID),
	)
	return nil
}
