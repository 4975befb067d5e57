package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// DrawingFileInput names an uploaded technical drawing.
type DrawingFileInput struct {
	Name string `json:"name" validate:"required"`
}

// UpdatePartCommand patches a part's manufacturing attributes. Nil fields are
// left unchanged; the Clear flags remove a stored value outright.
type UpdatePartCommand struct {
	ClientID    string `json:"client_id" validate:"required"`
	ProjectID   string `json:"project_id" validate:"required"`
	QuotationID string `json:"quotation_id" validate:"required"`
	PartID      string `json:"part_id" validate:"required"`

	Process   *string `json:"process,omitempty"`
	Material  *string `json:"material,omitempty"`
	Tolerance *string `json:"tolerance,omitempty"`
	Quantity  *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`

	DrawingFile      *DrawingFileInput `json:"drawing_file,omitempty"`
	ClearDrawingFile bool              `json:"clear_drawing_file,omitempty"`

	SelectedPartQuoteID      *string `json:"selected_part_quote_id,omitempty"`
	ClearSelectedPartQuoteID bool    `json:"clear_selected_part_quote_id,omitempty"`
}

// Validate checks the command's fields
func (c UpdatePartCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.DrawingFile != nil && c.ClearDrawingFile {
		return apperrors.NewValidation("drawing_file and clear_drawing_file are mutually exclusive")
	}
	if c.SelectedPartQuoteID != nil && c.ClearSelectedPartQuoteID {
		return apperrors.NewValidation("selected_part_quote_id and clear_selected_part_quote_id are mutually exclusive")
	}
	return nil
}

// UpdatedPart pairs the stored part with the presigned URL for a newly
// attached drawing, when one was set.
type UpdatedPart struct {
	Part             *entities.Part `json:"part"`
	DrawingUploadURL string         `json:"drawing_upload_url,omitempty"`
}

// UpdatePartHandler handles the UpdatePartCommand
type UpdatePartHandler struct {
	quotations ports.QuotationRepository
	parts      ports.PartRepository
	storage    ports.ObjectStorage
	uploadTTL  time.Duration
	logger     *zap.Logger
}

// NewUpdatePartHandler creates a new handler instance
func NewUpdatePartHandler(
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	storage ports.ObjectStorage,
	uploadTTL time.Duration,
	logger *zap.Logger,
) *UpdatePartHandler {
	return &UpdatePartHandler{
		quotations: quotations,
		parts:      parts,
		storage:    storage,
		uploadTTL:  uploadTTL,
		logger:     logger,
	}
}

// Handle applies the patch. Manufacturing attributes and the drawing are
// frozen once the quotation is paid; selecting a part quote validates the id
// against the stored quotes.
func (h *UpdatePartHandler) Handle(ctx context.Context, cmd UpdatePartCommand) (*UpdatedPart, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	quotation, err := h.quotations.Get(ctx, ports.QuotationKey{ProjectID: cmd.ProjectID, ID: cmd.QuotationID})
	if err != nil {
		return nil, err
	}
	if quotation.PartsFrozen() {
		return nil, apperrors.NewPreconditionFailed("quotation is paid, parts can no longer be changed")
	}

	updatable := entities.UpdatablePart{
		ID:          cmd.PartID,
		QuotationID: cmd.QuotationID,
		Process:     cmd.Process,
		Material:    cmd.Material,
		Tolerance:   cmd.Tolerance,
		Quantity:    cmd.Quantity,
	}

	var drawingUploadURL string
	switch {
	case cmd.DrawingFile != nil:
		path := blobPrefix(cmd.ClientID, cmd.ProjectID, cmd.QuotationID, cmd.PartID) + "/drawing/" + cmd.DrawingFile.Name
		updatable.DrawingFile = entities.Set(entities.FileReference{Name: cmd.DrawingFile.Name, Path: path})
		drawingUploadURL, err = h.storage.PutPresignedURL(ctx, path, h.uploadTTL)
		if err != nil {
			return nil, err
		}
	case cmd.ClearDrawingFile:
		updatable.DrawingFile = entities.Clear[entities.FileReference]()
	}

	switch {
	case cmd.SelectedPartQuoteID != nil:
		part, err := h.parts.Get(ctx, ports.PartKey{QuotationID: cmd.QuotationID, ID: cmd.PartID})
		if err != nil {
			return nil, err
		}
		if !hasPartQuote(part, *cmd.SelectedPartQuoteID) {
			return nil, apperrors.NewValidation("selected_part_quote_id does not reference a quote of this part")
		}
		updatable.SelectedPartQuoteID = entities.Set(*cmd.SelectedPartQuoteID)
	case cmd.ClearSelectedPartQuoteID:
		updatable.SelectedPartQuoteID = entities.Clear[string]()
	}

	part, err := h.parts.Update(ctx, updatable)
	if err != nil {
		return nil, err
	}

	h.logger.Info("part updated",
		zap.String("part_id", part.ID),
		zap.String("quotation_id", cmd.QuotationID),
	)
	return &UpdatedPart{Part: part, DrawingUploadURL: drawingUploadURL}, nil
}

func hasPartQuote(part *entities.Part, quoteID string) bool {
	for _, q := range part.PartQuotes {
		if q.ID == quoteID {
			return true
		}
	}
	return false
}
