package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// NewPartInput is one part to create under a quotation.
type NewPartInput struct {
	ModelFileName string `json:"model_file_name" validate:"required"`
	Process       string `json:"process" validate:"required"`
	Material      string `json:"material" validate:"required"`
	Tolerance     string `json:"tolerance" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
}

// CreatePartsCommand adds a batch of parts to a quotation. Rejected once the
// quotation has been paid.
type CreatePartsCommand struct {
	ClientID    string         `json:"client_id" validate:"required"`
	ProjectID   string         `json:"project_id" validate:"required"`
	QuotationID string         `json:"quotation_id" validate:"required"`
	Parts       []NewPartInput `json:"parts" validate:"required,min=1,max=25,dive"`
}

// Validate checks the command's fields
func (c CreatePartsCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreatedPart pairs a stored part with the presigned URL the client uploads
// its model file to.
type CreatedPart struct {
	Part           *entities.Part `json:"part"`
	ModelUploadURL string         `json:"model_upload_url"`
}

// CreatePartsHandler handles the CreatePartsCommand
type CreatePartsHandler struct {
	quotations ports.QuotationRepository
	parts      ports.PartRepository
	storage    ports.ObjectStorage
	uploadTTL  time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewCreatePartsHandler creates a new handler instance
func NewCreatePartsHandler(
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	storage ports.ObjectStorage,
	uploadTTL time.Duration,
	logger *zap.Logger,
) *CreatePartsHandler {
	return &CreatePartsHandler{
		quotations: quotations,
		parts:      parts,
		storage:    storage,
		uploadTTL:  uploadTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle creates the parts and returns them with upload URLs. Blob paths are
// keyed under client/project/quotation/part so cascade deletes can find them.
func (h *CreatePartsHandler) Handle(ctx context.Context, cmd CreatePartsCommand) ([]CreatedPart, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	quotation, err := h.quotations.Get(ctx, ports.QuotationKey{ProjectID: cmd.ProjectID, ID: cmd.QuotationID})
	if err != nil {
		return nil, err
	}
	if quotation.PartsFrozen() {
		return nil, apperrors.NewPreconditionFailed("quotation is paid, parts can no longer be added")
	}

	now := h.now().UTC()
	batch := make([]*entities.Part, 0, len(cmd.Parts))
	for _, input := range cmd.Parts {
		id := uuid.NewString()
		prefix := blobPrefix(cmd.ClientID, cmd.ProjectID, cmd.QuotationID, id)
		batch = append(batch, &entities.Part{
			ID:          id,
			ClientID:    cmd.ClientID,
			ProjectID:   cmd.ProjectID,
			QuotationID: cmd.QuotationID,
			ModelFile: entities.FileReference{
				Name: input.ModelFileName,
				Path: prefix + "/model/" + input.ModelFileName,
			},
			RenderFile: entities.FileReference{
				Name: renderFileName(input.ModelFileName),
				Path: prefix + "/render/" + renderFileName(input.ModelFileName),
			},
			Process:   input.Process,
			Material:  input.Material,
			Tolerance: input.Tolerance,
			Quantity:  input.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := h.parts.BatchCreate(ctx, batch); err != nil {
		return nil, err
	}

	created := make([]CreatedPart, 0, len(batch))
	for _, part := range batch {
		url, err := h.storage.PutPresignedURL(ctx, part.ModelFile.Path, h.uploadTTL)
		if err != nil {
			return nil, err
		}
		created = append(created, CreatedPart{Part: part, ModelUploadURL: url})
	}

	h.logger.Info("parts created",
		zap.String("quotation_id", cmd.QuotationID),
		zap.Int("count", len(created)),
	)
	return created, nil
}

func blobPrefix(clientID, projectID, quotationID, partID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", clientID, projectID, quotationID, partID)
}

func renderFileName(modelFileName string) string {
	return modelFileName + ".png"
}
