package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// CreateQuotationCommand opens a new quotation under a project.
type CreateQuotationCommand struct {
	ClientID  string `json:"client_id" validate:"required"`
	ProjectID string `json:"project_id" validate:"required"`
	Name      string `json:"name" validate:"required,min=1,max=200"`
}

// Validate checks the command's fields
func (c CreateQuotationCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreateQuotationHandler handles the CreateQuotationCommand
type CreateQuotationHandler struct {
	projects   ports.ProjectRepository
	quotations ports.QuotationRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewCreateQuotationHandler creates a new handler instance
func NewCreateQuotationHandler(projects ports.ProjectRepository, quotations ports.QuotationRepository, logger *zap.Logger) *CreateQuotationHandler {
	return &CreateQuotationHandler{
		projects:   projects,
		quotations: quotations,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle executes the create quotation command. The parent project must
// exist and belong to the caller.
func (h *CreateQuotationHandler) Handle(ctx context.Context, cmd CreateQuotationCommand) (*entities.Quotation, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.projects.Get(ctx, ports.ProjectKey{ClientID: cmd.ClientID, ID: cmd.ProjectID}); err != nil {
		return nil, err
	}

	now := h.now().UTC()
	quotation := &entities.Quotation{
		ID:        uuid.NewString(),
		ClientID:  cmd.ClientID,
		ProjectID: cmd.ProjectID,
		Name:      cmd.Name,
		Status:    entities.QuotationStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.quotations.Create(ctx, quotation); err != nil {
		return nil, err
	}

	h.logger.Info("quotation created",
		zap.String("quotation_id", quotation.ID),
		zap.String("project_id", quotation.ProjectID),
	)
	return quotation, nil
}
