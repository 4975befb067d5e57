package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// DeleteProjectCommand removes a project and everything underneath it:
// quotations, parts, and part blobs. Refused while the project is Locked.
type DeleteProjectCommand struct {
	ClientID  string `json:"client_id" validate:"required"`
	ProjectID string `json:"project_id" validate:"required"`
}

// Validate checks the command's fields
func (c DeleteProjectCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteProjectHandler handles the DeleteProjectCommand
type DeleteProjectHandler struct {
	cascader ports.ProjectCascader
	logger   *zap.Logger
}

// NewDeleteProjectHandler creates a new handler instance
func NewDeleteProjectHandler(cascader ports.ProjectCascader, logger *zap.Logger) *DeleteProjectHandler {
	return &DeleteProjectHandler{
		cascader: cascader,
		logger:   logger,
	}
}

// Handle executes the delete project command
func (h *DeleteProjectHandler) Handle(ctx context.Context, cmd DeleteProjectCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	key := ports.ProjectKey{ClientID: cmd.ClientID, ID: cmd.ProjectID}
	if err := h.cascader.DeleteProject(ctx, key); err != nil {
		return err
	}

	h.logger.Info("project deleted",
		zap.String("project_id", cmd.ProjectID),
		zap.String("client_id", cmd.ClientID),
	)
	return nil
}
