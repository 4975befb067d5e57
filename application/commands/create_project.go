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

// CreateProjectCommand represents the command to create a new project
type CreateProjectCommand struct {
	ClientID string `json:"client_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
}

// Validate checks the command's fields
func (c CreateProjectCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreateProjectHandler handles the CreateProjectCommand
type CreateProjectHandler struct {
	projects ports.ProjectRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewCreateProjectHandler creates a new handler instance
func NewCreateProjectHandler(projects ports.ProjectRepository, logger *zap.Logger) *CreateProjectHandler {
	return &CreateProjectHandler{
		projects: projects,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle executes the create project command
func (h *CreateProjectHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (*entities.Project, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.now().UTC()
	project := &entities.Project{
		ID:        uuid.NewString(),
		ClientID:  cmd.ClientID,
		Name:      cmd.Name,
		Status:    entities.ProjectStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	h.logger.Info("project created",
		zap.String("project_id", project.ID),
		zap.String("client_id", project.ClientID),
	)
	return project, nil
}
