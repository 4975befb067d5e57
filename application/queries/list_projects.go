package queries

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// ListProjectsQuery pages a client's projects, newest first, optionally
// bounded by a creation-date window.
type ListProjectsQuery struct {
	ClientID    string     `json:"client_id" validate:"required"`
	CreatedFrom *time.Time `json:"created_from,omitempty"`
	CreatedTo   *time.Time `json:"created_to,omitempty"`
	Cursor      string     `json:"cursor,omitempty"`
	Limit       int32      `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// Validate checks the query's fields
func (q ListProjectsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListProjectsHandler handles the ListProjectsQuery
type ListProjectsHandler struct {
	projects ports.ProjectRepository
	logger   *zap.Logger
}

// NewListProjectsHandler creates a new handler instance
func NewListProjectsHandler(projects ports.ProjectRepository, logger *zap.Logger) *ListProjectsHandler {
	return &ListProjectsHandler{
		projects: projects,
		logger:   logger,
	}
}

// Handle executes the list projects query
func (h *ListProjectsHandler) Handle(ctx context.Context, query ListProjectsQuery) (*ports.Page[*entities.Project], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.projects.Query(ctx, ports.ProjectQuery{
		ClientID:    query.ClientID,
		CreatedFrom: query.CreatedFrom,
		CreatedTo:   query.CreatedTo,
		Cursor:      query.Cursor,
		Limit:       query.Limit,
	})
}
