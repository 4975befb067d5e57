package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/commands"
	"github.com/humbertoamdc/torvek-sub000/application/queries"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/common"
)

const maxBodyBytes = 1 << 20

// ProjectHandler handles project-related HTTP requests
type ProjectHandler struct {
	createProject *commands.CreateProjectHandler
	deleteProject *commands.DeleteProjectHandler
	listProjects  *queries.ListProjectsHandler
	logger        *zap.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(
	createProject *commands.CreateProjectHandler,
	deleteProject *commands.DeleteProjectHandler,
	listProjects *queries.ListProjectsHandler,
	logger *zap.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		createProject: createProject,
		deleteProject: deleteProject,
		listProjects:  listProjects,
		logger:        logger,
	}
}

// CreateProjectRequest represents the request body for creating a project
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	var req CreateProjectRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, err)
		return
	}

	project, err := h.createProject.Handle(r.Context(), commands.CreateProjectCommand{
		ClientID: clientID,
		Name:     req.Name,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, project)
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	params := common.ExtractListParams(r)
	page, err := h.listProjects.Handle(r.Context(), queries.ListProjectsQuery{
		ClientID:    clientID,
		CreatedFrom: params.CreatedFrom,
		CreatedTo:   params.CreatedTo,
		Cursor:      params.Cursor,
		Limit:       params.Limit,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, page)
}

// DeleteProject handles DELETE /projects/{projectID}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	err := h.deleteProject.Handle(r.Context(), commands.DeleteProjectCommand{
		ClientID:  clientID,
		ProjectID: chi.URLParam(r, "projectID"),
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusNoContent, nil)
}
