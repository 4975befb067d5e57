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

// PartHandler handles part-related HTTP requests
type PartHandler struct {
	createParts *commands.CreatePartsHandler
	updatePart  *commands.UpdatePartHandler
	deletePart  *commands.DeletePartHandler
	listParts   *queries.ListPartsHandler
	logger      *zap.Logger
}

// NewPartHandler creates a new part handler
func NewPartHandler(
	createParts *commands.CreatePartsHandler,
	updatePart *commands.UpdatePartHandler,
	deletePart *commands.DeletePartHandler,
	listParts *queries.ListPartsHandler,
	logger *zap.Logger,
) *PartHandler {
	return &PartHandler{
		createParts: createParts,
		updatePart:  updatePart,
		deletePart:  deletePart,
		listParts:   listParts,
		logger:      logger,
	}
}

// CreatePartsRequest represents the request body for creating parts
type CreatePartsRequest struct {
	Parts []commands.NewPartInput `json:"parts"`
}

// CreateParts handles POST /projects/{projectID}/quotations/{quotationID}/parts
func (h *PartHandler) CreateParts(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	var req CreatePartsRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, err)
		return
	}

	created, err := h.createParts.Handle(r.Context(), commands.CreatePartsCommand{
		ClientID:    clientID,
		ProjectID:   chi.URLParam(r, "projectID"),
		QuotationID: chi.URLParam(r, "quotationID"),
		Parts:       req.Parts,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, created)
}

// ListParts handles GET /projects/{projectID}/quotations/{quotationID}/parts
func (h *PartHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractListParams(r)
	page, err := h.listParts.Handle(r.Context(), queries.ListPartsQuery{
		QuotationID:     chi.URLParam(r, "quotationID"),
		Cursor:          params.Cursor,
		Limit:           params.Limit,
		IncludeFileURLs: r.URL.Query().Get("include_file_urls") == "true",
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, page)
}

// UpdatePartRequest represents the request body for patching a part
type UpdatePartRequest struct {
	Process   *string `json:"process,omitempty"`
	Material  *string `json:"material,omitempty"`
	Tolerance *string `json:"tolerance,omitempty"`
	Quantity  *int    `json:"quantity,omitempty"`

	DrawingFile      *commands.DrawingFileInput `json:"drawing_file,omitempty"`
	ClearDrawingFile bool                       `json:"clear_drawing_file,omitempty"`

	SelectedPartQuoteID      *string `json:"selected_part_quote_id,omitempty"`
	ClearSelectedPartQuoteID bool    `json:"clear_selected_part_quote_id,omitempty"`
}

// UpdatePart handles PATCH /projects/{projectID}/quotations/{quotationID}/parts/{partID}
func (h *PartHandler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	var req UpdatePartRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, err)
		return
	}

	updated, err := h.updatePart.Handle(r.Context(), commands.UpdatePartCommand{
		ClientID:                 clientID,
		ProjectID:                chi.URLParam(r, "projectID"),
		QuotationID:              chi.URLParam(r, "quotationID"),
		PartID:                   chi.URLParam(r, "partID"),
		Process:                  req.Process,
		Material:                 req.Material,
		Tolerance:                req.Tolerance,
		Quantity:                 req.Quantity,
		DrawingFile:              req.DrawingFile,
		ClearDrawingFile:         req.ClearDrawingFile,
		SelectedPartQuoteID:      req.SelectedPartQuoteID,
		ClearSelectedPartQuoteID: req.ClearSelectedPartQuoteID,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, updated)
}

// DeletePart handles DELETE /projects/{projectID}/quotations/{quotationID}/parts/{partID}
func (h *PartHandler) DeletePart(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	err := h.deletePart.Handle(r.Context(), commands.DeletePartCommand{
		ClientID:    clientID,
		ProjectID:   chi.URLParam(r, "projectID"),
		QuotationID: chi.URLParam(r, "quotationID"),
		PartID:      chi.URLParam(r, "partID"),
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusNoContent, nil)
}
