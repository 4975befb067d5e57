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

// QuotationHandler handles quotation-related HTTP requests for the customer
// portal.
type QuotationHandler struct {
	createQuotation *commands.CreateQuotationHandler
	submitQuotation *commands.SubmitQuotationHandler
	deleteQuotation *commands.DeleteQuotationHandler
	createCheckout  *commands.CreateCheckoutHandler
	listQuotations  *queries.ListQuotationsHandler
	logger          *zap.Logger
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(
	createQuotation *commands.CreateQuotationHandler,
	submitQuotation *commands.SubmitQuotationHandler,
	deleteQuotation *commands.DeleteQuotationHandler,
	createCheckout *commands.CreateCheckoutHandler,
	listQuotations *queries.ListQuotationsHandler,
	logger *zap.Logger,
) *QuotationHandler {
	return &QuotationHandler{
		createQuotation: createQuotation,
		submitQuotation: submitQuotation,
		deleteQuotation: deleteQuotation,
		createCheckout:  createCheckout,
		listQuotations:  listQuotations,
		logger:          logger,
	}
}

// CreateQuotationRequest represents the request body for creating a quotation
type CreateQuotationRequest struct {
	Name string `json:"name"`
}

// CreateQuotation handles POST /projects/{projectID}/quotations
func (h *QuotationHandler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	var req CreateQuotationRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, err)
		return
	}

	quotation, err := h.createQuotation.Handle(r.Context(), commands.CreateQuotationCommand{
		ClientID:  clientID,
		ProjectID: chi.URLParam(r, "projectID"),
		Name:      req.Name,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, quotation)
}

// ListQuotations handles GET /projects/{projectID}/quotations
func (h *QuotationHandler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractListParams(r)
	page, err := h.listQuotations.Handle(r.Context(), queries.ListQuotationsQuery{
		ProjectID:   chi.URLParam(r, "projectID"),
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

// ListClientQuotations handles GET /quotations, listing across the caller's
// projects.
func (h *QuotationHandler) ListClientQuotations(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	params := common.ExtractListParams(r)
	page, err := h.listQuotations.Handle(r.Context(), queries.ListQuotationsQuery{
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

// SubmitQuotation handles POST /projects/{projectID}/quotations/{quotationID}/submit
func (h *QuotationHandler) SubmitQuotation(w http.ResponseWriter, r *http.Request) {
	quotation, err := h.submitQuotation.Handle(r.Context(), commands.SubmitQuotationCommand{
		ProjectID:   chi.URLParam(r, "projectID"),
		QuotationID: chi.URLParam(r, "quotationID"),
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, quotation)
}

// DeleteQuotation handles DELETE /projects/{projectID}/quotations/{quotationID}
func (h *QuotationHandler) DeleteQuotation(w http.ResponseWriter, r *http.Request) {
	err := h.deleteQuotation.Handle(r.Context(), commands.DeleteQuotationCommand{
		ProjectID:   chi.URLParam(r, "projectID"),
		QuotationID: chi.URLParam(r, "quotationID"),
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusNoContent, nil)
}

// CreateCheckoutRequest represents the request body for opening a checkout
// session.
type CreateCheckoutRequest struct {
	Selections []commands.PartQuoteSelection `json:"selections"`
}

// CreateCheckout handles POST /projects/{projectID}/quotations/{quotationID}/checkout
func (h *QuotationHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	var req CreateCheckoutRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, err)
		return
	}

	session, err := h.createCheckout.Handle(r.Context(), commands.CreateCheckoutCommand{
		ClientID:    clientID,
		ProjectID:   chi.URLParam(r, "projectID"),
		QuotationID: chi.URLParam(r, "quotationID"),
		Selections:  req.Selections,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, session)
}
