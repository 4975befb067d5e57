package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/commands"
	"github.com/humbertoamdc/torvek-sub000/application/queries"
	"github.com/humbertoamdc/torvek-sub000/pkg/common"
)

// AdminHandler handles the admin portal's review and pricing requests.
type AdminHandler struct {
	priceQuotation *commands.PriceQuotationHandler
	createOrders   *commands.CreateOrdersHandler
	listQuotations *queries.ListQuotationsHandler
	listParts      *queries.ListPartsHandler
	logger         *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	priceQuotation *commands.PriceQuotationHandler,
	createOrders *commands.CreateOrdersHandler,
	listQuotations *queries.ListQuotationsHandler,
	listParts *queries.ListPartsHandler,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		priceQuotation: priceQuotation,
		createOrders:   createOrders,
		listQuotations: listQuotations,
		listParts:      listParts,
		logger:         logger,
	}
}

// ListPendingReview handles GET /quotations/pending-review. Oldest
// submissions come back first.
func (h *AdminHandler) ListPendingReview(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractListParams(r)
	page, err := h.listQuotations.Handle(r.Context(), queries.ListQuotationsQuery{
		PendingReviewOnly: true,
		Cursor:            params.Cursor,
		Limit:             params.Limit,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, page)
}

// ListQuotationParts handles GET /quotations/{quotationID}/parts for review;
// file URLs are always attached so reviewers can open the models.
func (h *AdminHandler) ListQuotationParts(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractListParams(r)
	page, err := h.listParts.Handle(r.Context(), queries.ListPartsQuery{
		QuotationID:     chi.URLParam(r, "quotationID"),
		Cursor:          params.Cursor,
		Limit:           params.Limit,
		IncludeFileURLs: true,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, page)
}

// PriceQuotationRequest represents the request body for pricing a quotation
type PriceQuotationRequest struct {
	Parts []commands.PartPricingInput `json:"parts"`
}

// PriceQuotation handles POST /projects/{projectID}/quotations/{quotationID}/price
func (h *AdminHandler) PriceQuotation(w http.ResponseWriter, r *http.Request) {
	var req PriceQuotationRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, err)
		return
	}

	err := h.priceQuotation.Handle(r.Context(), commands.PriceQuotationCommand{
		ProjectID:   chi.URLParam(r, "projectID"),
		QuotationID: chi.URLParam(r, "quotationID"),
		Parts:       req.Parts,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, nil)
}

// CreateOrders handles POST /projects/{projectID}/quotations/{quotationID}/orders,
// the manual fallback when the webhook-driven creation did not run.
func (h *AdminHandler) CreateOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.createOrders.Handle(r.Context(), commands.CreateOrdersCommand{
		ProjectID:   chi.URLParam(r, "projectID"),
		QuotationID: chi.URLParam(r, "quotationID"),
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, orders)
}
