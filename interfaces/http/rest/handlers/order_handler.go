package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/commands"
	"github.com/humbertoamdc/torvek-sub000/application/queries"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/common"
)

// OrderHandler handles order-related HTTP requests for the customer and ops
// portals.
type OrderHandler struct {
	updateOrder *commands.UpdateOrderHandler
	listOrders  *queries.ListOrdersHandler
	getOrder    *queries.GetOrderHandler
	logger      *zap.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	updateOrder *commands.UpdateOrderHandler,
	listOrders *queries.ListOrdersHandler,
	getOrder *queries.GetOrderHandler,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		updateOrder: updateOrder,
		listOrders:  listOrders,
		getOrder:    getOrder,
		logger:      logger,
	}
}

// ListClientOrders handles GET /orders for the customer portal.
func (h *OrderHandler) ListClientOrders(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	params := common.ExtractListParams(r)
	query := queries.ListOrdersQuery{
		ClientID:    clientID,
		ProjectID:   r.URL.Query().Get("project_id"),
		QuotationID: r.URL.Query().Get("quotation_id"),
		PartID:      r.URL.Query().Get("part_id"),
		CreatedFrom: params.CreatedFrom,
		CreatedTo:   params.CreatedTo,
		Cursor:      params.Cursor,
		Limit:       params.Limit,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := entities.OrderStatus(status)
		query.Status = &s
	}

	page, err := h.listOrders.Handle(r.Context(), query)
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, page)
}

// ListOpenOrders handles GET /orders/open for the ops portal: the
// cross-customer backlog of orders waiting to be picked up.
func (h *OrderHandler) ListOpenOrders(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractListParams(r)
	page, err := h.listOrders.Handle(r.Context(), queries.ListOrdersQuery{
		OpenOnly:    true,
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

// GetOrder handles GET /orders/{orderID}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	order, err := h.getOrder.Handle(r.Context(), queries.GetOrderQuery{
		ClientID: clientID,
		OrderID:  chi.URLParam(r, "orderID"),
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, order)
}

// UpdateRecipientRequest represents the request body for setting an order's
// shipping recipient.
type UpdateRecipientRequest struct {
	Recipient commands.RecipientInput `json:"recipient"`
}

// UpdateRecipient handles PUT /orders/{orderID}/recipient on the customer
// portal.
func (h *OrderHandler) UpdateRecipient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := common.GetIdentityID(r.Context())
	if !ok {
		common.RespondError(w, apperrors.NewUnauthorized(""))
		return
	}

	var req UpdateRecipientRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, err)
		return
	}

	order, err := h.updateOrder.Handle(r.Context(), commands.UpdateOrderCommand{
		ClientID:  clientID,
		OrderID:   chi.URLParam(r, "orderID"),
		Recipient: &req.Recipient,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, order)
}

// UpdateStatusRequest represents the request body for advancing an order.
// ClientID identifies the order's partition since ops act across customers.
type UpdateStatusRequest struct {
	ClientID string               `json:"client_id"`
	Status   entities.OrderStatus `json:"status"`
}

// UpdateStatus handles PUT /orders/{orderID}/status on the ops portal.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, err)
		return
	}

	order, err := h.updateOrder.Handle(r.Context(), commands.UpdateOrderCommand{
		ClientID: req.ClientID,
		OrderID:  chi.URLParam(r, "orderID"),
		Status:   &req.Status,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, order)
}
