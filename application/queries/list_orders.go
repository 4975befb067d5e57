package queries

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// ListOrdersQuery pages orders. Ops list the open backlog with OpenOnly
// (cross-customer); customers list by client id, optionally narrowed to a
// project, quotation or part, by status, or by a creation-date window.
type ListOrdersQuery struct {
	ClientID    string                `json:"client_id,omitempty"`
	ProjectID   string                `json:"project_id,omitempty"`
	QuotationID string                `json:"quotation_id,omitempty"`
	PartID      string                `json:"part_id,omitempty"`
	Status      *entities.OrderStatus `json:"status,omitempty"`
	OpenOnly    bool                  `json:"open_only,omitempty"`
	CreatedFrom *time.Time            `json:"created_from,omitempty"`
	CreatedTo   *time.Time            `json:"created_to,omitempty"`
	Cursor      string                `json:"cursor,omitempty"`
	Limit       int32                 `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// Validate checks the query's fields
func (q ListOrdersQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	if !q.OpenOnly && q.ClientID == "" {
		return apperrors.NewMissingParameter("client_id")
	}
	if q.Status != nil && !q.Status.Valid() {
		return apperrors.NewValidation("unknown order status")
	}
	return nil
}

// ListOrdersHandler handles the ListOrdersQuery
type ListOrdersHandler struct {
	orders ports.OrderRepository
	logger *zap.Logger
}

// NewListOrdersHandler creates a new handler instance
func NewListOrdersHandler(orders ports.OrderRepository, logger *zap.Logger) *ListOrdersHandler {
	return &ListOrdersHandler{
		orders: orders,
		logger: logger,
	}
}

// Handle executes the list orders query
func (h *ListOrdersHandler) Handle(ctx context.Context, query ListOrdersQuery) (*ports.Page[*entities.Order], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.orders.Query(ctx, ports.OrderQuery{
		ClientID:    query.ClientID,
		ProjectID:   query.ProjectID,
		QuotationID: query.QuotationID,
		PartID:      query.PartID,
		Status:      query.Status,
		OpenOnly:    query.OpenOnly,
		CreatedFrom: query.CreatedFrom,
		CreatedTo:   query.CreatedTo,
		Cursor:      query.Cursor,
		Limit:       query.Limit,
	})
}
