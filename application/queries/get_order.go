package queries

import (
	"context"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// GetOrderQuery fetches a single order by its client-scoped key.
type GetOrderQuery struct {
	ClientID string `json:"client_id" validate:"required"`
	OrderID  string `json:"order_id" validate:"required"`
}

// Validate checks the query's fields
func (q GetOrderQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetOrderHandler handles the GetOrderQuery
type GetOrderHandler struct {
	orders ports.OrderRepository
	logger *zap.Logger
}

// NewGetOrderHandler creates a new handler instance
func NewGetOrderHandler(orders ports.OrderRepository, logger *zap.Logger) *GetOrderHandler {
	return &GetOrderHandler{
		orders: orders,
		logger: logger,
	}
}

// Handle executes the get order query
func (h *GetOrderHandler) Handle(ctx context.Context, query GetOrderQuery) (*entities.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.orders.Get(ctx, ports.OrderKey{ClientID: query.ClientID, ID: query.OrderID})
}
