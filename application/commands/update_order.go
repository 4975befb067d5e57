package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/domain/events"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// RecipientInput captures where a finished order ships to.
type RecipientInput struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	Country string `json:"country" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
}

// UpdateOrderCommand advances an order's status and/or sets its shipping
// recipient.
type UpdateOrderCommand struct {
	ClientID string `json:"client_id" validate:"required"`
	OrderID  string `json:"order_id" validate:"required"`

	Status    *entities.OrderStatus `json:"status,omitempty"`
	Recipient *RecipientInput       `json:"recipient,omitempty"`
}

// Validate checks the command's fields
func (c UpdateOrderCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.Status == nil && c.Recipient == nil {
		return apperrors.NewValidation("nothing to update")
	}
	if c.Status != nil && !c.Status.Valid() {
		return apperrors.NewValidation("unknown order status")
	}
	return nil
}

// UpdateOrderHandler handles the UpdateOrderCommand
type UpdateOrderHandler struct {
	orders    ports.OrderRepository
	publisher ports.EventPublisher
	notifier  ports.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewUpdateOrderHandler creates a new handler instance
func NewUpdateOrderHandler(
	orders ports.OrderRepository,
	publisher ports.EventPublisher,
	notifier ports.Notifier,
	logger *zap.Logger,
) *UpdateOrderHandler {
	return &UpdateOrderHandler{
		orders:    orders,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle applies the update. Status moves are validated against the workshop
// state machine and written conditionally on the status the caller saw, so a
// concurrent move fails with a conflict instead of silently skipping states.
func (h *UpdateOrderHandler) Handle(ctx context.Context, cmd UpdateOrderCommand) (*entities.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	key := ports.OrderKey{ClientID: cmd.ClientID, ID: cmd.OrderID}
	current, err := h.orders.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	updatable := entities.UpdatableOrder{
		ID:       cmd.OrderID,
		ClientID: cmd.ClientID,
	}
	if cmd.Recipient != nil {
		updatable.Recipient = &entities.ShippingRecipient{
			Name:    cmd.Recipient.Name,
			Phone:   cmd.Recipient.Phone,
			Address: cmd.Recipient.Address,
			City:    cmd.Recipient.City,
			Country: cmd.Recipient.Country,
			ZipCode: cmd.Recipient.ZipCode,
		}
	}
	if cmd.Status != nil {
		if !current.Status.CanTransitionTo(*cmd.Status) {
			return nil, apperrors.NewPreconditionFailed("order status cannot move backward")
		}
		updatable.Status = cmd.Status
		expected := current.Status
		updatable.ExpectedStatus = &expected
	}

	order, err := h.orders.Update(ctx, updatable)
	if err != nil {
		return nil, err
	}

	if cmd.Status != nil {
		event := events.NewOrderStatusChanged(order.ID, order.ClientID, string(current.Status), string(order.Status), h.now().UTC())
		if err := h.publisher.Publish(ctx, event); err != nil {
			h.logger.Warn("order status event not published",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
		if err := h.notifier.NotifyOrderStatus(ctx, event); err != nil {
			h.logger.Warn("order status notification not delivered",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	h.logger.Info("order updated",
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)),
	)
	return order, nil
}
