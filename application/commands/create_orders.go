package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/domain/events"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// CreateOrdersCommand turns a paid quotation into manufacturing orders, one
// per part, atomically with the Paid → OrdersCreated transition.
type CreateOrdersCommand struct {
	ProjectID   string `json:"project_id" validate:"required"`
	QuotationID string `json:"quotation_id" validate:"required"`
}

// Validate checks the command's fields
func (c CreateOrdersCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreateOrdersHandler handles the CreateOrdersCommand
type CreateOrdersHandler struct {
	quotations ports.QuotationRepository
	parts      ports.PartRepository
	workflow   ports.QuotationWorkflow
	publisher  ports.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewCreateOrdersHandler creates a new handler instance
func NewCreateOrdersHandler(
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	workflow ports.QuotationWorkflow,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CreateOrdersHandler {
	return &CreateOrdersHandler{
		quotations: quotations,
		parts:      parts,
		workflow:   workflow,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle creates one Open order per part. Every part must carry a selected
// quote; the order's deadline is the selection's workdays from now. The
// shipping recipient starts empty and is captured later through an order
// update. The transaction's Paid gate makes a concurrent duplicate a no-op.
func (h *CreateOrdersHandler) Handle(ctx context.Context, cmd CreateOrdersCommand) ([]*entities.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	quotation, err := h.quotations.Get(ctx, ports.QuotationKey{ProjectID: cmd.ProjectID, ID: cmd.QuotationID})
	if err != nil {
		return nil, err
	}
	if quotation.Status != entities.QuotationStatusPaid {
		return nil, apperrors.NewPreconditionFailed("quotation is not paid")
	}

	parts, err := h.collectParts(ctx, cmd.QuotationID)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, apperrors.NewValidation("quotation has no parts")
	}

	now := h.now().UTC()
	orders := make([]*entities.Order, 0, len(parts))
	for _, part := range parts {
		quote, ok := part.SelectedQuote()
		if !ok {
			return nil, apperrors.NewValidation("every part must have a selected quote")
		}
		orders = append(orders, &entities.Order{
			ID:                  uuid.NewString(),
			ClientID:            quotation.ClientID,
			ProjectID:           cmd.ProjectID,
			QuotationID:         cmd.QuotationID,
			PartID:              part.ID,
			SelectedPartQuoteID: quote.ID,
			Status:              entities.OrderStatusOpen,
			Deadline:            addWorkdays(now, quote.Workdays),
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}

	gate := ports.QuotationStatusGate{
		Key:            ports.QuotationKey{ProjectID: cmd.ProjectID, ID: cmd.QuotationID},
		ExpectedStatus: entities.QuotationStatusPaid,
		NextStatus:     entities.QuotationStatusOrdersCreated,
	}
	if err := h.workflow.CreateOrders(ctx, gate, orders); err != nil {
		return nil, err
	}

	orderIDs := make([]string, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	event := events.NewOrdersCreated(cmd.QuotationID, quotation.ClientID, orderIDs, now)
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("orders created event not published",
			zap.String("quotation_id", cmd.QuotationID),
			zap.Error(err),
		)
	}

	h.logger.Info("orders created",
		zap.String("quotation_id", cmd.QuotationID),
		zap.Int("count", len(orders)),
	)
	return orders, nil
}

func (h *CreateOrdersHandler) collectParts(ctx context.Context, quotationID string) ([]*entities.Part, error) {
	var all []*entities.Part
	cursor := ""
	for {
		page, err := h.parts.Query(ctx, ports.PartQuery{QuotationID: quotationID, Cursor: cursor})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// addWorkdays advances t by n weekdays, skipping Saturdays and Sundays.
func addWorkdays(t time.Time, n int) time.Time {
	for n > 0 {
		t = t.AddDate(0, 0, 1)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return t
}
