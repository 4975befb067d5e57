package events

import "time"

// DomainEvent is the base interface for all domain events.
// Events represent something that has already happened.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string   { return e.AggregateID }
func (e BaseEvent) GetEventType() string     { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time  { return e.Timestamp }

// QuotationPaid is raised when a payment confirmation moves a quotation to
// Paid.
type QuotationPaid struct {
	BaseEvent
	QuotationID string `json:"quotation_id"`
	ClientID    string `json:"client_id"`
	ProjectID   string `json:"project_id"`
	PaymentID   string `json:"payment_id"`
}

// NewQuotationPaid creates a QuotationPaid event.
func NewQuotationPaid(quotationID, clientID, projectID, paymentID string, at time.Time) QuotationPaid {
	return QuotationPaid{
		BaseEvent: BaseEvent{
			AggregateID: quotationID,
			EventType:   "quotation.paid",
			Timestamp:   at,
		},
		QuotationID: quotationID,
		ClientID:    clientID,
		ProjectID:   projectID,
		PaymentID:   paymentID,
	}
}

// OrdersCreated is raised when orders are created from a paid quotation.
type OrdersCreated struct {
	BaseEvent
	QuotationID string   `json:"quotation_id"`
	ClientID    string   `json:"client_id"`
	OrderIDs    []string `json:"order_ids"`
}

// NewOrdersCreated creates an OrdersCreated event.
func NewOrdersCreated(quotationID, clientID string, orderIDs []string, at time.Time) OrdersCreated {
	return OrdersCreated{
		BaseEvent: BaseEvent{
			AggregateID: quotationID,
			EventType:   "quotation.orders_created",
			Timestamp:   at,
		},
		QuotationID: quotationID,
		ClientID:    clientID,
		OrderIDs:    orderIDs,
	}
}

// OrderStatusChanged is raised when the workshop advances an order.
type OrderStatusChanged struct {
	BaseEvent
	OrderID   string `json:"order_id"`
	ClientID  string `json:"client_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// NewOrderStatusChanged creates an OrderStatusChanged event.
func NewOrderStatusChanged(orderID, clientID, oldStatus, newStatus string, at time.Time) OrderStatusChanged {
	return OrderStatusChanged{
		BaseEvent: BaseEvent{
			AggregateID: orderID,
			EventType:   "order.status_changed",
			Timestamp:   at,
		},
		OrderID:   orderID,
		ClientID:  clientID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}
