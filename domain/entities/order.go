package entities

import "time"

// OrderStatus tracks a manufacturing order from creation to delivery.
type OrderStatus string

const (
	OrderStatusPendingPricing OrderStatus = "PENDING_PRICING"
	OrderStatusOpen           OrderStatus = "OPEN"
	OrderStatusInProgress     OrderStatus = "IN_PROGRESS"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPendingPricing: 0,
	OrderStatusOpen:           1,
	OrderStatusInProgress:     2,
	OrderStatusReady:          3,
	OrderStatusShipped:        4,
	OrderStatusDelivered:      5,
}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// CanTransitionTo reports whether the workshop flow allows moving from s to
// next. Forward moves only.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// ShippingRecipient is where a finished order ships to.
type ShippingRecipient struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

// Order is created transactionally, one per priced part, when a quotation
// transitions to OrdersCreated. IsOpen is a materialized function of Status
// and must never be set independently.
type Order struct {
	ID                  string            `json:"id"`
	ClientID            string            `json:"client_id"`
	ProjectID           string            `json:"project_id"`
	QuotationID         string            `json:"quotation_id"`
	PartID              string            `json:"part_id"`
	SelectedPartQuoteID string            `json:"selected_part_quote_id"`
	Status              OrderStatus       `json:"status"`
	Deadline            time.Time         `json:"deadline"`
	Recipient           ShippingRecipient `json:"recipient"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// IsOpen reports the derived open flag: true only while the order waits to be
// picked up by the workshop.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// UpdatableOrder describes a partial update to an order.
type UpdatableOrder struct {
	ID        string
	ClientID  string
	Status    *OrderStatus
	Deadline  *time.Time
	Recipient *ShippingRecipient

	// ExpectedStatus, when set, turns the update into a conditional write
	// that fails unless the stored order currently has this status.
	ExpectedStatus *OrderStatus
}
