package entities

import "time"

// QuotationStatus is a strict forward state machine. No backward transitions
// are exposed; the storage layer additionally enforces the Paid→OrdersCreated
// edge with a condition expression.
type QuotationStatus string

const (
	QuotationStatusCreated        QuotationStatus = "CREATED"
	QuotationStatusPendingReview  QuotationStatus = "PENDING_REVIEW"
	QuotationStatusPendingPayment QuotationStatus = "PENDING_PAYMENT"
	QuotationStatusPaid           QuotationStatus = "PAID"
	QuotationStatusOrdersCreated  QuotationStatus = "ORDERS_CREATED"
)

var quotationStatusRank = map[QuotationStatus]int{
	QuotationStatusCreated:        0,
	QuotationStatusPendingReview:  1,
	QuotationStatusPendingPayment: 2,
	QuotationStatusPaid:           3,
	QuotationStatusOrdersCreated:  4,
}

// Valid reports whether s is a known status value.
func (s QuotationStatus) Valid() bool {
	_, ok := quotationStatusRank[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next. Forward moves only; admin pricing may skip PendingReview when a
// quotation is priced straight from Created.
func (s QuotationStatus) CanTransitionTo(next QuotationStatus) bool {
	from, ok := quotationStatusRank[s]
	if !ok {
		return false
	}
	to, ok := quotationStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Quotation is the unit of payment. Its status gates part mutation and order
// creation.
type Quotation struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id"`
	ProjectID string          `json:"project_id"`
	Name      string          `json:"name"`
	Status    QuotationStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PartsFrozen reports whether the quotation's parts may no longer be mutated.
func (q *Quotation) PartsFrozen() bool {
	return quotationStatusRank[q.Status] >= quotationStatusRank[QuotationStatusPaid]
}

// UpdatableQuotation describes a partial update to a quotation.
type UpdatableQuotation struct {
	ID        string
	ProjectID string
	Name      *string
	Status    *QuotationStatus

	// ExpectedStatus, when set, turns the update into a conditional write
	// that fails unless the stored quotation currently has this status.
	ExpectedStatus *QuotationStatus
}
