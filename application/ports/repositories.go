package ports

import (
	"context"
	"time"

	"github.com/humbertoamdc/torvek-sub000/domain/entities"
)

// Page is one page of a cursor-paginated query. NextCursor is opaque and
// transport-safe; empty means no further page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ProjectKey identifies a project item.
type ProjectKey struct {
	ClientID string
	ID       string
}

// QuotationKey identifies a quotation item.
type QuotationKey struct {
	ProjectID string
	ID        string
}

// PartKey identifies a part item.
type PartKey struct {
	QuotationID string
	ID          string
}

// OrderKey identifies an order item.
type OrderKey struct {
	ClientID string
	ID       string
}

// ProjectQuery holds the optional filters for listing projects. ClientID is
// the required partition; the date range defaults to epoch..now.
type ProjectQuery struct {
	ClientID    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Cursor      string
	Limit       int32
}

// QuotationQuery holds the optional filters for listing quotations. Exactly
// one partition dimension must be usable: the pending-review flag (admin,
// cross-customer), a project id, or a client id.
type QuotationQuery struct {
	ProjectID         string
	ClientID          string
	PendingReviewOnly bool
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	Cursor            string
	Limit             int32
}

// PartQuery holds the optional filters for listing parts. A quotation id
// queries the primary table; a client id plus any prefix of
// project/quotation ids queries the hierarchy index.
type PartQuery struct {
	ClientID    string
	ProjectID   string
	QuotationID string
	Cursor      string
	Limit       int32
}

// OrderQuery holds the optional filters for listing orders. The planner picks
// the open-flag index, the hierarchy index, the status index, or the
// creation-date range, in that priority order.
type OrderQuery struct {
	ClientID    string
	ProjectID   string
	QuotationID string
	PartID      string
	Status      *entities.OrderStatus
	OpenOnly    bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Cursor      string
	Limit       int32
}

// ProjectRepository is the persistence surface for projects.
type ProjectRepository interface {
	Get(ctx context.Context, key ProjectKey) (*entities.Project, error)
	Query(ctx context.Context, q ProjectQuery) (*Page[*entities.Project], error)
	Create(ctx context.Context, project *entities.Project) error
	Update(ctx context.Context, updatable entities.UpdatableProject) (*entities.Project, error)
	// Delete removes a project unless it is Locked; the gate is a storage
	// condition, not an application pre-check.
	Delete(ctx context.Context, key ProjectKey) error
}

// QuotationRepository is the persistence surface for quotations.
type QuotationRepository interface {
	Get(ctx context.Context, key QuotationKey) (*entities.Quotation, error)
	Query(ctx context.Context, q QuotationQuery) (*Page[*entities.Quotation], error)
	Create(ctx context.Context, quotation *entities.Quotation) error
	Update(ctx context.Context, updatable entities.UpdatableQuotation) (*entities.Quotation, error)
	// Delete removes a quotation unless it has been paid.
	Delete(ctx context.Context, key QuotationKey) error
	BatchDelete(ctx context.Context, keys []QuotationKey) error
}

// PartRepository is the persistence surface for parts.
type PartRepository interface {
	Get(ctx context.Context, key PartKey) (*entities.Part, error)
	Query(ctx context.Context, q PartQuery) (*Page[*entities.Part], error)
	Create(ctx context.Context, part *entities.Part) error
	BatchCreate(ctx context.Context, parts []*entities.Part) error
	Update(ctx context.Context, updatable entities.UpdatablePart) (*entities.Part, error)
	Delete(ctx context.Context, key PartKey) error
	BatchGet(ctx context.Context, keys []PartKey) ([]*entities.Part, error)
	BatchDelete(ctx context.Context, keys []PartKey) error
}

// OrderRepository is the persistence surface for orders.
type OrderRepository interface {
	Get(ctx context.Context, key OrderKey) (*entities.Order, error)
	Query(ctx context.Context, q OrderQuery) (*Page[*entities.Order], error)
	Create(ctx context.Context, order *entities.Order) error
	Update(ctx context.Context, updatable entities.UpdatableOrder) (*entities.Order, error)
	BatchGet(ctx context.Context, keys []OrderKey) ([]*entities.Order, error)
}

// QuotationStatusGate is the conditional half of an atomic workflow write:
// the quotation moves ExpectedStatus → NextStatus only if it still holds
// ExpectedStatus when the store evaluates the transaction.
type QuotationStatusGate struct {
	Key            QuotationKey
	ExpectedStatus entities.QuotationStatus
	NextStatus     entities.QuotationStatus
}

// PartQuotesAttachment carries the per-part payload of a pricing transaction.
type PartQuotesAttachment struct {
	Key                 PartKey
	PartQuotes          []entities.PartQuote
	SelectedPartQuoteID *string
}

// QuotationWorkflow executes the cross-table atomic writes that advance a
// quotation. Observers never see the dependent writes without the gate having
// applied, and vice versa.
type QuotationWorkflow interface {
	// AttachPartQuotes applies the gate update plus one update per part
	// attaching its priced quotes (and optionally a selection).
	AttachPartQuotes(ctx context.Context, gate QuotationStatusGate, attachments []PartQuotesAttachment) error
	// CreateOrders applies the gate update plus one put per order. The gate
	// must expect Paid; any other current status fails the whole transaction.
	CreateOrders(ctx context.Context, gate QuotationStatusGate, orders []*entities.Order) error
}

// ProjectCascader deletes a project and every quotation, part and blob under
// it, across pages. Pages already deleted are final even if a later page
// fails.
type ProjectCascader interface {
	DeleteProject(ctx context.Context, key ProjectKey) error
	DeleteQuotation(ctx context.Context, key QuotationKey) error
}
