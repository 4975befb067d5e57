package ports

import (
	"context"
	"time"

	"github.com/humbertoamdc/torvek-sub000/domain/events"
)

// ObjectStorage generates presigned URLs for part blobs and removes them when
// their owning entities are deleted.
type ObjectStorage interface {
	PutPresignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	GetPresignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
	BulkDelete(ctx context.Context, paths []string) error
}

// Role separates the three portals' callers.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleAdmin  Role = "ADMIN"
	RoleOps    Role = "OPS"
)

// Session is an authenticated portal session.
type Session struct {
	Token      string    `json:"token"`
	IdentityID string    `json:"identity_id"`
	Role       Role      `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Identity is a portal user.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// IdentityManager resolves session tokens and identities. Opaque: failures
// surface through the shared error taxonomy.
type IdentityManager interface {
	GetSession(ctx context.Context, token string) (*Session, error)
	GetIdentity(ctx context.Context, id string) (*Identity, error)
}

// CheckoutItem is one priced part entering a checkout session.
type CheckoutItem struct {
	PartID      string
	Title       string
	Quantity    int
	UnitPrice   int64
	CurrencyID  string
	Description string
}

// CheckoutSession is an externally hosted payment flow for a quotation.
type CheckoutSession struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

// Payment is the processor's view of a completed (or failed) payment.
type Payment struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	QuotationID string `json:"quotation_id"`
	Approved    bool   `json:"approved"`
}

// PaymentsProcessor abstracts the external payment provider. The checkout
// session doubles as the customer-facing quote: its URL is shareable and
// carries the priced line items.
type PaymentsProcessor interface {
	CreateCheckoutSession(ctx context.Context, quotationID string, items []CheckoutItem, successURL, cancelURL string) (*CheckoutSession, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// EventPublisher fans domain events out to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// Notifier pushes realtime updates to connected portal clients.
type Notifier interface {
	NotifyOrderStatus(ctx context.Context, event events.OrderStatusChanged) error
}

// Cache is a small read-through cache for session lookups.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, key string)
}
