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

// ListQuotationsQuery pages quotations. Customers list by project or across
// their projects by client id; admins list the review queue with
// PendingReviewOnly, which returns the oldest submissions first.
type ListQuotationsQuery struct {
	ProjectID         string     `json:"project_id,omitempty"`
	ClientID          string     `json:"client_id,omitempty"`
	PendingReviewOnly bool       `json:"pending_review_only,omitempty"`
	CreatedFrom       *time.Time `json:"created_from,omitempty"`
	CreatedTo         *time.Time `json:"created_to,omitempty"`
	Cursor            string     `json:"cursor,omitempty"`
	Limit             int32      `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// Validate checks the query's fields
func (q ListQuotationsQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	if !q.PendingReviewOnly && q.ProjectID == "" && q.ClientID == "" {
		return apperrors.NewMissingParameter("project_id or client_id")
	}
	return nil
}

// ListQuotationsHandler handles the ListQuotationsQuery
type ListQuotationsHandler struct {
	quotations ports.QuotationRepository
	logger     *zap.Logger
}

// NewListQuotationsHandler creates a new handler instance
func NewListQuotationsHandler(quotations ports.QuotationRepository, logger *zap.Logger) *ListQuotationsHandler {
	return &ListQuotationsHandler{
		quotations: quotations,
		logger:     logger,
	}
}

// Handle executes the list quotations query
func (h *ListQuotationsHandler) Handle(ctx context.Context, query ListQuotationsQuery) (*ports.Page[*entities.Quotation], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.quotations.Query(ctx, ports.QuotationQuery{
		ProjectID:         query.ProjectID,
		ClientID:          query.ClientID,
		PendingReviewOnly: query.PendingReviewOnly,
		CreatedFrom:       query.CreatedFrom,
		CreatedTo:         query.CreatedTo,
		Cursor:            query.Cursor,
		Limit:             query.Limit,
	})
}
