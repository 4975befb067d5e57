package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

func TestQuotationRefRoundTrip(t *testing.T) {
	ref := encodeQuotationRef("proj_1", "quot_1")
	assert.Equal(t, "proj_1/quot_1", ref)

	projectID, quotationID, err := parseQuotationRef(ref)
	require.NoError(t, err)
	assert.Equal(t, "proj_1", projectID)
	assert.Equal(t, "quot_1", quotationID)

	for _, malformed := range []string{"", "proj_1", "proj_1/", "/quot_1"} {
		_, _, err := parseQuotationRef(malformed)
		require.Error(t, err, malformed)
	}
}

func TestCreateCheckoutRecordsSelectionsAndOpensSession(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", ProjectID: "proj_1", Status: entities.QuotationStatusPendingPayment,
	}}
	parts := &stubPartRepo{parts: []*entities.Part{{
		ID:         "part_1",
		Quantity:   3,
		Process:    "CNC",
		Material:   "AL6061",
		Tolerance:  "0.1mm",
		ModelFile:  entities.FileReference{Name: "bracket.step"},
		PartQuotes: []entities.PartQuote{{ID: "pq_1", UnitPrice: 2500}},
	}}}
	payments := &stubPayments{session: &ports.CheckoutSession{ID: "sess_1", CheckoutURL: "https://pay.test/sess_1"}}

	h := NewCreateCheckoutHandler(quotations, parts, payments, "https://app/success", "https://app/cancel", zap.NewNop())

	session, err := h.Handle(context.Background(), CreateCheckoutCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Selections:  []PartQuoteSelection{{PartID: "part_1", PartQuoteID: "pq_1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/sess_1", session.CheckoutURL)

	assert.Equal(t, "proj_1/quot_1", payments.sessionRef)
	require.Len(t, payments.items, 1)
	item := payments.items[0]
	assert.Equal(t, "bracket.step", item.Title)
	assert.Equal(t, "CNC, AL6061, 0.1mm", item.Description)
	assert.Equal(t, int64(2500), item.UnitPrice)
	assert.Equal(t, "MXN", item.CurrencyID)

	require.Len(t, parts.updates, 1)
	selected, ok := parts.updates[0].SelectedPartQuoteID.Value()
	require.True(t, ok)
	assert.Equal(t, "pq_1", selected)
}

func TestCreateCheckoutRequiresPendingPayment(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusPendingReview,
	}}
	payments := &stubPayments{}

	h := NewCreateCheckoutHandler(quotations, &stubPartRepo{}, payments, "", "", zap.NewNop())

	_, err := h.Handle(context.Background(), CreateCheckoutCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Selections:  []PartQuoteSelection{{PartID: "part_1", PartQuoteID: "pq_1"}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionFailed(err))
	assert.Empty(t, payments.items)
}

func TestCreateCheckoutRejectsForeignQuote(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusPendingPayment,
	}}
	parts := &stubPartRepo{parts: []*entities.Part{{
		ID:         "part_1",
		PartQuotes: []entities.PartQuote{{ID: "pq_1"}},
	}}}

	h := NewCreateCheckoutHandler(quotations, parts, &stubPayments{}, "", "", zap.NewNop())

	_, err := h.Handle(context.Background(), CreateCheckoutCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Selections:  []PartQuoteSelection{{PartID: "part_1", PartQuoteID: "pq_other"}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, parts.updates)
}

func TestCreateCheckoutUnknownPart(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusPendingPayment,
	}}

	h := NewCreateCheckoutHandler(quotations, &stubPartRepo{}, &stubPayments{}, "", "", zap.NewNop())

	_, err := h.Handle(context.Background(), CreateCheckoutCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Selections:  []PartQuoteSelection{{PartID: "part_missing", PartQuoteID: "pq_1"}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateCheckoutRejectsPartialSelection(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", ProjectID: "proj_1", Status: entities.QuotationStatusPendingPayment,
	}}
	parts := &stubPartRepo{parts: []*entities.Part{
		{ID: "part_1", PartQuotes: []entities.PartQuote{{ID: "pq_1"}}},
		{ID: "part_2", PartQuotes: []entities.PartQuote{{ID: "pq_2"}}},
		{ID: "part_3", PartQuotes: []entities.PartQuote{{ID: "pq_3"}}},
	}}
	payments := &stubPayments{}

	h := NewCreateCheckoutHandler(quotations, parts, payments, "", "", zap.NewNop())

	_, err := h.Handle(context.Background(), CreateCheckoutCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Selections: []PartQuoteSelection{
			{PartID: "part_1", PartQuoteID: "pq_1"},
			{PartID: "part_2", PartQuoteID: "pq_2"},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, parts.updates)
	assert.Empty(t, payments.items)
}
