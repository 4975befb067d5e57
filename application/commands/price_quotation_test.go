package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

func pricingCommand(parts ...PartPricingInput) PriceQuotationCommand {
	return PriceQuotationCommand{
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Parts:       parts,
	}
}

func TestPriceQuotationAttachesQuotesThroughGate(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", ProjectID: "proj_1", Status: entities.QuotationStatusPendingReview,
	}}
	parts := &stubPartRepo{parts: []*entities.Part{
		{ID: "part_1", QuotationID: "quot_1", Quantity: 5},
	}}
	workflow := &stubWorkflow{}

	h := NewPriceQuotationHandler(quotations, parts, workflow, zap.NewNop())
	h.now = fixedNow

	err := h.Handle(context.Background(), pricingCommand(PartPricingInput{
		PartID: "part_1",
		Quotes: []PartQuoteInput{{UnitPriceCents: 1200, Workdays: 10, ValidDays: 30}},
	}))
	require.NoError(t, err)

	assert.Equal(t, entities.QuotationStatusPendingReview, workflow.attachGate.ExpectedStatus)
	assert.Equal(t, entities.QuotationStatusPendingPayment, workflow.attachGate.NextStatus)

	require.Len(t, workflow.attachments, 1)
	require.Len(t, workflow.attachments[0].PartQuotes, 1)
	quote := workflow.attachments[0].PartQuotes[0]
	assert.Equal(t, int64(1200), quote.UnitPrice)
	assert.Equal(t, int64(6000), quote.SubTotal)
	assert.Equal(t, fixedNow().AddDate(0, 0, 30), quote.ValidUntil)
	assert.NotEmpty(t, quote.ID)
}

func TestPriceQuotationAllowsPricingStraightFromCreated(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusCreated,
	}}
	parts := &stubPartRepo{parts: []*entities.Part{{ID: "part_1", Quantity: 1}}}
	workflow := &stubWorkflow{}

	h := NewPriceQuotationHandler(quotations, parts, workflow, zap.NewNop())

	err := h.Handle(context.Background(), pricingCommand(PartPricingInput{
		PartID: "part_1",
		Quotes: []PartQuoteInput{{UnitPriceCents: 100, Workdays: 1, ValidDays: 1}},
	}))
	require.NoError(t, err)
	assert.Equal(t, entities.QuotationStatusCreated, workflow.attachGate.ExpectedStatus)
}

func TestPriceQuotationRejectsPartialPricing(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusPendingReview,
	}}
	parts := &stubPartRepo{parts: []*entities.Part{
		{ID: "part_1", Quantity: 1},
		{ID: "part_2", Quantity: 1},
	}}
	workflow := &stubWorkflow{}

	h := NewPriceQuotationHandler(quotations, parts, workflow, zap.NewNop())

	err := h.Handle(context.Background(), pricingCommand(PartPricingInput{
		PartID: "part_1",
		Quotes: []PartQuoteInput{{UnitPriceCents: 100, Workdays: 1, ValidDays: 1}},
	}))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, workflow.attachments)
}

func TestPriceQuotationRejectedOncePendingPayment(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusPendingPayment,
	}}

	h := NewPriceQuotationHandler(quotations, &stubPartRepo{}, &stubWorkflow{}, zap.NewNop())

	err := h.Handle(context.Background(), pricingCommand(PartPricingInput{
		PartID: "part_1",
		Quotes: []PartQuoteInput{{UnitPriceCents: 100, Workdays: 1, ValidDays: 1}},
	}))
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionFailed(err))
}
