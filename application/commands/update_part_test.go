package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

func newUpdatePartFixture(status entities.QuotationStatus, parts ...*entities.Part) (*UpdatePartHandler, *stubPartRepo, *stubStorage) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", ProjectID: "proj_1", Status: status,
	}}
	repo := &stubPartRepo{parts: parts}
	storage := &stubStorage{}
	return NewUpdatePartHandler(quotations, repo, storage, 10*time.Minute, zap.NewNop()), repo, storage
}

func TestUpdatePartAttachesDrawing(t *testing.T) {
	h, repo, _ := newUpdatePartFixture(entities.QuotationStatusCreated, &entities.Part{ID: "part_1"})

	updated, err := h.Handle(context.Background(), UpdatePartCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		PartID:      "part_1",
		DrawingFile: &DrawingFileInput{Name: "tolerances.pdf"},
	})
	require.NoError(t, err)

	wantPath := "client_1/proj_1/quot_1/part_1/drawing/tolerances.pdf"
	assert.Equal(t, "https://upload.test/"+wantPath, updated.DrawingUploadURL)

	require.Len(t, repo.updates, 1)
	file, ok := repo.updates[0].DrawingFile.Value()
	require.True(t, ok)
	assert.Equal(t, wantPath, file.Path)
}

func TestUpdatePartClearsDrawing(t *testing.T) {
	h, repo, _ := newUpdatePartFixture(entities.QuotationStatusCreated, &entities.Part{ID: "part_1"})

	updated, err := h.Handle(context.Background(), UpdatePartCommand{
		ClientID:         "client_1",
		ProjectID:        "proj_1",
		QuotationID:      "quot_1",
		PartID:           "part_1",
		ClearDrawingFile: true,
	})
	require.NoError(t, err)
	assert.Empty(t, updated.DrawingUploadURL)

	require.Len(t, repo.updates, 1)
	assert.True(t, repo.updates[0].DrawingFile.IsCleared())
}

func TestUpdatePartSelectQuoteMustExist(t *testing.T) {
	part := &entities.Part{
		ID:         "part_1",
		PartQuotes: []entities.PartQuote{{ID: "pq_1"}},
	}
	h, repo, _ := newUpdatePartFixture(entities.QuotationStatusPendingPayment, part)

	quoteID := "pq_unknown"
	_, err := h.Handle(context.Background(), UpdatePartCommand{
		ClientID:            "client_1",
		ProjectID:           "proj_1",
		QuotationID:         "quot_1",
		PartID:              "part_1",
		SelectedPartQuoteID: &quoteID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, repo.updates)

	quoteID = "pq_1"
	_, err = h.Handle(context.Background(), UpdatePartCommand{
		ClientID:            "client_1",
		ProjectID:           "proj_1",
		QuotationID:         "quot_1",
		PartID:              "part_1",
		SelectedPartQuoteID: &quoteID,
	})
	require.NoError(t, err)
	require.Len(t, repo.updates, 1)
	selected, ok := repo.updates[0].SelectedPartQuoteID.Value()
	require.True(t, ok)
	assert.Equal(t, "pq_1", selected)
}

func TestUpdatePartMutuallyExclusiveFlags(t *testing.T) {
	h, _, _ := newUpdatePartFixture(entities.QuotationStatusCreated)

	_, err := h.Handle(context.Background(), UpdatePartCommand{
		ClientID:         "client_1",
		ProjectID:        "proj_1",
		QuotationID:      "quot_1",
		PartID:           "part_1",
		DrawingFile:      &DrawingFileInput{Name: "a.pdf"},
		ClearDrawingFile: true,
	})
	require.Error(t, err)

	quoteID := "pq_1"
	_, err = h.Handle(context.Background(), UpdatePartCommand{
		ClientID:                 "client_1",
		ProjectID:                "proj_1",
		QuotationID:              "quot_1",
		PartID:                   "part_1",
		SelectedPartQuoteID:      &quoteID,
		ClearSelectedPartQuoteID: true,
	})
	require.Error(t, err)
}

func TestUpdatePartFrozenAfterPayment(t *testing.T) {
	h, repo, _ := newUpdatePartFixture(entities.QuotationStatusPaid, &entities.Part{ID: "part_1"})

	process := "SLA"
	_, err := h.Handle(context.Background(), UpdatePartCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		PartID:      "part_1",
		Process:     &process,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionFailed(err))
	assert.Empty(t, repo.updates)
}
