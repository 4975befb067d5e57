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

func TestCreatePartsBuildsBlobPathsAndUploadURLs(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", ProjectID: "proj_1", Status: entities.QuotationStatusCreated,
	}}
	parts := &stubPartRepo{}
	storage := &stubStorage{}

	h := NewCreatePartsHandler(quotations, parts, storage, 15*time.Minute, zap.NewNop())
	h.now = fixedNow

	created, err := h.Handle(context.Background(), CreatePartsCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Parts: []NewPartInput{
			{ModelFileName: "bracket.step", Process: "CNC", Material: "AL6061", Tolerance: "0.1mm", Quantity: 4},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	part := created[0].Part
	prefix := "client_1/proj_1/quot_1/" + part.ID
	assert.Equal(t, prefix+"/model/bracket.step", part.ModelFile.Path)
	assert.Equal(t, "bracket.step.png", part.RenderFile.Name)
	assert.Equal(t, prefix+"/render/bracket.step.png", part.RenderFile.Path)
	assert.Nil(t, part.DrawingFile)
	assert.Equal(t, "https://upload.test/"+part.ModelFile.Path, created[0].ModelUploadURL)

	require.Len(t, parts.batch, 1)
	assert.Equal(t, fixedNow(), part.CreatedAt)
}

func TestCreatePartsRejectedOncePaid(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusPaid,
	}}
	parts := &stubPartRepo{}

	h := NewCreatePartsHandler(quotations, parts, &stubStorage{}, time.Minute, zap.NewNop())

	_, err := h.Handle(context.Background(), CreatePartsCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Parts:       []NewPartInput{{ModelFileName: "a.step", Process: "CNC", Material: "AL", Tolerance: "0.1", Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionFailed(err))
	assert.Empty(t, parts.batch)
}

func TestCreatePartsValidatesInput(t *testing.T) {
	h := NewCreatePartsHandler(&stubQuotationRepo{}, &stubPartRepo{}, &stubStorage{}, time.Minute, zap.NewNop())

	_, err := h.Handle(context.Background(), CreatePartsCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Parts:       nil,
	})
	require.Error(t, err)

	_, err = h.Handle(context.Background(), CreatePartsCommand{
		ClientID:    "client_1",
		ProjectID:   "proj_1",
		QuotationID: "quot_1",
		Parts:       []NewPartInput{{ModelFileName: "a.step", Process: "CNC", Material: "AL", Tolerance: "0.1", Quantity: 0}},
	})
	require.Error(t, err)
}
