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

func TestCreateProject(t *testing.T) {
	projects := &stubProjectRepo{}
	h := NewCreateProjectHandler(projects, zap.NewNop())
	h.now = fixedNow

	project, err := h.Handle(context.Background(), CreateProjectCommand{ClientID: "client_1", Name: "Chassis v2"})
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, entities.ProjectStatusOpen, project.Status)
	assert.Equal(t, fixedNow(), project.CreatedAt)
	require.Len(t, projects.created, 1)

	_, err = h.Handle(context.Background(), CreateProjectCommand{ClientID: "client_1"})
	require.Error(t, err)
}

func TestCreateQuotationRequiresParentProject(t *testing.T) {
	projects := &stubProjectRepo{getErr: apperrors.NewNotFound("project", "proj_1")}
	quotations := &stubQuotationRepo{}

	h := NewCreateQuotationHandler(projects, quotations, zap.NewNop())

	_, err := h.Handle(context.Background(), CreateQuotationCommand{
		ClientID: "client_1", ProjectID: "proj_1", Name: "Prototype run",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, quotations.created)
}

func TestCreateQuotationStartsCreated(t *testing.T) {
	projects := &stubProjectRepo{projects: map[string]*entities.Project{
		"proj_1": {ID: "proj_1", ClientID: "client_1"},
	}}
	quotations := &stubQuotationRepo{}

	h := NewCreateQuotationHandler(projects, quotations, zap.NewNop())

	quotation, err := h.Handle(context.Background(), CreateQuotationCommand{
		ClientID: "client_1", ProjectID: "proj_1", Name: "Prototype run",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.QuotationStatusCreated, quotation.Status)
	require.Len(t, quotations.created, 1)
}

func TestSubmitQuotationRejectsEmpty(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusCreated,
	}}
	parts := &stubPartRepo{} // no parts

	h := NewSubmitQuotationHandler(quotations, parts, zap.NewNop())

	_, err := h.Handle(context.Background(), SubmitQuotationCommand{ProjectID: "proj_1", QuotationID: "quot_1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, quotations.updates)
}

func TestSubmitQuotationMovesToPendingReview(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusCreated,
	}}
	parts := &stubPartRepo{parts: []*entities.Part{{ID: "part_1"}}}

	h := NewSubmitQuotationHandler(quotations, parts, zap.NewNop())

	quotation, err := h.Handle(context.Background(), SubmitQuotationCommand{ProjectID: "proj_1", QuotationID: "quot_1"})
	require.NoError(t, err)
	assert.Equal(t, entities.QuotationStatusPendingReview, quotation.Status)

	require.Len(t, quotations.updates, 1)
	require.NotNil(t, quotations.updates[0].ExpectedStatus)
	assert.Equal(t, entities.QuotationStatusCreated, *quotations.updates[0].ExpectedStatus)
}

func TestDeleteProjectDelegatesToCascader(t *testing.T) {
	cascader := &stubCascader{}
	h := NewDeleteProjectHandler(cascader, zap.NewNop())

	err := h.Handle(context.Background(), DeleteProjectCommand{ClientID: "client_1", ProjectID: "proj_1"})
	require.NoError(t, err)
	assert.Equal(t, []ports.ProjectKey{{ClientID: "client_1", ID: "proj_1"}}, cascader.projectKeys)
}

func TestDeleteQuotationDelegatesToCascader(t *testing.T) {
	cascader := &stubCascader{err: apperrors.NewPreconditionFailed("quotation is paid")}
	h := NewDeleteQuotationHandler(cascader, zap.NewNop())

	err := h.Handle(context.Background(), DeleteQuotationCommand{ProjectID: "proj_1", QuotationID: "quot_1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionFailed(err))
}

func TestDeletePartRemovesBlobsBestEffort(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusPendingReview,
	}}
	drawing := &entities.FileReference{Name: "d.pdf", Path: "c/p/q/part_1/drawing/d.pdf"}
	parts := &stubPartRepo{parts: []*entities.Part{{
		ID:          "part_1",
		ModelFile:   entities.FileReference{Path: "c/p/q/part_1/model/m.step"},
		RenderFile:  entities.FileReference{Path: "c/p/q/part_1/render/m.step.png"},
		DrawingFile: drawing,
	}}}
	storage := &stubStorage{bulkErr: assert.AnError}

	h := NewDeletePartHandler(quotations, parts, storage, zap.NewNop())

	err := h.Handle(context.Background(), DeletePartCommand{
		ClientID: "client_1", ProjectID: "proj_1", QuotationID: "quot_1", PartID: "part_1",
	})
	require.NoError(t, err)

	assert.Equal(t, []ports.PartKey{{QuotationID: "quot_1", ID: "part_1"}}, parts.deleted)
	require.Len(t, storage.bulkDeleted, 1)
	assert.Equal(t, []string{
		"c/p/q/part_1/model/m.step",
		"c/p/q/part_1/render/m.step.png",
		"c/p/q/part_1/drawing/d.pdf",
	}, storage.bulkDeleted[0])
}

func TestDeletePartFrozenAfterPayment(t *testing.T) {
	quotations := &stubQuotationRepo{quotation: &entities.Quotation{
		ID: "quot_1", Status: entities.QuotationStatusOrdersCreated,
	}}
	parts := &stubPartRepo{parts: []*entities.Part{{ID: "part_1"}}}

	h := NewDeletePartHandler(quotations, parts, &stubStorage{}, zap.NewNop())

	err := h.Handle(context.Background(), DeletePartCommand{
		ClientID: "client_1", ProjectID: "proj_1", QuotationID: "quot_1", PartID: "part_1",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPreconditionFailed(err))
	assert.Empty(t, parts.deleted)
}
