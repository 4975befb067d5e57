package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

var testQuotationTable = QuotationTable{
	Name:               "quotations",
	PendingReviewIndex: "PendingReviewIndex",
	ClientIndex:        "ClientIndex",
}

func testQuotation(status entities.QuotationStatus) *entities.Quotation {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &entities.Quotation{
		ID:        "quot_1",
		ClientID:  "cli_1",
		ProjectID: "proj_1",
		Name:      "bracket run",
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func newTestQuotationRepository(client Client) *QuotationRepository {
	repo := NewQuotationRepository(client, testQuotationTable, zap.NewNop())
	repo.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return repo
}

func TestQuotationItemPendingReviewFlag(t *testing.T) {
	assert.Equal(t, flagTrue, newQuotationItem(testQuotation(entities.QuotationStatusPendingReview)).IsPendingReview)

	for _, status := range []entities.QuotationStatus{
		entities.QuotationStatusCreated,
		entities.QuotationStatusPendingPayment,
		entities.QuotationStatusPaid,
		entities.QuotationStatusOrdersCreated,
	} {
		assert.Empty(t, newQuotationItem(testQuotation(status)).IsPendingReview, string(status))
	}
}

func TestQuotationQueryPlannerPicksReviewQueue(t *testing.T) {
	fake := &fakeClient{}
	repo := newTestQuotationRepository(fake)

	// The review flag outranks project and client filters.
	_, err := repo.Query(context.Background(), ports.QuotationQuery{PendingReviewOnly: true, ProjectID: "proj_1"})
	require.NoError(t, err)

	input := fake.queryInputs[0]
	assert.Equal(t, "PendingReviewIndex", *input.IndexName)
	assert.True(t, *input.ScanIndexForward, "review queue reads oldest first")
	cond := queriedCondition(t, fake)
	assert.Contains(t, cond, "is_pending_review = 'TRUE'")
}

func TestQuotationQueryPlannerPicksPrimaryTable(t *testing.T) {
	fake := &fakeClient{}
	repo := newTestQuotationRepository(fake)

	_, err := repo.Query(context.Background(), ports.QuotationQuery{ProjectID: "proj_1", ClientID: "cli_1"})
	require.NoError(t, err)

	input := fake.queryInputs[0]
	assert.Nil(t, input.IndexName)
	assert.Contains(t, queriedCondition(t, fake), "project_id = 'proj_1'")
}

func TestQuotationQueryPlannerPicksClientIndex(t *testing.T) {
	fake := &fakeClient{}
	repo := newTestQuotationRepository(fake)

	_, err := repo.Query(context.Background(), ports.QuotationQuery{ClientID: "cli_1"})
	require.NoError(t, err)

	assert.Equal(t, "ClientIndex", *fake.queryInputs[0].IndexName)
	cond := queriedCondition(t, fake)
	assert.Contains(t, cond, "client_id = 'cli_1'")
	assert.Contains(t, cond, "created_at_id BETWEEN")
}

func TestQuotationQueryRequiresPartition(t *testing.T) {
	repo := newTestQuotationRepository(&fakeClient{})

	_, err := repo.Query(context.Background(), ports.QuotationQuery{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMissingParameter))
}

func TestQuotationUpdateStatusTogglesReviewFlag(t *testing.T) {
	quotation := testQuotation(entities.QuotationStatusCreated)
	av, err := attributevalue.MarshalMap(newQuotationItem(quotation))
	require.NoError(t, err)

	fake := &fakeClient{updateOutput: &dynamodb.UpdateItemOutput{Attributes: av}}
	repo := newTestQuotationRepository(fake)

	next := entities.QuotationStatusPendingReview
	_, err = repo.Update(context.Background(), entities.UpdatableQuotation{
		ID:        "quot_1",
		ProjectID: "proj_1",
		Status:    &next,
	})
	require.NoError(t, err)

	input := fake.updateInput
	update := resolveExpression(input.UpdateExpression, input.ExpressionAttributeNames, input.ExpressionAttributeValues)
	assert.Contains(t, update, "status = 'PENDING_REVIEW'")
	assert.Contains(t, update, "is_pending_review = 'TRUE'")

	// Leaving review clears the flag so the queue index stays sparse.
	fake2 := &fakeClient{updateOutput: &dynamodb.UpdateItemOutput{Attributes: av}}
	repo2 := newTestQuotationRepository(fake2)
	priced := entities.QuotationStatusPendingPayment
	_, err = repo2.Update(context.Background(), entities.UpdatableQuotation{
		ID:        "quot_1",
		ProjectID: "proj_1",
		Status:    &priced,
	})
	require.NoError(t, err)
	update2 := resolveExpression(fake2.updateInput.UpdateExpression, fake2.updateInput.ExpressionAttributeNames, fake2.updateInput.ExpressionAttributeValues)
	assert.Contains(t, update2, "REMOVE is_pending_review")
}

func TestQuotationUpdateExpectedStatusConflict(t *testing.T) {
	fake := &fakeClient{updateErr: &types.ConditionalCheckFailedException{}}
	repo := newTestQuotationRepository(fake)

	name := "renamed"
	expected := entities.QuotationStatusCreated
	_, err := repo.Update(context.Background(), entities.UpdatableQuotation{
		ID:             "quot_1",
		ProjectID:      "proj_1",
		Name:           &name,
		ExpectedStatus: &expected,
	})
	assert.True(t, apperrors.IsPreconditionFailed(err))
}

func TestQuotationDeleteRefusesPaid(t *testing.T) {
	fake := &fakeClient{}
	repo := newTestQuotationRepository(fake)

	require.NoError(t, repo.Delete(context.Background(), ports.QuotationKey{ProjectID: "proj_1", ID: "quot_1"}))

	cond := resolveExpression(fake.deleteInput.ConditionExpression, fake.deleteInput.ExpressionAttributeNames, fake.deleteInput.ExpressionAttributeValues)
	assert.Contains(t, cond, "attribute_exists")
	assert.Contains(t, cond, "'PAID'")
	assert.Contains(t, cond, "'ORDERS_CREATED'")
	assert.Contains(t, cond, "NOT")
}

func TestQuotationDeleteConflict(t *testing.T) {
	fake := &fakeClient{deleteErr: &types.ConditionalCheckFailedException{}}
	repo := newTestQuotationRepository(fake)

	err := repo.Delete(context.Background(), ports.QuotationKey{ProjectID: "proj_1", ID: "quot_1"})
	assert.True(t, apperrors.IsPreconditionFailed(err))
}

func TestQuotationBatchDeleteChunks(t *testing.T) {
	keys := make([]ports.QuotationKey, 0, batchWriteLimit+3)
	for i := 0; i < batchWriteLimit+3; i++ {
		keys = append(keys, ports.QuotationKey{ProjectID: "proj_1", ID: string(rune('a' + i%26))})
	}

	fake := &fakeClient{}
	repo := newTestQuotationRepository(fake)

	require.NoError(t, repo.BatchDelete(context.Background(), keys))
	require.Len(t, fake.batchWriteIn, 2)
	assert.Len(t, fake.batchWriteIn[0].RequestItems["quotations"], batchWriteLimit)
	assert.Len(t, fake.batchWriteIn[1].RequestItems["quotations"], 3)
}
