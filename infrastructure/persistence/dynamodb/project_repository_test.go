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

var testProjectTable = ProjectTable{
	Name:              "projects",
	CreationDateIndex: "CreationDateIndex",
}

func testProject() *entities.Project {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &entities.Project{
		ID:        "proj_1",
		ClientID:  "cli_1",
		Name:      "landing gear",
		Status:    entities.ProjectStatusOpen,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func newTestProjectRepository(client Client) *ProjectRepository {
	repo := NewProjectRepository(client, testProjectTable, zap.NewNop())
	repo.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return repo
}

func TestProjectGetRoundTrip(t *testing.T) {
	project := testProject()
	av, err := attributevalue.MarshalMap(newProjectItem(project))
	require.NoError(t, err)

	fake := &fakeClient{getOutput: &dynamodb.GetItemOutput{Item: av}}
	repo := newTestProjectRepository(fake)

	got, err := repo.Get(context.Background(), ports.ProjectKey{ClientID: "cli_1", ID: "proj_1"})
	require.NoError(t, err)
	assert.Equal(t, project, got)
}

func TestProjectGetRequiresKey(t *testing.T) {
	repo := newTestProjectRepository(&fakeClient{})

	_, err := repo.Get(context.Background(), ports.ProjectKey{ClientID: "cli_1"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMissingParameter))
}

func TestProjectQueryUsesCreationDateIndex(t *testing.T) {
	fake := &fakeClient{}
	repo := newTestProjectRepository(fake)

	_, err := repo.Query(context.Background(), ports.ProjectQuery{ClientID: "cli_1"})
	require.NoError(t, err)

	input := fake.queryInputs[0]
	assert.Equal(t, "CreationDateIndex", *input.IndexName)
	assert.False(t, *input.ScanIndexForward, "newest projects first")
	cond := queriedCondition(t, fake)
	assert.Contains(t, cond, "client_id = 'cli_1'")
	assert.Contains(t, cond, "created_at_id BETWEEN '1970-01-01T00:00:00Z' AND '2024-06-01T00:00:00Z+'")
}

func TestProjectQueryDefaultLimit(t *testing.T) {
	fake := &fakeClient{}
	repo := newTestProjectRepository(fake)

	_, err := repo.Query(context.Background(), ports.ProjectQuery{ClientID: "cli_1"})
	require.NoError(t, err)
	assert.Equal(t, defaultQueryLimit, *fake.queryInputs[0].Limit)

	_, err = repo.Query(context.Background(), ports.ProjectQuery{ClientID: "cli_1", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, maxQueryLimit, *fake.queryInputs[1].Limit)
}

func TestProjectUpdateAlwaysTouchesUpdatedAt(t *testing.T) {
	project := testProject()
	av, err := attributevalue.MarshalMap(newProjectItem(project))
	require.NoError(t, err)

	fake := &fakeClient{updateOutput: &dynamodb.UpdateItemOutput{Attributes: av}}
	repo := newTestProjectRepository(fake)

	_, err = repo.Update(context.Background(), entities.UpdatableProject{ID: "proj_1", ClientID: "cli_1"})
	require.NoError(t, err)

	update := resolveExpression(fake.updateInput.UpdateExpression, fake.updateInput.ExpressionAttributeNames, fake.updateInput.ExpressionAttributeValues)
	assert.Contains(t, update, "updated_at = '2024-06-01T00:00:00Z'")
}

func TestProjectUpdateMissing(t *testing.T) {
	fake := &fakeClient{updateErr: &types.ConditionalCheckFailedException{}}
	repo := newTestProjectRepository(fake)

	name := "renamed"
	_, err := repo.Update(context.Background(), entities.UpdatableProject{ID: "proj_1", ClientID: "cli_1", Name: &name})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProjectDeleteRefusesLocked(t *testing.T) {
	fake := &fakeClient{}
	repo := newTestProjectRepository(fake)

	require.NoError(t, repo.Delete(context.Background(), ports.ProjectKey{ClientID: "cli_1", ID: "proj_1"}))

	cond := resolveExpression(fake.deleteInput.ConditionExpression, fake.deleteInput.ExpressionAttributeNames, fake.deleteInput.ExpressionAttributeValues)
	assert.Contains(t, cond, "attribute_exists")
	assert.Contains(t, cond, "status <> 'LOCKED'")
}

func TestProjectDeleteConflict(t *testing.T) {
	fake := &fakeClient{deleteErr: &types.ConditionalCheckFailedException{}}
	repo := newTestProjectRepository(fake)

	err := repo.Delete(context.Background(), ports.ProjectKey{ClientID: "cli_1", ID: "proj_1"})
	assert.True(t, apperrors.IsPreconditionFailed(err))
}
