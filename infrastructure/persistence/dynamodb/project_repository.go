package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

type projectItem struct {
	ClientID    string `dynamodbav:"client_id"`
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Status      string `dynamodbav:"status"`
	CreatedAt   string `dynamodbav:"created_at"`
	UpdatedAt   string `dynamodbav:"updated_at"`
	CreatedAtID string `dynamodbav:"created_at_id"`
}

func newProjectItem(project *entities.Project) projectItem {
	createdAt := FormatTimestamp(project.CreatedAt)
	return projectItem{
		ClientID:    project.ClientID,
		ID:          project.ID,
		Name:        project.Name,
		Status:      string(project.Status),
		CreatedAt:   createdAt,
		UpdatedAt:   FormatTimestamp(project.UpdatedAt),
		CreatedAtID: EncodeKey(createdAt, project.ID),
	}
}

func (i projectItem) toEntity() (*entities.Project, error) {
	createdAt, err := ParseTimestamp(i.CreatedAt)
	if err != nil {
		return nil, apperrors.NewUnknown("parse project created_at", err)
	}
	updatedAt, err := ParseTimestamp(i.UpdatedAt)
	if err != nil {
		return nil, apperrors.NewUnknown("parse project updated_at", err)
	}
	return &entities.Project{
		ID:        i.ID,
		ClientID:  i.ClientID,
		Name:      i.Name,
		Status:    entities.ProjectStatus(i.Status),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// ProjectRepository persists projects partitioned by customer.
type ProjectRepository struct {
	client Client
	table  ProjectTable
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)

func NewProjectRepository(client Client, table ProjectTable, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		client: client,
		table:  table,
		logger: logger,
		now:    time.Now,
	}
}

func projectKeyAttributes(key ports.ProjectKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"client_id": &types.AttributeValueMemberS{Value: key.ClientID},
		"id":        &types.AttributeValueMemberS{Value: key.ID},
	}
}

func (r *ProjectRepository) Get(ctx context.Context, key ports.ProjectKey) (*entities.Project, error) {
	if key.ClientID == "" || key.ID == "" {
		return nil, apperrors.NewMissingParameter("client_id and id are required")
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.Name),
		Key:       projectKeyAttributes(key),
	})
	if err != nil {
		return nil, translateError("get project", err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFound("project", key.ID)
	}

	var item projectItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewUnknown("unmarshal project", err)
	}
	return item.toEntity()
}

func (r *ProjectRepository) Query(ctx context.Context, q ports.ProjectQuery) (*ports.Page[*entities.Project], error) {
	if q.ClientID == "" {
		return nil, apperrors.NewMissingParameter("client_id is required")
	}

	lower, upper := timestampRange(q.CreatedFrom, q.CreatedTo, r.now())
	spec := querySpec{
		table: r.table.Name,
		index: r.table.CreationDateIndex,
		keyCond: expression.Key("client_id").Equal(expression.Value(q.ClientID)).
			And(expression.Key(attrCreatedAtID).Between(expression.Value(lower), expression.Value(upper))),
		cursor: q.Cursor,
		limit:  q.Limit,
	}

	raw, nextCursor, err := runQuery(ctx, r.client, spec)
	if err != nil {
		return nil, err
	}

	var items []projectItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, apperrors.NewUnknown("unmarshal projects", err)
	}

	page := &ports.Page[*entities.Project]{NextCursor: nextCursor}
	for _, item := range items {
		project, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, project)
	}
	return page, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *entities.Project) error {
	av, err := attributevalue.MarshalMap(newProjectItem(project))
	if err != nil {
		return apperrors.NewUnknown("marshal project", err)
	}

	cond := expression.AttributeNotExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewUnknown("build project condition", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.table.Name),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return translateError("create project", err)
	}
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, updatable entities.UpdatableProject) (*entities.Project, error) {
	if updatable.ClientID == "" || updatable.ID == "" {
		return nil, apperrors.NewMissingParameter("client_id and id are required")
	}

	update := expression.Set(expression.Name("updated_at"), expression.Value(FormatTimestamp(r.now())))
	if updatable.Name != nil {
		update = update.Set(expression.Name("name"), expression.Value(*updatable.Name))
	}
	if updatable.Status != nil {
		update = update.Set(expression.Name("status"), expression.Value(string(*updatable.Status)))
	}

	cond := expression.AttributeExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, apperrors.NewUnknown("build project update", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.Name),
		Key:                       projectKeyAttributes(ports.ProjectKey{ClientID: updatable.ClientID, ID: updatable.ID}),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return nil, apperrors.NewNotFound("project", updatable.ID)
		}
		return nil, translateError("update project", err)
	}

	var item projectItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, apperrors.NewUnknown("unmarshal project", err)
	}
	return item.toEntity()
}

// Delete removes a project. Locked projects refuse deletion at the storage
// layer so the gate holds even against a stale caller.
func (r *ProjectRepository) Delete(ctx context.Context, key ports.ProjectKey) error {
	if key.ClientID == "" || key.ID == "" {
		return apperrors.NewMissingParameter("client_id and id are required")
	}

	cond := expression.AttributeExists(expression.Name("id")).
		And(expression.Name("status").NotEqual(expression.Value(string(entities.ProjectStatusLocked))))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewUnknown("build project delete condition", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.table.Name),
		Key:                       projectKeyAttributes(key),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return apperrors.NewPreconditionFailed("project is locked or missing")
		}
		return translateError("delete project", err)
	}
	return nil
}
