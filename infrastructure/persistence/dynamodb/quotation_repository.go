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

const attrIsPendingReview = "is_pending_review"

type quotationItem struct {
	ProjectID       string `dynamodbav:"project_id"`
	ID              string `dynamodbav:"id"`
	ClientID        string `dynamodbav:"client_id"`
	Name            string `dynamodbav:"name"`
	Status          string `dynamodbav:"status"`
	CreatedAt       string `dynamodbav:"created_at"`
	UpdatedAt       string `dynamodbav:"updated_at"`
	CreatedAtID     string `dynamodbav:"created_at_id"`
	IsPendingReview string `dynamodbav:"is_pending_review,omitempty"`
}

// quotationIndexFlags materializes the sparse pending-review flag. Only
// quotations awaiting admin pricing appear in the review queue index.
func quotationIndexFlags(status entities.QuotationStatus) map[string]string {
	if status == entities.QuotationStatusPendingReview {
		return map[string]string{attrIsPendingReview: flagTrue}
	}
	return nil
}

func newQuotationItem(quotation *entities.Quotation) quotationItem {
	createdAt := FormatTimestamp(quotation.CreatedAt)
	item := quotationItem{
		ProjectID:   quotation.ProjectID,
		ID:          quotation.ID,
		ClientID:    quotation.ClientID,
		Name:        quotation.Name,
		Status:      string(quotation.Status),
		CreatedAt:   createdAt,
		UpdatedAt:   FormatTimestamp(quotation.UpdatedAt),
		CreatedAtID: EncodeKey(createdAt, quotation.ID),
	}
	item.IsPendingReview = quotationIndexFlags(quotation.Status)[attrIsPendingReview]
	return item
}

func (i quotationItem) toEntity() (*entities.Quotation, error) {
	createdAt, err := ParseTimestamp(i.CreatedAt)
	if err != nil {
		return nil, apperrors.NewUnknown("parse quotation created_at", err)
	}
	updatedAt, err := ParseTimestamp(i.UpdatedAt)
	if err != nil {
		return nil, apperrors.NewUnknown("parse quotation updated_at", err)
	}
	return &entities.Quotation{
		ID:        i.ID,
		ClientID:  i.ClientID,
		ProjectID: i.ProjectID,
		Name:      i.Name,
		Status:    entities.QuotationStatus(i.Status),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// QuotationRepository persists quotations partitioned by project, with a
// cross-customer review queue and a per-customer listing index.
type QuotationRepository struct {
	client Client
	table  QuotationTable
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.QuotationRepository = (*QuotationRepository)(nil)

func NewQuotationRepository(client Client, table QuotationTable, logger *zap.Logger) *QuotationRepository {
	return &QuotationRepository{
		client: client,
		table:  table,
		logger: logger,
		now:    time.Now,
	}
}

func quotationKeyAttributes(key ports.QuotationKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"project_id": &types.AttributeValueMemberS{Value: key.ProjectID},
		"id":         &types.AttributeValueMemberS{Value: key.ID},
	}
}

func (r *QuotationRepository) Get(ctx context.Context, key ports.QuotationKey) (*entities.Quotation, error) {
	if key.ProjectID == "" || key.ID == "" {
		return nil, apperrors.NewMissingParameter("project_id and id are required")
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.Name),
		Key:       quotationKeyAttributes(key),
	})
	if err != nil {
		return nil, translateError("get quotation", err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFound("quotation", key.ID)
	}

	var item quotationItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewUnknown("unmarshal quotation", err)
	}
	return item.toEntity()
}

func (r *QuotationRepository) planQuery(q ports.QuotationQuery) (querySpec, error) {
	spec := querySpec{
		table:  r.table.Name,
		cursor: q.Cursor,
		limit:  q.Limit,
	}
	lower, upper := timestampRange(q.CreatedFrom, q.CreatedTo, r.now())
	dateRange := expression.Key(attrCreatedAtID).Between(expression.Value(lower), expression.Value(upper))

	switch {
	case q.PendingReviewOnly:
		spec.index = r.table.PendingReviewIndex
		spec.keyCond = expression.Key(attrIsPendingReview).Equal(expression.Value(flagTrue)).And(dateRange)
		// Oldest submissions first so the review queue is fair.
		spec.forward = true
		return spec, nil

	case q.ProjectID != "":
		spec.index = ""
		spec.keyCond = expression.Key("project_id").Equal(expression.Value(q.ProjectID))
		return spec, nil

	case q.ClientID != "":
		spec.index = r.table.ClientIndex
		spec.keyCond = expression.Key("client_id").Equal(expression.Value(q.ClientID)).And(dateRange)
		return spec, nil

	default:
		return querySpec{}, apperrors.NewMissingParameter("project_id or client_id is required")
	}
}

func (r *QuotationRepository) Query(ctx context.Context, q ports.QuotationQuery) (*ports.Page[*entities.Quotation], error) {
	spec, err := r.planQuery(q)
	if err != nil {
		return nil, err
	}

	raw, nextCursor, err := runQuery(ctx, r.client, spec)
	if err != nil {
		return nil, err
	}

	var items []quotationItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, apperrors.NewUnknown("unmarshal quotations", err)
	}

	page := &ports.Page[*entities.Quotation]{NextCursor: nextCursor}
	for _, item := range items {
		quotation, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, quotation)
	}
	return page, nil
}

func (r *QuotationRepository) Create(ctx context.Context, quotation *entities.Quotation) error {
	av, err := attributevalue.MarshalMap(newQuotationItem(quotation))
	if err != nil {
		return apperrors.NewUnknown("marshal quotation", err)
	}

	cond := expression.AttributeNotExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewUnknown("build quotation condition", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.table.Name),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return translateError("create quotation", err)
	}
	return nil
}

func (r *QuotationRepository) Update(ctx context.Context, updatable entities.UpdatableQuotation) (*entities.Quotation, error) {
	if updatable.ProjectID == "" || updatable.ID == "" {
		return nil, apperrors.NewMissingParameter("project_id and id are required")
	}
	if updatable.Status != nil && !updatable.Status.Valid() {
		return nil, apperrors.NewValidation("unknown quotation status: " + string(*updatable.Status))
	}

	update := expression.Set(expression.Name("updated_at"), expression.Value(FormatTimestamp(r.now())))
	if updatable.Name != nil {
		update = update.Set(expression.Name("name"), expression.Value(*updatable.Name))
	}
	if updatable.Status != nil {
		update = update.Set(expression.Name("status"), expression.Value(string(*updatable.Status)))
		if v, ok := quotationIndexFlags(*updatable.Status)[attrIsPendingReview]; ok {
			update = update.Set(expression.Name(attrIsPendingReview), expression.Value(v))
		} else {
			update = update.Remove(expression.Name(attrIsPendingReview))
		}
	}

	cond := expression.AttributeExists(expression.Name("id"))
	if updatable.ExpectedStatus != nil {
		cond = cond.And(expression.Name("status").Equal(expression.Value(string(*updatable.ExpectedStatus))))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, apperrors.NewUnknown("build quotation update", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.Name),
		Key:                       quotationKeyAttributes(ports.QuotationKey{ProjectID: updatable.ProjectID, ID: updatable.ID}),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			if updatable.ExpectedStatus != nil {
				return nil, apperrors.NewPreconditionFailed("quotation status changed concurrently")
			}
			return nil, apperrors.NewNotFound("quotation", updatable.ID)
		}
		return nil, translateError("update quotation", err)
	}

	var item quotationItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, apperrors.NewUnknown("unmarshal quotation", err)
	}
	return item.toEntity()
}

// Delete removes a quotation unless money has moved: Paid and OrdersCreated
// quotations refuse deletion at the storage layer.
func (r *QuotationRepository) Delete(ctx context.Context, key ports.QuotationKey) error {
	if key.ProjectID == "" || key.ID == "" {
		return apperrors.NewMissingParameter("project_id and id are required")
	}

	cond := expression.AttributeExists(expression.Name("id")).
		And(expression.Not(expression.Name("status").In(
			expression.Value(string(entities.QuotationStatusPaid)),
			expression.Value(string(entities.QuotationStatusOrdersCreated)),
		)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewUnknown("build quotation delete condition", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.table.Name),
		Key:                       quotationKeyAttributes(key),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return apperrors.NewPreconditionFailed("quotation is paid or missing")
		}
		return translateError("delete quotation", err)
	}
	return nil
}

// BatchDelete removes quotations without per-item conditions; it is meant for
// cascade deletion where the parent gate has already been checked.
func (r *QuotationRepository) BatchDelete(ctx context.Context, keys []ports.QuotationKey) error {
	if len(keys) == 0 {
		return nil
	}

	requests := make([]types.WriteRequest, 0, len(keys))
	for _, key := range keys {
		if key.ProjectID == "" || key.ID == "" {
			return apperrors.NewMissingParameter("project_id and id are required")
		}
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: quotationKeyAttributes(key)},
		})
	}
	return batchWrite(ctx, r.client, r.table.Name, requests)
}
