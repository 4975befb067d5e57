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

type fileReferenceItem struct {
	Name string `dynamodbav:"name"`
	Path string `dynamodbav:"path"`
}

type partQuoteItem struct {
	ID         string `dynamodbav:"id"`
	UnitPrice  int64  `dynamodbav:"unit_price_cents"`
	SubTotal   int64  `dynamodbav:"sub_total_cents"`
	Workdays   int    `dynamodbav:"workdays"`
	ValidUntil string `dynamodbav:"valid_until"`
	CreatedAt  string `dynamodbav:"created_at"`
	UpdatedAt  string `dynamodbav:"updated_at"`
}

type partItem struct {
	QuotationID         string             `dynamodbav:"quotation_id"`
	ID                  string             `dynamodbav:"id"`
	ClientID            string             `dynamodbav:"client_id"`
	ProjectID           string             `dynamodbav:"project_id"`
	ModelFile           fileReferenceItem  `dynamodbav:"model_file"`
	RenderFile          fileReferenceItem  `dynamodbav:"render_file"`
	DrawingFile         *fileReferenceItem `dynamodbav:"drawing_file,omitempty"`
	Process             string             `dynamodbav:"process"`
	Material            string             `dynamodbav:"material"`
	Tolerance           string             `dynamodbav:"tolerance"`
	Quantity            int                `dynamodbav:"quantity"`
	SelectedPartQuoteID *string            `dynamodbav:"selected_part_quote_id,omitempty"`
	PartQuotes          []partQuoteItem    `dynamodbav:"part_quotes,omitempty"`
	CreatedAt           string             `dynamodbav:"created_at"`
	UpdatedAt           string             `dynamodbav:"updated_at"`
	HierarchySK         string             `dynamodbav:"hierarchy_sk"`
}

func toFileReferenceItem(ref entities.FileReference) fileReferenceItem {
	return fileReferenceItem{Name: ref.Name, Path: ref.Path}
}

func toPartQuoteItems(quotes []entities.PartQuote) []partQuoteItem {
	if len(quotes) == 0 {
		return nil
	}
	items := make([]partQuoteItem, 0, len(quotes))
	for _, q := range quotes {
		items = append(items, partQuoteItem{
			ID:         q.ID,
			UnitPrice:  q.UnitPrice,
			SubTotal:   q.SubTotal,
			Workdays:   q.Workdays,
			ValidUntil: FormatTimestamp(q.ValidUntil),
			CreatedAt:  FormatTimestamp(q.CreatedAt),
			UpdatedAt:  FormatTimestamp(q.UpdatedAt),
		})
	}
	return items
}

func fromPartQuoteItems(items []partQuoteItem) ([]entities.PartQuote, error) {
	if len(items) == 0 {
		return nil, nil
	}
	quotes := make([]entities.PartQuote, 0, len(items))
	for _, i := range items {
		validUntil, err := ParseTimestamp(i.ValidUntil)
		if err != nil {
			return nil, apperrors.NewUnknown("parse part quote valid_until", err)
		}
		createdAt, err := ParseTimestamp(i.CreatedAt)
		if err != nil {
			return nil, apperrors.NewUnknown("parse part quote created_at", err)
		}
		updatedAt, err := ParseTimestamp(i.UpdatedAt)
		if err != nil {
			return nil, apperrors.NewUnknown("parse part quote updated_at", err)
		}
		quotes = append(quotes, entities.PartQuote{
			ID:         i.ID,
			UnitPrice:  i.UnitPrice,
			SubTotal:   i.SubTotal,
			Workdays:   i.Workdays,
			ValidUntil: validUntil,
			CreatedAt:  createdAt,
			UpdatedAt:  updatedAt,
		})
	}
	return quotes, nil
}

func newPartItem(part *entities.Part) partItem {
	item := partItem{
		QuotationID:         part.QuotationID,
		ID:                  part.ID,
		ClientID:            part.ClientID,
		ProjectID:           part.ProjectID,
		ModelFile:           toFileReferenceItem(part.ModelFile),
		RenderFile:          toFileReferenceItem(part.RenderFile),
		Process:             part.Process,
		Material:            part.Material,
		Tolerance:           part.Tolerance,
		Quantity:            part.Quantity,
		SelectedPartQuoteID: part.SelectedPartQuoteID,
		PartQuotes:          toPartQuoteItems(part.PartQuotes),
		CreatedAt:           FormatTimestamp(part.CreatedAt),
		UpdatedAt:           FormatTimestamp(part.UpdatedAt),
		HierarchySK:         EncodeKey(part.ProjectID, part.QuotationID, part.ID),
	}
	if part.DrawingFile != nil {
		ref := toFileReferenceItem(*part.DrawingFile)
		item.DrawingFile = &ref
	}
	return item
}

func (i partItem) toEntity() (*entities.Part, error) {
	createdAt, err := ParseTimestamp(i.CreatedAt)
	if err != nil {
		return nil, apperrors.NewUnknown("parse part created_at", err)
	}
	updatedAt, err := ParseTimestamp(i.UpdatedAt)
	if err != nil {
		return nil, apperrors.NewUnknown("parse part updated_at", err)
	}
	quotes, err := fromPartQuoteItems(i.PartQuotes)
	if err != nil {
		return nil, err
	}

	part := &entities.Part{
		ID:                  i.ID,
		ClientID:            i.ClientID,
		ProjectID:           i.ProjectID,
		QuotationID:         i.QuotationID,
		ModelFile:           entities.FileReference{Name: i.ModelFile.Name, Path: i.ModelFile.Path},
		RenderFile:          entities.FileReference{Name: i.RenderFile.Name, Path: i.RenderFile.Path},
		Process:             i.Process,
		Material:            i.Material,
		Tolerance:           i.Tolerance,
		Quantity:            i.Quantity,
		SelectedPartQuoteID: i.SelectedPartQuoteID,
		PartQuotes:          quotes,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}
	if i.DrawingFile != nil {
		part.DrawingFile = &entities.FileReference{Name: i.DrawingFile.Name, Path: i.DrawingFile.Path}
	}
	return part, nil
}

// PartRepository persists parts partitioned by quotation, with a hierarchy
// index for listing a customer's parts at any depth.
type PartRepository struct {
	client Client
	table  PartTable
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.PartRepository = (*PartRepository)(nil)

func NewPartRepository(client Client, table PartTable, logger *zap.Logger) *PartRepository {
	return &PartRepository{
		client: client,
		table:  table,
		logger: logger,
		now:    time.Now,
	}
}

func partKeyAttributes(key ports.PartKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"quotation_id": &types.AttributeValueMemberS{Value: key.QuotationID},
		"id":           &types.AttributeValueMemberS{Value: key.ID},
	}
}

func (r *PartRepository) Get(ctx context.Context, key ports.PartKey) (*entities.Part, error) {
	if key.QuotationID == "" || key.ID == "" {
		return nil, apperrors.NewMissingParameter("quotation_id and id are required")
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.Name),
		Key:       partKeyAttributes(key),
	})
	if err != nil {
		return nil, translateError("get part", err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFound("part", key.ID)
	}

	var item partItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewUnknown("unmarshal part", err)
	}
	return item.toEntity()
}

func (r *PartRepository) planQuery(q ports.PartQuery) (querySpec, error) {
	spec := querySpec{
		table:  r.table.Name,
		cursor: q.Cursor,
		limit:  q.Limit,
	}

	switch {
	case q.QuotationID != "" && q.ProjectID == "":
		spec.keyCond = expression.Key("quotation_id").Equal(expression.Value(q.QuotationID))
		// Parts of one quotation read oldest first, matching upload order.
		spec.forward = true
		return spec, nil

	case q.ProjectID != "":
		if q.ClientID == "" {
			return querySpec{}, apperrors.NewMissingParameter("client_id is required for hierarchy queries")
		}
		dims := []string{q.ProjectID}
		if q.QuotationID != "" {
			dims = append(dims, q.QuotationID)
		}
		spec.index = r.table.HierarchyIndex
		spec.keyCond = expression.Key("client_id").Equal(expression.Value(q.ClientID)).
			And(expression.Key(attrHierarchySK).BeginsWith(EncodePrefix(dims...)))
		spec.forward = true
		return spec, nil

	default:
		return querySpec{}, apperrors.NewMissingParameter("quotation_id or project_id is required")
	}
}

func (r *PartRepository) Query(ctx context.Context, q ports.PartQuery) (*ports.Page[*entities.Part], error) {
	spec, err := r.planQuery(q)
	if err != nil {
		return nil, err
	}

	raw, nextCursor, err := runQuery(ctx, r.client, spec)
	if err != nil {
		return nil, err
	}

	var items []partItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, apperrors.NewUnknown("unmarshal parts", err)
	}

	page := &ports.Page[*entities.Part]{NextCursor: nextCursor}
	for _, item := range items {
		part, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, part)
	}
	return page, nil
}

func (r *PartRepository) Create(ctx context.Context, part *entities.Part) error {
	av, err := attributevalue.MarshalMap(newPartItem(part))
	if err != nil {
		return apperrors.NewUnknown("marshal part", err)
	}

	cond := expression.AttributeNotExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewUnknown("build part condition", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.table.Name),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return translateError("create part", err)
	}
	return nil
}

// BatchCreate writes freshly minted parts. Batch writes carry no conditions;
// ids are generated uuids so overwrites cannot happen in practice.
func (r *PartRepository) BatchCreate(ctx context.Context, parts []*entities.Part) error {
	if len(parts) == 0 {
		return nil
	}

	requests := make([]types.WriteRequest, 0, len(parts))
	for _, part := range parts {
		av, err := attributevalue.MarshalMap(newPartItem(part))
		if err != nil {
			return apperrors.NewUnknown("marshal part", err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}
	return batchWrite(ctx, r.client, r.table.Name, requests)
}

func (r *PartRepository) Update(ctx context.Context, updatable entities.UpdatablePart) (*entities.Part, error) {
	if updatable.QuotationID == "" || updatable.ID == "" {
		return nil, apperrors.NewMissingParameter("quotation_id and id are required")
	}

	update := expression.Set(expression.Name("updated_at"), expression.Value(FormatTimestamp(r.now())))
	if updatable.Process != nil {
		update = update.Set(expression.Name("process"), expression.Value(*updatable.Process))
	}
	if updatable.Material != nil {
		update = update.Set(expression.Name("material"), expression.Value(*updatable.Material))
	}
	if updatable.Tolerance != nil {
		update = update.Set(expression.Name("tolerance"), expression.Value(*updatable.Tolerance))
	}
	if updatable.Quantity != nil {
		update = update.Set(expression.Name("quantity"), expression.Value(*updatable.Quantity))
	}

	switch {
	case updatable.DrawingFile.IsSet():
		drawing, _ := updatable.DrawingFile.Value()
		update = update.Set(expression.Name("drawing_file"), expression.Value(toFileReferenceItem(drawing)))
	case updatable.DrawingFile.IsCleared():
		update = update.Remove(expression.Name("drawing_file"))
	}

	switch {
	case updatable.SelectedPartQuoteID.IsSet():
		selected, _ := updatable.SelectedPartQuoteID.Value()
		update = update.Set(expression.Name("selected_part_quote_id"), expression.Value(selected))
	case updatable.SelectedPartQuoteID.IsCleared():
		update = update.Remove(expression.Name("selected_part_quote_id"))
	}

	switch {
	case updatable.PartQuotes.IsSet():
		quotes, _ := updatable.PartQuotes.Value()
		update = update.Set(expression.Name("part_quotes"), expression.Value(toPartQuoteItems(quotes)))
	case updatable.PartQuotes.IsCleared():
		update = update.Remove(expression.Name("part_quotes"))
	}

	cond := expression.AttributeExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, apperrors.NewUnknown("build part update", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.Name),
		Key:                       partKeyAttributes(ports.PartKey{QuotationID: updatable.QuotationID, ID: updatable.ID}),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return nil, apperrors.NewNotFound("part", updatable.ID)
		}
		return nil, translateError("update part", err)
	}

	var item partItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, apperrors.NewUnknown("unmarshal part", err)
	}
	return item.toEntity()
}

func (r *PartRepository) Delete(ctx context.Context, key ports.PartKey) error {
	if key.QuotationID == "" || key.ID == "" {
		return apperrors.NewMissingParameter("quotation_id and id are required")
	}

	cond := expression.AttributeExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewUnknown("build part delete condition", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.table.Name),
		Key:                       partKeyAttributes(key),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return apperrors.NewNotFound("part", key.ID)
		}
		return translateError("delete part", err)
	}
	return nil
}

func (r *PartRepository) BatchGet(ctx context.Context, keys []ports.PartKey) ([]*entities.Part, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	attrKeys := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, key := range keys {
		if key.QuotationID == "" || key.ID == "" {
			return nil, apperrors.NewMissingParameter("quotation_id and id are required")
		}
		attrKeys = append(attrKeys, partKeyAttributes(key))
	}

	raw, err := batchGet(ctx, r.client, r.table.Name, attrKeys)
	if err != nil {
		return nil, err
	}

	var items []partItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, apperrors.NewUnknown("unmarshal parts", err)
	}
	parts := make([]*entities.Part, 0, len(items))
	for _, item := range items {
		part, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func (r *PartRepository) BatchDelete(ctx context.Context, keys []ports.PartKey) error {
	if len(keys) == 0 {
		return nil
	}

	requests := make([]types.WriteRequest, 0, len(keys))
	for _, key := range keys {
		if key.QuotationID == "" || key.ID == "" {
			return apperrors.NewMissingParameter("quotation_id and id are required")
		}
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: partKeyAttributes(key)},
		})
	}
	return batchWrite(ctx, r.client, r.table.Name, requests)
}
