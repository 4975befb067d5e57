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

const (
	attrOrderStatus       = "status"
	attrCreatedAtID       = "created_at_id"
	attrStatusCreatedAtID = "status_created_at_id"
	attrIsOpen            = "is_open"
	attrHierarchySK       = "hierarchy_sk"

	// flagTrue is the single value sparse boolean index attributes take.
	// Presence puts the item in the index; absence removes it.
	flagTrue = "TRUE"
)

type recipientItem struct {
	Name    string `dynamodbav:"name"`
	Phone   string `dynamodbav:"phone"`
	Address string `dynamodbav:"address"`
	City    string `dynamodbav:"city"`
	Country string `dynamodbav:"country"`
	ZipCode string `dynamodbav:"zip_code"`
}

// orderItem is the storage projection of an order. Besides the entity fields
// it carries the derived composite keys each index sorts by; those are
// recomputed on every write, never patched directly.
type orderItem struct {
	ClientID            string        `dynamodbav:"client_id"`
	ID                  string        `dynamodbav:"id"`
	ProjectID           string        `dynamodbav:"project_id"`
	QuotationID         string        `dynamodbav:"quotation_id"`
	PartID              string        `dynamodbav:"part_id"`
	SelectedPartQuoteID string        `dynamodbav:"selected_part_quote_id"`
	Status              string        `dynamodbav:"status"`
	Deadline            string        `dynamodbav:"deadline"`
	Recipient           recipientItem `dynamodbav:"recipient"`
	CreatedAt           string        `dynamodbav:"created_at"`
	UpdatedAt           string        `dynamodbav:"updated_at"`
	CreatedAtID         string        `dynamodbav:"created_at_id"`
	StatusCreatedAtID   string        `dynamodbav:"status_created_at_id"`
	IsOpen              string        `dynamodbav:"is_open,omitempty"`
	HierarchySK         string        `dynamodbav:"hierarchy_sk"`
}

// orderIndexFlags materializes the sparse boolean index attributes for a
// status. Returned map holds only the flags that must be present; every flag
// not in the map must be absent from the item.
func orderIndexFlags(status entities.OrderStatus) map[string]string {
	if status == entities.OrderStatusOpen {
		return map[string]string{attrIsOpen: flagTrue}
	}
	return nil
}

func newOrderItem(order *entities.Order) orderItem {
	createdAt := FormatTimestamp(order.CreatedAt)
	item := orderItem{
		ClientID:            order.ClientID,
		ID:                  order.ID,
		ProjectID:           order.ProjectID,
		QuotationID:         order.QuotationID,
		PartID:              order.PartID,
		SelectedPartQuoteID: order.SelectedPartQuoteID,
		Status:              string(order.Status),
		Deadline:            FormatTimestamp(order.Deadline),
		Recipient: recipientItem{
			Name:    order.Recipient.Name,
			Phone:   order.Recipient.Phone,
			Address: order.Recipient.Address,
			City:    order.Recipient.City,
			Country: order.Recipient.Country,
			ZipCode: order.Recipient.ZipCode,
		},
		CreatedAt:         createdAt,
		UpdatedAt:         FormatTimestamp(order.UpdatedAt),
		CreatedAtID:       EncodeKey(createdAt, order.ID),
		StatusCreatedAtID: EncodeKey(string(order.Status), createdAt, order.ID),
		HierarchySK:       EncodeKey(order.ProjectID, order.QuotationID, order.PartID, order.ID),
	}
	item.IsOpen = orderIndexFlags(order.Status)[attrIsOpen]
	return item
}

func (i orderItem) toEntity() (*entities.Order, error) {
	createdAt, err := ParseTimestamp(i.CreatedAt)
	if err != nil {
		return nil, apperrors.NewUnknown("parse order created_at", err)
	}
	updatedAt, err := ParseTimestamp(i.UpdatedAt)
	if err != nil {
		return nil, apperrors.NewUnknown("parse order updated_at", err)
	}
	deadline, err := ParseTimestamp(i.Deadline)
	if err != nil {
		return nil, apperrors.NewUnknown("parse order deadline", err)
	}
	return &entities.Order{
		ID:                  i.ID,
		ClientID:            i.ClientID,
		ProjectID:           i.ProjectID,
		QuotationID:         i.QuotationID,
		PartID:              i.PartID,
		SelectedPartQuoteID: i.SelectedPartQuoteID,
		Status:              entities.OrderStatus(i.Status),
		Deadline:            deadline,
		Recipient: entities.ShippingRecipient{
			Name:    i.Recipient.Name,
			Phone:   i.Recipient.Phone,
			Address: i.Recipient.Address,
			City:    i.Recipient.City,
			Country: i.Recipient.Country,
			ZipCode: i.Recipient.ZipCode,
		},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// OrderRepository persists orders in a single-partition-per-customer table
// with four query indexes.
type OrderRepository struct {
	client Client
	table  OrderTable
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(client Client, table OrderTable, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{
		client: client,
		table:  table,
		logger: logger,
		now:    time.Now,
	}
}

func orderKeyAttributes(key ports.OrderKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"client_id": &types.AttributeValueMemberS{Value: key.ClientID},
		"id":        &types.AttributeValueMemberS{Value: key.ID},
	}
}

func (r *OrderRepository) Get(ctx context.Context, key ports.OrderKey) (*entities.Order, error) {
	if key.ClientID == "" || key.ID == "" {
		return nil, apperrors.NewMissingParameter("client_id and id are required")
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.Name),
		Key:       orderKeyAttributes(key),
	})
	if err != nil {
		return nil, translateError("get order", err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFound("order", key.ID)
	}

	var item orderItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewUnknown("unmarshal order", err)
	}
	return item.toEntity()
}

// planQuery picks the single index and key condition for a query. Priority:
// open flag, then hierarchy prefix, then status, then creation-date range.
func (r *OrderRepository) planQuery(q ports.OrderQuery) (querySpec, error) {
	spec := querySpec{
		table:  r.table.Name,
		cursor: q.Cursor,
		limit:  q.Limit,
	}

	switch {
	case q.OpenOnly:
		// Cross-customer admin view over the sparse open-orders index. The
		// flag names the whole backlog; a narrower filter alongside it would
		// be silently dropped, so the combination is rejected.
		if q.ProjectID != "" || q.QuotationID != "" || q.PartID != "" || q.Status != nil {
			return querySpec{}, apperrors.NewValidation("open_only cannot be combined with hierarchy or status filters")
		}
		lower, upper := timestampRange(q.CreatedFrom, q.CreatedTo, r.now())
		spec.index = r.table.OpenOrdersIndex
		spec.keyCond = expression.Key(attrIsOpen).Equal(expression.Value(flagTrue)).
			And(expression.Key(attrCreatedAtID).Between(expression.Value(lower), expression.Value(upper)))
		return spec, nil

	case q.ProjectID != "":
		if q.ClientID == "" {
			return querySpec{}, apperrors.NewMissingParameter("client_id is required for hierarchy queries")
		}
		dims := []string{q.ProjectID}
		if q.QuotationID != "" {
			dims = append(dims, q.QuotationID)
			if q.PartID != "" {
				dims = append(dims, q.PartID)
			}
		}
		spec.index = r.table.HierarchyIndex
		spec.keyCond = expression.Key("client_id").Equal(expression.Value(q.ClientID)).
			And(expression.Key(attrHierarchySK).BeginsWith(EncodePrefix(dims...)))
		return spec, nil

	case q.Status != nil:
		if q.ClientID == "" {
			return querySpec{}, apperrors.NewMissingParameter("client_id is required for status queries")
		}
		spec.index = r.table.StatusIndex
		spec.keyCond = expression.Key("client_id").Equal(expression.Value(q.ClientID)).
			And(expression.Key(attrStatusCreatedAtID).BeginsWith(EncodePrefix(string(*q.Status))))
		return spec, nil

	default:
		if q.ClientID == "" {
			return querySpec{}, apperrors.NewMissingParameter("client_id is required")
		}
		lower, upper := timestampRange(q.CreatedFrom, q.CreatedTo, r.now())
		spec.index = r.table.CreationDateIndex
		spec.keyCond = expression.Key("client_id").Equal(expression.Value(q.ClientID)).
			And(expression.Key(attrCreatedAtID).Between(expression.Value(lower), expression.Value(upper)))
		return spec, nil
	}
}

func (r *OrderRepository) Query(ctx context.Context, q ports.OrderQuery) (*ports.Page[*entities.Order], error) {
	spec, err := r.planQuery(q)
	if err != nil {
		return nil, err
	}

	raw, nextCursor, err := runQuery(ctx, r.client, spec)
	if err != nil {
		return nil, err
	}

	var items []orderItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, apperrors.NewUnknown("unmarshal orders", err)
	}

	page := &ports.Page[*entities.Order]{NextCursor: nextCursor}
	for _, item := range items {
		order, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, order)
	}
	return page, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *entities.Order) error {
	av, err := attributevalue.MarshalMap(newOrderItem(order))
	if err != nil {
		return apperrors.NewUnknown("marshal order", err)
	}

	cond := expression.AttributeNotExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewUnknown("build order condition", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.table.Name),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return translateError("create order", err)
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, updatable entities.UpdatableOrder) (*entities.Order, error) {
	if updatable.ClientID == "" || updatable.ID == "" {
		return nil, apperrors.NewMissingParameter("client_id and id are required")
	}
	if updatable.Status != nil && !updatable.Status.Valid() {
		return nil, apperrors.NewValidation("unknown order status: " + string(*updatable.Status))
	}

	update := expression.Set(expression.Name("updated_at"), expression.Value(FormatTimestamp(r.now())))
	if updatable.Status != nil {
		// The status index sorts on "status&created_at&id". Update
		// expressions cannot concatenate strings, so the new key is built
		// here from the stored creation timestamp; created_at is immutable,
		// making the read-then-write safe under the condition below.
		current, err := r.Get(ctx, ports.OrderKey{ClientID: updatable.ClientID, ID: updatable.ID})
		if err != nil {
			return nil, err
		}
		createdAt := FormatTimestamp(current.CreatedAt)
		update = update.
			Set(expression.Name(attrOrderStatus), expression.Value(string(*updatable.Status))).
			Set(expression.Name(attrStatusCreatedAtID),
				expression.Value(EncodeKey(string(*updatable.Status), createdAt, updatable.ID)))
		if v, ok := orderIndexFlags(*updatable.Status)[attrIsOpen]; ok {
			update = update.Set(expression.Name(attrIsOpen), expression.Value(v))
		} else {
			update = update.Remove(expression.Name(attrIsOpen))
		}
	}
	if updatable.Deadline != nil {
		update = update.Set(expression.Name("deadline"), expression.Value(FormatTimestamp(*updatable.Deadline)))
	}
	if updatable.Recipient != nil {
		recipient := recipientItem{
			Name:    updatable.Recipient.Name,
			Phone:   updatable.Recipient.Phone,
			Address: updatable.Recipient.Address,
			City:    updatable.Recipient.City,
			Country: updatable.Recipient.Country,
			ZipCode: updatable.Recipient.ZipCode,
		}
		update = update.Set(expression.Name("recipient"), expression.Value(recipient))
	}

	cond := expression.AttributeExists(expression.Name("id"))
	if updatable.ExpectedStatus != nil {
		cond = cond.And(expression.Name(attrOrderStatus).Equal(expression.Value(string(*updatable.ExpectedStatus))))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, apperrors.NewUnknown("build order update", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.Name),
		Key:                       orderKeyAttributes(ports.OrderKey{ClientID: updatable.ClientID, ID: updatable.ID}),
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
				return nil, apperrors.NewPreconditionFailed("order status changed concurrently")
			}
			return nil, apperrors.NewNotFound("order", updatable.ID)
		}
		return nil, translateError("update order", err)
	}

	var item orderItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, apperrors.NewUnknown("unmarshal order", err)
	}
	return item.toEntity()
}

func (r *OrderRepository) BatchGet(ctx context.Context, keys []ports.OrderKey) ([]*entities.Order, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	attrKeys := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, key := range keys {
		if key.ClientID == "" || key.ID == "" {
			return nil, apperrors.NewMissingParameter("client_id and id are required")
		}
		attrKeys = append(attrKeys, orderKeyAttributes(key))
	}

	raw, err := batchGet(ctx, r.client, r.table.Name, attrKeys)
	if err != nil {
		return nil, err
	}

	var items []orderItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, apperrors.NewUnknown("unmarshal orders", err)
	}
	orders := make([]*entities.Order, 0, len(items))
	for _, item := range items {
		order, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}
