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

// transactWriteLimit is the store's per-transaction item ceiling.
const transactWriteLimit = 100

// conditionCheckFailedReason is the cancellation reason code for a failed
// per-item condition.
const conditionCheckFailedReason = "ConditionalCheckFailed"

// QuotationWorkflow advances a quotation and its dependent items in one
// atomic write. The quotation update is always the first transaction item,
// so its cancellation reason identifies a failed status gate.
type QuotationWorkflow struct {
	client Client
	tables Tables
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.QuotationWorkflow = (*QuotationWorkflow)(nil)

func NewQuotationWorkflow(client Client, tables Tables, logger *zap.Logger) *QuotationWorkflow {
	return &QuotationWorkflow{
		client: client,
		tables: tables,
		logger: logger,
		now:    time.Now,
	}
}

// gateUpdateItem builds the conditional quotation status move that anchors
// every workflow transaction.
func (w *QuotationWorkflow) gateUpdateItem(gate ports.QuotationStatusGate, updatedAt string) (types.TransactWriteItem, error) {
	if gate.Key.ProjectID == "" || gate.Key.ID == "" {
		return types.TransactWriteItem{}, apperrors.NewMissingParameter("quotation project_id and id are required")
	}
	if !gate.NextStatus.Valid() {
		return types.TransactWriteItem{}, apperrors.NewValidation("unknown quotation status: " + string(gate.NextStatus))
	}

	update := expression.
		Set(expression.Name("status"), expression.Value(string(gate.NextStatus))).
		Set(expression.Name("updated_at"), expression.Value(updatedAt))
	if v, ok := quotationIndexFlags(gate.NextStatus)[attrIsPendingReview]; ok {
		update = update.Set(expression.Name(attrIsPendingReview), expression.Value(v))
	} else {
		update = update.Remove(expression.Name(attrIsPendingReview))
	}

	cond := expression.AttributeExists(expression.Name("id")).
		And(expression.Name("status").Equal(expression.Value(string(gate.ExpectedStatus))))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return types.TransactWriteItem{}, apperrors.NewUnknown("build quotation gate", err)
	}

	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(w.tables.Quotations.Name),
			Key:                       quotationKeyAttributes(gate.Key),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}, nil
}

// AttachPartQuotes applies the status gate plus one update per part writing
// its priced quotes. Either every write lands or none do.
func (w *QuotationWorkflow) AttachPartQuotes(ctx context.Context, gate ports.QuotationStatusGate, attachments []ports.PartQuotesAttachment) error {
	if len(attachments) == 0 {
		return apperrors.NewMissingParameter("at least one part attachment is required")
	}
	if 1+len(attachments) > transactWriteLimit {
		return apperrors.NewValidation("too many parts for one transaction")
	}

	updatedAt := FormatTimestamp(w.now())
	gateItem, err := w.gateUpdateItem(gate, updatedAt)
	if err != nil {
		return err
	}
	items := []types.TransactWriteItem{gateItem}

	for _, attachment := range attachments {
		if attachment.Key.QuotationID == "" || attachment.Key.ID == "" {
			return apperrors.NewMissingParameter("part quotation_id and id are required")
		}
		if len(attachment.PartQuotes) == 0 {
			return apperrors.NewMissingParameter("part quotes are required")
		}

		update := expression.
			Set(expression.Name("part_quotes"), expression.Value(toPartQuoteItems(attachment.PartQuotes))).
			Set(expression.Name("updated_at"), expression.Value(updatedAt))
		if attachment.SelectedPartQuoteID != nil {
			update = update.Set(expression.Name("selected_part_quote_id"), expression.Value(*attachment.SelectedPartQuoteID))
		}

		cond := expression.AttributeExists(expression.Name("id"))
		expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
		if err != nil {
			return apperrors.NewUnknown("build part attachment", err)
		}

		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:                 aws.String(w.tables.Parts.Name),
				Key:                       partKeyAttributes(attachment.Key),
				UpdateExpression:          expr.Update(),
				ConditionExpression:       expr.Condition(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
			},
		})
	}

	return w.execute(ctx, "attach part quotes", items)
}

// CreateOrders moves a Paid quotation to OrdersCreated and puts one order per
// priced part, atomically. The gate must expect Paid; double submission of
// the same payment webhook therefore creates orders exactly once.
func (w *QuotationWorkflow) CreateOrders(ctx context.Context, gate ports.QuotationStatusGate, orders []*entities.Order) error {
	if len(orders) == 0 {
		return apperrors.NewMissingParameter("at least one order is required")
	}
	if 1+len(orders) > transactWriteLimit {
		return apperrors.NewValidation("too many orders for one transaction")
	}
	if gate.ExpectedStatus != entities.QuotationStatusPaid {
		return apperrors.NewValidation("order creation requires a paid quotation gate")
	}

	updatedAt := FormatTimestamp(w.now())
	gateItem, err := w.gateUpdateItem(gate, updatedAt)
	if err != nil {
		return err
	}
	items := []types.TransactWriteItem{gateItem}

	cond := expression.AttributeNotExists(expression.Name("id"))
	condExpr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewUnknown("build order condition", err)
	}

	for _, order := range orders {
		av, err := attributevalue.MarshalMap(newOrderItem(order))
		if err != nil {
			return apperrors.NewUnknown("marshal order", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:                 aws.String(w.tables.Orders.Name),
				Item:                      av,
				ConditionExpression:       condExpr.Condition(),
				ExpressionAttributeNames:  condExpr.Names(),
				ExpressionAttributeValues: condExpr.Values(),
			},
		})
	}

	return w.execute(ctx, "create orders", items)
}

// execute runs the transaction and maps cancellation. A failed condition on
// the gate (item zero) is a precondition failure the caller can surface;
// anything else aborted the transaction for reasons the caller cannot fix by
// re-reading, so it maps to a transaction abort.
func (w *QuotationWorkflow) execute(ctx context.Context, operation string, items []types.TransactWriteItem) error {
	_, err := w.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err == nil {
		return nil
	}

	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for i, reason := range canceled.CancellationReasons {
			if reason.Code == nil || *reason.Code == "None" {
				continue
			}
			w.logger.Warn("transaction canceled",
				zap.String("operation", operation),
				zap.Int("item", i),
				zap.String("code", *reason.Code),
			)
			if i == 0 && *reason.Code == conditionCheckFailedReason {
				return apperrors.NewPreconditionFailed("quotation status gate failed")
			}
		}
		return apperrors.NewTransactionAborted(operation, err)
	}
	return translateError(operation, err)
}
