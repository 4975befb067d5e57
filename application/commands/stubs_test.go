package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/domain/events"
)

type stubProjectRepo struct {
	ports.ProjectRepository
	projects map[string]*entities.Project // by id
	getErr   error
	created  []*entities.Project
}

func (s *stubProjectRepo) Get(_ context.Context, key ports.ProjectKey) (*entities.Project, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.projects[key.ID], nil
}

func (s *stubProjectRepo) Create(_ context.Context, project *entities.Project) error {
	s.created = append(s.created, project)
	return nil
}

type stubQuotationRepo struct {
	ports.QuotationRepository
	quotation *entities.Quotation
	getErr    error
	updateErr error
	created   []*entities.Quotation
	updates   []entities.UpdatableQuotation
}

func (s *stubQuotationRepo) Get(_ context.Context, _ ports.QuotationKey) (*entities.Quotation, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.quotation, nil
}

func (s *stubQuotationRepo) Create(_ context.Context, quotation *entities.Quotation) error {
	s.created = append(s.created, quotation)
	return nil
}

func (s *stubQuotationRepo) Update(_ context.Context, updatable entities.UpdatableQuotation) (*entities.Quotation, error) {
	s.updates = append(s.updates, updatable)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	updated := *s.quotation
	if updatable.Status != nil {
		updated.Status = *updatable.Status
	}
	return &updated, nil
}

// stubPartRepo pages its parts in Limit-sized chunks with integer cursors,
// mirroring the repository contract.
type stubPartRepo struct {
	ports.PartRepository
	parts    []*entities.Part
	queryErr error
	batch    []*entities.Part
	updates  []entities.UpdatablePart
	deleted  []ports.PartKey
}

func (s *stubPartRepo) byID(id string) *entities.Part {
	for _, part := range s.parts {
		if part.ID == id {
			return part
		}
	}
	return nil
}

func (s *stubPartRepo) Get(_ context.Context, key ports.PartKey) (*entities.Part, error) {
	return s.byID(key.ID), nil
}

func (s *stubPartRepo) Query(_ context.Context, q ports.PartQuery) (*ports.Page[*entities.Part], error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}

	offset := 0
	if q.Cursor != "" {
		offset, _ = strconv.Atoi(q.Cursor)
	}
	limit := int(q.Limit)
	if limit <= 0 {
		limit = len(s.parts)
	}
	end := offset + limit
	if end > len(s.parts) {
		end = len(s.parts)
	}

	page := &ports.Page[*entities.Part]{Items: s.parts[offset:end]}
	if end < len(s.parts) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (s *stubPartRepo) BatchCreate(_ context.Context, parts []*entities.Part) error {
	s.batch = append(s.batch, parts...)
	return nil
}

func (s *stubPartRepo) BatchGet(_ context.Context, keys []ports.PartKey) ([]*entities.Part, error) {
	found := make([]*entities.Part, 0, len(keys))
	for _, key := range keys {
		if part := s.byID(key.ID); part != nil {
			found = append(found, part)
		}
	}
	return found, nil
}

func (s *stubPartRepo) Update(_ context.Context, updatable entities.UpdatablePart) (*entities.Part, error) {
	s.updates = append(s.updates, updatable)
	part := s.byID(updatable.ID)
	if part == nil {
		part = &entities.Part{ID: updatable.ID}
	}
	return part, nil
}

func (s *stubPartRepo) Delete(_ context.Context, key ports.PartKey) error {
	s.deleted = append(s.deleted, key)
	return nil
}

type stubOrderRepo struct {
	ports.OrderRepository
	order     *entities.Order
	updateErr error
	updates   []entities.UpdatableOrder
}

func (s *stubOrderRepo) Get(_ context.Context, _ ports.OrderKey) (*entities.Order, error) {
	return s.order, nil
}

func (s *stubOrderRepo) Update(_ context.Context, updatable entities.UpdatableOrder) (*entities.Order, error) {
	s.updates = append(s.updates, updatable)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	updated := *s.order
	if updatable.Status != nil {
		updated.Status = *updatable.Status
	}
	if updatable.Recipient != nil {
		updated.Recipient = *updatable.Recipient
	}
	return &updated, nil
}

type stubWorkflow struct {
	attachGate  ports.QuotationStatusGate
	attachments []ports.PartQuotesAttachment
	ordersGate  ports.QuotationStatusGate
	orders      []*entities.Order
	err         error
}

func (s *stubWorkflow) AttachPartQuotes(_ context.Context, gate ports.QuotationStatusGate, attachments []ports.PartQuotesAttachment) error {
	s.attachGate = gate
	s.attachments = attachments
	return s.err
}

func (s *stubWorkflow) CreateOrders(_ context.Context, gate ports.QuotationStatusGate, orders []*entities.Order) error {
	s.ordersGate = gate
	s.orders = orders
	return s.err
}

type stubStorage struct {
	putURLs     map[string]string
	putErr      error
	bulkDeleted [][]string
	bulkErr     error
}

func (s *stubStorage) PutPresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	if url, ok := s.putURLs[path]; ok {
		return url, nil
	}
	return "https://upload.test/" + path, nil
}

func (s *stubStorage) GetPresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://download.test/" + path, nil
}

func (s *stubStorage) Delete(context.Context, string) error { return nil }

func (s *stubStorage) BulkDelete(_ context.Context, paths []string) error {
	s.bulkDeleted = append(s.bulkDeleted, paths)
	return s.bulkErr
}

type stubPayments struct {
	session    *ports.CheckoutSession
	sessionErr error
	sessionRef string
	items      []ports.CheckoutItem
	payment    *ports.Payment
	paymentErr error
}

func (s *stubPayments) CreateCheckoutSession(_ context.Context, quotationRef string, items []ports.CheckoutItem, _, _ string) (*ports.CheckoutSession, error) {
	s.sessionRef = quotationRef
	s.items = items
	if s.sessionErr != nil {
		return nil, s.sessionErr
	}
	return s.session, nil
}

func (s *stubPayments) GetPayment(context.Context, string) (*ports.Payment, error) {
	if s.paymentErr != nil {
		return nil, s.paymentErr
	}
	return s.payment, nil
}

type stubPublisher struct {
	published []events.DomainEvent
	err       error
}

func (s *stubPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	s.published = append(s.published, evts...)
	return s.err
}

type stubNotifier struct {
	notified []events.OrderStatusChanged
	err      error
}

func (s *stubNotifier) NotifyOrderStatus(_ context.Context, event events.OrderStatusChanged) error {
	s.notified = append(s.notified, event)
	return s.err
}

type stubCascader struct {
	projectKeys   []ports.ProjectKey
	quotationKeys []ports.QuotationKey
	err           error
}

func (s *stubCascader) DeleteProject(_ context.Context, key ports.ProjectKey) error {
	s.projectKeys = append(s.projectKeys, key)
	return s.err
}

func (s *stubCascader) DeleteQuotation(_ context.Context, key ports.QuotationKey) error {
	s.quotationKeys = append(s.quotationKeys, key)
	return s.err
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) // a Monday
}
