package returns

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	fulfillmentapp "github.com/storefront/backend/internal/application/fulfillment"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/returns"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReturnRepository struct {
	mock.Mock
}

func (m *MockReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*returns.Return, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.Return), args.Error(1)
}

func (m *MockReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]returns.Return, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]returns.Return), args.Get(1).(int64), args.Error(2)
}

func (m *MockReturnRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]returns.Return, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]returns.Return), args.Error(1)
}

func (m *MockReturnRepository) Save(ctx context.Context, r *returns.Return) error {
	return m.Called(ctx, r).Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCartID(ctx context.Context, cartID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) NextDisplayID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockFulfillmentRepository struct {
	mock.Mock
}

func (m *MockFulfillmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Fulfillment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Fulfillment), args.Error(1)
}

func (m *MockFulfillmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]fulfillment.Fulfillment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]fulfillment.Fulfillment), args.Error(1)
}

func (m *MockFulfillmentRepository) FindByReturn(ctx context.Context, returnID uuid.UUID) ([]fulfillment.Fulfillment, error) {
	args := m.Called(ctx, returnID)
	return args.Get(0).([]fulfillment.Fulfillment), args.Error(1)
}

func (m *MockFulfillmentRepository) Save(ctx context.Context, f *fulfillment.Fulfillment) error {
	return m.Called(ctx, f).Error(0)
}

type MockFulfillments struct {
	mock.Mock
}

func (m *MockFulfillments) CreateReturnFulfillment(ctx context.Context, o *order.Order, returnID uuid.UUID, quantities map[uuid.UUID]int) (*fulfillment.Fulfillment, error) {
	args := m.Called(ctx, o, returnID, quantities)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Fulfillment), args.Error(1)
}

func (m *MockFulfillments) CancelFulfillment(ctx context.Context, fulfillmentID uuid.UUID) (*fulfillmentapp.FulfillmentResponse, error) {
	args := m.Called(ctx, fulfillmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.FulfillmentResponse), args.Error(1)
}

func (m *MockFulfillments) MarkCanceled(ctx context.Context, fulfillmentID uuid.UUID) error {
	return m.Called(ctx, fulfillmentID).Error(0)
}

type MockRefunder struct {
	mock.Mock
}

func (m *MockRefunder) Refund(ctx context.Context, paymentIntentID string, amountMinor int64) (*payment.RefundResult, error) {
	args := m.Called(ctx, paymentIntentID, amountMinor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.RefundResult), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type testDeps struct {
	returns      *MockReturnRepository
	orders       *MockOrderRepository
	repo         *MockFulfillmentRepository
	fulfillments *MockFulfillments
	refunds      *MockRefunder
	publisher    *MockEventPublisher
}

func newTestReturnService() (*ReturnService, testDeps) {
	d := testDeps{
		returns:      new(MockReturnRepository),
		orders:       new(MockOrderRepository),
		repo:         new(MockFulfillmentRepository),
		fulfillments: new(MockFulfillments),
		refunds:      new(MockRefunder),
		publisher:    new(MockEventPublisher),
	}
	svc := NewReturnService(d.returns, d.orders, d.repo, d.fulfillments, d.refunds, d.publisher, nil, nil)
	return svc, d
}

// newTestOrder builds a captured order with two shirts at 40.00 EUR
func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	c := cart.NewCart(valueobject.EUR)
	_, err := c.AddItem(cart.VariantSnapshot{
		VariantID:    uuid.New(),
		ProductID:    uuid.New(),
		ProductTitle: "Linen Shirt",
		VariantTitle: "M",
		SKU:          "LS-M",
		UnitPrice:    valueobject.MustMoney("40.00", valueobject.EUR),
		WeightGrams:  300,
	}, 2)
	require.NoError(t, err)
	require.NoError(t, c.SetEmail("jane@example.com"))
	require.NoError(t, c.SetShippingAddress(valueobject.Address{
		FirstName: "Jane", Address1: "Hauptstr. 1", PostalCode: "10115", City: "Berlin", CountryCode: "DE",
	}))
	require.NoError(t, c.SetShippingMethod(cart.ShippingMethod{
		ShippingOptionID: "8", Name: "DHL Paket", Carrier: "dhl",
		Price: valueobject.MustMoney("4.90", valueobject.EUR),
	}))
	require.NoError(t, c.SetPaymentSession(cart.PaymentSession{
		Provider: cart.ProviderStripe, PaymentIntentID: "pi_123", Status: cart.PaymentSessionPending, Amount: c.Total(),
	}))

	o, err := order.NewOrderFromCart(1001, c, true)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

// newTestReturn opens a return for one shirt of the order
func newTestReturn(t *testing.T, o *order.Order) *returns.Return {
	t.Helper()
	q := map[uuid.UUID]int{o.Items[0].ID: 1}
	require.NoError(t, o.ReserveReturnQuantity(q))
	r, err := returns.NewReturn(o.ID, []returns.Item{{LineItemID: o.Items[0].ID, Quantity: 1, Reason: "too small"}},
		o.RefundAmountFor(q), "")
	require.NoError(t, err)
	r.ClearDomainEvents()
	return r
}

func newReturnFulfillment(t *testing.T, o *order.Order, r *returns.Return, parcelID string) fulfillment.Fulfillment {
	t.Helper()
	f, err := fulfillment.NewReturnFulfillment(o.ID, r.ID, "sendcloud",
		[]fulfillment.Item{{LineItemID: o.Items[0].ID, Quantity: 1}})
	require.NoError(t, err)
	f.SetProviderData(fulfillment.Data{ParcelID: parcelID})
	return *f
}

func publishedTypes(pub *MockEventPublisher) []string {
	var types []string
	for _, call := range pub.Calls {
		for _, e := range call.Arguments.Get(1).([]shared.DomainEvent) {
			types = append(types, e.EventType())
		}
	}
	return types
}

func TestReturnService_RequestReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a return with a return parcel", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		owner := uuid.New()
		o.CustomerID = &owner
		lineID := o.Items[0].ID

		var calls []string
		d.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		d.orders.On("Save", ctx, o).Run(func(mock.Arguments) { calls = append(calls, "order") }).Return(nil)
		d.returns.On("Save", ctx, mock.AnythingOfType("*returns.Return")).
			Run(func(mock.Arguments) { calls = append(calls, "return") }).Return(nil)
		parcel := newReturnFulfillment(t, o, &returns.Return{}, "2002")
		d.fulfillments.On("CreateReturnFulfillment", ctx, o, mock.AnythingOfType("uuid.UUID"), map[uuid.UUID]int{lineID: 1}).
			Run(func(mock.Arguments) { calls = append(calls, "parcel") }).Return(&parcel, nil)
		d.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.RequestReturn(ctx, RequestReturnRequest{
			OrderID:        o.ID,
			Items:          []ReturnItemRequest{{LineItemID: lineID, Quantity: 1, Reason: "too small"}},
			ReturnShipping: true,
			CustomerID:     &owner,
		})
		require.NoError(t, err)
		assert.Equal(t, "requested", resp.Status)
		assert.Equal(t, "40.00 EUR", resp.RefundAmount.String())
		assert.Equal(t, []uuid.UUID{parcel.ID}, resp.FulfillmentIDs)
		assert.Equal(t, 1, o.Items[0].ReturnedQuantity)
		assert.Equal(t, []string{returns.EventTypeReturnRequested}, publishedTypes(d.publisher))
		assert.Equal(t, []string{"return", "parcel", "order"}, calls, "the return row must exist before its parcel references it")
	})

	t.Run("orders of other customers are not found", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		owner := uuid.New()
		o.CustomerID = &owner
		stranger := uuid.New()
		d.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := svc.RequestReturn(ctx, RequestReturnRequest{
			OrderID:    o.ID,
			Items:      []ReturnItemRequest{{LineItemID: o.Items[0].ID, Quantity: 1}},
			CustomerID: &stranger,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		d.returns.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("quantity above the returnable quantity is rejected", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		d.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := svc.RequestReturn(ctx, RequestReturnRequest{
			OrderID: o.ID,
			Items:   []ReturnItemRequest{{LineItemID: o.Items[0].ID, Quantity: 3}},
		})
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_QUANTITY", de.Code)
		assert.Equal(t, 0, o.Items[0].ReturnedQuantity)
	})

	t.Run("provider failure stores the return as canceled", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		var saved []returns.Status
		d.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		d.returns.On("Save", ctx, mock.AnythingOfType("*returns.Return")).
			Run(func(args mock.Arguments) { saved = append(saved, args.Get(1).(*returns.Return).Status) }).
			Return(nil)
		d.fulfillments.On("CreateReturnFulfillment", ctx, o, mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("UPSTREAM_FAILURE", "sendcloud: request failed with status 503: Service Unavailable"))

		_, err := svc.RequestReturn(ctx, RequestReturnRequest{
			OrderID:        o.ID,
			Items:          []ReturnItemRequest{{LineItemID: o.Items[0].ID, Quantity: 1}},
			ReturnShipping: true,
		})
		assert.ErrorIs(t, err, shared.ErrUpstream)
		assert.Equal(t, []returns.Status{returns.StatusRequested, returns.StatusCanceled}, saved)
		d.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		d.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("order save failure cancels the created parcel", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		parcel := newReturnFulfillment(t, o, &returns.Return{}, "2003")
		d.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		d.orders.On("Save", ctx, o).Return(errors.New("connection reset"))
		d.returns.On("Save", ctx, mock.AnythingOfType("*returns.Return")).Return(nil)
		d.fulfillments.On("CreateReturnFulfillment", ctx, o, mock.Anything, mock.Anything).Return(&parcel, nil)
		d.fulfillments.On("CancelFulfillment", ctx, parcel.ID).Return(&fulfillmentapp.FulfillmentResponse{ID: parcel.ID}, nil)

		_, err := svc.RequestReturn(ctx, RequestReturnRequest{
			OrderID:        o.ID,
			Items:          []ReturnItemRequest{{LineItemID: o.Items[0].ID, Quantity: 1}},
			ReturnShipping: true,
		})
		assert.EqualError(t, err, "connection reset")
		d.fulfillments.AssertCalled(t, "CancelFulfillment", ctx, parcel.ID)
		d.returns.AssertNumberOfCalls(t, "Save", 2)
		d.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestReturnService_ReceiveReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("refunds the return amount", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		r := newTestReturn(t, o)

		d.returns.On("FindByID", ctx, r.ID).Return(r, nil)
		d.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		d.refunds.On("Refund", ctx, "pi_123", int64(4000)).Return(&payment.RefundResult{ID: "re_1", Amount: 4000}, nil)
		d.returns.On("Save", ctx, r).Return(nil)
		d.orders.On("Save", ctx, o).Return(nil)
		d.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.ReceiveReturn(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "received", resp.Status)
		assert.NotNil(t, resp.ReceivedAt)
		assert.Equal(t, order.PaymentStatusPartiallyRefunded, o.PaymentStatus)
		assert.Equal(t, "40.00 EUR", o.RefundedTotal.String())
		assert.Equal(t, []string{returns.EventTypeReturnReceived}, publishedTypes(d.publisher))
	})

	t.Run("refund failure keeps the return open", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		r := newTestReturn(t, o)

		d.returns.On("FindByID", ctx, r.ID).Return(r, nil)
		d.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		d.refunds.On("Refund", ctx, "pi_123", int64(4000)).Return(nil, errors.New("stripe: card_declined"))

		_, err := svc.ReceiveReturn(ctx, r.ID)
		assert.ErrorIs(t, err, shared.ErrUpstream)
		d.returns.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.True(t, o.RefundedTotal.IsZero())
	})
}

func TestReturnService_CancelReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels active fulfillments and reports resolved ones", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		r := newTestReturn(t, o)
		first := newReturnFulfillment(t, o, r, "2001")
		second := newReturnFulfillment(t, o, r, "2002")
		done := newReturnFulfillment(t, o, r, "2003")
		require.NoError(t, done.Cancel())

		d.returns.On("FindByID", ctx, r.ID).Return(r, nil)
		d.repo.On("FindByReturn", ctx, r.ID).Return([]fulfillment.Fulfillment{first, second, done}, nil)
		d.fulfillments.On("CancelFulfillment", ctx, first.ID).Return(&fulfillmentapp.FulfillmentResponse{ID: first.ID}, nil)
		d.fulfillments.On("CancelFulfillment", ctx, second.ID).
			Return(nil, shared.NewDomainError("UPSTREAM_FAILURE", "sendcloud: request failed with status 404: Not Found"))
		d.fulfillments.On("MarkCanceled", ctx, second.ID).Return(nil)
		d.returns.On("Save", ctx, r).Return(nil)
		d.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		d.orders.On("Save", ctx, o).Return(nil)
		d.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.CancelReturn(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "canceled", resp.Status)
		assert.Equal(t, []uuid.UUID{first.ID}, resp.CanceledFulfillments)
		assert.Equal(t, []uuid.UUID{second.ID}, resp.AlreadyResolvedFulfillments)
		assert.Equal(t, 0, o.Items[0].ReturnedQuantity)
		assert.Equal(t, []string{returns.EventTypeReturnCanceled}, publishedTypes(d.publisher))
		d.fulfillments.AssertNotCalled(t, "CancelFulfillment", ctx, done.ID)
	})

	t.Run("gone parcels are already resolved", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		r := newTestReturn(t, o)
		f := newReturnFulfillment(t, o, r, "2001")

		d.returns.On("FindByID", ctx, r.ID).Return(r, nil)
		d.repo.On("FindByReturn", ctx, r.ID).Return([]fulfillment.Fulfillment{f}, nil)
		d.fulfillments.On("CancelFulfillment", ctx, f.ID).
			Return(nil, errors.New("sendcloud: request failed with status 410: Gone"))
		d.fulfillments.On("MarkCanceled", ctx, f.ID).Return(nil)
		d.returns.On("Save", ctx, r).Return(nil)
		d.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		d.orders.On("Save", ctx, o).Return(nil)
		d.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.CancelReturn(ctx, r.ID)
		require.NoError(t, err)
		assert.Empty(t, resp.CanceledFulfillments)
		assert.Equal(t, []uuid.UUID{f.ID}, resp.AlreadyResolvedFulfillments)
	})

	t.Run("other provider errors abort the cascade", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		r := newTestReturn(t, o)
		f := newReturnFulfillment(t, o, r, "2001")

		d.returns.On("FindByID", ctx, r.ID).Return(r, nil)
		d.repo.On("FindByReturn", ctx, r.ID).Return([]fulfillment.Fulfillment{f}, nil)
		d.fulfillments.On("CancelFulfillment", ctx, f.ID).
			Return(nil, shared.NewDomainError("UPSTREAM_FAILURE", "sendcloud: request failed with status 500: Internal Server Error"))

		_, err := svc.CancelReturn(ctx, r.ID)
		assert.ErrorIs(t, err, shared.ErrUpstream)
		assert.Contains(t, err.Error(), "status 500")
		assert.Equal(t, returns.StatusRequested, r.Status)
		d.returns.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		d.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("canceled return is rejected", func(t *testing.T) {
		svc, d := newTestReturnService()
		o := newTestOrder(t)
		r := newTestReturn(t, o)
		require.NoError(t, r.Cancel())
		r.ClearDomainEvents()
		d.returns.On("FindByID", ctx, r.ID).Return(r, nil)

		_, err := svc.CancelReturn(ctx, r.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		d.repo.AssertNotCalled(t, "FindByReturn", mock.Anything, mock.Anything)
	})

	t.Run("missing return", func(t *testing.T) {
		svc, d := newTestReturnService()
		id := uuid.New()
		d.returns.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.CancelReturn(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestReturnService_List(t *testing.T) {
	ctx := context.Background()
	svc, d := newTestReturnService()
	o := newTestOrder(t)
	r := newTestReturn(t, o)

	d.returns.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.OrderBy == "created_at" &&
			f.Filters["status"] == "requested" && f.Filters["order_id"] == o.ID
	})).Return([]returns.Return{*r}, int64(1), nil)

	list, total, err := svc.List(ctx, ReturnListFilter{Status: "requested", OrderID: o.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, r.ID, list[0].ID)
}
