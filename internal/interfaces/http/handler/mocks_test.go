package handler

import (
	"context"

	"github.com/google/uuid"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	fulfillmentapp "github.com/storefront/backend/internal/application/fulfillment"
	identityapp "github.com/storefront/backend/internal/application/identity"
	invoiceapp "github.com/storefront/backend/internal/application/invoice"
	newsletterapp "github.com/storefront/backend/internal/application/newsletter"
	orderapp "github.com/storefront/backend/internal/application/order"
	paymentapp "github.com/storefront/backend/internal/application/payment"
	returnsapp "github.com/storefront/backend/internal/application/returns"
	searchapp "github.com/storefront/backend/internal/application/search"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/infrastructure/search"
	"github.com/stretchr/testify/mock"
)

// MockCartService implements CartService for testing
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*cartapp.CartResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartapp.CartResponse), args.Error(1)
}

func (m *MockCartService) Create(ctx context.Context, req cartapp.CreateCartRequest) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, req))
}

func (m *MockCartService) Update(ctx context.Context, cartID uuid.UUID, req cartapp.UpdateCartRequest) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, cartID, req))
}

func (m *MockCartService) AddLineItem(ctx context.Context, cartID uuid.UUID, req cartapp.AddLineItemRequest) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, cartID, req))
}

func (m *MockCartService) UpdateLineItem(ctx context.Context, cartID, lineID uuid.UUID, req cartapp.UpdateLineItemRequest) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, cartID, lineID, req))
}

func (m *MockCartService) RemoveLineItem(ctx context.Context, cartID, lineID uuid.UUID) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, cartID, lineID))
}

func (m *MockCartService) AddShippingMethod(ctx context.Context, cartID uuid.UUID, req cartapp.AddShippingMethodRequest) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, cartID, req))
}

func (m *MockCartService) Refresh(ctx context.Context, cartID uuid.UUID) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, cartID))
}

func (m *MockCartService) InitiatePaymentSession(ctx context.Context, cartID uuid.UUID) (*cartapp.CartResponse, error) {
	return m.cart(m.Called(ctx, cartID))
}

func (m *MockCartService) CompleteCart(ctx context.Context, cartID uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

// MockShippingOptionService implements ShippingOptionService for testing
type MockShippingOptionService struct {
	mock.Mock
}

func (m *MockShippingOptionService) ListShippingOptions(ctx context.Context, cartID uuid.UUID) ([]shippingapp.Option, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shippingapp.Option), args.Error(1)
}

// MockOrderService implements OrderService for testing
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*orderapp.OrderResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
	return m.order(m.Called(ctx, orderID))
}

func (m *MockOrderService) GetCustomerOrder(ctx context.Context, orderID, customerID uuid.UUID) (*orderapp.OrderResponse, error) {
	return m.order(m.Called(ctx, orderID, customerID))
}

func (m *MockOrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter orderapp.OrderListFilter) ([]orderapp.OrderResponse, int64, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]orderapp.OrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) List(ctx context.Context, filter orderapp.OrderListFilter) ([]orderapp.OrderResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]orderapp.OrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
	return m.order(m.Called(ctx, orderID))
}

func (m *MockOrderService) Complete(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
	return m.order(m.Called(ctx, orderID))
}

// MockInvoiceService implements InvoiceService for testing
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) GetConfig(ctx context.Context) (*invoiceapp.ConfigResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.ConfigResponse), args.Error(1)
}

func (m *MockInvoiceService) UpdateConfig(ctx context.Context, req invoiceapp.UpdateConfigRequest) (*invoiceapp.ConfigResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.ConfigResponse), args.Error(1)
}

func (m *MockInvoiceService) OrderInvoice(ctx context.Context, orderID uuid.UUID, customerID *uuid.UUID) (*invoiceapp.Document, error) {
	args := m.Called(ctx, orderID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.Document), args.Error(1)
}

// MockFulfillmentService implements FulfillmentService for testing
type MockFulfillmentService struct {
	mock.Mock
}

func (m *MockFulfillmentService) fulfillment(args mock.Arguments) (*fulfillmentapp.FulfillmentResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.FulfillmentResponse), args.Error(1)
}

func (m *MockFulfillmentService) CreateFulfillment(ctx context.Context, orderID uuid.UUID, req fulfillmentapp.CreateFulfillmentRequest) (*fulfillmentapp.FulfillmentResponse, error) {
	return m.fulfillment(m.Called(ctx, orderID, req))
}

func (m *MockFulfillmentService) CreateShipment(ctx context.Context, fulfillmentID uuid.UUID, req fulfillmentapp.CreateShipmentRequest) (*fulfillmentapp.FulfillmentResponse, error) {
	return m.fulfillment(m.Called(ctx, fulfillmentID, req))
}

func (m *MockFulfillmentService) CancelFulfillment(ctx context.Context, fulfillmentID uuid.UUID) (*fulfillmentapp.FulfillmentResponse, error) {
	return m.fulfillment(m.Called(ctx, fulfillmentID))
}

// MockLabelService implements LabelService for testing
type MockLabelService struct {
	mock.Mock
}

func (m *MockLabelService) label(args mock.Arguments) (*fulfillmentapp.Label, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.Label), args.Error(1)
}

func (m *MockLabelService) Label(ctx context.Context, fulfillmentID uuid.UUID, format fulfillment.LabelFormat) (*fulfillmentapp.Label, error) {
	return m.label(m.Called(ctx, fulfillmentID, format))
}

func (m *MockLabelService) ReturnLabel(ctx context.Context, returnID uuid.UUID, format fulfillment.LabelFormat) (*fulfillmentapp.Label, error) {
	return m.label(m.Called(ctx, returnID, format))
}

func (m *MockLabelService) LabelURL(ctx context.Context, fulfillmentID uuid.UUID, format fulfillment.LabelFormat) (*fulfillmentapp.LabelURLResponse, error) {
	args := m.Called(ctx, fulfillmentID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.LabelURLResponse), args.Error(1)
}

// MockReturnService implements ReturnService for testing
type MockReturnService struct {
	mock.Mock
}

func (m *MockReturnService) ret(args mock.Arguments) (*returnsapp.ReturnResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returnsapp.ReturnResponse), args.Error(1)
}

func (m *MockReturnService) RequestReturn(ctx context.Context, req returnsapp.RequestReturnRequest) (*returnsapp.ReturnResponse, error) {
	return m.ret(m.Called(ctx, req))
}

func (m *MockReturnService) GetReturn(ctx context.Context, returnID uuid.UUID) (*returnsapp.ReturnResponse, error) {
	return m.ret(m.Called(ctx, returnID))
}

func (m *MockReturnService) List(ctx context.Context, filter returnsapp.ReturnListFilter) ([]returnsapp.ReturnResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]returnsapp.ReturnResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockReturnService) ReceiveReturn(ctx context.Context, returnID uuid.UUID) (*returnsapp.ReturnResponse, error) {
	return m.ret(m.Called(ctx, returnID))
}

func (m *MockReturnService) CancelReturn(ctx context.Context, returnID uuid.UUID) (*returnsapp.CancelReturnResponse, error) {
	args := m.Called(ctx, returnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returnsapp.CancelReturnResponse), args.Error(1)
}

// MockWishlistService implements WishlistService for testing
type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) wishlist(args mock.Arguments) (*wishlistapp.WishlistResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wishlistapp.WishlistResponse), args.Error(1)
}

func (m *MockWishlistService) Get(ctx context.Context, customerID uuid.UUID) (*wishlistapp.WishlistResponse, error) {
	return m.wishlist(m.Called(ctx, customerID))
}

func (m *MockWishlistService) AddItem(ctx context.Context, customerID uuid.UUID, req wishlistapp.AddItemRequest) (*wishlistapp.WishlistResponse, error) {
	return m.wishlist(m.Called(ctx, customerID, req))
}

func (m *MockWishlistService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*wishlistapp.WishlistResponse, error) {
	return m.wishlist(m.Called(ctx, customerID, itemID))
}

func (m *MockWishlistService) Merge(ctx context.Context, customerID uuid.UUID, req wishlistapp.MergeRequest) (*wishlistapp.MergeResponse, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wishlistapp.MergeResponse), args.Error(1)
}

// MockNewsletterService implements NewsletterService for testing
type MockNewsletterService struct {
	mock.Mock
}

func (m *MockNewsletterService) Subscribe(ctx context.Context, req newsletterapp.SubscribeRequest) (*newsletterapp.SubscriptionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*newsletterapp.SubscriptionResponse), args.Error(1)
}

func (m *MockNewsletterService) Unsubscribe(ctx context.Context, email string) (*newsletterapp.SubscriptionResponse, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*newsletterapp.SubscriptionResponse), args.Error(1)
}

// MockWebhookProcessor implements WebhookProcessor for testing
type MockWebhookProcessor struct {
	mock.Mock
}

func (m *MockWebhookProcessor) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*paymentapp.WebhookResult, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.WebhookResult), args.Error(1)
}

// MockSearchService implements SearchService for testing
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, req searchapp.SearchRequest) (*search.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}

func (m *MockSearchService) ReindexAll(ctx context.Context) (*searchapp.ReindexResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*searchapp.ReindexResult), args.Error(1)
}

// MockProductService implements ProductService for testing
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) product(args mock.Arguments) (*catalogapp.ProductResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, req))
}

func (m *MockProductService) GetByID(ctx context.Context, productID uuid.UUID) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, productID))
}

func (m *MockProductService) GetPublishedByHandle(ctx context.Context, handle string) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, handle))
}

func (m *MockProductService) List(ctx context.Context, filter catalogapp.ProductListFilter, storeOnly bool) ([]catalogapp.ProductResponse, int64, error) {
	args := m.Called(ctx, filter, storeOnly)
	return args.Get(0).([]catalogapp.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductService) Update(ctx context.Context, productID uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, productID, req))
}

func (m *MockProductService) Publish(ctx context.Context, productID uuid.UUID) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, productID))
}

func (m *MockProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	return m.Called(ctx, productID).Error(0)
}

// MockAuthService implements AuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) customer(args mock.Arguments) (*identityapp.CustomerResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.CustomerResponse), args.Error(1)
}

func (m *MockAuthService) login(args mock.Arguments) (*identityapp.LoginResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.LoginResult), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.CustomerResponse, error) {
	return m.customer(m.Called(ctx, req))
}

func (m *MockAuthService) Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResult, error) {
	return m.login(m.Called(ctx, req))
}

func (m *MockAuthService) AdminLogin(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResult, error) {
	return m.login(m.Called(ctx, req))
}

func (m *MockAuthService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*identityapp.CustomerResponse, error) {
	return m.customer(m.Called(ctx, customerID))
}

func (m *MockAuthService) UpdateCustomer(ctx context.Context, customerID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.CustomerResponse, error) {
	return m.customer(m.Called(ctx, customerID, req))
}
