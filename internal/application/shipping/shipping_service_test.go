package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByPaymentIntentID(ctx context.Context, id string) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return m.Called(ctx, c).Error(0)
}

type fakeSource struct {
	calls   int
	methods []shipping.ShippingMethod
	err     error
}

func (f *fakeSource) ShippingMethods(_ context.Context, _ string, _ bool) ([]shipping.ShippingMethod, error) {
	f.calls++
	return f.methods, f.err
}

func cartTo(t *testing.T, country string, weightGrams int) *cart.Cart {
	t.Helper()
	c := cart.NewCart(valueobject.EUR)
	_, err := c.AddItem(cart.VariantSnapshot{
		VariantID:   uuid.New(),
		ProductID:   uuid.New(),
		SKU:         "SKU-1",
		UnitPrice:   valueobject.MustMoney("10.00", valueobject.EUR),
		WeightGrams: weightGrams,
	}, 1)
	require.NoError(t, err)
	require.NoError(t, c.SetShippingAddress(valueobject.Address{
		FirstName: "Jane", LastName: "Doe", Address1: "Hauptstr. 1", PostalCode: "10115", City: "Berlin", CountryCode: country,
	}))
	return c
}

var testMethods = []shipping.ShippingMethod{
	{ID: 8, Name: "DHL Paket", Carrier: "dhl", MinWeight: "0.001", MaxWeight: "31.001", Countries: []shipping.MethodCountry{{ISO2: "DE", Price: 5.49}}},
	{ID: 9, Name: "DHL Warenpost", Carrier: "dhl", MinWeight: "0.001", MaxWeight: "1.001", Countries: []shipping.MethodCountry{{ISO2: "DE", Price: 3.2}}},
	{ID: 10, Name: "UPS Standard", Carrier: "ups", MinWeight: "0.001", MaxWeight: "20.001", Countries: []shipping.MethodCountry{{ISO2: "NL", Price: 7}}},
}

func TestService_ListShippingOptions(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCartRepository)
	src := &fakeSource{methods: testMethods}
	store := cache.NewInMemoryCache()
	defer store.Close()

	svc := NewService(repo, src, store, config.SendcloudConfig{FlatRates: map[string]string{"8": "4.90"}}, nil)
	c := cartTo(t, "de", 500)
	repo.On("FindByID", ctx, c.ID).Return(c, nil)

	options, err := svc.ListShippingOptions(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "9", options[0].ID)
	assert.Equal(t, "3.20 EUR", options[0].Price.String())
	assert.Equal(t, "8", options[1].ID)
	assert.Equal(t, "4.90 EUR", options[1].Price.String(), "flat rate wins over the carrier price")

	_, err = svc.ListShippingOptions(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "second lookup is served from cache")
}

func TestService_WeightFiltersMethods(t *testing.T) {
	src := &fakeSource{methods: testMethods}
	svc := NewService(new(MockCartRepository), src, nil, config.SendcloudConfig{}, nil)

	options, err := svc.OptionsForCart(context.Background(), cartTo(t, "DE", 2500))
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "DHL Paket", options[0].Name)
}

func TestService_FindOption(t *testing.T) {
	ctx := context.Background()
	svc := NewService(new(MockCartRepository), &fakeSource{methods: testMethods}, nil, config.SendcloudConfig{}, nil)
	c := cartTo(t, "NL", 100)

	opt, err := svc.FindOption(ctx, c, "10")
	require.NoError(t, err)
	assert.Equal(t, "ups", opt.Carrier)

	_, err = svc.FindOption(ctx, c, "8")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_RequiresAddress(t *testing.T) {
	svc := NewService(new(MockCartRepository), &fakeSource{}, nil, config.SendcloudConfig{}, nil)
	_, err := svc.OptionsForCart(context.Background(), cart.NewCart(valueobject.EUR))
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestService_UpstreamFailure(t *testing.T) {
	svc := NewService(new(MockCartRepository), &fakeSource{err: errors.New("sendcloud: request failed with status 503: Service Unavailable")}, nil, config.SendcloudConfig{}, nil)
	_, err := svc.OptionsForCart(context.Background(), cartTo(t, "DE", 100))
	assert.ErrorIs(t, err, shared.ErrUpstream)
	assert.ErrorContains(t, err, "status 503")
}

func TestService_FlatRatesWithoutSendcloud(t *testing.T) {
	svc := NewService(new(MockCartRepository), nil, nil, config.SendcloudConfig{
		FlatRates: map[string]string{"express": "12.00", "standard": "4.50"},
	}, nil)

	options, err := svc.OptionsForCart(context.Background(), cartTo(t, "DE", 100))
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "standard", options[0].ID)
	assert.Equal(t, "manual", options[0].Carrier)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "shipping-options:DE:eur:0", cacheKey("DE", valueobject.EUR, 0))
	assert.Equal(t, "shipping-options:DE:eur:1", cacheKey("DE", valueobject.EUR, 1000))
	assert.Equal(t, "shipping-options:DE:eur:2", cacheKey("DE", valueobject.EUR, 1001))
}
