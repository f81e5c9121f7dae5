// Package shipping lists the shipping options a cart can choose from.
package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/shipping"
	"go.uber.org/zap"
)

const (
	weightBucketGrams = 1000
	defaultCacheTTL   = 10 * time.Minute
	manualCarrier     = "manual"
)

// MethodSource lists carrier shipping methods for a destination
type MethodSource interface {
	ShippingMethods(ctx context.Context, toCountry string, isReturn bool) ([]shipping.ShippingMethod, error)
}

// Option is a shipping option offered at checkout
type Option struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Carrier string            `json:"carrier"`
	Price   valueobject.Money `json:"price"`
}

// cachedOption is the cache encoding of an Option
type cachedOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Carrier string `json:"carrier"`
	Amount  string `json:"amount"`
}

// Service resolves shipping options for carts
type Service struct {
	cartRepo  cart.CartRepository
	source    MethodSource
	cache     shared.Cache
	flatRates map[string]string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewService creates a new shipping option Service. A nil source serves the
// configured flat rates as manual options.
func NewService(cartRepo cart.CartRepository, source MethodSource, cache shared.Cache, cfg config.SendcloudConfig, log *zap.Logger) *Service {
	ttl := cfg.OptionsCacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cartRepo:  cartRepo,
		source:    source,
		cache:     cache,
		flatRates: cfg.FlatRates,
		ttl:       ttl,
		logger:    log,
	}
}

// ListShippingOptions returns the options available for a cart's destination and weight
func (s *Service) ListShippingOptions(ctx context.Context, cartID uuid.UUID) ([]Option, error) {
	c, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.OptionsForCart(ctx, c)
}

// OptionsForCart is ListShippingOptions for an already loaded cart
func (s *Service) OptionsForCart(ctx context.Context, c *cart.Cart) ([]Option, error) {
	if c.ShippingAddress == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Shipping address is required to list shipping options")
	}
	country := strings.ToUpper(c.ShippingAddress.CountryCode)
	weight := c.TotalWeightGrams()
	key := cacheKey(country, c.CurrencyCode, weight)

	if cached, ok := s.fromCache(ctx, key, c.CurrencyCode); ok {
		return cached, nil
	}

	options, err := s.resolve(ctx, country, weight, c.CurrencyCode)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, options)
	return options, nil
}

// FindOption returns the option with the given id if the cart may use it
func (s *Service) FindOption(ctx context.Context, c *cart.Cart, optionID string) (*Option, error) {
	options, err := s.OptionsForCart(ctx, c)
	if err != nil {
		return nil, err
	}
	for i := range options {
		if options[i].ID == optionID {
			return &options[i], nil
		}
	}
	return nil, shared.NewDomainError("INVALID_INPUT", "Shipping option is not available for this cart")
}

func (s *Service) resolve(ctx context.Context, country string, weightGrams int, currency valueobject.Currency) ([]Option, error) {
	if s.source == nil {
		return s.flatRateOptions(currency)
	}

	methods, err := s.source.ShippingMethods(ctx, country, false)
	if err != nil {
		return nil, shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
	}

	// Unweighted carts are treated as one gram so carrier minimums still match.
	weightKg := decimal.New(int64(max(weightGrams, 1)), -3)
	options := make([]Option, 0, len(methods))
	for _, m := range methods {
		if !fitsWeight(m, weightKg) {
			continue
		}
		id := strconv.Itoa(m.ID)
		price, ok, err := s.flatRate(id, currency)
		if err != nil {
			return nil, err
		}
		if !ok {
			amount, found := m.PriceFor(country)
			if !found {
				continue
			}
			price, err = valueobject.NewMoney(decimal.NewFromFloat(amount).Round(currency.Exponent()), currency)
			if err != nil {
				return nil, err
			}
		}
		options = append(options, Option{ID: id, Name: m.Name, Carrier: m.Carrier, Price: price})
	}
	sortOptions(options)
	return options, nil
}

func (s *Service) flatRateOptions(currency valueobject.Currency) ([]Option, error) {
	options := make([]Option, 0, len(s.flatRates))
	for id := range s.flatRates {
		price, _, err := s.flatRate(id, currency)
		if err != nil {
			return nil, err
		}
		options = append(options, Option{ID: id, Name: id, Carrier: manualCarrier, Price: price})
	}
	sortOptions(options)
	return options, nil
}

func (s *Service) flatRate(id string, currency valueobject.Currency) (valueobject.Money, bool, error) {
	raw, ok := s.flatRates[id]
	if !ok {
		return valueobject.Money{}, false, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return valueobject.Money{}, false, fmt.Errorf("invalid flat rate for shipping method %s: %w", id, err)
	}
	price, err := valueobject.NewMoney(amount, currency)
	return price, true, err
}

func (s *Service) fromCache(ctx context.Context, key string, currency valueobject.Currency) ([]Option, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			logger.FromContextOr(ctx, s.logger).Warn("shipping option cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var cached []cachedOption
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	options := make([]Option, 0, len(cached))
	for _, c := range cached {
		amount, err := decimal.NewFromString(c.Amount)
		if err != nil {
			return nil, false
		}
		price, err := valueobject.NewMoney(amount, currency)
		if err != nil {
			return nil, false
		}
		options = append(options, Option{ID: c.ID, Name: c.Name, Carrier: c.Carrier, Price: price})
	}
	return options, true
}

func (s *Service) toCache(ctx context.Context, key string, options []Option) {
	if s.cache == nil {
		return
	}
	cached := make([]cachedOption, len(options))
	for i, o := range options {
		cached[i] = cachedOption{ID: o.ID, Name: o.Name, Carrier: o.Carrier, Amount: o.Price.Amount().String()}
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("shipping option cache write failed", zap.Error(err))
	}
}

// cacheKey buckets weights per started kilogram
func cacheKey(country string, currency valueobject.Currency, weightGrams int) string {
	bucket := (weightGrams + weightBucketGrams - 1) / weightBucketGrams
	return fmt.Sprintf("shipping-options:%s:%s:%d", country, currency, bucket)
}

// fitsWeight applies Sendcloud's inclusive minimum and exclusive maximum
func fitsWeight(m shipping.ShippingMethod, weightKg decimal.Decimal) bool {
	if m.MinWeight != "" {
		if lo, err := decimal.NewFromString(m.MinWeight); err == nil && weightKg.LessThan(lo) {
			return false
		}
	}
	if m.MaxWeight != "" {
		if hi, err := decimal.NewFromString(m.MaxWeight); err == nil && !weightKg.LessThan(hi) {
			return false
		}
	}
	return true
}

func sortOptions(options []Option) {
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Price.Equals(options[j].Price) {
			return options[i].Name < options[j].Name
		}
		lt, _ := options[j].Price.GreaterThan(options[i].Price)
		return lt
	})
}
