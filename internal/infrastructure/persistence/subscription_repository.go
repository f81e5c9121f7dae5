package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/newsletter"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSubscriptionRepository implements newsletter.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

var _ newsletter.SubscriptionRepository = (*GormSubscriptionRepository)(nil)

// FindByEmail finds a subscription by normalized email
func (r *GormSubscriptionRepository) FindByEmail(ctx context.Context, email string) (*newsletter.Subscription, error) {
	var m models.SubscriptionModel
	if err := r.db.WithContext(ctx).First(&m, "email = ?", email).Error; err != nil {
		return nil, translateError(err, "subscription")
	}
	return m.ToDomain(), nil
}

// FindPendingSync lists subscriptions awaiting a provider sync, oldest first
func (r *GormSubscriptionRepository) FindPendingSync(ctx context.Context, limit int) ([]newsletter.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("sync_state = ?", newsletter.SyncStatePendingSync).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "subscription")
	}
	out := make([]newsletter.Subscription, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Save creates or updates a subscription
func (r *GormSubscriptionRepository) Save(ctx context.Context, s *newsletter.Subscription) error {
	var m models.SubscriptionModel
	m.FromDomain(s)
	return translateError(r.db.WithContext(ctx).Save(&m).Error, "subscription")
}
