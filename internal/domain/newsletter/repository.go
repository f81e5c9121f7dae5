package newsletter

import "context"

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	FindByEmail(ctx context.Context, email string) (*Subscription, error)

	// FindPendingSync lists subscriptions the provider has not confirmed yet
	FindPendingSync(ctx context.Context, limit int) ([]Subscription, error)

	Save(ctx context.Context, s *Subscription) error
}
