// Package newsletter records newsletter signups and mirrors them to the
// mailing list provider.
package newsletter

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/newsletter"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// MailingList is the provider-side audience
type MailingList interface {
	Subscribe(ctx context.Context, email, firstName, lastName string) error
	Unsubscribe(ctx context.Context, email string) error
}

// NewsletterService handles newsletter signups
type NewsletterService struct {
	repo   newsletter.SubscriptionRepository
	list   MailingList
	logger *zap.Logger
}

// NewNewsletterService creates a new NewsletterService. list may be nil, in
// which case subscriptions stay pending until a provider is configured.
func NewNewsletterService(repo newsletter.SubscriptionRepository, list MailingList, log *zap.Logger) *NewsletterService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NewsletterService{repo: repo, list: list, logger: log}
}

// Subscribe upserts the signup and syncs it to the mailing list. Provider
// failures leave the subscription pending_sync and do not fail the request.
func (s *NewsletterService) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscriptionResponse, error) {
	email, err := valueobject.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		sub.Resubscribe(req.FirstName, req.LastName)
	case errors.Is(err, shared.ErrNotFound):
		sub, err = newsletter.NewSubscription(email, req.FirstName, req.LastName, newsletter.SourceStorefront)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.sync(ctx, sub)
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// Unsubscribe withdraws consent locally and at the provider
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) (*SubscriptionResponse, error) {
	normalized, err := valueobject.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	sub.Unsubscribe()
	s.sync(ctx, sub)
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// ResyncPending pushes subscriptions the provider has not confirmed yet.
// It returns how many were synced.
func (s *NewsletterService) ResyncPending(ctx context.Context, limit int) (int, error) {
	if s.list == nil {
		return 0, nil
	}
	pending, err := s.repo.FindPendingSync(ctx, limit)
	if err != nil {
		return 0, err
	}
	synced := 0
	for i := range pending {
		sub := &pending[i]
		s.sync(ctx, sub)
		if err := s.repo.Save(ctx, sub); err != nil {
			return synced, err
		}
		if sub.SyncState == newsletter.SyncStateSynced {
			synced++
		}
	}
	return synced, nil
}

func (s *NewsletterService) sync(ctx context.Context, sub *newsletter.Subscription) {
	if s.list == nil || sub.SyncState == newsletter.SyncStateSynced {
		return
	}
	var err error
	if sub.Status == newsletter.StatusSubscribed {
		err = s.list.Subscribe(ctx, sub.Email, sub.FirstName, sub.LastName)
	} else {
		err = s.list.Unsubscribe(ctx, sub.Email)
	}
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Mailing list sync failed",
			zap.String("email", sub.Email),
			zap.String("status", string(sub.Status)),
			zap.Error(err))
		sub.MarkSyncFailed(err.Error())
		return
	}
	sub.MarkSynced()
}
