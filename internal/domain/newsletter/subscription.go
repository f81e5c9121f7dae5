package newsletter

import (
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status is the consent state of a subscription
type Status string

const (
	StatusSubscribed   Status = "subscribed"
	StatusUnsubscribed Status = "unsubscribed"
)

// SyncState tells whether the mailing list provider has the latest state
type SyncState string

const (
	SyncStateSynced      SyncState = "synced"
	SyncStatePendingSync SyncState = "pending_sync"
)

// SourceStorefront marks signups from the shop footer form
const SourceStorefront = "storefront"

// Subscription is a newsletter signup keyed by email
type Subscription struct {
	shared.BaseAggregateRoot
	Email         string
	FirstName     string
	LastName      string
	Status        Status
	Source        string
	SyncState     SyncState
	LastSyncError string
	SyncedAt      *time.Time
}

// NewSubscription creates a subscribed signup awaiting provider sync
func NewSubscription(email, firstName, lastName, source string) (*Subscription, error) {
	normalized, err := valueobject.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if source == "" {
		source = SourceStorefront
	}
	return &Subscription{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             normalized,
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Status:            StatusSubscribed,
		Source:            source,
		SyncState:         SyncStatePendingSync,
	}, nil
}

// Resubscribe re-opts in an existing record. Non-empty names overwrite stored ones.
func (s *Subscription) Resubscribe(firstName, lastName string) {
	if fn := strings.TrimSpace(firstName); fn != "" {
		s.FirstName = fn
	}
	if ln := strings.TrimSpace(lastName); ln != "" {
		s.LastName = ln
	}
	if s.Status != StatusSubscribed {
		s.Status = StatusSubscribed
		s.SyncState = SyncStatePendingSync
	}
	s.Touch()
	s.IncrementVersion()
}

// Unsubscribe withdraws consent
func (s *Subscription) Unsubscribe() {
	if s.Status == StatusUnsubscribed {
		return
	}
	s.Status = StatusUnsubscribed
	s.SyncState = SyncStatePendingSync
	s.Touch()
	s.IncrementVersion()
}

// MarkSynced records a successful provider sync
func (s *Subscription) MarkSynced() {
	now := time.Now()
	s.SyncState = SyncStateSynced
	s.LastSyncError = ""
	s.SyncedAt = &now
	s.Touch()
}

// MarkSyncFailed keeps the record for a later retry
func (s *Subscription) MarkSyncFailed(reason string) {
	s.SyncState = SyncStatePendingSync
	s.LastSyncError = reason
	s.Touch()
}
