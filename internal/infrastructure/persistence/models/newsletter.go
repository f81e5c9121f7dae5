package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/newsletter"
)

// SubscriptionModel is the persistence model for newsletter subscriptions
type SubscriptionModel struct {
	AggregateModel
	Email         string               `gorm:"type:varchar(200);not null;uniqueIndex"`
	FirstName     string               `gorm:"type:varchar(100)"`
	LastName      string               `gorm:"type:varchar(100)"`
	Status        newsletter.Status    `gorm:"type:varchar(20);not null"`
	Source        string               `gorm:"type:varchar(50);not null"`
	SyncState     newsletter.SyncState `gorm:"type:varchar(20);not null;index"`
	LastSyncError string               `gorm:"type:text"`
	SyncedAt      *time.Time
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "newsletter_subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription
func (m *SubscriptionModel) ToDomain() *newsletter.Subscription {
	return &newsletter.Subscription{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Status:            m.Status,
		Source:            m.Source,
		SyncState:         m.SyncState,
		LastSyncError:     m.LastSyncError,
		SyncedAt:          m.SyncedAt,
	}
}

// FromDomain populates the persistence model from a domain Subscription
func (m *SubscriptionModel) FromDomain(s *newsletter.Subscription) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Email = s.Email
	m.FirstName = s.FirstName
	m.LastName = s.LastName
	m.Status = s.Status
	m.Source = s.Source
	m.SyncState = s.SyncState
	m.LastSyncError = s.LastSyncError
	m.SyncedAt = s.SyncedAt
}
