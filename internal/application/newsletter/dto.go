package newsletter

import (
	"time"

	"github.com/storefront/backend/internal/domain/newsletter"
)

// SubscribeRequest is a footer signup
type SubscribeRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	Email     string     `json:"email"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Status    string     `json:"status"`
	SyncState string     `json:"sync_state"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`
}

// ToSubscriptionResponse converts a domain Subscription
func ToSubscriptionResponse(s *newsletter.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		Email:     s.Email,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Status:    string(s.Status),
		SyncState: string(s.SyncState),
		SyncedAt:  s.SyncedAt,
	}
}
