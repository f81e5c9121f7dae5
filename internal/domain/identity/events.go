package identity

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateTypeCustomer is the aggregate type for customers
const AggregateTypeCustomer = "Customer"

// EventTypeCustomerRegistered is published when a customer creates an account
const EventTypeCustomerRegistered = "CustomerRegistered"

// CustomerRegisteredEvent is raised when a customer registers
type CustomerRegisteredEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
}

// NewCustomerRegisteredEvent creates a new CustomerRegisteredEvent
func NewCustomerRegisteredEvent(c *Customer) *CustomerRegisteredEvent {
	return &CustomerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerRegistered, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		Email:           c.Email,
		FirstName:       c.FirstName,
	}
}
