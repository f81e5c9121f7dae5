package models

import "github.com/storefront/backend/internal/domain/identity"

// CustomerModel is the persistence model for the Customer aggregate
type CustomerModel struct {
	AggregateModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	FirstName    string `gorm:"type:varchar(100)"`
	LastName     string `gorm:"type:varchar(100)"`
	Phone        string `gorm:"type:varchar(50)"`
	PasswordHash string `gorm:"type:varchar(255)"`
	HasAccount   bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *identity.Customer {
	return &identity.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Phone:             m.Phone,
		PasswordHash:      m.PasswordHash,
		HasAccount:        m.HasAccount,
	}
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *identity.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Email = c.Email
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Phone = c.Phone
	m.PasswordHash = c.PasswordHash
	m.HasAccount = c.HasAccount
}

// AdminUserModel is the persistence model for back-office users
type AdminUserModel struct {
	AggregateModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (AdminUserModel) TableName() string {
	return "admin_users"
}

// ToDomain converts the persistence model to a domain AdminUser
func (m *AdminUserModel) ToDomain() *identity.AdminUser {
	return &identity.AdminUser{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
	}
}

// FromDomain populates the persistence model from a domain AdminUser
func (m *AdminUserModel) FromDomain(a *identity.AdminUser) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Email = a.Email
	m.PasswordHash = a.PasswordHash
}
