package valueobject

import (
	"errors"
	"strings"
)

// Address is a shipping or billing address in the shape carriers expect
type Address struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company,omitempty"`
	Address1    string `json:"address_1"`
	Address2    string `json:"address_2,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Province    string `json:"province,omitempty"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
}

// Normalize trims every field and upper-cases the country code
func (a Address) Normalize() Address {
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.Company = strings.TrimSpace(a.Company)
	a.Address1 = strings.TrimSpace(a.Address1)
	a.Address2 = strings.TrimSpace(a.Address2)
	a.HouseNumber = strings.TrimSpace(a.HouseNumber)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.City = strings.TrimSpace(a.City)
	a.Province = strings.TrimSpace(a.Province)
	a.CountryCode = strings.ToUpper(strings.TrimSpace(a.CountryCode))
	a.Phone = strings.TrimSpace(a.Phone)
	return a
}

// Validate checks the fields a carrier needs to print a label
func (a Address) Validate() error {
	if a.Address1 == "" {
		return errors.New("address_1 is required")
	}
	if a.PostalCode == "" {
		return errors.New("postal_code is required")
	}
	if a.City == "" {
		return errors.New("city is required")
	}
	if len(a.CountryCode) != 2 {
		return errors.New("country_code must be a 2-letter ISO code")
	}
	return nil
}

// FullName joins first and last name
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// IsZero reports whether the address was never set
func (a Address) IsZero() bool {
	return a == Address{}
}
