package invoice

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Config holds the company details printed on every invoice. There is one row.
type Config struct {
	shared.BaseAggregateRoot
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string
	CompanyLogo    string
	VATNumber      string
	Notes          string
}

// ConfigPatch carries a partial update; nil fields are left untouched
type ConfigPatch struct {
	CompanyName    *string
	CompanyAddress *string
	CompanyPhone   *string
	CompanyEmail   *string
	CompanyLogo    *string
	VATNumber      *string
	Notes          *string
}

// NewDefaultConfig creates the config used before an admin fills it in
func NewDefaultConfig(storeName string) *Config {
	return &Config{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyName:       storeName,
	}
}

// Apply merges a patch into the config
func (c *Config) Apply(p ConfigPatch) error {
	set := func(dst *string, src *string, max int, field string) error {
		if src == nil {
			return nil
		}
		v := strings.TrimSpace(*src)
		if len(v) > max {
			return shared.NewDomainError("INVALID_INPUT", field+" is too long")
		}
		*dst = v
		return nil
	}
	if err := set(&c.CompanyName, p.CompanyName, 200, "company_name"); err != nil {
		return err
	}
	if err := set(&c.CompanyAddress, p.CompanyAddress, 500, "company_address"); err != nil {
		return err
	}
	if err := set(&c.CompanyPhone, p.CompanyPhone, 50, "company_phone"); err != nil {
		return err
	}
	if err := set(&c.CompanyEmail, p.CompanyEmail, 200, "company_email"); err != nil {
		return err
	}
	if err := set(&c.CompanyLogo, p.CompanyLogo, 1000, "company_logo"); err != nil {
		return err
	}
	if err := set(&c.VATNumber, p.VATNumber, 50, "vat_number"); err != nil {
		return err
	}
	if err := set(&c.Notes, p.Notes, 2000, "notes"); err != nil {
		return err
	}
	c.Touch()
	c.IncrementVersion()
	return nil
}
