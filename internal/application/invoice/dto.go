package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/invoice"
)

// UpdateConfigRequest partially updates the invoice config
type UpdateConfigRequest struct {
	CompanyName    *string `json:"company_name" binding:"omitempty,max=200"`
	CompanyAddress *string `json:"company_address" binding:"omitempty,max=500"`
	CompanyPhone   *string `json:"company_phone" binding:"omitempty,max=50"`
	CompanyEmail   *string `json:"company_email" binding:"omitempty,max=200"`
	CompanyLogo    *string `json:"company_logo" binding:"omitempty,max=1000"`
	VATNumber      *string `json:"vat_number" binding:"omitempty,max=50"`
	Notes          *string `json:"notes" binding:"omitempty,max=2000"`
}

func (r UpdateConfigRequest) patch() invoice.ConfigPatch {
	return invoice.ConfigPatch{
		CompanyName:    r.CompanyName,
		CompanyAddress: r.CompanyAddress,
		CompanyPhone:   r.CompanyPhone,
		CompanyEmail:   r.CompanyEmail,
		CompanyLogo:    r.CompanyLogo,
		VATNumber:      r.VATNumber,
		Notes:          r.Notes,
	}
}

// ConfigResponse represents the invoice config in API responses
type ConfigResponse struct {
	ID             uuid.UUID `json:"id"`
	CompanyName    string    `json:"company_name"`
	CompanyAddress string    `json:"company_address"`
	CompanyPhone   string    `json:"company_phone"`
	CompanyEmail   string    `json:"company_email"`
	CompanyLogo    string    `json:"company_logo"`
	VATNumber      string    `json:"vat_number"`
	Notes          string    `json:"notes"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Document is a rendered invoice PDF ready to be streamed
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	DisplayID   int64
	Reused      bool
}

// ToConfigResponse converts the domain config to ConfigResponse
func ToConfigResponse(c *invoice.Config) ConfigResponse {
	return ConfigResponse{
		ID:             c.ID,
		CompanyName:    c.CompanyName,
		CompanyAddress: c.CompanyAddress,
		CompanyPhone:   c.CompanyPhone,
		CompanyEmail:   c.CompanyEmail,
		CompanyLogo:    c.CompanyLogo,
		VATNumber:      c.VATNumber,
		Notes:          c.Notes,
		UpdatedAt:      c.UpdatedAt,
	}
}
