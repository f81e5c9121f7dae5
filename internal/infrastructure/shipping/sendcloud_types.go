package shipping

import (
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from Sendcloud
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("sendcloud: request failed with status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Detail != "" && !strings.EqualFold(e.Detail, http.StatusText(e.StatusCode)) {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

type sendcloudError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParcelInput is the body of a parcel creation request
type ParcelInput struct {
	Name                    string       `json:"name"`
	CompanyName             string       `json:"company_name,omitempty"`
	Address                 string       `json:"address"`
	Address2                string       `json:"address_2,omitempty"`
	HouseNumber             string       `json:"house_number,omitempty"`
	City                    string       `json:"city"`
	PostalCode              string       `json:"postal_code"`
	Country                 string       `json:"country"`
	CountryState            string       `json:"country_state,omitempty"`
	Telephone               string       `json:"telephone,omitempty"`
	Email                   string       `json:"email,omitempty"`
	OrderNumber             string       `json:"order_number,omitempty"`
	Weight                  string       `json:"weight,omitempty"`
	RequestLabel            bool         `json:"request_label"`
	IsReturn                bool         `json:"is_return,omitempty"`
	Shipment                *ShipmentRef `json:"shipment,omitempty"`
	SenderAddress           int          `json:"sender_address,omitempty"`
	TotalOrderValue         string       `json:"total_order_value,omitempty"`
	TotalOrderValueCurrency string       `json:"total_order_value_currency,omitempty"`
	ParcelItems             []ParcelItem `json:"parcel_items,omitempty"`
}

// ShipmentRef selects the shipping method of a parcel
type ShipmentRef struct {
	ID int `json:"id"`
}

// ParcelItem is one customs line of a parcel
type ParcelItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Weight      string `json:"weight"`
	Value       string `json:"value"`
	SKU         string `json:"sku,omitempty"`
}

// Parcel is the subset of the Sendcloud parcel resource we read back
type Parcel struct {
	ID             int64  `json:"id"`
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
	Label          struct {
		NormalPrinter []string `json:"normal_printer"`
		LabelPrinter  string   `json:"label_printer"`
	} `json:"label"`
	Status struct {
		ID      int    `json:"id"`
		Message string `json:"message"`
	} `json:"status"`
	Carrier struct {
		Code string `json:"code"`
	} `json:"carrier"`
	Shipment struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"shipment"`
}

type parcelEnvelope struct {
	Parcel Parcel `json:"parcel"`
}

type parcelRequest struct {
	Parcel ParcelInput `json:"parcel"`
}

// CancelResult is the answer of a parcel cancellation
type CancelResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ShippingMethod is a Sendcloud shipping method
type ShippingMethod struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Carrier   string          `json:"carrier"`
	MinWeight string          `json:"min_weight"`
	MaxWeight string          `json:"max_weight"`
	Countries []MethodCountry `json:"countries"`
}

// MethodCountry holds the per-country price of a shipping method
type MethodCountry struct {
	ISO2  string  `json:"iso_2"`
	Price float64 `json:"price"`
}

// PriceFor returns the method price for the given destination country
func (m ShippingMethod) PriceFor(country string) (float64, bool) {
	for _, c := range m.Countries {
		if strings.EqualFold(c.ISO2, country) {
			return c.Price, true
		}
	}
	return 0, false
}

type shippingMethodsEnvelope struct {
	ShippingMethods []ShippingMethod `json:"shipping_methods"`
}
