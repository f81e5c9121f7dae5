package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSendcloud(t *testing.T, handler http.HandlerFunc) *SendcloudClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewSendcloudClient(config.SendcloudConfig{
		BaseURL:         srv.URL,
		PublicKey:       "pub",
		SecretKey:       "sec",
		Timeout:         5 * time.Second,
		SenderAddressID: 42,
	})
	require.NoError(t, err)
	return c
}

func TestNewSendcloudClient_RequiresKeys(t *testing.T) {
	_, err := NewSendcloudClient(config.SendcloudConfig{BaseURL: "http://x"})
	assert.ErrorContains(t, err, "public key and secret key")
	_, err = NewSendcloudClient(config.SendcloudConfig{PublicKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "base url")
}

func TestCreateParcel(t *testing.T) {
	var got parcelRequest
	c := newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/parcels", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "pub", user)
		assert.Equal(t, "sec", pass)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"parcel":{"id":9001,"tracking_number":"3SABC","tracking_url":"https://track/3SABC","label":{"label_printer":"https://labels/9001"},"status":{"id":1000,"message":"Ready to send"},"carrier":{"code":"dhl"}}}`))
	})

	p := NewSendcloudProvider(c)
	data, err := p.CreateReturnFulfillment(context.Background(), fulfillment.ParcelRequest{
		OrderNumber:      "1001",
		Email:            "jane@example.com",
		ShippingMethodID: "8",
		WeightGrams:      1250,
		Address: valueobject.Address{
			FirstName: "Jane", LastName: "Doe", Address1: "Main St", HouseNumber: "5",
			PostalCode: "1011AB", City: "Amsterdam", CountryCode: "NL",
		},
		Items: []fulfillment.ParcelItem{
			{Description: "Shirt", SKU: "SH-1", Quantity: 2, WeightGrams: 300, Value: valueobject.MustMoney("19.99", valueobject.EUR)},
		},
		TotalValue: valueobject.MustMoney("39.98", valueobject.EUR),
	})
	require.NoError(t, err)

	assert.True(t, got.Parcel.RequestLabel)
	assert.True(t, got.Parcel.IsReturn)
	assert.Equal(t, "Jane Doe", got.Parcel.Name)
	assert.Equal(t, "1.250", got.Parcel.Weight)
	assert.Equal(t, 8, got.Parcel.Shipment.ID)
	assert.Equal(t, 42, got.Parcel.SenderAddress)
	assert.Equal(t, "39.98", got.Parcel.TotalOrderValue)
	assert.Equal(t, "EUR", got.Parcel.TotalOrderValueCurrency)
	require.Len(t, got.Parcel.ParcelItems, 1)
	assert.Equal(t, "0.300", got.Parcel.ParcelItems[0].Weight)

	assert.Equal(t, "9001", data.ParcelID)
	assert.Equal(t, "3SABC", data.TrackingNumber)
	assert.Equal(t, "dhl", data.Carrier)
	assert.Equal(t, "8", data.ShippingMethodID)
}

func TestCreateParcel_NonNumericMethod(t *testing.T) {
	p := NewSendcloudProvider(newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := p.CreateFulfillment(context.Background(), fulfillment.ParcelRequest{ShippingMethodID: "express"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCancelParcel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/parcels/9001/cancel", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"status":"cancelled","message":"Parcel has been cancelled"}`))
		})
		res, err := c.CancelParcel(context.Background(), "9001")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", res.Status)
	})

	t.Run("not found keeps upstream status text", func(t *testing.T) {
		c := newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"No Parcel matches the given query."}}`))
		})
		_, err := c.CancelParcel(context.Background(), "1")
		require.Error(t, err)
		assert.Equal(t, "sendcloud: request failed with status 404: Not Found (No Parcel matches the given query)", err.Error())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})

	t.Run("gone", func(t *testing.T) {
		c := newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGone)
		})
		_, err := c.CancelParcel(context.Background(), "1")
		assert.EqualError(t, err, "sendcloud: request failed with status 410: Gone")
	})

	t.Run("provider skips fulfillments without parcel", func(t *testing.T) {
		p := NewSendcloudProvider(newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		}))
		assert.NoError(t, p.CancelFulfillment(context.Background(), fulfillment.Data{}))
	})
}

func TestDownloadLabel(t *testing.T) {
	pdf := []byte("%PDF-1.4 label")
	c := newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/labels/label_printer/9001", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	})
	p := NewSendcloudProvider(c)

	got, err := p.RetrieveLabel(context.Background(), fulfillment.Data{ParcelID: "9001"}, fulfillment.LabelFormatLabelPrinter)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)

	_, err = p.RetrieveLabel(context.Background(), fulfillment.Data{}, fulfillment.LabelFormatNormalPrinter)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDownloadLabel_RejectsOversizedLabel(t *testing.T) {
	var size int
	c := newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(bytes.Repeat([]byte("x"), size))
	})
	c.maxLabel = 16

	size = 16
	got, err := c.DownloadLabel(context.Background(), "9001", "normal_printer")
	require.NoError(t, err)
	assert.Len(t, got, 16)

	size = 17
	got, err = c.DownloadLabel(context.Background(), "9001", "normal_printer")
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.Nil(t, got)
}

func TestCreateParcel_RejectsOversizedResponse(t *testing.T) {
	c := newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"parcel":{"id":1,"tracking_number":"`+strings.Repeat("9", 64)+`"}}`)
	})
	c.maxBody = 32

	_, err := c.CreateParcel(context.Background(), ParcelInput{Name: "Ada"})
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestShippingMethods(t *testing.T) {
	c := newTestSendcloud(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shipping_methods", r.URL.Path)
		assert.Equal(t, "DE", r.URL.Query().Get("to_country"))
		assert.Equal(t, "42", r.URL.Query().Get("sender_address"))
		_, _ = w.Write([]byte(`{"shipping_methods":[{"id":8,"name":"DHL Paket","carrier":"dhl","min_weight":"0.001","max_weight":"31.000","countries":[{"iso_2":"DE","price":4.9}]}]}`))
	})

	methods, err := c.ShippingMethods(context.Background(), "de", false)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	price, ok := methods[0].PriceFor("de")
	assert.True(t, ok)
	assert.InDelta(t, 4.9, price, 0.0001)
	_, ok = methods[0].PriceFor("FR")
	assert.False(t, ok)
}

func TestManualProvider(t *testing.T) {
	p := NewManualProvider()
	assert.Equal(t, fulfillment.ProviderManual, p.ID())
	data, err := p.CreateFulfillment(context.Background(), fulfillment.ParcelRequest{ShippingMethodID: "pickup"})
	require.NoError(t, err)
	assert.Equal(t, "pickup", data.ShippingMethodID)
	assert.NoError(t, p.CancelFulfillment(context.Background(), data))
	_, err = p.RetrieveLabel(context.Background(), data, fulfillment.LabelFormatNormalPrinter)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
