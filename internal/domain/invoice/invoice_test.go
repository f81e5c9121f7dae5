package invoice

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoice(t *testing.T) {
	inv, err := NewInvoice(42, uuid.New())
	require.NoError(t, err)
	assert.True(t, inv.IsLatest())
	assert.Equal(t, "invoice-42.pdf", inv.FileName())

	inv.MarkStale()
	assert.False(t, inv.IsLatest())
	v := inv.Version
	inv.MarkStale()
	assert.Equal(t, v, inv.Version)

	_, err = NewInvoice(0, uuid.New())
	assert.Error(t, err)
}

func TestConfig_Apply(t *testing.T) {
	c := NewDefaultConfig("Shop")
	name := " Shop GmbH "
	vat := "DE123456789"
	require.NoError(t, c.Apply(ConfigPatch{CompanyName: &name, VATNumber: &vat}))
	assert.Equal(t, "Shop GmbH", c.CompanyName)
	assert.Equal(t, "DE123456789", c.VATNumber)
	assert.Empty(t, c.Notes)

	long := strings.Repeat("x", 51)
	assert.Error(t, c.Apply(ConfigPatch{CompanyPhone: &long}))
}
