package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		parser, err := NewParser(strings.NewReader("\xEF\xBB\xBFhandle,sku\nshirt,S1"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"handle", "sku"}, parser.Headers())
	})

	t.Run("Empty file returns error", func(t *testing.T) {
		parser, err := NewParser(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
		assert.Nil(t, parser)
	})

	t.Run("Invalid encoding returns error", func(t *testing.T) {
		_, err := NewParser(strings.NewReader("handle,title\nshirt,\xff\xfe,x"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("Custom delimiter", func(t *testing.T) {
		parser, err := NewParser(strings.NewReader("handle;sku\nshirt;S1"), WithDelimiter(';'))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"handle", "sku"}, parser.Headers())
	})
}

func TestParser_HeaderNormalization(t *testing.T) {
	parser, err := NewParser(strings.NewReader("  Handle , SKU ,Price\nshirt,S1,10"))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	assert.Equal(t, []string{"handle", "sku", "price"}, parser.Headers())
	assert.Empty(t, parser.MissingHeaders("handle", "sku"))
	assert.Equal(t, []string{"inventory"}, parser.MissingHeaders("price", "inventory"))
}

func TestParser_ReadRow(t *testing.T) {
	parser, err := NewParser(strings.NewReader("handle,sku,price\n shirt , S1 ,10\nmug,M1\n,,\n"))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	row, err := parser.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, 2, row.LineNumber)
	assert.Equal(t, "shirt", row.Get("handle"))
	assert.Equal(t, "S1", row.Get("sku"))

	row, err = parser.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, 3, row.LineNumber)
	assert.Equal(t, "", row.Get("price"), "short rows pad missing columns")

	row, err = parser.ReadRow()
	require.NoError(t, err)
	assert.True(t, row.IsEmpty())

	_, err = parser.ReadRow()
	assert.ErrorIs(t, err, io.EOF)
}

func TestParser_MissingHeader(t *testing.T) {
	parser, err := NewParser(strings.NewReader("\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, parser.ParseHeader(), ErrMissingHeader)
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection(2)
	assert.False(t, ec.HasErrors())

	ec.required(2, "sku")
	ec.invalid(3, "price", "decimal", "abc")
	ec.Add(RowError{Row: 4, Message: "broken"})

	assert.True(t, ec.HasErrors())
	assert.True(t, ec.IsTruncated())
	assert.Equal(t, 3, ec.TotalCount())
	require.Len(t, ec.Errors(), 2)
	assert.Equal(t, ErrCodeRequiredField, ec.Errors()[0].Code)
	assert.Equal(t, "abc", ec.Errors()[1].Value)

	msg := ec.Error()
	assert.Contains(t, msg, "3 error(s) found (showing first 2)")
	assert.Contains(t, msg, "row 2, column 'sku': field 'sku' is required")
	assert.NotContains(t, msg, "broken")
}
