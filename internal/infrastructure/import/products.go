package csvimport

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Product CSV columns. One row per variant; rows sharing a handle form one product.
const (
	ColHandle       = "handle"
	ColTitle        = "title"
	ColSubtitle     = "subtitle"
	ColDescription  = "description"
	ColThumbnail    = "thumbnail"
	ColPublish      = "publish"
	ColVariantTitle = "variant_title"
	ColSKU          = "sku"
	ColPrice        = "price"
	ColInventory    = "inventory"
	ColWeightGrams  = "weight_grams"
)

// ProductRecord is a product assembled from one or more rows
type ProductRecord struct {
	Handle      string
	Title       string
	Subtitle    string
	Description string
	Thumbnail   string
	Publish     bool
	Variants    []VariantRecord
}

// VariantRecord is a single variant row
type VariantRecord struct {
	Title       string
	SKU         string
	Price       decimal.Decimal
	Inventory   int
	WeightGrams int
}

// ParseProducts reads a product CSV. Row problems are collected and returned
// together as an *ErrorCollection.
func ParseProducts(r io.Reader, opts ...ParserOption) ([]ProductRecord, error) {
	p, err := NewParser(r, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := p.MissingHeaders(ColHandle, ColSKU, ColPrice); len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var (
		products []ProductRecord
		byHandle = map[string]int{}
		skus     = map[string]int{}
		errs     = NewErrorCollection(100)
	)
	for {
		row, err := p.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs.Add(RowError{Row: p.currentRow, Code: ErrCodeMalformedRow, Message: err.Error()})
			continue
		}
		if row.IsEmpty() {
			continue
		}

		handle := strings.ToLower(row.Get(ColHandle))
		if handle == "" {
			errs.required(row.LineNumber, ColHandle)
			continue
		}
		idx, seen := byHandle[handle]
		if !seen {
			product, ok := productFromRow(row, handle, errs)
			if !ok {
				continue
			}
			idx = len(products)
			byHandle[handle] = idx
			products = append(products, product)
		}

		variant, ok := variantFromRow(row, errs)
		if !ok {
			continue
		}
		if first, dup := skus[variant.SKU]; dup {
			errs.Add(RowError{Row: row.LineNumber, Column: ColSKU, Code: ErrCodeDuplicate,
				Message: fmt.Sprintf("sku already used on row %d", first), Value: variant.SKU})
			continue
		}
		skus[variant.SKU] = row.LineNumber
		products[idx].Variants = append(products[idx].Variants, variant)
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return products, nil
}

func productFromRow(row *Row, handle string, errs *ErrorCollection) (ProductRecord, bool) {
	title := row.Get(ColTitle)
	if title == "" {
		errs.required(row.LineNumber, ColTitle)
		return ProductRecord{}, false
	}
	publish := false
	if v := row.Get(ColPublish); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs.invalid(row.LineNumber, ColPublish, "true or false", v)
			return ProductRecord{}, false
		}
		publish = b
	}
	return ProductRecord{
		Handle:      handle,
		Title:       title,
		Subtitle:    row.Get(ColSubtitle),
		Description: row.Get(ColDescription),
		Thumbnail:   row.Get(ColThumbnail),
		Publish:     publish,
	}, true
}

func variantFromRow(row *Row, errs *ErrorCollection) (VariantRecord, bool) {
	ok := true
	v := VariantRecord{Title: row.Get(ColVariantTitle), SKU: row.Get(ColSKU)}
	if v.SKU == "" {
		errs.required(row.LineNumber, ColSKU)
		ok = false
	}

	price, err := decimal.NewFromString(row.Get(ColPrice))
	switch {
	case row.Get(ColPrice) == "":
		errs.required(row.LineNumber, ColPrice)
		ok = false
	case err != nil:
		errs.invalid(row.LineNumber, ColPrice, "decimal", row.Get(ColPrice))
		ok = false
	case price.IsNegative():
		errs.Add(RowError{Row: row.LineNumber, Column: ColPrice, Code: ErrCodeInvalidRange,
			Message: "price must not be negative", Value: row.Get(ColPrice)})
		ok = false
	default:
		v.Price = price
	}

	inventory, invOK := intColumn(row, ColInventory, errs)
	weight, weightOK := intColumn(row, ColWeightGrams, errs)
	v.Inventory, v.WeightGrams = inventory, weight
	return v, ok && invOK && weightOK
}

// intColumn parses an optional non-negative integer column
func intColumn(row *Row, column string, errs *ErrorCollection) (int, bool) {
	raw := row.Get(column)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.invalid(row.LineNumber, column, "integer", raw)
		return 0, false
	}
	if n < 0 {
		errs.Add(RowError{Row: row.LineNumber, Column: column, Code: ErrCodeInvalidRange,
			Message: column + " must not be negative", Value: raw})
		return 0, false
	}
	return n, true
}
