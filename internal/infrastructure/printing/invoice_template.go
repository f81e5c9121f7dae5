package printing

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InvoiceParty is a seller or buyer block on the invoice
type InvoiceParty struct {
	Name      string
	Lines     []string
	Email     string
	Phone     string
	VATNumber string
}

// InvoiceLine is a single row of the invoice table
type InvoiceLine struct {
	Title     string
	Variant   string
	SKU       string
	Quantity  int
	UnitPrice valueobject.Money
	Total     valueobject.Money
}

// InvoiceDocument is everything the invoice template prints
type InvoiceDocument struct {
	Number      string
	OrderNumber string
	IssuedAt    time.Time
	LogoURL     string
	Seller      InvoiceParty
	Buyer       InvoiceParty
	Lines       []InvoiceLine
	Subtotal    valueobject.Money
	Shipping    valueobject.Money
	ShippingBy  string
	Refunded    valueobject.Money
	Total       valueobject.Money
	Notes       string
}

// InvoiceTemplate renders InvoiceDocuments to HTML for a locale
type InvoiceTemplate struct {
	tmpl    *template.Template
	printer *message.Printer
	tag     language.Tag
}

// NewInvoiceTemplate parses the built-in invoice layout.
// Unknown locales fall back to English.
func NewInvoiceTemplate(locale string) (*InvoiceTemplate, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	it := &InvoiceTemplate{printer: message.NewPrinter(tag), tag: tag}
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"money": it.FormatMoney,
		"date":  func(t time.Time) string { return t.Format("2006-01-02") },
	}).Parse(invoiceHTML)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse invoice template", err)
	}
	it.tmpl = tmpl
	return it, nil
}

// FormatMoney formats an amount with the currency symbol and locale separators,
// e.g. "€ 1,234.50" for en or "€ 1.234,50" for de
func (t *InvoiceTemplate) FormatMoney(m valueobject.Money) string {
	unit, err := currency.ParseISO(m.Currency().Upper())
	if err != nil {
		return m.String()
	}
	amount := m.Amount().InexactFloat64()
	return t.printer.Sprint(currency.Symbol(unit.Amount(amount)))
}

// Render executes the template
func (t *InvoiceTemplate) Render(doc InvoiceDocument) (string, error) {
	var buf bytes.Buffer
	data := struct {
		InvoiceDocument
		Lang string
	}{doc, t.tag.String()}
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to render invoice", err)
	}
	return buf.String(), nil
}

// Footer returns the per-page footer with the invoice number and page counter
func (t *InvoiceTemplate) Footer(doc InvoiceDocument) string {
	var b strings.Builder
	b.WriteString(`<div style="font-size:8px;width:100%;text-align:center;color:#666;">`)
	b.WriteString(template.HTMLEscapeString(doc.Seller.Name))
	b.WriteString(" · ")
	b.WriteString(template.HTMLEscapeString(doc.Number))
	b.WriteString(` · <span class="pageNumber"></span>/<span class="totalPages"></span></div>`)
	return b.String()
}

const invoiceHTML = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="UTF-8">
<title>{{.Number}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 11px; color: #222; }
  header { display: flex; justify-content: space-between; margin-bottom: 24px; }
  header img { max-height: 48px; }
  h1 { font-size: 20px; margin: 0 0 4px; }
  .parties { display: flex; justify-content: space-between; margin-bottom: 24px; }
  .party p { margin: 0; }
  table { width: 100%; border-collapse: collapse; }
  th { text-align: left; border-bottom: 1px solid #999; padding: 6px 4px; }
  td { border-bottom: 1px solid #eee; padding: 6px 4px; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 12px; width: 40%; margin-left: auto; }
  .totals td { border: none; }
  .totals tr.grand td { font-weight: bold; border-top: 1px solid #999; }
  .notes { margin-top: 24px; white-space: pre-wrap; color: #555; }
</style>
</head>
<body>
<header>
  <div>
    <h1>Invoice {{.Number}}</h1>
    <div>Order #{{.OrderNumber}} · {{date .IssuedAt}}</div>
  </div>
  {{if .LogoURL}}<img src="{{.LogoURL}}" alt="{{.Seller.Name}}">{{end}}
</header>
<section class="parties">
  <div class="party">
    <p><strong>{{.Seller.Name}}</strong></p>
    {{range .Seller.Lines}}<p>{{.}}</p>{{end}}
    {{if .Seller.Email}}<p>{{.Seller.Email}}</p>{{end}}
    {{if .Seller.Phone}}<p>{{.Seller.Phone}}</p>{{end}}
    {{if .Seller.VATNumber}}<p>VAT {{.Seller.VATNumber}}</p>{{end}}
  </div>
  <div class="party">
    <p><strong>{{.Buyer.Name}}</strong></p>
    {{range .Buyer.Lines}}<p>{{.}}</p>{{end}}
    {{if .Buyer.Email}}<p>{{.Buyer.Email}}</p>{{end}}
  </div>
</section>
<table>
  <thead>
    <tr><th>Item</th><th>SKU</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Total</th></tr>
  </thead>
  <tbody>
  {{range .Lines}}
    <tr>
      <td>{{.Title}}{{if .Variant}} · {{.Variant}}{{end}}</td>
      <td>{{.SKU}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{money .UnitPrice}}</td>
      <td class="num">{{money .Total}}</td>
    </tr>
  {{end}}
  </tbody>
</table>
<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{money .Subtotal}}</td></tr>
  <tr><td>Shipping{{if .ShippingBy}} ({{.ShippingBy}}){{end}}</td><td class="num">{{money .Shipping}}</td></tr>
  {{if not .Refunded.IsZero}}<tr><td>Refunded</td><td class="num">-{{money .Refunded}}</td></tr>{{end}}
  <tr class="grand"><td>Total</td><td class="num">{{money .Total}}</td></tr>
</table>
{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
</body>
</html>`
