// Package printing renders storefront documents (invoices) to PDF.
//
// Documents are produced from HTML templates and printed with a headless
// Chrome through the DevTools protocol (chromedp). Amounts are formatted
// per locale with golang.org/x/text.
package printing
