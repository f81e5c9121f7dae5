// Package invoice manages the invoice config and renders order invoices to PDF.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/invoice"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

var errPrintingNotConfigured = shared.NewDomainError("PRINTING_NOT_CONFIGURED", "Invoice rendering is not configured")

// ObjectStorage archives invoice PDFs
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
}

// OrderFinder loads orders for invoicing
type OrderFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// Store carries the shop settings used when no config was saved yet
type Store struct {
	Name   string
	Locale string
}

// InvoiceService handles invoice config and PDF generation
type InvoiceService struct {
	configRepo  invoice.ConfigRepository
	invoiceRepo invoice.InvoiceRepository
	orders      OrderFinder
	renderer    printing.PDFRenderer
	template    *printing.InvoiceTemplate
	storage     ObjectStorage
	store       Store
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. renderer and archive may be nil.
func NewInvoiceService(
	configRepo invoice.ConfigRepository,
	invoiceRepo invoice.InvoiceRepository,
	orders OrderFinder,
	renderer printing.PDFRenderer,
	archive ObjectStorage,
	store Store,
	log *zap.Logger,
) (*InvoiceService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tmpl, err := printing.NewInvoiceTemplate(store.Locale)
	if err != nil {
		return nil, fmt.Errorf("invoice template: %w", err)
	}
	return &InvoiceService{
		configRepo:  configRepo,
		invoiceRepo: invoiceRepo,
		orders:      orders,
		renderer:    renderer,
		template:    tmpl,
		storage:     archive,
		store:       store,
		logger:      log,
	}, nil
}

// GetConfig returns the invoice config, creating the defaults on first use
func (s *InvoiceService) GetConfig(ctx context.Context) (*ConfigResponse, error) {
	c, err := s.config(ctx)
	if err != nil {
		return nil, err
	}
	response := ToConfigResponse(c)
	return &response, nil
}

// UpdateConfig applies a partial update to the invoice config
func (s *InvoiceService) UpdateConfig(ctx context.Context, req UpdateConfigRequest) (*ConfigResponse, error) {
	c, err := s.config(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(req.patch()); err != nil {
		return nil, err
	}
	if err := s.configRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	logger.FromContextOr(ctx, s.logger).Info("Invoice config updated")
	response := ToConfigResponse(c)
	return &response, nil
}

// OrderInvoice returns the PDF invoice of an order. The latest invoice is
// reused, otherwise a new number is issued once the PDF rendered. A non-nil
// customerID restricts the lookup to that customer's orders.
func (s *InvoiceService) OrderInvoice(ctx context.Context, orderID uuid.UUID, customerID *uuid.UUID) (*Document, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if customerID != nil && (o.CustomerID == nil || *o.CustomerID != *customerID) {
		return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
	}
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("order_id", orderID.String()))

	inv, err := s.invoiceRepo.FindLatestByOrder(ctx, orderID)
	switch {
	case err == nil:
		return s.reuse(ctx, inv, o, log)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	doc, err := s.issue(ctx, o, log)
	if errors.Is(err, shared.ErrAlreadyExists) {
		// a concurrent request issued the invoice first
		if inv, err = s.invoiceRepo.FindLatestByOrder(ctx, orderID); err != nil {
			return nil, err
		}
		return s.reuse(ctx, inv, o, log)
	}
	return doc, err
}

func (s *InvoiceService) issue(ctx context.Context, o *order.Order, log *zap.Logger) (*Document, error) {
	if s.renderer == nil {
		return nil, errPrintingNotConfigured
	}
	cfg, err := s.config(ctx)
	if err != nil {
		return nil, err
	}
	var data []byte
	inv, err := s.invoiceRepo.Issue(ctx, o.ID, func(inv *invoice.Invoice) error {
		var err error
		if data, err = s.render(ctx, buildDocument(inv, o, cfg)); err != nil {
			log.Error("Invoice rendering failed", zap.Int64("invoice", inv.DisplayID), zap.Error(err))
			return err
		}
		s.archive(ctx, inv, data, log)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Invoice generated", zap.Int64("invoice", inv.DisplayID))
	return newDocument(inv, data, false), nil
}

func (s *InvoiceService) reuse(ctx context.Context, inv *invoice.Invoice, o *order.Order, log *zap.Logger) (*Document, error) {
	if data := s.archived(ctx, inv, log); data != nil {
		return newDocument(inv, data, true), nil
	}
	cfg, err := s.config(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.render(ctx, buildDocument(inv, o, cfg))
	if err != nil {
		log.Error("Invoice rendering failed", zap.Int64("invoice", inv.DisplayID), zap.Error(err))
		return nil, err
	}
	if s.archive(ctx, inv, data, log) {
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return nil, err
		}
	}
	log.Info("Invoice regenerated", zap.Int64("invoice", inv.DisplayID))
	return newDocument(inv, data, true), nil
}

// archive uploads the PDF and records its key, reporting whether it was stored
func (s *InvoiceService) archive(ctx context.Context, inv *invoice.Invoice, data []byte, log *zap.Logger) bool {
	if s.storage == nil {
		return false
	}
	key := archiveKey(inv)
	if err := s.storage.Upload(ctx, key, data, pdfContentType); err != nil {
		log.Warn("invoice archive write failed", zap.Error(err))
		return false
	}
	inv.SetStorageKey(key)
	return true
}

// MarkStale flags every invoice of an order as outdated
func (s *InvoiceService) MarkStale(ctx context.Context, orderID uuid.UUID) error {
	n, err := s.invoiceRepo.MarkStaleByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.FromContextOr(ctx, s.logger).Info("Invoices marked stale",
			zap.String("order_id", orderID.String()),
			zap.Int64("count", n))
	}
	return nil
}

func (s *InvoiceService) config(ctx context.Context) (*invoice.Config, error) {
	c, err := s.configRepo.Get(ctx)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	c = invoice.NewDefaultConfig(s.store.Name)
	if err := s.configRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *InvoiceService) archived(ctx context.Context, inv *invoice.Invoice, log *zap.Logger) []byte {
	if s.storage == nil || inv.StorageKey == "" {
		return nil
	}
	data, err := s.storage.Download(ctx, inv.StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			log.Warn("invoice archive read failed", zap.Error(err))
		}
		return nil
	}
	return data
}

func (s *InvoiceService) render(ctx context.Context, doc printing.InvoiceDocument) ([]byte, error) {
	if s.renderer == nil {
		return nil, errPrintingNotConfigured
	}
	html, err := s.template.Render(doc)
	if err != nil {
		return nil, err
	}
	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:       html,
		Title:      doc.Number,
		Margins:    printing.DefaultMargins(),
		FooterHTML: s.template.Footer(doc),
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

func buildDocument(inv *invoice.Invoice, o *order.Order, cfg *invoice.Config) printing.InvoiceDocument {
	addr := o.ShippingAddress
	buyerLines := []string{}
	if addr.Company != "" {
		buyerLines = append(buyerLines, addr.Company)
	}
	buyerLines = append(buyerLines, strings.TrimSpace(addr.Address1+" "+addr.HouseNumber))
	if addr.Address2 != "" {
		buyerLines = append(buyerLines, addr.Address2)
	}
	buyerLines = append(buyerLines, strings.TrimSpace(addr.PostalCode+" "+addr.City), addr.CountryCode)

	lines := make([]printing.InvoiceLine, 0, len(o.Items))
	for _, li := range o.Items {
		lines = append(lines, printing.InvoiceLine{
			Title:     li.ProductTitle,
			Variant:   li.VariantTitle,
			SKU:       li.SKU,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Total:     li.Total(),
		})
	}

	issuedAt := inv.CreatedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	refunded := o.RefundedTotal
	if refunded.Currency() == "" {
		refunded = valueobject.Zero(o.CurrencyCode)
	}
	return printing.InvoiceDocument{
		Number:      invoiceNumber(inv),
		OrderNumber: "#" + strconv.FormatInt(o.DisplayID, 10),
		IssuedAt:    issuedAt,
		LogoURL:     cfg.CompanyLogo,
		Seller: printing.InvoiceParty{
			Name:      cfg.CompanyName,
			Lines:     splitLines(cfg.CompanyAddress),
			Email:     cfg.CompanyEmail,
			Phone:     cfg.CompanyPhone,
			VATNumber: cfg.VATNumber,
		},
		Buyer: printing.InvoiceParty{
			Name:  addr.FullName(),
			Lines: buyerLines,
			Email: o.Email,
			Phone: addr.Phone,
		},
		Lines:      lines,
		Subtotal:   o.Subtotal,
		Shipping:   o.ShippingTotal,
		ShippingBy: o.ShippingMethod.Name,
		Refunded:   refunded,
		Total:      o.Total,
		Notes:      cfg.Notes,
	}
}

func newDocument(inv *invoice.Invoice, data []byte, reused bool) *Document {
	return &Document{
		Filename:    inv.FileName(),
		ContentType: pdfContentType,
		Data:        data,
		DisplayID:   inv.DisplayID,
		Reused:      reused,
	}
}

func invoiceNumber(inv *invoice.Invoice) string {
	return fmt.Sprintf("INV-%06d", inv.DisplayID)
}

func archiveKey(inv *invoice.Invoice) string {
	return "invoices/" + inv.FileName()
}

func splitLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
