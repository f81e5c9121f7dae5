package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	labelContentType   = "application/pdf"
	labelSourceCarrier = "carrier"
	labelSourceArchive = "archive"
	defaultLabelURLTTL = 15 * time.Minute
)

var errLabelNotAvailable = shared.NewDomainError("NOT_FOUND", "label not available")

// ObjectStorage archives label PDFs
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// LabelService fetches shipping labels from the carrier, archiving them when
// object storage is configured
type LabelService struct {
	fulfillmentRepo fulfillment.FulfillmentRepository
	providers       map[string]fulfillment.Provider
	storage         ObjectStorage
	urlTTL          time.Duration
	metrics         *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewLabelService creates a new LabelService. archive may be nil.
func NewLabelService(
	fulfillmentRepo fulfillment.FulfillmentRepository,
	providers []fulfillment.Provider,
	archive ObjectStorage,
	urlTTL time.Duration,
	metrics *telemetry.BusinessMetrics,
	log *zap.Logger,
) *LabelService {
	if log == nil {
		log = zap.NewNop()
	}
	if urlTTL <= 0 {
		urlTTL = defaultLabelURLTTL
	}
	s := &LabelService{
		fulfillmentRepo: fulfillmentRepo,
		providers:       make(map[string]fulfillment.Provider, len(providers)),
		storage:         archive,
		urlTTL:          urlTTL,
		metrics:         metrics,
		logger:          log,
	}
	for _, p := range providers {
		s.providers[p.ID()] = p
	}
	return s
}

// Label returns the label PDF of a fulfillment
func (s *LabelService) Label(ctx context.Context, fulfillmentID uuid.UUID, format fulfillment.LabelFormat) (*Label, error) {
	f, err := s.fulfillmentRepo.FindByID(ctx, fulfillmentID)
	if err != nil {
		return nil, err
	}
	return s.label(ctx, f, format)
}

// ReturnLabel returns the label of the first active return fulfillment of a return
func (s *LabelService) ReturnLabel(ctx context.Context, returnID uuid.UUID, format fulfillment.LabelFormat) (*Label, error) {
	list, err := s.fulfillmentRepo.FindByReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}
	active := fulfillment.FilterActive(list)
	if len(active) == 0 {
		return nil, errLabelNotAvailable
	}
	return s.label(ctx, &active[0], format)
}

// LabelURL archives the label if needed and returns a presigned download link
func (s *LabelService) LabelURL(ctx context.Context, fulfillmentID uuid.UUID, format fulfillment.LabelFormat) (*LabelURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "label storage is not configured")
	}
	f, err := s.fulfillmentRepo.FindByID(ctx, fulfillmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.label(ctx, f, format); err != nil {
		return nil, err
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, archiveKey(f.ParcelID(), format), s.urlTTL)
	if err != nil {
		return nil, err
	}
	return &LabelURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *LabelService) label(ctx context.Context, f *fulfillment.Fulfillment, format fulfillment.LabelFormat) (*Label, error) {
	if format == "" {
		format = fulfillment.LabelFormatNormalPrinter
	}
	if !format.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unsupported label format: "+format.String())
	}
	parcelID := f.ParcelID()
	if parcelID == "" {
		return nil, errLabelNotAvailable
	}
	log := logger.FromContextOr(ctx, s.logger).With(
		zap.String("fulfillment_id", f.ID.String()),
		zap.String("parcel_id", parcelID))

	key := archiveKey(parcelID, format)
	if s.storage != nil {
		data, err := s.storage.Download(ctx, key)
		switch {
		case err == nil:
			s.metrics.LabelFetched(ctx, labelSourceArchive, format.String())
			return newLabel(f, data, labelSourceArchive), nil
		case !errors.Is(err, storage.ErrObjectNotFound):
			log.Warn("label archive read failed", zap.Error(err))
		}
	}

	provider, ok := s.providers[f.ProviderID]
	if !ok {
		return nil, errLabelNotAvailable
	}
	data, err := provider.RetrieveLabel(ctx, f.Data, format)
	if err != nil {
		log.Warn("Failed to fetch label", zap.Error(err))
		return nil, upstream(err)
	}
	s.metrics.LabelFetched(ctx, labelSourceCarrier, format.String())

	if s.storage != nil {
		if err := s.storage.Upload(ctx, key, data, labelContentType); err != nil {
			log.Warn("label archive write failed", zap.Error(err))
		}
	}
	return newLabel(f, data, labelSourceCarrier), nil
}

func newLabel(f *fulfillment.Fulfillment, data []byte, source string) *Label {
	name := "label-" + f.ParcelID() + ".pdf"
	if f.IsReturn() {
		name = "return-" + name
	}
	return &Label{Filename: name, ContentType: labelContentType, Data: data, Source: source}
}

func archiveKey(parcelID string, format fulfillment.LabelFormat) string {
	return fmt.Sprintf("labels/%s-%s.pdf", parcelID, format)
}
