package occurrences

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
)

// ErrInvalidOccurrence indicates an occurrence failed validation.
var ErrInvalidOccurrence = errors.New("invalid occurrence")

const dateLayout = "02/01/2006"

var (
	validStatuses = map[string]bool{
		models.OccurrencePending:    true,
		models.OccurrenceInProgress: true,
		models.OccurrenceResolved:   true,
	}
	validUrgencies = map[string]bool{"low": true, "medium": true, "high": true}
	validTypes     = map[string]bool{"maintenance": true, "financial": true, "general": true}
	validSenders   = map[string]bool{"tenant": true, "owner": true}
)

// Service records tenant and owner service tickets.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new occurrences service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Create stores a new occurrence. Missing fields default to a pending, medium urgency
// maintenance ticket from a tenant.
func (s *Service) Create(ctx context.Context, occ models.Occurrence) (models.Occurrence, error) {
	occ.Description = strings.TrimSpace(occ.Description)
	if occ.Description == "" {
		return models.Occurrence{}, fmt.Errorf("%w: description is required", ErrInvalidOccurrence)
	}

	occ.Urgency = defaultTo(occ.Urgency, "medium")
	occ.Type = defaultTo(occ.Type, "maintenance")
	occ.SenderType = defaultTo(occ.SenderType, "tenant")
	occ.Status = defaultTo(occ.Status, models.OccurrencePending)

	switch {
	case !validUrgencies[occ.Urgency]:
		return models.Occurrence{}, fmt.Errorf("%w: unknown urgency %q", ErrInvalidOccurrence, occ.Urgency)
	case !validTypes[occ.Type]:
		return models.Occurrence{}, fmt.Errorf("%w: unknown type %q", ErrInvalidOccurrence, occ.Type)
	case !validSenders[occ.SenderType]:
		return models.Occurrence{}, fmt.Errorf("%w: unknown sender type %q", ErrInvalidOccurrence, occ.SenderType)
	case !validStatuses[occ.Status]:
		return models.Occurrence{}, fmt.Errorf("%w: unknown status %q", ErrInvalidOccurrence, occ.Status)
	}

	now := s.now()
	// ids sort by creation time so listings show the newest first
	occ.ID = fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
	if occ.Date == "" {
		occ.Date = now.Format(dateLayout)
	}

	if err := s.store.SaveOccurrence(ctx, occ); err != nil {
		return models.Occurrence{}, fmt.Errorf("save occurrence: %w", err)
	}
	s.logger.Info("occurrence created",
		zap.String("occurrence_id", occ.ID),
		zap.String("type", occ.Type),
		zap.String("urgency", occ.Urgency),
	)
	return occ, nil
}

// List returns every occurrence, newest first.
func (s *Service) List(ctx context.Context) ([]models.Occurrence, error) {
	return s.store.ListOccurrences(ctx)
}

// UpdateStatus moves an occurrence to pending, in_progress or resolved.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (models.Occurrence, error) {
	if !validStatuses[status] {
		return models.Occurrence{}, fmt.Errorf("%w: unknown status %q", ErrInvalidOccurrence, status)
	}
	occ, err := s.store.GetOccurrence(ctx, id)
	if err != nil {
		return models.Occurrence{}, err
	}
	occ.Status = status
	if err := s.store.SaveOccurrence(ctx, occ); err != nil {
		return models.Occurrence{}, fmt.Errorf("save occurrence: %w", err)
	}
	return occ, nil
}

func defaultTo(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
