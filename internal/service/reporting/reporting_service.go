package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/config"
	"github.com/jobh/imoveis/internal/domain/finance"
	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
)

// ErrNoRentals is returned when a document would have no rentals in it.
var ErrNoRentals = errors.New("no rentals selected")

// ErrSheetsDisabled is returned when exporting without a spreadsheet configured.
var ErrSheetsDisabled = errors.New("google sheets export is not configured")

// ErrInvalidSettings indicates the PIX settings failed validation.
var ErrInvalidSettings = errors.New("invalid settings")

const (
	unknownOwnerName  = "Proprietário Desconhecido"
	repasseSheetRange = "Repasse!A1:H"
)

// SheetWriter receives the exported transfer worksheet.
type SheetWriter interface {
	ReplaceRange(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// Company identifies the agency on printed documents.
type Company struct {
	Name   string `json:"name"`
	Doc    string `json:"doc"`
	PixKey string `json:"pixKey"`
}

// Service builds dashboards, ledgers and the printable documents of a period. Every
// figure comes from the finance engine.
type Service struct {
	store   repository.Store
	sheets  SheetWriter
	company config.CompanyConfig
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. sheets may be nil.
func NewService(store repository.Store, sheets SheetWriter, company config.CompanyConfig, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:   store,
		sheets:  sheets,
		company: company,
		loc:     loc,
		logger:  logger,
		now:     time.Now,
	}
}

// Dashboard is the summary of one period.
type Dashboard struct {
	Period models.Period `json:"period"`
	finance.Summary
}

// LedgerRow pairs a rental with its computed figures.
type LedgerRow struct {
	Rental    models.Rental     `json:"rental"`
	Breakdown finance.Breakdown `json:"breakdown"`
}

// Dashboard aggregates the paid, admin fee and transferred totals of a period.
func (s *Service) Dashboard(ctx context.Context, p models.Period) (Dashboard, error) {
	rentals, owners, err := s.load(ctx, p.Filter())
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Period: p, Summary: finance.Summarize(rentals, owners)}, nil
}

// Ledger returns one computed row per rental of the period.
func (s *Service) Ledger(ctx context.Context, p models.Period) ([]LedgerRow, error) {
	rentals, owners, err := s.load(ctx, p.Filter())
	if err != nil {
		return nil, err
	}

	idx := finance.IndexOwners(owners)
	rows := make([]LedgerRow, 0, len(rentals))
	for _, r := range rentals {
		rows = append(rows, LedgerRow{Rental: r, Breakdown: finance.Compute(r, idx.Rate(r))})
	}
	return rows, nil
}

func (s *Service) load(ctx context.Context, filter models.RentalFilter) ([]models.Rental, []models.Owner, error) {
	rentals, err := s.store.ListRentals(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("list rentals: %w", err)
	}
	owners, err := s.store.ListOwners(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list owners: %w", err)
	}
	return rentals, owners, nil
}

// selectRentals keeps the rentals whose ids were requested, or all of them when ids is empty.
func selectRentals(rentals []models.Rental, ids []string) []models.Rental {
	if len(ids) == 0 {
		return rentals
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]models.Rental, 0, len(ids))
	for _, r := range rentals {
		if _, ok := wanted[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// companyInfo prefers the stored PIX settings over the configured defaults.
func (s *Service) companyInfo(ctx context.Context) (Company, *models.PixConfig, error) {
	c := Company{Name: s.company.Name, Doc: s.company.Doc, PixKey: s.company.PixKey}
	pix, err := s.store.GetPixConfig(ctx)
	if err != nil {
		return Company{}, nil, fmt.Errorf("load pix config: %w", err)
	}
	if pix != nil {
		if pix.Name != "" {
			c.Name = pix.Name
		}
		if pix.Doc != "" {
			c.Doc = pix.Doc
		}
		if pix.PixKey != "" {
			c.PixKey = pix.PixKey
		}
	}
	return c, pix, nil
}

// PixConfig returns the stored payee settings, or the configured company values when none
// were saved.
func (s *Service) PixConfig(ctx context.Context) (models.PixConfig, error) {
	c, pix, err := s.companyInfo(ctx)
	if err != nil {
		return models.PixConfig{}, err
	}
	out := models.PixConfig{Name: c.Name, Doc: c.Doc, PixKey: c.PixKey}
	if pix != nil {
		out.QRCodeBase64 = pix.QRCodeBase64
		out.PixPayload = pix.PixPayload
		out.StatementNotes = pix.StatementNotes
	}
	return out, nil
}

// SavePixConfig stores the payee settings printed on receipts.
func (s *Service) SavePixConfig(ctx context.Context, cfg models.PixConfig) (models.PixConfig, error) {
	if cfg.QRCodeBase64 != "" && qrSrc(cfg.QRCodeBase64) == "" {
		return models.PixConfig{}, fmt.Errorf("%w: qr code is not base64 png data", ErrInvalidSettings)
	}
	if err := s.store.SavePixConfig(ctx, cfg); err != nil {
		return models.PixConfig{}, fmt.Errorf("save pix config: %w", err)
	}
	s.logger.Info("pix settings updated", zap.Bool("has_qr_code", cfg.QRCodeBase64 != ""))
	return cfg, nil
}
