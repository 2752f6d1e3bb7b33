// Package rentals manages owners and monthly rental records: validation, payment flags,
// late fees, rent adjustments and the rolling of a month into the next.
package rentals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/repository"
)

var (
	// ErrInvalidOwner indicates an owner failed validation.
	ErrInvalidOwner = errors.New("invalid owner")
	// ErrInvalidRental indicates a rental or an operation on it failed validation.
	ErrInvalidRental = errors.New("invalid rental")
	// ErrPeriodExists is returned when opening a month that already has rentals.
	ErrPeriodExists = errors.New("period already exists")
	// ErrEmptyPeriod is returned when a period has no rentals to act on.
	ErrEmptyPeriod = errors.New("period has no rentals")
	// ErrLastPeriod is returned when a deletion would remove every rental.
	ErrLastPeriod = errors.New("cannot delete the only remaining rentals")
)

var hundred = decimal.NewFromInt(100)

// Service implements owner and rental management on top of a repository.Store.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	newID  func() string
}

// NewService wires a new rentals service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// CreateOwner validates and stores a new owner with a fresh id.
func (s *Service) CreateOwner(ctx context.Context, owner models.Owner) (models.Owner, error) {
	if err := validateOwner(owner); err != nil {
		return models.Owner{}, err
	}
	owner.ID = s.newID()
	owner.Name = strings.TrimSpace(owner.Name)

	if err := s.store.SaveOwner(ctx, owner); err != nil {
		return models.Owner{}, fmt.Errorf("save owner: %w", err)
	}
	s.logger.Info("owner created", zap.String("owner_id", owner.ID), zap.String("name", owner.Name))
	return owner, nil
}

// UpdateOwner replaces an owner and refreshes the owner name copied onto its rentals.
func (s *Service) UpdateOwner(ctx context.Context, id string, owner models.Owner) (models.Owner, error) {
	if _, err := s.store.GetOwner(ctx, id); err != nil {
		return models.Owner{}, err
	}
	if err := validateOwner(owner); err != nil {
		return models.Owner{}, err
	}
	owner.ID = id
	owner.Name = strings.TrimSpace(owner.Name)

	if err := s.store.SaveOwner(ctx, owner); err != nil {
		return models.Owner{}, fmt.Errorf("save owner: %w", err)
	}

	rentals, err := s.store.ListRentals(ctx, models.RentalFilter{OwnerID: id})
	if err != nil {
		return models.Owner{}, fmt.Errorf("list owner rentals: %w", err)
	}
	for _, r := range rentals {
		if r.OwnerName == owner.Name {
			continue
		}
		r.OwnerName = owner.Name
		if err := s.store.SaveRental(ctx, r); err != nil {
			return models.Owner{}, fmt.Errorf("rename owner on rental %s: %w", r.ID, err)
		}
	}
	return owner, nil
}

// DeleteOwner removes the owner. Rentals keep their owner id and name; reports then fall
// back to the default rate.
func (s *Service) DeleteOwner(ctx context.Context, id string) error {
	if err := s.store.DeleteOwner(ctx, id); err != nil {
		return err
	}
	s.logger.Info("owner deleted", zap.String("owner_id", id))
	return nil
}

// ListOwners returns every owner ordered by name.
func (s *Service) ListOwners(ctx context.Context) ([]models.Owner, error) {
	return s.store.ListOwners(ctx)
}

// CreateRental validates and stores a new rental.
func (s *Service) CreateRental(ctx context.Context, rental models.Rental) (models.Rental, error) {
	rental.ID = s.newID()
	if err := s.prepareRental(ctx, &rental); err != nil {
		return models.Rental{}, err
	}
	if err := s.store.SaveRental(ctx, rental); err != nil {
		return models.Rental{}, fmt.Errorf("save rental: %w", err)
	}
	s.logger.Info("rental created",
		zap.String("rental_id", rental.ID),
		zap.String("ref", rental.RefNumber),
		zap.Stringer("period", rental.Period()),
	)
	return rental, nil
}

// UpdateRental replaces an existing rental.
func (s *Service) UpdateRental(ctx context.Context, id string, rental models.Rental) (models.Rental, error) {
	if _, err := s.store.GetRental(ctx, id); err != nil {
		return models.Rental{}, err
	}
	rental.ID = id
	if err := s.prepareRental(ctx, &rental); err != nil {
		return models.Rental{}, err
	}
	if err := s.store.SaveRental(ctx, rental); err != nil {
		return models.Rental{}, fmt.Errorf("save rental: %w", err)
	}
	return rental, nil
}

// GetRental loads one rental.
func (s *Service) GetRental(ctx context.Context, id string) (models.Rental, error) {
	return s.store.GetRental(ctx, id)
}

// ListRentals returns rentals matching the filter ordered by reference.
func (s *Service) ListRentals(ctx context.Context, filter models.RentalFilter) ([]models.Rental, error) {
	return s.store.ListRentals(ctx, filter)
}

// DeleteRental removes one rental.
func (s *Service) DeleteRental(ctx context.Context, id string) error {
	return s.store.DeleteRental(ctx, id)
}

// SetItems replaces the tenant or owner item list of a rental.
func (s *Service) SetItems(ctx context.Context, id string, side models.ItemSide, items []models.LineItem) (models.Rental, error) {
	if side != models.ItemSideTenant && side != models.ItemSideOwner {
		return models.Rental{}, fmt.Errorf("%w: unknown item side %q", ErrInvalidRental, side)
	}
	items, err := s.normalizeItems(items)
	if err != nil {
		return models.Rental{}, err
	}

	return s.modify(ctx, id, func(r *models.Rental) error {
		if side == models.ItemSideOwner {
			r.OwnerItems = items
		} else {
			r.OtherItems = items
		}
		return nil
	})
}

// MarkPaid sets whether the tenant has paid.
func (s *Service) MarkPaid(ctx context.Context, id string, paid bool) (models.Rental, error) {
	return s.modify(ctx, id, func(r *models.Rental) error {
		r.IsPaid = paid
		return nil
	})
}

// MarkTransferred sets whether the net amount was passed on to the owner. The paid flag
// is left alone.
func (s *Service) MarkTransferred(ctx context.Context, id string, transferred bool) (models.Rental, error) {
	return s.modify(ctx, id, func(r *models.Rental) error {
		if transferred && !r.IsPaid {
			s.logger.Warn("rental transferred before payment",
				zap.String("rental_id", r.ID),
				zap.String("ref", r.RefNumber),
			)
		}
		r.IsTransferred = transferred
		return nil
	})
}

func (s *Service) modify(ctx context.Context, id string, fn func(r *models.Rental) error) (models.Rental, error) {
	rental, err := s.store.GetRental(ctx, id)
	if err != nil {
		return models.Rental{}, err
	}
	if err := fn(&rental); err != nil {
		return models.Rental{}, err
	}
	if err := s.store.SaveRental(ctx, rental); err != nil {
		return models.Rental{}, fmt.Errorf("save rental %s: %w", id, err)
	}
	return rental, nil
}

func (s *Service) prepareRental(ctx context.Context, r *models.Rental) error {
	period, err := models.ParsePeriod(r.Month, r.Year)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRental, err)
	}
	r.Month, r.Year = period.Month, period.Year

	if err := validateRental(*r); err != nil {
		return err
	}

	if r.OwnerID != "" {
		owner, err := s.store.GetOwner(ctx, r.OwnerID)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: unknown owner %s", ErrInvalidRental, r.OwnerID)
		}
		if err != nil {
			return fmt.Errorf("load owner: %w", err)
		}
		r.OwnerName = owner.Name
	}

	if r.OtherItems, err = s.normalizeItems(r.OtherItems); err != nil {
		return err
	}
	if r.OwnerItems, err = s.normalizeItems(r.OwnerItems); err != nil {
		return err
	}
	return nil
}

// normalizeItems assigns ids to new items and never returns nil.
func (s *Service) normalizeItems(items []models.LineItem) ([]models.LineItem, error) {
	out := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		item.Description = strings.TrimSpace(item.Description)
		if item.Description == "" {
			return nil, fmt.Errorf("%w: item description is required", ErrInvalidRental)
		}
		if item.ID == "" {
			item.ID = s.newID()
		}
		out = append(out, item)
	}
	return out, nil
}

func validateOwner(o models.Owner) error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidOwner)
	}
	if !validRate(o.AdminFeePercentage) {
		return fmt.Errorf("%w: admin fee percentage must be between 0 and 100", ErrInvalidOwner)
	}
	return nil
}

func validateRental(r models.Rental) error {
	amounts := map[string]decimal.Decimal{
		"rentAmount": r.RentAmount,
		"waterBill":  r.WaterBill,
		"condoFee":   r.CondoFee,
		"iptu":       r.IPTU,
		"gasBill":    r.GasBill,
	}
	for field, amount := range amounts {
		if amount.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidRental, field)
		}
	}
	if r.DueDay < 1 || r.DueDay > 31 {
		return fmt.Errorf("%w: due day must be between 1 and 31", ErrInvalidRental)
	}
	if r.OwnerAdminFeePercentage != nil && !validRate(*r.OwnerAdminFeePercentage) {
		return fmt.Errorf("%w: admin fee percentage must be between 0 and 100", ErrInvalidRental)
	}
	if r.ContractDate != "" {
		if _, err := time.Parse(time.DateOnly, r.ContractDate); err != nil {
			return fmt.Errorf("%w: contract date must be YYYY-MM-DD", ErrInvalidRental)
		}
	}
	return nil
}

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}
