package rentals

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/models"
)

// PeriodStatus splits the untransferred rentals of a period by collection state.
type PeriodStatus struct {
	Period             models.Period   `json:"period"`
	PaidNotTransferred []models.Rental `json:"paidNotTransferred"`
	Overdue            []models.Rental `json:"overdue"`
	Pending            []models.Rental `json:"pending"`
}

// OpenNextPeriod copies the rentals of a period into the following month with the
// payment flags cleared and no items. It returns the new period and how many rentals
// were created.
func (s *Service) OpenNextPeriod(ctx context.Context, from models.Period) (models.Period, int, error) {
	if !from.Valid() {
		return models.Period{}, 0, fmt.Errorf("%w: invalid period %s", ErrInvalidRental, from)
	}
	next := from.Next()

	existing, err := s.store.ListRentals(ctx, next.Filter())
	if err != nil {
		return models.Period{}, 0, fmt.Errorf("list rentals of %s: %w", next, err)
	}
	if len(existing) > 0 {
		return next, 0, fmt.Errorf("%w: %s", ErrPeriodExists, next)
	}

	current, err := s.store.ListRentals(ctx, from.Filter())
	if err != nil {
		return models.Period{}, 0, fmt.Errorf("list rentals of %s: %w", from, err)
	}
	if len(current) == 0 {
		return models.Period{}, 0, fmt.Errorf("%w: %s", ErrEmptyPeriod, from)
	}

	for _, r := range current {
		r.ID = s.newID()
		r.Month, r.Year = next.Month, next.Year
		r.IsPaid = false
		r.IsTransferred = false
		r.OtherItems = []models.LineItem{}
		r.OwnerItems = []models.LineItem{}
		if err := s.store.SaveRental(ctx, r); err != nil {
			return models.Period{}, 0, fmt.Errorf("save rental for %s: %w", next, err)
		}
	}

	s.logger.Info("period opened", zap.Stringer("from", from), zap.Stringer("period", next), zap.Int("rentals", len(current)))
	return next, len(current), nil
}

// DeletePeriod removes every rental of a month unless nothing would be left.
func (s *Service) DeletePeriod(ctx context.Context, p models.Period) (int64, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("%w: invalid period %s", ErrInvalidRental, p)
	}
	return s.deleteGuarded(ctx, p.Filter(), p.String())
}

// DeleteYear removes every rental of a year unless nothing would be left.
func (s *Service) DeleteYear(ctx context.Context, year int) (int64, error) {
	if year <= 0 {
		return 0, fmt.Errorf("%w: invalid year %d", ErrInvalidRental, year)
	}
	return s.deleteGuarded(ctx, models.RentalFilter{Year: year}, strconv.Itoa(year))
}

func (s *Service) deleteGuarded(ctx context.Context, filter models.RentalFilter, label string) (int64, error) {
	all, err := s.store.ListRentals(ctx, models.RentalFilter{})
	if err != nil {
		return 0, fmt.Errorf("list rentals: %w", err)
	}

	matching := 0
	for _, r := range all {
		if filter.Matches(r) {
			matching++
		}
	}
	if matching == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyPeriod, label)
	}
	if matching == len(all) {
		return 0, fmt.Errorf("%w: %s", ErrLastPeriod, label)
	}

	n, err := s.store.DeleteRentals(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete rentals of %s: %w", label, err)
	}
	s.logger.Info("rentals deleted", zap.String("scope", label), zap.Int64("count", n))
	return n, nil
}

// Periods lists the months holding rentals, oldest first.
func (s *Service) Periods(ctx context.Context) ([]models.Period, error) {
	all, err := s.store.ListRentals(ctx, models.RentalFilter{})
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}

	seen := make(map[models.Period]struct{})
	periods := make([]models.Period, 0)
	for _, r := range all {
		p := r.Period()
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		periods = append(periods, p)
	}

	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year < periods[j].Year
		}
		return models.MonthIndex(periods[i].Month) < models.MonthIndex(periods[j].Month)
	})
	return periods, nil
}

// Status classifies the untransferred rentals of a period: paid ones await transfer, unpaid
// ones are overdue when their due date is before today and pending otherwise.
func (s *Service) Status(ctx context.Context, p models.Period, today time.Time) (PeriodStatus, error) {
	rentals, err := s.store.ListRentals(ctx, p.Filter())
	if err != nil {
		return PeriodStatus{}, fmt.Errorf("list rentals of %s: %w", p, err)
	}

	loc := today.Location()
	y, m, d := today.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	status := PeriodStatus{
		Period:             p,
		PaidNotTransferred: []models.Rental{},
		Overdue:            []models.Rental{},
		Pending:            []models.Rental{},
	}
	for _, r := range rentals {
		switch {
		case r.IsTransferred:
			continue
		case r.IsPaid:
			status.PaidNotTransferred = append(status.PaidNotTransferred, r)
		case p.DueDate(r.DueDay, loc).Before(midnight):
			status.Overdue = append(status.Overdue, r)
		default:
			status.Pending = append(status.Pending, r)
		}
	}
	return status, nil
}

// PendingAdjustments returns the rentals of a period whose contract anniversary falls in
// the period's month and that were not adjusted in the period's year.
func (s *Service) PendingAdjustments(ctx context.Context, p models.Period) ([]models.Rental, error) {
	rentals, err := s.store.ListRentals(ctx, p.Filter())
	if err != nil {
		return nil, fmt.Errorf("list rentals of %s: %w", p, err)
	}

	month := models.MonthIndex(p.Month) + 1
	out := make([]models.Rental, 0)
	for _, r := range rentals {
		if contractMonth(r.ContractDate) != month {
			continue
		}
		if r.LastAdjustmentYear != nil && *r.LastAdjustmentYear == p.Year {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// contractMonth extracts the month of a YYYY-MM-DD date, or 0.
func contractMonth(date string) int {
	parts := strings.Split(date, "-")
	if len(parts) < 2 {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return m
}
