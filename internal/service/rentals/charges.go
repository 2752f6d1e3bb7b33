package rentals

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/finance"
	"github.com/jobh/imoveis/internal/domain/models"
)

const (
	lateFeePrefix       = "multa 10%"
	lateFeeRentLabel    = "Multa 10% (Aluguel)"
	lateFeeChargesLabel = "Multa 10% (Encargos)"
)

var lateFeeRate = decimal.RequireFromString("0.10")

// LateFeeSelection picks the amounts a late fee is charged on.
type LateFeeSelection struct {
	Rent  bool `json:"rent"`
	Water bool `json:"water"`
	Condo bool `json:"condo"`
	IPTU  bool `json:"iptu"`
	Gas   bool `json:"gas"`
}

// RentAdjustment raises the rent by a percentage or by a fixed amount, exactly one of them.
type RentAdjustment struct {
	Percent *decimal.Decimal `json:"percent,omitempty"`
	Fixed   *decimal.Decimal `json:"fixed,omitempty"`
	Year    int              `json:"year,omitempty"`
}

// ApplyLateFee adds a 10% fine on the selected amounts as tenant items, one for the rent
// and one for the charges. Fines applied before are replaced.
func (s *Service) ApplyLateFee(ctx context.Context, id string, sel LateFeeSelection) (models.Rental, error) {
	return s.modify(ctx, id, func(r *models.Rental) error {
		var rentBase, chargesBase decimal.Decimal
		if sel.Rent && r.RentAmount.IsPositive() {
			rentBase = r.RentAmount
		}
		for _, c := range []struct {
			selected bool
			amount   decimal.Decimal
		}{
			{sel.Water, r.WaterBill},
			{sel.Condo, r.CondoFee},
			{sel.IPTU, r.IPTU},
			{sel.Gas, r.GasBill},
		} {
			if c.selected && c.amount.IsPositive() {
				chargesBase = chargesBase.Add(c.amount)
			}
		}
		if rentBase.IsZero() && chargesBase.IsZero() {
			return fmt.Errorf("%w: no positive amount selected for the late fee", ErrInvalidRental)
		}

		items := make([]models.LineItem, 0, len(r.OtherItems)+2)
		for _, item := range r.OtherItems {
			if !strings.HasPrefix(strings.ToLower(item.Description), lateFeePrefix) {
				items = append(items, item)
			}
		}
		if rentBase.IsPositive() {
			items = append(items, models.LineItem{
				ID:          s.newID(),
				Description: lateFeeRentLabel,
				Amount:      rentBase.Mul(lateFeeRate).Round(2),
			})
		}
		if chargesBase.IsPositive() {
			items = append(items, models.LineItem{
				ID:          s.newID(),
				Description: lateFeeChargesLabel,
				Amount:      chargesBase.Mul(lateFeeRate).Round(2),
			})
		}
		r.OtherItems = items

		s.logger.Info("late fee applied",
			zap.String("rental_id", r.ID),
			zap.String("rent_base", rentBase.String()),
			zap.String("charges_base", chargesBase.String()),
		)
		return nil
	})
}

// ApplyRentAdjustment raises the rent and records the year of the adjustment. The new rent
// description shows the applied percentage or amount.
func (s *Service) ApplyRentAdjustment(ctx context.Context, id string, adj RentAdjustment) (models.Rental, error) {
	if (adj.Percent == nil) == (adj.Fixed == nil) {
		return models.Rental{}, fmt.Errorf("%w: give either a percentage or a fixed amount", ErrInvalidRental)
	}

	return s.modify(ctx, id, func(r *models.Rental) error {
		var increase decimal.Decimal
		var label string
		switch {
		case adj.Percent != nil:
			if !adj.Percent.IsPositive() {
				return fmt.Errorf("%w: adjustment percentage must be positive", ErrInvalidRental)
			}
			increase = r.RentAmount.Mul(*adj.Percent).Div(hundred)
			label = fmt.Sprintf("Reajuste (%s%%)", strings.ReplaceAll(adj.Percent.String(), ".", ","))
		default:
			if !adj.Fixed.IsPositive() {
				return fmt.Errorf("%w: adjustment amount must be positive", ErrInvalidRental)
			}
			increase = *adj.Fixed
			label = fmt.Sprintf("Reajuste (%s)", finance.FormatBRL(increase))
		}

		year := adj.Year
		if year == 0 {
			year = r.Year
		}

		r.RentAmount = r.RentAmount.Add(increase)
		r.RentDescription = label
		r.LastAdjustmentYear = &year

		s.logger.Info("rent adjusted",
			zap.String("rental_id", r.ID),
			zap.String("increase", increase.String()),
			zap.Int("year", year),
		)
		return nil
	})
}
