package reporting

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jobh/imoveis/internal/domain/finance"
	"github.com/jobh/imoveis/internal/domain/models"
)

// MonthlyTotals is the dashboard summary of one month of a year.
type MonthlyTotals struct {
	Period models.Period   `json:"period"`
	Totals finance.Summary `json:"totals"`
}

// YearTotals summarizes every month of the year that has rentals, in calendar order.
func (s *Service) YearTotals(ctx context.Context, year int) ([]MonthlyTotals, error) {
	rentals, owners, err := s.load(ctx, models.RentalFilter{Year: year})
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string][]models.Rental)
	for _, r := range rentals {
		byMonth[r.Month] = append(byMonth[r.Month], r)
	}

	out := make([]MonthlyTotals, 0, len(byMonth))
	for _, month := range models.Months {
		monthRentals, ok := byMonth[month]
		if !ok {
			continue
		}
		out = append(out, MonthlyTotals{
			Period: models.Period{Month: month, Year: year},
			Totals: finance.Summarize(monthRentals, owners),
		})
	}
	return out, nil
}

// YearChart renders a PNG bar chart of the amounts received per month of the year.
func (s *Service) YearChart(ctx context.Context, year int) ([]byte, error) {
	months, err := s.YearTotals(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(months) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoRentals, year)
	}
	return renderYearChart(year, months)
}

func renderYearChart(year int, months []MonthlyTotals) ([]byte, error) {
	bars := make([]chart.Value, 0, len(months))
	top := 1.0
	for _, m := range months {
		v := m.Totals.TotalPaid.Round(2).InexactFloat64()
		if v > top {
			top = v
		}
		bars = append(bars, chart.Value{
			Label: periodTag(m.Period.Month, m.Period.Year),
			Value: v,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("003366"),
				StrokeColor: drawing.ColorFromHex("003366"),
			},
		})
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("Recebido por mês - %d", year),
		Width:      1000,
		Height:     400,
		BarWidth:   50,
		BarSpacing: 20,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("R$ %.0fk", f/1000)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
