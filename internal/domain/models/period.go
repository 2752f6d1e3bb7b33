package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Months lists the month names used to label rental periods, in calendar order.
var Months = []string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthIndex returns the zero-based position of a month name, or -1 when unknown.
// Matching ignores case so "março" and "MARÇO" resolve like "Março".
func MonthIndex(name string) int {
	for i, m := range Months {
		if strings.EqualFold(m, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// Period identifies a billing month.
type Period struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: Months[int(t.Month())-1], Year: t.Year()}
}

// ParsePeriod builds a period from a month name (or 1-12 number) and a year.
func ParsePeriod(month string, year int) (Period, error) {
	idx := MonthIndex(month)
	if idx < 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(month)); err == nil && n >= 1 && n <= 12 {
			idx = n - 1
		}
	}
	if idx < 0 {
		return Period{}, fmt.Errorf("unknown month %q", month)
	}
	if year <= 0 {
		return Period{}, fmt.Errorf("invalid year %d", year)
	}
	return Period{Month: Months[idx], Year: year}, nil
}

// Valid reports whether the period names a known month and a positive year.
func (p Period) Valid() bool {
	return MonthIndex(p.Month) >= 0 && p.Year > 0
}

// Next returns the following month, rolling December into January.
func (p Period) Next() Period {
	idx := MonthIndex(p.Month)
	if idx == len(Months)-1 {
		return Period{Month: Months[0], Year: p.Year + 1}
	}
	return Period{Month: Months[idx+1], Year: p.Year}
}

// DueDate returns the calendar date of the given day inside the period.
func (p Period) DueDate(day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(p.Year, time.Month(MonthIndex(p.Month)+1), day, 0, 0, 0, 0, loc)
}

// Filter returns a rental filter selecting the period.
func (p Period) Filter() RentalFilter {
	return RentalFilter{Month: p.Month, Year: p.Year}
}

func (p Period) String() string {
	return fmt.Sprintf("%s/%d", p.Month, p.Year)
}
