package finance

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as Brazilian reais, e.g. "R$ 1.234,50" or "-R$ 10,00".
// Rounding to cents happens here and nowhere else.
func FormatBRL(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		return "-" + brl.Sprintf("R$ %.2f", rounded.Neg().InexactFloat64())
	}
	return brl.Sprintf("R$ %.2f", rounded.InexactFloat64())
}

// FormatPercent renders a rate such as 10 or 7.5 without trailing zeros.
func FormatPercent(rate decimal.Decimal) string {
	return rate.String() + "%"
}
