// Package moneyfmt renders contract amounts for email bodies.
package moneyfmt

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Missing is rendered for absent or non-finite amounts.
const Missing = "-"

// Format renders an amount with the currency symbol and locale-aware digit
// grouping, e.g. Format(&fee, "USD", "en", 0) -> "$1,200".
// Unknown locales fall back to English, unknown currency codes to USD.
func Format(amount *float64, currencyCode, locale string, fractionDigits int) string {
	if amount == nil || math.IsNaN(*amount) || math.IsInf(*amount, 0) {
		return Missing
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.USD
	}

	p := message.NewPrinter(tag)
	symbol := p.Sprintf("%v", currency.Symbol(unit))
	value := p.Sprintf("%v", number.Decimal(*amount,
		number.MinFractionDigits(fractionDigits),
		number.MaxFractionDigits(fractionDigits),
	))
	return symbol + value
}
