package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyFormatter renders amounts in a fixed currency and locale.
type MoneyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewMoneyFormatter builds a formatter for an ISO 4217 code and a BCP 47 locale.
func NewMoneyFormatter(code, locale string) (*MoneyFormatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &MoneyFormatter{unit: unit, printer: message.NewPrinter(tag)}, nil
}

// Currency returns the ISO code.
func (f *MoneyFormatter) Currency() string {
	return f.unit.String()
}

// Format renders amount with the currency symbol.
func (f *MoneyFormatter) Format(amount decimal.Decimal) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(amount.Round(MoneyScale).InexactFloat64())))
}
