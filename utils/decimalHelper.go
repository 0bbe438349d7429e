package utils

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Monetary values are stored at 4 decimal places and displayed at 2.
const (
	StoragePrecision  = 4
	CurrencyPrecision = 2
)

var decimalOneHundred = decimal.NewFromInt(100)

// RoundStorage rounds to the stored decimal(20,4) precision.
func RoundStorage(d decimal.Decimal) decimal.Decimal {
	return d.Round(StoragePrecision)
}

// RoundCurrency rounds to the display precision.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPrecision)
}

// PercentageOf returns base * rate / 100 at storage precision.
func PercentageOf(base decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).DivRound(decimalOneHundred, StoragePrecision)
}

// ShareOfTotal returns part / total * 100 at display precision, zero when the
// total is zero.
func ShareOfTotal(part decimal.Decimal, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(decimalOneHundred).DivRound(total, CurrencyPrecision)
}

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	return dec, nil
}

// SafeUnitValue divides a total by a quantity, zero when the quantity is zero.
func SafeUnitValue(total decimal.Decimal, qty decimal.Decimal) decimal.Decimal {
	if qty.IsZero() {
		return decimal.Zero
	}
	return total.DivRound(qty, StoragePrecision)
}
