package money

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/abhinavece/matchpay-backend/pkg/errors"
)

var paisePerRupee = decimal.NewFromInt(100)

// PaiseFromDecimal converts a rupee amount into integer paise.
// Amounts with more than two decimal places are rejected rather than rounded.
func PaiseFromDecimal(amount decimal.Decimal) (int64, error) {
	if amount.Exponent() < -2 {
		if !amount.Equal(amount.Round(2)) {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount has sub-paise precision")
		}
	}
	return amount.Mul(paisePerRupee).Round(0).IntPart(), nil
}

// DecimalFromPaise converts integer paise back into a rupee amount.
func DecimalFromPaise(paise int64) decimal.Decimal {
	return decimal.NewFromInt(paise).Div(paisePerRupee)
}

// FormatRupees renders paise as a plain rupee string for message templates.
func FormatRupees(paise int64) string {
	d := DecimalFromPaise(paise)
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}
