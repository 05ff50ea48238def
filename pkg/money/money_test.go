package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaiseFromDecimal(t *testing.T) {
	paise, err := PaiseFromDecimal(decimal.RequireFromString("350"))
	require.NoError(t, err)
	assert.Equal(t, int64(35000), paise)

	paise, err = PaiseFromDecimal(decimal.RequireFromString("333.33"))
	require.NoError(t, err)
	assert.Equal(t, int64(33333), paise)

	paise, err = PaiseFromDecimal(decimal.RequireFromString("0"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), paise)
}

func TestPaiseFromDecimalRejectsSubPaise(t *testing.T) {
	_, err := PaiseFromDecimal(decimal.RequireFromString("10.001"))
	require.Error(t, err)
}

func TestDecimalFromPaiseRoundTrip(t *testing.T) {
	d := DecimalFromPaise(33333)
	assert.Equal(t, "333.33", d.StringFixed(2))

	paise, err := PaiseFromDecimal(d)
	require.NoError(t, err)
	assert.Equal(t, int64(33333), paise)
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "350", FormatRupees(35000))
	assert.Equal(t, "333.33", FormatRupees(33333))
	assert.Equal(t, "0", FormatRupees(0))
}
