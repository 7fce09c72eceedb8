package sim

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/champs/ledger"
)

// Balance arithmetic goes through decimal so that moving x out of a
// balance and back restores it exactly.

func addMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

func subMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).InexactFloat64()
}

// proceedsPlaces bounds the precision of a sale. A lot's amount is
// euros/price rounded to a float64, so amount*price lands within 1e-15
// relative of the euros spent; rounding to 8 places recovers them exactly.
const proceedsPlaces = 8

// saleProceeds is amount*price rounded to proceedsPlaces.
func saleProceeds(amount, price float64) float64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(price)).
		Round(proceedsPlaces).
		InexactFloat64()
}

func requirePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive amount, got %v", ledger.ErrInvalidInput, field, v)
	}
	return nil
}
