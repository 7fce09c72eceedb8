package sim

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/champs/ledger"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientBankFunds is returned when a withdrawal exceeds the
	// bank balance. It matches ErrInsufficientFunds.
	ErrInsufficientBankFunds = fmt.Errorf("%w in bank", ErrInsufficientFunds)

	// ErrInvalidSymbol is returned when the symbol is unknown or has no price.
	ErrInvalidSymbol = fmt.Errorf("%w: invalid symbol or price unavailable", ledger.ErrInvalidInput)
)

// IsRejection reports whether err is a validation outcome (unknown entity,
// insufficient funds, invalid input) rather than an internal failure.
// Rejections never leave a partial effect behind.
func IsRejection(err error) bool {
	return errors.Is(err, ledger.ErrNotFound) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ledger.ErrInvalidInput)
}
