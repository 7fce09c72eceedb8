package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a student, holding or asset does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks requests or rows that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateSymbol is returned by InsertAsset when the symbol is taken.
	ErrDuplicateSymbol = fmt.Errorf("%w: duplicate symbol", ErrInvalidInput)

	// ErrMalformedRow is returned when a stored row fails validation. It is
	// a storage fault, not a caller mistake.
	ErrMalformedRow = errors.New("malformed row")
)

func malformed(kind string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedRow, kind, err)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
