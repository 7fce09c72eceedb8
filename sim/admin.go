package sim

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/champs/ledger"
)

// AddStudent enrolls a student with the starting cash and an empty bank.
// An empty color falls back to Params.DefaultColor.
func (e *Engine) AddStudent(ctx context.Context, name, color string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: name is required", ledger.ErrInvalidInput)
	}
	if strings.TrimSpace(color) == "" {
		color = e.params.DefaultColor
	}

	var studentID int64
	err := e.update(ctx, "add student", func(tx *ledger.Tx) (Event, error) {
		var err error
		studentID, err = tx.CreateStudent(ctx, ledger.Student{
			Name:        name,
			Color:       color,
			CashBalance: e.params.StartingCash,
		})
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindStudentAdded, StudentID: studentID}, nil
	})
	if err != nil {
		return 0, err
	}
	return studentID, nil
}

// AddAsset lists a new tradable asset. The name defaults to the symbol.
func (e *Engine) AddAsset(ctx context.Context, symbol, name string, price float64) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", ledger.ErrInvalidInput)
	}
	if err := requirePositive("price", price); err != nil {
		return err
	}

	return e.update(ctx, "add asset", func(tx *ledger.Tx) (Event, error) {
		a := ledger.Asset{Symbol: symbol, Name: strings.TrimSpace(name), Price: price}
		if err := e.prices.AddAsset(ctx, tx, a); err != nil {
			return Event{}, err
		}
		return Event{Kind: KindAssetAdded, Symbol: symbol}, nil
	})
}
