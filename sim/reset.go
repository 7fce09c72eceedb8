package sim

import (
	"context"
	"fmt"

	"github.com/rustyeddy/champs/ledger"
)

// Reset wipes students, holdings and history, restores the default assets
// at their starting prices, sets the week to 0 and creates the demo
// student. Assets added later keep their current price.
func (e *Engine) Reset(ctx context.Context) error {
	err := e.update(ctx, "reset", func(tx *ledger.Tx) (Event, error) {
		if err := tx.Clear(ctx); err != nil {
			return Event{}, err
		}
		if err := tx.SetCurrentWeek(ctx, 0); err != nil {
			return Event{}, err
		}

		start := make(map[string]float64, len(e.params.Assets))
		for _, a := range e.params.Assets {
			if err := tx.UpsertAsset(ctx, a); err != nil {
				return Event{}, err
			}
			if _, err := tx.AppendPricePoint(ctx, ledger.PricePoint{Symbol: a.Symbol, Week: 0, Price: a.Price}); err != nil {
				return Event{}, err
			}
			start[a.Symbol] = a.Price
		}

		if err := e.createDemo(ctx, tx, start); err != nil {
			return Event{}, err
		}
		return Event{Kind: KindReset}, nil
	})
	if err != nil {
		return err
	}

	e.log.Info("championship reset", "assets", len(e.params.Assets), "demo", e.params.Demo.Name)
	return nil
}

func (e *Engine) createDemo(ctx context.Context, tx *ledger.Tx, start map[string]float64) error {
	demo := e.params.Demo
	if demo.Name == "" {
		return nil
	}

	studentID, err := tx.CreateStudent(ctx, ledger.Student{
		Name:        demo.Name,
		Color:       demo.Color,
		CashBalance: demo.Cash,
		BankBalance: demo.Bank,
	})
	if err != nil {
		return err
	}

	for _, h := range demo.Holdings {
		price, ok := start[h.Symbol]
		if !ok {
			a, err := tx.GetAsset(ctx, h.Symbol)
			if err != nil {
				return fmt.Errorf("demo holding: %w", err)
			}
			price = a.Price
		}
		if _, err := tx.CreateHolding(ctx, ledger.Holding{
			StudentID: studentID,
			Symbol:    h.Symbol,
			Amount:    h.Euros / price,
			CostBasis: h.Euros,
		}); err != nil {
			return err
		}
	}
	return nil
}
