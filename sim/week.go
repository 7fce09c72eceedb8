package sim

import (
	"context"

	"github.com/rustyeddy/champs/ledger"
	"github.com/rustyeddy/champs/portfolio"
	"github.com/rustyeddy/champs/pricing"
)

// AdvanceWeek ends the current week and returns the new week number.
//
// Within one transaction it reprices every asset (history tagged with the
// new week), pays bank interest, and snapshots every student valued at the
// new prices and post-interest balances. Snapshots are tagged with the
// week that just ended, one less than the price history tag. The counter
// is written last so a failure anywhere leaves the week unchanged.
func (e *Engine) AdvanceWeek(ctx context.Context) (int, error) {
	var (
		next      int
		repriced  int
		snapshots int
	)

	err := e.update(ctx, "advance week", func(tx *ledger.Tx) (Event, error) {
		week, err := tx.CurrentWeek(ctx)
		if err != nil {
			return Event{}, err
		}
		next = week + 1

		assets, err := e.prices.AdvancePrices(ctx, tx, next)
		if err != nil {
			return Event{}, err
		}
		repriced = len(assets)

		if err := tx.ApplyBankInterest(ctx, 1+e.params.BankInterest); err != nil {
			return Event{}, err
		}

		students, err := tx.ListStudents(ctx)
		if err != nil {
			return Event{}, err
		}
		holdings, err := tx.ListHoldings(ctx, 0)
		if err != nil {
			return Event{}, err
		}

		now := e.now()
		for _, v := range portfolio.ValuateAll(students, holdings, pricing.PriceMap(assets)) {
			if _, err := tx.AppendSnapshot(ctx, ledger.Snapshot{
				StudentID:  v.ID,
				Week:       week,
				TotalValue: v.TotalValue,
				ProfitLoss: v.ProfitLoss,
				Timestamp:  now,
			}); err != nil {
				return Event{}, err
			}
		}
		snapshots = len(students)

		if err := tx.SetCurrentWeek(ctx, next); err != nil {
			return Event{}, err
		}
		return Event{Kind: KindWeekAdvanced, Week: next}, nil
	})
	if err != nil {
		return 0, err
	}

	e.log.Info("week advanced", "week", next, "assets", repriced, "snapshots", snapshots)
	return next, nil
}
