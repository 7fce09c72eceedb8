package sim

import (
	"context"
	"fmt"

	"github.com/rustyeddy/champs/ledger"
	"github.com/rustyeddy/champs/portfolio"
)

func (e *Engine) CurrentWeek(ctx context.Context) (week int, err error) {
	err = e.store.View(ctx, func(tx *ledger.Tx) error {
		week, err = tx.CurrentWeek(ctx)
		return err
	})
	return week, err
}

func (e *Engine) Assets(ctx context.Context) (assets []ledger.Asset, err error) {
	err = e.store.View(ctx, func(tx *ledger.Tx) error {
		assets, err = tx.ListAssets(ctx)
		return err
	})
	return assets, err
}

// Leaderboard values every student at current prices, best first.
// Students, holdings and prices are read in one transaction.
func (e *Engine) Leaderboard(ctx context.Context) ([]portfolio.Valuation, error) {
	var vs []portfolio.Valuation
	err := e.store.View(ctx, func(tx *ledger.Tx) error {
		students, err := tx.ListStudents(ctx)
		if err != nil {
			return err
		}
		holdings, err := tx.ListHoldings(ctx, 0)
		if err != nil {
			return err
		}
		prices, err := e.prices.Prices(ctx, tx)
		if err != nil {
			return err
		}
		vs = portfolio.ValuateAll(students, holdings, prices)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return portfolio.Rank(vs), nil
}

// Student values a single student at current prices.
func (e *Engine) Student(ctx context.Context, studentID int64) (portfolio.Valuation, error) {
	var v portfolio.Valuation
	err := e.store.View(ctx, func(tx *ledger.Tx) error {
		st, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return err
		}
		holdings, err := tx.ListHoldings(ctx, studentID)
		if err != nil {
			return err
		}
		prices, err := e.prices.Prices(ctx, tx)
		if err != nil {
			return err
		}
		v = portfolio.ValuateStudent(st, holdings, prices)
		return nil
	})
	return v, err
}

// Snapshots returns every weekly snapshot, oldest week first.
func (e *Engine) Snapshots(ctx context.Context) (snaps []ledger.Snapshot, err error) {
	err = e.store.View(ctx, func(tx *ledger.Tx) error {
		snaps, err = tx.ListSnapshots(ctx)
		return err
	})
	return snaps, err
}

// MarketHistory returns every recorded asset price, oldest week first.
func (e *Engine) MarketHistory(ctx context.Context) (points []ledger.PricePoint, err error) {
	err = e.store.View(ctx, func(tx *ledger.Tx) error {
		points, err = tx.ListPriceHistory(ctx)
		return err
	})
	return points, err
}
