package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/champs/ledger"
)

// Engine owns current prices and produces next week's prices.
type Engine struct {
	src  Source
	walk Walk
}

func NewEngine(src Source, walk Walk) *Engine {
	if src == nil {
		src = NewSource(0)
	}
	if walk.Floor <= 0 {
		walk.Floor = DefaultFloor
	}
	return &Engine{src: src, walk: walk}
}

// CurrentPrice returns the stored price of symbol. ok is false when the
// symbol is unknown or has no usable price.
func (e *Engine) CurrentPrice(ctx context.Context, tx *ledger.Tx, symbol string) (price float64, ok bool, err error) {
	a, err := tx.GetAsset(ctx, symbol)
	if errors.Is(err, ledger.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return a.Price, a.Price > 0, nil
}

// Prices returns the current price of every asset keyed by symbol.
func (e *Engine) Prices(ctx context.Context, tx *ledger.Tx) (map[string]float64, error) {
	assets, err := tx.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	return PriceMap(assets), nil
}

// AddAsset inserts a new asset and records its price at the current week
// so it shows up in charts from the week it was introduced.
func (e *Engine) AddAsset(ctx context.Context, tx *ledger.Tx, a ledger.Asset) error {
	if a.Name == "" {
		a.Name = a.Symbol
	}
	if err := tx.InsertAsset(ctx, a); err != nil {
		return err
	}

	week, err := tx.CurrentWeek(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.AppendPricePoint(ctx, ledger.PricePoint{Symbol: a.Symbol, Week: week, Price: a.Price}); err != nil {
		return fmt.Errorf("seed history for %s: %w", a.Symbol, err)
	}
	return nil
}

// AdvancePrices moves every asset one step along the walk, stores the new
// prices and appends one history point per asset tagged with week.
func (e *Engine) AdvancePrices(ctx context.Context, tx *ledger.Tx, week int) ([]ledger.Asset, error) {
	assets, err := tx.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ledger.Asset, 0, len(assets))
	for _, a := range assets {
		a.Price = e.walk.Next(a.Price, e.src.Float64())

		if err := tx.SetPrice(ctx, a.Symbol, a.Price); err != nil {
			return nil, err
		}
		if _, err := tx.AppendPricePoint(ctx, ledger.PricePoint{Symbol: a.Symbol, Week: week, Price: a.Price}); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// PriceMap indexes asset prices by symbol.
func PriceMap(assets []ledger.Asset) map[string]float64 {
	m := make(map[string]float64, len(assets))
	for _, a := range assets {
		m[a.Symbol] = a.Price
	}
	return m
}
