// Package sim runs the championship: trading, banking, week advancement
// and reset. Every mutation is one ledger transaction.
package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rustyeddy/champs/internal/id"
	"github.com/rustyeddy/champs/ledger"
	"github.com/rustyeddy/champs/pricing"
)

// Params are the championship rules.
type Params struct {
	StartingCash float64
	BankInterest float64 // weekly rate, 0.03 = 3%
	DefaultColor string

	// Assets and Demo describe the state Reset restores.
	Assets []ledger.Asset
	Demo   DemoStudent
}

// DemoStudent is created by Reset. An empty Name skips it.
type DemoStudent struct {
	Name     string
	Color    string
	Cash     float64
	Bank     float64
	Holdings []DemoHolding
}

// DemoHolding is a lot bought for Euros at the asset's starting price.
type DemoHolding struct {
	Symbol string
	Euros  float64
}

func DefaultParams() Params {
	return Params{
		StartingCash: 1000,
		BankInterest: 0.03,
		DefaultColor: "#94a3b8",
		Assets:       ledger.DefaultAssets(),
		Demo: DemoStudent{
			Name:  "Joan Byers",
			Color: "#94a3b8",
			Cash:  0,
			Bank:  400,
			Holdings: []DemoHolding{
				{Symbol: "BTC-EUR", Euros: 300},
				{Symbol: "ETH-EUR", Euros: 300},
			},
		},
	}
}

// Engine serializes all writes to the ledger. Reads go straight to the
// store in their own transaction.
type Engine struct {
	mu     sync.Mutex
	store  *ledger.Store
	prices *pricing.Engine
	params Params
	log    *slog.Logger
	now    func() time.Time
	events *bus
}

func NewEngine(store *ledger.Store, prices *pricing.Engine, params Params, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		prices: prices,
		params: params,
		log:    logger,
		now:    time.Now,
		events: newBus(),
	}
}

// SetClock replaces the time source used for snapshot timestamps and events.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// Subscribe returns a channel receiving an Event after every committed
// mutation. Call cancel to stop receiving; it closes the channel.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	return e.events.subscribe(buffer)
}

// update runs fn as one ledger transaction under the writer lock and
// publishes the returned event once it has committed. Event IDs are minted
// before the lock is released, so they sort in commit order.
func (e *Engine) update(ctx context.Context, op string, fn func(tx *ledger.Tx) (Event, error)) error {
	e.mu.Lock()
	var ev Event
	err := e.store.Update(ctx, func(tx *ledger.Tx) error {
		var err error
		ev, err = fn(tx)
		return err
	})
	if err == nil {
		now := e.now()
		ev.ID = id.At(now)
		ev.At = now
		e.events.publish(ev)
	}
	e.mu.Unlock()

	if err != nil {
		if IsRejection(err) {
			e.log.Debug("operation rejected", "op", op, "err", err)
		} else {
			e.log.Error("operation failed", "op", op, "err", err)
		}
		return err
	}
	return nil
}
