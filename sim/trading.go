package sim

import (
	"context"
	"fmt"

	"github.com/rustyeddy/champs/ledger"
)

// Buy spends euros of the student's cash on a new lot of symbol at the
// current price.
func (e *Engine) Buy(ctx context.Context, studentID int64, symbol string, euros float64) (ledger.Holding, error) {
	if err := requirePositive("amountInEuro", euros); err != nil {
		return ledger.Holding{}, err
	}

	var lot ledger.Holding
	err := e.update(ctx, "buy", func(tx *ledger.Tx) (Event, error) {
		st, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return Event{}, err
		}
		if euros > st.CashBalance {
			return Event{}, fmt.Errorf("buy €%.2f of %s with €%.2f cash: %w", euros, symbol, st.CashBalance, ErrInsufficientFunds)
		}

		price, ok, err := e.prices.CurrentPrice(ctx, tx, symbol)
		if err != nil {
			return Event{}, err
		}
		if !ok {
			return Event{}, fmt.Errorf("buy %q: %w", symbol, ErrInvalidSymbol)
		}

		if err := tx.SetBalances(ctx, st.ID, subMoney(st.CashBalance, euros), st.BankBalance); err != nil {
			return Event{}, err
		}

		lot = ledger.Holding{
			StudentID: st.ID,
			Symbol:    symbol,
			Amount:    euros / price,
			CostBasis: euros,
		}
		lot.ID, err = tx.CreateHolding(ctx, lot)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindBought, StudentID: st.ID, Symbol: symbol}, nil
	})
	if err != nil {
		return ledger.Holding{}, err
	}
	return lot, nil
}

// Sell closes a whole lot at the current price and credits the proceeds
// to cash. It returns the proceeds.
func (e *Engine) Sell(ctx context.Context, studentID, holdingID int64) (float64, error) {
	var proceeds float64
	err := e.update(ctx, "sell", func(tx *ledger.Tx) (Event, error) {
		lot, err := tx.GetHolding(ctx, holdingID, studentID)
		if err != nil {
			return Event{}, err
		}
		st, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return Event{}, err
		}

		price, ok, err := e.prices.CurrentPrice(ctx, tx, lot.Symbol)
		if err != nil {
			return Event{}, err
		}
		if !ok {
			return Event{}, fmt.Errorf("sell holding %d: %w", lot.ID, ErrInvalidSymbol)
		}

		proceeds = saleProceeds(lot.Amount, price)
		if err := tx.SetBalances(ctx, st.ID, addMoney(st.CashBalance, proceeds), st.BankBalance); err != nil {
			return Event{}, err
		}
		if err := tx.DeleteHolding(ctx, lot.ID); err != nil {
			return Event{}, err
		}
		return Event{Kind: KindSold, StudentID: st.ID, Symbol: lot.Symbol}, nil
	})
	if err != nil {
		return 0, err
	}
	return proceeds, nil
}

// Deposit moves amount from cash into the bank.
func (e *Engine) Deposit(ctx context.Context, studentID int64, amount float64) error {
	if err := requirePositive("amount", amount); err != nil {
		return err
	}

	return e.update(ctx, "deposit", func(tx *ledger.Tx) (Event, error) {
		st, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return Event{}, err
		}
		if amount > st.CashBalance {
			return Event{}, fmt.Errorf("deposit €%.2f with €%.2f cash: %w", amount, st.CashBalance, ErrInsufficientFunds)
		}

		cash := subMoney(st.CashBalance, amount)
		bank := addMoney(st.BankBalance, amount)
		if err := tx.SetBalances(ctx, st.ID, cash, bank); err != nil {
			return Event{}, err
		}
		return Event{Kind: KindDeposited, StudentID: st.ID}, nil
	})
}

// Withdraw moves amount from the bank back into cash.
func (e *Engine) Withdraw(ctx context.Context, studentID int64, amount float64) error {
	if err := requirePositive("amount", amount); err != nil {
		return err
	}

	return e.update(ctx, "withdraw", func(tx *ledger.Tx) (Event, error) {
		st, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return Event{}, err
		}
		if amount > st.BankBalance {
			return Event{}, fmt.Errorf("withdraw €%.2f with €%.2f in bank: %w", amount, st.BankBalance, ErrInsufficientBankFunds)
		}

		cash := addMoney(st.CashBalance, amount)
		bank := subMoney(st.BankBalance, amount)
		if err := tx.SetBalances(ctx, st.ID, cash, bank); err != nil {
			return Event{}, err
		}
		return Event{Kind: KindWithdrawn, StudentID: st.ID}, nil
	})
}
