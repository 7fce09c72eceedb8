package sim

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rustyeddy/champs/ledger"
	"github.com/rustyeddy/champs/pricing"
)

func TestBuyScenario(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()
	ada := env.addStudent(t, "Ada")

	lot, err := env.engine.Buy(ctx, ada, "BTC-EUR", 100)
	require.NoError(t, err)
	assert.NotZero(t, lot.ID)
	assert.Equal(t, 1.0, lot.Amount)
	assert.Equal(t, 100.0, lot.CostBasis)

	assert.Equal(t, 900.0, env.student(t, ada).CashBalance)
	hs := env.holdings(t, ada)
	require.Len(t, hs, 1)
	assert.Equal(t, lot, hs[0])

	v, err := env.engine.Student(ctx, ada)
	require.NoError(t, err)
	assert.Equal(t, 100.0, v.InvestmentValue)
	assert.Equal(t, 1000.0, v.TotalValue)
	assert.Equal(t, 0.0, v.ProfitLoss)
}

func TestBuyEachCreatesALot(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()
	ada := env.addStudent(t, "Ada")

	for i := 0; i < 3; i++ {
		_, err := env.engine.Buy(ctx, ada, "BTC-EUR", 50)
		require.NoError(t, err)
	}
	assert.Len(t, env.holdings(t, ada), 3)
	assert.Equal(t, 850.0, env.student(t, ada).CashBalance)
}

func TestBuyRejected(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ada := env.addStudent(t, "Ada")

	tests := []struct {
		name    string
		student int64
		symbol  string
		euros   float64
		wantErr error
	}{
		{"unknown student", 999, "BTC-EUR", 10, ledger.ErrNotFound},
		{"unknown student checked before funds", 999, "BTC-EUR", 5000, ledger.ErrNotFound},
		{"more than cash", ada, "BTC-EUR", 1000.01, ErrInsufficientFunds},
		{"funds checked before symbol", ada, "NOPE", 5000, ErrInsufficientFunds},
		{"unknown symbol", ada, "NOPE", 10, ErrInvalidSymbol},
		{"zero amount", ada, "BTC-EUR", 0, ledger.ErrInvalidInput},
		{"negative amount", ada, "BTC-EUR", -10, ledger.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.Buy(context.Background(), tt.student, tt.symbol, tt.euros)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsRejection(err))

			assert.Equal(t, 1000.0, env.student(t, ada).CashBalance)
			assert.Empty(t, env.holdings(t, ada))
		})
	}
}

func TestBuySellRoundTrip(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, []ledger.Asset{{Symbol: "DOGE-EUR", Name: "Dogecoin", Price: 0.35}})
	ctx := context.Background()
	ada := env.addStudent(t, "Ada")

	lot, err := env.engine.Buy(ctx, ada, "DOGE-EUR", 123.45)
	require.NoError(t, err)

	proceeds, err := env.engine.Sell(ctx, ada, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 123.45, proceeds)
	assert.Equal(t, 1000.0, env.student(t, ada).CashBalance)
	assert.Empty(t, env.holdings(t, ada))

	_, err = env.engine.Sell(ctx, ada, lot.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSellAtNewPrice(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly(), 0)
	ctx := context.Background()
	ada := env.addStudent(t, "Ada")

	lot, err := env.engine.Buy(ctx, ada, "BTC-EUR", 200)
	require.NoError(t, err)
	_, err = env.engine.AdvanceWeek(ctx)
	require.NoError(t, err)

	proceeds, err := env.engine.Sell(ctx, ada, lot.ID)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, proceeds, 1e-9)
	assert.InDelta(t, 980.0, env.student(t, ada).CashBalance, 1e-9)
}

func TestSellOthersLot(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()
	ada := env.addStudent(t, "Ada")
	bob := env.addStudent(t, "Bob")

	lot, err := env.engine.Buy(ctx, ada, "BTC-EUR", 100)
	require.NoError(t, err)

	_, err = env.engine.Sell(ctx, bob, lot.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.Len(t, env.holdings(t, ada), 1)
	assert.Equal(t, 1000.0, env.student(t, bob).CashBalance)
}

func TestDepositWithdraw(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()
	ada := env.addStudent(t, "Ada")

	require.NoError(t, env.engine.Deposit(ctx, ada, 0.1))
	require.NoError(t, env.engine.Deposit(ctx, ada, 0.2))
	st := env.student(t, ada)
	assert.Equal(t, 999.7, st.CashBalance)
	assert.Equal(t, 0.3, st.BankBalance)

	require.NoError(t, env.engine.Withdraw(ctx, ada, 0.3))
	st = env.student(t, ada)
	assert.Equal(t, 1000.0, st.CashBalance)
	assert.Equal(t, 0.0, st.BankBalance)
}

func TestDepositInsufficientFunds(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()
	ada := env.addStudent(t, "Ada")
	_, err := env.engine.Buy(ctx, ada, "BTC-EUR", 500)
	require.NoError(t, err)

	err = env.engine.Deposit(ctx, ada, 1000)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	st := env.student(t, ada)
	assert.Equal(t, 500.0, st.CashBalance)
	assert.Equal(t, 0.0, st.BankBalance)

	err = env.engine.Deposit(ctx, 404, 1)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestWithdrawInsufficientBankFunds(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()
	ada := env.addStudent(t, "Ada")
	require.NoError(t, env.engine.Deposit(ctx, ada, 100))

	err := env.engine.Withdraw(ctx, ada, 100.5)
	assert.ErrorIs(t, err, ErrInsufficientBankFunds)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	st := env.student(t, ada)
	assert.Equal(t, 900.0, st.CashBalance)
	assert.Equal(t, 100.0, st.BankBalance)
}

func TestBankRoundTripProperty(t *testing.T) {
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		id, err := env.engine.AddStudent(ctx, "Prop", "")
		if err != nil {
			rt.Fatal(err)
		}
		x := float64(rapid.IntRange(1, 100000).Draw(rt, "cents")) / 100

		if err := env.engine.Deposit(ctx, id, x); err != nil {
			rt.Fatal(err)
		}
		if err := env.engine.Withdraw(ctx, id, x); err != nil {
			rt.Fatal(err)
		}

		st := env.student(t, id)
		if st.CashBalance != 1000 || st.BankBalance != 0 {
			rt.Fatalf("round trip of %v left cash=%v bank=%v", x, st.CashBalance, st.BankBalance)
		}
	})
}

// Selling a lot at the price it was bought at gives back exactly the euros
// spent, so the student can still spend their whole balance afterwards.
func TestBuySellRoundTripProperty(t *testing.T) {
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()
	n := 0

	rapid.Check(t, func(rt *rapid.T) {
		n++
		symbol := fmt.Sprintf("C%d-EUR", n)
		price := rapid.Float64Range(0.001, 10000).Draw(rt, "price")
		euros := float64(rapid.IntRange(1, 100000).Draw(rt, "cents")) / 100

		if err := env.engine.AddAsset(ctx, symbol, "", price); err != nil {
			rt.Fatal(err)
		}
		id, err := env.engine.AddStudent(ctx, "Prop", "")
		if err != nil {
			rt.Fatal(err)
		}

		lot, err := env.engine.Buy(ctx, id, symbol, euros)
		if err != nil {
			rt.Fatal(err)
		}
		proceeds, err := env.engine.Sell(ctx, id, lot.ID)
		if err != nil {
			rt.Fatal(err)
		}
		if proceeds != euros {
			rt.Fatalf("price=%v euros=%v proceeds=%v", price, euros, proceeds)
		}
		if cash := env.student(t, id).CashBalance; cash != 1000 {
			rt.Fatalf("price=%v euros=%v cash=%v", price, euros, cash)
		}
		if _, err := env.engine.Buy(ctx, id, symbol, 1000); err != nil {
			rt.Fatalf("full balance no longer spendable: %v", err)
		}
	})
}

// Balances stay non-negative and the week moves by exactly one per advance
// whatever sequence of operations is applied.
func TestOperationSequenceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store, err := ledger.Open(":memory:")
		if err != nil {
			rt.Fatal(err)
		}
		defer store.Close()
		ctx := context.Background()
		if err := store.Init(ctx, ledger.DefaultAssets()); err != nil {
			rt.Fatal(err)
		}

		seed := rapid.Int64().Draw(rt, "seed")
		e := NewEngine(store, pricing.NewEngine(pricing.NewSource(seed), pricing.DefaultWalk()), DefaultParams(), nil)

		var students []int64
		for i := 0; i < rapid.IntRange(1, 3).Draw(rt, "students"); i++ {
			id, err := e.AddStudent(ctx, "S", "")
			if err != nil {
				rt.Fatal(err)
			}
			students = append(students, id)
		}
		symbols := []string{"BTC-EUR", "ETH-EUR", "DOGE-EUR", "MISSING"}

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			who := rapid.SampledFrom(students).Draw(rt, "who")
			amount := rapid.Float64Range(0.01, 1500).Draw(rt, "amount")

			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				_, err = e.Buy(ctx, who, rapid.SampledFrom(symbols).Draw(rt, "symbol"), amount)
			case 1:
				v, verr := e.Student(ctx, who)
				if verr != nil {
					rt.Fatal(verr)
				}
				if len(v.Portfolio) == 0 {
					continue
				}
				lot := rapid.SampledFrom(v.Portfolio).Draw(rt, "lot")
				_, err = e.Sell(ctx, who, lot.ID)
			case 2:
				err = e.Deposit(ctx, who, amount)
			case 3:
				err = e.Withdraw(ctx, who, amount)
			case 4:
				before, werr := e.CurrentWeek(ctx)
				if werr != nil {
					rt.Fatal(werr)
				}
				after, aerr := e.AdvanceWeek(ctx)
				if aerr != nil {
					rt.Fatal(aerr)
				}
				if after != before+1 {
					rt.Fatalf("week moved from %d to %d", before, after)
				}
				err = nil
			}
			if err != nil && !IsRejection(err) {
				rt.Fatalf("unexpected failure: %v", err)
			}

			board, berr := e.Leaderboard(ctx)
			if berr != nil {
				rt.Fatal(berr)
			}
			for _, v := range board {
				if v.CashBalance < 0 || v.BankBalance < 0 {
					rt.Fatalf("student %d went negative: cash=%v bank=%v", v.ID, v.CashBalance, v.BankBalance)
				}
			}
		}
	})
}
