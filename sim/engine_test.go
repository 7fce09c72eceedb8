package sim

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/champs/ledger"
	"github.com/rustyeddy/champs/pricing"
)

var testTime = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	engine *Engine
	store  *ledger.Store
	path   string
}

// newTestEngine returns an engine over a fresh database holding the given
// assets, with the week counter at 1 and every draw meaning "no change"
// unless draws are given.
func newTestEngine(t *testing.T, assets []ledger.Asset, draws ...float64) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "champs.db")
	store, err := ledger.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Init(context.Background(), assets))

	if len(draws) == 0 {
		draws = []float64{0.5}
	}
	prices := pricing.NewEngine(pricing.NewSequence(draws...), pricing.DefaultWalk())
	e := NewEngine(store, prices, DefaultParams(), nil)
	e.SetClock(func() time.Time { return testTime })

	return &testEnv{engine: e, store: store, path: path}
}

func btcOnly() []ledger.Asset {
	return []ledger.Asset{{Symbol: "BTC-EUR", Name: "Bitcoin", Price: 100}}
}

func (env *testEnv) student(t *testing.T, id int64) ledger.Student {
	t.Helper()
	var st ledger.Student
	require.NoError(t, env.store.View(context.Background(), func(tx *ledger.Tx) (err error) {
		st, err = tx.GetStudent(context.Background(), id)
		return err
	}))
	return st
}

func (env *testEnv) holdings(t *testing.T, studentID int64) []ledger.Holding {
	t.Helper()
	var hs []ledger.Holding
	require.NoError(t, env.store.View(context.Background(), func(tx *ledger.Tx) (err error) {
		hs, err = tx.ListHoldings(context.Background(), studentID)
		return err
	}))
	return hs
}

func (env *testEnv) addStudent(t *testing.T, name string) int64 {
	t.Helper()
	id, err := env.engine.AddStudent(context.Background(), name, "#123456")
	require.NoError(t, err)
	return id
}

func TestAddStudent(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()

	id, err := env.engine.AddStudent(ctx, "  Ada ", "")
	require.NoError(t, err)

	st := env.student(t, id)
	assert.Equal(t, "Ada", st.Name)
	assert.Equal(t, "#94a3b8", st.Color)
	assert.Equal(t, 1000.0, st.CashBalance)
	assert.Equal(t, 0.0, st.BankBalance)

	_, err = env.engine.AddStudent(ctx, " ", "#fff")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestAddAsset(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()

	require.NoError(t, env.engine.AddAsset(ctx, "SOL-EUR", "", 145))

	err := env.engine.AddAsset(ctx, "SOL-EUR", "Solana", 1)
	assert.ErrorIs(t, err, ledger.ErrDuplicateSymbol)

	err = env.engine.AddAsset(ctx, "", "Nothing", 1)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	err = env.engine.AddAsset(ctx, "ZERO", "Zero", 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	assets, err := env.engine.Assets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, ledger.Asset{Symbol: "SOL-EUR", Name: "SOL-EUR", Price: 145}, assets[1])

	points, err := env.engine.MarketHistory(ctx)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "SOL-EUR", points[1].Symbol)
	assert.Equal(t, 1, points[1].Week)
}

func TestAdvanceWeekWithNothing(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, nil)
	ctx := context.Background()

	for want := 2; want <= 4; want++ {
		got, err := env.engine.AdvanceWeek(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	week, err := env.engine.CurrentWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, week)

	snaps, err := env.engine.Snapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestAdvanceWeek(t *testing.T) {
	t.Parallel()
	assets := []ledger.Asset{
		{Symbol: "BTC-EUR", Name: "Bitcoin", Price: 100},
		{Symbol: "ETH-EUR", Name: "Ethereum", Price: 50},
	}
	// BTC +10%, ETH -10%
	env := newTestEngine(t, assets, 1, 0)
	ctx := context.Background()

	ada := env.addStudent(t, "Ada")
	bob := env.addStudent(t, "Bob")
	_, err := env.engine.Buy(ctx, ada, "BTC-EUR", 100)
	require.NoError(t, err)
	require.NoError(t, env.engine.Deposit(ctx, bob, 500))

	week, err := env.engine.AdvanceWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, week)

	got, err := env.engine.Assets(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 110.0, got[0].Price, 1e-9)
	assert.InDelta(t, 45.0, got[1].Price, 1e-9)

	assert.InDelta(t, 515.0, env.student(t, bob).BankBalance, 1e-9)
	assert.Equal(t, 500.0, env.student(t, bob).CashBalance)

	points, err := env.engine.MarketHistory(ctx)
	require.NoError(t, err)
	require.Len(t, points, 4)
	for _, p := range points[2:] {
		assert.Equal(t, 2, p.Week)
	}

	snaps, err := env.engine.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	byStudent := map[int64]ledger.Snapshot{}
	for _, s := range snaps {
		// Snapshots carry the week that just ended.
		assert.Equal(t, 1, s.Week)
		assert.True(t, testTime.Equal(s.Timestamp))
		byStudent[s.StudentID] = s
	}
	assert.InDelta(t, 1010.0, byStudent[ada].TotalValue, 1e-9)
	assert.InDelta(t, 10.0, byStudent[ada].ProfitLoss, 1e-9)
	assert.InDelta(t, 1015.0, byStudent[bob].TotalValue, 1e-9)
}

func TestAdvanceWeekIsAtomic(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly(), 1)
	ctx := context.Background()

	ada := env.addStudent(t, "Ada")
	require.NoError(t, env.engine.Deposit(ctx, ada, 100))

	// A corrupt lot makes the snapshot step fail after prices and interest
	// were already written inside the transaction.
	db, err := sql.Open("sqlite3", env.path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO investments (student_id, symbol, amount, cost_basis) VALUES (?, 'BTC-EUR', -1, 10)`, ada)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = env.engine.AdvanceWeek(ctx)
	require.Error(t, err)

	week, err := env.engine.CurrentWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, week)

	assets, err := env.engine.Assets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, assets[0].Price)
	assert.Equal(t, 100.0, env.student(t, ada).BankBalance)

	points, err := env.engine.MarketHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestReset(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, ledger.DefaultAssets(), 1)
	ctx := context.Background()

	ada := env.addStudent(t, "Ada")
	_, err := env.engine.Buy(ctx, ada, "SOL-EUR", 145)
	require.NoError(t, err)
	_, err = env.engine.AdvanceWeek(ctx)
	require.NoError(t, err)

	require.NoError(t, env.engine.Reset(ctx))

	week, err := env.engine.CurrentWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, week)

	board, err := env.engine.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	joan := board[0]
	assert.Equal(t, "Joan Byers", joan.Name)
	assert.Equal(t, "#94a3b8", joan.Color)
	assert.Equal(t, 0.0, joan.CashBalance)
	assert.Equal(t, 400.0, joan.BankBalance)
	require.Len(t, joan.Portfolio, 2)
	assert.Equal(t, "BTC-EUR", joan.Portfolio[0].Symbol)
	assert.Equal(t, "ETH-EUR", joan.Portfolio[1].Symbol)
	for _, p := range joan.Portfolio {
		assert.Equal(t, 300.0, p.CostBasis)
		assert.InDelta(t, 300.0, p.Value, 1e-9)
	}
	assert.InDelta(t, 1000.0, joan.TotalValue, 1e-9)

	assets, err := env.engine.Assets(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultAssets(), assets)

	points, err := env.engine.MarketHistory(ctx)
	require.NoError(t, err)
	require.Len(t, points, 6)
	for _, p := range points {
		assert.Equal(t, 0, p.Week)
	}

	snaps, err := env.engine.Snapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestLeaderboardRanks(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly(), 1)
	ctx := context.Background()

	ada := env.addStudent(t, "Ada")
	bob := env.addStudent(t, "Bob")
	cy := env.addStudent(t, "Cy")
	_, err := env.engine.Buy(ctx, bob, "BTC-EUR", 500)
	require.NoError(t, err)
	_, err = env.engine.AdvanceWeek(ctx)
	require.NoError(t, err)

	board, err := env.engine.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, bob, board[0].ID)
	assert.InDelta(t, 1050.0, board[0].TotalValue, 1e-9)
	// Ada and Cy tie and keep enrollment order.
	assert.Equal(t, ada, board[1].ID)
	assert.Equal(t, cy, board[2].ID)

	v, err := env.engine.Student(ctx, bob)
	require.NoError(t, err)
	assert.InDelta(t, 550.0, v.InvestmentValue, 1e-9)

	_, err = env.engine.Student(ctx, 999)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()

	events, cancel := env.engine.Subscribe(8)
	defer cancel()

	ada := env.addStudent(t, "Ada")
	_, err := env.engine.Buy(ctx, ada, "NOPE", 10)
	require.ErrorIs(t, err, ErrInvalidSymbol)
	_, err = env.engine.AdvanceWeek(ctx)
	require.NoError(t, err)

	first := <-events
	assert.Equal(t, KindStudentAdded, first.Kind)
	assert.Equal(t, ada, first.StudentID)
	assert.NotEmpty(t, first.ID)
	assert.True(t, testTime.Equal(first.At))

	second := <-events
	assert.Equal(t, KindWeekAdvanced, second.Kind)
	assert.Equal(t, 2, second.Week)
	assert.Less(t, first.ID, second.ID)

	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestConcurrentEventsFollowCommitOrder(t *testing.T) {
	t.Parallel()
	env := newTestEngine(t, btcOnly())
	ctx := context.Background()

	const writers = 20
	events, cancel := env.engine.Subscribe(writers)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engine.AddStudent(ctx, "Racer", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var prev Event
	for i := 0; i < writers; i++ {
		ev := <-events
		if i > 0 {
			assert.Less(t, prev.ID, ev.ID)
			assert.Less(t, prev.StudentID, ev.StudentID)
		}
		prev = ev
	}
}
