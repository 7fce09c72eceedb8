// Package portfolio values student holdings against current prices. It
// does no I/O.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/champs/ledger"
)

// StartValue is the cash every student started with. Profit and loss are
// measured against it for all students, whenever they joined.
const StartValue = 1000.0

// Position is a holding valued at the current price.
type Position struct {
	ledger.Holding
	CurrentPrice float64 `json:"currentPrice"`
	Value        float64 `json:"value"`
}

// Valuation is a student together with their valued portfolio.
type Valuation struct {
	ledger.Student
	Portfolio       []Position `json:"portfolio"`
	InvestmentValue float64    `json:"investmentValue"`
	TotalValue      float64    `json:"totalValue"`
	ProfitLoss      float64    `json:"profitLoss"`
}

// ValueHolding values one lot. An unknown price values the lot at zero.
func ValueHolding(h ledger.Holding, price float64) Position {
	return Position{
		Holding:      h,
		CurrentPrice: price,
		Value:        h.Amount * price,
	}
}

// ValuateStudent values every holding of s with prices and totals the
// result with both balances.
func ValuateStudent(s ledger.Student, holdings []ledger.Holding, prices map[string]float64) Valuation {
	v := Valuation{
		Student:   s,
		Portfolio: make([]Position, 0, len(holdings)),
	}

	invested := decimal.Zero
	for _, h := range holdings {
		p := ValueHolding(h, prices[h.Symbol])
		invested = invested.Add(decimal.NewFromFloat(p.Value))
		v.Portfolio = append(v.Portfolio, p)
	}

	total := decimal.NewFromFloat(s.CashBalance).
		Add(decimal.NewFromFloat(s.BankBalance)).
		Add(invested)

	v.InvestmentValue = invested.InexactFloat64()
	v.TotalValue = total.InexactFloat64()
	v.ProfitLoss = total.Sub(decimal.NewFromFloat(StartValue)).InexactFloat64()
	return v
}

// ValuateAll values every student, assigning holdings by student ID. The
// output keeps the order of students.
func ValuateAll(students []ledger.Student, holdings []ledger.Holding, prices map[string]float64) []Valuation {
	byStudent := make(map[int64][]ledger.Holding, len(students))
	for _, h := range holdings {
		byStudent[h.StudentID] = append(byStudent[h.StudentID], h)
	}

	out := make([]Valuation, 0, len(students))
	for _, s := range students {
		out = append(out, ValuateStudent(s, byStudent[s.ID], prices))
	}
	return out
}

// Rank returns a copy of vs sorted by TotalValue, highest first. Ties keep
// their input order.
func Rank(vs []Valuation) []Valuation {
	out := make([]Valuation, len(vs))
	copy(out, vs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalValue > out[j].TotalValue
	})
	return out
}
