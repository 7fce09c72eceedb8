package ledger

import (
	"math"
	"strings"
	"time"
)

// Student is one participant of the championship.
type Student struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	CashBalance float64 `json:"cash_balance"`
	BankBalance float64 `json:"bank_balance"`
}

func (s Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalidf("student name is required")
	}
	if !finite(s.CashBalance) || s.CashBalance < 0 {
		return invalidf("student %d: cash_balance must be >= 0, got %v", s.ID, s.CashBalance)
	}
	if !finite(s.BankBalance) || s.BankBalance < 0 {
		return invalidf("student %d: bank_balance must be >= 0, got %v", s.ID, s.BankBalance)
	}
	return nil
}

// Asset is a tradable symbol and its current price.
type Asset struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.Symbol) == "" {
		return invalidf("asset symbol is required")
	}
	if !finite(a.Price) || a.Price <= 0 {
		return invalidf("asset %s: price must be positive, got %v", a.Symbol, a.Price)
	}
	return nil
}

// Holding is a single purchase lot. Lots are never merged or split.
type Holding struct {
	ID        int64   `json:"id"`
	StudentID int64   `json:"student_id"`
	Symbol    string  `json:"symbol"`
	Amount    float64 `json:"amount"`
	CostBasis float64 `json:"cost_basis"`
}

func (h Holding) Validate() error {
	if h.StudentID <= 0 {
		return invalidf("holding %d: student_id is required", h.ID)
	}
	if strings.TrimSpace(h.Symbol) == "" {
		return invalidf("holding %d: symbol is required", h.ID)
	}
	if !finite(h.Amount) || h.Amount <= 0 {
		return invalidf("holding %d: amount must be positive, got %v", h.ID, h.Amount)
	}
	if !finite(h.CostBasis) || h.CostBasis <= 0 {
		return invalidf("holding %d: cost_basis must be positive, got %v", h.ID, h.CostBasis)
	}
	return nil
}

// PricePoint is one asset price recorded for a week.
type PricePoint struct {
	ID     int64   `json:"id"`
	Symbol string  `json:"symbol"`
	Week   int     `json:"week_number"`
	Price  float64 `json:"price"`
}

func (p PricePoint) Validate() error {
	if strings.TrimSpace(p.Symbol) == "" {
		return invalidf("price point %d: symbol is required", p.ID)
	}
	if p.Week < 0 {
		return invalidf("price point %d: week must be >= 0, got %d", p.ID, p.Week)
	}
	if !finite(p.Price) || p.Price <= 0 {
		return invalidf("price point %d: price must be positive, got %v", p.ID, p.Price)
	}
	return nil
}

// Snapshot is a student's valuation recorded at the end of a week.
type Snapshot struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	Week       int       `json:"week_number"`
	TotalValue float64   `json:"total_value"`
	ProfitLoss float64   `json:"profit_loss"`
	Timestamp  time.Time `json:"timestamp"`
}

func (s Snapshot) Validate() error {
	if s.StudentID <= 0 {
		return invalidf("snapshot %d: student_id is required", s.ID)
	}
	if s.Week < 0 {
		return invalidf("snapshot %d: week must be >= 0, got %d", s.ID, s.Week)
	}
	if !finite(s.TotalValue) || !finite(s.ProfitLoss) {
		return invalidf("snapshot %d: values must be finite", s.ID)
	}
	if s.Timestamp.IsZero() {
		return invalidf("snapshot %d: timestamp is required", s.ID)
	}
	return nil
}

// DefaultAssets are the six coins every new or reset championship starts with.
func DefaultAssets() []Asset {
	return []Asset{
		{Symbol: "BTC-EUR", Name: "Bitcoin", Price: 95000.00},
		{Symbol: "ETH-EUR", Name: "Ethereum", Price: 2700.00},
		{Symbol: "SOL-EUR", Name: "Solana", Price: 145.00},
		{Symbol: "DOGE-EUR", Name: "Dogecoin", Price: 0.35},
		{Symbol: "ADA-EUR", Name: "Cardano", Price: 0.75},
		{Symbol: "XRP-EUR", Name: "XRP", Price: 2.10},
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
