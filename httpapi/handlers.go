package httpapi

import (
	"net/http"
	"strings"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.sim.Assets(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	list(w, assets)
}

type addAssetRequest struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

func (s *Server) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	var req addAssetRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Symbol) == "" || req.Price == 0 {
		jsonErr(w, http.StatusBadRequest, "Symbol and price required")
		return
	}
	if err := s.sim.AddAsset(r.Context(), req.Symbol, req.Name, req.Price); err != nil {
		s.fail(w, r, err, "")
		return
	}
	jsonOK(w, success)
}

func (s *Server) handleMarketHistory(w http.ResponseWriter, r *http.Request) {
	points, err := s.sim.MarketHistory(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	list(w, points)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	board, err := s.sim.Leaderboard(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	list(w, board)
}

type addStudentRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req addStudentRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		jsonErr(w, http.StatusBadRequest, "Name required")
		return
	}
	id, err := s.sim.AddStudent(r.Context(), req.Name, req.Color)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	jsonOK(w, map[string]any{"id": id})
}

type buyRequest struct {
	StudentID    int64   `json:"studentId"`
	Symbol       string  `json:"symbol"`
	AmountInEuro float64 `json:"amountInEuro"`
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.sim.Buy(r.Context(), req.StudentID, req.Symbol, req.AmountInEuro); err != nil {
		s.fail(w, r, err, "Student not found")
		return
	}
	jsonOK(w, success)
}

type sellRequest struct {
	StudentID    int64 `json:"studentId"`
	InvestmentID int64 `json:"investmentId"`
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.sim.Sell(r.Context(), req.StudentID, req.InvestmentID); err != nil {
		s.fail(w, r, err, "Investment not found")
		return
	}
	jsonOK(w, success)
}

type bankRequest struct {
	StudentID int64   `json:"studentId"`
	Amount    float64 `json:"amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req bankRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.sim.Deposit(r.Context(), req.StudentID, req.Amount); err != nil {
		s.fail(w, r, err, "Student not found")
		return
	}
	jsonOK(w, success)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req bankRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.sim.Withdraw(r.Context(), req.StudentID, req.Amount); err != nil {
		s.fail(w, r, err, "Student not found")
		return
	}
	jsonOK(w, success)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	week, err := s.sim.CurrentWeek(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	jsonOK(w, map[string]any{"current_week": week})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.sim.Snapshots(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	list(w, snaps)
}

func (s *Server) handleNextWeek(w http.ResponseWriter, r *http.Request) {
	week, err := s.sim.AdvanceWeek(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	jsonOK(w, map[string]any{"success": true, "new_week": week})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.sim.Reset(r.Context()); err != nil {
		s.fail(w, r, err, "")
		return
	}
	jsonOK(w, success)
}
