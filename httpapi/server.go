// Package httpapi serves the championship over JSON.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rustyeddy/champs/ledger"
	"github.com/rustyeddy/champs/portfolio"
	"github.com/rustyeddy/champs/sim"
)

// Simulation is the engine surface the API needs. *sim.Engine implements it.
type Simulation interface {
	Assets(ctx context.Context) ([]ledger.Asset, error)
	AddAsset(ctx context.Context, symbol, name string, price float64) error
	CurrentWeek(ctx context.Context) (int, error)
	Leaderboard(ctx context.Context) ([]portfolio.Valuation, error)
	AddStudent(ctx context.Context, name, color string) (int64, error)
	Buy(ctx context.Context, studentID int64, symbol string, euros float64) (ledger.Holding, error)
	Sell(ctx context.Context, studentID, holdingID int64) (float64, error)
	Deposit(ctx context.Context, studentID int64, amount float64) error
	Withdraw(ctx context.Context, studentID int64, amount float64) error
	AdvanceWeek(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
	Snapshots(ctx context.Context) ([]ledger.Snapshot, error)
	MarketHistory(ctx context.Context) ([]ledger.PricePoint, error)
	Subscribe(buffer int) (<-chan sim.Event, func())
}

var _ Simulation = (*sim.Engine)(nil)

const requestIDHeader = "X-Request-ID"

type Server struct {
	sim Simulation
	log *slog.Logger
	mux *http.ServeMux

	// keepAlive is the SSE comment interval.
	keepAlive time.Duration
}

func NewServer(s Simulation, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		sim:       s,
		log:       logger,
		mux:       http.NewServeMux(),
		keepAlive: 15 * time.Second,
	}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	// Market
	s.mux.HandleFunc("GET /api/assets", s.handleListAssets)
	s.mux.HandleFunc("POST /api/assets", s.handleAddAsset)
	s.mux.HandleFunc("GET /api/market/history", s.handleMarketHistory)

	// Students and trading
	s.mux.HandleFunc("GET /api/students", s.handleListStudents)
	s.mux.HandleFunc("POST /api/students", s.handleAddStudent)
	s.mux.HandleFunc("POST /api/investments/buy", s.handleBuy)
	s.mux.HandleFunc("POST /api/investments/sell", s.handleSell)
	s.mux.HandleFunc("POST /api/bank/deposit", s.handleDeposit)
	s.mux.HandleFunc("POST /api/bank/withdraw", s.handleWithdraw)

	// Championship state
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("POST /api/admin/next-week", s.handleNextWeek)
	s.mux.HandleFunc("POST /api/admin/reset", s.handleReset)

	s.mux.HandleFunc("GET /api/events", s.handleEvents)
}

// ServeHTTP tags the request with an ID and logs it once served.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()

	reqID := r.Header.Get(requestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, reqID)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
	s.mux.ServeHTTP(rec, r.WithContext(ctx))

	s.log.Info("http request",
		"request_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(t0),
	)
}

type requestIDKey struct{}

// RequestID returns the ID assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
