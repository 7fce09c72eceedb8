package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rustyeddy/champs/ledger"
	"github.com/rustyeddy/champs/sim"
)

const internalMessage = "Internal Server Error"

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}

// decode reads a JSON body into v. It writes the 400 response itself and
// reports false when the body is unusable.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// mapError turns an engine error into a status and a client message.
// notFound names the missing entity for the route.
func mapError(err error, notFound string) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, notFound
	case errors.Is(err, sim.ErrInsufficientBankFunds):
		return http.StatusBadRequest, "Insufficient bank funds"
	case errors.Is(err, sim.ErrInsufficientFunds):
		return http.StatusBadRequest, "Insufficient funds"
	case errors.Is(err, sim.ErrInvalidSymbol):
		return http.StatusBadRequest, "Invalid symbol or price unavailable"
	case errors.Is(err, ledger.ErrDuplicateSymbol):
		return http.StatusInternalServerError, "Asset symbol already exists"
	case errors.Is(err, ledger.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, internalMessage
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	status, msg := mapError(err, notFound)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			"request_id", RequestID(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
	}
	jsonErr(w, status, msg)
}

// list writes items as a JSON array, never null.
func list[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	jsonOK(w, items)
}

var success = map[string]any{"success": true}
