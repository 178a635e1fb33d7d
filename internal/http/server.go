// Package http exposes the dashboard API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studioledger/internal/core"
	"studioledger/internal/ledger"
	"studioledger/internal/log"
	"studioledger/internal/metrics"
	"studioledger/internal/services"
)

// Server wraps http.Server with the dashboard routes mounted.
type Server struct {
	http.Server
	dashboard *services.Dashboard
	logger    *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, dashboard *services.Dashboard, logger *log.Logger) *Server {
	s := &Server{
		dashboard: dashboard,
		logger:    logger.WithComponent("http"),
	}

	r := chi.NewRouter()
	r.Use(log.Middleware(s.logger))
	r.Use(metrics.HTTPMiddleware)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Put("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
		r.Post("/transactions/import", s.handleImport)
		r.Get("/transactions/export", s.handleExport)

		r.Get("/ledger", s.handleLedger)
		r.Get("/forecast", s.handleForecast)
		r.Get("/stats/visits", s.handleVisitStats)
		r.Get("/stats/payments", s.handlePaymentStats)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.dashboard.Transactions(r.URL.Query().Get("q"))
	if txs == nil {
		txs = []core.Transaction{}
	}
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx.ID = ""

	saved, err := s.dashboard.AddTransaction(r.Context(), tx)
	if err != nil {
		s.respondMutationError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx.ID = chi.URLParam(r, "id")

	saved, err := s.dashboard.UpdateTransaction(r.Context(), tx)
	if err != nil {
		s.respondMutationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondMutationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	imported, skipped, err := s.dashboard.ImportCSV(r.Context(), r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable import payload")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{
		"imported": imported,
		"skipped":  skipped,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := s.dashboard.ExportCSV(w); err != nil {
		s.logger.ErrorContext(r.Context(), "Export failed mid-stream", "error", err)
	}
}

// staffParam reads ?staff=; "all" and absent both mean every staff member.
func staffParam(r *http.Request) core.StaffCode {
	v := r.URL.Query().Get("staff")
	if v == "all" {
		return ""
	}
	return core.StaffCode(v)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries := s.dashboard.Entries(staffParam(r))
	if entries == nil {
		entries = []core.LedgerEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dashboard.Forecast(staffParam(r)))
}

func (s *Server) handleVisitStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dashboard.VisitStats(r.URL.Query().Get("q")))
}

func (s *Server) handlePaymentStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dashboard.PaymentStats(r.URL.Query().Get("q")))
}

func (s *Server) respondMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyCustomer):
		respondError(w, http.StatusUnprocessableEntity, "customer name must not be empty")
	case errors.Is(err, core.ErrInvalidDate):
		respondError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
	case errors.Is(err, core.ErrNegativeAmount):
		respondError(w, http.StatusUnprocessableEntity, "amounts must not be negative")
	case errors.Is(err, ledger.ErrNotFound):
		respondError(w, http.StatusNotFound, "transaction not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
