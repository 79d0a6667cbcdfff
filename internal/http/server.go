// Package http exposes the tracker's operations as a JSON API.
package http

import (
	"net/http"
	"time"

	"spendtrack/internal/log"
	"spendtrack/internal/services"
)

type Server struct {
	http.Server
	svc       *services.Service
	tracker   *services.BudgetTracker
	processor *services.RecurringProcessor
	scheduler *services.ReportScheduler
	logger    *log.Logger
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, svc *services.Service, tracker *services.BudgetTracker, processor *services.RecurringProcessor, scheduler *services.ReportScheduler, logger *log.Logger) *Server {
	s := &Server{
		svc:       svc,
		tracker:   tracker,
		processor: processor,
		scheduler: scheduler,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("PUT /api/transactions", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/transactions/search", s.handleSearch)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/analysis/categories", s.handleCategoryAnalysis)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("GET /api/budgets/status", s.handleBudgetStatus)

	mux.HandleFunc("POST /api/recurring/process", s.handleProcessRecurring)
	mux.HandleFunc("GET /api/reports/next", s.handleNextReport)
	mux.HandleFunc("POST /api/reports/send", s.handleSendReport)
	mux.HandleFunc("POST /api/reports/test", s.handleTestReport)

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/export", s.handleExport)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withRequestLog(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldDuration, time.Since(start).Milliseconds())
	})
}
