package http

import (
	"net/http"
	"strconv"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/services"
	"spendtrack/internal/store"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	useCache := r.URL.Query().Get("cache") != "false"
	txns := s.svc.Transactions(r.Context(), useCache)
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": viewsOf(txns, s.svc.CurrencySymbol()),
		"count":        len(txns),
	})
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, amount, err := payload.parse()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.svc.Add(r.Context(), date, amount, payload.Category, payload.Description)
	if err != nil {
		if core.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeResult(w, res, http.StatusCreated)
}

type updatePayload struct {
	Old transactionPayload `json:"old"`
	New transactionPayload `json:"new"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload updatePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	old, err := payload.Old.transaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, amount, err := payload.New.parse()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.svc.Update(r.Context(), old, date, amount, payload.New.Category, payload.New.Description)
	if err != nil {
		if core.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeResult(w, res, http.StatusOK)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txn, err := payload.transaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, s.svc.Delete(r.Context(), txn), http.StatusOK)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := services.SearchFilters{
		Query:    q.Get("q"),
		Category: q.Get("category"),
	}

	start, end := q.Get("start"), q.Get("end")
	if (start == "") != (end == "") {
		writeError(w, http.StatusBadRequest, "start and end must be given together")
		return
	}
	if start != "" {
		var err error
		if filters.StartDate, err = core.ParseDate(start); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date")
			return
		}
		if filters.EndDate, err = core.ParseDate(end); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date")
			return
		}
	}

	min, max := q.Get("min"), q.Get("max")
	if (min == "") != (max == "") {
		writeError(w, http.StatusBadRequest, "min and max must be given together")
		return
	}
	if min != "" {
		minCents, err := core.ParseSignedDecimalToCents(min)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min amount")
			return
		}
		maxCents, err := core.ParseSignedDecimalToCents(max)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max amount")
			return
		}
		filters.Min = &core.Money{Cents: minCents}
		filters.Max = &core.Money{Cents: maxCents}
	}

	txns := s.svc.Search(r.Context(), filters)
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": viewsOf(txns, s.svc.CurrencySymbol()),
		"count":        len(txns),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Summary(r.Context()))
}

func (s *Server) handleCategoryAnalysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CategoryAnalysis(r.Context()))
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 36 {
			writeError(w, http.StatusBadRequest, "months must be between 1 and 36")
			return
		}
		months = n
	}
	writeJSON(w, http.StatusOK, s.svc.MonthlyTrends(r.Context(), months))
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	statuses := s.tracker.StatusForMonth(year, month, s.svc.Transactions(r.Context(), true))
	writeJSON(w, http.StatusOK, map[string]any{
		"year":     year,
		"month":    month,
		"statuses": statuses,
	})
}

func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	if s.processor == nil {
		writeError(w, http.StatusServiceUnavailable, "recurring processing not configured")
		return
	}
	n, err := s.processor.ProcessDue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"processed": n})
}

func (s *Server) handleNextReport(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "report scheduling not configured")
		return
	}
	next, ok := s.scheduler.NextScheduledTime()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"scheduled": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scheduled": true,
		"next":      next.Format(time.RFC3339),
	})
}

type sendReportPayload struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Recipients []string `json:"recipients"`
}

func (s *Server) handleSendReport(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "report scheduling not configured")
		return
	}

	var payload sendReportPayload
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var ok bool
	var msg string
	if payload.Start != "" || payload.End != "" {
		start, err := core.ParseDate(payload.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date")
			return
		}
		end, err := core.ParseDate(payload.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date")
			return
		}
		ok, msg = s.scheduler.SendCustomReport(r.Context(), start, end, payload.Recipients)
	} else {
		ok, msg = s.scheduler.SendMonthlyReport(r.Context())
	}
	writeResult(w, services.Result{OK: ok, Message: msg}, http.StatusOK)
}

func (s *Server) handleTestReport(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "report scheduling not configured")
		return
	}
	ok, msg := s.scheduler.SendTestReport(r.Context())
	writeResult(w, services.Result{OK: ok, Message: msg}, http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status(r.Context()))
}

type exportPayload struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var payload exportPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format := store.ExportFormat(payload.Format)
	if !format.IsValid() {
		writeError(w, http.StatusBadRequest, "format must be csv or json")
		return
	}
	if payload.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	path, err := s.svc.Export(r.Context(), format, payload.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// writeResult maps a service result onto an HTTP status: successCode on
// OK, 404 when the target row is missing, 502 when the backend failed.
func writeResult(w http.ResponseWriter, res services.Result, successCode int) {
	status := successCode
	if !res.OK {
		status = http.StatusBadGateway
		if res.Message == "transaction not found" {
			status = http.StatusNotFound
		}
	}
	writeJSON(w, status, res)
}
