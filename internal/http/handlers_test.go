package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spendtrack/internal/config"
	"spendtrack/internal/log"
	"spendtrack/internal/services"
	"spendtrack/internal/store/jsonfile"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(log.Config{
		Component: log.ComponentHTTP,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})

	st := jsonfile.New(filepath.Join(t.TempDir(), "data.json"), logger.Logger)
	tracker := services.NewBudgetTracker(nil)
	svc := services.NewService(st, tracker, "$", logger)

	provider := config.NewProvider(filepath.Join(t.TempDir(), "config.yaml"))
	processor := services.NewRecurringProcessor(provider, svc, logger)
	scheduler := services.NewReportScheduler(provider, svc, nil, logger)

	srv := NewServer("127.0.0.1:0", svc, tracker, processor, scheduler, logger)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatal(err)
	}
	return resp, decoded
}

func txnBody(date, amount, category, description string) map[string]any {
	return map[string]any{
		"date":        date,
		"amount":      amount,
		"category":    category,
		"description": description,
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAddAndListTransactions(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txnBody("2024-03-15", "-12.50", "Food", "groceries"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "added -$12.50 for Food") {
		t.Fatalf("message = %v", body["message"])
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if count, _ := body["count"].(float64); count != 1 {
		t.Fatalf("count = %v", body["count"])
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"zero amount", txnBody("2024-03-15", "0", "Food", "")},
		{"bad date", txnBody("15/03/2024", "-10", "Food", "")},
		{"empty category", txnBody("2024-03-15", "-10", "  ", "")},
		{"bad amount", txnBody("2024-03-15", "ten", "Food", "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d body = %v", resp.StatusCode, body)
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	ts := newTestServer(t)
	doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txnBody("2024-03-15", "-12.50", "Food", "groceries"))

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/transactions", map[string]any{
		"old": txnBody("2024-03-15", "-12.50", "Food", "groceries"),
		"new": txnBody("2024-03-16", "-15.00", "Food", "groceries"),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
	if ok, _ := body["ok"].(bool); !ok {
		t.Fatalf("body = %v", body)
	}
}

func TestUpdateMissingTransactionIs404(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/transactions", map[string]any{
		"old": txnBody("2024-03-15", "-12.50", "Food", ""),
		"new": txnBody("2024-03-16", "-15.00", "Food", ""),
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ts := newTestServer(t)
	doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txnBody("2024-03-15", "-12.50", "Food", ""))

	resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/transactions",
		txnBody("2024-03-15", "-12.50", "Food", ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	_, body := doJSON(t, http.MethodGet, ts.URL+"/api/transactions?cache=false", nil)
	if count, _ := body["count"].(float64); count != 0 {
		t.Fatalf("count after delete = %v", body["count"])
	}
}

func TestSearchByCategory(t *testing.T) {
	ts := newTestServer(t)
	doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txnBody("2024-03-15", "-12.50", "Food", ""))
	doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txnBody("2024-03-16", "-30.00", "Transport", ""))

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/transactions/search?category=Food", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if count, _ := body["count"].(float64); count != 1 {
		t.Fatalf("count = %v", body["count"])
	}
}

func TestSearchRejectsHalfOpenRanges(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/transactions/search?start=2024-03-01", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/transactions/search?min=-100", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txnBody("2024-03-15", "-12.50", "Food", ""))
	doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txnBody("2024-03-16", "100.00", "Income", ""))

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/summary", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if count, _ := body["count"].(float64); count != 2 {
		t.Fatalf("count = %v", body["count"])
	}
}

func TestTrendsValidatesMonths(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/trends?months=0", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/trends?months=3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestBudgetStatusRejectsBadMonth(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/budgets/status?year=2024&month=13", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/budgets/status?year=2024&month=3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestNextReportWhenScheduleDisabled(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/reports/next", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if scheduled, _ := body["scheduled"].(bool); scheduled {
		t.Fatalf("body = %v", body)
	}
}

func TestExportEndpoint(t *testing.T) {
	ts := newTestServer(t)
	doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txnBody("2024-03-15", "-12.50", "Food", ""))

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/export",
		map[string]any{"format": "xml", "path": "/tmp/out.xml"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/export",
		map[string]any{"format": "csv", "path": path})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Date,Amount,Category,Description") {
		t.Fatalf("export = %q", data)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPatch, ts.URL+"/api/transactions", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
