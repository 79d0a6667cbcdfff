package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"spendtrack/internal/core"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseYearMonth reads year/month query parameters, defaulting to the
// current month when absent.
func parseYearMonth(r *http.Request, now time.Time) (int, int, error) {
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = n
	}
	return year, month, nil
}

// amountString accepts an amount as either a JSON string or a JSON
// number, normalized to its decimal text.
type amountString string

func (a *amountString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = amountString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = amountString(n.String())
	return nil
}

// transactionPayload is the wire shape for a transaction in requests.
// Amounts travel in whole currency units, e.g. "-12.50".
type transactionPayload struct {
	Date        string       `json:"date"`
	Amount      amountString `json:"amount"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
}

func (p transactionPayload) parse() (core.Date, core.Money, error) {
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Date{}, core.Money{}, err
	}
	cents, err := core.ParseSignedDecimalToCents(string(p.Amount))
	if err != nil {
		return core.Date{}, core.Money{}, err
	}
	return date, core.Money{Cents: cents}, nil
}

// transaction builds the structural match target used by update and
// delete.
func (p transactionPayload) transaction() (core.Transaction, error) {
	date, amount, err := p.parse()
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:        date,
		Amount:      amount,
		Category:    p.Category,
		Description: p.Description,
	}, nil
}

type transactionView struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func viewsOf(txns []core.Transaction, symbol string) []transactionView {
	views := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		views = append(views, transactionView{
			ID:          t.ID,
			Date:        t.Date.String(),
			Amount:      t.Amount.Format(symbol),
			AmountCents: t.Amount.Cents,
			Category:    t.Category,
			Description: t.Description,
		})
	}
	return views
}
