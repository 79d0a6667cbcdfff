// Package services implements the application operations on top of a
// transaction store: CRUD with budget warnings, summaries, search,
// recurring materialization and report scheduling.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"spendtrack/internal/cache"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/store"
)

// snapshotTTL bounds how stale a cached transaction list may get.
const snapshotTTL = 5 * time.Minute

// Result reports the outcome of a write. Storage failures land here
// as OK=false with a message; only validation failures surface as
// errors.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type Service struct {
	store   store.TransactionStore
	tracker *BudgetTracker
	symbol  string
	cache   *cache.Snapshot[[]core.Transaction]
	logger  *log.Logger
	now     func() time.Time
}

func NewService(st store.TransactionStore, tracker *BudgetTracker, symbol string, logger *log.Logger) *Service {
	if symbol == "" {
		symbol = "$"
	}
	return &Service{
		store:   st,
		tracker: tracker,
		symbol:  symbol,
		cache:   cache.NewSnapshot[[]core.Transaction](snapshotTTL),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) CurrencySymbol() string { return s.symbol }

// Transactions returns the current list. With useCache, a snapshot
// younger than the staleness window is served without touching the
// backend. Read failures are logged and yield an empty list.
func (s *Service) Transactions(ctx context.Context, useCache bool) []core.Transaction {
	if useCache {
		if txns, ok := s.cache.Get(); ok {
			return txns
		}
	}
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		s.logger.Error("listing transactions failed", log.FieldError, err.Error())
		return []core.Transaction{}
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	s.cache.Set(txns)
	return txns
}

// Add validates, stores and reports on one new transaction. The
// message carries a budget warning when the expense crosses the
// warning threshold for its category's budget.
func (s *Service) Add(ctx context.Context, date core.Date, amount core.Money, category, description string) (Result, error) {
	txn, err := core.NewTransaction(date, amount, category, description, s.now())
	if err != nil {
		return Result{}, err
	}

	warning := s.tracker.WarningFor(txn, s.Transactions(ctx, true), s.symbol)

	if err := s.store.AddTransaction(ctx, txn); err != nil {
		s.logger.Error("add transaction failed",
			log.FieldOperation, "add",
			log.FieldCategory, txn.Category,
			log.FieldError, err.Error())
		return Result{OK: false, Message: fmt.Sprintf("failed to add transaction: %v", err)}, nil
	}
	s.cache.Invalidate()

	s.logger.Info("transaction added",
		log.FieldCategory, txn.Category,
		log.FieldAmountCents, txn.Amount.Cents,
		log.FieldDate, txn.Date.String())

	msg := fmt.Sprintf("added %s for %s", txn.FormatAmount(s.symbol), txn.Category)
	if warning != "" {
		msg += "; " + warning
	}
	return Result{OK: true, Message: msg}, nil
}

// Update replaces the stored transaction matching old. Matching is
// structural, so old must carry the exact stored field values.
func (s *Service) Update(ctx context.Context, old core.Transaction, date core.Date, amount core.Money, category, description string) (Result, error) {
	updated := old
	if err := updated.Update(date, amount, category, description, s.now()); err != nil {
		return Result{}, err
	}

	// Exclude the pre-update row from the projection so editing a
	// transaction does not count it twice.
	warning := s.tracker.WarningFor(updated, withoutFirstMatch(s.Transactions(ctx, true), old), s.symbol)

	if err := s.store.UpdateTransaction(ctx, old, updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{OK: false, Message: "transaction not found"}, nil
		}
		s.logger.Error("update transaction failed",
			log.FieldOperation, "update",
			log.FieldCategory, old.Category,
			log.FieldError, err.Error())
		return Result{OK: false, Message: fmt.Sprintf("failed to update transaction: %v", err)}, nil
	}
	s.cache.Invalidate()

	msg := fmt.Sprintf("updated %s transaction on %s", updated.Category, updated.Date)
	if warning != "" {
		msg += "; " + warning
	}
	return Result{OK: true, Message: msg}, nil
}

// Delete removes the stored transaction matching txn.
func (s *Service) Delete(ctx context.Context, txn core.Transaction) Result {
	if err := s.store.DeleteTransaction(ctx, txn); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{OK: false, Message: "transaction not found"}
		}
		s.logger.Error("delete transaction failed",
			log.FieldOperation, "delete",
			log.FieldCategory, txn.Category,
			log.FieldError, err.Error())
		return Result{OK: false, Message: fmt.Sprintf("failed to delete transaction: %v", err)}
	}
	s.cache.Invalidate()
	return Result{OK: true, Message: fmt.Sprintf("deleted %s transaction on %s", txn.Category, txn.Date)}
}

// PeriodTotals splits one period into income, absolute expenses and
// the signed net.
type PeriodTotals struct {
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Net      core.Money `json:"net"`
}

func periodTotals(txns []core.Transaction) PeriodTotals {
	return PeriodTotals{
		Income:   core.TotalIncomeOnly(txns),
		Expenses: core.TotalSpendingAbsolute(txns),
		Net:      core.TotalAmount(txns),
	}
}

// Summary is the aggregate view over all transactions.
type Summary struct {
	Count         int                   `json:"count"`
	TotalIncome   core.Money            `json:"total_income"`
	TotalExpenses core.Money            `json:"total_expenses"`
	NetTotal      core.Money            `json:"net_total"`
	TotalSpending core.Money            `json:"total_spending"`
	ThisMonth     PeriodTotals          `json:"this_month"`
	LastMonth     PeriodTotals          `json:"last_month"`
	ByCategory    map[string]core.Money `json:"by_category"`
	Spending      map[string]core.Money `json:"spending_by_category"`
	TopCategory   string                `json:"top_category"`
	AveragePerDay core.Money            `json:"average_per_day"`
	Insights      []string              `json:"insights"`
}

func (s *Service) Summary(ctx context.Context) Summary {
	txns := s.Transactions(ctx, true)
	byCategory := core.TotalsByCategory(txns)

	now := s.now()
	lastYear, lastMonth := core.PreviousMonth(now.Year(), int(now.Month()))

	return Summary{
		Count:         len(txns),
		TotalIncome:   core.TotalIncomeOnly(txns),
		TotalExpenses: core.TotalExpensesOnly(txns),
		NetTotal:      core.TotalAmount(txns),
		TotalSpending: core.TotalSpendingAbsolute(txns),
		ThisMonth:     periodTotals(core.FilterByMonth(txns, now.Year(), int(now.Month()))),
		LastMonth:     periodTotals(core.FilterByMonth(txns, lastYear, lastMonth)),
		ByCategory:    byCategory,
		Spending:      core.ExpensesByCategory(txns),
		TopCategory:   topByMagnitude(byCategory),
		AveragePerDay: core.AveragePerDay(txns),
		Insights:      Insights(txns, s.now()),
	}
}

// SearchFilters are applied in a fixed order: description query,
// category, date range, amount range. A filter only applies when its
// fields are set; date and amount bounds must both be present.
type SearchFilters struct {
	Query     string
	Category  string
	StartDate core.Date
	EndDate   core.Date
	Min       *core.Money
	Max       *core.Money
}

func (s *Service) Search(ctx context.Context, f SearchFilters) []core.Transaction {
	txns := s.Transactions(ctx, true)
	if f.Query != "" {
		txns = core.FilterByDescription(txns, f.Query)
	}
	if f.Category != "" {
		txns = core.FilterByCategory(txns, f.Category)
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() {
		txns = core.FilterByDateRange(txns, f.StartDate, f.EndDate)
	}
	if f.Min != nil && f.Max != nil {
		txns = core.FilterByAmountRange(txns, *f.Min, *f.Max)
	}
	return txns
}

// CategoryStats describes expense activity for one category. All
// amounts are absolute values over expense transactions only.
type CategoryStats struct {
	Total          core.Money `json:"total"`
	Count          int        `json:"count"`
	Average        core.Money `json:"average"`
	Min            core.Money `json:"min"`
	Max            core.Money `json:"max"`
	PercentOfTotal float64    `json:"percent_of_total"`
}

// CategoryAnalysis breaks spending down per category.
func (s *Service) CategoryAnalysis(ctx context.Context) map[string]CategoryStats {
	txns := s.Transactions(ctx, true)
	totalSpending := core.TotalSpendingAbsolute(txns).Cents

	out := make(map[string]CategoryStats)
	for _, t := range txns {
		if !t.Amount.IsExpense() {
			continue
		}
		abs := t.Amount.Abs()
		st, seen := out[t.Category]
		if !seen {
			st = CategoryStats{Min: abs, Max: abs}
		}
		st.Total = st.Total.Add(abs)
		st.Count++
		if abs.Cents < st.Min.Cents {
			st.Min = abs
		}
		if abs.Cents > st.Max.Cents {
			st.Max = abs
		}
		out[t.Category] = st
	}
	for cat, st := range out {
		st.Average = core.Money{Cents: st.Total.Cents / int64(st.Count)}
		if totalSpending > 0 {
			st.PercentOfTotal = float64(st.Total.Cents) / float64(totalSpending) * 100
		}
		out[cat] = st
	}
	return out
}

// MonthTrend is one month's totals within a trend window.
type MonthTrend struct {
	Key      string     `json:"key"`   // YYYY-MM
	Label    string     `json:"label"` // e.g. "March 2024"
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"` // absolute
	Net      core.Money `json:"net"`
}

// MonthlyTrends returns totals for the trailing months window,
// including the current month, oldest first.
func (s *Service) MonthlyTrends(ctx context.Context, months int) []MonthTrend {
	if months < 1 {
		months = 1
	}
	txns := s.Transactions(ctx, true)
	now := s.now()

	trends := make([]MonthTrend, 0, months)
	for i := months - 1; i >= 0; i-- {
		// Normalized month arithmetic, no 30-day approximations.
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		monthTxns := core.FilterByMonth(txns, m.Year(), int(m.Month()))
		trends = append(trends, MonthTrend{
			Key:      core.MonthKeyOf(m),
			Label:    m.Format("January 2006"),
			Income:   core.TotalIncomeOnly(monthTxns),
			Expenses: core.TotalSpendingAbsolute(monthTxns),
			Net:      core.TotalAmount(monthTxns),
		})
	}
	return trends
}

// ServiceStatus reports backend health and cache freshness.
type ServiceStatus struct {
	Backend    store.ConnectionStatus `json:"backend"`
	Count      int                    `json:"transaction_count"`
	CacheFresh bool                   `json:"cache_fresh"`
	CacheAgeMS int64                  `json:"cache_age_ms"`
}

func (s *Service) Status(ctx context.Context) ServiceStatus {
	st := ServiceStatus{
		Backend: s.store.TestConnection(ctx),
		Count:   len(s.Transactions(ctx, true)),
	}
	if age, ok := s.cache.Age(); ok {
		st.CacheFresh = true
		st.CacheAgeMS = age.Milliseconds()
	}
	return st
}

// Export writes all transactions to path in the given format.
func (s *Service) Export(ctx context.Context, format store.ExportFormat, path string) (string, error) {
	return s.store.Export(ctx, format, path)
}

// topByMagnitude picks the category with the largest absolute signed
// total; ties break alphabetically so the answer is deterministic.
func topByMagnitude(byCategory map[string]core.Money) string {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	top := ""
	var topAbs int64 = -1
	for _, name := range names {
		if abs := byCategory[name].Abs().Cents; abs > topAbs {
			top = name
			topAbs = abs
		}
	}
	return top
}

func withoutFirstMatch(txns []core.Transaction, target core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	removed := false
	for _, t := range txns {
		if !removed && t.SameRecord(target) {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out
}
