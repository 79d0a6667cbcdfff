package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"spendtrack/internal/core"
)

// Heuristic thresholds for the generated insights.
const (
	monthChangeThreshold    = 20.0 // percent month-over-month
	dominantCategoryPercent = 40.0
	distributedTopShare     = 60.0 // top-3 share below this counts as distributed
	highActivityCount       = 10   // trailing-week transaction counts
	lowActivityCount        = 3
)

// Insights derives short observations from spending patterns: the
// month-over-month change, category concentration, and trailing-week
// activity. Absent data produces no insight rather than a degenerate
// one.
func Insights(txns []core.Transaction, now time.Time) []string {
	var out []string

	if s := monthOverMonthInsight(txns, now); s != "" {
		out = append(out, s)
	}
	out = append(out, concentrationInsights(txns)...)
	if s := recentActivityInsight(txns, now); s != "" {
		out = append(out, s)
	}
	return out
}

func monthOverMonthInsight(txns []core.Transaction, now time.Time) string {
	thisMonth := core.TotalSpendingAbsolute(core.FilterByMonth(txns, now.Year(), int(now.Month())))
	py, pm := core.PreviousMonth(now.Year(), int(now.Month()))
	lastMonth := core.TotalSpendingAbsolute(core.FilterByMonth(txns, py, pm))

	if lastMonth.Cents <= 0 {
		return ""
	}
	change := (float64(thisMonth.Cents) - float64(lastMonth.Cents)) / float64(lastMonth.Cents) * 100
	switch {
	case change > monthChangeThreshold:
		return fmt.Sprintf("spending is up %.0f%% compared to last month", change)
	case change < -monthChangeThreshold:
		return fmt.Sprintf("spending is down %.0f%% compared to last month", math.Abs(change))
	}
	return ""
}

func concentrationInsights(txns []core.Transaction) []string {
	spending := core.ExpensesByCategory(txns)
	total := core.TotalSpendingAbsolute(txns).Cents
	if total <= 0 || len(spending) == 0 {
		return nil
	}

	names := make([]string, 0, len(spending))
	for name := range spending {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if spending[names[i]].Cents != spending[names[j]].Cents {
			return spending[names[i]].Cents > spending[names[j]].Cents
		}
		return names[i] < names[j]
	})

	var out []string
	topShare := float64(spending[names[0]].Cents) / float64(total) * 100
	if topShare > dominantCategoryPercent {
		out = append(out, fmt.Sprintf("%s accounts for %.0f%% of your spending", names[0], topShare))
	}

	if len(names) >= 3 {
		var top3 int64
		for _, name := range names[:3] {
			top3 += spending[name].Cents
		}
		if float64(top3)/float64(total)*100 < distributedTopShare {
			out = append(out, "your spending is well distributed across categories")
		}
	}
	return out
}

func recentActivityInsight(txns []core.Transaction, now time.Time) string {
	if len(txns) == 0 {
		return ""
	}
	today := core.DateOf(now)
	weekAgo := core.DateOf(now.AddDate(0, 0, -7))

	count := 0
	for _, t := range txns {
		if t.Date.Between(weekAgo, today) {
			count++
		}
	}
	switch {
	case count > highActivityCount:
		return fmt.Sprintf("high activity: %d transactions in the last 7 days", count)
	case count < lowActivityCount:
		return fmt.Sprintf("low activity: only %d transactions in the last 7 days", count)
	}
	return ""
}
