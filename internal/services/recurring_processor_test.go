package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"spendtrack/internal/config"
	"spendtrack/internal/core"
)

func newTestProcessor(t *testing.T, rules []config.RuleSettings) (*RecurringProcessor, *fakeStore, *config.Provider) {
	t.Helper()
	provider := config.NewProvider(filepath.Join(t.TempDir(), "config.yaml"))
	settings, err := provider.Settings()
	if err != nil {
		t.Fatal(err)
	}
	settings.Data.Recurring = rules
	if err := provider.Save(settings); err != nil {
		t.Fatal(err)
	}

	svc, fs := newTestService(t, nil)
	p := NewRecurringProcessor(provider, svc, testLogger())
	p.now = func() time.Time { return testNow }
	return p, fs, provider
}

func TestProcessDueMaterializesRules(t *testing.T) {
	p, fs, provider := newTestProcessor(t, []config.RuleSettings{
		{Amount: -1200, Category: "Housing", Description: "Monthly rent", DayOfMonth: 1, Enabled: true},
		{Amount: 2500, Category: "Income", Description: "Salary", DayOfMonth: 25, Enabled: true}, // not yet due on the 15th
	})

	n, err := p.ProcessDue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("processed = %d", n)
	}
	if len(fs.txns) != 1 || fs.txns[0].Category != "Housing" {
		t.Fatalf("stored = %+v", fs.txns)
	}
	if fs.txns[0].Date.String() != "2024-03-01" {
		t.Fatalf("materialized date = %s", fs.txns[0].Date)
	}
	if fs.txns[0].Description != "[auto] Monthly rent" {
		t.Fatalf("materialized description = %q", fs.txns[0].Description)
	}

	settings, err := provider.Reload()
	if err != nil {
		t.Fatal(err)
	}
	if settings.Data.Recurring[0].LastProcessed != "2024-03" {
		t.Fatalf("rule not stamped: %+v", settings.Data.Recurring[0])
	}
	if settings.Data.Recurring[1].LastProcessed != "" {
		t.Fatal("undue rule must not be stamped")
	}
}

func TestProcessDueIsIdempotentWithinMonth(t *testing.T) {
	p, fs, _ := newTestProcessor(t, []config.RuleSettings{
		{Amount: -1200, Category: "Housing", Description: "Monthly rent", DayOfMonth: 1, Enabled: true},
	})
	ctx := context.Background()

	if _, err := p.ProcessDue(ctx); err != nil {
		t.Fatal(err)
	}
	n, err := p.ProcessDue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || len(fs.txns) != 1 {
		t.Fatalf("second pass processed %d, stored %d", n, len(fs.txns))
	}
}

func TestProcessDueFiresNextMonth(t *testing.T) {
	p, fs, _ := newTestProcessor(t, []config.RuleSettings{
		{Amount: -1200, Category: "Housing", Description: "Monthly rent", DayOfMonth: 1, Enabled: true, LastProcessed: "2024-02"},
	})

	n, err := p.ProcessDue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(fs.txns) != 1 {
		t.Fatalf("processed %d, stored %d", n, len(fs.txns))
	}
}

func TestProcessDueShortMonthClamping(t *testing.T) {
	p, fs, _ := newTestProcessor(t, []config.RuleSettings{
		{Amount: -500, Category: "Subscriptions", Description: "Storage plan", DayOfMonth: 31, Enabled: true},
	})
	// Leap February, day 31 clamps to the 29th.
	p.now = func() time.Time { return time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC) }

	n, err := p.ProcessDue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("processed = %d", n)
	}
	if fs.txns[0].Date.String() != "2024-02-29" {
		t.Fatalf("materialized date = %s", fs.txns[0].Date)
	}
}

func TestProcessDueStoreFailureDoesNotStampRule(t *testing.T) {
	p, fs, provider := newTestProcessor(t, []config.RuleSettings{
		{Amount: -1200, Category: "Housing", Description: "Monthly rent", DayOfMonth: 1, Enabled: true},
	})
	fs.failAdd = true

	n, err := p.ProcessDue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("processed = %d", n)
	}
	settings, err := provider.Reload()
	if err != nil {
		t.Fatal(err)
	}
	if settings.Data.Recurring[0].LastProcessed != "" {
		t.Fatal("failed rule must stay unstamped for retry")
	}

	// Next pass succeeds and stamps.
	fs.failAdd = false
	if n, err = p.ProcessDue(context.Background()); err != nil || n != 1 {
		t.Fatalf("retry pass: n=%d err=%v", n, err)
	}
}

func TestProcessDueSkipsDisabledRules(t *testing.T) {
	p, fs, _ := newTestProcessor(t, []config.RuleSettings{
		{Amount: -1200, Category: "Housing", Description: "Monthly rent", DayOfMonth: 1, Enabled: false},
	})

	n, err := p.ProcessDue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || len(fs.txns) != 0 {
		t.Fatalf("disabled rule fired: n=%d stored=%d", n, len(fs.txns))
	}
}

func TestProcessDueIgnoresTransactionsMatchingRuleShape(t *testing.T) {
	p, fs, _ := newTestProcessor(t, []config.RuleSettings{
		{Amount: -1200, Category: "Housing", Description: "Monthly rent", DayOfMonth: 1, Enabled: true},
	})
	// A manual transaction that happens to look like the rule's output
	// must not suppress materialization; only the stamp does.
	manual := mustTxn(t, core.NewDate(2024, 3, 1), -120000, "Housing")
	fs.txns = append(fs.txns, manual)

	n, err := p.ProcessDue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(fs.txns) != 2 {
		t.Fatalf("n=%d stored=%d", n, len(fs.txns))
	}
}
