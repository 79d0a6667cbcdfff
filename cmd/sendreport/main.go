package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"spendtrack/internal/backend"
	"spendtrack/internal/config"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/mail"
	"spendtrack/internal/services"
)

// sendreport is a one-shot CLI that emails a spending report.
// Without flags it sends last month's report; -start/-end select a
// custom range and -test sends the current month to verify delivery.
func main() {
	_ = godotenv.Load()

	var (
		startFlag      = flag.String("start", "", "range start date (YYYY-MM-DD)")
		endFlag        = flag.String("end", "", "range end date (YYYY-MM-DD)")
		recipientsFlag = flag.String("recipients", "", "comma-separated recipient overrides")
		testFlag       = flag.Bool("test", false, "send a test report for the current month")
	)
	flag.Parse()

	logger := log.New(log.Config{
		Level:     log.DefaultConfig().Level,
		Component: log.ComponentScheduler,
	})
	log.SetDefault(logger)

	if err := run(logger, *startFlag, *endFlag, *recipientsFlag, *testFlag); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger, startStr, endStr, recipientsStr string, test bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider := config.NewProvider(config.DefaultPath())
	settings, err := provider.Settings()
	if err != nil {
		return err
	}
	if settings.Email.APIURL == "" {
		return fmt.Errorf("email api_url is not configured")
	}

	res, err := backend.Open(ctx, settings.BackendConfig(), logger.WithComponent(log.ComponentBackend).Logger)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	budgets, err := settings.DomainBudgets(time.Now())
	if err != nil {
		return err
	}
	svc := services.NewService(res.Store, services.NewBudgetTracker(budgets),
		settings.Currency.Symbol, logger.WithComponent(log.ComponentService))

	mailer := mail.NewHTTPMailer(settings.Email.APIURL, settings.Email.APIKey,
		settings.Email.From, logger.WithComponent(log.ComponentMail))
	scheduler := services.NewReportScheduler(provider, svc, mailer, logger)

	var ok bool
	var msg string
	switch {
	case test:
		ok, msg = scheduler.SendTestReport(ctx)
	case startStr != "" || endStr != "":
		start, err := core.ParseDate(startStr)
		if err != nil {
			return fmt.Errorf("invalid -start date %q", startStr)
		}
		end, err := core.ParseDate(endStr)
		if err != nil {
			return fmt.Errorf("invalid -end date %q", endStr)
		}
		ok, msg = scheduler.SendCustomReport(ctx, start, end, splitRecipients(recipientsStr))
	default:
		ok, msg = scheduler.SendMonthlyReport(ctx)
	}

	if !ok {
		return fmt.Errorf("%s", msg)
	}
	fmt.Println(msg)
	return nil
}

func splitRecipients(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
