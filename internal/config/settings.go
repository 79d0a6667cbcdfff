// Package config holds the application settings document. Settings
// live in a YAML file; a handful of environment variables override the
// file for deployment-specific values and secrets.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spendtrack/internal/backend"
	"spendtrack/internal/core"
)

type Settings struct {
	Currency CurrencySettings `yaml:"currency"`
	Data     DataSettings     `yaml:"data"`
	Budgets  []BudgetSettings `yaml:"budgets"`
	Email    EmailSettings    `yaml:"email"`
	Server   ServerSettings   `yaml:"server"`
	AMQP     AMQPSettings     `yaml:"amqp"`
	Sheets   SheetsSettings   `yaml:"sheets"`
}

type CurrencySettings struct {
	Symbol string `yaml:"symbol"`
	Code   string `yaml:"code"`
}

type DataSettings struct {
	Backend    string         `yaml:"backend"`
	JSONPath   string         `yaml:"json_path"`
	SQLitePath string         `yaml:"sqlite_path"`
	Categories []string       `yaml:"categories"`
	Recurring  []RuleSettings `yaml:"recurring"`
}

type RuleSettings struct {
	Amount        float64 `yaml:"amount"`
	Category      string  `yaml:"category"`
	Description   string  `yaml:"description"`
	DayOfMonth    int     `yaml:"day_of_month"`
	LastProcessed string  `yaml:"last_processed"`
	Enabled       bool    `yaml:"enabled"`
}

type BudgetSettings struct {
	ID           string  `yaml:"id"`
	Category     string  `yaml:"category"`
	MonthlyLimit float64 `yaml:"monthly_limit"`
	StartDate    string  `yaml:"start_date"`
	EndDate      string  `yaml:"end_date"`
	Active       bool    `yaml:"active"`
}

type EmailSettings struct {
	APIURL        string           `yaml:"api_url"`
	From          string           `yaml:"from"`
	Recipients    []string         `yaml:"recipients"`
	SubjectPrefix string           `yaml:"subject_prefix"`
	Schedule      ScheduleSettings `yaml:"schedule"`
	// ISO date of the last automatic monthly report, e.g. "2024-03-01".
	LastReportSent string `yaml:"last_report_sent"`
	// APIKey is never written to the file; it comes from MAIL_API_KEY.
	APIKey string `yaml:"-"`
}

type ScheduleSettings struct {
	Enabled           bool `yaml:"enabled"`
	DayOfMonth        int  `yaml:"day_of_month"`
	Hour              int  `yaml:"hour"`
	Minute            int  `yaml:"minute"`
	IncludeAttachment bool `yaml:"include_attachment"`
}

type ServerSettings struct {
	Port string `yaml:"port"`
}

type AMQPSettings struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

type SheetsSettings struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name"`
}

func Defaults() *Settings {
	return &Settings{
		Currency: CurrencySettings{Symbol: "$", Code: "USD"},
		Data: DataSettings{
			Backend:    string(backend.JSONFileBackend),
			JSONPath:   "data/transactions.json",
			SQLitePath: "data/spendtrack.db",
			Categories: []string{"Food", "Transport", "Housing", "Utilities", "Entertainment", "Health", "Income", "Other"},
		},
		Email: EmailSettings{
			SubjectPrefix: "[Monthly Report] ",
			Schedule: ScheduleSettings{
				DayOfMonth:        1,
				Hour:              9,
				IncludeAttachment: true,
			},
		},
		Server: ServerSettings{Port: "8081"},
		AMQP:   AMQPSettings{Exchange: "spendtrack", Queue: "sync_transactions"},
		Sheets: SheetsSettings{SheetName: "Transactions"},
	}
}

// Validate checks the whole document and reports every problem at once.
func (s *Settings) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(s.Server.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port %q: must be a number", s.Server.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !backend.Type(s.Data.Backend).IsValid() {
		errs = append(errs, fmt.Sprintf("invalid data backend %q: must be one of %v", s.Data.Backend, backend.Types()))
	}

	if s.AMQP.URL != "" {
		if u, err := url.Parse(s.AMQP.URL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL %q: %v", s.AMQP.URL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", u.Scheme))
		}
		if s.AMQP.Exchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when an AMQP URL is set")
		}
		if s.AMQP.Queue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when an AMQP URL is set")
		}
	}

	for i, r := range s.Data.Recurring {
		if _, err := r.Rule(); err != nil {
			errs = append(errs, fmt.Sprintf("recurring rule %d (%s): %v", i, r.Category, err))
		}
	}
	for i, b := range s.Budgets {
		if _, err := b.Budget(time.Time{}); err != nil {
			errs = append(errs, fmt.Sprintf("budget %d (%s): %v", i, b.Category, err))
		}
	}

	sched := s.Email.Schedule
	if sched.DayOfMonth < 1 || sched.DayOfMonth > 31 {
		errs = append(errs, fmt.Sprintf("invalid report day of month %d: must be 1-31", sched.DayOfMonth))
	}
	if sched.Hour < 0 || sched.Hour > 23 {
		errs = append(errs, fmt.Sprintf("invalid report hour %d: must be 0-23", sched.Hour))
	}
	if sched.Minute < 0 || sched.Minute > 59 {
		errs = append(errs, fmt.Sprintf("invalid report minute %d: must be 0-59", sched.Minute))
	}
	if sched.Enabled {
		if s.Email.APIURL == "" {
			errs = append(errs, "email api_url is required when the report schedule is enabled")
		}
		if len(s.Email.Recipients) == 0 {
			errs = append(errs, "at least one email recipient is required when the report schedule is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Rule converts the YAML shape into the validated domain rule.
func (r RuleSettings) Rule() (core.RecurringRule, error) {
	rule := core.RecurringRule{
		Amount:        core.MoneyFromFloat(r.Amount),
		Category:      strings.TrimSpace(r.Category),
		Description:   strings.TrimSpace(r.Description),
		DayOfMonth:    r.DayOfMonth,
		LastProcessed: strings.TrimSpace(r.LastProcessed),
		Enabled:       r.Enabled,
	}
	if err := rule.Validate(); err != nil {
		return core.RecurringRule{}, err
	}
	return rule, nil
}

// Budget converts the YAML shape into the validated domain budget.
// now is only used to stamp budgets that carry no id yet.
func (b BudgetSettings) Budget(now time.Time) (core.Budget, error) {
	start, err := core.ParseDate(b.StartDate)
	if err != nil {
		return core.Budget{}, fmt.Errorf("invalid start date %q", b.StartDate)
	}
	var end core.Date
	if strings.TrimSpace(b.EndDate) != "" {
		end, err = core.ParseDate(b.EndDate)
		if err != nil {
			return core.Budget{}, fmt.Errorf("invalid end date %q", b.EndDate)
		}
	}
	budget, err := core.NewBudget(b.Category, core.MoneyFromFloat(b.MonthlyLimit), start, end, now)
	if err != nil {
		return core.Budget{}, err
	}
	if b.ID != "" {
		budget.ID = b.ID
	}
	budget.Active = b.Active
	return budget, nil
}

// DomainBudgets converts every configured budget, skipping none; the
// document must already have passed Validate.
func (s *Settings) DomainBudgets(now time.Time) ([]core.Budget, error) {
	budgets := make([]core.Budget, 0, len(s.Budgets))
	for i, b := range s.Budgets {
		budget, err := b.Budget(now)
		if err != nil {
			return nil, fmt.Errorf("budget %d (%s): %w", i, b.Category, err)
		}
		budgets = append(budgets, budget)
	}
	return budgets, nil
}

// BackendConfig maps the settings onto the backend factory's config.
func (s *Settings) BackendConfig() backend.Config {
	return backend.Config{
		Type:          backend.Type(s.Data.Backend),
		JSONPath:      s.Data.JSONPath,
		SQLiteDBPath:  s.Data.SQLitePath,
		AMQPURL:       s.AMQP.URL,
		AMQPExchange:  s.AMQP.Exchange,
		AMQPQueue:     s.AMQP.Queue,
		SpreadsheetID: s.Sheets.SpreadsheetID,
		SheetName:     s.Sheets.SheetName,
	}
}
