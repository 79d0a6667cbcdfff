package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"spendtrack/internal/config"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/mail"
)

// ErrStopTimeout is returned when the scheduler loop does not exit
// within the stop deadline.
var ErrStopTimeout = errors.New("scheduler: stop timed out")

// ErrScheduleDisabled is returned by Start when the report schedule is
// turned off in the settings.
var ErrScheduleDisabled = errors.New("scheduler: report schedule is disabled")

const (
	schedulerTick = time.Minute
	stopTimeout   = 5 * time.Second
)

// ReportScheduler sends the previous month's spending report once per
// month at the configured day and time. The check runs once a minute;
// the configured target day is clamped to short months so a day-31
// schedule still fires in February. A sent report is recorded in the
// settings document, which makes the send idempotent across restarts.
type ReportScheduler struct {
	provider *config.Provider
	svc      *Service
	mailer   mail.Mailer
	logger   *log.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	statusFn func(string)

	tick time.Duration
	now  func() time.Time
}

func NewReportScheduler(provider *config.Provider, svc *Service, mailer mail.Mailer, logger *log.Logger) *ReportScheduler {
	return &ReportScheduler{
		provider: provider,
		svc:      svc,
		mailer:   mailer,
		logger:   logger,
		tick:     schedulerTick,
		now:      time.Now,
	}
}

// SetStatusCallback registers a listener for send outcomes. The
// callback runs on the scheduler goroutine.
func (s *ReportScheduler) SetStatusCallback(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusFn = fn
}

// Start launches the scheduler loop. It fails when the schedule is
// disabled or the loop is already running.
func (s *ReportScheduler) Start(ctx context.Context) error {
	settings, err := s.provider.Settings()
	if err != nil {
		return err
	}
	if !settings.Email.Schedule.Enabled {
		return ErrScheduleDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("scheduler: already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, s.done)

	s.logger.Info("report scheduler started",
		"day_of_month", settings.Email.Schedule.DayOfMonth,
		"hour", settings.Email.Schedule.Hour,
		"minute", settings.Email.Schedule.Minute)
	return nil
}

// Stop halts the loop and waits for it to exit, bounded by the stop
// deadline. Stopping a scheduler that is not running is a no-op.
func (s *ReportScheduler) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		s.logger.Info("report scheduler stopped")
		return nil
	case <-time.After(stopTimeout):
		return ErrStopTimeout
	}
}

// Running reports whether the loop is active.
func (s *ReportScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *ReportScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndSend(ctx)
		}
	}
}

// checkAndSend fires the monthly report when the clamped target day
// and time have been reached and no report went out this month yet.
func (s *ReportScheduler) checkAndSend(ctx context.Context) {
	settings, err := s.provider.Settings()
	if err != nil {
		s.logger.Error("scheduler cannot read settings", log.FieldError, err.Error())
		return
	}
	sched := settings.Email.Schedule
	if !sched.Enabled {
		return
	}

	now := s.now()
	day := core.ClampDay(sched.DayOfMonth, now.Year(), int(now.Month()))
	if now.Day() != day {
		return
	}
	target := time.Date(now.Year(), now.Month(), day, sched.Hour, sched.Minute, 0, 0, now.Location())
	if now.Before(target) {
		return
	}
	if alreadySentThisMonth(settings.Email.LastReportSent, now) {
		return
	}

	ok, msg := s.SendMonthlyReport(ctx)
	if ok {
		if err := s.provider.MarkReportSent(core.DateOf(now).String()); err != nil {
			s.logger.Error("failed to record report send", log.FieldError, err.Error())
		}
	}
	s.notify(msg)
}

func alreadySentThisMonth(lastSent string, now time.Time) bool {
	if lastSent == "" {
		return false
	}
	d, err := core.ParseDate(lastSent)
	if err != nil {
		return false
	}
	return d.MonthKey() == core.MonthKeyOf(now)
}

// SendMonthlyReport sends the previous calendar month's report to the
// configured recipients.
func (s *ReportScheduler) SendMonthlyReport(ctx context.Context) (bool, string) {
	now := s.now()
	year, month := core.PreviousMonth(now.Year(), int(now.Month()))
	return s.sendRange(ctx, year, month, nil, "")
}

// SendTestReport sends the current month so far, marking the subject
// as a test. It never touches the schedule state.
func (s *ReportScheduler) SendTestReport(ctx context.Context) (bool, string) {
	now := s.now()
	return s.sendRange(ctx, now.Year(), int(now.Month()), nil, "[Test] ")
}

// SendCustomReport sends an arbitrary date range, optionally to a
// recipient list overriding the configured one.
func (s *ReportScheduler) SendCustomReport(ctx context.Context, start, end core.Date, recipients []string) (bool, string) {
	if start.IsZero() || end.IsZero() || end.Before(start.Time) {
		return false, "invalid report date range"
	}
	settings, err := s.provider.Settings()
	if err != nil {
		return false, err.Error()
	}
	if len(recipients) == 0 {
		recipients = settings.Email.Recipients
	}
	subject := fmt.Sprintf("%s%s to %s", settings.Email.SubjectPrefix, start, end)
	return s.send(ctx, settings, start, end, recipients, subject)
}

func (s *ReportScheduler) sendRange(ctx context.Context, year, month int, recipients []string, subjectTag string) (bool, string) {
	settings, err := s.provider.Settings()
	if err != nil {
		return false, err.Error()
	}
	if len(recipients) == 0 {
		recipients = settings.Email.Recipients
	}
	start, end := core.MonthRange(year, month)
	label := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	subject := fmt.Sprintf("%s%s%s", settings.Email.SubjectPrefix, subjectTag, label)
	return s.send(ctx, settings, start, end, recipients, subject)
}

func (s *ReportScheduler) send(ctx context.Context, settings *config.Settings, start, end core.Date, recipients []string, subject string) (bool, string) {
	if s.mailer == nil {
		return false, "email delivery is not configured"
	}

	// Reports bypass the snapshot cache; a stale list in an email
	// cannot be refreshed by the reader.
	txns := core.FilterByDateRange(s.svc.Transactions(ctx, false), start, end)

	ok, msg := s.mailer.SendSummary(ctx, mail.SummaryRequest{
		Recipients:        recipients,
		Transactions:      txns,
		Start:             start,
		End:               end,
		Subject:           subject,
		CurrencySymbol:    s.svc.CurrencySymbol(),
		IncludeAttachment: settings.Email.Schedule.IncludeAttachment,
	})
	if ok {
		s.logger.Info("report sent",
			log.FieldDate, fmt.Sprintf("%s..%s", start, end),
			log.FieldCount, len(txns),
			log.FieldRecipients, len(recipients))
	} else {
		s.logger.Error("report send failed", log.FieldError, msg)
	}
	return ok, msg
}

// NextScheduledTime computes the next instant the monthly report will
// fire, clamping the configured day to each month's length. ok is
// false when the schedule is disabled.
func (s *ReportScheduler) NextScheduledTime() (time.Time, bool) {
	settings, err := s.provider.Settings()
	if err != nil || !settings.Email.Schedule.Enabled {
		return time.Time{}, false
	}
	sched := settings.Email.Schedule
	now := s.now()

	year, month := now.Year(), int(now.Month())
	day := core.ClampDay(sched.DayOfMonth, year, month)
	candidate := time.Date(year, time.Month(month), day, sched.Hour, sched.Minute, 0, 0, now.Location())
	if now.Before(candidate) {
		return candidate, true
	}

	if month == 12 {
		year, month = year+1, 1
	} else {
		month++
	}
	day = core.ClampDay(sched.DayOfMonth, year, month)
	return time.Date(year, time.Month(month), day, sched.Hour, sched.Minute, 0, 0, now.Location()), true
}

func (s *ReportScheduler) notify(msg string) {
	s.mu.Lock()
	fn := s.statusFn
	s.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}
