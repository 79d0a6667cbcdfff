package services

import (
	"context"
	"time"

	"spendtrack/internal/config"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
)

// RecurringProcessor materializes configured recurring rules into
// transactions. A rule fires at most once per calendar month: after a
// successful add, the rule is stamped with the YYYY-MM token and
// persisted before the next rule is considered. One failing rule never
// blocks the others.
type RecurringProcessor struct {
	provider *config.Provider
	svc      *Service
	logger   *log.Logger
	now      func() time.Time
}

func NewRecurringProcessor(provider *config.Provider, svc *Service, logger *log.Logger) *RecurringProcessor {
	return &RecurringProcessor{
		provider: provider,
		svc:      svc,
		logger:   logger,
		now:      time.Now,
	}
}

// ProcessDue runs one pass over the rules and returns how many were
// materialized.
func (p *RecurringProcessor) ProcessDue(ctx context.Context) (int, error) {
	settings, err := p.provider.Settings()
	if err != nil {
		return 0, err
	}

	now := p.now()
	monthKey := core.MonthKeyOf(now)
	processed := 0

	for i, rs := range settings.Data.Recurring {
		rule, err := rs.Rule()
		if err != nil {
			p.logger.Warn("skipping invalid recurring rule",
				log.FieldRuleDesc, rs.Description,
				log.FieldError, err.Error())
			continue
		}
		if !rule.DueOn(now) {
			continue
		}

		date := rule.TargetDate(now)
		result, err := p.svc.Add(ctx, date, rule.Amount, rule.Category, rule.MaterializedDescription())
		if err != nil {
			p.logger.Warn("recurring rule produced an invalid transaction",
				log.FieldRuleDesc, rule.Description,
				log.FieldError, err.Error())
			continue
		}
		if !result.OK {
			p.logger.Error("recurring transaction not stored",
				log.FieldRuleDesc, rule.Description,
				log.FieldError, result.Message)
			continue
		}

		if err := p.provider.MarkRuleProcessed(i, monthKey); err != nil {
			// The transaction exists but the stamp did not stick; the
			// next pass would duplicate it. Surface this loudly.
			p.logger.Error("failed to persist recurring rule state",
				log.FieldRuleDesc, rule.Description,
				log.FieldMonthKey, monthKey,
				log.FieldError, err.Error())
			continue
		}

		p.logger.Info("recurring transaction materialized",
			log.FieldRuleDesc, rule.Description,
			log.FieldCategory, rule.Category,
			log.FieldDate, date.String(),
			log.FieldMonthKey, monthKey)
		processed++
	}

	return processed, nil
}
