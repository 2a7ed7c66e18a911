package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fluxo/internal/cycle"
	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
	"fluxo/internal/pagination"
)

// ruleService handles forecast rule management.
type ruleService struct {
	db *gorm.DB
}

// NewRuleService creates a new RuleServicer.
func NewRuleService(db *gorm.DB) RuleServicer {
	return &ruleService{db: db}
}

// CreateRule validates and stores a forecast rule. Budget rules upsert by
// category: at most one active budget rule exists per category, so creating
// a second one updates the existing rule in place and drops its projected
// instances for regeneration against the new cap.
func (s *ruleService) CreateRule(input RuleInput) (*models.ForecastRule, error) {
	rule, err := s.buildRule(input)
	if err != nil {
		return nil, err
	}

	if rule.Type == models.RuleTypeBudget {
		return s.upsertBudgetRule(rule)
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// buildRule normalizes and validates rule input. Validation mirrors the
// storage-boundary checks the generator applies, so a rule accepted here
// will expand cleanly.
func (s *ruleService) buildRule(input RuleInput) (*models.ForecastRule, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rule name is required")
	}
	if input.StartDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}
	if input.Amount == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be non-zero")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date precedes start date")
	}

	currency := input.Currency
	if currency == "" {
		currency = "EUR"
	}
	start := cycle.DateOnly(input.StartDate)

	rule := &models.ForecastRule{
		Name:              strings.TrimSpace(input.Name),
		Type:              input.Type,
		Amount:            input.Amount,
		Currency:          currency,
		AccountID:         input.AccountID,
		Category:          strings.TrimSpace(input.Category),
		StartDate:         start,
		EndDate:           input.EndDate,
		Frequency:         input.Frequency,
		DayOfMonth:        input.DayOfMonth,
		InstallmentsCount: input.InstallmentsCount,
		IsActive:          true,
	}

	switch input.Type {
	case models.RuleTypeOneOff:
		if rule.EndDate == nil {
			end := start
			rule.EndDate = &end
		}
	case models.RuleTypeInstallment:
		if input.InstallmentsCount == nil || *input.InstallmentsCount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidRuleConfig, "installment rules require a positive installments count")
		}
	case models.RuleTypeRecurring:
		if rule.Frequency == "" {
			rule.Frequency = models.FrequencyMonthly
		}
		if rule.Frequency != models.FrequencyMonthly {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidRuleConfig, "only monthly recurrence is supported")
		}
		if rule.DayOfMonth == 0 {
			rule.DayOfMonth = start.Day()
		}
	case models.RuleTypeBudget:
		if rule.Category == "" {
			return nil, apperrors.ErrCategoryMissing
		}
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRuleConfig, fmt.Sprintf("unknown rule type %q", input.Type))
	}

	return rule, nil
}

// upsertBudgetRule enforces the one-active-budget-per-category invariant.
func (s *ruleService) upsertBudgetRule(rule *models.ForecastRule) (*models.ForecastRule, error) {
	var existing models.ForecastRule
	err := s.db.
		Where("type = ? AND category = ? AND is_active = ?", models.RuleTypeBudget, rule.Category, true).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.db.Create(rule).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return rule, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":       rule.Name,
			"amount":     rule.Amount,
			"currency":   rule.Currency,
			"account_id": rule.AccountID,
			"start_date": rule.StartDate,
			"end_date":   rule.EndDate,
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
		// Projected instances still carry the old cap; drop them so the
		// next generation run materializes the new one. Realized history
		// stays.
		return tx.
			Where("rule_id = ? AND status = ?", existing.ID, models.InstanceStatusProjected).
			Delete(&models.ForecastInstance{}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &existing, nil
}

// GetRules returns a paginated list of rules with optional filters.
func (s *ruleService) GetRules(page pagination.PageRequest, isActive *bool, ruleType *models.RuleType) (*pagination.PageResponse[models.ForecastRule], error) {
	page.Defaults()

	base := s.db.Model(&models.ForecastRule{})
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}
	if ruleType != nil {
		base = base.Where("type = ?", *ruleType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.ForecastRule
	if err := base.Order("created_at").Scopes(pagination.Paginate(page)).Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRuleByID returns a rule by ID.
func (s *ruleService) GetRuleByID(ruleID string) (*models.ForecastRule, error) {
	var rule models.ForecastRule
	if err := s.db.First(&rule, "id = ?", ruleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// DeactivateRule soft-deletes a rule and cascades a hard delete of its
// still-projected instances. Realized instances are historical fact and
// survive; the inactive rule no longer generates, so deleted projections do
// not come back.
func (s *ruleService) DeactivateRule(ruleID string) error {
	rule, err := s.GetRuleByID(ruleID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(rule).Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.
			Where("rule_id = ? AND status = ?", rule.ID, models.InstanceStatusProjected).
			Delete(&models.ForecastInstance{}).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ApplyTransactionPlan derives a forecast rule from a real transaction: a
// pay-later purchase due in 30 days, or a charge expected to repeat
// monthly. Re-applying the plan reuses the rule keyed by the source
// transaction instead of creating duplicates.
func (s *ruleService) ApplyTransactionPlan(transactionID string, plan TransactionPlan) (*models.ForecastRule, error) {
	var transaction models.Transaction
	if err := s.db.First(&transaction, "id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch plan.Kind {
	case PlanPayIn30:
		return s.applyPayIn30(&transaction)
	case PlanRepeatMonthly:
		return s.applyRepeatMonthly(&transaction, plan.MonthsAhead)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown plan kind %q", plan.Kind))
	}
}

func (s *ruleService) applyPayIn30(transaction *models.Transaction) (*models.ForecastRule, error) {
	due := cycle.DateOnly(transaction.Date).AddDate(0, 0, 30)
	amount := transaction.LedgerAmount()

	rule, err := s.findSourcedRule(transaction.ID, models.RuleTypeOneOff)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if rule == nil {
			rule = &models.ForecastRule{
				Name:                fmt.Sprintf("Pay in 30: %s", describeOr(transaction.Description, "Transaction")),
				Type:                models.RuleTypeOneOff,
				Amount:              amount,
				Currency:            "EUR",
				AccountID:           transaction.AccountID,
				Category:            categoryOrDefault(transaction.Category),
				StartDate:           due,
				EndDate:             &due,
				IsActive:            true,
				SourceTransactionID: &transaction.ID,
			}
			if err := tx.Create(rule).Error; err != nil {
				return err
			}
		} else {
			updates := map[string]interface{}{
				"amount":     amount,
				"category":   categoryOrDefault(transaction.Category),
				"start_date": due,
				"end_date":   due,
			}
			if err := tx.Model(rule).Updates(updates).Error; err != nil {
				return err
			}
		}
		return ensureInstance(tx, rule.ID, due, amount, fmt.Sprintf("Created from transaction %s", transaction.ID))
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

func (s *ruleService) applyRepeatMonthly(transaction *models.Transaction, monthsAhead int) (*models.ForecastRule, error) {
	if monthsAhead < 1 {
		monthsAhead = 12
	}
	first := cycle.AddMonthsClamped(transaction.Date, 1)
	amount := transaction.LedgerAmount()

	rule, err := s.findSourcedRule(transaction.ID, models.RuleTypeRecurring)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if rule == nil {
			rule = &models.ForecastRule{
				Name:                fmt.Sprintf("Monthly: %s", describeOr(transaction.Description, "Transaction")),
				Type:                models.RuleTypeRecurring,
				Amount:              amount,
				Currency:            "EUR",
				AccountID:           transaction.AccountID,
				Category:            categoryOrDefault(transaction.Category),
				StartDate:           first,
				Frequency:           models.FrequencyMonthly,
				DayOfMonth:          cycle.DateOnly(transaction.Date).Day(),
				IsActive:            true,
				SourceTransactionID: &transaction.ID,
			}
			if err := tx.Create(rule).Error; err != nil {
				return err
			}
		}

		note := fmt.Sprintf("Created from transaction %s", transaction.ID)
		for i := 0; i < monthsAhead; i++ {
			if err := ensureInstance(tx, rule.ID, cycle.AddMonthsClamped(first, i), amount, note); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// findSourcedRule looks up the active rule previously derived from a
// transaction, if any.
func (s *ruleService) findSourcedRule(transactionID string, ruleType models.RuleType) (*models.ForecastRule, error) {
	var rule models.ForecastRule
	err := s.db.
		Where("source_transaction_id = ? AND type = ? AND is_active = ?", transactionID, ruleType, true).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// ensureInstance inserts a projected instance unless the (rule, date) pair
// already exists in any status.
func ensureInstance(tx *gorm.DB, ruleID string, date time.Time, amount float64, note string) error {
	var count int64
	if err := tx.Model(&models.ForecastInstance{}).
		Where("rule_id = ? AND date = ?", ruleID, cycle.DateOnly(date)).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(&models.ForecastInstance{
		RuleID: ruleID,
		Date:   cycle.DateOnly(date),
		Amount: amount,
		Status: models.InstanceStatusProjected,
		Note:   note,
	}).Error
}

func describeOr(description, fallback string) string {
	if strings.TrimSpace(description) == "" {
		return fallback
	}
	return description
}
